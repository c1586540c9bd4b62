package game

import "math"

// Touches reports whether the ball meets the paddle face this tick. prevX is
// the ball center x at the start of the tick: a ball whose center was already
// behind the face can no longer be returned.
func Touches(b *Ball, p *Paddle, prevX float64) bool {
	if !b.Active {
		return false
	}
	face := p.Face()
	if p.Side == Left {
		if b.Velocity.X >= 0 || prevX < face {
			return false
		}
	} else {
		if b.Velocity.X <= 0 || prevX > face {
			return false
		}
	}
	if math.Abs(b.Position.X-face) > b.Radius {
		return false
	}
	return b.Position.Y+b.Radius >= p.Y && b.Position.Y-b.Radius <= p.Bottom()
}

// contactFraction maps the ball's vertical contact point within the paddle
// span to [0,1], 0 being the top edge.
func contactFraction(b *Ball, p *Paddle) float64 {
	rel := (b.Position.Y - p.Y) / p.Height
	return math.Max(0, math.Min(1, rel))
}

// Bounce computes the post-collision velocity without mutating anything.
func Bounce(b *Ball, p *Paddle, t Tuning) Vec2 {
	normalized := contactFraction(b, p)*2 - 1
	normalized = math.Max(-t.ContactClamp, math.Min(t.ContactClamp, normalized))
	angle := normalized * t.MaxBounceAngle * math.Pi / 180

	speed := math.Min(b.Speed()*t.SpeedEscalation, t.MaxBallSpeed)

	dir := 1.0
	if p.Side == Right {
		dir = -1
	}
	vx := dir * speed * math.Cos(angle)
	vy := speed*math.Sin(angle) + t.SpinTransfer*p.Velocity
	return NewVec2(vx, vy)
}

// Resolve bounces the ball off the paddle and seats it exactly on the face so
// the same contact cannot trigger again next tick.
func Resolve(b *Ball, p *Paddle, t Tuning) {
	b.Velocity = Bounce(b, p, t)
	b.Position = NewVec2(t.ContactX(p.Side), b.Position.Y)
}

// InverseContact recovers the paddle top Y that would have produced the given
// outgoing velocity for a ball that touched the face at contactY. The spin
// component is unknown so the result is the nearest consistent placement;
// the ball center always lies inside the returned span.
func InverseContact(velocity Vec2, contactY float64, t Tuning) float64 {
	angle := math.Atan2(velocity.Y, math.Abs(velocity.X))
	normalized := angle / (t.MaxBounceAngle * math.Pi / 180)
	normalized = math.Max(-t.ContactClamp, math.Min(t.ContactClamp, normalized))
	fraction := (normalized + 1) / 2
	return fix(t.clampPaddleY(contactY - fraction*t.PaddleHeight))
}

// BallStep reports what happened to the ball during one tick.
type BallStep struct {
	Hit     bool
	HitBy   Side
	Scored  bool
	Scorer  Side
	Contact Vec2 // ball position after a hit or at the moment it left the table
}

// StepBall integrates the ball for one tick, resolves paddle contacts and
// detects a score. Live play and replay share it so both see the same
// physics.
func StepBall(w *World, dt float64) BallStep {
	var res BallStep
	b := w.Ball
	if !b.Active {
		return res
	}
	prevX := b.Position.X
	b.Update(dt, w.Tuning)

	for _, side := range Sides {
		p := w.Paddle(side)
		if Touches(b, p, prevX) {
			Resolve(b, p, w.Tuning)
			res.Hit = true
			res.HitBy = side
			res.Contact = b.Position
			return res
		}
	}
	if scorer, ok := b.OutOfBounds(w.Tuning); ok {
		b.Active = false
		res.Scored = true
		res.Scorer = scorer
		res.Contact = b.Position
	}
	return res
}
