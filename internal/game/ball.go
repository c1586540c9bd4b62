package game

import "math"

// Side identifies a paddle (and the player behind it).
type Side string

const (
	Left  Side = "left"
	Right Side = "right"
)

// Sides lists both sides in a fixed order for deterministic iteration.
var Sides = [2]Side{Left, Right}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Left {
		return Right
	}
	return Left
}

// Valid reports whether s is a known side.
func (s Side) Valid() bool {
	return s == Left || s == Right
}

// sideToward returns the side a horizontal velocity is heading to.
func sideToward(vx float64) Side {
	if vx < 0 {
		return Left
	}
	return Right
}

// Ball is the single ball in play.
type Ball struct {
	Position Vec2    `json:"position"`
	Velocity Vec2    `json:"velocity"`
	Radius   float64 `json:"radius"`
	Active   bool    `json:"active"` // false while parked between a score and the next serve
}

// NewBall creates a parked ball at the table center.
func NewBall(t Tuning) *Ball {
	b := &Ball{Radius: t.BallRadius}
	b.Park(t)
	return b
}

// Park centers the ball and stops it until the next serve.
func (b *Ball) Park(t Tuning) {
	b.Position = t.center()
	b.Velocity = Vec2{}
	b.Active = false
}

// Launch puts the ball in play from the table center.
func (b *Ball) Launch(t Tuning, velocity Vec2) {
	b.Position = t.center()
	b.Velocity = velocity
	b.Active = true
}

// Update integrates one tick and reflects off the top and bottom walls.
func (b *Ball) Update(dt float64, t Tuning) {
	if !b.Active {
		return
	}
	b.Position = b.Position.Plus(b.Velocity.Times(dt))

	top := b.Radius
	bottom := t.TableHeight - b.Radius
	if b.Position.Y < top {
		// mirror the overshoot back inside so the path matches PredictYAtX
		b.Position.Y = fix(math.Min(bottom, 2*top-b.Position.Y))
		b.Velocity.Y = math.Abs(b.Velocity.Y)
	} else if b.Position.Y > bottom {
		b.Position.Y = fix(math.Max(top, 2*bottom-b.Position.Y))
		b.Velocity.Y = -math.Abs(b.Velocity.Y)
	}
}

// OutOfBounds reports whether the ball left the table and, if so, which side
// scored: the side the ball did not exit toward.
func (b *Ball) OutOfBounds(t Tuning) (Side, bool) {
	switch {
	case b.Position.X < -b.Radius:
		return Right, true
	case b.Position.X > t.TableWidth+b.Radius:
		return Left, true
	}
	return "", false
}

// Speed returns the magnitude of the ball velocity.
func (b *Ball) Speed() float64 {
	return b.Velocity.Magnitude()
}
