package game

import "math"

// PredictYAtX returns the ball's y when its center crosses the vertical line
// targetX, folding the straight-line flight through the top and bottom walls.
// ok is false when the ball never reaches the line: horizontal speed below
// epsilon, or moving away from it.
func PredictYAtX(targetX float64, b *Ball, t Tuning) (y float64, ok bool) {
	vx := b.Velocity.X
	if math.Abs(vx) < velocityEpsilon {
		return 0, false
	}
	dx := targetX - b.Position.X
	if dx*vx < 0 {
		return 0, false
	}
	flight := dx / vx
	unfolded := b.Position.Y + b.Velocity.Y*flight
	return foldIntoTable(unfolded, b.Radius, t.TableHeight), true
}

// foldIntoTable mirrors an unbounded y into [r, height-r] as if reflected at
// every wall crossing.
func foldIntoTable(y, r, height float64) float64 {
	span := height - 2*r
	if span <= 0 {
		return height / 2
	}
	period := 2 * span
	m := math.Mod(y-r, period)
	if m < 0 {
		m += period
	}
	if m > span {
		m = period - m
	}
	return r + m
}

// interceptSlack absorbs the 4-decimal rounding the stepped ball picks up
// against the straight-line prediction.
const interceptSlack = 0.01

// foldedRange returns the y range a ball covers while its unfolded y runs
// from a to b, reflecting at the walls like foldIntoTable.
func foldedRange(a, b, r, height float64) (lo, hi float64) {
	if a > b {
		a, b = b, a
	}
	span := height - 2*r
	if span <= 0 || b-a >= 2*span {
		return r, height - r
	}
	fa, fb := foldIntoTable(a, r, height), foldIntoTable(b, r, height)
	lo, hi = math.Min(fa, fb), math.Max(fa, fb)
	// every multiple of span inside (a, b) is a wall bounce
	for k := math.Ceil((a - r) / span); r+k*span <= b; k++ {
		if math.Mod(math.Abs(k), 2) == 0 {
			lo = r
		} else {
			hi = height - r
		}
	}
	return lo, hi
}

// ContactSpan returns the range of ball-center y values at which a paddle on
// side can still register a touch. Touches accepts any center within one
// radius of the face on either side, so the span follows the folded path from
// ContactX (or the current x when the ball is already inside that reach) to
// one radius behind the face. ok is false when the ball is not heading to
// side or has already passed the face.
func ContactSpan(b *Ball, side Side, t Tuning) (lo, hi float64, ok bool) {
	vx := b.Velocity.X
	if math.Abs(vx) < velocityEpsilon || sideToward(vx) != side {
		return 0, 0, false
	}
	face := t.FaceX(side)
	x := b.Position.X
	near := t.ContactX(side)
	var far float64
	if side == Left {
		if x < face {
			return 0, 0, false
		}
		near = math.Min(near, x)
		far = face - b.Radius
	} else {
		if x > face {
			return 0, 0, false
		}
		near = math.Max(near, x)
		far = face + b.Radius
	}
	ya := b.Position.Y + b.Velocity.Y*(near-x)/vx
	yb := b.Position.Y + b.Velocity.Y*(far-x)/vx
	lo, hi = foldedRange(ya, yb, b.Radius, t.TableHeight)
	return lo, hi, true
}

// WouldIntercept reports whether the ball, passing the given side's paddle
// face, would overlap a paddle whose top edge sits at paddleY.
func WouldIntercept(b *Ball, side Side, paddleY float64, t Tuning) bool {
	return WouldInterceptSweep(b, side, paddleY, paddleY, t)
}

// WouldInterceptSweep is WouldIntercept for a paddle travelling between
// fromY and toY: it reports whether any top edge on the way overlaps the
// ball's contact span.
func WouldInterceptSweep(b *Ball, side Side, fromY, toY float64, t Tuning) bool {
	lo, hi, ok := ContactSpan(b, side, t)
	if !ok {
		return false
	}
	top := math.Min(fromY, toY)
	bottom := math.Max(fromY, toY) + t.PaddleHeight
	return hi+b.Radius+interceptSlack >= top && lo-b.Radius-interceptSlack <= bottom
}

// ComputeMissTarget returns a paddle top Y that keeps the paddle clear of the
// ball's contact span by the miss margin. It prefers the smaller move from
// currentY; if neither dodge fits on the table it falls back to the table
// edge farther from the arrival point.
func ComputeMissTarget(b *Ball, side Side, currentY float64, t Tuning) float64 {
	lo, hi, ok := ContactSpan(b, side, t)
	if !ok {
		return t.clampPaddleY(currentY)
	}
	margin := t.missMargin()

	above := math.Min(currentY, lo-b.Radius-margin-t.PaddleHeight)
	below := math.Max(currentY, hi+b.Radius+margin)
	aboveFits := above >= 0
	belowFits := below <= t.maxPaddleY()

	switch {
	case aboveFits && belowFits:
		if math.Abs(above-currentY) <= math.Abs(below-currentY) {
			return fix(above)
		}
		return fix(below)
	case aboveFits:
		return fix(above)
	case belowFits:
		return fix(below)
	}
	if (lo+hi)/2 < t.TableHeight/2 {
		return fix(t.maxPaddleY())
	}
	return 0
}

// MoveToward moves the paddle at its maximum speed toward targetY (a top
// edge), snapping exactly onto it once within one tick of travel. It reports
// whether the paddle is at the target.
func MoveToward(p *Paddle, targetY, dt float64, t Tuning) bool {
	targetY = fix(t.clampPaddleY(targetY))
	oldY := p.Y
	step := t.PaddleSpeed * dt
	d := targetY - p.Y

	reached := false
	if math.Abs(d) <= step {
		p.Y = targetY
		reached = true
	} else if d > 0 {
		p.Y = fix(p.Y + step)
	} else {
		p.Y = fix(p.Y - step)
	}
	p.Velocity = fix((p.Y - oldY) / dt)
	return reached
}
