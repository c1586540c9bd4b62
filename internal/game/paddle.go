package game

// Paddle is a vertical bar fixed in x. Y is the top edge.
type Paddle struct {
	Side     Side    `json:"side"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Velocity float64 `json:"velocity"` // vertical speed over the last tick
}

// NewPaddle creates a vertically centered paddle for the given side.
func NewPaddle(side Side, t Tuning) *Paddle {
	x := t.LeftPaddleX()
	if side == Right {
		x = t.RightPaddleX()
	}
	p := &Paddle{
		Side:   side,
		X:      x,
		Width:  t.PaddleWidth,
		Height: t.PaddleHeight,
	}
	p.Reset(t)
	return p
}

// Reset centers the paddle and clears its velocity.
func (p *Paddle) Reset(t Tuning) {
	p.Y = fix((t.TableHeight - p.Height) / 2)
	p.Velocity = 0
}

// Center returns the vertical center of the paddle.
func (p *Paddle) Center() float64 {
	return fix(p.Y + p.Height/2)
}

// SetCenter places the paddle so its center sits at y, clamped to the table.
func (p *Paddle) SetCenter(y float64, t Tuning) {
	p.Y = fix(t.clampPaddleY(y - p.Height/2))
	p.Velocity = 0
}

// Face returns the x of the edge nearest the table center.
func (p *Paddle) Face() float64 {
	if p.Side == Left {
		return p.X + p.Width
	}
	return p.X
}

// Bottom returns the lower edge of the paddle.
func (p *Paddle) Bottom() float64 {
	return p.Y + p.Height
}

// Apply moves the paddle at fixed speed in direction dir (-1 up, +1 down,
// 0 hold), clamps it to the table and derives its velocity.
func (p *Paddle) Apply(dir int, dt float64, t Tuning) {
	oldY := p.Y
	if dir != 0 {
		p.Y = fix(t.clampPaddleY(p.Y + float64(dir)*t.PaddleSpeed*dt))
	}
	p.Velocity = fix((p.Y - oldY) / dt)
}
