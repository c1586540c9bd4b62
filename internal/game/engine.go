package game

import "math"

// World is the mutable physical state of one match: one ball and two paddles.
// Exactly one Stepper writes to it at a time.
type World struct {
	Tuning Tuning
	Ball   *Ball
	Left   *Paddle
	Right  *Paddle
}

// NewWorld creates a world in its canonical start state.
func NewWorld(t Tuning) *World {
	return &World{
		Tuning: t,
		Ball:   NewBall(t),
		Left:   NewPaddle(Left, t),
		Right:  NewPaddle(Right, t),
	}
}

// Paddle returns the paddle on the given side.
func (w *World) Paddle(side Side) *Paddle {
	if side == Left {
		return w.Left
	}
	return w.Right
}

// Reset returns ball and paddles to the start state.
func (w *World) Reset() {
	w.Ball.Park(w.Tuning)
	w.Left.Reset(w.Tuning)
	w.Right.Reset(w.Tuning)
}

// PaddleCenters returns both paddle centers as recorded in events.
func (w *World) PaddleCenters() PaddlePositions {
	return PaddlePositions{Left: w.Left.Center(), Right: w.Right.Center()}
}

// BallPoint is the ball part of a render snapshot.
type BallPoint struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// PaddlePoint is the paddle part of a render snapshot.
type PaddlePoint struct {
	Y float64 `json:"y" msgpack:"y"`
}

// Snapshot is what the render collaborator blends between.
type Snapshot struct {
	Ball        BallPoint   `json:"ball" msgpack:"ball"`
	LeftPaddle  PaddlePoint `json:"leftPaddle" msgpack:"leftPaddle"`
	RightPaddle PaddlePoint `json:"rightPaddle" msgpack:"rightPaddle"`
}

func (w *World) snapshot() Snapshot {
	return Snapshot{
		Ball:        BallPoint{X: w.Ball.Position.X, Y: w.Ball.Position.Y},
		LeftPaddle:  PaddlePoint{Y: w.Left.Y},
		RightPaddle: PaddlePoint{Y: w.Right.Y},
	}
}

// Lerp blends two snapshots. alpha 0 yields s, alpha 1 yields o.
func (s Snapshot) Lerp(o Snapshot, alpha float64) Snapshot {
	lerp := func(a, b float64) float64 { return a + (b-a)*alpha }
	return Snapshot{
		Ball:        BallPoint{X: lerp(s.Ball.X, o.Ball.X), Y: lerp(s.Ball.Y, o.Ball.Y)},
		LeftPaddle:  PaddlePoint{Y: lerp(s.LeftPaddle.Y, o.LeftPaddle.Y)},
		RightPaddle: PaddlePoint{Y: lerp(s.RightPaddle.Y, o.RightPaddle.Y)},
	}
}

// Stepper runs exactly one discrete physics step. tick is the engine's
// current tick; anything logged during the step is stamped with it.
type Stepper interface {
	Step(tick int)
}

// StepFunc adapts a function to Stepper.
type StepFunc func(tick int)

func (f StepFunc) Step(tick int) { f(tick) }

// TickSource exposes the engine clock to the event log.
type TickSource interface {
	CurrentTick() int
}

// Engine owns the tick clock and decouples simulation from frame rate.
type Engine struct {
	world       *World
	tick        int
	accumulator float64
	prev        Snapshot
	curr        Snapshot
}

// NewEngine creates an engine over the given world at tick 0.
func NewEngine(w *World) *Engine {
	e := &Engine{world: w}
	e.ResetStates()
	return e
}

// World returns the state the engine advances.
func (e *Engine) World() *World {
	return e.world
}

// CurrentTick returns the number of steps run since the last reset.
func (e *Engine) CurrentTick() int {
	return e.tick
}

// Accumulator returns the unconsumed frame time.
func (e *Engine) Accumulator() float64 {
	return e.accumulator
}

// Advance adds frameDuration (clamped to the tuning's maximum frame) to the
// accumulator and runs as many whole ticks as it covers. It returns the
// number of ticks run.
func (e *Engine) Advance(frameDuration float64, s Stepper) int {
	if frameDuration <= 0 || math.IsNaN(frameDuration) {
		return 0
	}
	frameDuration = math.Min(frameDuration, e.world.Tuning.MaxFrameDuration)
	e.accumulator += frameDuration

	steps := 0
	for e.accumulator >= TickDuration {
		e.prev = e.world.snapshot()
		s.Step(e.tick)
		e.curr = e.world.snapshot()
		e.tick++
		e.accumulator -= TickDuration
		steps++
	}
	if e.accumulator < 0 {
		e.accumulator = 0
	}
	return steps
}

// Alpha returns the blend factor between the previous and current snapshot.
func (e *Engine) Alpha() float64 {
	return e.accumulator / TickDuration
}

// Previous returns the snapshot taken before the last step.
func (e *Engine) Previous() Snapshot {
	return e.prev
}

// Current returns the snapshot taken after the last step.
func (e *Engine) Current() Snapshot {
	return e.curr
}

// Interpolated returns the render blend for the current alpha. It never
// feeds back into the simulation.
func (e *Engine) Interpolated() Snapshot {
	return e.prev.Lerp(e.curr, e.Alpha())
}

// ResetStates rewinds the clock to tick 0 and syncs both snapshots.
func (e *Engine) ResetStates() {
	e.tick = 0
	e.accumulator = 0
	e.SyncStatesForDiscontinuity()
}

// SyncStatesForDiscontinuity sets previous and current to the present state
// so a teleport (serve, score reset) does not glide on screen.
func (e *Engine) SyncStatesForDiscontinuity() {
	e.curr = e.world.snapshot()
	e.prev = e.curr
}
