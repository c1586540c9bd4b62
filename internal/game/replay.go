package game

import "log"

// offsetClock stamps replayed events with the tick base of the source log so
// a faithful replay reproduces the original ticks.
type offsetClock struct {
	src  TickSource
	base int
}

func (c offsetClock) CurrentTick() int {
	return c.src.CurrentTick() + c.base
}

// Replayer drives the world from a recorded log. The log only says where the
// ball was at each serve, hit and score, so paddle motion between events is
// reconstructed by steering each paddle toward a pending target while the
// ball itself runs on the live physics.
type Replayer struct {
	engine     *Engine
	events     []Event
	base       int
	cursor     int
	pending    map[Side]*PendingMove
	reproduced *EventLog
	active     bool
	lastScore  int
}

// NewReplayer prepares a replay of events over the engine's world. The world
// and clock are reset; the first Step consumes any event logged at the first
// tick of the source log.
func NewReplayer(engine *Engine, events []Event) *Replayer {
	r := &Replayer{
		engine:    engine,
		events:    cloneEvents(events),
		pending:   make(map[Side]*PendingMove, 2),
		lastScore: -1,
	}
	if len(r.events) > 0 {
		r.base = r.events[0].Tick
	}
	engine.World().Reset()
	engine.ResetStates()
	r.reproduced = NewEventLog(offsetClock{src: engine, base: r.base})
	r.active = len(r.events) > 0
	log.Printf("[REPLAY] Starting replay of %d events (base tick %d)", len(r.events), r.base)
	return r
}

// Active reports whether events remain to be consumed.
func (r *Replayer) Active() bool {
	return r.active
}

// Stop abandons the replay.
func (r *Replayer) Stop() {
	if r.active {
		log.Printf("[REPLAY] Stopped at event %d/%d", r.cursor, len(r.events))
	}
	r.active = false
}

// Cursor returns the index of the next unconsumed event.
func (r *Replayer) Cursor() int {
	return r.cursor
}

// Pending returns a copy of the pending move for side, if any.
func (r *Replayer) Pending(side Side) (PendingMove, bool) {
	m := r.pending[side]
	if m == nil {
		return PendingMove{}, false
	}
	return *m, true
}

// Reproduced returns the log of events the replay physics produced.
func (r *Replayer) Reproduced() *EventLog {
	return r.reproduced
}

// LastScore returns the most recently consumed score event and its index in
// the source log.
func (r *Replayer) LastScore() (Event, int, bool) {
	if r.lastScore < 0 {
		return Event{}, -1, false
	}
	return r.events[r.lastScore].clone(), r.lastScore, true
}

// Step advances the replay by one tick.
func (r *Replayer) Step(tick int) {
	if !r.active {
		return
	}
	r.avoidScore()
	r.movePaddles()
	r.stepBall()
	r.consume(tick)

	if r.cursor >= len(r.events) {
		r.active = false
		log.Printf("[REPLAY] Finished: %d events consumed, %d reproduced", len(r.events), r.reproduced.Len())
	}
}

func (r *Replayer) world() *World {
	return r.engine.World()
}

// avoidScore makes the side the ball is heading to dodge it when the log says
// the rally ends in a score without that side touching the ball again.
func (r *Replayer) avoidScore() {
	w := r.world()
	b := w.Ball
	if !b.Active || b.Velocity.X == 0 {
		return
	}
	side := sideToward(b.Velocity.X)

	scoreAt := -1
	for i := r.cursor; i < len(r.events); i++ {
		e := r.events[i]
		if e.Type == EventHit && e.Player == side {
			return
		}
		if e.Type == EventScore {
			scoreAt = i
			break
		}
	}
	if scoreAt < 0 {
		return
	}

	p := w.Paddle(side)
	current := r.pending[side]
	if current != nil && current.Kind == MoveMiss && !WouldIntercept(b, side, current.TargetY, w.Tuning) {
		return
	}
	blocking := WouldIntercept(b, side, p.Y, w.Tuning) ||
		(current != nil && WouldInterceptSweep(b, side, p.Y, current.TargetY, w.Tuning))
	if !blocking {
		return
	}
	r.pending[side] = &PendingMove{
		TargetY:    ComputeMissTarget(b, side, p.Y, w.Tuning),
		EventIndex: scoreAt,
		Kind:       MoveMiss,
	}
}

func (r *Replayer) movePaddles() {
	w := r.world()
	for _, side := range Sides {
		p := w.Paddle(side)
		m := r.pending[side]
		if m == nil {
			p.Velocity = 0
			continue
		}
		if MoveToward(p, m.TargetY, TickDuration, w.Tuning) {
			m.Executed = true
			if m.Kind.Waypoint() {
				delete(r.pending, side)
			}
		}
	}
}

func (r *Replayer) stepBall() {
	w := r.world()
	res := StepBall(w, TickDuration)
	switch {
	case res.Hit:
		r.reproduced.LogHit(w.Ball.Position, w.Ball.Velocity, res.HitBy, w.PaddleCenters())
	case res.Scored:
		r.reproduced.LogScore(res.Contact, w.Ball.Velocity, res.Scorer)
	}
}

func (r *Replayer) consume(tick int) {
	for r.cursor < len(r.events) && r.events[r.cursor].Tick-r.base <= tick {
		idx := r.cursor
		e := r.events[idx]
		r.cursor++
		switch e.Type {
		case EventServe:
			r.onServe(idx, e)
		case EventHit:
			r.onHit(e)
		case EventScore:
			r.onScore(idx, e)
		}
	}
}

// nextHitBy finds side's next hit from index from within the current rally.
func (r *Replayer) nextHitBy(side Side, from int) (Event, int, bool) {
	for i := from; i < len(r.events); i++ {
		e := r.events[i]
		switch e.Type {
		case EventServe, EventScore:
			return Event{}, -1, false
		case EventHit:
			if e.Player == side {
				return e, i, true
			}
		}
	}
	return Event{}, -1, false
}

// interceptFor builds the move that puts side's paddle where the hit at
// index idx needs it.
func (r *Replayer) interceptFor(hit Event, idx int) *PendingMove {
	return &PendingMove{
		TargetY:    InverseContact(hit.Velocity, hit.Position.Y, r.world().Tuning),
		EventIndex: idx,
		Kind:       MoveHit,
	}
}

func (r *Replayer) stageToward(hit Event, idx int, side Side, kind MoveKind) *PendingMove {
	t := r.world().Tuning
	return &PendingMove{
		TargetY:    t.clampPaddleY(hit.PaddlePositions.Of(side) - t.PaddleHeight/2),
		EventIndex: idx,
		Kind:       kind,
	}
}

func (r *Replayer) onServe(idx int, e Event) {
	w := r.world()
	delete(r.pending, Left)
	delete(r.pending, Right)

	if idx == 0 && e.PaddlePositions != nil {
		w.Left.SetCenter(e.PaddlePositions.Left, w.Tuning)
		w.Right.SetCenter(e.PaddlePositions.Right, w.Tuning)
	}

	receiver := e.Receiver()
	if hit, hitIdx, ok := r.nextHitBy(receiver, r.cursor); ok {
		r.pending[receiver] = r.interceptFor(hit, hitIdx)
		r.pending[e.Player] = r.stageToward(hit, hitIdx, e.Player, MoveStageAfterServe)
	}

	w.Ball.Launch(w.Tuning, e.Velocity)
	r.reproduced.LogServe(e.Velocity, e.Player, w.PaddleCenters())
	r.engine.SyncStatesForDiscontinuity()
}

func (r *Replayer) onHit(e Event) {
	w := r.world()
	hitter := e.Player
	other := hitter.Opposite()
	delete(r.pending, hitter)

	if next, nextIdx, ok := r.nextHitBy(other, r.cursor); ok {
		r.pending[hitter] = r.stageToward(next, nextIdx, hitter, MoveStageForNextHit)
		// Any move other than this exact intercept is replaced, including an
		// unreached waypoint left from the other side's own last hit: that
		// waypoint aims at where this hit was logged, which is now in the past.
		if m := r.pending[other]; m == nil || m.EventIndex != nextIdx || m.Kind != MoveHit {
			r.pending[other] = r.interceptFor(next, nextIdx)
		}
	}

	w.Ball.Position = *e.Position
	w.Ball.Velocity = e.Velocity
	w.Ball.Active = true
}

func (r *Replayer) onScore(idx int, e Event) {
	w := r.world()
	delete(r.pending, e.Player.Opposite())

	w.Ball.Park(w.Tuning)
	r.engine.SyncStatesForDiscontinuity()
	r.lastScore = idx
}

// ReplayLog replays events on a fresh session and compares what the replay
// physics reproduced against them.
func ReplayLog(t Tuning, events []Event) (Comparison, error) {
	s, err := NewSession(t, nil)
	if err != nil {
		return Comparison{}, err
	}
	if err := s.StartReplay(events); err != nil {
		return Comparison{}, err
	}
	for budget := events[len(events)-1].Tick - events[0].Tick + 1; s.Mode() == ModeReplay && budget >= 0; budget-- {
		s.Advance(TickDuration)
	}
	s.Stop()
	return Compare(events, s.Replayer().Reproduced().Events(), t.MatchTolerance), nil
}
