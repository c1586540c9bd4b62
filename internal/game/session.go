package game

import (
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
)

// Mode selects which component owns the world.
type Mode string

const (
	ModeIdle   Mode = "idle"
	ModeLive   Mode = "live"
	ModeReplay Mode = "replay"
)

// ErrEmptyLog is returned when a replay is requested for a log with no events.
var ErrEmptyLog = errors.New("event log is empty")

// Scoreboard holds points per side.
type Scoreboard struct {
	Left  int `json:"left" msgpack:"left"`
	Right int `json:"right" msgpack:"right"`
}

// Of returns the points of side.
func (s Scoreboard) Of(side Side) int {
	if side == Left {
		return s.Left
	}
	return s.Right
}

func (s *Scoreboard) add(side Side) {
	if side == Left {
		s.Left++
	} else {
		s.Right++
	}
}

// Session is the explicit context of one table: world, clock, log, score and
// the mode deciding who writes to the world. It is not safe for concurrent
// use; each driver owns its own session.
type Session struct {
	world  *World
	engine *Engine
	log    *EventLog
	score  Scoreboard
	mode   Mode
	input  InputSource

	rng     *rand.Rand
	serveAt int
	server  Side
	winner  Side

	replayer  *Replayer
	seenScore int
}

// NewSession creates an idle session. input drives the paddles in live play
// and may be nil for a session that only replays.
func NewSession(t Tuning, input InputSource) (*Session, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	w := NewWorld(t)
	engine := NewEngine(w)
	return &Session{
		world:  w,
		engine: engine,
		log:    NewEventLog(engine),
		mode:   ModeIdle,
		input:  input,
		rng:    rand.New(rand.NewSource(0)),
	}, nil
}

func (s *Session) World() *World       { return s.world }
func (s *Session) Engine() *Engine     { return s.engine }
func (s *Session) Log() *EventLog      { return s.log }
func (s *Session) Mode() Mode          { return s.mode }
func (s *Session) Score() Scoreboard   { return s.score }
func (s *Session) Replayer() *Replayer { return s.replayer }

// SetInput swaps the live input source.
func (s *Session) SetInput(input InputSource) {
	s.input = input
}

// Winner returns the side that reached the winning score, if any.
func (s *Session) Winner() (Side, bool) {
	return s.winner, s.winner != ""
}

// NewGame resets everything and starts live play. seed fixes every serve
// angle of the match.
func (s *Session) NewGame(seed int64) {
	s.stopReplay()
	s.world.Reset()
	s.engine.ResetStates()
	s.log.Clear()
	s.score = Scoreboard{}
	s.winner = ""
	s.rng = rand.New(rand.NewSource(seed))
	s.server = Left
	s.serveAt = s.engine.CurrentTick()
	s.mode = ModeLive
	log.Printf("[GAME] New game (seed %d, first to %d)", seed, s.world.Tuning.WinningScore)
}

// StartReplay hands the world to a replayer over events. The score restarts
// from zero and follows the replayed score events.
func (s *Session) StartReplay(events []Event) error {
	if len(events) == 0 {
		return ErrEmptyLog
	}
	s.stopReplay()
	s.replayer = NewReplayer(s.engine, events)
	s.score = Scoreboard{}
	s.winner = ""
	s.seenScore = -1
	s.mode = ModeReplay
	return nil
}

// Stop ends live play or replay at the current tick boundary.
func (s *Session) Stop() {
	s.stopReplay()
	s.mode = ModeIdle
}

func (s *Session) stopReplay() {
	if s.replayer != nil {
		s.replayer.Stop()
	}
}

// Advance feeds one frame to the engine under the current mode and returns
// the number of ticks run.
func (s *Session) Advance(frameDuration float64) int {
	switch s.mode {
	case ModeLive:
		return s.engine.Advance(frameDuration, StepFunc(s.liveStep))
	case ModeReplay:
		return s.engine.Advance(frameDuration, StepFunc(s.replayStep))
	}
	return 0
}

func (s *Session) liveStep(tick int) {
	if s.mode != ModeLive {
		return
	}
	w := s.world
	t := w.Tuning

	keys := KeyState{}
	if s.input != nil {
		keys = s.input.Keys(tick, w)
	}
	w.Left.Apply(keys.Direction(Left), TickDuration, t)
	w.Right.Apply(keys.Direction(Right), TickDuration, t)

	res := StepBall(w, TickDuration)
	switch {
	case res.Hit:
		s.log.LogHit(w.Ball.Position, w.Ball.Velocity, res.HitBy, w.PaddleCenters())
	case res.Scored:
		s.log.LogScore(res.Contact, w.Ball.Velocity, res.Scorer)
		w.Ball.Park(t)
		s.engine.SyncStatesForDiscontinuity()
		if s.applyScore(res.Scorer) {
			s.mode = ModeIdle
			return
		}
		s.server = res.Scorer
		s.serveAt = tick + t.ServeDelayTicks
	}

	if !w.Ball.Active && tick >= s.serveAt {
		s.serve()
	}
}

func (s *Session) serve() {
	w := s.world
	t := w.Tuning
	angle := (s.rng.Float64()*2 - 1) * t.ServeAngleDeg * math.Pi / 180
	dir := 1.0
	if s.server == Right {
		dir = -1
	}
	v := NewVec2(dir*t.ServeSpeed*math.Cos(angle), t.ServeSpeed*math.Sin(angle))
	w.Ball.Launch(t, v)
	s.log.LogServe(v, s.server, w.PaddleCenters())
	s.engine.SyncStatesForDiscontinuity()
}

// applyScore credits scorer and reports whether that decided the game.
func (s *Session) applyScore(scorer Side) bool {
	s.score.add(scorer)
	if s.winner == "" && s.score.Of(scorer) >= s.world.Tuning.WinningScore {
		s.winner = scorer
		log.Printf("[GAME] %s wins %d-%d", scorer, s.score.Left, s.score.Right)
		return true
	}
	return false
}

func (s *Session) replayStep(tick int) {
	r := s.replayer
	if s.mode != ModeReplay || r == nil {
		return
	}
	r.Step(tick)
	if e, idx, ok := r.LastScore(); ok && idx != s.seenScore {
		s.seenScore = idx
		s.applyScore(e.Player)
	}
	if !r.Active() {
		s.mode = ModeIdle
	}
}

// HeadlessResult is the outcome of a bot-vs-bot match.
type HeadlessResult struct {
	Seed   int64      `json:"seed"`
	Ticks  int        `json:"ticks"`
	Score  Scoreboard `json:"score"`
	Winner Side       `json:"winner,omitempty"`
	Events []Event    `json:"events"`
}

// RunHeadless plays a complete bot-vs-bot match at one tick per frame and
// returns its log. maxTicks bounds a match that never reaches the winning
// score.
func RunHeadless(t Tuning, seed int64, maxTicks int) (HeadlessResult, error) {
	if maxTicks <= 0 {
		return HeadlessResult{}, fmt.Errorf("max ticks must be positive, got %d", maxTicks)
	}
	s, err := NewSession(t, NewBotPair(seed, DefaultMissChance))
	if err != nil {
		return HeadlessResult{}, err
	}
	s.NewGame(seed)
	for s.Mode() == ModeLive && s.engine.CurrentTick() < maxTicks {
		s.Advance(TickDuration)
	}
	if s.Mode() == ModeLive {
		s.Stop()
		log.Printf("[GAME] Headless match %d stopped at tick limit %d", seed, maxTicks)
	}
	winner, _ := s.Winner()
	return HeadlessResult{
		Seed:   seed,
		Ticks:  s.engine.CurrentTick(),
		Score:  s.score,
		Winner: winner,
		Events: s.log.Events(),
	}, nil
}
