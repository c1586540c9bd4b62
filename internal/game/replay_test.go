package game

import (
	"errors"
	"testing"
)

func replayAll(t *testing.T, tuning Tuning, events []Event) *Session {
	t.Helper()
	s := newTestSession(t, tuning, nil)
	if err := s.StartReplay(events); err != nil {
		t.Fatalf("StartReplay: %v", err)
	}
	last := events[len(events)-1].Tick - events[0].Tick
	runUntilIdle(t, s, last+10)
	return s
}

func TestReplayScriptedMatch(t *testing.T) {
	tuning := straightTuning(2)
	live := newTestSession(t, tuning, StaticInput{KeyRightUp: true})
	live.NewGame(7)
	runUntilIdle(t, live, 1000)
	original := live.Log().Events()

	s := replayAll(t, tuning, original)
	c := Compare(original, s.Replayer().Reproduced().Events(), tuning.MatchTolerance)
	if !c.Identical {
		t.Errorf("replay comparison = %+v", c)
	}
	if s.Score() != live.Score() {
		t.Errorf("replayed score %+v, live %+v", s.Score(), live.Score())
	}
	if w, _ := s.Winner(); w != Left {
		t.Errorf("replayed winner = %q, want left", w)
	}
}

func TestReplayDodgesScoredBall(t *testing.T) {
	tuning := straightTuning(1)
	live := newTestSession(t, tuning, StaticInput{KeyRightUp: true})
	live.NewGame(1)
	runUntilIdle(t, live, 1000)

	s := newTestSession(t, tuning, nil)
	if err := s.StartReplay(live.Log().Events()); err != nil {
		t.Fatalf("StartReplay: %v", err)
	}
	// tick 0 consumes the serve, tick 1 sees the centered right paddle in the way
	s.Advance(TickDuration)
	s.Advance(TickDuration)

	m, ok := s.Replayer().Pending(Right)
	if !ok {
		t.Fatal("no pending move for the right paddle")
	}
	if m.Kind != MoveMiss || m.TargetY != 92 || m.EventIndex != 1 {
		t.Errorf("pending move = %+v, want miss to 92 for event 1", m)
	}
	if _, ok := s.Replayer().Pending(Left); ok {
		t.Errorf("serving side has a pending move without a hit to stage for")
	}
}

func TestReplayStagesInterceptAfterServe(t *testing.T) {
	tuning := DefaultTuning()
	events := []Event{
		{Type: EventServe, Tick: 0, Velocity: NewVec2(300, 0), Player: Left, PaddlePositions: &PaddlePositions{Left: 200, Right: 200}},
		{Type: EventHit, Tick: 71, Position: &Vec2{X: 752, Y: 200}, Velocity: NewVec2(-315, 0), Player: Right, PaddlePositions: &PaddlePositions{Left: 150, Right: 200}},
		{Type: EventScore, Tick: 216, Position: &Vec2{X: -9.25, Y: 200}, Velocity: NewVec2(-315, 0), Player: Right},
	}

	s := newTestSession(t, tuning, nil)
	if err := s.StartReplay(events); err != nil {
		t.Fatalf("StartReplay: %v", err)
	}
	s.Advance(TickDuration)

	r := s.Replayer()
	hit, ok := r.Pending(Right)
	if !ok || hit.Kind != MoveHit || hit.EventIndex != 1 || hit.TargetY != 160 {
		t.Errorf("receiver move = %+v %v, want hit to 160 for event 1", hit, ok)
	}
	stage, ok := r.Pending(Left)
	if !ok || stage.Kind != MoveStageAfterServe || stage.TargetY != 110 {
		t.Errorf("server move = %+v %v, want stage-after-serve to 110", stage, ok)
	}

	// the waypoint is dropped once the left paddle gets there
	for i := 0; i < 20; i++ {
		s.Advance(TickDuration)
	}
	if _, ok := r.Pending(Left); ok {
		t.Errorf("reached waypoint still pending")
	}
	if s.World().Left.Y != 110 {
		t.Errorf("left paddle y = %.4f, want 110", s.World().Left.Y)
	}

	runUntilIdle(t, s, 500)
	c := Compare(events, r.Reproduced().Events(), tuning.MatchTolerance)
	if !c.Identical {
		t.Errorf("replay comparison = %+v, reproduced %+v", c, r.Reproduced().Events())
	}
}

func TestReplayInterceptReplacesUnreachedWaypoint(t *testing.T) {
	tuning := DefaultTuning()
	events := []Event{
		{Type: EventServe, Tick: 0, Velocity: NewVec2(300, 0), Player: Left, PaddlePositions: &PaddlePositions{Left: 200, Right: 200}},
		{Type: EventHit, Tick: 5, Position: &Vec2{X: 752, Y: 200}, Velocity: NewVec2(-315, 0), Player: Right, PaddlePositions: &PaddlePositions{Left: 390, Right: 200}},
		{Type: EventHit, Tick: 120, Position: &Vec2{X: 48, Y: 200}, Velocity: NewVec2(330, 0), Player: Left, PaddlePositions: &PaddlePositions{Left: 200, Right: 200}},
	}

	s := newTestSession(t, tuning, nil)
	if err := s.StartReplay(events); err != nil {
		t.Fatalf("StartReplay: %v", err)
	}
	r := s.Replayer()
	s.Advance(TickDuration)
	if m, ok := r.Pending(Left); !ok || m.Kind != MoveStageAfterServe || m.TargetY != 320 {
		t.Fatalf("server move = %+v %v, want stage-after-serve to 320", m, ok)
	}

	for i := 0; i < 5; i++ {
		s.Advance(TickDuration)
	}
	if s.World().Left.Y >= 320 {
		t.Fatalf("left paddle already reached its waypoint at %.4f", s.World().Left.Y)
	}
	m, ok := r.Pending(Left)
	if !ok || m.Kind != MoveHit || m.EventIndex != 2 || m.TargetY != 160 {
		t.Errorf("left move after right hit = %+v %v, want hit to 160 for event 2", m, ok)
	}
}

func TestReplayFidelityHeadless(t *testing.T) {
	tuning := DefaultTuning()
	for _, seed := range []int64{1, 2, 42} {
		res, err := RunHeadless(tuning, seed, 100000)
		if err != nil {
			t.Fatalf("seed %d: RunHeadless: %v", seed, err)
		}

		s := replayAll(t, tuning, res.Events)
		reproduced := s.Replayer().Reproduced()
		c := Compare(res.Events, reproduced.Events(), tuning.MatchTolerance)
		if !c.Identical {
			t.Errorf("seed %d: replay comparison = %+v", seed, c)
			continue
		}
		if s.Score() != res.Score {
			t.Errorf("seed %d: replayed score %+v, live %+v", seed, s.Score(), res.Score)
		}
		for i, e := range reproduced.Events() {
			if e.Tick != res.Events[i].Tick {
				t.Errorf("seed %d: event %d replayed at tick %d, logged at %d", seed, i, e.Tick, res.Events[i].Tick)
				break
			}
		}
	}
}

func TestReplayFidelityAcrossSeeds(t *testing.T) {
	if testing.Short() {
		t.Skip("replays 300 headless matches")
	}
	tuning := DefaultTuning()
	var failed []int64
	for seed := int64(0); seed < 300; seed++ {
		res, err := RunHeadless(tuning, seed, 100000)
		if err != nil {
			t.Fatalf("seed %d: RunHeadless: %v", seed, err)
		}
		c, err := ReplayLog(tuning, res.Events)
		if err != nil {
			t.Fatalf("seed %d: ReplayLog: %v", seed, err)
		}
		if !c.Identical {
			failed = append(failed, seed)
		}
	}
	if len(failed) > 0 {
		t.Errorf("%d/300 seeds did not replay identically: %v", len(failed), failed)
	}
}

func TestReplayDodgesBallReachingFarEdgeOfFace(t *testing.T) {
	tuning := DefaultTuning()
	// the ball crosses ContactX at y=152 but touches a paddle at 172 one
	// tick later, 5px behind the face
	events := []Event{
		{Type: EventServe, Tick: 0, Velocity: NewVec2(-300, 0), Player: Right, PaddlePositions: &PaddlePositions{Left: 200, Right: 212}},
		{Type: EventHit, Tick: 1, Position: &Vec2{X: 700, Y: 100}, Velocity: NewVec2(300, 300), Player: Left, PaddlePositions: &PaddlePositions{Left: 200, Right: 212}},
		{Type: EventScore, Tick: 30, Position: &Vec2{X: 810, Y: 245}, Velocity: NewVec2(300, 300), Player: Left},
	}

	s := newTestSession(t, tuning, nil)
	if err := s.StartReplay(events); err != nil {
		t.Fatalf("StartReplay: %v", err)
	}
	s.Advance(TickDuration)
	s.Advance(TickDuration)
	s.Advance(TickDuration)

	m, ok := s.Replayer().Pending(Right)
	if !ok || m.Kind != MoveMiss || m.EventIndex != 2 {
		t.Fatalf("right pending move = %+v %v, want a miss for event 2", m, ok)
	}
	runUntilIdle(t, s, 200)
	for _, e := range s.Replayer().Reproduced().Events() {
		if e.Type == EventHit && e.Player == Right {
			t.Errorf("right paddle returned a ball the log scores past it: %+v", e)
		}
	}
}

func TestReplayRebasesTicks(t *testing.T) {
	tuning := straightTuning(1)
	live := newTestSession(t, tuning, StaticInput{KeyRightUp: true})
	live.NewGame(1)
	runUntilIdle(t, live, 1000)

	events := live.Log().Events()
	for i := range events {
		events[i].Tick += 5000
	}
	s := replayAll(t, tuning, events)
	got := s.Replayer().Reproduced().Events()
	if len(got) != 2 || got[1].Tick != events[1].Tick {
		t.Errorf("reproduced %+v, want score at tick %d", got, events[1].Tick)
	}
}

func TestReplayStop(t *testing.T) {
	res, err := RunHeadless(DefaultTuning(), 9, 100000)
	if err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}
	s := newTestSession(t, DefaultTuning(), nil)
	if err := s.StartReplay(res.Events); err != nil {
		t.Fatalf("StartReplay: %v", err)
	}
	s.Advance(0.1)
	s.Stop()

	if s.Replayer().Active() {
		t.Errorf("replayer still active after Stop")
	}
	if s.Mode() != ModeIdle {
		t.Errorf("mode = %s, want idle", s.Mode())
	}
	cursor := s.Replayer().Cursor()
	s.Advance(0.1)
	if s.Replayer().Cursor() != cursor {
		t.Errorf("stopped replay consumed events")
	}
}

func TestStartReplayRejectsEmptyLog(t *testing.T) {
	s := newTestSession(t, DefaultTuning(), nil)
	if err := s.StartReplay(nil); !errors.Is(err, ErrEmptyLog) {
		t.Errorf("StartReplay(nil) = %v, want ErrEmptyLog", err)
	}
	if s.Mode() != ModeIdle {
		t.Errorf("mode = %s, want idle", s.Mode())
	}
}

func TestReplayLog(t *testing.T) {
	tuning := DefaultTuning()
	res, err := RunHeadless(tuning, 11, 100000)
	if err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}
	c, err := ReplayLog(tuning, res.Events)
	if err != nil {
		t.Fatalf("ReplayLog: %v", err)
	}
	if !c.Identical || c.OriginalCount != len(res.Events) {
		t.Errorf("ReplayLog = %+v", c)
	}

	// a log whose score contradicts the physics does not verify
	tampered := cloneEvents(res.Events)
	last := &tampered[len(tampered)-1]
	moved := last.Position.Plus(NewVec2(0, 100))
	last.Position = &moved
	c, _ = ReplayLog(tuning, tampered)
	if c.Identical {
		t.Errorf("tampered log verified as identical")
	}

	if _, err := ReplayLog(tuning, nil); !errors.Is(err, ErrEmptyLog) {
		t.Errorf("ReplayLog(nil) error = %v", err)
	}
}
