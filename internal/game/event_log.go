package game

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ImportError reports why an imported payload was rejected. Index is the
// offending record, or -1 when the payload as a whole is malformed.
type ImportError struct {
	Index  int
	Reason string
	Err    error
}

func (e *ImportError) Error() string {
	msg := "import: " + e.Reason
	if e.Index >= 0 {
		msg = fmt.Sprintf("import: event %d: %s", e.Index, e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// EventLog is the append-only record of a match. Records are stamped with
// the tick of the clock the log is bound to.
type EventLog struct {
	clock  TickSource
	events []Event
}

// NewEventLog creates an empty log stamped by clock.
func NewEventLog(clock TickSource) *EventLog {
	return &EventLog{clock: clock, events: make([]Event, 0)}
}

func (l *EventLog) now() int {
	if l.clock == nil {
		return 0
	}
	return l.clock.CurrentTick()
}

func (l *EventLog) append(e Event) Event {
	e.Tick = l.now()
	l.events = append(l.events, e)
	return e.clone()
}

// LogServe records a serve. paddles are the paddle centers at serve time.
func (l *EventLog) LogServe(velocity Vec2, server Side, paddles PaddlePositions) Event {
	return l.append(Event{
		Type:            EventServe,
		Velocity:        velocity,
		Player:          server,
		PaddlePositions: &paddles,
	})
}

// LogHit records a paddle contact with the ball's contact position and its
// post-bounce velocity.
func (l *EventLog) LogHit(position, velocity Vec2, player Side, paddles PaddlePositions) Event {
	return l.append(Event{
		Type:            EventHit,
		Position:        &position,
		Velocity:        velocity,
		Player:          player,
		PaddlePositions: &paddles,
	})
}

// LogScore records a point for scorer.
func (l *EventLog) LogScore(position, velocity Vec2, scorer Side) Event {
	return l.append(Event{
		Type:     EventScore,
		Position: &position,
		Velocity: velocity,
		Player:   scorer,
	})
}

// Events returns a copy of the recorded events.
func (l *EventLog) Events() []Event {
	return cloneEvents(l.events)
}

// Len returns the number of recorded events.
func (l *EventLog) Len() int {
	return len(l.events)
}

// At returns a copy of the i-th event.
func (l *EventLog) At(i int) (Event, bool) {
	if i < 0 || i >= len(l.events) {
		return Event{}, false
	}
	return l.events[i].clone(), true
}

// Clear drops every record.
func (l *EventLog) Clear() {
	l.events = make([]Event, 0)
}

// Export serializes the log as a JSON array.
func (l *EventLog) Export() ([]byte, error) {
	return ExportEvents(l.events)
}

// Import replaces the log wholesale. On error the log is left untouched.
func (l *EventLog) Import(data []byte) error {
	events, err := ParseEvents(data)
	if err != nil {
		return err
	}
	l.events = events
	return nil
}

// ExportEvents serializes events as a JSON array.
func ExportEvents(events []Event) ([]byte, error) {
	if events == nil {
		events = []Event{}
	}
	return json.Marshal(events)
}

// eventRecord mirrors Event with every field optional so presence can be
// validated per event type.
type eventRecord struct {
	Type            *EventType       `json:"type"`
	Tick            *int             `json:"tick"`
	Position        *Vec2            `json:"position"`
	Velocity        *Vec2            `json:"velocity"`
	Player          *Side            `json:"player"`
	PaddlePositions *PaddlePositions `json:"paddlePositions"`
}

// ParseEvents decodes and validates an exported log.
func ParseEvents(data []byte) ([]Event, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &ImportError{Index: -1, Reason: "payload is not an array"}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, &ImportError{Index: -1, Reason: "malformed array", Err: err}
	}

	events := make([]Event, 0, len(raw))
	lastTick := 0
	for i, msg := range raw {
		var rec eventRecord
		dec := json.NewDecoder(bytes.NewReader(msg))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&rec); err != nil {
			return nil, &ImportError{Index: i, Reason: "unrecognized record", Err: err}
		}
		e, reason := rec.toEvent()
		if reason != "" {
			return nil, &ImportError{Index: i, Reason: reason}
		}
		if e.Tick < lastTick {
			return nil, &ImportError{Index: i, Reason: fmt.Sprintf("tick %d precedes tick %d", e.Tick, lastTick)}
		}
		lastTick = e.Tick
		events = append(events, e)
	}
	return events, nil
}

func (r eventRecord) toEvent() (Event, string) {
	switch {
	case r.Type == nil:
		return Event{}, "missing type"
	case r.Tick == nil:
		return Event{}, "missing tick"
	case *r.Tick < 0:
		return Event{}, "negative tick"
	case r.Velocity == nil:
		return Event{}, "missing velocity"
	case r.Player == nil || !r.Player.Valid():
		return Event{}, "missing or unknown player"
	}

	e := Event{
		Type:            *r.Type,
		Tick:            *r.Tick,
		Position:        r.Position,
		Velocity:        *r.Velocity,
		Player:          *r.Player,
		PaddlePositions: r.PaddlePositions,
	}
	switch e.Type {
	case EventServe:
		if e.Position != nil {
			return Event{}, "serve must not carry a position"
		}
		if e.PaddlePositions == nil {
			return Event{}, "serve requires paddlePositions"
		}
	case EventHit:
		if e.Position == nil || e.PaddlePositions == nil {
			return Event{}, "hit requires position and paddlePositions"
		}
	case EventScore:
		if e.Position == nil {
			return Event{}, "score requires a position"
		}
		if e.PaddlePositions != nil {
			return Event{}, "score must not carry paddlePositions"
		}
	default:
		return Event{}, fmt.Sprintf("unknown type %q", e.Type)
	}
	return e, ""
}

// Comparison summarizes how closely a replayed log matches the original.
type Comparison struct {
	OriginalCount int  `json:"originalCount"`
	ReplayCount   int  `json:"replayCount"`
	MatchingCount int  `json:"matchingCount"`
	Identical     bool `json:"identical"`
}

// Compare pairs events by index. Hit and score events must agree on position
// within tolerance; serves match whenever the types agree.
func Compare(original, replay []Event, tolerance float64) Comparison {
	c := Comparison{OriginalCount: len(original), ReplayCount: len(replay)}
	n := len(original)
	if len(replay) < n {
		n = len(replay)
	}
	for i := 0; i < n; i++ {
		if eventsMatch(original[i], replay[i], tolerance) {
			c.MatchingCount++
		}
	}
	c.Identical = c.OriginalCount == c.ReplayCount && c.MatchingCount == c.OriginalCount
	return c
}

func eventsMatch(a, b Event, tolerance float64) bool {
	if a.Type != b.Type {
		return false
	}
	if a.Type == EventServe {
		return true
	}
	if a.Position == nil || b.Position == nil {
		return false
	}
	return a.Position.Distance(*b.Position) <= tolerance
}

// CompareWith compares this log (the original) against a replayed one.
func (l *EventLog) CompareWith(replay *EventLog, tolerance float64) Comparison {
	return Compare(l.events, replay.events, tolerance)
}
