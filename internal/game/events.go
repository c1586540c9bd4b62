package game

// EventType tags the three gameplay events a match log records.
type EventType string

const (
	EventServe EventType = "serve"
	EventHit   EventType = "hit"
	EventScore EventType = "score"
)

// PaddlePositions are paddle center Ys at the moment of an event.
type PaddlePositions struct {
	Left  float64 `json:"left" msgpack:"left"`
	Right float64 `json:"right" msgpack:"right"`
}

// Of returns the recorded center for a side.
func (pp PaddlePositions) Of(side Side) float64 {
	if side == Left {
		return pp.Left
	}
	return pp.Right
}

// Event is one immutable record in a match log.
//
//	serve: velocity, player (server), paddlePositions
//	hit:   position (at contact), velocity (after bounce), player, paddlePositions
//	score: position, velocity, player (the side that scored)
type Event struct {
	Type            EventType        `json:"type" msgpack:"type"`
	Tick            int              `json:"tick" msgpack:"tick"`
	Position        *Vec2            `json:"position,omitempty" msgpack:"position,omitempty"`
	Velocity        Vec2             `json:"velocity" msgpack:"velocity"`
	Player          Side             `json:"player" msgpack:"player"`
	PaddlePositions *PaddlePositions `json:"paddlePositions,omitempty" msgpack:"paddlePositions,omitempty"`
}

// clone returns a deep copy so callers never alias log internals.
func (e Event) clone() Event {
	if e.Position != nil {
		p := *e.Position
		e.Position = &p
	}
	if e.PaddlePositions != nil {
		pp := *e.PaddlePositions
		e.PaddlePositions = &pp
	}
	return e
}

// Receiver returns the side the ball travels toward after this event.
func (e Event) Receiver() Side {
	return sideToward(e.Velocity.X)
}

func cloneEvents(events []Event) []Event {
	out := make([]Event, len(events))
	for i, e := range events {
		out[i] = e.clone()
	}
	return out
}
