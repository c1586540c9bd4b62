package ws

import (
	"fmt"

	"github.com/playmatatu/pong/internal/archive"
	"github.com/playmatatu/pong/internal/game"
	"github.com/vmihailenco/msgpack/v5"
)

// Message types sent to spectators.
const (
	MessageFrame  = "frame"
	MessageDone   = "replay_done"
	MessageNotice = "notice"
	MessageError  = "error"
)

// Message is the msgpack envelope of every binary frame on the socket.
type Message struct {
	Type   string           `msgpack:"type"`
	Frame  *Frame           `msgpack:"frame,omitempty"`
	Notice *archive.Notice  `msgpack:"notice,omitempty"`
	Score  *game.Scoreboard `msgpack:"score,omitempty"`
	Error  string           `msgpack:"error,omitempty"`
}

// Frame carries the two snapshots a renderer interpolates between, plus the
// events reproduced since the previous frame.
type Frame struct {
	Tick   int             `msgpack:"tick"`
	Alpha  float64         `msgpack:"alpha"`
	Prev   game.Snapshot   `msgpack:"prev"`
	Curr   game.Snapshot   `msgpack:"curr"`
	Score  game.Scoreboard `msgpack:"score"`
	Events []game.Event    `msgpack:"events,omitempty"`
}

// EncodeMessage packs m for a binary websocket message.
func EncodeMessage(m Message) ([]byte, error) {
	return msgpack.Marshal(&m)
}

// DecodeMessage unpacks a binary websocket message.
func DecodeMessage(data []byte) (Message, error) {
	var m Message
	if err := msgpack.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("failed to decode message: %w", err)
	}
	return m, nil
}

// Stream replays one archived log frame by frame on its own session.
type Stream struct {
	session *game.Session
	sent    int
}

// NewStream starts a replay of events under tuning t.
func NewStream(t game.Tuning, events []game.Event) (*Stream, error) {
	s, err := game.NewSession(t, nil)
	if err != nil {
		return nil, err
	}
	if err := s.StartReplay(events); err != nil {
		return nil, err
	}
	return &Stream{session: s}, nil
}

// Next advances the replay by frameDuration seconds. ok is false once the
// replay has consumed the whole log; the returned frame is still valid.
func (st *Stream) Next(frameDuration float64) (f Frame, ok bool) {
	s := st.session
	s.Advance(frameDuration)
	eng := s.Engine()
	f = Frame{
		Tick:  eng.CurrentTick(),
		Alpha: eng.Alpha(),
		Prev:  eng.Previous(),
		Curr:  eng.Current(),
		Score: s.Score(),
	}
	if r := s.Replayer(); r != nil {
		events := r.Reproduced().Events()
		if len(events) > st.sent {
			f.Events = events[st.sent:]
			st.sent = len(events)
		}
	}
	return f, s.Mode() == game.ModeReplay
}

// Score is the score replayed so far.
func (st *Stream) Score() game.Scoreboard {
	return st.session.Score()
}
