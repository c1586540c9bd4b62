package ws

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/playmatatu/pong/internal/archive"
	"github.com/playmatatu/pong/internal/game"
)

// Playback speed bounds for the speed query parameter.
const (
	MinSpeed = 0.25
	MaxSpeed = 16
)

// EventSource loads archived logs. *archive.Service satisfies it.
type EventSource interface {
	Events(ctx context.Context, id string) ([]game.Event, error)
	Tuning() game.Tuning
}

// ServeReplay upgrades to a websocket that streams the replay of match :id
// as msgpack frames at fps, then stays open for archive notices.
func ServeReplay(src EventSource, hub *Hub, fps int) gin.HandlerFunc {
	return func(c *gin.Context) {
		matchID := c.Param("id")

		speed := 1.0
		if raw := c.Query("speed"); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil || v < MinSpeed || v > MaxSpeed {
				c.JSON(http.StatusBadRequest, gin.H{"error": "speed must be between 0.25 and 16"})
				return
			}
			speed = v
		}

		events, err := src.Events(c.Request.Context(), matchID)
		if err != nil {
			switch {
			case errors.Is(err, archive.ErrInvalidMatchID):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.Is(err, archive.ErrMatchNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			default:
				log.Printf("[WS] Failed to load match %s: %v", matchID, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load match"})
			}
			return
		}
		stream, err := NewStream(src.Tuning(), events)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] Upgrade error: %v", err)
			return
		}

		client := newClient(conn, uuid.NewString(), matchID)
		if !hub.join(client) {
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump(hub)
		go client.streamReplay(stream, fps, speed)
	}
}

// streamReplay advances the stream once per frame interval until the log is
// exhausted or the client goes away.
func (c *Client) streamReplay(st *Stream, fps int, speed float64) {
	if fps <= 0 {
		fps = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	frameDuration := speed / float64(fps)

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
		}

		f, running := st.Next(frameDuration)
		data, err := EncodeMessage(Message{Type: MessageFrame, Frame: &f})
		if err != nil {
			log.Printf("[WS] Error encoding frame for spectator %s: %v", c.id, err)
			return
		}
		if !c.enqueue(data) {
			return
		}
		if running {
			continue
		}

		score := st.Score()
		data, err = EncodeMessage(Message{Type: MessageDone, Score: &score})
		if err != nil {
			log.Printf("[WS] Error encoding replay_done for spectator %s: %v", c.id, err)
			return
		}
		c.enqueue(data)
		log.Printf("[WS] Replay of match %s finished for spectator %s at tick %d (%d-%d)", c.matchID, c.id, f.Tick, score.Left, score.Right)
		return
	}
}
