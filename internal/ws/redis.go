package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/playmatatu/pong/internal/archive"
	"github.com/redis/go-redis/v9"
)

// StartNoticeSubscriber forwards archive notices from redis to the spectators
// of the match they concern. It returns once subscribed.
func StartNoticeSubscriber(ctx context.Context, rdb *redis.Client, hub *Hub) {
	if rdb == nil {
		log.Println("[WS] Redis client not set; notice subscriber not started")
		return
	}

	pubsub := rdb.Subscribe(ctx, archive.EventsChannel)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Printf("[WS] %s subscriber started", archive.EventsChannel)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				dispatchNotice(hub, msg.Payload)
			}
		}
	}()
}

func dispatchNotice(hub *Hub, payload string) {
	var n archive.Notice
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		log.Printf("[WS] invalid notice payload: %v", err)
		return
	}
	if n.MatchID == "" {
		log.Printf("[WS] notice %s without match id ignored", n.Type)
		return
	}

	switch n.Type {
	case archive.NoticeArchived, archive.NoticeVerified, archive.NoticeDeleted:
	default:
		log.Printf("[WS] unknown notice type: %s", n.Type)
		return
	}

	if size := hub.RoomSize(n.MatchID); size > 0 {
		log.Printf("[WS] broadcasting %s for match %s (room_size=%d)", n.Type, n.MatchID, size)
		hub.BroadcastToMatch(n.MatchID, Message{Type: MessageNotice, Notice: &n})
	}
}
