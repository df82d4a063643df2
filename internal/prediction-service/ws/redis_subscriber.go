package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/football-predictions/internal/prediction-service/pubsub"
)

// StartRedisSubscriber escuta o canal Redis Pub/Sub e repassa as
// atualizações para os clientes WebSocket desta instância via Hub.
func StartRedisSubscriber(ctx context.Context, r *redis.Client, channel string, hub *Hub, log *zap.Logger) {
	sub := r.Subscribe(ctx, channel)
	ch := sub.Channel()
	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				HandleMessage(hub, []byte(msg.Payload), log)
			}
		}
	}()
}

// HandleMessage decodifica uma mensagem do canal e faz o broadcast
func HandleMessage(hub *Hub, data []byte, log *zap.Logger) {
	var upd pubsub.Update
	if err := json.Unmarshal(data, &upd); err != nil {
		log.Warn("ws subscriber unmarshal error", zap.Error(err))
		return
	}
	if upd.Key == "" {
		log.Warn("ws subscriber message without key")
		return
	}
	hub.Broadcast(upd)
}
