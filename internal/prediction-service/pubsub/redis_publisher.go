package pubsub

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/football-predictions/pkg/contracts/events"
)

// DefaultChannel é o canal usado quando REDIS_PUBSUB_CHANNEL não é informado
const DefaultChannel = "predictions_broadcast"

// Update é o payload padrão para o WS do prediction-service
type Update struct {
	Key     string          `json:"key"`
	Payload json.RawMessage `json:"payload"`
}

// RedisBroadcaster replica resultados calculados para as outras instâncias,
// que repassam aos clientes WebSocket inscritos na chave.
type RedisBroadcaster struct {
	r       *redis.Client
	channel string
}

func NewRedisBroadcaster(r *redis.Client, channel string) *RedisBroadcaster {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBroadcaster{r: r, channel: channel}
}

func (b *RedisBroadcaster) Channel() string { return b.channel }

func (b *RedisBroadcaster) Publish(ctx context.Context, e events.PredictionsComputed) error {
	msg, err := EncodeUpdate(e)
	if err != nil {
		return err
	}
	return b.r.Publish(ctx, b.channel, msg).Err()
}

// EncodeUpdate converte o evento no envelope {key, payload} do canal
func EncodeUpdate(e events.PredictionsComputed) ([]byte, error) {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Update{Key: e.Key, Payload: payload})
}
