package consumer

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/football-predictions/pkg/contracts/events"
)

// MessageReader é o subconjunto do kafka.Reader usado pelo Processor
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// Summary é a última computação vista para uma chave data+ligas
type Summary struct {
	Key        string    `json:"key"`
	Matches    int       `json:"matches"`
	Skipped    int       `json:"skipped"`
	Source     string    `json:"source"`
	ComputedAt time.Time `json:"computedAt"`
	Seen       int       `json:"seen"` // quantas vezes a chave foi recalculada
}

// Processor consome eventos predictions_computed e mantém um resumo por chave.
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa.
type Processor struct {
	Log    *zap.Logger
	Reader MessageReader

	mu      sync.RWMutex
	summary map[string]Summary

	OnConsumed func(ev events.PredictionsComputed)
	OnError    func(stage string)

	// Backoff entre falhas de leitura
	Backoff time.Duration
}

// Run inicia o loop principal de consumo até o contexto ser cancelado
func (p *Processor) Run(ctx context.Context) error {
	backoff := p.Backoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			p.fail("read")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			continue
		}
		p.Handle(m.Value)
	}
}

// Handle processa uma mensagem já lida do tópico
func (p *Processor) Handle(value []byte) {
	var ev events.PredictionsComputed
	if err := json.Unmarshal(value, &ev); err != nil {
		p.Log.Warn("invalid message", zap.Error(err))
		p.fail("decode")
		return
	}
	if ev.Key == "" {
		p.Log.Warn("event without key", zap.String("event_id", ev.EventID))
		p.fail("validate")
		return
	}

	p.mu.Lock()
	if p.summary == nil {
		p.summary = make(map[string]Summary)
	}
	prev := p.summary[ev.Key]
	p.summary[ev.Key] = Summary{
		Key:        ev.Key,
		Matches:    ev.Matches,
		Skipped:    ev.Skipped,
		Source:     ev.Source,
		ComputedAt: ev.ComputedAt,
		Seen:       prev.Seen + 1,
	}
	p.mu.Unlock()

	p.Log.Info("predictions computed",
		zap.String("event_id", ev.EventID),
		zap.String("key", ev.Key),
		zap.Int("matches", ev.Matches),
		zap.Int("skipped", ev.Skipped),
		zap.String("source", ev.Source),
	)
	if p.OnConsumed != nil {
		p.OnConsumed(ev)
	}
}

// Snapshot retorna uma cópia do resumo atual
func (p *Processor) Snapshot() map[string]Summary {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]Summary, len(p.summary))
	for k, v := range p.summary {
		out[k] = v
	}
	return out
}

func (p *Processor) fail(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}
