package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/football-predictions/pkg/contracts/events"
)

// fakeReader entrega as mensagens em ordem e depois bloqueia até o cancelamento
type fakeReader struct {
	msgs []kafka.Message
	errs []error
}

func (f *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return kafka.Message{}, err
	}
	if len(f.msgs) > 0 {
		m := f.msgs[0]
		f.msgs = f.msgs[1:]
		return m, nil
	}
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func msg(t *testing.T, ev events.PredictionsComputed) kafka.Message {
	t.Helper()
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	return kafka.Message{Key: []byte(ev.Key), Value: b}
}

func TestRunBuildsSummary(t *testing.T) {
	key := "predictions:2025-03-01:39,140"
	r := &fakeReader{
		errs: []error{errors.New("broker hiccup")},
		msgs: []kafka.Message{
			msg(t, events.PredictionsComputed{EventID: "1", Key: key, Matches: 3, Skipped: 1, Source: "a"}),
			{Value: []byte("not json")},
			msg(t, events.PredictionsComputed{EventID: "2"}),
			msg(t, events.PredictionsComputed{EventID: "3", Key: key, Matches: 4, Source: "b"}),
		},
	}

	stages := map[string]int{}
	consumed := make(chan string, 10)
	p := &Processor{
		Log:        zap.NewNop(),
		Reader:     r,
		Backoff:    time.Millisecond,
		OnError:    func(stage string) { stages[stage]++ },
		OnConsumed: func(ev events.PredictionsComputed) { consumed <- ev.EventID },
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	assert.Equal(t, "1", <-consumed)
	assert.Equal(t, "3", <-consumed)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	assert.Equal(t, map[string]int{"read": 1, "decode": 1, "validate": 1}, stages)
	snap := p.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, 4, snap[key].Matches)
	assert.Equal(t, 0, snap[key].Skipped)
	assert.Equal(t, "b", snap[key].Source)
	assert.Equal(t, 2, snap[key].Seen)
}
