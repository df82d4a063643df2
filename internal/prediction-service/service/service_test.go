package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/football-predictions/internal/prediction-service/cache"
	"github.com/radieske/football-predictions/internal/prediction-service/enrich"
	"github.com/radieske/football-predictions/internal/prediction-service/provider"
	"github.com/radieske/football-predictions/pkg/contracts/events"
	"github.com/radieske/football-predictions/pkg/scoremodel"
)

type fakeFetcher struct {
	mu       sync.Mutex
	fixtures map[int][]provider.Fixture
	errs     map[int]error
	calls    []int
	seasons  map[int]int

	entered chan struct{} // recebe um sinal por chamada, se não for nil
	release chan struct{} // bloqueia a chamada até ser fechado, se não for nil
}

func (f *fakeFetcher) FetchFixtures(ctx context.Context, _ string, leagueID, season int) ([]provider.Fixture, error) {
	f.mu.Lock()
	f.calls = append(f.calls, leagueID)
	if f.seasons == nil {
		f.seasons = map[int]int{}
	}
	f.seasons[leagueID] = season
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := f.errs[leagueID]; err != nil {
		return nil, err
	}
	return f.fixtures[leagueID], nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []events.PredictionsComputed
	err    error
}

func (n *fakeNotifier) Publish(_ context.Context, e events.PredictionsComputed) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return n.err
}

type names map[int]string

func (n names) Name(id int) string { return n[id] }

// temporada dividida com virada em julho
func (n names) Season(_ int, date time.Time) int {
	if date.Month() < time.July {
		return date.Year() - 1
	}
	return date.Year()
}

func fx(id int64, league int, xg *scoremodel.XG) provider.Fixture {
	return provider.Fixture{
		ID:     id,
		Date:   time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC),
		League: provider.League{ID: league, Name: "L"},
		Home:   provider.Team{ID: 1, Name: "Home"},
		Away:   provider.Team{ID: 2, Name: "Away"},
		XG:     xg,
	}
}

func newService(t *testing.T, f Fetcher) *Service {
	t.Helper()
	p, err := enrich.New(scoremodel.XG{Home: 1.5, Away: 1.2}, scoremodel.DefaultGoalCap, "")
	require.NoError(t, err)
	return &Service{
		Log:      zap.NewNop(),
		Fetcher:  f,
		Pipeline: p,
		Cache:    cache.New(),
		Leagues:  names{39: "Premier League", 140: "La Liga"},
		Source:   "test",
	}
}

func TestPredictionsComputesThenCaches(t *testing.T) {
	bad := scoremodel.XG{Home: -1, Away: 1}
	f := &fakeFetcher{fixtures: map[int][]provider.Fixture{
		39:  {fx(1, 39, nil), fx(2, 39, &bad)},
		140: {fx(3, 140, &scoremodel.XG{Home: 2, Away: 1})},
	}}
	s := newService(t, f)
	n := &fakeNotifier{}
	s.AddNotifier("fake", n)

	var hits, misses, enriched, size int
	skips := map[string]int{}
	s.OnCacheHit = func() { hits++ }
	s.OnCacheMiss = func() { misses++ }
	s.OnEnriched = func(k int) { enriched += k }
	s.OnSkipped = func(r string) { skips[r]++ }
	s.OnCacheSize = func(k int) { size = k }

	e, cached, err := s.Predictions(context.Background(), "2025-03-01", []int{140, 39})
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "predictions:2025-03-01:39,140", e.Key)
	assert.Equal(t, []int{39, 140}, e.Leagues)
	require.Len(t, e.Matches, 2)
	assert.Equal(t, int64(1), e.Matches[0].FixtureID)
	assert.Equal(t, int64(3), e.Matches[1].FixtureID)
	require.Len(t, e.Skipped, 1)
	assert.Equal(t, enrich.ReasonInvalidXG, e.Skipped[0].Reason)
	assert.Equal(t, 2, enriched)
	assert.Equal(t, 1, skips[enrich.ReasonInvalidXG])
	assert.Equal(t, 1, size)
	assert.Equal(t, 1, misses)

	require.Len(t, n.events, 1)
	ev := n.events[0]
	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, e.Key, ev.Key)
	assert.Equal(t, 2, ev.Matches)
	assert.Equal(t, 1, ev.Skipped)
	assert.Equal(t, "test", ev.Source)

	// mesma combinação em outra ordem: cache, sem nova chamada ao provedor
	e2, cached, err := s.Predictions(context.Background(), "2025-03-01", []int{39, 140, 39})
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, e.Matches, e2.Matches)
	assert.Equal(t, 2, f.callCount())
	assert.Equal(t, 1, hits)
	assert.Len(t, n.events, 1)
}

func TestEmptyLeagueIsSkippedAndCached(t *testing.T) {
	f := &fakeFetcher{fixtures: map[int][]provider.Fixture{39: {fx(1, 39, nil)}}}
	s := newService(t, f)

	e, _, err := s.Predictions(context.Background(), "2025-03-01", []int{39, 140})
	require.NoError(t, err)
	require.Len(t, e.Matches, 1)
	require.Len(t, e.Skipped, 1)
	assert.Equal(t, enrich.ReasonNoFixtures, e.Skipped[0].Reason)
	assert.Equal(t, 140, e.Skipped[0].LeagueID)
	assert.Equal(t, "La Liga", e.Skipped[0].League)
	assert.Equal(t, 1, s.Cache.Len())
}

func TestFailedLeagueIsReportedButNotCached(t *testing.T) {
	f := &fakeFetcher{
		fixtures: map[int][]provider.Fixture{39: {fx(1, 39, nil)}},
		errs:     map[int]error{140: provider.ErrStatus},
	}
	s := newService(t, f)

	e, cached, err := s.Predictions(context.Background(), "2025-03-01", []int{39, 140})
	require.NoError(t, err)
	assert.False(t, cached)
	require.Len(t, e.Matches, 1)
	require.Len(t, e.Skipped, 1)
	assert.Equal(t, enrich.ReasonNoFixtures, e.Skipped[0].Reason)
	assert.NotEmpty(t, e.Skipped[0].Detail)
	assert.Equal(t, 0, s.Cache.Len())

	_, cached, err = s.Predictions(context.Background(), "2025-03-01", []int{39, 140})
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 4, f.callCount())
}

func TestCanceledContext(t *testing.T) {
	f := &fakeFetcher{fixtures: map[int][]provider.Fixture{39: {fx(1, 39, nil)}}}
	s := newService(t, f)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := s.Predictions(ctx, "2025-03-01", []int{39})
	require.Error(t, err)
	assert.True(t, IsCanceled(err))
	assert.Equal(t, 0, s.Cache.Len())
}

func TestPublishErrorIsBestEffort(t *testing.T) {
	f := &fakeFetcher{fixtures: map[int][]provider.Fixture{39: {fx(1, 39, nil)}}}
	s := newService(t, f)
	failing := &fakeNotifier{err: errors.New("redis down")}
	ok := &fakeNotifier{}
	s.AddNotifier("redis", failing)
	s.AddNotifier("kafka", ok)

	var sinks []string
	s.OnPublishError = func(sink string) { sinks = append(sinks, sink) }

	e, _, err := s.Predictions(context.Background(), "2025-03-01", []int{39})
	require.NoError(t, err)
	assert.Len(t, e.Matches, 1)
	assert.Equal(t, []string{"redis"}, sinks)
	assert.Len(t, ok.events, 1)
}

func TestResponseEnvelope(t *testing.T) {
	r := Response(cache.Entry{}, true)
	assert.True(t, r.Cached)
	assert.Nil(t, r.Response)
}

func TestDefaultXGAfterPredictionFailureIsNotCached(t *testing.T) {
	failed := fx(1, 39, nil)
	failed.XGFailed = true
	f := &fakeFetcher{fixtures: map[int][]provider.Fixture{39: {failed}}}
	s := newService(t, f)

	e, cached, err := s.Predictions(context.Background(), "2025-03-01", []int{39})
	require.NoError(t, err)
	assert.False(t, cached)
	require.Len(t, e.Matches, 1)
	assert.Equal(t, enrich.XGSourceDefault, e.Matches[0].XGSource)
	assert.Equal(t, 0, s.Cache.Len())

	// provedor voltou: o xG real aparece na próxima consulta
	f.mu.Lock()
	f.fixtures[39] = []provider.Fixture{fx(1, 39, &scoremodel.XG{Home: 2.1, Away: 0.7})}
	f.mu.Unlock()

	e, cached, err = s.Predictions(context.Background(), "2025-03-01", []int{39})
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, enrich.XGSourceProvider, e.Matches[0].XGSource)
	assert.Equal(t, 1, s.Cache.Len())
}

func TestCancelingOneCallerDoesNotFailOthers(t *testing.T) {
	f := &fakeFetcher{
		fixtures: map[int][]provider.Fixture{39: {fx(1, 39, nil)}},
		entered:  make(chan struct{}, 4),
		release:  make(chan struct{}),
	}
	s := newService(t, f)

	ctx1, cancel1 := context.WithCancel(context.Background())
	err1 := make(chan error, 1)
	go func() {
		_, _, err := s.Predictions(ctx1, "2025-03-01", []int{39})
		err1 <- err
	}()
	<-f.entered

	type result struct {
		n   int
		err error
	}
	res2 := make(chan result, 1)
	go func() {
		e, _, err := s.Predictions(context.Background(), "2025-03-01", []int{39})
		res2 <- result{len(e.Matches), err}
	}()
	// segundo chamador entra no mesmo cálculo
	time.Sleep(50 * time.Millisecond)

	cancel1()
	assert.ErrorIs(t, <-err1, context.Canceled)

	close(f.release)
	r := <-res2
	require.NoError(t, r.err)
	assert.Equal(t, 1, r.n)
	assert.Equal(t, 1, s.Cache.Len())
}

func TestComputeTimeout(t *testing.T) {
	f := &fakeFetcher{
		fixtures: map[int][]provider.Fixture{39: {fx(1, 39, nil)}},
		release:  make(chan struct{}),
	}
	s := newService(t, f)
	s.ComputeTimeout = 20 * time.Millisecond

	_, _, err := s.Predictions(context.Background(), "2025-03-01", []int{39})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, s.Cache.Len())
}

func TestSeasonDerivedFromDate(t *testing.T) {
	f := &fakeFetcher{}
	s := newService(t, f)

	_, _, err := s.Predictions(context.Background(), "2026-03-01", []int{39})
	require.NoError(t, err)
	assert.Equal(t, 2025, f.seasons[39])

	_, _, err = s.Predictions(context.Background(), "2026-08-15", []int{39})
	require.NoError(t, err)
	assert.Equal(t, 2026, f.seasons[39])

	s.Season = 2030
	_, _, err = s.Predictions(context.Background(), "2026-09-01", []int{39})
	require.NoError(t, err)
	assert.Equal(t, 2030, f.seasons[39])
}

func TestRejectsEmptyLeaguesAndBadDate(t *testing.T) {
	s := newService(t, &fakeFetcher{})

	_, _, err := s.Predictions(context.Background(), "2025-03-01", nil)
	assert.ErrorIs(t, err, ErrNoLeagues)

	_, _, err = s.Predictions(context.Background(), "01/03/2025", []int{39})
	assert.Error(t, err)
	assert.Equal(t, 0, s.Cache.Len())
}

func TestHugeProviderXGIsSkipped(t *testing.T) {
	f := &fakeFetcher{fixtures: map[int][]provider.Fixture{
		39: {fx(1, 39, &scoremodel.XG{Home: 1e60, Away: 1}), fx(2, 39, nil)},
	}}
	s := newService(t, f)

	e, _, err := s.Predictions(context.Background(), "2025-03-01", []int{39})
	require.NoError(t, err)
	require.Len(t, e.Matches, 1)
	assert.Equal(t, int64(2), e.Matches[0].FixtureID)
	require.Len(t, e.Skipped, 1)
	assert.Equal(t, enrich.ReasonInvalidXG, e.Skipped[0].Reason)

	_, err = json.Marshal(Response(e, false))
	assert.NoError(t, err)
}
