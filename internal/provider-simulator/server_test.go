package simulator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/football-predictions/internal/prediction-service/provider"
)

// busca um dia em que a liga tem partidas, para não depender da semente
func dayWithFixtures(t *testing.T, leagueID int, min int) time.Time {
	t.Helper()
	d := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 365; i++ {
		if len(fixturesFor(leagueID, d, 2025)) >= min {
			return d
		}
		d = d.AddDate(0, 0, 1)
	}
	t.Fatalf("no day with %d fixtures for league %d", min, leagueID)
	return time.Time{}
}

func newClient(t *testing.T, s *Server, key string) *provider.Client {
	t.Helper()
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return provider.NewClient(provider.Config{BaseURL: srv.URL, APIKey: key, Timeout: 2 * time.Second}, zap.NewNop())
}

func TestFixturesAreDeterministic(t *testing.T) {
	d := dayWithFixtures(t, 39, 1)
	a := fixturesFor(39, d, 2025)
	b := fixturesFor(39, d, 2025)
	assert.Equal(t, a, b)
	assert.Empty(t, fixturesFor(999, d, 2025))

	for i, f := range a {
		l, day, idx := decodeFixtureID(f.item.Fixture.ID)
		assert.Equal(t, 39, l)
		assert.Equal(t, i, idx)
		assert.Equal(t, d, epoch.AddDate(0, 0, day))
		assert.NotEqual(t, f.item.Teams.Home.ID, f.item.Teams.Away.ID)
	}
}

func TestClientRoundTrip(t *testing.T) {
	// Brasileirão tem 8 times, então até 4 partidas: cobre xG numérico, string e ausente
	d := dayWithFixtures(t, 71, 4)
	c := newClient(t, NewServer(zap.NewNop(), "", 2025, 0, prometheus.NewRegistry()), "")

	fs, err := c.FetchFixtures(context.Background(), d.Format("2006-01-02"), 71, 2025)
	require.NoError(t, err)
	require.Len(t, fs, 4)

	for i, f := range fs {
		assert.Equal(t, 71, f.League.ID)
		assert.Equal(t, "Serie A", f.League.Name)
		assert.NotEmpty(t, f.Home.Name)
		assert.False(t, f.Date.IsZero())
		if i%4 == 3 {
			assert.Nil(t, f.XG, "fixture %d", i)
			continue
		}
		require.NotNil(t, f.XG, "fixture %d", i)
		assert.NoError(t, f.XG.Validate())
	}
}

func TestAPIKeyIsEnforced(t *testing.T) {
	s := NewServer(zap.NewNop(), "secret", 2025, 0, nil)
	d := dayWithFixtures(t, 39, 1).Format("2006-01-02")

	_, err := newClient(t, s, "wrong").FetchFixtures(context.Background(), d, 39, 2025)
	assert.ErrorIs(t, err, provider.ErrProvider)

	fs, err := newClient(t, s, "secret").FetchFixtures(context.Background(), d, 39, 2025)
	require.NoError(t, err)
	assert.NotEmpty(t, fs)
}

func TestFailRate(t *testing.T) {
	s := NewServer(zap.NewNop(), "", 2025, 1, nil)
	_, err := newClient(t, s, "").FetchFixtures(context.Background(), "2025-03-01", 39, 2025)
	assert.ErrorIs(t, err, provider.ErrStatus)
}

func TestBadParams(t *testing.T) {
	s := NewServer(zap.NewNop(), "", 2025, 0, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	_, err := newClient(t, s, "").FetchFixtures(context.Background(), "not-a-date", 39, 2025)
	assert.ErrorIs(t, err, provider.ErrProvider)

	resp, err := http.Post(srv.URL+"/fixtures", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestSeasonEchoesRequest(t *testing.T) {
	d := dayWithFixtures(t, 39, 1)
	s := NewServer(zap.NewNop(), "", 0, 0, nil)

	fs, err := newClient(t, s, "").FetchFixtures(context.Background(), d.Format("2006-01-02"), 39, 2024)
	require.NoError(t, err)
	require.NotEmpty(t, fs)
	assert.Equal(t, 2024, s.seasonFor("2024", d))
	assert.Equal(t, d.Year(), s.seasonFor("", d))
	assert.Equal(t, 2030, NewServer(zap.NewNop(), "", 2030, 0, nil).seasonFor("2024", d))
}
