package enrich

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/football-predictions/internal/prediction-service/provider"
	"github.com/radieske/football-predictions/pkg/scoremodel"
)

func newPipeline(t *testing.T) *Pipeline {
	t.Helper()
	p, err := New(scoremodel.XG{Home: 1.5, Away: 1.2}, scoremodel.DefaultGoalCap, "https://logos.example/teams/")
	require.NoError(t, err)
	return p
}

func fixture(id int64, xg *scoremodel.XG) provider.Fixture {
	return provider.Fixture{
		ID:     id,
		Date:   time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC),
		League: provider.League{ID: 39, Name: "Premier League"},
		Home:   provider.Team{ID: 33, Name: "Manchester United"},
		Away:   provider.Team{ID: 40, Name: "Liverpool", Logo: "https://cdn/40.png"},
		XG:     xg,
	}
}

func TestNewRejectsInvalidDefaults(t *testing.T) {
	_, err := New(scoremodel.XG{Home: -1, Away: 1}, 6, "")
	assert.ErrorIs(t, err, scoremodel.ErrNegativeXG)

	_, err = New(scoremodel.XG{Home: 1, Away: 1}, -1, "")
	assert.Error(t, err)
}

func TestEnrichWithDefaults(t *testing.T) {
	p := newPipeline(t)

	r := p.Enrich(fixture(1, nil))
	require.Nil(t, r.Skipped)
	require.NotNil(t, r.Match)
	m := r.Match

	want := scoremodel.Predict(scoremodel.XG{Home: 1.5, Away: 1.2}, scoremodel.DefaultGoalCap)
	assert.Equal(t, XGSourceDefault, m.XGSource)
	assert.Equal(t, 1.5, m.XGHome)
	assert.Equal(t, 1.2, m.XGAway)
	assert.Equal(t, want.Outcomes.Home, m.Probabilities.Home)
	assert.Equal(t, want.Outcomes.Draw, m.Probabilities.Draw)
	assert.Equal(t, want.Outcomes.Away, m.Probabilities.Away)
	assert.Equal(t, want.OverUnder25.Over, m.Over25)
	assert.Equal(t, want.OverUnder25.Under, m.Under25)
	assert.Equal(t, want.BTTS, m.BTTS)
	assert.InDelta(t, m.Covered, m.Probabilities.Home+m.Probabilities.Draw+m.Probabilities.Away, 1e-12)

	assert.Equal(t, "2025-03-01T15:00:00Z", m.Kickoff)
	assert.Equal(t, "https://logos.example/teams/33.png", m.HomeLogo)
	assert.Equal(t, "https://cdn/40.png", m.AwayLogo)
	assert.Equal(t, "Premier League", m.League)
	assert.Equal(t, 39, m.LeagueID)
}

func TestEnrichWithProviderXG(t *testing.T) {
	p := newPipeline(t)

	r := p.Enrich(fixture(2, &scoremodel.XG{Home: 2.3456, Away: 0.004}))
	require.NotNil(t, r.Match)
	assert.Equal(t, XGSourceProvider, r.Match.XGSource)
	assert.Equal(t, 2.35, r.Match.XGHome)
	assert.Equal(t, 0.0, r.Match.XGAway)
	// probabilidades usam o valor cheio, não o arredondado
	want := scoremodel.BTTS(2.3456, 0.004)
	assert.Equal(t, want, r.Match.BTTS)
}

func TestEnrichSkips(t *testing.T) {
	p := newPipeline(t)

	noHome := fixture(3, nil)
	noHome.Home.Name = " "
	r := p.Enrich(noHome)
	require.Nil(t, r.Match)
	require.NotNil(t, r.Skipped)
	assert.Equal(t, ReasonMissingTeams, r.Skipped.Reason)
	assert.Equal(t, int64(3), r.Skipped.FixtureID)

	for _, xg := range []scoremodel.XG{{Home: -0.5, Away: 1}, {Home: math.NaN(), Away: 1}, {Home: 1, Away: math.Inf(1)}, {Home: 1e60, Away: 1}} {
		xg := xg
		r := p.Enrich(fixture(4, &xg))
		require.NotNil(t, r.Skipped)
		assert.Equal(t, ReasonInvalidXG, r.Skipped.Reason)
		assert.NotEmpty(t, r.Skipped.Detail)
		assert.Equal(t, 39, r.Skipped.LeagueID)
	}
}

func TestEnrichAll(t *testing.T) {
	p := newPipeline(t)
	bad := scoremodel.XG{Home: -1, Away: 1}

	matches, skipped := p.EnrichAll([]provider.Fixture{
		fixture(10, nil),
		fixture(11, &bad),
		fixture(12, &scoremodel.XG{Home: 3, Away: 3}),
	})

	require.Len(t, matches, 2)
	assert.Equal(t, int64(10), matches[0].FixtureID)
	assert.Equal(t, int64(12), matches[1].FixtureID)
	assert.Greater(t, matches[1].Over25, 0.5)

	require.Len(t, skipped, 1)
	assert.Equal(t, int64(11), skipped[0].FixtureID)

	matches, skipped = p.EnrichAll(nil)
	assert.Empty(t, matches)
	assert.NotNil(t, matches)
	assert.Empty(t, skipped)
}

func TestZeroKickoffAndMissingLogo(t *testing.T) {
	p := newPipeline(t)
	p.LogoBaseURL = ""

	f := fixture(5, nil)
	f.Date = time.Time{}
	r := p.Enrich(f)
	require.NotNil(t, r.Match)
	assert.Empty(t, r.Match.Kickoff)
	assert.Empty(t, r.Match.HomeLogo)
}

func TestNoFixtures(t *testing.T) {
	s := NoFixtures(140, "La Liga", errors.New("provider returned non-success status: 500"))
	assert.Equal(t, ReasonNoFixtures, s.Reason)
	assert.Equal(t, 140, s.LeagueID)
	assert.Zero(t, s.FixtureID)
	assert.Contains(t, s.Detail, "500")

	assert.Empty(t, NoFixtures(140, "La Liga", nil).Detail)
}
