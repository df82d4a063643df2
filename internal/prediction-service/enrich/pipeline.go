package enrich

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/radieske/football-predictions/internal/prediction-service/dto"
	"github.com/radieske/football-predictions/internal/prediction-service/provider"
	"github.com/radieske/football-predictions/pkg/scoremodel"
)

// Motivos de descarte
const (
	ReasonMissingTeams = "missing_teams"
	ReasonInvalidXG    = "invalid_xg"
	ReasonNoFixtures   = "no_fixtures"
)

const (
	XGSourceProvider = "provider"
	XGSourceDefault  = "default"
)

// Pipeline transforma fixtures do provedor em partidas com probabilidades
type Pipeline struct {
	Defaults    scoremodel.XG // usado quando o provedor não traz xG
	GoalCap     int
	LogoBaseURL string
}

// Result é exatamente um dos dois: Match ou Skipped
type Result struct {
	Match   *dto.Match
	Skipped *dto.Skip
}

// New valida o xG default antes de montar o pipeline
func New(defaults scoremodel.XG, goalCap int, logoBaseURL string) (*Pipeline, error) {
	if err := defaults.Validate(); err != nil {
		return nil, fmt.Errorf("default xg: %w", err)
	}
	if goalCap < 0 {
		return nil, fmt.Errorf("goal cap must be >= 0, got %d", goalCap)
	}
	return &Pipeline{
		Defaults:    defaults,
		GoalCap:     goalCap,
		LogoBaseURL: strings.TrimRight(logoBaseURL, "/"),
	}, nil
}

// Enrich calcula o registro de uma fixture.
// xG inválido (negativo, NaN, Inf) descarta a fixture em vez de propagar NaN.
func (p *Pipeline) Enrich(f provider.Fixture) Result {
	if strings.TrimSpace(f.Home.Name) == "" || strings.TrimSpace(f.Away.Name) == "" {
		return skip(f, ReasonMissingTeams, "")
	}

	xg, source := p.Defaults, XGSourceDefault
	if f.XG != nil {
		xg, source = *f.XG, XGSourceProvider
	}
	if err := xg.Validate(); err != nil {
		return skip(f, ReasonInvalidXG, err.Error())
	}

	pred := scoremodel.Predict(xg, p.GoalCap)

	m := &dto.Match{
		FixtureID: f.ID,
		LeagueID:  f.League.ID,
		League:    f.League.Name,
		HomeTeam:  f.Home.Name,
		AwayTeam:  f.Away.Name,
		HomeLogo:  p.logo(f.Home),
		AwayLogo:  p.logo(f.Away),
		Probabilities: dto.Probabilities{
			Home: pred.Outcomes.Home,
			Draw: pred.Outcomes.Draw,
			Away: pred.Outcomes.Away,
		},
		Over25:   pred.OverUnder25.Over,
		Under25:  pred.OverUnder25.Under,
		BTTS:     pred.BTTS,
		Covered:  pred.Covered,
		XGHome:   round2(xg.Home),
		XGAway:   round2(xg.Away),
		XGSource: source,
	}
	if !f.Date.IsZero() {
		m.Kickoff = f.Date.UTC().Format(time.RFC3339)
	}
	return Result{Match: m}
}

// EnrichAll preserva a ordem das fixtures nas duas listas
func (p *Pipeline) EnrichAll(fixtures []provider.Fixture) ([]dto.Match, []dto.Skip) {
	matches := make([]dto.Match, 0, len(fixtures))
	var skipped []dto.Skip
	for _, f := range fixtures {
		r := p.Enrich(f)
		if r.Skipped != nil {
			skipped = append(skipped, *r.Skipped)
			continue
		}
		matches = append(matches, *r.Match)
	}
	return matches, skipped
}

// NoFixtures registra uma liga inteira sem dados no provedor
func NoFixtures(leagueID int, league string, err error) dto.Skip {
	s := dto.Skip{LeagueID: leagueID, League: league, Reason: ReasonNoFixtures}
	if err != nil {
		s.Detail = err.Error()
	}
	return s
}

func (p *Pipeline) logo(t provider.Team) string {
	if t.Logo != "" {
		return t.Logo
	}
	if t.ID <= 0 || p.LogoBaseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/%d.png", p.LogoBaseURL, t.ID)
}

func skip(f provider.Fixture, reason, detail string) Result {
	return Result{Skipped: &dto.Skip{
		FixtureID: f.ID,
		LeagueID:  f.League.ID,
		League:    f.League.Name,
		Reason:    reason,
		Detail:    detail,
	}}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
