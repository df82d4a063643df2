package simulator

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/radieske/football-predictions/internal/provider-simulator/dto"
)

type team struct {
	id   int64
	name string
}

type league struct {
	name    string
	country string
	teams   []team
}

// Catálogo fixo de ligas e times simulados
var catalog = map[int]league{
	39: {"Premier League", "England", []team{
		{33, "Manchester United"}, {40, "Liverpool"}, {42, "Arsenal"}, {49, "Chelsea"},
		{50, "Manchester City"}, {47, "Tottenham"},
	}},
	140: {"La Liga", "Spain", []team{
		{529, "Barcelona"}, {541, "Real Madrid"}, {530, "Atletico Madrid"}, {536, "Sevilla"},
	}},
	135: {"Serie A", "Italy", []team{
		{489, "AC Milan"}, {505, "Inter"}, {496, "Juventus"}, {492, "Napoli"},
	}},
	78: {"Bundesliga", "Germany", []team{
		{157, "Bayern München"}, {165, "Borussia Dortmund"}, {173, "RB Leipzig"}, {168, "Bayer Leverkusen"},
	}},
	61: {"Ligue 1", "France", []team{
		{85, "Paris Saint Germain"}, {81, "Marseille"}, {80, "Lyon"}, {91, "Monaco"},
	}},
	71: {"Serie A", "Brazil", []team{
		{127, "Flamengo"}, {121, "Palmeiras"}, {130, "Grêmio"}, {119, "Internacional"},
		{131, "Corinthians"}, {128, "Santos"}, {126, "São Paulo"}, {133, "Vasco DA Gama"},
	}},
	2: {"UEFA Champions League", "World", []team{
		{541, "Real Madrid"}, {50, "Manchester City"}, {157, "Bayern München"}, {85, "Paris Saint Germain"},
	}},
}

var epoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

const (
	leagueFactor = 1_000_000
	maxPerLeague = 10
)

// fixture gerada com o xG que o endpoint de predições devolve
type simFixture struct {
	item dto.FixtureItem
	xg   dto.ExpectedGoals
}

// fixtureID codifica liga, dia e posição: id = liga*1e6 + dia*10 + i
func fixtureID(leagueID, day, i int) int64 {
	return int64(leagueID)*leagueFactor + int64(day)*maxPerLeague + int64(i)
}

func decodeFixtureID(id int64) (leagueID, day, i int) {
	return int(id / leagueFactor), int(id%leagueFactor) / maxPerLeague, int(id % maxPerLeague)
}

// fixturesFor gera as partidas de uma liga num dia, sempre iguais para a
// mesma combinação. Pode devolver lista vazia.
func fixturesFor(leagueID int, date time.Time, season int) []simFixture {
	lg, ok := catalog[leagueID]
	if !ok {
		return nil
	}
	day := int(date.Sub(epoch).Hours() / 24)
	if day < 0 || day >= leagueFactor/maxPerLeague {
		return nil
	}

	rng := rand.New(rand.NewSource(seed(leagueID, day)))
	n := rng.Intn(len(lg.teams)/2 + 1)
	order := rng.Perm(len(lg.teams))

	out := make([]simFixture, 0, n)
	for i := 0; i < n; i++ {
		home, away := lg.teams[order[2*i]], lg.teams[order[2*i+1]]
		kickoff := date.Add(time.Duration(13+2*i) * time.Hour)
		out = append(out, simFixture{
			item: dto.FixtureItem{
				Fixture: dto.FixtureInfo{
					ID:        fixtureID(leagueID, day, i),
					Date:      kickoff.Format(time.RFC3339),
					Timestamp: kickoff.Unix(),
				},
				League: dto.LeagueInfo{ID: leagueID, Name: lg.name, Country: lg.country, Season: season},
				Teams: dto.Teams{
					Home: dto.Team{ID: home.id, Name: home.name},
					Away: dto.Team{ID: away.id, Name: away.name},
				},
			},
			xg: expectedGoals(rng, i),
		})
	}
	return out
}

// expectedGoals: a cada quatro partidas uma vem sem xG e outra com xG em string
func expectedGoals(rng *rand.Rand, i int) dto.ExpectedGoals {
	home, away := round2(0.4+rng.Float64()*2.2), round2(0.3+rng.Float64()*1.9)
	switch i % 4 {
	case 3:
		return dto.ExpectedGoals{Home: nil, Away: nil}
	case 1:
		return dto.ExpectedGoals{Home: strconv.FormatFloat(home, 'f', 2, 64), Away: strconv.FormatFloat(away, 'f', 2, 64)}
	default:
		return dto.ExpectedGoals{Home: home, Away: away}
	}
}

func seed(leagueID, day int) int64 {
	h := fnv.New64a()
	_, _ = fmt.Fprintf(h, "%d:%d", leagueID, day)
	return int64(h.Sum64() & math.MaxInt64)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
