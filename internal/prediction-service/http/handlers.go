package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/football-predictions/internal/prediction-service/service"
	"github.com/radieske/football-predictions/pkg/scoremodel"
)

const dateLayout = "2006-01-02"

// listMatches retorna as partidas enriquecidas de uma data para as ligas pedidas
func (a *API) listMatches(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	date := strings.TrimSpace(q.Get("date"))
	if date == "" {
		date = a.now().UTC().Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, date); err != nil {
		a.writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	ids, err := a.parseLeagues(q.Get("leagues"))
	if err != nil {
		a.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	e, cached, err := a.Service.Predictions(r.Context(), date, ids)
	if err != nil {
		if service.IsCanceled(err) {
			// cliente desistiu
			return
		}
		if errors.Is(err, service.ErrNoLeagues) {
			a.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		a.Log.Error("predictions failed", zap.String("date", date), zap.Ints("leagues", ids), zap.Error(err))
		a.writeError(w, http.StatusBadGateway, "failed to load predictions")
		return
	}
	a.writeJSON(w, http.StatusOK, service.Response(e, cached))
}

// parseLeagues aceita "39,140"; vazio usa as ligas padrão do catálogo
func (a *API) parseLeagues(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		ids := a.Leagues.Defaults()
		if len(ids) == 0 {
			return nil, fmt.Errorf("leagues is required: catalog has no default leagues")
		}
		return ids, nil
	}
	var ids []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid league id %q", part)
		}
		if _, ok := a.Leagues.Get(id); !ok {
			return nil, fmt.Errorf("unknown league %d", id)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("leagues must list at least one id")
	}
	return ids, nil
}

func (a *API) listLeagues(w http.ResponseWriter, _ *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]any{"response": a.Leagues.All()})
}

type scoreCell struct {
	Home int     `json:"home"`
	Away int     `json:"away"`
	P    float64 `json:"p"`
}

type modelResponse struct {
	XG          scoremodel.XG          `json:"xg"`
	GoalCap     int                    `json:"goalCap"`
	Matrix      [][]float64            `json:"matrix"`
	Outcomes    scoremodel.Outcomes    `json:"outcomes"`
	OverUnder25 scoremodel.OverUnder   `json:"overUnder25"`
	OverUnder   []scoremodel.OverUnder `json:"overUnder"`
	BTTS        float64                `json:"btts"`
	Covered     float64                `json:"covered"`
	Truncated   float64                `json:"truncated"`
	MostLikely  scoreCell              `json:"mostLikely"`
}

// model expõe a matriz e os agregados para um par de xG, para inspeção
func (a *API) model(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	home, err := strconv.ParseFloat(q.Get("home"), 64)
	if err != nil {
		a.writeError(w, http.StatusBadRequest, "home must be a number")
		return
	}
	away, err := strconv.ParseFloat(q.Get("away"), 64)
	if err != nil {
		a.writeError(w, http.StatusBadRequest, "away must be a number")
		return
	}
	xg := scoremodel.XG{Home: home, Away: away}
	if err := xg.Validate(); err != nil {
		a.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	goalCap := scoremodel.DefaultGoalCap
	if raw := q.Get("cap"); raw != "" {
		goalCap, err = strconv.Atoi(raw)
		maxCap := a.MaxCap
		if maxCap <= 0 {
			maxCap = scoremodel.MaxFactorial
		}
		if err != nil || goalCap < 0 || goalCap > maxCap {
			a.writeError(w, http.StatusBadRequest, fmt.Sprintf("cap must be an integer between 0 and %d", maxCap))
			return
		}
	}

	m := scoremodel.BuildScoreMatrix(home, away, goalCap)
	mh, ma, mp := m.MostLikelyScore()
	resp := modelResponse{
		XG:          xg,
		GoalCap:     goalCap,
		Matrix:      m.Cells,
		Outcomes:    m.Outcomes(),
		OverUnder25: m.OverUnder(2.5),
		BTTS:        scoremodel.BTTS(home, away),
		Covered:     m.Covered,
		Truncated:   m.Truncated(),
		MostLikely:  scoreCell{Home: mh, Away: ma, P: mp},
	}
	for _, line := range []float64{0.5, 1.5, 2.5, 3.5, 4.5} {
		resp.OverUnder = append(resp.OverUnder, m.OverUnder(line))
	}
	a.writeJSON(w, http.StatusOK, resp)
}
