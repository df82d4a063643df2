package provider

import (
	"bytes"
	"strconv"
	"time"

	"github.com/radieske/football-predictions/pkg/scoremodel"
)

// Fixture é a partida normalizada vinda do provedor.
// XG é nil quando o provedor não trouxe gols esperados.
// XGFailed marca que a consulta de predições falhou (não que o xG não existe):
// o resultado usa o default e não deve ir para o cache.
type Fixture struct {
	ID       int64
	Date     time.Time
	League   League
	Home     Team
	Away     Team
	XG       *scoremodel.XG
	XGFailed bool
}

type League struct {
	ID   int
	Name string
}

type Team struct {
	ID   int64
	Name string
	Logo string
}

// --- payloads do provedor ---

type envelope[T any] struct {
	Errors   rawJSON `json:"errors"`
	Results  int     `json:"results"`
	Response []T     `json:"response"`
}

type fixtureItem struct {
	Fixture struct {
		ID   int64  `json:"id"`
		Date string `json:"date"`
	} `json:"fixture"`
	League struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"league"`
	Teams struct {
		Home teamItem `json:"home"`
		Away teamItem `json:"away"`
	} `json:"teams"`
}

type teamItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo"`
}

type predictionItem struct {
	Predictions struct {
		ExpectedGoals struct {
			Home flexFloat `json:"home"`
			Away flexFloat `json:"away"`
		} `json:"expected_goals"`
	} `json:"predictions"`
}

// rawJSON guarda o campo "errors", que pode vir como [] ou {}
type rawJSON []byte

func (r *rawJSON) UnmarshalJSON(b []byte) error {
	*r = append((*r)[:0], b...)
	return nil
}

// empty considera vazio null, [] e {}
func (r rawJSON) empty() bool {
	t := bytes.TrimSpace(r)
	return len(t) == 0 || bytes.Equal(t, []byte("null")) || bytes.Equal(t, []byte("[]")) || bytes.Equal(t, []byte("{}"))
}

// flexFloat aceita número, string numérica ou null
type flexFloat struct {
	Value float64
	Valid bool
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(bytes.TrimSpace(b), `"`))
	if s == "" || s == "null" {
		*f = flexFloat{}
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// valor não numérico conta como ausente
		*f = flexFloat{}
		return nil
	}
	*f = flexFloat{Value: v, Valid: true}
	return nil
}
