package scoremodel

import (
	"errors"
	"fmt"
	"math"
)

// MaxXG é o maior xG aceito; nenhuma partida real passa de 10
const MaxXG = 20.0

var (
	ErrNegativeXG   = errors.New("expected goals must be >= 0")
	ErrNonFiniteXG  = errors.New("expected goals must be finite")
	ErrXGOutOfRange = fmt.Errorf("expected goals must be <= %v", MaxXG)
)

// XG é o par de gols esperados (lambda) de mandante e visitante
type XG struct {
	Home float64 `json:"home"`
	Away float64 `json:"away"`
}

// Validate rejeita lambdas negativos, não finitos ou acima de MaxXG.
// As funções de cálculo não validam nada; quem chama decide.
func (xg XG) Validate() error {
	for _, side := range []struct {
		name string
		v    float64
	}{{"home", xg.Home}, {"away", xg.Away}} {
		if math.IsNaN(side.v) || math.IsInf(side.v, 0) {
			return fmt.Errorf("%s xg %v: %w", side.name, side.v, ErrNonFiniteXG)
		}
		if side.v < 0 {
			return fmt.Errorf("%s xg %v: %w", side.name, side.v, ErrNegativeXG)
		}
		if side.v > MaxXG {
			return fmt.Errorf("%s xg %v: %w", side.name, side.v, ErrXGOutOfRange)
		}
	}
	return nil
}

// Prediction agrega tudo que o modelo produz para uma partida
type Prediction struct {
	XG          XG        `json:"xg"`
	Outcomes    Outcomes  `json:"outcomes"`
	OverUnder25 OverUnder `json:"overUnder25"`
	BTTS        float64   `json:"btts"`
	Covered     float64   `json:"covered"`
}

// Predict roda matriz, agregação e BTTS para um par de xG
func Predict(xg XG, goalCap int) Prediction {
	m := BuildScoreMatrix(xg.Home, xg.Away, goalCap)
	return Prediction{
		XG:          xg,
		Outcomes:    m.Outcomes(),
		OverUnder25: m.OverUnder(2.5),
		BTTS:        BTTS(xg.Home, xg.Away),
		Covered:     m.Covered,
	}
}
