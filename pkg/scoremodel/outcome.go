package scoremodel

import "math"

// Outcomes são as probabilidades 1x2 derivadas da matriz.
// A soma é igual a Covered, não a 1.
type Outcomes struct {
	Home float64 `json:"home"`
	Draw float64 `json:"draw"`
	Away float64 `json:"away"`
}

// OverUnder para uma linha de gols (ex: 2.5)
type OverUnder struct {
	Line  float64 `json:"line"`
	Over  float64 `json:"over"`
	Under float64 `json:"under"`
}

// Outcomes classifica cada célula pelo sinal de i - j
func (m ScoreMatrix) Outcomes() Outcomes {
	var o Outcomes
	for i, row := range m.Cells {
		for j, p := range row {
			switch {
			case i > j:
				o.Home += p
			case i == j:
				o.Draw += p
			default:
				o.Away += p
			}
		}
	}
	return o
}

// ProbTotalAtMost soma as células com i + j <= k
func (m ScoreMatrix) ProbTotalAtMost(k int) float64 {
	sum := 0.0
	for i, row := range m.Cells {
		for j, p := range row {
			if i+j <= k {
				sum += p
			}
		}
	}
	return sum
}

// OverUnder calcula under pela matriz e over como complemento contra 1.
// O erro de truncamento fica todo no lado over.
func (m ScoreMatrix) OverUnder(line float64) OverUnder {
	under := m.ProbTotalAtMost(int(math.Floor(line)))
	return OverUnder{Line: line, Over: 1 - under, Under: under}
}
