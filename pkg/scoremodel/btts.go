package scoremodel

import "math"

// BTTS retorna P(ambos marcam) pela forma fechada, sem passar pela matriz:
// 1 - P(mandante 0) - P(visitante 0) + P(ambos 0)
func BTTS(home, away float64) float64 {
	return 1 - math.Exp(-home) - math.Exp(-away) + math.Exp(-(home + away))
}

// BTTSFromMatrix estima o mesmo valor somando células com i >= 1 e j >= 1.
// Subestima quando GoalCap é pequeno.
func (m ScoreMatrix) BTTSFromMatrix() float64 {
	sum := 0.0
	for i := 1; i < len(m.Cells); i++ {
		for j := 1; j < len(m.Cells[i]); j++ {
			sum += m.Cells[i][j]
		}
	}
	return sum
}
