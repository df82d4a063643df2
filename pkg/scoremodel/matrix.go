package scoremodel

// DefaultGoalCap é o número máximo de gols por time considerado na matriz
const DefaultGoalCap = 6

// ScoreMatrix é a distribuição conjunta de placares truncada em GoalCap.
// Cells[i][j] = P(mandante marca i, visitante marca j).
// Covered é a soma das células, sempre < 1 quando há truncamento.
type ScoreMatrix struct {
	GoalCap int
	Cells   [][]float64
	Covered float64
}

// BuildScoreMatrix monta a matriz (goalCap+1)x(goalCap+1) como produto externo
// de duas Poisson independentes
func BuildScoreMatrix(home, away float64, goalCap int) ScoreMatrix {
	if goalCap < 0 {
		goalCap = 0
	}

	pHome := make([]float64, goalCap+1)
	pAway := make([]float64, goalCap+1)
	for k := 0; k <= goalCap; k++ {
		pHome[k] = PoissonPMF(k, home)
		pAway[k] = PoissonPMF(k, away)
	}

	cells := make([][]float64, goalCap+1)
	covered := 0.0
	for i := 0; i <= goalCap; i++ {
		cells[i] = make([]float64, goalCap+1)
		for j := 0; j <= goalCap; j++ {
			p := pHome[i] * pAway[j]
			cells[i][j] = p
			covered += p
		}
	}

	return ScoreMatrix{GoalCap: goalCap, Cells: cells, Covered: covered}
}

// Truncated retorna a massa de probabilidade perdida acima de GoalCap
func (m ScoreMatrix) Truncated() float64 { return 1 - m.Covered }

// Renormalized devolve uma cópia com as células divididas por Covered
func (m ScoreMatrix) Renormalized() ScoreMatrix {
	out := ScoreMatrix{GoalCap: m.GoalCap, Cells: make([][]float64, len(m.Cells))}
	for i, row := range m.Cells {
		out.Cells[i] = make([]float64, len(row))
		for j, p := range row {
			if m.Covered > 0 {
				p /= m.Covered
			}
			out.Cells[i][j] = p
			out.Covered += p
		}
	}
	return out
}

// MostLikelyScore retorna o placar de maior probabilidade
func (m ScoreMatrix) MostLikelyScore() (home, away int, p float64) {
	for i, row := range m.Cells {
		for j, v := range row {
			if v > p {
				home, away, p = i, j, v
			}
		}
	}
	return home, away, p
}
