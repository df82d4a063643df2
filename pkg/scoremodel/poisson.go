package scoremodel

import "math"

// PoissonPMF retorna P(X = k) para X ~ Poisson(lambda)
// lambda = 0 concentra toda a massa em k = 0 (0^0 = 1).
// Calculado em escala log: lambda^k estoura float64 bem antes de e^-lambda
// chegar a zero, e o produto direto vira 0 * Inf = NaN.
func PoissonPMF(k int, lambda float64) float64 {
	if k < 0 {
		return 0
	}
	if lambda == 0 {
		if k == 0 {
			return 1
		}
		return 0
	}
	if k == 0 {
		return math.Exp(-lambda)
	}
	return math.Exp(float64(k)*math.Log(lambda) - lambda - math.Log(Factorial(k)))
}
