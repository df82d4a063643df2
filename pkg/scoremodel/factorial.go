package scoremodel

// MaxFactorial é o maior k com fatorial pré-calculado na tabela
const MaxFactorial = 20

// Factorials guarda k! para 0 <= k <= MaxFactorial
var Factorials [MaxFactorial + 1]float64

func init() {
	Factorials[0] = 1
	for k := 1; k <= MaxFactorial; k++ {
		Factorials[k] = Factorials[k-1] * float64(k)
	}
}

// Factorial retorna k! pela tabela; acima de MaxFactorial continua o produto
func Factorial(k int) float64 {
	if k < 0 {
		return 0
	}
	if k <= MaxFactorial {
		return Factorials[k]
	}
	f := Factorials[MaxFactorial]
	for i := MaxFactorial + 1; i <= k; i++ {
		f *= float64(i)
	}
	return f
}
