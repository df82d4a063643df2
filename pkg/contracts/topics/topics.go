package topics

const (
	// Predições calculadas (uma mensagem por chave data+ligas)
	PredictionsComputed = "predictions_computed"
)
