package events

import "time"

// Evento publicado no tópico "predictions_computed" e no canal Redis de broadcast
// sempre que uma chave data+ligas é calculada (não em hits de cache)
type PredictionsComputed struct {
	EventID    string    `json:"event_id"`
	Key        string    `json:"key"`  // ex: "predictions:2025-03-01:39,140"
	Date       string    `json:"date"` // YYYY-MM-DD
	Leagues    []int     `json:"leagues"`
	Matches    int       `json:"matches"`
	Skipped    int       `json:"skipped"`
	ComputedAt time.Time `json:"computed_at"`
	Source     string    `json:"source"` // nome do serviço

	// Payload é o envelope servido em /api/matches
	Payload any `json:"payload,omitempty"`
}
