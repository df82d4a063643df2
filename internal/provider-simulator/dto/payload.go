package dto

// Envelope segue o formato {"errors": ..., "results": n, "response": [...]}
type Envelope struct {
	Get      string            `json:"get"`
	Errors   any               `json:"errors"` // [] quando ok, objeto com mensagens em erro
	Results  int               `json:"results"`
	Response any               `json:"response"`
	Params   map[string]string `json:"parameters,omitempty"`
}

type FixtureItem struct {
	Fixture FixtureInfo `json:"fixture"`
	League  LeagueInfo  `json:"league"`
	Teams   Teams       `json:"teams"`
}

type FixtureInfo struct {
	ID        int64  `json:"id"`
	Date      string `json:"date"` // RFC3339
	Timestamp int64  `json:"timestamp"`
}

type LeagueInfo struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
	Season  int    `json:"season,omitempty"`
}

type Teams struct {
	Home Team `json:"home"`
	Away Team `json:"away"`
}

type Team struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
}

type PredictionItem struct {
	Predictions Predictions `json:"predictions"`
	Teams       Teams       `json:"teams"`
}

type Predictions struct {
	Advice        string        `json:"advice,omitempty"`
	ExpectedGoals ExpectedGoals `json:"expected_goals"`
}

// ExpectedGoals usa any porque o provedor manda número, string ou null
type ExpectedGoals struct {
	Home any `json:"home"`
	Away any `json:"away"`
}
