package dto

// Probabilities representa o 1x2 de uma partida
type Probabilities struct {
	Home float64 `json:"home"`
	Draw float64 `json:"draw"`
	Away float64 `json:"away"`
}

// Match é o registro enriquecido servido ao cliente
type Match struct {
	FixtureID int64  `json:"fixtureId"`
	LeagueID  int    `json:"leagueId"`
	League    string `json:"league"`
	Kickoff   string `json:"kickoff"` // RFC3339
	HomeTeam  string `json:"homeTeam"`
	AwayTeam  string `json:"awayTeam"`
	HomeLogo  string `json:"homeLogo"`
	AwayLogo  string `json:"awayLogo"`

	Probabilities Probabilities `json:"probabilities"`
	Over25        float64       `json:"over25"`
	Under25       float64       `json:"under25"`
	BTTS          float64       `json:"btts"`
	Covered       float64       `json:"covered"` // massa coberta pela matriz truncada

	XGHome   float64 `json:"xgHome"` // arredondado em 2 casas
	XGAway   float64 `json:"xgAway"`
	XGSource string  `json:"xgSource"` // "provider" | "default"
}

// Skip registra uma fixture (ou liga inteira) que ficou de fora e o motivo
type Skip struct {
	FixtureID int64  `json:"fixtureId,omitempty"`
	LeagueID  int    `json:"leagueId"`
	League    string `json:"league,omitempty"`
	Reason    string `json:"reason"`
	Detail    string `json:"detail,omitempty"`
}

// MatchesResponse é o envelope de /api/matches
type MatchesResponse struct {
	Response []Match `json:"response"`
	Skipped  []Skip  `json:"skipped"`
	Cached   bool    `json:"cached"`
}
