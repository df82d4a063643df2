package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// Key: chave data+ligas, obrigatória para subscribe/unsubscribe
type ClientMsg struct {
	Type string `json:"type"`
	Key  string `json:"key"`
}

// ServerMsg são as respostas de controle (pong, subscribed, error)
type ServerMsg struct {
	Type  string `json:"type"`
	Key   string `json:"key,omitempty"`
	Error string `json:"error,omitempty"`
}
