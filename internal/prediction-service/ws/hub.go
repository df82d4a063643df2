package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/radieske/football-predictions/internal/prediction-service/pubsub"
	"github.com/radieske/football-predictions/pkg/contracts/events"
)

const writeWait = 2 * time.Second

// client serializa as escritas: gorilla não aceita writers concorrentes
type client struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

func (c *client) writeJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.write(b)
}

// Hub gerencia conexões WebSocket e assinaturas por chave de previsão
// subs: chave -> conjunto de clientes inscritos
type Hub struct {
	upgrader websocket.Upgrader
	log      *zap.Logger

	mu      sync.RWMutex
	clients map[string]*client
	subs    map[string]map[string]*client

	OnConnect    func()
	OnDisconnect func()
}

// NewHub cria uma instância de Hub com política customizada de origem (CORS)
func NewHub(allowOrigin func(r *http.Request) bool, log *zap.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		log:      log,
		clients:  make(map[string]*client),
		subs:     make(map[string]map[string]*client),
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão WebSocket.
// Cada cliente pode se inscrever em várias chaves.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("ws upgrade failed", zap.Error(err))
		return
	}
	c := &client{id: uuid.NewString(), conn: conn}
	h.add(c)
	defer func() {
		h.remove(c)
		_ = conn.Close()
	}()

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("ws read failed", zap.String("client_id", c.id), zap.Error(err))
			}
			return
		}
		switch msg.Type {
		case "subscribe":
			if msg.Key == "" {
				_ = c.writeJSON(ServerMsg{Type: "error", Error: "key is required"})
				continue
			}
			h.subscribe(c, msg.Key)
			_ = c.writeJSON(ServerMsg{Type: "subscribed", Key: msg.Key})
		case "unsubscribe":
			h.unsubscribe(c, msg.Key)
		case "ping":
			_ = c.writeJSON(ServerMsg{Type: "pong"})
		default:
			_ = c.writeJSON(ServerMsg{Type: "error", Error: "unknown message type"})
		}
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	if h.OnConnect != nil {
		h.OnConnect()
	}
	h.log.Info("ws client connected", zap.String("client_id", c.id))
}

// remove tira o cliente de todas as assinaturas
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c.id)
	for key, set := range h.subs {
		delete(set, c.id)
		if len(set) == 0 {
			delete(h.subs, key)
		}
	}
	h.mu.Unlock()
	if h.OnDisconnect != nil {
		h.OnDisconnect()
	}
	h.log.Info("ws client disconnected", zap.String("client_id", c.id))
}

func (h *Hub) subscribe(c *client, key string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[key]; !ok {
		h.subs[key] = make(map[string]*client)
	}
	h.subs[key][c.id] = c
}

func (h *Hub) unsubscribe(c *client, key string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[key]; ok {
		delete(set, c.id)
		if len(set) == 0 {
			delete(h.subs, key)
		}
	}
}

// subscribers retorna quantos clientes estão inscritos na chave
func (h *Hub) subscribers(key string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[key])
}

// Broadcast envia a atualização para os clientes inscritos na chave
func (h *Hub) Broadcast(update pubsub.Update) {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.subs[update.Key]))
	for _, c := range h.subs[update.Key] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()
	if len(targets) == 0 {
		return
	}

	b, err := json.Marshal(update)
	if err != nil {
		h.log.Warn("ws marshal failed", zap.String("key", update.Key), zap.Error(err))
		return
	}
	for _, c := range targets {
		if err := c.write(b); err != nil {
			h.log.Warn("ws write failed", zap.String("client_id", c.id), zap.Error(err))
			_ = c.conn.Close()
		}
	}
}

// Publish entrega o evento direto aos clientes locais.
// Usado quando não há Redis para fazer o fan-out entre instâncias.
func (h *Hub) Publish(_ context.Context, e events.PredictionsComputed) error {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return err
	}
	h.Broadcast(pubsub.Update{Key: e.Key, Payload: payload})
	return nil
}
