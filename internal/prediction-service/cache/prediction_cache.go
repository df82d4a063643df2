package cache

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/radieske/football-predictions/internal/prediction-service/dto"
)

// Entry é o resultado calculado para uma combinação data + ligas
type Entry struct {
	Key        string      `json:"key"`
	Date       string      `json:"date"`
	Leagues    []int       `json:"leagues"`
	Matches    []dto.Match `json:"matches"`
	Skipped    []dto.Skip  `json:"skipped"`
	ComputedAt time.Time   `json:"computedAt"`
}

// Cache guarda resultados em memória, sem expiração.
// O processo é dono do conteúdo; reiniciar limpa tudo.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	group   singleflight.Group
}

func New() *Cache {
	return &Cache{entries: make(map[string]Entry)}
}

// Key monta "predictions:<date>:<ids>" com ids ordenados e sem repetição,
// então 140,39 e 39,140,39 caem na mesma entrada.
func Key(date string, leagues []int) string {
	ids := NormalizeLeagues(leagues)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return "predictions:" + date + ":" + strings.Join(parts, ",")
}

// NormalizeLeagues ordena e remove ids duplicados sem alterar o slice original
func NormalizeLeagues(leagues []int) []int {
	ids := append([]int(nil), leagues...)
	sort.Ints(ids)
	out := ids[:0]
	for i, id := range ids {
		if i > 0 && id == ids[i-1] {
			continue
		}
		out = append(out, id)
	}
	return out
}

func (c *Cache) Get(key string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

func (c *Cache) Set(key string, e Entry) {
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Do executa fn uma única vez por chave entre chamadas concorrentes.
// Quem espera desiste quando o próprio ctx termina; fn continua rodando para
// os demais, então fn não deve depender do ctx de um chamador específico.
// shared indica que o resultado veio de outra chamada em andamento.
func (c *Cache) Do(ctx context.Context, key string, fn func() (Entry, error)) (e Entry, shared bool, err error) {
	ch := c.group.DoChan(key, func() (any, error) {
		return fn()
	})
	select {
	case <-ctx.Done():
		return Entry{}, false, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return Entry{}, r.Shared, r.Err
		}
		return r.Val.(Entry), r.Shared, nil
	}
}
