package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/radieske/football-predictions/internal/prediction-service/cache"
	"github.com/radieske/football-predictions/internal/prediction-service/leagues"
)

// Predictor é implementado por service.Service
type Predictor interface {
	Predictions(ctx context.Context, date string, leagues []int) (cache.Entry, bool, error)
}

// API expõe os endpoints REST de previsões, o WebSocket e os arquivos estáticos
type API struct {
	Log       *zap.Logger
	Service   Predictor
	Leagues   *leagues.Catalog
	WS        http.HandlerFunc // nil desativa /ws
	StaticDir string           // vazio desativa /
	MaxCap    int              // limite de cap em /api/model

	// Now permite fixar "hoje" nos testes
	Now func() time.Time
}

// Router retorna o roteador HTTP com os endpoints
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.requestLog)
	r.Use(middleware.Recoverer)
	r.Use(withCORS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/matches", a.listMatches) // Partidas do dia com probabilidades
		r.Get("/leagues", a.listLeagues) // Catálogo de ligas
		r.Get("/model", a.model)         // Saída crua do modelo para um par de xG
	})
	if a.WS != nil {
		r.Get("/ws", a.WS)
	}
	if a.StaticDir != "" {
		if st, err := os.Stat(a.StaticDir); err == nil && st.IsDir() {
			r.Handle("/*", http.FileServer(http.Dir(a.StaticDir)))
		} else {
			a.Log.Warn("static dir not found", zap.String("dir", a.StaticDir))
		}
	}
	return r
}

func (a *API) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		a.Log.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}

func (a *API) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// writeJSON serializa a resposta em JSON e define o status HTTP.
// Serializa antes do cabeçalho: falha de encode vira 500, não corpo vazio.
func (a *API) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		a.Log.Error("failed to encode response", zap.Int("status", status), zap.Error(err))
		status, body = http.StatusInternalServerError, []byte(`{"error":"failed to encode response"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		a.Log.Debug("failed to write response", zap.Error(err))
	}
}

func (a *API) writeError(w http.ResponseWriter, status int, msg string) {
	a.writeJSON(w, status, map[string]string{"error": msg})
}
