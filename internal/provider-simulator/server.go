package simulator

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/football-predictions/internal/provider-simulator/dto"
)

// Server simula o provedor de fixtures e predições
type Server struct {
	log      *zap.Logger
	apiKey   string  // vazio aceita qualquer requisição
	season   int     // 0 usa a temporada pedida ou o ano da data
	failRate float64 // fração de respostas 500, para exercitar o caminho de erro

	requests *prometheus.CounterVec
}

func NewServer(log *zap.Logger, apiKey string, season int, failRate float64, reg prometheus.Registerer) *Server {
	s := &Server{
		log:      log,
		apiKey:   apiKey,
		season:   season,
		failRate: failRate,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "provider_simulator_requests_total",
			Help: "Total de requisições atendidas por endpoint e status",
		}, []string{"endpoint", "status"}),
	}
	if reg != nil {
		reg.MustRegister(s.requests)
	}
	return s
}

// Handler expõe /fixtures e /predictions
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/fixtures", s.fixtures)
	mux.HandleFunc("/predictions", s.predictions)
	return mux
}

func (s *Server) fixtures(w http.ResponseWriter, r *http.Request) {
	if !s.admit(w, r, "fixtures") {
		return
	}
	q := r.URL.Query()
	params := map[string]string{"date": q.Get("date"), "league": q.Get("league"), "season": q.Get("season")}

	date, err := time.Parse("2006-01-02", q.Get("date"))
	if err != nil {
		s.fail(w, r, "fixtures", params, map[string]string{"date": "The Date field must contain a valid date (YYYY-MM-DD)."})
		return
	}
	leagueID, err := strconv.Atoi(q.Get("league"))
	if err != nil {
		s.fail(w, r, "fixtures", params, map[string]string{"league": "The League field must contain an integer."})
		return
	}

	items := []dto.FixtureItem{}
	for _, f := range fixturesFor(leagueID, date, s.seasonFor(q.Get("season"), date)) {
		items = append(items, f.item)
	}
	s.write(w, r, "fixtures", dto.Envelope{
		Get:      "fixtures",
		Errors:   []any{},
		Results:  len(items),
		Response: items,
		Params:   params,
	})
}

func (s *Server) predictions(w http.ResponseWriter, r *http.Request) {
	if !s.admit(w, r, "predictions") {
		return
	}
	raw := r.URL.Query().Get("fixture")
	params := map[string]string{"fixture": raw}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		s.fail(w, r, "predictions", params, map[string]string{"fixture": "The Fixture field must contain an integer."})
		return
	}

	items := []dto.PredictionItem{}
	leagueID, day, i := decodeFixtureID(id)
	date := epoch.AddDate(0, 0, day)
	fs := fixturesFor(leagueID, date, s.seasonFor("", date))
	if i < len(fs) {
		f := fs[i]
		items = append(items, dto.PredictionItem{
			Predictions: dto.Predictions{Advice: "simulated", ExpectedGoals: f.xg},
			Teams:       f.item.Teams,
		})
	}
	s.write(w, r, "predictions", dto.Envelope{
		Get:      "predictions",
		Errors:   []any{},
		Results:  len(items),
		Response: items,
		Params:   params,
	})
}

// admit valida a chave e aplica a taxa de falha simulada
func (s *Server) admit(w http.ResponseWriter, r *http.Request, endpoint string) bool {
	if r.Method != http.MethodGet {
		s.requests.WithLabelValues(endpoint, "405").Inc()
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if s.apiKey != "" && r.Header.Get("x-apisports-key") != s.apiKey {
		// o provedor real responde 200 com o erro no envelope
		s.fail(w, r, endpoint, nil, map[string]string{"token": "Error/Missing application key."})
		return false
	}
	if s.failRate > 0 && rand.Float64() < s.failRate {
		s.requests.WithLabelValues(endpoint, "500").Inc()
		s.log.Debug("simulated failure", zap.String("endpoint", endpoint))
		http.Error(w, "simulated failure", http.StatusInternalServerError)
		return false
	}
	return true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, endpoint string, params map[string]string, errs map[string]string) {
	s.write(w, r, endpoint, dto.Envelope{
		Get:      endpoint,
		Errors:   errs,
		Response: []any{},
		Params:   params,
	})
}

// write comprime com brotli ou gzip conforme o Accept-Encoding
func (s *Server) write(w http.ResponseWriter, r *http.Request, endpoint string, env dto.Envelope) {
	b, err := json.Marshal(env)
	if err != nil {
		s.requests.WithLabelValues(endpoint, "500").Inc()
		http.Error(w, "encode failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	var out io.Writer = w
	accept := r.Header.Get("Accept-Encoding")
	switch {
	case strings.Contains(accept, "br"):
		w.Header().Set("Content-Encoding", "br")
		bw := brotli.NewWriter(w)
		defer bw.Close()
		out = bw
	case strings.Contains(accept, "gzip"):
		w.Header().Set("Content-Encoding", "gzip")
		gw := gzip.NewWriter(w)
		defer gw.Close()
		out = gw
	}
	w.WriteHeader(http.StatusOK)
	if _, err := out.Write(b); err != nil {
		s.log.Warn("write response failed", zap.String("endpoint", endpoint), zap.Error(err))
	}
	s.requests.WithLabelValues(endpoint, "200").Inc()
}

func (s *Server) seasonFor(raw string, date time.Time) int {
	if s.season > 0 {
		return s.season
	}
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		return n
	}
	return date.Year()
}
