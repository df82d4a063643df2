package provider

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/radieske/football-predictions/pkg/scoremodel"
)

var (
	ErrStatus   = errors.New("provider returned non-success status")
	ErrProvider = errors.New("provider reported errors")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config do cliente HTTP do provedor
type Config struct {
	BaseURL string
	APIKey  string
	Host    string // header x-rapidapi-host, opcional
	Timeout time.Duration
	RPS     float64 // requisições por segundo; <= 0 desativa o limitador
}

// Client busca fixtures e predições no provedor estilo API-Football
type Client struct {
	baseURL string
	apiKey  string
	host    string
	http    *http.Client
	limiter *rate.Limiter
	log     *zap.Logger

	// OnRequest é chamado após cada requisição (métricas)
	OnRequest func(endpoint, result string, elapsed time.Duration)
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	limit := rate.Inf
	burst := 1
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
		burst = max(1, int(cfg.RPS))
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		host:    cfg.Host,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, burst),
		log:     log,
	}
}

// FetchFixtures lista as partidas de uma liga na data (YYYY-MM-DD) e
// completa o xG de cada uma pelo endpoint de predições.
// Falha de predição não derruba a fixture: ela segue com XG nil.
// season é o ano de início da temporada; <= 0 omite o parâmetro.
func (c *Client) FetchFixtures(ctx context.Context, date string, leagueID, season int) ([]Fixture, error) {
	q := url.Values{}
	q.Set("date", date)
	q.Set("league", strconv.Itoa(leagueID))
	if season > 0 {
		q.Set("season", strconv.Itoa(season))
	}

	var env envelope[fixtureItem]
	if err := c.get(ctx, "fixtures", q, &env); err != nil {
		return nil, fmt.Errorf("fetch fixtures league=%d date=%s: %w", leagueID, date, err)
	}

	out := make([]Fixture, 0, len(env.Response))
	for _, it := range env.Response {
		f := Fixture{
			ID:     it.Fixture.ID,
			League: League{ID: it.League.ID, Name: it.League.Name},
			Home:   Team{ID: it.Teams.Home.ID, Name: it.Teams.Home.Name, Logo: it.Teams.Home.Logo},
			Away:   Team{ID: it.Teams.Away.ID, Name: it.Teams.Away.Name, Logo: it.Teams.Away.Logo},
		}
		if f.League.ID == 0 {
			f.League.ID = leagueID
		}
		if ts, err := time.Parse(time.RFC3339, it.Fixture.Date); err == nil {
			f.Date = ts.UTC()
		} else {
			c.log.Debug("fixture without parsable date", zap.Int64("fixture_id", f.ID), zap.String("date", it.Fixture.Date))
		}

		xg, err := c.FetchExpectedGoals(ctx, f.ID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.log.Warn("prediction fetch failed, using defaults",
				zap.Int64("fixture_id", f.ID), zap.Error(err))
			f.XGFailed = true
		}
		f.XG = xg
		out = append(out, f)
	}
	return out, nil
}

// FetchExpectedGoals retorna nil (sem erro) quando o provedor não tem xG
// completo para a partida
func (c *Client) FetchExpectedGoals(ctx context.Context, fixtureID int64) (*scoremodel.XG, error) {
	q := url.Values{}
	q.Set("fixture", strconv.FormatInt(fixtureID, 10))

	var env envelope[predictionItem]
	if err := c.get(ctx, "predictions", q, &env); err != nil {
		return nil, fmt.Errorf("fetch predictions fixture=%d: %w", fixtureID, err)
	}
	if len(env.Response) == 0 {
		return nil, nil
	}
	eg := env.Response[0].Predictions.ExpectedGoals
	if !eg.Home.Valid || !eg.Away.Valid {
		return nil, nil
	}
	return &scoremodel.XG{Home: eg.Home.Value, Away: eg.Away.Value}, nil
}

func (c *Client) get(ctx context.Context, endpoint string, q url.Values, dst interface {
	hasErrors() bool
}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	u := c.baseURL + "/" + endpoint + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "br, gzip")
	if c.apiKey != "" {
		req.Header.Set("x-apisports-key", c.apiKey)
	}
	if c.host != "" {
		req.Header.Set("x-rapidapi-host", c.host)
	}

	start := time.Now()
	result := "ok"
	defer func() {
		if c.OnRequest != nil {
			c.OnRequest(endpoint, result, time.Since(start))
		}
	}()

	resp, err := c.http.Do(req)
	if err != nil {
		result = "transport_error"
		return fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		result = "status_" + strconv.Itoa(resp.StatusCode)
		return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	body, err := decodeBody(resp)
	if err != nil {
		result = "decode_error"
		return err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		result = "decode_error"
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	if dst.hasErrors() {
		result = "provider_error"
		return ErrProvider
	}

	c.log.Debug("provider request",
		zap.String("endpoint", endpoint),
		zap.Duration("latency", time.Since(start)))
	return nil
}

func (e *envelope[T]) hasErrors() bool { return !e.Errors.empty() }

// decodeBody trata Content-Encoding manualmente, pois pedimos br e gzip
func decodeBody(resp *http.Response) (io.ReadCloser, error) {
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "br":
		return io.NopCloser(brotli.NewReader(resp.Body)), nil
	case "gzip":
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		return zr, nil
	default:
		return io.NopCloser(resp.Body), nil
	}
}
