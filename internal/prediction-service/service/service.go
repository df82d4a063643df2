package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/football-predictions/internal/prediction-service/cache"
	"github.com/radieske/football-predictions/internal/prediction-service/dto"
	"github.com/radieske/football-predictions/internal/prediction-service/enrich"
	"github.com/radieske/football-predictions/internal/prediction-service/provider"
	"github.com/radieske/football-predictions/pkg/contracts/events"
)

// Fetcher é implementado por provider.Client
type Fetcher interface {
	FetchFixtures(ctx context.Context, date string, leagueID, season int) ([]provider.Fixture, error)
}

// Notifier recebe cada resultado recém calculado (Redis, Kafka)
type Notifier interface {
	Publish(ctx context.Context, e events.PredictionsComputed) error
}

// LeagueCatalog resolve nome e temporada de uma liga (leagues.Catalog)
type LeagueCatalog interface {
	Name(id int) string
	Season(id int, date time.Time) int
}

var ErrNoLeagues = errors.New("no leagues requested")

const (
	notifyTimeout         = 3 * time.Second
	defaultComputeTimeout = 60 * time.Second
	dateLayout            = "2006-01-02"
)

// Service orquestra cache, provedor e enriquecimento.
// Callbacks de métricas são opcionais.
type Service struct {
	Log      *zap.Logger
	Fetcher  Fetcher
	Pipeline *enrich.Pipeline
	Cache    *cache.Cache
	Leagues  LeagueCatalog
	Source   string // nome do serviço nos eventos

	// Season > 0 força a temporada; 0 deriva por liga a partir da data
	Season int
	// ComputeTimeout limita o cálculo, que não segue o ctx do chamador
	ComputeTimeout time.Duration

	notifiers []namedNotifier

	OnCacheHit     func()
	OnCacheMiss    func()
	OnEnriched     func(n int)
	OnSkipped      func(reason string)
	OnCacheSize    func(n int)
	OnPublishError func(sink string)
}

type namedNotifier struct {
	name string
	n    Notifier
}

// AddNotifier registra um destino best-effort; falhas só geram log
func (s *Service) AddNotifier(name string, n Notifier) {
	s.notifiers = append(s.notifiers, namedNotifier{name: name, n: n})
}

// Predictions devolve as partidas do dia para as ligas pedidas.
// cached indica que a resposta saiu do cache sem tocar no provedor.
func (s *Service) Predictions(ctx context.Context, date string, leagues []int) (cache.Entry, bool, error) {
	if err := ctx.Err(); err != nil {
		return cache.Entry{}, false, err
	}
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return cache.Entry{}, false, fmt.Errorf("invalid date %q: %w", date, err)
	}
	ids := cache.NormalizeLeagues(leagues)
	if len(ids) == 0 {
		return cache.Entry{}, false, ErrNoLeagues
	}
	key := cache.Key(date, ids)

	if e, ok := s.Cache.Get(key); ok {
		if s.OnCacheHit != nil {
			s.OnCacheHit()
		}
		return e, true, nil
	}
	if s.OnCacheMiss != nil {
		s.OnCacheMiss()
	}

	// o cálculo é compartilhado: cancelar um chamador não derruba os outros
	e, _, err := s.Cache.Do(ctx, key, func() (cache.Entry, error) {
		timeout := s.ComputeTimeout
		if timeout <= 0 {
			timeout = defaultComputeTimeout
		}
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		return s.compute(cctx, key, date, day, ids)
	})
	return e, false, err
}

func (s *Service) compute(ctx context.Context, key, date string, day time.Time, leagues []int) (cache.Entry, error) {
	start := time.Now()
	e := cache.Entry{
		Key:     key,
		Date:    date,
		Leagues: leagues,
		Matches: []dto.Match{},
	}

	// falha do provedor não entra no cache: sem TTL ela ficaria para sempre.
	// Vale também para xG default usado porque /predictions falhou.
	cacheable := true
	for _, id := range leagues {
		fixtures, err := s.Fetcher.FetchFixtures(ctx, date, id, s.season(id, day))
		if ctx.Err() != nil {
			return cache.Entry{}, ctx.Err()
		}
		if err != nil || len(fixtures) == 0 {
			if err != nil {
				cacheable = false
				s.Log.Warn("league fetch failed", zap.Int("league", id), zap.String("date", date), zap.Error(err))
			}
			e.Skipped = append(e.Skipped, enrich.NoFixtures(id, s.leagueName(id), err))
			s.skipped(enrich.ReasonNoFixtures)
			continue
		}

		for _, f := range fixtures {
			if f.XGFailed {
				cacheable = false
				break
			}
		}

		matches, skipped := s.Pipeline.EnrichAll(fixtures)
		for _, sk := range skipped {
			s.Log.Info("fixture skipped",
				zap.Int64("fixture_id", sk.FixtureID),
				zap.Int("league", sk.LeagueID),
				zap.String("reason", sk.Reason),
				zap.String("detail", sk.Detail),
			)
			s.skipped(sk.Reason)
		}
		if s.OnEnriched != nil {
			s.OnEnriched(len(matches))
		}
		e.Matches = append(e.Matches, matches...)
		e.Skipped = append(e.Skipped, skipped...)
	}
	if e.Skipped == nil {
		e.Skipped = []dto.Skip{}
	}
	e.ComputedAt = time.Now().UTC()

	if cacheable {
		s.Cache.Set(key, e)
		if s.OnCacheSize != nil {
			s.OnCacheSize(s.Cache.Len())
		}
	}

	s.Log.Info("predictions computed",
		zap.String("key", key),
		zap.Int("matches", len(e.Matches)),
		zap.Int("skipped", len(e.Skipped)),
		zap.Bool("cached", cacheable),
		zap.Duration("elapsed", time.Since(start)),
	)

	s.notify(e)
	return e, nil
}

// notify roda com contexto próprio: a requisição original pode já ter terminado
func (s *Service) notify(e cache.Entry) {
	if len(s.notifiers) == 0 {
		return
	}
	ev := events.PredictionsComputed{
		EventID:    uuid.NewString(),
		Key:        e.Key,
		Date:       e.Date,
		Leagues:    e.Leagues,
		Matches:    len(e.Matches),
		Skipped:    len(e.Skipped),
		ComputedAt: e.ComputedAt,
		Source:     s.Source,
		Payload:    Response(e, false),
	}

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	for _, nn := range s.notifiers {
		if err := nn.n.Publish(ctx, ev); err != nil {
			s.Log.Warn("publish failed", zap.String("sink", nn.name), zap.String("key", e.Key), zap.Error(err))
			if s.OnPublishError != nil {
				s.OnPublishError(nn.name)
			}
		}
	}
}

// Response monta o envelope servido em /api/matches
func Response(e cache.Entry, cached bool) dto.MatchesResponse {
	return dto.MatchesResponse{Response: e.Matches, Skipped: e.Skipped, Cached: cached}
}

func (s *Service) season(id int, day time.Time) int {
	if s.Season > 0 {
		return s.Season
	}
	if s.Leagues == nil {
		return 0
	}
	return s.Leagues.Season(id, day)
}

func (s *Service) leagueName(id int) string {
	if s.Leagues == nil {
		return ""
	}
	return s.Leagues.Name(id)
}

func (s *Service) skipped(reason string) {
	if s.OnSkipped != nil {
		s.OnSkipped(reason)
	}
}

// IsCanceled ajuda o handler HTTP a distinguir cancelamento de falha
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
