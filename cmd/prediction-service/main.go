package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/football-predictions/internal/prediction-service/cache"
	"github.com/radieske/football-predictions/internal/prediction-service/enrich"
	httpapi "github.com/radieske/football-predictions/internal/prediction-service/http"
	"github.com/radieske/football-predictions/internal/prediction-service/leagues"
	"github.com/radieske/football-predictions/internal/prediction-service/provider"
	"github.com/radieske/football-predictions/internal/prediction-service/pubsub"
	"github.com/radieske/football-predictions/internal/prediction-service/publisher"
	"github.com/radieske/football-predictions/internal/prediction-service/service"
	"github.com/radieske/football-predictions/internal/prediction-service/ws"
	sharedcache "github.com/radieske/football-predictions/internal/shared/cache"
	"github.com/radieske/football-predictions/internal/shared/config"
	"github.com/radieske/football-predictions/internal/shared/logger"
	"github.com/radieske/football-predictions/internal/shared/metrics"
	"github.com/radieske/football-predictions/pkg/scoremodel"
)

func main() {
	// carrega config
	cfg := config.Load()

	// inicia logger
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// métricas em registry próprio + coletores do runtime
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewPredictions(reg)

	catalog, err := leagues.Load(cfg.LeaguesFile)
	if err != nil {
		log.Fatal("failed to load leagues", zap.String("file", cfg.LeaguesFile), zap.Error(err))
	}
	log.Info("leagues loaded", zap.Int("count", len(catalog.All())), zap.Ints("defaults", catalog.Defaults()))

	pipeline, err := enrich.New(
		scoremodel.XG{Home: cfg.DefaultXGHome, Away: cfg.DefaultXGAway},
		cfg.GoalCap,
		cfg.LogoBaseURL,
	)
	if err != nil {
		log.Fatal("invalid model config", zap.Error(err))
	}

	client := provider.NewClient(provider.Config{
		BaseURL: cfg.ProviderBaseURL,
		APIKey:  cfg.ProviderAPIKey,
		Host:    cfg.ProviderHost,
		Timeout: cfg.ProviderTimeout,
		RPS:     cfg.ProviderRPS,
	}, log)
	client.OnRequest = func(endpoint, result string, elapsed time.Duration) {
		m.ProviderRequests.WithLabelValues(endpoint, result).Inc()
		m.ProviderLatency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
	}

	svc := &service.Service{
		Log:      log,
		Fetcher:  client,
		Pipeline: pipeline,
		Cache:    cache.New(),
		Leagues:  catalog,
		Season:   cfg.Season,
		Source:   cfg.ServiceName,

		OnCacheHit:     m.CacheHits.Inc,
		OnCacheMiss:    m.CacheMisses.Inc,
		OnEnriched:     func(n int) { m.FixturesEnriched.Add(float64(n)) },
		OnSkipped:      func(reason string) { m.FixturesSkipped.WithLabelValues(reason).Inc() },
		OnCacheSize:    func(n int) { m.CacheEntries.Set(float64(n)) },
		OnPublishError: func(sink string) { m.PublishErrors.WithLabelValues(sink).Inc() },
	}

	hub := ws.NewHub(func(r *http.Request) bool { return true }, log)
	hub.OnConnect = m.WSConnections.Inc
	hub.OnDisconnect = m.WSConnections.Dec

	// Redis faz o fan-out entre instâncias; sem ele o hub local recebe direto
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = sharedcache.ConnectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			log.Fatal("failed to connect redis", zap.Error(err))
		}
		defer redisClient.Close()
		log.Info("redis connected")

		b := pubsub.NewRedisBroadcaster(redisClient, cfg.RedisPubSubChannel)
		svc.AddNotifier("redis", b)
		ws.StartRedisSubscriber(ctx, redisClient, b.Channel(), hub, log)
	} else {
		log.Info("redis disabled, broadcasting to local websocket clients only")
		svc.AddNotifier("ws", hub)
	}

	if cfg.KafkaBrokers != "" {
		kp, err := publisher.NewKafkaPublisher(cfg.KafkaBrokers, cfg.TopicPredictions, cfg.Env, log)
		if err != nil {
			log.Fatal("failed to create kafka publisher", zap.Error(err))
		}
		defer kp.Close()
		svc.AddNotifier("kafka", kp)
		log.Info("kafka publisher ready", zap.String("topic", cfg.TopicPredictions))
	}

	// sobe servidor de métricas e health
	msrv := metrics.NewMetricsServer(cfg.MetricsPort, reg, func(ctx context.Context) error {
		if redisClient == nil {
			return nil
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})
	go func() {
		log.Info("metrics/health server starting", zap.String("addr", msrv.Addr))
		if err := msrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()

	api := &httpapi.API{
		Log:       log,
		Service:   svc,
		Leagues:   catalog,
		WS:        hub.HandleWS,
		StaticDir: cfg.StaticDir,
	}
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("http server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	_ = msrv.Shutdown(shutdownCtx)
}
