package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/football-predictions/internal/predictions-audit/consumer"
	"github.com/radieske/football-predictions/internal/shared/config"
	"github.com/radieske/football-predictions/internal/shared/logger"
	"github.com/radieske/football-predictions/internal/shared/metrics"
	"github.com/radieske/football-predictions/pkg/contracts/events"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	if cfg.KafkaBrokers == "" {
		log.Fatal("kafka brokers not provided")
	}

	// Consumer group predictions-audit
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  strings.Split(cfg.KafkaBrokers, ","),
		GroupID:  "predictions-audit",
		Topic:    cfg.TopicPredictions,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	// Métricas Prometheus para monitoramento do consumo
	reg := prometheus.NewRegistry()
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "predictions_audit_events_consumed_total", Help: "eventos consumidos"})
	matches := prometheus.NewCounter(prometheus.CounterOpts{Name: "predictions_audit_matches_total", Help: "partidas calculadas, somadas por evento"})
	keys := prometheus.NewGauge(prometheus.GaugeOpts{Name: "predictions_audit_keys", Help: "chaves data+ligas distintas vistas"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "predictions_audit_errors_total", Help: "erros por estágio"}, []string{"stage"})
	reg.MustRegister(consumed, matches, keys, errorsBy)

	proc := &consumer.Processor{
		Log:     log,
		Reader:  reader,
		OnError: func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}
	proc.OnConsumed = func(ev events.PredictionsComputed) {
		consumed.Inc()
		matches.Add(float64(ev.Matches))
		keys.Set(float64(len(proc.Snapshot())))
	}

	// Servidor HTTP para métricas e health check
	msrv := metrics.NewMetricsServer(cfg.MetricsPort, reg, nil)
	go func() {
		log.Info("metrics/health listening", zap.String("addr", msrv.Addr))
		if err := msrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("predictions-audit started", zap.String("topic", cfg.TopicPredictions))
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}
	_ = msrv.Shutdown(context.Background())
	log.Info("predictions-audit stopped")
}
