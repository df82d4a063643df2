package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	simulator "github.com/radieske/football-predictions/internal/provider-simulator"
	"github.com/radieske/football-predictions/internal/shared/config"
	"github.com/radieske/football-predictions/internal/shared/logger"
	"github.com/radieske/football-predictions/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	reg := prometheus.NewRegistry()
	s := simulator.NewServer(log, cfg.ProviderAPIKey, cfg.Season, cfg.SimulatorFailRate, reg)

	// Servidor de métricas em goroutine
	msrv := metrics.NewMetricsServer(cfg.MetricsPort, reg, nil)
	go func() {
		log.Info("provider simulator (metrics) running",
			zap.String("addr", msrv.Addr),
			zap.String("paths", "/healthz,/metrics"),
		)
		if err := msrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("metrics server error", zap.Error(err))
		}
	}()

	// Servidor público (fixtures + predictions)
	publicAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	log.Info("provider simulator (public) running",
		zap.String("addr", publicAddr),
		zap.String("paths", "/fixtures,/predictions"),
		zap.Float64("fail_rate", cfg.SimulatorFailRate),
	)
	if err := http.ListenAndServe(publicAddr, s.Handler()); err != nil {
		log.Fatal("public server error", zap.Error(err))
	}
}
