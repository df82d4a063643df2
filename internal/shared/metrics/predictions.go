package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Predictions agrupa as métricas do prediction-service
type Predictions struct {
	FixturesEnriched prometheus.Counter
	FixturesSkipped  *prometheus.CounterVec // por motivo
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	CacheEntries     prometheus.Gauge
	ProviderRequests *prometheus.CounterVec // por endpoint e resultado
	ProviderLatency  *prometheus.HistogramVec
	PublishErrors    *prometheus.CounterVec // por destino (redis, kafka)
	WSConnections    prometheus.Gauge
}

// NewPredictions cria e registra os collectors no registry informado
func NewPredictions(reg prometheus.Registerer) *Predictions {
	m := &Predictions{
		FixturesEnriched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "predictions_fixtures_enriched_total",
			Help: "fixtures enriquecidas com probabilidades",
		}),
		FixturesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "predictions_fixtures_skipped_total",
			Help: "fixtures ou ligas descartadas, por motivo",
		}, []string{"reason"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "predictions_cache_hits_total",
			Help: "consultas atendidas pelo cache",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "predictions_cache_misses_total",
			Help: "consultas que foram ao provedor",
		}),
		CacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "predictions_cache_entries",
			Help: "entradas (data+ligas) em memória",
		}),
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "predictions_provider_requests_total",
			Help: "requisições ao provedor por endpoint e resultado",
		}, []string{"endpoint", "result"}),
		ProviderLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "predictions_provider_request_seconds",
			Help:    "latência das requisições ao provedor",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		PublishErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "predictions_publish_errors_total",
			Help: "falhas ao notificar resultados calculados",
		}, []string{"sink"}),
		WSConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "predictions_ws_connections",
			Help: "clientes WebSocket conectados",
		}),
	}

	reg.MustRegister(
		m.FixturesEnriched, m.FixturesSkipped,
		m.CacheHits, m.CacheMisses, m.CacheEntries,
		m.ProviderRequests, m.ProviderLatency,
		m.PublishErrors, m.WSConnections,
	)
	return m
}
