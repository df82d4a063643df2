package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	ctopics "github.com/radieske/football-predictions/pkg/contracts/topics"
)

// Config centraliza variáveis de ambiente e parâmetros de execução dos serviços
// Inclui provedor de dados, modelo, conexões, tópicos e portas
type Config struct {
	Env         string // "local", "dev", "prod"
	ServiceName string // ex: "prediction-service", "provider-simulator"
	LogLevel    string // debug | info | warn | error

	RedisAddr    string // vazio desativa o fan-out via Pub/Sub
	KafkaBrokers string // "a:9092,b:9092"; vazio desativa a publicação

	// Tópicos/canais
	TopicPredictions   string
	RedisPubSubChannel string

	// Provedor de fixtures/predições
	ProviderBaseURL string
	ProviderAPIKey  string
	ProviderHost    string
	ProviderTimeout time.Duration
	ProviderRPS     float64
	Season          int // 0 deriva por liga a partir da data pedida

	// Simulador do provedor
	SimulatorFailRate float64

	// Modelo
	DefaultXGHome float64
	DefaultXGAway float64
	GoalCap       int

	// Catálogo e front-end
	LeaguesFile string
	StaticDir   string
	LogoBaseURL string

	// Portas do serviço atual
	HTTPPort    string // Porta pública (API + estáticos)
	MetricsPort string // Porta exclusiva para /metrics e /healthz
}

// Load carrega .env (se existir) e variáveis de ambiente com defaults
// Resolve portas conforme o SERVICE_NAME
func Load() Config {
	_ = godotenv.Load()

	svc := getEnv("SERVICE_NAME", "prediction-service")
	env := getEnv("ENV", "local")

	cfg := Config{
		Env:         env,
		ServiceName: svc,
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		RedisAddr:    getEnv("REDIS_ADDR", ""),
		KafkaBrokers: getEnv("KAFKA_BROKERS", ""),

		TopicPredictions:   getEnv("KAFKA_TOPIC_PREDICTIONS", ctopics.PredictionsComputed),
		RedisPubSubChannel: getEnv("REDIS_PUBSUB_CHANNEL", "predictions_broadcast"),

		ProviderBaseURL: getEnv("PROVIDER_BASE_URL", "http://localhost:8081"),
		ProviderAPIKey:  getEnv("PROVIDER_API_KEY", ""),
		ProviderHost:    getEnv("PROVIDER_HOST", "v3.football.api-sports.io"),
		ProviderTimeout: getEnvDuration("PROVIDER_TIMEOUT", 10*time.Second),
		ProviderRPS:     getEnvFloat("PROVIDER_RPS", 5),
		Season:          getEnvInt("SEASON", 0),

		SimulatorFailRate: getEnvFloat("SIMULATOR_FAIL_RATE", 0),

		DefaultXGHome: getEnvFloat("DEFAULT_XG_HOME", 1.5),
		DefaultXGAway: getEnvFloat("DEFAULT_XG_AWAY", 1.2),
		GoalCap:       getEnvInt("GOAL_CAP", 6),

		LeaguesFile: getEnv("LEAGUES_FILE", "config/leagues.yaml"),
		StaticDir:   getEnv("STATIC_DIR", "web"),
		LogoBaseURL: getEnv("LOGO_BASE_URL", "https://media.api-sports.io/football/teams"),
	}

	// Define portas padrão para cada serviço
	switch svc {
	case "provider-simulator":
		cfg.HTTPPort = getEnv("HTTP_PORT_PROVIDER", "8081")
		cfg.MetricsPort = getEnv("METRICS_PORT_PROVIDER", "9094")
	case "predictions-audit-worker":
		cfg.MetricsPort = getEnv("METRICS_PORT_AUDIT", "9096")
	default:
		cfg.HTTPPort = getEnv("HTTP_PORT", "8080")
		cfg.MetricsPort = getEnv("METRICS_PORT", "9095")
	}

	return cfg
}

// getEnv retorna o valor da variável de ambiente ou o default
func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
