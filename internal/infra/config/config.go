package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Env        string
	Port       string
	DB         DBConfig
	LLM        LLMConfig
	Selector   SelectorConfig
	Aggregator AggregatorConfig
	Worker     WorkerConfig
	OTel       OTelConfig
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	MaxConns int
	MinConns int
}

// DSN builds the PostgreSQL connection string.
func (c DBConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%s", c.Host, c.Port),
		Path:     c.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

type LLMConfig struct {
	Provider  string // "ollama" or "gemini"
	URL       string
	Model     string
	APIKey    string
	Timeout   int // seconds
	MaxTokens int
	Locale    string
}

type SelectorConfig struct {
	CacheSize int
	CacheTTL  int // minutes
	RateLimit float64
	RateBurst int
}

type AggregatorConfig struct {
	CandidateLimit int
	Concurrency    int
}

type WorkerConfig struct {
	Enabled bool
}

type OTelConfig struct {
	Enabled        bool
	Endpoint       string
	SampleRatio    float64
	ServiceVersion string
}

func Load() *Config {
	return &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "9020"),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "welcomecraft-db"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "welcomecraft"),
			Password: getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", "welcomecraft"),
			Name:     getEnv("DB_NAME", "welcomecraft"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 10),
			MinConns: getEnvInt("DB_MIN_CONNS", 2),
		},
		LLM: LLMConfig{
			Provider:  strings.ToLower(getEnv("LLM_PROVIDER", "ollama")),
			URL:       getEnvWithAlt("LLM_URL", "OLLAMA_URL", "http://ollama:11434"),
			Model:     getEnv("LLM_MODEL", "gemma3:12b"),
			APIKey:    getSecret("GEMINI_API_KEY", "GEMINI_API_KEY_FILE", ""),
			Timeout:   getEnvInt("LLM_TIMEOUT", 120),
			MaxTokens: getEnvInt("SITE_SELECTOR_MAX_TOKENS", 2048),
			Locale:    getEnv("SITE_DEFAULT_LOCALE", ""),
		},
		Selector: SelectorConfig{
			CacheSize: getEnvInt("SITE_SELECTION_CACHE_SIZE", 128),
			CacheTTL:  getEnvInt("SITE_SELECTION_CACHE_TTL_MINUTES", 10),
			RateLimit: getEnvFloat64("LLM_RATE_LIMIT", 2.0),
			RateBurst: getEnvInt("LLM_RATE_BURST", 4),
		},
		Aggregator: AggregatorConfig{
			CandidateLimit: getEnvInt("AGGREGATOR_CANDIDATE_LIMIT", 10),
			Concurrency:    getEnvInt("AGGREGATOR_CONCURRENCY", 4),
		},
		Worker: WorkerConfig{
			Enabled: getEnvBool("SITE_WORKER_ENABLED", true),
		},
		OTel: OTelConfig{
			Enabled:        getEnvBool("OTEL_ENABLED", false),
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
			SampleRatio:    getEnvFloat64("OTEL_TRACE_SAMPLE_RATIO", 0.1),
			ServiceVersion: getEnv("SERVICE_VERSION", "0.0.0"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}
	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return fallback
}

func getEnvWithAlt(key, altKey, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	if value, ok := os.LookupEnv(altKey); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat64(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
