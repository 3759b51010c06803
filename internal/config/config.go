package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries all runtime settings, loaded from the environment.
type Config struct {
	AppEnv    string
	LogLevel  string
	LogFormat string

	HTTPListenAddr   string
	PublicBasePath   string
	PublicBaseURL    string
	MetricsNamespace string

	// Postgres (Supabase). When empty, the service falls back to SQLite.
	DatabaseURL    string
	DatabaseSchema string
	SQLitePath     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTLS      bool

	WhatsAppEnabled   bool
	WhatsAppStorePath string
	WhatsAppLogLevel  string

	HotelName      string
	ReceptionPhone string
	ChatSessionTTL time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		HTTPListenAddr:   getEnv("HTTP_LISTEN_ADDR", ":8080"),
		PublicBasePath:   getEnv("PUBLIC_BASE_PATH", ""),
		PublicBaseURL:    getEnv("PUBLIC_BASE_URL", ""),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", "hoteldesk"),

		DatabaseURL:    getEnv("DATABASE_URL", ""),
		DatabaseSchema: getEnv("DATABASE_SCHEMA", "public"),
		SQLitePath:     getEnv("SQLITE_PATH", "data/hoteldesk.db"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisTLS:      getEnvBool("REDIS_TLS", false),

		WhatsAppEnabled:   getEnvBool("WHATSAPP_ENABLED", true),
		WhatsAppStorePath: getEnv("WHATSAPP_STORE_PATH", "data/wa-store.db"),
		WhatsAppLogLevel:  getEnv("WHATSAPP_LOG_LEVEL", "WARN"),

		HotelName:      getEnv("HOTEL_NAME", "Hôtel Touriste"),
		ReceptionPhone: getEnv("RECEPTION_PHONE", "+243 976 938 182"),
		ChatSessionTTL: getEnvDuration("CHAT_SESSION_TTL", 30*time.Minute),
	}
	return cfg, nil
}

// ChatbotURL returns the public chat widget link, empty when no base URL is
// configured.
func (c *Config) ChatbotURL() string {
	if c.PublicBaseURL == "" {
		return ""
	}
	return strings.TrimRight(c.PublicBaseURL, "/") + "/chat"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
