package main

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ProxyFile  string
	TokenFile  string
	SessionURL string
	PingURL    string
	Origin     string
	Version    string

	PingInterval   time.Duration
	PingMaxRetries int
	PoolCapacity   int
	PoolTick       time.Duration
	RequestTimeout time.Duration

	ProxySourceURL       string
	ProxyRefreshInterval time.Duration

	StatusPort string

	RedisAddr   string
	RedisPass   string
	RedisDB     int
	SessionTTL  time.Duration
	EventsTopic string

	LogFormat string
	LogLevel  string
}

func loadConfig() Config {
	_ = godotenv.Load()

	return Config{
		ProxyFile:  getEnv("PROXY_FILE", "proxies.txt"),
		TokenFile:  getEnv("TOKEN_FILE", "tokens.txt"),
		SessionURL: getEnv("SESSION_URL", ""),
		PingURL:    getEnv("PING_URL", ""),
		Origin:     getEnv("API_ORIGIN", ""),
		Version:    getEnv("CLIENT_VERSION", "2.2.7"),

		PingInterval:   time.Duration(getEnvInt("PING_INTERVAL_SECONDS", 60)) * time.Second,
		PingMaxRetries: getEnvInt("PING_MAX_RETRIES", 60),
		PoolCapacity:   getEnvInt("POOL_CAPACITY", 100),
		PoolTick:       time.Duration(getEnvInt("POOL_TICK_SECONDS", 3)) * time.Second,
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 30)) * time.Second,

		ProxySourceURL:       getEnv("PROXY_SOURCE_URL", ""),
		ProxyRefreshInterval: time.Duration(getEnvInt("PROXY_REFRESH_INTERVAL_MINUTES", 60)) * time.Minute,

		StatusPort: lookupEnv("STATUS_PORT", "8080"),

		RedisAddr:   getEnv("REDIS_ADDR", ""),
		RedisPass:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:     getEnvInt("REDIS_DB", 0),
		SessionTTL:  time.Duration(getEnvInt("SESSION_TTL_MINUTES", 120)) * time.Minute,
		EventsTopic: getEnv("REDIS_TOPIC_EVENTS", "identities:events"),

		LogFormat: getEnv("LOG_FORMAT", "text"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

// lookupEnv keeps an explicitly empty value, so STATUS_PORT= disables the server.
func lookupEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
