package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BusDriverRedis  = "redis"
	BusDriverRabbit = "rabbitmq"
)

type Config struct {
	AppEnv      string
	ServiceName string

	HTTPAddr    string
	DatabaseURL string // empty = in-memory repos (dev/test)

	JWTSecret string
	JWTIssuer string

	// Bus
	BusDriver      string // redis | rabbitmq
	RedisURL       string
	RabbitURL      string
	RabbitExchange string

	// Inventory
	LowStockThreshold int

	LogLevel  string
	LogFormat string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

func Load(serviceName string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.AppEnv = getEnv("APP_ENV", "dev")
	cfg.ServiceName = getEnv("SERVICE_NAME", serviceName)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")
	cfg.DatabaseURL = getEnv("DATABASE_URL", "")

	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.JWTIssuer = getEnv("JWT_ISSUER", "")

	cfg.BusDriver = getEnv("BUS_DRIVER", BusDriverRedis)
	cfg.RedisURL = getEnv("REDIS_URL", "redis://localhost:6379/0")
	cfg.RabbitURL = getEnv("RABBIT_URL", "")
	cfg.RabbitExchange = getEnv("RABBIT_EXCHANGE", "commerce.events")

	cfg.LowStockThreshold = getIntEnv("INVENTORY_LOW_THRESHOLD", 10)

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "console")

	cfg.HTTPReadTimeout = getDuration("HTTP_READ_TIMEOUT", 10*time.Second)
	cfg.HTTPWriteTimeout = getDuration("HTTP_WRITE_TIMEOUT", 20*time.Second)
	cfg.HTTPIdleTimeout = getDuration("HTTP_IDLE_TIMEOUT", 60*time.Second)

	// validation
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing JWT_SECRET")
	}
	switch cfg.BusDriver {
	case BusDriverRedis, BusDriverRabbit:
	default:
		return nil, fmt.Errorf("invalid BUS_DRIVER %q (want redis|rabbitmq)", cfg.BusDriver)
	}
	if cfg.BusDriver == BusDriverRabbit && cfg.RabbitURL == "" {
		return nil, fmt.Errorf("missing RABBIT_URL (required when BUS_DRIVER=rabbitmq)")
	}
	// Postgres: dev may run on memory repos; anything else must have a DB.
	if cfg.AppEnv != "dev" && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("missing DATABASE_URL (required when APP_ENV != dev)")
	}

	return cfg, nil
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getIntEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
