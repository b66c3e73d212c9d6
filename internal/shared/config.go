package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"structured_markup/internal/schema"
)

type Config struct {
	AppEnv      string        `validate:"oneof=dev test prod"`
	HTTPAddr    string        `validate:"required"`
	// empty MetricsAddr disables the standalone metrics listener,
	// empty RedisAddr disables the record cache
	MetricsAddr string
	MySQLDSN    string        `validate:"required"`
	RedisAddr   string
	RedisDB     int           `validate:"gte=0,lte=15"`
	RedisPass   string
	CacheTTL    time.Duration `validate:"gte=0"`
	RemoteBase  string        `validate:"omitempty,url"`
	RemoteKey   string
	RemoteRPS   int           `validate:"gt=0"`
	Workers     int           `validate:"gte=1,lte=64"`
	NameGated   bool
}

// GateMode is the sanitizer gating mode selected by SCHEMA_NAME_GATED.
func (c Config) GateMode() schema.GateMode {
	if c.NameGated {
		return schema.GateOnName
	}
	return schema.GatePerField
}

// Load reads an optional .env file, then the environment, and validates the result.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg(".env could not be loaded")
	}

	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/schema?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisDB:     atoi("REDIS_DB", 0),
		RedisPass:   env("REDIS_PASSWORD", ""),
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		RemoteBase:  strings.TrimRight(env("REMOTE_BASE_URL", ""), "/"),
		RemoteKey:   env("REMOTE_API_KEY", ""),
		RemoteRPS:   atoi("REMOTE_RPS", 5),
		Workers:     atoi("IMPORT_WORKERS", 4),
		NameGated:   truthy(env("SCHEMA_NAME_GATED", "")),
	}
	if err := validator.New().Struct(c); err != nil {
		return c, errors.Wrap(err, "invalid configuration")
	}
	return c, nil
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoi(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
	}
	return def
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
