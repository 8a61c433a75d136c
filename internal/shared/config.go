package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreMySQL  = "mysql"
)

type Config struct {
	AppEnv         string
	LogLevel       string
	HTTPAddr       string
	MetricsAddr    string
	BackendBase    string
	BackendRPS     int
	BackendTimeout time.Duration
	StoreDriver    string
	MySQLDSN       string
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	CacheTTL       time.Duration
	SessionTTL     time.Duration
	RefreshEvery   time.Duration
	SessionCookie  string
	PageSize       int
	WarmWorkers    int
	WarmFeatured   int
}

// Load reads the environment. A .env file in the working directory, if
// present, fills variables that are not already set.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg(".env could not be read")
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		}
		return def
	}
	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		LogLevel:       env("LOG_LEVEL", "info"),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		MetricsAddr:    env("METRICS_ADDR", ":9100"),
		BackendBase:    env("BACKEND_BASE_URL", "http://localhost:3001/api"),
		BackendRPS:     atoi("BACKEND_RPS", 20),
		BackendTimeout: time.Duration(atoi("BACKEND_TIMEOUT_SECONDS", 30)) * time.Second,
		StoreDriver:    env("STORE_DRIVER", StoreMemory),
		MySQLDSN:       env("MYSQL_DSN", "root:root@tcp(localhost:3306)/staybook?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:      env("REDIS_ADDR", "localhost:6379"),
		RedisDB:        atoi("REDIS_DB", 0),
		RedisPass:      env("REDIS_PASSWORD", ""),
		CacheTTL:       time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		SessionTTL:     time.Duration(atoi("SESSION_TTL_SECONDS", 7*24*3600)) * time.Second,
		RefreshEvery:   time.Duration(atoi("TOKEN_REFRESH_MINUTES", 45)) * time.Minute,
		SessionCookie:  env("SESSION_COOKIE", "staybook_sid"),
		PageSize:       atoi("SEARCH_PAGE_SIZE", 12),
		WarmWorkers:    atoi("WARM_WORKERS", 8),
		WarmFeatured:   atoi("WARM_FEATURED_LIMIT", 6),
	}
	switch c.StoreDriver {
	case StoreMemory, StoreRedis, StoreMySQL:
	default:
		log.Warn().Str("driver", c.StoreDriver).Msg("unknown STORE_DRIVER, falling back to memory")
		c.StoreDriver = StoreMemory
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
