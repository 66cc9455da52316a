package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"maklarsystem/internal/bidding/domain"
)

// Config is the full process configuration.
type Config struct {
	Server    Server
	Bidding   Bidding
	Storage   Storage
	Lock      Lock
	Redis     RedisConfig
	RateLimit RateLimit
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	LogLevel        string
	LogFormat       string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// Bidding holds the bid rule parameters. AcceptPolicy has no default.
type Bidding struct {
	MinimumIncrement int64
	AcceptPolicy     domain.AcceptPolicy
}

// Storage selects the bid store.
type Storage struct {
	Driver string // memory | postgres
	DSN    string
}

// Lock selects the per-listing lock.
type Lock struct {
	Driver string // memory | redis
	TTL    time.Duration
	Wait   time.Duration
}

// RedisConfig configures the shared Redis client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RateLimit bounds requests per client IP on the domain endpoints.
// Requests of 0 disables limiting.
type RateLimit struct {
	Requests int
	Window   time.Duration
}

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// FromEnv builds a Config from environment variables with development
// defaults. It does not validate; use Load for that.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:            getEnv("MAKLAR_ADDR", ":8080"),
			LogLevel:        getEnv("LOG_LEVEL", "info"),
			LogFormat:       getEnv("LOG_FORMAT", "json"),
			RequestTimeout:  getDuration("REQUEST_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Bidding: Bidding{
			MinimumIncrement: getInt64("BID_MIN_INCREMENT", domain.DefaultMinimumIncrement),
			AcceptPolicy:     domain.AcceptPolicy(os.Getenv("BID_ACCEPT_POLICY")),
		},
		Storage: Storage{
			Driver: getEnv("STORAGE_DRIVER", DriverMemory),
			DSN:    os.Getenv("DATABASE_URL"),
		},
		Lock: Lock{
			Driver: getEnv("LOCK_DRIVER", DriverMemory),
			TTL:    getDuration("LOCK_TTL", 10*time.Second),
			Wait:   getDuration("LOCK_WAIT", 5*time.Second),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     int(getInt64("REDIS_POOL_SIZE", 10)),
			MinIdleConns: int(getInt64("REDIS_MIN_IDLE_CONNS", 2)),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		RateLimit: RateLimit{
			Requests: int(getInt64("RATE_LIMIT_REQUESTS", 120)),
			Window:   getDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
	}
}

// Load reads the environment and validates the result.
func Load() (Config, error) {
	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error
	policy, err := domain.ParseAcceptPolicy(string(c.Bidding.AcceptPolicy))
	if err != nil {
		errs = append(errs, fmt.Errorf("BID_ACCEPT_POLICY: %w", err))
	} else if policy != c.Bidding.AcceptPolicy {
		errs = append(errs, fmt.Errorf("BID_ACCEPT_POLICY: use %q", policy))
	}
	if c.Bidding.MinimumIncrement <= 0 {
		errs = append(errs, errors.New("BID_MIN_INCREMENT must be positive"))
	}
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Storage.DSN == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER: unknown driver %q", c.Storage.Driver))
	}
	switch c.Lock.Driver {
	case DriverMemory:
	case DriverRedis:
		if c.Redis.URL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis lock"))
		}
	default:
		errs = append(errs, fmt.Errorf("LOCK_DRIVER: unknown driver %q", c.Lock.Driver))
	}
	if c.RateLimit.Requests < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_REQUESTS must not be negative"))
	}
	if c.RateLimit.Requests > 0 && c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
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
