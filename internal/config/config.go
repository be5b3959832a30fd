// Package config reads the storefront settings from the environment,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/kieracarman/bakery-storefront/internal/orders"
	"github.com/kieracarman/bakery-storefront/internal/storage"
)

var (
	ErrInvalidStorage   = errors.New("invalid storage backend")
	ErrInvalidRateLimit = errors.New("invalid checkout rate limit")
	ErrInvalidLogFormat = errors.New("invalid log format")
	ErrInvalidNumber    = errors.New("invalid number")
	ErrInvalidBool      = errors.New("invalid boolean")
)

// Config holds every runtime setting
type Config struct {
	Addr string

	Storage     string
	DataDir     string
	RedisAddr   string
	RedisPrefix string

	AMQPURL string

	// Transitions is strict by default: an order only moves to the next
	// pipeline status. BAKERY_ORDER_TRANSITIONS=permissive accepts any
	// pipeline status, so pending -> completed succeeds as it did before
	// the transition table existed.
	Transitions orders.Policy

	LogLevel  string
	LogFormat string

	CheckoutRPS   int
	CheckoutBurst int
	// TrustProxy makes the checkout limiter key clients by the first
	// X-Forwarded-For address. Only enable it behind a proxy that sets it.
	TrustProxy bool

	PixKey         string
	PixBeneficiary string
}

// Load reads .env files (missing ones are fine) and then the environment.
// Variables already set in the environment win over the files.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables alone
func FromEnv() (Config, error) {
	policy, err := orders.ParsePolicy(getenv("BAKERY_ORDER_TRANSITIONS", ""))
	if err != nil {
		return Config{}, err
	}
	rps, err := getenvInt("BAKERY_CHECKOUT_RPS", 5)
	if err != nil {
		return Config{}, err
	}
	burst, err := getenvInt("BAKERY_CHECKOUT_BURST", 10)
	if err != nil {
		return Config{}, err
	}
	trustProxy, err := getenvBool("BAKERY_TRUST_PROXY", false)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Addr:           getenv("BAKERY_ADDR", ":8080"),
		Storage:        strings.ToLower(getenv("BAKERY_STORAGE", storage.BackendSQLite)),
		DataDir:        getenv("BAKERY_DATA_DIR", "data"),
		RedisAddr:      getenv("BAKERY_REDIS_ADDR", "localhost:6379"),
		RedisPrefix:    getenv("BAKERY_REDIS_PREFIX", ""),
		AMQPURL:        os.Getenv("BAKERY_AMQP_URL"),
		Transitions:    policy,
		LogLevel:       getenv("BAKERY_LOG_LEVEL", "info"),
		LogFormat:      strings.ToLower(getenv("BAKERY_LOG_FORMAT", "text")),
		CheckoutRPS:    rps,
		CheckoutBurst:  burst,
		TrustProxy:     trustProxy,
		PixKey:         os.Getenv("BAKERY_PIX_KEY"),
		PixBeneficiary: os.Getenv("BAKERY_PIX_BENEFICIARY"),
	}
	return cfg, cfg.Validate()
}

// Validate checks the settings that have a closed set of values
func (c Config) Validate() error {
	switch c.Storage {
	case storage.BackendMemory, storage.BackendSQLite, storage.BackendRedis:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStorage, c.Storage)
	}
	if c.CheckoutRPS <= 0 || c.CheckoutBurst <= 0 {
		return fmt.Errorf("%w: rps=%d burst=%d", ErrInvalidRateLimit, c.CheckoutRPS, c.CheckoutBurst)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.LogFormat)
	}
	return nil
}

// StorageOptions maps the storage settings onto storage.Open
func (c Config) StorageOptions() storage.Options {
	return storage.Options{
		Backend:     c.Storage,
		DataDir:     c.DataDir,
		RedisAddr:   c.RedisAddr,
		RedisPrefix: c.RedisPrefix,
	}
}

func getenv(key, d string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return d
}

func getenvInt(key string, d int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return d, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidNumber, key, v)
	}
	return i, nil
}

func getenvBool(key string, d bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return d, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q", ErrInvalidBool, key, v)
	}
	return b, nil
}
