// internal/config/config.go
package config

import (
	"cmp"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAddr            = ":8080"
	defaultStore           = StoreMemory
	defaultReviewRPS       = 5
	defaultNotifyTimeout   = 5 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

var (
	ErrUnknownStore = errors.New("unknown store")
	ErrMissingDSN   = errors.New("postgres store needs DATABASE_URL")
	ErrNonPositive  = errors.New("value must be positive")
)

type Config struct {
	Addr            string
	Debug           bool
	Store           string
	DatabaseURL     string
	ReviewURL       string
	ReviewRPS       int
	NotifyTimeout   time.Duration
	OTLPEndpoint    string
	ShutdownTimeout time.Duration
}

// Read loads .env files, then command line flags, then environment
// overrides. The runtime environment always wins over .env values.
func Read() (*Config, error) {
	return read(flag.CommandLine, os.Args[1:], ".env", ".env.local")
}

func read(fs *flag.FlagSet, args []string, envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	var rps int
	var notifyTimeout, shutdownTimeout time.Duration
	fs.StringVar(&cfg.Addr, "addr", defaultAddr, "address the HTTP server listens on")
	fs.BoolVar(&cfg.Debug, "debug", false, "enable debug logging")
	fs.StringVar(&cfg.Store, "store", defaultStore, "storage backend: memory or postgres")
	fs.StringVar(&cfg.DatabaseURL, "db", "", "postgres connection string")
	fs.StringVar(&cfg.ReviewURL, "reviews", "", "base URL of the review service")
	fs.IntVar(&rps, "review-rps", defaultReviewRPS, "requests per second to the review service")
	fs.DurationVar(&notifyTimeout, "notify-timeout", defaultNotifyTimeout, "timeout of one notification attempt")
	fs.DurationVar(&shutdownTimeout, "shutdown-timeout", defaultShutdownTimeout, "graceful shutdown timeout")
	fs.StringVar(&cfg.OTLPEndpoint, "otlp", "", "OTLP/HTTP trace endpoint")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	var err error
	cfg.Addr = cmp.Or(os.Getenv("LEND_ADDR"), cfg.Addr)
	if cfg.Debug, err = strconv.ParseBool(cmp.Or(os.Getenv("LEND_DEBUG"), strconv.FormatBool(cfg.Debug))); err != nil {
		return nil, fmt.Errorf("LEND_DEBUG: %w", err)
	}
	cfg.Store = cmp.Or(os.Getenv("LEND_STORE"), cfg.Store)
	cfg.DatabaseURL = cmp.Or(os.Getenv("DATABASE_URL"), cfg.DatabaseURL)
	cfg.ReviewURL = cmp.Or(os.Getenv("REVIEW_SERVICE_URL"), cfg.ReviewURL)
	cfg.OTLPEndpoint = cmp.Or(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"), cfg.OTLPEndpoint)

	if cfg.ReviewRPS, err = strconv.Atoi(cmp.Or(os.Getenv("REVIEW_RPS"), strconv.Itoa(rps))); err != nil {
		return nil, fmt.Errorf("REVIEW_RPS: %w", err)
	}
	if cfg.NotifyTimeout, err = time.ParseDuration(cmp.Or(os.Getenv("NOTIFY_TIMEOUT"), notifyTimeout.String())); err != nil {
		return nil, fmt.Errorf("NOTIFY_TIMEOUT: %w", err)
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(cmp.Or(os.Getenv("SHUTDOWN_TIMEOUT"), shutdownTimeout.String())); err != nil {
		return nil, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return ErrMissingDSN
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStore, c.Store)
	}
	if c.ReviewRPS <= 0 {
		return fmt.Errorf("REVIEW_RPS: %w", ErrNonPositive)
	}
	if c.NotifyTimeout <= 0 {
		return fmt.Errorf("NOTIFY_TIMEOUT: %w", ErrNonPositive)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT: %w", ErrNonPositive)
	}
	return nil
}
