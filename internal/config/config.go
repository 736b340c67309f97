package config

import (
	"errors"
	"flag"
	"fmt"

	"github.com/xyproto/env/v2"
)

const (
	ImplHash = "hash"
	ImplList = "list"

	HasherMultiplicative = "multiplicative"
	HasherXX             = "xxhash"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Addr        string
	MetricsAddr string
	Multicore   bool

	Impl   string
	Hasher string

	LogLevel      string
	LogFormat     string
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
}

// Load parses args on top of defaults taken from SYMTABLE_* environment
// variables. The environment is re-read on every call.
func Load(name string, args []string) (*Config, error) {
	env.Load()

	cfg := &Config{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	fs.StringVar(&cfg.Addr, "addr", env.Str("SYMTABLE_ADDR", "tcp://127.0.0.1:6380"), "Protocol and address to listen on")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", env.Str("SYMTABLE_METRICS_ADDR", ":9380"), "Address for /metrics and /healthz (empty disables)")
	fs.BoolVar(&cfg.Multicore, "multicore", env.Bool("SYMTABLE_MULTICORE"), "Run one event loop per CPU")
	fs.StringVar(&cfg.Impl, "impl", env.Str("SYMTABLE_IMPL", ImplHash), "Table implementation: hash, list")
	fs.StringVar(&cfg.Hasher, "hasher", env.Str("SYMTABLE_HASHER", HasherMultiplicative), "Bucket hash for the hash table: multiplicative, xxhash")
	fs.StringVar(&cfg.LogLevel, "log-level", env.Str("SYMTABLE_LOG_LEVEL", "info"), "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFormat, "log-format", env.Str("SYMTABLE_LOG_FORMAT", "json"), "Log format: json, console")
	fs.StringVar(&cfg.LogFile, "log-file", env.Str("SYMTABLE_LOG_FILE"), "Log file path (empty logs to stderr)")
	fs.IntVar(&cfg.LogMaxSizeMB, "log-max-size", env.Int("SYMTABLE_LOG_MAX_SIZE_MB", 100), "Rotate the log file after this many megabytes")
	fs.IntVar(&cfg.LogMaxBackups, "log-max-backups", env.Int("SYMTABLE_LOG_MAX_BACKUPS", 3), "Rotated log files to keep")
	fs.IntVar(&cfg.LogMaxAgeDays, "log-max-age", env.Int("SYMTABLE_LOG_MAX_AGE_DAYS", 0), "Days to keep rotated log files (0 keeps them all)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Impl {
	case ImplHash, ImplList:
	default:
		return fmt.Errorf("%w: unknown impl %q", ErrInvalidConfig, c.Impl)
	}

	switch c.Hasher {
	case HasherMultiplicative, HasherXX:
	default:
		return fmt.Errorf("%w: unknown hasher %q", ErrInvalidConfig, c.Hasher)
	}

	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.LogFormat)
	}

	if c.Addr == "" {
		return fmt.Errorf("%w: empty listen address", ErrInvalidConfig)
	}
	if c.LogMaxSizeMB < 0 || c.LogMaxBackups < 0 || c.LogMaxAgeDays < 0 {
		return fmt.Errorf("%w: log rotation limits must not be negative", ErrInvalidConfig)
	}
	return nil
}
