// Package config resolves ipsearch settings from environment variables and
// command-line flags. Flags override the environment, which overrides the
// defaults.
package config

import (
	"flag"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"time"

	"github.com/dreamware/ipsearch/internal/address"
	"github.com/dreamware/ipsearch/internal/partition"
	"github.com/dreamware/ipsearch/internal/search"
)

// Config holds every setting of a search run.
type Config struct {
	From       string
	To         string
	StatusAddr string
	LogLevel   string
	LogFormat  string
	Interval   time.Duration
	BatchSize  uint64
	Workers    int
	ReserveCPU bool
	Quiet      bool
	NoGC       bool
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Workers:   runtime.NumCPU(),
		BatchSize: search.DefaultBatchSize,
		Interval:  time.Second,
		From:      "0.0.0.0",
		To:        "255.255.255.255",
		LogLevel:  "info",
		LogFormat: "console",
	}
}

// FromEnv overlays environment settings onto Default. Malformed values are
// reported rather than ignored.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()

	var err error
	if v := getenv("IPSEARCH_WORKERS"); v != "" {
		if cfg.Workers, err = strconv.Atoi(v); err != nil {
			return cfg, fmt.Errorf("IPSEARCH_WORKERS: %w", err)
		}
	}
	if v := getenv("IPSEARCH_RESERVE_CPU"); v != "" {
		if cfg.ReserveCPU, err = strconv.ParseBool(v); err != nil {
			return cfg, fmt.Errorf("IPSEARCH_RESERVE_CPU: %w", err)
		}
	}
	if v := getenv("IPSEARCH_BATCH"); v != "" {
		if cfg.BatchSize, err = strconv.ParseUint(v, 10, 64); err != nil {
			return cfg, fmt.Errorf("IPSEARCH_BATCH: %w", err)
		}
	}
	if v := getenv("IPSEARCH_INTERVAL"); v != "" {
		if cfg.Interval, err = time.ParseDuration(v); err != nil {
			return cfg, fmt.Errorf("IPSEARCH_INTERVAL: %w", err)
		}
	}
	if v := getenv("IPSEARCH_NO_GC"); v != "" {
		if cfg.NoGC, err = strconv.ParseBool(v); err != nil {
			return cfg, fmt.Errorf("IPSEARCH_NO_GC: %w", err)
		}
	}
	cfg.From = getenvDefault(getenv, "IPSEARCH_FROM", cfg.From)
	cfg.To = getenvDefault(getenv, "IPSEARCH_TO", cfg.To)
	cfg.StatusAddr = getenvDefault(getenv, "IPSEARCH_STATUS_ADDR", cfg.StatusAddr)
	cfg.LogLevel = getenvDefault(getenv, "IPSEARCH_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getenvDefault(getenv, "IPSEARCH_LOG_FORMAT", cfg.LogFormat)
	return cfg, nil
}

// Load resolves the configuration for args (without the program name) and
// returns the remaining positional arguments.
func Load(args []string, getenv func(string) string, output io.Writer) (Config, []string, error) {
	cfg, err := FromEnv(getenv)
	if err != nil {
		return cfg, nil, err
	}

	fs := flag.NewFlagSet("ipsearch", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintln(output, "usage: ipsearch [flags] <sha256-hex>")
		fmt.Fprintln(output, "       ipsearch status [-addr host:port]")
		fs.PrintDefaults()
	}
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "number of search workers")
	fs.BoolVar(&cfg.ReserveCPU, "reserve-cpu", cfg.ReserveCPU, "leave one CPU for progress reporting")
	fs.Uint64Var(&cfg.BatchSize, "batch", cfg.BatchSize, "candidates per worker between cancellation checks")
	fs.DurationVar(&cfg.Interval, "interval", cfg.Interval, "progress reporting interval")
	fs.StringVar(&cfg.From, "from", cfg.From, "first address to search")
	fs.StringVar(&cfg.To, "to", cfg.To, "last address to search")
	fs.StringVar(&cfg.StatusAddr, "status-addr", cfg.StatusAddr, "serve /health, /progress, /workers and /metrics on this address")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "console or json")
	fs.BoolVar(&cfg.Quiet, "quiet", cfg.Quiet, "do not print the progress line")
	fs.BoolVar(&cfg.NoGC, "no-gc", cfg.NoGC, "disable the garbage collector during the search")

	if err := fs.Parse(args); err != nil {
		return cfg, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}
	return cfg, fs.Args(), nil
}

// Validate rejects settings no run can use.
func (c Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", search.ErrInvalidConfiguration, c.Workers)
	}
	if c.BatchSize == 0 {
		return fmt.Errorf("%w: batch size must be at least 1", search.ErrInvalidConfiguration)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive, got %s", search.ErrInvalidConfiguration, c.Interval)
	}
	if _, err := c.Range(); err != nil {
		return err
	}
	return nil
}

// Range parses From and To into the range to search.
func (c Config) Range() (partition.Range, error) {
	from, err := address.Parse(c.From)
	if err != nil {
		return partition.Range{}, fmt.Errorf("%w: from: %w", search.ErrInvalidConfiguration, err)
	}
	to, err := address.Parse(c.To)
	if err != nil {
		return partition.Range{}, fmt.Errorf("%w: to: %w", search.ErrInvalidConfiguration, err)
	}
	if from > to {
		return partition.Range{}, fmt.Errorf("%w: from %s is after to %s", search.ErrInvalidConfiguration, c.From, c.To)
	}
	return partition.Range{Start: from, End: to}, nil
}

// EffectiveWorkers is the worker count after reserving a CPU, never below one.
func (c Config) EffectiveWorkers() int {
	n := c.Workers
	if c.ReserveCPU {
		n--
	}
	if n < 1 {
		n = 1
	}
	return n
}

func getenvDefault(getenv func(string) string, key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}
