// Package config centralizes loader configuration. All tunables come from
// command-line flags whose defaults are seeded from environment variables, so
// every entry point can be run with no arguments in a configured environment.
//
// Typical usage:
//
//	cfg := config.Load() // reads os.Args and os.Environ
//
// For tests, prefer LoadFromArgs to keep them hermetic:
//
//	fs := flag.NewFlagSet("test", flag.ContinueOnError)
//	getenv := func(k string) string { return testEnv[k] }
//	cfg := config.LoadFromArgs(fs, getenv, []string{"-batch_size=10"})
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all process configuration derived from flags and environment
// variables. Fields are plain values so the struct can be copied freely.
type Config struct {
	// Source data.
	DataDir  string // Base directory holding timestamped data drops.
	LatestBy string // "name" (default) or "mtime".
	Encoding string // Source text encoding: "utf-8", "windows-1252", "latin1".

	// Destination store.
	DBDriver     string // "postgres", "sqlite", "mysql" or "mssql".
	DSN          string // Connection string for the selected driver.
	CreateTables bool   // Create destination tables when missing.

	// Ingestion behavior.
	BatchSize     int    // Rows per bulk write.
	ProgressEvery int    // Re-render progress every N lines.
	PreloadKeys   bool   // Pre-load existing business keys where the pipeline asks for it.
	OnBatchError  string // "" (pipeline default), "continue" or "abort".
	Pipeline      string // Pipeline selector; only set when WithPipelineFlag is used.

	// Side files.
	ProcessedLog string // JSON processed-files log for resumable pipelines.
	SkippedDir   string // Directory for dropped-row CSV logs; empty disables.

	// Metrics.
	PushgatewayURL string // Prometheus Pushgateway base URL; empty disables.
	DogStatsDAddr  string // DogStatsD address; empty disables.
}

// Recognized values for Config fields validated by Validate.
var (
	drivers   = []string{"postgres", "sqlite", "mysql", "mssql"}
	latestBy  = []string{"name", "mtime"}
	encodings = []string{"utf-8", "utf8", "windows-1252", "cp1252", "latin1", "iso-8859-1"}
	onBatch   = []string{"", "continue", "abort"}
)

// Option adjusts the flag set LoadFromArgs defines.
type Option func(*loadOptions)

type loadOptions struct {
	pipelineFlag bool
}

// WithPipelineFlag defines -pipeline (env PIPELINE). Only commands that run a
// selectable set of pipelines use it; the others reject the flag as unknown.
func WithPipelineFlag() Option {
	return func(o *loadOptions) { o.pipelineFlag = true }
}

// LoadFromArgs builds a Config by defining flags on fs, wiring each flag to an
// environment-variable fallback via getenv, and then parsing args.
//
// Precedence:
//  1. Environment values seed each flag's default.
//  2. Explicit CLI flags (in args) override the seeded defaults.
func LoadFromArgs(fs *flag.FlagSet, getenv func(string) string, args []string, opts ...Option) *Config {
	cfg := &Config{}
	var lo loadOptions
	for _, o := range opts {
		o(&lo)
	}

	envOrDefaultFn := func(k, d string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return d
	}
	intEnvOrDefaultFn := func(k string, d int) int {
		if v := getenv(k); v != "" {
			if i, err := strconv.Atoi(v); err == nil {
				return i
			}
		}
		return d
	}
	boolEnvOrDefaultFn := func(k string, d bool) bool {
		if v := strings.ToLower(getenv(k)); v != "" {
			switch v {
			case "1", "true", "yes", "on":
				return true
			case "0", "false", "no", "off":
				return false
			}
		}
		return d
	}

	// Source data
	fs.StringVar(&cfg.DataDir, "data_dir", envOrDefaultFn("DATA_DIR", "data/hcad"), "Base directory containing timestamped data drops")
	fs.StringVar(&cfg.LatestBy, "latest_by", envOrDefaultFn("LATEST_BY", "name"), "Latest data drop selection: 'name' or 'mtime'")
	fs.StringVar(&cfg.Encoding, "encoding", envOrDefaultFn("SOURCE_ENCODING", "utf-8"), "Source file encoding: utf-8, windows-1252, latin1")

	// DB connectivity. POSTGRES_URL is the primary knob; DB_DSN covers other drivers.
	fs.StringVar(&cfg.DBDriver, "db_driver", envOrDefaultFn("DB_DRIVER", "postgres"), "Database driver: postgres, sqlite, mysql or mssql")
	fs.StringVar(&cfg.DSN, "dsn", envOrDefaultFn("DB_DSN", getenv("POSTGRES_URL")), "Database connection string (defaults to $POSTGRES_URL)")
	fs.BoolVar(&cfg.CreateTables, "create_tables", boolEnvOrDefaultFn("CREATE_TABLES", false), "Create destination tables when missing")

	// Ingestion
	fs.IntVar(&cfg.BatchSize, "batch_size", intEnvOrDefaultFn("BATCH_SIZE", 1000), "Rows per bulk insert")
	fs.IntVar(&cfg.ProgressEvery, "progress_every", intEnvOrDefaultFn("PROGRESS_EVERY", 100), "Refresh progress every N lines")
	fs.BoolVar(&cfg.PreloadKeys, "preload_keys", boolEnvOrDefaultFn("PRELOAD_KEYS", true), "Pre-load existing business keys for pipelines that skip existing rows (extra_features relies on it to stay idempotent)")
	fs.StringVar(&cfg.OnBatchError, "on_batch_error", envOrDefaultFn("ON_BATCH_ERROR", ""), "Batch failure policy override: 'continue' or 'abort' (empty keeps pipeline default)")
	if lo.pipelineFlag {
		fs.StringVar(&cfg.Pipeline, "pipeline", envOrDefaultFn("PIPELINE", "all"), "Pipelines to run: all, or a comma-separated list of extra_features, neighborhood_codes, property_data, structural_elements")
	}

	// Side files
	fs.StringVar(&cfg.ProcessedLog, "processed_log", envOrDefaultFn("PROCESSED_LOG", "data/processed_structural_files.json"), "Processed-files log for resumable pipelines")
	fs.StringVar(&cfg.SkippedDir, "skipped_dir", envOrDefaultFn("SKIPPED_DIR", ""), "Directory for dropped-row CSV logs (empty disables)")

	// Metrics
	fs.StringVar(&cfg.PushgatewayURL, "pushgateway_url", envOrDefaultFn("PUSHGATEWAY_URL", ""), "Prometheus Pushgateway URL (empty disables)")
	fs.StringVar(&cfg.DogStatsDAddr, "dogstatsd_addr", envOrDefaultFn("DD_AGENT_ADDR", ""), "DogStatsD address (empty disables)")

	if args == nil {
		args = []string{}
	}
	_ = fs.Parse(args)
	return cfg
}

// Load is the production entry point: process flag set, os.Getenv, os.Args[1:].
func Load(opts ...Option) *Config {
	return LoadFromArgs(flag.CommandLine, os.Getenv, os.Args[1:], opts...)
}

// Validate reports the first configuration problem that would make a run
// meaningless before any data is touched.
func (c *Config) Validate() error {
	if !oneOf(strings.ToLower(c.DBDriver), drivers) {
		return fmt.Errorf("unsupported db_driver=%q", c.DBDriver)
	}
	if strings.TrimSpace(c.DSN) == "" {
		return errors.New("no database DSN: set POSTGRES_URL, DB_DSN or -dsn")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0, got %d", c.BatchSize)
	}
	if c.ProgressEvery <= 0 {
		return fmt.Errorf("progress_every must be > 0, got %d", c.ProgressEvery)
	}
	if !oneOf(strings.ToLower(c.LatestBy), latestBy) {
		return fmt.Errorf("unsupported latest_by=%q", c.LatestBy)
	}
	if !oneOf(strings.ToLower(c.Encoding), encodings) {
		return fmt.Errorf("unsupported encoding=%q", c.Encoding)
	}
	if !oneOf(strings.ToLower(c.OnBatchError), onBatch) {
		return fmt.Errorf("unsupported on_batch_error=%q", c.OnBatchError)
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return errors.New("data_dir must not be empty")
	}
	return nil
}

// ContinueOnBatchError resolves the batch failure policy for a pipeline whose
// built-in default is def.
func (c *Config) ContinueOnBatchError(def bool) bool {
	switch strings.ToLower(c.OnBatchError) {
	case "continue":
		return true
	case "abort":
		return false
	default:
		return def
	}
}

func oneOf(v string, set []string) bool {
	for _, s := range set {
		if v == s {
			return true
		}
	}
	return false
}
