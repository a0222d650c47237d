// Package app is the composition layer shared by the loader commands. It
// wires configuration, the destination store, metrics backends and progress
// output, then runs the selected pipelines in order.
//
// All side effects are injected via Deps so Run is testable without a
// database, a terminal or a metrics endpoint.
package app

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"countyloader/internal/config"
	"countyloader/internal/importer"
	"countyloader/internal/metrics"
	"countyloader/internal/metrics/datadog"
	"countyloader/internal/metrics/prompush"
	"countyloader/internal/progress"
	"countyloader/internal/store"
	_ "countyloader/internal/store/all"
)

// Deps holds injectable dependencies. Production wiring is DefaultDeps.
type Deps struct {
	OpenStore      func(ctx context.Context, cfg store.Config) (store.Store, error)
	NewPushgateway func(jobName, url string, grouping map[string]string) (metrics.Backend, error)
	NewDogStatsD   func(cfg datadog.Config) (metrics.Backend, error)
	NewObserver    func() progress.Observer
	NewRunID       func() string
}

// DefaultDeps wires production implementations.
func DefaultDeps() Deps {
	return Deps{
		OpenStore: store.Open,
		NewPushgateway: func(jobName, url string, grouping map[string]string) (metrics.Backend, error) {
			return prompush.NewBackend(jobName, url, grouping)
		},
		NewDogStatsD: func(cfg datadog.Config) (metrics.Backend, error) {
			return datadog.NewBackend(cfg)
		},
		NewObserver: func() progress.Observer {
			return progress.Multi{progress.NewTerminal(os.Stdout), progress.Metrics{}}
		},
		NewRunID: func() string { return uuid.NewString() },
	}
}

// Run validates cfg, opens the store and runs pipelines in order. It stops at
// the first failing pipeline. The store is closed and metrics are flushed on
// every path.
func Run(ctx context.Context, cfg *config.Config, deps Deps, pipelines []importer.Pipeline) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	opts, err := importer.OptionsFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	opts.RunID = deps.NewRunID()
	opts.Observer = deps.NewObserver()

	installMetrics(cfg, deps, opts.RunID)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("⚠️ metrics flush: %v", err)
		}
	}()

	st, err := deps.OpenStore(ctx, store.Config{Driver: cfg.DBDriver, DSN: cfg.DSN})
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.DBDriver, err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Printf("⚠️ close store: %v", err)
		}
	}()

	log.Printf("run_id=%s driver=%s data_dir=%s pipelines=%d", opts.RunID, cfg.DBDriver, cfg.DataDir, len(pipelines))
	for _, p := range pipelines {
		res, err := p.Run(ctx, st, opts)
		logResult(res)
		if err != nil {
			return fmt.Errorf("%s failed: %w", p.Name, err)
		}
	}
	return nil
}

// installMetrics sets the process metrics backend from cfg. Backend
// construction errors are logged; metrics never block a load.
func installMetrics(cfg *config.Config, deps Deps, runID string) {
	var backends metrics.Multi
	if cfg.PushgatewayURL != "" {
		b, err := deps.NewPushgateway("county_loader", cfg.PushgatewayURL, map[string]string{"run_id": runID})
		if err != nil {
			log.Printf("⚠️ pushgateway metrics disabled: %v", err)
		} else {
			backends = append(backends, b)
		}
	}
	if cfg.DogStatsDAddr != "" {
		b, err := deps.NewDogStatsD(datadog.Config{
			Addr:       cfg.DogStatsDAddr,
			Namespace:  "county_loader.",
			GlobalTags: []string{"run_id:" + runID},
		})
		if err != nil {
			log.Printf("⚠️ dogstatsd metrics disabled: %v", err)
		} else {
			backends = append(backends, b)
		}
	}
	switch len(backends) {
	case 0:
	case 1:
		metrics.SetBackend(backends[0])
	default:
		metrics.SetBackend(backends)
	}
}

func logResult(res importer.Result) {
	if res.Pipeline == "" {
		return
	}
	skipped := 0
	for _, f := range res.Files {
		if f.Skipped {
			skipped++
		}
	}
	t := res.Totals
	log.Printf("%s: summary files=%d skipped_files=%d processed=%d inserted=%d skipped_existing=%d dropped=%d failed=%d duration=%s",
		res.Pipeline, len(res.Files), skipped, t.Count, t.Success, t.SkippedExisting, t.Dropped, t.Errors, res.Duration)
}
