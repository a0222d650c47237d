// Command importer loads county data files into the property database. It
// runs every pipeline (or the ones named by -pipeline) in a fixed order:
// neighborhood codes, property data, extra features, structural elements.
//
// main stays tiny and delegates to run() so the wiring is testable; all side
// effects come in through app.Deps.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"countyloader/internal/app"
	"countyloader/internal/config"
	"countyloader/internal/importer"
)

func run(ctx context.Context, cfg *config.Config, deps app.Deps) error {
	pipelines, err := importer.Select(cfg.Pipeline)
	if err != nil {
		return err
	}
	return app.Run(ctx, cfg, deps, pipelines)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load(config.WithPipelineFlag())
	if err := run(ctx, cfg, app.DefaultDeps()); err != nil {
		stop()
		log.Fatal(err)
	}
}
