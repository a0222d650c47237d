// Command load-neighborhood-codes loads real_neighborhood_code.txt from the latest data drop.
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

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := importer.ByName(importer.NeighborhoodCodes)
	if err != nil {
		log.Fatal(err)
	}
	if err := app.Run(ctx, config.Load(), app.DefaultDeps(), []importer.Pipeline{p}); err != nil {
		stop()
		log.Fatal(err)
	}
}
