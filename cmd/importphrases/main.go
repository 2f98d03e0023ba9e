// Package main provides a one-shot phrase-pack importer: it parses a YAML
// pack and inserts the phrases into the configured database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/z26games/wof/internal/config"
	"github.com/z26games/wof/internal/importer"
	"github.com/z26games/wof/internal/observability"
	"github.com/z26games/wof/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "configs/server.yaml", "path to configuration file")
	file := flag.String("file", "", "path to phrase pack YAML file")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: importphrases -config <path> -file <pack.yaml>")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Storage.Driver != "postgres" {
		fmt.Fprintf(os.Stderr, "storage.driver is %q; imports need a persistent backend\n", cfg.Storage.Driver)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(config.LoggingConfig{Level: "info", Format: "console"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()
	store, err := postgres.NewStore(ctx, cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connecting to database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	start := time.Now()
	imp := importer.New(importer.NewYAMLSource(), logger)
	stats, err := imp.Run(ctx, *file, store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("imported %d phrases (%d already present) in %s\n",
		stats.Imported, stats.Skipped, time.Since(start).Round(time.Millisecond))
}
