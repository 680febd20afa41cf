package main

import (
	"context"
	"fmt"
	"os"

	"dealdesk/internal/config"
	"dealdesk/internal/observability"
	"dealdesk/internal/server"
	"dealdesk/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	ctx := context.Background()

	var store storage.Store
	if cfg.StoreDriver == "postgres" {
		must(cfg.Require("DATABASE_URL", cfg.DatabaseURL))
		store, err = storage.OpenPostgres(ctx, cfg.DatabaseURL)
	} else {
		store, err = storage.Open(cfg.DBPath)
	}
	must(err)
	defer store.Close()

	observability.Start(cfg.MetricsPort)
	must(server.New(store).Run(ctx, cfg.HTTPPort))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
