package main

import (
	"context"
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/IDINaXI/Nutrio/internal/config"
	"github.com/IDINaXI/Nutrio/internal/dbmigrate"
	"github.com/IDINaXI/Nutrio/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: go run ./cmd/migrate [up|status|down]")
		os.Exit(2)
	}

	command := os.Args[1]
	switch command {
	case "up", "status", "down":
	default:
		fmt.Fprintf(os.Stderr, "unsupported command %q (allowed: up, status, down)\n", command)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat).Named("migrate")
	defer log.Sync()

	sel, err := dbmigrate.SelectDatabaseURL(cfg, false)
	if err != nil {
		log.Fatalw("select database url", "error", err)
	}
	if sel.Warning != "" {
		log.Warnw(sel.Warning)
	}
	log.Infow("running", "command", command, "using", sel.Source)

	if err := dbmigrate.Run(context.Background(), command, sel.URL); err != nil {
		log.Fatalw("migration failed", "command", command, "error", err)
	}

	log.Infow("completed", "command", command)
}
