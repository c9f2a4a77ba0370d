package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/alferrante/tinykind/internal/app"
	"github.com/alferrante/tinykind/pkg/config"
	"github.com/alferrante/tinykind/pkg/logger"
	"github.com/alferrante/tinykind/pkg/shutdown"
	"github.com/alferrante/tinykind/pkg/store"
)

// build metadata - set via ldflags during build/release
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	_ = godotenv.Load(".env")

	flags := config.ParseCommandFlags()
	eff, err := config.LoadEffective(flags)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger.Init(eff.Config.Logging.Level)
	defer logger.Sync()

	a, err := app.New(eff, version, commit, buildDate)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx, cancel := shutdown.SetupSignalHandler(context.Background())
	defer cancel()

	if err := a.Run(ctx); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
