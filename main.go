package main

import (
	"github.com/joho/godotenv"

	"github.com/mrlokans/booklib/internal/config"
	"github.com/mrlokans/booklib/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	// Local development convenience; a missing .env is fine
	_ = godotenv.Load()

	cfg := config.NewConfig()
	entrypoint.Run(cfg, Version)
}
