package main

import (
	"fmt"
	"os"

	"github.com/emrealmaoglu/trailium/internal/config"
	"github.com/emrealmaoglu/trailium/internal/database"
	"github.com/emrealmaoglu/trailium/internal/logger"
)

func main() {
	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "up":
		runMigrationsUp()
	default:
		fmt.Println("Usage: migrate [up]")
		fmt.Println("  up - Create or update every table, index and default priority")
		os.Exit(1)
	}
}

func runMigrationsUp() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Initialize(cfg.Log.Level, "-"); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	logger.Log.Info("🔄 Connecting to database...")
	if err := database.Initialize(cfg.Database, false); err != nil {
		logger.FatalWithFields("❌ Failed to connect to database", err)
	}
	defer database.Close()

	logger.Log.Info("📈 Running migrations...")
	if err := database.Migrate(); err != nil {
		logger.FatalWithFields("❌ Migration failed", err)
	}

	logger.Log.Info("✅ All migrations completed successfully!")
}
