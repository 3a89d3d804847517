package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/support-chat/internal/config"
	"github.com/Rrens/support-chat/internal/logger"
	"github.com/Rrens/support-chat/internal/repository"
)

const usage = "usage: migrate [up|down|version]"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if _, err := logger.Setup(cfg.Logging); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "up":
		err = repository.Migrate(cfg.Database)
	case "down":
		err = repository.MigrateDown(cfg.Database)
		if err == nil {
			log.Info().Str("driver", cfg.Database.Driver).Msg("Database migration: rolled back")
		}
	case "version":
		var (
			version uint
			dirty   bool
		)
		version, dirty, err = repository.MigrationVersion(cfg.Database)
		if err == nil {
			fmt.Printf("driver=%s version=%d dirty=%t\n", cfg.Database.Driver, version, dirty)
		}
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		log.Fatal().Err(err).Str("command", cmd).Msg("Migration failed")
	}
}
