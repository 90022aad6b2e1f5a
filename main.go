package main

import (
	"log"

	"github.com/joho/godotenv"

	"planfact/cmd"
	"planfact/internal/config"
	"planfact/internal/logger"
)

func main() {
	// A missing .env is normal; variables may come from the environment.
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Commands report configuration errors themselves, so a bad config only
	// downgrades logging to the defaults here.
	cfg, err := config.Load()
	if err != nil {
		if err := logger.Setup(logger.DefaultConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	} else if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	appLog := logger.WithComponent("main")
	appLog.Debug().Msg("Starting planfact")

	cmd.Execute()

	appLog.Debug().Msg("planfact finished")
}
