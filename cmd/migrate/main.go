package main

import (
	"flag"
	"os"

	"github.com/mijwad7/elevateHub/internal/db"
	"github.com/mijwad7/elevateHub/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"), false)
	_ = godotenv.Load()

	down := flag.Bool("down", false, "roll back instead of applying")
	steps := flag.Int("steps", 1, "number of migrations to roll back with -down")
	flag.Parse()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	if *down {
		if err := db.MigrateDown(databaseURL, *steps); err != nil {
			logger.Fatal("rollback failed", "steps", *steps, "error", err)
		}
		logger.Info("rollback applied", "steps", *steps)
		return
	}

	if err := db.MigrateUp(databaseURL); err != nil {
		logger.Fatal("migrations failed", "error", err)
	}
	logger.Info("migrations applied")
}
