package main

import (
	"github.com/P3chys/classroom-api/internal/config"
	"github.com/P3chys/classroom-api/internal/database"
	"github.com/P3chys/classroom-api/internal/logger"
	"github.com/joho/godotenv"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if envErr != nil {
		log.Info("No .env file found")
	}

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}

	if err := database.RunMigrations(db, log); err != nil {
		log.Fatal("Failed to run migrations", "error", err)
	}

	if err := database.SeedTeacher(db, log); err != nil {
		log.Fatal("Failed to seed teacher account", "error", err)
	}

	log.Info("Migration completed successfully")
}
