package main

import (
	"context"
	"time"

	mongoMigration "sarpras/internal/migrations/mongo"
	"sarpras/pkg/config"

	"github.com/joho/godotenv"
)

const (
	JobName          = "mongo-migration"
	migrationTimeout = 120 * time.Second
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(JobName)
	cfg.SetMongo()

	ctx, cancel := context.WithTimeout(context.Background(), migrationTimeout)
	defer cancel()

	cfg.Log.Info("Starting Mongo migration job")
	if err := mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log); err != nil {
		cfg.GracefulShutdown()
		cfg.Log.Fatal("Migration failed", "error", err)
	}
	cfg.Log.Info("Migration completed successfully")
	cfg.GracefulShutdown()
}
