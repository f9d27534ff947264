package main

import (
	authrepository "barberbook/internal/auth/repository"
	authservice "barberbook/internal/auth/service"
	authvalidator "barberbook/internal/auth/validator"
	mongoMigration "barberbook/internal/migrations/mongo"
	"barberbook/pkg/auth"
	"barberbook/pkg/config"
	"context"
	"fmt"
	"time"
)

const (
	JobName = "mongo-migration"

	jobTimeout = 120 * time.Second
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Mongo migration job")
	err := run(ctx, cfg)
	cfg.GracefulShutdown()
	if err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}
	cfg.Log.Info("Migration completed successfully")
}

func run(ctx context.Context, cfg *config.Config) error {
	if err := mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log); err != nil {
		return err
	}
	return seedAdmin(ctx, cfg)
}

// seedAdmin creates the default admin when ADMIN_EMAIL and ADMIN_PASSWORD are
// set and no admin exists yet.
func seedAdmin(ctx context.Context, cfg *config.Config) error {
	if cfg.AdminEmail == "" {
		cfg.Log.Info("ADMIN_EMAIL not set, skipping admin seed")
		return nil
	}

	svc := authservice.NewAuthService(
		authrepository.NewMongoUserRepository(cfg),
		authvalidator.NewUserValidator(cfg.Log),
		auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL),
		cfg,
	)
	if _, err := svc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName); err != nil {
		return fmt.Errorf("seed admin %s: %w", cfg.AdminEmail, err)
	}
	return nil
}
