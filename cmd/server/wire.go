//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"marketplace-server/services/moderation-api/internal/config"
	"marketplace-server/services/moderation-api/internal/domain/moderation"
	domain "marketplace-server/services/moderation-api/internal/domain/submission"
	"marketplace-server/services/moderation-api/internal/infrastructure/database"
	"marketplace-server/services/moderation-api/internal/infrastructure/events"
	"marketplace-server/services/moderation-api/internal/infrastructure/logger"
	repo "marketplace-server/services/moderation-api/internal/infrastructure/repository/submission"
	"marketplace-server/services/moderation-api/internal/infrastructure/storage"
	"marketplace-server/services/moderation-api/internal/infrastructure/vision"
	"marketplace-server/services/moderation-api/internal/interfaces/httpserver"
)

var submissionSet = wire.NewSet(
	repo.NewRepository,
	wire.Bind(new(domain.Repository), new(*repo.Repository)),
	wire.Bind(new(moderation.Records), new(*repo.Repository)),
	storage.NewS3Storage,
	wire.Bind(new(domain.Storage), new(*storage.S3Storage)),
	wire.Bind(new(moderation.Blobs), new(*storage.S3Storage)),
	events.NewFinalizePublisher,
	wire.Bind(new(domain.Publisher), new(*events.FinalizePublisher)),
	vision.NewClient,
	wire.Bind(new(moderation.Classifier), new(*vision.Client)),
	domain.NewService,
	moderation.NewPipeline,
)

// BuildApplication assembles the moderation API with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		newDatabaseConfig,
		newGormDB,
		newRedisClient,
		newTokenSource,
		submissionSet,
		events.NewFinalizeConsumer,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	}
}

func newGormDB(ctx context.Context, cfg database.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	return db, nil
}
