package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gormlogger "gorm.io/gorm/logger"

	"marketplace-server/services/moderation-api/internal/config"
	"marketplace-server/services/moderation-api/internal/domain/moderation"
	domain "marketplace-server/services/moderation-api/internal/domain/submission"
	"marketplace-server/services/moderation-api/internal/infrastructure/database"
	"marketplace-server/services/moderation-api/internal/infrastructure/events"
	"marketplace-server/services/moderation-api/internal/infrastructure/logger"
	"marketplace-server/services/moderation-api/internal/infrastructure/observability"
	repo "marketplace-server/services/moderation-api/internal/infrastructure/repository/submission"
	"marketplace-server/services/moderation-api/internal/infrastructure/storage"
	"marketplace-server/services/moderation-api/internal/infrastructure/vision"
	"marketplace-server/services/moderation-api/internal/interfaces/httpserver"
)

// @title Moderation API
// @version 1.0
// @description Marketplace listing image moderation service
// @BasePath /
type Application struct {
	httpServer *httpserver.HttpServer
	consumer   *events.FinalizeConsumer
	pipeline   *moderation.Pipeline
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, consumer *events.FinalizeConsumer, pipeline *moderation.Pipeline, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		consumer:   consumer,
		pipeline:   pipeline,
		log:        log,
	}
}

// Start runs the finalize-event consumer alongside the HTTP server until
// the context is cancelled.
func (a *Application) Start(ctx context.Context) error {
	go func() {
		err := a.consumer.Consume(ctx, func(ctx context.Context, ev domain.ObjectFinalized) {
			a.pipeline.Process(ctx, ev)
		})
		if err != nil && ctx.Err() == nil {
			a.log.Error().Err(err).Msg("finalize consumer stopped")
		}
	}()
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg)
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	db, err := database.Connect(database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	redisClient := newRedisClient(ctx, cfg, log)
	defer redisClient.Close()

	storageClient, err := storage.NewS3Storage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize storage")
	}

	tokens, err := newTokenSource(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize classifier credentials")
	}
	visionClient := vision.NewClient(cfg, tokens, log)

	submissionRepository := repo.NewRepository(db, redisClient, log)

	publisher := events.NewFinalizePublisher(cfg, log)
	defer publisher.Close()

	submissionService := domain.NewService(cfg, submissionRepository, storageClient, publisher, log)
	pipeline := moderation.NewPipeline(cfg, submissionRepository, storageClient, visionClient, log)

	consumer := events.NewFinalizeConsumer(cfg, log)
	defer consumer.Close()

	httpServer := httpserver.New(cfg, log, submissionService)
	app := NewApplication(httpServer, consumer, pipeline, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func newRedisClient(ctx context.Context, cfg *config.Config, log zerolog.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Error().Err(err).Msg("failed to connect to redis")
	} else {
		log.Info().Str("addr", cfg.RedisAddr).Msg("connected to redis")
	}
	return client
}

// newTokenSource prefers a static API token; without one it falls back to
// the ambient identity of the executing process.
func newTokenSource(ctx context.Context, cfg *config.Config) (oauth2.TokenSource, error) {
	if cfg.ClassifierToken != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.ClassifierToken}), nil
	}
	return google.DefaultTokenSource(ctx, "https://www.googleapis.com/auth/cloud-platform")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
