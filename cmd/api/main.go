package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/momocakes/commerce-api/internal/api"
	"github.com/momocakes/commerce-api/internal/infrastructure/config"
	mongodb "github.com/momocakes/commerce-api/internal/infrastructure/db/mongo"
	redisdb "github.com/momocakes/commerce-api/internal/infrastructure/db/redis"
	"github.com/momocakes/commerce-api/internal/infrastructure/media"
	"github.com/momocakes/commerce-api/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx := context.Background()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	if err := mongodb.NewUserRepository(db).EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("user index creation failed")
	}
	if err := mongodb.NewProductRepository(db).EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("product index creation failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	uploader, err := media.NewS3Uploader(ctx, media.Config{
		Endpoint:      cfg.Media.Endpoint,
		Region:        cfg.Media.Region,
		Bucket:        cfg.Media.Bucket,
		AccessKey:     cfg.Media.AccessKey,
		SecretKey:     cfg.Media.SecretKey,
		PublicBaseURL: cfg.Media.PublicBaseURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("media uploader setup failed")
	}

	e := api.NewRouter(cfg, db, rdb, uploader, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	log.Info().Msg("server stopped")
}
