package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/halcyonweb/mediakit/cmd/media-service/routes"
	"github.com/halcyonweb/mediakit/internal/auth"
	"github.com/halcyonweb/mediakit/internal/catalog"
	"github.com/halcyonweb/mediakit/internal/common"
	"github.com/halcyonweb/mediakit/internal/upload"
	"github.com/halcyonweb/mediakit/pkg/config"
)

func main() {
	cfg := config.LoadFromEnv()
	setupLogging(cfg.Logging)

	log.Info().Msg("starting mediakit media service")

	db, err := common.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	users := catalog.NewUsers(catalog.NewGormUserSource(db), cfg.Cache.UserTTL)
	services := catalog.NewServices(catalog.NewGormServiceSource(db), cfg.Cache.ServicesTTL)
	gallery := catalog.NewGallery(
		filepath.Join(cfg.Upload.MediaRoot, "images/Projects"),
		"/images/Projects/",
		cfg.Cache.ProjectImagesTTL,
	)

	authService := auth.NewService(db, users, &cfg.Auth)

	uploadService, err := upload.NewService(&cfg.Upload)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize upload pipeline")
	}
	defer uploadService.Stop()

	router := routes.NewRouter(authService, uploadService, services, gallery, &cfg.Upload)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	} else {
		log.Info().Msg("server shutdown complete")
	}
}

func setupLogging(cfg config.LoggingConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format != "json" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
