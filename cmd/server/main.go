package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"surftimer-api/internal/cache"
	"surftimer-api/internal/config"
	"surftimer-api/internal/constants"
	fxmodules "surftimer-api/internal/fx"
	"surftimer-api/internal/logger"
	"surftimer-api/internal/middleware"
	"surftimer-api/internal/server"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	apiServer *server.Server,
	cfg *config.Config,
	db *sql.DB,
	cacheStore *cache.Cache,
	log zerolog.Logger,
) error {
	accessLog, accessFile, err := logger.NewFileLogger(cfg.RequestLogPath)
	if err != nil {
		return fmt.Errorf("failed to open request log: %w", err)
	}
	deniedLog, deniedFile, err := logger.NewFileLogger(cfg.DeniedLogPath)
	if err != nil {
		return fmt.Errorf("failed to open denied log: %w", err)
	}

	router := mux.NewRouter()
	apiServer.RegisterRoutes(router)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	// The allowlist runs before any business logic; denied sources never
	// reach a handler.
	handler := middleware.RequestID(log)(
		middleware.IPAllowlist(cfg.AllowedIPs, accessLog, deniedLog)(
			c.Handler(router)))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: handler,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := db.Close(); err != nil {
				log.Warn().Err(err).Msg("error closing database connection")
			}
			if err := cacheStore.Close(); err != nil {
				log.Warn().Err(err).Msg("error closing cache store")
			}
			accessFile.Close()
			deniedFile.Close()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("server shutdown failed")
				return err
			}
			log.Info().Msg("server stopped gracefully")
			return nil
		},
	})

	return nil
}
