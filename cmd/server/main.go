// Command server runs the accountability-partner API.
//
// Boot order: env file, config, logging, database, demo seed, tracing, HTTP.
// The process serves until SIGINT/SIGTERM and then drains in-flight requests
// before exiting.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/pactly/go-pact-backend/internal/auth"
	"github.com/pactly/go-pact-backend/internal/config"
	httpapi "github.com/pactly/go-pact-backend/internal/http"
	"github.com/pactly/go-pact-backend/internal/observability"
	"github.com/pactly/go-pact-backend/internal/repo"
	"github.com/pactly/go-pact-backend/internal/services"
	"github.com/pactly/go-pact-backend/internal/sysutil"
	"github.com/pactly/go-pact-backend/internal/ws"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	// Optional .env for local development; absence is not an error.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	log.Logger = zerolog.New(sysutil.LogWriter(cfg.LogPretty)).With().Timestamp().Logger()

	gin.SetMode(cfg.GinMode)

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		log.Warn().Err(err).Msg("install gorm tracing plugin")
	}
	if err := repo.AutoMigrate(db); err != nil {
		// Existing columns never change shape here, so a failed migrate means
		// new tables only; surface it and keep serving what already works.
		log.Error().Err(err).Msg("auto-migrate")
	}

	if cfg.SeedDemo {
		seeded, err := services.SeedDemo(context.Background(), db)
		if err != nil {
			log.Error().Err(err).Msg("seed demo data")
		} else if seeded {
			log.Info().Msg("seeded demo data into empty store")
		}
	}

	shutdownTracing, err := observability.Setup(context.Background(), cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("setup tracing")
	}

	tokens := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	hub := ws.NewHub()

	r := gin.New()
	httpapi.RegisterRoutes(r, db, hub, tokens, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown")
	}
	if err := shutdownTracing(ctx); err != nil {
		log.Error().Err(err).Msg("tracing shutdown")
	}
}
