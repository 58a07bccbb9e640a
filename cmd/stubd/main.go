package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/psiclinic/clinic-cli/internal/config"
	"github.com/psiclinic/clinic-cli/internal/stubserver"
	"github.com/psiclinic/clinic-cli/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	store := stubserver.NewStore()
	if err := stubserver.SeedDemo(store); err != nil {
		log.Fatal().Err(err).Msg("failed to seed demo data")
	}

	appLog := logger.NewLogger(nil)
	server := stubserver.New(stubserver.Config{
		JWTSecret:   cfg.Stub.JWTSecret,
		TokenExpiry: cfg.Stub.TokenExpiry,
	}, store, appLog)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Stub.Port),
		Handler: server.Handler(),
	}

	go func() {
		log.Info().Int("port", cfg.Stub.Port).Msg("stub backend listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down stub backend...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
