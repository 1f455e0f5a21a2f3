package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/dkeye/signalhub/internal/adapters/http"
	"github.com/dkeye/signalhub/internal/app"
	"github.com/dkeye/signalhub/internal/app/ledger"
	"github.com/dkeye/signalhub/internal/app/orch"
	"github.com/dkeye/signalhub/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = newLogger(os.Stderr, "")
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	zerolog.SetGlobalLevel(logLevel(cfg.LogLevel))
	log.Logger = newLogger(os.Stderr, cfg.Mode)

	reg := app.NewRegistry()
	rooms := app.NewRoomDirectory()
	// Codes live in the directory must not be handed out by the ledger.
	book := ledger.New(
		ledger.WithCodeAttempts(cfg.RoomCodeAttempts),
		ledger.WithExclusion(rooms.Has),
	)

	o := &orch.Orchestrator{
		Registry:   reg,
		Rooms:      rooms,
		Ledger:     book,
		VerifyHost: cfg.VerifyHost,
		Policy:     app.PolicyFor(cfg.SlowConsumer),
	}

	r := router.SetupRouter(ctx, cfg, o)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("signalhub started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	// Hijacked websockets are not tracked by Shutdown; cancel them explicitly.
	closed := reg.CancelAll()
	log.Info().Int("connections", closed).Msg("closed realtime connections")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
