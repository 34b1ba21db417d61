package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/meetsync/internal/config"
	"github.com/dkeye/meetsync/internal/devserver"
	"github.com/dkeye/meetsync/internal/domain"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	zerolog.SetGlobalLevel(cfg.Level())

	var policy devserver.Policy = devserver.KickPolicy{}
	if cfg.Server.SlowPeer == "drop" {
		policy = devserver.DropPolicy{}
	}
	store := devserver.NewStore(policy)
	for _, name := range cfg.Server.Rooms {
		store.EnsureRoom(domain.RoomID(name), "", name, "")
	}

	server := devserver.NewServer(store, devserver.Options{
		Mode:       cfg.Mode,
		Secret:     cfg.Server.Secret,
		StaticPath: cfg.Server.StaticPath,
		ReadLimit:  cfg.Server.ReadLimit,
		PingPeriod: cfg.Server.PingPeriod,
		SendBuffer: cfg.Server.SendBuffer,

		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: server.Handler(ctx),
	}

	go func() {
		log.Info().Str("addr", addr).Int("rooms", len(cfg.Server.Rooms)).Msg("meetsync devserver started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
