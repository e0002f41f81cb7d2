package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/avolkov/streamcast/internal/adapters/http"
	wssignal "github.com/avolkov/streamcast/internal/adapters/signal"
	"github.com/avolkov/streamcast/internal/adapters/store"
	"github.com/avolkov/streamcast/internal/app"
	"github.com/avolkov/streamcast/internal/config"
	"github.com/avolkov/streamcast/internal/core"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	iceServers, err := cfg.ICEServers()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid ICE server config")
	}

	var rec core.Recorder
	if cfg.DBPath != "" {
		st, err := store.Open(cfg.DBPath)
		if err != nil {
			// The store is a fire-and-forget collaborator; run without it.
			log.Warn().Err(err).Msg("durable store unavailable, continuing without persistence")
		} else {
			defer st.Close()
			rec = st
		}
	}

	reg := app.NewRegistry(cfg.MaxViewers, cfg.ChatLogCap)
	limiter := app.NewChatLimiter(core.RealClock{}, cfg.ChatCooldown)
	coord := app.NewCoordinator(reg, limiter, rec, cfg.ChatHistory)
	ctl := wssignal.NewController(coord, iceServers, cfg.ReadLimit, cfg.PingPeriod)

	r := router.SetupRouter(ctx, cfg, coord, ctl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("streamcast server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	// Periodic viewer-count sweep, a liveness aid for active rooms.
	go func() {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				coord.PushViewerCounts()
			}
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
