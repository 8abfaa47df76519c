package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/dkeye/callhub/internal/adapters/http"
	"github.com/dkeye/callhub/internal/adapters/rtc"
	wssignal "github.com/dkeye/callhub/internal/adapters/signal"
	"github.com/dkeye/callhub/internal/app"
	"github.com/dkeye/callhub/internal/app/orch"
	"github.com/dkeye/callhub/internal/config"
	"github.com/dkeye/callhub/internal/observability"
)

const shutdownTimeout = 5 * time.Second

func run(parent context.Context, cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}
	if err := rtc.Validate(rtc.ICEServers(cfg)); err != nil {
		return fmt.Errorf("ice servers: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(reg)

	sessions := wssignal.NewSessions()
	o := orch.New(sessions, app.PolicyFor(cfg.Backpressure), metrics)
	ctl := wssignal.NewSignalWSController(o, sessions, metrics, wssignal.OptionsFromConfig(cfg))

	r := router.SetupRouter(ctx, cfg, o, ctl, reg)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("callhub server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := ctl.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("connections did not drain")
	}
	log.Info().Msg("Server exited gracefully")
	return nil
}
