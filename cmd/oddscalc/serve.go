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

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"odds-arb-calculator/internal/alerts"
	"odds-arb-calculator/internal/config"
	"odds-arb-calculator/internal/handlers"
	"odds-arb-calculator/internal/live"
	"odds-arb-calculator/internal/logging"
	"odds-arb-calculator/internal/scenarios"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket calculator service",
		Long: `Serve the converter and arbitrage calculator over HTTP, with live
websocket sessions at /ws. Configuration comes from the environment or .env.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if err := config.Validate(cfg); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return serve(cfg)
		},
	}
}

func serve(cfg config.Config) error {
	logging.Init(cfg.LogLevel)
	log := logging.WithComponent("server")

	var store *scenarios.Store
	if cfg.DBPath != "" {
		s, err := scenarios.NewStore(cfg.DBPath)
		if err != nil {
			log.WithError(err).Warn("Scenario storage disabled")
		} else {
			store = s
			defer store.Close()
		}
	}

	notifier := alerts.NewNotifier(cfg.AlertCooldown)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ws := live.NewHandler(ctx, live.Options{
		Debounce:  cfg.Debounce,
		BufferBps: cfg.BufferBps,
		Notifier:  notifier,
	})
	h := handlers.NewHandler(cfg.BufferBps, store, notifier)
	router := handlers.NewRouter(h, handlers.RouterOptions{
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
		WebSocket:      ws.HandleWebSocket,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"port":      cfg.Port,
			"buffer":    config.FormatBuffer(cfg.BufferBps),
			"debounce":  cfg.Debounce.String(),
			"scenarios": store != nil,
		}).Info("oddscalc started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cleanupTicker := time.NewTicker(config.DefaultCleanupInterval)
	defer cleanupTicker.Stop()

	for running := true; running; {
		select {
		case <-sigChan:
			log.Info("Shutdown signal received, stopping...")
			running = false

		case err := <-errCh:
			notifier.LogError("server", err)
			return err

		case <-cleanupTicker.C:
			notifier.CleanupOldAlerts()
			log.WithFields(logrus.Fields{
				"sessions": ws.ClientCount(),
				"alerts":   notifier.Tracked(),
			}).Debug("maintenance")
		}
	}

	// Stop websocket sessions before draining HTTP.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("oddscalc stopped")
	return nil
}
