// Package main runs the marketplace HTTP server:
// - REST API over the marketplace facade
// - Prometheus metrics on /metrics
// - in-memory IPFS gateway on /ipfs/ when no IPFS node is configured
// - optional newHeads subscription to speed up receipt confirmation
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	logging "github.com/op/go-logging"

	"nft-marketplace/internal/api"
	"nft-marketplace/internal/app"
	"nft-marketplace/internal/config"
)

var log = logging.MustGetLogger("server")

var stdoutLogFormat = logging.MustStringFormatter(
	`%{color:reset}%{color}%{time:15:04:05.000} [%{module}] [%{level}] %{message}`,
)

const shutdownTimeout = 30 * time.Second

func main() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	config.RegisterFlags(fs)
	fs.Parse(os.Args[1:])

	cfg, err := config.Load(config.Options{
		ConfigPath: config.FlagString(fs, "config"),
		EnvFile:    config.FlagString(fs, "env-file"),
		Flags:      fs,
	})
	if err != nil {
		setupLogging("INFO")
		log.Fatalf("Invalid configuration: %v", err)
	}
	setupLogging(cfg.LogLevel)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.Build(ctx, cfg, nil)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer a.Close()

	log.Infof("Marketplace contract %s on %s (account %q, %s)",
		a.Contract.Address().Hex(), cfg.RPCEndpoint, a.Service.Account(), a.Service.State())

	// Follow chain heads in background
	go func() {
		if err := a.FollowHeads(ctx); err != nil {
			log.Warningf("Head subscription unavailable, falling back to polling: %v", err)
		}
	}()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           routes(a),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting HTTP server on %s", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case sig := <-sigCh:
		log.Infof("Received signal %v, initiating graceful shutdown...", sig)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("HTTP server error: %v", err)
		}
	}
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Graceful shutdown failed: %v", err)
	}

	log.Info("Shutdown complete")
}

// routes mounts the API, health check and the in-memory gateway.
func routes(a *app.App) http.Handler {
	r := chi.NewRouter()

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if a.Gateway != nil {
		r.Handle("/ipfs/*", a.Gateway)
	}

	r.Mount("/", api.NewHandler(a.Service, a.Metrics.Handler()).Router())
	return r
}

func setupLogging(level string) {
	backend := logging.NewLogBackend(os.Stdout, "", 0)
	leveled := logging.AddModuleLevel(logging.NewBackendFormatter(backend, stdoutLogFormat))

	lvl, err := logging.LogLevel(strings.ToUpper(level))
	if err != nil {
		lvl = logging.INFO
	}
	leveled.SetLevel(lvl, "")
	logging.SetBackend(leveled)
}
