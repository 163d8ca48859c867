package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"coachrelay/internal/config"
	"coachrelay/internal/gateway/evolution"
	"coachrelay/internal/httpapi"
	"coachrelay/internal/logging"
	"coachrelay/internal/observability"
	"coachrelay/internal/store/pg"
	"coachrelay/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadWorker()
	if err != nil {
		slog.Error("worker config load failed", "err", err)
		os.Exit(1)
	}
	logging.Init("worker", cfg.LogFormat)

	ctx, cancel := context.WithCancel(context.Background())

	db, err := pg.NewPool(ctx, cfg.DBDSN, pg.PoolOptions{})
	if err != nil {
		slog.Error("worker db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	st := pg.New(db)

	startupCtx, startupCancel := context.WithTimeout(ctx, 3*time.Second)
	defer startupCancel()
	if err := db.Ping(startupCtx); err != nil {
		slog.Error("db not reachable", "err", err)
		os.Exit(1)
	}

	reg := prometheus.DefaultRegisterer
	observability.Register(reg)

	gw := &evolution.Client{
		BaseURL:  cfg.GatewayBaseURL,
		APIKey:   cfg.GatewayAPIKey,
		Instance: cfg.GatewayInstance,
		HTTP:     &http.Client{Timeout: cfg.GatewayTimeout},
	}
	limiter := rate.NewLimiter(rate.Limit(cfg.GatewayRPS), cfg.GatewayBurst)
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "evolution",
		MaxRequests: 3,
		Timeout:     20 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 10 },
	})
	sender := &worker.Sender{
		Gateway:     gw,
		CountryCode: cfg.CountryCode,
		Limiter:     limiter,
		Breaker:     cb,
	}

	dispatcher := &worker.Dispatcher{Store: st, Sender: sender, MaxAttempts: cfg.DispatchMaxAttempts}
	renewals := &worker.RenewalWatcher{Store: st, Sender: sender, HorizonDays: cfg.RenewalHorizonDays}
	automation := &worker.AutomationRunner{Store: st, Sender: sender}

	runner := &worker.Runner{
		Interval: cfg.PollInterval,
		Jobs: []worker.Job{
			{Name: "dispatch", Run: dispatcher.Run},
			{Name: "renewals", Run: renewals.Run},
			{Name: "automation", Run: automation.Run},
		},
	}

	// health server (liveness + readiness + metrics)
	srv := httpapi.New()
	srv.Mux.HandleFunc("/healthz", httpapi.Healthz())
	srv.Mux.HandleFunc("/readyz", httpapi.Readyz(2*time.Second,
		func(c context.Context) error { return db.Ping(c) },
	))

	healthSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httpapi.Logging(srv.Mux),
	}

	healthErrCh := make(chan error, 1)
	go func() {
		slog.Info("worker health listening", "port", cfg.Port)
		healthErrCh <- healthSrv.ListenAndServe()
	}()

	pollErrCh := make(chan error, 1)
	go func() {
		pollErrCh <- runner.Start(ctx)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-pollErrCh:
		if err != nil && err != context.Canceled {
			slog.Error("worker poll failed", "err", err)
			os.Exit(1)
		}
	case err := <-healthErrCh:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("worker health server failed", "err", err)
			os.Exit(1)
		}
	case sig := <-sigCh:
		slog.Info("worker shutdown", "signal", sig.String())
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = healthSrv.Shutdown(shutdownCtx)

	select {
	case <-pollErrCh:
	case <-time.After(10 * time.Second):
		slog.Info("worker shutdown timeout waiting for poll loop")
	}
}
