package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/tableorder/api/routes"
	"github.com/angelmondragon/tableorder/internal/cart"
	"github.com/angelmondragon/tableorder/internal/history"
	"github.com/angelmondragon/tableorder/internal/menu"
	"github.com/angelmondragon/tableorder/internal/orders"
	"github.com/angelmondragon/tableorder/pkg/config"
	"github.com/angelmondragon/tableorder/pkg/logger"
	"github.com/angelmondragon/tableorder/pkg/metrics"
	"github.com/angelmondragon/tableorder/pkg/orderapi"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "kiosk"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "kiosk",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	sessionID := cfg.Kiosk.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithSessionID(logg.WithTable(ctx, cfg.Kiosk.TableNumber), sessionID)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	lifecycleMetrics := metrics.NewLifecycleMetrics(registry)

	client, err := orderapi.NewClient(
		cfg.Backend.BaseURL,
		orderapi.WithTimeout(cfg.Backend.Timeout),
		orderapi.WithObserver(metrics.NewClientMetrics(registry)),
	)
	if err != nil {
		logg.Error(ctx, "failed to create ordering client", err)
		os.Exit(1)
	}

	historyBackend, err := openHistory(ctx, cfg, logg, registry, sessionID)
	if err != nil {
		logg.Error(ctx, "failed to open history storage", err)
		os.Exit(1)
	}

	menuService, err := menu.NewService(client)
	if err != nil {
		logg.Error(ctx, "failed to create menu service", err)
		os.Exit(1)
	}

	cartStore := cart.NewStore()
	historyStore := history.NewStore(
		historyBackend.storage,
		history.WithLogger(logg),
		history.WithMetrics(lifecycleMetrics),
	)

	controller, err := orders.NewController(orders.ControllerParams{
		Logger:           logg,
		Backend:          client,
		Cart:             cartStore,
		History:          historyStore,
		Metrics:          lifecycleMetrics,
		TableNumber:      cfg.Kiosk.TableNumber,
		SurchargePercent: cfg.Tracking.SurchargePercent,
		PollInterval:     cfg.Tracking.PollInterval,
		TickInterval:     cfg.Tracking.CountdownTick,
		Notify: func(event orders.Event) {
			logg.Info(logg.WithFields(ctx, map[string]any{
				"order_id": event.OrderID,
				"status":   event.Status,
				"redirect": event.Redirect,
			}), event.Message)
		},
	})
	if err != nil {
		logg.Error(ctx, "failed to create order controller", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 5 * time.Second,
		Handler: routes.NewRouter(
			cfg,
			logg,
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			historyBackend.pinger,
			menuService,
			cartStore,
			controller,
			historyStore,
			client,
		),
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"backend": cfg.Backend.BaseURL,
	})
	logg.Info(ctx, "starting kiosk server")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	maintenanceDone := make(chan struct{})
	if historyBackend.maintenance != nil {
		go func() {
			defer close(maintenanceDone)
			_ = historyBackend.maintenance.Run(ctx)
		}()
	} else {
		close(maintenanceDone)
	}

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "kiosk server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-ctx.Done():
		logg.Info(ctx, "kiosk shutting down gracefully")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	var closeErr error
	closeErr = multierr.Append(closeErr, server.Shutdown(shutdownCtx))
	stop()
	<-maintenanceDone
	controller.Close()
	closeErr = multierr.Append(closeErr, historyBackend.Close())
	if closeErr != nil {
		logg.Error(shutdownCtx, "error during shutdown", closeErr)
		exitCode = 1
	}

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
