package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/rbarroso/comanda/internal/app"
	"github.com/rbarroso/comanda/internal/gateway"
	"github.com/rbarroso/comanda/internal/telemetry"
)

func main() {
	ctx := context.Background()

	level := slog.LevelWarn
	if os.Getenv("COMANDA_DEBUG") != "" {
		level = slog.LevelDebug
	}
	// Logs go to stderr so they never interleave with the rendered screens.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	apiURL := os.Getenv("COMANDA_API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:5000/api"
	}

	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" {
		shutdownTracer, err := telemetry.InitTracerProvider(ctx, "comanda", "0.1.0")
		if err != nil {
			logger.Error("failed to initialize tracer", "error", err)
			os.Exit(1)
		}
		defer func() { _ = shutdownTracer(ctx) }()
	}

	if addr := os.Getenv("COMANDA_METRICS_ADDR"); addr != "" {
		metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider("comanda", "0.1.0")
		if err != nil {
			logger.Error("failed to initialize meter", "error", err)
			os.Exit(1)
		}
		defer func() { _ = shutdownMeter(ctx) }()

		if err := runtime.Start(); err != nil {
			logger.Error("failed to start runtime instrumentation", "error", err)
		}

		mux := http.NewServeMux()
		mux.Handle("GET /metrics", metricsHandler)
		server := &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("serving metrics", "addr", addr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server error", "error", err)
			}
		}()
		defer func() { _ = server.Close() }()
	}

	httpClient := &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	gw := gateway.New(apiURL, httpClient, logger)
	controller, err := app.New(gw, logger)
	if err != nil {
		logger.Error("failed to initialize controller", "error", err)
		os.Exit(1)
	}
	defer controller.Close()

	ui := newUI(controller, os.Stdin, os.Stdout)
	if err := ui.Run(ctx); err != nil {
		logger.Error("ui error", "error", err)
		os.Exit(1)
	}
}
