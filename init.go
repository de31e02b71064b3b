package main

import (
	"context"
	"errors"

	"github.com/delivro/dhlexpress/internal/config"
	"github.com/delivro/dhlexpress/internal/server"
	"github.com/delivro/dhlexpress/internal/telemetry"
	"github.com/delivro/dhlexpress/pkg/dhl"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// env bundles the wired-up dependencies a command needs.
type env struct {
	cfg            *config.Config
	logger         *otelzap.Logger
	client         *dhl.Client
	metrics        *telemetry.Metrics
	metricsServer  *server.Server
	tracerShutdown func(context.Context) error
}

// setup loads configuration and builds the client with logging, metrics,
// and (when enabled) tracing.
func setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := telemetry.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	var tracer trace.Tracer
	tracerShutdown := func(context.Context) error { return nil }
	if cfg.OTELEnabled {
		t, shutdown, err := telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version, cfg.Attributes()...)
		if err != nil {
			logger.Warn("Failed to initialize tracer; continuing without tracing", zap.Error(err))
		} else {
			tracer = t
			tracerShutdown = shutdown
		}
	}

	client, err := dhl.New(dhl.Config{
		APIKey:    cfg.DHLAPIKey,
		APISecret: cfg.DHLAPISecret,
		TestMode:  cfg.DHLTestMode,
		BaseURL:   cfg.DHLBaseURL,
		Timeout:   cfg.DHLTimeout,
		UseMock:   cfg.DHLUseMock,
	}, logger, tracer)
	if err != nil {
		return nil, err
	}

	// Scraping a one-shot CLI only makes sense when asked for, so the
	// metrics endpoint is opt-in.
	var metricsServer *server.Server
	if cfg.MetricsAddr != "" {
		metricsServer = server.New(cfg.MetricsAddr, logger)
		metricsServer.Start()
	}

	return &env{
		cfg:            cfg,
		logger:         logger,
		client:         client,
		metrics:        telemetry.NewMetrics(),
		metricsServer:  metricsServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// close stops the metrics endpoint and flushes the logger and tracer.
func (e *env) close(ctx context.Context) {
	if e.metricsServer != nil {
		if err := e.metricsServer.Shutdown(ctx); err != nil {
			e.logger.Warn("Failed to shut down metrics server", zap.Error(err))
		}
	}
	e.logger.Sync()
	e.tracerShutdown(ctx)
}

// errorKind maps client errors onto stable metric labels.
func errorKind(err error) string {
	switch {
	case errors.Is(err, dhl.ErrMissingCredentials):
		return "configuration"
	case errors.Is(err, dhl.ErrAuthenticationFailed):
		return "auth"
	case errors.Is(err, dhl.ErrInvalidAddress):
		return "validation"
	case errors.Is(err, dhl.ErrShipmentRejected):
		return "shipment_rejected"
	case errors.Is(err, dhl.ErrShipmentNotFound):
		return "not_found"
	case errors.Is(err, dhl.ErrProofNotAvailable):
		return "proof_not_available"
	case errors.Is(err, dhl.ErrRateLimitExceeded):
		return "rate_limited"
	case errors.Is(err, dhl.ErrServiceUnavailable):
		return "service_unavailable"
	case errors.Is(err, dhl.ErrNetwork):
		return "network"
	default:
		return "unknown"
	}
}
