package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

// SentryConfig controls error tracking. With Enabled false or an empty DSN
// every capture call becomes a no-op, so callers never branch on it.
type SentryConfig struct {
	DSN     string
	Enabled bool

	// Environment and Release tag captured events.
	Environment string
	Release     string

	// SampleRate is the fraction of errors to send (0 means 1.0).
	SampleRate float64

	// TracesSampleRate is the fraction of transactions to trace; 0
	// disables performance monitoring.
	TracesSampleRate float64

	// Debug turns on the SDK's own logging.
	Debug bool
}

var sentryEnabled bool

// InitSentry configures the global Sentry client and returns a cleanup
// function that flushes buffered events on shutdown.
func InitSentry(cfg SentryConfig, logger *slog.Logger) (func(), error) {
	noop := func() {}

	if !cfg.Enabled {
		logger.Info("Sentry disabled")
		return noop, nil
	}
	if cfg.DSN == "" {
		logger.Warn("Sentry enabled but no DSN configured, error tracking is off")
		return noop, nil
	}

	sampleRate := cfg.SampleRate
	if sampleRate == 0 {
		sampleRate = 1.0
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		SampleRate:       sampleRate,
		TracesSampleRate: cfg.TracesSampleRate,
		Debug:            cfg.Debug,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize Sentry: %w", err)
	}
	sentryEnabled = true

	logger.Info("Sentry initialized",
		"environment", cfg.Environment,
		"release", cfg.Release,
		"sample_rate", sampleRate,
		"traces_sample_rate", cfg.TracesSampleRate,
	)

	return func() {
		sentry.Flush(2 * time.Second)
	}, nil
}

// SentryMiddleware attaches a request-scoped hub and reports panics before
// re-responding with a 500. Runs outside the router's Recovery so Sentry
// sees the panic first.
func SentryMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sentryEnabled {
				next.ServeHTTP(w, r)
				return
			}

			hub := sentry.GetHubFromContext(r.Context())
			if hub == nil {
				hub = sentry.CurrentHub().Clone()
			}
			hub.Scope().SetRequest(r)
			ctx := sentry.SetHubOnContext(r.Context(), hub)

			defer func() {
				if v := recover(); v != nil {
					hub.RecoverWithContext(ctx, v)
					sentry.Flush(2 * time.Second)
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CaptureError reports err through the request's hub when one exists.
func CaptureError(ctx context.Context, err error, extras map[string]any) {
	if !sentryEnabled || err == nil {
		return
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range extras {
			scope.SetExtra(k, v)
		}
		hub.CaptureException(err)
	})
}
