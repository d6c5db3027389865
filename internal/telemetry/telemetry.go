// Package telemetry wires optional error reporting and trace export.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const flushTimeout = 2 * time.Second

// Options selects which backends are enabled. Empty values disable a backend.
type Options struct {
	SentryDSN    string
	OTLPEndpoint string
	Release      string
}

// Shutdown flushes and stops every enabled backend.
type Shutdown func(ctx context.Context) error

// Setup initializes the configured backends and returns their shutdown hook.
func Setup(ctx context.Context, opts Options) (Shutdown, error) {
	var shutdowns []Shutdown

	if dsn := strings.TrimSpace(opts.SentryDSN); dsn != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:     dsn,
			Release: opts.Release,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to init sentry: %w", err)
		}
		logrus.AddHook(&SentryHook{})
		shutdowns = append(shutdowns, func(context.Context) error {
			sentry.Flush(flushTimeout)
			return nil
		})
	}

	if endpoint := strings.TrimSpace(opts.OTLPEndpoint); endpoint != "" {
		exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
		if err != nil {
			return nil, fmt.Errorf("failed to create otlp exporter: %w", err)
		}
		provider := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(resource.NewSchemaless(
				attribute.String("service.name", "perfdash"),
				attribute.String("service.version", opts.Release),
			)),
		)
		otel.SetTracerProvider(provider)
		shutdowns = append(shutdowns, provider.Shutdown)
	}

	return func(ctx context.Context) error {
		var errs []error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			if err := shutdowns[i](ctx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}, nil
}

// SentryHook forwards error-level log entries to Sentry.
type SentryHook struct{}

// Levels implements logrus.Hook.
func (h *SentryHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel}
}

// Fire implements logrus.Hook.
func (h *SentryHook) Fire(entry *logrus.Entry) error {
	hub := sentry.CurrentHub().Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range entry.Data {
			if k == logrus.ErrorKey {
				continue
			}
			scope.SetExtra(k, v)
		}
		if err, ok := entry.Data[logrus.ErrorKey].(error); ok {
			scope.SetExtra("message", entry.Message)
			hub.CaptureException(err)
			return
		}
		hub.CaptureMessage(entry.Message)
	})
	return nil
}
