package check

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"perltoolbox/internal/diag"
)

var (
	tracer = otel.Tracer("perltoolbox.check")
	meter  = otel.Meter("perltoolbox.check")
)

var (
	checkLatency     metric.Float64Histogram
	checkTotal       metric.Int64Counter
	diagnosticsFound metric.Int64Histogram
	cacheHits        metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics creates the instruments once. Safe to call repeatedly.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		checkLatency, err = meter.Float64Histogram(
			"check_duration_seconds",
			metric.WithDescription("Duration of checker runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		checkTotal, err = meter.Int64Counter(
			"check_total",
			metric.WithDescription("Total number of checker runs"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		diagnosticsFound, err = meter.Int64Histogram(
			"check_diagnostics_found",
			metric.WithDescription("Diagnostics produced per checker run"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		cacheHits, err = meter.Int64Counter(
			"check_cache_hits_total",
			metric.WithDescription("Checker runs answered from the result cache"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func startCheckSpan(ctx context.Context, p Pipeline, path, runID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "ProcessRunner.Run",
		trace.WithAttributes(
			attribute.String("check.pipeline", p.String()),
			attribute.String("check.file_path", path),
			attribute.String("check.run_id", runID),
		),
	)
}

func setCheckSpanResult(span trace.Span, list []diag.Diagnostic, cached bool, err error) {
	errorCount := 0
	for _, d := range list {
		if d.Severity == diag.SevError {
			errorCount++
		}
	}
	span.SetAttributes(
		attribute.Int("check.diagnostic_count", len(list)),
		attribute.Int("check.error_count", errorCount),
		attribute.Bool("check.cached", cached),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

func recordCheckMetrics(ctx context.Context, p Pipeline, duration time.Duration, count int, cached, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("pipeline", p.String()),
		attribute.Bool("success", success),
	)
	checkLatency.Record(ctx, duration.Seconds(), attrs)
	checkTotal.Add(ctx, 1, attrs)

	if success {
		diagnosticsFound.Record(ctx, int64(count), metric.WithAttributes(
			attribute.String("pipeline", p.String()),
		))
	}
	if cached {
		cacheHits.Add(ctx, 1, metric.WithAttributes(
			attribute.String("pipeline", p.String()),
		))
	}
}
