package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitExportsSpansAndMetrics(t *testing.T) {
	var traces, metrics bytes.Buffer
	shutdown, err := Init(context.Background(), Config{
		ServiceName:    "perltoolbox-test",
		ServiceVersion: "test",
		Traces:         &traces,
		Metrics:        &metrics,
	})
	require.NoError(t, err)

	ctx, span := otel.Tracer("test").Start(context.Background(), "unit")
	counter, err := otel.Meter("test").Int64Counter("unit_total")
	require.NoError(t, err)
	counter.Add(ctx, 3)
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, traces.String(), `"Name":"unit"`)
	assert.Contains(t, traces.String(), "perltoolbox-test")
	assert.Contains(t, metrics.String(), "unit_total")
}

func TestInitNothingEnabled(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitNilContext(t *testing.T) {
	//nolint:staticcheck // exercising the nil guard
	_, err := Init(nil, Config{})
	assert.ErrorIs(t, err, ErrNilContext)
}
