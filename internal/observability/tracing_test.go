package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInitTracingDisabledReturnsNoopShutdown(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "eventscape-test"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestStartSpanWithoutProviderIsSafe(t *testing.T) {
	span, ctx := StartSpan(context.Background(), "geo.nearby", attribute.Float64("radius_km", 10))
	require.NotNil(t, ctx)

	span.AddAttributes(attribute.Int("results", 3))
	span.SetError(errors.New("boom"))
	span.End()
}

func TestSamplerFor(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), samplerFor(1).Description())
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased{0.25}")
	assert.Contains(t, samplerFor(0.25).Description(), "ParentBased")
}

func TestRecordAdmissionIncrementsCounter(t *testing.T) {
	RecordAdmission(AdmissionAdmitted)
	RecordAdmission(AdmissionAdmitted)
	RecordAdmission(AdmissionCapacityReached)

	assert.GreaterOrEqual(t, counterValue(t, AdmissionAdmitted), 2.0)
	assert.GreaterOrEqual(t, counterValue(t, AdmissionCapacityReached), 1.0)
}
