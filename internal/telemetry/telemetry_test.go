package telemetry

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetup(t *testing.T) {
	tel, err := Setup("recalld-test", "0.0.0")
	require.NoError(t, err)
	defer func() { _ = tel.Shutdown(context.Background()) }()

	// Instruments created through the global meter land in the scrape
	// output.
	meter := otel.Meter("telemetry-test")
	counter, err := meter.Int64Counter("telemetry_test_events_total")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	rec := httptest.NewRecorder()
	tel.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "telemetry_test_events_total")
}
