package server_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/delivro/dhlexpress/internal/server"
	"github.com/delivro/dhlexpress/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *server.Server {
	t.Helper()

	logger := otelzap.New(zap.NewNop())
	return server.New("127.0.0.1:0", logger)
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestServer_Metrics_ExposesRecordedRequests(t *testing.T) {
	metrics := telemetry.NewMetrics()
	metrics.RecordRequest("shipment-tracking", "success", 0.042)
	metrics.RecordError("shipment-proof", "not_found")

	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "dhlexpress_requests_total")
	assert.Contains(t, string(body), "dhlexpress_api_errors_total")
}
