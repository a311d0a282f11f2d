package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestObserve(t *testing.T) {
	ObserveRequest("image", "200", 120*time.Millisecond)
	ObserveTransition("zoom_in", "ok")
	ImageCacheHits.Inc()

	body := scrape(t)
	assert.Contains(t, body, `mapview_http_requests_total{kind="image",status="200"}`)
	assert.Contains(t, body, `mapview_http_request_duration_seconds_bucket{kind="image",le="0.25"}`)
	assert.Contains(t, body, `mapview_viewport_transitions_total{action="zoom_in",outcome="ok"}`)
	assert.Contains(t, body, "mapview_cache_image_hits_total")
}

func TestShutdownNil(t *testing.T) {
	assert.NotPanics(t, func() { Shutdown(nil) })
}
