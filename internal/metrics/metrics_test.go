package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	m := New()

	m.ObserveSession("authenticated")
	m.ObserveSession("authenticated")
	m.ObserveSession("no_token")
	m.ObserveRequest(http.MethodGet, "/api/posts", http.StatusOK)
	m.ObserveRequest(http.MethodGet, "", http.StatusNotFound)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.sessions.WithLabelValues("authenticated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessions.WithLabelValues("no_token")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/posts", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveSession("invalid_token")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `blog_session_outcomes_total{outcome="invalid_token"} 1`)
}
