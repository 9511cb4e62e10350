package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applogger "StockCast/pkg/logger"
)

type routes struct{}

func (routes) RegisterRoutes(e *echo.Echo) {
	e.GET("/boom", func(echo.Context) error { panic("boom") })
	e.GET("/ok", func(c echo.Context) error { return SuccessResponse(c, map[string]int{"n": 1}) })
}

func newTestServer(t *testing.T, opts ...ServerOption) *Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	opts = append([]ServerOption{WithMetrics("/metrics", reg, reg)}, opts...)
	return NewServer(routes{}, applogger.Nop(), opts...)
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func TestServer_HealthAndEnvelope(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":200,"message":"OK","data":{"n":1}}`, rec.Body.String())
}

func TestServer_RecoversPanics(t *testing.T) {
	s := newTestServer(t)
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal Server Error")
}

func TestServer_MetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	serve(s, httptest.NewRequest(http.MethodGet, "/ok", nil))

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `stockcast_http_requests_total{class="2xx",method="GET",route="/ok"} 1`), body)
}

func TestServer_CORS(t *testing.T) {
	s := newTestServer(t, WithCORSOrigins([]string{"https://app.example"}))

	req := httptest.NewRequest(http.MethodOptions, "/ok", nil)
	req.Header.Set(echo.HeaderOrigin, "https://app.example")
	rec := serve(s, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))

	req = httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(echo.HeaderOrigin, "https://evil.example")
	rec = serve(s, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestStatusError_Retryable(t *testing.T) {
	assert.True(t, (&StatusError{Code: http.StatusBadGateway}).Retryable())
	assert.True(t, (&StatusError{Code: http.StatusTooManyRequests}).Retryable())
	assert.False(t, (&StatusError{Code: http.StatusNotFound}).Retryable())
}
