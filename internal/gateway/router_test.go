package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"hrms-platform/internal/config"
	"hrms-platform/internal/middleware"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func gatewayRig(serviceURLs map[string]string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		ServiceURLs:     serviceURLs,
		UpstreamTimeout: 2 * time.Second,
		HealthTimeout:   500 * time.Millisecond,
	}
	gw := New(cfg, quietLogger())

	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	router.GET("/health", gw.Health())
	router.NoRoute(gw.Proxy())
	return router
}

func TestProxyRewritesAndForwards(t *testing.T) {
	var gotPath, gotQuery, gotMethod, gotAuth string
	var gotBody []byte
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotMethod = r.Method
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)

		w.Header().Set("X-Backend", "leave")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"status":"success","data":{"id":"42"}}`))
	}))
	defer backend.Close()

	router := gatewayRig(map[string]string{"leave": backend.URL})

	body := `{"leaveType":"annual"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/leave/leaves/42?page=2", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer abc")
	router.ServeHTTP(w, req)

	assert.Equal(t, "/leaves/42", gotPath)
	assert.Equal(t, "page=2", gotQuery)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "Bearer abc", gotAuth)
	assert.Equal(t, body, string(gotBody))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "leave", w.Header().Get("X-Backend"))
	assert.Equal(t, `{"status":"success","data":{"id":"42"}}`, w.Body.String())
}

func TestProxyForwardsGeneratedRequestID(t *testing.T) {
	var gotRequestID string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get("X-Request-ID")
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	router := gatewayRig(map[string]string{"leave": backend.URL})

	// No client-supplied id: the backend must still see the gateway's
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/leave/leaves", nil))
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, w.Header().Get("X-Request-ID"), gotRequestID)

	// A client-supplied id passes through unchanged
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/leave/leaves", nil)
	req.Header.Set("X-Request-ID", "client-chosen-id")
	router.ServeHTTP(w, req)
	assert.Equal(t, "client-chosen-id", gotRequestID)
}

func TestProxyPrefixBoundary(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	router := gatewayRig(map[string]string{"leave": backend.URL})

	// "leavesomething" must not match the "leave" route
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/leavesomething/x", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/leave", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProxyUnknownRoute(t *testing.T) {
	router := gatewayRig(map[string]string{"leave": "http://leave-service:8083"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/unknown/things", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "route not found")
}

func TestProxyUnreachableUpstream(t *testing.T) {
	// Nothing listens on this port
	router := gatewayRig(map[string]string{"leave": "http://127.0.0.1:1"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/leave/leaves", nil))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "service unavailable")
	// Connection details never leak into the response
	assert.NotContains(t, w.Body.String(), "127.0.0.1")
}

func TestHealthDegradation(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()

	router := gatewayRig(map[string]string{
		"leave":   healthy.URL,
		"payroll": "http://127.0.0.1:1",
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		Status   string                   `json:"status"`
		Services map[string]ServiceHealth `json:"services"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, "degraded", payload.Status)
	assert.Equal(t, "healthy", payload.Services["leave"].Status)
	assert.Equal(t, "unreachable", payload.Services["payroll"].Status)
}

func TestHealthAllHealthy(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()

	router := gatewayRig(map[string]string{
		"leave":   healthy.URL,
		"payroll": healthy.URL,
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var payload struct {
		Status string `json:"status"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, "healthy", payload.Status)
}
