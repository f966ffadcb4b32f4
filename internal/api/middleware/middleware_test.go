package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(handlers...)
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return router
}

func get(router *gin.Engine, remote string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remote
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimitPerClient(t *testing.T) {
	now := time.Unix(1700000000, 0)
	router := newRouter(rateLimit(RateLimitConfig{RequestsPerSecond: 1, Burst: 2}, func() time.Time { return now }))

	assert.Equal(t, http.StatusNoContent, get(router, "10.0.0.1:1000", nil).Code)
	assert.Equal(t, http.StatusNoContent, get(router, "10.0.0.1:1000", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(router, "10.0.0.1:1000", nil).Code)

	// another address has its own bucket
	assert.Equal(t, http.StatusNoContent, get(router, "10.0.0.2:1000", nil).Code)

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusNoContent, get(router, "10.0.0.1:1000", nil).Code)
}

func TestRateLimitForgetsIdleClients(t *testing.T) {
	now := time.Unix(1700000000, 0)
	router := newRouter(rateLimit(RateLimitConfig{RequestsPerSecond: 1, Burst: 1}, func() time.Time { return now }))

	assert.Equal(t, http.StatusNoContent, get(router, "10.0.0.1:1000", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(router, "10.0.0.1:1000", nil).Code)

	now = now.Add(clientIdle + time.Minute)
	assert.Equal(t, http.StatusNoContent, get(router, "10.0.0.1:1000", nil).Code)
}

func TestCORSDefaultRejectsForeignOrigins(t *testing.T) {
	router := newRouter(CORS(DefaultCORSConfig()))

	w := get(router, "10.0.0.1:1000", map[string]string{"Origin": "https://evil.example"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	// no Origin header: not a browser cross-origin call
	assert.Equal(t, http.StatusNoContent, get(router, "10.0.0.1:1000", nil).Code)

	// same host as the request
	w = get(router, "10.0.0.1:1000", map[string]string{"Origin": "http://example.com"})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCORSWildcard(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"*"}
	router := newRouter(CORS(cfg))

	w := get(router, "10.0.0.1:1000", map[string]string{"Origin": "http://localhost:3000"})
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSRestrictedOrigins(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"http://localhost:3000"}
	router := newRouter(CORS(cfg))

	w := get(router, "10.0.0.1:1000", map[string]string{"Origin": "http://localhost:3000"})
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w = get(router, "10.0.0.1:1000", map[string]string{"Origin": "http://evil.example"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequireJSON())
	router.POST("/downloads", func(c *gin.Context) { c.Status(http.StatusAccepted) })
	router.GET("/downloads", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name        string
		contentType string
		status      int
	}{
		{"json", "application/json", http.StatusAccepted},
		{"json with charset", "application/json; charset=utf-8", http.StatusAccepted},
		{"text plain", "text/plain", http.StatusUnsupportedMediaType},
		{"form", "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"missing", "", http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/downloads", strings.NewReader(`{"url":"x"}`))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/downloads", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
