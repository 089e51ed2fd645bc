package security

import (
	"crypto/tls"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"qa_forum_backend/internal/config"
	"qa_forum_backend/internal/util"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func serve(r http.Handler, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/ping", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORS(t *testing.T) {
	r := newRouter(CORS(config.CORSConfig{AllowedOrigins: []string{"http://allowed.test/"}}))

	w := serve(r, http.MethodGet, "http://allowed.test")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://allowed.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = serve(r, http.MethodGet, "http://evil.test")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	// 预检请求直接返回
	w = serve(r, http.MethodOptions, "http://allowed.test")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCORSWildcard(t *testing.T) {
	r := newRouter(CORS(config.CORSConfig{AllowedOrigins: []string{"*"}}))

	w := serve(r, http.MethodGet, "http://anything.test")
	assert.Equal(t, "http://anything.test", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecureDefaultHeaders(t *testing.T) {
	w := serve(newRouter(Secure(config.SecurityConfig{HSTS: "max-age=60"})), http.MethodGet, "")

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestSecureConfiguredHeaders(t *testing.T) {
	cfg := config.SecurityConfig{
		Headers: []config.HeaderConfig{{Name: "X-Frame-Options", Value: "SAMEORIGIN"}},
		HSTS:    "max-age=60",
	}
	r := newRouter(Secure(cfg))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.TLS = &tls.ConnectionState{}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "SAMEORIGIN", w.Header().Get("X-Frame-Options"))
	assert.Empty(t, w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "max-age=60", w.Header().Get("Strict-Transport-Security"))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{MaxRequests: 2, WindowMinutes: 60, Message: "slow down"})
	defer rl.Stop()
	r := newRouter(rl.Handler())

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "").Code)

	w := serve(r, http.MethodGet, "")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	var body util.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, http.StatusTooManyRequests, body.Code)
	assert.Equal(t, "slow down", body.Message)
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{MaxRequests: 0})
	defer rl.Stop()
	r := newRouter(rl.Handler())

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "").Code)
	}
	assert.Equal(t, 0, rl.size())
}

func TestRateLimiterEvictsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{MaxRequests: 1, WindowMinutes: 1})
	rl.Stop()
	rl.Stop()

	now := time.Now()
	assert.True(t, rl.allow("10.0.0.1", now))
	assert.False(t, rl.allow("10.0.0.1", now))
	assert.Equal(t, 1, rl.size())

	rl.evict(now.Add(2 * time.Minute))
	assert.Equal(t, 1, rl.size())
	rl.evict(now.Add(4 * time.Minute))
	assert.Equal(t, 0, rl.size())
}
