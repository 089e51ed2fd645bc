package security

import (
	"net/http"
	"qa_forum_backend/internal/config"
	"qa_forum_backend/internal/util"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	corsHeaders = "Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, Cache-Control, X-Requested-With"
	corsMethods = "GET, POST, PUT, DELETE, OPTIONS"
)

// DefaultHeaders 未配置 security.headers 时使用
var DefaultHeaders = []config.HeaderConfig{
	{Name: "X-Content-Type-Options", Value: "nosniff"},
	{Name: "X-Frame-Options", Value: "DENY"},
	{Name: "Referrer-Policy", Value: "no-referrer"},
}

// CORS 仅对白名单 Origin 回写允许头，"*" 表示放行全部
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	allowAll := false
	origins := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			allowAll = true
			continue
		}
		origins[o] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			_, listed := origins[origin]
			if allowAll || listed {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Access-Control-Allow-Credentials", "true")
				c.Header("Vary", "Origin")
			}
		}
		c.Header("Access-Control-Allow-Headers", corsHeaders)
		c.Header("Access-Control-Allow-Methods", corsMethods)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Secure 写入配置的安全响应头
func Secure(cfg config.SecurityConfig) gin.HandlerFunc {
	headers := cfg.Headers
	if len(headers) == 0 {
		headers = DefaultHeaders
	}
	headers = append([]config.HeaderConfig(nil), headers...)

	return func(c *gin.Context) {
		for _, h := range headers {
			if h.Name != "" {
				c.Header(h.Name, h.Value)
			}
		}
		if c.Request.TLS != nil && cfg.HSTS != "" {
			c.Header("Strict-Transport-Security", cfg.HSTS)
		}
		c.Next()
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter 按客户端 IP 的令牌桶限流，Stop 结束后台清理
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	expiry  time.Duration
	message string

	mu       sync.Mutex
	visitors map[string]*visitor

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter max_requests <= 0 时返回的限流器不做限制
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	window := time.Duration(cfg.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	message := cfg.Message
	if message == "" {
		message = "too many requests"
	}

	rl := &RateLimiter{
		burst:    cfg.MaxRequests,
		expiry:   3 * window,
		message:  message,
		visitors: make(map[string]*visitor),
		stop:     make(chan struct{}),
	}
	if cfg.MaxRequests > 0 {
		rl.limit = rate.Every(window / time.Duration(cfg.MaxRequests))
		go rl.cleanup(time.Minute)
	}
	return rl
}

func (rl *RateLimiter) enabled() bool {
	return rl.burst > 0
}

func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.enabled() {
			c.Next()
			return
		}
		if !rl.allow(c.ClientIP(), time.Now()) {
			util.Error(c, http.StatusTooManyRequests, rl.message)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) allow(key string, now time.Time) bool {
	rl.mu.Lock()
	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	rl.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

func (rl *RateLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.evict(now)
		}
	}
}

func (rl *RateLimiter) evict(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.expiry {
			delete(rl.visitors, key)
		}
	}
}

func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// Stop 可重复调用
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}
