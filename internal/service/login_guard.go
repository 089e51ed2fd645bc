package service

import (
	"context"
	"qa_forum_backend/internal/config"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// LoginGuard 基于 Redis 的登录失败计数；Redis 不可用时放行
type LoginGuard struct {
	rdb *redis.Client

	mu          sync.RWMutex
	maxFailures int
	window      time.Duration
}

func NewLoginGuard(rdb *redis.Client, cfg config.AuthConfig) *LoginGuard {
	g := &LoginGuard{rdb: rdb}
	g.Configure(cfg)
	return g
}

// Configure 更新锁定策略，已有的失败计数保留
func (g *LoginGuard) Configure(cfg config.AuthConfig) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.maxFailures = cfg.MaxLoginFailures
	g.window = time.Duration(cfg.LockoutMinutes) * time.Minute
}

func (g *LoginGuard) policy() (int, time.Duration) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.maxFailures, g.window
}

func (g *LoginGuard) key(userName string) string {
	return "login:fail:" + strings.ToLower(userName)
}

func (g *LoginGuard) enabled() bool {
	if g == nil || g.rdb == nil {
		return false
	}
	limit, _ := g.policy()
	return limit > 0
}

func (g *LoginGuard) Locked(ctx context.Context, userName string) bool {
	if !g.enabled() {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	n, err := g.rdb.Get(ctx, g.key(userName)).Int()
	if err != nil {
		// redis.Nil 或连接错误都放行
		return false
	}
	limit, _ := g.policy()
	return n >= limit
}

func (g *LoginGuard) RecordFailure(ctx context.Context, userName string) {
	if !g.enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	key := g.key(userName)
	n, err := g.rdb.Incr(ctx, key).Result()
	if err != nil {
		return
	}
	if n == 1 {
		_, window := g.policy()
		_ = g.rdb.Expire(ctx, key, window).Err()
	}
}

func (g *LoginGuard) Reset(ctx context.Context, userName string) {
	if !g.enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	_ = g.rdb.Del(ctx, g.key(userName)).Err()
}
