package service

import (
	"context"
	"errors"
	"qa_forum_backend/internal/config"
	"qa_forum_backend/internal/util"
	"qa_forum_backend/pkg/logger"
	"qa_forum_backend/pkg/monitoring"
	"qa_forum_backend/pkg/tracing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// Executor 为每个公开操作提供有限次重试、追踪和结果计数；只有存储不可用才会重试
type Executor struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func NewExecutor(cfg config.RetryConfig) *Executor {
	e := &Executor{
		MaxAttempts:     cfg.MaxAttempts,
		InitialInterval: cfg.InitialInterval,
		MaxInterval:     cfg.MaxInterval,
	}
	if e.MaxAttempts < 1 {
		e.MaxAttempts = 1
	}
	if e.InitialInterval <= 0 {
		e.InitialInterval = 50 * time.Millisecond
	}
	if e.MaxInterval < e.InitialInterval {
		e.MaxInterval = e.InitialInterval
	}
	return e
}

// DefaultExecutor 测试与未配置场景使用
func DefaultExecutor() *Executor {
	return NewExecutor(config.RetryConfig{MaxAttempts: 3, InitialInterval: 10 * time.Millisecond, MaxInterval: 100 * time.Millisecond})
}

func (e *Executor) policy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.InitialInterval
	b.MaxInterval = e.MaxInterval
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(e.MaxAttempts-1)), ctx)
}

func (e *Executor) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if e == nil {
		e = DefaultExecutor()
	}

	ctx, span := tracing.Tracer().Start(ctx, op)
	defer span.End()

	err := backoff.RetryNotify(func() error {
		err := fn(ctx)
		if err != nil && !errors.Is(err, util.ErrStorageUnavailable) {
			return backoff.Permanent(err)
		}
		return err
	}, e.policy(ctx), func(err error, wait time.Duration) {
		monitoring.StorageRetries.WithLabelValues(op).Inc()
		logger.Log.Warn("transient storage error, retrying",
			zap.String("operation", op),
			zap.Duration("wait", wait),
			zap.Error(err))
	})

	outcome := outcomeOf(err)
	monitoring.RecordOperation(op, outcome)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		if outcome == "error" || outcome == "unavailable" {
			logger.Log.Error("operation failed", zap.String("operation", op), zap.Error(err))
		}
	}
	return err
}

// run 带返回值的 Do
func run[T any](ctx context.Context, e *Executor, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := e.Do(ctx, op, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, util.ErrValidation):
		return "validation"
	case errors.Is(err, util.ErrNotFound):
		return "not_found"
	case errors.Is(err, util.ErrDuplicate):
		return "duplicate"
	case errors.Is(err, util.ErrStorageUnavailable):
		return "unavailable"
	case errors.Is(err, util.ErrLoginLocked):
		return "locked"
	case errors.Is(err, util.ErrPermissionDenied):
		return "forbidden"
	}
	return "error"
}
