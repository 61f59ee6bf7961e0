package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matthieukhl/doemart/internal/types"
)

type timeoutBackend struct {
	types.Backend
	timeout time.Duration
}

// WithTimeout bounds every call on b by d and reports deadline expiry as types.ErrTimeout
func WithTimeout(b types.Backend, d time.Duration) types.Backend {
	if d <= 0 {
		return b
	}
	return &timeoutBackend{Backend: b, timeout: d}
}

func timeoutErr(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, types.ErrTimeout) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, types.ErrTimeout)
	}
	return err
}

func (t *timeoutBackend) Select(ctx context.Context, collection string, q types.Query) ([]types.Row, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	rows, err := t.Backend.Select(ctx, collection, q)
	return rows, timeoutErr(ctx, "select "+collection, err)
}

func (t *timeoutBackend) Count(ctx context.Context, collection string, q types.Query) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	n, err := t.Backend.Count(ctx, collection, q)
	return n, timeoutErr(ctx, "count "+collection, err)
}

func (t *timeoutBackend) Insert(ctx context.Context, collection string, record types.Row) (types.Row, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	row, err := t.Backend.Insert(ctx, collection, record)
	return row, timeoutErr(ctx, "insert "+collection, err)
}

func (t *timeoutBackend) Update(ctx context.Context, collection string, filters []types.Filter, patch types.Row) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	n, err := t.Backend.Update(ctx, collection, filters, patch)
	return n, timeoutErr(ctx, "update "+collection, err)
}

func (t *timeoutBackend) RestoreSession(ctx context.Context) (*types.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	s, err := t.Backend.RestoreSession(ctx)
	return s, timeoutErr(ctx, "restore session", err)
}

func (t *timeoutBackend) SignIn(ctx context.Context, email, password string) (*types.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	s, err := t.Backend.SignIn(ctx, email, password)
	return s, timeoutErr(ctx, "sign in", err)
}

func (t *timeoutBackend) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*types.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	s, err := t.Backend.SignUp(ctx, email, password, metadata)
	return s, timeoutErr(ctx, "sign up", err)
}

func (t *timeoutBackend) SignOut(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return timeoutErr(ctx, "sign out", t.Backend.SignOut(ctx))
}

// HealthCheck forwards to the wrapped backend when it can probe its service
func (t *timeoutBackend) HealthCheck(ctx context.Context) error {
	hc, ok := t.Backend.(types.HealthChecker)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return timeoutErr(ctx, "health check", hc.HealthCheck(ctx))
}
