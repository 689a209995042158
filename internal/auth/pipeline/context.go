package pipeline

import (
	"context"

	"github.com/actionprice/auth/internal/auth/domain"
	"github.com/actionprice/auth/pkg/httpx"
	"github.com/actionprice/auth/pkg/slogx"
)

type ctxKey int

const (
	ctxKeyAuth ctxKey = iota
	ctxKeyAuthErr
)

// WithAuth marks the request as authenticated. The username also becomes
// the rate limit user key and a field on the request logger.
func WithAuth(ctx context.Context, a domain.AuthContext) context.Context {
	ctx = context.WithValue(ctx, ctxKeyAuth, a)
	ctx = httpx.WithUserID(ctx, a.Username)
	return slogx.With(ctx, "username", a.Username)
}

// AuthFromContext returns the caller's identity, if any.
func AuthFromContext(ctx context.Context) (domain.AuthContext, bool) {
	a, ok := ctx.Value(ctxKeyAuth).(domain.AuthContext)
	return a, ok
}

// WithAuthError records why a presented token was not accepted. The request
// continues anonymously; authorization decides whether the error matters.
func WithAuthError(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, ctxKeyAuthErr, err)
}

func AuthErrorFromContext(ctx context.Context) error {
	err, _ := ctx.Value(ctxKeyAuthErr).(error)
	return err
}
