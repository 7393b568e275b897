package web

import (
	"context"
	"errors"
	"time"
)

// Values carries request-scoped state through the middleware chain.
type Values struct {
	TraceID    string
	Now        time.Time
	StatusCode int
}

type ctxKey int

const key ctxKey = 1

func setValues(ctx context.Context, v *Values) context.Context {
	return context.WithValue(ctx, key, v)
}

// GetValues returns the Values stored in ctx by the web framework.
func GetValues(ctx context.Context) (*Values, error) {
	v, ok := ctx.Value(key).(*Values)
	if !ok {
		return nil, errors.New("web value missing from context")
	}
	return v, nil
}
