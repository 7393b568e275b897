package mid

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/decentraland/stoneage-node/foundation/web"
)

// Panics recovers from a panic inside the handler chain and turns it into
// an error so Errors can respond instead of crashing the process.
func Panics() web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					err = fmt.Errorf("panic: %v: %s", rec, debug.Stack())
				}
			}()
			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
