package mid

import (
	"context"
	"expvar"
	"net/http"

	"github.com/decentraland/stoneage-node/foundation/web"
)

var (
	reqs    = expvar.NewInt("requests")
	errsVar = expvar.NewInt("errors")
)

// Metrics publishes request and error counts to expvar so they show up
// on the debug mux.
func Metrics() web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			reqs.Add(1)

			err := handler(ctx, w, r)
			if err != nil {
				errsVar.Add(1)
			}

			return err
		}
		return h
	}
	return m
}
