package mid

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/decentraland/stoneage-node/business/validate"
	"github.com/decentraland/stoneage-node/business/web/errs"
	"github.com/decentraland/stoneage-node/foundation/web"
)

// Errors translates any error a handler returns into a JSON response,
// logging it first. A web.NewShutdownError passes through untouched so
// the framework can act on it.
func Errors(log *zap.SugaredLogger) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			err := handler(ctx, w, r)
			if err == nil {
				return nil
			}

			v, verr := web.GetValues(ctx)
			if verr != nil {
				return verr
			}

			log.Errorw("request error", "traceid", v.TraceID, "ERROR", err)

			if web.IsShutdown(err) {
				return err
			}

			if fields, ok := err.(validate.FieldErrors); ok {
				return web.RespondError(ctx, w, http.StatusBadRequest, "data validation error", fields)
			}

			if trusted := errs.GetTrusted(err); trusted != nil {
				return web.RespondError(ctx, w, trusted.Status, trusted.Err.Error(), nil)
			}

			return web.RespondError(ctx, w, http.StatusInternalServerError, "internal server error", nil)
		}
		return h
	}
	return m
}
