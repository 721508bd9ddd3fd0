package middlewarex

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"smartdeals/pkg/errcodes"
	"smartdeals/pkg/httpx/reply"
	"smartdeals/pkg/logx"
)

// Recovery turns a handler panic into a 500 with the usual error body.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		defer func() {
			if rec := recover(); rec != nil {
				logger(ctx).Error(
					"panic in handler",
					slog.Any(logx.FieldError, rec),
					slog.String(logx.FieldStack, string(debug.Stack())),
				)

				reply.Detail(ctx, w, http.StatusInternalServerError, errcodes.InternalServerError.String())
			}
		}()

		next.ServeHTTP(w, r)
	})
}
