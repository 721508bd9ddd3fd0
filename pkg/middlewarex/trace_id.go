package middlewarex

import (
	"cmp"
	"net/http"

	"github.com/rs/xid"

	"smartdeals/pkg/contextx"
)

const (
	headerNameTraceID   = "X-Trace-Id"
	headerNameRequestID = "X-Request-Id"
)

// TraceID takes the caller's trace id, falling back to X-Request-Id and then
// to a fresh xid, and echoes it in the response.
func TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := cmp.Or(
			r.Header.Get(headerNameTraceID),
			r.Header.Get(headerNameRequestID),
			xid.New().String(),
		)

		ctx := contextx.WithTraceID(r.Context(), contextx.TraceID(traceID))

		w.Header().Set(headerNameTraceID, traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Chain applies mws so that the first one sees the request first.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}

	return h
}
