// Package reply writes responses in the deal backend's shape: JSON bodies and
// errors as {"detail": "..."}.
package reply

import (
	"context"
	"log/slog"
	"net/http"

	"git.appkode.ru/pub/go/failure"
	jsoniter "github.com/json-iterator/go"

	"smartdeals/pkg/contextx"
	"smartdeals/pkg/logx"
	"smartdeals/pkg/rest"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

func JSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger(ctx).Error("json.Encode", logx.Error(err))
	}
}

// Detail writes an error body with the given status.
func Detail(ctx context.Context, w http.ResponseWriter, statusCode int, detail string) {
	JSON(ctx, w, statusCode, rest.Error{Detail: detail})
}

// Error maps failure classes to statuses. Validation failures answer 422 the
// way the backend framework does.
func Error(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusFor(err)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}

	logger(ctx).Log(ctx, level, "request failed",
		slog.Int(logx.FieldResponseStatus, status),
		slog.String("support-id", supportID(ctx)),
		logx.Error(err),
	)

	detail := failure.Description(err)
	if detail == "" {
		detail = http.StatusText(status)
	}

	Detail(ctx, w, status, detail)
}

func statusFor(err error) int {
	switch {
	case failure.IsInvalidArgumentError(err), failure.IsUnprocessableEntityError(err):
		return http.StatusUnprocessableEntity
	case failure.IsNotFoundError(err):
		return http.StatusNotFound
	case failure.IsUnauthorizedError(err):
		return http.StatusUnauthorized
	case failure.IsForbiddenError(err):
		return http.StatusForbidden
	case failure.IsConflictError(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func supportID(ctx context.Context) string {
	traceID, err := contextx.TraceIDFromContext(ctx)
	if err != nil {
		return "unsupported"
	}

	return traceID.String()
}
