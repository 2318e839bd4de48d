package errorhandler

import (
	"context"
	"net/http"

	"github.com/qrsurvey/qrs-api/internal/pkg/logger"
	"github.com/qrsurvey/qrs-api/internal/pkg/response"
)

// exposeStoreErrors controls whether storage failures are surfaced verbatim to the caller.
var exposeStoreErrors bool

// ExposeStoreErrors toggles verbatim storage error messages in 500 bodies.
func ExposeStoreErrors(enabled bool) {
	exposeStoreErrors = enabled
}

// StoreFailure logs a remote-store failure and writes a 500 envelope.
// The message carries err's text only when exposure is enabled.
func StoreFailure(ctx context.Context, w http.ResponseWriter, operation string, err error) {
	message := "An unexpected error occurred"
	if exposeStoreErrors && err != nil {
		message = err.Error()
	}
	HandleError(ctx, w, http.StatusInternalServerError, "STORE_ERROR", message, operation, err)
}

// HandleError logs err under the request's logger and writes the envelope.
func HandleError(ctx context.Context, w http.ResponseWriter, status int, code, message, operation string, err error) {
	event := logger.FromContext(ctx).Error().
		Str("request_id", logger.RequestID(ctx)).
		Str("operation", operation).
		Str("error_code", code).
		Int("status_code", status)
	if err != nil {
		event = event.Err(err)
	}
	event.Msg("Request error")

	response.Error(w, status, code, message)
}

// LogFailure logs a failure for handlers that render their own error page.
func LogFailure(ctx context.Context, operation string, err error) {
	logger.FromContext(ctx).Error().
		Str("request_id", logger.RequestID(ctx)).
		Str("operation", operation).
		Err(err).
		Msg("Request failure")
}

// HandlePanicError logs a recovered panic with its stack trace
func HandlePanicError(ctx context.Context, w http.ResponseWriter, panicErr interface{}, stackTrace string) {
	logger.FromContext(ctx).Error().
		Str("request_id", logger.RequestID(ctx)).
		Interface("panic_error", panicErr).
		Str("panic_stack", stackTrace).
		Msg("Request panic error")

	response.Error(w, http.StatusInternalServerError, "PANIC_ERROR", "Internal server panic")
}
