package middleware

import (
	apperrors "barberbook/pkg/errors"
	httputil "barberbook/pkg/http"
	"barberbook/pkg/logger"
	"errors"
	"net/http"
	"runtime/debug"
)

// Codes for rejections produced by the middleware itself.
const (
	CodeRequestTimeout       = "REQUEST_TIMEOUT"
	CodePayloadTooLarge      = "PAYLOAD_TOO_LARGE"
	CodeRateLimited          = "RATE_LIMITED"
	CodeUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE"
)

var statusCodes = map[int]string{
	http.StatusServiceUnavailable:    CodeRequestTimeout,
	http.StatusRequestEntityTooLarge: CodePayloadTooLarge,
	http.StatusTooManyRequests:       CodeRateLimited,
	http.StatusUnsupportedMediaType:  CodeUnsupportedMediaType,
}

// headerTracker records whether a handler started its response.
type headerTracker struct {
	http.ResponseWriter
	started bool
}

func (t *headerTracker) WriteHeader(status int) {
	t.started = true
	t.ResponseWriter.WriteHeader(status)
}

func (t *headerTracker) Write(b []byte) (int, error) {
	t.started = true
	return t.ResponseWriter.Write(b)
}

// Recovery turns a handler panic into a 500 INTERNAL_ERROR response carrying
// the request id. A response that already started is left as is, and
// http.ErrAbortHandler is re-raised so the server drops the connection.
func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tracker := &headerTracker{ResponseWriter: w}

			defer func() {
				p := recover()
				if p == nil {
					return
				}
				if err, ok := p.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(p)
				}

				requestID := RequestIDFromContext(r.Context())
				log.Error("Panic recovered",
					"request_id", requestID,
					"error", p,
					"method", r.Method,
					"path", r.URL.Path,
					"response_started", tracker.started,
					"stack", string(debug.Stack()),
				)
				if tracker.started {
					return
				}

				appErr := apperrors.Internal("Internal server error", nil)
				if requestID != "" {
					appErr = appErr.WithDetails(map[string]any{"requestId": requestID})
				}
				if err := httputil.WriteError(w, appErr); err != nil {
					log.Error("failed to write error response", "path", r.URL.Path, "error", err)
				}
			}()

			next.ServeHTTP(tracker, r)
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	code, ok := statusCodes[status]
	if !ok {
		code = apperrors.CodeInternal
	}
	_ = httputil.WriteError(w, apperrors.New(code, message, status))
}
