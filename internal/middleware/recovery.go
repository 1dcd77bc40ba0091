package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"galeria/internal/httputil"
)

// Recovery turns handler panics into logged 500 responses.
// http.ErrAbortHandler passes through untouched; the server uses it to
// abort in-flight responses and it must not be reported as a crash.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.Error("panic recovered",
					"error", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
