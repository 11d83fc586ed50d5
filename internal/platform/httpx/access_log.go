package httpx

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/louisbranch/taskboard/internal/platform/logging"
)

// AccessLog logs one structured line per completed request.
func AccessLog() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := newStatusRecorder(w)

			next.ServeHTTP(wrapped, r)

			logging.FromContext(r.Context()).WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      wrapped.status,
				"duration_ms": time.Since(start).Milliseconds(),
				"remote_ip":   ClientIP(r),
				"user_agent":  r.UserAgent(),
			}).Info("request completed")
		})
	}
}
