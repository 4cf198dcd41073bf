package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/okian/studybuddy/pkg/metrics"
)

// MetricsMiddleware records request count, latency and failures under the
// endpoint label. Route ids are never used as labels.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		elapsed := float64(time.Since(start).Microseconds()) / 1000
		metrics.RecordHTTPRequest(endpoint, r.Method, strconv.Itoa(rec.status), elapsed)
		if kind := failureKind(rec.status); kind != "" {
			metrics.RecordErrorByComponent("http", kind)
		}
	}
}

// failureKind buckets failing statuses into the codes writeFailure emits.
func failureKind(status int) string {
	switch {
	case status < http.StatusBadRequest:
		return ""
	case status == http.StatusNotFound:
		return "not_found"
	case status == http.StatusConflict:
		return "invalid_role"
	case status == http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case status == http.StatusGatewayTimeout, status == http.StatusServiceUnavailable:
		return "timeout"
	case status >= http.StatusInternalServerError:
		return "server_error"
	default:
		return "bad_request"
	}
}

// statusRecorder remembers the first status written.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.ResponseWriter.Write(b)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }
