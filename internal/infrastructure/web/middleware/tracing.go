package middleware

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"time"

	"crypto-valuation-service/internal/infrastructure/logging"
)

// RequestIDHeader viaja en request y response
const RequestIDHeader = "X-Request-ID"

// ResponseWriter wrapper to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.statusCode == 0 {
		rw.statusCode = http.StatusOK
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	rw.statusCode = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}

// RequestTracingMiddleware adds request tracing and structured logging.
// An incoming X-Request-ID is kept, otherwise a new one is generated.
func RequestTracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" || len(requestID) > 128 {
			requestID = logging.GenerateRequestID()
		}

		startTime := time.Now()
		ctx := logging.WithRequestID(r.Context(), requestID)
		ctx = logging.WithStartTime(ctx, startTime)

		w.Header().Set(RequestIDHeader, requestID)

		wrapped := &responseWriter{ResponseWriter: w}

		method := r.Method
		path := r.URL.Path
		httpLogger := logging.HTTP()
		httpLogger.RequestReceived(ctx, method, path, r.UserAgent(), getClientIP(r))

		r = r.WithContext(ctx)
		next.ServeHTTP(wrapped, r)

		status := wrapped.statusCode
		if status == 0 {
			status = http.StatusOK
		}
		durationMs := float64(time.Since(startTime).Nanoseconds()) / 1e6

		if status >= http.StatusInternalServerError {
			httpLogger.RequestFailed(ctx, method, path, status, errors.New(http.StatusText(status)), durationMs)
			return
		}
		httpLogger.RequestCompleted(ctx, method, path, status, durationMs)
	})
}
