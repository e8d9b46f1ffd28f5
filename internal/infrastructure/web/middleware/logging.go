package middleware

import (
	"net/http"
	"strings"

	"crypto-valuation-service/internal/infrastructure/logging"
)

// LoggingMiddleware complements RequestTracingMiddleware with debug and
// security logging of the incoming request
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		logging.Debug(ctx, "Processing HTTP request", logging.Fields{
			"headers":        extractImportantHeaders(r),
			"query":          r.URL.RawQuery,
			"content_length": r.ContentLength,
		})

		// Detectar requests potencialmente sospechosos
		if reason, suspicious := suspiciousRequest(r); suspicious {
			logging.Security().InvalidRequest(ctx, getClientIP(r), reason)
		}

		next.ServeHTTP(w, r)
	})
}

// extractImportantHeaders extracts relevant headers for logging
func extractImportantHeaders(r *http.Request) map[string]string {
	headers := make(map[string]string)

	// evitar headers sensibles
	importantHeaders := []string{
		"Content-Type",
		"Accept",
		"Accept-Encoding",
		"Cache-Control",
		"X-Forwarded-For",
		"X-Real-IP",
	}

	for _, header := range importantHeaders {
		if value := r.Header.Get(header); value != "" {
			headers[header] = value
		}
	}

	return headers
}

var suspiciousPatterns = []string{
	"../",
	"<script",
	"select ",
	"union ",
	"drop ",
	"exec(",
	"eval(",
}

// suspiciousRequest detecta patrones comunes de ataques
func suspiciousRequest(r *http.Request) (string, bool) {
	path := strings.ToLower(r.URL.Path)
	query := strings.ToLower(r.URL.RawQuery)

	for _, pattern := range suspiciousPatterns {
		if strings.Contains(path, pattern) || strings.Contains(query, pattern) {
			return "suspicious pattern: " + strings.TrimSpace(pattern), true
		}
	}

	if r.ContentLength > 1024*1024 {
		return "body too large", true
	}

	return "", false
}
