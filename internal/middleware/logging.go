// Package middleware holds http.RoundTripper wrappers for the outbound API client.
package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// loggingTransport logs each outbound request with its status and duration
type loggingTransport struct {
	next   http.RoundTripper
	logger *slog.Logger
}

// LoggingTransport wraps next so every round trip is logged at debug level, and
// failures and non-2xx responses at warn level. A nil next uses http.DefaultTransport.
func LoggingTransport(next http.RoundTripper, logger *slog.Logger) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &loggingTransport{next: next, logger: logger}
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		t.logger.Warn("[HTTP] request failed",
			"method", req.Method, "url", req.URL.Redacted(), "duration", duration, "error", err)
		return nil, err
	}

	level := slog.LevelDebug
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		level = slog.LevelWarn
	}
	t.logger.Log(req.Context(), level, "[HTTP] request completed",
		"method", req.Method, "url", req.URL.Redacted(), "status", resp.StatusCode, "duration", duration)
	return resp, nil
}
