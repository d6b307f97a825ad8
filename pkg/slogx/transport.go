package slogx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/vaultcraft/vaultcraft/pkg/idx"
)

// Transport is an http.RoundTripper that tags each outgoing request
// with a ULID request ID and logs method, path, status and duration.
// Wrap the SDK client's transport with NewTransport to trace vault
// traffic without touching call sites.
type Transport struct {
	base   http.RoundTripper
	logger *slog.Logger
}

func NewTransport(base http.RoundTripper, logger *slog.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{base: base, logger: logger}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	reqID := req.Header.Get("X-Request-ID")
	if reqID == "" {
		reqID = idx.New().String()
		req.Header.Set("X-Request-ID", reqID)
	}

	logger := t.logger.With(
		"req_id", reqID,
		"method", req.Method,
		"path", req.URL.Path,
	)

	resp, err := t.base.RoundTrip(req)
	duration := time.Since(start).Milliseconds()

	if err != nil {
		logger.Warn("vault_request_failed", "duration_ms", duration, "err", err)
		return nil, err
	}

	logger.Debug("vault_request",
		"status", resp.StatusCode,
		"duration_ms", duration,
	)
	return resp, nil
}
