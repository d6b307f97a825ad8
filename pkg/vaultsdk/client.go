package vaultsdk

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/vaultcraft/vaultcraft/pkg/slogx"
)

// Client is a client for the VaultCraft vault service. It provides the
// unauthenticated authentication operations and can create Sessions for
// authenticated item access.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// Limiter throttles the unauthenticated auth endpoints so a
	// misbehaving caller can't hammer login/signup. Matches the strict
	// server-side limit of five requests per minute. Set to nil to
	// disable, e.g. in tests against a local fake.
	Limiter *rate.Limiter
}

// NewClient creates a new vault service client.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		Limiter: rate.NewLimiter(rate.Every(time.Minute/5), 5),
	}
}

// WithLogging wraps the client's transport so every request is logged
// with a request ID, method, path, status and duration.
func (c *Client) WithLogging(logger *slog.Logger) *Client {
	base := c.HTTPClient.Transport
	c.HTTPClient.Transport = slogx.NewTransport(base, logger)
	return c
}

// NewSessionFromToken creates an authenticated session from an existing
// token, e.g. one restored from the local session store.
func (c *Client) NewSessionFromToken(token string) *Session {
	return &Session{client: c, token: token}
}
