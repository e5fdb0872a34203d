// Package apiclient talks to the diet-and-fitness backend. Every request
// carries the stored bearer token; a 401 clears it and fires the login hook.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// DefaultTimeout bounds a single request when no HTTP client is supplied.
const DefaultTimeout = 30 * time.Second

// Options configures a Client. All fields are optional.
type Options struct {
	// Tokens stores the session credential. Defaults to an in-memory store.
	Tokens TokenStore

	// HTTPClient is copied and its transport wrapped with Transport.
	HTTPClient *http.Client

	// Timeout applies when HTTPClient is nil.
	Timeout time.Duration

	// OnUnauthenticated runs after a 401 has cleared the stored token,
	// typically to send the user through the login flow.
	OnUnauthenticated func()

	Logger *slog.Logger
}

type Client struct {
	baseURL  string
	http     *http.Client
	tokens   TokenStore
	onUnauth func()
	logger   *slog.Logger

	// expireMu serializes session expiry so parallel 401s fire the hook once.
	expireMu sync.Mutex
}

// New returns a Client for the API rooted at baseURL.
func New(baseURL string, opts Options) *Client {
	tokens := opts.Tokens
	if tokens == nil {
		tokens = &MemoryTokens{}
	}

	var hc http.Client
	if opts.HTTPClient != nil {
		hc = *opts.HTTPClient
	} else {
		hc.Timeout = opts.Timeout
		if hc.Timeout <= 0 {
			hc.Timeout = DefaultTimeout
		}
	}
	hc.Transport = &Transport{Source: tokens, Base: hc.Transport}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &hc,
		tokens:   tokens,
		onUnauth: opts.OnUnauthenticated,
		logger:   logger,
	}
}

// BaseURL returns the API root this client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// LoggedIn reports whether a session token is stored.
func (c *Client) LoggedIn() bool {
	tok, err := c.tokens.Token()
	return err == nil && tok != ""
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPatch, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshalling request: %w", err)
		}
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, reader, contentType, out)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	return c.do(ctx, http.MethodPost, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: API not reachable at %s: %w", method, path, c.baseURL, err)
	}
	c.logger.Debug("api request", "method", method, "path", path, "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode == http.StatusUnauthorized && !isAnonymous(ctx) {
		resp.Body.Close()
		c.expireSession()
		return fmt.Errorf("%s %s: %w", method, path, ErrUnauthenticated)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s: %w", method, path, parseErrorResponse(resp))
	}

	defer resp.Body.Close()
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decoding response: %w", method, path, err)
	}
	return nil
}

// expireSession clears the stored token and fires the login hook. It does
// nothing when the token is already gone.
func (c *Client) expireSession() {
	c.expireMu.Lock()
	if tok, err := c.tokens.Token(); err == nil && tok == "" {
		c.expireMu.Unlock()
		return
	}
	if err := c.tokens.ClearToken(); err != nil {
		c.logger.Warn("clearing expired token failed", "error", err)
	}
	c.expireMu.Unlock()

	if c.onUnauth != nil {
		c.onUnauth()
	}
}
