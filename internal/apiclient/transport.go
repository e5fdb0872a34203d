package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
)

// TokenStore holds the session's bearer credential.
// Token returns "" with a nil error when no session exists.
type TokenStore interface {
	Token() (string, error)
	SetToken(token string) error
	ClearToken() error
}

// MemoryTokens is an in-process TokenStore. It is safe for concurrent use.
type MemoryTokens struct {
	mu    sync.Mutex
	token string
}

func (m *MemoryTokens) Token() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryTokens) SetToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryTokens) ClearToken() error {
	return m.SetToken("")
}

type anonymousKey struct{}

// anonymous marks a request that must go out without credentials.
func anonymous(ctx context.Context) context.Context {
	return context.WithValue(ctx, anonymousKey{}, true)
}

func isAnonymous(ctx context.Context) bool {
	v, _ := ctx.Value(anonymousKey{}).(bool)
	return v
}

// RequestIDHeader carries a per-request UUID for correlating client and server logs.
const RequestIDHeader = "X-Request-ID"

// Transport is an http.RoundTripper that attaches the stored bearer token
// and a request ID to every outbound request.
type Transport struct {
	// Source supplies the token. A nil Source sends requests unauthenticated.
	Source TokenStore

	// Base makes the actual request. If nil, http.DefaultTransport is used.
	Base http.RoundTripper
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	req2 := cloneRequest(req)
	if req2.Header.Get(RequestIDHeader) == "" {
		req2.Header.Set(RequestIDHeader, uuid.New().String())
	}

	if t.Source != nil && !isAnonymous(req.Context()) && req2.Header.Get("Authorization") == "" {
		token, err := t.Source.Token()
		if err != nil {
			return nil, fmt.Errorf("apiclient: reading token: %w", err)
		}
		if token != "" {
			req2.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return base.RoundTrip(req2)
}

// cloneRequest returns a shallow copy of r with its own Header map.
func cloneRequest(r *http.Request) *http.Request {
	r2 := new(http.Request)
	*r2 = *r
	r2.Header = make(http.Header, len(r.Header))
	for k, s := range r.Header {
		r2.Header[k] = append([]string(nil), s...)
	}
	return r2
}
