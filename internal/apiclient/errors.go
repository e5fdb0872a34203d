package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	// ErrUnauthenticated means the session is missing or expired. The stored
	// token has been cleared and the login hook has fired.
	ErrUnauthenticated = errors.New("not logged in or session expired")

	// ErrInvalidCredentials is returned by Login on a rejected email/password.
	ErrInvalidCredentials = errors.New("incorrect email or password")
)

// maxErrorBodySize caps the body kept on an HTTPError.
const maxErrorBodySize = 500

// HTTPError is a non-2xx response from the API.
type HTTPError struct {
	StatusCode int
	Status     string
	Detail     string
	Body       string
	URL        string
}

func (e *HTTPError) Error() string {
	switch {
	case e.Detail != "":
		return fmt.Sprintf("%s (status %d): %s", e.Status, e.StatusCode, e.Detail)
	case e.Body != "":
		return fmt.Sprintf("%s (status %d): %s", e.Status, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s (status %d)", e.Status, e.StatusCode)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}

// parseErrorResponse reads and closes resp.Body.
func parseErrorResponse(resp *http.Response) *HTTPError {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()

	he := &HTTPError{
		StatusCode: resp.StatusCode,
		Status:     http.StatusText(resp.StatusCode),
	}
	if resp.Request != nil && resp.Request.URL != nil {
		he.URL = resp.Request.URL.String()
	}
	if err != nil || len(data) == 0 {
		return he
	}
	he.Body = truncate(string(data), maxErrorBodySize)
	he.Detail = detailOf(data)
	return he
}

// detailOf extracts FastAPI's "detail", which is a string for HTTPException
// and a list of objects for validation errors.
func detailOf(data []byte) string {
	var env struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(data, &env) != nil || len(env.Detail) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(env.Detail, &s) == nil {
		return s
	}
	var compact bytes.Buffer
	if json.Compact(&compact, env.Detail) != nil {
		return ""
	}
	return truncate(compact.String(), maxErrorBodySize)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
