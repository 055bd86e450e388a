// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package canvas

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/canvas-export/internal/httputil"
)

// APIError is a non-2xx response from Canvas. Unwrap yields the error kind
// for the status (types.ErrAuthentication, types.ErrNotFound,
// types.ErrTransient) so callers can use errors.Is.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	// Message is the first message from Canvas's {"errors":[...]} envelope, if any.
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	detail := e.Message
	if detail == "" {
		detail = httputil.Snippet(e.Body, 200)
	}
	if detail == "" {
		return fmt.Sprintf("canvas: %s %s: HTTP %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("canvas: %s %s: HTTP %d: %s", e.Method, e.URL, e.StatusCode, detail)
}

func (e *APIError) Unwrap() error {
	return httputil.StatusKind(e.StatusCode)
}

type errorEnvelope struct {
	Errors  json.RawMessage `json:"errors"`
	Message string          `json:"message"`
}

type errorMessage struct {
	Message string `json:"message"`
}

func newAPIError(method, rawURL string, status int, body []byte) *APIError {
	return &APIError{
		Method:     method,
		URL:        rawURL,
		StatusCode: status,
		Message:    errorMessageFrom(body),
		Body:       body,
	}
}

// errorMessageFrom extracts a human message from the shapes Canvas uses:
// {"errors":[{"message":"..."}]}, {"errors":{"field":[...]}}, or {"message":"..."}.
func errorMessageFrom(body []byte) string {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	if env.Message != "" {
		return env.Message
	}
	var list []errorMessage
	if err := json.Unmarshal(env.Errors, &list); err == nil {
		var msgs []string
		for _, m := range list {
			if m.Message != "" {
				msgs = append(msgs, m.Message)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
