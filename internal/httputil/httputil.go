// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the Canvas client:
// status classification, Link header pagination, and response body decoding.
package httputil

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"

	"github.com/pdiddy/canvas-export/pkg/types"
)

// AcceptEncoding is the Accept-Encoding value sent on API requests.
// Setting it disables net/http's transparent gzip handling, so ReadBody
// decodes both encodings itself.
const AcceptEncoding = "br, gzip"

// maxBodyBytes caps how much of a response body is read into memory.
const maxBodyBytes = 64 << 20

// StatusKind maps a non-2xx HTTP status to an error kind. It returns nil for
// statuses outside the taxonomy (e.g. 400, 422, 429).
func StatusKind(code int) error {
	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return types.ErrAuthentication
	case code == http.StatusNotFound:
		return types.ErrNotFound
	case code >= 500 && code <= 599:
		return types.ErrTransient
	default:
		return nil
	}
}

// TransportError wraps an error returned by http.Client.Do as a transient
// failure. Caller cancellation is passed through unchanged.
func TransportError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return fmt.Errorf("%w: timeout: %w", types.ErrTransient, err)
	}
	return fmt.Errorf("%w: %w", types.ErrTransient, err)
}

// ReadBody reads and closes resp.Body, undoing any gzip or brotli
// Content-Encoding.
func ReadBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	var r io.Reader = resp.Body
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "", "identity":
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("opening gzip body: %w", err)
		}
		defer gz.Close()
		r = gz
	case "br":
		r = brotli.NewReader(resp.Body)
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", resp.Header.Get("Content-Encoding"))
	}

	data, err := io.ReadAll(io.LimitReader(r, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return data, nil
}

// NextLink returns the URL of the rel="next" entry in a Link header, or ""
// when there is none. Canvas paginates every list endpoint this way.
func NextLink(h http.Header) string {
	for _, header := range h.Values("Link") {
		for _, part := range strings.Split(header, ",") {
			segments := strings.Split(part, ";")
			if len(segments) < 2 {
				continue
			}
			target := strings.TrimSpace(segments[0])
			if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
				continue
			}
			for _, param := range segments[1:] {
				key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
				if !ok || !strings.EqualFold(strings.TrimSpace(key), "rel") {
					continue
				}
				for _, rel := range strings.Fields(strings.Trim(value, `"`)) {
					if strings.EqualFold(rel, "next") {
						return target[1 : len(target)-1]
					}
				}
			}
		}
	}
	return ""
}

// Snippet trims b to at most max runes for inclusion in an error message.
func Snippet(b []byte, max int) string {
	r := []rune(strings.TrimSpace(string(b)))
	if len(r) <= max {
		return string(r)
	}
	return string(r[:max]) + "..."
}
