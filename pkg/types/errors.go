// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "errors"

// Error kinds. Callers match them with errors.Is; concrete errors wrap one
// of these with context about the request or path involved.
var (
	// ErrConfiguration reports a missing or invalid credential or setting.
	ErrConfiguration = errors.New("configuration error")

	// ErrAuthentication reports that Canvas rejected the credential (401/403).
	ErrAuthentication = errors.New("authentication error")

	// ErrNotFound reports that the course or page does not exist (404).
	ErrNotFound = errors.New("not found")

	// ErrTransient reports a server-side (5xx) or network failure.
	ErrTransient = errors.New("transient error")

	// ErrFilesystem reports a failure creating the output directory or
	// writing a page file.
	ErrFilesystem = errors.New("filesystem error")
)

// ErrorKind returns a short label for the kind err wraps, for logs and
// metrics. Unclassified errors return "other".
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrAuthentication):
		return "authentication"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrTransient):
		return "transient"
	case errors.Is(err, ErrFilesystem):
		return "filesystem"
	default:
		return "other"
	}
}
