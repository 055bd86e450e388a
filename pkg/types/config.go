// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"net/url"
	"time"
)

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the per-request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "canvas-export/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CanvasConfig holds settings for talking to a Canvas instance.
type CanvasConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the Canvas instance root (e.g. "https://canvas.oregonstate.edu").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// PerPage is the page size requested from paginated endpoints (default 100).
	PerPage int `json:"per_page" yaml:"per_page"`

	// CacheSize bounds the number of fetched pages kept for reuse within a run.
	CacheSize int `json:"cache_size" yaml:"cache_size"`
}

// Validate checks that the Canvas settings are usable.
func (c CanvasConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL cannot be empty", ErrConfiguration)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: invalid base URL: %v", ErrConfiguration, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: base URL must use http or https", ErrConfiguration)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: base URL must include a host", ErrConfiguration)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout cannot be negative", ErrConfiguration)
	}
	if c.PerPage < 0 {
		return fmt.Errorf("%w: per_page cannot be negative", ErrConfiguration)
	}
	return nil
}

// ContentFormat selects how a page body is written to disk.
type ContentFormat string

const (
	// FormatHTML writes the body verbatim.
	FormatHTML ContentFormat = "html"
	// FormatText writes the visible text of the body.
	FormatText ContentFormat = "text"
)

// NamingStyle selects how output file names are built.
type NamingStyle string

const (
	// NamingTitle names files after the page name: "<name>.txt".
	NamingTitle NamingStyle = "title"
	// NamingModule names files "<course>_module_<NN>_<title>.txt", lowercased.
	NamingModule NamingStyle = "module"
)

// MatchMode selects how a page's category is compared to the target.
type MatchMode string

const (
	// MatchExact requires Category to equal the target exactly.
	MatchExact MatchMode = "exact"
	// MatchFold compares Category to the target case-insensitively.
	MatchFold MatchMode = "fold"
	// MatchContains looks for the target anywhere in the lowercased title.
	MatchContains MatchMode = "contains"
)

// DefaultCategory is the page category exported when none is configured.
const DefaultCategory = "Exploration"

// ExportConfig holds settings for one export run.
type ExportConfig struct {
	// OutDir is the parent of the per-course output directory (default ".").
	OutDir string `json:"out_dir" yaml:"out_dir"`

	// Category is the category to export (default "Exploration").
	Category string `json:"category" yaml:"category"`

	// Match selects the category comparison: exact, fold, or contains.
	Match MatchMode `json:"match" yaml:"match"`

	// Format selects html (verbatim) or text output.
	Format ContentFormat `json:"format" yaml:"format"`

	// Naming selects the file naming style: title or module.
	Naming NamingStyle `json:"naming" yaml:"naming"`

	// MetricsFile, when set, receives Prometheus text metrics at the end of a run.
	MetricsFile string `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty"`
}

// WithDefaults returns a copy of c with empty fields set to their defaults.
func (c ExportConfig) WithDefaults() ExportConfig {
	if c.OutDir == "" {
		c.OutDir = "."
	}
	if c.Category == "" {
		c.Category = DefaultCategory
	}
	if c.Match == "" {
		c.Match = MatchExact
	}
	if c.Format == "" {
		c.Format = FormatHTML
	}
	if c.Naming == "" {
		c.Naming = NamingTitle
	}
	return c
}

// Validate checks the enumerated settings.
func (c ExportConfig) Validate() error {
	switch c.Match {
	case MatchExact, MatchFold, MatchContains:
	default:
		return fmt.Errorf("%w: match must be exact, fold, or contains (got %q)", ErrConfiguration, c.Match)
	}
	switch c.Format {
	case FormatHTML, FormatText:
	default:
		return fmt.Errorf("%w: format must be html or text (got %q)", ErrConfiguration, c.Format)
	}
	switch c.Naming {
	case NamingTitle, NamingModule:
	default:
		return fmt.Errorf("%w: naming must be title or module (got %q)", ErrConfiguration, c.Naming)
	}
	if c.Category == "" {
		return fmt.Errorf("%w: category cannot be empty", ErrConfiguration)
	}
	return nil
}

// SFTPConfig holds settings for publishing an export over SFTP.
type SFTPConfig struct {
	Host      string `json:"host" yaml:"host"`
	Port      int    `json:"port" yaml:"port"`
	User      string `json:"user" yaml:"user"`
	Password  string `json:"-" yaml:"-"`
	RemoteDir string `json:"remote_dir" yaml:"remote_dir"`

	// KnownHosts is the known_hosts file used to verify the server key.
	KnownHosts string `json:"known_hosts" yaml:"known_hosts"`

	// InsecureIgnoreHostKey skips host key verification when KnownHosts is empty.
	InsecureIgnoreHostKey bool `json:"insecure_ignore_host_key" yaml:"insecure_ignore_host_key"`

	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}
