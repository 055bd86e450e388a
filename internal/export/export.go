// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes a Canvas course's category pages (by default the
// "Exploration" pages) as text files under a directory named after the
// course ID.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/canvas-export/internal/canvas"
	"github.com/pdiddy/canvas-export/internal/logger"
	"github.com/pdiddy/canvas-export/pkg/types"
)

// errEmptyPage marks a page whose rendered body is empty.
var errEmptyPage = errors.New("empty page body")

// PageSource lists a course's pages and fetches their content.
// *canvas.Client implements it.
type PageSource interface {
	ListPages(ctx context.Context, courseID int64) ([]types.PageSummary, error)
	FetchPage(ctx context.Context, s types.PageSummary) (types.PageContent, error)
}

// Result holds the outcome of an export run.
type Result struct {
	// Dir is the course output directory.
	Dir string
	// Listed is the number of pages found in the course.
	Listed int
	// Matched is the number of pages whose category matched.
	Matched int
	Written int
	// Skipped counts matched pages not written: repeats of a page already
	// written in this run, and pages with an empty body.
	Skipped int
	Failed  int
	// Files lists written paths in write order.
	Files []string
}

// HasFailures reports whether any matched page failed.
func (r Result) HasFailures() bool {
	return r.Failed > 0
}

// Exporter exports one course. Build it with New.
type Exporter struct {
	courseID int64
	cfg      types.ExportConfig
	source   PageSource
	renderer Renderer
	metrics  *Metrics
	log      *logger.Logger
	out      io.Writer

	canvasOpts []canvas.Option
}

// Option customizes an Exporter.
type Option func(*Exporter)

// WithSource replaces the Canvas client built by New.
func WithSource(s PageSource) Option {
	return func(e *Exporter) { e.source = s }
}

// WithOutput sets where progress lines go (default os.Stdout).
func WithOutput(w io.Writer) Option {
	return func(e *Exporter) { e.out = w }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *logger.Logger) Option {
	return func(e *Exporter) { e.log = l }
}

// WithMetrics records run metrics into m.
func WithMetrics(m *Metrics) Option {
	return func(e *Exporter) { e.metrics = m }
}

// WithCanvasOptions passes options through to the Canvas client New builds.
func WithCanvasOptions(opts ...canvas.Option) Option {
	return func(e *Exporter) { e.canvasOpts = append(e.canvasOpts, opts...) }
}

// New validates the inputs and returns an Exporter for courseID. The token
// is required even when a custom source is supplied, so a missing
// credential is always reported before any network call.
func New(courseID int64, token string, canvasCfg types.CanvasConfig, cfg types.ExportConfig, opts ...Option) (*Exporter, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("%w: Canvas API token is not set", types.ErrConfiguration)
	}
	if courseID <= 0 {
		return nil, fmt.Errorf("%w: course ID must be a positive integer", types.ErrConfiguration)
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Exporter{
		courseID: courseID,
		cfg:      cfg,
		out:      os.Stdout,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.log = e.log.With("run_id", uuid.NewString(), "course_id", courseID)
	e.renderer = RendererFor(cfg.Format)

	if e.source == nil {
		if err := canvasCfg.Validate(); err != nil {
			return nil, err
		}
		copts := append([]canvas.Option{canvas.WithLogger(e.log)}, e.canvasOpts...)
		if e.metrics != nil {
			copts = append(copts, canvas.WithObserver(e.metrics))
		}
		e.source = canvas.New(canvasCfg, token, copts...)
	}
	return e, nil
}

// ParseCourseID parses a command-line course identifier.
func ParseCourseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: course ID must be a positive integer, got %q", types.ErrConfiguration, s)
	}
	return id, nil
}

// Dir returns the course output directory.
func (e *Exporter) Dir() string {
	return filepath.Join(e.cfg.OutDir, strconv.FormatInt(e.courseID, 10))
}

// Pages lists the course and returns the pages that match the configured
// category, without touching the filesystem.
func (e *Exporter) Pages(ctx context.Context) (all, matched []types.PageSummary, err error) {
	all, err = e.source.ListPages(ctx, e.courseID)
	if err != nil {
		e.metrics.IncError(types.ErrorKind(err))
		return nil, nil, fmt.Errorf("listing pages for course %d: %w", e.courseID, err)
	}
	matched = Filter(all, e.cfg)
	e.metrics.AddPages("filtered", len(all)-len(matched))
	return all, matched, nil
}

// Run lists the course, creates the output directory, and writes one file
// per distinct matching page. Listing and directory errors abort the run; a
// page that cannot be fetched or written is reported and counted, and the
// run moves on to the next page. A page reached again from a later module,
// or one with an empty body, is skipped.
func (e *Exporter) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	e.log.Info("export started", "out_dir", e.cfg.OutDir, "match", e.cfg.Match, "category", e.cfg.Category)

	all, matched, err := e.Pages(ctx)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Dir:     e.Dir(),
		Listed:  len(all),
		Matched: len(matched),
	}

	if err := prepareDir(result.Dir); err != nil {
		e.metrics.IncError(types.ErrorKind(err))
		return result, err
	}

	for _, p := range matched {
		fmt.Fprintf(e.out, "Found: '%s'\n", p.Title)
	}

	names := newNameSet()
	exported := make(map[string]string)
	for _, p := range matched {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if path, ok := exported[p.URL]; ok && p.URL != "" {
			fmt.Fprintf(e.out, "Skipped: '%s' (same page as '%s')\n", p.Title, path)
			e.metrics.AddPages("skipped", 1)
			result.Skipped++
			continue
		}

		path, err := e.exportPage(ctx, p, names)
		switch {
		case errors.Is(err, errEmptyPage):
			fmt.Fprintf(e.out, "Skipped: '%s' (empty page)\n", p.Title)
			e.log.Warn("empty page not written", "title", p.Title, "url", p.URL)
			e.metrics.AddPages("skipped", 1)
			result.Skipped++
			continue
		case err != nil:
			fmt.Fprintf(e.out, "failed:  %s (%v)\n", p.Title, err)
			e.log.Warn("page failed", "title", p.Title, "url", p.URL, "kind", types.ErrorKind(err), "error", err)
			e.metrics.IncError(types.ErrorKind(err))
			e.metrics.AddPages("failed", 1)
			result.Failed++
			continue
		}
		exported[p.URL] = path
		fmt.Fprintf(e.out, "Wrote: '%s'\n", path)
		e.metrics.AddPages("written", 1)
		result.Written++
		result.Files = append(result.Files, path)
	}

	fmt.Fprintf(e.out, "\nExport summary: %d written, %d skipped, %d failed (matched: %d of %d pages)\n",
		result.Written, result.Skipped, result.Failed, result.Matched, result.Listed)
	e.log.Info("export finished", "written", result.Written, "failed", result.Failed, "elapsed", time.Since(start))
	return result, nil
}

func (e *Exporter) exportPage(ctx context.Context, p types.PageSummary, names *nameSet) (string, error) {
	content, err := e.source.FetchPage(ctx, p)
	if err != nil {
		return "", err
	}
	data, err := e.renderer.Render(content.Body)
	if err != nil {
		return "", fmt.Errorf("rendering %q: %w", p.Title, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return "", errEmptyPage
	}

	name := names.claim(FileName(e.courseID, p, e.cfg.Naming), p.URL)
	path := filepath.Join(e.Dir(), name)
	if err := writeFile(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// prepareDir creates dir if needed. An existing directory is reused; an
// existing non-directory is an error.
func prepareDir(dir string) error {
	info, err := os.Stat(dir)
	switch {
	case err == nil && !info.IsDir():
		return fmt.Errorf("%w: %s exists and is not a directory", types.ErrFilesystem, dir)
	case err == nil:
		return nil
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w: checking %s: %w", types.ErrFilesystem, dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating directory %s: %w", types.ErrFilesystem, dir, err)
	}
	return nil
}

// writeFile replaces path atomically via a temp file in the same directory.
func writeFile(path string, data []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".export-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %w", types.ErrFilesystem, err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: writing %s: %w", types.ErrFilesystem, path, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: closing temp file: %w", types.ErrFilesystem, closeErr)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: setting permissions on %s: %w", types.ErrFilesystem, path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: renaming temp file to %s: %w", types.ErrFilesystem, path, err)
	}
	return nil
}
