// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package canvas is a minimal client for the Canvas LMS REST API. It walks
// a course's modules to find wiki pages and fetches page bodies, using
// bearer-token authentication on every request.
package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/pdiddy/canvas-export/internal/httputil"
	"github.com/pdiddy/canvas-export/internal/logger"
	"github.com/pdiddy/canvas-export/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultPerPage   = 100
	defaultCacheSize = 128
	defaultUserAgent = "canvas-export/0.1"
)

// Observer receives one call per completed HTTP exchange. endpoint is a
// low-cardinality label ("modules", "items", "page"); status is 0 when no
// response was received.
type Observer interface {
	ObserveRequest(endpoint string, status int, d time.Duration)
}

// Client issues authenticated requests against one Canvas instance.
type Client struct {
	http     *http.Client
	cfg      types.CanvasConfig
	token    string
	cache    *lru.Cache[string, types.PageContent]
	observer Observer
	log      *logger.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. Its Timeout is left as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithObserver reports every request to o.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New returns a Client for cfg.BaseURL that authenticates with token.
// Zero-valued settings in cfg fall back to defaults (30s timeout, 100 items
// per page).
func New(cfg types.CanvasConfig, token string, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = defaultPerPage
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaultCacheSize
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[string, types.PageContent](cfg.CacheSize)

	c := &Client{
		http:  &http.Client{Timeout: cfg.Timeout},
		cfg:   cfg,
		token: token,
		cache: cache,
		log:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Module is a Canvas course module.
type Module struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Position   int    `json:"position"`
	ItemsURL   string `json:"items_url"`
	ItemsCount int    `json:"items_count"`

	// CourseID is filled in by ListModules; Canvas does not return it.
	CourseID int64 `json:"-"`
}

// ModuleItem is one entry of a module. Only items of type "Page" point at
// wiki pages.
type ModuleItem struct {
	ID       int64  `json:"id"`
	ModuleID int64  `json:"module_id"`
	Position int    `json:"position"`
	Title    string `json:"title"`
	Type     string `json:"type"`
	PageURL  string `json:"page_url"`
	URL      string `json:"url"`
}

// ItemTypePage is the module item type for wiki pages.
const ItemTypePage = "Page"

type page struct {
	PageID    int64     `json:"page_id"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListModules returns every module of the course, following pagination.
func (c *Client) ListModules(ctx context.Context, courseID int64) ([]Module, error) {
	endpoint := fmt.Sprintf("%s/api/v1/courses/%d/modules", c.cfg.BaseURL, courseID)
	modules, err := getAll[Module](ctx, c, "modules", endpoint)
	if err != nil {
		return nil, fmt.Errorf("listing modules for course %d: %w", courseID, err)
	}
	for i := range modules {
		modules[i].CourseID = courseID
	}
	return modules, nil
}

// ListModuleItems returns every item of m, following pagination.
func (c *Client) ListModuleItems(ctx context.Context, m Module) ([]ModuleItem, error) {
	endpoint := m.ItemsURL
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/api/v1/courses/%d/modules/%d/items", c.cfg.BaseURL, m.CourseID, m.ID)
	}
	items, err := getAll[ModuleItem](ctx, c, "items", endpoint)
	if err != nil {
		return nil, fmt.Errorf("listing items for module %q: %w", m.Name, err)
	}
	return items, nil
}

// ListPages walks the course's modules in order and returns a summary for
// every Page item. Category and Name are derived from the item title.
func (c *Client) ListPages(ctx context.Context, courseID int64) ([]types.PageSummary, error) {
	modules, err := c.ListModules(ctx, courseID)
	if err != nil {
		return nil, err
	}

	var pages []types.PageSummary
	for i, m := range modules {
		items, err := c.ListModuleItems(ctx, m)
		if err != nil {
			return nil, err
		}
		c.log.Debug("module listed", "module", m.Name, "items", len(items))
		for _, item := range items {
			if item.Type != ItemTypePage {
				continue
			}
			category, name := ParseTitle(item.Title)
			pages = append(pages, types.PageSummary{
				Title:      item.Title,
				Name:       name,
				Slug:       item.PageURL,
				Category:   category,
				Module:     i,
				ModuleName: m.Name,
				URL:        c.pageURL(courseID, item),
			})
		}
	}
	return pages, nil
}

func (c *Client) pageURL(courseID int64, item ModuleItem) string {
	if item.URL != "" {
		return item.URL
	}
	if item.PageURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/api/v1/courses/%d/pages/%s", c.cfg.BaseURL, courseID, url.PathEscape(item.PageURL))
}

// FetchPage returns the full content of the page s refers to. Repeated
// fetches of the same URL within the cache's lifetime are served locally.
func (c *Client) FetchPage(ctx context.Context, s types.PageSummary) (types.PageContent, error) {
	if s.URL == "" {
		return types.PageContent{}, fmt.Errorf("page %q has no API URL", s.Title)
	}
	if content, ok := c.cache.Get(s.URL); ok {
		c.log.Debug("page cache hit", "url", s.URL)
		return content, nil
	}

	var p page
	if _, err := c.getJSON(ctx, "page", s.URL, &p); err != nil {
		return types.PageContent{}, fmt.Errorf("fetching page %q: %w", s.Title, err)
	}

	content := types.PageContent{
		Title:     p.Title,
		Body:      p.Body,
		UpdatedAt: p.UpdatedAt,
	}
	c.cache.Add(s.URL, content)
	return content, nil
}

// getAll fetches a paginated list endpoint, following Link rel="next"
// until the last page.
func getAll[T any](ctx context.Context, c *Client, endpoint, startURL string) ([]T, error) {
	next, err := withPerPage(startURL, c.cfg.PerPage)
	if err != nil {
		return nil, err
	}

	var all []T
	seen := make(map[string]bool)
	for next != "" {
		if seen[next] {
			return nil, fmt.Errorf("pagination loop at %s", next)
		}
		seen[next] = true

		var batch []T
		header, err := c.getJSON(ctx, endpoint, next, &batch)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		next = httputil.NextLink(header)
	}
	return all, nil
}

// getJSON issues one authenticated GET and decodes a 2xx JSON body into out.
func (c *Client) getJSON(ctx context.Context, endpoint, rawURL string, out any) (http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", httputil.AcceptEncoding)
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(endpoint, 0, time.Since(start))
		return nil, fmt.Errorf("GET %s: %w", rawURL, httputil.TransportError(err))
	}
	body, err := httputil.ReadBody(resp)
	c.observe(endpoint, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", rawURL, httputil.TransportError(err))
	}

	c.log.Debug("canvas response", "endpoint", endpoint, "url", rawURL, "status", resp.StatusCode, "bytes", len(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(req.Method, rawURL, resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return nil, fmt.Errorf("parsing response from %s: %w (body: %s)", rawURL, err, httputil.Snippet(body, 200))
	}
	return resp.Header, nil
}

func (c *Client) observe(endpoint string, status int, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveRequest(endpoint, status, d)
	}
}

// withPerPage adds per_page to rawURL unless it already carries one.
func withPerPage(rawURL string, perPage int) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	q := u.Query()
	if q.Get("per_page") == "" {
		q.Set("per_page", strconv.Itoa(perPage))
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
