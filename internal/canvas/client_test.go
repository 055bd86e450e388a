// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package canvas

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/canvas-export/pkg/types"
)

const (
	testToken  = "tok_123"
	testCourse = int64(1811085)
	mockBase   = "https://canvas.test"
)

// --- ParseTitle ---

func TestParseTitle(t *testing.T) {
	tests := []struct {
		title        string
		wantCategory string
		wantName     string
	}{
		{"Exploration: Intro", "Exploration", "Intro"},
		{"Exploration:Intro", "Exploration", "Intro"},
		{"  Exploration :  Binary Search  ", "Exploration", "Binary Search"},
		{"Exploration - Sorting", "Exploration", "Sorting"},
		{"Exploration – Graphs", "Exploration", "Graphs"},
		{"Assessment: Quiz 1", "Assessment", "Quiz 1"},
		{"Exploration: Time: Complexity", "Exploration", "Time: Complexity"},
		{"Intro", "", "Intro"},
		{"Week-1 Overview", "", "Week-1 Overview"},
		{": nothing before", "", ": nothing before"},
		{"Trailing:", "", "Trailing:"},
		{"", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			cat, name := ParseTitle(tt.title)
			assert.Equal(t, tt.wantCategory, cat)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

// --- listing against an httptest server ---

// newCourseServer serves a course with two modules split across two
// paginated responses.
func newCourseServer(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"errors":[{"message":"Invalid access token."}]}`)
			return
		}
		if r.URL.Query().Get("per_page") != "100" {
			t.Errorf("%s: per_page = %q, want 100", r.URL.Path, r.URL.Query().Get("per_page"))
		}
		w.Header().Set("Content-Type", "application/json")
		base := srv.URL + "/api/v1/courses/1811085"
		switch r.URL.Path {
		case "/api/v1/courses/1811085/modules":
			if r.URL.Query().Get("page") == "2" {
				fmt.Fprintf(w, `[{"id":2,"name":"Week 2","position":2,"items_url":"%s/modules/2/items"}]`, base)
				return
			}
			w.Header().Set("Link", fmt.Sprintf(`<%s/modules?page=1&per_page=100>; rel="current", <%s/modules?page=2&per_page=100>; rel="next"`, base, base))
			fmt.Fprintf(w, `[{"id":1,"name":"Week 1","position":1,"items_url":"%s/modules/1/items"}]`, base)
		case "/api/v1/courses/1811085/modules/1/items":
			fmt.Fprintf(w, `[
				{"id":10,"module_id":1,"title":"Exploration: Intro","type":"Page","page_url":"intro","url":"%s/pages/intro"},
				{"id":11,"module_id":1,"title":"Exploration: Homework","type":"Assignment","url":"%s/assignments/5"},
				{"id":12,"module_id":1,"title":"Readings","type":"SubHeader"}
			]`, base, base)
		case "/api/v1/courses/1811085/modules/2/items":
			fmt.Fprint(w, `[
				{"id":20,"module_id":2,"title":"Assessment: Quiz1","type":"Page","page_url":"quiz1"},
				{"id":21,"module_id":2,"title":"Exploration - Sorting","type":"Page","page_url":"sorting"}
			]`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestListPagesWalksPaginatedModules(t *testing.T) {
	srv := newCourseServer(t)
	c := New(types.CanvasConfig{BaseURL: srv.URL}, testToken)

	pages, err := c.ListPages(context.Background(), testCourse)
	require.NoError(t, err)
	require.Len(t, pages, 3)

	assert.Equal(t, types.PageSummary{
		Title:      "Exploration: Intro",
		Name:       "Intro",
		Slug:       "intro",
		Category:   "Exploration",
		Module:     0,
		ModuleName: "Week 1",
		URL:        srv.URL + "/api/v1/courses/1811085/pages/intro",
	}, pages[0])

	assert.Equal(t, "Assessment", pages[1].Category)
	assert.Equal(t, "Quiz1", pages[1].Name)
	assert.Equal(t, 1, pages[1].Module)

	// Items without an API url get one built from page_url.
	assert.Equal(t, srv.URL+"/api/v1/courses/1811085/pages/sorting", pages[2].URL)
	assert.Equal(t, "Week 2", pages[2].ModuleName)
}

func TestListModulesSetsCourseID(t *testing.T) {
	srv := newCourseServer(t)
	c := New(types.CanvasConfig{BaseURL: srv.URL + "/"}, testToken)

	modules, err := c.ListModules(context.Background(), testCourse)
	require.NoError(t, err)
	require.Len(t, modules, 2)
	for _, m := range modules {
		assert.Equal(t, testCourse, m.CourseID)
	}
}

func TestListPagesBadToken(t *testing.T) {
	srv := newCourseServer(t)
	c := New(types.CanvasConfig{BaseURL: srv.URL}, "wrong")

	_, err := c.ListPages(context.Background(), testCourse)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrAuthentication)
	assert.Contains(t, err.Error(), "Invalid access token.")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestPaginationLoopDetected(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Link", fmt.Sprintf(`<%s%s?%s>; rel="next"`, srv.URL, r.URL.Path, r.URL.RawQuery))
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	c := New(types.CanvasConfig{BaseURL: srv.URL}, testToken)
	_, err := c.ListModules(context.Background(), testCourse)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pagination loop")
}

// --- error mapping and caching with httpmock ---

func newMockClient(t *testing.T, opts ...Option) (*Client, *httpmock.MockTransport) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	opts = append([]Option{WithHTTPClient(&http.Client{Transport: transport})}, opts...)
	return New(types.CanvasConfig{BaseURL: mockBase}, testToken, opts...), transport
}

func TestListModulesErrorKinds(t *testing.T) {
	tests := []struct {
		status   int
		want     error
		wantKind string
	}{
		{http.StatusUnauthorized, types.ErrAuthentication, "authentication"},
		{http.StatusForbidden, types.ErrAuthentication, "authentication"},
		{http.StatusNotFound, types.ErrNotFound, "not_found"},
		{http.StatusInternalServerError, types.ErrTransient, "transient"},
		{http.StatusServiceUnavailable, types.ErrTransient, "transient"},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c, transport := newMockClient(t)
			transport.RegisterResponder(http.MethodGet, mockBase+"/api/v1/courses/1811085/modules",
				httpmock.NewStringResponder(tt.status, `{"errors":[{"message":"nope"}]}`))

			_, err := c.ListModules(context.Background(), testCourse)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.wantKind, types.ErrorKind(err))
		})
	}
}

func TestUnclassifiedStatus(t *testing.T) {
	c, transport := newMockClient(t)
	transport.RegisterResponder(http.MethodGet, mockBase+"/api/v1/courses/1811085/modules",
		httpmock.NewStringResponder(http.StatusBadRequest, `{"message":"bad per_page"}`))

	_, err := c.ListModules(context.Background(), testCourse)
	require.Error(t, err)
	assert.Equal(t, "other", types.ErrorKind(err))
	assert.Contains(t, err.Error(), "bad per_page")
}

func TestNetworkFailureIsTransient(t *testing.T) {
	c, transport := newMockClient(t)
	transport.RegisterResponder(http.MethodGet, mockBase+"/api/v1/courses/1811085/modules",
		httpmock.NewErrorResponder(errors.New("connection reset by peer")))

	_, err := c.ListModules(context.Background(), testCourse)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrTransient)
}

func TestMalformedJSON(t *testing.T) {
	c, transport := newMockClient(t)
	transport.RegisterResponder(http.MethodGet, mockBase+"/api/v1/courses/1811085/modules",
		httpmock.NewStringResponder(http.StatusOK, `<html>login</html>`))

	_, err := c.ListModules(context.Background(), testCourse)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing response")
}

func TestRequestHeaders(t *testing.T) {
	c, transport := newMockClient(t)
	pageURL := mockBase + "/api/v1/courses/1811085/pages/intro"
	transport.RegisterResponder(http.MethodGet, pageURL, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "Bearer "+testToken, req.Header.Get("Authorization"))
		assert.Equal(t, "application/json", req.Header.Get("Accept"))
		assert.Equal(t, "br, gzip", req.Header.Get("Accept-Encoding"))
		assert.Equal(t, defaultUserAgent, req.Header.Get("User-Agent"))
		return httpmock.NewStringResponse(http.StatusOK, `{"title":"Exploration: Intro","body":"<p>hi</p>"}`), nil
	})

	content, err := c.FetchPage(context.Background(), types.PageSummary{Title: "Exploration: Intro", URL: pageURL})
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", content.Body)
	assert.Equal(t, "Exploration: Intro", content.Title)
}

func TestFetchPageCachesByURL(t *testing.T) {
	c, transport := newMockClient(t)
	pageURL := mockBase + "/api/v1/courses/1811085/pages/intro"
	transport.RegisterResponder(http.MethodGet, pageURL,
		httpmock.NewStringResponder(http.StatusOK, `{"title":"Intro","body":"<p>x</p>","updated_at":"2021-04-07T10:00:00Z"}`))

	s := types.PageSummary{Title: "Intro", URL: pageURL}
	first, err := c.FetchPage(context.Background(), s)
	require.NoError(t, err)
	second, err := c.FetchPage(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, time.Date(2021, 4, 7, 10, 0, 0, 0, time.UTC), first.UpdatedAt)
	assert.Equal(t, 1, transport.GetCallCountInfo()["GET "+pageURL])
}

func TestFetchPageErrorsAreNotCached(t *testing.T) {
	c, transport := newMockClient(t)
	pageURL := mockBase + "/api/v1/courses/1811085/pages/gone"
	transport.RegisterResponder(http.MethodGet, pageURL, httpmock.NewStringResponder(http.StatusNotFound, ``))

	s := types.PageSummary{Title: "Gone", URL: pageURL}
	_, err := c.FetchPage(context.Background(), s)
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = c.FetchPage(context.Background(), s)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Equal(t, 2, transport.GetCallCountInfo()["GET "+pageURL])
}

func TestFetchPageWithoutURL(t *testing.T) {
	c, _ := newMockClient(t)
	_, err := c.FetchPage(context.Background(), types.PageSummary{Title: "Orphan"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no API URL")
}

type recordingObserver struct {
	mu    sync.Mutex
	calls []string
}

func (o *recordingObserver) ObserveRequest(endpoint string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, fmt.Sprintf("%s:%d", endpoint, status))
}

func TestObserverSeesEveryRequest(t *testing.T) {
	obs := &recordingObserver{}
	c, transport := newMockClient(t, WithObserver(obs))
	transport.RegisterResponder(http.MethodGet, mockBase+"/api/v1/courses/1811085/modules",
		httpmock.NewStringResponder(http.StatusOK, `[{"id":1,"name":"M","items_url":"`+mockBase+`/api/v1/courses/1811085/modules/1/items"}]`))
	transport.RegisterResponder(http.MethodGet, mockBase+"/api/v1/courses/1811085/modules/1/items",
		httpmock.NewErrorResponder(errors.New("boom")))

	_, err := c.ListPages(context.Background(), testCourse)
	require.Error(t, err)
	assert.Equal(t, []string{"modules:200", "items:0"}, obs.calls)
}
