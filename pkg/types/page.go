// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for canvas-export.
package types

import "time"

// PageSummary describes one course page found while walking the course's
// modules. It is held in memory for the duration of a run only.
type PageSummary struct {
	// Title is the module item title exactly as Canvas returns it
	// (e.g. "Exploration: Binary Search").
	Title string `json:"title" yaml:"title"`

	// Name is Title with its category prefix removed (e.g. "Binary Search").
	// Titles without a prefix have Name == Title.
	Name string `json:"name" yaml:"name"`

	// Slug is the Canvas page_url identifying the page within the course.
	Slug string `json:"slug" yaml:"slug"`

	// Category is the title prefix before the first separator, or empty.
	Category string `json:"category" yaml:"category"`

	// Module is the zero-based position of the module the page was found in.
	Module int `json:"module" yaml:"module"`

	// ModuleName is the display name of that module.
	ModuleName string `json:"module_name" yaml:"module_name"`

	// URL is the API URL that returns the full page.
	URL string `json:"url" yaml:"url"`
}

// PageContent is the fetched body of one page.
type PageContent struct {
	// Title is the page title from the page endpoint.
	Title string `json:"title" yaml:"title"`

	// Body is the page HTML as stored in Canvas.
	Body string `json:"body" yaml:"body"`

	// UpdatedAt is the last edit time reported by Canvas.
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}
