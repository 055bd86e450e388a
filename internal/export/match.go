// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"strings"

	"github.com/pdiddy/canvas-export/pkg/types"
)

// Matches reports whether p belongs to the configured category.
func Matches(p types.PageSummary, cfg types.ExportConfig) bool {
	switch cfg.Match {
	case types.MatchFold:
		return strings.EqualFold(p.Category, cfg.Category)
	case types.MatchContains:
		return strings.Contains(strings.ToLower(p.Title), strings.ToLower(cfg.Category))
	default:
		return p.Category == cfg.Category
	}
}

// Filter returns the pages that match, in their original order.
func Filter(pages []types.PageSummary, cfg types.ExportConfig) []types.PageSummary {
	var out []types.PageSummary
	for _, p := range pages {
		if Matches(p, cfg) {
			out = append(out, p)
		}
	}
	return out
}
