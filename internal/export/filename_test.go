// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/canvas-export/pkg/types"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		name  string
		page  types.PageSummary
		style types.NamingStyle
		want  string
	}{
		{
			name: "title style uses name",
			page: types.PageSummary{Title: "Exploration: Intro", Name: "Intro"},
			want: "Intro.txt",
		},
		{
			name: "unsafe characters replaced",
			page: types.PageSummary{Name: `What is I/O? "Streams" <and> pipes|`},
			want: "What is I_O_ _Streams_ _and_ pipes_.txt",
		},
		{
			name: "leading and trailing dots trimmed",
			page: types.PageSummary{Name: " ..hidden. "},
			want: "hidden.txt",
		},
		{
			name: "falls back to title",
			page: types.PageSummary{Title: "Overview", Name: "  "},
			want: "Overview.txt",
		},
		{
			name: "falls back to slug",
			page: types.PageSummary{Slug: "week-1-overview"},
			want: "week-1-overview.txt",
		},
		{
			name: "nothing usable",
			page: types.PageSummary{Name: "..."},
			want: "page.txt",
		},
		{
			name:  "module style",
			page:  types.PageSummary{Title: "Exploration: Sorting Algorithms", Module: 3},
			style: types.NamingModule,
			want:  "1811085_module_03_exploration:_sorting_algorithms.txt",
		},
		{
			name:  "module style replaces path separators",
			page:  types.PageSummary{Title: `Input/Output\Files`, Module: 12},
			style: types.NamingModule,
			want:  "1811085_module_12_input_output_files.txt",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			style := tt.style
			if style == "" {
				style = types.NamingTitle
			}
			assert.Equal(t, tt.want, FileName(courseID, tt.page, style))
		})
	}
}

func TestNameSetClaim(t *testing.T) {
	n := newNameSet()

	assert.Equal(t, "Intro.txt", n.claim("Intro.txt", "u/1"))
	assert.Equal(t, "Intro.txt", n.claim("Intro.txt", "u/1"), "same page keeps its name")
	assert.Equal(t, "Intro_2.txt", n.claim("Intro.txt", "u/2"))
	assert.Equal(t, "Intro_3.txt", n.claim("Intro.txt", "u/3"))
	assert.Equal(t, "Intro_2.txt", n.claim("Intro.txt", "u/2"))
	assert.Equal(t, "Other.txt", n.claim("Other.txt", "u/4"))
}
