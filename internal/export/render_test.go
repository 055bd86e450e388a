// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/canvas-export/pkg/types"
)

func TestRendererFor(t *testing.T) {
	assert.IsType(t, HTMLRenderer{}, RendererFor(types.FormatHTML))
	assert.IsType(t, TextRenderer{}, RendererFor(types.FormatText))
	assert.IsType(t, HTMLRenderer{}, RendererFor(""))
}

func TestHTMLRendererVerbatim(t *testing.T) {
	body := "<p>Hi&nbsp;there</p>\n<script>x()</script>"
	got, err := HTMLRenderer{}.Render(body)
	require.NoError(t, err)
	assert.Equal(t, body, string(got))
}

func TestTextRenderer(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "paragraphs",
			body: "<p>First</p><p>Second</p>",
			want: "First\n\nSecond\n",
		},
		{
			name: "inline elements stay on the line",
			body: "<p>Use <code>go test</code> and <b>read</b> the <a href='x'>docs</a>.</p>",
			want: "Use go test and read the docs.\n",
		},
		{
			name: "line breaks",
			body: "line one<br>line two<br/>line three",
			want: "line one\nline two\nline three\n",
		},
		{
			name: "scripts and styles dropped",
			body: "<style>p{color:red}</style><p>shown</p><script>alert(1)</script><noscript>no</noscript>",
			want: "shown\n",
		},
		{
			name: "entities decoded",
			body: "<p>a &lt; b &amp;&amp; c&nbsp;&gt; d</p>",
			want: "a < b && c > d\n",
		},
		{
			name: "list items",
			body: "<ul><li>one</li><li>two</li></ul>",
			want: "one\n\ntwo\n",
		},
		{
			name: "table cells tab separated",
			body: "<table><tr><td>a</td><td>b</td></tr></table>",
			want: "a\tb\n",
		},
		{
			name: "blank lines collapse",
			body: "<div>top</div>\n\n\n\n<div>bottom</div>",
			want: "top\n\nbottom\n",
		},
		{
			name: "empty body",
			body: "",
			want: "",
		},
		{
			name: "whitespace only",
			body: "<p> \n </p>",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TextRenderer{}.Render(tt.body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}
