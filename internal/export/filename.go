// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/pdiddy/canvas-export/pkg/types"
)

const fileExt = ".txt"

// FileName returns the output file name for p.
//
// NamingTitle produces "<name>.txt" with characters that are unsafe in file
// names replaced by "_". NamingModule produces
// "<course>_module_<NN>_<title>.txt" with spaces and path separators
// replaced by "_", all lowercase.
func FileName(courseID int64, p types.PageSummary, style types.NamingStyle) string {
	if style == types.NamingModule {
		base := fmt.Sprintf("%d_module_%02d_%s", courseID, p.Module, p.Title)
		base = strings.NewReplacer(" ", "_", "/", "_", `\`, "_").Replace(base)
		return strings.ToLower(base) + fileExt
	}

	name := sanitize(p.Name)
	if name == "" {
		name = sanitize(p.Title)
	}
	if name == "" {
		name = sanitize(p.Slug)
	}
	if name == "" {
		name = "page"
	}
	return name + fileExt
}

// sanitize replaces characters that are invalid or awkward in file names on
// common filesystems and trims leading/trailing spaces and dots.
func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r), unicode.IsControl(r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), " .")
}

// nameSet hands out file names within one run. Two different pages that
// map to the same name get numbered suffixes in listing order; the same
// page (same URL) listed twice keeps its name.
type nameSet struct {
	owners map[string]string
}

func newNameSet() *nameSet {
	return &nameSet{owners: make(map[string]string)}
}

func (n *nameSet) claim(name, url string) string {
	candidate := name
	base := strings.TrimSuffix(name, fileExt)
	ext := name[len(base):]
	for i := 2; ; i++ {
		owner, taken := n.owners[candidate]
		if !taken || owner == url {
			n.owners[candidate] = url
			return candidate
		}
		candidate = fmt.Sprintf("%s_%d%s", base, i, ext)
	}
}
