// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package canvas

import "strings"

// titleSeparators split a module item title into category and name, tried in
// order. "Exploration: Binary Search" and "Exploration - Binary Search" both
// yield ("Exploration", "Binary Search").
var titleSeparators = []string{":", " - ", " – "}

// ParseTitle splits a module item title into its category prefix and the
// remaining name. A title with no separator, or with nothing on one side of
// it, has an empty category and is returned whole as the name.
func ParseTitle(title string) (category, name string) {
	title = strings.TrimSpace(title)
	best := -1
	var sep string
	for _, s := range titleSeparators {
		if i := strings.Index(title, s); i >= 0 && (best < 0 || i < best) {
			best, sep = i, s
		}
	}
	if best < 0 {
		return "", title
	}
	category = strings.TrimSpace(title[:best])
	name = strings.TrimSpace(title[best+len(sep):])
	if category == "" || name == "" {
		return "", title
	}
	return category, name
}
