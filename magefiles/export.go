//go:build mage

package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Export builds the CLI and exports courseID into the working directory.
// The token is read from canvas_token, local.env, or .secrets/ as usual.
func Export(courseID string) error {
	mg.Deps(Build)
	if courseID == "" {
		return fmt.Errorf("course ID is required: mage export <course_id>")
	}
	return sh.RunV(filepath.Join(binDir, binName), "export", courseID)
}

// List builds the CLI and prints the pages an export of courseID would write.
func List(courseID string) error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "list", courseID)
}
