package ingest

import (
	"fmt"
	"os"
)

// TempDir owns the scoped directory download artifacts land in. Artifacts
// are transient; the orchestrator removes each one after its upload, so the
// directory only ever holds in-flight downloads.
type TempDir struct {
	root string
}

// NewTempDir creates a TempDir rooted at the given path
func NewTempDir(root string) *TempDir {
	return &TempDir{root: root}
}

// Ensure creates the directory if it does not exist
func (t *TempDir) Ensure() error {
	if err := os.MkdirAll(t.root, 0755); err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	return nil
}

// Path returns the directory root
func (t *TempDir) Path() string {
	return t.root
}
