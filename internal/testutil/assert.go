package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// AssertFileContains fails the test if the file does not contain the substring.
func (c *TestCourse) AssertFileContains(relPath, substr string) {
	c.t.Helper()
	content := c.ReadFile(relPath)
	if !strings.Contains(content, substr) {
		c.t.Errorf("expected file %s to contain %q, got:\n%s", relPath, substr, content)
	}
}

// AssertFileNotContains fails the test if the file contains the substring.
func (c *TestCourse) AssertFileNotContains(relPath, substr string) {
	c.t.Helper()
	content := c.ReadFile(relPath)
	if strings.Contains(content, substr) {
		c.t.Errorf("expected file %s to not contain %q, got:\n%s", relPath, substr, content)
	}
}

// AssertFileUnchanged fails the test if the file differs from what Build wrote.
func (c *TestCourse) AssertFileUnchanged(relPath string) {
	c.t.Helper()
	want, ok := c.files[relPath]
	if !ok {
		c.t.Fatalf("file %s was not part of the test course", relPath)
	}
	if got := c.ReadFile(relPath); got != want {
		c.t.Errorf("expected file %s to be unchanged, got:\n%s", relPath, got)
	}
}

// Backdate sets the file's modification time to the given instant so tests
// can detect whether it was rewritten.
func (c *TestCourse) Backdate(relPath string, at time.Time) {
	c.t.Helper()
	fullPath := filepath.Join(c.Path, filepath.FromSlash(relPath))
	if err := os.Chtimes(fullPath, at, at); err != nil {
		c.t.Fatalf("failed to backdate %s: %v", relPath, err)
	}
}

// ModTime returns the file's modification time.
func (c *TestCourse) ModTime(relPath string) time.Time {
	c.t.Helper()
	st, err := os.Stat(filepath.Join(c.Path, filepath.FromSlash(relPath)))
	if err != nil {
		c.t.Fatalf("failed to stat %s: %v", relPath, err)
	}
	return st.ModTime()
}

// AssertArchiveContains fails the test if entry in the zip at path does not
// contain substr.
func AssertArchiveContains(t *testing.T, path, entry, substr string) {
	t.Helper()
	files := ReadArchive(t, path)
	content, ok := files[entry]
	if !ok {
		t.Errorf("archive %s has no entry %s", path, entry)
		return
	}
	if !strings.Contains(content, substr) {
		t.Errorf("expected entry %s to contain %q, got:\n%s", entry, substr, content)
	}
}
