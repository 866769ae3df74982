// Package testutil provides reusable test utilities for coursedates tests.
package testutil

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// TestCourse is a temporary course tree that can be packed into a container.
type TestCourse struct {
	Path  string
	t     *testing.T
	files map[string]string
}

// NewTestCourse creates a new test course builder.
// Call Build() to create the actual course directory.
func NewTestCourse(t *testing.T) *TestCourse {
	t.Helper()
	return &TestCourse{
		t:     t,
		files: make(map[string]string),
	}
}

// WithFile adds a file to the course.
// The path is slash-separated and relative to the course root.
func (c *TestCourse) WithFile(path, content string) *TestCourse {
	c.files[path] = content
	return c
}

// WithManifest adds a minimal imsmanifest.xml.
func (c *TestCourse) WithManifest() *TestCourse {
	return c.WithFile("imsmanifest.xml", `<?xml version="1.0" encoding="UTF-8"?>
<manifest identifier="course"><resources/></manifest>
`)
}

// Build creates the course directory and all configured files.
func (c *TestCourse) Build() *TestCourse {
	c.t.Helper()
	c.Path = c.t.TempDir()
	for path, content := range c.files {
		c.writeFile(path, content)
	}
	return c
}

// BuildArchive writes the configured files into a zip container named name
// in a fresh temp dir and returns its path.
func (c *TestCourse) BuildArchive(name string) string {
	c.t.Helper()
	archivePath := filepath.Join(c.t.TempDir(), name)
	WriteArchive(c.t, archivePath, c.files)
	return archivePath
}

func (c *TestCourse) writeFile(relPath, content string) {
	c.t.Helper()
	fullPath := filepath.Join(c.Path, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		c.t.Fatalf("failed to create directory for %s: %v", relPath, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
		c.t.Fatalf("failed to write file %s: %v", fullPath, err)
	}
}

// ReadFile reads a file from the course directory.
func (c *TestCourse) ReadFile(relPath string) string {
	c.t.Helper()
	content, err := os.ReadFile(filepath.Join(c.Path, filepath.FromSlash(relPath)))
	if err != nil {
		c.t.Fatalf("failed to read file %s: %v", relPath, err)
	}
	return string(content)
}

// WriteArchive writes files into a zip at path. Entries are sorted so the
// container is deterministic.
func WriteArchive(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create archive %s: %v", path, err)
	}
	defer f.Close()

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	zw := zip.NewWriter(f)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to add %s: %v", name, err)
		}
		if _, err := io.WriteString(w, files[name]); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close archive: %v", err)
	}
}

// ReadArchive returns the regular file entries of the zip at path.
func ReadArchive(t *testing.T, path string) map[string]string {
	t.Helper()
	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("failed to open archive %s: %v", path, err)
	}
	defer r.Close()

	out := make(map[string]string)
	for _, f := range r.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open entry %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			t.Fatalf("failed to read entry %s: %v", f.Name, err)
		}
		out[f.Name] = string(data)
	}
	return out
}
