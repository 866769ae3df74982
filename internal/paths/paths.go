// Package paths holds the path helpers shared by the archive and walk
// packages:
// - containment checks for extracted and walked files
// - the default output container name
// - eligible content extensions
package paths

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrPathOutsideRoot is returned when a path resolves outside its root.
var ErrPathOutsideRoot = errors.New("path is outside root directory")

// DefaultExtensions are the file extensions scanned for directives.
var DefaultExtensions = []string{".html", ".htm", ".xml", ".txt"}

// DefaultOutputSuffix is appended to the input stem for the output container.
const DefaultOutputSuffix = "_updated"

// ValidateWithin returns ErrPathOutsideRoot if candidate is not inside root.
// Both paths are made absolute first; the check is lexical.
func ValidateWithin(root, candidate string) error {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	candAbs, err := filepath.Abs(candidate)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(rootAbs, candAbs)
	if err != nil {
		return err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("%w: %s", ErrPathOutsideRoot, candidate)
	}
	return nil
}

// OutputPath returns the sibling path <stem><suffix><ext> for input.
//
// Examples:
// - "course.imscc" -> "course_updated.imscc"
// - "dir/Bio 101.zip" -> "dir/Bio 101_updated.zip"
func OutputPath(input, suffix string) string {
	if suffix == "" {
		suffix = DefaultOutputSuffix
	}
	dir := filepath.Dir(input)
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, stem+suffix+ext)
}

// Stem returns the file name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// HasExtension reports whether path ends in one of exts. The comparison is
// case-sensitive, so "PAGE.HTML" is not matched by ".html".
func HasExtension(path string, exts []string) bool {
	ext := filepath.Ext(path)
	if ext == "" {
		return false
	}
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
