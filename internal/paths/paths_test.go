package paths

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input  string
		suffix string
		want   string
	}{
		{"course.imscc", "", "course_updated.imscc"},
		{filepath.Join("exports", "Bio 101.zip"), "", filepath.Join("exports", "Bio 101_updated.zip")},
		{"archive", "", "archive_updated"},
		{"course.imscc", "-fall", "course-fall.imscc"},
		{"course.v2.imscc", "", "course.v2_updated.imscc"},
	}
	for _, tt := range tests {
		if got := OutputPath(tt.input, tt.suffix); got != tt.want {
			t.Errorf("OutputPath(%q, %q) = %q, want %q", tt.input, tt.suffix, got, tt.want)
		}
	}
}

func TestHasExtension(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"wiki_content/week-1.html", true},
		{"week.htm", true},
		{"imsmanifest.xml", true},
		{"notes.txt", true},
		{"PAGE.HTML", false},
		{"image.png", false},
		{"README", false},
		{"archive.html.bak", false},
	}
	for _, tt := range tests {
		if got := HasExtension(tt.path, DefaultExtensions); got != tt.want {
			t.Errorf("HasExtension(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestValidateWithin(t *testing.T) {
	root := t.TempDir()

	if err := ValidateWithin(root, filepath.Join(root, "a", "b.html")); err != nil {
		t.Errorf("expected nested path to be valid: %v", err)
	}
	if err := ValidateWithin(root, root); err != nil {
		t.Errorf("expected root itself to be valid: %v", err)
	}

	for _, bad := range []string{
		filepath.Join(root, ".."),
		filepath.Join(root, "..", "escape.html"),
		filepath.Join(root, "a", "..", "..", "escape.html"),
	} {
		err := ValidateWithin(root, bad)
		if !errors.Is(err, ErrPathOutsideRoot) {
			t.Errorf("ValidateWithin(%q) = %v, want ErrPathOutsideRoot", bad, err)
		}
	}
}

func TestStem(t *testing.T) {
	if got := Stem(filepath.Join("x", "course.imscc")); got != "course" {
		t.Errorf("Stem = %q", got)
	}
}
