// Package walk enumerates the content files of an unpacked course.
package walk

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/aidanlsb/coursedates/internal/atomicfile"
	"github.com/aidanlsb/coursedates/internal/paths"
)

// WalkResult is one eligible file found under the root.
type WalkResult struct {
	Path         string
	RelativePath string
	Content      string
	Error        error
}

// Options controls which files are visited.
type Options struct {
	// Extensions are matched case-sensitively against the file extension.
	// Defaults to paths.DefaultExtensions.
	Extensions []string
}

func (o *Options) extensions() []string {
	if o == nil || len(o.Extensions) == 0 {
		return paths.DefaultExtensions
	}
	return o.Extensions
}

// WalkEligibleFiles walks root recursively and calls handler for every
// regular file with an eligible extension. It:
// - Skips directories, symlinks and other non-regular entries
// - Verifies files are within root
// - Reads each file's full content
//
// Read failures are passed to handler in WalkResult.Error; the walk only
// stops when handler returns an error.
func WalkEligibleFiles(root string, opts *Options, handler func(result WalkResult) error) error {
	exts := opts.extensions()

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		relativePath, _ := filepath.Rel(root, path)
		if err != nil {
			if path == root {
				return err
			}
			if !reportable(path, d, exts) {
				return nil
			}
			return handler(WalkResult{
				Path:         path,
				RelativePath: relativePath,
				Error:        err,
			})
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if !paths.HasExtension(path, exts) {
			return nil
		}

		if err := paths.ValidateWithin(root, path); err != nil {
			if errors.Is(err, paths.ErrPathOutsideRoot) {
				return nil
			}
			return handler(WalkResult{
				Path:         path,
				RelativePath: relativePath,
				Error:        err,
			})
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return handler(WalkResult{
				Path:         path,
				RelativePath: relativePath,
				Error:        err,
			})
		}

		return handler(WalkResult{
			Path:         path,
			RelativePath: relativePath,
			Content:      string(content),
		})
	})
}

// reportable reports whether a failed entry concerns the caller: any
// directory, since its files are missed, or a file with an eligible extension.
func reportable(path string, d fs.DirEntry, exts []string) bool {
	if d != nil && d.IsDir() {
		return true
	}
	return paths.HasExtension(path, exts)
}

// Persist writes content back to path, keeping the file's mode.
func Persist(path, content string) error {
	return atomicfile.WriteFile(path, []byte(content), 0)
}
