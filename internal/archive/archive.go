// Package archive unpacks course containers into a working directory and
// packs them back up.
package archive

import (
	"context"
	"fmt"
	"os"

	"github.com/gosimple/slug"

	"github.com/aidanlsb/coursedates/internal/paths"
)

// Service unpacks and repacks course containers.
type Service interface {
	// Unpack extracts containerPath into a new working directory and
	// returns its path. Failures are *ExtractionError.
	Unpack(ctx context.Context, containerPath string) (string, error)
	// Pack writes the contents of workDir to outputPath. Failures are
	// *PackagingError. No file is left at outputPath on failure.
	Pack(ctx context.Context, workDir, outputPath string) error
}

// Kind names an archiver implementation.
type Kind string

const (
	KindZip  Kind = "zip"
	KindExec Kind = "exec"
)

// Options configures New.
type Options struct {
	Kind Kind
	// BaseDir is where working directories are created. Defaults to the
	// system temp dir.
	BaseDir string
	// Unzip and Zip are the external commands used by KindExec.
	Unzip string
	Zip   string
}

// New returns the archiver named by opts.Kind.
func New(opts Options) (Service, error) {
	switch opts.Kind {
	case "", KindZip:
		return &Zip{BaseDir: opts.BaseDir}, nil
	case KindExec:
		return &Command{BaseDir: opts.BaseDir, Unzip: opts.Unzip, Zip: opts.Zip}, nil
	default:
		return nil, fmt.Errorf("unknown archiver %q (want %q or %q)", opts.Kind, KindZip, KindExec)
	}
}

// makeWorkDir creates a fresh working directory named after the container.
func makeWorkDir(baseDir, containerPath string) (string, error) {
	prefix := slug.Make(paths.Stem(containerPath))
	if prefix == "" {
		prefix = "course"
	}
	return os.MkdirTemp(baseDir, "coursedates-"+prefix+"-*")
}

// checkContainer verifies the container exists and is a regular file.
func checkContainer(containerPath string) error {
	st, err := os.Stat(containerPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &ExtractionError{Path: containerPath, Err: ErrContainerNotFound}
		}
		return &ExtractionError{Path: containerPath, Err: err}
	}
	if !st.Mode().IsRegular() {
		return &ExtractionError{Path: containerPath, Err: fmt.Errorf("not a regular file")}
	}
	return nil
}
