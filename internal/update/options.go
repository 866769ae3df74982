package update

import (
	"math"
	"path/filepath"
	"runtime"

	"github.com/aidanlsb/coursedates/internal/dates"
	"github.com/aidanlsb/coursedates/internal/paths"
)

// Options configures a single run.
type Options struct {
	StartDate  dates.Date
	StartIndex int

	InputPath string
	// OutputPath defaults to DefaultOutputPath(InputPath, OutputSuffix).
	OutputPath   string
	OutputSuffix string

	// Extensions defaults to paths.DefaultExtensions.
	Extensions []string
	// Workers bounds the number of files processed at once. Zero means
	// runtime.NumCPU().
	Workers int

	// DryRun rewrites nothing on disk and skips packing.
	DryRun      bool
	KeepWorkDir bool
}

// DefaultOutputPath returns <dir>/<stem><suffix><ext> for input. An empty
// suffix means paths.DefaultOutputSuffix.
func DefaultOutputPath(input, suffix string) string {
	return paths.OutputPath(input, suffix)
}

// Validate checks the options without touching the filesystem.
func (o Options) Validate() error {
	if o.StartDate == (dates.Date{}) {
		return &ConfigError{Field: "start date", Message: "is required"}
	}
	if !o.StartDate.Valid() {
		return &ConfigError{Field: "start date", Message: o.StartDate.String() + " is not a calendar date"}
	}
	if o.StartIndex < math.MinInt32 || o.StartIndex > math.MaxInt32 {
		return &ConfigError{Field: "start index", Message: "must fit in a 32-bit integer"}
	}
	if o.InputPath == "" {
		return &ConfigError{Field: "input", Message: "archive path is required"}
	}
	if o.Workers < 0 {
		return &ConfigError{Field: "workers", Message: "must not be negative"}
	}
	for _, ext := range o.Extensions {
		if len(ext) < 2 || ext[0] != '.' {
			return &ConfigError{Field: "extensions", Message: "extension " + ext + " must start with a dot"}
		}
	}
	if samePath(o.InputPath, o.outputPath()) {
		return &ConfigError{Field: "output", Message: "output path must differ from the input archive"}
	}
	return nil
}

func (o Options) outputPath() string {
	if o.OutputPath != "" {
		return o.OutputPath
	}
	return DefaultOutputPath(o.InputPath, o.OutputSuffix)
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
