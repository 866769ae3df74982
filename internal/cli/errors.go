package cli

import (
	"context"
	"errors"

	"github.com/aidanlsb/coursedates/internal/archive"
	"github.com/aidanlsb/coursedates/internal/update"
)

// Error codes for structured error responses.
// These codes are stable and can be relied upon by scripts.
const (
	// Input errors
	ErrConfigInvalid   = "CONFIG_INVALID"
	ErrInvalidInput    = "INVALID_INPUT"
	ErrMissingArgument = "MISSING_ARGUMENT"

	// Archive errors
	ErrFileNotFound     = "FILE_NOT_FOUND"
	ErrExtractionFailed = "EXTRACTION_FAILED"
	ErrPackagingFailed  = "PACKAGING_FAILED"

	// File errors
	ErrFileWriteError = "FILE_WRITE_ERROR"

	// General errors
	ErrInterrupted = "INTERRUPTED"
	ErrInternal    = "INTERNAL_ERROR"
)

// Warning codes for non-fatal issues.
const (
	WarnMalformedDirective = "MALFORMED_DIRECTIVE"
	WarnFileAccess         = "FILE_ACCESS"
)

// classifyRunError maps a failed run to an error code and a suggestion.
func classifyRunError(err error) (string, string) {
	var cfgErr *update.ConfigError
	var extErr *archive.ExtractionError
	var pkgErr *archive.PackagingError

	switch {
	case errors.As(err, &cfgErr):
		return ErrConfigInvalid, "Run 'coursedates --help' for the accepted flags"
	case errors.Is(err, archive.ErrContainerNotFound):
		return ErrFileNotFound, "Check the archive path"
	case errors.As(err, &extErr):
		return ErrExtractionFailed, "Make sure the input is a zip or IMSCC export"
	case errors.As(err, &pkgErr):
		return ErrPackagingFailed, "Check that the output directory is writable"
	case errors.Is(err, context.Canceled):
		return ErrInterrupted, ""
	default:
		return ErrInternal, ""
	}
}
