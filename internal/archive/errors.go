package archive

import (
	"errors"
	"fmt"
)

// ErrContainerNotFound is wrapped by ExtractionError when the input is missing.
var ErrContainerNotFound = errors.New("container not found")

// ExtractionError reports a failed unpack.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// PackagingError reports a failed pack.
type PackagingError struct {
	Path string
	Err  error
}

func (e *PackagingError) Error() string {
	return fmt.Sprintf("package %s: %v", e.Path, e.Err)
}

func (e *PackagingError) Unwrap() error {
	return e.Err
}
