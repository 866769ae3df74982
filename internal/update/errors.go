package update

import "fmt"

// ConfigError reports invalid run options. It is returned before any I/O.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// FileAccessWarning reports a content file that could not be read or
// written. The run continues without it.
type FileAccessWarning struct {
	Path string
	Op   string
	Err  error
}

func (e *FileAccessWarning) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileAccessWarning) Unwrap() error {
	return e.Err
}
