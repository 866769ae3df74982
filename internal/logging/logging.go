// Package logging builds the diagnostics logger. Diagnostics go to stderr so
// stdout stays clean for results and JSON output.
package logging

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls the logger.
type Options struct {
	// Verbose enables debug output for every directive processed.
	Verbose bool
	// Quiet drops warnings and keeps only errors.
	Quiet bool
	// Color forces level colors on or off. Nil means detect a terminal.
	Color *bool
}

// New returns a console logger writing to w.
func New(w io.Writer, opts Options) *zap.Logger {
	level := zapcore.WarnLevel
	switch {
	case opts.Verbose:
		level = zapcore.DebugLevel
	case opts.Quiet:
		level = zapcore.ErrorLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.CallerKey = ""
	encCfg.NameKey = ""
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if useColor(w, opts.Color) {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(zapcore.AddSync(w)),
		zap.NewAtomicLevelAt(level),
	)
	return zap.New(core)
}

// NewStderr returns a logger on os.Stderr.
func NewStderr(opts Options) *zap.Logger {
	return New(os.Stderr, opts)
}

func useColor(w io.Writer, force *bool) bool {
	if force != nil {
		return *force
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}
