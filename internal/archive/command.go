package archive

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/aidanlsb/coursedates/internal/shellquote"
)

// Command shells out to the unzip and zip tools.
type Command struct {
	BaseDir string
	// Unzip and Zip are command lines, so extra flags may be given
	// ("unzip -qq"). They default to "unzip" and "zip".
	Unzip string
	Zip   string
}

// commandLine splits line (or fallback when line is empty) and appends args.
func commandLine(line, fallback string, args ...string) ([]string, error) {
	if strings.TrimSpace(line) == "" {
		line = fallback
	}
	argv, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	return append(argv, args...), nil
}

// Unpack runs `unzip -o <container> -d <workdir>`.
func (c *Command) Unpack(ctx context.Context, containerPath string) (string, error) {
	if err := checkContainer(containerPath); err != nil {
		return "", err
	}

	workDir, err := makeWorkDir(c.BaseDir, containerPath)
	if err != nil {
		return "", &ExtractionError{Path: containerPath, Err: fmt.Errorf("create work dir: %w", err)}
	}

	argv, err := commandLine(c.Unzip, "unzip", "-o", containerPath, "-d", workDir)
	if err != nil {
		_ = os.RemoveAll(workDir)
		return "", &ExtractionError{Path: containerPath, Err: fmt.Errorf("unzip command: %w", err)}
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if err := run(cmd); err != nil {
		_ = os.RemoveAll(workDir)
		return "", &ExtractionError{Path: containerPath, Err: err}
	}
	return workDir, nil
}

// Pack runs `zip -r <output> .` from inside workDir. zip appends to an
// existing archive, so it writes into a fresh staging dir that is renamed over
// outputPath only on success.
func (c *Command) Pack(ctx context.Context, workDir, outputPath string) error {
	absOut, err := filepath.Abs(outputPath)
	if err != nil {
		return &PackagingError{Path: outputPath, Err: err}
	}

	staging, err := os.MkdirTemp(filepath.Dir(absOut), "."+filepath.Base(absOut)+".tmp-*")
	if err != nil {
		return &PackagingError{Path: outputPath, Err: fmt.Errorf("create staging dir: %w", err)}
	}
	defer os.RemoveAll(staging)

	staged := filepath.Join(staging, filepath.Base(absOut))
	argv, err := commandLine(c.Zip, "zip", "-q", "-r", staged, ".")
	if err != nil {
		return &PackagingError{Path: outputPath, Err: fmt.Errorf("zip command: %w", err)}
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = workDir
	if err := run(cmd); err != nil {
		return &PackagingError{Path: outputPath, Err: err}
	}

	if err := os.Rename(staged, absOut); err != nil {
		_ = os.Remove(absOut)
		if err2 := os.Rename(staged, absOut); err2 != nil {
			return &PackagingError{Path: outputPath, Err: fmt.Errorf("move archive into place: %w", err)}
		}
	}
	return nil
}

// run executes cmd and folds the command line and its stderr into the
// returned error.
func run(cmd *exec.Cmd) error {
	var stderr bytes.Buffer
	cmd.Stdout = nil
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		line := shellquote.Join(cmd.Args)
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return fmt.Errorf("%s: %w", line, err)
		}
		return fmt.Errorf("%s: %w: %s", line, err, msg)
	}
	return nil
}
