package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aidanlsb/coursedates/internal/atomicfile"
	"github.com/aidanlsb/coursedates/internal/paths"
)

// Zip reads and writes zip containers in process.
type Zip struct {
	BaseDir string
}

// Unpack extracts every entry of the zip at containerPath.
func (z *Zip) Unpack(ctx context.Context, containerPath string) (string, error) {
	if err := checkContainer(containerPath); err != nil {
		return "", err
	}

	r, err := zip.OpenReader(containerPath)
	if err != nil {
		if r != nil {
			_ = r.Close()
		}
		return "", &ExtractionError{Path: containerPath, Err: err}
	}
	defer r.Close()

	workDir, err := makeWorkDir(z.BaseDir, containerPath)
	if err != nil {
		return "", &ExtractionError{Path: containerPath, Err: fmt.Errorf("create work dir: %w", err)}
	}

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			_ = os.RemoveAll(workDir)
			return "", &ExtractionError{Path: containerPath, Err: err}
		}
		if err := extractEntry(workDir, f); err != nil {
			_ = os.RemoveAll(workDir)
			return "", &ExtractionError{Path: containerPath, Err: err}
		}
	}
	return workDir, nil
}

func extractEntry(workDir string, f *zip.File) error {
	name := strings.ReplaceAll(f.Name, "\\", "/")
	if name == "" || path.IsAbs(name) {
		return fmt.Errorf("invalid entry name %q", f.Name)
	}
	dest := filepath.Join(workDir, filepath.FromSlash(name))
	if err := paths.ValidateWithin(workDir, dest); err != nil {
		return fmt.Errorf("invalid entry %q: %w", f.Name, err)
	}

	if f.FileInfo().IsDir() || strings.HasSuffix(name, "/") {
		return os.MkdirAll(dest, 0o755)
	}
	if !f.Mode().IsRegular() {
		// Symlinks and devices have no place in a course export.
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create directory for %q: %w", f.Name, err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open entry %q: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %q: %w", f.Name, err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return fmt.Errorf("write %q: %w", f.Name, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %q: %w", f.Name, err)
	}
	if !f.Modified.IsZero() {
		_ = os.Chtimes(dest, f.Modified, f.Modified)
	}
	return nil
}

// Pack writes workDir into a new zip at outputPath. Entry names are
// relative to workDir, so imsmanifest.xml stays at the container root.
func (z *Zip) Pack(ctx context.Context, workDir, outputPath string) error {
	if st, err := os.Stat(workDir); err != nil || !st.IsDir() {
		if err == nil {
			err = fmt.Errorf("not a directory")
		}
		return &PackagingError{Path: outputPath, Err: fmt.Errorf("work dir %s: %w", workDir, err)}
	}

	err := atomicfile.WriteFrom(outputPath, 0o644, func(w io.Writer) error {
		zw := zip.NewWriter(w)
		if err := addTree(ctx, zw, workDir); err != nil {
			_ = zw.Close()
			return err
		}
		return zw.Close()
	})
	if err != nil {
		return &PackagingError{Path: outputPath, Err: err}
	}
	return nil
}

func addTree(ctx context.Context, zw *zip.Writer, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == root {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)

		info, err := d.Info()
		if err != nil {
			return err
		}
		if d.IsDir() {
			hdr, err := zip.FileInfoHeader(info)
			if err != nil {
				return err
			}
			hdr.Name = name + "/"
			_, err = zw.CreateHeader(hdr)
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		hdr, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		hdr.Name = name
		hdr.Method = zip.Deflate
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	})
}
