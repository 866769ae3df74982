package update

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/aidanlsb/coursedates/internal/archive"
	"github.com/aidanlsb/coursedates/internal/dates"
	"github.com/aidanlsb/coursedates/internal/directive"
	"github.com/aidanlsb/coursedates/internal/rewrite"
	"github.com/aidanlsb/coursedates/internal/testutil"
	"github.com/aidanlsb/coursedates/internal/walk"
)

var start = dates.Date{Year: 2024, Month: time.August, Day: 19}

// dirArchive hands out a prepared directory as the work dir and captures
// what would have been packed.
type dirArchive struct {
	dir       string
	unpackErr error
	packErr   error
	packed    map[string]string
	packedTo  string
}

func (a *dirArchive) Unpack(_ context.Context, containerPath string) (string, error) {
	if a.unpackErr != nil {
		return "", &archive.ExtractionError{Path: containerPath, Err: a.unpackErr}
	}
	return a.dir, nil
}

func (a *dirArchive) Pack(_ context.Context, workDir, outputPath string) error {
	if a.packErr != nil {
		return &archive.PackagingError{Path: outputPath, Err: a.packErr}
	}
	a.packedTo = outputPath
	a.packed = make(map[string]string)
	return filepath.Walk(workDir, func(p string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(workDir, p)
		a.packed[filepath.ToSlash(rel)] = string(data)
		return nil
	})
}

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestRunRewritesAndPacks(t *testing.T) {
	course := testutil.NewTestCourse(t).
		WithManifest().
		WithFile("wiki_content/week1.html", `<p id="DateReplace(M D, 2)">TBD</p>`).
		WithFile("wiki_content/static.html", `<p>nothing to see</p>`).
		WithFile("notes.md", `<p id="DateReplace(D, 2)">TBD</p>`).
		Build()

	svc := &dirArchive{dir: course.Path}
	logger, logs := observedLogger()
	runner := NewRunner(svc, logger)

	report, err := runner.Run(context.Background(), Options{
		StartDate:   start,
		InputPath:   "course.imscc",
		Workers:     2,
		KeepWorkDir: true,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if svc.packedTo != "course_updated.imscc" {
		t.Errorf("packed to %q, want default output path", svc.packedTo)
	}
	if got := svc.packed["wiki_content/week1.html"]; got != `<p id="DateReplace(M D, 2)">Aug 21</p>` {
		t.Errorf("week1.html packed as %q", got)
	}
	if got := svc.packed["notes.md"]; got != `<p id="DateReplace(D, 2)">TBD</p>` {
		t.Errorf("ineligible file was changed: %q", got)
	}

	wantSummary := Summary{FilesScanned: 3, FilesChanged: 1, Replacements: 1}
	if diff := cmp.Diff(wantSummary, report.Summary); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}

	var paths []string
	for _, f := range report.Files {
		paths = append(paths, f.Path)
	}
	want := []string{"imsmanifest.xml", "wiki_content/static.html", "wiki_content/week1.html"}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("file order mismatch (-want +got):\n%s", diff)
	}

	debug := logs.FilterMessage("resolved directive").All()
	if len(debug) != 1 {
		t.Fatalf("expected 1 debug line, got %d", len(debug))
	}
	if got := debug[0].ContextMap()["args"]; got != "M D, 2" {
		t.Errorf("debug args = %v", got)
	}
}

func TestRunMalformedDirectiveLeavesFileUnchanged(t *testing.T) {
	content := `<p id="DateReplace(M D, two)">TBD</p>`
	course := testutil.NewTestCourse(t).
		WithFile("page.html", content).
		Build()

	logger, logs := observedLogger()
	report, err := NewRunner(&dirArchive{dir: course.Path}, logger).Run(context.Background(), Options{
		StartDate:   start,
		InputPath:   "course.zip",
		KeepWorkDir: true,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	course.AssertFileUnchanged("page.html")
	if report.Summary.Issues != 1 || report.Summary.FilesChanged != 0 {
		t.Errorf("unexpected summary: %+v", report.Summary)
	}
	if got := report.Files[0].Issues[0].Kind; got != directive.IssueInvalidDayNumber {
		t.Errorf("issue kind = %s", got)
	}

	warns := logs.FilterMessage("malformed directive").FilterField(zap.String("file", "page.html")).All()
	if len(warns) != 1 {
		t.Fatalf("expected 1 malformed directive warning, got %d", len(warns))
	}
	if warns[0].Level != zapcore.WarnLevel {
		t.Errorf("level = %s, want warn", warns[0].Level)
	}
}

func TestRunNeverRewritesFilesWithoutDirectives(t *testing.T) {
	course := testutil.NewTestCourse(t).
		WithFile("plain.html", "<p>no markers</p>\n").
		WithFile("current.html", `<b class="DateReplace(D,0)">19</b>`).
		Build()
	past := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	course.Backdate("plain.html", past)
	course.Backdate("current.html", past)

	report, err := NewRunner(&dirArchive{dir: course.Path}, nil).Run(context.Background(), Options{
		StartDate:   start,
		InputPath:   "course.zip",
		KeepWorkDir: true,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	for _, name := range []string{"plain.html", "current.html"} {
		if !course.ModTime(name).Equal(past) {
			t.Errorf("%s was rewritten", name)
		}
		course.AssertFileUnchanged(name)
	}
	if report.Summary.FilesChanged != 0 || report.Summary.Replacements != 1 {
		t.Errorf("unexpected summary: %+v", report.Summary)
	}
}

func TestRunDryRunSkipsWritesAndPacking(t *testing.T) {
	course := testutil.NewTestCourse(t).
		WithFile("page.html", `<i id="DateReplace(Y)">?</i>`).
		Build()
	svc := &dirArchive{dir: course.Path}

	report, err := NewRunner(svc, nil).Run(context.Background(), Options{
		StartDate:   start,
		InputPath:   "course.zip",
		DryRun:      true,
		KeepWorkDir: true,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	course.AssertFileUnchanged("page.html")
	if svc.packed != nil {
		t.Error("dry run packed the output")
	}
	if report.Output != "" || !report.Files[0].Changed {
		t.Errorf("unexpected dry run report: %+v", report)
	}
}

func TestRunRemovesWorkDir(t *testing.T) {
	course := testutil.NewTestCourse(t).WithFile("a.html", "x").Build()

	if _, err := NewRunner(&dirArchive{dir: course.Path}, nil).Run(context.Background(), Options{
		StartDate: start,
		InputPath: "course.zip",
	}); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if _, err := os.Stat(course.Path); !os.IsNotExist(err) {
		t.Errorf("work dir still exists: %v", err)
	}
}

func TestRunPropagatesArchiveErrors(t *testing.T) {
	t.Run("extraction", func(t *testing.T) {
		svc := &dirArchive{unpackErr: archive.ErrContainerNotFound}
		report, err := NewRunner(svc, nil).Run(context.Background(), Options{StartDate: start, InputPath: "missing.zip"})
		var extErr *archive.ExtractionError
		if !errors.As(err, &extErr) {
			t.Fatalf("expected *archive.ExtractionError, got %v", err)
		}
		if !errors.Is(err, archive.ErrContainerNotFound) {
			t.Errorf("expected ErrContainerNotFound in chain, got %v", err)
		}
		if report != nil {
			t.Error("expected nil report on extraction failure")
		}
	})

	t.Run("packaging", func(t *testing.T) {
		course := testutil.NewTestCourse(t).WithFile("a.html", "x").Build()
		svc := &dirArchive{dir: course.Path, packErr: errors.New("exit status 15")}
		_, err := NewRunner(svc, nil).Run(context.Background(), Options{StartDate: start, InputPath: "course.zip"})
		var pkgErr *archive.PackagingError
		if !errors.As(err, &pkgErr) {
			t.Fatalf("expected *archive.PackagingError, got %v", err)
		}
	})

	t.Run("invalid options do no io", func(t *testing.T) {
		svc := &dirArchive{unpackErr: errors.New("must not be called")}
		_, err := NewRunner(svc, nil).Run(context.Background(), Options{InputPath: "course.zip"})
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("expected *ConfigError, got %v", err)
		}
	})
}

func TestRunWithZipArchive(t *testing.T) {
	input := testutil.NewTestCourse(t).
		WithManifest().
		WithFile("week1/page.html", `<td class="DateReplace(NN MM D,1)">x</td>`).
		WithFile("week1/broken.html", `<td class="DateReplace(D,1">x</td>`).
		BuildArchive("bio101.imscc")
	output := filepath.Join(t.TempDir(), "bio101-fall.imscc")

	runner := NewRunner(&archive.Zip{BaseDir: t.TempDir()}, zap.NewNop())
	report, err := runner.Run(context.Background(), Options{
		StartDate:  start,
		InputPath:  input,
		OutputPath: output,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	files := testutil.ReadArchive(t, output)
	if got := files["week1/page.html"]; got != `<td class="DateReplace(NN MM D,1)">Tuesday August 20</td>` {
		t.Errorf("page.html = %q", got)
	}
	if got := files["week1/broken.html"]; got != `<td class="DateReplace(D,1">x</td>` {
		t.Errorf("broken.html = %q", got)
	}
	if _, ok := files["imsmanifest.xml"]; !ok {
		t.Error("manifest missing from output")
	}
	if report.Summary.Issues != 1 {
		t.Errorf("issues = %d, want 1", report.Summary.Issues)
	}
}

func TestProcessFileReportsAccessErrors(t *testing.T) {
	logger, logs := observedLogger()
	rw := rewrite.New(start, 0)

	fr := processFile(logger, rw, walk.WalkResult{
		Path:         "/work/locked.html",
		RelativePath: "locked.html",
		Error:        os.ErrPermission,
	}, false)

	if fr.Error == "" || fr.Changed {
		t.Errorf("unexpected file report: %+v", fr)
	}
	entries := logs.FilterMessage("skipping file").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(entries))
	}
	err, _ := entries[0].ContextMap()["error"].(string)
	if err == "" {
		t.Error("warning has no error field")
	}
}

func TestProcessFileReportsWriteErrors(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "gone", "page.html")

	fr := processFile(zap.NewNop(), rewrite.New(start, 0), walk.WalkResult{
		Path:         missing,
		RelativePath: "gone/page.html",
		Content:      `<p id="DateReplace(D)">x</p>`,
	}, false)

	if fr.Changed {
		t.Error("file reported changed although the write failed")
	}
	if fr.Error == "" {
		t.Error("expected write error in report")
	}
	if len(fr.Replacements) != 1 {
		t.Errorf("replacements = %d, want 1", len(fr.Replacements))
	}
}

func TestRunUnreadableFileDoesNotAbort(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read any file")
	}
	course := testutil.NewTestCourse(t).
		WithFile("locked.html", `<p id="DateReplace(D)">x</p>`).
		WithFile("open.html", `<p id="DateReplace(D)">x</p>`).
		Build()
	locked := filepath.Join(course.Path, "locked.html")
	if err := os.Chmod(locked, 0); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o644) })

	report, err := NewRunner(&dirArchive{dir: course.Path}, nil).Run(context.Background(), Options{
		StartDate:   start,
		InputPath:   "course.zip",
		KeepWorkDir: true,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if report.Summary.FileErrors != 1 || report.Summary.FilesChanged != 1 {
		t.Errorf("unexpected summary: %+v", report.Summary)
	}
	course.AssertFileContains("open.html", ">19<")
}

func TestProcessDirHonorsCancellation(t *testing.T) {
	course := testutil.NewTestCourse(t).WithFile("a.html", "x").Build()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(&dirArchive{dir: course.Path}, nil).ProcessDir(ctx, course.Path, Options{StartDate: start})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
