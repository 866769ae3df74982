// Package update runs a full course date update: unpack the container,
// rewrite every eligible content file, and pack the result.
package update

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aidanlsb/coursedates/internal/archive"
	"github.com/aidanlsb/coursedates/internal/directive"
	"github.com/aidanlsb/coursedates/internal/rewrite"
	"github.com/aidanlsb/coursedates/internal/walk"
)

// Runner executes updates against an archive service.
type Runner struct {
	Archive archive.Service
	Logger  *zap.Logger
}

// NewRunner returns a Runner. A nil logger discards diagnostics.
func NewRunner(svc archive.Service, logger *zap.Logger) *Runner {
	return &Runner{Archive: svc, Logger: logger}
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

// Run validates opts, unpacks the input, rewrites its content files and
// packs the output container. Malformed directives and unreadable files are
// reported in the returned Report; extraction and packaging failures are
// returned as errors and no output is produced.
func (r *Runner) Run(ctx context.Context, opts Options) (*Report, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if r.Archive == nil {
		return nil, errors.New("update: no archive service configured")
	}
	log := r.logger()

	report := &Report{
		Input:      opts.InputPath,
		StartDate:  opts.StartDate.String(),
		StartIndex: opts.StartIndex,
		DryRun:     opts.DryRun,
	}
	if !opts.DryRun {
		report.Output = opts.outputPath()
	}

	workDir, err := r.Archive.Unpack(ctx, opts.InputPath)
	if err != nil {
		return nil, err
	}
	if opts.KeepWorkDir {
		report.WorkDir = workDir
		log.Info("keeping work dir", zap.String("path", workDir))
	} else {
		defer func() {
			if err := os.RemoveAll(workDir); err != nil {
				log.Warn("failed to remove work dir", zap.String("path", workDir), zap.Error(err))
			}
		}()
	}

	files, err := r.ProcessDir(ctx, workDir, opts)
	if err != nil {
		return nil, err
	}
	report.Files = files
	report.Summary = summarize(files)

	if opts.DryRun {
		return report, nil
	}
	if err := r.Archive.Pack(ctx, workDir, report.Output); err != nil {
		return nil, err
	}
	return report, nil
}

// ProcessDir rewrites every eligible file under dir in place, using a
// bounded pool of workers. The returned reports are sorted by path.
func (r *Runner) ProcessDir(ctx context.Context, dir string, opts Options) ([]FileReport, error) {
	log := r.logger()
	rw := rewrite.New(opts.StartDate, opts.StartIndex)

	var (
		mu      sync.Mutex
		reports []FileReport
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())

	walkErr := walk.WalkEligibleFiles(dir, &walk.Options{Extensions: opts.Extensions}, func(res walk.WalkResult) error {
		if err := gctx.Err(); err != nil {
			return err
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fr := processFile(log, rw, res, opts.DryRun)
			mu.Lock()
			reports = append(reports, fr)
			mu.Unlock()
			return nil
		})
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if walkErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("walk %s: %w", dir, walkErr)
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Path < reports[j].Path
	})
	return reports, nil
}

func processFile(log *zap.Logger, rw *rewrite.Rewriter, res walk.WalkResult, dryRun bool) FileReport {
	fr := FileReport{Path: filepath.ToSlash(res.RelativePath)}
	if res.Error != nil {
		warn := &FileAccessWarning{Path: fr.Path, Op: "read", Err: res.Error}
		log.Warn("skipping file", zap.String("file", fr.Path), zap.Error(warn))
		fr.Error = warn.Error()
		return fr
	}

	out := rw.Rewrite(res.Content)
	for _, issue := range out.Issues {
		log.Warn("malformed directive",
			zap.String("file", fr.Path),
			zap.Int("line", issue.Line),
			zap.String("kind", string(issue.Kind)),
			zap.String("detail", issue.Message),
		)
	}
	for _, rep := range out.Replacements {
		log.Debug("resolved directive",
			zap.String("file", fr.Path),
			zap.String("args", rep.Directive.Args),
			zap.Int("day", rep.Directive.DayNumber),
			zap.Stringer("date", rep.Date),
			zap.String("value", rep.Value),
		)
		fr.Replacements = append(fr.Replacements, ReplacementReport{
			Line:     directive.LineOf(res.Content, rep.Directive.Span.Start),
			Args:     rep.Directive.Args,
			Date:     rep.Date.String(),
			Original: rep.Original,
			Value:    rep.Value,
		})
	}
	fr.Issues = out.Issues

	if !out.Changed {
		return fr
	}
	fr.Changed = true
	if dryRun {
		return fr
	}
	if err := walk.Persist(res.Path, out.Content); err != nil {
		warn := &FileAccessWarning{Path: fr.Path, Op: "write", Err: err}
		log.Warn("failed to write file", zap.String("file", fr.Path), zap.Error(warn))
		fr.Changed = false
		fr.Error = warn.Error()
	}
	return fr
}
