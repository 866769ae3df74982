package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/coursedates/internal/archive"
	"github.com/aidanlsb/coursedates/internal/config"
	"github.com/aidanlsb/coursedates/internal/logging"
	"github.com/aidanlsb/coursedates/internal/ui"
	"github.com/aidanlsb/coursedates/internal/update"
)

var (
	updateDates     dateFlags
	outputFlag      string
	workersFlag     int
	archiverFlag    string
	dryRunFlag      bool
	keepWorkDirFlag bool
	reportFlag      string
)

func registerUpdateFlags(cmd *cobra.Command) {
	fs := cmd.Flags()
	updateDates.register(fs)
	fs.StringVarP(&outputFlag, "output", "o", "", "Output container path (default <name>_updated.<ext> next to the input)")
	fs.IntVar(&workersFlag, "workers", 0, "Files rewritten in parallel (0 = one per CPU)")
	fs.StringVar(&archiverFlag, "archiver", "zip", "Container implementation: zip (built in) or exec (external unzip/zip)")
	fs.BoolVar(&dryRunFlag, "dry-run", false, "Report what would change without writing an output container")
	fs.BoolVar(&keepWorkDirFlag, "keep-workdir", false, "Leave the unpacked course on disk after the run")
	fs.StringVar(&reportFlag, "report", "", "Write a run report (.yaml/.yml or .json)")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		if cmd.Flags().NFlag() == 0 {
			return cmd.Help()
		}
		return handleError(ErrMissingArgument,
			&update.ConfigError{Field: "input", Message: "archive path is required"},
			"Usage: coursedates --start MM/DD/YYYY <archive>")
	}
	started := time.Now()
	c := getConfig()

	opts, archOpts, err := resolveUpdateOptions(cmd, c, args[0])
	if err != nil {
		return handleError(ErrConfigInvalid, err, "Run 'coursedates --help' for the accepted flags")
	}
	svc, err := archive.New(archOpts)
	if err != nil {
		return handleError(ErrConfigInvalid, err, "")
	}
	if !isJSONOutput() {
		svc = &spinnerArchive{Service: svc}
	}

	logger := logging.NewStderr(logging.Options{Verbose: verbose, Quiet: isJSONOutput() && !verbose})
	defer func() { _ = logger.Sync() }()

	report, err := update.NewRunner(svc, logger).Run(cmd.Context(), opts)
	if err != nil {
		code, suggestion := classifyRunError(err)
		return handleError(code, err, suggestion)
	}

	if reportFlag != "" {
		if err := update.WriteReport(reportFlag, report); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}
	}

	if isJSONOutput() {
		outputSuccessWithWarnings(report, reportWarnings(report), &Meta{
			Count:     report.Summary.FilesChanged,
			ElapsedMs: time.Since(started).Milliseconds(),
		})
		return nil
	}

	display := ui.NewDisplayContext()
	fmt.Print(display.Markdown(report.Markdown()))
	if reportFlag != "" {
		fmt.Println(ui.Info("Report written to " + ui.FilePath(reportFlag)))
	}
	return nil
}

func resolveUpdateOptions(cmd *cobra.Command, c *config.Config, input string) (update.Options, archive.Options, error) {
	fs := cmd.Flags()
	start, index, err := updateDates.resolve(fs, c)
	if err != nil {
		return update.Options{}, archive.Options{}, err
	}

	opts := update.Options{
		StartDate:    start,
		StartIndex:   index,
		InputPath:    input,
		OutputPath:   outputFlag,
		OutputSuffix: c.GetOutputSuffix(),
		Extensions:   c.GetExtensions(),
		Workers:      intFlagOr(fs, "workers", workersFlag, c.Workers),
		DryRun:       dryRunFlag,
		KeepWorkDir:  keepWorkDirFlag || c.KeepWorkDir,
	}
	if err := opts.Validate(); err != nil {
		return update.Options{}, archive.Options{}, err
	}

	archOpts := archive.Options{
		Kind:    archive.Kind(stringFlagOr(fs, "archiver", archiverFlag, c.GetArchiver())),
		BaseDir: c.WorkDir,
		Unzip:   c.Commands.Unzip,
		Zip:     c.Commands.Zip,
	}
	return opts, archOpts, nil
}

func reportWarnings(r *update.Report) []Warning {
	var warnings []Warning
	for _, f := range r.Files {
		for _, issue := range f.Issues {
			warnings = append(warnings, Warning{
				Code:    WarnMalformedDirective,
				Message: issue.Message,
				File:    f.Path,
				Line:    issue.Line,
			})
		}
		if f.Error != "" {
			warnings = append(warnings, Warning{
				Code:    WarnFileAccess,
				Message: f.Error,
				File:    f.Path,
			})
		}
	}
	return warnings
}

// spinnerArchive shows progress for the slow container phases.
type spinnerArchive struct {
	archive.Service
}

func (s *spinnerArchive) Unpack(ctx context.Context, containerPath string) (string, error) {
	sp := ui.NewSpinner("Unpacking " + filepath.Base(containerPath))
	sp.Start()
	dir, err := s.Service.Unpack(ctx, containerPath)
	if err != nil {
		sp.StopWithError("Could not unpack " + filepath.Base(containerPath))
		return "", err
	}
	sp.StopWithCheck("Unpacked " + filepath.Base(containerPath))
	return dir, nil
}

func (s *spinnerArchive) Pack(ctx context.Context, workDir, outputPath string) error {
	sp := ui.NewSpinner("Packing " + filepath.Base(outputPath))
	sp.Start()
	if err := s.Service.Pack(ctx, workDir, outputPath); err != nil {
		sp.StopWithError("Could not pack " + filepath.Base(outputPath))
		return err
	}
	sp.StopWithCheck("Packed " + filepath.Base(outputPath))
	return nil
}
