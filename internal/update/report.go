package update

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aidanlsb/coursedates/internal/atomicfile"
	"github.com/aidanlsb/coursedates/internal/directive"
)

// Report summarizes one run.
type Report struct {
	Input      string       `json:"input" yaml:"input"`
	Output     string       `json:"output,omitempty" yaml:"output,omitempty"`
	StartDate  string       `json:"start_date" yaml:"start_date"`
	StartIndex int          `json:"start_index" yaml:"start_index"`
	DryRun     bool         `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	WorkDir    string       `json:"work_dir,omitempty" yaml:"work_dir,omitempty"`
	Summary    Summary      `json:"summary" yaml:"summary"`
	Files      []FileReport `json:"files" yaml:"files"`
}

// Summary holds the run totals.
type Summary struct {
	FilesScanned int `json:"files_scanned" yaml:"files_scanned"`
	FilesChanged int `json:"files_changed" yaml:"files_changed"`
	Replacements int `json:"replacements" yaml:"replacements"`
	Issues       int `json:"issues" yaml:"issues"`
	FileErrors   int `json:"file_errors" yaml:"file_errors"`
}

// FileReport is the outcome for one content file.
type FileReport struct {
	Path         string              `json:"path" yaml:"path"`
	Changed      bool                `json:"changed" yaml:"changed"`
	Replacements []ReplacementReport `json:"replacements,omitempty" yaml:"replacements,omitempty"`
	Issues       []directive.Issue   `json:"issues,omitempty" yaml:"issues,omitempty"`
	Error        string              `json:"error,omitempty" yaml:"error,omitempty"`
}

// ReplacementReport describes one substituted directive.
type ReplacementReport struct {
	Line     int    `json:"line" yaml:"line"`
	Args     string `json:"args" yaml:"args"`
	Date     string `json:"date" yaml:"date"`
	Original string `json:"original" yaml:"original"`
	Value    string `json:"value" yaml:"value"`
}

func summarize(files []FileReport) Summary {
	var s Summary
	for _, f := range files {
		s.FilesScanned++
		if f.Changed {
			s.FilesChanged++
		}
		if f.Error != "" {
			s.FileErrors++
		}
		s.Replacements += len(f.Replacements)
		s.Issues += len(f.Issues)
	}
	return s
}

// WriteReport writes r to path as YAML when the extension is .yaml or .yml
// and as indented JSON otherwise.
func WriteReport(path string, r *Report) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(r)
	default:
		data, err = json.MarshalIndent(r, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	}
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := atomicfile.WriteFile(path, data, 0); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Markdown renders a human-readable summary of r.
func (r *Report) Markdown() string {
	var b strings.Builder
	if r.DryRun {
		b.WriteString("# Dry run\n\n")
	} else {
		b.WriteString("# Course dates updated\n\n")
	}
	fmt.Fprintf(&b, "- **Input:** `%s`\n", r.Input)
	if r.Output != "" {
		fmt.Fprintf(&b, "- **Output:** `%s`\n", r.Output)
	}
	fmt.Fprintf(&b, "- **Start date:** %s (day %d)\n", r.StartDate, r.StartIndex)
	if r.WorkDir != "" {
		fmt.Fprintf(&b, "- **Work dir:** `%s`\n", r.WorkDir)
	}
	fmt.Fprintf(&b, "\n%d of %d files changed, %d dates replaced",
		r.Summary.FilesChanged, r.Summary.FilesScanned, r.Summary.Replacements)
	if r.Summary.Issues > 0 {
		fmt.Fprintf(&b, ", %d malformed directives skipped", r.Summary.Issues)
	}
	if r.Summary.FileErrors > 0 {
		fmt.Fprintf(&b, ", %d files could not be processed", r.Summary.FileErrors)
	}
	b.WriteString(".\n")

	var changed []FileReport
	for _, f := range r.Files {
		if len(f.Replacements) > 0 || len(f.Issues) > 0 || f.Error != "" {
			changed = append(changed, f)
		}
	}
	if len(changed) == 0 {
		return b.String()
	}

	b.WriteString("\n| File | Dates | Issues |\n|---|---:|---|\n")
	for _, f := range changed {
		issues := make([]string, 0, len(f.Issues)+1)
		for _, is := range f.Issues {
			issues = append(issues, fmt.Sprintf("line %d: %s", is.Line, escapeCell(is.Message)))
		}
		if f.Error != "" {
			issues = append(issues, escapeCell(f.Error))
		}
		fmt.Fprintf(&b, "| `%s` | %d | %s |\n", f.Path, len(f.Replacements), strings.Join(issues, "<br>"))
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
