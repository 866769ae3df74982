package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/coursedates/internal/archive"
	"github.com/aidanlsb/coursedates/internal/config"
	"github.com/aidanlsb/coursedates/internal/dates"
	"github.com/aidanlsb/coursedates/internal/directive"
	"github.com/aidanlsb/coursedates/internal/rewrite"
	"github.com/aidanlsb/coursedates/internal/update"
)

var captureStdoutMu sync.Mutex

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	captureStdoutMu.Lock()
	defer captureStdoutMu.Unlock()

	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	os.Stdout = w

	outputCh := make(chan string, 1)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		_ = r.Close()
		outputCh <- buf.String()
	}()

	defer func() {
		os.Stdout = orig
	}()
	fn()
	_ = w.Close()
	return <-outputCh
}

func withJSONOutput(t *testing.T, on bool) {
	t.Helper()
	prev := jsonOutput
	jsonOutput = on
	t.Cleanup(func() { jsonOutput = prev })
}

func TestHandleErrorJSONStillFails(t *testing.T) {
	withJSONOutput(t, true)

	var err error
	out := captureStdout(t, func() {
		err = handleError(ErrExtractionFailed, errors.New("extract course.zip: zip: not a valid zip file"), "Make sure the input is a zip")
	})
	if !errors.Is(err, errReported) {
		t.Fatalf("expected errReported, got %v", err)
	}

	var resp Response
	if jerr := json.Unmarshal([]byte(out), &resp); jerr != nil {
		t.Fatalf("expected JSON output, got %q: %v", out, jerr)
	}
	if resp.OK || resp.Error == nil || resp.Error.Code != ErrExtractionFailed {
		t.Fatalf("unexpected response: %+v", resp)
	}

	// A second pass through handleError must not print again.
	out = captureStdout(t, func() {
		err = handleError(ErrInternal, err, "")
	})
	if out != "" || !errors.Is(err, errReported) {
		t.Errorf("reported error was handled twice: %q", out)
	}
}

func TestHandleErrorText(t *testing.T) {
	withJSONOutput(t, false)

	base := errors.New("invalid start date: is required")
	err := handleError(ErrConfigInvalid, base, "Pass --start")
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if err.Error() != "invalid start date: is required\n\nPass --start" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestClassifyRunError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"config", &update.ConfigError{Field: "input", Message: "archive path is required"}, ErrConfigInvalid},
		{"missing container", &archive.ExtractionError{Path: "x.zip", Err: archive.ErrContainerNotFound}, ErrFileNotFound},
		{"corrupt container", &archive.ExtractionError{Path: "x.zip", Err: errors.New("zip: not a valid zip file")}, ErrExtractionFailed},
		{"packaging", fmt.Errorf("run: %w", &archive.PackagingError{Path: "y.zip", Err: errors.New("exit status 15")}), ErrPackagingFailed},
		{"other", errors.New("boom"), ErrInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := classifyRunError(tt.err)
			if code != tt.code {
				t.Errorf("code = %s, want %s", code, tt.code)
			}
		})
	}
}

func TestReportWarnings(t *testing.T) {
	r := &update.Report{Files: []update.FileReport{
		{Path: "a.html", Issues: []directive.Issue{{Kind: directive.IssueMissingCloseParen, Message: "directive has no closing parenthesis", Line: 4}}},
		{Path: "b.html", Error: "read b.html: permission denied"},
		{Path: "c.html", Changed: true},
	}}

	got := reportWarnings(r)
	want := []Warning{
		{Code: WarnMalformedDirective, Message: "directive has no closing parenthesis", File: "a.html", Line: 4},
		{Code: WarnFileAccess, Message: "read b.html: permission denied", File: "b.html"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d warnings, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("warning %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRenderOne(t *testing.T) {
	start := dates.Date{Year: 2024, Month: time.August, Day: 19}

	tests := []struct {
		arg   string
		index int
		value string
		date  string
	}{
		{arg: `DateReplace("NN, MM D", 3)`, value: "Thursday, August 22", date: "2024-08-22"},
		{arg: `M D,10`, value: "Aug 29", date: "2024-08-29"},
		{arg: `YYYY-MM-DD`, value: "2024-August-19", date: "2024-08-19"},
		{arg: `DateReplace(D, 1)`, index: 1, value: "19", date: "2024-08-19"},
		{arg: `DateReplace("(M) D", 3)`, value: "Aug", date: "2024-08-19"},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			res, err := renderOne(tt.arg, start, tt.index)
			if err != nil {
				t.Fatalf("renderOne() error: %v", err)
			}
			if res.Value != tt.value || res.Date != tt.date {
				t.Errorf("got %q on %s, want %q on %s", res.Value, res.Date, tt.value, tt.date)
			}
		})
	}

	if _, err := renderOne(`DateReplace(D, 1`, start, 0); err == nil {
		t.Error("expected error for unclosed directive")
	}
	if _, err := renderOne(`D, soon`, start, 0); err == nil {
		t.Error("expected error for bad day number")
	}
	if _, err := renderOne(`D, 2147483648`, start, 0); err == nil {
		t.Error("expected error for day number beyond int32")
	}
}

func TestRenderOneMatchesRewrite(t *testing.T) {
	start := dates.Date{Year: 2024, Month: time.August, Day: 19}
	for _, arg := range []string{
		`DateReplace("(M) D", 3)`,
		`DateReplace(NN (D), 2) trailing)`,
		`DateReplace(MM D, 5)`,
	} {
		t.Run(arg, func(t *testing.T) {
			res, err := renderOne(arg, start, 0)
			if err != nil {
				t.Fatalf("renderOne() error: %v", err)
			}
			end := strings.IndexByte(arg, ')')
			doc := `<b class="` + arg[:end+1] + `">x</b>`
			out := rewrite.New(start, 0).Rewrite(doc)
			want := `<b class="` + arg[:end+1] + `">` + res.Value + `</b>`
			if out.Content != want {
				t.Errorf("render gave %q but rewrite produced %s", res.Value, out.Content)
			}
		})
	}
}

func TestRunUpdateRequiresArchive(t *testing.T) {
	withJSONOutput(t, false)

	t.Run("flags without archive fail", func(t *testing.T) {
		cmd := &cobra.Command{Use: "coursedates"}
		registerUpdateFlags(cmd)
		if err := cmd.Flags().Parse([]string{"--start", "08/19/2024"}); err != nil {
			t.Fatal(err)
		}
		err := runUpdate(cmd, nil)
		if err == nil {
			t.Fatal("expected error when the archive path is missing")
		}
		var cfgErr *update.ConfigError
		if !errors.As(err, &cfgErr) || cfgErr.Field != "input" {
			t.Errorf("expected input ConfigError, got %v", err)
		}
		if !strings.Contains(err.Error(), "Usage: coursedates") {
			t.Errorf("missing usage hint: %v", err)
		}
	})

	t.Run("bare invocation shows help", func(t *testing.T) {
		cmd := &cobra.Command{Use: "coursedates", Long: "help text"}
		registerUpdateFlags(cmd)
		var out bytes.Buffer
		cmd.SetOut(&out)
		if err := cmd.Flags().Parse(nil); err != nil {
			t.Fatal(err)
		}
		if err := runUpdate(cmd, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out.String(), "help text") {
			t.Errorf("help not printed: %q", out.String())
		}
	})
}

func TestDateFlagsPrecedence(t *testing.T) {
	index := 1
	c := &config.Config{StartDate: "2025-01-06", StartIndex: &index}

	t.Run("config fills unset flags", func(t *testing.T) {
		var f dateFlags
		cmd := &cobra.Command{Use: "test"}
		f.register(cmd.Flags())
		if err := cmd.Flags().Parse(nil); err != nil {
			t.Fatal(err)
		}
		d, idx, err := f.resolve(cmd.Flags(), c)
		if err != nil {
			t.Fatal(err)
		}
		if d.String() != "2025-01-06" || idx != 1 {
			t.Errorf("got %s index %d", d, idx)
		}
	})

	t.Run("flags win", func(t *testing.T) {
		var f dateFlags
		cmd := &cobra.Command{Use: "test"}
		f.register(cmd.Flags())
		if err := cmd.Flags().Parse([]string{"-s", "8/19/2024", "-i", "0"}); err != nil {
			t.Fatal(err)
		}
		d, idx, err := f.resolve(cmd.Flags(), c)
		if err != nil {
			t.Fatal(err)
		}
		if d.String() != "2024-08-19" || idx != 0 {
			t.Errorf("got %s index %d", d, idx)
		}
	})

	t.Run("start index out of range", func(t *testing.T) {
		var f dateFlags
		cmd := &cobra.Command{Use: "test"}
		f.register(cmd.Flags())
		if err := cmd.Flags().Parse([]string{"-s", "8/19/2024", "-i", "3000000000"}); err != nil {
			t.Fatal(err)
		}
		_, _, err := f.resolve(cmd.Flags(), &config.Config{})
		var cfgErr *update.ConfigError
		if !errors.As(err, &cfgErr) || cfgErr.Field != "start index" {
			t.Fatalf("expected start index ConfigError, got %v", err)
		}
	})

	t.Run("missing start date", func(t *testing.T) {
		var f dateFlags
		cmd := &cobra.Command{Use: "test"}
		f.register(cmd.Flags())
		_, _, err := f.resolve(cmd.Flags(), &config.Config{})
		var cfgErr *update.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("expected *update.ConfigError, got %v", err)
		}
	})
}

func TestApplyConfigValue(t *testing.T) {
	c := &config.Config{}
	for _, kv := range [][2]string{
		{"start_date", "08/19/2024"},
		{"start_index", "1"},
		{"workers", "4"},
		{"archiver", "exec"},
		{"ui.accent", "39"},
	} {
		if err := applyConfigValue(c, kv[0], kv[1]); err != nil {
			t.Fatalf("applyConfigValue(%s): %v", kv[0], err)
		}
	}
	if c.StartDate != "08/19/2024" || c.GetStartIndex() != 1 || c.Workers != 4 || c.Archiver != "exec" || c.UI.Accent != "39" {
		t.Errorf("unexpected config: %+v", c)
	}

	if err := applyConfigValue(c, "start_date", "19/08/2024"); err == nil {
		t.Error("expected error for invalid date")
	}
	if err := applyConfigValue(c, "vault", "x"); err == nil {
		t.Error("expected error for unknown key")
	}
}
