// Package directive locates DateReplace directives in course content.
//
// A directive looks like
//
//	DateReplace(<format>[, <day>])
//
// and is followed later in the markup by ">...<". The text between that '>'
// and the next '<' is the span that gets replaced with the rendered date.
package directive

import (
	"fmt"
	"strconv"
	"strings"
)

// Marker is the literal text that opens a directive.
const Marker = "DateReplace("

// formatCutset is trimmed from both ends of the format argument so authors
// can write DateReplace("MM DD, YYYY", 3) or DateReplace(_MM DD, YYYY_,3).
const formatCutset = " \t\n\r\"_()"

// Span is a half-open byte range [Start, End) in a buffer.
type Span struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Len returns the number of bytes in the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Directive is one parsed DateReplace occurrence.
type Directive struct {
	// Format is the trimmed format spec.
	Format string
	// DayNumber is the day as written by the author (or the start index
	// when the directive has no day argument).
	DayNumber int
	// DayOffset is DayNumber adjusted by the start index.
	DayOffset int
	// Args is the raw argument text between the parentheses.
	Args string
	// Span covers the directive text itself, from the marker to the closing
	// parenthesis inclusive. It is never modified.
	Span Span
	// Replace is the content between the following '>' and '<'.
	Replace Span
}

// Match is the outcome of one FindNext call.
type Match struct {
	Directive Directive
	// Issue is set when the occurrence was malformed and skipped.
	Issue *Issue
	// Next is where scanning resumes. It is always past the marker.
	Next int
}

// Skipped reports whether the occurrence was malformed.
func (m Match) Skipped() bool {
	return m.Issue != nil
}

// Parser finds directives in a buffer.
type Parser struct {
	// StartIndex is the numbering convention authors use for day numbers.
	StartIndex int
}

// FindNext scans buf from from for the next marker. It returns false when no
// marker remains. A malformed occurrence is returned with Issue set so the
// caller can report it and continue at Next.
func (p Parser) FindNext(buf string, from int) (Match, bool) {
	if from < 0 {
		from = 0
	}
	if from >= len(buf) {
		return Match{}, false
	}

	rel := strings.Index(buf[from:], Marker)
	if rel < 0 {
		return Match{}, false
	}
	markerPos := from + rel
	argsStart := markerPos + len(Marker)

	closeRel := strings.IndexByte(buf[argsStart:], ')')
	if closeRel < 0 {
		return p.skip(buf, markerPos, argsStart, IssueMissingCloseParen,
			"directive has no closing parenthesis"), true
	}
	closePos := argsStart + closeRel
	afterClose := closePos + 1

	args := buf[argsStart:closePos]
	format, dayNumber, err := p.ParseArgs(args)
	if err != nil {
		return p.skip(buf, markerPos, afterClose, IssueInvalidDayNumber, err.Error()), true
	}

	gt := strings.IndexByte(buf[closePos:], '>')
	if gt < 0 {
		return p.skip(buf, markerPos, afterClose, IssueMissingTagBoundary,
			"no '>' follows the directive"), true
	}
	replaceStart := closePos + gt + 1
	lt := strings.IndexByte(buf[replaceStart:], '<')
	if lt < 0 {
		return p.skip(buf, markerPos, afterClose, IssueMissingTagBoundary,
			"no '<' closes the replaceable text"), true
	}
	replaceEnd := replaceStart + lt

	return Match{
		Directive: Directive{
			Format:    format,
			DayNumber: dayNumber,
			DayOffset: dayNumber - p.StartIndex,
			Args:      args,
			Span:      Span{Start: markerPos, End: afterClose},
			Replace:   Span{Start: replaceStart, End: replaceEnd},
		},
		Next: replaceEnd,
	}, true
}

// ParseArgs splits the text between a directive's parentheses into the
// trimmed format and the day number. The split is on the last comma, so
// formats may contain commas. Without a comma the day number is StartIndex.
func (p Parser) ParseArgs(args string) (format string, dayNumber int, err error) {
	format = args
	dayNumber = p.StartIndex
	if comma := strings.LastIndexByte(args, ','); comma >= 0 {
		format = args[:comma]
		raw := args[comma+1:]
		n, perr := parseDayNumber(raw)
		if perr != nil {
			return "", 0, fmt.Errorf("invalid day number %q", strings.TrimSpace(raw))
		}
		dayNumber = n
	}
	return strings.Trim(format, formatCutset), dayNumber, nil
}

// FindAll returns every well-formed directive in buf and the issues found
// along the way. Scanning resumes after each replace span, so directives
// inside replaceable text are not reported.
func (p Parser) FindAll(buf string) ([]Directive, []Issue) {
	var found []Directive
	var issues []Issue
	pos := 0
	for {
		m, ok := p.FindNext(buf, pos)
		if !ok {
			return found, issues
		}
		if m.Skipped() {
			issues = append(issues, *m.Issue)
		} else {
			found = append(found, m.Directive)
		}
		pos = m.Next
	}
}

func (p Parser) skip(buf string, markerPos, next int, kind IssueKind, msg string) Match {
	return Match{
		Issue: &Issue{
			Kind:    kind,
			Message: msg,
			Offset:  markerPos,
			Line:    LineOf(buf, markerPos),
			Excerpt: excerpt(buf, markerPos),
		},
		Next: next,
	}
}

// parseDayNumber reads an optionally signed 32-bit integer after leading
// whitespace. Anything after the digits is ignored, so `3"` and `3 ` both
// yield 3. Values outside the int32 range are rejected.
func parseDayNumber(s string) (int, error) {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, fmt.Errorf("no digits in %q", s)
	}
	n, err := strconv.ParseInt(s[:end], 10, 32)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// LineOf returns the 1-based line number of offset in buf.
func LineOf(buf string, offset int) int {
	return strings.Count(buf[:offset], "\n") + 1
}

const excerptLen = 40

func excerpt(buf string, offset int) string {
	end := offset + excerptLen
	if end > len(buf) {
		end = len(buf)
	}
	s := buf[offset:end]
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	return s
}
