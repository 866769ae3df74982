// Package rewrite substitutes rendered dates for every DateReplace directive
// in a content buffer.
package rewrite

import (
	"strings"

	"github.com/aidanlsb/coursedates/internal/dateformat"
	"github.com/aidanlsb/coursedates/internal/dates"
	"github.com/aidanlsb/coursedates/internal/directive"
)

// Replacement records one substitution in terms of the original buffer.
type Replacement struct {
	Directive directive.Directive
	Date      dates.Date
	Original  string
	Value     string
}

// Result is the outcome of rewriting one buffer.
type Result struct {
	Content string
	// Changed is true when at least one replacement was made and the
	// content differs from the input.
	Changed      bool
	Replacements []Replacement
	Issues       []directive.Issue
}

// Rewriter resolves directives against a start date.
type Rewriter struct {
	Parser directive.Parser
	Start  dates.Date
}

// New returns a Rewriter for the given start date and numbering convention.
func New(start dates.Date, startIndex int) *Rewriter {
	return &Rewriter{
		Parser: directive.Parser{StartIndex: startIndex},
		Start:  start,
	}
}

// Resolve returns the rendered value for a single directive.
func (r *Rewriter) Resolve(d directive.Directive) (dates.Date, string) {
	target := dates.AddDays(r.Start, d.DayOffset)
	return target, dateformat.Format(target, d.Format)
}

// Rewrite scans buf, collects every replacement against the original
// offsets, and then builds the output in one pass.
func (r *Rewriter) Rewrite(buf string) Result {
	var res Result

	pos := 0
	for {
		m, ok := r.Parser.FindNext(buf, pos)
		if !ok {
			break
		}
		pos = m.Next
		if m.Skipped() {
			res.Issues = append(res.Issues, *m.Issue)
			continue
		}

		d := m.Directive
		target, value := r.Resolve(d)
		res.Replacements = append(res.Replacements, Replacement{
			Directive: d,
			Date:      target,
			Original:  buf[d.Replace.Start:d.Replace.End],
			Value:     value,
		})
	}

	if len(res.Replacements) == 0 {
		res.Content = buf
		return res
	}

	res.Content = apply(buf, res.Replacements)
	res.Changed = res.Content != buf
	return res
}

// apply builds the output from unaffected slices of buf and the rendered
// values. Replacements are ordered and do not overlap.
func apply(buf string, reps []Replacement) string {
	size := len(buf)
	for _, rep := range reps {
		size += len(rep.Value) - rep.Directive.Replace.Len()
	}

	var b strings.Builder
	b.Grow(size)
	last := 0
	for _, rep := range reps {
		b.WriteString(buf[last:rep.Directive.Replace.Start])
		b.WriteString(rep.Value)
		last = rep.Directive.Replace.End
	}
	b.WriteString(buf[last:])
	return b.String()
}
