// Package dateformat renders dates using the token format strings authors
// write inside DateReplace directives.
package dateformat

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aidanlsb/coursedates/internal/dates"
)

// Token is one format token and how it renders.
type Token struct {
	Text   string
	Render func(dates.Date) string
}

// tokens is evaluated in order. Longer tokens come before the single-letter
// tokens they contain.
var tokens = []Token{
	{Text: "YYYY", Render: year},
	{Text: "MM", Render: func(d dates.Date) string { return d.Month.String() }},
	{Text: "NN", Render: func(d dates.Date) string { return d.Weekday().String() }},
	{Text: "DD", Render: func(d dates.Date) string { return fmt.Sprintf("%02d", d.Day) }},
	{Text: "Y", Render: year},
	{Text: "M", Render: func(d dates.Date) string { return abbrev(d.Month.String()) }},
	{Text: "N", Render: func(d dates.Date) string { return abbrev(d.Weekday().String()) }},
	{Text: "D", Render: func(d dates.Date) string { return strconv.Itoa(d.Day) }},
}

// Tokens returns the token table in evaluation order.
func Tokens() []Token {
	out := make([]Token, len(tokens))
	copy(out, tokens)
	return out
}

// segment is a run of format text. Rendered segments hold token output and
// are never matched against later tokens.
type segment struct {
	text     string
	rendered bool
}

// Format renders d according to spec. Matching is exact-case; characters
// that are not part of a token are copied through.
func Format(d dates.Date, spec string) string {
	segs := []segment{{text: spec}}
	for _, tok := range tokens {
		if !containsRaw(segs, tok.Text) {
			continue
		}
		segs = substitute(segs, tok.Text, tok.Render(d))
	}

	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.text)
	}
	return b.String()
}

func containsRaw(segs []segment, token string) bool {
	for _, s := range segs {
		if !s.rendered && strings.Contains(s.text, token) {
			return true
		}
	}
	return false
}

// substitute replaces every non-overlapping occurrence of token, scanning
// left to right, inside the raw segments only.
func substitute(segs []segment, token, value string) []segment {
	out := make([]segment, 0, len(segs)+2)
	for _, s := range segs {
		if s.rendered {
			out = append(out, s)
			continue
		}
		rest := s.text
		for {
			i := strings.Index(rest, token)
			if i < 0 {
				break
			}
			if i > 0 {
				out = append(out, segment{text: rest[:i]})
			}
			out = append(out, segment{text: value, rendered: true})
			rest = rest[i+len(token):]
		}
		if rest != "" {
			out = append(out, segment{text: rest})
		}
	}
	return out
}

func year(d dates.Date) string {
	return strconv.Itoa(d.Year)
}

func abbrev(name string) string {
	if len(name) <= 3 {
		return name
	}
	return name[:3]
}
