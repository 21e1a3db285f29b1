package extraction

import (
	"regexp"
	"strings"
)

// Pattern is one candidate expression for a field. Group is the index of
// the capture group that holds the value; patterns with a leading label
// group (e.g. "Invoice (Number|No.)") carry the value in group 2.
type Pattern struct {
	Expr  *regexp.Regexp
	Group int
}

// P compiles expr case-insensitively with ^ and $ anchored at line
// boundaries. A dot never crosses a newline.
func P(expr string, group int) Pattern {
	return Pattern{Expr: regexp.MustCompile(`(?im)` + expr), Group: group}
}

// DotAll is P for patterns that need a dot to span lines.
func DotAll(expr string, group int) Pattern {
	return Pattern{Expr: regexp.MustCompile(`(?ims)`+expr), Group: group}
}

// Find returns the trimmed value of the pattern's group at the leftmost
// match. ok is false when nothing matched, the group did not take part in
// the match, or the value is blank.
func (p Pattern) Find(text string) (value string, ok bool) {
	loc := p.Expr.FindStringSubmatchIndex(text)
	if loc == nil || 2*p.Group+1 >= len(loc) || loc[2*p.Group] < 0 {
		return "", false
	}
	value = strings.TrimSpace(text[loc[2*p.Group]:loc[2*p.Group+1]])
	return value, value != ""
}

// Match tries patterns in order and returns the first non-blank value,
// or def when none produces one.
func Match(patterns []Pattern, text string, def string) string {
	for _, p := range patterns {
		if v, ok := p.Find(text); ok {
			return v
		}
	}
	return def
}

// Patterns is a priority list of candidate expressions.
type Patterns []Pattern

// Extract implements Strategy
func (ps Patterns) Extract(doc *Document) string {
	return Match(ps, doc.Text(), "")
}
