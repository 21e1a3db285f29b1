// Package extraction turns free-form OCR text from scanned invoices into an
// ordered mapping of field names to values. Every field carries a priority
// list of strategies and the first one producing a value wins.
package extraction

import (
	"fmt"
	"regexp"
	"strings"
)

// Strategy produces a candidate value for one field, "" when it finds nothing.
type Strategy interface {
	Extract(doc *Document) string
}

// Rule fills one or more fields of a Result.
type Rule interface {
	Fields() []string
	Apply(doc *Document, r *Result)
}

// FieldSpec is a named field and its strategies in priority order.
type FieldSpec struct {
	Name       string
	Strategies []Strategy
}

// Field is shorthand for a FieldSpec
func Field(name string, strategies ...Strategy) FieldSpec {
	return FieldSpec{Name: name, Strategies: strategies}
}

// Extract returns the first non-blank, trimmed value any strategy yields.
func (f FieldSpec) Extract(doc *Document) string {
	for _, s := range f.Strategies {
		if v := strings.TrimSpace(s.Extract(doc)); v != "" {
			return v
		}
	}
	return ""
}

// Fields implements Rule
func (f FieldSpec) Fields() []string {
	return []string{f.Name}
}

// Apply implements Rule
func (f FieldSpec) Apply(doc *Document, r *Result) {
	r.Set(f.Name, f.Extract(doc))
}

// Member binds a capture group of a Composite row to a field. Fallback is
// used on its own when the row does not match.
type Member struct {
	Group    int
	Fallback FieldSpec
}

// Composite extracts several fields from one structured row. If Row matches,
// every member takes its group's value; otherwise each member is extracted
// independently through its Fallback field. Partial rows are never merged
// with fallback values.
type Composite struct {
	Row     *regexp.Regexp
	Members []Member
}

// Fields implements Rule
func (c Composite) Fields() []string {
	names := make([]string, len(c.Members))
	for i, m := range c.Members {
		names[i] = m.Fallback.Name
	}
	return names
}

// Apply implements Rule
func (c Composite) Apply(doc *Document, r *Result) {
	if loc := c.Row.FindStringSubmatchIndex(doc.Text()); loc != nil {
		for _, m := range c.Members {
			value := ""
			if 2*m.Group+1 < len(loc) && loc[2*m.Group] >= 0 {
				value = strings.TrimSpace(doc.Text()[loc[2*m.Group]:loc[2*m.Group+1]])
			}
			r.Set(m.Fallback.Name, value)
		}
		return
	}
	for _, m := range c.Members {
		m.Fallback.Apply(doc, r)
	}
}

// Engine runs a fixed catalog of rules over OCR text. It holds no mutable
// state and may be shared between goroutines.
type Engine struct {
	version string
	rules   []Rule
	fields  []string
}

// NewEngine builds the canonical catalog for cfg. Zero values in cfg fall
// back to DefaultConfig.
func NewEngine(cfg Config) *Engine {
	cfg = cfg.withDefaults()
	return newEngine(CatalogVersion, fieldOrder, catalog(cfg))
}

// newEngine panics unless rules cover exactly the fields in order, each once.
func newEngine(version string, order []string, rules []Rule) *Engine {
	covered := make(map[string]int, len(order))
	for _, rule := range rules {
		for _, name := range rule.Fields() {
			covered[name]++
		}
	}
	if len(covered) != len(order) {
		panic(fmt.Sprintf("extraction: rules cover %d fields, order lists %d", len(covered), len(order)))
	}
	for _, name := range order {
		if covered[name] != 1 {
			panic(fmt.Sprintf("extraction: field %q covered %d times", name, covered[name]))
		}
	}
	return &Engine{version: version, rules: rules, fields: append([]string(nil), order...)}
}

// Version returns the catalog version
func (e *Engine) Version() string {
	return e.version
}

// Fields returns every field name the engine produces, in output order.
func (e *Engine) Fields() []string {
	return append([]string(nil), e.fields...)
}

// Extract runs every rule over text. All catalog fields are present in the
// result; unmatched ones are "".
func (e *Engine) Extract(text string) *Result {
	doc := NewDocument(text)
	r := NewResult(e.fields...)
	for _, rule := range e.rules {
		rule.Apply(doc, r)
	}
	return r
}
