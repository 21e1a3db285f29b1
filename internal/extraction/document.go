package extraction

import "strings"

// Document is a read-only view of one OCR text blob. Line N of Lines is
// exactly the Nth "\n"-delimited segment of Text.
type Document struct {
	text  string
	lines []string
	lower []string
}

// NewDocument builds both views of text
func NewDocument(text string) *Document {
	return &Document{
		text:  text,
		lines: strings.Split(text, "\n"),
		lower: strings.Split(strings.ToLower(text), "\n"),
	}
}

// Text returns the searchable string view
func (d *Document) Text() string {
	return d.text
}

// Lines returns a copy of the line view
func (d *Document) Lines() []string {
	return append([]string(nil), d.lines...)
}

// Line returns line i, or "" when i is out of range
func (d *Document) Line(i int) string {
	if i < 0 || i >= len(d.lines) {
		return ""
	}
	return d.lines[i]
}

// Len returns the number of lines
func (d *Document) Len() int {
	return len(d.lines)
}

// IndexOf returns the first line containing label, ignoring case, or -1.
func (d *Document) IndexOf(label string) int {
	needle := strings.ToLower(label)
	for i, line := range d.lower {
		if strings.Contains(line, needle) {
			return i
		}
	}
	return -1
}
