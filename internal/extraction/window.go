package extraction

import "strings"

// CaptureAfter finds the first line containing label (ignoring case) and
// joins the non-blank lines among the next maxLines lines with a single
// space. Blank lines use up the window without ending it early.
func CaptureAfter(label string, doc *Document, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	idx := doc.IndexOf(label)
	if idx < 0 {
		return ""
	}

	parts := make([]string, 0, maxLines)
	for offset := 1; offset <= maxLines; offset++ {
		if idx+offset >= doc.Len() {
			break
		}
		if line := strings.TrimSpace(doc.Line(idx + offset)); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}

// Window is a line-window strategy: the value sits on the lines below Label.
type Window struct {
	Label string
	Lines int
}

// Extract implements Strategy
func (w Window) Extract(doc *Document) string {
	return CaptureAfter(w.Label, doc, w.Lines)
}
