package diag

import (
	"redline/internal/source"
)

// LabelStyle distinguishes the label carrying the diagnostic's main range
// from supporting context.
type LabelStyle uint8

const (
	// LabelPrimary marks the range the diagnostic is about. Primary labels
	// render in the diagnostic's severity style.
	LabelPrimary LabelStyle = iota
	// LabelSecondary marks supporting context and renders in a neutral style.
	LabelSecondary
)

// Label anchors a message to a byte range in a source file.
// The span is half-open and must satisfy Start <= End; it must lie within the
// referenced file's content, otherwise rendering aborts.
type Label struct {
	Span    source.Span
	Style   LabelStyle
	Message string
}

// Note is free-form text attached to a diagnostic, rendered after all source
// snippets.
type Note = string

// Diagnostic is one reported issue: a severity, an optional code, a message,
// zero or more source-anchored labels and trailing notes. It is immutable
// during rendering.
type Diagnostic struct {
	Severity Severity
	Code     string
	Message  string
	Labels   []Label
	Notes    []Note
}

// New constructs a diagnostic with the given severity and message.
func New(sev Severity, message string) Diagnostic {
	return Diagnostic{Severity: sev, Message: message}
}

// WithCode returns a copy carrying the given code.
func (d Diagnostic) WithCode(code string) Diagnostic {
	d.Code = code
	return d
}

// WithLabel appends a primary label.
func (d Diagnostic) WithLabel(span source.Span, msg string) Diagnostic {
	d.Labels = append(d.Labels, Label{Span: span, Style: LabelPrimary, Message: msg})
	return d
}

// WithSecondaryLabel appends a secondary label.
func (d Diagnostic) WithSecondaryLabel(span source.Span, msg string) Diagnostic {
	d.Labels = append(d.Labels, Label{Span: span, Style: LabelSecondary, Message: msg})
	return d
}

// WithNote appends a free-text note.
func (d Diagnostic) WithNote(note string) Diagnostic {
	d.Notes = append(d.Notes, note)
	return d
}

// PrimarySpan returns the span of the first primary label, falling back to
// the first label of any style. The second result is false for a label-less
// diagnostic.
func (d Diagnostic) PrimarySpan() (source.Span, bool) {
	for _, l := range d.Labels {
		if l.Style == LabelPrimary {
			return l.Span, true
		}
	}
	if len(d.Labels) > 0 {
		return d.Labels[0].Span, true
	}
	return source.Span{}, false
}
