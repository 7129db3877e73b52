package diagfmt

import (
	"io"

	"github.com/fatih/color"

	"redline/internal/diag"
)

// StyleRole names the style slots a sink can switch between. Roles decouple
// the renderer from any concrete color scheme: the renderer announces what it
// is about to write, the sink decides how that looks.
type StyleRole uint8

const (
	StyleDefault StyleRole = iota
	StyleBug
	StyleError
	StyleWarning
	StyleNote
	StyleHelp
	// StyleSecondary is the neutral underline style for secondary marks.
	StyleSecondary
	// StyleBorder covers all snippet border glyphs.
	StyleBorder
	// StyleGutter covers the line-number gutter.
	StyleGutter
	// StyleNoteBullet covers the bullet of trailing notes.
	StyleNoteBullet
)

// severityRole maps a severity to its style role.
func severityRole(sev diag.Severity) StyleRole {
	switch sev {
	case diag.SevBug:
		return StyleBug
	case diag.SevError:
		return StyleError
	case diag.SevWarning:
		return StyleWarning
	case diag.SevNote:
		return StyleNote
	case diag.SevHelp:
		return StyleHelp
	}
	return StyleDefault
}

// markRole returns the style role for one mark: the diagnostic severity for
// primary marks, the neutral secondary style otherwise.
func markRole(m *LineMark) StyleRole {
	if m.Primary {
		return severityRole(m.Severity)
	}
	return StyleSecondary
}

// Sink accepts sequential text writes and named style changes. Rendering
// never reads from the sink. A failed write or style change aborts the render
// without rollback.
type Sink interface {
	io.Writer
	SetStyle(role StyleRole) error
	Reset() error
}

// ColorSink writes ANSI-styled text using the configured fatih/color styles.
type ColorSink struct {
	w       io.Writer
	styles  *Styles
	current *color.Color
}

// NewColorSink wraps w with the given styles. A nil styles uses the defaults.
func NewColorSink(w io.Writer, styles *Styles) *ColorSink {
	if styles == nil {
		styles = DefaultStyles()
	}
	return &ColorSink{w: w, styles: styles}
}

func (s *ColorSink) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

func (s *ColorSink) SetStyle(role StyleRole) error {
	if err := s.Reset(); err != nil {
		return err
	}
	c := s.styles.role(role)
	if c == nil {
		return nil
	}
	c.SetWriter(s.w)
	s.current = c
	return nil
}

func (s *ColorSink) Reset() error {
	if s.current == nil {
		return nil
	}
	s.current.UnsetWriter(s.w)
	s.current = nil
	return nil
}

// PlainSink writes text and ignores all style changes.
type PlainSink struct {
	w io.Writer
}

func NewPlainSink(w io.Writer) *PlainSink {
	return &PlainSink{w: w}
}

func (s *PlainSink) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

func (s *PlainSink) SetStyle(StyleRole) error { return nil }
func (s *PlainSink) Reset() error             { return nil }
