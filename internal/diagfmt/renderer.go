package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Renderer turns entries into text on a sink. It is a thin leaf: every layout
// decision has already been made by the time an entry reaches it.
type Renderer struct {
	sink Sink
	cfg  *Config
}

// NewRenderer binds a sink and a config. A nil config uses the defaults.
func NewRenderer(sink Sink, cfg *Config) *Renderer {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Renderer{sink: sink, cfg: cfg}
}

// Render writes one entry followed by a newline.
func (r *Renderer) Render(entry Entry) error {
	switch e := entry.(type) {
	case HeaderEntry:
		if err := r.renderHeader(e); err != nil {
			return err
		}
	case EmptyEntry:
		// just the newline below
	case SourceStartEntry:
		if err := r.renderSourceStart(e); err != nil {
			return err
		}
	case SourceEmptyEntry:
		if err := r.renderBorderOnly(e.OuterPadding, r.cfg.Chars.SourceBorderLeft); err != nil {
			return err
		}
	case SourceBreakEntry:
		if err := r.renderBorderOnly(e.OuterPadding, r.cfg.Chars.SourceBorderLeftBreak); err != nil {
			return err
		}
	case SourceLineEntry:
		return r.renderSourceLine(e)
	case SourceNoteEntry:
		if err := r.renderSourceNote(e); err != nil {
			return err
		}
	default:
		return fmt.Errorf("diagfmt: unknown entry %T", entry)
	}
	return r.newline()
}

// RenderAll writes a whole entry sequence.
func (r *Renderer) RenderAll(entries []Entry) error {
	for _, e := range entries {
		if err := r.Render(e); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) write(s string) error {
	_, err := io.WriteString(r.sink, s)
	return err
}

func (r *Renderer) styled(role StyleRole, s string) error {
	if err := r.sink.SetStyle(role); err != nil {
		return err
	}
	if err := r.write(s); err != nil {
		return err
	}
	return r.sink.Reset()
}

func (r *Renderer) newline() error {
	return r.write("\n")
}

// header: `[origin:line:col: ]severity[CODE]: message`
func (r *Renderer) renderHeader(e HeaderEntry) error {
	if e.Locus != nil {
		if err := r.write(e.Locus.String() + ": "); err != nil {
			return err
		}
	}
	head := e.Severity.String()
	if e.Code != "" {
		head += "[" + e.Code + "]"
	}
	if err := r.styled(severityRole(e.Severity), head); err != nil {
		return err
	}
	return r.write(": " + e.Message)
}

// sourceStart: `  ┌── test:2:9 ───`
func (r *Renderer) renderSourceStart(e SourceStartEntry) error {
	if err := r.gutter(0, e.OuterPadding); err != nil {
		return err
	}
	chars := r.cfg.Chars
	rule := string(chars.SourceBorderTop)
	if err := r.styled(StyleBorder, string(chars.SourceBorderTopLeft)+rule+rule); err != nil {
		return err
	}
	if err := r.write(" " + e.Locus.String() + " "); err != nil {
		return err
	}
	return r.styled(StyleBorder, rule+rule+rule)
}

func (r *Renderer) renderBorderOnly(outerPadding int, glyph rune) error {
	if err := r.gutter(0, outerPadding); err != nil {
		return err
	}
	return r.styled(StyleBorder, string(glyph))
}

// gutter writes the line-number gutter followed by the separating space.
// Number 0 renders a blank gutter.
func (r *Renderer) gutter(number, width int) error {
	if number == 0 {
		return r.write(strings.Repeat(" ", width+1))
	}
	if err := r.styled(StyleGutter, fmt.Sprintf("%*d", width, number)); err != nil {
		return err
	}
	return r.write(" ")
}

// sourceLine writes the source text with connector columns, then one caret
// row per mark that needs one:
//
//	2 │ (+ test "")
//	  │         ^^ expected `Int` but found `String`
//
//	4 │ ╭     case (mod num 5) (mod num 3) of
//
//	4 │   fizz₁ num = case (mod num 5) (mod num 3) of
//	  │ ╭─────────────^
//	8 │ │     _ _ => num
//	  │ ╰──────────────^ `case` clauses have incompatible types
func (r *Renderer) renderSourceLine(e SourceLineEntry) error {
	src := trimLineTerminator(e.Source)
	chars := r.cfg.Chars

	if err := r.gutter(e.LineNumber, e.OuterPadding); err != nil {
		return err
	}
	if err := r.styled(StyleBorder, string(chars.SourceBorderLeft)); err != nil {
		return err
	}

	// Connector columns sit between the border and the source text. Single
	// marks take no column; multi-line marks take one each.
	for _, mark := range e.Marks {
		if mark == nil {
			continue
		}
		switch mark.Mark.(type) {
		case MultiTopLeftMark:
			if err := r.write(" "); err != nil {
				return err
			}
			if err := r.styled(markRole(mark), string(chars.MultiTopLeft)); err != nil {
				return err
			}
		case MultiLeftMark, MultiBottomMark:
			if err := r.write(" "); err != nil {
				return err
			}
			if err := r.styled(markRole(mark), string(chars.MultiLeft)); err != nil {
				return err
			}
		case MultiTopMark:
			if err := r.write("  "); err != nil {
				return err
			}
		}
	}

	if src != "" {
		if err := r.write(" " + src); err != nil {
			return err
		}
	}
	if err := r.newline(); err != nil {
		return err
	}

	for _, mark := range e.Marks {
		if mark == nil {
			continue
		}
		if err := r.renderCaretRow(e.OuterPadding, src, mark); err != nil {
			return err
		}
	}
	return nil
}

// renderCaretRow writes the follow-up row beneath a source line for marks
// that carry an underline. Alignment uses display width so wide runes stay
// under their carets.
func (r *Renderer) renderCaretRow(outerPadding int, src string, mark *LineMark) error {
	chars := r.cfg.Chars
	role := markRole(mark)

	switch m := mark.Mark.(type) {
	case SingleMark:
		if err := r.gutter(0, outerPadding); err != nil {
			return err
		}
		if err := r.styled(StyleBorder, string(chars.SourceBorderLeft)); err != nil {
			return err
		}
		prefix := runewidth.StringWidth(sliceLine(src, 0, m.Start))
		width := runewidth.StringWidth(sliceLine(src, m.Start, m.End))
		if width < 1 {
			width = 1
		}
		carets := strings.Repeat(string(chars.SingleCaret), width)
		if m.Message != "" {
			carets += " " + m.Message
		}
		if err := r.write(" " + strings.Repeat(" ", prefix)); err != nil {
			return err
		}
		if err := r.styled(role, carets); err != nil {
			return err
		}
		return r.newline()

	case MultiTopMark:
		if err := r.gutter(0, outerPadding); err != nil {
			return err
		}
		if err := r.styled(StyleBorder, string(chars.SourceBorderLeft)); err != nil {
			return err
		}
		if err := r.write(" "); err != nil {
			return err
		}
		// The rule runs under the connector separator and the unmarked
		// prefix, capping at the start column.
		width := runewidth.StringWidth(sliceLine(src, 0, m.End)) + 1
		row := string(chars.MultiTopLeft) + strings.Repeat(string(chars.MultiTop), width) + string(chars.MultiCap)
		if err := r.styled(role, row); err != nil {
			return err
		}
		return r.newline()

	case MultiBottomMark:
		if err := r.gutter(0, outerPadding); err != nil {
			return err
		}
		if err := r.styled(StyleBorder, string(chars.SourceBorderLeft)); err != nil {
			return err
		}
		if err := r.write(" "); err != nil {
			return err
		}
		width := runewidth.StringWidth(sliceLine(src, 0, m.End))
		row := string(chars.MultiBottomLeft) + strings.Repeat(string(chars.MultiBottom), width) + string(chars.MultiCap)
		if m.Message != "" {
			row += " " + m.Message
		}
		if err := r.styled(role, row); err != nil {
			return err
		}
		return r.newline()
	}

	// MultiTopLeft and MultiLeft draw inline only.
	return nil
}

// sourceNote: `  = expected type ...`; continuation lines align under the
// message start.
func (r *Renderer) renderSourceNote(e SourceNoteEntry) error {
	if err := r.gutter(0, e.OuterPadding); err != nil {
		return err
	}
	if err := r.styled(StyleNoteBullet, string(r.cfg.Chars.NoteBullet)); err != nil {
		return err
	}
	lines := strings.Split(e.Message, "\n")
	if err := r.write(" " + lines[0]); err != nil {
		return err
	}
	indent := strings.Repeat(" ", e.OuterPadding+3)
	for _, line := range lines[1:] {
		if err := r.write("\n" + indent + line); err != nil {
			return err
		}
	}
	return nil
}

// sliceLine clamps [start, end) to the line and returns the covered text.
func sliceLine(src string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(src) {
		end = len(src)
	}
	if start >= end {
		return ""
	}
	return src[start:end]
}

func trimLineTerminator(src string) string {
	src = strings.TrimSuffix(src, "\n")
	return strings.TrimSuffix(src, "\r")
}
