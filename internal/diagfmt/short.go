package diagfmt

import (
	"fmt"

	"redline/internal/diag"
	"redline/internal/source"
)

// LayoutShort produces the compact header-only entry sequence: one located
// header per primary label, in diagnostic order, or a single locus-less
// header when the diagnostic has no primary labels. No source lines are
// produced.
//
//	test:2:9: error[E0001]: unexpected type in `+` application
func LayoutShort(d diag.Diagnostic, files Files) ([]Entry, error) {
	var entries []Entry

	for _, label := range d.Labels {
		if label.Style != diag.LabelPrimary {
			continue
		}
		locus, err := resolveLocus(label.Span.File, int(label.Span.Start), files)
		if err != nil {
			return nil, err
		}
		entries = append(entries, HeaderEntry{
			Locus:    &locus,
			Severity: d.Severity,
			Code:     d.Code,
			Message:  d.Message,
		})
	}

	// Fallback to a non-located header when no primary labels exist.
	if len(entries) == 0 {
		entries = append(entries, HeaderEntry{
			Severity: d.Severity,
			Code:     d.Code,
			Message:  d.Message,
		})
	}

	return entries, nil
}

// resolveLocus resolves a byte offset to a display position.
func resolveLocus(id source.FileID, byteIndex int, files Files) (source.Locus, error) {
	origin, err := files.Origin(id)
	if err != nil {
		return source.Locus{}, fmt.Errorf("resolve origin: %w", err)
	}
	lineIndex, err := files.LineIndex(id, byteIndex)
	if err != nil {
		return source.Locus{}, fmt.Errorf("resolve line index: %w", err)
	}
	line, err := files.Line(id, lineIndex)
	if err != nil {
		return source.Locus{}, fmt.Errorf("resolve line: %w", err)
	}
	src, err := files.Source(id)
	if err != nil {
		return source.Locus{}, fmt.Errorf("resolve source: %w", err)
	}
	return source.Locus{
		Origin: origin,
		Line:   line.Number,
		Column: source.ColumnNumber(src[line.Start:line.End], line.Start, byteIndex),
	}, nil
}

// RenderShort writes the short form of one diagnostic to the sink.
func RenderShort(d diag.Diagnostic, files Files, sink Sink, cfg *Config) error {
	entries, err := LayoutShort(d, files)
	if err != nil {
		return err
	}
	return NewRenderer(sink, cfg).RenderAll(entries)
}
