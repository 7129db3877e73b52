package diagfmt

import (
	"fmt"
	"sort"
	"strings"

	"redline/internal/diag"
	"redline/internal/source"
)

// countDigits returns the number of decimal digits in n.
func countDigits(n int) int {
	count := 0
	for n != 0 {
		count++
		n /= 10
	}
	return count
}

// markedLine is one resolved source line touched by a label.
type markedLine struct {
	line source.Line
	text string // line text, terminator included
}

// fileMark is one label resolved against its file: the lines it touches and
// its byte range.
type fileMark struct {
	severity diag.Severity
	primary  bool
	lines    []markedLine
	start    int
	end      int
	message  string
}

// markedFile groups the marks of one file, in first-encounter order.
type markedFile struct {
	id     source.FileID
	origin string
	marks  []fileMark
}

// Layout walks a diagnostic and produces the ordered entry sequence of its
// rich rendering: a header, one bordered snippet per referenced file, the
// trailing notes, and a closing blank line. Labels are grouped per file in
// first-encounter order and sorted by (start, end) within each file. The
// first resolution failure aborts the walk.
func Layout(d diag.Diagnostic, files Files) ([]Entry, error) {
	marked, outerPadding, err := groupLabels(d, files)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, 8)

	// Header and message
	//
	//	error[E0001]: unexpected type in `+` application
	entries = append(entries, HeaderEntry{
		Severity: d.Severity,
		Code:     d.Code,
		Message:  d.Message,
	})
	if len(marked) > 0 {
		entries = append(entries, EmptyEntry{})
	}

	for i := range marked {
		entries = layoutFile(entries, &marked[i], outerPadding)
	}

	for _, note := range d.Notes {
		entries = append(entries, SourceNoteEntry{OuterPadding: outerPadding, Message: note})
	}
	entries = append(entries, EmptyEntry{})

	return entries, nil
}

// groupLabels partitions the labels per file (stable in first-encounter
// order), resolves the lines each label touches, sorts the marks of every
// file by (start, end), and computes the gutter width from the largest line
// number reached anywhere in the diagnostic.
func groupLabels(d diag.Diagnostic, files Files) ([]markedFile, int, error) {
	var marked []markedFile
	outerPadding := 0

	for _, label := range d.Labels {
		if label.Span.Start > label.Span.End {
			return nil, 0, fmt.Errorf("diagfmt: label range %d..%d is inverted", label.Span.Start, label.Span.End)
		}
		fm, err := resolveMark(label, d.Severity, files)
		if err != nil {
			return nil, 0, err
		}
		for _, ml := range fm.lines {
			if digits := countDigits(ml.line.Number); digits > outerPadding {
				outerPadding = digits
			}
		}

		idx := -1
		for i := range marked {
			if marked[i].id == label.Span.File {
				idx = i
				break
			}
		}
		if idx < 0 {
			origin, err := files.Origin(label.Span.File)
			if err != nil {
				return nil, 0, fmt.Errorf("resolve origin: %w", err)
			}
			marked = append(marked, markedFile{id: label.Span.File, origin: origin})
			idx = len(marked) - 1
		}
		marked[idx].marks = append(marked[idx].marks, fm)
	}

	// Left-to-right reading order; among equal starts the shorter span first.
	for i := range marked {
		marks := marked[i].marks
		sort.SliceStable(marks, func(a, b int) bool {
			if marks[a].start != marks[b].start {
				return marks[a].start < marks[b].start
			}
			return marks[a].end < marks[b].end
		})
	}

	return marked, outerPadding, nil
}

func resolveMark(label diag.Label, sev diag.Severity, files Files) (fileMark, error) {
	id := label.Span.File
	start, end := int(label.Span.Start), int(label.Span.End)

	startLine, err := files.LineIndex(id, start)
	if err != nil {
		return fileMark{}, fmt.Errorf("resolve label start: %w", err)
	}
	endLine, err := files.LineIndex(id, end)
	if err != nil {
		return fileMark{}, fmt.Errorf("resolve label end: %w", err)
	}
	src, err := files.Source(id)
	if err != nil {
		return fileMark{}, fmt.Errorf("resolve source: %w", err)
	}

	fm := fileMark{
		severity: sev,
		primary:  label.Style == diag.LabelPrimary,
		start:    start,
		end:      end,
		message:  label.Message,
	}
	for idx := startLine; idx <= endLine; idx++ {
		line, err := files.Line(id, idx)
		if err != nil {
			return fileMark{}, fmt.Errorf("resolve line %d: %w", idx, err)
		}
		fm.lines = append(fm.lines, markedLine{line: line, text: src[line.Start:line.End]})
	}
	return fm, nil
}

// layoutFile emits one file's snippet:
//
//	  ┌── test:2:9 ───
//	  │
//	2 │ (+ test "")
//	  │         ^^ expected `Int` but found `String`
//	  │
func layoutFile(entries []Entry, mf *markedFile, outerPadding int) []Entry {
	if len(mf.marks) == 0 {
		return entries
	}

	// The block locus comes from the first (lowest-sorted) mark.
	first := &mf.marks[0]
	firstLine := first.lines[0]
	entries = append(entries, SourceStartEntry{
		OuterPadding: outerPadding,
		Locus: source.Locus{
			Origin: mf.origin,
			Line:   firstLine.line.Number,
			Column: source.ColumnNumber(firstLine.text, firstLine.line.Start, first.start),
		},
	})

	for i := range mf.marks {
		if i == 0 {
			entries = append(entries, SourceEmptyEntry{OuterPadding: outerPadding})
		} else {
			entries = append(entries, SourceBreakEntry{OuterPadding: outerPadding})
		}
		entries = layoutMark(entries, &mf.marks[i], outerPadding)
	}

	return append(entries, SourceEmptyEntry{OuterPadding: outerPadding})
}

func layoutMark(entries []Entry, fm *fileMark, outerPadding int) []Entry {
	startLine := fm.lines[0]

	if len(fm.lines) == 1 {
		// Single line
		//
		//	2 │ (+ test "")
		//	  │         ^^ expected `Int` but found `String`
		return append(entries, SourceLineEntry{
			OuterPadding: outerPadding,
			LineNumber:   startLine.line.Number,
			Source:       startLine.text,
			Marks: []*LineMark{{
				Severity: fm.severity,
				Primary:  fm.primary,
				Mark: SingleMark{
					Start:   fm.start - startLine.line.Start,
					End:     fm.end - startLine.line.Start,
					Message: fm.message,
				},
			}},
		})
	}

	// Multiple lines
	//
	//	4 │   fizz₁ num = case (mod num 5) (mod num 3) of
	//	  │ ╭─────────────^
	//	5 │ │     0 0 => "FizzBuzz"
	//	  │ ╰──────────────^ `case` clauses have incompatible types
	markStart := fm.start - startLine.line.Start
	prefix := sliceLine(startLine.text, 0, markStart)

	var topMark Mark
	if strings.TrimSpace(prefix) == "" {
		// Nothing of substance precedes the marked region, so the connector
		// starts flush at the border without taking an extra row.
		//
		//	4 │ ╭     case (mod num 5) (mod num 3) of
		topMark = MultiTopLeftMark{}
	} else {
		topMark = MultiTopMark{End: markStart}
	}
	entries = append(entries, SourceLineEntry{
		OuterPadding: outerPadding,
		LineNumber:   startLine.line.Number,
		Source:       startLine.text,
		Marks:        []*LineMark{{Severity: fm.severity, Primary: fm.primary, Mark: topMark}},
	})

	for _, ml := range fm.lines[1 : len(fm.lines)-1] {
		entries = append(entries, SourceLineEntry{
			OuterPadding: outerPadding,
			LineNumber:   ml.line.Number,
			Source:       ml.text,
			Marks:        []*LineMark{{Severity: fm.severity, Primary: fm.primary, Mark: MultiLeftMark{}}},
		})
	}

	endLine := fm.lines[len(fm.lines)-1]
	return append(entries, SourceLineEntry{
		OuterPadding: outerPadding,
		LineNumber:   endLine.line.Number,
		Source:       endLine.text,
		Marks: []*LineMark{{
			Severity: fm.severity,
			Primary:  fm.primary,
			Mark: MultiBottomMark{
				End:     fm.end - endLine.line.Start,
				Message: fm.message,
			},
		}},
	})
}

// Render writes the rich form of one diagnostic to the sink. Rendering is
// synchronous and deterministic; it retains nothing after returning. The
// first resolution or sink failure aborts the render, possibly after partial
// output.
func Render(d diag.Diagnostic, files Files, sink Sink, cfg *Config) error {
	entries, err := Layout(d, files)
	if err != nil {
		return err
	}
	return NewRenderer(sink, cfg).RenderAll(entries)
}
