package diagfmt

import (
	"redline/internal/diag"
	"redline/internal/source"
)

// Entry is one render-agnostic output unit produced by the layout engine.
// The layout walk yields a finite, ordered entry sequence; the Renderer turns
// entries into text. Keeping the two apart makes layout decisions inspectable
// in tests without a sink.
type Entry interface {
	isEntry()
}

// HeaderEntry opens a diagnostic: severity, optional code and the message.
// Locus is set in short mode only.
type HeaderEntry struct {
	Locus    *source.Locus
	Severity diag.Severity
	Code     string
	Message  string
}

// EmptyEntry is a blank separator line.
type EmptyEntry struct{}

// SourceStartEntry opens a file snippet with its resolved locus:
//
//	┌── test:2:9 ───
type SourceStartEntry struct {
	OuterPadding int
	Locus        source.Locus
}

// SourceBreakEntry separates non-contiguous annotated regions within one file.
type SourceBreakEntry struct {
	OuterPadding int
}

// SourceEmptyEntry is a bare border line inside a snippet.
type SourceEmptyEntry struct {
	OuterPadding int
}

// SourceLineEntry is one line of source text with its marks. Source keeps the
// line terminator; the renderer trims it. A nil mark slot renders as plain
// source.
type SourceLineEntry struct {
	OuterPadding int
	LineNumber   int
	Source       string
	Marks        []*LineMark
}

// SourceNoteEntry is a trailing free-text note:
//
//	= expected type `Int`
type SourceNoteEntry struct {
	OuterPadding int
	Message      string
}

func (HeaderEntry) isEntry()      {}
func (EmptyEntry) isEntry()       {}
func (SourceStartEntry) isEntry() {}
func (SourceBreakEntry) isEntry() {}
func (SourceEmptyEntry) isEntry() {}
func (SourceLineEntry) isEntry()  {}
func (SourceNoteEntry) isEntry()  {}

// LineMark pairs a connector shape with the severity it renders under.
// Primary marks use the diagnostic's severity style; secondary marks use the
// neutral secondary style. Severity affects color only, never shape.
type LineMark struct {
	Severity diag.Severity
	Primary  bool
	Mark     Mark
}

// Mark is the connector shape drawn for one label on one line.
type Mark interface {
	isMark()
}

// SingleMark underlines [Start, End) on a single line and carries the label
// message. Offsets are bytes relative to the line start.
type SingleMark struct {
	Start   int
	End     int
	Message string
}

// MultiTopLeftMark begins a multi-line connector flush at the left border;
// nothing of substance precedes the marked region on its first line.
type MultiTopLeftMark struct{}

// MultiTopMark begins a multi-line connector with an underline running
// beneath the unmarked prefix, up to byte offset End relative to line start.
type MultiTopMark struct {
	End int
}

// MultiLeftMark continues a multi-line connector through a fully covered line.
type MultiLeftMark struct{}

// MultiBottomMark closes a multi-line connector with an underline up to byte
// offset End relative to line start, carrying the label message.
type MultiBottomMark struct {
	End     int
	Message string
}

func (SingleMark) isMark()       {}
func (MultiTopLeftMark) isMark() {}
func (MultiTopMark) isMark()     {}
func (MultiLeftMark) isMark()    {}
func (MultiBottomMark) isMark()  {}
