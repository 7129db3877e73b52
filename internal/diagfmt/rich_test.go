package diagfmt

import (
	"testing"

	"redline/internal/diag"
	"redline/internal/source"
)

func span(file source.FileID, start, end uint32) source.Span {
	return source.Span{File: file, Start: start, End: end}
}

func TestLayoutSingleLine(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test", []byte("foo\nbar\n"))

	d := diag.New(diag.SevError, "mismatch").
		WithCode("E0001").
		WithLabel(span(id, 4, 7), "oops").
		WithNote("a note")

	entries, err := Layout(d, fs)
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}

	// Header, Empty, SourceStart, SourceEmpty, SourceLine, SourceEmpty,
	// SourceNote, Empty
	if len(entries) != 8 {
		t.Fatalf("Expected 8 entries, got %d: %#v", len(entries), entries)
	}

	header, ok := entries[0].(HeaderEntry)
	if !ok {
		t.Fatalf("Expected HeaderEntry first, got %T", entries[0])
	}
	if header.Severity != diag.SevError || header.Code != "E0001" || header.Message != "mismatch" {
		t.Errorf("Unexpected header: %+v", header)
	}
	if header.Locus != nil {
		t.Error("Expected no locus on a rich header")
	}

	start, ok := entries[2].(SourceStartEntry)
	if !ok {
		t.Fatalf("Expected SourceStartEntry third, got %T", entries[2])
	}
	if start.Locus.Origin != "test" || start.Locus.Line != 2 || start.Locus.Column != 1 {
		t.Errorf("Expected locus test:2:1, got %v", start.Locus)
	}

	line, ok := entries[4].(SourceLineEntry)
	if !ok {
		t.Fatalf("Expected SourceLineEntry fifth, got %T", entries[4])
	}
	if line.LineNumber != 2 || line.Source != "bar\n" {
		t.Errorf("Unexpected source line: %+v", line)
	}
	if len(line.Marks) != 1 {
		t.Fatalf("Expected 1 mark, got %d", len(line.Marks))
	}
	single, ok := line.Marks[0].Mark.(SingleMark)
	if !ok {
		t.Fatalf("Expected SingleMark, got %T", line.Marks[0].Mark)
	}
	// Смещения относительно начала строки
	if single.Start != 0 || single.End != 3 || single.Message != "oops" {
		t.Errorf("Unexpected single mark: %+v", single)
	}

	note, ok := entries[6].(SourceNoteEntry)
	if !ok || note.Message != "a note" {
		t.Errorf("Expected the note entry, got %T %v", entries[6], entries[6])
	}
	if _, ok := entries[7].(EmptyEntry); !ok {
		t.Errorf("Expected a trailing EmptyEntry, got %T", entries[7])
	}
}

func TestLayoutMultiLineTopLeft(t *testing.T) {
	fs := source.NewFileSet()
	// Перед началом метки только пробелы: коннектор стартует у границы
	id := fs.AddVirtual("test", []byte("fn main() {\n  let x = 1\n  return x\n}\n"))

	d := diag.New(diag.SevError, "bad flow").WithLabel(span(id, 14, 34), "spans here")
	entries, err := Layout(d, fs)
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}

	var lines []SourceLineEntry
	for _, e := range entries {
		if sl, ok := e.(SourceLineEntry); ok {
			lines = append(lines, sl)
		}
	}
	if len(lines) != 2 {
		t.Fatalf("Expected 2 source lines, got %d", len(lines))
	}
	if _, ok := lines[0].Marks[0].Mark.(MultiTopLeftMark); !ok {
		t.Errorf("Expected MultiTopLeftMark on the first line, got %T", lines[0].Marks[0].Mark)
	}
	bottom, ok := lines[1].Marks[0].Mark.(MultiBottomMark)
	if !ok {
		t.Fatalf("Expected MultiBottomMark on the last line, got %T", lines[1].Marks[0].Mark)
	}
	if bottom.End != 10 || bottom.Message != "spans here" {
		t.Errorf("Unexpected bottom mark: %+v", bottom)
	}
}

func TestLayoutMultiLineTopWithPrefix(t *testing.T) {
	fs := source.NewFileSet()
	// Перед началом метки есть значимый текст: нужна верхняя линейка
	id := fs.AddVirtual("test", []byte("foo bar\nbaz\n"))

	d := diag.New(diag.SevError, "x").WithLabel(span(id, 4, 10), "msg")
	entries, err := Layout(d, fs)
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}

	var lines []SourceLineEntry
	for _, e := range entries {
		if sl, ok := e.(SourceLineEntry); ok {
			lines = append(lines, sl)
		}
	}
	if len(lines) != 2 {
		t.Fatalf("Expected 2 source lines, got %d", len(lines))
	}
	top, ok := lines[0].Marks[0].Mark.(MultiTopMark)
	if !ok {
		t.Fatalf("Expected MultiTopMark, got %T", lines[0].Marks[0].Mark)
	}
	if top.End != 4 {
		t.Errorf("Expected top mark end 4, got %d", top.End)
	}
}

func TestLayoutInteriorLines(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test", []byte("a\nb\nc\nd\n"))

	// Метка через четыре строки: две внутренние получают MultiLeftMark
	d := diag.New(diag.SevWarning, "w").WithLabel(span(id, 0, 7), "")
	entries, err := Layout(d, fs)
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}

	var kinds []string
	for _, e := range entries {
		sl, ok := e.(SourceLineEntry)
		if !ok {
			continue
		}
		switch sl.Marks[0].Mark.(type) {
		case MultiTopLeftMark:
			kinds = append(kinds, "topleft")
		case MultiTopMark:
			kinds = append(kinds, "top")
		case MultiLeftMark:
			kinds = append(kinds, "left")
		case MultiBottomMark:
			kinds = append(kinds, "bottom")
		}
	}
	want := []string{"topleft", "left", "left", "bottom"}
	if len(kinds) != len(want) {
		t.Fatalf("Expected %v, got %v", want, kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("Mark kind[%d]: expected %s, got %s", i, want[i], kinds[i])
		}
	}
}

func TestLayoutFileGrouping(t *testing.T) {
	fs := source.NewFileSet()
	idA := fs.AddVirtual("a", []byte("alpha\nbeta\n"))
	idB := fs.AddVirtual("b", []byte("gamma\n"))

	// Labels чередуются между файлами; порядок файлов - по первому упоминанию,
	// внутри файла - по (start, end)
	d := diag.New(diag.SevError, "x").
		WithLabel(span(idA, 6, 10), "late in a").
		WithLabel(span(idB, 0, 5), "in b").
		WithSecondaryLabel(span(idA, 0, 5), "early in a")

	entries, err := Layout(d, fs)
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}

	var starts []SourceStartEntry
	var lineMessages []string
	for _, e := range entries {
		switch v := e.(type) {
		case SourceStartEntry:
			starts = append(starts, v)
		case SourceLineEntry:
			if sm, ok := v.Marks[0].Mark.(SingleMark); ok {
				lineMessages = append(lineMessages, sm.Message)
			}
		}
	}

	if len(starts) != 2 {
		t.Fatalf("Expected 2 snippets, got %d", len(starts))
	}
	if starts[0].Locus.Origin != "a" || starts[1].Locus.Origin != "b" {
		t.Errorf("Expected file order [a b], got [%s %s]", starts[0].Locus.Origin, starts[1].Locus.Origin)
	}
	// Блок файла a открывается по наименьшей метке
	if starts[0].Locus.Line != 1 || starts[0].Locus.Column != 1 {
		t.Errorf("Expected snippet a to open at 1:1, got %d:%d", starts[0].Locus.Line, starts[0].Locus.Column)
	}

	want := []string{"early in a", "late in a", "in b"}
	if len(lineMessages) != len(want) {
		t.Fatalf("Expected messages %v, got %v", want, lineMessages)
	}
	for i := range want {
		if lineMessages[i] != want[i] {
			t.Errorf("Mark order[%d]: expected %q, got %q", i, want[i], lineMessages[i])
		}
	}
}

func TestLayoutBreakBetweenMarks(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test", []byte("one\ntwo\nthree\n"))

	d := diag.New(diag.SevError, "x").
		WithLabel(span(id, 0, 3), "first").
		WithLabel(span(id, 8, 13), "second")

	entries, err := Layout(d, fs)
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}

	breaks := 0
	for _, e := range entries {
		if _, ok := e.(SourceBreakEntry); ok {
			breaks++
		}
	}
	if breaks != 1 {
		t.Errorf("Expected 1 break between marks, got %d", breaks)
	}
}

func TestLayoutOuterPadding(t *testing.T) {
	fs := source.NewFileSet()
	content := ""
	for range 9 {
		content += "x\n"
	}
	content += "yy\n"
	id := fs.AddVirtual("test", []byte(content))

	d := diag.New(diag.SevError, "x").WithLabel(span(id, 18, 20), "")
	entries, err := Layout(d, fs)
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	for _, e := range entries {
		if sl, ok := e.(SourceLineEntry); ok {
			if sl.OuterPadding != 2 {
				t.Errorf("Expected padding 2 for line 10, got %d", sl.OuterPadding)
			}
			if sl.LineNumber != 10 {
				t.Errorf("Expected line 10, got %d", sl.LineNumber)
			}
		}
	}
}

func TestLayoutHeaderOnly(t *testing.T) {
	fs := source.NewFileSet()
	d := diag.New(diag.SevWarning, "global concern")

	entries, err := Layout(d, fs)
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	// Header + trailing Empty, никаких сниппетов
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d: %#v", len(entries), entries)
	}
	if _, ok := entries[0].(HeaderEntry); !ok {
		t.Errorf("Expected a header, got %T", entries[0])
	}
	if _, ok := entries[1].(EmptyEntry); !ok {
		t.Errorf("Expected a trailing empty entry, got %T", entries[1])
	}
}

func TestLayoutFailures(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test", []byte("foo\n"))

	inverted := diag.Diagnostic{
		Severity: diag.SevError,
		Message:  "x",
		Labels:   []diag.Label{{Span: span(id, 3, 1), Style: diag.LabelPrimary}},
	}
	if _, err := Layout(inverted, fs); err == nil {
		t.Error("Expected an error for an inverted range")
	}

	past := diag.New(diag.SevError, "x").WithLabel(span(id, 0, 99), "")
	if _, err := Layout(past, fs); err == nil {
		t.Error("Expected an error for a range past the end of the file")
	}

	unknown := diag.New(diag.SevError, "x").WithLabel(span(source.FileID(42), 0, 1), "")
	if _, err := Layout(unknown, fs); err == nil {
		t.Error("Expected an error for an unknown file")
	}
}

func TestLayoutDeterministic(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test", []byte("foo bar baz\n"))

	d := diag.New(diag.SevError, "x").
		WithLabel(span(id, 8, 11), "third").
		WithLabel(span(id, 0, 3), "first").
		WithLabel(span(id, 4, 7), "second")

	a, err := Layout(d, fs)
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	b, err := Layout(d, fs)
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("Expected identical entry counts, got %d vs %d", len(a), len(b))
	}

	var messages []string
	for _, e := range a {
		if sl, ok := e.(SourceLineEntry); ok {
			if sm, ok := sl.Marks[0].Mark.(SingleMark); ok {
				messages = append(messages, sm.Message)
			}
		}
	}
	want := []string{"first", "second", "third"}
	for i := range want {
		if messages[i] != want[i] {
			t.Errorf("Mark order[%d]: expected %q, got %q", i, want[i], messages[i])
		}
	}
}
