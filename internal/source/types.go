package source

import "fmt"

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32 // просто ID источника
	// FileFlags encodes metadata about a source file.
	FileFlags uint8 // метаданные
)

const (
	// FileVirtual indicates the file was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota // добавлен не с диска (тест, stdin)
	FileHadBOM
	FileNormalizedCRLF
)

// File captures metadata and content for a single source file.
//
// LineStarts holds the byte offset of the first byte of every line, starting
// with 0 for the first line. A virtual final line start at len(Content) is
// implied but not stored, so a file without a trailing newline still resolves
// its last line to a well-formed range.
type File struct {
	ID         FileID
	Path       string
	Content    []byte
	LineStarts []uint32
	Hash       [32]byte
	Flags      FileFlags
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}

// Line is a resolved source line: a 0-based index, its 1-based display number
// (Number == Index+1), and the half-open byte range [Start, End) the line
// occupies in the file content. The range includes the line terminator when
// one is present.
type Line struct {
	Index  int
	Number int
	Start  int
	End    int
}

// Locus is a display-ready resolved position: a human-readable origin plus
// 1-based line and column numbers.
type Locus struct {
	Origin string
	Line   int
	Column int
}

func (l Locus) String() string {
	return fmt.Sprintf("%s:%d:%d", l.Origin, l.Line, l.Column)
}
