package diagfmt

import (
	"redline/internal/source"
)

// Files is the source-table capability the renderer consumes: resolve a file
// to its origin and content, a byte offset to a line index, and a line index
// to a line range. Answers must be stable for the duration of one render
// call; the renderer performs no independent bounds checking and treats any
// failed query as fatal. *source.FileSet implements Files.
type Files interface {
	Origin(id source.FileID) (string, error)
	Source(id source.FileID) (string, error)
	LineIndex(id source.FileID, byteIndex int) (int, error)
	Line(id source.FileID, lineIndex int) (source.Line, error)
}

var _ Files = (*source.FileSet)(nil)
