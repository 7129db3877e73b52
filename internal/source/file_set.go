package source

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"fortio.org/safecast"
)

// Resolution failures. A diagnostic referencing a file or byte range the
// FileSet does not know about is a caller defect, not a transient condition;
// rendering aborts on the first of these.
var (
	ErrFileNotFound     = errors.New("source: file not found")
	ErrLineOutOfRange   = errors.New("source: line index out of range")
	ErrOffsetOutOfRange = errors.New("source: byte offset out of range")
)

// FileSet manages a collection of source files and resolves byte offsets to
// lines and columns. It implements the source-table capability the renderer
// consumes. A FileSet must not be mutated while a render call is in flight;
// read-only sharing across concurrent renders is safe.
type FileSet struct {
	files   []File
	index   map[string]FileID // path -> id
	baseDir string            // базовая директория для относительных путей
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 0),
		index: make(map[string]FileID),
	}
}

// NewFileSetWithBase создаёт FileSet с заданной базовой директорией.
func NewFileSetWithBase(baseDir string) *FileSet {
	fs := NewFileSet()
	fs.baseDir = baseDir
	return fs
}

// SetBaseDir устанавливает базовую директорию для относительных путей.
func (fileSet *FileSet) SetBaseDir(dir string) {
	fileSet.baseDir = dir
}

// BaseDir возвращает текущую базовую директорию.
func (fileSet *FileSet) BaseDir() string {
	if fileSet.baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}
	return fileSet.baseDir
}

// Add stores a file from normalized bytes, computes LineStarts and Hash, and
// returns a new FileID. It always creates a new FileID even if a file with
// the same path already exists.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	hash := sha256.Sum256(content)
	lineStarts := buildLineStarts(content)
	normalizedPath := normalizePath(path)

	lenFiles, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	id := FileID(lenFiles)
	fileSet.files = append(fileSet.files, File{
		ID:         id,
		Path:       normalizedPath,
		Content:    content,
		LineStarts: lineStarts,
		Hash:       hash,
		Flags:      flags,
	})
	// Всегда обновляем индекс на последнюю версию файла
	fileSet.index[normalizedPath] = id
	return id
}

// Load reads a file from disk, normalizes CRLF/BOM, and calls Add.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	content, flags := Normalize(content)
	return fileSet.Add(path, content, flags), nil
}

// AddVirtual adds a virtual file (stdin, test, or generated) with the FileVirtual flag.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	return fileSet.Add(name, content, FileVirtual)
}

// Get returns the file metadata for the given ID.
func (fileSet *FileSet) Get(id FileID) (*File, bool) {
	if int(id) >= len(fileSet.files) {
		return nil, false
	}
	return &fileSet.files[id], true
}

// GetLatest returns the latest file ID for the given path, if it exists.
func (fileSet *FileSet) GetLatest(path string) (FileID, bool) {
	id, ok := fileSet.index[normalizePath(path)]
	return id, ok
}

// GetByPath возвращает *File по пути, если был загружен в этот FileSet.
func (fileSet *FileSet) GetByPath(path string) (*File, bool) {
	if id, ok := fileSet.index[normalizePath(path)]; ok {
		return &fileSet.files[id], true
	}
	return nil, false
}

// Len returns the number of stored files.
func (fileSet *FileSet) Len() int {
	return len(fileSet.files)
}

func (fileSet *FileSet) file(id FileID) (*File, error) {
	f, ok := fileSet.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrFileNotFound, id)
	}
	return f, nil
}

// Origin returns the displayable name of a file.
func (fileSet *FileSet) Origin(id FileID) (string, error) {
	f, err := fileSet.file(id)
	if err != nil {
		return "", err
	}
	return f.Path, nil
}

// Source returns the full content of a file.
func (fileSet *FileSet) Source(id FileID) (string, error) {
	f, err := fileSet.file(id)
	if err != nil {
		return "", err
	}
	return string(f.Content), nil
}

// LineIndex returns the 0-based index of the line whose half-open range
// contains byteIndex. byteIndex == len(content) maps to the final line;
// anything past that is ErrOffsetOutOfRange.
func (fileSet *FileSet) LineIndex(id FileID, byteIndex int) (int, error) {
	f, err := fileSet.file(id)
	if err != nil {
		return 0, err
	}
	if byteIndex < 0 || byteIndex > len(f.Content) {
		return 0, fmt.Errorf("%w: offset %d in %s (len %d)", ErrOffsetOutOfRange, byteIndex, f.Path, len(f.Content))
	}
	return f.lineIndex(byteIndex), nil
}

// Line returns the line at the given 0-based index.
func (fileSet *FileSet) Line(id FileID, lineIndex int) (Line, error) {
	f, err := fileSet.file(id)
	if err != nil {
		return Line{}, err
	}
	return f.Line(lineIndex)
}

// Resolve converts a span into 1-based start and end positions.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol, err error) {
	f, err := fileSet.file(span.File)
	if err != nil {
		return LineCol{}, LineCol{}, err
	}
	start, err = f.resolveOffset(int(span.Start))
	if err != nil {
		return LineCol{}, LineCol{}, err
	}
	end, err = f.resolveOffset(int(span.End))
	if err != nil {
		return LineCol{}, LineCol{}, err
	}
	return start, end, nil
}

// lineIndex assumes byteIndex is within [0, len(Content)]. Binary search over
// the monotonically increasing line starts: an exact match selects that line,
// an inexact match selects the preceding one.
func (f *File) lineIndex(byteIndex int) int {
	// sort.Search returns the first start strictly greater than byteIndex,
	// so the containing line sits one position earlier.
	next := sort.Search(len(f.LineStarts), func(i int) bool {
		return int(f.LineStarts[i]) > byteIndex
	})
	return next - 1
}

// LineStart returns the byte offset of the given line start. Index
// len(LineStarts) is the virtual final start at len(Content).
func (f *File) LineStart(lineIndex int) (int, error) {
	switch {
	case lineIndex < 0 || lineIndex > len(f.LineStarts):
		return 0, fmt.Errorf("%w: line %d in %s (%d lines)", ErrLineOutOfRange, lineIndex, f.Path, len(f.LineStarts))
	case lineIndex == len(f.LineStarts):
		return len(f.Content), nil
	default:
		return int(f.LineStarts[lineIndex]), nil
	}
}

// Line returns the line at the given 0-based index.
func (f *File) Line(lineIndex int) (Line, error) {
	start, err := f.LineStart(lineIndex)
	if err != nil {
		return Line{}, err
	}
	end, err := f.LineStart(lineIndex + 1)
	if err != nil {
		return Line{}, err
	}
	return Line{
		Index:  lineIndex,
		Number: lineIndex + 1,
		Start:  start,
		End:    end,
	}, nil
}

// LineCount returns the number of lines in the file.
func (f *File) LineCount() int {
	return len(f.LineStarts)
}

// LineSource returns the text of a line, including its terminator.
func (f *File) LineSource(line Line) string {
	return string(f.Content[line.Start:line.End])
}

func (f *File) resolveOffset(byteIndex int) (LineCol, error) {
	if byteIndex < 0 || byteIndex > len(f.Content) {
		return LineCol{}, fmt.Errorf("%w: offset %d in %s (len %d)", ErrOffsetOutOfRange, byteIndex, f.Path, len(f.Content))
	}
	idx := f.lineIndex(byteIndex)
	line, err := f.Line(idx)
	if err != nil {
		return LineCol{}, err
	}
	col := ColumnNumber(f.LineSource(line), line.Start, byteIndex)

	lineNum, err := safecast.Conv[uint32](line.Number)
	if err != nil {
		return LineCol{}, fmt.Errorf("line number overflow: %w", err)
	}
	colNum, err := safecast.Conv[uint32](col)
	if err != nil {
		return LineCol{}, fmt.Errorf("column number overflow: %w", err)
	}
	return LineCol{Line: lineNum, Col: colNum}, nil
}

// FormatPath форматирует путь к файлу в зависимости от режима.
// mode: "absolute", "relative", "basename", "auto"
// baseDir: базовая директория для относительных путей (игнорируется для других режимов)
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := AbsolutePath(f.Path); err == nil {
			return abs
		}
		return f.Path

	case "relative":
		if baseDir == "" {
			if wd, err := os.Getwd(); err == nil {
				baseDir = wd
			}
		}
		if rel, err := RelativePath(f.Path, baseDir); err == nil {
			return rel
		}
		return f.Path

	case "basename":
		return BaseName(f.Path)

	case "auto":
		// Auto: если путь короткий или относительный - как есть, иначе basename
		if len(f.Path) < 40 || !filepath.IsAbs(f.Path) {
			return f.Path
		}
		return BaseName(f.Path)

	default:
		return f.Path
	}
}
