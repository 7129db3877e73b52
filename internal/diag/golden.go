package diag

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"redline/internal/source"
)

type compactLine struct {
	Severity string
	Code     string
	Path     string
	Line     uint32
	Column   uint32
	Message  string
}

// FormatCompact renders diagnostics into a stable, single-line-per-entry
// representation suitable for golden files and the CLI compact format.
// Entries are sorted deterministically and returned as a single string
// (empty when nothing remains). Secondary labels become "note" lines when
// includeSecondary is set.
func FormatCompact(diags []Diagnostic, fs *source.FileSet, includeSecondary bool) (string, error) {
	if fs == nil || len(diags) == 0 {
		return "", nil
	}

	rendered := make([]compactLine, 0, len(diags))
	for i := range diags {
		var err error
		rendered, err = appendCompact(rendered, &diags[i], fs, includeSecondary)
		if err != nil {
			return "", err
		}
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Column != dj.Column {
			return di.Column < dj.Column
		}
		if di.Severity != dj.Severity {
			return di.Severity < dj.Severity
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		return di.Message < dj.Message
	})

	var b strings.Builder
	for i, d := range rendered {
		if d.Path == "" {
			fmt.Fprintf(&b, "%s %s %s", d.Severity, d.Code, d.Message)
		} else {
			fmt.Fprintf(&b, "%s %s %s:%d:%d %s", d.Severity, d.Code, d.Path, d.Line, d.Column, d.Message)
		}
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

func appendCompact(out []compactLine, d *Diagnostic, fs *source.FileSet, includeSecondary bool) ([]compactLine, error) {
	line := compactLine{
		Severity: d.Severity.String(),
		Code:     d.Code,
		Message:  sanitizeMessage(d.Message),
	}
	if sp, ok := d.PrimarySpan(); ok {
		loc, err := resolveSpanStart(fs, sp)
		if err != nil {
			return nil, err
		}
		line.Path, line.Line, line.Column = loc.Path, loc.Line, loc.Column
	}
	out = append(out, line)

	if includeSecondary {
		for _, label := range d.Labels {
			if label.Style != LabelSecondary || label.Message == "" {
				continue
			}
			loc, err := resolveSpanStart(fs, label.Span)
			if err != nil {
				return nil, err
			}
			out = append(out, compactLine{
				Severity: "note",
				Code:     d.Code,
				Path:     loc.Path,
				Line:     loc.Line,
				Column:   loc.Column,
				Message:  sanitizeMessage(label.Message),
			})
		}
	}

	return out, nil
}

type resolvedSpan struct {
	Path   string
	Line   uint32
	Column uint32
}

func resolveSpanStart(fs *source.FileSet, span source.Span) (resolvedSpan, error) {
	file, ok := fs.Get(span.File)
	if !ok {
		return resolvedSpan{}, fmt.Errorf("%w: id %d", source.ErrFileNotFound, span.File)
	}
	start, _, err := fs.Resolve(span)
	if err != nil {
		return resolvedSpan{}, err
	}
	return resolvedSpan{
		Path:   normalizePath(file.FormatPath("relative", fs.BaseDir())),
		Line:   start.Line,
		Column: start.Col,
	}, nil
}

func normalizePath(path string) string {
	p := filepath.ToSlash(path)
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return p
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
