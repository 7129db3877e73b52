package diagfmt

import (
	"encoding/json"
	"io"

	"redline/internal/diag"
	"redline/internal/source"
)

// LocationJSON представляет местоположение в файле для JSON
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// LabelJSON представляет label для JSON
type LabelJSON struct {
	Location  LocationJSON `json:"location"`
	Secondary bool         `json:"secondary,omitempty"`
	Message   string       `json:"message,omitempty"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity string      `json:"severity"`
	Code     string      `json:"code,omitempty"`
	Message  string      `json:"message"`
	Labels   []LabelJSON `json:"labels,omitempty"`
	Notes    []string    `json:"notes,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

// makeLocation создаёт LocationJSON из Span
func makeLocation(span source.Span, fs *source.FileSet, pathMode PathMode, includePositions bool) (LocationJSON, error) {
	f, ok := fs.Get(span.File)
	if !ok {
		_, err := fs.Origin(span.File)
		return LocationJSON{}, err
	}

	loc := LocationJSON{
		File:      f.FormatPath(pathMode.formatMode(), fs.BaseDir()),
		StartByte: span.Start,
		EndByte:   span.End,
	}

	if includePositions {
		startPos, endPos, err := fs.Resolve(span)
		if err != nil {
			return LocationJSON{}, err
		}
		loc.StartLine = startPos.Line
		loc.StartCol = startPos.Col
		loc.EndLine = endPos.Line
		loc.EndCol = endPos.Col
	}

	return loc, nil
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) (DiagnosticsOutput, error) {
	items := clipItems(bag.Items(), opts.Max)
	diagnostics := make([]DiagnosticJSON, 0, len(items))

	for _, d := range items {
		diagJSON := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code,
			Message:  d.Message,
		}

		for _, label := range d.Labels {
			loc, err := makeLocation(label.Span, fs, opts.PathMode, opts.IncludePositions)
			if err != nil {
				return DiagnosticsOutput{}, err
			}
			diagJSON.Labels = append(diagJSON.Labels, LabelJSON{
				Location:  loc,
				Secondary: label.Style == diag.LabelSecondary,
				Message:   label.Message,
			})
		}

		if opts.IncludeNotes {
			diagJSON.Notes = d.Notes
		}

		diagnostics = append(diagnostics, diagJSON)
	}

	return DiagnosticsOutput{
		Diagnostics: diagnostics,
		Count:       len(diagnostics),
	}, nil
}

// JSON форматирует диагностики в JSON формат.
// Выводит массив диагностик с полной информацией о местоположении и заметках.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	output, err := BuildDiagnosticsOutput(bag, fs, opts)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
