package diagfmt

import (
	"io"

	"redline/internal/diag"
	"redline/internal/source"
)

// pathModeFiles overrides Origin to honor a PathMode while delegating
// resolution to the FileSet.
type pathModeFiles struct {
	fs   *source.FileSet
	mode PathMode
}

func (p pathModeFiles) Origin(id source.FileID) (string, error) {
	f, ok := p.fs.Get(id)
	if !ok {
		_, err := p.fs.Origin(id)
		return "", err
	}
	return f.FormatPath(p.mode.formatMode(), p.fs.BaseDir()), nil
}

func (p pathModeFiles) Source(id source.FileID) (string, error) {
	return p.fs.Source(id)
}

func (p pathModeFiles) LineIndex(id source.FileID, byteIndex int) (int, error) {
	return p.fs.LineIndex(id, byteIndex)
}

func (p pathModeFiles) Line(id source.FileID, lineIndex int) (source.Line, error) {
	return p.fs.Line(id, lineIndex)
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает заголовок, затем фрагменты исходников
// с подчёркиванием по каждому label, затем notes.
// Цвет включается опцией.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, cfg *Config, opts PrettyOpts) error {
	sink := newSink(w, cfg, opts.Color)
	files := pathModeFiles{fs: fs, mode: opts.PathMode}

	for _, d := range clipItems(bag.Items(), opts.Max) {
		if err := Render(d, files, sink, cfg); err != nil {
			return err
		}
	}
	return nil
}

// Short форматирует диагностики в однострочный вид: по одному заголовку с
// позицией на каждый primary label.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, cfg *Config, opts PrettyOpts) error {
	sink := newSink(w, cfg, opts.Color)
	files := pathModeFiles{fs: fs, mode: opts.PathMode}

	for _, d := range clipItems(bag.Items(), opts.Max) {
		if err := RenderShort(d, files, sink, cfg); err != nil {
			return err
		}
	}
	return nil
}

func newSink(w io.Writer, cfg *Config, colored bool) Sink {
	if !colored {
		return NewPlainSink(w)
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return NewColorSink(w, cfg.Styles)
}

func clipItems(items []diag.Diagnostic, maxItems int) []diag.Diagnostic {
	if maxItems > 0 && maxItems < len(items) {
		return items[:maxItems]
	}
	return items
}
