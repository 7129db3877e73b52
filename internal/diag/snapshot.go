package diag

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"redline/internal/source"
)

// Current schema version - increment when the snapshot format changes.
const snapshotSchemaVersion uint16 = 1

// Snapshot is a serialized set of diagnostics plus the list of source files
// they reference. File references inside labels are indices into Files, which
// map 1:1 onto FileIDs when the files are registered into a fresh FileSet in
// order. Snapshots are the interchange format between diagnostic producers
// and the renderer: msgpack on disk, with a JSON twin for hand-written input.
type Snapshot struct {
	Schema      uint16               `json:"schema"`
	Tool        string               `json:"tool,omitempty"`
	Files       []string             `json:"files"`
	Diagnostics []SnapshotDiagnostic `json:"diagnostics"`
}

// SnapshotDiagnostic mirrors Diagnostic with plain serializable fields.
type SnapshotDiagnostic struct {
	Severity string          `json:"severity"`
	Code     string          `json:"code,omitempty"`
	Message  string          `json:"message"`
	Labels   []SnapshotLabel `json:"labels,omitempty"`
	Notes    []string        `json:"notes,omitempty"`
}

// SnapshotLabel mirrors Label. File is an index into Snapshot.Files.
type SnapshotLabel struct {
	File      uint32 `json:"file"`
	Start     uint32 `json:"start"`
	End       uint32 `json:"end"`
	Secondary bool   `json:"secondary,omitempty"`
	Message   string `json:"message,omitempty"`
}

// NewSnapshot captures a bag's diagnostics together with the file table of
// the FileSet they were produced against.
func NewSnapshot(fs *source.FileSet, bag *Bag, tool string) *Snapshot {
	s := &Snapshot{
		Schema: snapshotSchemaVersion,
		Tool:   tool,
	}
	for i := range fs.Len() {
		if f, ok := fs.Get(source.FileID(i)); ok {
			s.Files = append(s.Files, f.Path)
		}
	}
	for _, d := range bag.Items() {
		sd := SnapshotDiagnostic{
			Severity: d.Severity.String(),
			Code:     d.Code,
			Message:  d.Message,
			Notes:    d.Notes,
		}
		for _, l := range d.Labels {
			sd.Labels = append(sd.Labels, SnapshotLabel{
				File:      uint32(l.Span.File),
				Start:     l.Span.Start,
				End:       l.Span.End,
				Secondary: l.Style == LabelSecondary,
				Message:   l.Message,
			})
		}
		s.Diagnostics = append(s.Diagnostics, sd)
	}
	return s
}

// Diags converts the snapshot's diagnostics back into the in-memory model.
// File indices are used as FileIDs directly.
func (s *Snapshot) Diags() ([]Diagnostic, error) {
	out := make([]Diagnostic, 0, len(s.Diagnostics))
	for _, sd := range s.Diagnostics {
		sev, err := parseSeverity(sd.Severity)
		if err != nil {
			return nil, err
		}
		d := Diagnostic{
			Severity: sev,
			Code:     sd.Code,
			Message:  sd.Message,
			Notes:    sd.Notes,
		}
		for _, l := range sd.Labels {
			if int(l.File) >= len(s.Files) {
				return nil, fmt.Errorf("snapshot label references file %d of %d", l.File, len(s.Files))
			}
			if l.Start > l.End {
				return nil, fmt.Errorf("snapshot label range %d..%d is inverted", l.Start, l.End)
			}
			style := LabelPrimary
			if l.Secondary {
				style = LabelSecondary
			}
			d.Labels = append(d.Labels, Label{
				Span:    source.Span{File: source.FileID(l.File), Start: l.Start, End: l.End},
				Style:   style,
				Message: l.Message,
			})
		}
		out = append(out, d)
	}
	return out, nil
}

func parseSeverity(s string) (Severity, error) {
	switch strings.ToLower(s) {
	case "help":
		return SevHelp, nil
	case "note", "info":
		return SevNote, nil
	case "warning":
		return SevWarning, nil
	case "error":
		return SevError, nil
	case "bug":
		return SevBug, nil
	}
	return 0, fmt.Errorf("unknown severity %q", s)
}

// SaveSnapshot serializes a snapshot to path with msgpack. The write is
// atomic: a temp file in the target directory followed by rename.
func SaveSnapshot(path string, s *Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(f.Name())
	}()

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(s); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), path)
}

// LoadSnapshot reads a snapshot from path. Extension ".json" selects the
// JSON twin format, anything else is decoded as msgpack.
func LoadSnapshot(path string) (*Snapshot, error) {
	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s Snapshot
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
		}
	} else {
		if err := msgpack.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
		}
	}
	if s.Schema != snapshotSchemaVersion {
		return nil, fmt.Errorf("snapshot %s has schema %d, want %d", path, s.Schema, snapshotSchemaVersion)
	}
	return &s, nil
}
