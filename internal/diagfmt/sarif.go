package diagfmt

import (
	"encoding/json"
	"io"

	"redline/internal/diag"
	"redline/internal/source"
)

// SarifRunMeta provides metadata for SARIF output.
type SarifRunMeta struct {
	ToolName       string
	ToolVersion    string
	InvocationArgs []string
}

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

type sarifInvocation struct {
	CommandLine     string `json:"commandLine"`
	ExecutionStatus bool   `json:"executionSuccessful"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId,omitempty"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
	Message          *sarifMessage         `json:"message,omitempty"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   uint32 `json:"startLine"`
	StartColumn uint32 `json:"startColumn"`
	EndLine     uint32 `json:"endLine"`
	EndColumn   uint32 `json:"endColumn"`
}

func sarifLevel(sev diag.Severity) string {
	switch sev {
	case diag.SevBug, diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	}
	return "note"
}

// Sarif форматирует диагностики в SARIF формат (v2.1.0).
func Sarif(w io.Writer, bag *diag.Bag, fs *source.FileSet, meta SarifRunMeta) error {
	run := sarifRun{
		Tool: sarifTool{
			Driver: sarifDriver{
				Name:    meta.ToolName,
				Version: meta.ToolVersion,
			},
		},
		Results: make([]sarifResult, 0, bag.Len()),
	}
	if len(meta.InvocationArgs) > 0 {
		commandLine := ""
		for i, arg := range meta.InvocationArgs {
			if i > 0 {
				commandLine += " "
			}
			commandLine += arg
		}
		run.Invocations = []sarifInvocation{{
			CommandLine:     commandLine,
			ExecutionStatus: !bag.HasErrors(),
		}}
	}

	for _, d := range bag.Items() {
		result := sarifResult{
			RuleID:  d.Code,
			Level:   sarifLevel(d.Severity),
			Message: sarifMessage{Text: d.Message},
		}
		for _, label := range d.Labels {
			loc, err := sarifLocationFor(label, fs)
			if err != nil {
				return err
			}
			result.Locations = append(result.Locations, loc)
		}
		run.Results = append(run.Results, result)
	}

	log := sarifLog{
		Version: "2.1.0",
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Runs:    []sarifRun{run},
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(log)
}

func sarifLocationFor(label diag.Label, fs *source.FileSet) (sarifLocation, error) {
	f, ok := fs.Get(label.Span.File)
	if !ok {
		_, err := fs.Origin(label.Span.File)
		return sarifLocation{}, err
	}
	start, end, err := fs.Resolve(label.Span)
	if err != nil {
		return sarifLocation{}, err
	}

	loc := sarifLocation{
		PhysicalLocation: sarifPhysicalLocation{
			ArtifactLocation: sarifArtifactLocation{
				URI: f.FormatPath("relative", fs.BaseDir()),
			},
			Region: sarifRegion{
				StartLine:   start.Line,
				StartColumn: start.Col,
				EndLine:     end.Line,
				EndColumn:   end.Col,
			},
		},
	}
	if label.Message != "" {
		loc.Message = &sarifMessage{Text: label.Message}
	}
	return loc, nil
}
