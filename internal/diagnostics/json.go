// Package diagnostics renders a pipeline.Result as JSON or as a
// human-readable terminal report, grouped by diagnostic category.
package diagnostics

import (
	"encoding/json"
	"io"

	"github.com/ingo-eichhorst/modguard/internal/pipeline"
	"github.com/ingo-eichhorst/modguard/pkg/types"
)

// Report is the top-level JSON output structure.
type Report struct {
	Version     string     `json:"version"`
	Diagnostics []JSONItem `json:"diagnostics"`
	Warnings    []JSONItem `json:"warnings,omitempty"`
}

// JSONItem is one diagnostic or warning in JSON form.
type JSONItem struct {
	Severity           string `json:"severity"`
	FilePath           string `json:"file_path,omitempty"`
	LineNumber         int    `json:"line_number,omitempty"`
	OriginalLineNumber int    `json:"original_line_number,omitempty"`
	Kind               string `json:"kind"`
	ImportModulePath   string `json:"import_mod_path,omitempty"`
	UsageModule        string `json:"usage_module,omitempty"`
	DefinitionModule   string `json:"definition_module,omitempty"`
	UsageLayer         string `json:"usage_layer,omitempty"`
	DefinitionLayer    string `json:"definition_layer,omitempty"`
	Dependency         string `json:"dependency,omitempty"`
	ModulePath         string `json:"module_path,omitempty"`
	Layer              string `json:"layer,omitempty"`
	Message            string `json:"message,omitempty"`
}

// BuildReport converts a pipeline.Result into a Report.
func BuildReport(result pipeline.Result) *Report {
	report := &Report{Version: "1"}
	for _, d := range result.Diagnostics {
		report.Diagnostics = append(report.Diagnostics, toJSONItem(d))
	}
	for _, w := range result.Warnings {
		report.Warnings = append(report.Warnings, toJSONItem(w))
	}
	return report
}

func toJSONItem(d types.Diagnostic) JSONItem {
	item := JSONItem{
		Severity:           string(d.Severity),
		FilePath:           d.FilePath,
		LineNumber:         d.LineNumber,
		OriginalLineNumber: d.OriginalLineNumber,
	}
	if c := d.Details.Code; c != nil {
		item.Kind = string(c.Kind)
		item.ImportModulePath = c.ImportModulePath
		item.UsageModule = c.UsageModule
		item.DefinitionModule = c.DefinitionModule
		item.UsageLayer = c.UsageLayer
		item.DefinitionLayer = c.DefinitionLayer
		item.Dependency = c.Dependency
		item.Message = c.Reason
	}
	if cfg := d.Details.Configuration; cfg != nil {
		item.Kind = string(cfg.Kind)
		item.ModulePath = cfg.ModulePath
		item.Layer = cfg.Layer
		item.Message = cfg.Message
	}
	return item
}

// RenderJSON writes the report to w with pretty-printed indentation.
func RenderJSON(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
