package checks

import (
	"github.com/ingo-eichhorst/modguard/internal/pyparse"
	"github.com/ingo-eichhorst/modguard/pkg/types"
)

// ApplySuppression filters diagnostics by the file's ignore directives,
// returning the diagnostics that survive plus a per-directive used flag (index-aligned with directives) recording
// whether that directive suppressed at least one diagnostic. Global
// diagnostics are never suppressed since they carry no file/line.
func ApplySuppression(diagnostics []types.Diagnostic, directives []types.IgnoreDirective) ([]types.Diagnostic, []bool) {
	used := make([]bool, len(directives))

	var surviving []types.Diagnostic
	for _, d := range diagnostics {
		if d.IsGlobal() || d.Details.Code == nil {
			surviving = append(surviving, d)
			continue
		}

		suppressed := false
		for i, dir := range directives {
			if dir.Redundant {
				continue // a redundant directive never participates in suppression
			}
			if pyparse.Suppresses(dir, d.LineNumber, d.Details.Code.ImportModulePath) {
				used[i] = true
				suppressed = true
			}
		}
		if !suppressed {
			surviving = append(surviving, d)
		}
	}

	return surviving, used
}

// CheckIgnoreDirectiveHygiene must run after every other checker on a
// file and observes which diagnostics
// each directive actually suppressed (via ApplySuppression's used
// slice). Redundant directives are always reported as unused,
// regardless of whether they would otherwise have matched something.
func CheckIgnoreDirectiveHygiene(directives []types.IgnoreDirective, used []bool, rules types.RulesConfig, relativeFilePath string) []types.Diagnostic {
	var diagnostics []types.Diagnostic

	for i, dir := range directives {
		if dir.Redundant {
			if sev, ok := severityFor(rules.UnusedIgnoreDirectives); ok {
				diagnostics = append(diagnostics, unusedIgnoreDiagnostic(sev, relativeFilePath, dir))
			}
			continue
		}

		if !used[i] {
			if sev, ok := severityFor(rules.UnusedIgnoreDirectives); ok {
				diagnostics = append(diagnostics, unusedIgnoreDiagnostic(sev, relativeFilePath, dir))
			}
		}

		if dir.Reason == "" {
			if sev, ok := severityFor(rules.RequireIgnoreDirectiveReasons); ok {
				diagnostics = append(diagnostics, types.Diagnostic{
					Severity:   sev,
					FilePath:   relativeFilePath,
					LineNumber: dir.LineNo,
					Details: types.DiagnosticDetails{
						Code: &types.CodeDiagnostic{Kind: types.KindMissingIgnoreReason},
					},
				})
			}
		}
	}

	return diagnostics
}

func unusedIgnoreDiagnostic(sev types.Severity, relativeFilePath string, dir types.IgnoreDirective) types.Diagnostic {
	return types.Diagnostic{
		Severity:   sev,
		FilePath:   relativeFilePath,
		LineNumber: dir.LineNo,
		Details: types.DiagnosticDetails{
			Code: &types.CodeDiagnostic{Kind: types.KindUnusedIgnoreDirective},
		},
	}
}
