// Package checks implements the independent per-file checkers that run
// against a parsed, import-extracted file: internal dependency / layer,
// external dependency, and ignore-directive hygiene.
package checks

import "github.com/ingo-eichhorst/modguard/pkg/types"

// severityFor maps a configured RuleSeverity to a Diagnostic Severity.
// ok is false when the rule is off, meaning no diagnostic should be
// emitted at all.
func severityFor(rule types.RuleSeverity) (severity types.Severity, ok bool) {
	switch rule {
	case types.RuleOff:
		return "", false
	case types.RuleWarn:
		return types.SeverityWarning, true
	default: // "" defaults to error, same as RuleError
		return types.SeverityError, true
	}
}
