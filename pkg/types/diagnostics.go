package types

// Severity is the severity of a diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// CodeDiagnosticKind enumerates the check-outcome diagnostics emitted by
// the internal/external/interface checkers.
type CodeDiagnosticKind string

const (
	KindUndeclaredDependency    CodeDiagnosticKind = "undeclared-dependency"
	KindForbiddenDependency     CodeDiagnosticKind = "forbidden-dependency"
	KindDeprecatedDependency    CodeDiagnosticKind = "deprecated-dependency"
	KindLayerViolation          CodeDiagnosticKind = "layer-violation"
	KindPrivateDependency       CodeDiagnosticKind = "private-dependency"
	KindInvalidDataTypeExport   CodeDiagnosticKind = "invalid-data-type-export"
	KindUndeclaredExternalDep   CodeDiagnosticKind = "undeclared-external-dependency"
	KindModuleUndeclaredExtDep  CodeDiagnosticKind = "module-undeclared-external-dependency"
	KindModuleForbiddenExtDep   CodeDiagnosticKind = "module-forbidden-external-dependency"
	KindUnusedExternalDep       CodeDiagnosticKind = "unused-external-dependency"
	KindUnusedIgnoreDirective   CodeDiagnosticKind = "unused-ignore-directive"
	KindMissingIgnoreReason     CodeDiagnosticKind = "missing-ignore-directive-reason"
)

// ConfigurationDiagnosticKind enumerates configuration-level (global)
// diagnostics discovered mid-scan.
type ConfigurationDiagnosticKind string

const (
	KindModuleConfigNotFound    ConfigurationDiagnosticKind = "module-config-not-found"
	KindUnknownLayer            ConfigurationDiagnosticKind = "unknown-layer"
	KindSkippedFileSyntaxError  ConfigurationDiagnosticKind = "skipped-file-syntax-error"
	KindModuleNotFound          ConfigurationDiagnosticKind = "module-not-found"
	KindNoFirstPartyImportsFound ConfigurationDiagnosticKind = "no-first-party-imports-found"
)

// CodeDiagnostic carries the structured detail of a code-level finding.
type CodeDiagnostic struct {
	Kind               CodeDiagnosticKind
	ImportModulePath   string
	UsageModule        string
	DefinitionModule   string
	UsageLayer         string
	DefinitionLayer    string
	Dependency         string // external package/distribution name
	Reason             string // ignore-directive hygiene context
}

// ConfigurationDiagnostic carries the structured detail of a
// configuration-level finding.
type ConfigurationDiagnostic struct {
	Kind       ConfigurationDiagnosticKind
	ModulePath string
	Layer      string
	Message    string
}

// DiagnosticDetails is the sum of the two detail variants; exactly one
// field is populated.
type DiagnosticDetails struct {
	Code          *CodeDiagnostic
	Configuration *ConfigurationDiagnostic
}

// Diagnostic is either Global (no file coordinates) or Located (attached
// to a file and line).
type Diagnostic struct {
	Severity Severity
	Details  DiagnosticDetails

	// Located-only fields; FilePath == "" marks a Global diagnostic.
	FilePath           string
	LineNumber         int
	OriginalLineNumber int // line of the import/from keyword, for multi-line imports
}

// IsGlobal reports whether this diagnostic lacks file coordinates.
func (d *Diagnostic) IsGlobal() bool {
	return d.FilePath == ""
}

// IsDeprecated reports whether this is a DeprecatedDependency finding.
func (d *Diagnostic) IsDeprecated() bool {
	return d.Details.Code != nil && d.Details.Code.Kind == KindDeprecatedDependency
}

// NewLocatedError builds a Located diagnostic with Error severity.
func NewLocatedError(filePath string, lineNumber int, details DiagnosticDetails) Diagnostic {
	return Diagnostic{Severity: SeverityError, Details: details, FilePath: filePath, LineNumber: lineNumber}
}

// NewLocatedWarning builds a Located diagnostic with Warning severity.
func NewLocatedWarning(filePath string, lineNumber int, details DiagnosticDetails) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Details: details, FilePath: filePath, LineNumber: lineNumber}
}

// NewGlobalError builds a Global diagnostic with Error severity.
func NewGlobalError(details DiagnosticDetails) Diagnostic {
	return Diagnostic{Severity: SeverityError, Details: details}
}

// NewGlobalWarning builds a Global diagnostic with Warning severity.
func NewGlobalWarning(details DiagnosticDetails) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Details: details}
}
