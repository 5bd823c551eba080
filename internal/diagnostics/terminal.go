package diagnostics

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/ingo-eichhorst/modguard/internal/pipeline"
	"github.com/ingo-eichhorst/modguard/pkg/types"
)

// category groups diagnostics for the terminal report.
type category string

const (
	categoryConfiguration category = "Configuration"
	categoryInternal      category = "Internal Dependencies"
	categoryInterfaces    category = "Interfaces"
	categoryExternal      category = "External Dependencies"
	categoryGeneral       category = "General"
)

var categoryOrder = []category{categoryConfiguration, categoryInternal, categoryInterfaces, categoryExternal, categoryGeneral}

func categoryFor(d types.Diagnostic) category {
	if d.Details.Configuration != nil {
		return categoryConfiguration
	}
	if d.Details.Code == nil {
		return categoryGeneral
	}
	switch d.Details.Code.Kind {
	case types.KindUndeclaredDependency, types.KindForbiddenDependency, types.KindDeprecatedDependency, types.KindLayerViolation:
		return categoryInternal
	case types.KindPrivateDependency, types.KindInvalidDataTypeExport:
		return categoryInterfaces
	case types.KindUndeclaredExternalDep, types.KindModuleUndeclaredExtDep, types.KindModuleForbiddenExtDep, types.KindUnusedExternalDep:
		return categoryExternal
	default:
		return categoryGeneral
	}
}

// Terminal renders a pipeline.Result as human-readable text, color-coding
// severity when w is a real terminal. NO_COLOR and non-TTY both
// disable color.
type Terminal struct {
	w        io.Writer
	useColor bool
}

// NewTerminal builds a Terminal writing to w.
func NewTerminal(w io.Writer) *Terminal {
	useColor := os.Getenv("NO_COLOR") == ""
	if f, ok := w.(*os.File); ok {
		useColor = useColor && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
	} else {
		useColor = false
	}
	return &Terminal{w: w, useColor: useColor}
}

// Render writes result as a categorized, severity-colored report.
func (t *Terminal) Render(result pipeline.Result) {
	grouped := map[category][]types.Diagnostic{}
	for _, d := range result.Diagnostics {
		grouped[categoryFor(d)] = append(grouped[categoryFor(d)], d)
	}

	errorCount, warnCount := 0, 0
	for _, cat := range categoryOrder {
		items := grouped[cat]
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(t.w, "\n%s\n", t.bold(string(cat)))
		for _, d := range items {
			if d.Severity == types.SeverityError {
				errorCount++
			} else {
				warnCount++
			}
			fmt.Fprintln(t.w, t.formatLine(d))
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintf(t.w, "\n%s\n", t.bold("Warnings"))
		for _, w := range result.Warnings {
			fmt.Fprintln(t.w, t.formatLine(w))
		}
	}

	fmt.Fprintln(t.w)
	if errorCount == 0 {
		fmt.Fprintln(t.w, t.colorize(color.FgGreen, "All checks passed."))
		return
	}
	fmt.Fprintln(t.w, t.colorize(color.FgRed, fmt.Sprintf("%d error(s), %d warning(s)", errorCount, warnCount)))
}

func (t *Terminal) formatLine(d types.Diagnostic) string {
	sevColor := color.FgYellow
	sevLabel := "warning"
	if d.Severity == types.SeverityError {
		sevColor = color.FgRed
		sevLabel = "error"
	}

	loc := ""
	if !d.IsGlobal() {
		loc = fmt.Sprintf("%s:%d: ", d.FilePath, d.LineNumber)
	}

	return fmt.Sprintf("  %s%s %s", loc, t.colorize(sevColor, sevLabel+":"), messageFor(d))
}

func messageFor(d types.Diagnostic) string {
	if c := d.Details.Code; c != nil {
		switch c.Kind {
		case types.KindUndeclaredDependency:
			return fmt.Sprintf("undeclared dependency on %q", c.ImportModulePath)
		case types.KindForbiddenDependency:
			return fmt.Sprintf("forbidden dependency on %q", c.ImportModulePath)
		case types.KindDeprecatedDependency:
			return fmt.Sprintf("deprecated dependency on %q", c.ImportModulePath)
		case types.KindLayerViolation:
			return fmt.Sprintf("layer violation: %q (%s) may not depend on %q (%s)", c.UsageModule, c.UsageLayer, c.DefinitionModule, c.DefinitionLayer)
		case types.KindPrivateDependency:
			return fmt.Sprintf("%q is not exposed by any interface", c.ImportModulePath)
		case types.KindInvalidDataTypeExport:
			return fmt.Sprintf("%q does not match its interface's declared data type", c.ImportModulePath)
		case types.KindUndeclaredExternalDep:
			return fmt.Sprintf("undeclared external dependency %q", c.Dependency)
		case types.KindModuleUndeclaredExtDep:
			return fmt.Sprintf("module does not declare external dependency %q", c.Dependency)
		case types.KindModuleForbiddenExtDep:
			return fmt.Sprintf("module forbids external dependency %q", c.Dependency)
		case types.KindUnusedExternalDep:
			return fmt.Sprintf("declared external dependency %q is never imported", c.Dependency)
		case types.KindUnusedIgnoreDirective:
			return "unused ignore directive"
		case types.KindMissingIgnoreReason:
			return "ignore directive is missing a reason"
		}
	}
	if cfg := d.Details.Configuration; cfg != nil {
		switch cfg.Kind {
		case types.KindModuleConfigNotFound:
			return fmt.Sprintf("no configured module contains %q", cfg.ModulePath)
		case types.KindUnknownLayer:
			return fmt.Sprintf("module %q references unknown layer %q", cfg.ModulePath, cfg.Layer)
		case types.KindSkippedFileSyntaxError:
			return fmt.Sprintf("skipped file: %s", cfg.Message)
		case types.KindModuleNotFound:
			return fmt.Sprintf("module %q not found", cfg.ModulePath)
		case types.KindNoFirstPartyImportsFound:
			return "no first-party imports were found across the whole project"
		}
	}
	return "unknown diagnostic"
}

func (t *Terminal) colorize(attr color.Attribute, s string) string {
	if !t.useColor {
		return s
	}
	return color.New(attr).Sprint(s)
}

func (t *Terminal) bold(s string) string {
	if !t.useColor {
		return s
	}
	return color.New(color.Bold).Sprint(s)
}
