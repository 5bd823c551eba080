package pyparse

import (
	"regexp"
	"strings"

	"github.com/ingo-eichhorst/modguard/pkg/types"
)

// ignoreDirectiveRe matches a "# tach-ignore" comment anywhere on a line,
// capturing an optional parenthesized reason and an optional
// whitespace-separated module list.
var ignoreDirectiveRe = regexp.MustCompile(`# *tach-ignore(?:\(([^)]*)\))?((?:\s+[\w.]+)*)\s*$`)

// leadingCommentRe recognizes a line that is a comment from its first
// non-whitespace character, used to tell an own-line directive (which
// suppresses the next line) from a trailing one (which suppresses its
// own line).
var leadingCommentRe = regexp.MustCompile(`^\s*#`)

// ParseIgnoreDirectives scans every line of content for tach-ignore
// comments and binds each to the line it suppresses. When two directives
// resolve to the same ignored_line_no, every directive after the first
// is marked Redundant and unconditionally reported as unused.
func ParseIgnoreDirectives(content []byte) []types.IgnoreDirective {
	lines := strings.Split(string(content), "\n")

	var directives []types.IgnoreDirective
	seenLine := map[int]bool{}

	for i, line := range lines {
		lineNo := i + 1
		m := ignoreDirectiveRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		reason := strings.TrimSpace(m[1])
		var modules []string
		for _, tok := range strings.Fields(m[2]) {
			modules = append(modules, tok)
		}

		ignoredLineNo := lineNo
		if leadingCommentRe.MatchString(line) {
			ignoredLineNo = lineNo + 1
		}

		d := types.IgnoreDirective{
			Modules:       modules,
			Reason:        reason,
			LineNo:        lineNo,
			IgnoredLineNo: ignoredLineNo,
			Redundant:     seenLine[ignoredLineNo],
		}
		seenLine[ignoredLineNo] = true
		directives = append(directives, d)
	}

	return directives
}

// Suppresses reports whether d suppresses a diagnostic at diagnosticLine
// whose import path is importPath: an empty module list is a blanket
// match, otherwise the diagnostic's import path must end with one of
// the listed modules by dotted-component suffix.
func Suppresses(d types.IgnoreDirective, diagnosticLine int, importPath string) bool {
	if d.IgnoredLineNo != diagnosticLine {
		return false
	}
	if len(d.Modules) == 0 {
		return true
	}
	for _, m := range d.Modules {
		if dottedSuffixMatch(importPath, m) {
			return true
		}
	}
	return false
}

// dottedSuffixMatch reports whether path ends with suffix aligned on
// dot-separated component boundaries (e.g. "a.b.c" matches suffix "b.c"
// but not suffix ".c" or "c" alone unless "c" is itself a full component
// at the end, which it is here since suffix "c" has one component).
func dottedSuffixMatch(path, suffix string) bool {
	if path == suffix {
		return true
	}
	return strings.HasSuffix(path, "."+suffix)
}
