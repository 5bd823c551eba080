package modtree

import (
	"regexp"
	"strings"

	"github.com/ingo-eichhorst/modguard/internal/discovery"
)

// hasGlobSyntax reports whether a dotted module path contains "*".
func hasGlobSyntax(pattern string) bool {
	return strings.Contains(pattern, "*")
}

// compileModuleGlob translates a dotted module glob (segments separated
// by ".", each either a literal, "*", or a trailing "**") into a regex
// matched against forward-slash-joined relative file paths, with an
// optional ".py"/".pyi" suffix ("a.*.c" -> "a/*/c{,.py,.pyi}"; trailing
// "**" matches self and descendants).
func compileModuleGlob(pattern string) (*regexp.Regexp, error) {
	segments := strings.Split(pattern, ".")

	trailingDoubleStar := len(segments) > 0 && segments[len(segments)-1] == "**"
	if trailingDoubleStar {
		segments = segments[:len(segments)-1]
	}

	parts := make([]string, len(segments))
	for i, seg := range segments {
		switch seg {
		case "*":
			parts[i] = `[^/]+`
		case "**":
			parts[i] = `.+`
		default:
			parts[i] = regexp.QuoteMeta(seg)
		}
	}

	body := strings.Join(parts, `/`)
	const ext = `(|\.py|\.pyi)`

	if trailingDoubleStar {
		return regexp.Compile(`^` + body + `(|/.+)` + ext + `$`)
	}
	return regexp.Compile(`^` + body + ext + `$`)
}

// candidateToModulePath strips a trailing ".py"/".pyi" suffix and
// replaces path separators with dots.
func candidateToModulePath(relPath string) string {
	relPath = strings.TrimSuffix(relPath, ".pyi")
	relPath = strings.TrimSuffix(relPath, ".py")
	return strings.ReplaceAll(relPath, "/", ".")
}

// ExpandModuleGlob resolves a dotted glob pattern to every matching
// dotted module path across sourceRoots.
func ExpandModuleGlob(pattern string, sourceRoots []string, walker *discovery.Walker, opts discovery.WalkOptions) ([]string, error) {
	matcher, err := compileModuleGlob(pattern)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var out []string
	for _, root := range sourceRoots {
		candidates, err := walker.WalkModuleCandidates(root, opts)
		if err != nil {
			return nil, err
		}
		for _, c := range candidates {
			if !matcher.MatchString(c) {
				continue
			}
			mod := candidateToModulePath(c)
			if mod == "" || seen[mod] {
				continue
			}
			seen[mod] = true
			out = append(out, mod)
		}
	}
	return out, nil
}
