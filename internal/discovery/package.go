package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ErrSetupPyNotSupported is returned when a source root's nearest
// manifest is a bare setup.py.
var ErrSetupPyNotSupported = fmt.Errorf("setup.py-based packages are not supported")

// Package is a distribution unit owning one or more source roots and
// declaring external dependencies.
type Package struct {
	Name         string   // normalized distribution name, "" if manifest-less
	RootDir      string   // directory containing the manifest (or source root itself)
	Dependencies []string // normalized declared dependency names
}

var stdlibPseudoNames = map[string]bool{
	"python":      true,
	"poetry":      true,
	"poetry_core": true, // "poetry-core" after normalizeDistName
}

// ResolvePackage walks upward from sourceRoot until it finds
// pyproject.toml, setup.py, or requirements.txt, or reaches projectRoot.
// A setup.py manifest returns ErrSetupPyNotSupported. No manifest found
// returns an empty Package rooted at sourceRoot.
func ResolvePackage(projectRoot, sourceRoot string) (*Package, error) {
	dir := filepath.Clean(sourceRoot)
	root := filepath.Clean(projectRoot)

	for {
		pyproject := filepath.Join(dir, "pyproject.toml")
		if fileExists(pyproject) {
			return parsePyprojectPackage(dir, pyproject)
		}

		setupPy := filepath.Join(dir, "setup.py")
		if fileExists(setupPy) {
			return nil, ErrSetupPyNotSupported
		}

		requirements := filepath.Join(dir, "requirements.txt")
		if fileExists(requirements) {
			return parseRequirementsPackage(dir, requirements)
		}

		if dir == root {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return &Package{RootDir: sourceRoot}, nil
}

type pyprojectDoc struct {
	Project struct {
		Name         string   `toml:"name"`
		Dependencies []string `toml:"dependencies"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Name         string                 `toml:"name"`
			Dependencies map[string]any `toml:"dependencies"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

func parsePyprojectPackage(dir, path string) (*Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var doc pyprojectDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	pkg := &Package{RootDir: dir}

	name := doc.Project.Name
	var deps []string

	if len(doc.Project.Dependencies) > 0 {
		deps = doc.Project.Dependencies
	} else if len(doc.Tool.Poetry.Dependencies) > 0 {
		// [project.dependencies] is preferred; Poetry's table is read only
		// when that list is empty. When both are present Poetry's table is
		// ignored and no warning is emitted.
		if name == "" {
			name = doc.Tool.Poetry.Name
		}
		for dep := range doc.Tool.Poetry.Dependencies {
			deps = append(deps, dep)
		}
	}

	pkg.Name = normalizeDistName(name)

	for _, raw := range deps {
		depName := stripVersionSpecifier(raw)
		norm := normalizeDistName(depName)
		if norm == "" || stdlibPseudoNames[norm] {
			continue
		}
		pkg.Dependencies = append(pkg.Dependencies, norm)
	}

	return pkg, nil
}

func parseRequirementsPackage(dir, path string) (*Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	pkg := &Package{RootDir: dir}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		depName := stripVersionSpecifier(line)
		norm := normalizeDistName(depName)
		if norm == "" || stdlibPseudoNames[norm] {
			continue
		}
		pkg.Dependencies = append(pkg.Dependencies, norm)
	}
	return pkg, nil
}

var versionSpecifierRe = regexp.MustCompile(`[<>=!~;\[\s].*$`)

func stripVersionSpecifier(requirement string) string {
	return versionSpecifierRe.ReplaceAllString(strings.TrimSpace(requirement), "")
}

var distNameCollapseRe = regexp.MustCompile(`[-_\s]+`)

// normalizeDistName applies PyPI distribution-name normalization:
// lower-case, collapse "-"/"_"/whitespace runs to a single "_".
func normalizeDistName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return ""
	}
	return distNameCollapseRe.ReplaceAllString(name, "_")
}

// NormalizeDistName is the exported form of normalizeDistName, used by
// callers outside this package that need to compare against
// Package.Dependencies (e.g. the external-dependency checker).
func NormalizeDistName(name string) string {
	return normalizeDistName(name)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
