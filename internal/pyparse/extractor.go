package pyparse

import (
	"sort"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/ingo-eichhorst/modguard/pkg/types"
)

// ExtractOptions configures import extraction.
type ExtractOptions struct {
	// FileModulePath is the dotted module path of the file being parsed,
	// "" if the file lies outside every source root.
	FileModulePath string
	// IsPackageInit marks the file as a package's __init__.py/.pyi, which
	// changes how many segments a relative import strips (level-1
	// instead of level).
	IsPackageInit bool

	IgnoreTypeCheckingImports bool
	IncludeStringImports     bool
	// ResolveStringLiteral resolves a dotted string literal to a file,
	// used to gate synthetic string-literal imports. Nil disables
	// string-literal imports even if IncludeStringImports is true.
	ResolveStringLiteral func(dotted string) bool
}

// ExtractImports walks tree and produces the file's NormalizedImports.
func ExtractImports(tree *Tree, opts ExtractOptions) []types.NormalizedImport {
	e := &extractor{
		content: tree.Content(),
		lines:   NewLineIndex(tree.Content()),
		opts:    opts,
	}
	e.walk(tree.Root())
	return e.imports
}

type extractor struct {
	content []byte
	lines   *LineIndex
	opts    ExtractOptions
	imports []types.NormalizedImport
}

func (e *extractor) text(n *tree_sitter.Node) string {
	return NodeText(n, e.content)
}

// walk recurses the tree, handling import_statement / import_from_statement
// nodes directly and skipping recursion into a TYPE_CHECKING-gated if body.
func (e *extractor) walk(node *tree_sitter.Node) {
	if node == nil {
		return
	}

	switch node.Kind() {
	case "import_statement":
		e.handleImportStatement(node)
		return
	case "import_from_statement":
		e.handleImportFromStatement(node)
		return
	case "if_statement":
		if e.opts.IgnoreTypeCheckingImports && isTypeCheckingGuard(node, e.content) {
			// Skip the consequence block; still walk elif/else clauses
			// and the condition expression itself (no imports live there).
			for i := uint(0); i < node.ChildCount(); i++ {
				child := node.Child(i)
				if child == nil {
					continue
				}
				if child.Kind() == "block" {
					continue
				}
				e.walk(child)
			}
			return
		}
	case "string":
		if e.opts.IncludeStringImports && e.opts.ResolveStringLiteral != nil {
			e.handleStringLiteral(node)
		}
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		e.walk(node.Child(i))
	}
}

// isTypeCheckingGuard reports whether an if_statement's condition is a
// bare "TYPE_CHECKING" name or an attribute access ending in
// ".TYPE_CHECKING".
func isTypeCheckingGuard(ifNode *tree_sitter.Node, content []byte) bool {
	cond := ifNode.ChildByFieldName("condition")
	if cond == nil {
		return false
	}
	switch cond.Kind() {
	case "identifier":
		return NodeText(cond, content) == "TYPE_CHECKING"
	case "attribute":
		attr := cond.ChildByFieldName("attribute")
		return attr != nil && NodeText(attr, content) == "TYPE_CHECKING"
	}
	return false
}

// handleImportStatement processes "import a.b as c, d.e" style statements.
// Each comma-separated name produces one normalized import.
func (e *extractor) handleImportStatement(node *tree_sitter.Node) {
	importOffset := int(node.StartByte())

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "dotted_name":
			modPath := e.text(child)
			e.emit(types.NormalizedImport{
				ModulePath:    modPath,
				ImportOffset:  importOffset,
				AliasOffset:   int(child.StartByte()),
				IsAbsolute:    true,
				IsGlobalScope: isGlobalScope(node),
			})
		case "aliased_import":
			nameNode := child.ChildByFieldName("name")
			aliasNode := child.ChildByFieldName("alias")
			if nameNode == nil {
				continue
			}
			imp := types.NormalizedImport{
				ModulePath:    e.text(nameNode),
				ImportOffset:  importOffset,
				AliasOffset:   int(child.StartByte()),
				IsAbsolute:    true,
				IsGlobalScope: isGlobalScope(node),
			}
			if aliasNode != nil {
				imp.AliasPath = e.text(aliasNode)
				imp.AliasOffset = int(aliasNode.StartByte())
			}
			e.emit(imp)
		}
	}
}

// handleImportFromStatement processes "from .p.q import x as y, z" style
// statements, including relative-import base-path resolution.
func (e *extractor) handleImportFromStatement(node *tree_sitter.Node) {
	importOffset := int(node.StartByte())

	base, ok := e.resolveFromModuleBase(node)
	if !ok {
		return // relative import from a file outside all source roots: drop it
	}

	moduleNameNode := node.ChildByFieldName("module_name")

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || child == moduleNameNode {
			continue
		}
		switch child.Kind() {
		case "relative_import", "from", "import", "(", ")", ",":
			continue
		case "wildcard_import":
			e.emit(types.NormalizedImport{
				ModulePath:    base,
				ImportOffset:  importOffset,
				AliasOffset:   int(child.StartByte()),
				IsAbsolute:    true,
				IsGlobalScope: isGlobalScope(node),
			})
		case "dotted_name", "identifier":
			name := e.text(child)
			e.emit(types.NormalizedImport{
				ModulePath:    joinModulePath(base, name),
				AliasPath:     name,
				ImportOffset:  importOffset,
				AliasOffset:   int(child.StartByte()),
				IsAbsolute:    true,
				IsGlobalScope: isGlobalScope(node),
			})
		case "aliased_import":
			nameNode := child.ChildByFieldName("name")
			aliasNode := child.ChildByFieldName("alias")
			if nameNode == nil {
				continue
			}
			name := e.text(nameNode)
			imp := types.NormalizedImport{
				ModulePath:    joinModulePath(base, name),
				ImportOffset:  importOffset,
				AliasOffset:   int(child.StartByte()),
				IsAbsolute:    true,
				IsGlobalScope: isGlobalScope(node),
			}
			if aliasNode != nil {
				imp.AliasPath = e.text(aliasNode)
				imp.AliasOffset = int(aliasNode.StartByte())
			} else {
				imp.AliasPath = name
			}
			e.emit(imp)
		}
	}
}

// resolveFromModuleBase computes the absolute base path a from-import's
// names are joined onto. ok=false means "drop this statement" (relative
// import from a file with no known module path).
func (e *extractor) resolveFromModuleBase(node *tree_sitter.Node) (string, bool) {
	moduleNameNode := node.ChildByFieldName("module_name")
	if moduleNameNode == nil {
		return "", false
	}

	if moduleNameNode.Kind() != "relative_import" {
		return e.text(moduleNameNode), true
	}

	if e.opts.FileModulePath == "" {
		return "", false
	}

	level := 0
	var suffix string
	for i := uint(0); i < moduleNameNode.ChildCount(); i++ {
		sub := moduleNameNode.Child(i)
		if sub == nil {
			continue
		}
		switch sub.Kind() {
		case "import_prefix":
			level = strings.Count(e.text(sub), ".")
		case "dotted_name":
			suffix = e.text(sub)
		}
	}
	if level == 0 {
		return "", false
	}

	parts := strings.Split(e.opts.FileModulePath, ".")
	strip := level
	if e.opts.IsPackageInit {
		strip = level - 1
	}
	if strip > len(parts) {
		return "", false
	}
	baseParts := parts[:len(parts)-strip]
	base := strings.Join(baseParts, ".")

	if suffix == "" {
		return base, true
	}
	return joinModulePath(base, suffix), true
}

func joinModulePath(base, name string) string {
	if base == "" {
		return name
	}
	return base + "." + name
}

// isGlobalScope reports whether an import statement sits at module
// top-level (its parent is the module node) rather than nested inside a
// function/class/block.
func isGlobalScope(node *tree_sitter.Node) bool {
	parent := node.Parent()
	return parent == nil || parent.Kind() == "module"
}

func (e *extractor) emit(imp types.NormalizedImport) {
	e.imports = append(e.imports, imp)
}

// handleStringLiteral emits a synthetic import for a ">=2 dots and
// resolvable" string literal.
func (e *extractor) handleStringLiteral(node *tree_sitter.Node) {
	raw := e.text(node)
	unquoted := strings.Trim(raw, `"'`)
	if strings.Count(unquoted, ".") < 2 {
		return
	}
	if !e.opts.ResolveStringLiteral(unquoted) {
		return
	}
	e.emit(types.NormalizedImport{
		ModulePath:    unquoted,
		ImportOffset:  int(node.StartByte()),
		AliasOffset:   int(node.StartByte()),
		IsAbsolute:    true,
		IsGlobalScope: isGlobalScope(node),
	})
}

// LineIndex converts byte offsets to 1-based line numbers. Built once
// per file and reused for every offset translated downstream.
type LineIndex struct {
	lineStarts []int // byte offset of the start of each line, 0-indexed line list
}

// NewLineIndex builds a LineIndex over content.
func NewLineIndex(content []byte) *LineIndex {
	starts := []int{0}
	for i, b := range content {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{lineStarts: starts}
}

// LineNumber returns the 1-based line number containing byte offset.
func (li *LineIndex) LineNumber(offset int) int {
	idx := sort.SearchInts(li.lineStarts, offset+1) - 1
	if idx < 0 {
		idx = 0
	}
	return idx + 1
}

// LineNumber is a package-level convenience wrapping a fresh LineIndex;
// prefer building one LineIndex per file when converting many offsets.
func LineNumber(content []byte, offset int) int {
	return NewLineIndex(content).LineNumber(offset)
}
