// Package pyparse wraps a Tree-sitter Python grammar and extracts
// normalized imports and inline ignore directives from parsed source.
package pyparse

import (
	"fmt"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// ParsingError wraps a Tree-sitter failure to parse a file. Callers
// treat this as a soft, per-file error: skip the file and emit a
// warning, never abort the run.
type ParsingError struct {
	Path string
	Err  error
}

func (e *ParsingError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParsingError) Unwrap() error { return e.Err }

// Parser wraps a single pooled Tree-sitter Python parser. Tree-sitter
// parsers are not thread-safe, so all Parse calls are serialized via a
// mutex; the returned *Tree is safe to read concurrently afterward.
type Parser struct {
	mu     sync.Mutex
	parser *tree_sitter.Parser
}

// NewParser builds a Parser bound to the Python grammar.
func NewParser() (*Parser, error) {
	p := tree_sitter.NewParser()
	lang := tree_sitter.NewLanguage(tree_sitter_python.Language())
	if err := p.SetLanguage(lang); err != nil {
		p.Close()
		return nil, fmt.Errorf("set python language: %w", err)
	}
	return &Parser{parser: p}, nil
}

// Close releases the underlying Tree-sitter parser. Must be called when
// the Parser is no longer needed.
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// Parse parses Python source, returning a *ParsingError (never a raw
// Tree-sitter error) on failure so callers can type-switch uniformly.
// Tree-sitter's incremental parser does not itself report syntax errors
// via a Go error value — it always returns some tree — so Parse treats a
// nil tree as the failure case and leaves ERROR-node detection to the
// caller via Tree.HasSyntaxError().
func (p *Parser) Parse(path string, content []byte) (*Tree, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tree := p.parser.Parse(content, nil)
	if tree == nil {
		return nil, &ParsingError{Path: path, Err: fmt.Errorf("tree-sitter returned nil tree")}
	}

	return &Tree{tree: tree, content: content, path: path}, nil
}

// Tree holds a parsed syntax tree alongside the source bytes it was
// parsed from. Callers must call Close when done.
type Tree struct {
	tree    *tree_sitter.Tree
	content []byte
	path    string
}

// Close releases the underlying Tree-sitter tree.
func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
	}
}

// Root returns the tree's root node.
func (t *Tree) Root() *tree_sitter.Node {
	return t.tree.RootNode()
}

// Content returns the source bytes the tree was parsed from.
func (t *Tree) Content() []byte {
	return t.content
}

// HasSyntaxError reports whether the tree contains an ERROR node,
// treated as the soft "skipped file" case rather than a hard failure.
func (t *Tree) HasSyntaxError() bool {
	root := t.tree.RootNode()
	return root != nil && root.HasError()
}

// NodeText extracts the source text spanned by node.
func NodeText(node *tree_sitter.Node, content []byte) string {
	return string(content[node.StartByte():node.EndByte()])
}
