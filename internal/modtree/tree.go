// Package modtree builds and queries the module tree: a trie over dotted
// module paths used for nearest-ancestor module lookup during checking.
package modtree

import (
	"fmt"
	"strings"

	"github.com/ingo-eichhorst/modguard/pkg/types"
)

// Node is a single node in the module tree. A node is terminal
// (IsEndOfPath true) when it represents a configured module; otherwise
// it is a bare path-prefix node produced by intermediate trie segments.
type Node struct {
	IsEndOfPath      bool
	FullPath         string
	Config           *types.ModuleConfig
	InterfaceMembers []string
	Children         map[string]*Node
}

func newEmptyNode() *Node {
	return &Node{Children: map[string]*Node{}}
}

func newImplicitRoot() *Node {
	cfg := types.NewRootConfig()
	return &Node{
		IsEndOfPath: true,
		FullPath:    types.RootModulePath,
		Config:      &cfg,
		Children:    map[string]*Node{},
	}
}

func splitModulePath(path string) []string {
	if path == "" || path == "." || path == types.RootModulePath {
		return nil
	}
	return strings.Split(path, ".")
}

// Tree is the core data structure mapping dotted module paths to their
// configuration, supporting exact and nearest-ancestor lookup.
type Tree struct {
	root *Node
}

// New builds an empty tree, with only the implicit root module terminal.
func New() *Tree {
	return &Tree{root: newImplicitRoot()}
}

// Get returns the terminal node at path, or nil if path does not name a
// configured module exactly.
func (t *Tree) Get(path string) *Node {
	if path == "" {
		return nil
	}
	node := t.root
	for _, part := range splitModulePath(path) {
		child, ok := node.Children[part]
		if !ok {
			return nil
		}
		node = child
	}
	if node.IsEndOfPath {
		return node
	}
	return nil
}

// Insert adds a configured module at path. An empty path is a fatal
// error.
func (t *Tree) Insert(cfg types.ModuleConfig, path string, interfaceMembers []string) error {
	if path == "" {
		return fmt.Errorf("cannot insert module with empty path")
	}

	node := t.root
	for _, part := range splitModulePath(path) {
		child, ok := node.Children[part]
		if !ok {
			child = newEmptyNode()
			node.Children[part] = child
		}
		node = child
	}

	node.IsEndOfPath = true
	node.FullPath = path
	node.Config = &cfg
	node.InterfaceMembers = interfaceMembers
	return nil
}

// FindNearest returns the deepest terminal ancestor of path, walking
// from the root one segment at a time. Returns the root node if no
// other ancestor is terminal, since the root is always terminal.
func (t *Tree) FindNearest(path string) *Node {
	node := t.root
	nearest := t.root

	for _, part := range splitModulePath(path) {
		child, ok := node.Children[part]
		if !ok {
			break
		}
		node = child
		if node.IsEndOfPath {
			nearest = node
		}
	}

	if nearest.IsEndOfPath {
		return nearest
	}
	return nil
}

// Root returns the tree's root node (always terminal).
func (t *Tree) Root() *Node {
	return t.root
}

// All returns every terminal node in the tree, in breadth-first order
// (mirrors the original ModuleTreeIterator).
func (t *Tree) All() []*Node {
	var out []*Node
	queue := []*Node{t.root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for _, child := range node.Children {
			queue = append(queue, child)
		}
		if node.IsEndOfPath {
			out = append(out, node)
		}
	}
	return out
}
