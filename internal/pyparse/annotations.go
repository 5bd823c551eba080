package pyparse

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// ExtractAnnotations walks tree's top-level statements and returns the
// declared type annotation text for every module-level function and
// annotated assignment, keyed by member name. A function's annotation is
// its return type; a variable's is its assignment annotation. Members
// with no annotation are absent from the map, not present with "".
func ExtractAnnotations(tree *Tree) map[string]string {
	content := tree.Content()
	out := map[string]string{}

	root := tree.Root()
	if root == nil {
		return out
	}

	for i := uint(0); i < root.ChildCount(); i++ {
		child := root.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "function_definition":
			nameNode := child.ChildByFieldName("name")
			returnType := child.ChildByFieldName("return_type")
			if nameNode != nil && returnType != nil {
				out[NodeText(nameNode, content)] = NodeText(returnType, content)
			}
		case "expression_statement":
			recordAnnotatedAssignment(child, content, out)
		}
	}

	return out
}

// recordAnnotatedAssignment handles "name: Type = value" and bare
// "name: Type" statements, both parsed as a top-level "assignment" node
// carrying a "type" field.
func recordAnnotatedAssignment(exprStmt *tree_sitter.Node, content []byte, out map[string]string) {
	for i := uint(0); i < exprStmt.ChildCount(); i++ {
		node := exprStmt.Child(i)
		if node == nil || node.Kind() != "assignment" {
			continue
		}
		left := node.ChildByFieldName("left")
		typeNode := node.ChildByFieldName("type")
		if left == nil || typeNode == nil || left.Kind() != "identifier" {
			continue
		}
		out[NodeText(left, content)] = NodeText(typeNode, content)
	}
}
