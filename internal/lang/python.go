package lang

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Python grammar node types the tree builder cares about.
const (
	PythonModule             = "module"
	PythonClassDefinition    = "class_definition"
	PythonFunctionDefinition = "function_definition"
	PythonDecoratedDef       = "decorated_definition"
	PythonDecorator          = "decorator"
	PythonIdentifier         = "identifier"
	PythonAttribute          = "attribute"
	PythonCall               = "call"
	PythonComment            = "comment"
)

func init() {
	Languages["python"] = &Language{
		Name:       "python",
		Extensions: []string{".py", ".pyi"},
		lang:       python.GetLanguage(),
	}
}

// PythonDefinitionName returns the name of a class_definition or
// function_definition node, or "" if it has none.
func PythonDefinitionName(node *sitter.Node, source []byte) string {
	if name := node.ChildByFieldName("name"); name != nil {
		return NodeText(name, source)
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == PythonIdentifier {
			return NodeText(child, source)
		}
	}
	return ""
}

// PythonIsAsync reports whether a function_definition was written as `async def`.
// The async keyword is an anonymous child of function_definition in tree-sitter-python.
func PythonIsAsync(funcNode *sitter.Node) bool {
	for i := 0; i < int(funcNode.ChildCount()); i++ {
		child := funcNode.Child(i)
		switch child.Type() {
		case "async":
			return true
		case "def":
			return false
		}
	}
	return false
}

// PythonBody returns the block holding the body statements of a class or
// function definition, or nil.
func PythonBody(defNode *sitter.Node) *sitter.Node {
	if body := defNode.ChildByFieldName("body"); body != nil {
		return body
	}
	for i := 0; i < int(defNode.ChildCount()); i++ {
		child := defNode.Child(i)
		if child.Type() == "block" {
			return child
		}
	}
	return nil
}

// PythonUnwrapDecorated splits a decorated_definition into the definition it
// decorates and its decorator nodes in source order. def is nil if the
// definition is missing.
func PythonUnwrapDecorated(node *sitter.Node) (def *sitter.Node, decorators []*sitter.Node) {
	def = node.ChildByFieldName("definition")
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case PythonDecorator:
			decorators = append(decorators, child)
		case PythonClassDefinition, PythonFunctionDefinition:
			if def == nil {
				def = child
			}
		}
	}
	return def, decorators
}

// PythonDecoratorExpr returns the expression of a decorator node
// (the part after "@"), or nil.
func PythonDecoratorExpr(decorator *sitter.Node) *sitter.Node {
	for i := 0; i < int(decorator.NamedChildCount()); i++ {
		child := decorator.NamedChild(i)
		if child.Type() != PythonComment {
			return child
		}
	}
	return nil
}
