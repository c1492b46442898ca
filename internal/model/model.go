// Package model defines the syntax tree and scope types walked by pycounts.
package model

import "fmt"

// NodeKind is the coarse syntactic kind of a Node.
type NodeKind string

const (
	Module   NodeKind = "module"
	Class    NodeKind = "class"
	Function NodeKind = "function"
	Other    NodeKind = "other"
)

// ScopeKind identifies which member-counting rule set applies to a scope.
type ScopeKind int

const (
	ModuleScope ScopeKind = iota
	ClassScope
)

// DecoratorShape is the syntactic form of a decorator expression.
type DecoratorShape string

const (
	DecoratorName      DecoratorShape = "name"      // @overload
	DecoratorAttribute DecoratorShape = "attribute" // @typing.overload
	DecoratorCall      DecoratorShape = "call"      // @lru_cache(maxsize=None)
	DecoratorOther     DecoratorShape = "other"
)

// Position is a 1-based line and column in a source file.
type Position struct {
	Line int
	Col  int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Decorator is a single decorator expression applied to a definition.
// Name is the dotted source text for names and attributes, and the callee
// text for calls. It is empty for other shapes.
type Decorator struct {
	Shape DecoratorShape
	Name  string
	Pos   Position
}

// Node is one node of a parsed source unit.
//
// Class and Function children are the statements of their body. Decorated
// definitions are folded into the definition they decorate, so a decorated
// method is still a direct child of its class.
type Node struct {
	Kind       NodeKind
	Type       string // grammar node type, e.g. "if_statement"
	Name       string
	Async      bool
	Decorators []Decorator
	Children   []*Node
	Pos        Position
}

// IsDefinition reports whether n is a class or function definition.
func (n *Node) IsDefinition() bool {
	return n.Kind == Class || n.Kind == Function
}

// ScopeKind returns the scope kind opened by n. ok is false when n does not open a scope.
func (n *Node) ScopeKind() (kind ScopeKind, ok bool) {
	switch n.Kind {
	case Module:
		return ModuleScope, true
	case Class:
		return ClassScope, true
	default:
		return 0, false
	}
}
