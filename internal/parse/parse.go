// Package parse builds model syntax trees from Python source using tree-sitter.
package parse

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/pycounts/internal/lang"
	"github.com/phobologic/pycounts/internal/model"
)

// ErrSyntax is returned when the source does not parse cleanly.
var ErrSyntax = errors.New("syntax error")

// Tree parses a Python source file and returns its module node.
// The parser must be created for Python. Empty source yields an empty module.
func Tree(ctx context.Context, parser *sitter.Parser, source []byte) (*model.Node, error) {
	root := &model.Node{
		Kind: model.Module,
		Type: lang.PythonModule,
		Pos:  model.Position{Line: 1, Col: 1},
	}
	if len(source) == 0 {
		return root, nil
	}

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	defer tree.Close()

	rn := tree.RootNode()
	if rn.HasError() {
		if bad := firstError(rn); bad != nil {
			return nil, fmt.Errorf("%w at %s", ErrSyntax, position(bad))
		}
		return nil, ErrSyntax
	}

	b := builder{source: source}
	root.Children = b.children(rn)
	return root, nil
}

type builder struct {
	source []byte
}

func (b *builder) children(node *sitter.Node) []*model.Node {
	var out []*model.Node
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == lang.PythonComment {
			continue
		}
		out = append(out, b.node(child))
	}
	return out
}

func (b *builder) node(n *sitter.Node) *model.Node {
	switch n.Type() {
	case lang.PythonClassDefinition:
		return b.definition(n, model.Class, nil)
	case lang.PythonFunctionDefinition:
		return b.definition(n, model.Function, nil)
	case lang.PythonDecoratedDef:
		def, decorators := lang.PythonUnwrapDecorated(n)
		switch {
		case def == nil:
		case def.Type() == lang.PythonClassDefinition:
			return b.definition(def, model.Class, decorators)
		case def.Type() == lang.PythonFunctionDefinition:
			return b.definition(def, model.Function, decorators)
		}
	}

	return &model.Node{
		Kind:     model.Other,
		Type:     n.Type(),
		Children: b.children(n),
		Pos:      position(n),
	}
}

func (b *builder) definition(n *sitter.Node, kind model.NodeKind, decorators []*sitter.Node) *model.Node {
	def := &model.Node{
		Kind: kind,
		Type: n.Type(),
		Name: lang.PythonDefinitionName(n, b.source),
		Pos:  position(n),
	}
	if kind == model.Function {
		def.Async = lang.PythonIsAsync(n)
	}
	for _, d := range decorators {
		def.Decorators = append(def.Decorators, b.decorator(d))
	}
	if body := lang.PythonBody(n); body != nil {
		def.Children = b.children(body)
	}
	return def
}

func (b *builder) decorator(d *sitter.Node) model.Decorator {
	dec := model.Decorator{Shape: model.DecoratorOther, Pos: position(d)}

	expr := lang.PythonDecoratorExpr(d)
	if expr == nil {
		return dec
	}

	switch expr.Type() {
	case lang.PythonIdentifier:
		dec.Shape = model.DecoratorName
		dec.Name = lang.NodeText(expr, b.source)
	case lang.PythonAttribute:
		dec.Shape = model.DecoratorAttribute
		dec.Name = lang.CollapseWhitespace(lang.NodeText(expr, b.source))
	case lang.PythonCall:
		dec.Shape = model.DecoratorCall
		if fn := expr.ChildByFieldName("function"); fn != nil {
			dec.Name = lang.CollapseWhitespace(lang.NodeText(fn, b.source))
		}
	}
	return dec
}

func position(n *sitter.Node) model.Position {
	p := n.StartPoint()
	return model.Position{Line: int(p.Row) + 1, Col: int(p.Column) + 1}
}

// firstError returns the first ERROR or missing node in document order.
func firstError(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if bad := firstError(n.Child(i)); bad != nil {
			return bad
		}
	}
	return nil
}
