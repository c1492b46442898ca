package parse

import (
	"context"
	"errors"
	"testing"

	"github.com/phobologic/pycounts/internal/lang"
	"github.com/phobologic/pycounts/internal/model"
)

func setup(t *testing.T) func(source string) (*model.Node, error) {
	t.Helper()
	l := lang.Languages["python"]
	if l == nil {
		t.Fatal("python not registered")
	}
	return func(source string) (*model.Node, error) {
		return Tree(context.Background(), l.NewParser(), []byte(source))
	}
}

func mustParse(t *testing.T, source string) *model.Node {
	t.Helper()
	root, err := setup(t)(source)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	return root
}

func TestTreeEmpty(t *testing.T) {
	t.Parallel()

	root := mustParse(t, "")
	if root.Kind != model.Module {
		t.Errorf("kind = %q, want module", root.Kind)
	}
	if len(root.Children) != 0 {
		t.Errorf("expected no children, got %d", len(root.Children))
	}
	if root.Pos != (model.Position{Line: 1, Col: 1}) {
		t.Errorf("pos = %v, want 1:1", root.Pos)
	}
}

func TestTreeFunctionAndClass(t *testing.T) {
	t.Parallel()

	root := mustParse(t, "def first(): ...\n\nclass Second: ...\n")
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(root.Children))
	}

	fn := root.Children[0]
	if fn.Kind != model.Function || fn.Name != "first" {
		t.Errorf("child 0 = %s %q, want function first", fn.Kind, fn.Name)
	}
	if fn.Pos.Line != 1 {
		t.Errorf("first line = %d, want 1", fn.Pos.Line)
	}

	cls := root.Children[1]
	if cls.Kind != model.Class || cls.Name != "Second" {
		t.Errorf("child 1 = %s %q, want class Second", cls.Kind, cls.Name)
	}
	if cls.Pos.Line != 3 || cls.Pos.Col != 1 {
		t.Errorf("Second pos = %v, want 3:1", cls.Pos)
	}
}

func TestTreeMethodsAreClassChildren(t *testing.T) {
	t.Parallel()

	source := `class First:
    @classmethod
    def method(cls): ...

    async def test(self): ...

    def other(self): ...
`
	root := mustParse(t, source)
	if len(root.Children) != 1 {
		t.Fatalf("expected 1 module child, got %d", len(root.Children))
	}

	cls := root.Children[0]
	if len(cls.Children) != 3 {
		t.Fatalf("expected 3 class children, got %d", len(cls.Children))
	}

	method := cls.Children[0]
	if method.Kind != model.Function || method.Name != "method" {
		t.Errorf("decorated method = %s %q", method.Kind, method.Name)
	}
	if method.Pos.Line != 3 {
		t.Errorf("decorated method line = %d, want 3 (the def line)", method.Pos.Line)
	}
	if len(method.Decorators) != 1 || method.Decorators[0].Name != "classmethod" {
		t.Errorf("decorators = %+v", method.Decorators)
	}

	if !cls.Children[1].Async {
		t.Error("test should be async")
	}
	if cls.Children[2].Async {
		t.Error("other should not be async")
	}
}

func TestTreeDecoratorShapes(t *testing.T) {
	t.Parallel()

	source := `@overload
@typing.overload
@functools.lru_cache(maxsize=None)
@handlers[0]
def first(): ...
`
	root := mustParse(t, source)
	fn := root.Children[0]

	want := []model.Decorator{
		{Shape: model.DecoratorName, Name: "overload"},
		{Shape: model.DecoratorAttribute, Name: "typing.overload"},
		{Shape: model.DecoratorCall, Name: "functools.lru_cache"},
		{Shape: model.DecoratorOther},
	}
	if len(fn.Decorators) != len(want) {
		t.Fatalf("expected %d decorators, got %d: %+v", len(want), len(fn.Decorators), fn.Decorators)
	}
	for i, w := range want {
		got := fn.Decorators[i]
		if got.Shape != w.Shape || got.Name != w.Name {
			t.Errorf("decorator %d = {%s %q}, want {%s %q}", i, got.Shape, got.Name, w.Shape, w.Name)
		}
		if got.Pos.Line != i+1 {
			t.Errorf("decorator %d line = %d, want %d", i, got.Pos.Line, i+1)
		}
	}
}

func TestTreeNestingPreserved(t *testing.T) {
	t.Parallel()

	source := `def outer():
    def inner(): ...

if True:
    def conditional(): ...
`
	root := mustParse(t, source)
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 module children, got %d", len(root.Children))
	}

	outer := root.Children[0]
	if len(outer.Children) != 1 || outer.Children[0].Name != "inner" {
		t.Errorf("outer children = %+v", outer.Children)
	}

	cond := root.Children[1]
	if cond.Kind != model.Other || cond.Type != "if_statement" {
		t.Fatalf("child 1 = %s %q, want other if_statement", cond.Kind, cond.Type)
	}
	if findByName(cond, "conditional") == nil {
		t.Error("conditional def lost inside if_statement")
	}
}

func TestTreeSyntaxError(t *testing.T) {
	t.Parallel()

	_, err := setup(t)("def broken(:\n    pass\n")
	if !errors.Is(err, ErrSyntax) {
		t.Fatalf("err = %v, want ErrSyntax", err)
	}
}

func findByName(n *model.Node, name string) *model.Node {
	if n.IsDefinition() && n.Name == name {
		return n
	}
	for _, c := range n.Children {
		if found := findByName(c, name); found != nil {
			return found
		}
	}
	return nil
}
