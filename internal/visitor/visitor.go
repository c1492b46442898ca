// Package visitor drives independent tree visitors over a single traversal.
//
// Each Visitor sees every node exactly once on the way down (Enter) and once
// on the way up (Leave). The runner owns the ancestor stack, so visitors never
// need parent pointers, and collects the violations visitors report.
//
// The member-counting checks only look at Cursor.Parent. Cursor.Ancestors
// and Cursor.Depth expose the rest of the stack for checks that depend on
// nesting, and Func builds a one-off visitor from closures.
package visitor

import (
	"sort"

	"github.com/phobologic/pycounts/internal/model"
	"github.com/phobologic/pycounts/internal/violation"
)

// Visitor is one independent check sharing the traversal.
// A Visitor instance holds per-tree state and must not be reused across trees.
type Visitor interface {
	// Name is a short identifier for the check (e.g. "module-members").
	Name() string

	// Enter is called before the node's children are visited.
	Enter(c *Cursor)

	// Leave is called after all of the node's children have been visited.
	Leave(c *Cursor)
}

// Cursor is the traversal state passed to visitors for the current node.
type Cursor struct {
	Node *model.Node

	stack  []*model.Node
	report *[]violation.Violation
}

// Parent returns the immediate parent of the current node, or nil at the root.
func (c *Cursor) Parent() *model.Node {
	if len(c.stack) == 0 {
		return nil
	}
	return c.stack[len(c.stack)-1]
}

// Ancestors returns the enclosing nodes from the root down to the parent.
// The slice is only valid during the callback.
func (c *Cursor) Ancestors() []*model.Node {
	return c.stack
}

// Depth is the number of ancestors of the current node.
func (c *Cursor) Depth() int {
	return len(c.stack)
}

// Report records a violation.
func (c *Cursor) Report(v violation.Violation) {
	*c.report = append(*c.report, v)
}

// Run traverses tree depth-first once, dispatching every node to each
// visitor in order, and returns the reported violations sorted by position.
func Run(tree *model.Node, visitors ...Visitor) []violation.Violation {
	var out []violation.Violation
	if tree == nil || len(visitors) == 0 {
		return out
	}

	c := &Cursor{report: &out}
	walk(tree, c, visitors)

	sort.SliceStable(out, func(i, j int) bool {
		return violation.Less(out[i], out[j])
	})
	return out
}

func walk(node *model.Node, c *Cursor, visitors []Visitor) {
	c.Node = node
	for _, v := range visitors {
		v.Enter(c)
	}

	c.stack = append(c.stack, node)
	for _, child := range node.Children {
		walk(child, c, visitors)
	}
	c.stack = c.stack[:len(c.stack)-1]

	c.Node = node
	for _, v := range visitors {
		v.Leave(c)
	}
}

// Func adapts plain functions to the Visitor interface. Nil callbacks are skipped.
type Func struct {
	ID      string
	OnEnter func(c *Cursor)
	OnLeave func(c *Cursor)
}

func (f *Func) Name() string { return f.ID }

func (f *Func) Enter(c *Cursor) {
	if f.OnEnter != nil {
		f.OnEnter(c)
	}
}

func (f *Func) Leave(c *Cursor) {
	if f.OnLeave != nil {
		f.OnLeave(c)
	}
}
