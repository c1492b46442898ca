// Package counts implements the member-counting complexity visitors.
//
// Module members are classes and functions defined directly in a module
// body. Class members (methods) are functions and classes defined directly
// in a class body. Overload placeholders preceding the implementation of the
// same name are not counted.
package counts

import (
	"github.com/phobologic/pycounts/internal/config"
	"github.com/phobologic/pycounts/internal/model"
	"github.com/phobologic/pycounts/internal/violation"
	"github.com/phobologic/pycounts/internal/visitor"
)

// Visitor names.
const (
	ModuleMembersName = "module-members"
	MethodMembersName = "method-members"
)

// MembersVisitor tallies countable members per scope of one kind and reports
// every scope whose tally exceeds the limit.
type MembersVisitor struct {
	name      string
	kind      model.ScopeKind
	limit     int
	violation *violation.Kind

	tallies map[*model.Node][]Member
}

// NewModuleMembers returns a visitor reporting modules with more than
// o.MaxModuleMembers members.
func NewModuleMembers(o config.Options) *MembersVisitor {
	return newMembersVisitor(ModuleMembersName, model.ModuleScope, o.MaxModuleMembers, violation.TooManyModuleMembers)
}

// NewMethodMembers returns a visitor reporting classes with more than
// o.MaxMethods members.
func NewMethodMembers(o config.Options) *MembersVisitor {
	return newMembersVisitor(MethodMembersName, model.ClassScope, o.MaxMethods, violation.TooManyMethods)
}

func newMembersVisitor(name string, kind model.ScopeKind, limit int, v *violation.Kind) *MembersVisitor {
	return &MembersVisitor{
		name:      name,
		kind:      kind,
		limit:     limit,
		violation: v,
		tallies:   make(map[*model.Node][]Member),
	}
}

// Name implements [visitor.Visitor].
func (v *MembersVisitor) Name() string { return v.name }

// Enter implements [visitor.Visitor].
func (v *MembersVisitor) Enter(c *visitor.Cursor) {
	if k, ok := c.Node.ScopeKind(); ok && k == v.kind {
		v.tallies[c.Node] = nil
	}

	m, ok := Classify(c.Node, c.Parent())
	if !ok || m.Kind != v.kind {
		return
	}
	v.tallies[m.Scope] = append(v.tallies[m.Scope], newMember(c.Node))
}

// Leave implements [visitor.Visitor]. The scope's tally is final once its
// body has been traversed.
func (v *MembersVisitor) Leave(c *visitor.Cursor) {
	if k, ok := c.Node.ScopeKind(); !ok || k != v.kind {
		return
	}

	members := v.tallies[c.Node]
	delete(v.tallies, c.Node)

	if count := len(Countable(members)); count > v.limit {
		c.Report(violation.New(v.violation, c.Node, count, v.limit))
	}
}

// Check describes one available visitor.
type Check struct {
	Name string
	Doc  string
	Kind *violation.Kind
	New  func(config.Options) visitor.Visitor
}

// Checks returns every member-counting check in a stable order.
func Checks() []Check {
	return []Check{
		{
			Name: ModuleMembersName,
			Doc:  "Report modules with too many top-level classes and functions.",
			Kind: violation.TooManyModuleMembers,
			New:  func(o config.Options) visitor.Visitor { return NewModuleMembers(o) },
		},
		{
			Name: MethodMembersName,
			Doc:  "Report classes with too many methods.",
			Kind: violation.TooManyMethods,
			New:  func(o config.Options) visitor.Visitor { return NewMethodMembers(o) },
		},
	}
}

// Visitors returns a fresh instance of every check configured with o.
func Visitors(o config.Options) []visitor.Visitor {
	checks := Checks()
	out := make([]visitor.Visitor, 0, len(checks))
	for _, c := range checks {
		out = append(out, c.New(o))
	}
	return out
}
