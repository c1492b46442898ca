package counts

import "github.com/phobologic/pycounts/internal/model"

// Membership is the scope a definition counts against.
type Membership struct {
	Kind  model.ScopeKind
	Scope *model.Node
}

// Classify returns the scope a definition node counts against, given its
// immediate parent. ok is false when node is not a class or function
// definition, or when parent is not a module or class: definitions nested in
// a function body, a conditional, a loop or any other statement do not count
// against any scope.
func Classify(node, parent *model.Node) (m Membership, ok bool) {
	if node == nil || parent == nil || !node.IsDefinition() {
		return Membership{}, false
	}
	kind, ok := parent.ScopeKind()
	if !ok {
		return Membership{}, false
	}
	return Membership{Kind: kind, Scope: parent}, true
}
