package counts

import (
	"strings"

	"github.com/phobologic/pycounts/internal/model"
)

// overloadMarkers are decorator names, after the last dot, that mark a
// definition as a signature placeholder.
var overloadMarkers = map[string]struct{}{
	"overload": {},
}

// IsOverloadMarker reports whether d is an overload marker: a plain name or an
// attribute whose final component is "overload", as in @overload and
// @typing.overload. Calls and any other expression shape are never markers.
func IsOverloadMarker(d model.Decorator) bool {
	switch d.Shape {
	case model.DecoratorName, model.DecoratorAttribute:
	default:
		return false
	}

	name := d.Name
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	_, ok := overloadMarkers[strings.TrimSpace(name)]
	return ok
}

// HasOverloadMarker reports whether any decorator of n is an overload marker.
func HasOverloadMarker(n *model.Node) bool {
	for _, d := range n.Decorators {
		if IsOverloadMarker(d) {
			return true
		}
	}
	return false
}

// Member is a definition counted against one scope, in declaration order.
type Member struct {
	Name     string
	Overload bool
	Node     *model.Node
}

func newMember(n *model.Node) Member {
	return Member{Name: n.Name, Overload: HasOverloadMarker(n), Node: n}
}

// Countable returns the members of one scope that count toward its tally.
//
// Members sharing a name form a group. Within a group, every member except
// the last is dropped when it carries an overload marker; the last member is
// always kept, marked or not. Unmarked earlier members are kept, and members
// with different names are never grouped.
func Countable(members []Member) []Member {
	last := make(map[string]int, len(members))
	for i, m := range members {
		last[m.Name] = i
	}

	out := make([]Member, 0, len(members))
	for i, m := range members {
		if m.Overload && m.Name != "" && last[m.Name] != i {
			continue
		}
		out = append(out, m)
	}
	return out
}
