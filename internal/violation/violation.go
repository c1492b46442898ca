// Package violation defines the diagnostics produced by complexity visitors.
package violation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/phobologic/pycounts/internal/model"
)

// Kind describes one class of violation: a stable code and a message template.
// The template is completed with the violation text, "<observed> > <max>".
type Kind struct {
	Code     string
	Name     string
	Template string
}

var (
	// TooManyModuleMembers is reported on a module with too many classes and functions.
	TooManyModuleMembers = &Kind{
		Code:     "WPS202",
		Name:     "TooManyModuleMembersViolation",
		Template: "Found too many module members: {0}",
	}

	// TooManyMethods is reported on a class with too many methods.
	TooManyMethods = &Kind{
		Code:     "WPS214",
		Name:     "TooManyMethodsViolation",
		Template: "Found too many methods: {0}",
	}
)

// Violation is an immutable diagnostic for one offending scope.
type Violation struct {
	kind     *Kind
	pos      model.Position
	observed int
	max      int
}

// New creates a violation of kind at the position of node, carrying the
// observed count and the configured maximum.
func New(kind *Kind, node *model.Node, observed, limit int) Violation {
	return Violation{kind: kind, pos: node.Pos, observed: observed, max: limit}
}

func (v Violation) Kind() *Kind { return v.kind }
func (v Violation) Code() string { return v.kind.Code }
func (v Violation) Position() model.Position { return v.pos }
func (v Violation) Observed() int { return v.observed }
func (v Violation) Max() int { return v.max }

// Text returns the interpolated values, e.g. "2 > 1".
func (v Violation) Text() string {
	return fmt.Sprintf("%d > %d", v.observed, v.max)
}

// Message renders the kind's template with the violation text.
func (v Violation) Message() string {
	return strings.ReplaceAll(v.kind.Template, "{0}", v.Text())
}

// String returns "line:col: CODE message".
func (v Violation) String() string {
	return fmt.Sprintf("%s: %s %s", v.pos, v.kind.Code, v.Message())
}

// Record is the serialized form of a Violation.
type Record struct {
	Line     int    `json:"line"`
	Col      int    `json:"col"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Message  string `json:"message"`
	Observed int    `json:"observed"`
	Max      int    `json:"max"`
}

// Record returns the violation with its message rendered.
func (v Violation) Record() Record {
	return Record{
		Line:     v.pos.Line,
		Col:      v.pos.Col,
		Code:     v.kind.Code,
		Name:     v.kind.Name,
		Message:  v.Message(),
		Observed: v.observed,
		Max:      v.max,
	}
}

// MarshalJSON serializes the violation as its Record.
func (v Violation) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Record())
}

// Less orders violations by position, then code.
func Less(a, b Violation) bool {
	if a.pos.Line != b.pos.Line {
		return a.pos.Line < b.pos.Line
	}
	if a.pos.Col != b.pos.Col {
		return a.pos.Col < b.pos.Col
	}
	return a.kind.Code < b.kind.Code
}
