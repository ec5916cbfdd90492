package prereq

import (
	"encoding/json"
	"strconv"
	"strings"
)

// WritingCode is the fixed course code every writing requirement maps to
const WritingCode = "WRIT 1"

// NoneMarker is the literal used in catalog text and in JSON output for
// courses without prerequisites
const NoneMarker = "None"

// Expr is a node of a prerequisite expression tree.
// Trees are immutable once built and share no state with each other.
type Expr interface {
	// String returns a compact infix form of the expression
	String() string

	json.Marshaler

	exprNode() // marker method
}

// Course references a single prerequisite course by code
type Course struct {
	Code string
}

// Concurrent references a course that may be taken concurrently.
// It renders exactly like Course.
type Concurrent struct {
	Code string
}

// Writing is the entry level writing requirement
type Writing struct{}

// MathPlacement requires a math placement exam score of at least MinScore
type MathPlacement struct {
	MinScore int
}

// None marks a course without prerequisites
type None struct{}

// And requires all of its children
type And struct {
	children []Expr
}

// Or requires any one of its children
type Or struct {
	children []Expr
}

func (Course) exprNode()        {}
func (Concurrent) exprNode()    {}
func (Writing) exprNode()       {}
func (MathPlacement) exprNode() {}
func (None) exprNode()          {}
func (And) exprNode()           {}
func (Or) exprNode()            {}

// NewCourse returns a course leaf, or nil if code is blank
func NewCourse(code string) Expr {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil
	}
	return Course{Code: code}
}

// NewConcurrent returns a concurrent course leaf, or nil if code is blank
func NewConcurrent(code string) Expr {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil
	}
	return Concurrent{Code: code}
}

// NewAnd builds an AND node. Nil children are dropped; a single remaining
// child is returned as is and no children at all yields nil.
func NewAnd(children ...Expr) Expr {
	kept := compact(children)
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	default:
		return And{children: kept}
	}
}

// NewOr builds an OR node with the same collapsing rules as NewAnd
func NewOr(children ...Expr) Expr {
	kept := compact(children)
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	default:
		return Or{children: kept}
	}
}

func compact(children []Expr) []Expr {
	kept := make([]Expr, 0, len(children))
	for _, child := range children {
		if child != nil {
			kept = append(kept, child)
		}
	}
	return kept
}

// Children returns a copy of the AND operands in source order
func (a And) Children() []Expr {
	return append([]Expr(nil), a.children...)
}

// Children returns a copy of the OR alternatives in source order
func (o Or) Children() []Expr {
	return append([]Expr(nil), o.children...)
}

func (c Course) String() string        { return c.Code }
func (c Concurrent) String() string    { return c.Code }
func (Writing) String() string         { return WritingCode }
func (None) String() string            { return NoneMarker }
func (m MathPlacement) String() string { return "MPE>=" + strconv.Itoa(m.MinScore) }
func (a And) String() string           { return join(a.children, " AND ") }
func (o Or) String() string            { return join(o.children, " OR ") }

func join(children []Expr, sep string) string {
	parts := make([]string, len(children))
	for i, child := range children {
		switch child.(type) {
		case And, Or:
			parts[i] = "(" + child.String() + ")"
		default:
			parts[i] = child.String()
		}
	}
	return strings.Join(parts, sep)
}

func (c Course) MarshalJSON() ([]byte, error)     { return json.Marshal(c.Code) }
func (c Concurrent) MarshalJSON() ([]byte, error) { return json.Marshal(c.Code) }
func (Writing) MarshalJSON() ([]byte, error)      { return json.Marshal(WritingCode) }
func (None) MarshalJSON() ([]byte, error)         { return json.Marshal(NoneMarker) }

func (m MathPlacement) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]int{"MPE": m.MinScore})
}

func (a And) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]Expr{"AND": a.children})
}

func (o Or) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]Expr{"OR": o.children})
}
