package prereq

import (
	"fmt"
	"strings"
)

// Walk visits expr depth-first in source order. Returning false from fn
// skips the children of the current node.
func Walk(expr Expr, fn func(Expr) bool) {
	if expr == nil || !fn(expr) {
		return
	}
	switch e := expr.(type) {
	case And:
		for _, child := range e.children {
			Walk(child, fn)
		}
	case Or:
		for _, child := range e.children {
			Walk(child, fn)
		}
	}
}

// Validate checks the structural invariants of a tree: every AND/OR has at
// least two children, leaves carry non-blank codes and None only appears as
// the whole tree.
func Validate(expr Expr) error {
	if expr == nil {
		return fmt.Errorf("empty expression")
	}
	var err error
	visited := 0
	Walk(expr, func(node Expr) bool {
		visited++
		if err != nil {
			return false
		}
		switch n := node.(type) {
		case And:
			if len(n.children) < 2 {
				err = fmt.Errorf("AND node with %d children", len(n.children))
			}
		case Or:
			if len(n.children) < 2 {
				err = fmt.Errorf("OR node with %d children", len(n.children))
			}
		case Course:
			if strings.TrimSpace(n.Code) == "" {
				err = fmt.Errorf("course leaf with blank code")
			}
		case Concurrent:
			if strings.TrimSpace(n.Code) == "" {
				err = fmt.Errorf("concurrent leaf with blank code")
			}
		case None:
			if visited > 1 {
				err = fmt.Errorf("None marker nested inside a tree")
			}
		}
		return err == nil
	})
	return err
}

// Courses lists the course codes referenced by expr in source order,
// including concurrent ones and the writing requirement code
func Courses(expr Expr) []string {
	var codes []string
	Walk(expr, func(node Expr) bool {
		switch n := node.(type) {
		case Course:
			codes = append(codes, n.Code)
		case Concurrent:
			codes = append(codes, n.Code)
		case Writing:
			codes = append(codes, WritingCode)
		}
		return true
	})
	return codes
}
