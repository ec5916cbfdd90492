package prereq

import "strings"

const (
	clauseSeparator = ";"
	andConnective   = " and "
	orConnective    = " or "
)

// ReasonEmpty marks a non-blank clause that held no course code
const ReasonEmpty = "empty"

// Drop describes a clause that did not make it into the tree
type Drop struct {
	Clause string // clause text as it appeared in the sentence
	Reason string // classifier name or ReasonEmpty
}

// Report lists what a parse had to discard
type Report struct {
	Dropped []Drop
}

// Parse converts a requirements sentence into a prerequisite tree.
// It never fails; clauses that cannot be interpreted are left out.
func Parse(raw string) Expr {
	expr, _ := ParseWithReport(raw)
	return expr
}

// ParseWithReport is Parse that also returns the clauses it discarded
func ParseWithReport(raw string) (Expr, Report) {
	var report Report

	if raw == NoneMarker {
		return None{}, report
	}

	clauses := strings.Split(raw, clauseSeparator)

	var special, ordinary []Expr
	for _, clause := range clauses {
		leaf, v, name := classify(clause)
		switch v {
		case verdictSpecial:
			special = append(special, leaf)
			continue
		case verdictDropped:
			report.Dropped = append(report.Dropped, Drop{Clause: clause, Reason: name})
			continue
		}

		expr := decomposeClause(clause)
		if expr == nil {
			if strings.TrimSpace(clause) != "" {
				report.Dropped = append(report.Dropped, Drop{Clause: clause, Reason: ReasonEmpty})
			}
			continue
		}
		ordinary = append(ordinary, expr)
	}

	// Special leaves lead, ordinary clauses follow in source order. A lone
	// surviving condition collapses out of the outer AND.
	result := NewAnd(append(special, ordinary...)...)
	if result == nil {
		return None{}, report
	}
	return result, report
}

// decomposeClause splits a clause on "and", then each part on "or"
func decomposeClause(clause string) Expr {
	var parts []Expr
	for _, part := range splitClean(clause, andConnective) {
		parts = append(parts, decomposeAlternatives(part))
	}
	return NewAnd(parts...)
}

func decomposeAlternatives(part string) Expr {
	var alternatives []Expr
	for _, alt := range strings.Split(part, orConnective) {
		alternatives = append(alternatives, NewCourse(cleanFragment(alt)))
	}
	return NewOr(alternatives...)
}

// cleanFragment removes commas and stray "and" connectives left inside an
// alternative by loose catalog punctuation
func cleanFragment(fragment string) string {
	fragment = strings.ReplaceAll(fragment, ",", "")
	for strings.Contains(fragment, andConnective) {
		fragment = strings.ReplaceAll(fragment, andConnective, " ")
	}
	return strings.TrimSpace(fragment)
}

func splitClean(s, sep string) []string {
	var out []string
	for _, piece := range strings.Split(s, sep) {
		if piece = strings.TrimSpace(piece); piece != "" {
			out = append(out, piece)
		}
	}
	return out
}
