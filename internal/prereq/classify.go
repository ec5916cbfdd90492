package prereq

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	courseCodePattern     = regexp.MustCompile(`\b[A-Z]{2,4} ?[0-9]+[A-Z]*\b`)
	concurrentCodePattern = regexp.MustCompile(`[A-Z]+ ?[0-9]+[A-Za-z]*`)
	scorePattern          = regexp.MustCompile(`[0-9]+`)
)

// verdict is the outcome of running a clause through the keyword classifiers
type verdict int

const (
	// verdictOrdinary: no classifier claimed the clause, decompose it normally
	verdictOrdinary verdict = iota
	// verdictSpecial: the clause became a special leaf
	verdictSpecial
	// verdictDropped: a classifier claimed the clause but found nothing usable
	verdictDropped
)

// classifier recognizes one category of non-course requirement
type classifier struct {
	name     string
	keywords []string
	// extract receives the clause and its prose with course codes masked out
	extract func(clause, prose string) (Expr, bool)
	// dropOnMiss decides what happens when keywords match but extract fails:
	// true drops the clause, false hands it to standard decomposition
	dropOnMiss bool
}

// classifiers are tried in order; the first whose keywords match wins
var classifiers = []classifier{
	{
		name:       "concurrent",
		keywords:   []string{"concurrent"},
		extract:    extractConcurrent,
		dropOnMiss: true,
	},
	{
		name:     "writing",
		keywords: []string{"entry", "level", "writing"},
		extract:  extractWriting,
	},
	{
		name:     "math-placement",
		keywords: []string{"mathematics", "math", "placement"},
		extract:  extractMathPlacement,
	},
}

func (c classifier) matches(lower string) bool {
	for _, kw := range c.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// classify runs clause through the classifier list. Keywords are matched
// against the prose only, so a code such as "MATH 19A" is not mistaken for a
// math placement clause.
func classify(clause string) (Expr, verdict, string) {
	prose := courseCodePattern.ReplaceAllString(clause, " ")
	lower := strings.ToLower(prose)
	for _, c := range classifiers {
		if !c.matches(lower) {
			continue
		}
		if leaf, ok := c.extract(clause, prose); ok {
			return leaf, verdictSpecial, c.name
		}
		if c.dropOnMiss {
			return nil, verdictDropped, c.name
		}
		return nil, verdictOrdinary, c.name
	}
	return nil, verdictOrdinary, ""
}

func extractConcurrent(clause, _ string) (Expr, bool) {
	code := concurrentCodePattern.FindString(clause)
	if code == "" {
		return nil, false
	}
	return NewConcurrent(code), true
}

func extractWriting(_, _ string) (Expr, bool) {
	return Writing{}, true
}

// extractMathPlacement reads the score from the prose so that the number of
// a course named in the same clause ("MATH 3 or ...") is not taken for it.
// When masking left no digits ("MPE 300") the clause itself is searched.
func extractMathPlacement(clause, prose string) (Expr, bool) {
	digits := scorePattern.FindString(prose)
	if digits == "" {
		digits = scorePattern.FindString(clause)
	}
	if digits == "" {
		return nil, false
	}
	score, err := strconv.Atoi(digits)
	if err != nil {
		return nil, false
	}
	return MathPlacement{MinScore: score}, true
}
