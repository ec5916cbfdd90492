package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/msto63/kurswerk/internal/prereq"
)

// Course is one entry of the catalog page
type Course struct {
	Code    string // e.g. "CSE 101"
	Title   string // course name without the code
	Credits int    // 0 when the page does not list credits
	// Requirements is the raw requirements sentence with the leading verb
	// and periods removed, or prereq.NoneMarker
	Requirements string
}

// String returns a short description for log output
func (c Course) String() string {
	return fmt.Sprintf("%s (%s)", c.Code, c.Title)
}

// HasRequirements reports whether the course lists any requirements
func (c Course) HasRequirements() bool {
	return c.Requirements != prereq.NoneMarker
}

var courseNumberPattern = regexp.MustCompile(`[0-9]+`)

// Scope is a course number range. A zero Max leaves the range open upwards.
type Scope struct {
	Min int
	Max int
}

// Unbounded reports whether the scope accepts every course
func (s Scope) Unbounded() bool {
	return s.Min == 0 && s.Max == 0
}

// InScope reports whether the number in code falls inside the scope.
// Codes without a number are only in an unbounded scope.
func (s Scope) InScope(code string) bool {
	if s.Unbounded() {
		return true
	}
	digits := courseNumberPattern.FindString(code)
	if digits == "" {
		return false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return false
	}
	if n < s.Min {
		return false
	}
	return s.Max == 0 || n <= s.Max
}

// codeFromName returns the first two words of a course heading
func codeFromName(name string) string {
	words := strings.Fields(name)
	if len(words) > 2 {
		words = words[:2]
	}
	return strings.Join(words, " ")
}

// cleanRequirements drops the leading verb ("Prerequisite(s):") and every
// period from a requirements paragraph
func cleanRequirements(text string) string {
	text = strings.TrimSpace(text)
	_, text, _ = strings.Cut(text, " ")
	text = strings.TrimSpace(strings.ReplaceAll(text, ".", ""))
	if text == "" {
		return prereq.NoneMarker
	}
	return text
}
