// Package render formats prerequisite trees and run summaries for the
// terminal.
package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/msto63/kurswerk/internal/prereq"
)

// Tree renders expr as an indented tree below a root label
func Tree(s Styles, root string, expr prereq.Expr) string {
	t := tree.Root(s.Title.Render(root)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(s.Enumerator)

	if expr == nil {
		expr = prereq.None{}
	}
	t.Child(node(s, expr))

	return t.String()
}

func node(s Styles, expr prereq.Expr) any {
	switch n := expr.(type) {
	case prereq.And:
		return branch(s, "AND", n.Children())
	case prereq.Or:
		return branch(s, "OR", n.Children())
	default:
		return Label(s, expr)
	}
}

func branch(s Styles, op string, children []prereq.Expr) *tree.Tree {
	t := tree.Root(s.Operator.Render(op)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(s.Enumerator)
	for _, child := range children {
		t.Child(node(s, child))
	}
	return t
}

// Label renders a leaf
func Label(s Styles, expr prereq.Expr) string {
	switch n := expr.(type) {
	case prereq.Course:
		return s.Course.Render(n.Code)
	case prereq.Concurrent:
		return s.Course.Render(n.Code) + " " + s.Label.Render("(concurrent)")
	case prereq.Writing:
		return s.Special.Render(prereq.WritingCode) + " " + s.Label.Render("(writing)")
	case prereq.MathPlacement:
		return s.Special.Render("MPE >= " + strconv.Itoa(n.MinScore))
	case prereq.None:
		return s.None.Render(prereq.NoneMarker)
	default:
		return expr.String()
	}
}

// Summary describes a finished run
type Summary struct {
	RunID    string
	Source   string
	Output   string
	Courses  int
	Skipped  int
	Dropped  int
	Duration time.Duration
}

// RunSummary renders a boxed run summary
func RunSummary(s Styles, sum Summary) string {
	rows := []struct {
		label string
		value string
	}{
		{"Run", sum.RunID},
		{"Quelle", sum.Source},
		{"Ausgabe", sum.Output},
		{"Kurse", strconv.Itoa(sum.Courses)},
		{"Übersprungen", strconv.Itoa(sum.Skipped)},
		{"Verworfen", strconv.Itoa(sum.Dropped)},
		{"Dauer", sum.Duration.Round(time.Millisecond).String()},
	}

	width := 0
	for _, r := range rows {
		width = max(width, lipgloss.Width(r.label))
	}

	lines := []string{s.Title.Render("Scrape abgeschlossen"), ""}
	for _, r := range rows {
		label := r.label + ":" + strings.Repeat(" ", width-lipgloss.Width(r.label))
		value := s.Value.Render(r.value)
		if r.label == "Verworfen" && sum.Dropped > 0 {
			value = s.Warning.Render(r.value)
		}
		lines = append(lines, fmt.Sprintf("%s %s", s.Label.Render(label), value))
	}

	return s.Box.Render(strings.Join(lines, "\n"))
}
