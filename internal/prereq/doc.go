/*
Package prereq turns the free-text requirements sentence of a catalog course
into a normalized AND/OR tree.

A sentence is split on ";" into clauses. Each clause is first offered to the
keyword classifiers (concurrent enrollment, entry level writing, math
placement). Clauses no classifier claims are split on " and " and then " or "
into course codes:

	Parse("CSE 12 or CSE 16; Mathematics placement score of 30")
	// {"AND": [{"MPE": 30}, {"OR": ["CSE 12", "CSE 16"]}]}

Parsing is best effort. Clauses that cannot be interpreted are dropped rather
than reported as errors; ParseWithReport lists them. Trees never contain an
AND or OR with fewer than two children.

All functions are pure and safe for concurrent use.
*/
package prereq
