package domain

import (
	"strings"

	m "github.com/verus-tools/vstrip/internal/model"
)

// renderContract turns removed contract clauses into documentation lines.
// Clause categories render in a fixed order, one line each; decreases never
// renders. Public functions get doc comments, private ones plain comments.
func renderContract(c m.ContractClauses, public bool) []string {
	marker := "//"
	if public {
		marker = "///"
	}

	lines := []string{marker + " Verus contract:"}

	add := func(keyword string, exprs ...string) {
		lines = append(lines, marker+" "+keyword+" "+strings.Join(exprs, ", "))
	}

	if len(c.Requires) > 0 {
		add("requires", c.Requires...)
	}

	if len(c.Recommends) > 0 || c.RecommendsVia != "" {
		line := marker + " recommends " + strings.Join(c.Recommends, ", ")
		if c.RecommendsVia != "" {
			line += " via " + c.RecommendsVia
		}
		lines = append(lines, line)
	}

	if len(c.Ensures) > 0 {
		add("ensures", c.Ensures...)
	}

	if len(c.DefaultEnsures) > 0 {
		add("default_ensures", c.DefaultEnsures...)
	}

	if len(c.Returns) > 0 {
		add("returns", c.Returns...)
	}

	if c.Invariants != nil {
		switch c.Invariants.Kind {
		case m.InvariantsAny:
			add("opens_invariants", "any")
		case m.InvariantsNone:
			add("opens_invariants", "none")
		case m.InvariantsList:
			add("opens_invariants", "["+strings.Join(c.Invariants.Exprs, ", ")+"]")
		case m.InvariantsSet:
			add("opens_invariants", c.Invariants.Exprs...)
		}
	}

	if c.Unwind != nil {
		line := marker + " no_unwind"
		if c.Unwind.When != "" {
			line += " when " + c.Unwind.When
		}
		lines = append(lines, line)
	}

	return lines
}
