// Package air performs degree analysis of the algebraic constraint
// families the proof system would arithmetize the execution trace into.
// Constraints are declared as sums of monomial terms over named trace
// columns, so total degree is exact integer bookkeeping rather than a
// symbolic computation; the analysis is therefore deterministic and
// independent of any CAS.
package air

import (
	"fmt"
	"sort"
)

// ConstraintKind classifies a relation by the rows it reads.
type ConstraintKind string

const (
	// KindTransition relates consecutive rows (current and next).
	KindTransition ConstraintKind = "transition"

	// KindBoundary pins values of the first or last row.
	KindBoundary ConstraintKind = "boundary"

	// KindLookup enforces membership of a column in a precomputed table.
	KindLookup ConstraintKind = "lookup"
)

// Term is one monomial of a constraint polynomial: a product of schema
// columns raised to non-negative integer exponents. Coefficients are
// irrelevant to degree analysis and are not tracked.
type Term struct {
	Exponents map[string]int
}

// Degree returns the total degree of the term.
func (t Term) Degree() int {
	d := 0
	for _, e := range t.Exponents {
		d += e
	}
	return d
}

// Constraint is a single polynomial relation over trace columns.
type Constraint struct {
	Name  string
	Kind  ConstraintKind
	Terms []Term
}

// Degree returns the total degree of the constraint: the maximum total
// degree over its terms.
func (c Constraint) Degree() int {
	max := 0
	for _, t := range c.Terms {
		if d := t.Degree(); d > max {
			max = d
		}
	}
	return max
}

// Columns returns the sorted set of columns the constraint reads.
func (c Constraint) Columns() []string {
	seen := map[string]bool{}
	for _, t := range c.Terms {
		for col, e := range t.Exponents {
			if e > 0 {
				seen[col] = true
			}
		}
	}
	cols := make([]string, 0, len(seen))
	for col := range seen {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// Family is a named set of constraints sharing one degree ceiling.
type Family struct {
	Name        string
	Ceiling     int
	Constraints []Constraint
}

// Schema is the set of trace columns constraints may reference. Column
// references outside the schema are declaration bugs and fail analysis.
type Schema struct {
	columns map[string]bool
	ordered []string
}

// NewSchema builds a schema from ordered column names.
func NewSchema(columns []string) *Schema {
	s := &Schema{columns: make(map[string]bool, len(columns))}
	for _, c := range columns {
		// Transition constraints reference the next row with a ' suffix.
		s.columns[c] = true
		s.columns[c+"'"] = true
		s.ordered = append(s.ordered, c)
	}
	return s
}

// Has reports whether the schema contains the column.
func (s *Schema) Has(column string) bool {
	return s.columns[column]
}

// Columns returns the ordered current-row column names.
func (s *Schema) Columns() []string {
	out := make([]string, len(s.ordered))
	copy(out, s.ordered)
	return out
}

// DegreeExceededError reports a constraint whose total degree exceeds the
// family ceiling. It is a structural proof of infeasibility and aborts the
// whole audit run.
type DegreeExceededError struct {
	Family     string
	Constraint string
	Degree     int
	Ceiling    int
}

// Error returns the error message.
func (e *DegreeExceededError) Error() string {
	return fmt.Sprintf("constraint family %q: constraint %q has total degree %d, ceiling is %d",
		e.Family, e.Constraint, e.Degree, e.Ceiling)
}

// ConstraintDegree is the analyzed degree of one relation.
type ConstraintDegree struct {
	Name    string
	Kind    ConstraintKind
	Degree  int
	Columns []string
}

// DegreeReport is the result of analyzing one constraint family.
type DegreeReport struct {
	Family      string
	Ceiling     int
	MaxDegree   int
	Constraints []ConstraintDegree

	// ProxyError is the worst-case angular approximation error of the
	// bounded-degree orientation proxy, when the family uses one.
	ProxyError float64
}

// Analyze determines the total degree of every relation in the family and
// fails the instant any relation exceeds the ceiling. Column references
// are validated against the schema first, so a typo surfaces as a schema
// error rather than a silently vacuous constraint.
func Analyze(family Family, schema *Schema) (*DegreeReport, error) {
	if family.Ceiling <= 0 {
		return nil, fmt.Errorf("family %q: degree ceiling must be positive, got %d", family.Name, family.Ceiling)
	}
	if len(family.Constraints) == 0 {
		return nil, fmt.Errorf("family %q: no constraints declared", family.Name)
	}

	report := &DegreeReport{
		Family:  family.Name,
		Ceiling: family.Ceiling,
	}

	for _, c := range family.Constraints {
		for _, col := range c.Columns() {
			if !schema.Has(col) {
				return nil, fmt.Errorf("family %q: constraint %q references unknown column %q",
					family.Name, c.Name, col)
			}
		}

		d := c.Degree()
		if d > family.Ceiling {
			return nil, &DegreeExceededError{
				Family:     family.Name,
				Constraint: c.Name,
				Degree:     d,
				Ceiling:    family.Ceiling,
			}
		}

		report.Constraints = append(report.Constraints, ConstraintDegree{
			Name:    c.Name,
			Kind:    c.Kind,
			Degree:  d,
			Columns: c.Columns(),
		})
		if d > report.MaxDegree {
			report.MaxDegree = d
		}
	}

	return report, nil
}

// Compose models the Fiat-Shamir linear combination of a family's
// constraints with challenge powers up to alphaDegree:
//
//	P = Σ α^i · C_i
//
// and returns the total degree of P in the trace variables and the
// challenge jointly. The composed degree must stay within the composition
// ceiling or the recursion layer on top of this family blows up.
func Compose(report *DegreeReport, alphaDegree, compositionCeiling int) (int, error) {
	if alphaDegree < 0 {
		return 0, fmt.Errorf("challenge degree must be non-negative, got %d", alphaDegree)
	}

	composed := report.MaxDegree + alphaDegree
	if composed > compositionCeiling {
		return 0, &DegreeExceededError{
			Family:     report.Family + "+fiat-shamir",
			Constraint: "composition",
			Degree:     composed,
			Ceiling:    compositionCeiling,
		}
	}
	return composed, nil
}
