// Package plan validates filter conjunctions against the native engine's
// limits and compiles them into key-only SQL over the props table. Both
// reference backends share it; only the placeholder style differs.
package plan

import (
	"fmt"
	"strings"

	"github.com/crossquery/crossquery/crossquery"
	"github.com/crossquery/crossquery/crossquery/store"
	"github.com/crossquery/crossquery/crossquery/store/sqlbuilder"
)

// Column names in the props table, one per scalar value class.
const (
	ColNum  = "num"
	ColStr  = "str"
	ColFlag = "flag"
)

// BindValue classifies a scalar property value into its props column and
// normalized binding. ok is false for nil and non-scalar values, which are
// stored in the entity document but never indexed.
func BindValue(v any) (col string, bound any, ok bool) {
	switch x := v.(type) {
	case bool:
		return ColFlag, x, true
	case string:
		return ColStr, x, true
	case int:
		return ColNum, float64(x), true
	case int8:
		return ColNum, float64(x), true
	case int16:
		return ColNum, float64(x), true
	case int32:
		return ColNum, float64(x), true
	case int64:
		return ColNum, float64(x), true
	case uint:
		return ColNum, float64(x), true
	case uint8:
		return ColNum, float64(x), true
	case uint16:
		return ColNum, float64(x), true
	case uint32:
		return ColNum, float64(x), true
	case uint64:
		return ColNum, float64(x), true
	case float32:
		return ColNum, float64(x), true
	case float64:
		return ColNum, x, true
	}
	return "", nil, false
}

// Validate checks a conjunction against the native limits: known operators,
// bindable values, and either one property with any operators or several
// properties with equality only.
func Validate(clauses []store.Clause) error {
	if len(clauses) == 0 {
		return crossquery.RejectedError("", "empty clause conjunction")
	}

	props := make(map[string]bool) // property -> has inequality
	var order []string
	for _, c := range clauses {
		if c.Property == "" {
			return crossquery.RejectedError("", "clause with empty property")
		}
		if !c.Op.Valid() {
			return crossquery.RejectedError(c.Property, fmt.Sprintf("unsupported operator %q", c.Op))
		}
		if _, _, ok := BindValue(c.Value); !ok {
			return crossquery.RejectedError(c.Property, fmt.Sprintf("value of type %T is not filterable", c.Value))
		}
		if _, seen := props[c.Property]; !seen {
			order = append(order, c.Property)
		}
		props[c.Property] = props[c.Property] || c.Op.Inequality()
	}

	if len(order) == 1 {
		return nil
	}
	for _, p := range order {
		if props[p] {
			return crossquery.RejectedError(p,
				"inequality filters across multiple properties require one sub-query per property")
		}
	}
	return nil
}

// CompileKeyQuery builds the key-only SELECT for a validated conjunction.
// A single-property conjunction becomes one scan of that property's rows;
// an equality-only multi-property conjunction becomes an INTERSECT of
// per-property scans. Arguments accumulate in b.
func CompileKeyQuery(b *sqlbuilder.Builder, kind string, clauses []store.Clause) (string, error) {
	if err := Validate(clauses); err != nil {
		return "", err
	}

	groups := make(map[string][]store.Clause)
	var order []string
	for _, c := range clauses {
		if _, ok := groups[c.Property]; !ok {
			order = append(order, c.Property)
		}
		groups[c.Property] = append(groups[c.Property], c)
	}

	selects := make([]string, 0, len(order))
	for _, prop := range order {
		sel, err := compilePropertyScan(b, kind, prop, groups[prop])
		if err != nil {
			return "", err
		}
		selects = append(selects, sel)
	}
	return strings.Join(selects, " INTERSECT "), nil
}

func compilePropertyScan(b *sqlbuilder.Builder, kind, prop string, clauses []store.Clause) (string, error) {
	var sb strings.Builder
	sb.WriteString("SELECT key FROM props WHERE kind = ")
	sb.WriteString(b.Arg(kind))
	sb.WriteString(" AND property = ")
	sb.WriteString(b.Arg(prop))
	for _, c := range clauses {
		col, bound, ok := BindValue(c.Value)
		if !ok {
			return "", crossquery.RejectedError(prop, fmt.Sprintf("value of type %T is not filterable", c.Value))
		}
		sb.WriteString(" AND ")
		sb.WriteString(col)
		sb.WriteString(" ")
		sb.WriteString(string(c.Op))
		sb.WriteString(" ")
		sb.WriteString(b.Arg(bound))
	}
	return sb.String(), nil
}
