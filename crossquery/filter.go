package crossquery

import (
	"strconv"
	"strings"

	"github.com/crossquery/crossquery/crossquery/store"
)

// ParseSortKey normalizes a marked property name: a leading "-" marks
// descending order and is stripped.
func ParseSortKey(property string) SortKey {
	if strings.HasPrefix(property, "-") {
		return SortKey{Property: property[1:], Descending: true}
	}
	return SortKey{Property: property, Descending: false}
}

// ParseClause reads a textual filter like "f1<=2", "name=alpha" or
// "done=true". The property ends at the leftmost operator, so a value may
// itself contain comparison characters. The value parses as a number when
// it looks like one, then as a bool, otherwise it stays a string;
// surrounding single or double quotes force a string.
func ParseClause(s string) (store.Clause, error) {
	idx := strings.IndexAny(s, "=<>")
	if idx <= 0 {
		return store.Clause{}, ConfigError("filter needs one of = < <= > >=: " + s)
	}
	op := store.Op(s[idx : idx+1])
	if (op == store.OpLt || op == store.OpGt) && idx+1 < len(s) && s[idx+1] == '=' {
		op += "="
	}
	prop := strings.TrimSpace(s[:idx])
	raw := strings.TrimSpace(s[idx+len(op):])
	if prop == "" {
		return store.Clause{}, ConfigError("filter is missing a property name: " + s)
	}
	if raw == "" {
		return store.Clause{}, ConfigError("filter is missing a value: " + s)
	}
	return store.Clause{Property: prop, Op: op, Value: parseValue(raw)}, nil
}

func parseValue(raw string) any {
	if len(raw) >= 2 {
		if (raw[0] == '"' && raw[len(raw)-1] == '"') || (raw[0] == '\'' && raw[len(raw)-1] == '\'') {
			return raw[1 : len(raw)-1]
		}
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	return raw
}
