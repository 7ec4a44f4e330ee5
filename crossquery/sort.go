package crossquery

import (
	"sort"

	"github.com/crossquery/crossquery/crossquery/store"
)

// sortEntities applies the multi-key sort by running one stable single-key
// pass per sort key, last priority first. Stability makes earlier values
// survive later passes only as tie-breaks, so after the final pass (the
// primary key) the slice is ordered by the full priority sequence.
func sortEntities(entities []store.Entity, keys []SortKey) {
	for i := len(keys) - 1; i >= 0; i-- {
		k := keys[i]
		sort.SliceStable(entities, func(a, b int) bool {
			c := compareValues(entities[a].Properties[k.Property], entities[b].Properties[k.Property])
			if k.Descending {
				return c > 0
			}
			return c < 0
		})
	}
}

// value rank classes; lower sorts first ascending
const (
	rankMissing = iota
	rankNumber
	rankString
	rankBool
)

// compareValues orders two property values. Numbers compare numerically,
// strings lexicographically, bools false before true. Across classes the
// order is missing < number < string < bool, so records lacking the sort
// property land first ascending. JSON decoding hands us float64 for every
// number; direct library callers may pass ints, normalized here.
func compareValues(a, b any) int {
	ra, na := rankValue(a)
	rb, nb := rankValue(b)
	if ra != rb {
		return compareInt(ra, rb)
	}
	switch ra {
	case rankNumber:
		fa := na.(float64)
		fb := nb.(float64)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case rankString:
		sa := na.(string)
		sb := nb.(string)
		switch {
		case sa < sb:
			return -1
		case sa > sb:
			return 1
		}
		return 0
	case rankBool:
		ba := na.(bool)
		bb := nb.(bool)
		switch {
		case !ba && bb:
			return -1
		case ba && !bb:
			return 1
		}
		return 0
	}
	return 0
}

func rankValue(v any) (int, any) {
	switch x := v.(type) {
	case nil:
		return rankMissing, nil
	case bool:
		return rankBool, x
	case string:
		return rankString, x
	case int:
		return rankNumber, float64(x)
	case int8:
		return rankNumber, float64(x)
	case int16:
		return rankNumber, float64(x)
	case int32:
		return rankNumber, float64(x)
	case int64:
		return rankNumber, float64(x)
	case uint:
		return rankNumber, float64(x)
	case uint8:
		return rankNumber, float64(x)
	case uint16:
		return rankNumber, float64(x)
	case uint32:
		return rankNumber, float64(x)
	case uint64:
		return rankNumber, float64(x)
	case float32:
		return rankNumber, float64(x)
	case float64:
		return rankNumber, x
	}
	// non-scalar values are never indexed and never sortable; group them
	// with missing
	return rankMissing, nil
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
