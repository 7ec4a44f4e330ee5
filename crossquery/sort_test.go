package crossquery

import (
	"testing"

	"github.com/crossquery/crossquery/crossquery/store"
)

func rows(props ...map[string]any) []store.Entity {
	out := make([]store.Entity, len(props))
	for i, p := range props {
		out[i] = store.Entity{Kind: "fields", Key: p["k"].(string), Properties: p}
	}
	return out
}

func keysOf(es []store.Entity) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Key
	}
	return out
}

func expectOrder(t *testing.T, es []store.Entity, want ...string) {
	t.Helper()
	got := keysOf(es)
	if len(got) != len(want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestSortPrimaryThenSecondary(t *testing.T) {
	// [(a asc), (b desc)]: equal a breaks ties by greater b first
	es := rows(
		map[string]any{"k": "r1", "a": 2.0, "b": 1.0},
		map[string]any{"k": "r2", "a": 1.0, "b": 1.0},
		map[string]any{"k": "r3", "a": 1.0, "b": 9.0},
		map[string]any{"k": "r4", "a": 2.0, "b": 5.0},
	)
	sortEntities(es, []SortKey{{Property: "a"}, {Property: "b", Descending: true}})
	expectOrder(t, es, "r3", "r2", "r4", "r1")
}

func TestSortUnequalPrimaryIgnoresSecondary(t *testing.T) {
	es := rows(
		map[string]any{"k": "r1", "a": 3.0, "b": 99.0},
		map[string]any{"k": "r2", "a": 1.0, "b": 0.0},
		map[string]any{"k": "r3", "a": 2.0, "b": 50.0},
	)
	sortEntities(es, []SortKey{{Property: "a"}, {Property: "b", Descending: true}})
	expectOrder(t, es, "r2", "r3", "r1")
}

func TestSortIsStable(t *testing.T) {
	es := rows(
		map[string]any{"k": "first", "a": 1.0},
		map[string]any{"k": "second", "a": 1.0},
		map[string]any{"k": "third", "a": 1.0},
	)
	sortEntities(es, []SortKey{{Property: "a"}})
	expectOrder(t, es, "first", "second", "third")
}

func TestSortDescending(t *testing.T) {
	es := rows(
		map[string]any{"k": "r1", "a": 1.0},
		map[string]any{"k": "r2", "a": 3.0},
		map[string]any{"k": "r3", "a": 2.0},
	)
	sortEntities(es, []SortKey{{Property: "a", Descending: true}})
	expectOrder(t, es, "r2", "r3", "r1")
}

func TestSortMissingPropertySortsFirst(t *testing.T) {
	es := rows(
		map[string]any{"k": "r1", "a": 1.0},
		map[string]any{"k": "r2"},
		map[string]any{"k": "r3", "a": 0.5},
	)
	sortEntities(es, []SortKey{{Property: "a"}})
	expectOrder(t, es, "r2", "r3", "r1")
}

func TestSortStrings(t *testing.T) {
	es := rows(
		map[string]any{"k": "r1", "name": "gamma"},
		map[string]any{"k": "r2", "name": "alpha"},
		map[string]any{"k": "r3", "name": "beta"},
	)
	sortEntities(es, []SortKey{{Property: "name"}})
	expectOrder(t, es, "r2", "r3", "r1")
}

func TestOrderParsesDirectionMarkers(t *testing.T) {
	q := New(&fakeClient{}, "fields")
	q.Order("f1", "-f2")

	want := []SortKey{{Property: "f1"}, {Property: "f2", Descending: true}}
	if len(q.order) != len(want) {
		t.Fatalf("order = %v, want %v", q.order, want)
	}
	for i := range want {
		if q.order[i] != want[i] {
			t.Fatalf("order[%d] = %v, want %v", i, q.order[i], want[i])
		}
	}
}

func TestOrderReplacesPreviousSpec(t *testing.T) {
	q := New(&fakeClient{}, "fields")
	q.Order("f1")
	q.Order("-f2")

	if len(q.order) != 1 || q.order[0] != (SortKey{Property: "f2", Descending: true}) {
		t.Fatalf("order = %v, want just descending f2", q.order)
	}
}

func TestCompareValuesRanksClasses(t *testing.T) {
	cases := []struct {
		name string
		a, b any
		want int
	}{
		{"numbers", 1.0, 2.0, -1},
		{"int and float mix", 2, 2.0, 0},
		{"strings", "a", "b", -1},
		{"bools", false, true, -1},
		{"missing before number", nil, 0.0, -1},
		{"number before string", 99.0, "a", -1},
		{"string before bool", "z", false, -1},
		{"equal strings", "x", "x", 0},
	}
	for _, tc := range cases {
		if got := compareValues(tc.a, tc.b); got != tc.want {
			t.Errorf("%s: compareValues(%v, %v) = %d, want %d", tc.name, tc.a, tc.b, got, tc.want)
		}
		if tc.want != 0 {
			if got := compareValues(tc.b, tc.a); got != -tc.want {
				t.Errorf("%s reversed: compareValues(%v, %v) = %d, want %d", tc.name, tc.b, tc.a, got, -tc.want)
			}
		}
	}
}
