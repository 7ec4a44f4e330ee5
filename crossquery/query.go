// Package crossquery answers compound queries against key-value stores
// whose native engines only support restricted filter/sort combinations
// (at most one inequality property per query, composite indexes for
// cross-property conjunctions, sort order tied to filtered fields).
//
// A Query groups its filter clauses by property, issues one key-only
// native sub-query per property, intersects the resulting key sets,
// bulk-fetches the surviving entities, and sorts them in memory. Each
// sub-query touches a single property, so it never needs a composite
// index and never exceeds the single-inequality-property limit; the
// cross-property AND is recovered by the intersection.
package crossquery

import (
	"context"

	"github.com/crossquery/crossquery/crossquery/store"
)

// SortKey is one sort priority: a property and a direction.
type SortKey struct {
	Property   string
	Descending bool
}

// clauseGroups is the filter state: clauses partitioned by property, with
// first-insertion order preserved for both groups and clauses so sub-query
// issuance is deterministic.
type clauseGroups struct {
	order  []string
	byProp map[string][]store.Clause
}

func newClauseGroups() *clauseGroups {
	return &clauseGroups{byProp: make(map[string][]store.Clause)}
}

func (g *clauseGroups) add(c store.Clause) {
	if _, ok := g.byProp[c.Property]; !ok {
		g.order = append(g.order, c.Property)
	}
	g.byProp[c.Property] = append(g.byProp[c.Property], c)
}

func (g *clauseGroups) len() int { return len(g.order) }

// Query is a reusable query session bound to an entity kind. It is not
// safe for concurrent mutation; callers wanting parallel queries use one
// session each.
type Query struct {
	client  store.Client
	kind    string
	filters *clauseGroups
	order   []SortKey
}

// New creates a session over the given store client, bound to kind. The
// client is injected and caller-owned; New never dials anything itself.
func New(client store.Client, kind string) *Query {
	return &Query{
		client:  client,
		kind:    kind,
		filters: newClauseGroups(),
	}
}

// Kind returns the currently bound kind, empty after Clear.
func (q *Query) Kind() string { return q.kind }

// AddFilter appends a property filter. Clauses on the same property form a
// conjunction sent to the store as one native sub-query; clauses across
// properties are combined by key-set intersection at fetch time. Operator
// and value legality is the store's to judge. Adding two contradictory
// clauses on one property is allowed and yields whatever the native
// conjunction yields, normally nothing.
func (q *Query) AddFilter(property string, op store.Op, value any) {
	q.filters.add(store.Clause{Property: property, Op: op, Value: value})
}

// Order sets the sort order from marked property names: a leading "-"
// means descending. Several names may be given at once; the first is the
// primary sort key. Sorting happens entirely in memory after the fetch,
// so the properties need no relation to the filtered ones. Any previous
// order is replaced.
func (q *Query) Order(properties ...string) {
	keys := make([]SortKey, 0, len(properties))
	for _, p := range properties {
		keys = append(keys, ParseSortKey(p))
	}
	q.order = keys
}

// OrderBy is Order with pre-normalized keys.
func (q *Query) OrderBy(keys ...SortKey) {
	q.order = append([]SortKey(nil), keys...)
}

// Fetch runs the query: one key-only sub-query per filtered property, an
// intersection of the key sets, one bulk entity fetch, then the in-memory
// sort. It fails fast with a config error when no kind is bound or no
// filter was added; store failures pass through untranslated. Fetch never
// mutates the session, so it may be repeated.
func (q *Query) Fetch(ctx context.Context) ([]store.Entity, error) {
	if q.kind == "" {
		return nil, ConfigError("an entity kind must be bound before fetch")
	}
	if q.filters.len() == 0 {
		return nil, ConfigError("at least one filter clause is needed")
	}

	// Every group participates in the intersection; skipping one would
	// silently widen the result.
	var keys map[string]struct{}
	for _, prop := range q.filters.order {
		fetched, err := q.client.QueryKeys(ctx, q.kind, q.filters.byProp[prop])
		if err != nil {
			return nil, passthrough("query keys for "+prop, err)
		}
		got := make(map[string]struct{}, len(fetched))
		for _, k := range fetched {
			got[k] = struct{}{}
		}
		if keys == nil {
			keys = got
			continue
		}
		for k := range keys {
			if _, ok := got[k]; !ok {
				delete(keys, k)
			}
		}
	}

	if len(keys) == 0 {
		return []store.Entity{}, nil
	}

	ids := make([]string, 0, len(keys))
	for k := range keys {
		ids = append(ids, k)
	}
	entities, err := q.client.GetMulti(ctx, q.kind, ids)
	if err != nil {
		return nil, passthrough("get entities", err)
	}
	if entities == nil {
		entities = []store.Entity{}
	}

	if len(q.order) > 0 {
		sortEntities(entities, q.order)
	}
	return entities, nil
}

// Clear resets filters, sort order, and the bound kind so the session can
// be reused. A cleared session needs Rebind before the next fetch.
func (q *Query) Clear() {
	q.filters = newClauseGroups()
	q.order = nil
	q.kind = ""
}

// Rebind binds a new kind, typically after Clear.
func (q *Query) Rebind(kind string) {
	q.kind = kind
}
