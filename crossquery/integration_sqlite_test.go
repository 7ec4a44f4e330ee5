package crossquery_test

import (
	"context"
	"path/filepath"
	"sort"
	"testing"

	"github.com/crossquery/crossquery/crossquery"
	"github.com/crossquery/crossquery/crossquery/store"
	"github.com/crossquery/crossquery/crossquery/store/sqlite"
	"github.com/crossquery/crossquery/crossquery/store/sqlkv"
	_ "modernc.org/sqlite"
)

func newClient(t *testing.T) *sqlkv.Client {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	client, err := sqlite.Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func seedFields(t *testing.T, client store.Client) {
	t.Helper()
	ctx := context.Background()

	entities := []store.Entity{
		{Kind: "fields", Key: "e1", Properties: map[string]any{"f1": 1, "f2": 2, "f3": 2, "name": "alpha"}},
		{Kind: "fields", Key: "e2", Properties: map[string]any{"f1": 2, "f2": 2, "f3": 2, "name": "beta"}},
		{Kind: "fields", Key: "e3", Properties: map[string]any{"f1": 3, "f2": 2, "f3": 2, "name": "gamma"}},
		{Kind: "fields", Key: "e4", Properties: map[string]any{"f1": 1, "f2": 5, "f3": 2, "name": "delta"}},
		{Kind: "fields", Key: "e5", Properties: map[string]any{"f1": 2, "f2": 3, "f3": 9, "name": "epsilon"}},
	}
	for _, e := range entities {
		if err := client.Put(ctx, e); err != nil {
			t.Fatalf("Put %s: %v", e.Key, err)
		}
	}
}

func sortedKeys(entities []store.Entity) []string {
	keys := make([]string, len(entities))
	for i, e := range entities {
		keys[i] = e.Key
	}
	sort.Strings(keys)
	return keys
}

func wantKeys(t *testing.T, entities []store.Entity, want ...string) {
	t.Helper()
	got := sortedKeys(entities)
	sort.Strings(want)
	if len(got) != len(want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("keys = %v, want %v", got, want)
		}
	}
}

// one range filter plus equality filters, no composite index
func TestQueryRangePlusEqualities(t *testing.T) {
	client := newClient(t)
	seedFields(t, client)

	q := crossquery.New(client, "fields")
	q.AddFilter("f1", store.OpLte, 2)
	q.AddFilter("f2", store.OpEq, 2)
	q.AddFilter("f3", store.OpEq, 2)

	got, err := q.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	wantKeys(t, got, "e1", "e2")
}

// range filters on two different properties, beyond the native limit
func TestQueryTwoRangeProperties(t *testing.T) {
	client := newClient(t)
	seedFields(t, client)

	q := crossquery.New(client, "fields")
	q.AddFilter("f1", store.OpLte, 2)
	q.AddFilter("f2", store.OpGte, 2)
	q.AddFilter("f3", store.OpEq, 2)

	got, err := q.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	wantKeys(t, got, "e1", "e2", "e4")
}

// sort on a property unrelated to the filtered one
func TestQuerySortOnUnfilteredProperty(t *testing.T) {
	client := newClient(t)
	seedFields(t, client)

	q := crossquery.New(client, "fields")
	q.AddFilter("f1", store.OpLte, 2)
	q.Order("f2", "name")

	got, err := q.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	// f2 ascending, names break the f2=2 tie
	want := []string{"e1", "e2", "e5", "e4"}
	if len(got) != len(want) {
		t.Fatalf("keys = %v, want %v", sortedKeys(got), want)
	}
	for i, e := range got {
		if e.Key != want[i] {
			t.Fatalf("position %d = %s, want %s", i, e.Key, want[i])
		}
	}
}

func TestQueryDescendingSort(t *testing.T) {
	client := newClient(t)
	seedFields(t, client)

	q := crossquery.New(client, "fields")
	q.AddFilter("f3", store.OpEq, 2)
	q.Order("-f1", "name")

	got, err := q.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	want := []string{"e3", "e2", "e1", "e4"} // f1 descending 3, 2, 1, 1; name breaks the f1=1 tie ascending
	if got[0].Key != "e3" || got[1].Key != "e2" {
		t.Fatalf("keys = %v, want %v", sortedKeys(got), want)
	}
	if got[2].Key != "e1" || got[3].Key != "e4" {
		t.Fatalf("tie order = [%s %s], want [e1 e4]", got[2].Key, got[3].Key)
	}
}

func TestQueryEmptyIntersection(t *testing.T) {
	client := newClient(t)
	seedFields(t, client)

	q := crossquery.New(client, "fields")
	q.AddFilter("f1", store.OpEq, 1)
	q.AddFilter("name", store.OpEq, "beta")

	got, err := q.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("result = %v, want empty slice", got)
	}
}

func TestQuerySessionReuseAcrossKinds(t *testing.T) {
	client := newClient(t)
	seedFields(t, client)
	ctx := context.Background()

	if err := client.Put(ctx, store.Entity{
		Kind: "other", Key: "o1", Properties: map[string]any{"f1": 1},
	}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	q := crossquery.New(client, "fields")
	q.AddFilter("f1", store.OpEq, 1)
	got, err := q.Fetch(ctx)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	wantKeys(t, got, "e1", "e4")

	q.Clear()
	if _, err := q.Fetch(ctx); !crossquery.IsKind(err, crossquery.ErrConfig) {
		t.Fatalf("fetch after Clear: err = %v, want config error", err)
	}

	q.Rebind("other")
	q.AddFilter("f1", store.OpEq, 1)
	got, err = q.Fetch(ctx)
	if err != nil {
		t.Fatalf("Fetch after Rebind: %v", err)
	}
	wantKeys(t, got, "o1")
}

func TestQueryKeysNativeLimits(t *testing.T) {
	client := newClient(t)
	seedFields(t, client)
	ctx := context.Background()

	// inequality on two properties is beyond the native engine
	_, err := client.QueryKeys(ctx, "fields", []store.Clause{
		{Property: "f1", Op: store.OpLte, Value: 2},
		{Property: "f2", Op: store.OpGte, Value: 2},
	})
	if !crossquery.IsKind(err, crossquery.ErrRejected) {
		t.Fatalf("err = %v, want rejected", err)
	}

	// equality-only across properties is native-supported
	keys, err := client.QueryKeys(ctx, "fields", []store.Clause{
		{Property: "f2", Op: store.OpEq, Value: 2},
		{Property: "f3", Op: store.OpEq, Value: 2},
	})
	if err != nil {
		t.Fatalf("QueryKeys: %v", err)
	}
	sort.Strings(keys)
	if len(keys) != 3 || keys[0] != "e1" || keys[1] != "e2" || keys[2] != "e3" {
		t.Fatalf("keys = %v, want [e1 e2 e3]", keys)
	}

	// several clauses on one property form a range
	keys, err = client.QueryKeys(ctx, "fields", []store.Clause{
		{Property: "f1", Op: store.OpGte, Value: 2},
		{Property: "f1", Op: store.OpLte, Value: 3},
	})
	if err != nil {
		t.Fatalf("QueryKeys: %v", err)
	}
	sort.Strings(keys)
	if len(keys) != 3 || keys[0] != "e2" || keys[1] != "e3" || keys[2] != "e5" {
		t.Fatalf("keys = %v, want [e2 e3 e5]", keys)
	}
}

func TestQueryKeysConflictingEqualities(t *testing.T) {
	client := newClient(t)
	seedFields(t, client)

	// contradictory conjunction on one property: native engine yields nothing
	keys, err := client.QueryKeys(context.Background(), "fields", []store.Clause{
		{Property: "f1", Op: store.OpEq, Value: 1},
		{Property: "f1", Op: store.OpEq, Value: 2},
	})
	if err != nil {
		t.Fatalf("QueryKeys: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("keys = %v, want none", keys)
	}
}

func TestGetMultiOmitsMissingKeys(t *testing.T) {
	client := newClient(t)
	seedFields(t, client)

	entities, err := client.GetMulti(context.Background(), "fields", []string{"e1", "missing", "e3"})
	if err != nil {
		t.Fatalf("GetMulti: %v", err)
	}
	wantKeys(t, entities, "e1", "e3")
}

func TestPutReplacesIndexedProperties(t *testing.T) {
	client := newClient(t)
	seedFields(t, client)
	ctx := context.Background()

	if err := client.Put(ctx, store.Entity{
		Kind: "fields", Key: "e1", Properties: map[string]any{"f1": 9},
	}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	keys, err := client.QueryKeys(ctx, "fields", []store.Clause{
		{Property: "f1", Op: store.OpLte, Value: 2},
	})
	if err != nil {
		t.Fatalf("QueryKeys: %v", err)
	}
	for _, k := range keys {
		if k == "e1" {
			t.Fatal("e1 still matches its old f1 value after overwrite")
		}
	}
}

func TestDeleteAndKinds(t *testing.T) {
	client := newClient(t)
	seedFields(t, client)
	ctx := context.Background()

	if err := client.Put(ctx, store.Entity{
		Kind: "other", Key: "o1", Properties: map[string]any{"f1": 1},
	}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	kinds, err := client.Kinds(ctx)
	if err != nil {
		t.Fatalf("Kinds: %v", err)
	}
	if len(kinds) != 2 || kinds[0] != "fields" || kinds[1] != "other" {
		t.Fatalf("kinds = %v, want [fields other]", kinds)
	}

	found, err := client.Delete(ctx, "fields", "e5")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !found {
		t.Fatal("Delete reported e5 missing")
	}
	found, err = client.Delete(ctx, "fields", "e5")
	if err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if found {
		t.Fatal("second Delete reported e5 present")
	}

	keys, err := client.QueryKeys(ctx, "fields", []store.Clause{
		{Property: "f1", Op: store.OpEq, Value: 2},
	})
	if err != nil {
		t.Fatalf("QueryKeys: %v", err)
	}
	if len(keys) != 1 || keys[0] != "e2" {
		t.Fatalf("keys = %v, want [e2]", keys)
	}
}

func TestStringAndBoolFilters(t *testing.T) {
	client := newClient(t)
	seedFields(t, client)
	ctx := context.Background()

	if err := client.Put(ctx, store.Entity{
		Kind: "fields", Key: "e6", Properties: map[string]any{"f1": 1, "done": true},
	}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	q := crossquery.New(client, "fields")
	q.AddFilter("name", store.OpEq, "alpha")
	got, err := q.Fetch(ctx)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	wantKeys(t, got, "e1")

	q.Clear()
	q.Rebind("fields")
	q.AddFilter("done", store.OpEq, true)
	got, err = q.Fetch(ctx)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	wantKeys(t, got, "e6")

	// string range: lexicographic
	q.Clear()
	q.Rebind("fields")
	q.AddFilter("name", store.OpLt, "c")
	got, err = q.Fetch(ctx)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	wantKeys(t, got, "e1", "e2")
}

func TestOpenExistingStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	first, err := sqlite.Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := first.Put(ctx, store.Entity{
		Kind: "fields", Key: "e1", Properties: map[string]any{"f1": 1},
	}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := sqlite.Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	q := crossquery.New(second, "fields")
	q.AddFilter("f1", store.OpEq, 1)
	got, err := q.Fetch(ctx)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	wantKeys(t, got, "e1")
}
