package store

import "context"

// Op is a native filter operator. These are the only operators the
// underlying engines support on a single property.
type Op string

const (
	OpEq  Op = "="
	OpLt  Op = "<"
	OpLte Op = "<="
	OpGt  Op = ">"
	OpGte Op = ">="
)

// Inequality reports whether the operator constrains a range rather than a
// single value. Native engines limit how many properties may carry one.
func (o Op) Inequality() bool {
	return o != OpEq
}

// Valid reports whether o is one of the supported operators.
func (o Op) Valid() bool {
	switch o {
	case OpEq, OpLt, OpLte, OpGt, OpGte:
		return true
	}
	return false
}

// Clause is a single property filter. Immutable once handed to a query.
type Clause struct {
	Property string
	Op       Op
	Value    any
}

// Entity is a stored record, addressable by kind and key. Properties holds
// the scalar fields used for filtering and sorting plus anything else the
// caller stored.
type Entity struct {
	Kind       string
	Key        string
	Properties map[string]any
}

// Capabilities describes the limits of a backend's native query engine.
// The merge layer does not branch on these; they exist for introspection.
type Capabilities struct {
	// SingleInequalityProperty is true when at most one property per native
	// query may carry an inequality operator.
	SingleInequalityProperty bool

	// RequiresCompositeIndex is true when cross-property conjunctions need
	// a composite index the store may not have.
	RequiresCompositeIndex bool

	// ArbitrarySort is true when the engine can sort on fields unrelated
	// to the filtered ones. None of the reference backends can.
	ArbitrarySort bool
}

// Client is the capability surface the merge layer consumes. QueryKeys and
// GetMulti are the read path the merger depends on; the rest exists for
// loading data and introspection.
//
// Implementations must be safe for concurrent use by independent sessions.
type Client interface {
	// Backend names the implementation ("sqlite", "postgres").
	Backend() string

	Capabilities() Capabilities

	// QueryKeys returns the keys of entities of the given kind matching all
	// clauses, without field data. Native limits apply: clauses may all
	// target a single property with any mix of operators, or span several
	// properties only when every clause is an equality. Anything beyond
	// that is rejected.
	QueryKeys(ctx context.Context, kind string, clauses []Clause) ([]string, error)

	// GetMulti returns the full entities for the given keys. Keys with no
	// entity are omitted, not errors. Result order is unspecified.
	GetMulti(ctx context.Context, kind string, keys []string) ([]Entity, error)

	// Put stores an entity, replacing any previous entity with the same
	// kind and key. Scalar properties become filterable; nested values are
	// stored but not indexed.
	Put(ctx context.Context, e Entity) error

	// Delete removes an entity, reporting whether it existed.
	Delete(ctx context.Context, kind, key string) (bool, error)

	// Kinds lists the distinct kinds currently stored.
	Kinds(ctx context.Context) ([]string, error)

	Close() error
}
