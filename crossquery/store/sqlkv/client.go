// Package sqlkv implements the store client contract on top of database/sql.
// The per-backend packages contribute an Adapter (connection, DDL,
// placeholder style); everything else is shared.
package sqlkv

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/crossquery/crossquery/crossquery"
	"github.com/crossquery/crossquery/crossquery/store"
	"github.com/crossquery/crossquery/crossquery/store/plan"
	"github.com/crossquery/crossquery/crossquery/store/sqlbuilder"
)

// Adapter abstracts database-specific concerns.
type Adapter interface {
	Backend() string
	PlaceholderStyle() sqlbuilder.PlaceholderStyle
	Capabilities() store.Capabilities

	Connect(ctx context.Context) (*sql.DB, error)

	// Init creates the entity and props tables if absent and stamps the
	// meta table. Must be idempotent.
	Init(ctx context.Context, db *sql.DB) error

	Close() error
}

// Client is a store.Client over a SQL database.
type Client struct {
	adapter Adapter
	db      *sql.DB
}

var _ store.Client = (*Client)(nil)

// Open connects through the adapter and ensures the schema exists.
func Open(ctx context.Context, adapter Adapter) (*Client, error) {
	db, err := adapter.Connect(ctx)
	if err != nil {
		return nil, crossquery.Wrap(crossquery.ErrIO, "connect to "+adapter.Backend(), err)
	}
	if err := adapter.Init(ctx, db); err != nil {
		db.Close()
		return nil, crossquery.Wrap(crossquery.ErrIO, "initialize "+adapter.Backend()+" store", err)
	}
	return &Client{adapter: adapter, db: db}, nil
}

func (c *Client) Backend() string { return c.adapter.Backend() }

func (c *Client) Capabilities() store.Capabilities { return c.adapter.Capabilities() }

func (c *Client) Close() error {
	err := c.db.Close()
	if aerr := c.adapter.Close(); err == nil {
		err = aerr
	}
	return err
}

// DB exposes the underlying handle for tests and migrations.
func (c *Client) DB() *sql.DB { return c.db }

func (c *Client) QueryKeys(ctx context.Context, kind string, clauses []store.Clause) ([]string, error) {
	if kind == "" {
		return nil, crossquery.NewError(crossquery.ErrRejected, "empty kind")
	}
	b := sqlbuilder.New(c.adapter.PlaceholderStyle())
	sqlText, err := plan.CompileKeyQuery(b, kind, clauses)
	if err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, sqlText, b.Args()...)
	if err != nil {
		return nil, crossquery.Wrap(crossquery.ErrStore, "query keys", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, crossquery.Wrap(crossquery.ErrStore, "scan key", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, crossquery.Wrap(crossquery.ErrStore, "iterate keys", err)
	}
	return keys, nil
}

func (c *Client) GetMulti(ctx context.Context, kind string, keys []string) ([]store.Entity, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	b := sqlbuilder.New(c.adapter.PlaceholderStyle())
	var sb strings.Builder
	sb.WriteString("SELECT key, doc FROM entities WHERE kind = ")
	sb.WriteString(b.Arg(kind))
	sb.WriteString(" AND key IN (")
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(b.Arg(k))
	}
	sb.WriteString(")")

	rows, err := c.db.QueryContext(ctx, sb.String(), b.Args()...)
	if err != nil {
		return nil, crossquery.Wrap(crossquery.ErrStore, "get entities", err)
	}
	defer rows.Close()

	var out []store.Entity
	for rows.Next() {
		var key, doc string
		if err := rows.Scan(&key, &doc); err != nil {
			return nil, crossquery.Wrap(crossquery.ErrStore, "scan entity", err)
		}
		props := make(map[string]any)
		if err := json.Unmarshal([]byte(doc), &props); err != nil {
			return nil, crossquery.Wrap(crossquery.ErrStore, "decode entity "+key, err)
		}
		out = append(out, store.Entity{Kind: kind, Key: key, Properties: props})
	}
	if err := rows.Err(); err != nil {
		return nil, crossquery.Wrap(crossquery.ErrStore, "iterate entities", err)
	}
	return out, nil
}

func (c *Client) Put(ctx context.Context, e store.Entity) error {
	if e.Kind == "" || e.Key == "" {
		return crossquery.ConfigError("entity kind and key must be set")
	}
	doc, err := json.Marshal(e.Properties)
	if err != nil {
		return crossquery.Wrap(crossquery.ErrStore, "encode entity "+e.Key, err)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return crossquery.Wrap(crossquery.ErrStore, "begin put", err)
	}
	defer tx.Rollback()

	b := sqlbuilder.New(c.adapter.PlaceholderStyle())
	upsert := "INSERT INTO entities (kind, key, doc) VALUES (" +
		b.Arg(e.Kind) + ", " + b.Arg(e.Key) + ", " + b.Arg(string(doc)) +
		") ON CONFLICT (kind, key) DO UPDATE SET doc = excluded.doc"
	if _, err := tx.ExecContext(ctx, upsert, b.Args()...); err != nil {
		return crossquery.Wrap(crossquery.ErrStore, "upsert entity "+e.Key, err)
	}

	b = sqlbuilder.New(c.adapter.PlaceholderStyle())
	del := "DELETE FROM props WHERE kind = " + b.Arg(e.Kind) + " AND key = " + b.Arg(e.Key)
	if _, err := tx.ExecContext(ctx, del, b.Args()...); err != nil {
		return crossquery.Wrap(crossquery.ErrStore, "clear props for "+e.Key, err)
	}

	for prop, val := range e.Properties {
		col, bound, ok := plan.BindValue(val)
		if !ok {
			continue // unindexed value, lives only in the doc
		}
		var num, str, flag any
		switch col {
		case plan.ColNum:
			num = bound
		case plan.ColStr:
			str = bound
		case plan.ColFlag:
			flag = bound
		}
		b = sqlbuilder.New(c.adapter.PlaceholderStyle())
		ins := "INSERT INTO props (kind, key, property, num, str, flag) VALUES (" +
			b.Arg(e.Kind) + ", " + b.Arg(e.Key) + ", " + b.Arg(prop) + ", " +
			b.Arg(num) + ", " + b.Arg(str) + ", " + b.Arg(flag) + ")"
		if _, err := tx.ExecContext(ctx, ins, b.Args()...); err != nil {
			return crossquery.Wrap(crossquery.ErrStore, "index property "+prop, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return crossquery.Wrap(crossquery.ErrStore, "commit put", err)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, kind, key string) (bool, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return false, crossquery.Wrap(crossquery.ErrStore, "begin delete", err)
	}
	defer tx.Rollback()

	b := sqlbuilder.New(c.adapter.PlaceholderStyle())
	delProps := "DELETE FROM props WHERE kind = " + b.Arg(kind) + " AND key = " + b.Arg(key)
	if _, err := tx.ExecContext(ctx, delProps, b.Args()...); err != nil {
		return false, crossquery.Wrap(crossquery.ErrStore, "delete props", err)
	}

	b = sqlbuilder.New(c.adapter.PlaceholderStyle())
	delEnt := "DELETE FROM entities WHERE kind = " + b.Arg(kind) + " AND key = " + b.Arg(key)
	res, err := tx.ExecContext(ctx, delEnt, b.Args()...)
	if err != nil {
		return false, crossquery.Wrap(crossquery.ErrStore, "delete entity", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, crossquery.Wrap(crossquery.ErrStore, "delete entity", err)
	}

	if err := tx.Commit(); err != nil {
		return false, crossquery.Wrap(crossquery.ErrStore, "commit delete", err)
	}
	return n > 0, nil
}

func (c *Client) Kinds(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT DISTINCT kind FROM entities ORDER BY kind")
	if err != nil {
		return nil, crossquery.Wrap(crossquery.ErrStore, "list kinds", err)
	}
	defer rows.Close()

	var kinds []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, crossquery.Wrap(crossquery.ErrStore, "scan kind", err)
		}
		kinds = append(kinds, k)
	}
	if err := rows.Err(); err != nil {
		return nil, crossquery.Wrap(crossquery.ErrStore, "iterate kinds", err)
	}
	return kinds, nil
}
