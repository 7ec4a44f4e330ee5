// Package postgres backs the store client with PostgreSQL via pgx. Each
// store lives in its own schema, pinned through search_path.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/crossquery/crossquery/crossquery/store"
	"github.com/crossquery/crossquery/crossquery/store/sqlbuilder"
	"github.com/crossquery/crossquery/crossquery/store/sqlkv"
)

type Adapter struct {
	DSN    string
	Schema string
}

func New(dsn, schema string) *Adapter {
	return &Adapter{DSN: dsn, Schema: schema}
}

// Open connects and ensures the schema and tables exist.
func Open(ctx context.Context, dsn, schema string) (*sqlkv.Client, error) {
	return sqlkv.Open(ctx, New(dsn, schema))
}

func (a *Adapter) Backend() string { return "postgres" }

func (a *Adapter) PlaceholderStyle() sqlbuilder.PlaceholderStyle {
	return sqlbuilder.PlaceholderDollar
}

func (a *Adapter) Capabilities() store.Capabilities {
	return store.Capabilities{
		SingleInequalityProperty: true,
		RequiresCompositeIndex:   true,
		ArbitrarySort:            false,
	}
}

func (a *Adapter) Close() error { return nil }

var schemaNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func quoteIdent(ident string) string {
	// ident is validated to contain no quotes; safe to wrap
	return `"` + ident + `"`
}

func (a *Adapter) ensureSchema(ctx context.Context, db *sql.DB) error {
	if a.Schema == "" || !schemaNameRe.MatchString(a.Schema) {
		return fmt.Errorf("invalid postgres schema name %q (must match %s)", a.Schema, schemaNameRe.String())
	}
	_, err := db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+quoteIdent(a.Schema))
	return err
}

func (a *Adapter) Connect(ctx context.Context) (*sql.DB, error) {
	// 1) Connect without search_path to ensure the schema exists
	cfg0, err := pgx.ParseConfig(a.DSN)
	if err != nil {
		return nil, err
	}
	db0 := stdlib.OpenDB(*cfg0)
	if err := db0.PingContext(ctx); err != nil {
		_ = db0.Close()
		return nil, err
	}
	if err := a.ensureSchema(ctx, db0); err != nil {
		_ = db0.Close()
		return nil, err
	}
	_ = db0.Close()

	// 2) Connect with search_path pinned to the schema
	cfg, err := pgx.ParseConfig(a.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.RuntimeParams == nil {
		cfg.RuntimeParams = map[string]string{}
	}
	cfg.RuntimeParams["search_path"] = a.Schema

	db := stdlib.OpenDB(*cfg)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (a *Adapter) Init(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, ddlBase); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx,
		"INSERT INTO meta (k, v) VALUES ('crossquery_magic', 'crossquery') ON CONFLICT (k) DO NOTHING"); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx,
		"INSERT INTO meta (k, v) VALUES ('crossquery_version', '1') ON CONFLICT (k) DO NOTHING"); err != nil {
		return err
	}

	var magic string
	if err := db.QueryRowContext(ctx, "SELECT v FROM meta WHERE k = 'crossquery_magic'").Scan(&magic); err != nil {
		return err
	}
	if magic != "crossquery" {
		return fmt.Errorf("schema %s is not a crossquery store", a.Schema)
	}
	return nil
}

const ddlBase = `
CREATE TABLE IF NOT EXISTS meta (
    k TEXT PRIMARY KEY,
    v TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS entities (
    kind TEXT NOT NULL,
    key  TEXT NOT NULL,
    doc  JSONB NOT NULL,
    PRIMARY KEY (kind, key)
);
CREATE TABLE IF NOT EXISTS props (
    kind     TEXT NOT NULL,
    key      TEXT NOT NULL,
    property TEXT NOT NULL,
    num      DOUBLE PRECISION,
    str      TEXT,
    flag     BOOLEAN,
    PRIMARY KEY (kind, key, property)
);
CREATE INDEX IF NOT EXISTS props_by_num  ON props (kind, property, num);
CREATE INDEX IF NOT EXISTS props_by_str  ON props (kind, property, str);
CREATE INDEX IF NOT EXISTS props_by_flag ON props (kind, property, flag);
`
