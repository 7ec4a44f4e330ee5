// Package sqlite backs the store client with a SQLite database. Works with
// both the modernc.org/sqlite driver ("sqlite") and mattn/go-sqlite3
// ("sqlite3"); the caller chooses by registering the driver and naming it.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/crossquery/crossquery/crossquery/store"
	"github.com/crossquery/crossquery/crossquery/store/sqlbuilder"
	"github.com/crossquery/crossquery/crossquery/store/sqlkv"
)

type Adapter struct {
	Path       string
	DriverName string
}

func New(path string) *Adapter {
	return &Adapter{Path: path, DriverName: "sqlite"}
}

func NewWithDriver(path, driver string) *Adapter {
	return &Adapter{Path: path, DriverName: driver}
}

// Open connects with the default driver and ensures the schema exists.
func Open(ctx context.Context, path string) (*sqlkv.Client, error) {
	return sqlkv.Open(ctx, New(path))
}

func OpenWithDriver(ctx context.Context, path, driver string) (*sqlkv.Client, error) {
	return sqlkv.Open(ctx, NewWithDriver(path, driver))
}

func (a *Adapter) Backend() string { return "sqlite" }

func (a *Adapter) PlaceholderStyle() sqlbuilder.PlaceholderStyle {
	return sqlbuilder.PlaceholderQuestion
}

func (a *Adapter) Capabilities() store.Capabilities {
	return store.Capabilities{
		SingleInequalityProperty: true,
		RequiresCompositeIndex:   true,
		ArbitrarySort:            false,
	}
}

func (a *Adapter) Connect(ctx context.Context) (*sql.DB, error) {
	dsn := a.Path
	if !strings.Contains(dsn, "?") {
		dsn = dsn + "?_busy_timeout=5000&_foreign_keys=on"
	} else {
		dsn = dsn + "&_busy_timeout=5000&_foreign_keys=on"
	}
	db, err := sql.Open(a.DriverName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (a *Adapter) Close() error {
	return nil
}

func (a *Adapter) Init(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, ddlBase); err != nil {
		return err
	}
	_, _ = db.ExecContext(ctx, "PRAGMA journal_mode=WAL;")
	_, _ = db.ExecContext(ctx, "PRAGMA synchronous=NORMAL;")
	_, _ = db.ExecContext(ctx, "PRAGMA foreign_keys=ON;")

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
		return fmt.Errorf("not a crossquery db: %s", a.Path)
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
    doc  TEXT NOT NULL,
    PRIMARY KEY (kind, key)
);
CREATE TABLE IF NOT EXISTS props (
    kind     TEXT NOT NULL,
    key      TEXT NOT NULL,
    property TEXT NOT NULL,
    num      REAL,
    str      TEXT,
    flag     INTEGER,
    PRIMARY KEY (kind, key, property)
);
CREATE INDEX IF NOT EXISTS props_by_num  ON props (kind, property, num);
CREATE INDEX IF NOT EXISTS props_by_str  ON props (kind, property, str);
CREATE INDEX IF NOT EXISTS props_by_flag ON props (kind, property, flag);
`
