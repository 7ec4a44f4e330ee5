package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/crossquery/crossquery/crossquery/store"
	"github.com/crossquery/crossquery/crossquery/store/postgres"
	"github.com/crossquery/crossquery/crossquery/store/sqlite"
	"github.com/crossquery/crossquery/internal/cliopt"
)

// openClient dials the backend selected by the global options.
func openClient(ctx context.Context, g cliopt.GlobalOptions) (store.Client, error) {
	switch strings.ToLower(g.Backend) {
	case "sqlite":
		return sqlite.OpenWithDriver(ctx, g.SQLitePath, g.SQLiteDriver)
	case "postgres":
		if g.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres backend needs --pg-dsn")
		}
		return postgres.Open(ctx, g.PostgresDSN, g.PostgresSchema)
	default:
		return nil, fmt.Errorf("unknown backend %q (sqlite|postgres)", g.Backend)
	}
}
