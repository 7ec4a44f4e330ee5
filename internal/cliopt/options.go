package cliopt

import (
	"flag"
	"strings"
)

// GlobalOptions are parsed once at the CLI root and passed to subcommands.
//
// NOTE: This is a separate package to avoid import cycles between the root
// command router and per-command code.
type GlobalOptions struct {
	Backend string

	SQLitePath   string
	SQLiteDriver string

	PostgresDSN    string
	PostgresSchema string

	Format     string
	ConfigFile string
}

func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{
		Backend:        "sqlite",
		SQLitePath:     "crossquery.db",
		SQLiteDriver:   "sqlite",
		PostgresSchema: "crossquery",
		Format:         "pretty",
	}
}

func BindGlobalFlags(fs *flag.FlagSet, g *GlobalOptions) {
	fs.StringVar(&g.Backend, "backend", g.Backend, "backend: sqlite|postgres")

	fs.StringVar(&g.SQLitePath, "sqlite-path", g.SQLitePath, "sqlite database file path")
	fs.StringVar(&g.SQLiteDriver, "driver", g.SQLiteDriver, "sqlite driver: sqlite (modernc) | sqlite3 (mattn)")

	fs.StringVar(&g.PostgresDSN, "pg-dsn", g.PostgresDSN, "postgres DSN")
	fs.StringVar(&g.PostgresSchema, "pg-schema", g.PostgresSchema, "postgres schema holding the store")

	fs.StringVar(&g.Format, "format", g.Format, "output format: pretty|keys|json")
	fs.StringVar(&g.ConfigFile, "config", g.ConfigFile, "optional yaml config file")
}

// StringList is a repeatable flag value; occurrences accumulate.
type StringList []string

func (s *StringList) String() string { return strings.Join(*s, ",") }

func (s *StringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
