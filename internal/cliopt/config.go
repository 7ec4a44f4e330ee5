package cliopt

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the flag surface. Every field is optional; the zero
// value means "keep the current setting".
type fileConfig struct {
	Backend        string `yaml:"backend"`
	SQLitePath     string `yaml:"sqlite_path"`
	SQLiteDriver   string `yaml:"sqlite_driver"`
	PostgresDSN    string `yaml:"pg_dsn"`
	PostgresSchema string `yaml:"pg_schema"`
	Format         string `yaml:"format"`
}

// ApplyConfigFile layers a yaml config file under the parsed flags.
// Precedence is defaults < file < explicit flags: a file value is applied
// only when the matching flag was not given on the command line.
func ApplyConfigFile(path string, g *GlobalOptions, explicit map[string]bool) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if fc.Backend != "" && !explicit["backend"] {
		g.Backend = fc.Backend
	}
	if fc.SQLitePath != "" && !explicit["sqlite-path"] {
		g.SQLitePath = fc.SQLitePath
	}
	if fc.SQLiteDriver != "" && !explicit["driver"] {
		g.SQLiteDriver = fc.SQLiteDriver
	}
	if fc.PostgresDSN != "" && !explicit["pg-dsn"] {
		g.PostgresDSN = fc.PostgresDSN
	}
	if fc.PostgresSchema != "" && !explicit["pg-schema"] {
		g.PostgresSchema = fc.PostgresSchema
	}
	if fc.Format != "" && !explicit["format"] {
		g.Format = fc.Format
	}
	return nil
}
