package main

import (
	"os"

	"github.com/crossquery/crossquery/internal/cli"

	// sqlite drivers, selectable via --driver
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}
