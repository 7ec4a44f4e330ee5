package cli

import (
	"fmt"
	"io"
)

func PrintRootHelp(w io.Writer) {
	fmt.Fprintln(w, `crossquery — merged compound queries over restricted key-value stores

USAGE
  crossquery [global flags] <command> [args]

GLOBAL FLAGS
  --backend sqlite|postgres
  --sqlite-path <file.db>
  --driver sqlite|sqlite3
  --pg-dsn <dsn>
  --pg-schema <name>
  --format pretty|keys|json
  --config <file.yaml>

COMMANDS
  put      store an entity (-set prop=value..., or JSON lines on stdin)
  get      fetch one entity by kind and key
  delete   remove one entity
  query    run a merged query (-filter "f1<=2" ... [-order "-f2"])
  kinds    list stored kinds
  info     show backend capabilities

Run "crossquery <command> --help" for details.`)
}
