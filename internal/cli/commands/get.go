package commands

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/crossquery/crossquery/crossquery"
	"github.com/crossquery/crossquery/internal/cliopt"
	"github.com/crossquery/crossquery/internal/cliutil"
)

func RunGet(g cliopt.GlobalOptions, argv []string) int {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var kind, key string
	fs.StringVar(&kind, "kind", "", "entity kind")
	fs.StringVar(&key, "key", "", "entity key")
	fs.StringVar(&key, "k", "", "entity key")
	if err := fs.Parse(argv); err != nil {
		return 2
	}
	if kind == "" || key == "" {
		fmt.Fprintln(os.Stderr, "missing --kind or --key")
		return 2
	}

	ctx := context.Background()
	client, err := openClient(ctx, g)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer client.Close()

	entities, err := client.GetMulti(ctx, kind, []string{key})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if len(entities) == 0 {
		fmt.Fprintln(os.Stderr, crossquery.NotFoundError(kind, key))
		return 1
	}
	cliutil.PrintEntities(os.Stdout, cliutil.ParseOutputFormat(g.Format), entities)
	return 0
}
