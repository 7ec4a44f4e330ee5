package commands

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/crossquery/crossquery/internal/cliopt"
)

func RunDelete(g cliopt.GlobalOptions, argv []string) int {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
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

	found, err := client.Delete(ctx, kind, key)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if !found {
		fmt.Fprintf(os.Stderr, "no entity %s/%s\n", kind, key)
		return 1
	}
	fmt.Printf("deleted %s/%s\n", kind, key)
	return 0
}
