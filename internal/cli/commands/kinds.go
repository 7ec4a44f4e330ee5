package commands

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/crossquery/crossquery/internal/cliopt"
	"github.com/crossquery/crossquery/internal/cliutil"
)

func RunKinds(g cliopt.GlobalOptions, argv []string) int {
	fs := flag.NewFlagSet("kinds", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(argv); err != nil {
		return 2
	}

	ctx := context.Background()
	client, err := openClient(ctx, g)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer client.Close()

	kinds, err := client.Kinds(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if cliutil.ParseOutputFormat(g.Format) == cliutil.FormatJSON {
		cliutil.PrintJSON(os.Stdout, kinds)
		return 0
	}
	for _, k := range kinds {
		fmt.Println(k)
	}
	return 0
}
