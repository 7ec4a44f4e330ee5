package commands

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/crossquery/crossquery/internal/cliopt"
	"github.com/crossquery/crossquery/internal/cliutil"
)

func RunInfo(g cliopt.GlobalOptions, argv []string) int {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
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

	caps := client.Capabilities()
	if cliutil.ParseOutputFormat(g.Format) == cliutil.FormatJSON {
		cliutil.PrintJSON(os.Stdout, map[string]any{
			"backend":                    client.Backend(),
			"single_inequality_property": caps.SingleInequalityProperty,
			"requires_composite_index":   caps.RequiresCompositeIndex,
			"arbitrary_sort":             caps.ArbitrarySort,
		})
		return 0
	}
	fmt.Printf("backend: %s\n", client.Backend())
	fmt.Printf("single inequality property: %v\n", caps.SingleInequalityProperty)
	fmt.Printf("requires composite index:   %v\n", caps.RequiresCompositeIndex)
	fmt.Printf("arbitrary sort:             %v\n", caps.ArbitrarySort)
	return 0
}
