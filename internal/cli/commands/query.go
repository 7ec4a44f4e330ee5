package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/crossquery/crossquery/crossquery"
	"github.com/crossquery/crossquery/internal/cliopt"
	"github.com/crossquery/crossquery/internal/cliutil"
)

func RunQuery(g cliopt.GlobalOptions, argv []string) int {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var kind, order, format string
	var filters cliopt.StringList
	var timing bool
	fs.StringVar(&kind, "kind", "", "entity kind")
	fs.Var(&filters, "filter", `filter clause like "f1<=2" (repeatable)`)
	fs.StringVar(&order, "order", "", `sort properties, comma separated, "-" prefix for descending`)
	fs.StringVar(&format, "format", g.Format, "output format: pretty|keys|json")
	fs.BoolVar(&timing, "timing", false, "print elapsed time to stderr")
	if err := fs.Parse(argv); err != nil {
		return 2
	}
	if kind == "" {
		fmt.Fprintln(os.Stderr, "missing --kind")
		return 2
	}
	if len(filters) == 0 {
		fmt.Fprintln(os.Stderr, "at least one --filter is needed")
		return 2
	}

	ctx := context.Background()
	client, err := openClient(ctx, g)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer client.Close()

	q := crossquery.New(client, kind)
	for _, f := range filters {
		clause, err := crossquery.ParseClause(f)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		q.AddFilter(clause.Property, clause.Op, clause.Value)
	}
	if order != "" {
		var props []string
		for _, p := range strings.Split(order, ",") {
			if p = strings.TrimSpace(p); p != "" {
				props = append(props, p)
			}
		}
		q.Order(props...)
	}

	start := time.Now()
	entities, err := q.Fetch(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if timing {
		fmt.Fprintf(os.Stderr, "%d entities in %s\n", len(entities), time.Since(start).Round(time.Microsecond))
	}
	cliutil.PrintEntities(os.Stdout, cliutil.ParseOutputFormat(format), entities)
	return 0
}
