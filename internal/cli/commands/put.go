package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/crossquery/crossquery/crossquery"
	"github.com/crossquery/crossquery/crossquery/store"
	"github.com/crossquery/crossquery/internal/cliopt"
)

func RunPut(g cliopt.GlobalOptions, argv []string) int {
	fs := flag.NewFlagSet("put", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var kind, key string
	var fromJSON bool
	var sets cliopt.StringList
	fs.StringVar(&kind, "kind", "", "entity kind")
	fs.StringVar(&key, "key", "", "entity key (generated when empty)")
	fs.StringVar(&key, "k", "", "entity key")
	fs.Var(&sets, "set", "property assignment prop=value (repeatable)")
	fs.BoolVar(&fromJSON, "json", false, "read JSON-line entities from stdin")
	if err := fs.Parse(argv); err != nil {
		return 2
	}
	if kind == "" {
		fmt.Fprintln(os.Stderr, "missing --kind")
		return 2
	}
	if !fromJSON && len(sets) == 0 {
		fmt.Fprintln(os.Stderr, "nothing to store: use --set or --json")
		return 2
	}

	ctx := context.Background()
	client, err := openClient(ctx, g)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer client.Close()

	if fromJSON {
		return putJSONLines(ctx, client, kind)
	}

	props := make(map[string]any, len(sets))
	for _, s := range sets {
		clause, err := crossquery.ParseClause(s)
		if err != nil || clause.Op != store.OpEq {
			fmt.Fprintf(os.Stderr, "bad --set %q: want prop=value\n", s)
			return 2
		}
		props[clause.Property] = clause.Value
	}
	if key == "" {
		key = uuid.NewString()
	}
	if err := client.Put(ctx, store.Entity{Kind: kind, Key: key, Properties: props}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(key)
	return 0
}

// putJSONLines stores one entity per stdin line. A "key" member becomes the
// entity key and is removed from the properties; absent keys are generated.
func putJSONLines(ctx context.Context, client store.Client, kind string) int {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		props := make(map[string]any)
		if err := json.Unmarshal(raw, &props); err != nil {
			fmt.Fprintf(os.Stderr, "line %d: %v\n", line, err)
			return 1
		}
		key, _ := props["key"].(string)
		delete(props, "key")
		if key == "" {
			key = uuid.NewString()
		}
		if err := client.Put(ctx, store.Entity{Kind: kind, Key: key, Properties: props}); err != nil {
			fmt.Fprintf(os.Stderr, "line %d: %v\n", line, err)
			return 1
		}
		fmt.Println(key)
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
