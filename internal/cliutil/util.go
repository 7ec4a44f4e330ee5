package cliutil

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/crossquery/crossquery/crossquery/store"
)

type OutputFormat string

const (
	FormatPretty OutputFormat = "pretty"
	FormatKeys   OutputFormat = "keys"
	FormatJSON   OutputFormat = "json"
)

func ParseOutputFormat(s string) OutputFormat {
	switch OutputFormat(s) {
	case FormatPretty, FormatKeys, FormatJSON:
		return OutputFormat(s)
	default:
		return FormatPretty
	}
}

func PrintJSON(w io.Writer, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(b))
}

// PrintEntity writes one entity as "key  prop=value ...", properties in
// name order for stable output.
func PrintEntity(w io.Writer, e store.Entity) {
	fmt.Fprintf(w, "%s/%s", e.Kind, e.Key)
	names := make([]string, 0, len(e.Properties))
	for n := range e.Properties {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(w, "  %s=%v", n, e.Properties[n])
	}
	fmt.Fprintln(w)
}

// PrintEntities writes a result set in the chosen format.
func PrintEntities(w io.Writer, format OutputFormat, entities []store.Entity) {
	switch format {
	case FormatJSON:
		type jsonEntity struct {
			Kind       string         `json:"kind"`
			Key        string         `json:"key"`
			Properties map[string]any `json:"properties"`
		}
		out := make([]jsonEntity, 0, len(entities))
		for _, e := range entities {
			out = append(out, jsonEntity{Kind: e.Kind, Key: e.Key, Properties: e.Properties})
		}
		PrintJSON(w, out)
	case FormatKeys:
		for _, e := range entities {
			fmt.Fprintln(w, e.Key)
		}
	default:
		for _, e := range entities {
			PrintEntity(w, e)
		}
	}
}
