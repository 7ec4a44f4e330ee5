package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/crossquery/crossquery/internal/cli/commands"
	"github.com/crossquery/crossquery/internal/cliopt"
)

// Execute runs the CLI and returns an exit code.
func Execute(argv []string) int {
	globalFS := flag.NewFlagSet("crossquery", flag.ContinueOnError)
	globalFS.SetOutput(os.Stderr)
	g := cliopt.DefaultGlobalOptions()
	cliopt.BindGlobalFlags(globalFS, &g)

	if err := globalFS.Parse(argv); err != nil {
		// flag package already printed the error
		return 2
	}

	if g.ConfigFile != "" {
		explicit := make(map[string]bool)
		globalFS.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
		if err := cliopt.ApplyConfigFile(g.ConfigFile, &g, explicit); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
	}

	args := globalFS.Args()
	if len(args) == 0 {
		PrintRootHelp(os.Stdout)
		return 0
	}

	verb := args[0]
	rest := args[1:]

	switch verb {
	case "--help", "-h", "help":
		PrintRootHelp(os.Stdout)
		return 0
	case "put":
		return commands.RunPut(g, rest)
	case "get":
		return commands.RunGet(g, rest)
	case "delete":
		return commands.RunDelete(g, rest)
	case "query":
		return commands.RunQuery(g, rest)
	case "kinds":
		return commands.RunKinds(g, rest)
	case "info":
		return commands.RunInfo(g, rest)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", verb)
		PrintRootHelp(os.Stderr)
		return 2
	}
}
