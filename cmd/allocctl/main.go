// Command allocctl runs the allocation engine from the command line:
// it imports spreadsheet returns, simulates allocations and replays balancer steps.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&importCmd{}, "reference data")
	commander.Register(&simulateCmd{}, "allocation")
	commander.Register(&balanceCmd{}, "allocation")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
