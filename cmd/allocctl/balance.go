package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/subcommands"

	"github.com/simaogato/wealthflow-widgets/internal/domain"
	"github.com/simaogato/wealthflow-widgets/internal/usecase/allocator"
)

type balanceCmd struct {
	alloc    string
	set      string
	lock     string
	toggle   string
	equalize bool

	out io.Writer
}

func (*balanceCmd) Name() string     { return "balance" }
func (*balanceCmd) Synopsis() string { return "apply one balancer step to an allocation" }
func (*balanceCmd) Usage() string {
	return `balance -alloc <id=value[!],...> (-set <id=value[!]> | -lock <id> | -toggle <id> | -equalize)

  Applies exactly one step and prints the resulting allocation:
  - set: move one slider; a trailing "!" requests the bucket locked
  - lock: flip the lock of a bucket
  - toggle: add the instrument if absent, remove it otherwise (resets to equal shares)
  - equalize: reset every bucket to an equal share

  The allocation must sum to 100. A trailing "!" marks a locked bucket.
  The last line repeats the result in -alloc form so steps can be chained.
`
}

func (c *balanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.alloc, "alloc", "", "Current allocation, e.g. uah-deposit=50,sp500=30!,ua-bonds=20 (required)")
	f.StringVar(&c.set, "set", "", "Bucket to move, e.g. sp500=40")
	f.StringVar(&c.lock, "lock", "", "Bucket whose lock to flip")
	f.StringVar(&c.toggle, "toggle", "", "Instrument to add or remove")
	f.BoolVar(&c.equalize, "equalize", false, "Reset to equal shares")
}

func (c *balanceCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	out := c.out
	if out == nil {
		out = os.Stdout
	}

	steps := 0
	for _, given := range []bool{c.set != "", c.lock != "", c.toggle != "", c.equalize} {
		if given {
			steps++
		}
	}
	if steps != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one of -set, -lock, -toggle or -equalize is required.")
		return subcommands.ExitUsageError
	}

	set, err := parseAllocation(c.alloc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -alloc: %v\n", err)
		return subcommands.ExitUsageError
	}
	if err := set.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	var result domain.AllocationSet
	switch {
	case c.set != "":
		id, raw, ok := strings.Cut(c.set, "=")
		locked := strings.HasSuffix(raw, "!")
		value, convErr := strconv.Atoi(strings.TrimSuffix(raw, "!"))
		if !ok || convErr != nil {
			fmt.Fprintf(os.Stderr, "Error parsing -set %q: expected id=value\n", c.set)
			return subcommands.ExitUsageError
		}
		result, err = allocator.SetAllocation(set, id, value, locked)
	case c.lock != "":
		result, err = allocator.ToggleLock(set, c.lock)
	case c.toggle != "":
		result = allocator.ToggleInstrument(set, c.toggle)
	default:
		result = allocator.Equalize(set)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := printAllocation(out, result); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(out, "\n-alloc %s\n", formatAllocation(result))
	return subcommands.ExitSuccess
}
