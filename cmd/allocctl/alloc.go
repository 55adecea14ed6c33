package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/simaogato/wealthflow-widgets/internal/domain"
)

// parseAllocation reads "id=value[!],..." where a trailing "!" locks the bucket
func parseAllocation(s string) (domain.AllocationSet, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.AllocationSet{}, nil
	}

	var set domain.AllocationSet
	for _, part := range strings.Split(s, ",") {
		id, raw, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid bucket %q: expected id=value", part)
		}

		locked := strings.HasSuffix(raw, "!")
		value, err := strconv.Atoi(strings.TrimSuffix(raw, "!"))
		if err != nil {
			return nil, fmt.Errorf("invalid bucket %q: value must be an integer", part)
		}

		set = append(set, domain.Allocatable{ID: id, Value: value, Locked: locked})
	}

	return set, nil
}

// formatAllocation is the inverse of parseAllocation
func formatAllocation(set domain.AllocationSet) string {
	parts := make([]string, len(set))
	for i, a := range set {
		parts[i] = fmt.Sprintf("%s=%d", a.ID, a.Value)
		if a.Locked {
			parts[i] += "!"
		}
	}
	return strings.Join(parts, ",")
}

// printAllocation writes one bucket per line
func printAllocation(w io.Writer, set domain.AllocationSet) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, a := range set {
		lock := ""
		if a.Locked {
			lock = "locked"
		}
		fmt.Fprintf(tw, "%s\t%3d%%\t%s\n", a.ID, a.Value, lock)
	}
	fmt.Fprintf(tw, "total\t%3d%%\t\n", set.Sum())
	return tw.Flush()
}
