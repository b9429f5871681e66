package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

// stdoutIsTTY controls whether list commands render aligned tables or
// pipeline-friendly key=value lines.
func stdoutIsTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func printJSON(value any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

// humanTime renders an RFC 3339 timestamp as a relative age on terminals,
// falling back to the raw value when it does not parse.
func humanTime(value string) string {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, value); err != nil {
			return value
		}
	}
	return humanize.Time(t)
}

func humanCount(n int) string {
	return humanize.Comma(int64(n))
}

func formatTraitLine(label string, mean, std, best float64) string {
	return fmt.Sprintf("%s mean=%.3f std=%.3f best=%.3f", label, mean, std, best)
}
