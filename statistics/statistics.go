// Package statistics aggregates fault counts across a run.
//
// Grounded on original_source/lib/statistics.py's Statistics class: the
// fixed `order` list of bucket names is kept verbatim (including the
// footer's two-group layout and percentage-of-parent convention), matching
// the original tool's exact bucket set. Counting is implemented over
// internal/histogram instead of a plain
// dict, generalized from qismat's recursive per-instance tally into a
// flat per-run tally over fault records.
package statistics

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/byuccl/bfat/faultevaluator"
	"github.com/byuccl/bfat/internal/histogram"
)

// order lists every tallied bucket in the order the footer reports them,
// matching lib/statistics.py.Statistics.order exactly.
var order = []string{
	"Bit Groups",
	"Bit Groups w/ Errors",
	"Fault Bits",
	"INT Fault Bits",
	"CLB Fault Bits",
	"IOI3 Fault Bits",
	"Non-Failure Fault Bits",
	"Undefined Fault Bits",
	"Bits Driven High",
	"Bits Driven Low",
	"Found Errors",
	"PIP Open Errors",
	"PIP Short Errors",
	"CLB Altered Bit Errors",
	"IOI3 Altered Bit Errors",
	"IOI3 Routing Errors",
}

// Counters tallies fault records across an entire run.
type Counters struct {
	h histogram.Histogram
}

func New() *Counters {
	c := &Counters{h: histogram.New()}
	for _, stat := range order {
		c.h[stat] = 0
	}
	return c
}

// Update folds one bit group's result into the running tally, replicating
// get_bit_group_stats' per-bit classification.
func (c *Counters) Update(g faultevaluator.GroupResult) {
	c.h.Add("Bit Groups")

	errorInGroup := false
	for _, r := range g.Records {
		c.h.Add("Fault Bits")

		switch {
		case r.Kind == faultevaluator.Undefined:
			c.h.Add("Undefined Fault Bits")
		case isINTTile(r.Tile):
			c.h.Add("INT Fault Bits")
		case isCLBTile(r.Tile):
			c.h.Add("CLB Fault Bits")
		case isIOI3Tile(r.Tile):
			c.h.Add("IOI3 Fault Bits")
		}

		switch {
		case r.Prev == 0 && r.New == 1:
			c.h.Add("Bits Driven High")
		case r.Prev == 1 && r.New == 0:
			c.h.Add("Bits Driven Low")
		}

		switch {
		case r.Kind == faultevaluator.Errorless || r.Kind == faultevaluator.Unsupported || r.Kind == faultevaluator.Unknown:
			c.h.Add("Non-Failure Fault Bits")
		case r.Kind == faultevaluator.CLBAltered && isCLBTile(r.Tile):
			c.h.Add("CLB Altered Bit Errors")
			c.h.Add("Found Errors")
			errorInGroup = true
		case r.Kind == faultevaluator.PipOpen:
			c.h.AddN("PIP Open Errors", max(1, len(r.Nets)))
			c.h.Add("Found Errors")
			errorInGroup = true
		case r.Kind == faultevaluator.PipShort:
			c.h.Add("PIP Short Errors")
			c.h.Add("Found Errors")
			errorInGroup = true
		}
	}

	if errorInGroup {
		c.h.Add("Bit Groups w/ Errors")
	}
}

func isINTTile(tile string) bool {
	return strings.Contains(tile, "INT_L") || strings.Contains(tile, "INT_R")
}

func isCLBTile(tile string) bool {
	return strings.Contains(tile, "CLB")
}

func isIOI3Tile(tile string) bool {
	return strings.Contains(tile, "IOI3")
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// WriteFooter prints the run-level footer table in the original's order,
// with percentages relative to "Bit Groups" (for "Bit Groups w/ Errors")
// or "Fault Bits" (for everything else), per
// lib/statistics.py.Statistics.__str__.
func (c *Counters) WriteFooter(w io.Writer, elapsed time.Duration) error {
	if _, err := fmt.Fprintf(w, "\nTotal time elapsed: %.2f sec (%d min)\n\n",
		elapsed.Seconds(), int(elapsed.Minutes())); err != nil {
		return err
	}

	bitGroups := c.h["Bit Groups"]
	faultBits := c.h["Fault Bits"]

	for _, stat := range order {
		if stat == "Fault Bits" || stat == "Found Errors" {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}

		count := c.h[stat]
		if stat == "Bit Groups" || stat == "Fault Bits" {
			if _, err := fmt.Fprintf(w, "%s: %d\n", stat, count); err != nil {
				return err
			}
			continue
		}

		parent := faultBits
		if stat == "Bit Groups w/ Errors" {
			parent = bitGroups
		}

		var pct float64
		if parent > 0 {
			pct = 100 * float64(count) / float64(parent)
		}
		if _, err := fmt.Fprintf(w, "%s: %d (%.2f%%)\n", stat, count, pct); err != nil {
			return err
		}
	}

	return nil
}
