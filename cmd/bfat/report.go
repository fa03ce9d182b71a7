package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/byuccl/bfat/faultevaluator"
)

// writeReport renders the fault records per bit group. The byte-exact
// banner centering and select_objects TCL emission are a presentation
// concern this core does not claim to reproduce; the section ordering,
// headers, and record fields it does reproduce.
func writeReport(w io.Writer, groups []faultevaluator.GroupResult) error {
	banner := strings.Repeat("=", 70)

	for i, g := range groups {
		if _, err := fmt.Fprintf(w, "%s\n%s\n%s\n\n", banner, center(fmt.Sprintf("Bit Group %d", i+1)), banner); err != nil {
			return err
		}

		if err := writeSection(w, "Significant Bits", g.Significant); err != nil {
			return err
		}
		if err := writeSection(w, "Undefined Bits", g.Undefined); err != nil {
			return err
		}
		if err := writeSection(w, "Errorless Bits", g.Errorless); err != nil {
			return err
		}

		if _, err := fmt.Fprintf(w, "Bits: %d\n", g.BitsTotal); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "Errors Found: %d (%.2f%%)\n\n", g.ErrorsFound, g.Percentage); err != nil {
			return err
		}
	}

	return nil
}

func center(s string) string {
	pad := (70 - len(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}

func writeSection(w io.Writer, title string, records []faultevaluator.Record) error {
	if len(records) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "%s:\n", title); err != nil {
		return err
	}
	for _, r := range records {
		if err := writeRecord(w, r); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return nil
}

func writeRecord(w io.Writer, r faultevaluator.Record) error {
	if _, err := fmt.Fprintf(w, "%s (%d->%d)\n", r.Coord, r.Prev, r.New); err != nil {
		return err
	}
	if r.Tile != "" {
		if _, err := fmt.Fprintf(w, "\t%s/%s/%s\n", r.Tile, r.Site, r.Mux); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "\t%s\n", faultMessage(r)); err != nil {
		return err
	}

	if r.DeactivatedPIP != nil {
		if _, err := fmt.Fprintf(w, "\tAffected PIPs:\n\t\t%s (deactivated)\n", r.DeactivatedPIP); err != nil {
			return err
		}
	}
	if r.ActivatedPIP != nil {
		if _, err := fmt.Fprintf(w, "\tAffected PIPs:\n\t\t%s (activated)\n", r.ActivatedPIP); err != nil {
			return err
		}
	}
	if len(r.AffectedSinks) > 0 {
		if _, err := fmt.Fprintf(w, "\tAffected Resources:\n"); err != nil {
			return err
		}
		for _, s := range r.AffectedSinks {
			if _, err := fmt.Fprintf(w, "\t\t%s\n", s); err != nil {
				return err
			}
		}
	}
	if r.Overflow {
		if _, err := fmt.Fprintln(w, "\t(trace revisited a route node or hit the depth bound; sink list may be partial)"); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(w)
	return err
}

func faultMessage(r faultevaluator.Record) string {
	switch r.Kind {
	case faultevaluator.CLBAltered:
		return fmt.Sprintf("%s bit altered for %s", r.BitName, r.Cell)
	case faultevaluator.PipOpen:
		return fmt.Sprintf("Opens created for net(s): %s", strings.Join(r.Nets, ", "))
	case faultevaluator.PipShort:
		names := append(append([]string{}, r.Nets...), unconnectedLabels(r.UnconnectedNodes)...)
		return fmt.Sprintf("Shorts formed between net(s): %s", strings.Join(names, ", "))
	case faultevaluator.Undefined:
		return "Bit lies in an undefined frame for this part"
	case faultevaluator.Unsupported:
		return "Bit classification not yet supported"
	case faultevaluator.Unknown:
		return "No database mapping for this bit"
	default:
		return fmt.Sprintf("Errorless: %s", r.Reason)
	}
}

func unconnectedLabels(nodes []string) []string {
	labels := make([]string, len(nodes))
	for i, n := range nodes {
		labels[i] = fmt.Sprintf("Unconnected Node(%s)", n)
	}
	return labels
}
