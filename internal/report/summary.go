package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/p-n-ai/pai-lingo/internal/completeness"
)

// PrintSummary writes a human-readable fix summary followed by the records
// that still need translation.
func PrintSummary(w io.Writer, s completeness.Summary) error {
	var b strings.Builder
	fmt.Fprintf(&b, "findings:   %d\n", s.Total)
	fmt.Fprintf(&b, "patched:    %d\n", s.Patched)
	fmt.Fprintf(&b, "partial:    %d\n", s.Partial)
	fmt.Fprintf(&b, "unresolved: %d\n", s.Unresolved)
	if s.Stale > 0 {
		fmt.Fprintf(&b, "stale:      %d\n", s.Stale)
	}

	if len(s.Remaining) > 0 {
		b.WriteString("\nstill incomplete:\n")
		for _, f := range s.Remaining {
			fmt.Fprintf(&b, "  %s  missing=%s", f.Address, strings.Join(f.Missing, ","))
			if len(f.Blank) > 0 {
				fmt.Fprintf(&b, " blank=%s", strings.Join(f.Blank, ","))
			}
			fmt.Fprintf(&b, "  %q\n", f.Source)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// PrintFindings writes one line per finding.
func PrintFindings(w io.Writer, findings []completeness.Finding) error {
	var b strings.Builder
	for _, f := range findings {
		fmt.Fprintf(&b, "%s  missing=%s", f.Address, strings.Join(f.Missing, ","))
		if len(f.Blank) > 0 {
			fmt.Fprintf(&b, " blank=%s", strings.Join(f.Blank, ","))
		}
		fmt.Fprintf(&b, "  %q", f.Source)
		if f.Choice != "" {
			fmt.Fprintf(&b, "  choice=%q", f.Choice)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "%d incomplete explanation(s)\n", len(findings))

	_, err := io.WriteString(w, b.String())
	return err
}
