// Package render produces Markdown and JSON output from a report.
package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dshills/fontcritic/internal/check"
	"github.com/dshills/fontcritic/internal/report"
)

// JSON renders a report as indented JSON.
func JSON(r *report.Report) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render.JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// Markdown renders a report as a Markdown report. Results whose worst
// status is below floor are left out of the detail sections but still
// counted in the summary.
func Markdown(r *report.Report, floor check.StatusCode) string {
	var b strings.Builder

	// Summary
	b.WriteString("# Fontcritic Report\n\n")
	fmt.Fprintf(&b, "**Profile:** %s\n", r.Input.Profile)
	fmt.Fprintf(&b, "**Worst status:** %s\n", r.Summary.Worst)
	fmt.Fprintf(&b, "**Results:** %s\n\n", countLine(r.Summary.Counts))
	if r.Meta.Cancelled {
		fmt.Fprintf(&b, "**Cancelled:** %d of %d checks ran\n\n", r.Meta.Completed, r.Meta.Planned)
	}

	shown := report.Filter(r.Results, floor)
	if len(shown) == 0 {
		b.WriteString("No results to report.\n\n")
	}
	for _, g := range report.GroupByTarget(shown) {
		fmt.Fprintf(&b, "## %s\n\n", g.Target)
		for _, s := range g.Sections {
			fmt.Fprintf(&b, "### %s\n\n", s.Name)
			for _, res := range s.Results {
				renderResult(&b, res)
			}
		}
	}

	// Fixes
	if len(r.Fixes) > 0 {
		b.WriteString("## Hotfixes\n\n")
		for _, f := range r.Fixes {
			switch {
			case f.Error != "":
				fmt.Fprintf(&b, "- %s on %s: failed: %s\n", f.CheckID, f.Filename, f.Error)
			case f.Changed:
				fmt.Fprintf(&b, "- %s on %s: fixed\n", f.CheckID, f.Filename)
			default:
				fmt.Fprintf(&b, "- %s on %s: unchanged\n", f.CheckID, f.Filename)
			}
		}
		b.WriteString("\n")
	}

	// Inputs
	if len(r.Input.Files) > 0 {
		b.WriteString("## Inputs\n\n")
		for _, f := range r.Input.Files {
			fmt.Fprintf(&b, "- %s (%s)\n", f.Path, f.Digest)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func countLine(c report.Counts) string {
	var parts []string
	for _, code := range check.AllStatusCodes {
		if n := c[code]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, code))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

func renderResult(b *strings.Builder, res check.CheckResult) {
	fmt.Fprintf(b, "#### [%s] %s: %s\n\n", res.Worst(), res.CheckID, res.CheckName)
	if res.CheckRationale != "" {
		fmt.Fprintf(b, "%s\n\n", res.CheckRationale)
	}
	for _, s := range res.Subresults {
		fmt.Fprintf(b, "- %s\n", s)
	}
	b.WriteString("\n")
}
