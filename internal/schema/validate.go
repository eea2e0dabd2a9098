// Package schema validates assembled reports before they are written.
package schema

import (
	"fmt"
	"maps"

	"github.com/dshills/fontcritic/internal/check"
	"github.com/dshills/fontcritic/internal/report"
)

// ValidationError describes a single schema violation.
type ValidationError struct {
	Path    string
	Message string
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Report for structural validity. Checks already have
// their statuses normalized when they run, so a violation here means the
// report was assembled wrongly.
func Validate(r *report.Report) []ValidationError {
	var errs []ValidationError

	if r.Tool == "" {
		errs = append(errs, ValidationError{"tool", "required"})
	}
	if r.Version == "" {
		errs = append(errs, ValidationError{"version", "required"})
	}
	if r.RunID == "" {
		errs = append(errs, ValidationError{"run_id", "required"})
	}
	if r.Input.Profile == "" {
		errs = append(errs, ValidationError{"input.profile", "required"})
	}
	files := make(map[string]bool, len(r.Input.Files))
	for i, f := range r.Input.Files {
		if f.Path == "" {
			errs = append(errs, ValidationError{fmt.Sprintf("input.files[%d].path", i), "required"})
		}
		files[f.Path] = true
	}

	// Verify summary consistency
	expected := report.ComputeSummary(r.Results)
	if r.Summary.Worst != expected.Worst {
		errs = append(errs, ValidationError{"summary.worst", fmt.Sprintf("expected %s, got %s", expected.Worst, r.Summary.Worst)})
	}
	if r.Summary.Total != expected.Total {
		errs = append(errs, ValidationError{"summary.total", fmt.Sprintf("expected %d, got %d", expected.Total, r.Summary.Total)})
	}
	if !maps.Equal(r.Summary.Counts, expected.Counts) {
		errs = append(errs, ValidationError{"summary.counts", fmt.Sprintf("expected %v, got %v", expected.Counts, r.Summary.Counts)})
	}

	// Validate results
	for i, res := range r.Results {
		prefix := fmt.Sprintf("results[%d]", i)
		if res.CheckID == "" {
			errs = append(errs, ValidationError{prefix + ".check_id", "required"})
		}
		if res.Filename != "" && !files[res.Filename] {
			errs = append(errs, ValidationError{prefix + ".filename", fmt.Sprintf("not an input file: %q", res.Filename)})
		}
		if len(res.Subresults) == 0 {
			errs = append(errs, ValidationError{prefix + ".subresults", "at least one status required"})
		}
		for j, s := range res.Subresults {
			errs = append(errs, validateStatus(fmt.Sprintf("%s.subresults[%d]", prefix, j), s)...)
		}
	}

	// Validate fixes
	for i, f := range r.Fixes {
		prefix := fmt.Sprintf("fixes[%d]", i)
		if f.CheckID == "" {
			errs = append(errs, ValidationError{prefix + ".check_id", "required"})
		}
		if !files[f.Filename] {
			errs = append(errs, ValidationError{prefix + ".filename", fmt.Sprintf("not an input file: %q", f.Filename)})
		}
	}

	return errs
}

func validateStatus(prefix string, s check.Status) []ValidationError {
	var errs []ValidationError
	if !s.Severity.Valid() {
		errs = append(errs, ValidationError{prefix + ".severity", fmt.Sprintf("invalid: %q", s.Severity)})
	}
	if s.Severity == check.StatusError && s.Message == "" {
		errs = append(errs, ValidationError{prefix + ".message", "required for ERROR"})
	}
	return errs
}
