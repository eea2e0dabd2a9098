package check

// CheckResult is the outcome of one (check, target) execution.
// Filename is empty for whole-collection checks.
type CheckResult struct {
	CheckID        string   `json:"check_id"`
	CheckName      string   `json:"check_name"`
	CheckRationale string   `json:"check_rationale,omitempty"`
	Filename       string   `json:"filename,omitempty"`
	Section        string   `json:"section"`
	Subresults     []Status `json:"subresults"`
}

// Worst returns the effective severity: the maximum over subresults,
// ignoring SKIP. A result with only SKIP subresults is SKIP.
func (r CheckResult) Worst() StatusCode {
	worst := StatusSkip
	seen := false
	for _, s := range r.Subresults {
		if s.Severity == StatusSkip {
			continue
		}
		if !seen || s.Severity.Rank() > worst.Rank() {
			worst = s.Severity
			seen = true
		}
	}
	if !seen && len(r.Subresults) == 0 {
		return StatusPass
	}
	return worst
}

// IsError reports whether the check itself failed.
func (r CheckResult) IsError() bool {
	return r.Worst() == StatusError
}

// Target names what the result is about, for grouping.
func (r CheckResult) Target() string {
	if r.Filename == "" {
		return "(family)"
	}
	return r.Filename
}

// FixResult is the outcome of running a check's fix on a private copy.
type FixResult struct {
	CheckID  string `json:"check_id"`
	Filename string `json:"filename"`
	Changed  bool   `json:"changed"`
	Error    string `json:"error,omitempty"`
	Contents []byte `json:"-"`
}
