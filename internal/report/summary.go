package report

import "github.com/dshills/fontcritic/internal/check"

// Counts maps a severity to the number of results whose worst status it is.
type Counts map[check.StatusCode]int

// Summary holds the severity counts of a run.
type Summary struct {
	Worst     check.StatusCode  `json:"worst"`
	Total     int               `json:"total"`
	Counts    Counts            `json:"counts"`
	BySection map[string]Counts `json:"by_section"`
	ByTarget  map[string]Counts `json:"by_target"`
}

// ComputeSummary counts each result once, under its worst status. The
// global worst ignores SKIP like a single result does.
func ComputeSummary(results []check.CheckResult) Summary {
	s := Summary{
		Worst:     check.StatusPass,
		Total:     len(results),
		Counts:    Counts{},
		BySection: map[string]Counts{},
		ByTarget:  map[string]Counts{},
	}
	allSkipped := len(results) > 0
	for _, r := range results {
		w := r.Worst()
		s.Counts[w]++
		bump(s.BySection, r.Section, w)
		bump(s.ByTarget, r.Target(), w)
		if w != check.StatusSkip {
			allSkipped = false
			if w.Rank() > s.Worst.Rank() {
				s.Worst = w
			}
		}
	}
	if allSkipped {
		s.Worst = check.StatusSkip
	}
	return s
}

func bump(m map[string]Counts, key string, w check.StatusCode) {
	c, ok := m[key]
	if !ok {
		c = Counts{}
		m[key] = c
	}
	c[w]++
}

// Exceeds reports whether any result reached threshold.
func (s Summary) Exceeds(threshold check.StatusCode) bool {
	if s.Total == 0 {
		return false
	}
	for code, n := range s.Counts {
		if n > 0 && code.AtLeast(threshold) {
			return true
		}
	}
	return false
}
