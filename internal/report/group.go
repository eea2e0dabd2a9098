package report

import "github.com/dshills/fontcritic/internal/check"

// Group is the results for one target, split by section. Targets and
// sections keep the order in which they first appear.
type Group struct {
	Target   string
	Sections []SectionGroup
}

// SectionGroup is the results of one section for one target.
type SectionGroup struct {
	Name    string
	Results []check.CheckResult
}

// GroupByTarget organizes results for display. Whole-collection results
// are grouped under the "(family)" target.
func GroupByTarget(results []check.CheckResult) []Group {
	var groups []Group
	idx := map[string]int{}
	for _, r := range results {
		gi, ok := idx[r.Target()]
		if !ok {
			gi = len(groups)
			idx[r.Target()] = gi
			groups = append(groups, Group{Target: r.Target()})
		}
		g := &groups[gi]
		si := -1
		for i := range g.Sections {
			if g.Sections[i].Name == r.Section {
				si = i
				break
			}
		}
		if si < 0 {
			si = len(g.Sections)
			g.Sections = append(g.Sections, SectionGroup{Name: r.Section})
		}
		g.Sections[si].Results = append(g.Sections[si].Results, r)
	}
	return groups
}

// Filter keeps results whose worst status is at least floor.
func Filter(results []check.CheckResult, floor check.StatusCode) []check.CheckResult {
	var out []check.CheckResult
	for _, r := range results {
		if r.Worst().AtLeast(floor) {
			out = append(out, r)
		}
	}
	return out
}
