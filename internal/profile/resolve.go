package profile

import (
	"fmt"
	"sort"
	"strings"
)

// Entry is one (section, check id) pair of a resolved profile.
type Entry struct {
	Section string
	CheckID string
}

// Resolved is a profile with its includes expanded.
type Resolved struct {
	Name      string
	Entries   []Entry
	Overrides map[string][]Override
	Defaults  map[string]map[string]any
}

// Lookup finds a registered profile by name.
type Lookup func(name string) (*Profile, bool)

// Resolve expands includes depth-first. Included profiles come first in
// include order, then the profile's own sections. Repeated check ids are
// kept: a check included twice runs twice, once per section.
func Resolve(name string, lookup Lookup) (*Resolved, error) {
	r := &Resolved{
		Name:      name,
		Overrides: make(map[string][]Override),
		Defaults:  make(map[string]map[string]any),
	}
	entries, err := r.expand(name, lookup, nil)
	if err != nil {
		return nil, fmt.Errorf("profile.Resolve %s: %w", name, err)
	}
	r.Entries = entries
	return r, nil
}

func (r *Resolved) expand(name string, lookup Lookup, stack []string) ([]Entry, error) {
	for _, s := range stack {
		if s == name {
			return nil, fmt.Errorf("%w: %s -> %s", ErrIncludeCycle, strings.Join(stack, " -> "), name)
		}
	}
	p, ok := lookup(name)
	if !ok {
		if len(stack) > 0 {
			return nil, fmt.Errorf("%w: %s (included by %s)", ErrUnknownProfile, name, stack[len(stack)-1])
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownProfile, name)
	}
	stack = append(stack[:len(stack):len(stack)], name)

	var entries []Entry
	for _, inc := range p.Include {
		sub, err := r.expand(inc, lookup, stack)
		if err != nil {
			return nil, err
		}
		entries = append(entries, sub...)
	}
	if len(p.ExcludeChecks) > 0 {
		excluded := make(map[string]bool, len(p.ExcludeChecks))
		for _, id := range p.ExcludeChecks {
			excluded[id] = true
		}
		kept := entries[:0]
		for _, e := range entries {
			if !excluded[e.CheckID] {
				kept = append(kept, e)
			}
		}
		entries = kept
	}
	for _, s := range p.Sections {
		for _, id := range s.Checks {
			entries = append(entries, Entry{Section: s.Name, CheckID: id})
		}
	}

	// Outer profiles are merged last so they win.
	for id, ovs := range p.Overrides {
		r.Overrides[id] = ovs
	}
	for id, defaults := range p.ConfigurationDefaults {
		merged := make(map[string]any, len(defaults))
		for k, v := range r.Defaults[id] {
			merged[k] = v
		}
		for k, v := range defaults {
			merged[k] = v
		}
		r.Defaults[id] = merged
	}
	return entries, nil
}

// CheckIDs lists the resolved check ids in order.
func (r *Resolved) CheckIDs() []string {
	ids := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		ids[i] = e.CheckID
	}
	return ids
}

// Check verifies that every resolved check id exists. All missing ids are
// reported together.
func (r *Resolved) Check(exists func(id string) bool) error {
	seen := make(map[string]bool)
	var missing []string
	for _, e := range r.Entries {
		if exists(e.CheckID) || seen[e.CheckID] {
			continue
		}
		seen[e.CheckID] = true
		missing = append(missing, e.CheckID)
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("profile %s: %w: %s", r.Name, ErrUnknownCheck, strings.Join(missing, ", "))
}
