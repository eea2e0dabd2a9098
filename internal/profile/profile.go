// Package profile handles parsing, building and resolving check profiles.
package profile

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dshills/fontcritic/internal/check"
)

var (
	// ErrUnknownProfile is returned when a profile or an included profile is not registered.
	ErrUnknownProfile = errors.New("unknown profile")
	// ErrIncludeCycle is returned when a profile includes itself, directly or transitively.
	ErrIncludeCycle = errors.New("profile include cycle")
	// ErrUnknownCheck is returned when a resolved profile names checks that are not registered.
	ErrUnknownCheck = errors.New("unknown check")
	// ErrInvalid is returned for malformed profile documents.
	ErrInvalid = errors.New("invalid profile")
)

// Profile is a named, composable grouping of checks into ordered sections.
type Profile struct {
	Name                  string                    `yaml:"name"`
	Description           string                    `yaml:"description"`
	Include               []string                  `yaml:"include"`
	Sections              []Section                 `yaml:"sections"`
	ExcludeChecks         []string                  `yaml:"exclude_checks"`
	Overrides             map[string][]Override     `yaml:"overrides"`
	ConfigurationDefaults map[string]map[string]any `yaml:"configuration_defaults"`
}

// Section is a named, ordered list of check ids.
type Section struct {
	Name   string   `yaml:"name"`
	Checks []string `yaml:"checks"`
}

// Override re-grades subresults carrying Code to Status.
type Override struct {
	Code   string           `yaml:"code"`
	Status check.StatusCode `yaml:"status"`
	Reason string           `yaml:"reason"`
}

// Parse decodes and validates a profile document.
func Parse(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("profile.Parse: %w: %v", ErrInvalid, err)
	}
	p.normalizeOverrides()
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("profile.Parse: %w", err)
	}
	return &p, nil
}

// normalizeOverrides accepts override statuses in any case, as the CLI
// does. Unknown statuses are left for Validate to report.
func (p *Profile) normalizeOverrides() {
	for _, ovs := range p.Overrides {
		for i := range ovs {
			if code, err := check.ParseStatusCode(string(ovs[i].Status)); err == nil {
				ovs[i].Status = code
			}
		}
	}
}

// MustParse is Parse for embedded documents.
func MustParse(data []byte) *Profile {
	p, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return p
}

// Load reads a profile document from disk.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("profile.Load: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("profile.Load %s: %w", path, err)
	}
	return p, nil
}

// Validate checks the document structure. It does not look at the registry.
func (p *Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	for i, s := range p.Sections {
		if s.Name == "" {
			return fmt.Errorf("%w: sections[%d].name is required", ErrInvalid, i)
		}
		for j, id := range s.Checks {
			if id == "" {
				return fmt.Errorf("%w: sections[%d].checks[%d] is empty", ErrInvalid, i, j)
			}
		}
	}
	for _, inc := range p.Include {
		if inc == p.Name {
			return fmt.Errorf("%w: %s includes itself", ErrIncludeCycle, p.Name)
		}
	}
	for id, ovs := range p.Overrides {
		for i, ov := range ovs {
			if ov.Code == "" {
				return fmt.Errorf("%w: overrides[%s][%d].code is required", ErrInvalid, id, i)
			}
			if !ov.Status.Valid() {
				return fmt.Errorf("%w: overrides[%s][%d].status: invalid %q", ErrInvalid, id, i, ov.Status)
			}
		}
	}
	return nil
}

// CheckIDs lists the profile's own check ids in order, repeats included.
func (p *Profile) CheckIDs() []string {
	var ids []string
	for _, s := range p.Sections {
		ids = append(ids, s.Checks...)
	}
	return ids
}

// ApplyOverrides re-grades statuses whose code matches an override.
// The input slice is not modified.
func ApplyOverrides(statuses []check.Status, overrides []Override) []check.Status {
	if len(overrides) == 0 {
		return statuses
	}
	out := make([]check.Status, len(statuses))
	copy(out, statuses)
	for i, s := range out {
		for _, ov := range overrides {
			if s.Code == "" || s.Code != ov.Code {
				continue
			}
			out[i].Severity = ov.Status
			if ov.Reason != "" {
				out[i].Message = fmt.Sprintf("%s\n\nOverridden to %s: %s", s.Message, ov.Status, ov.Reason)
			}
			break
		}
	}
	return out
}
