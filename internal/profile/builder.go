package profile

import "github.com/dshills/fontcritic/internal/check"

// Builder assembles a Profile in code. Sections are created on first use
// and keep their creation order.
type Builder struct {
	p *Profile
}

// NewBuilder starts a profile named name.
func NewBuilder(name string) *Builder {
	return &Builder{p: &Profile{Name: name}}
}

// Describe sets the description.
func (b *Builder) Describe(desc string) *Builder {
	b.p.Description = desc
	return b
}

// Include appends included profiles.
func (b *Builder) Include(names ...string) *Builder {
	b.p.Include = append(b.p.Include, names...)
	return b
}

// Add appends check ids to section.
func (b *Builder) Add(section string, ids ...string) *Builder {
	for i := range b.p.Sections {
		if b.p.Sections[i].Name == section {
			b.p.Sections[i].Checks = append(b.p.Sections[i].Checks, ids...)
			return b
		}
	}
	b.p.Sections = append(b.p.Sections, Section{Name: section, Checks: append([]string(nil), ids...)})
	return b
}

// Exclude removes ids from the included profiles.
func (b *Builder) Exclude(ids ...string) *Builder {
	b.p.ExcludeChecks = append(b.p.ExcludeChecks, ids...)
	return b
}

// Override re-grades code for checkID.
func (b *Builder) Override(checkID, code string, status check.StatusCode, reason string) *Builder {
	if b.p.Overrides == nil {
		b.p.Overrides = make(map[string][]Override)
	}
	b.p.Overrides[checkID] = append(b.p.Overrides[checkID], Override{Code: code, Status: status, Reason: reason})
	return b
}

// Default sets a configuration default for checkID.
func (b *Builder) Default(checkID, key string, value any) *Builder {
	if b.p.ConfigurationDefaults == nil {
		b.p.ConfigurationDefaults = make(map[string]map[string]any)
	}
	if b.p.ConfigurationDefaults[checkID] == nil {
		b.p.ConfigurationDefaults[checkID] = make(map[string]any)
	}
	b.p.ConfigurationDefaults[checkID][key] = value
	return b
}

// Build validates and returns the profile.
func (b *Builder) Build() (*Profile, error) {
	if err := b.p.Validate(); err != nil {
		return nil, err
	}
	return b.p, nil
}
