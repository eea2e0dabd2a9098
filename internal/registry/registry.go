// Package registry collects checks, file types and profiles contributed by
// plugins and freezes them into a read-only Registry.
package registry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dshills/fontcritic/internal/check"
	"github.com/dshills/fontcritic/internal/filetype"
	"github.com/dshills/fontcritic/internal/logging"
	"github.com/dshills/fontcritic/internal/profile"
	"github.com/dshills/fontcritic/internal/testable"
)

var (
	// ErrDuplicate is returned when an id, tag or name is registered twice.
	ErrDuplicate = errors.New("duplicate registration")
	// ErrUnknownFileType is returned by Freeze for checks applying to an unregistered file type.
	ErrUnknownFileType = errors.New("unknown file type")
	// ErrFrozen is returned when registering after Freeze.
	ErrFrozen = errors.New("registry is frozen")
	// ErrPluginLoad wraps every plugin failure.
	ErrPluginLoad = errors.New("plugin load failed")
)

// Builder is the mutable registration phase.
type Builder struct {
	checks     map[string]*check.Check
	checkOrder []string
	fileTypes  map[string]filetype.FileType
	ftOrder    []string
	profiles   map[string]*profile.Profile
	loaded     map[string]bool
	frozen     bool
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		checks:    make(map[string]*check.Check),
		fileTypes: make(map[string]filetype.FileType),
		profiles:  make(map[string]*profile.Profile),
		loaded:    make(map[string]bool),
	}
}

// RegisterCheck adds a check. Ids are unique.
func (b *Builder) RegisterCheck(c *check.Check) error {
	if b.frozen {
		return ErrFrozen
	}
	if c == nil || c.ID == "" {
		return fmt.Errorf("registry.RegisterCheck: check without id")
	}
	if _, ok := b.checks[c.ID]; ok {
		return fmt.Errorf("registry.RegisterCheck: %w: check %s", ErrDuplicate, c.ID)
	}
	b.checks[c.ID] = c
	b.checkOrder = append(b.checkOrder, c.ID)
	return nil
}

// RegisterFileType adds a file type. Tags are unique.
func (b *Builder) RegisterFileType(ft filetype.FileType) error {
	if b.frozen {
		return ErrFrozen
	}
	if ft.Tag == "" || ft.Tag == filetype.All {
		return fmt.Errorf("registry.RegisterFileType: invalid tag %q", ft.Tag)
	}
	if _, ok := b.fileTypes[ft.Tag]; ok {
		return fmt.Errorf("registry.RegisterFileType: %w: file type %s", ErrDuplicate, ft.Tag)
	}
	b.fileTypes[ft.Tag] = ft
	b.ftOrder = append(b.ftOrder, ft.Tag)
	return nil
}

// RegisterProfile adds a profile. Names are unique. Included profiles and
// check ids are verified by Freeze, so plugins may register in any order.
func (b *Builder) RegisterProfile(p *profile.Profile) error {
	if b.frozen {
		return ErrFrozen
	}
	if p == nil {
		return fmt.Errorf("registry.RegisterProfile: nil profile")
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("registry.RegisterProfile: %w", err)
	}
	if _, ok := b.profiles[p.Name]; ok {
		return fmt.Errorf("registry.RegisterProfile: %w: profile %s", ErrDuplicate, p.Name)
	}
	b.profiles[p.Name] = p
	return nil
}

// LoadPlugin runs p.Register once. Loading the same name twice is an error.
func (b *Builder) LoadPlugin(p Plugin) error {
	name := p.Name()
	if name == "" {
		return fmt.Errorf("registry.LoadPlugin: %w: plugin without name", ErrPluginLoad)
	}
	if b.loaded[name] {
		return fmt.Errorf("registry.LoadPlugin: %w: %s already loaded", ErrDuplicate, name)
	}
	b.loaded[name] = true
	if err := p.Register(b); err != nil {
		logging.PluginError(name, "register", err)
		return fmt.Errorf("registry.LoadPlugin %s: %w: %w", name, ErrPluginLoad, err)
	}
	return nil
}

// Freeze validates cross references and returns the read-only registry.
// Every problem found is reported.
func (b *Builder) Freeze() (*Registry, error) {
	if b.frozen {
		return nil, ErrFrozen
	}
	r := &Registry{
		checks:     make(map[string]*check.Check, len(b.checks)),
		checkOrder: append([]string(nil), b.checkOrder...),
		fileTypes:  make(map[string]filetype.FileType, len(b.fileTypes)),
		ftOrder:    append([]string(nil), b.ftOrder...),
		profiles:   make(map[string]*profile.Profile, len(b.profiles)),
	}
	for id, c := range b.checks {
		r.checks[id] = c
	}
	for tag, ft := range b.fileTypes {
		r.fileTypes[tag] = ft
	}
	for name, p := range b.profiles {
		r.profiles[name] = p
	}

	var errs []error
	for _, id := range r.checkOrder {
		c := r.checks[id]
		if c.AppliesTo == filetype.All {
			continue
		}
		if _, ok := r.fileTypes[c.AppliesTo]; !ok {
			errs = append(errs, fmt.Errorf("check %s: %w: %s", id, ErrUnknownFileType, c.AppliesTo))
		}
	}
	for _, name := range r.Profiles() {
		if _, err := r.Resolve(name); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("registry.Freeze: %w", errors.Join(errs...))
	}
	b.frozen = true
	return r, nil
}

// Registry is the frozen, read-only snapshot. It is safe for concurrent use.
type Registry struct {
	checks     map[string]*check.Check
	checkOrder []string
	fileTypes  map[string]filetype.FileType
	ftOrder    []string
	profiles   map[string]*profile.Profile
}

// Check looks up a check by id.
func (r *Registry) Check(id string) (*check.Check, bool) {
	c, ok := r.checks[id]
	return c, ok
}

// Checks returns all checks in registration order.
func (r *Registry) Checks() []*check.Check {
	out := make([]*check.Check, len(r.checkOrder))
	for i, id := range r.checkOrder {
		out[i] = r.checks[id]
	}
	return out
}

// FileType looks up a file type by tag.
func (r *Registry) FileType(tag string) (filetype.FileType, bool) {
	ft, ok := r.fileTypes[tag]
	return ft, ok
}

// FileTypes returns all file types in registration order.
func (r *Registry) FileTypes() []filetype.FileType {
	out := make([]filetype.FileType, len(r.ftOrder))
	for i, tag := range r.ftOrder {
		out[i] = r.fileTypes[tag]
	}
	return out
}

// Profile looks up a profile by name.
func (r *Registry) Profile(name string) (*profile.Profile, bool) {
	p, ok := r.profiles[name]
	return p, ok
}

// Profiles returns profile names, sorted.
func (r *Registry) Profiles() []string {
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve expands a profile and verifies that all its checks exist.
func (r *Registry) Resolve(name string) (*profile.Resolved, error) {
	res, err := profile.Resolve(name, r.Profile)
	if err != nil {
		return nil, err
	}
	if err := res.Check(func(id string) bool { _, ok := r.checks[id]; return ok }); err != nil {
		return nil, err
	}
	return res, nil
}

// Matcher returns the predicate selecting the testables c applies to.
// The predicate is nil for checks applying to every file.
func (r *Registry) Matcher(c *check.Check) func(*testable.Testable) bool {
	if c.AppliesTo == filetype.All {
		return nil
	}
	ft, ok := r.fileTypes[c.AppliesTo]
	if !ok {
		return func(*testable.Testable) bool { return false }
	}
	return ft.Applies
}
