package registry

import (
	"fmt"
	"path/filepath"
	"plugin"
	"sort"
	"strings"
	"sync"

	"github.com/dshills/fontcritic/internal/logging"
)

// Plugin contributes checks, file types and profiles to a Builder.
type Plugin interface {
	Name() string
	Register(b *Builder) error
}

// SymbolName is the exported symbol looked up in shared-object plugins.
// It must be a value or pointer implementing Plugin.
const SymbolName = "Plugin"

var (
	embeddedMu sync.RWMutex
	embedded   = make(map[string]Plugin)
)

// RegisterEmbedded makes a compiled-in plugin available by name.
// Plugin packages call it from init.
func RegisterEmbedded(p Plugin) {
	embeddedMu.Lock()
	defer embeddedMu.Unlock()
	embedded[p.Name()] = p
}

// Embedded returns a compiled-in plugin by name.
func Embedded(name string) (Plugin, bool) {
	embeddedMu.RLock()
	defer embeddedMu.RUnlock()
	p, ok := embedded[name]
	return p, ok
}

// EmbeddedNames lists the compiled-in plugins, sorted.
func EmbeddedNames() []string {
	embeddedMu.RLock()
	defer embeddedMu.RUnlock()
	names := make([]string, 0, len(embedded))
	for name := range embedded {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Find resolves a plugin reference: a path ending in .so is opened as a
// shared object, anything else names an embedded plugin.
func Find(ref string) (Plugin, error) {
	if strings.HasSuffix(ref, ".so") {
		logging.PluginLoading(ref, "shared-object", "path", ref)
		return Open(ref)
	}
	p, ok := Embedded(ref)
	if !ok {
		return nil, fmt.Errorf("registry.Find: %w: no embedded plugin %q (have %s)",
			ErrPluginLoad, ref, strings.Join(EmbeddedNames(), ", "))
	}
	logging.PluginLoading(ref, "embedded")
	return p, nil
}

// Open loads a Go plugin built with -buildmode=plugin.
func Open(path string) (Plugin, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("registry.Open: %w: %w", ErrPluginLoad, err)
	}
	so, err := plugin.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("registry.Open %s: %w: %w", path, ErrPluginLoad, err)
	}
	sym, err := so.Lookup(SymbolName)
	if err != nil {
		return nil, fmt.Errorf("registry.Open %s: %w: %w", path, ErrPluginLoad, err)
	}
	switch p := sym.(type) {
	case Plugin:
		return p, nil
	case *Plugin:
		if *p != nil {
			return *p, nil
		}
	}
	return nil, fmt.Errorf("registry.Open %s: %w: symbol %s is %T, not a Plugin", path, ErrPluginLoad, SymbolName, sym)
}

// Requirer is implemented by plugins that need other plugins loaded first,
// typically because their profiles include profiles registered elsewhere.
type Requirer interface {
	Requires() []string
}

// LoadAll finds and loads each reference in order. Required plugins are
// loaded before the plugins that need them; references to plugins that are
// already loaded are skipped.
func (b *Builder) LoadAll(refs []string) error {
	for _, ref := range refs {
		if err := b.loadRef(ref, nil); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) loadRef(ref string, stack []string) error {
	for _, s := range stack {
		if s == ref {
			return fmt.Errorf("registry.LoadAll: %w: circular requirement %s -> %s",
				ErrPluginLoad, strings.Join(stack, " -> "), ref)
		}
	}
	p, err := Find(ref)
	if err != nil {
		return err
	}
	if b.loaded[p.Name()] {
		return nil
	}
	if r, ok := p.(Requirer); ok {
		for _, dep := range r.Requires() {
			if err := b.loadRef(dep, append(stack, ref)); err != nil {
				return err
			}
		}
	}
	return b.LoadPlugin(p)
}
