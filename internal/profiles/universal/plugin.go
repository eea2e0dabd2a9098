// Package universal provides the "universal" profile: the opentype profile
// plus checks that apply to any font regardless of vendor.
package universal

import (
	_ "embed"
	"fmt"

	"github.com/dshills/fontcritic/internal/profile"
	"github.com/dshills/fontcritic/internal/registry"
	"github.com/dshills/fontcritic/internal/profiles/opentype"
)

// Name is the plugin and profile name.
const Name = "universal"

//go:embed universal.yaml
var profileYAML []byte

// Plugin registers the universal checks and profile. The opentype plugin
// must be loaded too, since the profile includes it.
type Plugin struct{}

func (Plugin) Name() string { return Name }

func (Plugin) Register(b *registry.Builder) error {
	if err := b.RegisterCheck(UnwantedTables); err != nil {
		return fmt.Errorf("universal.Register: %w", err)
	}
	p, err := profile.Parse(profileYAML)
	if err != nil {
		return fmt.Errorf("universal.Register: %w", err)
	}
	return b.RegisterProfile(p)
}

// Requires lists plugins the profile depends on.
func (Plugin) Requires() []string { return []string{opentype.Name} }

func init() {
	registry.RegisterEmbedded(Plugin{})
}
