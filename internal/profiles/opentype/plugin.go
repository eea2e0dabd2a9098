// Package opentype provides checks against the OpenType specification and
// the "opentype" profile.
package opentype

import (
	_ "embed"
	"fmt"

	"github.com/dshills/fontcritic/internal/check"
	"github.com/dshills/fontcritic/internal/font"
	"github.com/dshills/fontcritic/internal/profile"
	"github.com/dshills/fontcritic/internal/registry"
)

// Name is the plugin and profile name.
const Name = "opentype"

//go:embed opentype.yaml
var profileYAML []byte

// Plugin registers the TTF file type, the OpenType checks and the profile.
type Plugin struct{}

func (Plugin) Name() string { return Name }

func (Plugin) Register(b *registry.Builder) error {
	if err := b.RegisterFileType(font.TTF); err != nil {
		return fmt.Errorf("opentype.Register: %w", err)
	}
	for _, c := range Checks() {
		if err := b.RegisterCheck(c); err != nil {
			return fmt.Errorf("opentype.Register: %w", err)
		}
	}
	p, err := profile.Parse(profileYAML)
	if err != nil {
		return fmt.Errorf("opentype.Register: %w", err)
	}
	return b.RegisterProfile(p)
}

// Checks returns the checks this plugin contributes, in registration order.
func Checks() []*check.Check {
	return []*check.Check{
		CodepointCoverage,
		EqualFontVersions,
		ConsistentFamilyName,
		RequiredTables,
		TrailingSpaces,
		UnitsPerEm,
		VendorID,
		GlyfDecodable,
		FileSize,
	}
}

func init() {
	registry.RegisterEmbedded(Plugin{})
}
