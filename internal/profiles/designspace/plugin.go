// Package designspace provides checks for designspace documents and the
// UFO sources they reference.
package designspace

import (
	"fmt"

	"github.com/dshills/fontcritic/internal/check"
	"github.com/dshills/fontcritic/internal/filetype"
	"github.com/dshills/fontcritic/internal/profile"
	"github.com/dshills/fontcritic/internal/registry"
)

const Name = "designspace"

var (
	DESIGNSPACE = filetype.MustNew("DESIGNSPACE", "*.designspace")
	UFO         = filetype.MustNew("UFO", "*.ufo")
)

type Plugin struct{}

func (Plugin) Name() string { return Name }

func (Plugin) Register(b *registry.Builder) error {
	for _, ft := range []filetype.FileType{DESIGNSPACE, UFO} {
		if err := b.RegisterFileType(ft); err != nil {
			return fmt.Errorf("designspace.Register: %w", err)
		}
	}
	checks := []*check.Check{HasSources, HasDefaultMaster, SourcesPresent, PathDirection}
	pb := profile.NewBuilder(Name).Describe("Consistency of designspace sources.")
	for _, c := range checks {
		if err := b.RegisterCheck(c); err != nil {
			return fmt.Errorf("designspace.Register: %w", err)
		}
		pb.Add("Designspace Checks", c.ID)
	}
	p, err := pb.Build()
	if err != nil {
		return fmt.Errorf("designspace.Register: %w", err)
	}
	return b.RegisterProfile(p)
}

func init() {
	registry.RegisterEmbedded(Plugin{})
}
