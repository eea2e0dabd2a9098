// Package googlefonts provides the "googlefonts" profile: the universal
// profile plus checks for the sidecar files Google Fonts publishes with a
// family.
package googlefonts

import (
	_ "embed"
	"fmt"

	"github.com/dshills/fontcritic/internal/check"
	"github.com/dshills/fontcritic/internal/filetype"
	"github.com/dshills/fontcritic/internal/profile"
	"github.com/dshills/fontcritic/internal/profiles/universal"
	"github.com/dshills/fontcritic/internal/registry"
)

// Name is the plugin and profile name.
const Name = "googlefonts"

// Sidecar file names.
const (
	DescriptionFile = "DESCRIPTION.en_us.html"
	ArticleFile     = "ARTICLE.en_us.html"
)

var (
	// DESC matches family description snippets.
	DESC = filetype.MustNew("DESC", DescriptionFile)
	// ARTICLE matches long-form family articles.
	ARTICLE = filetype.MustNew("ARTICLE", ArticleFile)
)

//go:embed googlefonts.yaml
var profileYAML []byte

type Plugin struct{}

func (Plugin) Name() string { return Name }

func (Plugin) Requires() []string { return []string{universal.Name} }

func (Plugin) Register(b *registry.Builder) error {
	for _, ft := range []filetype.FileType{DESC, ARTICLE} {
		if err := b.RegisterFileType(ft); err != nil {
			return fmt.Errorf("googlefonts.Register: %w", err)
		}
	}
	for _, c := range Checks() {
		if err := b.RegisterCheck(c); err != nil {
			return fmt.Errorf("googlefonts.Register: %w", err)
		}
	}
	p, err := profile.Parse(profileYAML)
	if err != nil {
		return fmt.Errorf("googlefonts.Register: %w", err)
	}
	return b.RegisterProfile(p)
}

// Checks returns the checks this plugin contributes.
func Checks() []*check.Check {
	return []*check.Check{
		MinLength,
		EOFLinebreak,
		ValidHTML,
		UnsupportedElements,
		URLs,
		GitURL,
		BrokenLinks,
		HasDescription,
		HasArticle,
	}
}

func init() {
	registry.RegisterEmbedded(Plugin{})
}
