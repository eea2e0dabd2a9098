package googlefonts

import (
	"strings"

	"github.com/dshills/fontcritic/internal/check"
	"github.com/dshills/fontcritic/internal/filetype"
	"github.com/dshills/fontcritic/internal/font"
	"github.com/dshills/fontcritic/internal/testable"
)

var HasDescription = check.New("googlefonts/family/has_description", "Does the family have a DESCRIPTION.en_us.html file?").
	Rationale("Every family in the Google Fonts collection is presented with a description snippet, or with a longer article replacing it.").
	AppliesTo(filetype.All).
	RunAll(hasDescription).
	MustBuild()

func hasDescription(c *testable.Collection, _ *check.Context) ([]check.Status, error) {
	if c.ByName(DescriptionFile) == nil && c.ByName(ArticleFile) == nil {
		return check.JustOneFail("missing-description", "This family lacks a DESCRIPTION.en_us.html file."), nil
	}
	return check.JustOnePass(), nil
}

var HasArticle = check.New("googlefonts/description/has_article", "Check for presence of an ARTICLE.en_us.html file").
	Rationale("Fonts may have a longer article about them, or a description, but not both, except for Noto fonts which should have both!").
	Proposal("https://github.com/fonttools/fontbakery/issues/3841").
	RunAll(hasArticle).
	MustBuild()

// isNoto reports whether any font in the collection belongs to a Noto family.
func isNoto(c *testable.Collection) bool {
	for _, f := range filetype.FromCollection[*font.TestFont](font.Converter{}, c) {
		if name, ok := f.FamilyName(); ok && strings.HasPrefix(name, "Noto ") {
			return true
		}
	}
	return false
}

func hasArticle(c *testable.Collection, _ *check.Context) ([]check.Status, error) {
	article := c.ByName(ArticleFile)
	description := c.ByName(DescriptionFile)
	articleEmpty := article != nil && len(article.Contents) == 0

	var problems []check.Status
	if !isNoto(c) {
		switch {
		case article == nil:
			problems = append(problems, check.Fail("missing-article", "This font doesn't have an ARTICLE.en_us.html file."))
		default:
			if articleEmpty {
				problems = append(problems, check.Fail("empty-article", "The ARTICLE.en_us.html file is empty."))
			}
			if description != nil {
				problems = append(problems, check.Fail("description-and-article",
					"This font has both a DESCRIPTION.en_us.html file and an ARTICLE.en_us.html file. In this case the description must be deleted."))
			}
		}
		return problems, nil
	}
	if article == nil {
		problems = append(problems, check.Fail("missing-article", "This is a Noto font but it lacks an ARTICLE.en_us.html file."))
	}
	if articleEmpty {
		problems = append(problems, check.Fail("empty-article", "The ARTICLE.en_us.html file is empty."))
	}
	if description == nil || len(description.Contents) == 0 {
		problems = append(problems, check.Fail("missing-description", "This is a Noto font but it lacks a DESCRIPTION.en_us.html file."))
	}
	return problems, nil
}
