package opentype

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/unicode/runenames"

	"github.com/dshills/fontcritic/internal/check"
	"github.com/dshills/fontcritic/internal/filetype"
	"github.com/dshills/fontcritic/internal/font"
	"github.com/dshills/fontcritic/internal/testable"
)

// maxListed bounds the codepoints named per font in coverage messages.
const maxListed = 20

var CodepointCoverage = check.New("opentype/family/codepoint_coverage", "Fonts in a family have the same codepoint coverage?").
	Rationale("All fonts of a family should map the same set of codepoints. A missing character in one style falls back to another font when it is used.").
	Proposal("https://github.com/fonttools/fontbakery/issues/4455").
	RunAll(codepointCoverage).
	MustBuild()

func codepointCoverage(c *testable.Collection, _ *check.Context) ([]check.Status, error) {
	fonts := filetype.FromCollection[*font.TestFont](font.Converter{}, c)
	if len(fonts) < 2 {
		return nil, check.Skip("no-siblings", "No sibling fonts found.")
	}
	union := map[rune]bool{}
	for _, f := range fonts {
		for _, r := range f.Codepoints() {
			union[r] = true
		}
	}
	all := make([]rune, 0, len(union))
	for r := range union {
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })

	var problems []check.Status
	for _, f := range fonts {
		var missing []rune
		for _, r := range all {
			if !f.HasCodepoint(r) {
				missing = append(missing, r)
			}
		}
		if len(missing) == 0 {
			continue
		}
		problems = append(problems, check.Fail("missing-codepoints", missingMessage(basename(f), missing)))
	}
	return problems, nil
}

func missingMessage(name string, missing []rune) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s lacks %d codepoints present in its siblings:\n\n", name, len(missing))
	for i, r := range missing {
		if i == maxListed {
			fmt.Fprintf(&b, "* and %d more\n", len(missing)-maxListed)
			break
		}
		fmt.Fprintf(&b, "* U+%04X %s\n", r, runenames.Name(r))
	}
	return strings.TrimRight(b.String(), "\n")
}

var EqualFontVersions = check.New("opentype/family/equal_font_versions", "Make sure all font files have the same version value.").
	Rationale("Within a family released at the same time, all members of the family should have the same version number in the head table.").
	Proposal("legacy:check/014").
	RunAll(equalFontVersions).
	MustBuild()

func equalFontVersions(c *testable.Collection, _ *check.Context) ([]check.Status, error) {
	type version struct {
		file     string
		revision float64
	}
	var versions []version
	for _, f := range filetype.FromCollection[*font.TestFont](font.Converter{}, c) {
		rev, err := f.FontRevision()
		if err != nil {
			continue
		}
		versions = append(versions, version{basename(f), rev})
	}
	if len(versions) < 2 {
		return nil, check.Skip("no-siblings", "No sibling fonts with a head table found.")
	}
	same := true
	for _, v := range versions[1:] {
		same = same && fmt.Sprintf("%.3f", v.revision) == fmt.Sprintf("%.3f", versions[0].revision)
	}
	if same {
		return check.JustOnePass(), nil
	}
	var b strings.Builder
	b.WriteString("Version info differs among font files of the same font project.\nThese were the version values found:\n")
	for _, v := range versions {
		fmt.Fprintf(&b, "\n* %.3f (%s)", v.revision, v.file)
	}
	return check.JustOneWarn("mismatch", b.String()), nil
}

var ConsistentFamilyName = check.New("opentype/family/consistent_family_name", "Verify that family names in the name table are consistent across all fonts in the family.").
	Rationale("The typographic family name (or the family name, when there is none) must be the same in every font of the family, or applications will not group them together.").
	Proposal("https://github.com/fonttools/fontbakery/issues/4112").
	RunAll(consistentFamilyName).
	MustBuild()

func consistentFamilyName(c *testable.Collection, _ *check.Context) ([]check.Status, error) {
	var order []string
	found := map[string][]string{}
	for _, f := range filetype.FromCollection[*font.TestFont](font.Converter{}, c) {
		name, ok := f.FamilyName()
		if !ok {
			return nil, fmt.Errorf("font %s is missing a family name entry", basename(f))
		}
		if _, seen := found[name]; !seen {
			order = append(order, name)
		}
		found[name] = append(found[name], basename(f))
	}
	if len(order) < 2 {
		return check.JustOnePass(), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d different family names were found:\n", len(order))
	for _, name := range order {
		fmt.Fprintf(&b, "\n* '%s' (found in fonts %s)", name, strings.Join(found[name], ", "))
	}
	return check.JustOneFail("inconsistent-family-name", b.String()), nil
}

func basename(f *font.TestFont) string {
	return filepath.Base(f.Filename())
}
