package opentype

import (
	"fmt"
	"strings"

	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/dshills/fontcritic/internal/check"
	"github.com/dshills/fontcritic/internal/font"
	"github.com/dshills/fontcritic/internal/testable"
)

var optionalTables = []string{
	"cvt ", "fpgm", "loca", "prep", "VORG", "EBDT", "EBLC", "EBSC", "BASE",
	"GPOS", "GSUB", "JSTF", "gasp", "hdmx", "LTSH", "PCLT", "VDMX", "vhea",
	"vmtx", "kern",
}

var RequiredTables = check.New("opentype/required_tables", "Font contains all required tables?").
	Rationale("According to the OpenType spec https://docs.microsoft.com/en-us/typography/opentype/spec/otff#required-tables\n\n" +
		"Whether TrueType or CFF outlines are used in an OpenType font, the following tables are required for the font to function correctly: cmap, head, hhea, hmtx, maxp, name, OS/2 and post.\n\n" +
		"A variable font must also have a STAT table.").
	Proposal("legacy:check/052").
	RunOne(requiredTables).
	MustBuild()

func requiredTables(t *testable.Testable, _ *check.Context) ([]check.Status, error) {
	f, err := font.FromTestable(t)
	if err != nil {
		return nil, err
	}
	var problems []check.Status
	var optional []string
	for _, tag := range optionalTables {
		if f.HasTable(tag) {
			optional = append(optional, tag)
		}
	}
	if len(optional) > 0 {
		problems = append(problems, check.Info("optional-tables",
			"This font contains the following optional tables:\n\n"+bullets(optional)))
	}

	var missing []string
	for _, tag := range font.RequiredTables {
		if !f.HasTable(tag) {
			missing = append(missing, tag)
		}
	}
	if f.IsVariable() && !f.HasTable("STAT") {
		missing = append(missing, "STAT")
	}
	switch f.SfntVersion() {
	case font.VersionCFF:
		if !f.HasTable("CFF ") && !f.HasTable("CFF2") {
			if f.IsVariable() {
				missing = append(missing, "CFF2")
			} else {
				missing = append(missing, "CFF ")
			}
		}
	case font.VersionTrueType:
		if !f.HasTable("glyf") {
			missing = append(missing, "glyf")
		}
	}
	if len(missing) > 0 {
		problems = append(problems, check.Fail("required-tables",
			"This font is missing the following required tables:\n\n"+bullets(missing)))
	}
	return problems, nil
}

func bullets(items []string) string {
	var b strings.Builder
	for i, s := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "* %s", s)
	}
	return b.String()
}

var GlyfDecodable = check.New("opentype/glyf_decodable", "Are all glyph outlines decodable?").
	Rationale("A glyph that cannot be decoded is rendered as blank or crashes the rasterizer. Every glyph in the font is loaded at its native size to find broken outlines.").
	RunOne(glyfDecodable).
	MustBuild()

// maxBadGlyphs bounds the glyph ids named in a failure.
const maxBadGlyphs = 10

func glyfDecodable(t *testable.Testable, _ *check.Context) ([]check.Status, error) {
	f, err := font.FromTestable(t)
	if err != nil {
		return nil, err
	}
	if !f.HasTable("glyf") && !f.HasTable("CFF ") {
		return nil, check.Skip("no-outlines", "Font has neither glyf nor CFF outlines.")
	}
	outlines, err := f.Outlines()
	if err != nil {
		return check.JustOneFail("unparseable", fmt.Sprintf("Font outlines could not be parsed: %v", err)), nil
	}
	ppem := fixed.I(int(outlines.UnitsPerEm()))
	var buf sfnt.Buffer
	var bad []string
	count := 0
	for i := 0; i < outlines.NumGlyphs(); i++ {
		if _, err := outlines.LoadGlyph(&buf, sfnt.GlyphIndex(i), ppem, nil); err != nil {
			count++
			if len(bad) < maxBadGlyphs {
				bad = append(bad, fmt.Sprintf("glyph %d: %v", i, err))
			}
		}
	}
	if count == 0 {
		return check.JustOnePass(), nil
	}
	msg := fmt.Sprintf("%d glyphs could not be decoded:\n\n%s", count, bullets(bad))
	if count > len(bad) {
		msg += fmt.Sprintf("\n* and %d more", count-len(bad))
	}
	return check.JustOneFail("bad-glyphs", msg), nil
}
