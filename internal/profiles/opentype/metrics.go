package opentype

import (
	"fmt"
	"math/bits"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"

	"github.com/dshills/fontcritic/internal/check"
	"github.com/dshills/fontcritic/internal/font"
	"github.com/dshills/fontcritic/internal/testable"
)

var UnitsPerEm = check.New("opentype/unitsperem", "Checking unitsPerEm value is reasonable.").
	Rationale("According to the OpenType spec, the value of unitsPerEm at the head table must be a value between 16 and 16384. " +
		"Any value in this range is valid.\n\n" +
		"However, fonts that have TrueType outlines, a power of 2 is recommended as this allows performance optimizations in some rasterizers. " +
		"Values of 1000 and 2000 are common and also accepted.").
	Proposal("legacy:check/043").
	RunOne(unitsPerEm).
	MustBuild()

func unitsPerEm(t *testable.Testable, _ *check.Context) ([]check.Status, error) {
	f, err := font.FromTestable(t)
	if err != nil {
		return nil, err
	}
	upem, err := f.UnitsPerEm()
	if err != nil {
		return nil, err
	}
	switch {
	case upem < 16 || upem > 16384:
		return check.JustOneFail("out-of-range", fmt.Sprintf(
			"unitsPerEm value must be a value between 16 and 16384. %d is out of range.", upem)), nil
	case upem == 1000 || upem == 2000 || bits.OnesCount16(upem) == 1:
		return check.JustOnePass(), nil
	default:
		return check.JustOneWarn("suboptimal", fmt.Sprintf(
			"In order to optimize performance on some legacy renderers, the value of unitsPerEm at the head table should ideally be a power of 2 between 16 to 16384. "+
				"And values of 1000 and 2000 are also common and may be just fine as well. But we got %d instead.", upem)), nil
	}
}

var VendorID = check.New("opentype/vendor_id", "Checking OS/2 achVendID against configuration.").
	Rationale("When a vendor ID is configured, every font should declare it in the OS/2 table so the foundry can be identified.").
	Proposal("https://github.com/fonttools/fontbakery/issues/3943").
	RunOne(vendorID).
	MustBuild()

func vendorID(t *testable.Testable, ctx *check.Context) ([]check.Status, error) {
	want, ok := ctx.ConfigString("vendor_id")
	if !ok || want == "" {
		return nil, check.Skip("no-vendor-id", "Add the `vendor_id` key to a configuration file to enable this check.")
	}
	f, err := font.FromTestable(t)
	if err != nil {
		return nil, err
	}
	got, err := f.VendorID()
	if err != nil {
		return nil, err
	}
	if strings.TrimRight(got, " \x00") != strings.TrimRight(want, " ") {
		return check.JustOneFail("bad-vendor-id", fmt.Sprintf(
			"OS/2 achVendID value '%s' does not match configuration value '%s'", got, want)), nil
	}
	return check.JustOnePass(), nil
}

var TrailingSpaces = check.New("opentype/name/trailing_spaces", "Name table records must not have trailing spaces.").
	Rationale("Trailing whitespace in name table entries is invisible but changes how menus sort and compare family names.").
	Proposal("https://github.com/fonttools/fontbakery/issues/2417").
	RunOne(trailingSpaces).
	MustBuild()

func trailingSpaces(t *testable.Testable, _ *check.Context) ([]check.Status, error) {
	f, err := font.FromTestable(t)
	if err != nil {
		return nil, err
	}
	var problems []check.Status
	for _, rec := range f.Names() {
		if strings.TrimRightFunc(rec.Value, unicode.IsSpace) == rec.Value {
			continue
		}
		problems = append(problems, check.Fail("trailing-space", fmt.Sprintf(
			"Name table record with key = %d/%d/%d/%d has trailing spaces that must be removed:\n`%s`",
			rec.PlatformID, rec.EncodingID, rec.LanguageID, rec.NameID, rec.Value)))
	}
	return problems, nil
}

var FileSize = check.New("file_size", "Ensure files are not too large.").
	Rationale("Serving extremely large font files causes usability issues. " +
		"This check warns when a file is larger than WARN_SIZE and fails when it is larger than FAIL_SIZE, both in bytes and both taken from the configuration.").
	Proposal("https://github.com/fonttools/fontbakery/issues/3320").
	RunOne(fileSize).
	MustBuild()

func fileSize(t *testable.Testable, ctx *check.Context) ([]check.Status, error) {
	warn, hasWarn := ctx.ConfigInt("WARN_SIZE")
	fail, hasFail := ctx.ConfigInt("FAIL_SIZE")
	if !hasWarn && !hasFail {
		return nil, check.Skip("no-size-limits", "No size limits configured. Set WARN_SIZE and FAIL_SIZE for file_size in the configuration.")
	}
	size := int64(len(t.Contents))
	switch {
	case hasFail && size > fail:
		return check.JustOneFail("massive-font", fmt.Sprintf(
			"Font file is %s, larger than limit %s", humanize.Bytes(uint64(size)), humanize.Bytes(uint64(fail)))), nil
	case hasWarn && size > warn:
		return check.JustOneWarn("large-font", fmt.Sprintf(
			"Font file is %s; ideally it should be less than %s", humanize.Bytes(uint64(size)), humanize.Bytes(uint64(warn)))), nil
	}
	return check.JustOnePass(), nil
}
