package universal

import (
	"fmt"
	"strings"

	"github.com/dshills/fontcritic/internal/check"
	"github.com/dshills/fontcritic/internal/font"
	"github.com/dshills/fontcritic/internal/testable"
)

type unwanted struct {
	tag, reason string
}

var unwantedTables = []unwanted{
	{"FFTM", "Table contains redundant FontForge timestamp info"},
	{"TTFA", "Redundant TTFAutohint table"},
	{"TSI0", "Table contains data only used in VTT"},
	{"TSI1", "Table contains data only used in VTT"},
	{"TSI2", "Table contains data only used in VTT"},
	{"TSI3", "Table contains data only used in VTT"},
	{"TSI5", "Table contains data only used in VTT"},
	{"prop", "Table used on AAT, Apple's OS X specific technology. Although Harfbuzz now has optional AAT support, new fonts should not be using that."},
}

var UnwantedTables = check.New("universal/unwanted_tables", "Are there unwanted tables?").
	Rationale("Some font editors store source data in their own SFNT tables, and these can sometimes sneak into final release files, which should only have OpenType spec tables.").
	Proposal("legacy:check/053").
	RunOne(unwantedTablesCheck).
	Fix(removeUnwantedTables).
	MustBuild()

func found(f *font.TestFont) []unwanted {
	var out []unwanted
	for _, u := range unwantedTables {
		if f.HasTable(u.tag) {
			out = append(out, u)
		}
	}
	return out
}

func unwantedTablesCheck(t *testable.Testable, _ *check.Context) ([]check.Status, error) {
	f, err := font.FromTestable(t)
	if err != nil {
		return nil, err
	}
	bad := found(f)
	if len(bad) == 0 {
		return check.JustOnePass(), nil
	}
	var b strings.Builder
	b.WriteString("The following unwanted font tables were found:\n")
	for _, u := range bad {
		fmt.Fprintf(&b, "\n* Table: %s\n  Reason: %s", u.tag, u.reason)
	}
	b.WriteString("\n\nThey can be removed with the --hotfix option.")
	return check.JustOneFail("unwanted-tables", b.String()), nil
}

func removeUnwantedTables(t *testable.Testable, _ *check.Context) (bool, error) {
	f, err := font.FromTestable(t)
	if err != nil {
		return false, err
	}
	bad := found(f)
	if len(bad) == 0 {
		return false, nil
	}
	tags := make([]string, len(bad))
	for i, u := range bad {
		tags[i] = u.tag
	}
	out, err := font.WithoutTables(t.Contents, tags...)
	if err != nil {
		return false, err
	}
	t.Contents = out
	return true, nil
}
