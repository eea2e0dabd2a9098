package opentype

import (
	"context"
	"strings"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/dshills/fontcritic/internal/check"
	"github.com/dshills/fontcritic/internal/engine"
	"github.com/dshills/fontcritic/internal/font/fonttest"
	"github.com/dshills/fontcritic/internal/profile"
	"github.com/dshills/fontcritic/internal/registry"
	"github.com/dshills/fontcritic/internal/testable"
)

func ttf(name string, f fonttest.Font) *testable.Testable {
	return testable.New(name, f.Bytes())
}

func runOne(t *testing.T, c *check.Check, tt *testable.Testable, cfg map[string]any) check.CheckResult {
	t.Helper()
	ctx := check.NewContext(true, 0)
	if cfg != nil {
		ctx.Configuration = cfg
	}
	return c.RunOne(tt, ctx, "test")
}

func codes(r check.CheckResult) []string {
	var out []string
	for _, s := range r.Subresults {
		out = append(out, s.Code)
	}
	return out
}

func TestPluginRegisters(t *testing.T) {
	b := registry.NewBuilder()
	if err := b.LoadPlugin(Plugin{}); err != nil {
		t.Fatal(err)
	}
	reg, err := b.Freeze()
	if err != nil {
		t.Fatal(err)
	}
	res, err := reg.Resolve(Name)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Entries) != 8 {
		t.Errorf("opentype profile has %d entries", len(res.Entries))
	}
	if _, ok := reg.Check("file_size"); !ok {
		t.Error("file_size not registered")
	}
	if p, ok := registry.Embedded(Name); !ok || p.Name() != Name {
		t.Error("plugin not embedded")
	}
}

// coverageRun runs a profile holding only the codepoint coverage check.
func coverageRun(t *testing.T, coll *testable.Collection) []check.CheckResult {
	t.Helper()
	b := registry.NewBuilder()
	if err := b.LoadPlugin(Plugin{}); err != nil {
		t.Fatal(err)
	}
	p, err := profile.NewBuilder("coverage").Add("Family", CodepointCoverage.ID).Build()
	if err != nil {
		t.Fatal(err)
	}
	if err := b.RegisterProfile(p); err != nil {
		t.Fatal(err)
	}
	reg, err := b.Freeze()
	if err != nil {
		t.Fatal(err)
	}
	e := engine.New(reg, engine.Options{Workers: 2})
	plan, err := e.Plan("coverage", coll)
	if err != nil {
		t.Fatal(err)
	}
	run, err := e.Run(context.Background(), plan)
	if err != nil {
		t.Fatal(err)
	}
	return run.Results
}

func TestCoverageIdentical(t *testing.T) {
	cps := []rune{'a', 'b', 'c'}
	results := coverageRun(t, testable.NewCollection(
		ttf("Foo-Regular.ttf", fonttest.Font{Family: "Foo", Codepoints: cps}),
		ttf("Foo-Bold.ttf", fonttest.Font{Family: "Foo", Codepoints: cps}),
	))
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	sub := results[0].Subresults
	if len(sub) != 1 || sub[0].Severity != check.StatusPass {
		t.Errorf("subresults = %v, want a single PASS", sub)
	}
}

func TestCoverageMissing(t *testing.T) {
	results := coverageRun(t, testable.NewCollection(
		ttf("Foo-Regular.ttf", fonttest.Font{Family: "Foo", Codepoints: []rune{'a', 'b', 'c'}}),
		ttf("Foo-Bold.ttf", fonttest.Font{Family: "Foo", Codepoints: []rune{'a', 'c'}}),
	))
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	found := false
	for _, s := range results[0].Subresults {
		if s.Severity == check.StatusFail &&
			strings.Contains(s.Message, "U+0062") &&
			strings.Contains(s.Message, "LATIN SMALL LETTER B") &&
			strings.Contains(s.Message, "Foo-Bold.ttf") {
			found = true
		}
		if strings.Contains(s.Message, "Foo-Regular.ttf") {
			t.Errorf("Foo-Regular.ttf reported as lacking codepoints: %s", s.Message)
		}
	}
	if !found {
		t.Errorf("no FAIL names U+0062 and Foo-Bold.ttf: %v", results[0].Subresults)
	}
}

func TestCoverageSingleFontSkips(t *testing.T) {
	r := CodepointCoverage.RunAll(testable.NewCollection(ttf("Foo-Regular.ttf", fonttest.Font{})), check.NewContext(true, 0), "s")
	if r.Worst() != check.StatusSkip || codes(r)[0] != "no-siblings" {
		t.Errorf("result = %v", r.Subresults)
	}
}

func TestUnitsPerEm(t *testing.T) {
	tests := []struct {
		upem uint16
		want check.StatusCode
		code string
	}{
		{16, check.StatusPass, ""},
		{1000, check.StatusPass, ""},
		{2000, check.StatusPass, ""},
		{2048, check.StatusPass, ""},
		{16384, check.StatusPass, ""},
		{1500, check.StatusWarn, "suboptimal"},
		{15, check.StatusFail, "out-of-range"},
		{20000, check.StatusFail, "out-of-range"},
	}
	for _, tt := range tests {
		r := runOne(t, UnitsPerEm, ttf("a.ttf", fonttest.Font{UnitsPerEm: tt.upem}), nil)
		if r.Worst() != tt.want || r.Subresults[0].Code != tt.code {
			t.Errorf("upem %d: got %v", tt.upem, r.Subresults)
		}
	}
	r := runOne(t, UnitsPerEm, ttf("a.ttf", fonttest.Font{Omit: []string{"head"}}), nil)
	if !r.IsError() {
		t.Errorf("missing head should be an error, got %v", r.Subresults)
	}
}

func TestVendorID(t *testing.T) {
	f := ttf("a.ttf", fonttest.Font{Vendor: "GOOG"})
	tests := []struct {
		name string
		cfg  map[string]any
		want check.StatusCode
		code string
	}{
		{"unset", nil, check.StatusSkip, "no-vendor-id"},
		{"match", map[string]any{"vendor_id": "GOOG"}, check.StatusPass, ""},
		{"mismatch", map[string]any{"vendor_id": "ADBO"}, check.StatusFail, "bad-vendor-id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := runOne(t, VendorID, f, tt.cfg)
			if r.Worst() != tt.want || r.Subresults[0].Code != tt.code {
				t.Errorf("got %v", r.Subresults)
			}
		})
	}
}

func TestTrailingSpaces(t *testing.T) {
	r := runOne(t, TrailingSpaces, ttf("a.ttf", fonttest.Font{Family: "Foo", Names: map[uint16]string{4: "Foo Regular "}}), nil)
	if r.Worst() != check.StatusFail || len(r.Subresults) != 1 {
		t.Fatalf("got %v", r.Subresults)
	}
	if msg := r.Subresults[0].Message; !strings.Contains(msg, "3/1/1033/4") || !strings.Contains(msg, "`Foo Regular `") {
		t.Errorf("message = %q", msg)
	}
	if r := runOne(t, TrailingSpaces, ttf("a.ttf", fonttest.Font{Family: "Foo"}), nil); r.Worst() != check.StatusPass {
		t.Errorf("clean font: %v", r.Subresults)
	}
}

func TestRequiredTables(t *testing.T) {
	tests := []struct {
		name    string
		font    fonttest.Font
		want    check.StatusCode
		missing []string
	}{
		{"complete", fonttest.Font{Extra: []string{"glyf", "loca"}}, check.StatusInfo, nil},
		{"no outlines", fonttest.Font{}, check.StatusFail, []string{"glyf"}},
		{"variable without STAT", fonttest.Font{Extra: []string{"glyf", "fvar"}}, check.StatusFail, []string{"STAT"}},
		{"no post", fonttest.Font{Extra: []string{"glyf"}, Omit: []string{"post"}}, check.StatusFail, []string{"post"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := runOne(t, RequiredTables, ttf("a.ttf", tt.font), nil)
			if r.Worst() != tt.want {
				t.Fatalf("got %v", r.Subresults)
			}
			last := r.Subresults[len(r.Subresults)-1].Message
			for _, tag := range tt.missing {
				if !strings.Contains(last, "* "+tag) {
					t.Errorf("message %q does not name %s", last, tag)
				}
			}
		})
	}
}

func TestGlyfDecodable(t *testing.T) {
	if r := runOne(t, GlyfDecodable, testable.New("GoRegular.ttf", goregular.TTF), nil); r.Worst() != check.StatusPass {
		t.Errorf("Go Regular: %v", r.Subresults)
	}
	if r := runOne(t, GlyfDecodable, ttf("a.ttf", fonttest.Font{}), nil); r.Worst() != check.StatusSkip {
		t.Errorf("font without outlines: %v", r.Subresults)
	}
}

func TestFileSize(t *testing.T) {
	f := testable.New("a.ttf", make([]byte, 5000))
	tests := []struct {
		name string
		cfg  map[string]any
		want check.StatusCode
		code string
	}{
		{"unconfigured", nil, check.StatusSkip, "no-size-limits"},
		{"small", map[string]any{"WARN_SIZE": 10000, "FAIL_SIZE": 20000}, check.StatusPass, ""},
		{"large", map[string]any{"WARN_SIZE": 4000, "FAIL_SIZE": 20000}, check.StatusWarn, "large-font"},
		{"massive", map[string]any{"WARN_SIZE": 1000, "FAIL_SIZE": 2000}, check.StatusFail, "massive-font"},
		{"fail only", map[string]any{"FAIL_SIZE": 4999.0}, check.StatusFail, "massive-font"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := runOne(t, FileSize, f, tt.cfg)
			if r.Worst() != tt.want || r.Subresults[0].Code != tt.code {
				t.Errorf("got %v", r.Subresults)
			}
		})
	}
	r := runOne(t, FileSize, f, map[string]any{"FAIL_SIZE": 2000})
	if msg := r.Subresults[0].Message; msg != "Font file is 5.0 kB, larger than limit 2.0 kB" {
		t.Errorf("message = %q", msg)
	}
}

func TestEqualFontVersions(t *testing.T) {
	ctx := check.NewContext(true, 0)
	same := testable.NewCollection(
		ttf("Foo-Regular.ttf", fonttest.Font{Revision: 1.5}),
		ttf("Foo-Bold.ttf", fonttest.Font{Revision: 1.5}),
	)
	if r := EqualFontVersions.RunAll(same, ctx, "s"); r.Worst() != check.StatusPass {
		t.Errorf("same versions: %v", r.Subresults)
	}
	differ := testable.NewCollection(
		ttf("Foo-Regular.ttf", fonttest.Font{Revision: 1.5}),
		ttf("Foo-Bold.ttf", fonttest.Font{Revision: 2}),
	)
	r := EqualFontVersions.RunAll(differ, ctx, "s")
	if r.Worst() != check.StatusWarn || r.Subresults[0].Code != "mismatch" {
		t.Fatalf("different versions: %v", r.Subresults)
	}
	if msg := r.Subresults[0].Message; !strings.Contains(msg, "* 2.000 (Foo-Bold.ttf)") {
		t.Errorf("message = %q", msg)
	}
}

func TestConsistentFamilyName(t *testing.T) {
	ctx := check.NewContext(true, 0)
	tests := []struct {
		name  string
		fonts []fonttest.Font
		want  check.StatusCode
	}{
		{"consistent", []fonttest.Font{{Family: "Foo"}, {Family: "Foo"}}, check.StatusPass},
		{"inconsistent", []fonttest.Font{{Family: "Foo"}, {Family: "Bar"}}, check.StatusFail},
		{"typographic wins", []fonttest.Font{
			{Family: "Foo Light", Names: map[uint16]string{16: "Foo"}},
			{Family: "Foo"},
		}, check.StatusPass},
		{"missing name", []fonttest.Font{{Family: "Foo"}, {}}, check.StatusError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var items []*testable.Testable
			for i, f := range tt.fonts {
				items = append(items, ttf(string(rune('A'+i))+".ttf", f))
			}
			r := ConsistentFamilyName.RunAll(testable.NewCollection(items...), ctx, "s")
			if r.Worst() != tt.want {
				t.Errorf("got %v", r.Subresults)
			}
		})
	}
}

func TestCorruptFontIsError(t *testing.T) {
	r := runOne(t, UnitsPerEm, testable.New("bad.ttf", []byte("not a font")), nil)
	if !r.IsError() || !strings.HasPrefix(r.Subresults[0].Message, "Error: ") {
		t.Errorf("got %v", r.Subresults)
	}
}
