package registry

import (
	"errors"
	"strings"
	"testing"

	"github.com/dshills/fontcritic/internal/check"
	"github.com/dshills/fontcritic/internal/filetype"
	"github.com/dshills/fontcritic/internal/profile"
	"github.com/dshills/fontcritic/internal/testable"
)

func passOne(*testable.Testable, *check.Context) ([]check.Status, error) {
	return check.JustOnePass(), nil
}

func newCheck(id, appliesTo string) *check.Check {
	return check.New(id, id).AppliesTo(appliesTo).RunOne(passOne).MustBuild()
}

type testPlugin struct {
	name  string
	calls int
	fn    func(*Builder) error
}

func (p *testPlugin) Name() string { return p.name }

func (p *testPlugin) Register(b *Builder) error {
	p.calls++
	if p.fn != nil {
		return p.fn(b)
	}
	return nil
}

func TestRegisterDuplicates(t *testing.T) {
	b := NewBuilder()
	if err := b.RegisterCheck(newCheck("a", "*")); err != nil {
		t.Fatal(err)
	}
	if err := b.RegisterCheck(newCheck("a", "*")); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate check: err = %v", err)
	}
	ft := filetype.MustNew("TTF", "*.ttf")
	if err := b.RegisterFileType(ft); err != nil {
		t.Fatal(err)
	}
	if err := b.RegisterFileType(ft); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate file type: err = %v", err)
	}
	p := &profile.Profile{Name: "p"}
	if err := b.RegisterProfile(p); err != nil {
		t.Fatal(err)
	}
	if err := b.RegisterProfile(p); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate profile: err = %v", err)
	}
}

func TestLoadPluginOnce(t *testing.T) {
	b := NewBuilder()
	p := &testPlugin{name: "x", fn: func(b *Builder) error {
		return b.RegisterCheck(newCheck("x/one", "*"))
	}}
	if err := b.LoadPlugin(p); err != nil {
		t.Fatal(err)
	}
	if err := b.LoadPlugin(p); !errors.Is(err, ErrDuplicate) {
		t.Errorf("second load: err = %v", err)
	}
	if p.calls != 1 {
		t.Errorf("Register called %d times, want 1", p.calls)
	}
}

func TestLoadPluginFailure(t *testing.T) {
	b := NewBuilder()
	p := &testPlugin{name: "bad", fn: func(*Builder) error { return errors.New("boom") }}
	err := b.LoadPlugin(p)
	if !errors.Is(err, ErrPluginLoad) || !strings.Contains(err.Error(), "boom") {
		t.Errorf("err = %v", err)
	}
}

func TestFreezeValidates(t *testing.T) {
	b := NewBuilder()
	_ = b.RegisterCheck(newCheck("a", "NOPE"))
	_ = b.RegisterProfile(&profile.Profile{
		Name:     "p",
		Sections: []profile.Section{{Name: "S", Checks: []string{"ghost"}}},
	})
	_ = b.RegisterProfile(&profile.Profile{Name: "q", Include: []string{"missing"}})
	_, err := b.Freeze()
	for _, want := range []error{ErrUnknownFileType, profile.ErrUnknownCheck, profile.ErrUnknownProfile} {
		if !errors.Is(err, want) {
			t.Errorf("Freeze() err = %v, want it to wrap %v", err, want)
		}
	}
}

func TestFreezeAndLookups(t *testing.T) {
	b := NewBuilder()
	ttf := filetype.MustNew("TTF", "*.ttf")
	_ = b.RegisterFileType(ttf)
	_ = b.RegisterCheck(newCheck("b", "TTF"))
	_ = b.RegisterCheck(newCheck("a", "*"))
	_ = b.RegisterProfile(&profile.Profile{
		Name:     "p",
		Sections: []profile.Section{{Name: "S", Checks: []string{"a", "b"}}},
	})
	r, err := b.Freeze()
	if err != nil {
		t.Fatal(err)
	}
	if err := b.RegisterCheck(newCheck("late", "*")); !errors.Is(err, ErrFrozen) {
		t.Errorf("register after freeze: err = %v", err)
	}

	checks := r.Checks()
	if len(checks) != 2 || checks[0].ID != "b" || checks[1].ID != "a" {
		t.Errorf("Checks() not in registration order")
	}
	if _, ok := r.Check("a"); !ok {
		t.Error("Check(a) not found")
	}
	if got := r.Profiles(); len(got) != 1 || got[0] != "p" {
		t.Errorf("Profiles() = %v", got)
	}
	res, err := r.Resolve("p")
	if err != nil || len(res.Entries) != 2 {
		t.Fatalf("Resolve() = %v, %v", res, err)
	}

	cb, _ := r.Check("b")
	match := r.Matcher(cb)
	if !match(testable.New("x.ttf", nil)) || match(testable.New("x.otf", nil)) {
		t.Error("Matcher(b) should follow the TTF pattern")
	}
	ca, _ := r.Check("a")
	if r.Matcher(ca) != nil {
		t.Error("checks applying to all files have no matcher")
	}
}

func TestFindEmbedded(t *testing.T) {
	RegisterEmbedded(&testPlugin{name: "registry-test-embedded"})
	p, err := Find("registry-test-embedded")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != "registry-test-embedded" {
		t.Errorf("Name() = %q", p.Name())
	}
	if _, err := Find("no-such-plugin"); !errors.Is(err, ErrPluginLoad) {
		t.Errorf("err = %v", err)
	}
	if _, err := Find("/nonexistent/plugin.so"); !errors.Is(err, ErrPluginLoad) {
		t.Errorf(".so err = %v", err)
	}
}

func TestLoadAll(t *testing.T) {
	RegisterEmbedded(&testPlugin{name: "registry-test-a", fn: func(b *Builder) error {
		return b.RegisterCheck(newCheck("a/x", "*"))
	}})
	b := NewBuilder()
	if err := b.LoadAll([]string{"registry-test-a"}); err != nil {
		t.Fatal(err)
	}
	r, err := b.Freeze()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := r.Check("a/x"); !ok {
		t.Error("plugin check not registered")
	}
	if err := NewBuilder().LoadAll([]string{"registry-test-a", "missing"}); err == nil {
		t.Error("expected error for missing plugin")
	}
}

type requiringPlugin struct {
	testPlugin
	requires []string
}

func (p *requiringPlugin) Requires() []string { return p.requires }

func TestLoadAllRequirements(t *testing.T) {
	RegisterEmbedded(&testPlugin{name: "registry-test-base", fn: func(b *Builder) error {
		return b.RegisterCheck(newCheck("base/x", "*"))
	}})
	RegisterEmbedded(&requiringPlugin{
		testPlugin: testPlugin{name: "registry-test-derived", fn: func(b *Builder) error {
			if _, ok := b.checks["base/x"]; !ok {
				return errors.New("base not loaded first")
			}
			return b.RegisterCheck(newCheck("derived/x", "*"))
		}},
		requires: []string{"registry-test-base"},
	})
	b := NewBuilder()
	if err := b.LoadAll([]string{"registry-test-derived", "registry-test-base"}); err != nil {
		t.Fatal(err)
	}
	if !b.loaded["registry-test-base"] || !b.loaded["registry-test-derived"] {
		t.Errorf("loaded = %v", b.loaded)
	}

	RegisterEmbedded(&requiringPlugin{
		testPlugin: testPlugin{name: "registry-test-loop", fn: func(*Builder) error { return nil }},
		requires:   []string{"registry-test-loop"},
	})
	if err := NewBuilder().LoadAll([]string{"registry-test-loop"}); !errors.Is(err, ErrPluginLoad) {
		t.Errorf("err = %v, want ErrPluginLoad", err)
	}
}
