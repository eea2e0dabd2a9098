package engine

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dshills/fontcritic/internal/check"
	"github.com/dshills/fontcritic/internal/filetype"
	"github.com/dshills/fontcritic/internal/profile"
	"github.com/dshills/fontcritic/internal/registry"
	"github.com/dshills/fontcritic/internal/testable"
)

// fixture builds a registry with a TXT file type, the given checks and a
// single profile "p" running ids in section "S".
func fixture(t *testing.T, checks []*check.Check, ids []string, opts ...func(*profile.Builder)) *registry.Registry {
	t.Helper()
	b := registry.NewBuilder()
	if err := b.RegisterFileType(filetype.MustNew("TXT", "*.txt")); err != nil {
		t.Fatal(err)
	}
	for _, c := range checks {
		if err := b.RegisterCheck(c); err != nil {
			t.Fatal(err)
		}
	}
	pb := profile.NewBuilder("p").Add("S", ids...)
	for _, o := range opts {
		o(pb)
	}
	p, err := pb.Build()
	if err != nil {
		t.Fatal(err)
	}
	if err := b.RegisterProfile(p); err != nil {
		t.Fatal(err)
	}
	r, err := b.Freeze()
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func oneCheck(id string, fn check.OneFunc) *check.Check {
	return check.New(id, id).AppliesTo("TXT").RunOne(fn).MustBuild()
}

func allCheck(id, appliesTo string, fn check.AllFunc) *check.Check {
	return check.New(id, id).AppliesTo(appliesTo).RunAll(fn).MustBuild()
}

func pass(*testable.Testable, *check.Context) ([]check.Status, error) {
	return check.JustOnePass(), nil
}

func passAll(*testable.Collection, *check.Context) ([]check.Status, error) {
	return check.JustOnePass(), nil
}

func collection(names ...string) *testable.Collection {
	items := make([]*testable.Testable, len(names))
	for i, n := range names {
		items[i] = testable.New(n, []byte(n))
	}
	return testable.NewCollection(items...)
}

type itemKey struct {
	ID, File string
}

func keys(p *Plan) []itemKey {
	var out []itemKey
	for _, it := range p.Items {
		k := itemKey{ID: it.Check.ID}
		if it.Target != nil {
			k.File = it.Target.Filename
		}
		out = append(out, k)
	}
	return out
}

func TestPlanTargets(t *testing.T) {
	reg := fixture(t, []*check.Check{
		oneCheck("one", pass),
		allCheck("family", "TXT", passAll),
		allCheck("anything", filetype.All, passAll),
	}, []string{"one", "family", "anything", "one"})
	e := New(reg, Options{})

	p, err := e.Plan("p", collection("a.txt", "b.bin", "c.txt"))
	if err != nil {
		t.Fatal(err)
	}
	want := []itemKey{
		{"one", "a.txt"}, {"one", "c.txt"},
		{"family", ""},
		{"anything", ""},
		{"one", "a.txt"}, {"one", "c.txt"},
	}
	if got := keys(p); !reflect.DeepEqual(got, want) {
		t.Errorf("items = %v\nwant %v", got, want)
	}

	p, err = e.Plan("p", collection("x.bin"))
	if err != nil {
		t.Fatal(err)
	}
	if got := keys(p); !reflect.DeepEqual(got, []itemKey{{"anything", ""}}) {
		t.Errorf("no matching files: items = %v", got)
	}
}

func TestPlanUnknownProfile(t *testing.T) {
	reg := fixture(t, nil, nil)
	if _, err := New(reg, Options{}).Plan("nope", collection()); !errors.Is(err, profile.ErrUnknownProfile) {
		t.Errorf("err = %v", err)
	}
}

func TestSelected(t *testing.T) {
	tests := []struct {
		name             string
		include, exclude []string
		id               string
		want             bool
	}{
		{"no filters", nil, nil, "opentype/vendor_id", true},
		{"include match", []string{"vendor"}, nil, "opentype/vendor_id", true},
		{"include miss", []string{"name"}, nil, "opentype/vendor_id", false},
		{"exclude match", nil, []string{"vendor"}, "opentype/vendor_id", false},
		{"exclude wins", []string{"opentype"}, []string{"vendor"}, "opentype/vendor_id", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Engine{opts: Options{Include: tt.include, Exclude: tt.exclude}}
			if got := e.Selected(tt.id); got != tt.want {
				t.Errorf("Selected(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestRunPreservesOrder(t *testing.T) {
	var names []string
	for i := 0; i < 20; i++ {
		names = append(names, string(rune('a'+i))+".txt")
	}
	slow := oneCheck("slow", func(tb *testable.Testable, _ *check.Context) ([]check.Status, error) {
		// Earlier files take longer so completion order is reversed.
		time.Sleep(time.Duration('z'-tb.Filename[0]) * time.Millisecond)
		return check.JustOneInfo("seen", tb.Filename), nil
	})
	reg := fixture(t, []*check.Check{slow}, []string{"slow"})
	e := New(reg, Options{Workers: 8})
	p, err := e.Plan("p", collection(names...))
	if err != nil {
		t.Fatal(err)
	}
	run, err := e.Run(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if run.Completed != len(names) || run.Cancelled {
		t.Fatalf("Completed = %d, Cancelled = %v", run.Completed, run.Cancelled)
	}
	for i, r := range run.Results {
		if r.Filename != names[i] || r.Subresults[0].Message != names[i] {
			t.Errorf("result %d is for %s, want %s", i, r.Filename, names[i])
		}
	}
}

func TestRunIsolatesPanicsAndErrors(t *testing.T) {
	reg := fixture(t, []*check.Check{
		oneCheck("panics", func(*testable.Testable, *check.Context) ([]check.Status, error) {
			panic("index out of range")
		}),
		oneCheck("errors", func(*testable.Testable, *check.Context) ([]check.Status, error) {
			return nil, errors.New("cannot read table")
		}),
		oneCheck("fine", pass),
	}, []string{"panics", "errors", "fine"})
	e := New(reg, Options{Workers: 2})
	p, _ := e.Plan("p", collection("a.txt"))
	run, err := e.Run(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if len(run.Results) != 3 {
		t.Fatalf("got %d results, want 3", len(run.Results))
	}
	if r := run.Results[0]; !r.IsError() || !strings.Contains(r.Subresults[0].Message, "index out of range") {
		t.Errorf("panic result = %+v", r)
	}
	if r := run.Results[1]; !r.IsError() || !strings.Contains(r.Subresults[0].Message, "cannot read table") {
		t.Errorf("error result = %+v", r)
	}
	if r := run.Results[2]; r.Worst() != check.StatusPass {
		t.Errorf("unrelated check affected: %+v", r)
	}
}

func TestRunIsolatesInvalidStatuses(t *testing.T) {
	reg := fixture(t, []*check.Check{
		oneCheck("silent", func(*testable.Testable, *check.Context) ([]check.Status, error) {
			return []check.Status{check.Error("")}, nil
		}),
		oneCheck("unknown", func(*testable.Testable, *check.Context) ([]check.Status, error) {
			return []check.Status{{Severity: "FATAL", Message: "x"}}, nil
		}),
		oneCheck("fine", pass),
	}, []string{"silent", "unknown", "fine"})
	e := New(reg, Options{Workers: 3})
	p, _ := e.Plan("p", collection("a.txt"))
	run, err := e.Run(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if len(run.Results) != 3 {
		t.Fatalf("got %d results, want 3", len(run.Results))
	}
	for i, id := range []string{"silent", "unknown"} {
		r := run.Results[i]
		if r.CheckID != id || !r.IsError() || r.Subresults[0].Message == "" {
			t.Errorf("%s result = %+v", id, r)
		}
	}
	if r := run.Results[2]; r.Worst() != check.StatusPass {
		t.Errorf("unrelated check affected: %+v", r)
	}
}

func TestRunIsRepeatable(t *testing.T) {
	jittered := oneCheck("jittered", func(tb *testable.Testable, _ *check.Context) ([]check.Status, error) {
		time.Sleep(time.Duration(len(tb.Contents)%3) * time.Millisecond)
		if strings.HasPrefix(tb.Filename, "b") {
			return check.JustOneWarn("b-file", tb.Filename), nil
		}
		return check.JustOnePass(), nil
	})
	family := allCheck("family", "TXT", func(c *testable.Collection, _ *check.Context) ([]check.Status, error) {
		return check.JustOneInfo("count", strings.Join(c.Filenames(), ",")), nil
	})
	everything := allCheck("everything", filetype.All, passAll)
	reg := fixture(t, []*check.Check{jittered, family, everything}, []string{"jittered", "family", "everything", "jittered"})
	e := New(reg, Options{Workers: 4})
	coll := collection("a.txt", "bb.txt", "ccc.txt", "dddd.txt", "skip.bin")

	var runs [2][]check.CheckResult
	for i := range runs {
		p, err := e.Plan("p", coll)
		if err != nil {
			t.Fatal(err)
		}
		run, err := e.Run(context.Background(), p)
		if err != nil {
			t.Fatal(err)
		}
		runs[i] = run.Results
	}
	if len(runs[0]) != 10 {
		t.Fatalf("got %d results, want 10", len(runs[0]))
	}
	if !reflect.DeepEqual(runs[0], runs[1]) {
		t.Errorf("runs differ:\n%+v\n%+v", runs[0], runs[1])
	}
}

func TestFixSkipsErrors(t *testing.T) {
	fixed := false
	crashing := check.New("crashing", "crashing").AppliesTo("TXT").
		RunOne(func(*testable.Testable, *check.Context) ([]check.Status, error) {
			return nil, errors.New("cannot parse")
		}).
		Fix(func(*testable.Testable, *check.Context) (bool, error) {
			fixed = true
			return true, nil
		}).MustBuild()
	reg := fixture(t, []*check.Check{crashing}, []string{"crashing"})
	e := New(reg, Options{Workers: 1})
	p, _ := e.Plan("p", collection("a.txt"))
	run, _ := e.Run(context.Background(), p)
	if fixes := e.Fix(context.Background(), p, run); len(fixes) != 0 || fixed {
		t.Errorf("fix ran after an ERROR result: %+v", fixes)
	}
}

func TestRunAppliesOverridesAndConfiguration(t *testing.T) {
	var seen atomic.Value
	sized := oneCheck("sized", func(_ *testable.Testable, ctx *check.Context) ([]check.Status, error) {
		warn, _ := ctx.ConfigInt("WARN_SIZE")
		fail, _ := ctx.ConfigInt("FAIL_SIZE")
		seen.Store([2]int64{warn, fail})
		return check.JustOneFail("large-font", "too big"), nil
	})
	reg := fixture(t, []*check.Check{sized}, []string{"sized"}, func(b *profile.Builder) {
		b.Default("sized", "WARN_SIZE", 10).Default("sized", "FAIL_SIZE", 20)
		b.Override("sized", "large-font", check.StatusWarn, "fine for display faces")
	})
	e := New(reg, Options{
		Workers:       1,
		Configuration: map[string]map[string]any{"sized": {"FAIL_SIZE": 99}},
	})
	p, _ := e.Plan("p", collection("a.txt"))
	run, _ := e.Run(context.Background(), p)
	if got := run.Results[0].Worst(); got != check.StatusWarn {
		t.Errorf("override not applied: %s", got)
	}
	if got := seen.Load().([2]int64); got != [2]int64{10, 99} {
		t.Errorf("configuration = %v, want [10 99]", got)
	}
}

func TestRunCancelledBeforeDispatch(t *testing.T) {
	reg := fixture(t, []*check.Check{oneCheck("one", pass)}, []string{"one"})
	e := New(reg, Options{})
	p, _ := e.Plan("p", collection("a.txt", "b.txt"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	run, err := e.Run(ctx, p)
	if err != nil {
		t.Fatalf("cancellation is not an error: %v", err)
	}
	if len(run.Results) != 0 || run.Completed != 0 || !run.Cancelled {
		t.Errorf("run = %+v", run)
	}
}

func TestRunCancelledMidway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stopper := oneCheck("stop", func(*testable.Testable, *check.Context) ([]check.Status, error) {
		cancel()
		return check.JustOnePass(), nil
	})
	reg := fixture(t, []*check.Check{stopper}, []string{"stop"})
	e := New(reg, Options{Workers: 1})
	p, _ := e.Plan("p", collection("a.txt", "b.txt", "c.txt", "d.txt", "e.txt"))
	run, err := e.Run(ctx, p)
	if err != nil {
		t.Fatal(err)
	}
	if !run.Cancelled || run.Completed >= run.Planned || run.Completed == 0 {
		t.Errorf("Completed = %d of %d, Cancelled = %v", run.Completed, run.Planned, run.Cancelled)
	}
	if run.Results[0].Filename != "a.txt" {
		t.Errorf("first result is %s", run.Results[0].Filename)
	}
}

func TestRunContextReachesChecks(t *testing.T) {
	var skip atomic.Bool
	probe := oneCheck("probe", func(_ *testable.Testable, ctx *check.Context) ([]check.Status, error) {
		skip.Store(ctx.SkipNetwork)
		if ctx.Ctx() == nil {
			return nil, errors.New("no base context")
		}
		return nil, nil
	})
	reg := fixture(t, []*check.Check{probe}, []string{"probe"})
	e := New(reg, Options{Base: check.NewContext(true, time.Second)})
	p, _ := e.Plan("p", collection("a.txt"))
	run, _ := e.Run(context.Background(), p)
	if !skip.Load() {
		t.Error("network policy not propagated")
	}
	if run.Results[0].Worst() != check.StatusPass {
		t.Errorf("empty statuses should report PASS, got %v", run.Results[0].Subresults)
	}
}

func TestFix(t *testing.T) {
	newline := check.New("newline", "newline").AppliesTo("TXT").
		RunOne(func(tb *testable.Testable, _ *check.Context) ([]check.Status, error) {
			if bytes.HasSuffix(tb.Contents, []byte("\n")) {
				return check.JustOnePass(), nil
			}
			return check.JustOneWarn("missing-eof-linebreak", "no newline"), nil
		}).
		Fix(func(tb *testable.Testable, _ *check.Context) (bool, error) {
			tb.Contents = append(tb.Contents, '\n')
			return true, nil
		}).MustBuild()
	reg := fixture(t, []*check.Check{newline}, []string{"newline"})
	e := New(reg, Options{Workers: 2})

	bad := testable.New("bad.txt", []byte("text"))
	good := testable.New("good.txt", []byte("text\n"))
	p, _ := e.Plan("p", testable.NewCollection(bad, good))
	run, _ := e.Run(context.Background(), p)
	fixes := e.Fix(context.Background(), p, run)

	if len(fixes) != 1 || fixes[0].Filename != "bad.txt" || !fixes[0].Changed {
		t.Fatalf("fixes = %+v", fixes)
	}
	if string(fixes[0].Contents) != "text\n" {
		t.Errorf("fixed contents = %q", fixes[0].Contents)
	}
	if string(bad.Contents) != "text" {
		t.Error("fix modified the input bytes")
	}
	if got := FixedContents(fixes); string(got["bad.txt"]) != "text\n" || len(got) != 1 {
		t.Errorf("FixedContents() = %v", got)
	}
}

func TestFixable(t *testing.T) {
	tests := []struct {
		sub  []check.Status
		want bool
	}{
		{check.JustOnePass(), false},
		{check.JustOneInfo("i", ""), false},
		{check.JustOneSkip("s", ""), false},
		{check.JustOneWarn("w", ""), true},
		{check.JustOneFail("f", ""), true},
		{[]check.Status{check.Error("boom")}, false},
		{[]check.Status{check.Warn("w", ""), check.Error("boom")}, false},
	}
	for _, tt := range tests {
		if got := Fixable(check.CheckResult{Subresults: tt.sub}); got != tt.want {
			t.Errorf("Fixable(%v) = %v, want %v", tt.sub, got, tt.want)
		}
	}
}
