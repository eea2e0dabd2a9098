// Package check defines check descriptors, statuses and results.
package check

import (
	"errors"
	"fmt"

	"github.com/dshills/fontcritic/internal/testable"
)

// DefaultAppliesTo is used when a check does not name a file type.
const DefaultAppliesTo = "TTF"

// OneFunc checks a single testable.
type OneFunc func(t *testable.Testable, ctx *Context) ([]Status, error)

// AllFunc checks a whole collection at once.
type AllFunc func(c *testable.Collection, ctx *Context) ([]Status, error)

// FixFunc repairs a private copy of a testable in place. It reports whether
// anything changed and must be idempotent.
type FixFunc func(t *testable.Testable, ctx *Context) (bool, error)

// Shape is the invocation shape of a check.
type Shape int

const (
	ShapeOne Shape = iota
	ShapeAll
)

func (s Shape) String() string {
	if s == ShapeAll {
		return "all"
	}
	return "one"
}

// Implementation holds exactly one of the two function shapes.
type Implementation struct {
	one OneFunc
	all AllFunc
}

// RunsOne wraps a per-item function.
func RunsOne(fn OneFunc) Implementation { return Implementation{one: fn} }

// RunsAll wraps a whole-collection function.
func RunsAll(fn AllFunc) Implementation { return Implementation{all: fn} }

func (i Implementation) valid() bool {
	return (i.one != nil) != (i.all != nil)
}

// Flags carries boolean check properties.
type Flags struct {
	Experimental bool
}

// Check is an immutable check descriptor.
type Check struct {
	ID             string
	Title          string
	Rationale      string
	Proposal       string
	AppliesTo      string
	Implementation Implementation
	Fix            FixFunc
	Metadata       map[string]any
	Flags          Flags
}

// Shape reports how the check is invoked.
func (c *Check) Shape() Shape {
	if c.Implementation.all != nil {
		return ShapeAll
	}
	return ShapeOne
}

// RunsOnCollection is true for whole-collection checks.
func (c *Check) RunsOnCollection() bool {
	return c.Shape() == ShapeAll
}

// RunOne invokes a per-item check. Returned errors are downgraded to a
// status; panics are left to the caller.
func (c *Check) RunOne(t *testable.Testable, ctx *Context, section string) CheckResult {
	if c.Implementation.one == nil {
		return c.result(t.Filename, section, nil, fmt.Errorf("check %s does not run on single files", c.ID))
	}
	statuses, err := c.Implementation.one(t, ctx)
	return c.result(t.Filename, section, statuses, err)
}

// RunAll invokes a whole-collection check.
func (c *Check) RunAll(coll *testable.Collection, ctx *Context, section string) CheckResult {
	if c.Implementation.all == nil {
		return c.result("", section, nil, fmt.Errorf("check %s does not run on collections", c.ID))
	}
	statuses, err := c.Implementation.all(coll, ctx)
	return c.result("", section, statuses, err)
}

// ErrorResult builds the result reported when an invocation could not complete.
func (c *Check) ErrorResult(filename, section, message string) CheckResult {
	return c.result(filename, section, []Status{Error(message)}, nil)
}

func (c *Check) result(filename, section string, statuses []Status, err error) CheckResult {
	var sub []Status
	var skip *SkipError
	switch {
	case errors.As(err, &skip):
		sub = []Status{SkipStatus(skip.Code, skip.Message)}
	case err != nil:
		sub = []Status{Error("Error: " + err.Error())}
	default:
		sub, _ = ReturnResult(statuses)
		sub = c.normalize(sub)
	}
	return CheckResult{
		CheckID:        c.ID,
		CheckName:      c.Title,
		CheckRationale: c.Rationale,
		Filename:       filename,
		Section:        section,
		Subresults:     sub,
	}
}

// normalize rewrites statuses a report cannot carry. Severities are
// matched case-insensitively; unknown ones and ERRORs without a message
// become ERRORs naming the check.
func (c *Check) normalize(statuses []Status) []Status {
	out := make([]Status, len(statuses))
	for i, s := range statuses {
		code, err := ParseStatusCode(string(s.Severity))
		switch {
		case err != nil:
			s = Error(fmt.Sprintf("Error: invalid status %q from %s", s.Severity, c.ID))
		case code == StatusError && s.Message == "":
			s = Status{Severity: StatusError, Code: s.Code, Message: "Error: " + c.ID + " failed without a message"}
		default:
			s.Severity = code
		}
		out[i] = s
	}
	return out
}

// Builder assembles a Check from named fields.
type Builder struct {
	c Check
}

// New starts a check descriptor.
func New(id, title string) *Builder {
	return &Builder{c: Check{ID: id, Title: title, AppliesTo: DefaultAppliesTo}}
}

func (b *Builder) Rationale(s string) *Builder { b.c.Rationale = s; return b }

func (b *Builder) Proposal(s string) *Builder { b.c.Proposal = s; return b }

func (b *Builder) AppliesTo(tag string) *Builder { b.c.AppliesTo = tag; return b }

func (b *Builder) RunOne(fn OneFunc) *Builder { b.c.Implementation.one = fn; return b }

func (b *Builder) RunAll(fn AllFunc) *Builder { b.c.Implementation.all = fn; return b }

func (b *Builder) Fix(fn FixFunc) *Builder { b.c.Fix = fn; return b }

func (b *Builder) Experimental() *Builder { b.c.Flags.Experimental = true; return b }

func (b *Builder) Metadata(key string, value any) *Builder {
	if b.c.Metadata == nil {
		b.c.Metadata = make(map[string]any)
	}
	b.c.Metadata[key] = value
	return b
}

// Build validates and returns the descriptor.
func (b *Builder) Build() (*Check, error) {
	c := b.c
	if c.ID == "" {
		return nil, fmt.Errorf("check.Build: empty check id")
	}
	if c.AppliesTo == "" {
		return nil, fmt.Errorf("check.Build %s: empty applies-to", c.ID)
	}
	if !c.Implementation.valid() {
		return nil, fmt.Errorf("check.Build %s: exactly one of RunOne or RunAll is required", c.ID)
	}
	if c.Fix != nil && c.Implementation.one == nil {
		return nil, fmt.Errorf("check.Build %s: fixes are only supported on per-file checks", c.ID)
	}
	return &c, nil
}

// MustBuild is Build for built-in checks, where a bad descriptor is a programming error.
func (b *Builder) MustBuild() *Check {
	c, err := b.Build()
	if err != nil {
		panic(err)
	}
	return c
}
