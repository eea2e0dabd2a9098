// Package engine plans and executes check runs against a collection.
package engine

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/dshills/fontcritic/internal/check"
	"github.com/dshills/fontcritic/internal/logging"
	"github.com/dshills/fontcritic/internal/profile"
	"github.com/dshills/fontcritic/internal/registry"
	"github.com/dshills/fontcritic/internal/testable"
)

// Options configures an Engine.
type Options struct {
	// Workers bounds concurrent check invocations. Zero means runtime.NumCPU().
	Workers int
	// Include keeps only checks whose id contains one of these substrings.
	Include []string
	// Exclude drops checks whose id contains one of these substrings.
	// Exclude wins over Include.
	Exclude []string
	// Configuration holds user configuration keyed by check id.
	Configuration map[string]map[string]any
	// Base carries the network policy. Nil means network enabled with the
	// default timeout.
	Base *check.Context
}

// Engine runs checks from a frozen registry.
type Engine struct {
	reg  *registry.Registry
	opts Options
}

// New returns an engine.
func New(reg *registry.Registry, opts Options) *Engine {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Base == nil {
		opts.Base = check.NewContext(false, 0)
	}
	return &Engine{reg: reg, opts: opts}
}

// Workers returns the size of the worker pool.
func (e *Engine) Workers() int { return e.opts.Workers }

// Item is one unit of work: a check applied to one file, or to the whole
// collection when Target is nil.
type Item struct {
	Check   *check.Check
	Section string
	Target  *testable.Testable
}

// Plan is the ordered work list for one run.
type Plan struct {
	Profile    *profile.Resolved
	Collection *testable.Collection
	Items      []Item
}

// Selected reports whether the include and exclude filters keep id.
func (e *Engine) Selected(id string) bool {
	for _, x := range e.opts.Exclude {
		if strings.Contains(id, x) {
			return false
		}
	}
	if len(e.opts.Include) == 0 {
		return true
	}
	for _, in := range e.opts.Include {
		if strings.Contains(id, in) {
			return true
		}
	}
	return false
}

// Plan resolves the profile and expands it into work items in profile
// order. Per-file checks get one item per matching file in collection
// order; whole-collection checks get a single item when any file matches
// or when they apply to every file.
func (e *Engine) Plan(profileName string, coll *testable.Collection) (*Plan, error) {
	res, err := e.reg.Resolve(profileName)
	if err != nil {
		return nil, fmt.Errorf("engine.Plan: %w", err)
	}
	p := &Plan{Profile: res, Collection: coll}
	for _, entry := range res.Entries {
		if !e.Selected(entry.CheckID) {
			continue
		}
		c, ok := e.reg.Check(entry.CheckID)
		if !ok {
			return nil, fmt.Errorf("engine.Plan: %w: %s", profile.ErrUnknownCheck, entry.CheckID)
		}
		match := e.reg.Matcher(c)
		if c.RunsOnCollection() {
			if match == nil || anyMatch(coll, match) {
				p.Items = append(p.Items, Item{Check: c, Section: entry.Section})
			}
			continue
		}
		for _, t := range coll.Items() {
			if match == nil || match(t) {
				p.Items = append(p.Items, Item{Check: c, Section: entry.Section, Target: t})
			}
		}
	}
	return p, nil
}

func anyMatch(coll *testable.Collection, match func(*testable.Testable) bool) bool {
	for _, t := range coll.Items() {
		if match(t) {
			return true
		}
	}
	return false
}

// Run is the outcome of executing a plan.
type Run struct {
	// Results holds one result per executed item, in plan order.
	Results []check.CheckResult
	// Planned is the number of items in the plan.
	Planned int
	// Completed is the number of items that ran.
	Completed int
	// Cancelled is set when the context ended before every item ran.
	Cancelled bool

	slots []*check.CheckResult
}

// Run executes the plan on a bounded worker pool. Cancelling ctx stops
// dispatch; items already running finish and are reported.
func (e *Engine) Run(ctx context.Context, plan *Plan) (*Run, error) {
	if plan == nil {
		return nil, fmt.Errorf("engine.Run: nil plan")
	}
	run := &Run{
		Planned: len(plan.Items),
		slots:   make([]*check.CheckResult, len(plan.Items)),
	}
	workers := min(e.opts.Workers, len(plan.Items))

	work := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				r := e.execute(ctx, plan, plan.Items[i])
				run.slots[i] = &r
			}
		}()
	}

dispatch:
	for i := range plan.Items {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case work <- i:
		}
	}
	close(work)
	wg.Wait()

	for _, r := range run.slots {
		if r != nil {
			run.Results = append(run.Results, *r)
		}
	}
	run.Completed = len(run.Results)
	run.Cancelled = run.Completed < run.Planned && ctx.Err() != nil
	return run, nil
}

// execute runs one item in isolation and applies profile overrides.
func (e *Engine) execute(ctx context.Context, plan *Plan, it Item) check.CheckResult {
	start := time.Now()
	id := it.Check.ID
	cctx := e.opts.Base.WithBase(ctx).Specialize(it.Check, plan.Profile.Defaults[id], e.opts.Configuration[id])

	r := invoke(it, plan.Collection, cctx)
	r.Subresults = profile.ApplyOverrides(r.Subresults, plan.Profile.Overrides[id])

	logging.CheckFinished(id, r.Target(), string(r.Worst()), time.Since(start))
	return r
}

func invoke(it Item, coll *testable.Collection, cctx *check.Context) (r check.CheckResult) {
	filename := ""
	if it.Target != nil {
		filename = it.Target.Filename
	}
	defer func() {
		if p := recover(); p != nil {
			r = it.Check.ErrorResult(filename, it.Section, fmt.Sprintf("Panic: %v", p))
		}
	}()
	if it.Target != nil {
		return it.Check.RunOne(it.Target, cctx, it.Section)
	}
	return it.Check.RunAll(coll, cctx, it.Section)
}
