package engine

import (
	"context"
	"fmt"

	"github.com/dshills/fontcritic/internal/check"
	"github.com/dshills/fontcritic/internal/testable"
)

// Fixable reports whether a result calls for running its check's fix.
func Fixable(r check.CheckResult) bool {
	switch r.Worst() {
	case check.StatusPass, check.StatusSkip, check.StatusInfo, check.StatusError:
		return false
	}
	return true
}

// Fix runs the fix of every per-file check whose result was a WARN or FAIL.
// A check that crashed says nothing about the file, so ERROR results are
// not fixed.
// Fixes for the same file apply in plan order to one private copy; the
// input testables are never modified. Each FixResult carries the copy's
// bytes as they were after that fix.
func (e *Engine) Fix(ctx context.Context, plan *Plan, run *Run) []check.FixResult {
	copies := make(map[*testable.Testable]*testable.Testable)
	var out []check.FixResult
	for i, slot := range run.slots {
		if ctx.Err() != nil {
			break
		}
		it := plan.Items[i]
		if slot == nil || it.Target == nil || it.Check.Fix == nil || !Fixable(*slot) {
			continue
		}
		work, ok := copies[it.Target]
		if !ok {
			work = it.Target.Clone()
			copies[it.Target] = work
		}
		cctx := e.opts.Base.WithBase(ctx).Specialize(it.Check, plan.Profile.Defaults[it.Check.ID], e.opts.Configuration[it.Check.ID])
		fr := check.FixResult{CheckID: it.Check.ID, Filename: it.Target.Filename}
		changed, err := runFix(it.Check, work, cctx)
		if err != nil {
			fr.Error = err.Error()
		}
		fr.Changed = changed
		if changed {
			fr.Contents = append([]byte(nil), work.Contents...)
		}
		out = append(out, fr)
	}
	return out
}

func runFix(c *check.Check, t *testable.Testable, cctx *check.Context) (changed bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			changed, err = false, fmt.Errorf("panic in fix: %v", p)
		}
	}()
	return c.Fix(t, cctx)
}

// FixedContents returns the final bytes of every changed file.
func FixedContents(fixes []check.FixResult) map[string][]byte {
	out := make(map[string][]byte)
	for _, f := range fixes {
		if f.Changed {
			out[f.Filename] = f.Contents
		}
	}
	return out
}
