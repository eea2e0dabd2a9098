// Package report defines the output of a check run.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/fontcritic/internal/check"
	"github.com/dshills/fontcritic/internal/testable"
)

// Report is the top-level output object.
type Report struct {
	Tool    string              `json:"tool"`
	Version string              `json:"version"`
	RunID   string              `json:"run_id"`
	Input   Input               `json:"input"`
	Summary Summary             `json:"summary"`
	Results []check.CheckResult `json:"results"`
	Fixes   []check.FixResult   `json:"fixes,omitempty"`
	Meta    Meta                `json:"meta"`
}

// Input describes the files and settings used for the run.
type Input struct {
	Profile   string      `json:"profile"`
	Files     []InputFile `json:"files"`
	Include   []string    `json:"include,omitempty"`
	Exclude   []string    `json:"exclude,omitempty"`
	Threshold string      `json:"error_code_on"`
}

// InputFile records an input path and its hash.
type InputFile struct {
	Path   string `json:"path"`
	Digest string `json:"digest"`
}

// Meta records how the run went.
type Meta struct {
	StartedAt   time.Time `json:"started_at"`
	DurationMS  int64     `json:"duration_ms"`
	Workers     int       `json:"workers"`
	SkipNetwork bool      `json:"skip_network"`
	Planned     int       `json:"planned"`
	Completed   int       `json:"completed"`
	Cancelled   bool      `json:"cancelled"`
}

// New assembles a report with a fresh run id and computed summary.
func New(tool, version string, in Input, coll *testable.Collection, results []check.CheckResult) *Report {
	for _, t := range coll.Items() {
		in.Files = append(in.Files, InputFile{Path: t.Filename, Digest: t.Digest()})
	}
	return &Report{
		Tool:    tool,
		Version: version,
		RunID:   uuid.NewString(),
		Input:   in,
		Summary: ComputeSummary(results),
		Results: results,
	}
}
