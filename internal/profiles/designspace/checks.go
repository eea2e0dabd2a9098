package designspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dshills/fontcritic/internal/check"
	"github.com/dshills/fontcritic/internal/logging"
	"github.com/dshills/fontcritic/internal/testable"
)

func load(t *testable.Testable) (*document, error) {
	doc, err := parseDocument(t.Contents)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.Basename(), err)
	}
	return doc, nil
}

var HasSources = check.New("designspace/has_sources", "Does the designspace list any sources?").
	Rationale("A designspace document without sources cannot be built into a font.").
	AppliesTo(DESIGNSPACE.Tag).
	RunOne(hasSources).
	MustBuild()

func hasSources(t *testable.Testable, _ *check.Context) ([]check.Status, error) {
	doc, err := load(t)
	if err != nil {
		return nil, err
	}
	if len(doc.sources) == 0 {
		return check.JustOneFail("no-sources", "The designspace document lists no sources."), nil
	}
	return check.JustOnePass(), nil
}

var HasDefaultMaster = check.New("designspace/has_default_master", "Is there a source at the default location?").
	Rationale("Compilers take the default master from the source located at the default of every axis. Without one the variable font has no default instance.").
	AppliesTo(DESIGNSPACE.Tag).
	RunOne(hasDefaultMaster).
	MustBuild()

func hasDefaultMaster(t *testable.Testable, _ *check.Context) ([]check.Status, error) {
	doc, err := load(t)
	if err != nil {
		return nil, err
	}
	if len(doc.sources) == 0 {
		return nil, check.Skip("no-sources", "The designspace document lists no sources.")
	}
	var defaults []string
	for _, s := range doc.sources {
		if doc.isDefault(s) {
			defaults = append(defaults, s.label())
		}
	}
	switch len(defaults) {
	case 0:
		var loc []string
		for _, a := range doc.axes {
			loc = append(loc, fmt.Sprintf("%s=%g", a.name, a.designDefault()))
		}
		return check.JustOneFail("no-default-master", fmt.Sprintf(
			"No source is located at the default location (%s).", strings.Join(loc, ", "))), nil
	case 1:
		return check.JustOnePass(), nil
	default:
		return check.JustOneWarn("multiple-default-masters", fmt.Sprintf(
			"Several sources are located at the default location: %s", strings.Join(defaults, ", "))), nil
	}
}

var SourcesPresent = check.New("designspace/sources_present", "Are all designspace sources available?").
	Rationale("Every source a designspace refers to must be present, either among the files being checked or next to the designspace document on disk.").
	AppliesTo(DESIGNSPACE.Tag).
	RunAll(sourcesPresent).
	MustBuild()

func sourcesPresent(c *testable.Collection, _ *check.Context) ([]check.Status, error) {
	var problems []check.Status
	for _, t := range c.Items() {
		if !DESIGNSPACE.Applies(t) {
			continue
		}
		doc, err := load(t)
		if err != nil {
			return nil, err
		}
		for _, s := range doc.sources {
			if present(c, t, s.filename) {
				continue
			}
			problems = append(problems, check.Fail("missing-source", fmt.Sprintf(
				"%s refers to source %s, which was not found.", t.Basename(), s.filename)))
		}
	}
	return problems, nil
}

// present looks a source up in the collection by base name, then on disk
// relative to the designspace.
func present(c *testable.Collection, ds *testable.Testable, filename string) bool {
	if filename == "" {
		return false
	}
	if c.ByName(path.Base(filepath.ToSlash(filename))) != nil {
		return true
	}
	_, err := os.Stat(filepath.Join(filepath.Dir(ds.Filename), filepath.FromSlash(filename)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.Debug("designspace source stat failed", "source", filename, "error", err)
	}
	return err == nil
}

var PathDirection = check.New("designspace/path_direction", "Check path direction.").
	Rationale("Make sure the paths have the same direction across all masters. Interpolating between contours of opposite direction produces collapsed or self-intersecting outlines.").
	Proposal("chat").
	AppliesTo(DESIGNSPACE.Tag).
	RunOne(pathDirection).
	MustBuild()

func pathDirection(t *testable.Testable, _ *check.Context) ([]check.Status, error) {
	doc, err := load(t)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(t.Filename)
	var masters []*ufo
	var names []string
	for _, s := range doc.sources {
		u, err := openUFO(filepath.Join(dir, filepath.FromSlash(s.filename)))
		if err != nil {
			logging.Debug("designspace source not loaded", "source", s.filename, "error", err)
			continue
		}
		masters = append(masters, u)
		names = append(names, s.filename)
	}
	if len(masters) == 0 {
		return check.JustOneFail("no-sources", "Couldn't load any sources"), nil
	}
	if len(masters) < 2 {
		return nil, check.Skip("not-enough-sources", "Not enough sources to compare")
	}

	glyphs := append([]string(nil), masters[0].order...)
	sort.Strings(glyphs)
	var problems []check.Status
	for _, glyph := range glyphs {
		first, err := masters[0].contours(glyph)
		if err != nil {
			return nil, err
		}
		for i, other := range masters[1:] {
			cs, err := other.contours(glyph)
			if err != nil {
				return nil, err
			}
			for j := 0; j < len(first) && j < len(cs); j++ {
				if first[j].clockwise() != cs[j].clockwise() {
					problems = append(problems, check.Fail("path-direction", fmt.Sprintf(
						"Glyph %s has different path direction in master %s contour %d", glyph, names[i+1], j)))
				}
			}
		}
	}
	return problems, nil
}
