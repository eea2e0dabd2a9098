// Package filetype classifies testables by base name and converts them into typed views.
package filetype

import (
	"fmt"
	"path"

	"github.com/dshills/fontcritic/internal/testable"
)

// All is the applies-to tag for checks that run regardless of file type.
const All = "*"

// FileType is a named glob classifier.
type FileType struct {
	Tag     string
	Pattern string
}

// New creates a file type and validates the pattern syntax.
func New(tag, pattern string) (FileType, error) {
	if tag == "" {
		return FileType{}, fmt.Errorf("filetype.New: empty tag")
	}
	if _, err := path.Match(pattern, ""); err != nil {
		return FileType{}, fmt.Errorf("filetype.New %s: bad pattern %q: %w", tag, pattern, err)
	}
	return FileType{Tag: tag, Pattern: pattern}, nil
}

// MustNew is New for patterns known at compile time.
func MustNew(tag, pattern string) FileType {
	ft, err := New(tag, pattern)
	if err != nil {
		panic(err)
	}
	return ft
}

// Applies reports whether the testable's base name matches the pattern.
// Contents are never consulted.
func (f FileType) Applies(t *testable.Testable) bool {
	ok, err := path.Match(f.Pattern, t.Basename())
	return err == nil && ok
}

// Converter turns a testable into a typed view for one file type.
type Converter[T any] interface {
	FileType() FileType
	FromTestable(t *testable.Testable) (T, error)
}

// FromCollection converts every matching testable in collection order.
// Items that fail to convert are omitted.
func FromCollection[T any](conv Converter[T], c *testable.Collection) []T {
	ft := conv.FileType()
	var out []T
	for _, t := range c.Items() {
		if !ft.Applies(t) {
			continue
		}
		v, err := conv.FromTestable(t)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Present reports whether any testable in the collection matches.
func (f FileType) Present(c *testable.Collection) bool {
	for _, t := range c.Items() {
		if f.Applies(t) {
			return true
		}
	}
	return false
}
