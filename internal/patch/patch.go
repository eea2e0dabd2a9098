// Package patch writes unified diffs of files changed by hotfixes.
package patch

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/dshills/fontcritic/internal/testable"
)

// Diff returns a unified diff between two versions of a file. Binary
// contents produce a one-line notice instead.
func Diff(name string, before, after []byte) (string, error) {
	if bytes.Equal(before, after) {
		return "", nil
	}
	name = filepath.ToSlash(name)
	if binary(before) || binary(after) {
		return fmt.Sprintf("Binary files a/%s and b/%s differ\n", name, name), nil
	}
	d, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  3,
	})
	if err != nil {
		return "", fmt.Errorf("patch.Diff %s: %w", name, err)
	}
	return d, nil
}

func binary(b []byte) bool {
	return bytes.IndexByte(b, 0) >= 0 || !utf8.Valid(b)
}

// WritePatchFile writes the diffs of every fixed file, in collection order.
// If nothing changed, no file is created.
func WritePatchFile(coll *testable.Collection, fixed map[string][]byte, outPath string) error {
	if len(fixed) == 0 {
		return nil
	}

	var b strings.Builder
	for _, t := range coll.Items() {
		after, ok := fixed[t.Filename]
		if !ok {
			continue
		}
		d, err := Diff(t.Filename, t.Contents, after)
		if err != nil {
			return err
		}
		b.WriteString(d)
	}

	if err := os.WriteFile(outPath, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("patch.WritePatchFile: %w", err)
	}
	return nil
}
