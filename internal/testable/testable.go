// Package testable handles reading input files and grouping them into collections.
package testable

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"
)

// Testable is one input artifact: a file name and its bytes.
// Contents must not be modified once the Testable is part of a Collection.
type Testable struct {
	Filename string
	Source   string
	Contents []byte
}

// New wraps in-memory bytes.
func New(filename string, contents []byte) *Testable {
	return &Testable{Filename: filename, Contents: contents}
}

// NewWithSource wraps in-memory bytes and records where they came from.
func NewWithSource(filename, source string, contents []byte) *Testable {
	return &Testable{Filename: filename, Source: source, Contents: contents}
}

// Load reads a file from disk.
func Load(path string) (*Testable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testable.Load %s: %w", path, err)
	}
	return &Testable{Filename: path, Contents: data}, nil
}

// Basename returns the last element of the file name.
func (t *Testable) Basename() string {
	return filepath.Base(t.Filename)
}

// Extension returns the file extension without the leading dot.
func (t *Testable) Extension() string {
	return strings.TrimPrefix(filepath.Ext(t.Filename), ".")
}

// Digest returns the BLAKE3 hash of the contents.
func (t *Testable) Digest() string {
	h := blake3.Sum256(t.Contents)
	return "blake3:" + hex.EncodeToString(h[:])
}

// Clone returns a copy with its own byte slice. Fixes operate on clones.
func (t *Testable) Clone() *Testable {
	c := *t
	c.Contents = append([]byte(nil), t.Contents...)
	return &c
}
