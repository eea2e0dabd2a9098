package testable

import "fmt"

// Collection is an ordered group of related testables, typically one font family
// plus its sidecar files. It is read-only once built.
type Collection struct {
	items  []*Testable
	byName map[string]*Testable
}

// NewCollection builds a collection preserving the given order.
func NewCollection(items ...*Testable) *Collection {
	c := &Collection{
		items:  make([]*Testable, 0, len(items)),
		byName: make(map[string]*Testable, len(items)),
	}
	for _, t := range items {
		if t == nil {
			continue
		}
		c.items = append(c.items, t)
		if _, dup := c.byName[t.Basename()]; !dup {
			c.byName[t.Basename()] = t
		}
	}
	return c
}

// LoadCollection reads every path in order. The first unreadable path aborts the load.
func LoadCollection(paths []string) (*Collection, error) {
	items := make([]*Testable, 0, len(paths))
	for _, p := range paths {
		t, err := Load(p)
		if err != nil {
			return nil, fmt.Errorf("testable.LoadCollection: %w", err)
		}
		items = append(items, t)
	}
	return NewCollection(items...), nil
}

// Items returns the testables in insertion order.
func (c *Collection) Items() []*Testable {
	return c.items
}

// Len returns the number of testables.
func (c *Collection) Len() int {
	return len(c.items)
}

// ByName returns the first testable whose base name equals name, or nil.
func (c *Collection) ByName(name string) *Testable {
	return c.byName[name]
}

// SiblingsOf returns every other testable accepted by match, in collection order.
// t itself is never included.
func (c *Collection) SiblingsOf(t *Testable, match func(*Testable) bool) []*Testable {
	var out []*Testable
	for _, other := range c.items {
		if other == t {
			continue
		}
		if match == nil || match(other) {
			out = append(out, other)
		}
	}
	return out
}

// Filenames lists file names in collection order.
func (c *Collection) Filenames() []string {
	names := make([]string, len(c.items))
	for i, t := range c.items {
		names[i] = t.Filename
	}
	return names
}
