package designspace

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/antchfx/xmlquery"
)

type point struct {
	x, y float64
}

type contour []point

// clockwise is true for contours whose signed area is negative in a y-up
// coordinate system.
func (c contour) clockwise() bool {
	var total float64
	for i, p := range c {
		next := c[(i+1)%len(c)]
		total += (next.x - p.x) * (next.y + p.y)
	}
	return total > 0
}

// ufo is the default glyph layer of a UFO source directory.
type ufo struct {
	path     string
	contents map[string]string
	order    []string
}

func readXML(path string) (*xmlquery.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, nil
}

// openUFO reads glyphs/contents.plist, the glyph name to file mapping.
func openUFO(path string) (*ufo, error) {
	root, err := readXML(filepath.Join(path, "glyphs", "contents.plist"))
	if err != nil {
		return nil, err
	}
	u := &ufo{path: path, contents: map[string]string{}}
	var key string
	for _, n := range xmlquery.Find(root, "/plist/dict/*") {
		switch n.Data {
		case "key":
			key = n.InnerText()
		case "string":
			if _, dup := u.contents[key]; !dup {
				u.order = append(u.order, key)
			}
			u.contents[key] = n.InnerText()
		}
	}
	return u, nil
}

// contours loads the outline of a glyph. Missing glyphs have no contours.
func (u *ufo) contours(glyph string) ([]contour, error) {
	file, ok := u.contents[glyph]
	if !ok {
		return nil, nil
	}
	root, err := readXML(filepath.Join(u.path, "glyphs", file))
	if err != nil {
		return nil, err
	}
	var out []contour
	for _, c := range xmlquery.Find(root, "/glyph/outline/contour") {
		var pts contour
		for _, p := range xmlquery.Find(c, "point") {
			x, err := attrFloat(p, "x")
			if err != nil {
				return nil, err
			}
			y, err := attrFloat(p, "y")
			if err != nil {
				return nil, err
			}
			pts = append(pts, point{x, y})
		}
		if len(pts) > 0 {
			out = append(out, pts)
		}
	}
	return out, nil
}
