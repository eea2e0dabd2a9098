package designspace

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/antchfx/xmlquery"
)

// ErrDocument is returned for files that are not designspace documents.
var ErrDocument = errors.New("invalid designspace document")

type axis struct {
	name string
	tag  string
	def  float64
	// maps are (user, design) pairs sorted by user value.
	maps [][2]float64
}

// designDefault maps the user-space default into design space.
func (a axis) designDefault() float64 {
	return piecewise(a.maps, a.def)
}

func piecewise(maps [][2]float64, v float64) float64 {
	if len(maps) == 0 {
		return v
	}
	if v <= maps[0][0] {
		return maps[0][1]
	}
	for i := 1; i < len(maps); i++ {
		lo, hi := maps[i-1], maps[i]
		if v <= hi[0] {
			if hi[0] == lo[0] {
				return hi[1]
			}
			return lo[1] + (v-lo[0])*(hi[1]-lo[1])/(hi[0]-lo[0])
		}
	}
	return maps[len(maps)-1][1]
}

type source struct {
	filename string
	name     string
	location map[string]float64
}

type document struct {
	format  string
	axes    []axis
	sources []source
}

func attrFloat(n *xmlquery.Node, name string) (float64, error) {
	v := n.SelectAttr(name)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: <%s> %s=%q is not a number", ErrDocument, n.Data, name, v)
	}
	return f, nil
}

// parseDocument reads the axes and sources of a designspace file.
func parseDocument(data []byte) (*document, error) {
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocument, err)
	}
	top := xmlquery.FindOne(root, "/designspace")
	if top == nil {
		return nil, fmt.Errorf("%w: root element is not <designspace>", ErrDocument)
	}
	doc := &document{format: top.SelectAttr("format")}
	for _, n := range xmlquery.Find(top, "axes/axis") {
		a := axis{name: n.SelectAttr("name"), tag: n.SelectAttr("tag")}
		if a.def, err = attrFloat(n, "default"); err != nil {
			return nil, err
		}
		for _, m := range xmlquery.Find(n, "map") {
			in, err := attrFloat(m, "input")
			if err != nil {
				return nil, err
			}
			out, err := attrFloat(m, "output")
			if err != nil {
				return nil, err
			}
			a.maps = append(a.maps, [2]float64{in, out})
		}
		sort.Slice(a.maps, func(i, j int) bool { return a.maps[i][0] < a.maps[j][0] })
		doc.axes = append(doc.axes, a)
	}
	for _, n := range xmlquery.Find(top, "sources/source") {
		s := source{
			filename: n.SelectAttr("filename"),
			name:     n.SelectAttr("name"),
			location: map[string]float64{},
		}
		for _, d := range xmlquery.Find(n, "location/dimension") {
			v, err := attrFloat(d, "xvalue")
			if err != nil {
				return nil, err
			}
			s.location[d.SelectAttr("name")] = v
		}
		doc.sources = append(doc.sources, s)
	}
	return doc, nil
}

// isDefault reports whether s sits at the default of every axis. Axes
// missing from the location are at their default.
func (d *document) isDefault(s source) bool {
	for _, a := range d.axes {
		v, ok := s.location[a.name]
		if ok && v != a.designDefault() {
			return false
		}
	}
	return true
}

func (s source) label() string {
	if s.name != "" {
		return s.name
	}
	return s.filename
}
