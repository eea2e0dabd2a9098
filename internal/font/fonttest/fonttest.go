// Package fonttest builds small synthetic fonts for tests. The fonts carry
// a valid table directory and real cmap, name, head and OS/2 tables; the
// other tables are zero-filled placeholders.
package fonttest

import (
	"encoding/binary"
	"sort"
	"unicode/utf16"
)

// Font describes a synthetic font. The zero value builds a font with all
// required tables, no codepoints and 1000 units per em.
type Font struct {
	Family     string
	Subfamily  string
	Revision   float64
	UnitsPerEm uint16
	Vendor     string
	Weight     uint16
	Codepoints []rune
	// Names adds or replaces name records by id.
	Names map[uint16]string
	// Extra adds zero-filled tables.
	Extra []string
	// Omit drops tables, required ones included.
	Omit []string
}

type table struct {
	tag  string
	data []byte
}

// Bytes encodes the font.
func (f Font) Bytes() []byte {
	omit := make(map[string]bool, len(f.Omit))
	for _, tag := range f.Omit {
		omit[tag] = true
	}
	all := []table{
		{"cmap", f.cmap()},
		{"head", f.head()},
		{"hhea", make([]byte, 36)},
		{"hmtx", make([]byte, 4)},
		{"maxp", make([]byte, 6)},
		{"name", f.name()},
		{"OS/2", f.os2()},
		{"post", make([]byte, 32)},
	}
	for _, tag := range f.Extra {
		all = append(all, table{tag, make([]byte, 4)})
	}
	var tables []table
	for _, t := range all {
		if !omit[t.tag] {
			tables = append(tables, t)
		}
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].tag < tables[j].tag })

	n := len(tables)
	out := make([]byte, 12+16*n)
	binary.BigEndian.PutUint32(out, 0x00010000)
	binary.BigEndian.PutUint16(out[4:], uint16(n))
	off := len(out)
	for i, t := range tables {
		rec := out[12+16*i:]
		copy(rec, pad4(t.tag))
		binary.BigEndian.PutUint32(rec[8:], uint32(off))
		binary.BigEndian.PutUint32(rec[12:], uint32(len(t.data)))
		off += (len(t.data) + 3) &^ 3
	}
	for _, t := range tables {
		out = append(out, t.data...)
		for len(out)%4 != 0 {
			out = append(out, 0)
		}
	}
	return out
}

func pad4(tag string) []byte {
	b := []byte(tag + "    ")
	return b[:4]
}

func (f Font) head() []byte {
	b := make([]byte, 54)
	binary.BigEndian.PutUint32(b, 0x00010000)
	binary.BigEndian.PutUint32(b[4:], uint32(int32(f.Revision*65536)))
	binary.BigEndian.PutUint32(b[12:], 0x5F0F3CF5)
	upem := f.UnitsPerEm
	if upem == 0 {
		upem = 1000
	}
	binary.BigEndian.PutUint16(b[18:], upem)
	return b
}

func (f Font) os2() []byte {
	b := make([]byte, 78)
	weight := f.Weight
	if weight == 0 {
		weight = 400
	}
	binary.BigEndian.PutUint16(b[4:], weight)
	copy(b[58:62], pad4(f.Vendor))
	return b
}

// name writes Windows Unicode BMP records in name id order.
func (f Font) name() []byte {
	names := map[uint16]string{}
	if f.Family != "" {
		names[1] = f.Family
	}
	if f.Subfamily != "" {
		names[2] = f.Subfamily
	}
	for id, v := range f.Names {
		names[id] = v
	}
	ids := make([]int, 0, len(names))
	for id := range names {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)

	hdr := make([]byte, 6+12*len(ids))
	binary.BigEndian.PutUint16(hdr[2:], uint16(len(ids)))
	binary.BigEndian.PutUint16(hdr[4:], uint16(len(hdr)))
	var storage []byte
	for i, id := range ids {
		var s []byte
		for _, u := range utf16.Encode([]rune(names[uint16(id)])) {
			s = binary.BigEndian.AppendUint16(s, u)
		}
		rec := hdr[6+12*i:]
		binary.BigEndian.PutUint16(rec, 3)
		binary.BigEndian.PutUint16(rec[2:], 1)
		binary.BigEndian.PutUint16(rec[4:], 0x0409)
		binary.BigEndian.PutUint16(rec[6:], uint16(id))
		binary.BigEndian.PutUint16(rec[8:], uint16(len(s)))
		binary.BigEndian.PutUint16(rec[10:], uint16(len(storage)))
		storage = append(storage, s...)
	}
	return append(hdr, storage...)
}

// cmap writes a single (3,1) format 4 subtable with one segment per
// codepoint. Codepoints outside the BMP are dropped.
func (f Font) cmap() []byte {
	seen := map[rune]bool{}
	var cps []rune
	for _, r := range f.Codepoints {
		if r >= 0 && r < 0xFFFF && !seen[r] {
			seen[r] = true
			cps = append(cps, r)
		}
	}
	sort.Slice(cps, func(i, j int) bool { return cps[i] < cps[j] })
	segs := len(cps) + 1

	sub := make([]byte, 16+8*segs)
	binary.BigEndian.PutUint16(sub, 4)
	binary.BigEndian.PutUint16(sub[2:], uint16(len(sub)))
	binary.BigEndian.PutUint16(sub[6:], uint16(2*segs))
	endCodes := 14
	startCodes := endCodes + 2*segs + 2
	deltas := startCodes + 2*segs
	for i, r := range cps {
		gid := uint16(i + 1)
		binary.BigEndian.PutUint16(sub[endCodes+2*i:], uint16(r))
		binary.BigEndian.PutUint16(sub[startCodes+2*i:], uint16(r))
		binary.BigEndian.PutUint16(sub[deltas+2*i:], gid-uint16(r))
	}
	last := segs - 1
	binary.BigEndian.PutUint16(sub[endCodes+2*last:], 0xFFFF)
	binary.BigEndian.PutUint16(sub[startCodes+2*last:], 0xFFFF)
	binary.BigEndian.PutUint16(sub[deltas+2*last:], 1)

	out := make([]byte, 12)
	binary.BigEndian.PutUint16(out[2:], 1)
	binary.BigEndian.PutUint16(out[4:], 3)
	binary.BigEndian.PutUint16(out[6:], 1)
	binary.BigEndian.PutUint32(out[8:], 12)
	return append(out, sub...)
}
