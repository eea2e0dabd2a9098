package font

import (
	"encoding/binary"
	"fmt"
	"math/bits"
	"sort"
)

// WithoutTables rebuilds the font without the given tables. Table data is
// copied unchanged, checksums are recomputed and head.checkSumAdjustment
// is reset. The input is not modified.
func WithoutTables(data []byte, drop ...string) ([]byte, error) {
	f, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("font.WithoutTables: %w", err)
	}
	skip := make(map[string]bool, len(drop))
	for _, tag := range drop {
		skip[tag] = true
	}
	var tags []string
	for _, tag := range f.order {
		if !skip[tag] {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)

	n := len(tags)
	out := make([]byte, 12+16*n)
	binary.BigEndian.PutUint32(out, f.sfntVersion)
	binary.BigEndian.PutUint16(out[4:], uint16(n))
	if n > 0 {
		entrySelector := bits.Len(uint(n)) - 1
		searchRange := (1 << entrySelector) * 16
		binary.BigEndian.PutUint16(out[6:], uint16(searchRange))
		binary.BigEndian.PutUint16(out[8:], uint16(entrySelector))
		binary.BigEndian.PutUint16(out[10:], uint16(n*16-searchRange))
	}
	headAt := -1
	for i, tag := range tags {
		tbl := append([]byte(nil), f.table(tag)...)
		if tag == "head" && len(tbl) >= 12 {
			binary.BigEndian.PutUint32(tbl[8:], 0)
			headAt = len(out)
		}
		rec := out[12+16*i:]
		copy(rec, tag)
		binary.BigEndian.PutUint32(rec[4:], checksum(tbl))
		binary.BigEndian.PutUint32(rec[8:], uint32(len(out)))
		binary.BigEndian.PutUint32(rec[12:], uint32(len(tbl)))
		out = append(out, tbl...)
		for len(out)%4 != 0 {
			out = append(out, 0)
		}
	}
	if headAt >= 0 {
		binary.BigEndian.PutUint32(out[headAt+8:], 0xB1B0AFBA-checksum(out))
	}
	return out, nil
}

func checksum(b []byte) uint32 {
	var sum uint32
	for len(b) >= 4 {
		sum += u32(b)
		b = b[4:]
	}
	if len(b) > 0 {
		var tail [4]byte
		copy(tail[:], b)
		sum += u32(tail[:])
	}
	return sum
}
