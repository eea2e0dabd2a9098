package font

import (
	"sort"
	"unicode"
)

// parseCMap collects the codepoints of the best Unicode subtable.
// Format 12 is preferred over format 4; other formats are ignored.
func (f *TestFont) parseCMap() error {
	cmap := f.table("cmap")
	if cmap == nil {
		return nil
	}
	n, err := cmap.u16(2)
	if err != nil {
		return errFontFormat("cmap header")
	}
	recs, err := cmap.view(4, 8*int(n))
	if err != nil {
		return errFontFormat("cmap encoding records")
	}
	best, bestScore := -1, 0
	for b := recs; len(b) > 0; b = b[8:] {
		platform, encoding, off := u16(b), u16(b[2:]), int(u32(b[4:]))
		format, err := cmap.u16(off)
		if err != nil {
			return errFontFormat("cmap subtable offset %d", off)
		}
		score := 0
		switch {
		case format == 12 && (platform == 0 || platform == 3 && encoding == 10):
			score = 2
		case format == 4 && (platform == 0 || platform == 3 && encoding == 1):
			score = 1
		}
		if score > bestScore {
			best, bestScore = off, score
		}
	}
	switch bestScore {
	case 0:
		return nil
	case 1:
		f.codepoints, err = parseFormat4(cmap, best)
	case 2:
		f.codepoints, err = parseFormat12(cmap, best)
	}
	if err != nil {
		return err
	}
	sort.Slice(f.codepoints, func(i, j int) bool { return f.codepoints[i] < f.codepoints[j] })
	return nil
}

func parseFormat4(cmap segm, off int) ([]rune, error) {
	segX2, err := cmap.u16(off + 6)
	if err != nil {
		return nil, errFontFormat("cmap format 4 header")
	}
	segs := int(segX2 / 2)
	endCodes := off + 14
	startCodes := endCodes + 2*segs + 2 // skip reservedPad
	deltas := startCodes + 2*segs
	rangeOffsets := deltas + 2*segs
	if _, err := cmap.view(endCodes, rangeOffsets+2*segs-endCodes); err != nil {
		return nil, errFontFormat("cmap format 4 segments")
	}
	var out []rune
	for i := 0; i < segs; i++ {
		end, _ := cmap.u16(endCodes + 2*i)
		start, _ := cmap.u16(startCodes + 2*i)
		delta, _ := cmap.u16(deltas + 2*i)
		ro, _ := cmap.u16(rangeOffsets + 2*i)
		if start == 0xFFFF {
			continue
		}
		for c := uint32(start); c <= uint32(end); c++ {
			var gid uint16
			if ro == 0 {
				gid = uint16(c) + delta
			} else {
				addr := rangeOffsets + 2*i + int(ro) + 2*int(c-uint32(start))
				g, err := cmap.u16(addr)
				if err != nil {
					return nil, errFontFormat("cmap format 4 glyph array")
				}
				if g != 0 {
					gid = g + delta
				}
			}
			if gid != 0 {
				out = append(out, rune(c))
			}
		}
	}
	return out, nil
}

func parseFormat12(cmap segm, off int) ([]rune, error) {
	n, err := cmap.u32(off + 12)
	if err != nil {
		return nil, errFontFormat("cmap format 12 header")
	}
	groups, err := cmap.view(off+16, 12*int(n))
	if err != nil {
		return nil, errFontFormat("cmap format 12 groups")
	}
	var out []rune
	for b := groups; len(b) > 0; b = b[12:] {
		start, end, glyph := u32(b), u32(b[4:]), u32(b[8:])
		if end > unicode.MaxRune || start > end {
			return nil, errFontFormat("cmap format 12 group %x-%x", start, end)
		}
		for c := start; c <= end; c++ {
			if glyph+(c-start) != 0 {
				out = append(out, rune(c))
			}
		}
	}
	return out, nil
}
