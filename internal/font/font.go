// Package font decodes the parts of an OpenType font that checks inspect.
//
// Decoding reads the table directory and the cmap, name, head and OS/2
// tables directly. Glyph outlines are decoded on demand with
// golang.org/x/image/font/sfnt, which is stricter and much slower.
//
// See https://docs.microsoft.com/en-us/typography/opentype/spec/.
package font

import (
	"fmt"
	"sort"
	"sync"

	"golang.org/x/image/font/sfnt"

	"github.com/dshills/fontcritic/internal/filetype"
	"github.com/dshills/fontcritic/internal/testable"
)

// Sfnt version tags.
const (
	VersionTrueType uint32 = 0x00010000
	VersionCFF      uint32 = 0x4f54544f // OTTO
	VersionApple    uint32 = 0x74727565 // true
)

// RequiredTables are the tables every OpenType font must carry.
var RequiredTables = []string{"cmap", "head", "hhea", "hmtx", "maxp", "name", "OS/2", "post"}

// TTF is the file type of binary font files.
var TTF = filetype.MustNew("TTF", "*.[ot]tf")

type tableRecord struct {
	offset, length uint32
}

// TestFont is a decoded font. It keeps a reference to the data it was
// decoded from, which must not change while the TestFont is in use.
type TestFont struct {
	filename    string
	data        segm
	sfntVersion uint32
	tables      map[string]tableRecord
	order       []string

	codepoints []rune
	names      []NameRecord

	unitsPerEm  uint16
	revision    float64
	hasHead     bool
	weightClass uint16
	vendorID    string
	hasOS2      bool

	outlinesOnce sync.Once
	outlines     *sfnt.Font
	outlinesErr  error
}

// Decode parses the table directory and the tables checks query most.
func Decode(data []byte) (*TestFont, error) {
	src := segm(data)
	// Offset table: sfntVersion, numTables, searchRange, entrySelector, rangeShift.
	hdr, err := src.view(0, 12)
	if err != nil {
		return nil, errFontFormat("truncated header")
	}
	f := &TestFont{
		data:        src,
		sfntVersion: u32(hdr),
		tables:      make(map[string]tableRecord),
	}
	switch f.sfntVersion {
	case VersionTrueType, VersionCFF, VersionApple:
	default:
		return nil, errFontFormat("font type not supported: %x", f.sfntVersion)
	}
	numTables := int(u16(hdr[4:]))
	recs, err := src.view(12, 16*numTables)
	if err != nil {
		return nil, errFontFormat("table record entries")
	}
	for b := recs; len(b) > 0; b = b[16:] {
		tag := string(b[0:4])
		off, size := u32(b[8:12]), u32(b[12:16])
		if uint64(off)+uint64(size) > uint64(len(data)) {
			return nil, errFontFormat("table %q extends beyond end of file", tag)
		}
		if _, dup := f.tables[tag]; dup {
			return nil, errFontFormat("duplicate table %q", tag)
		}
		f.tables[tag] = tableRecord{offset: off, length: size}
		f.order = append(f.order, tag)
	}
	if err := f.parseHead(); err != nil {
		return nil, err
	}
	if err := f.parseOS2(); err != nil {
		return nil, err
	}
	if err := f.parseCMap(); err != nil {
		return nil, err
	}
	if err := f.parseName(); err != nil {
		return nil, err
	}
	return f, nil
}

// table returns the bytes of a table, or nil if absent.
func (f *TestFont) table(tag string) segm {
	rec, ok := f.tables[tag]
	if !ok {
		return nil
	}
	return f.data[rec.offset : rec.offset+rec.length]
}

func (f *TestFont) parseHead() error {
	head := f.table("head")
	if head == nil {
		return nil
	}
	rev, err := head.u32(4)
	if err != nil {
		return errFontFormat("head: %v", err)
	}
	upem, err := head.u16(18)
	if err != nil {
		return errFontFormat("head: %v", err)
	}
	f.revision = float64(int32(rev)) / 65536
	f.unitsPerEm = upem
	f.hasHead = true
	return nil
}

func (f *TestFont) parseOS2() error {
	os2 := f.table("OS/2")
	if os2 == nil {
		return nil
	}
	weight, err := os2.u16(4)
	if err != nil {
		return errFontFormat("OS/2: %v", err)
	}
	f.weightClass = weight
	f.hasOS2 = true
	// achVendID is absent only from truncated tables.
	if v, err := os2.view(58, 4); err == nil {
		f.vendorID = string(v)
	}
	return nil
}

// Filename is the name of the testable the font was decoded from, if any.
func (f *TestFont) Filename() string { return f.filename }

// SfntVersion returns the tag from the offset table.
func (f *TestFont) SfntVersion() uint32 { return f.sfntVersion }

// HasTable reports whether the table directory lists tag.
func (f *TestFont) HasTable(tag string) bool {
	_, ok := f.tables[tag]
	return ok
}

// Tables lists table tags in directory order.
func (f *TestFont) Tables() []string {
	return append([]string(nil), f.order...)
}

// TableLength returns the declared length of a table.
func (f *TestFont) TableLength(tag string) (uint32, bool) {
	rec, ok := f.tables[tag]
	return rec.length, ok
}

// Codepoints returns the mapped codepoints in ascending order.
func (f *TestFont) Codepoints() []rune {
	return append([]rune(nil), f.codepoints...)
}

// HasCodepoint reports whether r maps to a glyph other than .notdef.
func (f *TestFont) HasCodepoint(r rune) bool {
	i := sort.Search(len(f.codepoints), func(i int) bool { return f.codepoints[i] >= r })
	return i < len(f.codepoints) && f.codepoints[i] == r
}

// UnitsPerEm returns head.unitsPerEm, or an error without a head table.
func (f *TestFont) UnitsPerEm() (uint16, error) {
	if !f.hasHead {
		return 0, errFontFormat("no head table")
	}
	return f.unitsPerEm, nil
}

// FontRevision returns head.fontRevision.
func (f *TestFont) FontRevision() (float64, error) {
	if !f.hasHead {
		return 0, errFontFormat("no head table")
	}
	return f.revision, nil
}

// WeightClass returns OS/2.usWeightClass.
func (f *TestFont) WeightClass() (uint16, error) {
	if !f.hasOS2 {
		return 0, errFontFormat("no OS/2 table")
	}
	return f.weightClass, nil
}

// VendorID returns OS/2.achVendID.
func (f *TestFont) VendorID() (string, error) {
	if !f.hasOS2 {
		return "", errFontFormat("no OS/2 table")
	}
	return f.vendorID, nil
}

// IsVariable reports whether the font has an fvar table.
func (f *TestFont) IsVariable() bool {
	return f.HasTable("fvar")
}

// Outlines parses the whole font with x/image/font/sfnt. The result is
// computed once.
func (f *TestFont) Outlines() (*sfnt.Font, error) {
	f.outlinesOnce.Do(func() {
		f.outlines, f.outlinesErr = sfnt.Parse(f.data)
		if f.outlinesErr != nil {
			f.outlinesErr = fmt.Errorf("font.Outlines: %w", f.outlinesErr)
		}
	})
	return f.outlines, f.outlinesErr
}

// Converter turns TTF testables into TestFonts.
type Converter struct{}

// FileType implements filetype.Converter.
func (Converter) FileType() filetype.FileType { return TTF }

// FromTestable implements filetype.Converter.
func (Converter) FromTestable(t *testable.Testable) (*TestFont, error) {
	return FromTestable(t)
}

// FromTestable decodes t, naming it in the error.
func FromTestable(t *testable.Testable) (*TestFont, error) {
	f, err := Decode(t.Contents)
	if err != nil {
		return nil, fmt.Errorf("font.FromTestable %s: %w", t.Basename(), err)
	}
	f.filename = t.Filename
	return f, nil
}

var _ filetype.Converter[*TestFont] = Converter{}
