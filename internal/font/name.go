package font

import (
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Name ids used by checks.
const (
	NameFamily            uint16 = 1
	NameSubfamily         uint16 = 2
	NameFullName          uint16 = 4
	NameVersion           uint16 = 5
	NameTypographicFamily uint16 = 16
)

const langEnglishUS = 0x0409

// NameRecord is one decoded entry of the name table.
type NameRecord struct {
	PlatformID uint16
	EncodingID uint16
	LanguageID uint16
	NameID     uint16
	Value      string
}

func (f *TestFont) parseName() error {
	name := f.table("name")
	if name == nil {
		return nil
	}
	hdr, err := name.view(0, 6)
	if err != nil {
		return errFontFormat("name header")
	}
	count, storage := int(u16(hdr[2:])), int(u16(hdr[4:]))
	recs, err := name.view(6, 12*count)
	if err != nil {
		return errFontFormat("name records")
	}
	utf16 := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	for b := recs; len(b) > 0; b = b[12:] {
		rec := NameRecord{
			PlatformID: u16(b),
			EncodingID: u16(b[2:]),
			LanguageID: u16(b[4:]),
			NameID:     u16(b[6:]),
		}
		raw, err := name.view(storage+int(u16(b[10:])), int(u16(b[8:])))
		if err != nil {
			return errFontFormat("name record %d string", rec.NameID)
		}
		var dec []byte
		switch rec.PlatformID {
		case 0, 3:
			dec, err = utf16.NewDecoder().Bytes(raw)
		case 1:
			dec, err = charmap.Macintosh.NewDecoder().Bytes(raw)
		default:
			continue
		}
		if err != nil {
			return errFontFormat("name record %d: %v", rec.NameID, err)
		}
		rec.Value = string(dec)
		f.names = append(f.names, rec)
	}
	return nil
}

// Names returns all decoded name records in table order.
func (f *TestFont) Names() []NameRecord {
	return append([]NameRecord(nil), f.names...)
}

// NameEntries returns every value stored under id, in table order.
func (f *TestFont) NameEntries(id uint16) []string {
	var out []string
	for _, r := range f.names {
		if r.NameID == id {
			out = append(out, r.Value)
		}
	}
	return out
}

// englishName prefers the Windows US English record, then any record.
func (f *TestFont) englishName(id uint16) (string, bool) {
	fallback, found := "", false
	for _, r := range f.names {
		if r.NameID != id {
			continue
		}
		if r.PlatformID == 3 && r.LanguageID == langEnglishUS {
			return r.Value, true
		}
		if !found {
			fallback, found = r.Value, true
		}
	}
	return fallback, found
}

// FamilyName returns the typographic family name, falling back to the
// legacy family name.
func (f *TestFont) FamilyName() (string, bool) {
	if n, ok := f.englishName(NameTypographicFamily); ok {
		return n, true
	}
	return f.englishName(NameFamily)
}
