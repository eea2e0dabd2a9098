package font

import (
	"errors"
	"fmt"
)

// ErrFontFormat is wrapped by every decoding error.
var ErrFontFormat = errors.New("font format error")

func errFontFormat(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrFontFormat, fmt.Sprintf(format, args...))
}

func u16(b []byte) uint16 {
	_ = b[1] // bounds check hint to compiler
	return uint16(b[0])<<8 | uint16(b[1])
}

func u32(b []byte) uint32 {
	_ = b[3] // bounds check hint to compiler
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// segm is a bounds-checked view of font data.
type segm []byte

func (b segm) view(off, size int) (segm, error) {
	if off < 0 || size < 0 || off+size > len(b) {
		return nil, errFontFormat("read of %d bytes at %d beyond %d", size, off, len(b))
	}
	return b[off : off+size], nil
}

func (b segm) u16(off int) (uint16, error) {
	v, err := b.view(off, 2)
	if err != nil {
		return 0, err
	}
	return u16(v), nil
}

func (b segm) u32(off int) (uint32, error) {
	v, err := b.view(off, 4)
	if err != nil {
		return 0, err
	}
	return u32(v), nil
}
