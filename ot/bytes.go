package ot

import (
	"errors"
	"sort"
)

// Reading bytes from a font's binary representation

var errBufferBounds = errors.New("internal inconsistency: buffer bounds error")

func u16(b []byte) uint16 {
	_ = b[1] // Bounds check hint to compiler
	return uint16(b[0])<<8 | uint16(b[1])<<0
}

func u32(b []byte) uint32 {
	_ = b[3] // Bounds check hint to compiler
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])<<0
}

// --- Byte segments ---------------------------------------------------------

// binarySegm is a segment of byte data. We use it throughout this module to
// navigate the font's binary data. All accessors are bounds-checked.
type binarySegm []byte

// Size returns the length of the segment in bytes.
func (b binarySegm) Size() int {
	return len(b)
}

// Bytes returns the segment as a byte slice.
func (b binarySegm) Bytes() []byte {
	return b
}

// U16 returns the uint16 at byte index i, or 0 if i is out of bounds.
func (b binarySegm) U16(i int) uint16 {
	n, err := b.u16(i)
	if err != nil {
		return 0
	}
	return n
}

// U32 returns the uint32 at byte index i, or 0 if i is out of bounds.
func (b binarySegm) U32(i int) uint32 {
	n, err := b.u32(i)
	if err != nil {
		return 0
	}
	return n
}

// view returns n bytes at the given offset.
// The byte segment returned is a sub-slice of b.
func (b binarySegm) view(offset, n int) (binarySegm, error) {
	if offset < 0 || n <= 0 || offset > len(b) || n > len(b)-offset {
		return nil, errBufferBounds
	}
	return b[offset : offset+n], nil
}

// from returns the tail of b starting at offset.
func (b binarySegm) from(offset int) (binarySegm, error) {
	if offset < 0 || offset > len(b) {
		return nil, errBufferBounds
	}
	return b[offset:], nil
}

// u16 returns the uint16 in b at the relative offset i.
func (b binarySegm) u16(i int) (uint16, error) {
	buf, err := b.view(i, 2)
	if err != nil {
		return 0, err
	}
	return u16(buf), nil
}

// i16 returns the int16 in b at the relative offset i.
func (b binarySegm) i16(i int) (int16, error) {
	n, err := b.u16(i)
	return int16(n), err
}

// u32 returns the uint32 in b at the relative offset i.
func (b binarySegm) u32(i int) (uint32, error) {
	buf, err := b.view(i, 4)
	if err != nil {
		return 0, err
	}
	return u32(buf), nil
}

// --- Coverage and class definitions ----------------------------------------

// coverage is a Coverage table of a layout sub-table. It defines a unique index
// value, the Coverage Index, for each covered glyph.
type coverage struct {
	format uint16
	count  int
	data   binarySegm // records, without header
}

// Read a coverage table, which comes in two formats (1 and 2).
func parseCoverage(b binarySegm) (coverage, error) {
	format, err := b.u16(0)
	if err != nil {
		return coverage{}, err
	}
	n, err := b.u16(2)
	if err != nil {
		return coverage{}, err
	}
	var recsize int
	switch format {
	case 1: // array of glyph IDs
		recsize = 2
	case 2: // array of range records: start, end, startCoverageIndex
		recsize = 6
	default:
		return coverage{}, errFontFormat("unknown coverage format")
	}
	if n == 0 {
		return coverage{format: format}, nil
	}
	recs, err := b.view(4, recsize*int(n))
	if err != nil {
		return coverage{}, errFontFormat("coverage extends beyond bounds")
	}
	return coverage{format: format, count: int(n), data: recs}, nil
}

// Match returns the coverage index of glyph g, if g is covered.
// Glyph arrays and range records are sorted by glyph ID, so we use binary search.
func (c coverage) Match(g GlyphIndex) (int, bool) {
	switch c.format {
	case 1:
		i := sort.Search(c.count, func(i int) bool {
			return GlyphIndex(u16(c.data[2*i:])) >= g
		})
		if i < c.count && GlyphIndex(u16(c.data[2*i:])) == g {
			return i, true
		}
	case 2:
		i := sort.Search(c.count, func(i int) bool {
			return GlyphIndex(u16(c.data[6*i+2:])) >= g // range end
		})
		if i < c.count {
			rec := c.data[6*i:]
			if start := GlyphIndex(u16(rec)); start <= g {
				return int(u16(rec[4:])) + int(g-start), true
			}
		}
	}
	return 0, false
}

// classDefinitions is a ClassDef table. Glyphs not assigned to a class fall
// into class 0.
type classDefinitions struct {
	format uint16
	start  GlyphIndex // format 1 only
	count  int
	data   binarySegm
}

// The ClassDef table can have either of two formats: one that assigns a range of
// consecutive glyph indices to different classes, or one that puts groups of consecutive
// glyph indices into the same class.
func parseClassDefinitions(b binarySegm) (classDefinitions, error) {
	format, err := b.u16(0)
	if err != nil {
		return classDefinitions{}, err
	}
	cdef := classDefinitions{format: format}
	switch format {
	case 1:
		g, err1 := b.u16(2)
		n, err2 := b.u16(4)
		if err1 != nil || err2 != nil {
			return cdef, errFontFormat("ClassDef format 1 header incomplete")
		}
		cdef.start, cdef.count = GlyphIndex(g), int(n)
		if n > 0 {
			if cdef.data, err = b.view(6, 2*int(n)); err != nil {
				return cdef, errFontFormat("ClassDef format 1 array extends beyond bounds")
			}
		}
	case 2:
		n, err := b.u16(2)
		if err != nil {
			return cdef, errFontFormat("ClassDef format 2 header incomplete")
		}
		cdef.count = int(n)
		if n > 0 {
			if cdef.data, err = b.view(4, 6*int(n)); err != nil {
				return cdef, errFontFormat("ClassDef format 2 array extends beyond bounds")
			}
		}
	default:
		return cdef, errFontFormat("unknown ClassDef format")
	}
	return cdef, nil
}

// Class returns the class of glyph g.
func (cdef classDefinitions) Class(g GlyphIndex) uint16 {
	switch cdef.format {
	case 1:
		if g >= cdef.start && int(g-cdef.start) < cdef.count {
			return u16(cdef.data[2*int(g-cdef.start):])
		}
	case 2:
		i := sort.Search(cdef.count, func(i int) bool {
			return GlyphIndex(u16(cdef.data[6*i+2:])) >= g
		})
		if i < cdef.count {
			rec := cdef.data[6*i:]
			if GlyphIndex(u16(rec)) <= g {
				return u16(rec[4:])
			}
		}
	}
	return 0
}
