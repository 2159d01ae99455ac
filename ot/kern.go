package ot

import (
	"fmt"
	"sort"
)

// KernTable contains the values that control the inter-character spacing for the
// glyphs in a font. We only interpret horizontal sub-tables of format 0.
type KernTable struct {
	tableBase
	headers []kernSubTableHeader
}

type kernSubTableHeader struct {
	pairs    binarySegm // kern pairs of 6 bytes each: left, right, value
	count    int        // number of kern pairs
	override bool       // value replaces accumulated value
	minimum  bool       // value is a minimum value, not a kerning distance
}

func newKernTable(tag Tag, b binarySegm, offset, size uint32) *KernTable {
	t := &KernTable{}
	t.tableBase = makeTableBase(tag, b, offset, size)
	t.self = t
	return t
}

// TrueType and OpenType slightly differ on formats of kern tables:
// see https://developer.apple.com/fonts/TrueType-Reference-Manual/RM06/Chap6kern.html
// and https://docs.microsoft.com/en-us/typography/opentype/spec/kern

// parseKern parses the kern table. There is significant confusion with this table
// concerning format differences between OpenType, TrueType, and fonts in the wild.
// We currently only support kern table format 0, which should be supported on any
// platform. In the real world, fonts usually have just one kern sub-table, and
// older Windows versions cannot handle more than one.
func parseKern(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size < 4 {
		return nil, ec.fail(tag, "Header", "kern table too small", offset)
	}
	var N, suboffset, subheaderlen int
	apple := u32(b) == 0x00010000
	if apple {
		tracer().Debugf("font has Apple TTF kern table format")
		n, err := b.u32(4) // number of kerning tables is uint32
		if err != nil {
			return nil, ec.fail(tag, "Header", "kern table too small", offset)
		}
		N, suboffset, subheaderlen = int(min(n, 0xffff)), 8, 16
	} else {
		tracer().Debugf("font has OTF (MS) kern table format")
		N, suboffset, subheaderlen = int(u16(b[2:])), 4, 14
	}
	tracer().Debugf("kern table has %d sub-tables", N)
	t := newKernTable(tag, b, offset, size)
	for i := 0; i < N; i++ { // read in N sub-tables
		hdr, err := b.view(suboffset, subheaderlen)
		if err != nil {
			return nil, ec.fail(tag, "Format", fmt.Sprintf("sub-table %d header exceeds table size", i),
				offset+uint32(suboffset))
		}
		var length, format int
		var horizontal, crossStream bool
		h := kernSubTableHeader{}
		if apple {
			length = int(u32(hdr))
			coverage := u16(hdr[4:])
			format = int(coverage & 0xff)
			horizontal = coverage&0x8000 == 0
			crossStream = coverage&0x4000 != 0
		} else {
			length = int(u16(hdr[2:]))
			coverage := u16(hdr[4:])
			format = int(coverage >> 8)
			horizontal = coverage&0x1 != 0
			h.minimum = coverage&0x2 != 0
			crossStream = coverage&0x4 != 0
			h.override = coverage&0x8 != 0
		}
		if format != 0 {
			tracer().Infof("kern sub-table format %d not supported, ignoring sub-table", format)
			if length < subheaderlen {
				ec.addWarning(tag, fmt.Sprintf("sub-table %d has invalid length %d; skipping remaining sub-tables", i, length),
					offset+uint32(suboffset))
				break
			}
			suboffset += length
			continue // we only support format 0 kerning tables; skip this one
		}
		h.count = int(u16(hdr[subheaderlen-8:]))
		tracer().Debugf("kern sub-table has %d entries", h.count)
		// For some fonts, size calculation of kern sub-tables is off; see
		// https://github.com/fonttools/fonttools/issues/314#issuecomment-118116527
		// Testable with the Calibri font.
		sz := 6 * h.count // kern pair is of size 6
		if sz+subheaderlen != length {
			tracer().Infof("kern sub-table size should be 0x%x, but given as 0x%x; fixing",
				sz+subheaderlen, length)
			ec.addWarning(tag, fmt.Sprintf("kern sub-table size mismatch: expected 0x%x, got 0x%x",
				sz+subheaderlen, length), offset+uint32(suboffset))
		}
		if h.count > 0 {
			if h.pairs, err = b.view(suboffset+subheaderlen, sz); err != nil {
				return nil, ec.fail(tag, "Bounds", fmt.Sprintf("sub-table %d exceeds table bounds", i),
					offset+uint32(suboffset))
			}
		}
		if horizontal && !crossStream {
			t.headers = append(t.headers, h)
		}
		suboffset += subheaderlen + sz
	}
	tracer().Debugf("table kern has %d usable sub-table(s)", len(t.headers))
	return t, nil
}

// SubTableCount returns the number of usable (horizontal, format 0) sub-tables.
func (t *KernTable) SubTableCount() int {
	if t == nil {
		return 0
	}
	return len(t.headers)
}

// Pair returns the kerning value for the ordered glyph pair (left, right), in font
// units. Pairs are sorted by a key of left and right glyph, so we use binary search.
// Values of all sub-tables are accumulated, unless a sub-table carries the override flag.
func (t *KernTable) Pair(left, right GlyphIndex) (int16, bool) {
	if t == nil {
		return 0, false
	}
	key := uint32(left)<<16 | uint32(right)
	var value int16
	found := false
	for _, h := range t.headers {
		if h.minimum {
			continue
		}
		i := sort.Search(h.count, func(i int) bool {
			return u32(h.pairs[6*i:]) >= key
		})
		if i == h.count || u32(h.pairs[6*i:]) != key {
			continue
		}
		v := int16(u16(h.pairs[6*i+4:]))
		if h.override {
			value = v
		} else {
			value += v
		}
		found = true
	}
	return value, found
}
