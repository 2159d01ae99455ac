package otface

import (
	"github.com/npillmayer/otface/ot"
)

const (
	pageSize     = 256
	maxCodePoint = 0x10ffff
)

// glyphPage holds the glyph IDs of 256 consecutive code-points, starting at a
// multiple of 256.
type glyphPage [pageSize]uint32

// cmapMapper resolves code-points with the cmap of the font.
type cmapMapper struct {
	cmap *ot.CMapTable
}

func (m cmapMapper) GlyphIDForCodePoint(cp uint32) uint32 {
	if cp > maxCodePoint {
		return 0
	}
	return uint32(m.cmap.Lookup(rune(cp)))
}

// GlyphIDForCodePoint returns the glyph ID for a Unicode code-point, or 0 (notdef)
// if the code-point is not mapped.
//
// Code-points are resolved a page of 256 at a time, and pages are cached.
// Page 0 (ASCII and Latin-1) is served without locking once it has been resolved.
// With the font's cmap, values beyond U+10FFFF resolve to 0 without being paged;
// an external mapping is asked for every value.
func (tf *Typeface) GlyphIDForCodePoint(cp uint32) uint32 {
	inx := cp / pageSize
	if inx == 0 {
		if page := tf.page0.Load(); page != nil {
			return page[cp]
		}
	}
	if _, fontCMap := tf.mapper.(cmapMapper); fontCMap && cp > maxCodePoint {
		return 0
	}
	tf.mu.Lock()
	defer tf.mu.Unlock()
	return tf.pageLocked(inx)[cp%pageSize]
}

// GlyphIDsForString resolves every rune of s.
func (tf *Typeface) GlyphIDsForString(s string) []uint32 {
	gids := make([]uint32, 0, len(s))
	for _, r := range s {
		gids = append(gids, tf.GlyphIDForCodePoint(uint32(r)))
	}
	return gids
}

// pageLocked returns glyph page inx, populating it if necessary.
// tf.mu must be held.
func (tf *Typeface) pageLocked(inx uint32) *glyphPage {
	if inx == 0 {
		if page := tf.page0.Load(); page != nil {
			return page
		}
		page := tf.populate(0)
		tf.page0.Store(page)
		return page
	}
	if page, ok := tf.pages[inx]; ok {
		return page
	}
	page := tf.populate(inx)
	tf.pages[inx] = page
	return page
}

// populate resolves all code-points of a page, caching misses as well as hits.
func (tf *Typeface) populate(inx uint32) *glyphPage {
	page := &glyphPage{}
	base := inx * pageSize
	for i := range page {
		page[i] = tf.mapper.GlyphIDForCodePoint(base + uint32(i))
	}
	tracer().Debugf("resolved glyph page %d", inx)
	return page
}
