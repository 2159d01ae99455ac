package otquery

import (
	"github.com/npillmayer/otface"
	"github.com/npillmayer/otface/ot"
	"golang.org/x/image/font/sfnt"
)

// --- Font Information -------------------------------------------------

// FontType returns a human readable name of the outline format of a typeface:
// "TrueType", "OpenType/CFF" or "Apple TrueType".
func FontType(tf *otface.Typeface) string {
	switch ot.Tag(tf.Font().Header.FontType) {
	case ot.TagOpenType:
		return "OpenType/CFF"
	case ot.TagTrue:
		return "Apple TrueType"
	}
	return "TrueType"
}

// LayoutTables lists the names of layout related tables contained in a typeface.
func LayoutTables(tf *otface.Typeface) []string {
	var tables []string
	for _, tag := range []string{"BASE", "GDEF", "GPOS", "GSUB", "JSTF", "kern"} {
		if tf.Table(ot.T(tag)) != nil {
			tables = append(tables, tag)
		}
	}
	return tables
}

// FontMetrics retrieves selected metrics of a typeface, in font units.
// Vertical metrics follow the same policy as otface.Typeface.Metrics.
func FontMetrics(tf *otface.Typeface) FontMetricsInfo {
	m := tf.Metrics(1, 1)
	metrics := FontMetricsInfo{
		UnitsPerEm: sfnt.Units(tf.UnitsPerEm()),
		Ascent:     sfnt.Units(m.Ascender),
		Descent:    -sfnt.Units(m.Descender),
		LineGap:    sfnt.Units(m.LineGap),
		XHeight:    sfnt.Units(m.XHeight),
	}
	if hhea := tf.Font().HHea; hhea != nil {
		metrics.MaxAdvance = sfnt.Units(hhea.AdvanceWidthMax)
	}
	return metrics
}

// --- Glyph Routines --------------------------------------------------------

// CodePointForGlyph returns the code-point for a given glyph index.
//
// This is an inefficient operation: All code-points contained in the font's CMap
// are checked sequentially if they produce the given glyph.
// If the glyph index does not correspond to a code-point, 0 is returned.
// Typefaces loaded with an external cmap always return 0.
func CodePointForGlyph(tf *otface.Typeface, gid ot.GlyphIndex) rune {
	cmap := tf.Font().CMap
	if gid == 0 || cmap == nil {
		return 0
	}
	for r := rune(0); r <= 0x10ffff; r++ {
		if cmap.Lookup(r) == gid {
			return r
		}
	}
	tracer().Debugf("no code-point maps to glyph %d", gid)
	return 0
}

// GlyphMetrics retrieves metrics for a given glyph, in font units.
// Glyph IDs beyond the glyph count produce zero metrics.
func GlyphMetrics(tf *otface.Typeface, gid ot.GlyphIndex) GlyphMetricsInfo {
	metrics := GlyphMetricsInfo{}
	otf := tf.Font()
	if aw, lsb, ok := otf.HMtx.HMetrics(gid); ok {
		metrics.Advance = sfnt.Units(aw)
		metrics.LSB = sfnt.Units(lsb)
	}
	if h, ok := otf.Glyf.Header(gid); ok {
		metrics.BBox = BoundingBox{
			MinX: sfnt.Units(h.XMin),
			MinY: sfnt.Units(h.YMin),
			MaxX: sfnt.Units(h.XMax),
			MaxY: sfnt.Units(h.YMax),
		}
	}
	// If a glyph has no contours, xMax/xMin are not defined and RSB is left zero.
	if !metrics.BBox.Empty() {
		metrics.RSB = metrics.Advance - (metrics.LSB + metrics.BBox.Dx())
	}
	return metrics
}
