package otface

import "github.com/npillmayer/otface/ot"

// ScaledFontMetrics are the vertical metrics of a typeface, multiplied by a scale
// factor. Descender is positive for glyphs reaching below the baseline.
type ScaledFontMetrics struct {
	Ascender  float32
	Descender float32
	LineGap   float32
	XHeight   float32
}

// ScaledGlyphMetrics are the metrics of a single glyph, multiplied by scale factors.
// Ascender and Descender are taken from the glyph's bounding box, if available.
type ScaledGlyphMetrics struct {
	Ascender        float32
	Descender       float32
	AdvanceWidth    float32
	LeftSideBearing float32
}

// GlyphCount returns the number of glyphs in the typeface.
func (tf *Typeface) GlyphCount() uint32 {
	return tf.numGlyphs
}

// UnitsPerEm returns the size of the em square in font units.
func (tf *Typeface) UnitsPerEm() uint16 {
	return tf.head.UnitsPerEm
}

// IsFixedWidth reports whether all glyphs share the same advance width.
// Typefaces without horizontal metrics are treated as fixed width.
func (tf *Typeface) IsFixedWidth() bool {
	hmtx, ok := tf.hmtx.Unwrap()
	return !ok || hmtx.IsMonospaced()
}

// Metrics returns ascender, descender, line gap and x-height. Values are in font
// units multiplied by xScale (horizontal) and yScale (vertical).
//
// OS/2 typographic metrics are used if the font asks for it, otherwise the values
// of 'hhea'. Fonts with zero ascender and descender in 'hhea' fall back to OS/2.
func (tf *Typeface) Metrics(xScale, yScale float32) ScaledFontMetrics {
	asc, desc, gap := tf.verticalMetrics()
	return ScaledFontMetrics{
		Ascender:  float32(asc) * yScale,
		Descender: -float32(desc) * yScale,
		LineGap:   float32(gap) * yScale,
		XHeight:   float32(tf.xHeight()) * yScale,
	}
}

func (tf *Typeface) verticalMetrics() (asc, desc, gap int16) {
	os2, hasOS2 := tf.os2.Unwrap()
	if hasOS2 && os2.UseTypoMetrics() {
		return os2.TypoAscender, os2.TypoDescender, os2.TypoLineGap
	}
	asc, desc, gap = tf.hhea.Ascender, tf.hhea.Descender, tf.hhea.LineGap
	if asc != 0 || desc != 0 || !hasOS2 {
		return
	}
	if os2.TypoAscender != 0 || os2.TypoDescender != 0 {
		return os2.TypoAscender, os2.TypoDescender, os2.TypoLineGap
	}
	return int16(os2.WinAscent), -int16(os2.WinDescent), 0
}

// xHeight is taken from OS/2 (version 2 and later), or measured from glyph 'x'.
func (tf *Typeface) xHeight() int16 {
	if os2, ok := tf.os2.Unwrap(); ok && os2.XHeight > 0 {
		return os2.XHeight
	}
	glyf, ok := tf.glyf.Unwrap()
	if !ok {
		return 0
	}
	gid := tf.GlyphIDForCodePoint('x')
	if gid == 0 {
		return 0
	}
	h, _ := glyf.Header(ot.GlyphIndex(gid))
	return h.YMax
}

// clampGlyph maps glyph IDs beyond the glyph count to the last glyph.
func (tf *Typeface) clampGlyph(gid uint32) ot.GlyphIndex {
	if gid >= tf.numGlyphs {
		gid = tf.numGlyphs - 1
	}
	return ot.GlyphIndex(gid)
}

// GlyphMetrics returns the metrics of glyph gid. Horizontal values are multiplied
// by xScale, vertical values by yScale. pointWidth and pointHeight are currently
// not used, as glyph metrics are not hinted.
//
// Glyph IDs beyond the glyph count are treated as the last glyph. Typefaces
// loaded without horizontal metrics report zero metrics for every glyph.
func (tf *Typeface) GlyphMetrics(gid uint32, xScale, yScale, pointWidth, pointHeight float32) ScaledGlyphMetrics {
	hmtx, ok := tf.hmtx.Unwrap()
	if !ok || tf.numGlyphs == 0 {
		return ScaledGlyphMetrics{}
	}
	g := tf.clampGlyph(gid)
	adv, lsb, _ := hmtx.HMetrics(g)
	m := ScaledGlyphMetrics{
		AdvanceWidth:    float32(adv) * xScale,
		LeftSideBearing: float32(lsb) * xScale,
	}
	if glyf, ok := tf.glyf.Unwrap(); ok {
		if h, ok := glyf.Header(g); ok {
			m.Ascender = float32(h.YMax) * yScale
			m.Descender = -float32(h.YMin) * yScale
		}
	}
	return m
}

// GlyphAdvance returns the advance width of glyph gid multiplied by xScale.
func (tf *Typeface) GlyphAdvance(gid uint32, xScale, yScale, pointWidth, pointHeight float32) float32 {
	return tf.GlyphMetrics(gid, xScale, yScale, pointWidth, pointHeight).AdvanceWidth
}

// HasKerning reports whether the typeface contains pair kerning, either in
// GPOS feature 'kern' or in a 'kern' table.
func (tf *Typeface) HasKerning() bool {
	return tf.kern.IsSome() || tf.gpos.IsSome()
}

// GlyphsHorizontalKerning returns the kerning between glyph left and glyph right,
// multiplied by xScale. The order of glyphs matters. Typefaces without kerning
// return 0 for every pair.
//
// Results are cached per pair, including pairs without kerning.
func (tf *Typeface) GlyphsHorizontalKerning(left, right uint32, xScale float32) float32 {
	if !tf.HasKerning() || left >= tf.numGlyphs || right >= tf.numGlyphs {
		return 0
	}
	key := left<<16 | right&0xffff
	tf.mu.Lock()
	value, ok := tf.kerning[key]
	if !ok {
		value, _ = tf.kerningPair(ot.GlyphIndex(left), ot.GlyphIndex(right))
		tf.kerning[key] = value
	}
	tf.mu.Unlock()
	return float32(value) * xScale
}

// KerningPair returns the kerning between glyph left and glyph right in font units,
// and whether the font contains a kerning value for the pair. It does not use the
// kerning cache.
func (tf *Typeface) KerningPair(left, right uint32) (int16, bool) {
	if left >= tf.numGlyphs || right >= tf.numGlyphs {
		return 0, false
	}
	return tf.kerningPair(ot.GlyphIndex(left), ot.GlyphIndex(right))
}

// GPOS pair adjustments take precedence over 'kern' table entries.
func (tf *Typeface) kerningPair(left, right ot.GlyphIndex) (int16, bool) {
	if gpos, ok := tf.gpos.Unwrap(); ok {
		if v, found := gpos.PairAdjustment(left, right); found {
			return v, true
		}
	}
	if kern, ok := tf.kern.Unwrap(); ok {
		return kern.Pair(left, right)
	}
	return 0, false
}
