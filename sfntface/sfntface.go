/*
Package sfntface binds a Typeface to the font packages of golang.org/x/image,
for clients which render glyphs with a Go font.Face.

The Typeface remains the authority for code-point resolution, metrics and
kerning; package sfnt is used for outlines and rasterization only.
*/
package sfntface

import (
	"fmt"
	"sync"

	"github.com/npillmayer/otface"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// tracer writes to trace with key 'font.sfntface'
func tracer() tracing.Trace {
	return tracing.Select("font.sfntface")
}

// Binding couples a Typeface with its sfnt representation. The sfnt font is
// parsed on first use.
type Binding struct {
	tf   *otface.Typeface
	once sync.Once
	font *sfnt.Font
	err  error
}

// New creates a binding for tf.
func New(tf *otface.Typeface) *Binding {
	return &Binding{tf: tf}
}

// Typeface returns the bound Typeface.
func (b *Binding) Typeface() *otface.Typeface {
	return b.tf
}

// Font returns the sfnt font for the Typeface. Single fonts are parsed as
// collections of one; the font at the Typeface's collection index is selected.
func (b *Binding) Font() (*sfnt.Font, error) {
	b.once.Do(func() {
		var coll *opentype.Collection
		if coll, b.err = opentype.ParseCollection(b.tf.Buffer()); b.err == nil {
			b.font, b.err = coll.Font(int(b.tf.CollectionIndex()))
		}
		if b.err != nil {
			b.err = fmt.Errorf("sfnt cannot parse typeface: %w", b.err)
			tracer().Errorf("%v", b.err)
		}
	})
	return b.font, b.err
}

// Face creates a font.Face for a font size in points and a resolution in dots
// per inch. Hinting is switched off, to keep advances proportional to the
// Typeface's metrics.
func (b *Binding) Face(size, dpi float64) (font.Face, error) {
	f, err := b.Font()
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     dpi,
		Hinting: font.HintingNone,
	})
}

// Scale returns the factor from font units to pixels for a font size in points
// and a resolution in dots per inch.
func (b *Binding) Scale(size, dpi float64) float32 {
	return float32(size * dpi / 72 / float64(b.tf.UnitsPerEm()))
}

// PPEM returns the pixels per em for a font size and resolution, in fixed point.
func PPEM(size, dpi float64) fixed.Int26_6 {
	return fixed.Int26_6(size * dpi / 72 * 64)
}

// GlyphOutline loads the outline of glyph gid, scaled to ppem. The segments are
// copied, as sfnt re-uses its buffers.
func (b *Binding) GlyphOutline(gid uint32, ppem fixed.Int26_6) (sfnt.Segments, error) {
	f, err := b.Font()
	if err != nil {
		return nil, err
	}
	var buf sfnt.Buffer
	segs, err := f.LoadGlyph(&buf, sfnt.GlyphIndex(gid), ppem, nil)
	if err != nil {
		return nil, err
	}
	return append(sfnt.Segments(nil), segs...), nil
}
