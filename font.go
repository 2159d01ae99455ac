/*
Package otface loads OpenType typefaces and answers glyph queries.

A Typeface is created from the raw bytes of a font file or of one font in a
font collection (*.ttc). It resolves Unicode code-points to glyph IDs and
reports font-wide metrics, glyph metrics, pair kerning and the identity of a
face (family, variant, weight, width and slope). All query results are
memoized, so renderers may call them for every glyph of every run.

There is a certain confusion with the nomenclature of typesetting. We will
stick to the following definitions:

▪︎ A "typeface" is a single face of a font file: one font of a collection,
or the only font of a *.ttf/*.otf file. An example is "Helvetica regular".

▪︎ A "glyph page" is a block of 256 consecutive code-points, resolved to
glyphs in one go.

Please note that Go (Golang) does use the terms "font" and "face"
differently–actually more or less in an opposite manner. A Go font.Face for a
Typeface may be created with package sfntface.

Font data is treated as hostile. Loading either fails with an error matching
ot.ErrFormat or ot.ErrMissingTable, or returns a Typeface which will never fail
at query time.

# Links

OpenType explained:
https://docs.microsoft.com/en-us/typography/opentype/

______________________________________________________________________

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otface

import (
	"io"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.otface'
func tracer() tracing.Trace {
	return tracing.Select("font.otface")
}

// FontData is a source of font bytes which will be owned by a Typeface.
// The bytes must not change while the Typeface is in use. If a FontData
// implements io.Closer, Typeface.Close will close it.
type FontData interface {
	Bytes() []byte
}

// MemoryFont is a FontData for font bytes already in memory.
type MemoryFont []byte

// Bytes returns the font bytes.
func (m MemoryFont) Bytes() []byte {
	return m
}

var _ FontData = MemoryFont(nil)

func closeOwner(fd FontData) error {
	if c, ok := fd.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
