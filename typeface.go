package otface

import (
	"sync"
	"sync/atomic"

	"github.com/npillmayer/otface/ot"
)

// Typeface is a loaded font, i.e. one face of a font file or font collection.
//
// Tables of a Typeface never change after loading. Queries are safe for
// concurrent use; the caches they populate are guarded by a single lock per
// Typeface, except for glyph page 0, which is read without locking once resolved.
type Typeface struct {
	data      []byte
	owner     FontData // nil for bytes owned by the client
	index     uint32
	otf       *ot.Font
	head      *ot.HeadTable
	hhea      *ot.HHeaTable
	numGlyphs uint32
	hmtx      ot.Option[*ot.HMtxTable]
	os2       ot.Option[*ot.OS2Table]
	name      ot.Option[*ot.NameTable]
	glyf      ot.Option[*ot.GlyfTable]
	kern      ot.Option[*ot.KernTable]
	gpos      ot.Option[*ot.GPosTable]
	mapper    CharCodeToGlyphIndex
	warnings  []ot.FontWarning

	mu      sync.Mutex
	page0   atomic.Pointer[glyphPage]
	pages   map[uint32]*glyphPage
	kerning map[uint32]int16
	family  ot.Option[string]
	variant ot.Option[string]
	weight  ot.Option[uint16]
	width   ot.Option[uint16]
	slope   ot.Option[uint8]
}

// Buffer returns the font bytes the Typeface has been loaded from. For collections,
// this is the complete collection. Clients must not modify it.
func (tf *Typeface) Buffer() []byte {
	return tf.data
}

// CollectionIndex returns the index of the Typeface within a font collection, or 0.
func (tf *Typeface) CollectionIndex() uint32 {
	return tf.index
}

// Table returns the bytes of the table with a given tag, or nil if the font does
// not contain such a table.
func (tf *Typeface) Table(tag ot.Tag) []byte {
	if t := tf.otf.Table(tag); t != nil {
		return t.Binary()
	}
	return nil
}

// Font returns the parsed tables of the Typeface. Clients must treat it as read-only.
func (tf *Typeface) Font() *ot.Font {
	return tf.otf
}

// Warnings returns the problems tolerated during loading.
func (tf *Typeface) Warnings() []ot.FontWarning {
	return tf.warnings
}

// Close releases the font data if it is owned by the Typeface. For bytes
// owned by the client, Close does nothing.
func (tf *Typeface) Close() error {
	tf.mu.Lock()
	owner := tf.owner
	tf.owner = nil
	tf.mu.Unlock()
	if owner == nil {
		return nil
	}
	return closeOwner(owner)
}
