package otface

import (
	"errors"
	"fmt"
	"slices"

	"github.com/npillmayer/otface/ot"
)

// Load creates a Typeface from font bytes owned by the caller. The bytes are not
// copied; they must not change while the Typeface is in use.
//
// data may hold a single font or a font collection, in which case opts.Index
// selects the font. Errors match ot.ErrFormat (including ot.ErrCollectionIndex)
// or ot.ErrMissingTable. No partial Typeface is returned.
func Load(data []byte, opts Options) (*Typeface, error) {
	return load(data, nil, opts)
}

// LoadFontData creates a Typeface which owns the font data fd. fd will be closed by
// Typeface.Close. If loading fails, fd is left to the caller.
func LoadFontData(fd FontData, opts Options) (*Typeface, error) {
	if fd == nil {
		return nil, errors.New("otface: font data is nil")
	}
	return load(fd.Bytes(), fd, opts)
}

func load(data []byte, owner FontData, opts Options) (*Typeface, error) {
	tag, err := ot.SniffFontType(data)
	if err != nil {
		tracer().Errorf("cannot load font: %v", err)
		return nil, err
	}
	header := &ot.CollectionHeader{Offsets: []uint32{0}} // single font as a collection of one
	if tag == ot.TagCollection {
		if header, err = ot.ParseCollectionHeader(data); err != nil {
			tracer().Errorf("cannot load font collection: %v", err)
			return nil, err
		}
		tracer().Debugf("font collection with %d fonts", header.NumFonts())
	}
	offset, err := header.FontOffset(opts.Index)
	if err != nil {
		tracer().Errorf("cannot load font: %v", err)
		return nil, err
	}
	tf, err := loadAtOffset(data, offset, opts)
	if err != nil {
		tracer().Errorf("cannot load font #%d: %v", opts.Index, err)
		return nil, err
	}
	tf.owner = owner
	tf.index = opts.Index
	return tf, nil
}

// loadAtOffset parses the font with table directory at offset and checks for
// the tables a Typeface depends on.
func loadAtOffset(data []byte, offset uint32, opts Options) (*Typeface, error) {
	var ignore []ot.Tag
	if opts.SkipTables&SkipName != 0 {
		ignore = append(ignore, ot.T("name"))
	}
	if opts.SkipTables&SkipHmtx != 0 {
		ignore = append(ignore, ot.T("hmtx"))
	}
	if opts.SkipTables&SkipOS2 != 0 {
		ignore = append(ignore, ot.T("OS/2"))
	}
	if opts.ExternalCMap != nil {
		ignore = append(ignore, ot.T("cmap"))
	}
	otf, err := ot.ParseAt(data, offset, ot.IgnoreTables(ignore...))
	if err != nil {
		return nil, err
	}
	required := func(tag ot.Tag, present bool) error {
		if present {
			return nil
		}
		return ot.MissingTable(tag, otf.TableError(tag))
	}
	if err := errors.Join(
		required(ot.T("head"), otf.Head != nil),
		required(ot.T("hhea"), otf.HHea != nil),
		required(ot.T("maxp"), otf.MaxP != nil),
	); err != nil {
		return nil, err
	}
	if opts.ExternalCMap == nil {
		if err := required(ot.T("cmap"), otf.CMap != nil); err != nil {
			return nil, err
		}
	}
	if opts.SkipTables&SkipHmtx == 0 {
		if err := required(ot.T("hmtx"), otf.HMtx != nil); err != nil {
			return nil, err
		}
	}
	if opts.SkipTables&SkipOS2 == 0 {
		if err := required(ot.T("OS/2"), otf.OS2 != nil); err != nil {
			return nil, err
		}
	}
	if opts.SkipTables&SkipName == 0 {
		if err := required(ot.T("name"), otf.Name != nil); err != nil {
			return nil, err
		}
	}
	tf := &Typeface{
		data:      data,
		otf:       otf,
		head:      otf.Head,
		hhea:      otf.HHea,
		numGlyphs: uint32(otf.NumGlyphs()),
		hmtx:      ot.Maybe(otf.HMtx, otf.HMtx != nil),
		os2:       ot.Maybe(otf.OS2, otf.OS2 != nil),
		name:      ot.Maybe(otf.Name, otf.Name != nil),
		glyf:      ot.Maybe(otf.Glyf, otf.Glyf != nil),
		kern:      ot.Maybe(otf.Kern, otf.Kern != nil && otf.Kern.SubTableCount() > 0),
		gpos:      ot.Maybe(otf.GPos, otf.GPos.HasKerning()),
		pages:     make(map[uint32]*glyphPage),
		kerning:   make(map[uint32]int16),
		warnings:  slices.Clone(otf.Warnings()),
	}
	tf.mapper = opts.ExternalCMap
	if tf.mapper == nil {
		tf.mapper = cmapMapper{otf.CMap}
	}
	// tolerated conditions of optional tables
	warn := func(tag ot.Tag, issue string) {
		tracer().Infof("font table %s: %s", tag, issue)
		tf.warnings = append(tf.warnings, ot.FontWarning{Table: tag, Issue: issue})
	}
	if otf.Table(ot.T("loca")) != nil || otf.Table(ot.T("glyf")) != nil {
		if otf.Glyf == nil {
			warn(ot.T("glyf"), "loca/glyf unusable, glyph bounds unavailable")
		}
	}
	for _, tag := range []ot.Tag{ot.T("kern"), ot.T("GPOS")} {
		if err := otf.TableError(tag); err != nil {
			warn(tag, fmt.Sprintf("table ignored: %v", err))
		}
	}
	tracer().Debugf("loaded typeface with %d glyphs, %d tables", tf.numGlyphs, len(otf.TableTags()))
	return tf, nil
}
