package ot

/*
Parts of the cmap lookup code follow the structure of the Go core team's sfnt
package, available from https://github.com/golang/image/tree/master/font/sfnt.

   Copyright 2017 The Go Authors. All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

import (
	"fmt"
	"sort"

	"golang.org/x/text/encoding/charmap"
)

// CMapTable represents an OpenType cmap table, i.e. the table to receive glyphs
// from code-points.
//
// See https://docs.microsoft.com/de-de/typography/opentype/spec/cmap
type CMapTable struct {
	tableBase
	GlyphIndexMap CMapGlyphIndex // the selected sub-table
	PlatformID    uint16         // platform of the selected sub-table
	EncodingID    uint16         // encoding of the selected sub-table
	Format        uint16         // format of the selected sub-table
	NumGlyphs     int            // glyph indices >= NumGlyphs map to 0
	Subtables     []CMapEncoding // all encoding records of the table
}

// CMapEncoding describes an encoding record of a cmap table.
type CMapEncoding struct {
	PlatformID uint16
	EncodingID uint16
	Format     uint16
	Offset     uint32
}

func newCMapTable(tag Tag, b binarySegm, offset, size uint32) *CMapTable {
	t := &CMapTable{}
	t.tableBase = makeTableBase(tag, b, offset, size)
	t.self = t
	return t
}

// CMapGlyphIndex represents a CMap sub-table to receive a glyph index from
// a character code.
type CMapGlyphIndex interface {
	Lookup(code uint32) uint32
}

// Platform IDs and Platform Specific IDs as per
// https://www.microsoft.com/typography/otspec/name.htm
const (
	PlatformUnicode   = 0
	PlatformMacintosh = 1
	PlatformWindows   = 3

	psidUnicode2BMPOnly        = 3
	psidUnicode2FullRepertoire = 4
	psidUnicodeVariationSeq    = 5
	psidUnicodeFull            = 6
	psidMacintoshRoman         = 0
	psidWindowsSymbol          = 0
	psidWindowsUCS2            = 1
	psidWindowsUCS4            = 10
)

// This value is arbitrary, but defends against parsing malicious font
// files causing excessive memory allocations. For reference, Adobe's
// SourceHanSansSC-Regular.otf has 65535 glyphs and:
//   - its format-4  cmap table has  1581 segments.
//   - its format-12 cmap table has 16498 segments.
const maxCMapSegments = 40000

type cmapKind int

const (
	cmapUnicode cmapKind = iota
	cmapSymbol
	cmapMacRoman
)

// cmapSubtableRank ranks a sub-table for selection. 0 means unsupported.
//
// From the OpenType cmap documentation: “If a font includes Unicode subtables for both 16-bit encoding
// (typically, format 4) and also 32-bit encoding (formats 10 or 12), then the
// characters supported by the subtable for 32-bit encoding should be a superset
// of the characters supported by the subtable for 16-bit encoding, and the
// 32-bit encoding should be used by applications.”
//
// Unicode sub-tables are preferred over Windows Symbol sub-tables, which in turn are
// preferred over Macintosh Roman. Note that FontForge may generate a bogus Platform
// Specific ID (value 10) for the Unicode Platform ID (value 0).
// See https://github.com/fontforge/fontforge/issues/2728
func cmapSubtableRank(pid, psid, format uint16) (int, cmapKind) {
	switch {
	case pid == PlatformWindows && psid == psidWindowsUCS4 && format == 12:
		return 21, cmapUnicode
	case pid == PlatformUnicode && psid != psidUnicodeVariationSeq && format == 12:
		return 20, cmapUnicode
	case pid == PlatformWindows && psid == psidWindowsUCS2 && format == 4:
		return 16, cmapUnicode
	case pid == PlatformUnicode && psid <= psidUnicode2BMPOnly && format == 4:
		return 15, cmapUnicode
	case pid == PlatformUnicode && (psid == psidUnicode2FullRepertoire || psid == psidUnicodeFull) && format == 4:
		return 14, cmapUnicode
	case (pid == PlatformUnicode && psid != psidUnicodeVariationSeq || pid == PlatformWindows && psid == psidWindowsUCS2) && format == 6:
		return 12, cmapUnicode
	case pid == PlatformUnicode && psid != psidUnicodeVariationSeq && format == 0:
		return 10, cmapUnicode
	case pid == PlatformWindows && psid == psidWindowsSymbol && (format == 4 || format == 6 || format == 12):
		return 5, cmapSymbol
	case pid == PlatformMacintosh && psid == psidMacintoshRoman && (format == 0 || format == 6):
		return 2, cmapMacRoman
	}
	return 0, cmapUnicode
}

// This table defines mapping of character codes to a default glyph index. Different
// subtables may be defined that each contain mappings for different character encoding
// schemes. The table header indicates the character encodings for which subtables are
// present.
//
// We select exactly one sub-table (see cmapSubtableRank). Supported formats are
// 0, 4, 6 and 12. If the best candidate is corrupt, the next best one is tried.
func parseCMap(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector, numGlyphs int) (Table, error) {
	n, err := b.u16(2) // number of sub-tables
	if err != nil {
		return nil, ec.fail(tag, "Header", "cmap header truncated", offset)
	}
	tracer().Debugf("font cmap has %d sub-tables in %d|%d bytes", n, len(b), size)
	t := newCMapTable(tag, b, offset, size)
	t.NumGlyphs = numGlyphs
	const headerSize, entrySize = 4, 8
	recs, err := b.view(headerSize, entrySize*int(n))
	if n > 0 && err != nil {
		return nil, ec.fail(tag, "Header", fmt.Sprintf("table size %d too small for %d encoding records", size, n), offset)
	}
	type candidate struct {
		rank int
		kind cmapKind
		enc  CMapEncoding
	}
	var candidates []candidate
	for i := 0; i < int(n); i++ {
		rec := recs[entrySize*i:]
		enc := CMapEncoding{PlatformID: u16(rec), EncodingID: u16(rec[2:]), Offset: u32(rec[4:])}
		format, err := b.u16(int(enc.Offset))
		if err != nil {
			ec.addWarning(tag, fmt.Sprintf("sub-table %d (platform=%d, encoding=%d) out of bounds",
				i, enc.PlatformID, enc.EncodingID), offset)
			continue
		}
		enc.Format = format
		t.Subtables = append(t.Subtables, enc)
		if rank, kind := cmapSubtableRank(enc.PlatformID, enc.EncodingID, format); rank > 0 {
			candidates = append(candidates, candidate{rank: rank, kind: kind, enc: enc})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].rank > candidates[j].rank })
	for _, c := range candidates {
		sub, _ := b.from(int(c.enc.Offset))
		gim, err := makeGlyphIndex(sub, c.enc.Format)
		if err != nil {
			tracer().Infof("cmap sub-table (%d,%d) format %d cannot be parsed: %v",
				c.enc.PlatformID, c.enc.EncodingID, c.enc.Format, err)
			ec.addWarning(tag, fmt.Sprintf("sub-table (%d,%d) format %d unusable: %v",
				c.enc.PlatformID, c.enc.EncodingID, c.enc.Format, err), offset+c.enc.Offset)
			continue
		}
		switch c.kind {
		case cmapSymbol:
			gim = symbolGlyphIndex{gim}
		case cmapMacRoman:
			gim = macRomanGlyphIndex{gim}
		}
		t.GlyphIndexMap = gim
		t.PlatformID, t.EncodingID, t.Format = c.enc.PlatformID, c.enc.EncodingID, c.enc.Format
		tracer().Debugf("selected cmap sub-table (%d,%d) with format %d", t.PlatformID, t.EncodingID, t.Format)
		return t, nil
	}
	return nil, ec.fail(tag, "Format", "no supported cmap sub-table found", offset)
}

// Lookup returns the glyph for a Unicode code-point, or 0 if the code-point is
// not mapped. Glyph indices beyond the font's glyph count are reported as 0.
func (t *CMapTable) Lookup(r rune) GlyphIndex {
	if t == nil || t.GlyphIndexMap == nil || r < 0 || r > 0x10ffff {
		return 0
	}
	g := t.GlyphIndexMap.Lookup(uint32(r))
	if g >= MaxGlyphCount || (t.NumGlyphs > 0 && int(g) >= t.NumGlyphs) {
		return 0
	}
	return GlyphIndex(g)
}

func makeGlyphIndex(b binarySegm, format uint16) (CMapGlyphIndex, error) {
	switch format {
	case 0:
		return makeGlyphIndexFormat0(b)
	case 4:
		return makeGlyphIndexFormat4(b)
	case 6:
		return makeGlyphIndexFormat6(b)
	case 12:
		return makeGlyphIndexFormat12(b)
	}
	return nil, errFontFormat(fmt.Sprintf("cmap format %d not supported", format))
}

// --- Format 0 --------------------------------------------------------------

// Format 0: Byte encoding table. A simple 1 to 1 mapping of character codes
// 0…255 to glyph indices.
type format0GlyphIndex struct {
	glyphs binarySegm
}

func makeGlyphIndexFormat0(b binarySegm) (CMapGlyphIndex, error) {
	glyphs, err := b.view(6, 256)
	if err != nil {
		return nil, errFontFormat("cmap format 0 truncated")
	}
	return format0GlyphIndex{glyphs: glyphs}, nil
}

func (f format0GlyphIndex) Lookup(c uint32) uint32 {
	if c > 0xff {
		return 0
	}
	return uint32(f.glyphs[c])
}

// --- Format 4 --------------------------------------------------------------

// Format 4: Segment mapping to delta values
// This is the standard character-to-glyph-index mapping subtable for fonts that support
// only Unicode Basic Multilingual Plane characters (U+0000 to U+FFFF).
//
// The format-dependent data is divided into three parts, which must occur in the following
// order:
// - A four-word header gives parameters for an optimized search of the segment list;
// - Four parallel arrays describe the segments (one segment for each contiguous range of codes);
// - A variable-length array of glyph IDs (unsigned words).
//
// The length field of format 4 sub-tables overflows for large tables in some fonts,
// therefore we bound glyph ID reads by the end of the cmap table.
type format4GlyphIndex struct {
	segCount int
	data     binarySegm // from start of sub-table to end of cmap
}

func makeGlyphIndexFormat4(b binarySegm) (CMapGlyphIndex, error) {
	const headerSize = 14
	segCountX2, err := b.u16(6)
	if err != nil {
		return nil, errFontFormat("cmap format 4 header truncated")
	}
	if segCountX2&1 != 0 {
		return nil, errFontFormat("cmap format 4, illegal segment count")
	}
	segCount := int(segCountX2 / 2)
	if segCount > maxCMapSegments {
		return nil, errFontFormat(fmt.Sprintf("more than %d cmap segments not supported", maxCMapSegments))
	}
	// endCode[], reservedPad, startCode[], idDelta[], idRangeOffset[]
	if _, err := b.view(headerSize, 8*segCount+2); err != nil {
		return nil, errFontFormat("cmap format 4 segment arrays truncated")
	}
	return format4GlyphIndex{segCount: segCount, data: b}, nil
}

func (f format4GlyphIndex) Lookup(c uint32) uint32 {
	if c > 0xffff {
		return 0
	}
	n := f.segCount
	ends, starts := f.data[14:], f.data[16+2*n:]
	deltas, rangeOffsets := f.data[16+4*n:], f.data[16+6*n:]
	// segments are sorted by end code
	h := sort.Search(n, func(i int) bool {
		return uint32(u16(ends[2*i:])) >= c
	})
	if h == n {
		return 0
	}
	start := u16(starts[2*h:])
	if uint32(start) > c {
		return 0
	}
	delta := u16(deltas[2*h:])
	ro := u16(rangeOffsets[2*h:])
	if ro == 0 {
		return uint32(uint16(c) + delta)
	}
	// “glyphId = *(idRangeOffset[i]/2 + (c - startCode[i]) + &idRangeOffset[i])”
	at := 16 + 6*n + 2*h + int(ro) + 2*int(uint16(c)-start)
	g, err := f.data.u16(at)
	if err != nil || g == 0 {
		return 0
	}
	return uint32(g + delta)
}

// --- Format 6 --------------------------------------------------------------

// Format 6: Trimmed table mapping. A dense array of glyph indices for a single
// contiguous range of character codes.
type format6GlyphIndex struct {
	firstCode uint32
	count     int
	glyphs    binarySegm
}

func makeGlyphIndexFormat6(b binarySegm) (CMapGlyphIndex, error) {
	first, err1 := b.u16(6)
	n, err2 := b.u16(8)
	if err1 != nil || err2 != nil {
		return nil, errFontFormat("cmap format 6 header truncated")
	}
	f := format6GlyphIndex{firstCode: uint32(first), count: int(n)}
	if n > 0 {
		var err error
		if f.glyphs, err = b.view(10, 2*int(n)); err != nil {
			return nil, errFontFormat("cmap format 6 glyph array truncated")
		}
	}
	return f, nil
}

func (f format6GlyphIndex) Lookup(c uint32) uint32 {
	if c < f.firstCode || c-f.firstCode >= uint32(f.count) {
		return 0
	}
	return uint32(u16(f.glyphs[2*(c-f.firstCode):]))
}

// --- Format 12 -------------------------------------------------------------

// Format 12: Segmented coverage. This is the standard character-to-glyph-index
// mapping subtable for fonts supporting Unicode character repertoires that include
// supplementary-plane characters (U+10000 to U+10FFFF).
type format12GlyphIndex struct {
	numGroups int
	groups    binarySegm // sequential map groups of 12 bytes: start, end, startGlyphID
}

func makeGlyphIndexFormat12(b binarySegm) (CMapGlyphIndex, error) {
	const headerSize = 16
	numGroups, err := b.u32(12)
	if err != nil {
		return nil, errFontFormat("cmap format 12 header truncated")
	}
	if numGroups > maxCMapSegments {
		return nil, errFontFormat(fmt.Sprintf("more than %d cmap segments not supported", maxCMapSegments))
	}
	f := format12GlyphIndex{numGroups: int(numGroups)}
	if numGroups > 0 {
		if f.groups, err = b.view(headerSize, 12*int(numGroups)); err != nil {
			return nil, errFontFormat("cmap format 12 groups truncated")
		}
	}
	return f, nil
}

func (f format12GlyphIndex) Lookup(c uint32) uint32 {
	h := sort.Search(f.numGroups, func(i int) bool {
		return u32(f.groups[12*i+4:]) >= c // end char code
	})
	if h == f.numGroups {
		return 0
	}
	group := f.groups[12*h:]
	start := u32(group)
	if start > c {
		return 0
	}
	return c - start + u32(group[8:])
}

// --- Encodings -------------------------------------------------------------

// Symbol fonts map their characters into the Private Use Area U+F000…U+F0FF.
// Clients usually ask for the Latin-1 code-point, so we try both.
type symbolGlyphIndex struct {
	CMapGlyphIndex
}

func (s symbolGlyphIndex) Lookup(c uint32) uint32 {
	if g := s.CMapGlyphIndex.Lookup(c); g != 0 {
		return g
	}
	if c < 0x100 {
		return s.CMapGlyphIndex.Lookup(0xf000 + c)
	}
	return 0
}

// Macintosh Roman sub-tables are indexed by Mac OS Roman character codes.
type macRomanGlyphIndex struct {
	CMapGlyphIndex
}

func (m macRomanGlyphIndex) Lookup(c uint32) uint32 {
	if c < 0x80 {
		return m.CMapGlyphIndex.Lookup(c)
	}
	b, ok := charmap.Macintosh.EncodeRune(rune(c))
	if !ok {
		return 0
	}
	return m.CMapGlyphIndex.Lookup(uint32(b))
}
