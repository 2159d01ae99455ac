/*
Package fontbuild assembles small, synthetic OpenType fonts for tests.

Fonts are built from a declarative Builder value. Only the tables needed by
the tests of this module are generated; checksums are left zero.
*/
package fontbuild

import (
	"encoding/binary"
	"sort"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Builder describes a synthetic font. Tables with empty descriptions are omitted.
type Builder struct {
	UnitsPerEm       uint16
	MacStyle         uint16
	LongLoca         bool
	NumGlyphs        int
	Ascender         int16
	Descender        int16
	LineGap          int16
	Advances         []uint16 // long horizontal metrics; numberOfHMetrics = len(Advances)
	LSBs             []int16  // left side bearings for all glyphs
	NoHMtx           bool
	CMap             map[rune]uint16
	CMapFormat       int    // 4, 6 or 12; defaults to 4, or 12 for non-BMP code-points
	CMapFormat0      bool   // byte encoding table
	CMapPlatform     uint16 // defaults to 3 (Windows)
	CMapEncoding     uint16 // defaults to 1 (UCS-2), or 10 for format 12
	CMapRangeOffsets bool   // format 4: use glyph ID array instead of deltas
	NoCMap           bool
	Boxes            []Box // glyph bounding boxes; emits loca and glyf
	Kern             []Pair
	GPosPairs        []Pair        // GPOS PairPos format 1
	GPosClasses      *ClassKerning // GPOS PairPos format 2
	GPosExtension    bool          // wrap GPOS sub-tables in extension lookups
	OS2              *OS2
	Names            map[uint16]string // Windows, English (US)
	MacNames         map[uint16]string // Macintosh Roman
	Raw              map[string][]byte // additional or replacement tables
}

// Box is the bounding box of a glyph.
type Box struct {
	XMin, YMin, XMax, YMax int16
}

// Pair is a kerning pair.
type Pair struct {
	Left, Right uint16
	Value       int16
}

// ClassKerning describes class based pair kerning.
// Glyphs not contained in Left or Right belong to class 0.
type ClassKerning struct {
	Left   map[uint16]uint16
	Right  map[uint16]uint16
	Values [][]int16 // Values[class1][class2]
}

// OS2 holds the fields of table 'OS/2' which are generated.
type OS2 struct {
	Version       uint16 // 0 produces a 78 byte table, otherwise 96 bytes
	WeightClass   uint16
	WidthClass    uint16
	FsSelection   uint16
	TypoAscender  int16
	TypoDescender int16
	TypoLineGap   int16
	WinAscent     uint16
	WinDescent    uint16
	XHeight       int16
}

// Build produces the binary font.
func (fb Builder) Build() []byte {
	tables := map[string][]byte{}
	tables["head"] = fb.head()
	tables["hhea"] = fb.hhea()
	tables["maxp"] = fb.maxp()
	if !fb.NoHMtx {
		tables["hmtx"] = fb.hmtx()
	}
	if !fb.NoCMap {
		tables["cmap"] = fb.cmap()
	}
	if len(fb.Boxes) > 0 {
		tables["loca"], tables["glyf"] = fb.locaGlyf()
	}
	if fb.OS2 != nil {
		tables["OS/2"] = fb.os2()
	}
	if len(fb.Names) > 0 || len(fb.MacNames) > 0 {
		tables["name"] = fb.name()
	}
	if len(fb.Kern) > 0 {
		tables["kern"] = fb.kern()
	}
	if len(fb.GPosPairs) > 0 || fb.GPosClasses != nil {
		tables["GPOS"] = fb.gpos()
	}
	for tag, data := range fb.Raw {
		if data == nil {
			delete(tables, tag)
			continue
		}
		tables[tag] = data
	}
	return Assemble(0x00010000, tables)
}

// Assemble writes an sfnt container for a set of tables, sorted by tag.
func Assemble(sfntVersion uint32, tables map[string][]byte) []byte {
	tags := make([]string, 0, len(tables))
	for tag := range tables {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	n := len(tags)
	w := &writer{}
	w.u32(sfntVersion)
	w.u16(uint16(n))
	searchRange, entrySelector := 1, 0
	for searchRange*2 <= n {
		searchRange *= 2
		entrySelector++
	}
	w.u16(uint16(searchRange * 16))
	w.u16(uint16(entrySelector))
	w.u16(uint16(n*16 - searchRange*16))
	offset := 12 + 16*n
	for _, tag := range tags {
		w.bytes([]byte((tag + "    ")[:4]))
		w.u32(0) // checksum
		w.u32(uint32(offset))
		w.u32(uint32(len(tables[tag])))
		offset += pad4(len(tables[tag]))
	}
	for _, tag := range tags {
		w.bytes(tables[tag])
		w.align4()
	}
	return w.b
}

// Collection bundles fonts into a font collection (TTC, version 1.0).
func Collection(fonts ...[]byte) []byte {
	w := &writer{}
	w.bytes([]byte("ttcf"))
	w.u16(1)
	w.u16(0)
	w.u32(uint32(len(fonts)))
	base := 12 + 4*len(fonts)
	bases := make([]int, len(fonts))
	for i, f := range fonts {
		bases[i] = base
		w.u32(uint32(base))
		base += pad4(len(f))
	}
	for i, f := range fonts {
		font := make([]byte, len(f))
		copy(font, f)
		n := int(binary.BigEndian.Uint16(font[4:]))
		for j := 0; j < n; j++ {
			at := 12 + 16*j + 8
			off := binary.BigEndian.Uint32(font[at:])
			binary.BigEndian.PutUint32(font[at:], off+uint32(bases[i]))
		}
		w.bytes(font)
		w.align4()
	}
	return w.b
}

// --- Tables ----------------------------------------------------------------

func (fb Builder) head() []byte {
	w := &writer{}
	w.u32(0x00010000) // version
	w.u32(0x00010000) // font revision
	w.u32(0)          // checksum adjustment
	w.u32(0x5f0f3cf5) // magic number
	w.u16(0)          // flags
	upem := fb.UnitsPerEm
	if upem == 0 {
		upem = 1000
	}
	w.u16(upem)
	w.zeros(16) // created, modified
	var bbox Box
	for _, b := range fb.Boxes {
		bbox.XMin, bbox.YMin = min(bbox.XMin, b.XMin), min(bbox.YMin, b.YMin)
		bbox.XMax, bbox.YMax = max(bbox.XMax, b.XMax), max(bbox.YMax, b.YMax)
	}
	w.i16(bbox.XMin)
	w.i16(bbox.YMin)
	w.i16(bbox.XMax)
	w.i16(bbox.YMax)
	w.u16(fb.MacStyle)
	w.u16(8) // lowest rec. PPEM
	w.i16(2) // font direction hint
	if fb.LongLoca {
		w.u16(1)
	} else {
		w.u16(0)
	}
	w.u16(0) // glyph data format
	return w.b
}

func (fb Builder) hhea() []byte {
	w := &writer{}
	w.u32(0x00010000)
	w.i16(fb.Ascender)
	w.i16(fb.Descender)
	w.i16(fb.LineGap)
	var maxAdvance uint16
	for _, a := range fb.Advances {
		maxAdvance = max(maxAdvance, a)
	}
	w.u16(maxAdvance)
	w.zeros(22)
	w.u16(uint16(max(len(fb.Advances), 1)))
	return w.b
}

func (fb Builder) maxp() []byte {
	w := &writer{}
	w.u32(0x00005000) // version 0.5
	w.u16(uint16(fb.NumGlyphs))
	return w.b
}

func (fb Builder) hmtx() []byte {
	w := &writer{}
	lsb := func(i int) int16 {
		if i < len(fb.LSBs) {
			return fb.LSBs[i]
		}
		return 0
	}
	for i, a := range fb.Advances {
		w.u16(a)
		w.i16(lsb(i))
	}
	for i := len(fb.Advances); i < fb.NumGlyphs; i++ {
		w.i16(lsb(i))
	}
	return w.b
}

func (fb Builder) locaGlyf() ([]byte, []byte) {
	loca, glyf := &writer{}, &writer{}
	entry := func(off int) {
		if fb.LongLoca {
			loca.u32(uint32(off))
		} else {
			loca.u16(uint16(off / 2))
		}
	}
	for i := 0; i < fb.NumGlyphs; i++ {
		entry(len(glyf.b))
		if i >= len(fb.Boxes) || fb.Boxes[i] == (Box{}) {
			continue
		}
		b := fb.Boxes[i]
		glyf.i16(1) // number of contours
		glyf.i16(b.XMin)
		glyf.i16(b.YMin)
		glyf.i16(b.XMax)
		glyf.i16(b.YMax)
		glyf.zeros(2)
	}
	entry(len(glyf.b))
	return loca.b, glyf.b
}

func (fb Builder) os2() []byte {
	o := fb.OS2
	w := &writer{}
	w.u16(o.Version)
	w.i16(500) // avg char width
	w.u16(o.WeightClass)
	w.u16(o.WidthClass)
	w.zeros(54) // fsType … achVendID
	w.u16(o.FsSelection)
	w.u16(0x20)   // first char index
	w.u16(0xffff) // last char index
	w.i16(o.TypoAscender)
	w.i16(o.TypoDescender)
	w.i16(o.TypoLineGap)
	w.u16(o.WinAscent)
	w.u16(o.WinDescent)
	if o.Version == 0 {
		return w.b
	}
	w.zeros(8) // code page ranges
	w.i16(o.XHeight)
	w.zeros(8) // cap height, default char, break char, max context
	return w.b
}

func (fb Builder) name() []byte {
	type rec struct {
		pid, eid, lid, id uint16
		data              []byte
	}
	var recs []rec
	utf16 := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder()
	for id, s := range fb.Names {
		b, _ := utf16.Bytes([]byte(s))
		recs = append(recs, rec{3, 1, 0x409, id, b})
	}
	mac := charmap.Macintosh.NewEncoder()
	for id, s := range fb.MacNames {
		b, _ := mac.Bytes([]byte(s))
		recs = append(recs, rec{1, 0, 0, id, b})
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].pid != recs[j].pid {
			return recs[i].pid < recs[j].pid
		}
		return recs[i].id < recs[j].id
	})
	w := &writer{}
	w.u16(0)
	w.u16(uint16(len(recs)))
	w.u16(uint16(6 + 12*len(recs)))
	var storage []byte
	for _, r := range recs {
		w.u16(r.pid)
		w.u16(r.eid)
		w.u16(r.lid)
		w.u16(r.id)
		w.u16(uint16(len(r.data)))
		w.u16(uint16(len(storage)))
		storage = append(storage, r.data...)
	}
	w.bytes(storage)
	return w.b
}

func (fb Builder) kern() []byte {
	pairs := sortedPairs(fb.Kern)
	w := &writer{}
	w.u16(0) // version
	w.u16(1) // number of sub-tables
	w.u16(0) // sub-table version
	w.u16(uint16(14 + 6*len(pairs)))
	w.u16(0x0001) // horizontal, format 0
	w.u16(uint16(len(pairs)))
	w.zeros(6) // search range, entry selector, range shift
	for _, p := range pairs {
		w.u16(p.Left)
		w.u16(p.Right)
		w.i16(p.Value)
	}
	return w.b
}

func sortedPairs(pairs []Pair) []Pair {
	s := make([]Pair, len(pairs))
	copy(s, pairs)
	sort.Slice(s, func(i, j int) bool {
		if s[i].Left != s[j].Left {
			return s[i].Left < s[j].Left
		}
		return s[i].Right < s[j].Right
	})
	return s
}

// --- Writer ----------------------------------------------------------------

type writer struct {
	b []byte
}

func (w *writer) u16(n uint16) {
	w.b = binary.BigEndian.AppendUint16(w.b, n)
}

func (w *writer) i16(n int16) {
	w.u16(uint16(n))
}

func (w *writer) u32(n uint32) {
	w.b = binary.BigEndian.AppendUint32(w.b, n)
}

func (w *writer) bytes(b []byte) {
	w.b = append(w.b, b...)
}

func (w *writer) zeros(n int) {
	w.b = append(w.b, make([]byte, n)...)
}

func (w *writer) align4() {
	w.zeros(pad4(len(w.b)) - len(w.b))
}

func (w *writer) putU16(at int, n uint16) {
	binary.BigEndian.PutUint16(w.b[at:], n)
}

func pad4(n int) int {
	return (n + 3) &^ 3
}
