package ot

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Code comment often will cite passage from the
// OpenType specification version 1.8.4;
// see https://docs.microsoft.com/en-us/typography/opentype/spec/.

// ---------------------------------------------------------------------------

// Maximum reasonable counts for OpenType table structures.
// These limits prevent malicious fonts from claiming unreasonably large counts
// that could lead to excessive memory allocation or out-of-bounds reads.
const (
	MaxCollectionFonts = 4096  // faces within a TTC
	MaxScriptCount     = 500   // GPOS scripts
	MaxFeatureCount    = 1000  // GPOS features
	MaxLookupCount     = 2000  // GPOS lookups
	MaxGlyphCount      = 65536 // Maximum glyph index (uint16)
)

// ---------------------------------------------------------------------------

// Checked arithmetic operations to prevent integer overflow

// checkedMulInt checks for overflow in multiplication of two integers
func checkedMulInt(a, b int) (int, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > 0 && b > 0 && a > math.MaxInt/b {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	if a < 0 && b < 0 && a < math.MaxInt/b {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	if (a < 0 && b > 0 && a < math.MinInt/b) || (a > 0 && b < 0 && b < math.MinInt/a) {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	return a * b, nil
}

// checkedAddInt checks for overflow in addition of two integers
func checkedAddInt(a, b int) (int, error) {
	if b > 0 && a > math.MaxInt-b {
		return 0, fmt.Errorf("integer overflow: %d + %d", a, b)
	}
	if b < 0 && a < math.MinInt-b {
		return 0, fmt.Errorf("integer overflow: %d + %d", a, b)
	}
	return a + b, nil
}

// checkedMulUint32 checks for overflow in multiplication of two uint32 values
func checkedMulUint32(a, b uint32) (uint32, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > math.MaxUint32/b {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	return a * b, nil
}

// checkedAddUint32 checks for overflow in addition of two uint32 values
func checkedAddUint32(a, b uint32) (uint32, error) {
	if a > math.MaxUint32-b {
		return 0, fmt.Errorf("integer overflow: %d + %d", a, b)
	}
	return a + b, nil
}

// --- Font type and collections ---------------------------------------------

// SniffFontType returns the 4-byte tag at the start of a font binary.
// It is one of TagTrueType, TagTrue, TagOpenType or TagCollection; any other value
// results in an error matching ErrFormat.
func SniffFontType(font []byte) (Tag, error) {
	if len(font) < 4 {
		return 0, FontError{Section: "Header", Issue: "font data too short",
			Severity: SeverityCritical, kind: ErrFormat}
	}
	tag := MakeTag(font[:4])
	switch tag {
	case TagTrueType, TagTrue, TagOpenType, TagCollection:
		return tag, nil
	}
	return 0, FontError{Section: "Header", Issue: fmt.Sprintf("font type not supported: %x", uint32(tag)),
		Severity: SeverityCritical, kind: ErrFormat}
}

// CollectionHeader is the header of an OpenType Font Collection (TTC),
// which bundles a number of fonts in a single file. Tables may be shared between
// fonts of a collection.
type CollectionHeader struct {
	MajorVersion uint16
	MinorVersion uint16
	Offsets      []uint32 // table directory offset for each font
}

// ParseCollectionHeader parses the header of a font collection.
// Offsets of table directories are checked against the font data's bounds.
func ParseCollectionHeader(font []byte) (*CollectionHeader, error) {
	ec := &errorCollector{}
	src := binarySegm(font)
	if tag, err := SniffFontType(font); err != nil {
		return nil, err
	} else if tag != TagCollection {
		return nil, ec.fail(tag, "Header", "not a font collection", 0)
	}
	hdr, err := src.view(0, 12)
	if err != nil {
		return nil, ec.fail(TagCollection, "Header", "collection header truncated", 0)
	}
	h := &CollectionHeader{
		MajorVersion: u16(hdr[4:]),
		MinorVersion: u16(hdr[6:]),
	}
	if h.MajorVersion != 1 && h.MajorVersion != 2 {
		return nil, ec.fail(TagCollection, "Header",
			fmt.Sprintf("unsupported collection version %d.%d", h.MajorVersion, h.MinorVersion), 4)
	}
	numFonts := u32(hdr[8:])
	if numFonts == 0 || numFonts > MaxCollectionFonts {
		return nil, ec.fail(TagCollection, "Header", fmt.Sprintf("implausible number of fonts: %d", numFonts), 8)
	}
	offs, err := src.view(12, 4*int(numFonts))
	if err != nil {
		return nil, ec.fail(TagCollection, "Offsets", "offset array exceeds font data", 12)
	}
	h.Offsets = make([]uint32, numFonts)
	for i := range h.Offsets {
		h.Offsets[i] = u32(offs[4*i:])
		if end, err := checkedAddUint32(h.Offsets[i], 12); err != nil || end > uint32(len(font)) {
			return nil, ec.fail(TagCollection, "Offsets",
				fmt.Sprintf("offset of font %d exceeds font data", i), 12+4*uint32(i))
		}
	}
	tracer().Debugf("font collection version %d.%d has %d fonts", h.MajorVersion, h.MinorVersion, numFonts)
	return h, nil
}

// NumFonts returns the number of fonts in the collection.
func (h *CollectionHeader) NumFonts() int {
	return len(h.Offsets)
}

// FontOffset returns the offset of the table directory of font number index.
// An index outside of the collection results in an error matching ErrCollectionIndex.
func (h *CollectionHeader) FontOffset(index uint32) (uint32, error) {
	if int64(index) >= int64(len(h.Offsets)) {
		return 0, FontError{
			Table:    TagCollection,
			Section:  "Offsets",
			Issue:    fmt.Sprintf("font index %d out of range [0…%d)", index, len(h.Offsets)),
			Severity: SeverityCritical,
			kind:     ErrCollectionIndex,
		}
	}
	return h.Offsets[index], nil
}

// ---------------------------------------------------------------------------

// ParseOption influences the parsing process.
type ParseOption func(*parseConfig)

type parseConfig struct {
	ignore map[Tag]bool
}

// IgnoreTables prevents the given tables from being interpreted. They will still be
// present as generic tables.
func IgnoreTables(tags ...Tag) ParseOption {
	return func(conf *parseConfig) {
		for _, tag := range tags {
			conf.ignore[tag] = true
		}
	}
}

// Parse parses a non-collection OpenType font from a byte slice.
// It is a shortcut for ParseAt(font, 0, opts...).
func Parse(font []byte, opts ...ParseOption) (*Font, error) {
	return ParseAt(font, 0, opts...)
}

// ParseAt parses the font whose table directory starts at offset.
// An ot.Font needs ongoing access to the font's byte-data after ParseAt returns.
// Its elements are assumed immutable while the ot.Font remains in use.
//
// ParseAt will return an error only if the table directory is unusable.
// Tables which fail to parse are left out of the typed fields of Font;
// clients are expected to decide which tables they require. Errors of such
// tables are reported with SeverityMajor for tables required by OpenType,
// and SeverityMinor otherwise.
func ParseAt(font []byte, offset uint32, opts ...ParseOption) (*Font, error) {
	conf := parseConfig{ignore: make(map[Tag]bool)}
	for _, opt := range opts {
		opt(&conf)
	}
	ec := &errorCollector{}
	src := binarySegm(font)
	// https://www.microsoft.com/typography/otspec/otff.htm: Offset Table is 12 bytes.
	hdr, err := src.view(int(offset), 12)
	if err != nil {
		return nil, ec.fail(0, "Header", "offset table truncated", offset)
	}
	h := FontHeader{}
	if err := binary.Read(bytes.NewReader(hdr), binary.BigEndian, &h); err != nil {
		return nil, ec.fail(0, "Header", err.Error(), offset)
	}
	tracer().Debugf("header = %v, tag = %x|%s", h, h.FontType, Tag(h.FontType).String())
	switch Tag(h.FontType) {
	case TagTrueType, TagTrue, TagOpenType:
	default:
		return nil, ec.fail(0, "Header", fmt.Sprintf("font type not supported: %x", h.FontType), offset)
	}
	otf := &Font{
		Header:      &h,
		Offset:      offset,
		tables:      make(map[Tag]Table),
		tableErrors: make(map[Tag]error),
	}
	// "The Offset Table is followed immediately by the Table Record entries …
	// sorted in ascending order by tag", 16 bytes each.
	tableRecordsSize, err := checkedMulInt(16, int(h.TableCount))
	if err != nil {
		return nil, ec.fail(0, "TableRecords", fmt.Sprintf("table count too large: %v", err), offset+4)
	}
	if h.TableCount == 0 {
		return nil, ec.fail(0, "TableRecords", "font has no tables", offset+4)
	}
	buf, err := src.view(int(offset)+12, tableRecordsSize)
	if err != nil {
		return nil, ec.fail(0, "TableRecords", "table record entries exceed font data", offset+12)
	}
	for b, prevTag := buf, Tag(0); len(b) > 0; b = b[16:] {
		tag := MakeTag(b)
		if tag < prevTag {
			ec.addWarning(tag, "table records not sorted by tag", offset+12)
		}
		prevTag = tag
		off, size := u32(b[8:12]), u32(b[12:16])
		if off&3 != 0 { // ignore checksums, but "all tables must begin on four byte boundries".
			ec.addWarning(tag, "table does not start on 4-byte boundary", off)
		}
		// Validate table bounds before slicing to prevent panic
		tableEnd, err := checkedAddUint32(off, size)
		if err != nil {
			return nil, ec.fail(tag, "Size", fmt.Sprintf("size calculation overflow: %v", err), off)
		}
		if tableEnd > uint32(len(src)) {
			return nil, ec.fail(tag, "Bounds",
				fmt.Sprintf("bounds [%d:%d] exceed font size %d", off, tableEnd, len(src)), off)
		}
		if _, dup := otf.tables[tag]; dup {
			ec.addWarning(tag, "duplicate table record ignored", off)
			continue
		}
		otf.order = append(otf.order, tag)
		otf.tables[tag] = newTable(tag, src[off:tableEnd], off, size)
	}
	// Tables are interpreted in an order satisfying their dependencies:
	// hmtx depends on hhea and maxp, loca on head and maxp, glyf on loca.
	for _, tag := range interpretationOrder {
		t, ok := otf.tables[tag]
		if !ok || conf.ignore[tag] {
			continue
		}
		off, size := t.Extent()
		typed, err := parseTable(otf, tag, binarySegm(t.Binary()), off, size, ec)
		if err != nil {
			tracer().Infof("table %s cannot be interpreted: %v", tag, err)
			otf.tableErrors[tag] = ec.tolerate(tag, err)
			continue
		}
		otf.tables[tag] = typed
		otf.setTyped(typed)
	}
	if ec.hasErrors() || ec.hasWarnings() {
		tracer().Infof("font at offset %d: %d errors, %d warnings", offset, len(ec.errors), len(ec.warnings))
	}
	otf.parseErrors = ec.errors
	otf.parseWarnings = ec.warnings
	return otf, nil
}

var interpretationOrder = []Tag{
	T("head"), T("hhea"), T("maxp"), T("OS/2"), T("name"), T("cmap"),
	T("hmtx"), T("loca"), T("glyf"), T("kern"), T("GPOS"),
}

func (otf *Font) setTyped(t Table) {
	self := t.Self()
	switch self.NameTag() {
	case T("head"):
		otf.Head = self.AsHead()
	case T("hhea"):
		otf.HHea = self.AsHHea()
	case T("maxp"):
		otf.MaxP = self.AsMaxP()
	case T("OS/2"):
		otf.OS2 = self.AsOS2()
	case T("name"):
		otf.Name = self.AsName()
	case T("cmap"):
		otf.CMap = self.AsCMap()
	case T("hmtx"):
		otf.HMtx = self.AsHMtx()
	case T("loca"):
		otf.Loca = self.AsLoca()
	case T("glyf"):
		otf.Glyf = self.AsGlyf()
	case T("kern"):
		otf.Kern = self.AsKern()
	case T("GPOS"):
		otf.GPos = self.AsGPos()
	}
}

func parseTable(otf *Font, t Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	switch t {
	case T("head"):
		return parseHead(t, b, offset, size, ec)
	case T("hhea"):
		return parseHHea(t, b, offset, size, ec)
	case T("maxp"):
		return parseMaxP(t, b, offset, size, ec)
	case T("OS/2"):
		return parseOS2(t, b, offset, size, ec)
	case T("name"):
		return parseName(t, b, offset, size, ec)
	case T("cmap"):
		return parseCMap(t, b, offset, size, ec, otf.NumGlyphs())
	case T("hmtx"):
		return parseHMtx(otf, t, b, offset, size, ec)
	case T("loca"):
		return parseLoca(otf, t, b, offset, size, ec)
	case T("glyf"):
		return parseGlyf(otf, t, b, offset, size, ec)
	case T("kern"):
		return parseKern(t, b, offset, size, ec)
	case T("GPOS"):
		return parseGPos(t, b, offset, size, ec)
	}
	return newTable(t, b, offset, size), nil
}

// --- Head table ------------------------------------------------------------

func parseHead(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size < 54 {
		return nil, ec.fail(tag, "Size", fmt.Sprintf("head table too small: %d bytes (need 54)", size), offset)
	}
	t := newHeadTable(tag, b, offset, size)
	t.Flags = u16(b[16:])      // flags
	t.UnitsPerEm = u16(b[18:]) // units per em
	t.XMin, t.YMin = int16(u16(b[36:])), int16(u16(b[38:]))
	t.XMax, t.YMax = int16(u16(b[40:])), int16(u16(b[42:]))
	t.MacStyle = u16(b[44:])
	// IndexToLocFormat is needed to interpret the loca table:
	// 0 for short offsets, 1 for long
	t.IndexToLocFormat = u16(b[50:])
	if t.UnitsPerEm < 16 || t.UnitsPerEm > 16384 {
		ec.addWarning(tag, fmt.Sprintf("unitsPerEm %d outside of [16…16384]", t.UnitsPerEm), offset+18)
	}
	return t, nil
}

// --- MaxP table ------------------------------------------------------------

// This table establishes the memory requirements for this font. Fonts with CFF data
// must use Version 0.5 of this table, specifying only the numGlyphs field. Fonts
// with TrueType outlines must use Version 1.0 of this table, where all data is required.
func parseMaxP(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size < 6 {
		return nil, ec.fail(tag, "Size", fmt.Sprintf("maxp table too small: %d bytes (need 6)", size), offset)
	}
	t := newMaxPTable(tag, b, offset, size)
	t.NumGlyphs = int(u16(b[4:]))
	return t, nil
}

// --- HHea table ------------------------------------------------------------

// This table contains information for horizontal layout.
func parseHHea(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	tracer().Debugf("HHea table has size %d", size)
	if size < 36 {
		return nil, ec.fail(tag, "Size", fmt.Sprintf("hhea table too small: %d bytes (need 36)", size), offset)
	}
	t := newHHeaTable(tag, b, offset, size)
	t.Ascender = int16(u16(b[4:]))
	t.Descender = int16(u16(b[6:]))
	t.LineGap = int16(u16(b[8:]))
	t.AdvanceWidthMax = u16(b[10:])
	t.MinLeftSideBearing = int16(u16(b[12:]))
	t.MinRightSideBearing = int16(u16(b[14:]))
	t.XMaxExtent = int16(u16(b[16:]))
	t.CaretSlopeRise = int16(u16(b[18:]))
	t.CaretSlopeRun = int16(u16(b[20:]))
	t.CaretOffset = int16(u16(b[22:]))
	t.NumberOfHMetrics = int(u16(b[34:]))
	return t, nil
}

// --- HMtx table ------------------------------------------------------------

// Dependencies (taken from Apple Developer page about TrueType):
// The value of the numOfLongHorMetrics field is found in the 'hhea' (Horizontal Header)
// table. Fonts that lack an 'hhea' table must not have an 'hmtx' table.
func parseHMtx(otf *Font, tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if otf.HHea == nil || otf.MaxP == nil {
		return nil, ec.fail(tag, "Dependencies", "hmtx requires tables hhea and maxp", offset)
	}
	t := newHMtxTable(tag, b, offset, size)
	if err := t.parseAll(otf.MaxP.NumGlyphs, otf.HHea.NumberOfHMetrics); err != nil {
		return nil, ec.fail(tag, "Size", err.Error(), offset)
	}
	return t, nil
}

// --- OS/2 table ------------------------------------------------------------

// The OS/2 table consists of a set of metrics and other data that are required
// in OpenType fonts. Version 0 of the table has 78 bytes; versions 2 and later
// add x-height and cap-height at offsets 86 and 88.
func parseOS2(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size < 78 {
		return nil, ec.fail(tag, "Size", fmt.Sprintf("OS/2 table too small: %d bytes (need 78)", size), offset)
	}
	t := newOS2Table(tag, b, offset, size)
	t.Version = u16(b)
	t.XAvgCharWidth = int16(u16(b[2:]))
	t.WeightClass = u16(b[4:])
	t.WidthClass = u16(b[6:])
	t.FsType = u16(b[8:])
	t.FsSelection = u16(b[62:])
	t.TypoAscender = int16(u16(b[68:]))
	t.TypoDescender = int16(u16(b[70:]))
	t.TypoLineGap = int16(u16(b[72:]))
	t.WinAscent = u16(b[74:])
	t.WinDescent = u16(b[76:])
	if t.Version >= 2 {
		if size < 90 {
			ec.addWarning(tag, fmt.Sprintf("OS/2 version %d truncated to %d bytes", t.Version, size), offset)
		} else {
			t.XHeight = int16(u16(b[86:]))
			t.CapHeight = int16(u16(b[88:]))
		}
	}
	if t.WidthClass < 1 || t.WidthClass > 9 {
		ec.addWarning(tag, fmt.Sprintf("usWidthClass %d outside of [1…9]", t.WidthClass), offset+6)
	}
	return t, nil
}

// --- Loca and glyf tables --------------------------------------------------

// Dependencies (taken from Apple Developer page about TrueType):
// The size of entries in the 'loca' table must be appropriate for the value of the
// indexToLocFormat field of the 'head' table. The number of entries must be the same
// as the numGlyphs field of the 'maxp' table, plus one.
func parseLoca(otf *Font, tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if otf.Head == nil || otf.MaxP == nil {
		return nil, ec.fail(tag, "Dependencies", "loca requires tables head and maxp", offset)
	}
	t := newLocaTable(tag, b, offset, size)
	t.locCnt = otf.MaxP.NumGlyphs + 1
	entrySize := 2
	switch otf.Head.IndexToLocFormat {
	case 0:
	case 1:
		entrySize = 4
		t.inx2loc = longLocaVersion
	default:
		return nil, ec.fail(T("head"), "IndexToLocFormat",
			fmt.Sprintf("invalid value: %d (must be 0 or 1)", otf.Head.IndexToLocFormat), otf.Head.offset+50)
	}
	expected, err := checkedMulInt(t.locCnt, entrySize)
	if err != nil || int(size) < expected {
		return nil, ec.fail(tag, "Size",
			fmt.Sprintf("table size (%d) insufficient for %d glyphs (need %d)", size, otf.MaxP.NumGlyphs, expected),
			offset)
	}
	return t, nil
}

// The glyf table depends on loca to find glyph data blocks.
func parseGlyf(otf *Font, tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if otf.Loca == nil {
		return nil, ec.fail(tag, "Dependencies", "glyf requires a valid loca table", offset)
	}
	t := newGlyfTable(tag, b, offset, size)
	t.loca = otf.Loca
	if _, last, ok := otf.Loca.GlyphRange(GlyphIndex(otf.Loca.locCnt - 2)); ok && last > size {
		ec.addWarning(tag, fmt.Sprintf("loca points beyond glyf table end (%d > %d)", last, size), offset)
	}
	return t, nil
}
