package ot

import (
	"fmt"
)

// Font represents the internal structure of a single OpenType font, i.e. one
// face of a font file or a font collection.
//
// Tables which are interpreted by this package are available as typed fields.
// A typed field is nil if the table is absent from the font, has been ignored
// during parsing, or could not be interpreted. In the latter case,
// TableError reports the reason.
type Font struct {
	Header        *FontHeader
	Offset        uint32 // offset of the table directory within the font binary
	tables        map[Tag]Table
	order         []Tag // tags in directory order
	tableErrors   map[Tag]error
	Head          *HeadTable // font header
	HHea          *HHeaTable // horizontal header
	MaxP          *MaxPTable // glyph count
	HMtx          *HMtxTable // horizontal metrics
	OS2           *OS2Table  // OS/2 and Windows metrics
	CMap          *CMapTable // code-point to glyph mapping
	Name          *NameTable // naming table
	Kern          *KernTable // legacy kerning
	GPos          *GPosTable // pair adjustment positioning
	Loca          *LocaTable // glyph locations
	Glyf          *GlyfTable // glyph headers
	parseErrors   []FontError
	parseWarnings []FontWarning
}

// FontHeader is a directory of the top-level tables in a font. If the font file
// contains only one font, the table directory will begin at byte 0 of the file.
// If the font file is an OpenType Font Collection file, the beginning
// point of the table directory for each font is indicated in the TTCHeader.
//
// OpenType fonts that contain TrueType outlines should use the value of 0x00010000
// for the FontType. OpenType fonts containing CFF data (version 1 or 2) should
// use 0x4F54544F ('OTTO', when re-interpreted as a Tag).
// The Apple specification for TrueType fonts allows for 'true' and 'typ1',
// but these version tags should not be used for OpenType fonts.
type FontHeader struct {
	FontType      uint32
	TableCount    uint16
	SearchRange   uint16
	EntrySelector uint16
	RangeShift    uint16
}

// Table returns the font table for a given tag. If a table for a tag cannot
// be found in the font, nil is returned.
//
// `Table` will return at least a generic table type for each table contained in
// the font, including tables which have not been interpreted.
//
// Table tag names are case-sensitive, following the names in the OpenType specification.
func (otf *Font) Table(tag Tag) Table {
	if t, ok := otf.tables[tag]; ok {
		return t
	}
	return nil
}

// TableTags returns a list of tags, one for each table contained in the font,
// in the order of the font's table directory.
func (otf *Font) TableTags() []Tag {
	tags := make([]Tag, len(otf.order))
	copy(tags, otf.order)
	return tags
}

// TableError returns the error which prevented table tag from being interpreted,
// or nil.
func (otf *Font) TableError(tag Tag) error {
	return otf.tableErrors[tag]
}

// NumGlyphs returns the number of glyphs stated in table 'maxp', or 0.
func (otf *Font) NumGlyphs() int {
	if otf.MaxP == nil {
		return 0
	}
	return otf.MaxP.NumGlyphs
}

// Errors returns all errors encountered during font parsing, including
// errors of optional tables which have been dropped.
func (otf *Font) Errors() []FontError {
	return otf.parseErrors
}

// ErrorsOf returns the errors encountered during font parsing which have the
// given severity.
func (otf *Font) ErrorsOf(severity ErrorSeverity) []FontError {
	return errorsOf(otf.parseErrors, severity)
}

// Warnings returns all warnings encountered during font parsing.
func (otf *Font) Warnings() []FontWarning {
	return otf.parseWarnings
}

// GlyphIndex is a glyph index in a font.
type GlyphIndex uint16

// --- Tag -------------------------------------------------------------------

// Tag is defined by OpenType as:
// Array of four uint8s (length = 32 bits) used to identify a table, design-variation axis,
// script, language system, feature, or baseline
type Tag uint32

// Well-known values for the sfnt version field and collection headers.
const (
	TagTrueType   Tag = 0x00010000 // TrueType outlines
	TagTrue       Tag = 0x74727565 // 'true', Apple TrueType
	TagOpenType   Tag = 0x4f54544f // 'OTTO', CFF outlines
	TagCollection Tag = 0x74746366 // 'ttcf'
)

// MakeTag creates a Tag from 4 bytes, e.g.,
// If b is shorter or longer, it will be silently extended or cut as appropriate
//
//	MakeTag([]byte("cmap"))
func MakeTag(b []byte) Tag {
	if b == nil {
		b = []byte{0, 0, 0, 0}
	} else if len(b) > 4 {
		b = b[:4]
	} else if len(b) < 4 {
		b = append([]byte{0, 0, 0, 0}[:4-len(b)], b...)
	}
	return Tag(u32(b))
}

// T returns a Tag from a (4-letter) string.
// If t is shorter or longer, it will be silently extended or cut as appropriate
func T(t string) Tag {
	t = (t + "    ")[:4]
	return Tag(u32([]byte(t)))
}

func (t Tag) String() string {
	bytes := []byte{
		byte(t >> 24 & 0xff),
		byte(t >> 16 & 0xff),
		byte(t >> 8 & 0xff),
		byte(t & 0xff),
	}
	return string(bytes)
}

// --- Table -----------------------------------------------------------------

// Table represents one of the various OpenType font tables.
type Table interface {
	Extent() (uint32, uint32) // offset and byte size within the font's binary data
	Binary() []byte           // the bytes of this table; should be treated as read-only by clients
	Self() TableSelf          // reference to itself
}

func newTable(tag Tag, b binarySegm, offset, size uint32) *genericTable {
	t := &genericTable{}
	t.tableBase = makeTableBase(tag, b, offset, size)
	t.self = t
	return t
}

type genericTable struct {
	tableBase
}

// tableBase is a common parent for all kinds of OpenType tables.
type tableBase struct {
	data   binarySegm // a table is a slice of font data
	name   Tag        // 4-byte name as an integer
	offset uint32     // from offset
	length uint32     // to offset + length
	self   any
}

func makeTableBase(tag Tag, b binarySegm, offset, size uint32) tableBase {
	return tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
}

// Extent returns offset and byte size of this table within the OpenType font.
func (tb *tableBase) Extent() (uint32, uint32) {
	return tb.offset, tb.length
}

// Binary returns the bytes of this table. Should be treated as read-only by
// clients, as it is a view into the original data.
func (tb *tableBase) Binary() []byte {
	return tb.data
}

func (tb *tableBase) Self() TableSelf {
	return TableSelf{tableBase: tb}
}

// TableSelf is a reference to a table. Its primary use is for converting
// a generic table to a concrete table flavour, and for reproducing the
// name tag of a table.
type TableSelf struct {
	tableBase *tableBase
}

// NameTag returns the 4-letter name of a table.
func (tself TableSelf) NameTag() Tag {
	if tself.tableBase == nil {
		return 0
	}
	return tself.tableBase.name
}

func safeSelf(tself TableSelf) any {
	if tself.tableBase == nil || tself.tableBase.self == nil {
		return nil
	}
	return tself.tableBase.self
}

// AsHead returns this table as a head table, or nil.
func (tself TableSelf) AsHead() *HeadTable {
	if t, ok := safeSelf(tself).(*HeadTable); ok {
		return t
	}
	return nil
}

// AsCMap returns this table as a cmap table, or nil.
func (tself TableSelf) AsCMap() *CMapTable {
	if t, ok := safeSelf(tself).(*CMapTable); ok {
		return t
	}
	return nil
}

// AsHHea returns this table as a hhea table, or nil.
func (tself TableSelf) AsHHea() *HHeaTable {
	if t, ok := safeSelf(tself).(*HHeaTable); ok {
		return t
	}
	return nil
}

// AsHMtx returns this table as a hmtx table, or nil.
func (tself TableSelf) AsHMtx() *HMtxTable {
	if t, ok := safeSelf(tself).(*HMtxTable); ok {
		return t
	}
	return nil
}

// AsMaxP returns this table as a maxp table, or nil.
func (tself TableSelf) AsMaxP() *MaxPTable {
	if t, ok := safeSelf(tself).(*MaxPTable); ok {
		return t
	}
	return nil
}

// AsOS2 returns this table as an OS/2 table, or nil.
func (tself TableSelf) AsOS2() *OS2Table {
	if t, ok := safeSelf(tself).(*OS2Table); ok {
		return t
	}
	return nil
}

// AsName returns this table as a name table, or nil.
func (tself TableSelf) AsName() *NameTable {
	if t, ok := safeSelf(tself).(*NameTable); ok {
		return t
	}
	return nil
}

// AsKern returns this table as a kern table, or nil.
func (tself TableSelf) AsKern() *KernTable {
	if t, ok := safeSelf(tself).(*KernTable); ok {
		return t
	}
	return nil
}

// AsGPos returns this table as a GPOS table, or nil.
func (tself TableSelf) AsGPos() *GPosTable {
	if t, ok := safeSelf(tself).(*GPosTable); ok {
		return t
	}
	return nil
}

// AsLoca returns this table as a loca table, or nil.
func (tself TableSelf) AsLoca() *LocaTable {
	if t, ok := safeSelf(tself).(*LocaTable); ok {
		return t
	}
	return nil
}

// AsGlyf returns this table as a glyf table, or nil.
func (tself TableSelf) AsGlyf() *GlyfTable {
	if t, ok := safeSelf(tself).(*GlyfTable); ok {
		return t
	}
	return nil
}

// --- Head ------------------------------------------------------------------

// HeadTable gives global information about the font.
// Only a small subset of fields is interpreted; clients may read
// other fields from Binary().
type HeadTable struct {
	tableBase
	Flags            uint16 // see https://docs.microsoft.com/en-us/typography/opentype/spec/head
	UnitsPerEm       uint16 // values 16 … 16384 are valid
	XMin, YMin       int16  // bounding box for all glyphs
	XMax, YMax       int16
	MacStyle         uint16 // bit 0 bold, bit 1 italic, …
	IndexToLocFormat uint16 // needed to interpret loca table
}

// Bits of HeadTable.MacStyle.
const (
	MacStyleBold   = 1 << 0
	MacStyleItalic = 1 << 1
)

func newHeadTable(tag Tag, b binarySegm, offset, size uint32) *HeadTable {
	t := &HeadTable{}
	t.tableBase = makeTableBase(tag, b, offset, size)
	t.self = t
	return t
}

// IsBold reports whether the Mac style bits flag a bold face.
func (t *HeadTable) IsBold() bool {
	return t.MacStyle&MacStyleBold != 0
}

// IsItalic reports whether the Mac style bits flag an italic face.
func (t *HeadTable) IsItalic() bool {
	return t.MacStyle&MacStyleItalic != 0
}

// --- MaxP ------------------------------------------------------------------

// MaxPTable establishes the memory requirements for this font.
// The 'maxp' table contains a count for the number of glyphs in the font.
type MaxPTable struct {
	tableBase
	NumGlyphs int
}

func newMaxPTable(tag Tag, b binarySegm, offset, size uint32) *MaxPTable {
	t := &MaxPTable{}
	t.tableBase = makeTableBase(tag, b, offset, size)
	t.self = t
	return t
}

// --- HHea ------------------------------------------------------------------

// HHeaTable contains information for horizontal layout.
type HHeaTable struct {
	tableBase
	Ascender            int16
	Descender           int16
	LineGap             int16
	AdvanceWidthMax     uint16
	MinLeftSideBearing  int16
	MinRightSideBearing int16
	XMaxExtent          int16
	CaretSlopeRise      int16
	CaretSlopeRun       int16
	CaretOffset         int16
	NumberOfHMetrics    int
}

func newHHeaTable(tag Tag, b binarySegm, offset, size uint32) *HHeaTable {
	t := &HHeaTable{}
	t.tableBase = makeTableBase(tag, b, offset, size)
	t.self = t
	return t
}

// --- OS/2 ------------------------------------------------------------------

// OS2Table contains the metrics and classification fields of table 'OS/2'.
// Fields introduced by table versions later than the font's version are 0.
type OS2Table struct {
	tableBase
	Version       uint16
	XAvgCharWidth int16
	WeightClass   uint16 // 1 … 1000, 400 is regular
	WidthClass    uint16 // 1 … 9, 5 is normal
	FsType        uint16
	FsSelection   uint16
	TypoAscender  int16
	TypoDescender int16
	TypoLineGap   int16
	WinAscent     uint16
	WinDescent    uint16
	XHeight       int16 // version 2 and later
	CapHeight     int16 // version 2 and later
}

// Bits of OS2Table.FsSelection.
const (
	FsSelectionItalic         = 1 << 0
	FsSelectionBold           = 1 << 5
	FsSelectionRegular        = 1 << 6
	FsSelectionUseTypoMetrics = 1 << 7
	FsSelectionOblique        = 1 << 9
)

func newOS2Table(tag Tag, b binarySegm, offset, size uint32) *OS2Table {
	t := &OS2Table{}
	t.tableBase = makeTableBase(tag, b, offset, size)
	t.self = t
	return t
}

// UseTypoMetrics reports whether applications should prefer the typographic
// ascender, descender and line gap over the values of table 'hhea'.
func (t *OS2Table) UseTypoMetrics() bool {
	return t.FsSelection&FsSelectionUseTypoMetrics != 0
}

// IsItalic reports the italic bit of the selection flags.
func (t *OS2Table) IsItalic() bool {
	return t.FsSelection&FsSelectionItalic != 0
}

// IsOblique reports the oblique bit of the selection flags (version 4 and later).
func (t *OS2Table) IsOblique() bool {
	return t.Version >= 4 && t.FsSelection&FsSelectionOblique != 0
}

// --- HMtx ------------------------------------------------------------------

// HMtxTable contains metric information for the horizontal layout each of the glyphs in
// the font. Each element in the contained hMetrics-array has two parts: the advance width
// and left side bearing. The value NumberOfHMetrics is taken from the `hhea` table. In
// a monospaced font, only one entry is required but that entry may not be omitted.
// Optionally, an array of left side bearings follows.
// The corresponding glyphs are assumed to have the same
// advance width as that found in the last entry in the hMetrics array.
type HMtxTable struct {
	tableBase
	NumberOfHMetrics int
	numGlyphs        int
	longMetrics      []HMetricRecord
	leftSideBearings []int16
}

// HMetricRecord is one long horizontal metric record from table hmtx.
type HMetricRecord struct {
	AdvanceWidth    uint16
	LeftSideBearing int16
}

func newHMtxTable(tag Tag, b binarySegm, offset, size uint32) *HMtxTable {
	t := &HMtxTable{}
	t.tableBase = makeTableBase(tag, b, offset, size)
	t.self = t
	return t
}

func (t *HMtxTable) parseAll(numGlyphs, numberOfHMetrics int) error {
	if numGlyphs < 0 {
		return fmt.Errorf("invalid glyph count %d", numGlyphs)
	}
	if numberOfHMetrics < 1 || numberOfHMetrics > numGlyphs {
		return fmt.Errorf("invalid numberOfHMetrics %d (numGlyphs=%d)", numberOfHMetrics, numGlyphs)
	}
	longSize, err := checkedMulInt(numberOfHMetrics, 4)
	if err != nil {
		return err
	}
	required, err := checkedAddInt(longSize, (numGlyphs-numberOfHMetrics)*2)
	if err != nil {
		return err
	}
	if required > len(t.data) {
		return fmt.Errorf("hmtx table too small: need %d bytes, have %d", required, len(t.data))
	}
	longMetrics := make([]HMetricRecord, numberOfHMetrics)
	for i := 0; i < numberOfHMetrics; i++ {
		longMetrics[i] = HMetricRecord{
			AdvanceWidth:    u16(t.data[i*4:]),
			LeftSideBearing: int16(u16(t.data[i*4+2:])),
		}
	}
	lsbCount := numGlyphs - numberOfHMetrics
	leftSideBearings := make([]int16, lsbCount)
	base := numberOfHMetrics * 4
	for i := 0; i < lsbCount; i++ {
		leftSideBearings[i] = int16(u16(t.data[base+i*2:]))
	}
	t.NumberOfHMetrics = numberOfHMetrics
	t.numGlyphs = numGlyphs
	t.longMetrics = longMetrics
	t.leftSideBearings = leftSideBearings
	return nil
}

// GlyphCount returns the glyph count used when decoding this hmtx table.
func (t *HMtxTable) GlyphCount() int {
	if t == nil {
		return 0
	}
	return t.numGlyphs
}

// HMetrics returns the advance width and left side bearing for a glyph.
// For glyphs beyond NumberOfHMetrics, the advance of the last long metric record
// is returned.
func (t *HMtxTable) HMetrics(g GlyphIndex) (uint16, int16, bool) {
	if t == nil || t.numGlyphs == 0 || int(g) >= t.numGlyphs {
		return 0, 0, false
	}
	if int(g) < len(t.longMetrics) {
		m := t.longMetrics[int(g)]
		return m.AdvanceWidth, m.LeftSideBearing, true
	}
	i := int(g) - len(t.longMetrics)
	return t.longMetrics[len(t.longMetrics)-1].AdvanceWidth, t.leftSideBearings[i], true
}

// IsMonospaced reports whether all glyphs share a single advance width.
func (t *HMtxTable) IsMonospaced() bool {
	return t != nil && t.NumberOfHMetrics == 1
}

// --- Loca ------------------------------------------------------------------

// LocaTable stores the offsets to the locations of the glyphs in the font,
// relative to the beginning of the glyph data table.
// By definition, index zero points to the “missing character”, which is the character
// that appears if a character is not found in the font.
type LocaTable struct {
	tableBase
	inx2loc func(t *LocaTable, i int) uint32 // returns glyph location for entry i
	locCnt  int                              // number of locations = glyphs + 1
}

func newLocaTable(tag Tag, b binarySegm, offset, size uint32) *LocaTable {
	t := &LocaTable{}
	t.tableBase = makeTableBase(tag, b, offset, size)
	t.inx2loc = shortLocaVersion // may get changed by font consistency check
	t.self = t
	return t
}

// GlyphRange returns start and end of the data block for glyph gid within
// the 'glyf' table. For glyphs without outline, start equals end.
func (t *LocaTable) GlyphRange(gid GlyphIndex) (uint32, uint32, bool) {
	if int(gid)+1 >= t.locCnt {
		return 0, 0, false
	}
	start, end := t.inx2loc(t, int(gid)), t.inx2loc(t, int(gid)+1)
	if end < start {
		return 0, 0, false
	}
	return start, end, true
}

func shortLocaVersion(t *LocaTable, i int) uint32 {
	loc, err := t.data.u16(i * 2)
	if err != nil {
		return 0
	}
	return uint32(loc) * 2
}

func longLocaVersion(t *LocaTable, i int) uint32 {
	loc, err := t.data.u32(i * 4)
	if err != nil {
		return 0
	}
	return loc
}

// --- Glyf ------------------------------------------------------------------

// GlyfTable holds the glyph data of fonts with TrueType outlines.
// We do not interpret outlines, but only glyph headers.
type GlyfTable struct {
	tableBase
	loca *LocaTable
}

// GlyphHeader is the header of a glyph data block in table 'glyf'.
type GlyphHeader struct {
	NumberOfContours int16 // negative for composite glyphs
	XMin, YMin       int16
	XMax, YMax       int16
}

func newGlyfTable(tag Tag, b binarySegm, offset, size uint32) *GlyfTable {
	t := &GlyfTable{}
	t.tableBase = makeTableBase(tag, b, offset, size)
	t.self = t
	return t
}

// Header returns the header of glyph gid. Glyphs without outline (e.g., space)
// have an all-zero header.
func (t *GlyfTable) Header(gid GlyphIndex) (GlyphHeader, bool) {
	if t == nil || t.loca == nil {
		return GlyphHeader{}, false
	}
	start, end, ok := t.loca.GlyphRange(gid)
	if !ok {
		return GlyphHeader{}, false
	}
	if start == end {
		return GlyphHeader{}, true
	}
	if end-start < 10 {
		return GlyphHeader{}, false
	}
	b, err := t.data.view(int(start), 10)
	if err != nil {
		return GlyphHeader{}, false
	}
	return GlyphHeader{
		NumberOfContours: int16(u16(b)),
		XMin:             int16(u16(b[2:])),
		YMin:             int16(u16(b[4:])),
		XMax:             int16(u16(b[6:])),
		YMax:             int16(u16(b[8:])),
	}, true
}
