package ot

import (
	"fmt"
	"math/bits"
	"sort"
)

// GPosTable is a type representing an OpenType GPOS table
// (see https://docs.microsoft.com/en-us/typography/opentype/spec/gpos).
//
// We interpret only the part of GPOS relevant for pair kerning: lookups of type 2
// (pair adjustment), possibly wrapped in type 9 (extension), which are referenced
// by feature 'kern' of the font's default script.
type GPosTable struct {
	tableBase
	MajorVersion, MinorVersion uint16
	kernLookups                []pairLookup
}

// GPOS Lookup Type Enumeration
const (
	GPosLookupTypePair         = 2 // Adjust position of a pair of glyphs
	GPosLookupTypeExtensionPos = 9 // Extension mechanism for other positionings
)

// ValueFormat is a bitmask that describes which fields are present in a ValueRecord.
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#value-record
type ValueFormat uint16

const (
	ValueFormatXPlacement ValueFormat = 0x0001 // Includes horizontal adjustment for placement
	ValueFormatYPlacement ValueFormat = 0x0002 // Includes vertical adjustment for placement
	ValueFormatXAdvance   ValueFormat = 0x0004 // Includes horizontal adjustment for advance
	ValueFormatYAdvance   ValueFormat = 0x0008 // Includes vertical adjustment for advance
	ValueFormatXPlaDevice ValueFormat = 0x0010 // Includes Device table for horizontal placement
	ValueFormatYPlaDevice ValueFormat = 0x0020 // Includes Device table for vertical placement
	ValueFormatXAdvDevice ValueFormat = 0x0040 // Includes Device table for horizontal advance
	ValueFormatYAdvDevice ValueFormat = 0x0080 // Includes Device table for vertical advance
)

// size returns the size in bytes of a ValueRecord of this format.
func (vf ValueFormat) size() int {
	return 2 * bits.OnesCount16(uint16(vf&0xff))
}

// xAdvance reads the horizontal advance adjustment from a ValueRecord.
func (vf ValueFormat) xAdvance(rec binarySegm) int16 {
	if vf&ValueFormatXAdvance == 0 {
		return 0
	}
	at := 2 * bits.OnesCount16(uint16(vf&(ValueFormatXPlacement|ValueFormatYPlacement)))
	return int16(rec.U16(at))
}

type pairLookup struct {
	index     int
	subtables []pairPos
}

// pairPos is a PairPos sub-table, either of format 1 (pairs of glyphs) or
// format 2 (pairs of glyph classes).
type pairPos struct {
	format       uint16
	coverage     coverage
	vf1, vf2     ValueFormat
	data         binarySegm // sub-table bytes
	pairSets     binarySegm // format 1: offsets to PairSet tables
	pairSetCount int
	class1       classDefinitions // format 2
	class2       classDefinitions
	class1Count  int
	class2Count  int
}

func newGPosTable(tag Tag, b binarySegm, offset, size uint32) *GPosTable {
	t := &GPosTable{}
	t.tableBase = makeTableBase(tag, b, offset, size)
	t.self = t
	return t
}

// GPOS Table
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#table-organization
//
// The header holds offsets to the ScriptList, FeatureList and LookupList.
// Feature 'kern' is searched for in the default language system of script
// 'DFLT', then 'latn', then of any script. If no script references a 'kern'
// feature, all 'kern' features of the FeatureList are used.
func parseGPos(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size < 10 {
		return nil, ec.fail(tag, "Header", "GPOS header truncated", offset)
	}
	t := newGPosTable(tag, b, offset, size)
	t.MajorVersion, t.MinorVersion = u16(b), u16(b[2:])
	if t.MajorVersion != 1 {
		return nil, ec.fail(tag, "Header", fmt.Sprintf("unsupported GPOS version %d.%d",
			t.MajorVersion, t.MinorVersion), offset)
	}
	scripts, err1 := gposList(b, 4)
	features, err2 := gposList(b, 6)
	lookups, err3 := gposList(b, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return nil, ec.fail(tag, "Header", "GPOS list offsets out of bounds", offset)
	}
	kernFeatures, err := kernFeatureIndices(scripts, features)
	if err != nil {
		return nil, ec.fail(tag, "ScriptList", err.Error(), offset)
	}
	lookupIndices, err := featureLookupIndices(features, kernFeatures)
	if err != nil {
		return nil, ec.fail(tag, "FeatureList", err.Error(), offset)
	}
	lookupCount, err := lookups.u16(0)
	if err != nil {
		return nil, ec.fail(tag, "LookupList", "lookup list truncated", offset)
	}
	for _, inx := range lookupIndices {
		if inx >= int(lookupCount) {
			ec.addWarning(tag, fmt.Sprintf("feature 'kern' references non-existent lookup %d", inx), offset)
			continue
		}
		lookup, err := lookups.from(int(lookups.U16(2 + 2*inx)))
		if err != nil {
			return nil, ec.fail(tag, "LookupList", fmt.Sprintf("lookup %d out of bounds", inx), offset)
		}
		pl, err := parsePairLookup(lookup, inx)
		if err != nil {
			return nil, ec.fail(tag, "Lookup", fmt.Sprintf("lookup %d: %v", inx, err), offset)
		}
		if len(pl.subtables) > 0 {
			t.kernLookups = append(t.kernLookups, pl)
		}
	}
	tracer().Debugf("GPOS has %d pair kerning lookups", len(t.kernLookups))
	return t, nil
}

// gposList follows a 16-bit offset to a list. A NULL offset yields an empty list.
func gposList(b binarySegm, at int) (binarySegm, error) {
	offset := u16(b[at:])
	if offset == 0 {
		return binarySegm{0, 0}, nil
	}
	return b.from(int(offset))
}

// kernFeatureIndices returns the indices of features tagged 'kern' which apply to
// the default language system of the preferred script.
func kernFeatureIndices(scripts, features binarySegm) ([]int, error) {
	scriptCount, err := scripts.u16(0)
	if err != nil {
		return nil, errFontFormat("script list truncated")
	}
	featureCount, err := features.u16(0)
	if err != nil {
		return nil, errFontFormat("feature list truncated")
	}
	if scriptCount > MaxScriptCount || featureCount > MaxFeatureCount {
		return nil, errFontFormat("implausible number of scripts or features")
	}
	if _, err := scripts.view(2, 6*int(scriptCount)); err != nil && scriptCount > 0 {
		return nil, errFontFormat("script records truncated")
	}
	if _, err := features.view(2, 6*int(featureCount)); err != nil && featureCount > 0 {
		return nil, errFontFormat("feature records truncated")
	}
	isKern := func(fi uint16) bool {
		return fi < featureCount && Tag(features.U32(2+6*int(fi))) == T("kern")
	}
	// collect the 'kern' features of a script's default language system
	fromScript := func(i int) []int {
		script, err := scripts.from(int(scripts.U16(2 + 6*i + 4)))
		if err != nil {
			return nil
		}
		dflt := script.U16(0)
		if dflt == 0 {
			return nil
		}
		langSys, err := script.from(int(dflt))
		if err != nil {
			return nil
		}
		var kern []int
		n := int(langSys.U16(4))
		for j := 0; j < n; j++ {
			fi, err := langSys.u16(6 + 2*j)
			if err != nil {
				break
			}
			if isKern(fi) {
				kern = append(kern, int(fi))
			}
		}
		return kern
	}
	for _, preferred := range []Tag{T("DFLT"), T("latn")} {
		for i := 0; i < int(scriptCount); i++ {
			if Tag(scripts.U32(2+6*i)) == preferred {
				if kern := fromScript(i); len(kern) > 0 {
					return kern, nil
				}
			}
		}
	}
	for i := 0; i < int(scriptCount); i++ {
		if kern := fromScript(i); len(kern) > 0 {
			return kern, nil
		}
	}
	var kern []int
	for fi := 0; fi < int(featureCount); fi++ {
		if isKern(uint16(fi)) {
			kern = append(kern, fi)
		}
	}
	return kern, nil
}

// featureLookupIndices collects the lookup indices of a set of features, sorted
// in LookupList order.
func featureLookupIndices(features binarySegm, featureIndices []int) ([]int, error) {
	seen := make(map[int]bool)
	var lookups []int
	for _, fi := range featureIndices {
		feature, err := features.from(int(features.U16(2 + 6*fi + 4)))
		if err != nil {
			return nil, errFontFormat(fmt.Sprintf("feature %d out of bounds", fi))
		}
		n, err := feature.u16(2)
		if err != nil {
			return nil, errFontFormat(fmt.Sprintf("feature %d truncated", fi))
		}
		indices, err := feature.view(4, 2*int(n))
		if err != nil && n > 0 {
			return nil, errFontFormat(fmt.Sprintf("lookup indices of feature %d truncated", fi))
		}
		for j := 0; j < int(n); j++ {
			if li := int(u16(indices[2*j:])); !seen[li] && li < MaxLookupCount {
				seen[li] = true
				lookups = append(lookups, li)
			}
		}
	}
	sort.Ints(lookups)
	return lookups, nil
}

// parsePairLookup reads a lookup table and its pair adjustment sub-tables.
// Lookups of other types result in an empty pairLookup.
func parsePairLookup(lookup binarySegm, index int) (pairLookup, error) {
	pl := pairLookup{index: index}
	if _, err := lookup.view(0, 6); err != nil {
		return pl, errFontFormat("lookup header truncated")
	}
	lookupType, n := u16(lookup), int(u16(lookup[4:]))
	if lookupType != GPosLookupTypePair && lookupType != GPosLookupTypeExtensionPos {
		return pl, nil
	}
	if _, err := lookup.view(6, 2*n); err != nil && n > 0 {
		return pl, errFontFormat("sub-table offsets truncated")
	}
	for i := 0; i < n; i++ {
		sub, err := lookup.from(int(u16(lookup[6+2*i:])))
		if err != nil {
			return pl, errFontFormat(fmt.Sprintf("sub-table %d out of bounds", i))
		}
		if lookupType == GPosLookupTypeExtensionPos {
			// ExtensionPosFormat1: format, extensionLookupType, extensionOffset (32 bit)
			if sub.U16(0) != 1 || sub.U16(2) != GPosLookupTypePair {
				continue
			}
			if sub, err = sub.from(int(sub.U32(4))); err != nil {
				return pl, errFontFormat(fmt.Sprintf("extension sub-table %d out of bounds", i))
			}
		}
		pp, err := parsePairPos(sub)
		if err != nil {
			return pl, fmt.Errorf("sub-table %d: %w", i, err)
		}
		pl.subtables = append(pl.subtables, pp)
	}
	return pl, nil
}

// Pair adjustment positioning subtables come in two formats. Format 1 uses
// PairSet tables for the second glyph of pairs starting with a covered glyph,
// format 2 uses class definitions for both glyphs.
func parsePairPos(b binarySegm) (pairPos, error) {
	if _, err := b.view(0, 10); err != nil {
		return pairPos{}, errFontFormat("PairPos header truncated")
	}
	pp := pairPos{
		format: u16(b),
		vf1:    ValueFormat(u16(b[4:])),
		vf2:    ValueFormat(u16(b[6:])),
		data:   b,
	}
	cov, err := b.from(int(u16(b[2:])))
	if err != nil {
		return pp, errFontFormat("PairPos coverage out of bounds")
	}
	if pp.coverage, err = parseCoverage(cov); err != nil {
		return pp, err
	}
	switch pp.format {
	case 1:
		pp.pairSetCount = int(u16(b[8:]))
		if pp.pairSetCount > 0 {
			if pp.pairSets, err = b.view(10, 2*pp.pairSetCount); err != nil {
				return pp, errFontFormat("PairSet offsets truncated")
			}
		}
	case 2:
		if _, err := b.view(0, 16); err != nil {
			return pp, errFontFormat("PairPos format 2 header truncated")
		}
		cd1, err1 := b.from(int(u16(b[8:])))
		cd2, err2 := b.from(int(u16(b[10:])))
		if err1 != nil || err2 != nil {
			return pp, errFontFormat("PairPos class definitions out of bounds")
		}
		if pp.class1, err = parseClassDefinitions(cd1); err != nil {
			return pp, err
		}
		if pp.class2, err = parseClassDefinitions(cd2); err != nil {
			return pp, err
		}
		pp.class1Count, pp.class2Count = int(u16(b[12:])), int(u16(b[14:]))
		recsize := pp.vf1.size() + pp.vf2.size()
		total, err := checkedMulInt(pp.class1Count*pp.class2Count, recsize)
		if err != nil {
			return pp, errFontFormat("PairPos class records overflow")
		}
		if total > 0 {
			if _, err := b.view(16, total); err != nil {
				return pp, errFontFormat("PairPos class records truncated")
			}
		}
	default:
		return pp, errFontFormat(fmt.Sprintf("unknown PairPos format %d", pp.format))
	}
	return pp, nil
}

// lookup returns the x-advance adjustment of the first glyph of the pair.
func (pp pairPos) lookup(left, right GlyphIndex) (int16, bool) {
	inx, ok := pp.coverage.Match(left)
	if !ok {
		return 0, false
	}
	recsize := pp.vf1.size() + pp.vf2.size()
	switch pp.format {
	case 1:
		if inx >= pp.pairSetCount {
			return 0, false
		}
		set, err := pp.data.from(int(u16(pp.pairSets[2*inx:])))
		if err != nil {
			return 0, false
		}
		n := int(set.U16(0))
		size := 2 + recsize // secondGlyph, valueRecord1, valueRecord2
		recs, err := set.view(2, n*size)
		if err != nil {
			return 0, false
		}
		i := sort.Search(n, func(i int) bool {
			return GlyphIndex(u16(recs[i*size:])) >= right
		})
		if i == n || GlyphIndex(u16(recs[i*size:])) != right {
			return 0, false
		}
		return pp.vf1.xAdvance(recs[i*size+2:]), true
	case 2:
		c1, c2 := int(pp.class1.Class(left)), int(pp.class2.Class(right))
		if c1 >= pp.class1Count || c2 >= pp.class2Count {
			return 0, false
		}
		at := 16 + (c1*pp.class2Count+c2)*recsize
		rec, err := pp.data.from(at)
		if err != nil {
			return 0, false
		}
		return pp.vf1.xAdvance(rec), true
	}
	return 0, false
}

// HasKerning reports whether GPOS contains pair adjustments for feature 'kern'.
func (t *GPosTable) HasKerning() bool {
	return t != nil && len(t.kernLookups) > 0
}

// PairAdjustment returns the horizontal advance adjustment of glyph left, if
// followed by glyph right, in font units. Within a lookup, the first sub-table
// covering the pair applies; adjustments of different lookups are summed up.
func (t *GPosTable) PairAdjustment(left, right GlyphIndex) (int16, bool) {
	if t == nil {
		return 0, false
	}
	var value int16
	found := false
	for _, pl := range t.kernLookups {
		for _, pp := range pl.subtables {
			if v, ok := pp.lookup(left, right); ok {
				value += v
				found = true
				break
			}
		}
	}
	return value, found
}
