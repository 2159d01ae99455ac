package fontbuild

import "sort"

// gpos writes a GPOS table with script 'DFLT', a single feature 'kern' and a single
// lookup, holding a PairPos format 1 and/or a PairPos format 2 sub-table.
func (fb Builder) gpos() []byte {
	var subtables [][]byte
	if len(fb.GPosPairs) > 0 {
		subtables = append(subtables, pairPosFormat1(sortedPairs(fb.GPosPairs)))
	}
	if fb.GPosClasses != nil {
		subtables = append(subtables, pairPosFormat2(fb.GPosClasses))
	}
	// ScriptList: one script 'DFLT' with a default LangSys referencing feature 0
	scripts := &writer{}
	scripts.u16(1)
	scripts.bytes([]byte("DFLT"))
	scripts.u16(8)      // offset to Script
	scripts.u16(4)      // Script: offset to default LangSys
	scripts.u16(0)      // LangSys count
	scripts.u16(0)      // LangSys: lookup order
	scripts.u16(0xffff) // no required feature
	scripts.u16(1)
	scripts.u16(0)
	// FeatureList: feature 'kern' referencing lookup 0
	features := &writer{}
	features.u16(1)
	features.bytes([]byte("kern"))
	features.u16(8)
	features.u16(0) // feature params
	features.u16(1)
	features.u16(0)
	// LookupList with one lookup
	lookup := &writer{}
	lookupType := uint16(2)
	if fb.GPosExtension {
		lookupType = 9
	}
	lookup.u16(lookupType)
	lookup.u16(0) // lookup flag
	lookup.u16(uint16(len(subtables)))
	at := 6 + 2*len(subtables)
	if fb.GPosExtension {
		at += 8 * len(subtables) // extension sub-tables precede the pair sub-tables
		for i := range subtables {
			lookup.u16(uint16(6 + 2*len(subtables) + 8*i))
		}
		for i, sub := range subtables {
			lookup.u16(1) // extension format
			lookup.u16(2) // extension lookup type
			lookup.u32(uint32(at - (6 + 2*len(subtables) + 8*i)))
			at += len(sub)
		}
	} else {
		for _, sub := range subtables {
			lookup.u16(uint16(at))
			at += len(sub)
		}
	}
	for _, sub := range subtables {
		lookup.bytes(sub)
	}
	lookups := &writer{}
	lookups.u16(1)
	lookups.u16(4)
	lookups.bytes(lookup.b)

	w := &writer{}
	w.u32(0x00010000)
	w.u16(10)
	w.u16(uint16(10 + len(scripts.b)))
	w.u16(uint16(10 + len(scripts.b) + len(features.b)))
	w.bytes(scripts.b)
	w.bytes(features.b)
	w.bytes(lookups.b)
	return w.b
}

func pairPosFormat1(pairs []Pair) []byte {
	var firsts []uint16
	sets := map[uint16][]Pair{}
	for _, p := range pairs {
		if len(sets[p.Left]) == 0 {
			firsts = append(firsts, p.Left)
		}
		sets[p.Left] = append(sets[p.Left], p)
	}
	w := &writer{}
	w.u16(1)
	w.u16(0) // coverage offset, patched below
	w.u16(0x0004)
	w.u16(0)
	w.u16(uint16(len(firsts)))
	at := 10 + 2*len(firsts)
	for _, g := range firsts {
		w.u16(uint16(at))
		at += 2 + 4*len(sets[g])
	}
	for _, g := range firsts {
		w.u16(uint16(len(sets[g])))
		for _, p := range sets[g] {
			w.u16(p.Right)
			w.i16(p.Value)
		}
	}
	w.putU16(2, uint16(len(w.b)))
	w.bytes(coverageFormat1(firsts))
	return w.b
}

func pairPosFormat2(ck *ClassKerning) []byte {
	class1Count := len(ck.Values)
	class2Count := 0
	if class1Count > 0 {
		class2Count = len(ck.Values[0])
	}
	w := &writer{}
	w.u16(2)
	w.u16(0) // coverage, patched
	w.u16(0x0004)
	w.u16(0)
	w.u16(0) // class def 1, patched
	w.u16(0) // class def 2, patched
	w.u16(uint16(class1Count))
	w.u16(uint16(class2Count))
	for _, row := range ck.Values {
		for _, v := range row {
			w.i16(v)
		}
	}
	var covered []uint16
	for g := range ck.Left {
		covered = append(covered, g)
	}
	sort.Slice(covered, func(i, j int) bool { return covered[i] < covered[j] })
	w.putU16(2, uint16(len(w.b)))
	w.bytes(coverageFormat1(covered))
	w.putU16(8, uint16(len(w.b)))
	w.bytes(classDefFormat2(ck.Left))
	w.putU16(10, uint16(len(w.b)))
	w.bytes(classDefFormat2(ck.Right))
	return w.b
}

func coverageFormat1(glyphs []uint16) []byte {
	w := &writer{}
	w.u16(1)
	w.u16(uint16(len(glyphs)))
	for _, g := range glyphs {
		w.u16(g)
	}
	return w.b
}

func classDefFormat2(classes map[uint16]uint16) []byte {
	glyphs := make([]uint16, 0, len(classes))
	for g := range classes {
		glyphs = append(glyphs, g)
	}
	sort.Slice(glyphs, func(i, j int) bool { return glyphs[i] < glyphs[j] })
	w := &writer{}
	w.u16(2)
	w.u16(uint16(len(glyphs)))
	for _, g := range glyphs {
		w.u16(g)
		w.u16(g)
		w.u16(classes[g])
	}
	return w.b
}
