package fontbuild

import "sort"

type mapping struct {
	cp  uint32
	gid uint16
}

func (fb Builder) mappings() []mapping {
	m := make([]mapping, 0, len(fb.CMap))
	for r, g := range fb.CMap {
		m = append(m, mapping{uint32(r), g})
	}
	sort.Slice(m, func(i, j int) bool { return m[i].cp < m[j].cp })
	return m
}

func (fb Builder) cmap() []byte {
	m := fb.mappings()
	format := fb.CMapFormat
	if fb.CMapFormat0 {
		format = 0
	} else if format == 0 {
		format = 4
	}
	if len(m) > 0 && m[len(m)-1].cp > 0xffff {
		format = 12
	}
	pid, eid := fb.CMapPlatform, fb.CMapEncoding
	if pid == 0 && eid == 0 {
		pid, eid = 3, 1
		if format == 12 {
			eid = 10
		}
	}
	var sub []byte
	switch format {
	case 0:
		sub = cmapFormat0(m)
	case 6:
		sub = cmapFormat6(m)
	case 12:
		sub = cmapFormat12(m)
	default:
		sub = cmapFormat4(m, fb.CMapRangeOffsets)
	}
	w := &writer{}
	w.u16(0) // version
	w.u16(1) // one encoding record
	w.u16(pid)
	w.u16(eid)
	w.u32(12)
	w.bytes(sub)
	return w.b
}

func cmapFormat0(m []mapping) []byte {
	w := &writer{}
	w.u16(0)
	w.u16(262)
	w.u16(0) // language
	glyphs := make([]byte, 256)
	for _, e := range m {
		if e.cp < 256 {
			glyphs[e.cp] = byte(e.gid)
		}
	}
	w.bytes(glyphs)
	return w.b
}

func cmapFormat6(m []mapping) []byte {
	w := &writer{}
	first, last := uint32(0), uint32(0)
	if len(m) > 0 {
		first, last = m[0].cp, m[len(m)-1].cp
	}
	count := 0
	if len(m) > 0 {
		count = int(last - first + 1)
	}
	w.u16(6)
	w.u16(uint16(10 + 2*count))
	w.u16(0)
	w.u16(uint16(first))
	w.u16(uint16(count))
	glyphs := make([]uint16, count)
	for _, e := range m {
		glyphs[e.cp-first] = e.gid
	}
	for _, g := range glyphs {
		w.u16(g)
	}
	return w.b
}

type segment struct {
	start, end uint32
	gids       []uint16
}

// segments groups consecutive code-points. With contiguous set, glyph IDs have
// to be consecutive as well.
func segments(m []mapping, contiguous bool) []segment {
	var segs []segment
	for _, e := range m {
		if n := len(segs); n > 0 {
			s := &segs[n-1]
			if e.cp == s.end+1 && (!contiguous || e.gid == s.gids[len(s.gids)-1]+1) {
				s.end = e.cp
				s.gids = append(s.gids, e.gid)
				continue
			}
		}
		segs = append(segs, segment{start: e.cp, end: e.cp, gids: []uint16{e.gid}})
	}
	return segs
}

func cmapFormat4(m []mapping, rangeOffsets bool) []byte {
	segs := segments(m, !rangeOffsets)
	segs = append(segs, segment{start: 0xffff, end: 0xffff, gids: []uint16{0}})
	n := len(segs)
	w := &writer{}
	w.u16(4)
	w.u16(0) // length, patched below
	w.u16(0) // language
	w.u16(uint16(2 * n))
	searchRange, entrySelector := 1, 0
	for searchRange*2 <= n {
		searchRange *= 2
		entrySelector++
	}
	w.u16(uint16(2 * searchRange))
	w.u16(uint16(entrySelector))
	w.u16(uint16(2*n - 2*searchRange))
	for _, s := range segs {
		w.u16(uint16(s.end))
	}
	w.u16(0) // reserved pad
	for _, s := range segs {
		w.u16(uint16(s.start))
	}
	var glyphIDs []uint16
	rangeOffs := make([]uint16, n)
	for i, s := range segs {
		if rangeOffsets && i < n-1 {
			w.u16(0)
			rangeOffs[i] = uint16(2*(n-i) + 2*len(glyphIDs))
			glyphIDs = append(glyphIDs, s.gids...)
			continue
		}
		w.u16(s.gids[0] - uint16(s.start)) // id delta
	}
	for _, ro := range rangeOffs {
		w.u16(ro)
	}
	for _, g := range glyphIDs {
		w.u16(g)
	}
	w.putU16(2, uint16(len(w.b)))
	return w.b
}

func cmapFormat12(m []mapping) []byte {
	segs := segments(m, true)
	w := &writer{}
	w.u16(12)
	w.u16(0)
	w.u32(uint32(16 + 12*len(segs)))
	w.u32(0) // language
	w.u32(uint32(len(segs)))
	for _, s := range segs {
		w.u32(s.start)
		w.u32(s.end)
		w.u32(uint32(s.gids[0]))
	}
	return w.b
}
