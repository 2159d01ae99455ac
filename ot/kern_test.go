package ot

import (
	"encoding/binary"
	"testing"

	"github.com/npillmayer/otface/internal/fontbuild"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestKernPairs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	fb := testFont()
	fb.Kern = []fontbuild.Pair{
		{Left: 3, Right: 2, Value: -80}, // V A
		{Left: 2, Right: 3, Value: -70}, // A V
		{Left: 4, Right: 4, Value: 15},
	}
	otf, err := Parse(fb.Build())
	if err != nil {
		t.Fatal(err)
	}
	if otf.Kern == nil || otf.Kern.SubTableCount() != 1 {
		t.Fatalf("expected kern table with 1 sub-table")
	}
	tests := []struct {
		l, r  GlyphIndex
		value int16
		found bool
	}{
		{2, 3, -70, true},
		{3, 2, -80, true},
		{4, 4, 15, true},
		{2, 2, 0, false},
		{0, 0, 0, false},
		{5, 3, 0, false},
	}
	for _, tt := range tests {
		v, ok := otf.Kern.Pair(tt.l, tt.r)
		if v != tt.value || ok != tt.found {
			t.Errorf("kern(%d,%d): expected %d/%v, have %d/%v", tt.l, tt.r, tt.value, tt.found, v, ok)
		}
	}
}

// kernSubTable writes an MS style kern sub-table of format 0.
func kernSubTable(coverage uint16, pairs ...[3]int) []byte {
	b := []byte{0, 0}
	b = binary.BigEndian.AppendUint16(b, uint16(14+6*len(pairs)))
	b = binary.BigEndian.AppendUint16(b, coverage)
	b = binary.BigEndian.AppendUint16(b, uint16(len(pairs)))
	b = append(b, 0, 0, 0, 0, 0, 0)
	for _, p := range pairs {
		b = binary.BigEndian.AppendUint16(b, uint16(p[0]))
		b = binary.BigEndian.AppendUint16(b, uint16(p[1]))
		b = binary.BigEndian.AppendUint16(b, uint16(int16(p[2])))
	}
	return b
}

func TestKernAccumulate(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	kern := []byte{0, 0, 0, 4}
	kern = append(kern, kernSubTable(0x0001, [3]int{2, 3, -50}, [3]int{3, 2, -20})...)
	kern = append(kern, kernSubTable(0x0001, [3]int{2, 3, -10})...)
	kern = append(kern, kernSubTable(0x0009, [3]int{3, 2, -40})...) // override
	kern = append(kern, kernSubTable(0x0000, [3]int{2, 3, -99})...) // vertical
	fb := testFont()
	fb.Raw = map[string][]byte{"kern": kern}
	otf, err := Parse(fb.Build())
	if err != nil {
		t.Fatal(err)
	}
	if otf.Kern.SubTableCount() != 3 {
		t.Errorf("expected 3 horizontal sub-tables, have %d", otf.Kern.SubTableCount())
	}
	if v, ok := otf.Kern.Pair(2, 3); !ok || v != -60 {
		t.Errorf("expected kerning A-V to accumulate to -60, is %d", v)
	}
	if v, ok := otf.Kern.Pair(3, 2); !ok || v != -40 {
		t.Errorf("expected kerning V-A to be overridden to -40, is %d", v)
	}
}

func TestKernApple(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	kern := []byte{0, 1, 0, 0, 0, 0, 0, 1}
	kern = binary.BigEndian.AppendUint32(kern, 16+6*2)
	kern = append(kern, 0, 0, 0, 0) // coverage: horizontal, format 0; tuple index
	kern = append(kern, 0, 2, 0, 0, 0, 0, 0, 0)
	kern = append(kern, 0, 2, 0, 3, 0xff, 0x9c) // -100
	kern = append(kern, 0, 3, 0, 2, 0, 0x0c)    // 12
	fb := testFont()
	fb.Raw = map[string][]byte{"kern": kern}
	otf, err := Parse(fb.Build())
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := otf.Kern.Pair(2, 3); !ok || v != -100 {
		t.Errorf("expected kerning -100, is %d", v)
	}
	if v, ok := otf.Kern.Pair(3, 2); !ok || v != 12 {
		t.Errorf("expected kerning 12, is %d", v)
	}
}

func TestKernLengthMismatch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	sub := kernSubTable(0x0001, [3]int{2, 3, -50})
	binary.BigEndian.PutUint16(sub[2:], 0xffff) // bogus length, like in Calibri
	kern := append([]byte{0, 0, 0, 1}, sub...)
	fb := testFont()
	fb.Raw = map[string][]byte{"kern": kern}
	otf, err := Parse(fb.Build())
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := otf.Kern.Pair(2, 3); !ok || v != -50 {
		t.Errorf("expected kerning -50, is %d", v)
	}
	if len(otf.Warnings()) == 0 {
		t.Errorf("expected warning for sub-table length mismatch")
	}
}
