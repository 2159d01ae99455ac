package ot

import (
	"errors"
	"testing"

	"github.com/npillmayer/otface/internal/fontbuild"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func gposTestFont(extension bool) fontbuild.Builder {
	fb := testFont()
	fb.GPosPairs = []fontbuild.Pair{
		{Left: 2, Right: 3, Value: -70},
		{Left: 3, Right: 2, Value: -80},
		{Left: 3, Right: 4, Value: -25},
	}
	fb.GPosClasses = &fontbuild.ClassKerning{
		Left:   map[uint16]uint16{2: 1, 4: 1},
		Right:  map[uint16]uint16{3: 1, 5: 1},
		Values: [][]int16{{0, 0}, {0, -30}},
	}
	fb.GPosExtension = extension
	return fb
}

func TestGPosPairAdjustment(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	for _, ext := range []bool{false, true} {
		otf, err := Parse(gposTestFont(ext).Build())
		if err != nil {
			t.Fatal(err)
		}
		if otf.GPos == nil {
			t.Fatalf("expected GPOS table (extension = %v), error is %v", ext, otf.TableError(T("GPOS")))
		}
		if !otf.GPos.HasKerning() {
			t.Fatalf("expected GPOS to have kerning (extension = %v)", ext)
		}
		tests := []struct {
			l, r  GlyphIndex
			value int16
			found bool
		}{
			{2, 3, -70, true}, // format 1 sub-table comes first
			{3, 2, -80, true},
			{3, 4, -25, true},
			{4, 5, -30, true}, // class based
			{4, 3, -30, true},
			{4, 2, 0, true}, // class 0
			{1, 3, 0, false},
			{5, 5, 0, false},
		}
		for _, tt := range tests {
			v, ok := otf.GPos.PairAdjustment(tt.l, tt.r)
			if v != tt.value || ok != tt.found {
				t.Errorf("extension=%v, pair (%d,%d): expected %d/%v, have %d/%v",
					ext, tt.l, tt.r, tt.value, tt.found, v, ok)
			}
		}
	}
}

func TestGPosWithoutKernFeature(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	fb := testFont()
	// GPOS 1.0 with NULL script, feature and lookup lists
	fb.Raw = map[string][]byte{"GPOS": {0, 1, 0, 0, 0, 0, 0, 0, 0, 0}}
	otf, err := Parse(fb.Build())
	if err != nil {
		t.Fatal(err)
	}
	if otf.GPos == nil || otf.GPos.HasKerning() {
		t.Errorf("expected GPOS table without kerning")
	}
	if _, ok := otf.GPos.PairAdjustment(2, 3); ok {
		t.Errorf("expected no pair adjustment")
	}
}

func TestGPosCorrupt(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	fb := testFont()
	fb.Raw = map[string][]byte{"GPOS": {0, 3, 0, 0, 0, 10, 0, 10, 0, 10}}
	otf, err := Parse(fb.Build())
	if err != nil {
		t.Fatal(err)
	}
	if otf.GPos != nil {
		t.Errorf("expected GPOS of unknown version to be dropped")
	}
	if !errors.Is(otf.TableError(T("GPOS")), ErrFormat) {
		t.Errorf("expected format error for GPOS, have %v", otf.TableError(T("GPOS")))
	}
	// lookup list offset beyond table
	fb.Raw = map[string][]byte{"GPOS": {0, 1, 0, 0, 0, 0, 0, 0, 0x10, 0}}
	if otf, _ = Parse(fb.Build()); otf.GPos != nil {
		t.Errorf("expected GPOS with out-of-bounds lookup list to be dropped")
	}
}

func TestCoverageAndClasses(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	// format 2 coverage: glyphs 10…14 and 20…21
	cov, err := parseCoverage(binarySegm{0, 2, 0, 2, 0, 10, 0, 14, 0, 0, 0, 20, 0, 21, 0, 5})
	if err != nil {
		t.Fatal(err)
	}
	for g, want := range map[GlyphIndex]int{10: 0, 12: 2, 14: 4, 20: 5, 21: 6, 9: -1, 15: -1, 22: -1} {
		inx, ok := cov.Match(g)
		if want < 0 && ok || want >= 0 && (!ok || inx != want) {
			t.Errorf("coverage of glyph %d: expected %d, have %d/%v", g, want, inx, ok)
		}
	}
	// format 1 class definitions: glyphs 5…7 with classes 1, 2, 0
	cdef, err := parseClassDefinitions(binarySegm{0, 1, 0, 5, 0, 3, 0, 1, 0, 2, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	for g, want := range map[GlyphIndex]uint16{4: 0, 5: 1, 6: 2, 7: 0, 8: 0} {
		if c := cdef.Class(g); c != want {
			t.Errorf("class of glyph %d: expected %d, have %d", g, want, c)
		}
	}
	if _, err := parseCoverage(binarySegm{0, 3, 0, 0}); err == nil {
		t.Errorf("expected error for unknown coverage format")
	}
}
