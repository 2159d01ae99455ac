package otquery

import (
	"testing"

	"github.com/npillmayer/otface"
	"github.com/npillmayer/otface/internal/fontbuild"
	"github.com/npillmayer/otface/ot"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/suite"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

// --- Test Suite Preparation ------------------------------------------------

type InfoTestEnviron struct {
	suite.Suite
	tf *otface.Typeface // synthetic font
	gr *otface.Typeface // Go Regular
}

// listen for 'go test' command --> run test methods
func TestInfoFunctions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otquery")
	defer teardown()
	suite.Run(t, new(InfoTestEnviron))
}

// run once, before test suite methods
func (env *InfoTestEnviron) SetupSuite() {
	env.T().Log("Setting up test suite")
	tracing.Select("font.otface").SetTraceLevel(tracing.LevelError)
	var err error
	env.tf, err = otface.Load(testBuilder().Build(), otface.Options{})
	env.Require().NoError(err)
	env.gr, err = otface.Load(goregular.TTF, otface.Options{})
	env.Require().NoError(err)
	tracing.Select("font.otface").SetTraceLevel(tracing.LevelInfo)
}

// run once, after test suite methods
func (env *InfoTestEnviron) TearDownSuite() {
	env.T().Log("Tearing down test suite")
}

// --- Tests -----------------------------------------------------------------

func (env *InfoTestEnviron) TestFontTypeInfo() {
	env.Equal("TrueType", FontType(env.tf), "expected font type of test font to be TrueType")
	env.Equal("TrueType", FontType(env.gr))
}

func (env *InfoTestEnviron) TestGeneralInfo() {
	info := NameInfo(env.tf)
	env.T().Logf("info = %v", info)
	fam, ok := info["family"]
	env.Require().True(ok, "font family identifier not found in font info")
	env.Equal("Quaestor", fam, "expected font family name 'Quaestor'")
	env.Equal("Book", info["subfamily"])
	env.NotContains(info, "copyright")
	info = NameInfo(env.gr)
	env.Contains(info["family"], "Go")
}

func (env *InfoTestEnviron) TestNamesRange() {
	names := map[ot.NameID]string{}
	for id, s := range NamesRange(env.tf) {
		names[id] = s
	}
	env.Equal(map[ot.NameID]string{ot.NameFamily: "Quaestor", ot.NameSubfamily: "Book"}, names)
	n := 0
	for range NamesRange(env.gr) {
		n++
		break
	}
	env.Equal(1, n, "expected iteration to stop early")
}

func (env *InfoTestEnviron) TestHeadInfo() {
	h, ok := HeadInfo(env.tf)
	env.Require().True(ok, "expected to decode table 'head'")
	env.Equal(uint16(1000), h.UnitsPerEm)
	env.Equal(uint32(0x5F0F3CF5), h.MagicNumber, "expected OpenType head magic number")
	env.Equal(1.0, h.Revision())
	env.Equal(1904, h.CreatedAt().Year())
	env.Equal(int16(-120), h.YMin)
	env.Equal(int16(700), h.YMax)
	//
	h, ok = HeadInfo(env.gr)
	env.Require().True(ok)
	headTable := env.gr.Font().Head
	env.Equal(headTable.Flags, h.Flags, "expected matching Flags")
	env.Equal(headTable.UnitsPerEm, h.UnitsPerEm, "expected matching UnitsPerEm")
	env.Equal(int16(headTable.IndexToLocFormat), h.IndexToLocFormat, "expected matching IndexToLocFormat")
}

func (env *InfoTestEnviron) TestMaxPInfo() {
	m, ok := MaxPInfo(env.tf)
	env.Require().True(ok, "expected to decode table 'maxp'")
	env.Equal(uint16(4), m.NumGlyphs)
	env.False(m.HasExtendedProfile, "version 0.5 has no TrueType profile")
	//
	m, ok = MaxPInfo(env.gr)
	env.Require().True(ok)
	env.Equal(uint16(env.gr.GlyphCount()), m.NumGlyphs, "expected matching numGlyphs")
	env.True(m.HasExtendedProfile)
	env.NotZero(m.MaxPoints)
}

func (env *InfoTestEnviron) TestLayoutInfo() {
	env.Equal([]string{"GPOS", "kern"}, LayoutTables(env.tf))
}

func (env *InfoTestEnviron) TestFontMetrics() {
	m := FontMetrics(env.tf)
	env.Equal(FontMetricsInfo{
		UnitsPerEm: 1000,
		Ascent:     800,
		Descent:    -200,
		LineGap:    90,
		MaxAdvance: 640,
		XHeight:    480,
	}, m)
}

func (env *InfoTestEnviron) TestReverseLookup() {
	env.Equal('B', CodePointForGlyph(env.tf, 2), "expected code-point for glyph 2")
	env.Equal(rune(0), CodePointForGlyph(env.tf, 0))
	gid := env.gr.GlyphIDForCodePoint('A')
	env.Equal('A', CodePointForGlyph(env.gr, ot.GlyphIndex(gid)))
}

func (env *InfoTestEnviron) TestGlyphMetrics() {
	m := GlyphMetrics(env.tf, 2)
	env.Equal(GlyphMetricsInfo{
		Advance: 640,
		LSB:     40,
		RSB:     40,
		BBox:    BoundingBox{MinX: 40, MinY: 0, MaxX: 600, MaxY: 700},
	}, m)
	env.Equal(sfnt.Units(560), m.BBox.Dx())
	env.Equal(sfnt.Units(700), m.BBox.Dy())
	space := GlyphMetrics(env.tf, 1)
	env.True(space.BBox.Empty())
	env.Zero(space.RSB)
	env.Equal(GlyphMetricsInfo{}, GlyphMetrics(env.tf, 99))
}

func (env *InfoTestEnviron) TestSkippedTables() {
	tf, err := otface.Load(testBuilder().Build(), otface.Options{SkipTables: otface.SkipName | otface.SkipHmtx})
	env.Require().NoError(err)
	env.Empty(NameInfo(tf))
	for range NamesRange(tf) {
		env.Fail("expected no names")
	}
	env.Equal(sfnt.Units(0), GlyphMetrics(tf, 2).Advance)
}

// --- Helpers ----------------------------------------------------------

// testBuilder describes a font with glyphs .notdef, space, 'B' and 'x'.
func testBuilder() fontbuild.Builder {
	return fontbuild.Builder{
		NumGlyphs: 4,
		Ascender:  800,
		Descender: -200,
		LineGap:   90,
		Advances:  []uint16{500, 250, 640, 520},
		LSBs:      []int16{50, 0, 40, 30},
		CMap:      map[rune]uint16{' ': 1, 'B': 2, 'x': 3},
		Boxes: []fontbuild.Box{
			{XMin: 50, YMin: -120, XMax: 450, YMax: 650},
			{},
			{XMin: 40, YMin: 0, XMax: 600, YMax: 700},
			{XMin: 30, YMin: 0, XMax: 490, YMax: 480},
		},
		Kern:      []fontbuild.Pair{{Left: 2, Right: 3, Value: -20}},
		GPosPairs: []fontbuild.Pair{{Left: 2, Right: 3, Value: -25}},
		OS2:       &fontbuild.OS2{WeightClass: 400, WidthClass: 5},
		Names: map[uint16]string{
			uint16(ot.NameFamily):    "Quaestor",
			uint16(ot.NameSubfamily): "Book",
		},
	}
}
