package otface

import (
	"strings"
	"sync"
	"testing"

	"github.com/npillmayer/otface/internal/fontbuild"
	"github.com/npillmayer/otface/ot"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/suite"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

// testBuilder describes a font with 8 glyphs:
// 0 = .notdef, 1 = space, 2 = 'x', 3 = 'ÿ', 4 = 'Ā', 5 = 'A', 6 = 'V', 7 = '一'
func testBuilder() fontbuild.Builder {
	return fontbuild.Builder{
		UnitsPerEm: 2048,
		NumGlyphs:  8,
		Ascender:   1900,
		Descender:  -500,
		LineGap:    67,
		Advances:   []uint16{1000, 500, 1100, 1100, 1300, 1366},
		LSBs:       []int16{100, 0, 80, 80, 20, 10, 12, 40},
		CMap: map[rune]uint16{
			' ': 1, 'x': 2, 'ÿ': 3, 'Ā': 4, 'A': 5, 'V': 6, '一': 7,
		},
		Boxes: []fontbuild.Box{
			{XMin: 100, YMin: 0, XMax: 900, YMax: 1400},
			{},
			{XMin: 80, YMin: 0, XMax: 1020, YMax: 1062},
			{XMin: 80, YMin: -430, XMax: 1020, YMax: 1500},
			{XMin: 20, YMin: 0, XMax: 1280, YMax: 1800},
			{XMin: 10, YMin: 0, XMax: 1356, YMax: 1466},
			{XMin: 12, YMin: -2, XMax: 1354, YMax: 1466},
			{XMin: 40, YMin: 600, XMax: 1326, YMax: 760},
		},
		Kern: []fontbuild.Pair{
			{Left: 5, Right: 6, Value: -150}, // A V
			{Left: 6, Right: 5, Value: -120}, // V A
		},
		OS2: &fontbuild.OS2{
			Version:       4,
			WeightClass:   400,
			WidthClass:    5,
			TypoAscender:  1600,
			TypoDescender: -400,
			TypoLineGap:   300,
			WinAscent:     1950,
			WinDescent:    520,
			XHeight:       1082,
		},
		Names: map[uint16]string{
			uint16(ot.NameFamily):    "Fontissimo",
			uint16(ot.NameSubfamily): "Regular",
		},
	}
}

func mustLoad(t *testing.T, fb fontbuild.Builder, opts Options) *Typeface {
	t.Helper()
	tf, err := Load(fb.Build(), opts)
	if err != nil {
		t.Fatalf("cannot load test font: %v", err)
	}
	return tf
}

// countingMapper counts calls of the mapping function.
type countingMapper struct {
	mu    sync.Mutex
	calls int
	m     map[uint32]uint32
}

func (cm *countingMapper) GlyphIDForCodePoint(cp uint32) uint32 {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.calls++
	return cm.m[cp]
}

func (cm *countingMapper) count() int {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return cm.calls
}

// --- Test Suite Preparation ------------------------------------------------

type TypefaceTestEnviron struct {
	suite.Suite
	tf *Typeface
}

// listen for 'go test' command --> run test methods
func TestTypefaceFunctions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otface")
	defer teardown()
	suite.Run(t, new(TypefaceTestEnviron))
}

// run once, before test suite methods
func (env *TypefaceTestEnviron) SetupSuite() {
	env.T().Log("Setting up test suite")
	tracing.Select("font.opentype").SetTraceLevel(tracing.LevelError)
	env.tf = mustLoad(env.T(), testBuilder(), Options{})
}

// run once, after test suite methods
func (env *TypefaceTestEnviron) TearDownSuite() {
	env.T().Log("Tearing down test suite")
	env.NoError(env.tf.Close())
}

// --- Tests -----------------------------------------------------------------

func (env *TypefaceTestEnviron) TestGlyphCount() {
	env.Equal(uint32(8), env.tf.GlyphCount(), "expected glyph count from maxp")
	env.Equal(uint16(2048), env.tf.UnitsPerEm())
	env.Equal(uint32(0), env.tf.CollectionIndex())
	env.NotNil(env.tf.Table(ot.T("kern")), "expected raw access to kern table")
	env.Nil(env.tf.Table(ot.T("GSUB")))
}

func (env *TypefaceTestEnviron) TestRoundTrip() {
	env.Equal(uint32(5), env.tf.GlyphIDForCodePoint('A'))
	env.Equal(uint32(0), env.tf.GlyphIDForCodePoint('B'))
	env.Equal([]uint32{5, 6, 1, 0}, env.tf.GlyphIDsForString("AV B"))
}

func (env *TypefaceTestEnviron) TestPageBoundary() {
	env.Equal(uint32(3), env.tf.GlyphIDForCodePoint(0xff), "last code-point of page 0")
	env.Equal(uint32(4), env.tf.GlyphIDForCodePoint(0x100), "first code-point of page 1")
	env.Equal(uint32(7), env.tf.GlyphIDForCodePoint(0x4e00))
	env.Equal(uint32(0), env.tf.GlyphIDForCodePoint(0x10ffff))
	env.Equal(uint32(0), env.tf.GlyphIDForCodePoint(0x110000))
	env.Equal(uint32(0), env.tf.GlyphIDForCodePoint(0xffffffff))
}

func (env *TypefaceTestEnviron) TestAsymmetricKerning() {
	env.True(env.tf.HasKerning())
	env.Equal(float32(-75), env.tf.GlyphsHorizontalKerning(5, 6, 0.5))
	env.Equal(float32(-60), env.tf.GlyphsHorizontalKerning(6, 5, 0.5))
	env.Equal(float32(-150), env.tf.GlyphsHorizontalKerning(5, 6, 1), "cached value must not depend on scale")
	env.Equal(float32(0), env.tf.GlyphsHorizontalKerning(5, 5, 1))
	v, ok := env.tf.KerningPair(5, 5)
	env.False(ok, "expected no kerning for A-A")
	env.Zero(v)
	v, ok = env.tf.KerningPair(6, 5)
	env.True(ok)
	env.Equal(int16(-120), v)
	env.Equal(float32(0), env.tf.GlyphsHorizontalKerning(5, 1000, 1), "glyph beyond font")
}

func (env *TypefaceTestEnviron) TestKerningCache() {
	tf := mustLoad(env.T(), testBuilder(), Options{})
	env.Empty(tf.kerning)
	env.Equal(float32(-150), tf.GlyphsHorizontalKerning(5, 6, 1))
	env.Len(tf.kerning, 1, "expected one cache entry for pair A-V")
	env.Equal(int16(-150), tf.kerning[5<<16|6])
	env.Equal(float32(-75), tf.GlyphsHorizontalKerning(5, 6, 0.5))
	env.Len(tf.kerning, 1, "expected repeated query to use the cache")
	env.Equal(float32(0), tf.GlyphsHorizontalKerning(5, 5, 1))
	env.Len(tf.kerning, 2, "expected pairs without kerning to be cached")
	tf.kerning[5<<16|6] = -10 // answers come from the cache
	env.Equal(float32(-10), tf.GlyphsHorizontalKerning(5, 6, 1))
}

func (env *TypefaceTestEnviron) TestMetrics() {
	m := env.tf.Metrics(0.5, 0.5)
	env.Equal(ScaledFontMetrics{Ascender: 950, Descender: 250, LineGap: 33.5, XHeight: 541}, m)
}

func (env *TypefaceTestEnviron) TestGlyphMetrics() {
	m := env.tf.GlyphMetrics(5, 0.5, 1, 12, 12)
	env.Equal(ScaledGlyphMetrics{Ascender: 1466, Descender: 0, AdvanceWidth: 683, LeftSideBearing: 5}, m)
	m = env.tf.GlyphMetrics(3, 1, 1, 12, 12)
	env.Equal(float32(430), m.Descender, "descender of 'ÿ' is positive")
	// glyphs beyond numberOfHMetrics use the last advance
	env.Equal(float32(1366), env.tf.GlyphAdvance(7, 1, 1, 12, 12))
	// glyphs beyond the glyph count are clamped to the last glyph
	env.Equal(env.tf.GlyphMetrics(7, 1, 1, 0, 0), env.tf.GlyphMetrics(1000, 1, 1, 0, 0))
	env.False(env.tf.IsFixedWidth())
}

func (env *TypefaceTestEnviron) TestIdentity() {
	env.Equal("Fontissimo", env.tf.Family())
	env.Equal("Regular", env.tf.Variant())
	env.Equal(WeightNormal, env.tf.Weight())
	env.Equal(WidthNormal, env.tf.Width())
	env.Equal(SlopeUpright, env.tf.Slope())
	env.True(env.tf.family.IsSome(), "expected family to be memoized")
	env.True(env.tf.slope.IsSome(), "expected slope to be memoized")
}

func (env *TypefaceTestEnviron) TestNoWarnings() {
	env.Empty(env.tf.Warnings())
}

// --- Resolver --------------------------------------------------------------

func TestIdempotentResolution(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otface")
	defer teardown()
	//
	cm := &countingMapper{m: map[uint32]uint32{'A': 5, 0x100: 4, 0x1f600: 7, 0x110000: 3}}
	fb := testBuilder()
	fb.NoCMap = true
	tf := mustLoad(t, fb, Options{ExternalCMap: cm})
	if g := tf.GlyphIDForCodePoint('A'); g != 5 {
		t.Errorf("expected external mapping A → 5, have %d", g)
	}
	if n := cm.count(); n != 256 {
		t.Errorf("expected page 0 to be resolved with 256 calls, have %d", n)
	}
	if g := tf.GlyphIDForCodePoint('A'); g != 5 {
		t.Errorf("expected second query to return 5, have %d", g)
	}
	tf.GlyphIDForCodePoint('B')
	if n := cm.count(); n != 256 {
		t.Errorf("expected no mapping calls for cached page, have %d", n-256)
	}
	if g := tf.GlyphIDForCodePoint(0x100); g != 4 {
		t.Errorf("expected U+0100 → 4, have %d", g)
	}
	tf.GlyphIDForCodePoint(0x1ff)
	if n := cm.count(); n != 512 {
		t.Errorf("expected one more page to be resolved, have %d calls", n)
	}
	if g := tf.GlyphIDForCodePoint(0x110000); g != 3 {
		t.Errorf("expected external mapping for values beyond Unicode, have %d", g)
	}
	if n := cm.count(); n != 768 {
		t.Errorf("expected page 0x1100 to be resolved, have %d calls", n)
	}
	tf.GlyphIDForCodePoint(0x110001)
	if n := cm.count(); n != 768 {
		t.Errorf("expected no mapping calls for cached page, have %d", n-768)
	}
	if g := tf.GlyphIDForCodePoint(0x1f600); g != 7 {
		t.Errorf("expected U+1F600 → 7, have %d", g)
	}
}

func TestGlyphMapperFunc(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otface")
	defer teardown()
	//
	mapper := GlyphMapperFunc(func(cp uint32) uint32 {
		if cp >= 'a' && cp <= 'g' {
			return cp - 'a' + 1
		}
		return 0
	})
	tf := mustLoad(t, testBuilder(), Options{ExternalCMap: mapper})
	for cp, g := range map[rune]uint32{'a': 1, 'g': 7, 'A': 0, 'x': 0} {
		if got := tf.GlyphIDForCodePoint(uint32(cp)); got != g {
			t.Errorf("expected %#U → %d, have %d", cp, g, got)
		}
	}
}

func TestConcurrentQueries(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otface")
	defer teardown()
	//
	tf := mustLoad(t, testBuilder(), Options{})
	ref := mustLoad(t, testBuilder(), Options{})
	codepoints := []uint32{'A', 'V', 'x', 0xff, 0x100, 0x4e00, 0x1f600, ' ', 'B'}
	var wg sync.WaitGroup
	results := make([][]uint32, 8)
	kerns := make([]float32, 8)
	families := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := range codepoints {
				cp := codepoints[(i+j)%len(codepoints)]
				results[i] = append(results[i], tf.GlyphIDForCodePoint(cp))
			}
			kerns[i] = tf.GlyphsHorizontalKerning(5, 6, 1)
			families[i] = tf.Family()
			tf.Weight()
			tf.Slope()
		}(i)
	}
	wg.Wait()
	for i := range results {
		for j, g := range results[i] {
			cp := codepoints[(i+j)%len(codepoints)]
			if want := ref.GlyphIDForCodePoint(cp); g != want {
				t.Errorf("goroutine %d: %#U → %d, expected %d", i, cp, g, want)
			}
		}
		if kerns[i] != -150 || families[i] != "Fontissimo" {
			t.Errorf("goroutine %d: unexpected kerning %v or family %q", i, kerns[i], families[i])
		}
	}
}

// --- Real fonts ------------------------------------------------------------

func TestGoFonts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otface")
	defer teardown()
	//
	regular, err := Load(goregular.TTF, Options{})
	if err != nil {
		t.Fatal(err)
	}
	ref, err := sfnt.Parse(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	if int(regular.GlyphCount()) != ref.NumGlyphs() {
		t.Errorf("expected %d glyphs, have %d", ref.NumGlyphs(), regular.GlyphCount())
	}
	if !strings.HasPrefix(regular.Family(), "Go") {
		t.Errorf("expected family of Go Regular to start with 'Go', is %q", regular.Family())
	}
	var buf sfnt.Buffer
	for _, r := range "Hamburgefonstiv" {
		g, _ := ref.GlyphIndex(&buf, r)
		if got := regular.GlyphIDForCodePoint(uint32(r)); got != uint32(g) {
			t.Errorf("%#U: expected glyph %d, have %d", r, g, got)
		}
	}
	if regular.Slope() != SlopeUpright || regular.Weight() != WeightNormal {
		t.Errorf("expected Go Regular to be upright and of normal weight")
	}
	bold, err := Load(gobold.TTF, Options{})
	if err != nil {
		t.Fatal(err)
	}
	// Go Bold declares usWeightClass 600 (semi-bold) in table OS/2
	if bold.Weight() != 600 {
		t.Errorf("expected Go Bold to have weight 600, has %d", bold.Weight())
	}
	italic, err := Load(goitalic.TTF, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if italic.Slope() != SlopeItalic {
		t.Errorf("expected Go Italic to be italic, slope is %d", italic.Slope())
	}
}
