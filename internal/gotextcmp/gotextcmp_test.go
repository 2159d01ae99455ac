package gotextcmp

import (
	"testing"

	"github.com/npillmayer/otface"
	"github.com/npillmayer/otface/internal/fontbuild"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

func TestCompareGoFonts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otface")
	defer teardown()
	//
	runes := append(Range(0, 0x024f), Range(0x0370, 0x03ff)...)
	runes = append(runes, Range(0x2000, 0x206f)...)
	for name, data := range map[string][]byte{
		"regular": goregular.TTF,
		"bold":    gobold.TTF,
		"mono":    gomono.TTF,
	} {
		tf, err := otface.Load(data, otface.Options{})
		require.NoError(t, err, name)
		report, err := Compare(tf, runes)
		require.NoError(t, err, name)
		assert.Equal(t, len(runes), report.Checked)
		for _, m := range report.Mismatches {
			t.Errorf("Go %s: %s", name, m)
		}
	}
}

func TestCompareCollection(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otface")
	defer teardown()
	//
	ttc := fontbuild.Collection(goregular.TTF, gomono.TTF)
	tf, err := otface.Load(ttc, otface.Options{Index: 1})
	require.NoError(t, err)
	report, err := Compare(tf, Range('a', 'z'))
	require.NoError(t, err)
	assert.True(t, report.OK(), "mismatches: %v", report.Mismatches)
}

func TestRange(t *testing.T) {
	assert.Equal(t, []rune{'a', 'b', 'c'}, Range('a', 'c'))
	assert.Empty(t, Range('c', 'a'))
}
