package fontload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/otface"
	"github.com/npillmayer/otface/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func writeFont(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadTypeface(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otface")
	defer teardown()
	//
	path := writeFont(t, t.TempDir(), "Go-Regular.ttf", goregular.TTF)
	tf, err := LoadTypeface(path, otface.Options{})
	require.NoError(t, err)
	assert.NotZero(t, tf.GlyphIDForCodePoint('A'))
	require.NoError(t, tf.Close())
	//
	_, err = LoadTypeface(filepath.Join(t.TempDir(), "missing.ttf"), otface.Options{})
	assert.ErrorIs(t, err, os.ErrNotExist)
	bad := writeFont(t, t.TempDir(), "bad.ttf", []byte("not a font at all"))
	_, err = LoadTypeface(bad, otface.Options{})
	assert.ErrorIs(t, err, ot.ErrFormat)
}

func TestFontFileClose(t *testing.T) {
	path := writeFont(t, t.TempDir(), "f.ttf", goregular.TTF)
	f, err := ReadFontFile(path)
	require.NoError(t, err)
	assert.Len(t, f.Bytes(), len(goregular.TTF))
	assert.NoError(t, f.Close())
	assert.Nil(t, f.Bytes())
}

func TestLocate(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "truetype", "go")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	path := writeFont(t, sub, "Go-Regular.ttf", goregular.TTF)
	//
	found, err := Locate("go-regular.TTF", dir)
	require.NoError(t, err)
	assert.Equal(t, path, found)
	found, err = Locate(path)
	require.NoError(t, err)
	assert.Equal(t, path, found, "existing paths are returned unchanged")
	_, err = Locate("Nonesuch.otf", dir)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocateSystemFont(t *testing.T) {
	_, err := Locate("no-such-font-family-1a2b3c.ttf")
	assert.ErrorIs(t, err, ErrNotFound)
}
