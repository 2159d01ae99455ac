/*
Package fontload reads font files from disk for the command line tools and for
tests.
*/
package fontload

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/flopp/go-findfont"
	"github.com/npillmayer/otface"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.otface'
func tracer() tracing.Trace {
	return tracing.Select("font.otface")
}

// FontFile is the content of a font file, read into memory. It implements
// otface.FontData; a Typeface created from it releases the bytes on Close.
type FontFile struct {
	Path string
	data []byte
}

// ReadFontFile reads a font file (TTF, OTF or TTC) into memory.
func ReadFontFile(path string) (*FontFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read font file: %w", err)
	}
	tracer().Debugf("read %d bytes from font file %s", len(data), path)
	return &FontFile{Path: path, data: data}, nil
}

// Bytes returns the content of the font file.
func (f *FontFile) Bytes() []byte {
	return f.data
}

// Close drops the content of the font file.
func (f *FontFile) Close() error {
	f.data = nil
	return nil
}

// LoadTypeface reads a font file and loads a Typeface from it. The Typeface owns
// the file's bytes.
func LoadTypeface(path string, opts otface.Options) (*otface.Typeface, error) {
	f, err := ReadFontFile(path)
	if err != nil {
		return nil, err
	}
	tf, err := otface.LoadFontData(f, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot load font %s: %w", filepath.Base(path), err)
	}
	tracer().Infof("loaded typeface %q from %s", tf.Family(), path)
	return tf, nil
}

// ErrNotFound is returned by Locate if no font file matches.
var ErrNotFound = errors.New("font file not found")

// Locate finds a font file. If name is a path to an existing file, it is
// returned unchanged. Otherwise dirs are searched recursively for a file with
// name as its base name, ignoring case. Without dirs, name is looked up as a
// system font.
func Locate(name string, dirs ...string) (string, error) {
	if fi, err := os.Stat(name); err == nil && !fi.IsDir() {
		return name, nil
	}
	if len(dirs) == 0 {
		path, err := findfont.Find(name)
		if err != nil || path == "" {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		tracer().Debugf("%s is a system font", name)
		return path, nil
	}
	base := strings.ToLower(filepath.Base(name))
	var found string
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // unreadable sub-trees are skipped
			}
			if !d.IsDir() && strings.ToLower(d.Name()) == base {
				found = path
				return fs.SkipAll
			}
			return nil
		})
		if err == nil && found != "" {
			return found, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}
