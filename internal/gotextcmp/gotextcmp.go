/*
Package gotextcmp cross-checks Typeface queries against the font package of
go-text/typesetting, an independent OpenType implementation.
*/
package gotextcmp

import (
	"bytes"
	"fmt"
	"math"

	"github.com/go-text/typesetting/font"
	"github.com/npillmayer/otface"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.otface'
func tracer() tracing.Trace {
	return tracing.Select("font.otface")
}

// Kind of a mismatch.
type Kind string

const (
	GlyphMismatch   Kind = "glyph"
	AdvanceMismatch Kind = "advance"
	UnitsMismatch   Kind = "units-per-em"
)

// Mismatch is a single difference between a Typeface and go-text.
type Mismatch struct {
	Kind      Kind
	CodePoint rune
	GID       uint32
	Got, Want float32 // Typeface vs. go-text
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s of %#U (glyph %d): got %g, go-text has %g", m.Kind, m.CodePoint, m.GID, m.Got, m.Want)
}

// Report summarizes a comparison.
type Report struct {
	Checked    int // number of code-points compared
	Mismatches []Mismatch
}

// OK reports whether no mismatches have been found.
func (r Report) OK() bool {
	return len(r.Mismatches) == 0
}

// Compare resolves each of runes with tf and with go-text and compares the
// glyph IDs and advance widths, in font units. Code-points go-text does not map
// are expected to resolve to .notdef.
func Compare(tf *otface.Typeface, runes []rune) (Report, error) {
	faces, err := font.ParseTTC(bytes.NewReader(tf.Buffer()))
	if err != nil {
		return Report{}, fmt.Errorf("go-text cannot parse font: %w", err)
	}
	inx := int(tf.CollectionIndex())
	if inx >= len(faces) {
		return Report{}, fmt.Errorf("go-text found %d fonts, need index %d", len(faces), inx)
	}
	face := faces[inx]
	var report Report
	if upem := face.Upem(); upem != tf.UnitsPerEm() {
		report.Mismatches = append(report.Mismatches, Mismatch{
			Kind: UnitsMismatch, Got: float32(tf.UnitsPerEm()), Want: float32(upem),
		})
	}
	for _, r := range runes {
		report.Checked++
		gid := tf.GlyphIDForCodePoint(uint32(r))
		want, ok := face.NominalGlyph(r)
		if !ok {
			want = 0
		}
		if gid != uint32(want) {
			report.Mismatches = append(report.Mismatches, Mismatch{
				Kind: GlyphMismatch, CodePoint: r, GID: gid, Got: float32(gid), Want: float32(want),
			})
			continue
		}
		if gid == 0 {
			continue
		}
		adv := tf.GlyphAdvance(gid, 1, 1, 0, 0)
		wantAdv := face.HorizontalAdvance(want)
		if math.Abs(float64(adv-wantAdv)) > 0.5 {
			report.Mismatches = append(report.Mismatches, Mismatch{
				Kind: AdvanceMismatch, CodePoint: r, GID: gid, Got: adv, Want: wantAdv,
			})
		}
	}
	tracer().Debugf("compared %d code-points with go-text, %d mismatches", report.Checked, len(report.Mismatches))
	return report, nil
}

// Range returns the code-points from first to last, inclusive.
func Range(first, last rune) []rune {
	runes := make([]rune, 0, max(0, int(last-first+1)))
	for r := first; r <= last; r++ {
		runes = append(runes, r)
	}
	return runes
}
