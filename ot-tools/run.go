package main

import (
	"fmt"
	"strings"

	"github.com/npillmayer/otface"
)

// positionedGlyph is a glyph of a run, in font units.
type positionedGlyph struct {
	GID     uint32
	Cluster int     // index of the rune in the input
	X       float32 // pen position
	Advance float32
	Kern    float32 // adjustment applied after the glyph
}

// layoutRun places the glyphs for text side by side, adding pair kerning
// between neighbours. No shaping takes place; each rune maps to one glyph.
func layoutRun(tf *otface.Typeface, text string, kern bool) []positionedGlyph {
	gids := tf.GlyphIDsForString(text)
	run := make([]positionedGlyph, len(gids))
	var pen float32
	for i, gid := range gids {
		run[i] = positionedGlyph{
			GID:     gid,
			Cluster: i,
			X:       pen,
			Advance: tf.GlyphAdvance(gid, 1, 1, 0, 0),
		}
		if kern && i+1 < len(gids) {
			run[i].Kern = tf.GlyphsHorizontalKerning(gid, gids[i+1], 1)
		}
		pen += run[i].Advance + run[i].Kern
	}
	return run
}

// runWidth returns the total advance of a run.
func runWidth(run []positionedGlyph) float32 {
	if len(run) == 0 {
		return 0
	}
	last := run[len(run)-1]
	return last.X + last.Advance + last.Kern
}

// formatRun prints a run as [gid=cluster+advance|…], with kerning appended
// as "k<value>" where non-zero.
func formatRun(run []positionedGlyph) string {
	var b strings.Builder
	for i, g := range run {
		if i > 0 {
			b.WriteString("|")
		}
		fmt.Fprintf(&b, "%d=%d+%g", g.GID, g.Cluster, g.Advance)
		if g.Kern != 0 {
			fmt.Fprintf(&b, "k%g", g.Kern)
		}
	}
	return "[" + b.String() + "]"
}
