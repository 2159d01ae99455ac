package main

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/otface/sfntface"
	"github.com/thatisuday/commando"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

func runViewCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	tf := mustLoadTypeface(args, flags)
	defer tf.Close()
	input, err := parseInput(args["text"], flags["codepoints"])
	if err != nil {
		fatalf("%v", err)
	}
	if input == "" {
		fatalf("input text is empty")
	}
	outPath, err := flags["output"].GetString()
	if err != nil {
		fatalf("invalid --output flag: %v", err)
	}
	if outPath = strings.TrimSpace(outPath); outPath == "" {
		fatalf("output path is empty")
	}
	ppem := mustFlagInt(flags["ppem"], "ppem")
	width := mustFlagInt(flags["width"], "width")
	height := mustFlagInt(flags["height"], "height")
	if ppem <= 0 {
		fatalf("--ppem must be > 0")
	}
	if width <= 0 || height <= 0 {
		fatalf("--width and --height must be > 0")
	}
	run := layoutRun(tf, input, !mustFlagBool(flags["nokern"], "nokern"))
	img, err := renderRun(sfntface.New(tf), run, width, height, ppem, mustFlagBool(flags["show-bboxes"], "show-bboxes"))
	if err != nil {
		fatalf("render failed: %v", err)
	}
	if err := writePNG(img, outPath); err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("wrote %s (%d glyphs)\n", outPath, len(run))
}

// outline is the outline of one glyph of a run, in pixels, with the glyph's
// pen position already applied.
type outline struct {
	segs sfnt.Segments
	dx   float32
	ink  image.Rectangle
}

// renderRun rasterizes a glyph run, centered in an image of the given size.
// Glyph positions come from the run, outlines from package sfnt. Glyphs without
// an outline, e.g. spaces, only advance the pen.
func renderRun(b *sfntface.Binding, run []positionedGlyph, width, height, ppem int, showBBoxes bool) (*image.RGBA, error) {
	if len(run) == 0 {
		return nil, errors.New("empty glyph run")
	}
	scale := float32(ppem) / float32(b.Typeface().UnitsPerEm())
	var outlines []outline
	var ink image.Rectangle
	for _, g := range run {
		segs, err := b.GlyphOutline(g.GID, fixed.I(ppem))
		if err != nil || len(segs) == 0 {
			continue
		}
		o := outline{segs: segs, dx: g.X * scale}
		o.ink = inkBox(segs.Bounds()).Add(image.Pt(int(o.dx), 0))
		outlines = append(outlines, o)
		ink = ink.Union(o.ink)
	}
	if len(outlines) == 0 {
		return nil, errors.New("run has no glyph outlines to draw")
	}
	canvas := image.Rect(0, 0, width, height)
	shift := image.Pt((width-ink.Dx())/2-ink.Min.X, (height-ink.Dy())/2-ink.Min.Y)
	img := image.NewRGBA(canvas)
	draw.Draw(img, canvas, image.White, image.Point{}, draw.Src)
	rast := vector.NewRasterizer(width, height)
	for _, o := range outlines {
		traceOutline(rast, o.segs, float32(shift.X)+o.dx, float32(shift.Y))
	}
	rast.Draw(img, canvas, image.Black, image.Point{})
	if showBBoxes {
		for _, o := range outlines {
			strokeRect(img, o.ink.Add(shift), color.RGBA{R: 255, A: 255})
		}
	}
	return img, nil
}

// inkBox rounds a fixed-point glyph bounding box outwards to pixels.
func inkBox(r fixed.Rectangle26_6) image.Rectangle {
	return image.Rect(r.Min.X.Floor(), r.Min.Y.Floor(), r.Max.X.Ceil(), r.Max.Y.Ceil())
}

// traceOutline adds the segments of a glyph outline to a rasterizer, offset by
// (dx, dy) pixels. sfnt outlines have y growing downwards, as images do.
func traceOutline(rast *vector.Rasterizer, segs sfnt.Segments, dx, dy float32) {
	px := func(p fixed.Point26_6) (float32, float32) {
		return dx + float32(p.X)/64, dy + float32(p.Y)/64
	}
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			rast.MoveTo(px(seg.Args[0]))
		case sfnt.SegmentOpLineTo:
			rast.LineTo(px(seg.Args[0]))
		case sfnt.SegmentOpQuadTo:
			x1, y1 := px(seg.Args[0])
			x2, y2 := px(seg.Args[1])
			rast.QuadTo(x1, y1, x2, y2)
		case sfnt.SegmentOpCubeTo:
			x1, y1 := px(seg.Args[0])
			x2, y2 := px(seg.Args[1])
			x3, y3 := px(seg.Args[2])
			rast.CubeTo(x1, y1, x2, y2, x3, y3)
		}
	}
}

// strokeRect draws the 1-pixel border of r, clipped to the image.
func strokeRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Canon().Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetRGBA(x, r.Min.Y, c)
		img.SetRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetRGBA(r.Min.X, y, c)
		img.SetRGBA(r.Max.X-1, y, c)
	}
}

// writePNG encodes img to path, creating missing directories.
func writePNG(img image.Image, path string) (err error) {
	if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return png.Encode(f, img)
}
