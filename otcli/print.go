package main

import (
	"fmt"
	"sort"

	"github.com/npillmayer/otface"
	"github.com/npillmayer/otface/ot"
	"github.com/npillmayer/otface/otquery"
	"github.com/pterm/pterm"
)

func renderTable(data [][]string) (bool, error) {
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return false, nil
}

var slopeNames = []string{"upright", "italic", "oblique"}

func infoOp(intp *Intp, op *Op) (bool, error) {
	tf := intp.tf
	data := [][]string{
		{"Property", "Value"},
		{"Type", otquery.FontType(tf)},
		{"Family", tf.Family()},
		{"Variant", tf.Variant()},
		{"Weight", fmt.Sprint(tf.Weight())},
		{"Width", fmt.Sprint(tf.Width())},
		{"Slope", slopeNames[tf.Slope()]},
		{"Glyphs", fmt.Sprint(tf.GlyphCount())},
		{"Units per em", fmt.Sprint(tf.UnitsPerEm())},
		{"Fixed width", fmt.Sprint(tf.IsFixedWidth())},
		{"Kerning", fmt.Sprint(tf.HasKerning())},
		{"Collection index", fmt.Sprint(tf.CollectionIndex())},
	}
	return renderTable(data)
}

// glyphOp resolves a code-point, e.g. "glyph:A" or "glyph:U+00E9". With format
// "em", metrics are printed relative to the em square.
func glyphOp(intp *Intp, op *Op) (bool, error) {
	arg, ok := op.hasArg()
	if !ok {
		return false, fmt.Errorf("usage: glyph:<char>|glyph:U+<hex>[:em]")
	}
	r, err := parseRune(arg)
	if err != nil {
		return false, err
	}
	tf := intp.tf
	gid := tf.GlyphIDForCodePoint(uint32(r))
	scale := float32(1)
	if op.format == "em" {
		scale = 1 / float32(tf.UnitsPerEm())
	}
	m := tf.GlyphMetrics(gid, scale, scale, 0, 0)
	info := otquery.GlyphMetrics(tf, ot.GlyphIndex(gid))
	pterm.Printf("%#U => glyph %d\n", r, gid)
	data := [][]string{
		{"Advance", "LSB", "RSB", "Ascender", "Descender", "BBox"},
		{
			fmt.Sprint(m.AdvanceWidth),
			fmt.Sprint(m.LeftSideBearing),
			fmt.Sprint(info.RSB),
			fmt.Sprint(m.Ascender),
			fmt.Sprint(m.Descender),
			fmt.Sprintf("(%d,%d)-(%d,%d)", info.BBox.MinX, info.BBox.MinY, info.BBox.MaxX, info.BBox.MaxY),
		},
	}
	return renderTable(data)
}

// kernOp prints the kerning of a pair of characters, e.g. "kern:AV".
func kernOp(intp *Intp, op *Op) (bool, error) {
	pair := []rune(op.arg)
	if len(pair) != 2 {
		return false, fmt.Errorf("usage: kern:<char><char>")
	}
	tf := intp.tf
	if !tf.HasKerning() {
		pterm.Info.Println("font has no kerning")
		return false, nil
	}
	left := tf.GlyphIDForCodePoint(uint32(pair[0]))
	right := tf.GlyphIDForCodePoint(uint32(pair[1]))
	if v, found := tf.KerningPair(left, right); found {
		pterm.Printf("kern(%q, %q) = kern(%d, %d) = %d\n", pair[0], pair[1], left, right, v)
	} else {
		pterm.Printf("no kerning for pair (%q, %q)\n", pair[0], pair[1])
	}
	return false, nil
}

func metricsOp(intp *Intp, op *Op) (bool, error) {
	m := intp.tf.Metrics(1, 1)
	q := otquery.FontMetrics(intp.tf)
	data := [][]string{
		{"Ascender", "Descender", "Line gap", "x-height", "Max advance", "Units per em"},
		{
			fmt.Sprint(m.Ascender),
			fmt.Sprint(m.Descender),
			fmt.Sprint(m.LineGap),
			fmt.Sprint(m.XHeight),
			fmt.Sprint(q.MaxAdvance),
			fmt.Sprint(q.UnitsPerEm),
		},
	}
	return renderTable(data)
}

func namesOp(intp *Intp, op *Op) (bool, error) {
	if op.format == "all" || op.arg == "all" {
		data := [][]string{{"ID", "Value"}}
		for id, s := range otquery.NamesRange(intp.tf) {
			data = append(data, []string{fmt.Sprint(id), s})
		}
		return renderTable(data)
	}
	info := otquery.NameInfo(intp.tf)
	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	data := [][]string{{"Name", "Value"}}
	for _, k := range keys {
		data = append(data, []string{k, info[k]})
	}
	return renderTable(data)
}

func warningsOp(intp *Intp, op *Op) (bool, error) {
	printIssues(intp.tf)
	return false, nil
}

func printIssues(tf *otface.Typeface) {
	warnings := tf.Warnings()
	errs := tf.Font().Errors()
	if len(warnings) == 0 && len(errs) == 0 {
		pterm.Info.Println("no issues")
		return
	}
	for _, severity := range []ot.ErrorSeverity{ot.SeverityCritical, ot.SeverityMajor, ot.SeverityMinor} {
		for _, e := range tf.Font().ErrorsOf(severity) {
			pterm.Error.Println(e.Error())
		}
	}
	for _, w := range warnings {
		pterm.Warning.Println(w.String())
	}
}
