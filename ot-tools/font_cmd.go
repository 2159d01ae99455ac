package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/npillmayer/otface"
	"github.com/npillmayer/otface/ot"
	"github.com/npillmayer/otface/otquery"
	"github.com/thatisuday/commando"
)

var slopeNames = []string{"upright", "italic", "oblique"}

func runFontCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	tf := mustLoadTypeface(args, flags)
	defer tf.Close()

	fmt.Printf("Path: %s\n", args["font"].Value)
	fmt.Printf("Type: %s\n", otquery.FontType(tf))
	fmt.Printf("Family: %s\n", tf.Family())
	fmt.Printf("Variant: %s\n", tf.Variant())
	fmt.Printf("Weight: %d, width: %d, slope: %s\n", tf.Weight(), tf.Width(), slopeNames[tf.Slope()])
	if version := otquery.NameInfo(tf)["version"]; version != "" {
		fmt.Printf("Version: %s\n", version)
	}
	if head, ok := otquery.HeadInfo(tf); ok {
		fmt.Printf("Revision: %.3f, modified %s\n", head.Revision(), head.ModifiedAt().Format("2006-01-02"))
	}
	m := tf.Metrics(1, 1)
	fmt.Printf("Glyphs: %d, units per em: %d, fixed width: %v\n", tf.GlyphCount(), tf.UnitsPerEm(), tf.IsFixedWidth())
	fmt.Printf("Metrics: ascender=%g descender=%g line-gap=%g x-height=%g\n",
		m.Ascender, m.Descender, m.LineGap, m.XHeight)
	fmt.Printf("Kerning: %v\n", tf.HasKerning())

	otf := tf.Font()
	tags := otf.TableTags()
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	fmt.Printf("Tables (%d):", len(tags))
	for _, tag := range tags {
		fmt.Printf(" %s", tag.String())
	}
	fmt.Println()
	fmt.Printf("Layout: %s\n", strings.Join(otquery.LayoutTables(tf), ","))

	warns := tf.Warnings()
	fmt.Printf("Issues: critical=%d major=%d minor=%d warnings=%d\n",
		len(otf.ErrorsOf(ot.SeverityCritical)), len(otf.ErrorsOf(ot.SeverityMajor)),
		len(otf.ErrorsOf(ot.SeverityMinor)), len(warns))

	if len(args["tables"].Value) > 0 {
		printSelectedTables(tf, args["tables"].Value)
	}
	if mustFlagBool(flags["errors"], "errors") {
		for _, severity := range []ot.ErrorSeverity{ot.SeverityCritical, ot.SeverityMajor, ot.SeverityMinor} {
			for _, e := range otf.ErrorsOf(severity) {
				fmt.Printf("error: %s\n", e.Error())
			}
		}
		for _, w := range warns {
			fmt.Printf("warning: %s\n", w.String())
		}
	}
}

func printSelectedTables(tf *otface.Typeface, raw string) {
	for _, tagName := range splitCSVSpace(raw) {
		tag := ot.T(tagName)
		table := tf.Font().Table(tag)
		if table == nil {
			fmt.Printf("table %s: missing\n", tagName)
			continue
		}
		off, size := table.Extent()
		fmt.Printf("table %s: offset=%d size=%d", tagName, off, size)
		if err := tf.Font().TableError(tag); err != nil {
			fmt.Printf(" (%v)", err)
		}
		fmt.Println()
	}
}
