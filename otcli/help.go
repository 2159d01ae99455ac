package main

import (
	"strings"

	"github.com/pterm/pterm"
)

func helpOp(intp *Intp, op *Op) (bool, error) {
	help(op.arg)
	return false, nil
}

func help(topic string) {
	tracer().Infof("help %v", topic)
	switch strings.ToLower(topic) {
	case "glyph", "glyphs":
		pterm.Info.Println("glyph")
		pterm.Println(`
	glyph:<char>        resolve a character, e.g. glyph:A
	glyph:U+<hex>       resolve a code-point, e.g. glyph:U+00E9
	glyph:<char>:em     print metrics relative to the em square
	Code-points without a glyph resolve to glyph 0 (.notdef).
	`)
	case "table", "tables":
		pterm.Info.Println("table / tables")
		pterm.Println(`
	tables              list all tables of the font
	table:<tag>         select a table, e.g. table:OS/2
	table:<tag>:hex     dump the first 256 bytes of a table
	`)
	case "kern", "kerning":
		pterm.Info.Println("kern")
		pterm.Println(`
	kern:<char><char>   print the kerning of a pair, e.g. kern:AV
	GPOS pair adjustments take precedence over table 'kern'.
	`)
	default:
		pterm.Info.Println("Commands")
		pterm.Println(`
	info                typeface identity and properties
	metrics             font-wide metrics in font units
	names[:all]         well-known names, or all names of table 'name'
	glyph:<char>        glyph ID and metrics           (help:glyph)
	kern:<char><char>   pair kerning                   (help:kern)
	tables, table:<tag> table directory                (help:table)
	warnings            problems found during loading
	quit                leave, or press <ctrl>D
	Several commands may be given on one line, separated by blanks.
	`)
	}
}
