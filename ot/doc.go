/*
Package ot provides access to the binary tables of OpenType and TrueType fonts.
Intended audience for this package are:

▪︎ typeface front ends, which resolve code-points to glyphs and answer metric
queries (see package `otface` at the root of this module)

▪︎ glyph rasterizers, which need the raw table data of a font

▪︎ any application needing to have the internal structure of an OpenType font file
available

Package `ot` will interpret a well-defined subset of tables: the sfnt header,
collection headers (TTC), the table directory, and tables
'head', 'hhea', 'maxp', 'hmtx', 'cmap', 'loca', 'glyf', 'OS/2', 'kern', 'GPOS'
(pair adjustment only) and 'name'. Every other table is kept as a generic table,
i.e. no table information will be dropped.

Fonts are untrusted input. Every offset and count read from the binary data is
bounds-checked before use, and arithmetic on values from the font is checked for
overflow. Problems which make a font unusable are reported as errors of type
`FontError`, which match `ErrFormat` or `ErrMissingTable` with `errors.Is`.
Recoverable problems are collected as `FontWarning`s and may be inspected after
parsing.

Code comments often cite passages from the OpenType specification version 1.8.4;
see https://docs.microsoft.com/en-us/typography/opentype/spec/.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ot

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.opentype'
func tracer() tracing.Trace {
	return tracing.Select("font.opentype")
}
