package otface

import "strings"

// SkipTables is a set of tables a Typeface may do without.
type SkipTables uint8

// Tables which may be skipped during loading.
const (
	SkipName SkipTables = 1 << iota // family and variant will be empty
	SkipHmtx                        // every glyph has zero metrics
	SkipOS2                         // weight, width and slope use fallbacks
)

func (s SkipTables) String() string {
	if s == 0 {
		return "none"
	}
	var names []string
	for _, bit := range []struct {
		flag SkipTables
		name string
	}{{SkipName, "name"}, {SkipHmtx, "hmtx"}, {SkipOS2, "OS/2"}} {
		if s&bit.flag != 0 {
			names = append(names, bit.name)
		}
	}
	return strings.Join(names, "|")
}

// Options control the loading of a Typeface.
type Options struct {
	Index        uint32               // font within a collection; must be 0 for single fonts
	ExternalCMap CharCodeToGlyphIndex // replaces the font's cmap, if set
	SkipTables   SkipTables           // tables to tolerate as absent
}

// CharCodeToGlyphIndex maps code-points to glyph IDs. Clients may inject an
// implementation to replace the cmap of a font. Implementations have to be
// deterministic and return 0 for unmapped code-points. They are called with
// any uint32 value, including values beyond U+10FFFF.
type CharCodeToGlyphIndex interface {
	GlyphIDForCodePoint(cp uint32) uint32
}

// GlyphMapperFunc adapts a function to CharCodeToGlyphIndex.
type GlyphMapperFunc func(cp uint32) uint32

// GlyphIDForCodePoint calls f(cp).
func (f GlyphMapperFunc) GlyphIDForCodePoint(cp uint32) uint32 {
	return f(cp)
}
