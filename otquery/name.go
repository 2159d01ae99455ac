package otquery

import (
	"iter"

	"github.com/npillmayer/otface"
	"github.com/npillmayer/otface/ot"
)

// nameKeys are the keys of NameInfo for well-known name IDs.
var nameKeys = map[ot.NameID]string{
	ot.NameCopyright:            "copyright",
	ot.NameFamily:               "family",
	ot.NameSubfamily:            "subfamily",
	ot.NameUniqueID:             "unique-id",
	ot.NameFull:                 "full-name",
	ot.NameVersion:              "version",
	ot.NamePostScript:           "postscript",
	ot.NameTypographicFamily:    "typographic-family",
	ot.NameTypographicSubfamily: "typographic-subfamily",
}

// NamesRange yields decoded `(nameID, value)` pairs from the naming table of a
// typeface, in record order. Empty strings and records which cannot be decoded
// are skipped. Typefaces loaded without table 'name' yield nothing.
func NamesRange(tf *otface.Typeface) iter.Seq2[ot.NameID, string] {
	names := tf.Font().Name
	return func(yield func(ot.NameID, string) bool) {
		for rec, s := range names.All() {
			if s == "" {
				continue
			}
			if !yield(rec.NameID, s) {
				return
			}
		}
	}
}

// NameInfo returns the well-known entries of the naming table, keyed by
// "family", "subfamily", "full-name", "version" etc.
// If a name ID has several records, the one preferred by ot.NameTable.Lookup wins.
func NameInfo(tf *otface.Typeface) map[string]string {
	info := make(map[string]string)
	names := tf.Font().Name
	if names == nil {
		tracer().Debugf("typeface has no name table")
		return info
	}
	for id, key := range nameKeys {
		if s, ok := names.Lookup(id); ok && s != "" {
			info[key] = s
		}
	}
	return info
}
