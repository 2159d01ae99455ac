package ot

import (
	"fmt"
	"iter"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// NameID identifies a string of the naming table.
type NameID uint16

// Name IDs used by this module.
// See https://docs.microsoft.com/en-us/typography/opentype/spec/name#name-ids
const (
	NameCopyright            NameID = 0
	NameFamily               NameID = 1
	NameSubfamily            NameID = 2
	NameUniqueID             NameID = 3
	NameFull                 NameID = 4
	NameVersion              NameID = 5
	NamePostScript           NameID = 6
	NameTypographicFamily    NameID = 16
	NameTypographicSubfamily NameID = 17
)

// NameRecord is an entry of the naming table.
type NameRecord struct {
	PlatformID uint16
	EncodingID uint16
	LanguageID uint16
	NameID     NameID
	length     uint16
	offset     uint16
}

// NameTable allows multilingual strings to be associated with the OpenType font.
// Strings are decoded on demand.
type NameTable struct {
	tableBase
	records []NameRecord
	strbuf  binarySegm
}

func newNameTable(tag Tag, b binarySegm, offset, size uint32) *NameTable {
	t := &NameTable{}
	t.tableBase = makeTableBase(tag, b, offset, size)
	t.self = t
	return t
}

// The naming table consists of a header, name records and a storage area for
// the strings. Version 1 adds language-tag records, which we do not interpret.
func parseName(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size < 6 {
		return nil, ec.fail(tag, "Header", "name table too small", offset)
	}
	N := int(u16(b[2:]))
	strOffset := int(u16(b[4:]))
	if strOffset > len(b) {
		return nil, ec.fail(tag, "Header",
			fmt.Sprintf("string offset %d exceeds table size %d", strOffset, len(b)), offset+4)
	}
	t := newNameTable(tag, b, offset, size)
	t.strbuf = b[strOffset:]
	tracer().Debugf("name table has %d strings, starting at %d", N, strOffset)
	if N == 0 {
		return t, nil
	}
	recs, err := b.view(6, 12*N)
	if err != nil {
		return nil, ec.fail(tag, "Records", "name records exceed table size", offset+6)
	}
	t.records = make([]NameRecord, 0, N)
	for i := 0; i < N; i++ {
		r := recs[12*i:]
		rec := NameRecord{
			PlatformID: u16(r),
			EncodingID: u16(r[2:]),
			LanguageID: u16(r[4:]),
			NameID:     NameID(u16(r[6:])),
			length:     u16(r[8:]),
			offset:     u16(r[10:]),
		}
		if _, err := t.strbuf.view(int(rec.offset), int(rec.length)); err != nil && rec.length > 0 {
			ec.addWarning(tag, fmt.Sprintf("string of name record %d out of bounds", i), offset+6+12*uint32(i))
			continue
		}
		t.records = append(t.records, rec)
	}
	return t, nil
}

// Records returns the name records of the table.
func (t *NameTable) Records() []NameRecord {
	if t == nil {
		return nil
	}
	return t.records
}

// All iterates over all name records with a decodable string.
func (t *NameTable) All() iter.Seq2[NameRecord, string] {
	return func(yield func(NameRecord, string) bool) {
		if t == nil {
			return
		}
		for _, rec := range t.records {
			s, ok := t.decode(rec)
			if !ok {
				continue
			}
			if !yield(rec, s) {
				return
			}
		}
	}
}

// Lookup returns the string for a name ID. If there are several records for id,
// Windows English (US) is preferred over other Windows languages, which are
// preferred over Unicode and Macintosh records.
func (t *NameTable) Lookup(id NameID) (string, bool) {
	if t == nil {
		return "", false
	}
	best, bestRank := "", 0
	for _, rec := range t.records {
		if rec.NameID != id {
			continue
		}
		rank := nameRecordRank(rec)
		if rank <= bestRank {
			continue
		}
		if s, ok := t.decode(rec); ok {
			best, bestRank = s, rank
		}
	}
	return best, bestRank > 0
}

func nameRecordRank(rec NameRecord) int {
	switch rec.PlatformID {
	case PlatformWindows:
		if rec.LanguageID == 0x0409 {
			return 4
		}
		return 3
	case PlatformUnicode:
		return 2
	case PlatformMacintosh:
		return 1
	}
	return 0
}

func (t *NameTable) decode(rec NameRecord) (string, bool) {
	var dec *encoding.Decoder
	switch {
	case rec.PlatformID == PlatformUnicode || rec.PlatformID == PlatformWindows:
		dec = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	case rec.PlatformID == PlatformMacintosh && rec.EncodingID == psidMacintoshRoman:
		dec = charmap.Macintosh.NewDecoder()
	default:
		return "", false
	}
	if rec.length == 0 {
		return "", true
	}
	raw, err := t.strbuf.view(int(rec.offset), int(rec.length))
	if err != nil {
		return "", false
	}
	s, err := dec.Bytes(raw)
	if err != nil {
		return "", false
	}
	return string(s), true
}
