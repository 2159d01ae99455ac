package ot

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestNameLookup(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	fb := testFont()
	fb.Names = map[uint16]string{
		uint16(NameFamily):            "Fontissimo Book",
		uint16(NameSubfamily):         "Regular",
		uint16(NameTypographicFamily): "Fontissimo",
	}
	fb.MacNames = map[uint16]string{
		uint16(NameFamily):    "Fontissimo Mac",
		uint16(NameCopyright): "© Café",
	}
	otf, err := Parse(fb.Build())
	if err != nil {
		t.Fatal(err)
	}
	if otf.Name == nil {
		t.Fatalf("expected name table")
	}
	if n := len(otf.Name.Records()); n != 5 {
		t.Errorf("expected 5 name records, have %d", n)
	}
	if s, ok := otf.Name.Lookup(NameFamily); !ok || s != "Fontissimo Book" {
		t.Errorf("expected Windows family name to be preferred, have %q", s)
	}
	if s, ok := otf.Name.Lookup(NameTypographicFamily); !ok || s != "Fontissimo" {
		t.Errorf("expected typographic family 'Fontissimo', have %q", s)
	}
	if s, ok := otf.Name.Lookup(NameCopyright); !ok || s != "© Café" {
		t.Errorf("expected Mac Roman copyright to be decoded, have %q", s)
	}
	if _, ok := otf.Name.Lookup(NamePostScript); ok {
		t.Errorf("expected no PostScript name")
	}
	cnt := 0
	for rec, s := range otf.Name.All() {
		if s == "" {
			t.Errorf("name record %d decoded to empty string", rec.NameID)
		}
		cnt++
	}
	if cnt != 5 {
		t.Errorf("expected to iterate over 5 names, did %d", cnt)
	}
}

func TestNameRecordOutOfBounds(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	fb := testFont()
	fb.Raw = map[string][]byte{"name": {
		0, 0, 0, 2, 0, 30, // format, count, string offset
		0, 3, 0, 1, 0x04, 0x09, 0, 1, 0, 2, 0, 0, // family "A"
		0, 3, 0, 1, 0x04, 0x09, 0, 2, 0, 40, 0, 2, // subfamily out of bounds
		0, 'A',
	}}
	otf, err := Parse(fb.Build())
	if err != nil {
		t.Fatal(err)
	}
	if s, ok := otf.Name.Lookup(NameFamily); !ok || s != "A" {
		t.Errorf("expected family 'A', have %q", s)
	}
	if _, ok := otf.Name.Lookup(NameSubfamily); ok {
		t.Errorf("expected out-of-bounds sub-family to be skipped")
	}
	if len(otf.Warnings()) == 0 {
		t.Errorf("expected warning for out-of-bounds name record")
	}
}
