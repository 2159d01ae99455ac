package otquery

import (
	"time"

	"github.com/npillmayer/otface"
	"github.com/npillmayer/otface/ot"
)

// HeadTableInfo is a typed query view over OpenType table 'head'.
// Values are decoded directly from the raw table bytes.
type HeadTableInfo struct {
	MajorVersion       uint16
	MinorVersion       uint16
	FontRevision       uint32 // 16.16 fixed point
	CheckSumAdjustment uint32
	MagicNumber        uint32
	Flags              uint16
	UnitsPerEm         uint16
	Created            int64 // seconds since 1904-01-01
	Modified           int64
	XMin               int16
	YMin               int16
	XMax               int16
	YMax               int16
	MacStyle           uint16
	LowestRecPPEM      uint16
	FontDirectionHint  int16
	IndexToLocFormat   int16
	GlyphDataFormat    int16
}

const headTableSize = 54

// HeadInfo decodes table 'head' of a typeface.
// Returns (info, true) on success, or (zero, false) if the table is too short.
func HeadInfo(tf *otface.Typeface) (HeadTableInfo, bool) {
	var info HeadTableInfo
	if tf == nil {
		return info, false
	}
	b := tf.Table(ot.T("head"))
	if len(b) < headTableSize {
		return info, false
	}
	info.MajorVersion = u16(b[0:])
	info.MinorVersion = u16(b[2:])
	info.FontRevision = u32(b[4:])
	info.CheckSumAdjustment = u32(b[8:])
	info.MagicNumber = u32(b[12:])
	info.Flags = u16(b[16:])
	info.UnitsPerEm = u16(b[18:])
	info.Created = i64(b[20:])
	info.Modified = i64(b[28:])
	info.XMin = i16(b[36:])
	info.YMin = i16(b[38:])
	info.XMax = i16(b[40:])
	info.YMax = i16(b[42:])
	info.MacStyle = u16(b[44:])
	info.LowestRecPPEM = u16(b[46:])
	info.FontDirectionHint = i16(b[48:])
	info.IndexToLocFormat = i16(b[50:])
	info.GlyphDataFormat = i16(b[52:])
	return info, true
}

// epoch1904 is the base of OpenType date values.
var epoch1904 = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)

// CreatedAt returns the creation date of the font.
func (info HeadTableInfo) CreatedAt() time.Time {
	return epoch1904.Add(time.Duration(info.Created) * time.Second)
}

// ModifiedAt returns the modification date of the font.
func (info HeadTableInfo) ModifiedAt() time.Time {
	return epoch1904.Add(time.Duration(info.Modified) * time.Second)
}

// Revision returns the font revision as a decimal number, e.g. 2.037.
func (info HeadTableInfo) Revision() float64 {
	return float64(info.FontRevision) / 65536
}
