package otface

import "github.com/npillmayer/otface/ot"

// Weight and width classes as defined for table OS/2.
const (
	WeightNormal uint16 = 400
	WeightBold   uint16 = 700
	WidthNormal  uint16 = 5
)

// Slopes of a typeface.
const (
	SlopeUpright uint8 = iota
	SlopeItalic
	SlopeOblique
)

// memo computes the value of o once. tf.mu guards all identity memos.
func memo[T any](tf *Typeface, o *ot.Option[T], compute func() T) T {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	if v, ok := o.Unwrap(); ok {
		return v
	}
	v := compute()
	*o = ot.Some(v)
	return v
}

// Family returns the family name of the typeface, preferring the typographic
// family name. If the typeface has been loaded without table 'name', Family
// returns the empty string.
func (tf *Typeface) Family() string {
	return memo(tf, &tf.family, func() string {
		return tf.lookupName(ot.NameTypographicFamily, ot.NameFamily)
	})
}

// Variant returns the sub-family name of the typeface, e.g. "Bold Italic",
// preferring the typographic sub-family name.
func (tf *Typeface) Variant() string {
	return memo(tf, &tf.variant, func() string {
		return tf.lookupName(ot.NameTypographicSubfamily, ot.NameSubfamily)
	})
}

func (tf *Typeface) lookupName(ids ...ot.NameID) string {
	name, ok := tf.name.Unwrap()
	if !ok {
		return ""
	}
	for _, id := range ids {
		if s, ok := name.Lookup(id); ok && s != "" {
			return s
		}
	}
	return ""
}

// Weight returns the weight class of the typeface (100…900).
// Without table OS/2, bold typefaces report WeightBold, all others WeightNormal.
func (tf *Typeface) Weight() uint16 {
	return memo(tf, &tf.weight, func() uint16 {
		if os2, ok := tf.os2.Unwrap(); ok {
			return os2.WeightClass
		}
		if tf.head.IsBold() {
			return WeightBold
		}
		return WeightNormal
	})
}

// Width returns the width class of the typeface (1…9, 5 being normal).
func (tf *Typeface) Width() uint16 {
	return memo(tf, &tf.width, func() uint16 {
		return ot.Map(tf.os2, func(os2 *ot.OS2Table) uint16 {
			return os2.WidthClass
		}).Or(WidthNormal)
	})
}

// Slope returns SlopeUpright, SlopeItalic or SlopeOblique.
func (tf *Typeface) Slope() uint8 {
	return memo(tf, &tf.slope, func() uint8 {
		if os2, ok := tf.os2.Unwrap(); ok {
			switch {
			case os2.IsItalic():
				return SlopeItalic
			case os2.IsOblique():
				return SlopeOblique
			}
			return SlopeUpright
		}
		if tf.head.IsItalic() {
			return SlopeItalic
		}
		return SlopeUpright
	})
}
