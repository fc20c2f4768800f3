package tiled

// Transform expresses a tile orientation in the editor's rotate-then-flip
// model instead of Tiled's three flip bits.
type Transform struct {
	Rotation int  // degrees clockwise: 0, 90, 180 or 270
	FlipH    bool
	FlipV    bool
}

// Identity reports whether the transform leaves the tile untouched.
func (t Transform) Identity() bool {
	return t.Rotation == 0 && !t.FlipH && !t.FlipV
}

// transformTable maps each (H, V, D) combination to the visually equivalent
// rotate-then-flip transform. D alone and HVD are transpose/anti-transpose,
// which only exist as rotation+flip combos in the editor model.
var transformTable = map[Flags]Transform{
	{}:                                          {Rotation: 0},
	{Horizontal: true}:                          {Rotation: 0, FlipH: true},
	{Vertical: true}:                            {Rotation: 0, FlipV: true},
	{Horizontal: true, Vertical: true}:          {Rotation: 180},
	{Diagonal: true}:                            {Rotation: 90, FlipV: true},
	{Horizontal: true, Diagonal: true}:          {Rotation: 90},
	{Vertical: true, Diagonal: true}:            {Rotation: 270},
	{Horizontal: true, Vertical: true, Diagonal: true}: {Rotation: 270, FlipH: true},
}

// ToTransform converts orientation flags to the editor transform model.
func (f Flags) ToTransform() Transform {
	return transformTable[f]
}

// FlagsFromTransform is the inverse of ToTransform. The second return is
// false for transforms outside the eight representable combinations.
func FlagsFromTransform(t Transform) (Flags, bool) {
	for f, tt := range transformTable {
		if tt == t {
			return f, true
		}
	}
	return Flags{}, false
}
