// Package tiled implements the packed cell reference encoding used by the
// Tiled authoring tool: a 32-bit GID whose top three bits carry flip flags
// and whose low 29 bits carry the tile identity.
package tiled

import (
	"fmt"
	"strconv"
	"strings"
)

// Flip flag bit positions within a raw GID. These match Tiled's on-disk
// convention exactly and must not change.
const (
	FlippedHorizontally uint32 = 0x80000000
	FlippedVertically   uint32 = 0x40000000
	FlippedDiagonally   uint32 = 0x20000000

	// GIDMask selects the 29-bit tile identity.
	GIDMask uint32 = 0x1FFFFFFF
)

// Flags describes the orientation of a placed tile. The diagonal flip is a
// transpose; combined with H/V it expresses the 90-degree rotation class.
type Flags struct {
	Horizontal bool
	Vertical   bool
	Diagonal   bool
}

// None reports whether no flip is applied.
func (f Flags) None() bool {
	return !f.Horizontal && !f.Vertical && !f.Diagonal
}

// String renders the flags as an ordered subset of "HVD", empty when unflipped.
func (f Flags) String() string {
	var b strings.Builder
	if f.Horizontal {
		b.WriteByte('H')
	}
	if f.Vertical {
		b.WriteByte('V')
	}
	if f.Diagonal {
		b.WriteByte('D')
	}
	return b.String()
}

// Decode splits a raw GID into its tile identity and orientation flags.
// A raw value of 0 decodes to identity 0 with no flags: "no tile here",
// not an error.
func Decode(raw uint32) (uint32, Flags) {
	return raw & GIDMask, Flags{
		Horizontal: raw&FlippedHorizontally != 0,
		Vertical:   raw&FlippedVertically != 0,
		Diagonal:   raw&FlippedDiagonally != 0,
	}
}

// Encode packs a tile identity and flags back into a raw GID. It is the
// exact inverse of Decode for any identity that fits in 29 bits.
func Encode(id uint32, f Flags) uint32 {
	raw := id & GIDMask
	if f.Horizontal {
		raw |= FlippedHorizontally
	}
	if f.Vertical {
		raw |= FlippedVertically
	}
	if f.Diagonal {
		raw |= FlippedDiagonally
	}
	return raw
}

// Key is the atomic unit of the adjacency graph: a tile identity paired
// with its orientation flags. Two placements with the same identity but
// different flags are distinct keys and never merge, because a flipped
// tile generally has a different edge profile.
type Key struct {
	ID    uint32
	Flags Flags
}

// KeyFromRaw decodes a raw GID directly into a Key.
func KeyFromRaw(raw uint32) Key {
	id, f := Decode(raw)
	return Key{ID: id, Flags: f}
}

// IsEmpty reports whether the key is the empty sentinel (identity 0).
func (k Key) IsEmpty() bool {
	return k.ID == 0
}

// Raw packs the key back into its raw GID form.
func (k Key) Raw() uint32 {
	return Encode(k.ID, k.Flags)
}

// String serializes the key in its canonical form: "<id>" when unflipped,
// "<id>:<flags>" otherwise (e.g. "170:HV").
func (k Key) String() string {
	if k.Flags.None() {
		return strconv.FormatUint(uint64(k.ID), 10)
	}
	return strconv.FormatUint(uint64(k.ID), 10) + ":" + k.Flags.String()
}

// ParseKey parses the canonical key serialization. The flag suffix must be
// an ordered subset of "HVD" with each letter at most once.
func ParseKey(s string) (Key, error) {
	idPart := s
	flagPart := ""
	if i := strings.IndexByte(s, ':'); i >= 0 {
		idPart = s[:i]
		flagPart = s[i+1:]
		if flagPart == "" {
			return Key{}, fmt.Errorf("tile key %q: empty flag suffix", s)
		}
	}
	id, err := strconv.ParseUint(idPart, 10, 32)
	if err != nil {
		return Key{}, fmt.Errorf("tile key %q: invalid identity: %w", s, err)
	}
	if uint32(id) > GIDMask {
		return Key{}, fmt.Errorf("tile key %q: identity exceeds 29 bits", s)
	}
	flags, err := parseFlags(flagPart)
	if err != nil {
		return Key{}, fmt.Errorf("tile key %q: %w", s, err)
	}
	return Key{ID: uint32(id), Flags: flags}, nil
}

// parseFlags validates the H-then-V-then-D ordering while reading.
func parseFlags(s string) (Flags, error) {
	var f Flags
	rest := s
	if strings.HasPrefix(rest, "H") {
		f.Horizontal = true
		rest = rest[1:]
	}
	if strings.HasPrefix(rest, "V") {
		f.Vertical = true
		rest = rest[1:]
	}
	if strings.HasPrefix(rest, "D") {
		f.Diagonal = true
		rest = rest[1:]
	}
	if rest != "" {
		return Flags{}, fmt.Errorf("invalid flag suffix %q", s)
	}
	return f, nil
}
