package tiled

import "testing"

func TestDecode(t *testing.T) {
	tests := []struct {
		name   string
		raw    uint32
		wantID uint32
		want   Flags
	}{
		{"plain", 42, 42, Flags{}},
		{"empty cell", 0, 0, Flags{}},
		{"horizontal", 5 | FlippedHorizontally, 5, Flags{Horizontal: true}},
		{"vertical", 5 | FlippedVertically, 5, Flags{Vertical: true}},
		{"diagonal", 5 | FlippedDiagonally, 5, Flags{Diagonal: true}},
		{"all three", 170 | FlippedHorizontally | FlippedVertically | FlippedDiagonally,
			170, Flags{Horizontal: true, Vertical: true, Diagonal: true}},
		{"max identity", GIDMask, GIDMask, Flags{}},
		{"flags on empty", FlippedHorizontally, 0, Flags{Horizontal: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, flags := Decode(tt.raw)
			if id != tt.wantID {
				t.Errorf("Decode(%#x) id = %d, want %d", tt.raw, id, tt.wantID)
			}
			if flags != tt.want {
				t.Errorf("Decode(%#x) flags = %+v, want %+v", tt.raw, flags, tt.want)
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	// Every flag combination over a spread of identities.
	ids := []uint32{0, 1, 42, 170, 1023, GIDMask}
	for _, id := range ids {
		for bits := 0; bits < 8; bits++ {
			f := Flags{
				Horizontal: bits&1 != 0,
				Vertical:   bits&2 != 0,
				Diagonal:   bits&4 != 0,
			}
			raw := Encode(id, f)
			gotID, gotFlags := Decode(raw)
			if gotID != id || gotFlags != f {
				t.Errorf("round trip id=%d flags=%+v: got id=%d flags=%+v", id, f, gotID, gotFlags)
			}
		}
	}
}

func TestKeyString(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{Key{ID: 42}, "42"},
		{Key{ID: 5, Flags: Flags{Horizontal: true}}, "5:H"},
		{Key{ID: 170, Flags: Flags{Horizontal: true, Vertical: true}}, "170:HV"},
		{Key{ID: 7, Flags: Flags{Horizontal: true, Vertical: true, Diagonal: true}}, "7:HVD"},
		{Key{ID: 9, Flags: Flags{Vertical: true, Diagonal: true}}, "9:VD"},
		{Key{ID: 0}, "0"},
	}

	for _, tt := range tests {
		if got := tt.key.String(); got != tt.want {
			t.Errorf("Key%+v.String() = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestParseKey(t *testing.T) {
	valid := []struct {
		in   string
		want Key
	}{
		{"42", Key{ID: 42}},
		{"0", Key{ID: 0}},
		{"5:H", Key{ID: 5, Flags: Flags{Horizontal: true}}},
		{"5:V", Key{ID: 5, Flags: Flags{Vertical: true}}},
		{"5:D", Key{ID: 5, Flags: Flags{Diagonal: true}}},
		{"170:HV", Key{ID: 170, Flags: Flags{Horizontal: true, Vertical: true}}},
		{"170:HD", Key{ID: 170, Flags: Flags{Horizontal: true, Diagonal: true}}},
		{"170:VD", Key{ID: 170, Flags: Flags{Vertical: true, Diagonal: true}}},
		{"170:HVD", Key{ID: 170, Flags: Flags{Horizontal: true, Vertical: true, Diagonal: true}}},
		{"536870911", Key{ID: GIDMask}},
	}
	for _, tt := range valid {
		got, err := ParseKey(tt.in)
		if err != nil {
			t.Errorf("ParseKey(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKey(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}

	invalid := []string{
		"",           // no identity
		"abc",        // not a number
		"-1",         // negative
		"5:",         // empty suffix
		"5:X",        // unknown flag
		"5:VH",       // out of order
		"5:DH",       // out of order
		"5:HH",       // repeated
		"5:HVDH",     // repeated after full set
		"5:hv",       // lowercase
		"5:H:V",      // second separator
		"536870912",  // exceeds 29 bits
		"4294967296", // exceeds 32 bits
	}
	for _, in := range invalid {
		if _, err := ParseKey(in); err == nil {
			t.Errorf("ParseKey(%q) expected error, got none", in)
		}
	}
}

func TestParseKeyRoundTrip(t *testing.T) {
	for _, s := range []string{"1", "42:H", "170:HV", "9:VD", "7:HVD"} {
		key, err := ParseKey(s)
		if err != nil {
			t.Fatalf("ParseKey(%q): %v", s, err)
		}
		if got := key.String(); got != s {
			t.Errorf("ParseKey(%q).String() = %q", s, got)
		}
	}
}

func TestKeyRaw(t *testing.T) {
	key := Key{ID: 99, Flags: Flags{Horizontal: true, Diagonal: true}}
	if got := KeyFromRaw(key.Raw()); got != key {
		t.Errorf("KeyFromRaw(Raw()) = %+v, want %+v", got, key)
	}
}

func TestKeyIsEmpty(t *testing.T) {
	if !(Key{}).IsEmpty() {
		t.Error("zero key should be empty")
	}
	if (Key{ID: 1}).IsEmpty() {
		t.Error("key with identity should not be empty")
	}
	// Flags on identity 0 still mean "no tile".
	if !(Key{Flags: Flags{Horizontal: true}}).IsEmpty() {
		t.Error("flagged key with identity 0 should be empty")
	}
}
