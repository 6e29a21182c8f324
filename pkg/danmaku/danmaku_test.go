package danmaku

import "testing"

func TestTimeString(t *testing.T) {
	cases := []struct {
		ms   Time
		want string
	}{
		{0, "00:00.000"},
		{1500, "00:01.500"},
		{61001, "01:01.001"},
		{3_600_000, "60:00.000"},
	}
	for _, c := range cases {
		t.Run(c.want, func(t *testing.T) {
			if got := c.ms.String(); got != c.want {
				t.Errorf("Time(%d).String() = %q, want %q", c.ms, got, c.want)
			}
		})
	}
}

func TestColorFromCode(t *testing.T) {
	c := FromCode(0xFF00AA)
	if r, g, b := c.RGB(); r != 0xFF || g != 0x00 || b != 0xAA {
		t.Errorf("RGB() = %02x %02x %02x, want ff 00 aa", r, g, b)
	}
	if got, want := c.String(), "#FF00AA"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestColorFromCodeRejectsOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("FromCode did not panic on an out-of-range code")
		}
	}()
	FromCode(0xFF000000)
}

func TestColorFromCodeCastMasks(t *testing.T) {
	c := FromCodeCast(0xABEF1234)
	if uint32(c) != 0xEF1234 {
		t.Errorf("FromCodeCast masked to %#x, want %#x", uint32(c), 0xEF1234)
	}
}

func TestTypeString(t *testing.T) {
	for _, tc := range []struct {
		typ  Type
		want string
	}{
		{Scroll, "Scroll"},
		{Top, "Top"},
		{Bottom, "Bottom"},
		{Unknown, "Unknown"},
	} {
		if got := tc.typ.String(); got != tc.want {
			t.Errorf("Type(%d).String() = %q, want %q", tc.typ, got, tc.want)
		}
	}
}
