package glyph

import (
	"testing"

	"github.com/fifth-light/danmaku-renderer/pkg/danmaku"
	"github.com/fifth-light/danmaku-renderer/pkg/layout"
)

func TestColorToSRGBWhiteAndBlack(t *testing.T) {
	white := colorToSRGB(danmaku.FromCode(0xFFFFFF))
	for i, v := range white {
		if v < 0.999 || v > 1.001 {
			t.Errorf("white channel %d = %v, want ~1.0", i, v)
		}
	}
	black := colorToSRGB(danmaku.FromCode(0x000000))
	for i, v := range black {
		if v != 0 {
			t.Errorf("black channel %d = %v, want 0", i, v)
		}
	}
}

func TestColorToSRGBAppliesGamma(t *testing.T) {
	// A mid-gray sRGB input decodes to well below 0.5 in linear terms.
	mid := colorToSRGB(danmaku.FromCode(0x808080))
	for i, v := range mid {
		if v >= 0.5 {
			t.Errorf("channel %d = %v, want < 0.5 after gamma 2.2 correction", i, v)
		}
	}
}

func TestGlyphOffsetAppliesBaselineCorrection(t *testing.T) {
	x, y := glyphOffset(Placement{Left: 4, Top: 10}, 100, 0, 3)
	if x != 104 {
		t.Errorf("x = %d, want 104", x)
	}
	if y != -13 {
		t.Errorf("y = %d, want -13 (0 - 10 - 3)", y)
	}
}

func TestTrackTypeCode(t *testing.T) {
	cases := map[layout.PositionKind]uint32{
		layout.PosScroll: 0,
		layout.PosTop:    1,
		layout.PosBottom: 2,
	}
	for kind, want := range cases {
		if got := trackTypeCode(kind); got != want {
			t.Errorf("trackTypeCode(%v) = %d, want %d", kind, got, want)
		}
	}
}
