package glyph

import (
	"github.com/fifth-light/danmaku-renderer/pkg/chunkprovider"
	"github.com/fifth-light/danmaku-renderer/pkg/danmaku"
)

// FixedBoxRasterizer produces a solid coverage box for every glyph,
// sized off its GlyphID's size bucket. It is the Rasterizer counterpart
// to chunkprovider.FixedAdvanceShaper: neither traces real glyph
// outlines, but together they drive the atlas, shadow pass and vertex
// buffers with plausible, correctly sized geometry. A real deployment
// supplies its own Rasterizer backed by an actual font rasterizer.
type FixedBoxRasterizer struct {
	// BaseWidth and BaseHeight are a Regular-size glyph's box dimensions,
	// in pixels.
	BaseWidth, BaseHeight int
}

// NewFixedBoxRasterizer builds a FixedBoxRasterizer with a 16x20 box,
// narrow enough to fit inside chunkprovider.NewFixedAdvanceShaper's
// default 18px advance.
func NewFixedBoxRasterizer() FixedBoxRasterizer {
	return FixedBoxRasterizer{BaseWidth: 16, BaseHeight: 20}
}

func (r FixedBoxRasterizer) scale(size float64) (width, height int) {
	return int(float64(r.BaseWidth) * size), int(float64(r.BaseHeight) * size)
}

// Rasterize fills a Width x Height box at full coverage. Space (rune
// 0x20) rasterizes to a zero-size, skipped glyph.
func (r FixedBoxRasterizer) Rasterize(id chunkprovider.GlyphID) ([]byte, Placement, bool) {
	if id.Rune() == ' ' {
		return nil, Placement{}, true
	}

	scale := 1.0
	switch id.Size() {
	case danmaku.Small:
		scale = 0.75
	case danmaku.Large:
		scale = 1.5
	}
	width, height := r.scale(scale)

	pixels := make([]byte, width*height)
	for i := range pixels {
		pixels[i] = 0xFF
	}
	placement := Placement{Left: 0, Top: height, Width: width, Height: height}
	return pixels, placement, true
}
