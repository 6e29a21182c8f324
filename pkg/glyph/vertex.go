package glyph

import (
	"math"

	"github.com/fifth-light/danmaku-renderer/pkg/danmaku"
	"github.com/fifth-light/danmaku-renderer/pkg/layout"
)

// Vertex is one corner of one glyph quad, packed for upload to the
// main render pass's vertex buffer.
type Vertex struct {
	Time      uint32
	TrackType uint32
	Track     uint32
	LineWidth uint32
	OffsetX   int32
	OffsetY   int32
	TexCoordX uint32
	TexCoordY uint32
	Color     [3]float32
}

// trackTypeCode maps a track family to the packed code the shader
// switches on: 0=Scroll, 1=Top, 2=Bottom.
func trackTypeCode(kind layout.PositionKind) uint32 {
	switch kind {
	case layout.PosTop:
		return 1
	case layout.PosBottom:
		return 2
	default:
		return 0
	}
}

// colorToSRGB decodes an 8-bit-per-channel sRGB color into linear
// values by raising each normalized channel to the power 2.2, matching
// the reference renderer's vertex color packing exactly.
func colorToSRGB(c danmaku.Color) [3]float32 {
	r, g, b := c.RGB()
	return [3]float32{
		float32(math.Pow(float64(r)/255, 2.2)),
		float32(math.Pow(float64(g)/255, 2.2)),
		float32(math.Pow(float64(b)/255, 2.2)),
	}
}

// glyphOffset computes a glyph's quad-corner offset from the pen
// position, correcting for the shaped line's baseline descent so that
// every glyph in a line of mixed ascender/descender heights lines up
// on a common baseline.
func glyphOffset(placement Placement, penX, penY float64, maxDescent float64) (x, y int32) {
	offsetX := penX + float64(placement.Left)
	offsetY := penY - float64(placement.Top) - maxDescent
	return int32(math.Round(offsetX)), int32(math.Round(offsetY))
}
