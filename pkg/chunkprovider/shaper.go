package chunkprovider

import (
	"math"

	"github.com/fifth-light/danmaku-renderer/pkg/danmaku"
)

// GlyphID identifies one rasterizable glyph: a rune at a given size.
// The renderer's glyph atlas is keyed on this type.
type GlyphID uint32

func newGlyphID(r rune, size danmaku.Size) GlyphID {
	return GlyphID(uint32(size)<<24 | uint32(r)&0x00FFFFFF)
}

// Rune recovers the original rune from a GlyphID.
func (g GlyphID) Rune() rune { return rune(uint32(g) & 0x00FFFFFF) }

// Size recovers the font size bucket from a GlyphID.
func (g GlyphID) Size() danmaku.Size { return danmaku.Size(uint32(g) >> 24) }

// PlacedGlyph is one shaped glyph within a line: its identity and its
// pen-relative offset.
type PlacedGlyph struct {
	ID GlyphID
	X  float64
	Y  float64
}

// ShapedLine is the result of laying out one comment's text: its
// glyphs, total advance width, and the deepest descender (used to
// align the baseline against the comment's lane).
type ShapedLine struct {
	Glyphs     []PlacedGlyph
	Advance    float64
	MaxDescent float64
}

// Width returns the line's rendered width in whole pixels, rounded up
// so a comment never understates the space it occupies on screen.
func (l ShapedLine) Width() float64 {
	return math.Ceil(l.Advance)
}

// Shaper turns comment text into a shaped line of glyphs at a given
// size bucket. Real deployments back this with an actual text shaper;
// the corpus carries no Go font-shaping library (the original renderer
// shapes with Rust's cosmic_text, which has no Go equivalent anywhere
// in the example pack or a commonly vendored module), so this package
// ships a fixed-advance stub good enough to drive layout and the
// glyph atlas end to end.
type Shaper interface {
	Shape(text string, size danmaku.Size) ShapedLine
}

// FixedAdvanceShaper lays out text on a simple fixed per-glyph advance
// that scales with the size bucket, with no font hinting, kerning, or
// combining-mark handling.
type FixedAdvanceShaper struct {
	// BaseAdvance is the advance width, in pixels, of a Regular-size glyph.
	BaseAdvance float64
	// BaseDescent is the descender depth, in pixels, of a Regular-size glyph.
	BaseDescent float64
}

// NewFixedAdvanceShaper builds a FixedAdvanceShaper with sensible
// defaults for a typical comment font size.
func NewFixedAdvanceShaper() FixedAdvanceShaper {
	return FixedAdvanceShaper{BaseAdvance: 18, BaseDescent: 4}
}

func sizeScale(size danmaku.Size) float64 {
	switch size {
	case danmaku.Small:
		return 0.75
	case danmaku.Large:
		return 1.5
	default:
		return 1.0
	}
}

// Shape lays out text left to right, advancing by a fixed per-glyph
// width scaled for the requested size bucket.
func (s FixedAdvanceShaper) Shape(text string, size danmaku.Size) ShapedLine {
	scale := sizeScale(size)
	advance := s.BaseAdvance * scale
	descent := s.BaseDescent * scale

	line := ShapedLine{MaxDescent: descent}
	x := 0.0
	for _, r := range text {
		line.Glyphs = append(line.Glyphs, PlacedGlyph{ID: newGlyphID(r, size), X: x, Y: 0})
		x += advance
	}
	line.Advance = x
	return line
}
