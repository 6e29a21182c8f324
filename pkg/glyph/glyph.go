// Package glyph implements the GPU-side glyph atlas: a texture shared
// by every comment on screen, a shadow pass whose output persists
// across chunks instead of being redrawn every frame, and the vertex
// and index buffers used to draw from it.
package glyph

import (
	"image"

	"github.com/fifth-light/danmaku-renderer/internal/atlaspack"
	"github.com/fifth-light/danmaku-renderer/pkg/chunkprovider"
)

// Placement is a rasterized glyph's bitmap metrics relative to the
// pen position: Left/Top are the offset from the pen to the bitmap's
// top-left corner, Width/Height are the bitmap's size in pixels.
type Placement struct {
	Left, Top     int
	Width, Height int
}

// Item is one glyph's location in the atlas texture, its rasterized
// size (including shadow padding), and its placement relative to the
// pen.
type Item struct {
	Placement Placement
	TexCoords [2]int
	TexSize   [2]int
	Alloc     atlaspack.Allocation
}

// newItem builds an Item for a rasterized glyph whose bitmap is
// placement.Width x placement.Height, padded by shadowWidth pixels on
// every edge so the shadow pass has room around the glyph, and packed at
// alloc within the atlas.
func newItem(placement Placement, shadowWidth int, alloc atlaspack.Allocation) Item {
	padded := placement
	padded.Left -= shadowWidth
	padded.Top += shadowWidth

	return Item{
		Placement: padded,
		TexCoords: [2]int{alloc.Pos.X, alloc.Pos.Y},
		TexSize:   [2]int{placement.Width + shadowWidth*2, placement.Height + shadowWidth*2},
		Alloc:     alloc,
	}
}

// Layer packs glyph bitmaps into shelves using a Packer and remembers
// where each one landed, so repeated requests for the same glyph don't
// re-pack it.
type Layer struct {
	packer      *atlaspack.Packer
	shadowWidth int
	items       map[chunkprovider.GlyphID]Item
}

// NewLayer builds a Layer over a maxDim x maxDim atlas page.
func NewLayer(maxDim, shadowWidth int) *Layer {
	return &Layer{packer: atlaspack.New(maxDim), shadowWidth: shadowWidth, items: make(map[chunkprovider.GlyphID]Item)}
}

// Get returns the previously packed Item for id, if any.
func (l *Layer) Get(id chunkprovider.GlyphID) (Item, bool) {
	item, ok := l.items[id]
	return item, ok
}

// NewItem packs a freshly rasterized glyph bitmap of size placement.Width
// x placement.Height into the layer and remembers it under id. It
// returns ok=false if the atlas has no room left, signaling the
// caller to grow the atlas (or start a fresh page) and retry.
func (l *Layer) NewItem(id chunkprovider.GlyphID, placement Placement) (Item, bool) {
	size := placement.Width + l.shadowWidth*2
	height := placement.Height + l.shadowWidth*2
	alloc, ok := l.packer.Add(image.Pt(size, height))
	if !ok {
		return Item{}, false
	}
	item := newItem(placement, l.shadowWidth, alloc)
	l.items[id] = item
	return item, true
}

// Clear discards every packed glyph and resets the packer to one empty
// page of the size the layer was built with.
func (l *Layer) Clear() {
	l.packer.Clear()
	l.items = make(map[chunkprovider.GlyphID]Item)
}
