package glyph

import (
	"fmt"

	"github.com/go-gl/gl/v4.6-core/gl"

	"github.com/fifth-light/danmaku-renderer/pkg/chunkprovider"
)

// Rasterizer turns a glyph into an R8 coverage bitmap and its pen
// placement. A real deployment backs this with an actual font
// rasterizer; see the Shaper doc comment in chunkprovider for why this
// package does not bundle one.
type Rasterizer interface {
	Rasterize(id chunkprovider.GlyphID) (pixels []byte, placement Placement, ok bool)
}

// TextureManager owns the atlas texture glyphs are packed into and
// the shadow texture the shadow pass stamps each new glyph's padded box
// into at full coverage; no blur kernel is applied. Both are
// single-channel R8 textures sampled by the main render pass.
type TextureManager struct {
	rasterizer  Rasterizer
	shadowWidth int

	size int
	tex  uint32

	shadow *Shadow

	layer *Layer
}

// NewTextureManager allocates an initialSize x initialSize atlas and
// shadow texture pair.
func NewTextureManager(rasterizer Rasterizer, shadowWidth, initialSize int) (*TextureManager, error) {
	m := &TextureManager{rasterizer: rasterizer, shadowWidth: shadowWidth, size: initialSize}
	m.layer = NewLayer(initialSize, shadowWidth)

	gl.GenTextures(1, &m.tex)
	m.allocateTexture(m.tex, initialSize)

	shadow, err := newShadow(initialSize)
	if err != nil {
		return nil, fmt.Errorf("glyph: building shadow pass: %w", err)
	}
	m.shadow = shadow

	return m, nil
}

func (m *TextureManager) allocateTexture(tex uint32, size int) {
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.R8, int32(size), int32(size), 0, gl.RED, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
}

// growTexture doubles the atlas and shadow texture sizes, copies the
// old contents into the new ones, and clears the layer's packed-glyph
// bookkeeping so every glyph will be reinserted into the larger atlas.
func (m *TextureManager) growTexture() error {
	newSize := m.size * 2

	var newTex uint32
	gl.GenTextures(1, &newTex)
	m.allocateTexture(newTex, newSize)
	gl.CopyImageSubData(m.tex, gl.TEXTURE_2D, 0, 0, 0, 0, newTex, gl.TEXTURE_2D, 0, 0, 0, 0, int32(m.size), int32(m.size), 1)
	gl.DeleteTextures(1, &m.tex)
	m.tex = newTex

	if err := m.shadow.grow(newSize); err != nil {
		return fmt.Errorf("glyph: growing shadow texture: %w", err)
	}

	m.size = newSize
	m.layer = NewLayer(newSize, m.shadowWidth)
	return nil
}

// Find returns a previously inserted glyph's atlas placement.
func (m *TextureManager) Find(id chunkprovider.GlyphID) (Item, bool) {
	return m.layer.Get(id)
}

// Generate rasterizes and inserts every glyph in ids that is not
// already present in the atlas, growing the atlas (and retrying) if
// it runs out of room. A glyph wider or taller than a freshly grown,
// empty atlas can never fit and is treated as a programming error.
func (m *TextureManager) Generate(ids []chunkprovider.GlyphID) error {
	for _, id := range ids {
		if _, ok := m.layer.Get(id); ok {
			continue
		}
		if err := m.insertGlyph(id); err != nil {
			return err
		}
	}
	return nil
}

func (m *TextureManager) insertGlyph(id chunkprovider.GlyphID) error {
	pixels, placement, ok := m.rasterizer.Rasterize(id)
	if !ok || placement.Width == 0 || placement.Height == 0 {
		return nil
	}

	item, ok := m.layer.NewItem(id, placement)
	if !ok {
		if err := m.growTexture(); err != nil {
			return err
		}
		item, ok = m.layer.NewItem(id, placement)
		if !ok {
			panic(fmt.Sprintf("glyph: %dx%d glyph does not fit in a fresh %dx%d atlas", placement.Width, placement.Height, m.size, m.size))
		}
	}

	gl.BindTexture(gl.TEXTURE_2D, m.tex)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0,
		int32(item.TexCoords[0]+m.shadowWidth), int32(item.TexCoords[1]+m.shadowWidth),
		int32(placement.Width), int32(placement.Height),
		gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(pixels))

	m.shadow.newGlyph(item)
	return nil
}

// Flush submits the shadow pass's accumulated glyph quads.
func (m *TextureManager) Flush() {
	m.shadow.draw()
}

// Texture returns the atlas texture name, for binding into the main
// render pass.
func (m *TextureManager) Texture() uint32 { return m.tex }

// ShadowTexture returns the shadow texture name.
func (m *TextureManager) ShadowTexture() uint32 { return m.shadow.texture }
