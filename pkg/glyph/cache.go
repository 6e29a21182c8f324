package glyph

import (
	"github.com/fifth-light/danmaku-renderer/pkg/chunkprovider"
	"github.com/fifth-light/danmaku-renderer/pkg/rendercache"
)

// GPUChunkBuffer is the rendercache.ChunkBuffer this package's Cache
// produces: a chunk's prepared vertex buffer alongside the chunk
// identity the worker's triple buffer tracks it by.
type GPUChunkBuffer struct {
	index          uint32
	baseStateIndex uint32
	Buffer         *VertexBuffer
}

func (b GPUChunkBuffer) Index() uint32          { return b.index }
func (b GPUChunkBuffer) BaseStateIndex() uint32 { return b.baseStateIndex }

// CacheParam reconfigures a Cache when layout parameters change. Any
// call to NewParam drops every cached vertex buffer.
type CacheParam struct {
	LineHeight float64
}

// Cache is the rendercache.RenderCache[GPUChunkBuffer] implementation
// that drives pkg/render's main pass: it rasterizes every glyph a
// chunk needs into the shared atlas, then builds (or reuses) that
// chunk's vertex buffer. It implements rendercache.Flusher so the
// worker submits the shadow pass's accumulated draw once per request,
// not once per chunk.
type Cache struct {
	textures   *TextureManager
	buffers    *Manager
	lineHeight float64
}

// NewCache builds a Cache backed by textures, laying glyphs out against
// lineHeight.
func NewCache(textures *TextureManager, lineHeight float64) *Cache {
	return &Cache{textures: textures, buffers: NewManager(), lineHeight: lineHeight}
}

// NewParam accepts a CacheParam, storing its line height and clearing
// the vertex buffer cache so every chunk's vertex buffer is rebuilt.
func (c *Cache) NewParam(param any) error {
	if p, ok := param.(CacheParam); ok {
		c.lineHeight = p.LineHeight
	}
	c.buffers.Clear()
	return nil
}

// Prepare rasterizes chunk's glyphs into the atlas and returns its
// vertex buffer.
func (c *Cache) Prepare(chunk *chunkprovider.TimeChunk) (GPUChunkBuffer, error) {
	if err := c.textures.Generate(chunk.SortedGlyphIDs()); err != nil {
		return GPUChunkBuffer{}, err
	}
	buf := c.buffers.GetOrBuild(chunk, c.textures, c.lineHeight)
	return GPUChunkBuffer{index: chunk.Index, baseStateIndex: chunk.BaseStateIndex, Buffer: buf}, nil
}

// Flush submits the shadow pass's accumulated glyph quads.
func (c *Cache) Flush() {
	c.textures.Flush()
}

var _ rendercache.RenderCache[GPUChunkBuffer] = (*Cache)(nil)
var _ rendercache.Flusher = (*Cache)(nil)
