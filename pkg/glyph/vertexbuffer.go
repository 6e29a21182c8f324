package glyph

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/fifth-light/danmaku-renderer/pkg/chunkprovider"
)

// Finder looks up a previously rasterized glyph's atlas placement.
// The GPU-backed texture manager implements this; tests can supply a
// map-backed fake.
type Finder interface {
	Find(id chunkprovider.GlyphID) (Item, bool)
}

// VertexBuffer is every glyph vertex needed to draw one chunk, built
// once and cached until the chunk or the glyph atlas layout changes.
type VertexBuffer struct {
	Index          uint32
	BaseStateIndex uint32
	Vertices       []Vertex
}

// GlyphCount returns how many glyph quads the buffer holds.
func (b *VertexBuffer) GlyphCount() int { return len(b.Vertices) / 4 }

// BuildVertexBuffer flattens every item in chunk into glyph quads,
// looking up each glyph's atlas placement through finder. Glyphs not
// yet present in the atlas (finder returns ok=false) are skipped; the
// caller is expected to have rasterized every glyph the chunk reports
// via SortedGlyphIDs before calling this.
//
// The lane itself is carried as a raw track index rather than
// pre-multiplied by line height: Scroll/Top measure from the top at
// (track+1)*lineHeight while Bottom measures from the bottom at
// track*lineHeight, and only the vertex shader knows which applies to
// a given vertex's track type.
func BuildVertexBuffer(chunk *chunkprovider.TimeChunk, finder Finder, lineHeight float64) *VertexBuffer {
	buf := &VertexBuffer{Index: chunk.Index, BaseStateIndex: chunk.BaseStateIndex}

	for _, positioned := range chunk.Items {
		line := positioned.Item.Line
		lane := uint32(positioned.Position.Lane)
		trackType := trackTypeCode(positioned.Position.Kind)
		lineWidth := uint32(line.Width())
		timeMs := uint32(positioned.Item.Danmaku.Time)
		color := colorToSRGB(positioned.Item.Danmaku.Color)

		for _, g := range line.Glyphs {
			item, ok := finder.Find(g.ID)
			if !ok {
				continue
			}
			buf.Vertices = append(buf.Vertices, quadVertices(item, g.X, g.Y, line.MaxDescent, timeMs, trackType, lane, lineWidth, color)...)
		}
	}

	return buf
}

// quadVertices builds the 4 corner vertices for one glyph, in the
// order [top-left, top-right, bottom-left, bottom-right] that
// generateIndices' winding expects.
func quadVertices(item Item, penX, penY, maxDescent float64, timeMs, trackType, track, lineWidth uint32, color [3]float32) []Vertex {
	x, y := glyphOffset(item.Placement, penX, penY, maxDescent)
	w := int32(item.TexSize[0])
	h := int32(item.TexSize[1])
	tx := uint32(item.TexCoords[0])
	ty := uint32(item.TexCoords[1])
	tw := uint32(item.TexSize[0])
	th := uint32(item.TexSize[1])

	base := Vertex{Time: timeMs, TrackType: trackType, Track: track, LineWidth: lineWidth, Color: color}

	topLeft := base
	topLeft.OffsetX, topLeft.OffsetY = x, y
	topLeft.TexCoordX, topLeft.TexCoordY = tx, ty

	topRight := base
	topRight.OffsetX, topRight.OffsetY = x+w, y
	topRight.TexCoordX, topRight.TexCoordY = tx+tw, ty

	bottomLeft := base
	bottomLeft.OffsetX, bottomLeft.OffsetY = x, y+h
	bottomLeft.TexCoordX, bottomLeft.TexCoordY = tx, ty+th

	bottomRight := base
	bottomRight.OffsetX, bottomRight.OffsetY = x+w, y+h
	bottomRight.TexCoordX, bottomRight.TexCoordY = tx+tw, ty+th

	return []Vertex{topLeft, topRight, bottomLeft, bottomRight}
}

// bufferKey identifies a cached VertexBuffer by chunk index and the
// track state it was laid out against.
type bufferKey struct {
	baseStateIndex uint32
	index          uint32
}

// Manager caches up to 8 prepared VertexBuffers, matching the
// reference renderer's fixed-size cache: enough to hold every chunk a
// worker's triple buffer can reference at once, with headroom for a
// scrub.
type Manager struct {
	cache *lru.Cache[bufferKey, *VertexBuffer]
}

// NewManager builds an empty VertexBuffer Manager.
func NewManager() *Manager {
	cache, err := lru.New[bufferKey, *VertexBuffer](8)
	if err != nil {
		panic(err) // only fails for a non-positive size, which 8 never is
	}
	return &Manager{cache: cache}
}

// GetOrBuild returns the cached VertexBuffer for chunk if one exists
// for its exact (index, base state index) pair, building and caching
// one otherwise.
func (m *Manager) GetOrBuild(chunk *chunkprovider.TimeChunk, finder Finder, lineHeight float64) *VertexBuffer {
	key := bufferKey{baseStateIndex: chunk.BaseStateIndex, index: chunk.Index}
	if buf, ok := m.cache.Get(key); ok {
		return buf
	}
	buf := BuildVertexBuffer(chunk, finder, lineHeight)
	m.cache.Add(key, buf)
	return buf
}

// Clear empties the cache, for use after a parameter change that
// invalidates every previously built buffer (e.g. a font size change).
func (m *Manager) Clear() {
	m.cache.Purge()
}
