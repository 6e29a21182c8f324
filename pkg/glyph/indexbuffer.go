package glyph

// generateIndices builds the index pattern for glyphCount quads, each
// glyph contributing 4 vertices and 6 indices. The winding order
// matches the reference renderer exactly: [start, start+2, start+1,
// start+1, start+2, start+3].
func generateIndices(glyphCount int) []uint32 {
	indices := make([]uint32, 0, glyphCount*6)
	for i := 0; i < glyphCount; i++ {
		start := uint32(i * 4)
		indices = append(indices,
			start, start+2, start+1,
			start+1, start+2, start+3,
		)
	}
	return indices
}

// IndexBuffer is a shared index buffer that only ever grows: every
// draw call that needs more glyph quads than it currently holds
// triggers a regeneration, but a draw needing fewer just uses a
// prefix of the existing buffer.
type IndexBuffer struct {
	glyphCount int
	indices    []uint32
	dirty      bool
}

// NewIndexBuffer builds an empty IndexBuffer.
func NewIndexBuffer() *IndexBuffer {
	return &IndexBuffer{}
}

// EnsureSize grows the buffer's backing index slice to cover at least
// glyphCount quads, regenerating it only if the current buffer is too
// small. It returns true if regeneration happened, so the GPU-backed
// buffer object knows it needs to re-upload.
func (b *IndexBuffer) EnsureSize(glyphCount int) bool {
	if glyphCount <= b.glyphCount {
		b.dirty = false
		return false
	}
	b.glyphCount = glyphCount
	b.indices = generateIndices(glyphCount)
	b.dirty = true
	return true
}

// Indices returns the current backing index slice. Only the first
// glyphCount*6 entries from the most recent EnsureSize call are
// meaningful to a particular draw; callers that need fewer indices
// than the buffer holds simply draw a prefix.
func (b *IndexBuffer) Indices() []uint32 { return b.indices }

// GlyphCapacity returns the largest glyph count the buffer currently
// has indices for.
func (b *IndexBuffer) GlyphCapacity() int { return b.glyphCount }
