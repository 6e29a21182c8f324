// Package rendercache defines the capability contract a rendering
// back-end must satisfy to be driven by the worker package's
// triple-buffered chunk pipeline, plus a trivial back-end that
// satisfies it by doing nothing.
package rendercache

import "github.com/fifth-light/danmaku-renderer/pkg/chunkprovider"

// ChunkBuffer is whatever a RenderCache produces from a TimeChunk: a
// GPU-ready (or otherwise prepared) representation that still
// remembers which chunk it came from.
type ChunkBuffer interface {
	Index() uint32
	BaseStateIndex() uint32
}

// RenderCache turns chunks into ChunkBuffers and reacts to parameter
// changes (font size, screen size, and the like). B is the concrete
// ChunkBuffer type this cache produces.
type RenderCache[B ChunkBuffer] interface {
	// NewParam is called whenever rendering parameters change; the cache
	// should drop and recreate any parameter-dependent resources (e.g. a
	// glyph atlas sized for the old font).
	NewParam(param any) error
	// Prepare builds a ChunkBuffer for chunk, allocating or reusing GPU
	// resources as needed.
	Prepare(chunk *chunkprovider.TimeChunk) (B, error)
}

// Flusher is implemented by caches that need to submit accumulated
// work (e.g. a shadow pass draw call) once all of a request's chunks
// have been prepared. Caches with nothing to submit need not
// implement it.
type Flusher interface {
	Flush()
}

// NoopChunkBuffer is a ChunkBuffer that holds nothing but its chunk's
// identity.
type NoopChunkBuffer struct {
	index          uint32
	baseStateIndex uint32
}

func (b NoopChunkBuffer) Index() uint32          { return b.index }
func (b NoopChunkBuffer) BaseStateIndex() uint32 { return b.baseStateIndex }

// Noop is a RenderCache that does no GPU work at all. It exists to
// prove the worker pipeline's contract is satisfiable by something
// trivial, and is useful for testing the pipeline in isolation from a
// real graphics context.
type Noop struct{}

func (Noop) NewParam(any) error { return nil }

func (Noop) Prepare(chunk *chunkprovider.TimeChunk) (NoopChunkBuffer, error) {
	return NoopChunkBuffer{index: chunk.Index, baseStateIndex: chunk.BaseStateIndex}, nil
}
