// Package chunkprovider groups comments into fixed-size time windows
// ("chunks") and lays each one out on the track engine, caching the
// result so that re-requesting the same chunk with the same track
// state is free. Chunks are generated deterministically from a state
// derived from the previous chunk, so a renderer can scrub backward
// and forward through a video without re-running layout from scratch.
package chunkprovider

import (
	"github.com/fifth-light/danmaku-renderer/pkg/danmaku"
	"github.com/fifth-light/danmaku-renderer/pkg/layout"
	"github.com/fifth-light/danmaku-renderer/pkg/source"
)

// LayoutedDanmakuItem is a comment after text shaping, before it has
// been assigned a lane. It implements layout.Item.
type LayoutedDanmakuItem struct {
	Danmaku danmaku.Danmaku
	Line    ShapedLine
}

func (i LayoutedDanmakuItem) Time() danmaku.Time { return i.Danmaku.Time }
func (i LayoutedDanmakuItem) Kind() danmaku.Type { return i.Danmaku.Type }
func (i LayoutedDanmakuItem) Width() float64     { return i.Line.Width() }

// PositionedDanmakuItem is a shaped comment that has been assigned a
// lane by the track engine.
type PositionedDanmakuItem struct {
	Item     LayoutedDanmakuItem
	Position layout.Position
}

// TimeChunk is every comment that appears within one fixed-size time
// window, already laid out, plus the set of distinct glyphs the chunk
// needs rasterized.
type TimeChunk struct {
	// BaseStateIndex is the index of the chunk at which the chain of
	// track states this chunk's layout continues was started from a
	// fresh track state (itself, if this chunk started from a fresh one).
	BaseStateIndex uint32
	Index          uint32
	Items          []PositionedDanmakuItem
	GlyphIDs       map[GlyphID]struct{}
}

// SortedGlyphIDs returns the chunk's glyph set in a deterministic
// order, for callers (the glyph atlas) that need stable iteration.
func (c *TimeChunk) SortedGlyphIDs() []GlyphID {
	ids := make([]GlyphID, 0, len(c.GlyphIDs))
	for id := range c.GlyphIDs {
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	return ids
}

type stateEntry struct {
	baseStateIndex uint32
	state          *layout.TrackState
}

// Params configures how a Provider derives track state and slices
// time into chunks.
type Params struct {
	Mode         layout.Mode
	ScreenWidth  float64
	ScreenHeight float64
	LineHeight   float64
	LifetimeMs   uint32
}

func (p Params) newTrackState() *layout.TrackState {
	return layout.New(p.Mode, p.ScreenWidth, p.ScreenHeight, p.LineHeight, p.LifetimeMs)
}

// Provider generates and caches TimeChunks on demand from a comment
// Source.
type Provider struct {
	source source.Source
	shaper Shaper
	params Params

	states map[uint32]stateEntry
	chunks map[uint32]*TimeChunk
}

// New builds a Provider over src, shaping text with shaper according
// to params.
func New(src source.Source, shaper Shaper, params Params) *Provider {
	return &Provider{
		source: src,
		shaper: shaper,
		params: params,
		states: make(map[uint32]stateEntry),
		chunks: make(map[uint32]*TimeChunk),
	}
}

// generateChunk lays out every comment in chunk index's time window
// against state, mutating state in place.
func (p *Provider) generateChunk(baseStateIndex, index uint32, state *layout.TrackState) *TimeChunk {
	lifetime := p.params.LifetimeMs
	start := danmaku.Time(index * lifetime)
	end := danmaku.Time((index + 1) * lifetime)

	chunk := &TimeChunk{
		BaseStateIndex: baseStateIndex,
		Index:          index,
		GlyphIDs:       make(map[GlyphID]struct{}),
	}

	for _, d := range p.source.GetRange(start, end) {
		line := p.shaper.Shape(d.Content, d.Size)
		item := LayoutedDanmakuItem{Danmaku: d, Line: line}

		pos, ok := state.Insert(item)
		if !ok {
			continue
		}

		chunk.Items = append(chunk.Items, PositionedDanmakuItem{Item: item, Position: pos})
		for _, g := range line.Glyphs {
			chunk.GlyphIDs[g.ID] = struct{}{}
		}
	}

	return chunk
}

// GetChunk returns the chunk at index, generating and caching it if
// necessary. hint, if non-nil, is the base state index the caller
// last observed for this index; passing the same hint back on a
// repeated request for the same index is a cache hit and performs no
// layout work. The returned chunk's BaseStateIndex field records the
// base state index it was actually generated from, which callers should
// use as the hint for subsequent neighboring requests (e.g. index+1).
func (p *Provider) GetChunk(hint *uint32, index uint32) *TimeChunk {
	if cached, ok := p.chunks[index]; ok {
		if hint == nil || cached.BaseStateIndex == *hint {
			return cached
		}
	}

	var baseStateIndex uint32
	var state *layout.TrackState
	if index != 0 {
		if prev, ok := p.states[index-1]; ok {
			delete(p.states, index-1)
			baseStateIndex = prev.baseStateIndex
			state = prev.state
		}
	}
	if state == nil {
		baseStateIndex = index
		state = p.params.newTrackState()
	}

	chunk := p.generateChunk(baseStateIndex, index, state)

	p.states[index] = stateEntry{baseStateIndex: baseStateIndex, state: state}
	p.chunks[index] = chunk

	return chunk
}
