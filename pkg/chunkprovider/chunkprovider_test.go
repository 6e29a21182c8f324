package chunkprovider

import (
	"testing"

	"github.com/fifth-light/danmaku-renderer/pkg/danmaku"
	"github.com/fifth-light/danmaku-renderer/pkg/layout"
	"github.com/fifth-light/danmaku-renderer/pkg/source"
)

func testParams() Params {
	return Params{
		Mode:         layout.NewShowAllMode(),
		ScreenWidth:  1920,
		ScreenHeight: 1080,
		LineHeight:   30,
		LifetimeMs:   4000,
	}
}

func testProvider(items []danmaku.Danmaku) *Provider {
	src := source.NewVecSource(items)
	return New(src, NewFixedAdvanceShaper(), testParams())
}

func TestGetChunkCoversItsTimeWindow(t *testing.T) {
	p := testProvider([]danmaku.Danmaku{
		{Time: 100, Type: danmaku.Scroll, Size: danmaku.Regular, Content: "a"},
		{Time: 3999, Type: danmaku.Scroll, Size: danmaku.Regular, Content: "b"},
		{Time: 4000, Type: danmaku.Scroll, Size: danmaku.Regular, Content: "c"},
	})

	chunk := p.GetChunk(nil, 0)
	if len(chunk.Items) != 2 {
		t.Fatalf("chunk 0 has %d items, want 2 (the item at 4000 belongs to chunk 1)", len(chunk.Items))
	}

	chunk1 := p.GetChunk(&chunk.BaseStateIndex, 1)
	if len(chunk1.Items) != 1 {
		t.Fatalf("chunk 1 has %d items, want 1", len(chunk1.Items))
	}
}

func TestGetChunkCachesOnMatchingHint(t *testing.T) {
	p := testProvider([]danmaku.Danmaku{{Time: 0, Type: danmaku.Scroll, Content: "a"}})

	first := p.GetChunk(nil, 0)
	second := p.GetChunk(&first.BaseStateIndex, 0)
	if first != second {
		t.Fatal("expected a cache hit when the hint matches the cached base state index")
	}
}

func TestGetChunkRegeneratesOnMismatchedHint(t *testing.T) {
	p := testProvider([]danmaku.Danmaku{{Time: 0, Type: danmaku.Scroll, Content: "a"}})

	first := p.GetChunk(nil, 0)
	var wrongHint uint32 = first.BaseStateIndex + 1
	second := p.GetChunk(&wrongHint, 0)
	if first == second {
		t.Fatal("expected regeneration when the hint does not match the cached base state index")
	}
}

func TestSequentialChunksResumeFromPriorState(t *testing.T) {
	// Two Top comments, one per chunk. With only one Top lane, in
	// NoOverlap mode the second is still placeable because the first has
	// expired by then, and chunk 1 continues chunk 0's track state, which
	// its base state index records.
	src := source.NewVecSource([]danmaku.Danmaku{
		{Time: 0, Type: danmaku.Top, Content: "a"},
		{Time: 4001, Type: danmaku.Top, Content: "b"},
	})
	p := New(src, NewFixedAdvanceShaper(), Params{
		Mode:         layout.NewNoOverlapMode(100),
		ScreenWidth:  1920,
		ScreenHeight: 60, // two 30px lines; static lanes are capped at half, so exactly one Top lane
		LineHeight:   30,
		LifetimeMs:   4000,
	})

	chunk0 := p.GetChunk(nil, 0)
	if len(chunk0.Items) != 1 {
		t.Fatalf("chunk 0 has %d items, want 1", len(chunk0.Items))
	}

	chunk1 := p.GetChunk(&chunk0.BaseStateIndex, 1)
	if len(chunk1.Items) != 1 {
		t.Fatalf("chunk 1 has %d items, want 1 (the lane should have freed up by the time the second comment arrives)", len(chunk1.Items))
	}
	if chunk1.BaseStateIndex != chunk0.BaseStateIndex {
		t.Fatalf("chunk 1 base state index = %d, want %d (resumed from chunk 0's state)", chunk1.BaseStateIndex, chunk0.BaseStateIndex)
	}
}

func TestGlyphIDsAccumulateAcrossItems(t *testing.T) {
	p := testProvider([]danmaku.Danmaku{
		{Time: 0, Type: danmaku.Scroll, Content: "ab"},
		{Time: 1, Type: danmaku.Scroll, Content: "bc"},
	})
	chunk := p.GetChunk(nil, 0)
	if len(chunk.GlyphIDs) != 3 {
		t.Fatalf("got %d distinct glyphs, want 3 (a, b, c)", len(chunk.GlyphIDs))
	}
}
