package glyph

import (
	"testing"

	"github.com/fifth-light/danmaku-renderer/pkg/chunkprovider"
)

func TestNewItemPadsForShadow(t *testing.T) {
	layer := NewLayer(256, 2)
	item, ok := layer.NewItem(chunkprovider.GlyphID(1), Placement{Left: 5, Top: 10, Width: 20, Height: 30})
	if !ok {
		t.Fatal("expected the first glyph to fit in a fresh atlas page")
	}
	if item.Placement.Left != 3 {
		t.Errorf("Placement.Left = %d, want 3 (5 - shadowWidth)", item.Placement.Left)
	}
	if item.Placement.Top != 12 {
		t.Errorf("Placement.Top = %d, want 12 (10 + shadowWidth)", item.Placement.Top)
	}
	if item.TexSize != [2]int{24, 34} {
		t.Errorf("TexSize = %v, want [24 34] (dimensions plus shadowWidth*2)", item.TexSize)
	}
}

func TestNewItemIsCachedAndRetrievable(t *testing.T) {
	layer := NewLayer(256, 0)
	id := chunkprovider.GlyphID(42)
	placed, ok := layer.NewItem(id, Placement{Width: 10, Height: 10})
	if !ok {
		t.Fatal("expected allocation to succeed")
	}
	got, ok := layer.Get(id)
	if !ok || got != placed {
		t.Fatalf("Get(%v) = %v, %v; want %v, true", id, got, ok, placed)
	}
}

func TestNewItemFailsWhenAtlasExhausted(t *testing.T) {
	layer := NewLayer(16, 0)
	if _, ok := layer.NewItem(chunkprovider.GlyphID(1), Placement{Width: 16, Height: 16}); !ok {
		t.Fatal("expected the first glyph to fill the atlas")
	}
	if _, ok := layer.NewItem(chunkprovider.GlyphID(2), Placement{Width: 1, Height: 1}); ok {
		t.Fatal("expected no room left for a second glyph")
	}
}

func TestClearFreesTheAtlas(t *testing.T) {
	layer := NewLayer(16, 0)
	layer.NewItem(chunkprovider.GlyphID(1), Placement{Width: 16, Height: 16})
	layer.Clear()
	if _, ok := layer.NewItem(chunkprovider.GlyphID(2), Placement{Width: 16, Height: 16}); !ok {
		t.Fatal("expected Clear to free the atlas for reuse")
	}
	if _, ok := layer.Get(chunkprovider.GlyphID(1)); ok {
		t.Fatal("expected Clear to forget previously packed glyphs")
	}
}
