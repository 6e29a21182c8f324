package glyph

import (
	"reflect"
	"testing"
)

func TestGenerateIndicesWinding(t *testing.T) {
	got := generateIndices(2)
	want := []uint32{
		0, 2, 1, 1, 2, 3,
		4, 6, 5, 5, 6, 7,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("generateIndices(2) = %v, want %v", got, want)
	}
}

func TestIndexBufferOnlyGrows(t *testing.T) {
	b := NewIndexBuffer()

	if !b.EnsureSize(4) {
		t.Fatal("expected the first EnsureSize call to regenerate")
	}
	cap4 := b.GlyphCapacity()

	if b.EnsureSize(2) {
		t.Fatal("shrinking the requested size should not regenerate")
	}
	if b.GlyphCapacity() != cap4 {
		t.Fatalf("capacity shrank to %d, want it to stay at %d", b.GlyphCapacity(), cap4)
	}

	if !b.EnsureSize(10) {
		t.Fatal("expected growing past capacity to regenerate")
	}
	if b.GlyphCapacity() != 10 {
		t.Fatalf("capacity = %d, want 10", b.GlyphCapacity())
	}
}
