package atlaspack

import (
	"image"
	"testing"
)

func TestAddFitsWithinPage(t *testing.T) {
	p := New(64)
	a1, ok := p.Add(image.Pt(32, 32))
	if !ok {
		t.Fatal("expected the first 32x32 allocation to fit in a 64x64 page")
	}
	if a1.Pos.X != 0 || a1.Pos.Y != 0 {
		t.Fatalf("expected first allocation at origin, got %v", a1.Pos)
	}

	a2, ok := p.Add(image.Pt(32, 32))
	if !ok {
		t.Fatal("expected a second 32x32 allocation to fit alongside the first")
	}
	if a2.Pos == a1.Pos {
		t.Fatal("expected the second allocation to land in a different spot")
	}
}

func TestAddFailsWhenLargerThanMaxDim(t *testing.T) {
	p := New(64)
	if _, ok := p.Add(image.Pt(128, 16)); ok {
		t.Fatal("expected an allocation wider than maxDim to fail")
	}
}

func TestAddFailsWhenPageIsFull(t *testing.T) {
	p := New(32)
	if _, ok := p.Add(image.Pt(32, 32)); !ok {
		t.Fatal("expected the full-page allocation to succeed")
	}
	if _, ok := p.Add(image.Pt(1, 1)); ok {
		t.Fatal("expected no free space left after filling the only page")
	}
}

func TestClearResetsToFreshPage(t *testing.T) {
	p := New(32)
	if _, ok := p.Add(image.Pt(32, 32)); !ok {
		t.Fatal("expected the full-page allocation to succeed")
	}
	p.Clear()
	if _, ok := p.Add(image.Pt(32, 32)); !ok {
		t.Fatal("expected Clear to free the whole page again")
	}
}
