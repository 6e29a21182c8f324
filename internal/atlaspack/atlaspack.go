// Package atlaspack implements a bucketed shelf/guillotine rectangle
// packer, used to place glyphs within the glyph atlas texture without
// a central directory of every allocation: each inserted rectangle
// splits its matched free space into up to two smaller free spaces,
// and new allocations try the most recently created free space first.
package atlaspack

import "image"

// Allocation is a packed rectangle's placement and a sequential ID.
// Individual allocations cannot be freed; only Clear releases space.
type Allocation struct {
	ID  int
	Pos image.Point
}

// Packer packs rectangles of a fixed maximum size (maxDim x maxDim)
// into a growing list of free spaces, starting from a single
// maxDim-sized page.
type Packer struct {
	maxDim int
	spaces []image.Rectangle
	sizes  []image.Point
	nextID int
}

// New builds a Packer whose packed area never exceeds maxDim in
// either dimension.
func New(maxDim int) *Packer {
	p := &Packer{maxDim: maxDim}
	p.newPage()
	return p
}

// MaxDim returns the packer's maximum dimension.
func (p *Packer) MaxDim() int { return p.maxDim }

func (p *Packer) newPage() {
	p.spaces = append(p.spaces, image.Rect(0, 0, p.maxDim, p.maxDim))
}

// Add packs a size.X x size.Y rectangle, returning its allocation. It
// returns ok=false if size does not fit anywhere, even after the
// packer's internal free-space list is exhausted (the caller is
// expected to grow the atlas and build a fresh Packer in that case).
func (p *Packer) Add(size image.Point) (Allocation, bool) {
	if size.X > p.maxDim || size.Y > p.maxDim {
		return Allocation{}, false
	}
	if pos, ok := p.tryAdd(size); ok {
		id := p.nextID
		p.nextID++
		p.sizes = append(p.sizes, size)
		return Allocation{ID: id, Pos: pos}, true
	}
	return Allocation{}, false
}

// tryAdd iterates free spaces from most-recently-added to oldest,
// preferring the last (generally smaller) spaces created by previous
// splits over the original full-page space.
func (p *Packer) tryAdd(size image.Point) (image.Point, bool) {
	for i := len(p.spaces) - 1; i >= 0; i-- {
		space := p.spaces[i]
		w, h := space.Dx(), space.Dy()
		if size.X > w || size.Y > h {
			continue
		}

		pos := space.Min

		// Remove the matched space and replace it with up to two
		// remainder rectangles: the strip below the placed rectangle, and
		// the strip to its right.
		p.spaces = append(p.spaces[:i], p.spaces[i+1:]...)

		if h-size.Y > 0 {
			p.spaces = append(p.spaces, image.Rect(space.Min.X, space.Min.Y+size.Y, space.Max.X, space.Max.Y))
		}
		if w-size.X > 0 {
			p.spaces = append(p.spaces, image.Rect(space.Min.X+size.X, space.Min.Y, space.Max.X, space.Min.Y+size.Y))
		}

		return pos, true
	}
	return image.Point{}, false
}

// Clear discards every allocation and resets the packer to a single
// fresh page.
func (p *Packer) Clear() {
	p.spaces = nil
	p.sizes = nil
	p.nextID = 0
	p.newPage()
}
