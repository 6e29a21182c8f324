// Package source provides comment data sources: anything that can
// answer "give me every comment in this time range", plus a simple
// in-memory implementation.
package source

import (
	"sort"

	"github.com/fifth-light/danmaku-renderer/pkg/danmaku"
)

// Source is a collection of comments that can be queried by time
// range. Implementations are expected to be cheap to query repeatedly
// (the chunk provider calls GetRange once per chunk).
type Source interface {
	// GetRange returns every comment with Time in [start, end).
	GetRange(start, end danmaku.Time) []danmaku.Danmaku
	// GetAll returns every comment, in time order.
	GetAll() []danmaku.Danmaku
	// IntoAll consumes the source and returns every comment, allowing an
	// implementation to avoid a defensive copy when it will not be used
	// again.
	IntoAll() []danmaku.Danmaku
}

// VecSource is a Source backed by a sorted in-memory slice.
type VecSource struct {
	items []danmaku.Danmaku
}

// NewVecSource builds a VecSource, sorting a copy of items by time.
func NewVecSource(items []danmaku.Danmaku) *VecSource {
	sorted := make([]danmaku.Danmaku, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })
	return &VecSource{items: sorted}
}

// GetRange returns comments with Time in [start, end), located via
// binary search on the sorted backing slice.
func (s *VecSource) GetRange(start, end danmaku.Time) []danmaku.Danmaku {
	from := sort.Search(len(s.items), func(i int) bool { return s.items[i].Time >= start })
	var out []danmaku.Danmaku
	for i := from; i < len(s.items) && s.items[i].Time < end; i++ {
		out = append(out, s.items[i])
	}
	return out
}

// GetAll returns a copy of every comment.
func (s *VecSource) GetAll() []danmaku.Danmaku {
	out := make([]danmaku.Danmaku, len(s.items))
	copy(out, s.items)
	return out
}

// IntoAll returns the backing slice directly; the VecSource must not
// be used again afterward.
func (s *VecSource) IntoAll() []danmaku.Danmaku {
	items := s.items
	s.items = nil
	return items
}
