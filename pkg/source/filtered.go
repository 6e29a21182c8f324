package source

import (
	"github.com/fifth-light/danmaku-renderer/pkg/danmaku"
	"github.com/fifth-light/danmaku-renderer/pkg/filter"
)

// Filtered wraps a Source and drops any comment whose content matches
// the given filter, for every query method.
type Filtered struct {
	source Source
	filter filter.Filter
}

// NewFiltered wraps source so that every comment passed to filter.IsFiltered
// returning true is excluded from all three query methods.
func NewFiltered(source Source, filter filter.Filter) *Filtered {
	return &Filtered{source: source, filter: filter}
}

func (f *Filtered) keep(items []danmaku.Danmaku) []danmaku.Danmaku {
	out := items[:0:0]
	for _, item := range items {
		if !f.filter.IsFiltered(item.Content) {
			out = append(out, item)
		}
	}
	return out
}

func (f *Filtered) GetRange(start, end danmaku.Time) []danmaku.Danmaku {
	return f.keep(f.source.GetRange(start, end))
}

func (f *Filtered) GetAll() []danmaku.Danmaku {
	return f.keep(f.source.GetAll())
}

func (f *Filtered) IntoAll() []danmaku.Danmaku {
	return f.keep(f.source.IntoAll())
}
