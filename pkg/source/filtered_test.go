package source

import (
	"testing"

	"github.com/fifth-light/danmaku-renderer/pkg/danmaku"
	"github.com/fifth-light/danmaku-renderer/pkg/filter"
)

func TestFilteredSourceDropsMatches(t *testing.T) {
	base := NewVecSource([]danmaku.Danmaku{
		mk(0, "hello"),
		mk(100, "this is spam"),
		mk(200, "world"),
	})
	f := NewFiltered(base, filter.NewSimple("spam"))

	all := f.GetAll()
	if len(all) != 2 {
		t.Fatalf("GetAll() returned %d items, want 2", len(all))
	}
	for _, d := range all {
		if d.Content == "this is spam" {
			t.Error("filtered content leaked through GetAll")
		}
	}

	ranged := f.GetRange(0, 1000)
	for _, d := range ranged {
		if d.Content == "this is spam" {
			t.Error("filtered content leaked through GetRange")
		}
	}
}
