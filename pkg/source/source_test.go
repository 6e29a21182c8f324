package source

import (
	"reflect"
	"testing"

	"github.com/fifth-light/danmaku-renderer/pkg/danmaku"
)

func mk(ms uint32, content string) danmaku.Danmaku {
	return danmaku.Danmaku{Time: danmaku.Time(ms), Type: danmaku.Scroll, Size: danmaku.Regular, Content: content}
}

func TestVecSourceSortsOnConstruction(t *testing.T) {
	s := NewVecSource([]danmaku.Danmaku{mk(300, "c"), mk(100, "a"), mk(200, "b")})
	all := s.GetAll()
	want := []string{"a", "b", "c"}
	for i, d := range all {
		if d.Content != want[i] {
			t.Fatalf("GetAll()[%d] = %q, want %q", i, d.Content, want[i])
		}
	}
}

func TestVecSourceGetRangeIsHalfOpen(t *testing.T) {
	s := NewVecSource([]danmaku.Danmaku{mk(0, "a"), mk(100, "b"), mk(200, "c"), mk(300, "d")})
	got := s.GetRange(100, 300)
	var contents []string
	for _, d := range got {
		contents = append(contents, d.Content)
	}
	want := []string{"b", "c"}
	if !reflect.DeepEqual(contents, want) {
		t.Fatalf("GetRange(100,300) = %v, want %v", contents, want)
	}
}

func TestVecSourceIntoAllConsumes(t *testing.T) {
	s := NewVecSource([]danmaku.Danmaku{mk(0, "a")})
	all := s.IntoAll()
	if len(all) != 1 {
		t.Fatalf("IntoAll() returned %d items, want 1", len(all))
	}
	if got := s.GetAll(); len(got) != 0 {
		t.Fatalf("source still reports %d items after IntoAll", len(got))
	}
}
