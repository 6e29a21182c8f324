package bilibili

import (
	"strings"
	"testing"

	"github.com/fifth-light/danmaku-renderer/pkg/danmaku"
)

func TestParseXMLKnownFixture(t *testing.T) {
	const doc = `<?xml version="1.0" encoding="UTF-8"?>
<i>
  <chatserver>chat.example.com</chatserver>
  <d p="12.139,1,25,16777215,1612345678,0,abcdef01,123456789">kksk</d>
</i>`

	got, err := ParseXML(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseXML: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d comments, want 1", len(got))
	}
	d := got[0]
	if d.Time != 12139 {
		t.Errorf("Time = %d, want 12139", d.Time)
	}
	if d.Type != danmaku.Scroll {
		t.Errorf("Type = %v, want Scroll", d.Type)
	}
	if d.Size != danmaku.Regular {
		t.Errorf("Size = %v, want Regular", d.Size)
	}
	if d.Color != danmaku.FromCodeCast(16777215) {
		t.Errorf("Color = %v, want white", d.Color)
	}
	if d.Content != "kksk" {
		t.Errorf("Content = %q, want %q", d.Content, "kksk")
	}
}

func TestParseXMLMissingPAttribute(t *testing.T) {
	const doc = `<i><d>no p here</d></i>`
	if _, err := ParseXML(strings.NewReader(doc)); err != ErrMissingAttribute {
		t.Fatalf("err = %v, want ErrMissingAttribute", err)
	}
}

func TestParseXMLDuplicatePAttribute(t *testing.T) {
	const doc = `<i><d p="1,1,25,0" p="2,1,25,0">dup</d></i>`
	_, err := ParseXML(strings.NewReader(doc))
	if err == nil {
		// encoding/xml itself may reject duplicate attributes before we see
		// them; either failure mode is acceptable as long as it errors.
		t.Fatal("expected an error for a duplicate p attribute")
	}
}

func TestParseXMLRejectsNonIRoot(t *testing.T) {
	const doc = `<root><d p="1,1,25,0">x</d></root>`
	if _, err := ParseXML(strings.NewReader(doc)); err != ErrRootElementNotFound {
		t.Fatalf("err = %v, want ErrRootElementNotFound", err)
	}
}

func TestModeToType(t *testing.T) {
	cases := map[uint32]danmaku.Type{
		1: danmaku.Scroll,
		2: danmaku.Scroll,
		3: danmaku.Scroll,
		4: danmaku.Bottom,
		5: danmaku.Top,
		6: danmaku.Unknown,
	}
	for mode, want := range cases {
		if got := modeToType(mode); got != want {
			t.Errorf("modeToType(%d) = %v, want %v", mode, got, want)
		}
	}
}

func TestFontsizeToSize(t *testing.T) {
	cases := map[uint32]danmaku.Size{
		10: danmaku.Small,
		24: danmaku.Small,
		25: danmaku.Regular,
		26: danmaku.Large,
		40: danmaku.Large,
	}
	for fontsize, want := range cases {
		if got := fontsizeToSize(fontsize); got != want {
			t.Errorf("fontsizeToSize(%d) = %v, want %v", fontsize, got, want)
		}
	}
}
