// Package bilibili parses Bilibili-style comment dumps, both the XML
// export format and the mobile protobuf reply format, into the
// generic danmaku data model.
package bilibili

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fifth-light/danmaku-renderer/pkg/danmaku"
)

// Errors returned while parsing a <d> element's "p" attribute.
var (
	ErrMissingAttribute    = errors.New("bilibili: missing p attribute on <d>")
	ErrDuplicateAttribute  = errors.New("bilibili: duplicate p attribute on <d>")
	ErrBadAttribute        = errors.New("bilibili: malformed p attribute")
	ErrRootElementNotFound = errors.New("bilibili: root element is not <i>")
)

// ParseXML parses a Bilibili XML comment dump (rooted at <i>, with
// <d p="...">content</d> children) into a slice of comments in
// document order.
func ParseXML(r io.Reader) ([]danmaku.Danmaku, error) {
	dec := xml.NewDecoder(r)

	const (
		stateOutOfRoot = iota
		stateInsideRoot
		stateInsideMetadata
		stateInsideDanmaku
	)
	state := stateOutOfRoot
	depth := 0

	var result []danmaku.Danmaku
	var currentP string
	var havePAttr bool
	var textBuilder strings.Builder

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("bilibili: decoding xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch state {
			case stateOutOfRoot:
				if t.Name.Local != "i" {
					return nil, ErrRootElementNotFound
				}
				state = stateInsideRoot
			case stateInsideRoot:
				if t.Name.Local == "d" {
					state = stateInsideDanmaku
					havePAttr = false
					currentP = ""
					textBuilder.Reset()
					for _, attr := range t.Attr {
						if attr.Name.Local != "p" {
							continue
						}
						if havePAttr {
							return nil, ErrDuplicateAttribute
						}
						havePAttr = true
						currentP = attr.Value
					}
				} else {
					state = stateInsideMetadata
				}
			}
		case xml.CharData:
			if state == stateInsideDanmaku {
				textBuilder.Write(t)
			}
		case xml.EndElement:
			switch state {
			case stateInsideDanmaku:
				if !havePAttr {
					return nil, ErrMissingAttribute
				}
				d, err := parsePAttribute(currentP, textBuilder.String())
				if err != nil {
					return nil, err
				}
				result = append(result, d)
				state = stateInsideRoot
			case stateInsideMetadata:
				state = stateInsideRoot
			}
			depth--
		}
	}

	return result, nil
}

// parsePAttribute decodes the comma-separated "p" attribute:
// seconds,mode,fontsize,color[,...ignored].
func parsePAttribute(p, content string) (danmaku.Danmaku, error) {
	fields := strings.Split(p, ",")
	if len(fields) < 4 {
		return danmaku.Danmaku{}, ErrBadAttribute
	}

	seconds, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return danmaku.Danmaku{}, fmt.Errorf("%w: time %q: %v", ErrBadAttribute, fields[0], err)
	}
	mode, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return danmaku.Danmaku{}, fmt.Errorf("%w: mode %q: %v", ErrBadAttribute, fields[1], err)
	}
	fontsize, err := strconv.ParseUint(fields[2], 10, 32)
	if err != nil {
		return danmaku.Danmaku{}, fmt.Errorf("%w: fontsize %q: %v", ErrBadAttribute, fields[2], err)
	}
	color, err := strconv.ParseUint(fields[3], 10, 32)
	if err != nil {
		return danmaku.Danmaku{}, fmt.Errorf("%w: color %q: %v", ErrBadAttribute, fields[3], err)
	}

	return danmaku.Danmaku{
		Time:    danmaku.Time(seconds * 1000),
		Type:    modeToType(uint32(mode)),
		Size:    fontsizeToSize(uint32(fontsize)),
		Color:   danmaku.FromCodeCast(uint32(color)),
		Content: content,
	}, nil
}

func modeToType(mode uint32) danmaku.Type {
	switch {
	case mode >= 1 && mode <= 3:
		return danmaku.Scroll
	case mode == 4:
		return danmaku.Bottom
	case mode == 5:
		return danmaku.Top
	default:
		return danmaku.Unknown
	}
}

func fontsizeToSize(fontsize uint32) danmaku.Size {
	switch {
	case fontsize < 25:
		return danmaku.Small
	case fontsize == 25:
		return danmaku.Regular
	default:
		return danmaku.Large
	}
}
