package bilibili

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/fifth-light/danmaku-renderer/pkg/danmaku"
)

// Field numbers for bilibili.community.service.dm.v1.DmSegMobileReply
// and its nested DanmakuElem, as served by the mobile comment segment
// API. Decoded directly with protowire rather than generated bindings,
// since only a handful of scalar fields are needed.
const (
	fieldReplyElems = 1

	fieldElemProgress = 2
	fieldElemMode     = 3
	fieldElemFontsize = 4
	fieldElemColor    = 5
	fieldElemContent  = 7
)

// ParseProto decodes a DmSegMobileReply protobuf message into a slice
// of comments.
func ParseProto(data []byte) ([]danmaku.Danmaku, error) {
	var result []danmaku.Danmaku

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("bilibili: reading reply tag: %w", protowire.ParseError(n))
		}
		data = data[n:]

		if num != fieldReplyElems || typ != protowire.BytesType {
			m := protowire.ConsumeFieldValue(num, typ, data)
			if m < 0 {
				return nil, fmt.Errorf("bilibili: skipping reply field: %w", protowire.ParseError(m))
			}
			data = data[m:]
			continue
		}

		elemBytes, m := protowire.ConsumeBytes(data)
		if m < 0 {
			return nil, fmt.Errorf("bilibili: reading elem bytes: %w", protowire.ParseError(m))
		}
		data = data[m:]

		d, err := parseElem(elemBytes)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}

	return result, nil
}

func parseElem(data []byte) (danmaku.Danmaku, error) {
	var progress int64
	var mode, fontsize, color uint64
	var content string

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return danmaku.Danmaku{}, fmt.Errorf("bilibili: reading elem tag: %w", protowire.ParseError(n))
		}
		data = data[n:]

		switch num {
		case fieldElemProgress:
			v, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return danmaku.Danmaku{}, fmt.Errorf("bilibili: reading progress: %w", protowire.ParseError(m))
			}
			progress = int64(int32(v))
			data = data[m:]
		case fieldElemMode:
			v, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return danmaku.Danmaku{}, fmt.Errorf("bilibili: reading mode: %w", protowire.ParseError(m))
			}
			mode = v
			data = data[m:]
		case fieldElemFontsize:
			v, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return danmaku.Danmaku{}, fmt.Errorf("bilibili: reading fontsize: %w", protowire.ParseError(m))
			}
			fontsize = v
			data = data[m:]
		case fieldElemColor:
			v, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return danmaku.Danmaku{}, fmt.Errorf("bilibili: reading color: %w", protowire.ParseError(m))
			}
			color = v
			data = data[m:]
		case fieldElemContent:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return danmaku.Danmaku{}, fmt.Errorf("bilibili: reading content: %w", protowire.ParseError(m))
			}
			content = string(v)
			data = data[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, data)
			if m < 0 {
				return danmaku.Danmaku{}, fmt.Errorf("bilibili: skipping elem field: %w", protowire.ParseError(m))
			}
			data = data[m:]
		}
	}

	if progress < 0 {
		progress = 0
	}

	return danmaku.Danmaku{
		Time:    danmaku.Time(progress),
		Type:    modeToType(uint32(mode)),
		Size:    fontsizeToSize(uint32(fontsize)),
		Color:   danmaku.FromCodeCast(uint32(color)),
		Content: content,
	}, nil
}
