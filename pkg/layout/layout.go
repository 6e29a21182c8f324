// Package layout assigns on-screen lanes to comments as they arrive,
// so that scrolling comments never visually collide and pinned
// top/bottom comments rotate through a fixed set of lines.
package layout

import (
	"github.com/fifth-light/danmaku-renderer/pkg/danmaku"
)

// Item is anything the track engine can place: it needs to know when
// the comment appears, how it moves, and how wide its rendered text is.
type Item interface {
	Time() danmaku.Time
	Kind() danmaku.Type
	Width() float64
}

// PositionKind is which track family a comment was placed on.
type PositionKind int

const (
	PosScroll PositionKind = iota
	PosTop
	PosBottom
)

// Position is the lane a comment was assigned, within its track family.
type Position struct {
	Kind PositionKind
	Lane int
}

// ModeKind selects how the track engine behaves when it runs out of
// empty lanes.
type ModeKind int

const (
	// NoOverlap drops a comment rather than let it visually collide with
	// one already occupying every candidate lane.
	NoOverlap ModeKind = iota
	// ShowAll always places every comment, evicting the oldest occupant
	// of a round-robin lane when none are free.
	ShowAll
)

// Mode configures track capacity and overflow behavior.
type Mode struct {
	Kind ModeKind
	// Percent is the fraction (0-100) of available lines given to
	// scrolling comments; only meaningful when Kind == NoOverlap.
	Percent uint8
}

// NewNoOverlapMode builds a Mode that reserves percent% of lines for
// scroll comments and drops comments once their track family is full.
func NewNoOverlapMode(percent uint8) Mode {
	return Mode{Kind: NoOverlap, Percent: percent}
}

// NewShowAllMode builds a Mode that always places a comment somewhere.
func NewShowAllMode() Mode {
	return Mode{Kind: ShowAll}
}

type staticSlot struct {
	occupied bool
	time     danmaku.Time
}

// staticTrackState lays out Top/Bottom comments: each lane holds one
// comment at a time until it expires.
type staticTrackState struct {
	mode       Mode
	lifetimeMs uint32
	tracks     []staticSlot
	index      int
}

func newStaticTrackState(mode Mode, lanes int, lifetimeMs uint32) *staticTrackState {
	return &staticTrackState{mode: mode, lifetimeMs: lifetimeMs, tracks: make([]staticSlot, lanes)}
}

// clearExpired frees any lane whose occupant's lifetime has strictly
// elapsed as of now.
func (s *staticTrackState) clearExpired(now danmaku.Time) {
	for i := range s.tracks {
		slot := &s.tracks[i]
		if !slot.occupied {
			continue
		}
		if uint32(now)-uint32(slot.time) > s.lifetimeMs {
			slot.occupied = false
		}
	}
}

// findTrack returns the lane a new comment should occupy, or false if
// none is available (NoOverlap mode, every lane full).
func (s *staticTrackState) findTrack() (int, bool) {
	for i, slot := range s.tracks {
		if !slot.occupied {
			return i, true
		}
	}
	if s.mode.Kind == ShowAll && len(s.tracks) > 0 {
		return s.index % len(s.tracks), true
	}
	return 0, false
}

func (s *staticTrackState) insert(lane int, now danmaku.Time) {
	s.tracks[lane] = staticSlot{occupied: true, time: now}
	s.index++
}

type scrollLane struct {
	hasItem bool
	width   float64
	time    danmaku.Time
}

// scrollTrackState lays out scrolling comments: a lane may hold a new
// comment as soon as the previous occupant has scrolled far enough
// left that the two will never touch on screen.
type scrollTrackState struct {
	mode        Mode
	screenWidth float64
	lifetimeMs  uint32
	lanes       []scrollLane
	index       int
}

func newScrollTrackState(mode Mode, lanes int, screenWidth float64, lifetimeMs uint32) *scrollTrackState {
	return &scrollTrackState{mode: mode, screenWidth: screenWidth, lifetimeMs: lifetimeMs, lanes: make([]scrollLane, lanes)}
}

// clearExpired frees any lane whose latest occupant's lifetime has
// strictly elapsed as of now. Static and scroll sub-states share the
// same expiry rule.
func (s *scrollTrackState) clearExpired(now danmaku.Time) {
	for i := range s.lanes {
		lane := &s.lanes[i]
		if !lane.hasItem {
			continue
		}
		if uint32(now)-uint32(lane.time) > s.lifetimeMs {
			lane.hasItem = false
		}
	}
}

// willOverlap reports whether a comment of itemWidth entering at
// itemTime would catch up to and touch the comment of lastWidth that
// entered the same lane at lastTime, before either leaves the screen.
func willOverlap(lastWidth float64, lastTime danmaku.Time, itemWidth float64, itemTime danmaku.Time, screenWidth float64, lifetimeMs uint32) bool {
	lifetime := float64(lifetimeMs)
	speedLast := (screenWidth + lastWidth) / lifetime
	speedCurrent := (screenWidth + itemWidth) / lifetime
	distanceLast := speedLast*float64(int64(itemTime)-int64(lastTime)) - lastWidth
	if distanceLast < 0 {
		return true
	}
	if speedLast > speedCurrent {
		return false
	}
	timeToReach := distanceLast / (speedCurrent - speedLast)
	timeCurrent := screenWidth / speedCurrent
	return timeToReach < timeCurrent
}

// findTrack returns the first lane a comment of itemWidth entering at
// itemTime can use without ever touching that lane's current occupant:
// an empty lane trivially qualifies.
func (s *scrollTrackState) findTrack(itemWidth float64, itemTime danmaku.Time) (int, bool) {
	for i, lane := range s.lanes {
		if !lane.hasItem || !willOverlap(lane.width, lane.time, itemWidth, itemTime, s.screenWidth, s.lifetimeMs) {
			return i, true
		}
	}
	if s.mode.Kind == ShowAll && len(s.lanes) > 0 {
		return s.index % len(s.lanes), true
	}
	return 0, false
}

func (s *scrollTrackState) insert(lane int, itemWidth float64, itemTime danmaku.Time) {
	s.lanes[lane] = scrollLane{hasItem: true, width: itemWidth, time: itemTime}
	s.index++
}

// TrackState is the full layout engine for one screen: it owns the
// scroll, top and bottom track families and assigns every inserted
// comment a lane, or drops it.
type TrackState struct {
	scroll *scrollTrackState
	top    *staticTrackState
	bottom *staticTrackState
}

// New derives track counts from the screen geometry and builds a
// fresh TrackState. lineHeight and screenWidth/screenHeight are in the
// same rendering units as comment widths.
func New(mode Mode, screenWidth, screenHeight, lineHeight float64, lifetimeMs uint32) *TrackState {
	totalTracks := int(screenHeight / lineHeight)

	var scrollTracks, staticTracks int
	switch mode.Kind {
	case ShowAll:
		scrollTracks = totalTracks
		staticTracks = totalTracks
	default:
		scrollTracks = totalTracks * int(mode.Percent) / 100
		staticTracks = scrollTracks
		if half := totalTracks / 2; staticTracks > half {
			staticTracks = half
		}
	}

	return &TrackState{
		scroll: newScrollTrackState(mode, scrollTracks, screenWidth, lifetimeMs),
		top:    newStaticTrackState(mode, staticTracks, lifetimeMs),
		bottom: newStaticTrackState(mode, staticTracks, lifetimeMs),
	}
}

// Insert places item on a lane appropriate to its type. It returns
// false if the item could not be placed (NoOverlap mode with no
// available lane, or an Unknown comment type).
func (t *TrackState) Insert(item Item) (Position, bool) {
	switch item.Kind() {
	case danmaku.Scroll:
		t.scroll.clearExpired(item.Time())
		lane, ok := t.scroll.findTrack(item.Width(), item.Time())
		if !ok {
			return Position{}, false
		}
		t.scroll.insert(lane, item.Width(), item.Time())
		return Position{Kind: PosScroll, Lane: lane}, true
	case danmaku.Top:
		t.top.clearExpired(item.Time())
		lane, ok := t.top.findTrack()
		if !ok {
			return Position{}, false
		}
		t.top.insert(lane, item.Time())
		return Position{Kind: PosTop, Lane: lane}, true
	case danmaku.Bottom:
		t.bottom.clearExpired(item.Time())
		lane, ok := t.bottom.findTrack()
		if !ok {
			return Position{}, false
		}
		t.bottom.insert(lane, item.Time())
		return Position{Kind: PosBottom, Lane: lane}, true
	default:
		return Position{}, false
	}
}
