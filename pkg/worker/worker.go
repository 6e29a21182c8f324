// Package worker runs chunk layout and preparation on a background
// goroutine and exposes the result through a triple buffer (previous,
// current, next chunk), so a render loop can read a consistent set of
// prepared chunks without ever blocking on layout work.
//
// The worker is one goroutine reading a buffered channel that carries
// both requests and stop messages (a stop is acknowledged by closing
// the ack channel it carries), with a mutex guarding the shared state
// the render loop reads.
package worker

import (
	"sync"

	"github.com/fifth-light/danmaku-renderer/pkg/chunkprovider"
	"github.com/fifth-light/danmaku-renderer/pkg/rendercache"
	"github.com/fifth-light/danmaku-renderer/pkg/source"
)

// Request asks the worker to prepare the triple buffer centered on
// chunk index Now. Hint, if non-nil, is the base state index the
// caller last observed for Now-1 (or Now, if Now is 0); passing it
// lets the provider skip re-deriving track state it already has
// cached.
type Request struct {
	Hint *uint32
	Now  uint32
}

func (r Request) equal(other *Request) bool {
	if other == nil {
		return false
	}
	if r.Now != other.Now {
		return false
	}
	if (r.Hint == nil) != (other.Hint == nil) {
		return false
	}
	return r.Hint == nil || *r.Hint == *other.Hint
}

type msg struct {
	stop    bool
	ack     chan struct{}
	request Request
}

// Manager owns a background worker goroutine that prepares chunks
// through a RenderCache and publishes them into a triple buffer. B is
// the concrete ChunkBuffer type the cache produces; C is the cache
// itself.
type Manager[B rendercache.ChunkBuffer, C rendercache.RenderCache[B]] struct {
	bufMu    sync.Mutex
	previous *B
	current  *B
	next     *B

	cacheMu sync.Mutex
	cache   C

	src    source.Source
	shaper chunkprovider.Shaper
	params chunkprovider.Params

	msgCh chan msg

	lastMu      sync.Mutex
	lastRequest *Request
}

// New builds a Manager and starts its background worker goroutine.
func New[B rendercache.ChunkBuffer, C rendercache.RenderCache[B]](src source.Source, shaper chunkprovider.Shaper, params chunkprovider.Params, cache C) *Manager[B, C] {
	m := &Manager[B, C]{
		src:    src,
		shaper: shaper,
		params: params,
		cache:  cache,
		msgCh:  make(chan msg, 8),
	}
	go m.run()
	return m
}

// Request asks the worker to prepare the buffer for chunk index now,
// using hint as the previously-observed base state index. A request
// identical to the last one accepted is a no-op.
func (m *Manager[B, C]) Request(hint *uint32, now uint32) {
	req := Request{Hint: hint, Now: now}

	m.lastMu.Lock()
	if req.equal(m.lastRequest) {
		m.lastMu.Unlock()
		return
	}
	m.lastRequest = &req
	m.lastMu.Unlock()

	m.msgCh <- msg{request: req}
}

// ShouldRequestWorker reports whether the caller should issue a new
// Request for chunk index, given what is currently published in the
// triple buffer. This mirrors the reference renderer's worker-buffer
// check exactly, including its asymmetry: it does not compare base
// state indices, only chunk indices, and a buffer with only a current
// and next slot filled is treated as already satisfying index.
func (m *Manager[B, C]) ShouldRequestWorker(index uint32) bool {
	m.bufMu.Lock()
	defer m.bufMu.Unlock()

	if m.previous != nil && m.current != nil {
		return rendercache.ChunkBuffer(*m.current).Index() != index
	}
	if m.current != nil && m.next != nil && rendercache.ChunkBuffer(*m.current).Index() == index {
		return false
	}
	return true
}

// AcquireIndex returns the pair of buffered chunks a renderer should
// draw to present chunk index: (previous, current) if current holds
// index, otherwise (current, next) if either of those two holds index.
// It returns ok=false if neither pair is ready or contains index.
func (m *Manager[B, C]) AcquireIndex(index uint32) (a, b B, ok bool) {
	m.bufMu.Lock()
	defer m.bufMu.Unlock()

	if m.previous != nil && m.current != nil && rendercache.ChunkBuffer(*m.current).Index() == index {
		return *m.previous, *m.current, true
	}
	if m.current != nil && m.next != nil {
		cur := rendercache.ChunkBuffer(*m.current)
		nxt := rendercache.ChunkBuffer(*m.next)
		if cur.Index() == index || nxt.Index() == index {
			return *m.current, *m.next, true
		}
	}
	var zero B
	return zero, zero, false
}

// ChangeParam stops the worker, resets the render cache for new
// parameters, and restarts the worker with the new layout parameters.
// The last accepted request, if any, is resent once the worker
// restarts, whether or not it had already been processed.
func (m *Manager[B, C]) ChangeParam(params chunkprovider.Params, cacheParam any) error {
	ack := make(chan struct{})
	m.msgCh <- msg{stop: true, ack: ack}
	<-ack

	m.cacheMu.Lock()
	err := m.cache.NewParam(cacheParam)
	m.cacheMu.Unlock()
	if err != nil {
		return err
	}

	m.params = params
	go m.run()

	m.lastMu.Lock()
	last := m.lastRequest
	m.lastMu.Unlock()
	if last != nil {
		m.msgCh <- msg{request: *last}
	}
	return nil
}

// Close asks the worker goroutine to stop without waiting for it to
// exit. The stop message is dropped if the request channel is full;
// calling Close more than once does not panic.
func (m *Manager[B, C]) Close() {
	select {
	case m.msgCh <- msg{stop: true, ack: make(chan struct{})}:
	default:
	}
}

func (m *Manager[B, C]) run() {
	provider := chunkprovider.New(m.src, m.shaper, m.params)

	for message := range m.msgCh {
		if message.stop {
			if message.ack != nil {
				close(message.ack)
			}
			return
		}
		m.handleRequest(provider, message.request)
	}
}

func (m *Manager[B, C]) handleRequest(provider *chunkprovider.Provider, req Request) {
	hint := req.Hint

	var previousChunk *chunkprovider.TimeChunk
	if req.Now > 0 {
		previousChunk = provider.GetChunk(hint, req.Now-1)
		bsi := previousChunk.BaseStateIndex
		hint = &bsi
	}

	currentChunk := provider.GetChunk(hint, req.Now)
	bsi := currentChunk.BaseStateIndex
	currentHint := &bsi

	nextChunk := provider.GetChunk(currentHint, req.Now+1)

	m.cacheMu.Lock()
	defer m.cacheMu.Unlock()

	var previousBuf, currentBuf, nextBuf *B

	if previousChunk != nil {
		buf, err := m.cache.Prepare(previousChunk)
		if err == nil {
			previousBuf = &buf
		}
	}
	if buf, err := m.cache.Prepare(currentChunk); err == nil {
		currentBuf = &buf
	}
	if buf, err := m.cache.Prepare(nextChunk); err == nil {
		nextBuf = &buf
	}

	if flusher, ok := any(m.cache).(rendercache.Flusher); ok {
		flusher.Flush()
	}

	m.bufMu.Lock()
	m.previous = previousBuf
	m.current = currentBuf
	m.next = nextBuf
	m.bufMu.Unlock()
}
