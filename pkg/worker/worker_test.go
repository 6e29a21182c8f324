package worker

import (
	"testing"

	"github.com/fifth-light/danmaku-renderer/pkg/chunkprovider"
	"github.com/fifth-light/danmaku-renderer/pkg/danmaku"
	"github.com/fifth-light/danmaku-renderer/pkg/layout"
	"github.com/fifth-light/danmaku-renderer/pkg/rendercache"
	"github.com/fifth-light/danmaku-renderer/pkg/source"
)

func testParams() chunkprovider.Params {
	return chunkprovider.Params{
		Mode:         layout.NewShowAllMode(),
		ScreenWidth:  1920,
		ScreenHeight: 1080,
		LineHeight:   30,
		LifetimeMs:   4000,
	}
}

// newTestManager builds a Manager without starting its background
// goroutine, so tests can drive handleRequest and inspect msgCh
// deterministically.
func newTestManager(items []danmaku.Danmaku) *Manager[rendercache.NoopChunkBuffer, rendercache.Noop] {
	src := source.NewVecSource(items)
	return &Manager[rendercache.NoopChunkBuffer, rendercache.Noop]{
		src:    src,
		shaper: chunkprovider.NewFixedAdvanceShaper(),
		params: testParams(),
		cache:  rendercache.Noop{},
		msgCh:  make(chan msg, 8),
	}
}

func TestHandleRequestPublishesTripleBuffer(t *testing.T) {
	m := newTestManager(nil)
	provider := chunkprovider.New(source.NewVecSource(nil), chunkprovider.NewFixedAdvanceShaper(), testParams())

	m.handleRequest(provider, Request{Now: 5})

	_, _, ok := m.AcquireIndex(5)
	if !ok {
		t.Fatal("expected AcquireIndex(5) to succeed after a request for chunk 5")
	}
	if m.ShouldRequestWorker(5) {
		t.Fatal("ShouldRequestWorker(5) should be false once chunk 5 is current")
	}
	if !m.ShouldRequestWorker(6) {
		t.Fatal("ShouldRequestWorker(6) should be true when chunk 5 is current and chunk 6 differs")
	}
}

func TestShouldRequestWorkerWithOnlyCurrentAndNext(t *testing.T) {
	m := newTestManager(nil)
	provider := chunkprovider.New(source.NewVecSource(nil), chunkprovider.NewFixedAdvanceShaper(), testParams())

	// First request for chunk 0: Now-1 is skipped since Now==0, so only
	// current and next get filled, leaving previous nil.
	m.handleRequest(provider, Request{Now: 0})

	if m.ShouldRequestWorker(0) {
		t.Fatal("expected false: current==0 and next is filled")
	}
	if !m.ShouldRequestWorker(1) {
		t.Fatal("expected true: current!=1 despite next holding chunk 1")
	}
}

func TestRequestDedup(t *testing.T) {
	m := newTestManager(nil)
	hint := uint32(3)
	m.Request(&hint, 4)
	m.Request(&hint, 4)
	if len(m.msgCh) != 1 {
		t.Fatalf("expected exactly one queued message after two identical requests, got %d", len(m.msgCh))
	}
	m.Request(nil, 5)
	if len(m.msgCh) != 2 {
		t.Fatalf("expected a second queued message for a distinct request, got %d", len(m.msgCh))
	}
}

func TestAcquireIndexMissingReturnsFalse(t *testing.T) {
	m := newTestManager(nil)
	if _, _, ok := m.AcquireIndex(0); ok {
		t.Fatal("expected AcquireIndex to fail before any chunk has been published")
	}
}

func TestManagerRunProcessesRequestsAndStops(t *testing.T) {
	src := source.NewVecSource(nil)
	m := New[rendercache.NoopChunkBuffer, rendercache.Noop](src, chunkprovider.NewFixedAdvanceShaper(), testParams(), rendercache.Noop{})

	m.Request(nil, 2)

	// Stopping blocks until the stop message is processed, which is only
	// possible once every request queued ahead of it has drained, giving
	// the test a deterministic point to check the published buffer.
	ack := make(chan struct{})
	m.msgCh <- msg{stop: true, ack: ack}
	<-ack

	if _, _, ok := m.AcquireIndex(2); !ok {
		t.Fatal("expected the background worker to have published chunk 2 before stopping")
	}
}
