// Command danmaku-demo plays a Bilibili-format comment dump back over
// a blank window, exercising the full pipeline end to end: parse,
// layout, chunk, prepare on a worker, draw through the two-pass
// renderer.
package main

import (
	"flag"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/fifth-light/danmaku-renderer/pkg/chunkprovider"
	"github.com/fifth-light/danmaku-renderer/pkg/danmaku"
	"github.com/fifth-light/danmaku-renderer/pkg/glyph"
	"github.com/fifth-light/danmaku-renderer/pkg/layout"
	"github.com/fifth-light/danmaku-renderer/pkg/render"
	"github.com/fifth-light/danmaku-renderer/pkg/source"
	"github.com/fifth-light/danmaku-renderer/pkg/source/bilibili"
	"github.com/fifth-light/danmaku-renderer/pkg/worker"
	"openglhelper"
)

func init() {
	// OpenGL calls must all come from the same OS thread.
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "path to a TOML config file (optional)")
	commentsPath := flag.String("comments", "", "path to a Bilibili XML comment dump (overrides config)")
	flag.Parse()

	conf := loadConfig(*configPath)
	if *commentsPath != "" {
		conf.Danmaku.CommentsFile = *commentsPath
	}
	if conf.Danmaku.CommentsFile == "" {
		log.Fatal("danmaku-demo: no comment file given (-comments or config Danmaku.CommentsFile)")
	}

	comments := loadComments(conf.Danmaku.CommentsFile)
	log.Printf("danmaku-demo: loaded %d comments from %s", len(comments), conf.Danmaku.CommentsFile)
	src := source.NewVecSource(comments)

	window, err := openglhelper.NewWindow(conf.Window.Width, conf.Window.Height, conf.Window.Title, true)
	if err != nil {
		log.Fatalf("danmaku-demo: creating window: %v", err)
	}

	mode := layoutMode(conf.Danmaku)
	params := chunkprovider.Params{
		Mode:         mode,
		ScreenWidth:  float64(conf.Window.Width),
		ScreenHeight: float64(conf.Window.Height),
		LineHeight:   conf.Danmaku.LineHeight,
		LifetimeMs:   conf.Danmaku.LifetimeMs,
	}

	shaper := chunkprovider.NewFixedAdvanceShaper()
	rasterizer := glyph.NewFixedBoxRasterizer()
	textures, err := glyph.NewTextureManager(rasterizer, conf.ShadowWidth, conf.AtlasSize)
	if err != nil {
		log.Fatalf("danmaku-demo: building texture manager: %v", err)
	}
	cache := glyph.NewCache(textures, conf.Danmaku.LineHeight)

	manager := worker.New[glyph.GPUChunkBuffer](src, shaper, params, cache)
	defer manager.Close()

	renderer, err := render.New(window, textures, render.Params{
		ScreenWidth:  conf.Window.Width,
		ScreenHeight: conf.Window.Height,
		LifetimeMs:   conf.Danmaku.LifetimeMs,
		LineHeight:   conf.Danmaku.LineHeight,
		Opacity:      float32(conf.Danmaku.Opacity),
	})
	if err != nil {
		log.Fatalf("danmaku-demo: building renderer: %v", err)
	}

	runLoop(manager, renderer, conf.Danmaku.LifetimeMs)
}

func loadComments(path string) []danmaku.Danmaku {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("danmaku-demo: opening %q: %v", path, err)
	}
	defer f.Close()

	comments, err := bilibili.ParseXML(f)
	if err != nil {
		log.Fatalf("danmaku-demo: parsing %q: %v", path, err)
	}
	return comments
}

func layoutMode(conf danmakuConfig) layout.Mode {
	if conf.ScrollMode == "show-all" {
		return layout.NewShowAllMode()
	}
	percent := conf.ScrollPercent
	if percent <= 0 || percent > 100 {
		percent = 100
	}
	return layout.NewNoOverlapMode(uint8(percent))
}

func runLoop(m *worker.Manager[glyph.GPUChunkBuffer, *glyph.Cache], r *render.Renderer, lifetimeMs uint32) {
	start := time.Now()
	var hint *uint32

	for !r.ShouldClose() {
		elapsedMs := uint32(time.Since(start).Milliseconds())
		index := elapsedMs / lifetimeMs

		if m.ShouldRequestWorker(index) {
			m.Request(hint, index)
		}

		if a, b, ok := m.AcquireIndex(index); ok {
			bsi := b.BaseStateIndex()
			hint = &bsi
			r.RenderBuffers(elapsedMs, a.Buffer, b.Buffer)
		}

		r.Render()
	}
}
