package main

import (
	"log"

	"github.com/BurntSushi/toml"
)

// config is the demo binary's on-disk configuration. The core
// library itself takes no configuration file or environment variable
// of its own; this exists only to let the demo be pointed at a
// comment dump and screen geometry without recompiling.
type config struct {
	Window      windowConfig
	Danmaku     danmakuConfig
	ShadowWidth int
	AtlasSize   int
}

type windowConfig struct {
	Width  int
	Height int
	Title  string
}

type danmakuConfig struct {
	CommentsFile  string
	LineHeight    float64
	LifetimeMs    uint32
	ScrollMode    string // "no-overlap" or "show-all"
	ScrollPercent int
	Opacity       float64
}

func defaultConfig() config {
	return config{
		Window: windowConfig{Width: 1280, Height: 720, Title: "danmaku-demo"},
		Danmaku: danmakuConfig{
			LineHeight:    28,
			LifetimeMs:    8000,
			ScrollMode:    "no-overlap",
			ScrollPercent: 100,
			Opacity:       1.0,
		},
		ShadowWidth: 2,
		AtlasSize:   1024,
	}
}

func loadConfig(path string) config {
	conf := defaultConfig()
	if path == "" {
		return conf
	}
	if _, err := toml.DecodeFile(path, &conf); err != nil {
		log.Fatalf("danmaku-demo: reading config %q: %v", path, err)
	}
	return conf
}
