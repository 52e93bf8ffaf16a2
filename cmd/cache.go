package cmd

import (
	"fmt"

	"github.com/ontypehq/qtts/internal/cache"
	"github.com/ontypehq/qtts/internal/config"
	"github.com/ontypehq/qtts/internal/ui"
)

type CacheCmd struct {
	Status CacheStatusCmd `cmd:"" default:"withargs" help:"Show cache size and file count"`
	Clear  CacheClearCmd  `cmd:"" help:"Delete all cached paragraphs"`
}

type CacheStatusCmd struct{}

func (c *CacheStatusCmd) Run(cfg *config.AppConfig) error {
	pc := cache.New(cfg.CacheDir())
	s, err := pc.Stats()
	if err != nil {
		return err
	}
	if s.Files == 0 {
		ui.Info("%s %s", ui.Dim("cache"), ui.Dim("empty"))
		return nil
	}

	ui.KV("Path", pc.Dir())
	ui.KV("Files", fmt.Sprintf("%d", s.Files))
	ui.KV("Size", cache.FormatSize(s.Bytes))
	return nil
}

type CacheClearCmd struct{}

func (c *CacheClearCmd) Run(cfg *config.AppConfig) error {
	n, err := cache.New(cfg.CacheDir()).Clear()
	if n == 0 && err == nil {
		ui.Info("%s", ui.Dim("cache already empty"))
		return nil
	}
	ui.Success("Cleared %d cached files", n)
	return err
}
