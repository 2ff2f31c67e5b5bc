package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gogpu/thumbnail/editor"
)

const changeOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename

func runWatch(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var cfg renderConfig
	fs := newFlagSet("watch", stderr)
	cfg.register(fs)
	interval := fs.Duration("interval", 100*time.Millisecond, "minimum time between renders")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *interval <= 0 {
		return usagef("-interval must be positive")
	}
	if cfg.output == "-" {
		return usagef("watch cannot write to stdout")
	}
	log := setupLogging(stderr, cfg.verbose)

	j, err := newJob(cfg, log)
	if err != nil {
		return err
	}
	if err := j.loadImages(ctx); err != nil {
		return err
	}

	scenePath, err := filepath.Abs(cfg.scene)
	if err != nil {
		return err
	}
	bgPath, err := filepath.Abs(cfg.background)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer func() { _ = w.Close() }()

	// Editors often replace files by renaming, so watch the directories.
	for _, dir := range []string{filepath.Dir(scenePath), filepath.Dir(bgPath)} {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	var (
		frames    editor.Frames
		bgChanged bool
	)
	draw := func() {
		if bgChanged {
			bgChanged = false
			if err := j.loadImages(ctx); err != nil {
				log.Error("reload images", "err", err)
				return
			}
		}
		if err := j.render(stdout); err != nil {
			log.Error("render", "err", err)
		}
	}

	frames.Request()
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	log.Info("watching", "scene", scenePath, "background", bgPath)

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			frames.Tick(draw)

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if event.Op&changeOps == 0 {
				continue
			}
			name, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			switch name {
			case scenePath:
			case bgPath:
				bgChanged = true
			default:
				continue
			}
			log.Debug("change", "file", name, "op", event.Op.String())
			frames.Request()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher", "err", err)
		}
	}
}
