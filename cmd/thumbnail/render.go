package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gogpu/thumbnail/compose"
	"github.com/gogpu/thumbnail/fonts"
	"github.com/gogpu/thumbnail/imageio"
	"github.com/gogpu/thumbnail/internal/scenefile"
	"github.com/gogpu/thumbnail/segment"
)

// renderConfig holds the flags shared by render and watch.
type renderConfig struct {
	scene      string
	background string
	foreground string
	segmentCmd string
	segTimeout time.Duration
	fontsDir   string
	output     string
	preview    int
	verbose    bool
}

func (c *renderConfig) register(fs *flag.FlagSet) {
	fs.StringVar(&c.scene, "scene", "", "scene document (.yaml, .toml or .json)")
	fs.StringVar(&c.background, "background", "", "background photo")
	fs.StringVar(&c.foreground, "foreground", "", "cut-out subject drawn over the text")
	fs.StringVar(&c.segmentCmd, "segment-cmd", "", "command producing the subject, e.g. 'rembg i {in} {out}'")
	fs.DurationVar(&c.segTimeout, "segment-timeout", 2*time.Minute, "segmentation time limit")
	fs.StringVar(&c.fontsDir, "fonts", "", "directory of extra .ttf/.otf fonts")
	fs.StringVar(&c.output, "o", compose.ExportName, "output PNG, - for stdout")
	fs.IntVar(&c.preview, "preview", 0, "downscale the output so its longer side is at most N pixels")
	fs.BoolVar(&c.verbose, "v", false, "verbose logging")
}

func (c *renderConfig) validate() error {
	switch {
	case c.scene == "":
		return usagef("-scene is required")
	case c.background == "":
		return usagef("-background is required")
	case c.foreground != "" && c.segmentCmd != "":
		return usagef("-foreground and -segment-cmd are mutually exclusive")
	case c.preview < 0:
		return usagef("-preview must not be negative")
	}
	return nil
}

// segmenter returns the configured segmentation command, or nil.
func (c *renderConfig) segmenter() (segment.Segmenter, error) {
	if c.segmentCmd == "" {
		return nil, nil
	}
	cmd, err := segment.ParseCommand(c.segmentCmd)
	if err != nil {
		return nil, usageError{err}
	}
	return cmd, nil
}

// loadFonts returns the bundled fonts plus those found in dir. Files that
// fail to load are logged and skipped.
func loadFonts(dir string, log *slog.Logger) (*fonts.Registry, error) {
	reg := fonts.NewRegistry()
	if dir == "" {
		return reg, nil
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, usagef("-fonts %q is not a directory", dir)
	}
	keys, err := reg.RegisterDir(dir)
	if err != nil {
		log.Warn("some fonts were skipped", "dir", dir, "err", err)
	}
	log.Debug("fonts registered", "dir", dir, "keys", keys)
	return reg, nil
}

// job renders one scene file over one background.
type job struct {
	cfg  renderConfig
	comp *compose.Compositor
	seg  segment.Segmenter
	log  *slog.Logger

	bg, fg *compose.Image
}

func newJob(cfg renderConfig, log *slog.Logger) (*job, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	seg, err := cfg.segmenter()
	if err != nil {
		return nil, err
	}
	reg, err := loadFonts(cfg.fontsDir, log)
	if err != nil {
		return nil, err
	}
	return &job{cfg: cfg, comp: compose.New(reg), seg: seg, log: log}, nil
}

// loadImages reads the background and produces the foreground, either from
// -foreground or by running the segmenter through a loader.
func (j *job) loadImages(ctx context.Context) error {
	src, err := os.ReadFile(j.cfg.background)
	if err != nil {
		return fmt.Errorf("background: %w", err)
	}

	switch {
	case j.seg != nil:
		start := time.Now()
		l := segment.NewLoader(j.seg, segment.WithTimeout(j.cfg.segTimeout))
		l.Load(ctx, src)
		res, err := l.Wait(ctx)
		if err != nil {
			return err
		}
		if res.Err != nil {
			return res.Err
		}
		j.log.Info("segmented", "cmd", j.cfg.segmentCmd, "duration", time.Since(start))
		j.bg, j.fg = res.Background, res.Foreground
		return nil

	case j.cfg.foreground != "":
		data, err := os.ReadFile(j.cfg.foreground)
		if err != nil {
			return fmt.Errorf("foreground: %w", err)
		}
		fg, err := imageio.Decode(data)
		if err != nil {
			return fmt.Errorf("foreground: %w", err)
		}
		j.fg = compose.NewImage(fg)
	default:
		j.fg = nil
	}

	bg, err := imageio.Decode(src)
	if err != nil {
		return fmt.Errorf("background: %w", err)
	}
	j.bg = compose.NewImage(bg)
	return nil
}

// render loads the scene and writes the PNG.
func (j *job) render(stdout io.Writer) error {
	sc, err := scenefile.Load(j.cfg.scene)
	if err != nil {
		return err
	}
	frame := compose.Frame{Background: j.bg, Layers: sc.Layers, Foreground: j.fg}

	var buf bytes.Buffer
	if j.cfg.preview > 0 {
		img, err := j.comp.RenderImage(frame)
		if err != nil {
			return err
		}
		err = imageio.EncodePNG(&buf, imageio.Preview(img, j.cfg.preview))
		if err != nil {
			return err
		}
	} else if err := j.comp.RenderPNG(&buf, frame); err != nil {
		return err
	}

	if j.cfg.output == "-" {
		_, err = buf.WriteTo(stdout)
		return err
	}
	if err := os.WriteFile(j.cfg.output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	j.log.Info("rendered", "scene", j.cfg.scene, "layers", sc.Len(), "output", j.cfg.output)
	return nil
}

func runRender(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var cfg renderConfig
	fs := newFlagSet("render", stderr)
	cfg.register(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	log := setupLogging(stderr, cfg.verbose)

	j, err := newJob(cfg, log)
	if err != nil {
		return err
	}
	if err := j.loadImages(ctx); err != nil {
		return err
	}
	return j.render(stdout)
}
