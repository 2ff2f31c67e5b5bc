// Package compose renders a thumbnail scene onto a fixed-size surface.
//
// Paint order is fixed: the background image scaled to fit, then every
// text layer in slice order, then the foreground (the segmented subject)
// scaled with the same fit so it lines up with the background and hides
// text placed behind it.
//
// Rendering is deterministic for identical inputs and never fails: a
// missing image skips its draw step, an unknown font falls back to the
// registry default, and an unreadable colour falls back to white.
package compose

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/gogpu/gg/text"

	"github.com/gogpu/thumbnail"
	"github.com/gogpu/thumbnail/fonts"
	"github.com/gogpu/thumbnail/imageio"
	"github.com/gogpu/thumbnail/scene"
)

// Resolver supplies font faces. *fonts.Registry implements it.
type Resolver interface {
	Face(family string, weight int, size float64) text.Face
}

// Frame is everything one render pass needs.
type Frame struct {
	Background *Image
	Layers     []scene.TextLayer
	Foreground *Image
}

// Compositor draws frames. The zero value is not usable; call New.
type Compositor struct {
	fonts Resolver
}

// New returns a compositor resolving fonts through r. A nil r uses a fresh
// registry with the bundled fonts only.
func New(r Resolver) *Compositor {
	if r == nil {
		r = fonts.NewRegistry()
	}
	return &Compositor{fonts: r}
}

// Render clears dst and draws f onto it.
func (c *Compositor) Render(dst Surface, f Frame) {
	w, h := float64(dst.Width()), float64(dst.Height())
	dst.Clear()

	drawFitted(dst, f.Background, w, h, "background")
	for i := range f.Layers {
		c.drawLayer(dst, &f.Layers[i], w, h)
	}
	drawFitted(dst, f.Foreground, w, h, "foreground")
}

// RenderPNG renders f onto a new 3840x2160 surface and writes it as PNG.
func (c *Compositor) RenderPNG(w io.Writer, f Frame) error {
	dc := NewSurface()
	defer func() { _ = dc.Close() }()
	c.Render(dc, f)
	return dc.EncodePNG(w)
}

// RenderImage renders f onto a new 3840x2160 surface and returns a copy of
// its pixels.
func (c *Compositor) RenderImage(f Frame) (image.Image, error) {
	dc := NewSurface()
	defer func() { _ = dc.Close() }()
	c.Render(dc, f)
	if err := dc.FlushGPU(); err != nil {
		return nil, fmt.Errorf("compose: flush: %w", err)
	}
	return dc.Image(), nil
}

func drawFitted(dst Surface, im *Image, w, h float64, what string) {
	if im == nil {
		thumbnail.Logger().Debug("compose: no image, skipping", "layer", what)
		return
	}
	p := Fit(float64(im.w), float64(im.h), w, h)
	if p.Empty() {
		return
	}
	dst.DrawImageEx(im.buf, ggImageOptions(p))
}

// drawLayer draws one text layer inside its own transform frame.
func (c *Compositor) drawLayer(dst Surface, l *scene.TextLayer, w, h float64) {
	s := l.Text()
	if s == "" {
		return
	}
	face := c.fonts.Face(l.FontFamily, l.Weight(), l.FontSize)
	if face == nil {
		return
	}

	px := w * l.X / 100
	py := h * l.Y / 100

	dst.Push()
	defer dst.Pop()

	dst.SetFont(face)
	col := fill(l.Color)
	dst.SetRGBA(
		float64(col.R)/255,
		float64(col.G)/255,
		float64(col.B)/255,
		float64(col.A)/255*clamp(l.Opacity, 0, 1),
	)

	dst.Translate(px, py)
	if l.Rotation != 0 {
		dst.Rotate(radians(l.Rotation))
	}
	if l.RotationY != nil && *l.RotationY != 0 {
		// Foreshortening approximation of a turn around the vertical axis:
		// a horizontal squash by cos(angle), not a perspective projection.
		dst.Scale(math.Cos(radians(*l.RotationY)), 1)
	}

	if l.LetterSpacing == 0 {
		dst.DrawStringAnchored(s, 0, 0, 0.5, 0.5)
		return
	}
	drawSpaced(dst, face, s, l.LetterSpacing)
}

// drawSpaced draws s glyph by glyph with spacing added after every glyph,
// centring the whole run (trailing spacing included) on the origin.
func drawSpaced(dst Surface, face text.Face, s string, spacing float64) {
	glyphs := []rune(s)
	adv := make([]float64, len(glyphs))
	total := 0.0
	for i, r := range glyphs {
		adv[i] = face.Advance(string(r))
		total += adv[i] + spacing
	}
	x := -total / 2
	for i, r := range glyphs {
		dst.DrawStringAnchored(string(r), x, 0, 0, 0.5)
		x += adv[i] + spacing
	}
}

// fill resolves a layer colour, falling back to opaque white.
func fill(s string) color.NRGBA {
	c, err := ParseColor(s)
	if err != nil {
		thumbnail.Logger().Warn("compose: unreadable color, using white", "color", s, "err", err)
		return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}
	return c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// DecodeImage decodes image bytes or a data URL for drawing. Undecodable
// data yields nil, so the corresponding draw step is skipped.
func DecodeImage(data []byte) *Image {
	img, err := imageio.Decode(data)
	if err != nil {
		thumbnail.Logger().Warn("compose: image decode failed, skipping", "err", err)
		return nil
	}
	return NewImage(img)
}
