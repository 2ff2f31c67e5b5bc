package compose

import (
	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
)

// Surface dimensions. Every export has this resolution regardless of the
// source image or the size the editor is displayed at.
const (
	SurfaceWidth  = 3840
	SurfaceHeight = 2160
)

// ExportName is the file name used for downloaded thumbnails.
const ExportName = "image.png"

// Surface is the drawing target of the compositor. *gg.Context implements
// it; tests substitute a recorder.
type Surface interface {
	Width() int
	Height() int
	Clear()

	// Push and Pop save and restore the transform.
	Push()
	Pop()
	Translate(x, y float64)
	Rotate(angle float64)
	Scale(x, y float64)

	SetRGBA(r, g, b, a float64)
	SetFont(face text.Face)
	DrawStringAnchored(s string, x, y, ax, ay float64)
	DrawImageEx(img *gg.ImageBuf, opts gg.DrawImageOptions)
}

var _ Surface = (*gg.Context)(nil)

// NewSurface returns a software-rendered 3840x2160 surface.
func NewSurface() *gg.Context {
	return gg.NewContext(SurfaceWidth, SurfaceHeight)
}

// ggImageOptions draws an image into the rectangle of p.
func ggImageOptions(p Placement) gg.DrawImageOptions {
	return gg.DrawImageOptions{
		X:             p.X,
		Y:             p.Y,
		DstWidth:      p.W,
		DstHeight:     p.H,
		Interpolation: gg.InterpBilinear,
		Opacity:       1,
		BlendMode:     gg.BlendNormal,
	}
}
