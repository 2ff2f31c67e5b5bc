package compose

import (
	"image"

	"github.com/gogpu/gg"
)

// Image is a decoded image prepared for drawing. Converting to the
// rasterizer's buffer format is done once, not on every redraw.
type Image struct {
	src  image.Image
	buf  *gg.ImageBuf
	w, h int
}

// NewImage prepares img for drawing. A nil img yields a nil *Image, which
// the compositor skips.
func NewImage(img image.Image) *Image {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	if b.Empty() {
		return nil
	}
	return &Image{
		src: img,
		buf: gg.ImageBufFromImage(img),
		w:   b.Dx(),
		h:   b.Dy(),
	}
}

// Source returns the image NewImage was given.
func (im *Image) Source() image.Image { return im.src }

// Size returns the pixel dimensions.
func (im *Image) Size() (w, h int) { return im.w, im.h }
