package compose

import "math"

// Placement is where a scaled image lands on the surface.
type Placement struct {
	X, Y  float64
	W, H  float64
	Scale float64
}

// Empty reports whether nothing would be drawn.
func (p Placement) Empty() bool {
	return p.W <= 0 || p.H <= 0
}

// Fit scales a srcW x srcH image uniformly so it fits entirely inside
// dstW x dstH, centred, without cropping.
func Fit(srcW, srcH, dstW, dstH float64) Placement {
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return Placement{}
	}
	scale := math.Min(dstW/srcW, dstH/srcH)
	w, h := srcW*scale, srcH*scale
	return Placement{
		X:     (dstW - w) / 2,
		Y:     (dstH - h) / 2,
		W:     w,
		H:     h,
		Scale: scale,
	}
}
