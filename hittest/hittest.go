// Package hittest finds the text layer under a point.
//
// Boxes are estimated, not measured: a layer is assumed to be
// runeCount*fontSize*0.6 wide and fontSize tall, centred on its anchor.
// This ignores the real glyph widths, weight, letter spacing and rotation,
// so hits near the edges of wide or rotated text can miss or overshoot.
package hittest

import "github.com/gogpu/thumbnail/scene"

// WidthFactor is the assumed advance of one character in ems.
const WidthFactor = 0.6

// Rect is an axis-aligned box in surface pixels.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Contains reports whether (x, y) lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}

// Box returns the estimated box of l on a width x height surface.
func Box(l scene.TextLayer, width, height float64) Rect {
	cx := width * l.X / 100
	cy := height * l.Y / 100
	w := float64(l.RuneCount()) * l.FontSize * WidthFactor
	h := l.FontSize
	return Rect{
		MinX: cx - w/2,
		MinY: cy - h/2,
		MaxX: cx + w/2,
		MaxY: cy + h/2,
	}
}

// At returns the paint index of the topmost layer whose box contains
// (x, y), or -1. Layers are tested from the last drawn to the first.
func At(x, y float64, layers []scene.TextLayer, width, height float64) int {
	for i := len(layers) - 1; i >= 0; i-- {
		if Box(layers[i], width, height).Contains(x, y) {
			return i
		}
	}
	return -1
}

// Layer is like At but returns the layer itself.
func Layer(x, y float64, layers []scene.TextLayer, width, height float64) (scene.TextLayer, bool) {
	i := At(x, y, layers, width, height)
	if i < 0 {
		return scene.TextLayer{}, false
	}
	return layers[i], true
}
