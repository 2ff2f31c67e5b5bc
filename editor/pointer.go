package editor

import (
	"math"

	"github.com/gogpu/thumbnail/hittest"
	"github.com/gogpu/thumbnail/scene"
)

// MoveThreshold is the smallest position change, in percent, that a pointer
// move applies to the dragged layer.
const MoveThreshold = 0.1

type drag struct {
	id    string
	moved bool
}

type point struct{ x, y float64 }

// Dragging reports whether a layer is being dragged.
func (c *Controller) Dragging() bool { return c.drag != nil }

// Hover returns the last pointer position over the surface, in surface
// pixels, and false once the pointer has left.
func (c *Controller) Hover() (x, y float64, ok bool) {
	if c.hover == nil {
		return 0, 0, false
	}
	return c.hover.x, c.hover.y, true
}

// PointerDown starts dragging the topmost layer under (x, y). The layer is
// selected. Pressing while a drag is open drops the layer instead, so both
// press-move-release and click-move-click drags work.
// It reports whether a layer was picked up or dropped.
func (c *Controller) PointerDown(x, y float64) bool {
	c.hover = &point{x, y}
	if c.drag != nil {
		c.finishDrag()
		return true
	}
	l, ok := hittest.Layer(x, y, c.scene.Layers, c.width, c.height)
	if !ok {
		return false
	}
	// A gesture left open by a form control does not outlive a drag start.
	if c.hist.Coalescing() {
		c.closeSpan()
	}
	c.scene.Select(l.ID)
	c.hist.Replace(c.scene)
	c.hist.StartCoalescing()
	c.drag = &drag{id: l.ID}
	c.frames.Request()
	c.log().Debug("editor: drag start", "layer", l.ID)
	return true
}

// PointerMove moves the dragged layer to (x, y), given in surface pixels.
// Moves smaller than MoveThreshold on both axes are ignored. A redraw is
// requested on every move so hover feedback can follow the pointer.
func (c *Controller) PointerMove(x, y float64) {
	c.hover = &point{x, y}
	defer c.frames.Request()
	if c.drag == nil {
		return
	}
	l, ok := c.scene.Layer(c.drag.id)
	if !ok {
		c.CancelDrag()
		return
	}
	px, py := x/c.width*100, y/c.height*100
	if math.Abs(l.X-px) <= MoveThreshold && math.Abs(l.Y-py) <= MoveThreshold {
		return
	}
	c.UpdateLayer(c.drag.id, scene.Move(px, py))
}

// PointerUp ends a press-move-release drag, recording it as one undo step.
// A press that never moved leaves the drag open, so that a click picks the
// layer up and the next click drops it.
func (c *Controller) PointerUp(x, y float64) {
	c.hover = &point{x, y}
	if c.drag == nil || !c.drag.moved {
		return
	}
	c.finishDrag()
}

// PointerLeave forgets the hover position. An open drag stays open.
func (c *Controller) PointerLeave() {
	c.hover = nil
	c.frames.Request()
}

// CancelDrag abandons an open drag and restores the scene as it was when
// the drag started. It reports whether a drag was open.
func (c *Controller) CancelDrag() bool {
	if c.drag == nil {
		return false
	}
	id := c.drag.id
	c.drag = nil
	c.scene = c.hist.CancelCoalescing()
	c.frames.Request()
	c.log().Debug("editor: drag cancelled", "layer", id)
	return true
}

func (c *Controller) finishDrag() {
	id := c.drag.id
	c.drag = nil
	c.closeSpan()
	c.log().Debug("editor: drag end", "layer", id)
}
