// Package editor turns input events into scene edits.
//
// A Controller owns the live scene and its history. Every committed edit is
// recorded as one undo step; a pointer drag, or any span opened with
// BeginGesture, is recorded as a single step no matter how many updates it
// made. Changes of selection alone are not undoable.
//
// The controller is not safe for concurrent use. It belongs to the
// goroutine that delivers input events, and redraws run on that goroutine
// when Frame is called.
package editor

import (
	"log/slog"

	"github.com/gogpu/thumbnail"
	"github.com/gogpu/thumbnail/history"
	"github.com/gogpu/thumbnail/scene"
)

// DuplicateOffset is how far, in percent of the surface, a duplicate is
// moved from its original along both axes.
const DuplicateOffset = 10

// maxIDAttempts bounds retries when a generator repeats an id.
const maxIDAttempts = 8

// Controller applies edit operations to a scene.
type Controller struct {
	scene  scene.Scene
	hist   *history.Engine
	frames Frames

	newID  func() string
	redraw func(scene.Scene)
	width  float64
	height float64
	logger *slog.Logger

	drag  *drag
	hover *point
}

// New returns a controller holding the default scene with empty history.
func New(opts ...Option) *Controller {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	s := scene.New()
	if o.start != nil {
		s = *o.start
	}
	return &Controller{
		scene:  s,
		hist:   history.New(s, history.WithLimit(o.limit)),
		newID:  o.newID,
		redraw: o.redraw,
		width:  o.width,
		height: o.height,
		logger: o.logger,
	}
}

func (c *Controller) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return thumbnail.Logger()
}

// Scene returns a copy of the live scene.
func (c *Controller) Scene() scene.Scene { return c.scene.Clone() }

// History exposes the undo engine for inspection.
func (c *Controller) History() *history.Engine { return c.hist }

// commit records the live scene as one undo step and schedules a redraw.
func (c *Controller) commit(op string) {
	c.hist.Push(c.scene)
	c.frames.Request()
	c.log().Debug("editor: "+op, "layers", c.scene.Len(), "selected", c.scene.SelectedID)
}

// freshID returns an id not used by any layer, or "" if the generator
// keeps repeating itself.
func (c *Controller) freshID() string {
	for range maxIDAttempts {
		id := c.newID()
		if id != "" && c.scene.Index(id) < 0 {
			return id
		}
	}
	c.log().Warn("editor: id generator returned only used ids")
	return ""
}

// AddLayer appends a default-styled layer, selects it and returns its id.
func (c *Controller) AddLayer() (string, bool) {
	c.endSpan()
	id := c.freshID()
	if id == "" || !c.scene.Append(scene.NewLayer(id)) {
		return "", false
	}
	c.commit("add layer")
	return id, true
}

// RemoveLayer deletes the layer with the given id. The last layer is never
// removed; the call reports false instead.
func (c *Controller) RemoveLayer(id string) bool {
	if c.scene.Len() <= 1 || c.scene.Index(id) < 0 {
		return false
	}
	c.endSpan()
	if !c.scene.Remove(id) {
		return false
	}
	c.commit("remove layer")
	return true
}

// DuplicateLayer copies every attribute of the layer with the given id into
// a new layer offset by DuplicateOffset, appends it and selects it.
func (c *Controller) DuplicateLayer(id string) (string, bool) {
	c.endSpan()
	src, ok := c.scene.Layer(id)
	if !ok {
		return "", false
	}
	newID := c.freshID()
	if newID == "" {
		return "", false
	}
	dup := scene.Move(src.X+DuplicateOffset, src.Y+DuplicateOffset).Apply(src)
	dup.ID = newID
	if src.RotationY != nil {
		ry := *src.RotationY
		dup.RotationY = &ry
	}
	if !c.scene.Append(dup) {
		return "", false
	}
	c.commit("duplicate layer")
	return newID, true
}

// UpdateLayer merges p into the layer with the given id and records it.
// Updates made while a drag or gesture is open, such as the position moves
// of a drag, become part of that span and are not recorded on their own.
func (c *Controller) UpdateLayer(id string, p scene.Patch) bool {
	if p.Empty() || !c.scene.Update(id, p) {
		return false
	}
	if c.hist.Coalescing() {
		if c.drag != nil {
			c.drag.moved = true
		}
		c.frames.Request()
		return true
	}
	c.commit("update layer")
	return true
}

// SelectLayer moves the selection. It is not recorded in history.
func (c *Controller) SelectLayer(id string) bool {
	if !c.scene.Select(id) {
		return false
	}
	if !c.hist.Coalescing() {
		c.hist.Replace(c.scene)
	}
	c.frames.Request()
	return true
}

// Reset replaces every layer with the single default layer. The reset is
// one undo step.
func (c *Controller) Reset() {
	c.endSpan()
	c.scene = scene.New()
	c.commit("reset")
}

// Undo reverts the last recorded step. During a drag it cancels the drag
// instead.
func (c *Controller) Undo() bool {
	if c.CancelDrag() {
		return true
	}
	c.endSpan()
	s, ok := c.hist.Undo()
	if !ok {
		return false
	}
	c.scene = s
	c.frames.Request()
	c.log().Debug("editor: undo", "layers", s.Len(), "selected", s.SelectedID)
	return true
}

// Redo re-applies the last undone step. An open drag is cancelled first.
func (c *Controller) Redo() bool {
	c.CancelDrag()
	c.endSpan()
	s, ok := c.hist.Redo()
	if !ok {
		return false
	}
	c.scene = s
	c.frames.Request()
	c.log().Debug("editor: redo", "layers", s.Len(), "selected", s.SelectedID)
	return true
}

// BeginGesture opens a span in which every update is folded into one undo
// step, for slider drags and typing. It has no effect during a drag.
func (c *Controller) BeginGesture() {
	if c.drag != nil {
		return
	}
	c.hist.StartCoalescing()
}

// EndGesture closes the span opened by BeginGesture and records the result.
// A span that changed nothing records nothing.
func (c *Controller) EndGesture() {
	if c.drag != nil || !c.hist.Coalescing() {
		return
	}
	c.closeSpan()
}

// closeSpan ends coalescing, recording the live scene only if it differs
// from the state at the start of the span.
func (c *Controller) closeSpan() {
	if equal(c.hist.Current(), c.scene) {
		c.hist.CancelCoalescing()
		return
	}
	c.hist.EndCoalescing(c.scene)
	c.frames.Request()
	c.log().Debug("editor: gesture recorded", "layers", c.scene.Len())
}

// endSpan records an open drag or gesture, so explicit operations never
// land inside a span.
func (c *Controller) endSpan() {
	switch {
	case c.drag != nil:
		c.finishDrag()
	case c.hist.Coalescing():
		c.closeSpan()
	}
}

// RequestRedraw schedules a redraw without changing the scene.
func (c *Controller) RequestRedraw() { c.frames.Request() }

// Frame runs the redraw callback if one or more redraws were requested
// since the last frame, and reports whether it did.
func (c *Controller) Frame() bool {
	return c.frames.Tick(func() {
		if c.redraw != nil {
			c.redraw(c.scene.Clone())
		}
	})
}

// equal compares two scenes field by field.
func equal(a, b scene.Scene) bool {
	if a.SelectedID != b.SelectedID || len(a.Layers) != len(b.Layers) {
		return false
	}
	for i := range a.Layers {
		x, y := a.Layers[i], b.Layers[i]
		if (x.RotationY == nil) != (y.RotationY == nil) {
			return false
		}
		if x.RotationY != nil && *x.RotationY != *y.RotationY {
			return false
		}
		x.RotationY, y.RotationY = nil, nil
		if x != y {
			return false
		}
	}
	return true
}
