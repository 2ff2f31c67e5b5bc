// Package history implements snapshot-based undo/redo over scenes.
//
// The engine keeps the committed scene as its current snapshot. Push moves
// that snapshot onto the undo stack and makes the pushed one current, so
// Undo always lands on the state as it was before the last committed edit.
//
// Continuous edits (pointer drags, slider drags, typing) are coalesced:
// between StartCoalescing and EndCoalescing every Push is ignored, and
// EndCoalescing records the final state as a single step whose undo target
// is the state at StartCoalescing.
//
// No operation fails. An empty stack is reported through the boolean
// result of Undo and Redo.
package history

import (
	"github.com/gogpu/thumbnail"
	"github.com/gogpu/thumbnail/scene"
)

// DefaultLimit is the undo depth used when no WithLimit option is given.
const DefaultLimit = 100

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	limit int
}

// WithLimit caps the undo stack to n entries; the oldest entry is evicted
// when a push would exceed it. Zero or a negative n means unbounded.
func WithLimit(n int) Option {
	return func(o *engineOptions) {
		o.limit = n
	}
}

// Engine is an undo/redo history. It is not safe for concurrent use: it is
// owned by the goroutine that handles input events.
type Engine struct {
	undo       []scene.Snapshot
	redo       []scene.Snapshot
	current    scene.Snapshot
	coalescing bool
	limit      int
}

// New returns an engine whose current state is a copy of initial and whose
// stacks are empty.
func New(initial scene.Snapshot, opts ...Option) *Engine {
	o := engineOptions{limit: DefaultLimit}
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine{
		current: initial.Clone(),
		limit:   o.limit,
	}
}

// Push records s as the new current state. The previous current state
// becomes the top of the undo stack and the redo stack is cleared.
// While coalescing, Push does nothing.
func (e *Engine) Push(s scene.Snapshot) {
	if e.coalescing {
		return
	}
	e.undo = append(e.undo, e.current)
	if e.limit > 0 && len(e.undo) > e.limit {
		// Drop the oldest entries; copy so the evicted snapshots can be freed.
		e.undo = append([]scene.Snapshot(nil), e.undo[len(e.undo)-e.limit:]...)
	}
	e.redo = nil
	e.current = s.Clone()
	thumbnail.Logger().Debug("history: push", "undo", len(e.undo), "layers", len(s.Layers))
}

// Undo restores the previous state and returns a copy of it.
// It returns false when there is nothing to undo.
func (e *Engine) Undo() (scene.Snapshot, bool) {
	if len(e.undo) == 0 {
		return scene.Snapshot{}, false
	}
	e.redo = append(e.redo, e.current)
	e.current = e.undo[len(e.undo)-1]
	e.undo = e.undo[:len(e.undo)-1]
	return e.current.Clone(), true
}

// Redo re-applies the most recently undone state and returns a copy of it.
// It returns false when there is nothing to redo.
func (e *Engine) Redo() (scene.Snapshot, bool) {
	if len(e.redo) == 0 {
		return scene.Snapshot{}, false
	}
	e.undo = append(e.undo, e.current)
	e.current = e.redo[len(e.redo)-1]
	e.redo = e.redo[:len(e.redo)-1]
	return e.current.Clone(), true
}

// StartCoalescing suppresses Push until EndCoalescing or CancelCoalescing.
// Calling it again while already coalescing has no further effect.
func (e *Engine) StartCoalescing() {
	e.coalescing = true
}

// EndCoalescing leaves the suppressed span and records final as one step.
func (e *Engine) EndCoalescing(final scene.Snapshot) {
	e.coalescing = false
	e.Push(final)
}

// CancelCoalescing leaves the suppressed span without recording anything
// and returns a copy of the current state, which is the state at the time
// coalescing started.
func (e *Engine) CancelCoalescing() scene.Snapshot {
	e.coalescing = false
	return e.current.Clone()
}

// Coalescing reports whether pushes are currently suppressed.
func (e *Engine) Coalescing() bool { return e.coalescing }

// Current returns a copy of the current state.
func (e *Engine) Current() scene.Snapshot { return e.current.Clone() }

// Replace sets the current state without touching either stack. It keeps
// the engine in step with changes that are not undoable, such as picking a
// layer from a list.
func (e *Engine) Replace(s scene.Snapshot) {
	e.current = s.Clone()
}

// CanUndo reports whether Undo would change the state.
func (e *Engine) CanUndo() bool { return len(e.undo) > 0 }

// CanRedo reports whether Redo would change the state.
func (e *Engine) CanRedo() bool { return len(e.redo) > 0 }

// Len returns the depths of the undo and redo stacks.
func (e *Engine) Len() (undo, redo int) { return len(e.undo), len(e.redo) }

// Clear drops all history; the current state is kept.
func (e *Engine) Clear() {
	e.undo = nil
	e.redo = nil
}
