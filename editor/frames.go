package editor

import "sync/atomic"

// Frames coalesces redraw requests. Any number of Request calls between two
// ticks produce one redraw. Request may be called from any goroutine.
type Frames struct {
	pending atomic.Bool
	ticks   atomic.Uint64
}

// Request schedules a redraw for the next tick.
func (f *Frames) Request() { f.pending.Store(true) }

// Pending reports whether a redraw is scheduled.
func (f *Frames) Pending() bool { return f.pending.Load() }

// Tick runs draw if a redraw is pending and reports whether it ran.
// Requests made while draw runs are kept for the next tick.
func (f *Frames) Tick(draw func()) bool {
	if !f.pending.CompareAndSwap(true, false) {
		return false
	}
	f.ticks.Add(1)
	draw()
	return true
}

// Drawn returns how many ticks ran a redraw.
func (f *Frames) Drawn() uint64 { return f.ticks.Load() }
