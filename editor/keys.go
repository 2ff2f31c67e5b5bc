package editor

import "strings"

// KeyEvent is a key press. Key is the key's printed value ("z", "Z",
// "Escape"); Ctrl and Meta are both accepted as the primary modifier so the
// same bindings work on every platform.
type KeyEvent struct {
	Key   string
	Ctrl  bool
	Meta  bool
	Shift bool
	Alt   bool
}

// Mod reports whether the primary modifier is held.
func (k KeyEvent) Mod() bool { return k.Ctrl || k.Meta }

// HandleKey runs the editor shortcut bound to k:
//
//	Escape             cancel the drag in progress
//	Mod+Z              undo
//	Mod+Y, Mod+Shift+Z redo
//
// It reports whether k was a shortcut. The caller must then suppress the
// host's own handling of the key, even when there was nothing to undo.
func (c *Controller) HandleKey(k KeyEvent) bool {
	key := strings.ToLower(k.Key)
	switch {
	case key == "escape" || key == "esc":
		return c.CancelDrag()
	case !k.Mod() || k.Alt:
		return false
	case key == "z" && !k.Shift:
		c.Undo()
		return true
	case key == "y", key == "z" && k.Shift:
		c.Redo()
		return true
	}
	return false
}
