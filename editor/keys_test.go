package editor

import "testing"

func TestHandleKey(t *testing.T) {
	c := newTestController()
	c.AddLayer()

	steps := []struct {
		name    string
		key     KeyEvent
		handled bool
		layers  int
	}{
		{"plain z", KeyEvent{Key: "z"}, false, 2},
		{"alt chord", KeyEvent{Key: "z", Ctrl: true, Alt: true}, false, 2},
		{"escape without drag", KeyEvent{Key: "Escape"}, false, 2},
		{"ctrl+z", KeyEvent{Key: "z", Ctrl: true}, true, 1},
		{"ctrl+z with nothing to undo", KeyEvent{Key: "z", Ctrl: true}, true, 1},
		{"ctrl+y", KeyEvent{Key: "y", Ctrl: true}, true, 2},
		{"cmd+z", KeyEvent{Key: "z", Meta: true}, true, 1},
		{"cmd+shift+z", KeyEvent{Key: "Z", Meta: true, Shift: true}, true, 2},
		{"ctrl+a", KeyEvent{Key: "a", Ctrl: true}, false, 2},
	}
	for _, st := range steps {
		if got := c.HandleKey(st.key); got != st.handled {
			t.Errorf("%s: HandleKey() = %v, want %v", st.name, got, st.handled)
		}
		if n := c.Scene().Len(); n != st.layers {
			t.Errorf("%s: %d layers, want %d", st.name, n, st.layers)
		}
	}
}
