package editor

import (
	"fmt"
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/gogpu/thumbnail/scene"
)

// sequence returns a generator producing "id-1", "id-2", ...
func sequence() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestController(opts ...Option) *Controller {
	return New(append([]Option{WithIDGenerator(sequence())}, opts...)...)
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestAddUndoRedoKeepsID(t *testing.T) {
	c := newTestController()

	id, ok := c.AddLayer()
	if !ok {
		t.Fatal("AddLayer() failed")
	}
	s := c.Scene()
	if s.Len() != 2 || s.SelectedID != id {
		t.Fatalf("after add: %d layers, selected %q; want 2, %q", s.Len(), s.SelectedID, id)
	}

	if !c.Undo() {
		t.Fatal("Undo() = false")
	}
	s = c.Scene()
	if s.Len() != 1 || s.SelectedID != "1" {
		t.Fatalf("after undo: %d layers, selected %q; want 1, \"1\"", s.Len(), s.SelectedID)
	}

	if !c.Redo() {
		t.Fatal("Redo() = false")
	}
	s = c.Scene()
	if s.Len() != 2 || s.SelectedID != id || s.Layers[1].ID != id {
		t.Fatalf("after redo: %d layers, selected %q; want 2, %q", s.Len(), s.SelectedID, id)
	}
}

func TestAddLayerDefaults(t *testing.T) {
	c := newTestController()
	id, _ := c.AddLayer()
	l, ok := c.Scene().Layer(id)
	if !ok {
		t.Fatal("added layer missing")
	}
	if l.Content != "New Text" || l.X != 50 || l.Y != 50 || l.FontSize != scene.DefaultFontSize {
		t.Errorf("AddLayer() layer = %+v", l)
	}
}

func TestAddLayerSkipsUsedIDs(t *testing.T) {
	ids := []string{"1", "", "x"}
	c := New(WithIDGenerator(func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}))
	id, ok := c.AddLayer()
	if !ok || id != "x" {
		t.Errorf("AddLayer() = %q, %v; want \"x\", true", id, ok)
	}
}

func TestAddLayerGeneratorExhausted(t *testing.T) {
	c := New(WithIDGenerator(func() string { return "1" }))
	if _, ok := c.AddLayer(); ok {
		t.Error("AddLayer() succeeded with a generator that only repeats")
	}
	if c.History().CanUndo() {
		t.Error("failed add was recorded")
	}
}

func TestRemoveLayerFloor(t *testing.T) {
	c := newTestController()
	if c.RemoveLayer("1") {
		t.Error("RemoveLayer() removed the last layer")
	}

	for range 3 {
		c.AddLayer()
	}
	for _, l := range c.Scene().Layers {
		c.RemoveLayer(l.ID)
		if n := c.Scene().Len(); n < 1 {
			t.Fatalf("layer count = %d, want >= 1", n)
		}
	}
	if n := c.Scene().Len(); n != 1 {
		t.Errorf("layer count = %d, want 1", n)
	}
}

func TestRemoveSelectedSelectsFirst(t *testing.T) {
	c := newTestController()
	a, _ := c.AddLayer()
	b, _ := c.AddLayer()
	c.SelectLayer(a)

	if !c.RemoveLayer(a) {
		t.Fatal("RemoveLayer() = false")
	}
	if got := c.Scene().SelectedID; got != "1" {
		t.Errorf("selected = %q, want first layer \"1\"", got)
	}

	c.SelectLayer(b)
	c.RemoveLayer("1")
	if got := c.Scene().SelectedID; got != b {
		t.Errorf("selected = %q, want %q to stay selected", got, b)
	}

	if c.RemoveLayer("missing") {
		t.Error("RemoveLayer(missing) = true")
	}
}

func TestDuplicateLayer(t *testing.T) {
	c := newTestController()
	c.UpdateLayer("1", scene.Patch{
		Color:     scene.String("#ff0000"),
		RotationY: scene.Float(30),
		X:         scene.Float(95),
	})

	id, ok := c.DuplicateLayer("1")
	if !ok {
		t.Fatal("DuplicateLayer() failed")
	}
	s := c.Scene()
	orig, _ := s.Layer("1")
	dup, _ := s.Layer(id)
	if s.SelectedID != id {
		t.Errorf("selected = %q, want duplicate %q", s.SelectedID, id)
	}
	if dup.X != 100 || dup.Y != 60 {
		t.Errorf("duplicate at (%v, %v), want (100, 60)", dup.X, dup.Y)
	}
	if dup.Color != orig.Color || dup.Content != orig.Content || dup.FontWeight != orig.FontWeight {
		t.Errorf("duplicate attributes = %+v, want copy of %+v", dup, orig)
	}
	if dup.RotationY == nil || *dup.RotationY != 30 || dup.RotationY == orig.RotationY {
		t.Error("duplicate does not own a copy of RotationY")
	}

	c.Undo()
	if s := c.Scene(); s.Len() != 1 || s.SelectedID != "1" {
		t.Errorf("after undo: %d layers, selected %q", s.Len(), s.SelectedID)
	}
	if _, ok := c.DuplicateLayer("missing"); ok {
		t.Error("DuplicateLayer(missing) succeeded")
	}
}

func TestUpdateLayerRecords(t *testing.T) {
	c := newTestController()
	c.UpdateLayer("1", scene.Patch{Content: scene.String("Hello")})
	c.UpdateLayer("1", scene.Patch{FontSize: scene.Float(120)})

	if undo, _ := c.History().Len(); undo != 2 {
		t.Fatalf("undo depth = %d, want 2", undo)
	}
	c.Undo()
	l, _ := c.Scene().Layer("1")
	if l.Content != "Hello" || l.FontSize != scene.DefaultFontSize {
		t.Errorf("after undo: content %q size %v", l.Content, l.FontSize)
	}

	if c.UpdateLayer("1", scene.Patch{}) {
		t.Error("empty patch reported a change")
	}
	if c.UpdateLayer("missing", scene.Move(1, 1)) {
		t.Error("update of missing layer reported a change")
	}
}

func TestSelectLayerNotRecorded(t *testing.T) {
	c := newTestController()
	c.AddLayer()
	c.SelectLayer("1")

	if undo, _ := c.History().Len(); undo != 1 {
		t.Errorf("undo depth = %d, want 1", undo)
	}
	if c.SelectLayer("missing") {
		t.Error("SelectLayer(missing) = true")
	}
	if got := c.Scene().SelectedID; got != "1" {
		t.Errorf("selected = %q, want \"1\"", got)
	}

	// Redo returns to the state as it was when undone, selection included.
	c.Undo()
	c.Redo()
	if got := c.Scene().SelectedID; got != "1" {
		t.Errorf("after redo selected = %q, want \"1\"", got)
	}
}

func TestGestureRecordsOneStep(t *testing.T) {
	c := newTestController()
	c.BeginGesture()
	for _, size := range []float64{310, 320, 330} {
		c.UpdateLayer("1", scene.Patch{FontSize: scene.Float(size)})
	}
	c.EndGesture()

	if undo, _ := c.History().Len(); undo != 1 {
		t.Fatalf("undo depth = %d, want 1", undo)
	}
	c.Undo()
	if l, _ := c.Scene().Layer("1"); l.FontSize != scene.DefaultFontSize {
		t.Errorf("after undo size = %v, want %v", l.FontSize, scene.DefaultFontSize)
	}
}

func TestEmptyGestureRecordsNothing(t *testing.T) {
	c := newTestController()
	c.BeginGesture()
	c.EndGesture()
	if c.History().CanUndo() || c.History().Coalescing() {
		t.Error("empty gesture left history behind")
	}
}

func TestResetIsUndoable(t *testing.T) {
	c := newTestController()
	c.AddLayer()
	c.AddLayer()
	c.Reset()

	s := c.Scene()
	if s.Len() != 1 || s.SelectedID != "1" || s.Layers[0].Content != "POV" {
		t.Errorf("Reset() scene = %+v", s)
	}
	c.Undo()
	if n := c.Scene().Len(); n != 3 {
		t.Errorf("after undo: %d layers, want 3", n)
	}
}

func TestHistoryLimit(t *testing.T) {
	c := newTestController(WithHistoryLimit(2))
	for range 3 {
		c.AddLayer()
	}
	if !c.Undo() || !c.Undo() {
		t.Fatal("Undo() failed within the limit")
	}
	if c.Undo() {
		t.Error("Undo() beyond the limit succeeded")
	}
	if n := c.Scene().Len(); n != 2 {
		t.Errorf("oldest reachable state has %d layers, want 2", n)
	}
}

func TestSceneIsACopy(t *testing.T) {
	c := newTestController()
	s := c.Scene()
	s.Layers[0].Content = "mutated"
	if l, _ := c.Scene().Layer("1"); l.Content == "mutated" {
		t.Error("Scene() exposes the live scene")
	}
}

func TestWithScene(t *testing.T) {
	start := scene.Scene{
		Layers:     []scene.TextLayer{scene.NewLayer("a"), scene.NewLayer("b")},
		SelectedID: "b",
	}
	c := New(WithScene(start))
	if s := c.Scene(); s.Len() != 2 || s.SelectedID != "b" {
		t.Errorf("WithScene() start = %+v", s)
	}

	c = New(WithScene(scene.Scene{}))
	if s := c.Scene(); s.Len() != 1 || s.SelectedID != "1" {
		t.Errorf("invalid WithScene() not ignored: %+v", s)
	}
}

func TestFrameCoalesces(t *testing.T) {
	var draws []scene.Scene
	c := newTestController(WithRedraw(func(s scene.Scene) { draws = append(draws, s) }))

	c.AddLayer()
	c.UpdateLayer("1", scene.Move(10, 10))
	c.RequestRedraw()

	if !c.Frame() {
		t.Fatal("Frame() = false with pending redraws")
	}
	if c.Frame() {
		t.Error("second Frame() redrew without a request")
	}
	if len(draws) != 1 || draws[0].Len() != 2 {
		t.Fatalf("redraws = %d, want one pass over 2 layers", len(draws))
	}
}

func TestUUIDv7(t *testing.T) {
	a, b := UUIDv7(), UUIDv7()
	if a == b {
		t.Error("UUIDv7() repeated an id")
	}
	u, err := uuid.Parse(a)
	if err != nil {
		t.Fatalf("uuid.Parse(%q) error = %v", a, err)
	}
	if u.Version() != 7 {
		t.Errorf("version = %d, want 7", u.Version())
	}

	c := New()
	id, ok := c.AddLayer()
	if _, err := uuid.Parse(id); !ok || err != nil {
		t.Errorf("default id %q is not a UUID", id)
	}
}
