// Package scene holds the data model of a thumbnail composition: an ordered
// list of text layers (paint order, later on top) and the selected layer.
//
// A Scene never has fewer than one layer and its selection always names an
// existing layer. The mutators enforce both rules by refusing the change
// rather than returning an error.
package scene

import (
	"fmt"

	"github.com/jinzhu/copier"
)

// Scene is an ordered set of text layers plus the selection pointer.
type Scene struct {
	Layers     []TextLayer `yaml:"layers" toml:"layers" json:"layers"`
	SelectedID string      `yaml:"selected" toml:"selected" json:"selected"`
}

// Snapshot is an immutable deep copy of a scene at one point in time.
// Snapshots are produced by Clone and never share memory with the live scene.
type Snapshot = Scene

// New returns a scene with the single default layer "1", selected.
func New() Scene {
	return Scene{
		Layers:     []TextLayer{DefaultLayer("1")},
		SelectedID: "1",
	}
}

// Clone returns a deep copy of s.
func (s Scene) Clone() Scene {
	var out Scene
	if err := copier.CopyWithOption(&out, &s, copier.Option{DeepCopy: true}); err != nil {
		// Scene to Scene copies cannot mismatch; keep the shallow fields at least.
		out.SelectedID = s.SelectedID
		out.Layers = append([]TextLayer(nil), s.Layers...)
	}
	return out
}

// Len returns the number of layers.
func (s Scene) Len() int { return len(s.Layers) }

// Index returns the paint index of the layer with the given id, or -1.
func (s Scene) Index(id string) int {
	for i := range s.Layers {
		if s.Layers[i].ID == id {
			return i
		}
	}
	return -1
}

// Layer returns the layer with the given id.
func (s Scene) Layer(id string) (TextLayer, bool) {
	i := s.Index(id)
	if i < 0 {
		return TextLayer{}, false
	}
	return s.Layers[i], true
}

// Selected returns the selected layer.
func (s Scene) Selected() (TextLayer, bool) {
	return s.Layer(s.SelectedID)
}

// Append adds l on top of all other layers and selects it.
// It refuses layers whose id is empty or already present.
func (s *Scene) Append(l TextLayer) bool {
	if l.ID == "" || s.Index(l.ID) >= 0 {
		return false
	}
	s.Layers = append(s.Layers, l)
	s.SelectedID = l.ID
	return true
}

// Remove deletes the layer with the given id. The last remaining layer can
// not be removed. When the selected layer goes, the new first layer is
// selected.
func (s *Scene) Remove(id string) bool {
	if len(s.Layers) <= 1 {
		return false
	}
	i := s.Index(id)
	if i < 0 {
		return false
	}
	s.Layers = append(s.Layers[:i:i], s.Layers[i+1:]...)
	if s.SelectedID == id {
		s.SelectedID = s.Layers[0].ID
	}
	return true
}

// Select moves the selection to id. Unknown ids are ignored.
func (s *Scene) Select(id string) bool {
	if s.Index(id) < 0 {
		return false
	}
	s.SelectedID = id
	return true
}

// Update merges p into the layer with the given id.
func (s *Scene) Update(id string, p Patch) bool {
	i := s.Index(id)
	if i < 0 {
		return false
	}
	s.Layers[i] = p.Apply(s.Layers[i])
	return true
}

// Validate checks the scene invariants. It is meant for scenes that come
// from outside the editor, such as scene documents.
func (s Scene) Validate() error {
	if len(s.Layers) == 0 {
		return ErrEmptyScene
	}
	seen := make(map[string]struct{}, len(s.Layers))
	for _, l := range s.Layers {
		if l.ID == "" {
			return ErrMissingID
		}
		if _, dup := seen[l.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateID, l.ID)
		}
		seen[l.ID] = struct{}{}
	}
	if _, ok := seen[s.SelectedID]; !ok {
		return fmt.Errorf("%w: %q", ErrDanglingSelection, s.SelectedID)
	}
	return nil
}
