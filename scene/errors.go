package scene

import "errors"

// Sentinel errors reported by Validate.
var (
	// ErrEmptyScene is returned when a scene has no layers.
	ErrEmptyScene = errors.New("scene: no layers")

	// ErrMissingID is returned when a layer has an empty id.
	ErrMissingID = errors.New("scene: layer without id")

	// ErrDuplicateID is returned when two layers share an id.
	ErrDuplicateID = errors.New("scene: duplicate layer id")

	// ErrDanglingSelection is returned when the selection names no layer.
	ErrDanglingSelection = errors.New("scene: selection does not name a layer")
)
