package editor

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/gogpu/thumbnail/compose"
	"github.com/gogpu/thumbnail/history"
	"github.com/gogpu/thumbnail/scene"
)

// Option configures a Controller during creation.
//
// Example:
//
//	c := editor.New(
//		editor.WithHistoryLimit(50),
//		editor.WithRedraw(func(s scene.Scene) { render(s) }),
//	)
type Option func(*options)

type options struct {
	newID  func() string
	limit  int
	redraw func(scene.Scene)
	width  float64
	height float64
	logger *slog.Logger
	start  *scene.Scene
}

func defaultOptions() options {
	return options{
		newID:  UUIDv7,
		limit:  history.DefaultLimit,
		width:  compose.SurfaceWidth,
		height: compose.SurfaceHeight,
	}
}

// UUIDv7 returns a time-ordered RFC 9562 UUID string. It is the default
// layer id generator.
func UUIDv7() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// WithIDGenerator sets the function that names new layers.
// A generator returning an id already in the scene is called again.
func WithIDGenerator(gen func() string) Option {
	return func(o *options) {
		if gen != nil {
			o.newID = gen
		}
	}
}

// WithHistoryLimit caps the undo depth. Zero means unbounded.
func WithHistoryLimit(n int) Option {
	return func(o *options) {
		o.limit = n
	}
}

// WithRedraw sets the callback run by Frame when a redraw is pending.
// It receives a copy of the scene.
func WithRedraw(fn func(scene.Scene)) Option {
	return func(o *options) {
		o.redraw = fn
	}
}

// WithSurfaceSize sets the size, in pixels, of the surface that pointer
// coordinates refer to. The default is the export resolution.
func WithSurfaceSize(width, height float64) Option {
	return func(o *options) {
		if width > 0 && height > 0 {
			o.width, o.height = width, height
		}
	}
}

// WithLogger sets the logger for editor events. By default the package
// logger set with thumbnail.SetLogger is used.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithScene starts the controller from s instead of the default scene.
// Invalid scenes are ignored.
func WithScene(s scene.Scene) Option {
	return func(o *options) {
		if s.Validate() == nil {
			c := s.Clone()
			o.start = &c
		}
	}
}
