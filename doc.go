// Package thumbnail is a layered thumbnail editor engine for Go.
//
// # Overview
//
// A thumbnail is a scene of three strata: the uploaded background image,
// any number of styled text layers, and the foreground subject extracted
// from the background by a segmentation collaborator. Drawing the subject
// last lets text sit "behind" the person or object in the photo.
//
// # Quick Start
//
//	reg := fonts.NewRegistry()
//	ed := editor.New()
//	ed.UpdateLayer("1", scene.Patch{Content: scene.String("HELLO")})
//
//	c := compose.New(reg)
//	f, _ := os.Create(compose.ExportName)
//	defer f.Close()
//	_ = c.RenderPNG(f, compose.Frame{
//		Background: compose.NewImage(bg),
//		Layers:     ed.Scene().Layers,
//		Foreground: compose.NewImage(fg),
//	})
//
// # Architecture
//
// The module is organized into:
//   - scene: layers, selection, partial updates and deep-copy snapshots
//   - history: undo/redo with coalesced continuous edits
//   - compose: deterministic rendering onto a fixed 3840x2160 surface (gg)
//   - hittest: topmost-layer picking with an approximate text box
//   - editor: user intents, drag gestures, shortcuts and redraw scheduling
//   - fonts: injected font registry with a Go font fallback
//   - segment: background removal collaborator with request tokens
//   - imageio: image intake (bytes or data URLs) and PNG export
//   - cmd/thumbnail: render, watch, serve and fonts commands
//
// # Coordinate System
//
// Layer positions are percentages of the surface (0..100), so a scene is
// resolution independent. Pointer coordinates given to the editor are in
// surface pixels: origin top-left, X right, Y down.
//
// # Logging
//
// Nothing is logged by default. Call [SetLogger] to enable it.
package thumbnail
