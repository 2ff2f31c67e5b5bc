// Package scenefile reads and writes scene documents.
//
// A document lists layers in paint order and names the selected layer:
//
//	selected: title
//	layers:
//	  - id: title
//	    text: POV
//	    fontSize: 320
//	    fontWeight: 900
//	  - id: caption
//	    text: day one
//	    y: 80
//
// Attributes a layer leaves out take the defaults of a newly added layer,
// and out-of-range values are clamped the way the editor clamps them. An
// omitted selection selects the first layer.
//
// YAML and TOML are supported; JSON is read as YAML.
package scenefile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/thumbnail/scene"
)

// Format is a document encoding.
type Format string

// Supported formats.
const (
	YAML Format = "yaml"
	TOML Format = "toml"
	JSON Format = "json"
)

// ErrUnknownFormat is returned for files whose extension names no format.
var ErrUnknownFormat = errors.New("scenefile: unknown format")

// ErrInvalid wraps decoding and validation failures.
var ErrInvalid = errors.New("scenefile: invalid scene")

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	case ".json":
		return JSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
}

type document struct {
	Selected string  `yaml:"selected,omitempty" toml:"selected,omitempty"`
	Layers   []layer `yaml:"layers" toml:"layers"`
}

type layer struct {
	ID          string `yaml:"id" toml:"id"`
	scene.Patch `yaml:",inline"`
}

// Load reads and decodes the scene document at path.
func Load(path string) (scene.Scene, error) {
	f, err := FormatOf(path)
	if err != nil {
		return scene.Scene{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return scene.Scene{}, fmt.Errorf("scenefile: %w", err)
	}
	s, err := Decode(data, f)
	if err != nil {
		return scene.Scene{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Decode parses a document and returns a valid scene.
func Decode(data []byte, f Format) (scene.Scene, error) {
	var doc document
	var err error
	switch f {
	case YAML, JSON:
		err = yaml.Unmarshal(data, &doc)
	case TOML:
		err = toml.Unmarshal(data, &doc)
	default:
		return scene.Scene{}, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		return scene.Scene{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	s := scene.Scene{Layers: make([]scene.TextLayer, 0, len(doc.Layers))}
	for _, l := range doc.Layers {
		s.Layers = append(s.Layers, l.Apply(scene.NewLayer(l.ID)))
	}
	s.SelectedID = doc.Selected
	if s.SelectedID == "" && len(s.Layers) > 0 {
		s.SelectedID = s.Layers[0].ID
	}
	if err := s.Validate(); err != nil {
		return scene.Scene{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return s, nil
}

// Encode serializes s with every attribute spelled out.
func Encode(s scene.Scene, f Format) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	doc := document{Selected: s.SelectedID, Layers: make([]layer, len(s.Layers))}
	for i, l := range s.Layers {
		doc.Layers[i] = layer{ID: l.ID, Patch: patchOf(l)}
	}

	var buf bytes.Buffer
	switch f {
	case YAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("scenefile: encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("scenefile: encode yaml: %w", err)
		}
	case TOML:
		if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
			return nil, fmt.Errorf("scenefile: encode toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	return buf.Bytes(), nil
}

// Save encodes s in the format implied by path and writes it.
func Save(path string, s scene.Scene) error {
	f, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := Encode(s, f)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("scenefile: %w", err)
	}
	return nil
}

func patchOf(l scene.TextLayer) scene.Patch {
	p := scene.Patch{
		Content:    scene.String(l.Content),
		X:          scene.Float(l.X),
		Y:          scene.Float(l.Y),
		FontSize:   scene.Float(l.FontSize),
		Opacity:    scene.Float(l.Opacity),
		FontFamily: scene.String(l.FontFamily),
		Color:      scene.String(l.Color),
		FontWeight: scene.Int(l.Weight()),
	}
	if l.LetterSpacing != 0 {
		p.LetterSpacing = scene.Float(l.LetterSpacing)
	}
	if l.Rotation != 0 {
		p.Rotation = scene.Float(l.Rotation)
	}
	if l.RotationY != nil {
		p.RotationY = scene.Float(*l.RotationY)
	}
	if l.Transform != "" && l.Transform != scene.TransformNone {
		t := l.Transform
		p.Transform = &t
	}
	return p
}
