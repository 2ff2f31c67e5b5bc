package scenefile

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/gogpu/thumbnail/scene"
)

const yamlDoc = `
selected: caption
layers:
  - id: title
    text: POV
    fontSize: 320
    fontWeight: 900
    textTransform: uppercase
  - id: caption
    text: day one
    y: 80
    opacity: 0
    rotationY: 45
`

func TestDecodeYAML(t *testing.T) {
	s, err := Decode([]byte(yamlDoc), YAML)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if s.Len() != 2 || s.SelectedID != "caption" {
		t.Fatalf("Decode() = %d layers, selected %q", s.Len(), s.SelectedID)
	}

	title := s.Layers[0]
	if title.FontSize != 320 || title.FontWeight != 900 || title.Transform != scene.TransformUpper {
		t.Errorf("title = %+v", title)
	}
	// Omitted attributes take the new-layer defaults.
	if title.X != 50 || title.Color != scene.DefaultColor || title.Opacity != 1 {
		t.Errorf("title defaults = %+v", title)
	}

	caption := s.Layers[1]
	if caption.Y != 80 || caption.Opacity != 0 {
		t.Errorf("caption = %+v, want y 80 and an explicit opacity of 0", caption)
	}
	if caption.RotationY == nil || *caption.RotationY != 45 {
		t.Errorf("caption rotationY = %v, want 45", caption.RotationY)
	}
}

func TestDecodeJSON(t *testing.T) {
	doc := `{"layers": [{"id": "a", "text": "Hi", "x": 10, "fontSize": 5000}]}`
	s, err := Decode([]byte(doc), JSON)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	l := s.Layers[0]
	if s.SelectedID != "a" {
		t.Errorf("selected = %q, want first layer", s.SelectedID)
	}
	if l.Content != "Hi" || l.X != 10 || l.FontSize != scene.MaxFontSize {
		t.Errorf("layer = %+v, want clamped font size", l)
	}
}

func TestDecodeTOML(t *testing.T) {
	doc := `
selected = "b"

[[layers]]
id = "a"
text = "first"
x = 25.0

[[layers]]
id = "b"
text = "second"
color = "#ff0000"
fontWeight = 700
`
	s, err := Decode([]byte(doc), TOML)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if s.Len() != 2 || s.SelectedID != "b" {
		t.Fatalf("Decode() = %+v", s)
	}
	if s.Layers[0].X != 25 || s.Layers[1].Color != "#ff0000" || s.Layers[1].FontWeight != 700 {
		t.Errorf("layers = %+v", s.Layers)
	}
}

func TestDecodeInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"syntax", "layers: [", nil},
		{"no layers", "layers: []", scene.ErrEmptyScene},
		{"missing id", "layers: [{text: x}]", scene.ErrMissingID},
		{"duplicate id", "layers: [{id: a}, {id: a}]", scene.ErrDuplicateID},
		{"dangling selection", "selected: z\nlayers: [{id: a}]", scene.ErrDanglingSelection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc), YAML)
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("Decode() error = %v, want ErrInvalid", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := Decode(nil, "xml"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Decode(xml) error = %v, want ErrUnknownFormat", err)
	}
}

func TestEncodeDecodePreservesScene(t *testing.T) {
	s := scene.New()
	l := scene.NewLayer("2")
	l.Opacity = 0
	l.Rotation = -15
	l.RotationY = scene.Float(30)
	l.LetterSpacing = 4
	l.Transform = scene.TransformLower
	s.Append(l)

	for _, f := range []Format{YAML, TOML} {
		data, err := Encode(s, f)
		if err != nil {
			t.Fatalf("Encode(%s) error = %v", f, err)
		}
		got, err := Decode(data, f)
		if err != nil {
			t.Fatalf("Decode(%s) error = %v\n%s", f, err, data)
		}
		if !reflect.DeepEqual(got, s) {
			t.Errorf("%s: decoded %+v, want %+v", f, got, s)
		}
	}
}

func TestEncodeRejectsInvalid(t *testing.T) {
	if _, err := Encode(scene.Scene{}, YAML); !errors.Is(err, ErrInvalid) {
		t.Errorf("Encode(empty) error = %v, want ErrInvalid", err)
	}
	if _, err := Encode(scene.New(), JSON); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Encode(json) error = %v, want ErrUnknownFormat", err)
	}
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	want := scene.New()
	for _, name := range []string{"scene.yaml", "scene.yml", "scene.toml"} {
		path := filepath.Join(dir, name)
		if err := Save(path, want); err != nil {
			t.Fatalf("Save(%s) error = %v", name, err)
		}
		got, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%s) error = %v", name, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Load(%s) = %+v, want %+v", name, got, want)
		}
	}

	json := filepath.Join(dir, "scene.json")
	if err := os.WriteFile(json, []byte(`{"layers":[{"id":"j"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if s, err := Load(json); err != nil || s.SelectedID != "j" {
		t.Errorf("Load(json) = %+v, %v", s, err)
	}

	if _, err := Load(filepath.Join(dir, "scene.txt")); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Load(txt) error = %v, want ErrUnknownFormat", err)
	}
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Load(missing) error = nil")
	}
}

func TestFormatOf(t *testing.T) {
	tests := map[string]Format{"a.yaml": YAML, "b.YML": YAML, "c.toml": TOML, "d.json": JSON}
	for path, want := range tests {
		if got, err := FormatOf(path); err != nil || got != want {
			t.Errorf("FormatOf(%q) = %q, %v; want %q", path, got, err, want)
		}
	}
}
