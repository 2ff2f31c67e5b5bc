package scene

import (
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Transform is a case transformation applied when a layer is displayed.
// The stored Content is never rewritten.
type Transform string

// Text transforms.
const (
	TransformNone  Transform = "none"
	TransformUpper Transform = "uppercase"
	TransformLower Transform = "lowercase"
)

// Attribute defaults and ranges. The ranges mirror the editing controls:
// values outside them are clamped when a Patch is applied.
const (
	DefaultFontFamily = "arial"
	DefaultColor      = "rgba(255, 255, 255, 1)"
	DefaultFontSize   = 300
	DefaultWeight     = 400

	MinFontSize      = 10
	MaxFontSize      = 1000
	MinWeight        = 100
	MaxWeight        = 900
	MinLetterSpacing = -5
	MaxLetterSpacing = 20
	MaxRotation      = 360
	MaxRotationY     = 180
)

// TextLayer is one positioned, styled text item of a scene.
// X and Y are percentages (0..100) of the surface width and height.
type TextLayer struct {
	ID            string    `yaml:"id" toml:"id" json:"id"`
	Content       string    `yaml:"text" toml:"text" json:"text"`
	X             float64   `yaml:"x" toml:"x" json:"x"`
	Y             float64   `yaml:"y" toml:"y" json:"y"`
	FontSize      float64   `yaml:"fontSize" toml:"fontSize" json:"fontSize"`
	Opacity       float64   `yaml:"opacity" toml:"opacity" json:"opacity"`
	FontFamily    string    `yaml:"font" toml:"font" json:"font"`
	Color         string    `yaml:"color" toml:"color" json:"color"`
	FontWeight    int       `yaml:"fontWeight,omitempty" toml:"fontWeight,omitempty" json:"fontWeight,omitempty"`
	LetterSpacing float64   `yaml:"letterSpacing,omitempty" toml:"letterSpacing,omitempty" json:"letterSpacing,omitempty"`
	Rotation      float64   `yaml:"rotation,omitempty" toml:"rotation,omitempty" json:"rotation,omitempty"`
	RotationY     *float64  `yaml:"rotationY,omitempty" toml:"rotationY,omitempty" json:"rotationY,omitempty"`
	Transform     Transform `yaml:"textTransform,omitempty" toml:"textTransform,omitempty" json:"textTransform,omitempty"`
}

// DefaultLayer returns the layer a fresh scene starts with.
func DefaultLayer(id string) TextLayer {
	return TextLayer{
		ID:         id,
		Content:    "POV",
		X:          50,
		Y:          50,
		FontSize:   DefaultFontSize,
		Opacity:    1,
		FontFamily: DefaultFontFamily,
		Color:      DefaultColor,
		FontWeight: 900,
	}
}

// NewLayer returns the layer appended by an "add text" action.
func NewLayer(id string) TextLayer {
	return TextLayer{
		ID:         id,
		Content:    "New Text",
		X:          50,
		Y:          50,
		FontSize:   DefaultFontSize,
		Opacity:    1,
		FontFamily: DefaultFontFamily,
		Color:      DefaultColor,
		FontWeight: DefaultWeight,
	}
}

// Weight returns the font weight, substituting the default for zero.
func (l TextLayer) Weight() int {
	if l.FontWeight == 0 {
		return DefaultWeight
	}
	return l.FontWeight
}

// Text returns the content as it is drawn, with Transform applied.
func (l TextLayer) Text() string {
	switch l.Transform {
	case TransformUpper:
		return cases.Upper(language.Und).String(l.Content)
	case TransformLower:
		return cases.Lower(language.Und).String(l.Content)
	default:
		return l.Content
	}
}

// RuneCount returns the number of characters drawn for the layer.
func (l TextLayer) RuneCount() int {
	return utf8.RuneCountInString(l.Text())
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
