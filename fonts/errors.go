package fonts

import (
	"errors"

	"github.com/h2non/filetype"
)

// Sentinel errors for font registration.
var (
	// ErrEmptyName is returned when a font is registered without a name.
	ErrEmptyName = errors.New("fonts: empty family name")

	// ErrNotFont is returned when the data is not a font.
	ErrNotFont = errors.New("fonts: not a font")

	// ErrUnsupportedFormat is returned for web font containers (WOFF,
	// WOFF2), which the parser cannot read.
	ErrUnsupportedFormat = errors.New("fonts: unsupported font format")
)

// sniff rejects data that is recognisably not a TrueType or OpenType font.
// Unrecognised data is left to the parser.
func sniff(data []byte) error {
	if len(data) == 0 {
		return ErrNotFont
	}
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return nil
	}
	switch kind.Extension {
	case "ttf", "otf":
		return nil
	case "woff", "woff2":
		return ErrUnsupportedFormat
	default:
		return ErrNotFont
	}
}
