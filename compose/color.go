package compose

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// ErrInvalidColor is returned by ParseColor for strings it cannot read.
var ErrInvalidColor = errors.New("compose: invalid color")

// ParseColor reads a CSS colour: #rgb, #rgba, #rrggbb, #rrggbbaa,
// rgb(r, g, b), rgba(r, g, b, a), a named colour, or "transparent".
// Channels may be 0..255 or percentages; alpha may be 0..1 or a percentage.
func ParseColor(s string) (color.NRGBA, error) {
	str := strings.ToLower(strings.TrimSpace(s))
	switch {
	case str == "":
		return color.NRGBA{}, fmt.Errorf("%w: empty", ErrInvalidColor)
	case str == "transparent":
		return color.NRGBA{}, nil
	case str[0] == '#':
		return parseHex(str)
	case strings.HasPrefix(str, "rgba(") || strings.HasPrefix(str, "rgb("):
		return parseFunc(str)
	}
	if c, ok := colornames.Map[str]; ok {
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
	}
	return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
}

func parseHex(s string) (color.NRGBA, error) {
	rgb, alpha := s, ""
	switch len(s) {
	case 4, 7:
	case 5:
		rgb, alpha = s[:4], s[4:]+s[4:]
	case 9:
		rgb, alpha = s[:7], s[7:]
	default:
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	c, err := colorful.Hex(rgb)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	r, g, b := c.RGB255()
	a := uint64(255)
	if alpha != "" {
		if a, err = strconv.ParseUint(alpha, 16, 8); err != nil {
			return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
	}
	return color.NRGBA{R: r, G: g, B: b, A: uint8(a)}, nil
}

// parseFunc reads rgb()/rgba() in both the comma form and the
// space-separated form with an optional "/ alpha".
func parseFunc(s string) (color.NRGBA, error) {
	open, end := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if open < 0 || end != len(s)-1 {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	body := strings.NewReplacer(",", " ", "/", " ").Replace(s[open+1 : end])
	parts := strings.Fields(body)
	if len(parts) != 3 && len(parts) != 4 {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	var ch [3]uint8
	for i := range ch {
		v, err := parseChannel(parts[i], 255)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		ch[i] = uint8(v + 0.5)
	}
	a := 1.0
	if len(parts) == 4 {
		v, err := parseChannel(parts[3], 1)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		a = v
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: uint8(a*255 + 0.5)}, nil
}

// parseChannel parses a number or percentage and clamps it to 0..limit.
func parseChannel(s string, limit float64) (float64, error) {
	pct := strings.HasSuffix(s, "%")
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, err
	}
	if pct {
		v = v / 100 * limit
	}
	return clamp(v, 0, limit), nil
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
