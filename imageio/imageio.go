// Package imageio handles image intake and export for thumbnails.
//
// Uploads arrive either as raw bytes or as data URLs (the form a browser
// file reader produces). The content type is sniffed from the bytes, never
// taken from a file name or a declared MIME type.
package imageio

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/url"
	"strings"

	"github.com/anthonynsimon/bild/transform"
	"github.com/h2non/filetype"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// Sentinel errors.
var (
	// ErrNotImage is returned when the data is not an image.
	ErrNotImage = errors.New("imageio: not an image")

	// ErrUnsupportedFormat is returned for images of a known but
	// undecodable type, such as HEIF.
	ErrUnsupportedFormat = errors.New("imageio: unsupported image format")

	// ErrBadDataURL is returned for malformed data URLs.
	ErrBadDataURL = errors.New("imageio: malformed data URL")
)

const dataPrefix = "data:"

// Decode decodes raw image bytes or a data URL.
// PNG, JPEG, GIF, WebP, BMP and TIFF are supported.
func Decode(data []byte) (image.Image, error) {
	data, err := Raw(data)
	if err != nil {
		return nil, err
	}
	kind, err := filetype.Match(data)
	if err != nil || !filetype.IsImage(data) {
		return nil, ErrNotImage
	}

	var decode func(io.Reader) (image.Image, error)
	switch kind.Extension {
	case "png":
		decode = png.Decode
	case "jpg":
		decode = jpeg.Decode
	case "gif":
		decode = gif.Decode
	case "webp":
		decode = webp.Decode
	case "bmp":
		decode = bmp.Decode
	case "tif":
		decode = tiff.Decode
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, kind.MIME.Value)
	}
	img, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imageio: decode %s: %w", kind.Extension, err)
	}
	return img, nil
}

// Raw returns the payload of a data URL, or data itself if it is not one.
func Raw(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, []byte(dataPrefix)) {
		return data, nil
	}
	return parseDataURL(string(data))
}

// parseDataURL returns the payload of "data:[<mediatype>][;base64],<data>".
func parseDataURL(s string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(s, dataPrefix), ",")
	if !ok {
		return nil, ErrBadDataURL
	}
	if strings.HasSuffix(meta, ";base64") {
		out, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// Some encoders drop the padding.
			if out, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrBadDataURL, err)
			}
		}
		return out, nil
	}
	out, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadDataURL, err)
	}
	return []byte(out), nil
}

// DataURL encodes data as a base64 data URL with its sniffed MIME type.
func DataURL(data []byte) string {
	mime := "application/octet-stream"
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		mime = kind.MIME.Value
	}
	return dataPrefix + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("imageio: encode png: %w", err)
	}
	return nil
}

// PreviewSize returns the size of an image of size sz scaled so its longer
// side is maxSide. Images already within maxSide keep their size.
func PreviewSize(sz image.Point, maxSide int) image.Point {
	if maxSide <= 0 || (sz.X <= maxSide && sz.Y <= maxSide) {
		return sz
	}
	out := sz
	if sz.X >= sz.Y {
		out.X = maxSide
		out.Y = max(1, int(float64(sz.Y)*float64(maxSide)/float64(sz.X)+0.5))
	} else {
		out.Y = maxSide
		out.X = max(1, int(float64(sz.X)*float64(maxSide)/float64(sz.Y)+0.5))
	}
	return out
}

// Preview downsizes img for on-screen display; the export keeps the full
// surface resolution.
func Preview(img image.Image, maxSide int) image.Image {
	sz := img.Bounds().Size()
	out := PreviewSize(sz, maxSide)
	if out == sz {
		return img
	}
	return transform.Resize(img, out.X, out.Y, transform.Linear)
}
