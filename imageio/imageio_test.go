package imageio

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		t.Fatalf("EncodePNG() error = %v", err)
	}
	return buf.Bytes()
}

func TestDecodePNG(t *testing.T) {
	data := encodePNG(t, testImage(40, 20))
	img, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got := img.Bounds().Size(); got != image.Pt(40, 20) {
		t.Errorf("Decode() size = %v, want 40x20", got)
	}
}

func TestDecodeJPEG(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(16, 16), nil); err != nil {
		t.Fatal(err)
	}
	img, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got := img.Bounds().Dx(); got != 16 {
		t.Errorf("Decode() width = %d, want 16", got)
	}
}

func TestDecodeDataURL(t *testing.T) {
	data := encodePNG(t, testImage(8, 4))
	u := DataURL(data)
	if !strings.HasPrefix(u, "data:image/png;base64,") {
		t.Fatalf("DataURL() = %q..., want image/png base64 prefix", u[:min(len(u), 30)])
	}
	img, err := Decode([]byte(u))
	if err != nil {
		t.Fatalf("Decode(data URL) error = %v", err)
	}
	if got := img.Bounds().Size(); got != image.Pt(8, 4) {
		t.Errorf("Decode(data URL) size = %v, want 8x4", got)
	}

	unpadded := "data:image/png;base64," + base64.RawStdEncoding.EncodeToString(data)
	if _, err := Decode([]byte(unpadded)); err != nil {
		t.Errorf("Decode(unpadded data URL) error = %v", err)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrNotImage},
		{"text", []byte("hello, world"), ErrNotImage},
		{"no comma", []byte("data:image/png;base64"), ErrBadDataURL},
		{"bad base64", []byte("data:image/png;base64,***"), ErrBadDataURL},
		{"truncated png", encodePNG(t, testImage(4, 4))[:20], nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			if err == nil {
				t.Fatal("Decode() error = nil, want error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPreviewSize(t *testing.T) {
	tests := []struct {
		in   image.Point
		max  int
		want image.Point
	}{
		{image.Pt(3840, 2160), 1280, image.Pt(1280, 720)},
		{image.Pt(1000, 2000), 500, image.Pt(250, 500)},
		{image.Pt(100, 50), 1280, image.Pt(100, 50)},
		{image.Pt(100, 50), 0, image.Pt(100, 50)},
	}
	for _, tt := range tests {
		if got := PreviewSize(tt.in, tt.max); got != tt.want {
			t.Errorf("PreviewSize(%v, %d) = %v, want %v", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestPreview(t *testing.T) {
	src := testImage(64, 32)
	got := Preview(src, 16)
	if sz := got.Bounds().Size(); sz != image.Pt(16, 8) {
		t.Errorf("Preview() size = %v, want 16x8", sz)
	}
	if same := Preview(src, 100); same != image.Image(src) {
		t.Error("Preview() should return small images unchanged")
	}
}

func TestEncodePNGIsDecodable(t *testing.T) {
	data := encodePNG(t, testImage(3, 3))
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("png.Decode() error = %v", err)
	}
}
