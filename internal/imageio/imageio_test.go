package imageio

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for y := range 3 {
		for x := range 4 {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 80), B: 200, A: 255})
		}
	}
	return img
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		name string
		want Format
	}{
		{"out.png", PNG},
		{"OUT.PNG", PNG},
		{"dir/out.bmp", BMP},
		{"out.tif", TIFF},
		{"out.tiff", TIFF},
		{".png", PNG},
		{"bmp", BMP},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatFor(tt.name)
			if err != nil {
				t.Fatalf("FormatFor(%q) error = %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("FormatFor(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestFormatFor_Unknown(t *testing.T) {
	for _, name := range []string{"out.jpg", "out", ""} {
		if _, err := FormatFor(name); !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("FormatFor(%q) error = %v, want ErrUnknownFormat", name, err)
		}
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	src := testImage()
	decoders := map[Format]func(*bytes.Reader) (image.Image, error){
		PNG:  func(r *bytes.Reader) (image.Image, error) { return png.Decode(r) },
		BMP:  func(r *bytes.Reader) (image.Image, error) { return bmp.Decode(r) },
		TIFF: func(r *bytes.Reader) (image.Image, error) { return tiff.Decode(r) },
	}

	for f, decode := range decoders {
		t.Run(f.String(), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, src, f); err != nil {
				t.Fatalf("Encode(%v) error = %v", f, err)
			}
			got, err := decode(bytes.NewReader(buf.Bytes()))
			if err != nil {
				t.Fatalf("decode(%v) error = %v", f, err)
			}
			if got.Bounds() != src.Bounds() {
				t.Fatalf("bounds = %v, want %v", got.Bounds(), src.Bounds())
			}
			for y := range 3 {
				for x := range 4 {
					r1, g1, b1, _ := got.At(x, y).RGBA()
					r2, g2, b2, _ := src.At(x, y).RGBA()
					if r1 != r2 || g1 != g2 || b1 != b2 {
						t.Errorf("pixel (%d,%d) = %v, want %v", x, y, got.At(x, y), src.At(x, y))
					}
				}
			}
		})
	}
}

func TestEncode_None(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, testImage(), None); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Encode(None) error = %v, want ErrUnknownFormat", err)
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	if err := Save(testImage(), path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("DecodeConfig() error = %v", err)
	}
	if cfg.Width != 4 || cfg.Height != 3 {
		t.Errorf("saved size = %dx%d, want 4x3", cfg.Width, cfg.Height)
	}
}
