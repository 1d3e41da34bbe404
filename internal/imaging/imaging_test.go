package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"
)

func createTestJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 120, G: 60, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encoding test JPEG: %v", err)
	}
	return buf.Bytes()
}

func createTestPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 30, G: 60, B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test PNG: %v", err)
	}
	return buf.Bytes()
}

func decodeDimensions(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding processed cover: %v", err)
	}
	return cfg.Width, cfg.Height
}

func TestProcessCoverJPEG(t *testing.T) {
	data := createTestJPEG(t, 400, 300)

	cover, err := ProcessCover(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ProcessCover: %v", err)
	}
	if cover.MIME != "image/jpeg" {
		t.Errorf("MIME = %q, want image/jpeg", cover.MIME)
	}
	if len(cover.Data) == 0 {
		t.Error("expected cover data")
	}
}

func TestProcessCoverPNGConvertedToJPEG(t *testing.T) {
	data := createTestPNG(t, 400, 300)

	cover, err := ProcessCover(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ProcessCover: %v", err)
	}
	if cover.MIME != "image/jpeg" {
		t.Errorf("MIME = %q, want image/jpeg", cover.MIME)
	}
	w, h := decodeDimensions(t, cover.Data)
	if w != 400 || h != 300 {
		t.Errorf("dimensions = %dx%d, want 400x300", w, h)
	}
}

func TestProcessCoverDownscale(t *testing.T) {
	data := createTestJPEG(t, 1200, 1800)

	cover, err := ProcessCover(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ProcessCover: %v", err)
	}
	w, h := decodeDimensions(t, cover.Data)
	if h != MaxDimension {
		t.Errorf("height = %d, want %d", h, MaxDimension)
	}
	if w != 400 {
		t.Errorf("width = %d, want 400 (aspect ratio preserved)", w)
	}
}

func TestProcessCoverSmallImageNotUpscaled(t *testing.T) {
	data := createTestJPEG(t, 200, 150)

	cover, err := ProcessCover(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ProcessCover: %v", err)
	}
	w, h := decodeDimensions(t, cover.Data)
	if w != 200 || h != 150 {
		t.Errorf("dimensions = %dx%d, want 200x150 unchanged", w, h)
	}
}

func TestProcessCoverInvalidData(t *testing.T) {
	_, err := ProcessCover(bytes.NewReader([]byte("not an image at all")))
	if err == nil {
		t.Fatal("expected error for invalid data")
	}
}

func TestProcessCoverGIFRejected(t *testing.T) {
	img := image.NewPaletted(image.Rect(0, 0, 10, 10), color.Palette{color.White, color.Black})
	var buf bytes.Buffer
	if err := gif.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encoding test GIF: %v", err)
	}

	_, err := ProcessCover(bytes.NewReader(buf.Bytes()))
	if err == nil {
		t.Fatal("expected error for GIF input")
	}
}
