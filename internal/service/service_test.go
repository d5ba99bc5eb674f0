package service

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"scan-station/internal/domain"
)

// testLogger discards everything; service tests assert on behavior, not log
// output.
type testLogger struct{}

func (testLogger) Info(msg string, fields ...interface{})             {}
func (testLogger) Error(msg string, err error, fields ...interface{}) {}
func (testLogger) Debug(msg string, fields ...interface{})            {}
func (testLogger) Warn(msg string, fields ...interface{})             {}

// testImage renders a small gradient so rotation and crop results are
// distinguishable pixel by pixel.
func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(10 * x), G: uint8(10 * y), B: 128, A: 255})
		}
	}
	return img
}

func testPage(t *testing.T, w, h, dpi int) *domain.Page {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(w, h)); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return domain.NewPage(buf.Bytes(), w, h, dpi)
}

func decodeDims(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode image: %v", err)
	}
	return cfg.Width, cfg.Height
}
