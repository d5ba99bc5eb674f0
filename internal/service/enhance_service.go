package service

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"

	"scan-station/internal/domain"
)

const thumbnailMaxEdge = 256

// EnhanceService runs basic in-memory image cleanup on captured pages.
// Enhanced pages are re-encoded as PNG.
type EnhanceService struct {
	logger domain.Logger
}

// NewEnhanceService creates an enhancement service.
func NewEnhanceService(logger domain.Logger) *EnhanceService {
	return &EnhanceService{logger: logger}
}

// DecodePage decodes a page's raw bytes (BMP off the scanner, PNG after
// enhancement).
func DecodePage(p *domain.Page) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(p.Data))
	if err != nil {
		return nil, fmt.Errorf("decode page image: %w", err)
	}
	return img, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// ApplyRotation bakes the page's logical rotation into its pixels and resets
// the rotation to 0.
func (s *EnhanceService) ApplyRotation(p *domain.Page) error {
	if p.Rotation == 0 {
		return nil
	}
	img, err := DecodePage(p)
	if err != nil {
		return err
	}
	rotated := rotateImage(img, p.Rotation)
	data, err := encodePNG(rotated)
	if err != nil {
		return err
	}
	p.Data = data
	p.Rotation = 0
	b := rotated.Bounds()
	p.Width, p.Height = b.Dx(), b.Dy()
	return nil
}

// ApplyCrop crops the page to its crop bounds and clears them.
func (s *EnhanceService) ApplyCrop(p *domain.Page) error {
	if p.Crop == nil {
		return nil
	}
	img, err := DecodePage(p)
	if err != nil {
		return err
	}
	r := image.Rect(p.Crop.X, p.Crop.Y, p.Crop.X+p.Crop.Width, p.Crop.Y+p.Crop.Height)
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return fmt.Errorf("crop bounds outside image")
	}
	cropped := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	xdraw.Draw(cropped, cropped.Bounds(), img, r.Min, xdraw.Src)
	data, err := encodePNG(cropped)
	if err != nil {
		return err
	}
	p.Data = data
	p.Crop = nil
	p.Width, p.Height = r.Dx(), r.Dy()
	return nil
}

// AutoEnhance runs the default cleanup pass: grayscale conversion plus a
// mild contrast stretch. Marks the page enhanced.
func (s *EnhanceService) AutoEnhance(p *domain.Page) error {
	img, err := DecodePage(p)
	if err != nil {
		return err
	}
	enhanced := stretchContrast(toGrayscale(img))
	data, err := encodePNG(enhanced)
	if err != nil {
		return err
	}
	p.Data = data
	p.Enhanced = true
	return nil
}

// Thumbnail renders and stores a small preview of the page.
func (s *EnhanceService) Thumbnail(p *domain.Page) error {
	img, err := DecodePage(p)
	if err != nil {
		return err
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return fmt.Errorf("empty image")
	}
	scale := float64(thumbnailMaxEdge) / float64(max(w, h))
	if scale > 1 {
		scale = 1
	}
	tw, th := int(float64(w)*scale), int(float64(h)*scale)
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}
	thumb := image.NewRGBA(image.Rect(0, 0, tw, th))
	xdraw.ApproxBiLinear.Scale(thumb, thumb.Bounds(), img, b, xdraw.Src, nil)
	data, err := encodePNG(thumb)
	if err != nil {
		return err
	}
	p.Thumbnail = data
	return nil
}

func rotateImage(img image.Image, degrees int) image.Image {
	d := ((degrees % 360) + 360) % 360
	if d == 0 {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	var out *image.RGBA
	if d == 180 {
		out = image.NewRGBA(image.Rect(0, 0, w, h))
	} else {
		out = image.NewRGBA(image.Rect(0, 0, h, w))
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.At(b.Min.X+x, b.Min.Y+y)
			switch d {
			case 90:
				out.Set(h-1-y, x, c)
			case 180:
				out.Set(w-1-x, h-1-y, c)
			case 270:
				out.Set(y, w-1-x, c)
			}
		}
	}
	return out
}

func toGrayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(out, out.Bounds(), img, b.Min, xdraw.Src)
	return out
}

// stretchContrast maps the darkest pixel to 0 and the brightest to 255.
func stretchContrast(img *image.Gray) *image.Gray {
	lo, hi := uint8(255), uint8(0)
	for _, v := range img.Pix {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi <= lo {
		return img
	}
	span := int(hi) - int(lo)
	out := image.NewGray(img.Bounds())
	for i, v := range img.Pix {
		out.Pix[i] = uint8((int(v) - int(lo)) * 255 / span)
	}
	return out
}

// Threshold converts the page to pure black and white at the given cutoff
// (0-255).
func (s *EnhanceService) Threshold(p *domain.Page, cutoff uint8) error {
	img, err := DecodePage(p)
	if err != nil {
		return err
	}
	gray := toGrayscale(img)
	for i, v := range gray.Pix {
		if v >= cutoff {
			gray.Pix[i] = 255
		} else {
			gray.Pix[i] = 0
		}
	}
	data, err := encodePNG(gray)
	if err != nil {
		return err
	}
	p.Data = data
	p.Enhanced = true
	return nil
}

// AdjustBrightness shifts every channel by delta (-255..255).
func (s *EnhanceService) AdjustBrightness(p *domain.Page, delta int) error {
	img, err := DecodePage(p)
	if err != nil {
		return err
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			out.Set(x-b.Min.X, y-b.Min.Y, color.RGBA{
				R: clampByte(int(r>>8) + delta),
				G: clampByte(int(g>>8) + delta),
				B: clampByte(int(bl>>8) + delta),
				A: uint8(a >> 8),
			})
		}
	}
	data, err := encodePNG(out)
	if err != nil {
		return err
	}
	p.Data = data
	p.Enhanced = true
	return nil
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
