package domain

import (
	"time"

	"github.com/google/uuid"
)

// CropBounds is a pixel-space rectangle relative to the page's upper-left
// corner.
type CropBounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// OCRResult is the recognized text for a page, written back by an OCR engine.
type OCRResult struct {
	Text        string    `json:"text"`
	Language    string    `json:"language,omitempty"`
	Confidence  float64   `json:"confidence,omitempty"`
	Engine      string    `json:"engine,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
}

// Page is a single captured image. It is owned exclusively by its parent
// Document; page numbers are reassigned by the document on every structural
// change.
type Page struct {
	ID string `json:"id"`

	// Data holds the raw encoded image bytes in the capture format (BMP off
	// the scanner, possibly re-encoded after enhancement).
	Data      []byte `json:"-"`
	Thumbnail []byte `json:"-"`

	PageNumber int         `json:"page_number"`
	Rotation   int         `json:"rotation"`
	Crop       *CropBounds `json:"crop,omitempty"`
	Enhanced   bool        `json:"enhanced"`
	OCR        *OCRResult  `json:"ocr,omitempty"`

	CapturedAt time.Time `json:"captured_at"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Resolution int       `json:"resolution"`
}

// NewPage creates a page with a fresh identity and capture timestamp.
func NewPage(data []byte, width, height, resolution int) *Page {
	return &Page{
		ID:         uuid.New().String(),
		Data:       data,
		CapturedAt: time.Now().UTC(),
		Width:      width,
		Height:     height,
		Resolution: resolution,
	}
}

// Rotate adds degrees to the page rotation, normalized to 0/90/180/270.
func (p *Page) Rotate(degrees int) {
	p.Rotation = ((p.Rotation+degrees)%360 + 360) % 360
}
