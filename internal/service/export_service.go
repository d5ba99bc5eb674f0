package service

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"image/png"

	"github.com/wudi/pdfkit/builder"
	"github.com/wudi/pdfkit/writer"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"scan-station/internal/domain"
)

// ExportFormat names a supported export encoding.
type ExportFormat string

const (
	ExportPDF  ExportFormat = "pdf"
	ExportPNG  ExportFormat = "png"
	ExportJPEG ExportFormat = "jpeg"
	ExportTIFF ExportFormat = "tiff"
	ExportBMP  ExportFormat = "bmp"
)

// ExportArtifact is one produced file.
type ExportArtifact struct {
	Filename string
	Data     []byte
}

// ExportService renders documents to their final formats. Export order is
// always the document's page order.
type ExportService struct {
	logger domain.Logger
}

// NewExportService creates an export service.
func NewExportService(logger domain.Logger) *ExportService {
	return &ExportService{logger: logger}
}

// Export renders the document. PDF yields a single artifact; image formats
// yield one artifact per page.
func (s *ExportService) Export(ctx context.Context, doc *domain.Document, format ExportFormat) ([]ExportArtifact, error) {
	if doc.PageCount() == 0 {
		return nil, fmt.Errorf("%w: document has no pages", domain.ErrInvalidFile)
	}
	switch format {
	case ExportPDF:
		data, err := s.exportPDF(ctx, doc)
		if err != nil {
			return nil, err
		}
		return []ExportArtifact{{Filename: doc.Name + ".pdf", Data: data}}, nil
	case ExportPNG, ExportJPEG, ExportTIFF, ExportBMP:
		return s.exportImages(doc, format)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// exportPDF draws each page image at its physical size: points = pixels /
// dpi * 72.
func (s *ExportService) exportPDF(ctx context.Context, doc *domain.Document) ([]byte, error) {
	b := builder.NewBuilder()
	for _, page := range doc.Pages {
		img, err := DecodePage(page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page.PageNumber, err)
		}
		if page.Rotation != 0 {
			img = rotateImage(img, page.Rotation)
		}
		pdfImg := builder.FromImage(img)

		dpi := float64(page.Resolution)
		if dpi <= 0 {
			dpi = 72
		}
		bounds := img.Bounds()
		wpt := float64(bounds.Dx()) / dpi * 72
		hpt := float64(bounds.Dy()) / dpi * 72

		b.NewPage(wpt, hpt).
			DrawImage(pdfImg, 0, 0, wpt, hpt, builder.ImageOptions{}).
			Finish()
	}

	built, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("build pdf: %w", err)
	}
	var buf bytes.Buffer
	w := (&writer.WriterBuilder{}).Build()
	if err := w.Write(ctx, built, &buf, writer.Config{Deterministic: true}); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *ExportService) exportImages(doc *domain.Document, format ExportFormat) ([]ExportArtifact, error) {
	artifacts := make([]ExportArtifact, 0, doc.PageCount())
	for _, page := range doc.Pages {
		img, err := DecodePage(page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page.PageNumber, err)
		}
		if page.Rotation != 0 {
			img = rotateImage(img, page.Rotation)
		}

		var buf bytes.Buffer
		switch format {
		case ExportPNG:
			err = png.Encode(&buf, img)
		case ExportJPEG:
			err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
		case ExportTIFF:
			err = tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate})
		case ExportBMP:
			err = bmp.Encode(&buf, img)
		}
		if err != nil {
			return nil, fmt.Errorf("encode page %d: %w", page.PageNumber, err)
		}
		artifacts = append(artifacts, ExportArtifact{
			Filename: fmt.Sprintf("%s-%03d.%s", doc.Name, page.PageNumber, format),
			Data:     buf.Bytes(),
		})
	}
	return artifacts, nil
}
