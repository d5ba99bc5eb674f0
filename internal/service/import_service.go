package service

import (
	"fmt"

	"github.com/gen2brain/go-fitz"

	"scan-station/internal/domain"
)

const importRenderDPI = 150

// ImportService turns an existing PDF into a scan document by rendering each
// PDF page to an image page.
type ImportService struct {
	logger domain.Logger
}

// NewImportService creates an import service.
func NewImportService(logger domain.Logger) *ImportService {
	return &ImportService{logger: logger}
}

// ImportPDF renders every page of the PDF into a new document.
func (s *ImportService) ImportPDF(pdfBytes []byte, name string) (*domain.Document, error) {
	fdoc, err := fitz.NewFromMemory(pdfBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidFile, err)
	}
	defer fdoc.Close()

	if name == "" {
		if title := fdoc.Metadata()["title"]; title != "" {
			name = title
		} else {
			name = "imported"
		}
	}

	doc := domain.NewDocument(name)
	numPages := fdoc.NumPage()
	for i := 0; i < numPages; i++ {
		img, err := fdoc.ImageDPI(i, importRenderDPI)
		if err != nil {
			return nil, fmt.Errorf("render pdf page %d: %w", i+1, err)
		}
		data, err := encodePNG(img)
		if err != nil {
			return nil, fmt.Errorf("encode pdf page %d: %w", i+1, err)
		}
		b := img.Bounds()
		page := domain.NewPage(data, b.Dx(), b.Dy(), importRenderDPI)
		doc.AppendPage(page)
	}

	s.logger.Info("pdf imported", "document", doc.ID, "pages", numPages)
	return doc, nil
}
