package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/vertexai/genai"
	"github.com/otiai10/gosseract/v2"
	"golang.org/x/net/html"

	"scan-station/internal/domain"
)

// OCREngine recognizes text on a single page image.
type OCREngine interface {
	Name() string
	Recognize(ctx context.Context, image []byte, language string) (domain.OCRResult, error)
}

// OCRService routes recognition to the configured engines and writes results
// back onto pages. The offline engine is always available; the cloud engine
// is optional and preferred when configured.
type OCRService struct {
	offline OCREngine
	cloud   OCREngine
	logger  domain.Logger
}

// NewOCRService creates the OCR router. cloud may be nil.
func NewOCRService(offline, cloud OCREngine, logger domain.Logger) *OCRService {
	return &OCRService{offline: offline, cloud: cloud, logger: logger}
}

// RecognizePage runs OCR on the page and stores the result on it.
// preferCloud selects the cloud engine when one is configured; on cloud
// failure the offline engine is tried before giving up.
func (s *OCRService) RecognizePage(ctx context.Context, page *domain.Page, language string, preferCloud bool) error {
	if language == "" {
		language = "eng"
	}
	engine := s.offline
	if preferCloud && s.cloud != nil {
		engine = s.cloud
	}

	result, err := engine.Recognize(ctx, page.Data, language)
	if err != nil && engine != s.offline && s.offline != nil {
		s.logger.Warn("cloud OCR failed, falling back to offline engine", "error", err)
		engine = s.offline
		result, err = engine.Recognize(ctx, page.Data, language)
	}
	if err != nil {
		return fmt.Errorf("ocr failed: %w", err)
	}

	result.Engine = engine.Name()
	result.Language = language
	result.ProcessedAt = time.Now().UTC()
	page.OCR = &result
	return nil
}

// TesseractEngine is the offline OCR engine backed by gosseract. A fresh
// client is created per call; gosseract clients are not goroutine safe.
type TesseractEngine struct {
	clientFactory func() *gosseract.Client
}

// NewTesseractEngine creates the Tesseract engine.
func NewTesseractEngine() *TesseractEngine {
	return &TesseractEngine{clientFactory: gosseract.NewClient}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

// Recognize runs Tesseract over the image and derives a mean word
// confidence from the hOCR output.
func (e *TesseractEngine) Recognize(ctx context.Context, image []byte, language string) (domain.OCRResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.OCRResult{}, err
	}
	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(image); err != nil {
		return domain.OCRResult{}, fmt.Errorf("set image: %w", err)
	}
	if err := c.SetLanguage(language); err != nil {
		return domain.OCRResult{}, fmt.Errorf("set language %q: %w", language, err)
	}

	text, err := c.Text()
	if err != nil {
		return domain.OCRResult{}, fmt.Errorf("recognize text: %w", err)
	}

	confidence := 0.0
	if hocr, err := c.HOCRText(); err == nil {
		confidence = meanHOCRConfidence(hocr)
	}

	return domain.OCRResult{
		Text:       strings.TrimSpace(text),
		Confidence: confidence,
	}, nil
}

// meanHOCRConfidence averages the x_wconf values of ocrx_word spans in an
// hOCR document.
func meanHOCRConfidence(hocr string) float64 {
	doc, err := html.Parse(strings.NewReader(hocr))
	if err != nil {
		return 0
	}
	var sum float64
	var count int
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			var class, title string
			for _, a := range n.Attr {
				switch a.Key {
				case "class":
					class = a.Val
				case "title":
					title = a.Val
				}
			}
			if strings.Contains(class, "ocrx_word") {
				if conf, ok := parseWconf(title); ok {
					sum += conf
					count++
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func parseWconf(title string) (float64, bool) {
	for _, part := range strings.Split(title, ";") {
		part = strings.TrimSpace(part)
		if rest, ok := strings.CutPrefix(part, "x_wconf "); ok {
			v, err := strconv.ParseFloat(strings.TrimSpace(rest), 64)
			if err != nil {
				return 0, false
			}
			return v, true
		}
	}
	return 0, false
}

const cloudOCRPrompt = "Transcribe all text visible in this scanned page. " +
	"Return only the transcribed text, preserving line breaks. " +
	"Do not describe the image or add commentary."

// VertexEngine is the cloud OCR engine backed by Vertex AI Gemini
// multimodal models.
type VertexEngine struct {
	client *genai.Client
	model  string
}

// NewVertexEngine creates the cloud engine. Returns an error when the Vertex
// client cannot be constructed (missing credentials, bad project).
func NewVertexEngine(ctx context.Context, projectID, location string) (*VertexEngine, error) {
	client, err := genai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex ai client: %w", err)
	}
	return &VertexEngine{client: client, model: "gemini-2.0-flash"}, nil
}

func (e *VertexEngine) Name() string { return "vertex" }

// Recognize sends the page image to Gemini with a transcription prompt.
// BMP captures are transcoded to PNG first; the API does not accept BMP.
func (e *VertexEngine) Recognize(ctx context.Context, image []byte, language string) (domain.OCRResult, error) {
	png, err := ensurePNG(image)
	if err != nil {
		return domain.OCRResult{}, err
	}

	model := e.client.GenerativeModel(e.model)
	model.SetTemperature(0)

	prompt := cloudOCRPrompt
	if language != "" {
		prompt += " The document language is " + language + "."
	}

	resp, err := model.GenerateContent(ctx,
		genai.ImageData("png", png),
		genai.Text(prompt),
	)
	if err != nil {
		return domain.OCRResult{}, fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return domain.OCRResult{}, fmt.Errorf("empty response from model")
	}
	txt, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return domain.OCRResult{}, fmt.Errorf("unexpected response part type")
	}
	return domain.OCRResult{Text: strings.TrimSpace(string(txt))}, nil
}

// ensurePNG passes PNG data through untouched and transcodes anything else.
func ensurePNG(data []byte) ([]byte, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if format == "png" {
		return data, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return encodePNG(img)
}
