package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"scan-station/internal/domain"
)

type fakeEngine struct {
	name string
	text string
	err  error

	calls int
}

func (e *fakeEngine) Name() string { return e.name }

func (e *fakeEngine) Recognize(ctx context.Context, image []byte, language string) (domain.OCRResult, error) {
	e.calls++
	if e.err != nil {
		return domain.OCRResult{}, e.err
	}
	return domain.OCRResult{Text: e.text, Confidence: 90}, nil
}

func TestRecognizePage_UsesOfflineByDefault(t *testing.T) {
	offline := &fakeEngine{name: "offline", text: "hello"}
	cloud := &fakeEngine{name: "cloud", text: "cloudy"}
	svc := NewOCRService(offline, cloud, testLogger{})
	page := testPage(t, 8, 8, 300)

	if err := svc.RecognizePage(context.Background(), page, "", false); err != nil {
		t.Fatalf("RecognizePage() error = %v", err)
	}
	if page.OCR == nil {
		t.Fatal("page.OCR not set")
	}
	if page.OCR.Text != "hello" || page.OCR.Engine != "offline" {
		t.Errorf("OCR = %+v, want offline result", page.OCR)
	}
	if page.OCR.Language != "eng" {
		t.Errorf("Language = %q, want default eng", page.OCR.Language)
	}
	if cloud.calls != 0 {
		t.Error("cloud engine called without preferCloud")
	}
}

func TestRecognizePage_PrefersCloudWhenAsked(t *testing.T) {
	offline := &fakeEngine{name: "offline", text: "hello"}
	cloud := &fakeEngine{name: "cloud", text: "cloudy"}
	svc := NewOCRService(offline, cloud, testLogger{})
	page := testPage(t, 8, 8, 300)

	if err := svc.RecognizePage(context.Background(), page, "deu", true); err != nil {
		t.Fatalf("RecognizePage() error = %v", err)
	}
	if page.OCR.Engine != "cloud" || page.OCR.Text != "cloudy" {
		t.Errorf("OCR = %+v, want cloud result", page.OCR)
	}
	if page.OCR.Language != "deu" {
		t.Errorf("Language = %q, want deu", page.OCR.Language)
	}
}

func TestRecognizePage_CloudFailureFallsBack(t *testing.T) {
	offline := &fakeEngine{name: "offline", text: "hello"}
	cloud := &fakeEngine{name: "cloud", err: errors.New("quota exceeded")}
	svc := NewOCRService(offline, cloud, testLogger{})
	page := testPage(t, 8, 8, 300)

	if err := svc.RecognizePage(context.Background(), page, "", true); err != nil {
		t.Fatalf("RecognizePage() error = %v", err)
	}
	if page.OCR.Engine != "offline" {
		t.Errorf("Engine = %q, want offline fallback", page.OCR.Engine)
	}
	if cloud.calls != 1 || offline.calls != 1 {
		t.Errorf("calls cloud=%d offline=%d, want 1 and 1", cloud.calls, offline.calls)
	}
}

func TestRecognizePage_AllEnginesFailing(t *testing.T) {
	offline := &fakeEngine{name: "offline", err: errors.New("no tesseract")}
	svc := NewOCRService(offline, nil, testLogger{})
	page := testPage(t, 8, 8, 300)

	if err := svc.RecognizePage(context.Background(), page, "", false); err == nil {
		t.Fatal("RecognizePage() did not surface engine failure")
	}
	if page.OCR != nil {
		t.Error("page.OCR set despite failure")
	}
}

const sampleHOCR = `<?xml version="1.0" encoding="UTF-8"?>
<html>
 <body>
  <div class='ocr_page' title='image "p.png"; bbox 0 0 100 100'>
   <span class='ocr_line' title='bbox 0 0 100 20'>
    <span class='ocrx_word' title='bbox 0 0 40 20; x_wconf 96'>Hello</span>
    <span class='ocrx_word' title='bbox 44 0 90 20; x_wconf 88'>world</span>
   </span>
   <span class='ocr_line' title='bbox 0 30 100 50'>
    <span class='ocrx_word' title='bbox 0 30 40 50; x_wconf 71'>again</span>
   </span>
  </div>
 </body>
</html>`

func TestMeanHOCRConfidence(t *testing.T) {
	got := meanHOCRConfidence(sampleHOCR)
	want := (96.0 + 88.0 + 71.0) / 3.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("meanHOCRConfidence() = %f, want %f", got, want)
	}
}

func TestMeanHOCRConfidence_NoWords(t *testing.T) {
	if got := meanHOCRConfidence("<html><body></body></html>"); got != 0 {
		t.Errorf("meanHOCRConfidence() = %f, want 0", got)
	}
}

func TestParseWconf(t *testing.T) {
	tests := []struct {
		title string
		want  float64
		ok    bool
	}{
		{"bbox 0 0 40 20; x_wconf 96", 96, true},
		{"x_wconf 12.5", 12.5, true},
		{"bbox 0 0 40 20", 0, false},
		{"x_wconf abc", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseWconf(tt.title)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseWconf(%q) = (%f, %t), want (%f, %t)", tt.title, got, ok, tt.want, tt.ok)
		}
	}
}

func TestEnsurePNG(t *testing.T) {
	page := testPage(t, 6, 6, 72)

	out, err := ensurePNG(page.Data)
	if err != nil {
		t.Fatalf("ensurePNG() error = %v", err)
	}
	if string(out) != string(page.Data) {
		t.Error("png input was transcoded")
	}

	if _, err := ensurePNG([]byte("not an image")); err == nil {
		t.Fatal("ensurePNG() accepted garbage")
	}
}
