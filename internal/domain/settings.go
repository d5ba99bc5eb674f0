package domain

// ColorMode selects the pixel format requested from the scanner.
type ColorMode string

const (
	ColorModeColor         ColorMode = "color"
	ColorModeGrayscale     ColorMode = "grayscale"
	ColorModeBlackAndWhite ColorMode = "black_and_white"
)

// PaperSize names a fixed scan area. Custom leaves the area unconstrained.
type PaperSize string

const (
	PaperSizeLetter PaperSize = "letter"
	PaperSizeLegal  PaperSize = "legal"
	PaperSizeA3     PaperSize = "a3"
	PaperSizeA4     PaperSize = "a4"
	PaperSizeA5     PaperSize = "a5"
	PaperSizeB4     PaperSize = "b4"
	PaperSizeB5     PaperSize = "b5"
	PaperSizeCustom PaperSize = "custom"
)

var paperDimensions = map[PaperSize][2]float64{
	PaperSizeLetter: {8.5, 11.0},
	PaperSizeLegal:  {8.5, 14.0},
	PaperSizeA3:     {11.69, 16.54},
	PaperSizeA4:     {8.27, 11.69},
	PaperSizeA5:     {5.83, 8.27},
	PaperSizeB4:     {9.84, 13.90},
	PaperSizeB5:     {6.93, 9.84},
}

// Dimensions returns the paper width and height in inches. ok is false for
// PaperSizeCustom and unrecognized sizes, which carry no fixed geometry.
func (p PaperSize) Dimensions() (width, height float64, ok bool) {
	dims, found := paperDimensions[p]
	if !found {
		return 0, 0, false
	}
	return dims[0], dims[1], true
}

// ScanSettings captures every parameter of a scan request. Brightness and
// contrast default to 0 which means "unset": the session driver skips the
// property write entirely rather than writing an explicit zero offset.
type ScanSettings struct {
	Resolution int        `json:"resolution"`
	ColorMode  ColorMode  `json:"color_mode"`
	PaperSize  PaperSize  `json:"paper_size"`
	Source     ScanSource `json:"source"`
	Duplex     bool       `json:"duplex"`

	Brightness int `json:"brightness"`
	Contrast   int `json:"contrast"`

	// Downstream hints consumed by post-capture collaborators, never by the
	// scan driver itself.
	AutoCrop    bool   `json:"auto_crop"`
	AutoEnhance bool   `json:"auto_enhance"`
	AutoOCR     bool   `json:"auto_ocr"`
	OCRLanguage string `json:"ocr_language"`
}

// DefaultScanSettings returns the settings used when a request omits them.
func DefaultScanSettings() ScanSettings {
	return ScanSettings{
		Resolution:  300,
		ColorMode:   ColorModeColor,
		PaperSize:   PaperSizeLetter,
		Source:      SourceAuto,
		OCRLanguage: "eng",
	}
}

// Clone returns an independent copy of the settings.
func (s ScanSettings) Clone() ScanSettings {
	return s
}
