package scan

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"scan-station/internal/domain"
	"scan-station/internal/wia"
	"scan-station/internal/wia/simdriver"
)

func newTestSessionDriver(d wia.Driver) *SessionDriver {
	sd := NewSessionDriver(d, testLogger{})
	sd.advanceDelay = 0
	return sd
}

func TestResolveColorMode(t *testing.T) {
	tests := []struct {
		mode         domain.ColorMode
		wantIntent   int32
		wantDataType int32
	}{
		{domain.ColorModeColor, wia.IntentColor, wia.DataColor},
		{domain.ColorModeGrayscale, wia.IntentGrayscale, wia.DataGrayscale},
		{domain.ColorModeBlackAndWhite, wia.IntentText, wia.DataThreshold},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			intent, dataType := ResolveColorMode(tt.mode)
			if intent != tt.wantIntent || dataType != tt.wantDataType {
				t.Errorf("ResolveColorMode(%q) = (%d, %d), want (%d, %d)",
					tt.mode, intent, dataType, tt.wantIntent, tt.wantDataType)
			}
		})
	}
}

func TestScanSingle_ReturnsOnePage(t *testing.T) {
	sources := []domain.ScanSource{
		domain.SourceAuto,
		domain.SourceFlatbed,
		domain.SourceFeederFrontOnly,
	}
	for _, src := range sources {
		t.Run(string(src), func(t *testing.T) {
			driver := simdriver.New(simdriver.DeviceConfig{
				ID:           "dev-1",
				Capabilities: wia.CapFlat | wia.CapFeeder,
				FeederPages:  5,
			})
			sd := newTestSessionDriver(driver)

			settings := domain.DefaultScanSettings()
			settings.Source = src
			settings.PaperSize = domain.PaperSizeCustom

			page, err := sd.ScanSingle(context.Background(), "dev-1", settings, nil)
			if err != nil {
				t.Fatalf("ScanSingle() error = %v", err)
			}
			if page.PageNumber != 1 {
				t.Errorf("PageNumber = %d, want 1", page.PageNumber)
			}
			if len(page.Data) == 0 {
				t.Error("expected captured image bytes")
			}
			if page.Width == 0 || page.Height == 0 {
				t.Errorf("decoded dimensions = %dx%d, want non-zero", page.Width, page.Height)
			}
			if page.Resolution != settings.Resolution {
				t.Errorf("Resolution = %d, want %d", page.Resolution, settings.Resolution)
			}
		})
	}
}

func TestScanSingle_DeviceNotFound(t *testing.T) {
	sd := newTestSessionDriver(simdriver.New(simdriver.DeviceConfig{ID: "dev-1"}))

	_, err := sd.ScanSingle(context.Background(), "gone", domain.DefaultScanSettings(), nil)
	if !errors.Is(err, domain.ErrDeviceNotFound) {
		t.Fatalf("error = %v, want ErrDeviceNotFound", err)
	}
}

func TestScanSingle_ProgressIsMonotonic(t *testing.T) {
	driver := simdriver.New(simdriver.DeviceConfig{ID: "dev-1", Capabilities: wia.CapFlat})
	sd := newTestSessionDriver(driver)

	var snapshots []domain.ScanProgress
	sink := domain.ProgressFunc(func(p domain.ScanProgress) { snapshots = append(snapshots, p) })

	settings := domain.DefaultScanSettings()
	settings.PaperSize = domain.PaperSizeCustom
	if _, err := sd.ScanSingle(context.Background(), "dev-1", settings, sink); err != nil {
		t.Fatalf("ScanSingle() error = %v", err)
	}

	if len(snapshots) < 2 {
		t.Fatalf("expected at least 2 snapshots, got %d", len(snapshots))
	}
	last := -1
	for i, p := range snapshots {
		if p.Percent < last {
			t.Errorf("snapshot %d: percent %d decreased from %d", i, p.Percent, last)
		}
		last = p.Percent
		if p.TotalPages == nil || *p.TotalPages != 1 {
			t.Errorf("snapshot %d: total = %v, want 1", i, p.TotalPages)
		}
	}
	if snapshots[len(snapshots)-1].Percent != 100 {
		t.Errorf("final percent = %d, want 100", snapshots[len(snapshots)-1].Percent)
	}
}

func TestScanMany_CapturesUntilFeederEmpty(t *testing.T) {
	for _, k := range []int{0, 1, 4} {
		t.Run(fmt.Sprintf("%d pages loaded", k), func(t *testing.T) {
			driver := simdriver.New(simdriver.DeviceConfig{
				ID:           "dev-1",
				Capabilities: wia.CapFeeder | wia.CapFlat,
				FeederPages:  k,
			})
			sd := newTestSessionDriver(driver)

			settings := domain.DefaultScanSettings()
			settings.Source = domain.SourceAuto // substituted with feeder
			settings.PaperSize = domain.PaperSizeCustom

			pages, err := sd.ScanMany(context.Background(), "dev-1", settings, nil)
			if err != nil {
				t.Fatalf("ScanMany() error = %v", err)
			}
			if len(pages) != k {
				t.Fatalf("captured %d pages, want %d", len(pages), k)
			}
			for i, p := range pages {
				if p.PageNumber != i+1 {
					t.Errorf("page %d numbered %d, want %d", i, p.PageNumber, i+1)
				}
			}
		})
	}
}

func TestScanMany_ReportsUnknownTotal(t *testing.T) {
	driver := simdriver.New(simdriver.DeviceConfig{
		ID:           "dev-1",
		Capabilities: wia.CapFeeder,
		FeederPages:  2,
	})
	sd := newTestSessionDriver(driver)

	var snapshots []domain.ScanProgress
	sink := domain.ProgressFunc(func(p domain.ScanProgress) { snapshots = append(snapshots, p) })

	settings := domain.DefaultScanSettings()
	settings.PaperSize = domain.PaperSizeCustom
	if _, err := sd.ScanMany(context.Background(), "dev-1", settings, sink); err != nil {
		t.Fatalf("ScanMany() error = %v", err)
	}
	if len(snapshots) == 0 {
		t.Fatal("expected progress snapshots")
	}
	for i, p := range snapshots {
		if p.TotalPages != nil {
			t.Errorf("snapshot %d: total = %d, want unknown", i, *p.TotalPages)
		}
	}
}

func TestScanMany_Cancellation(t *testing.T) {
	driver := simdriver.New(simdriver.DeviceConfig{
		ID:           "dev-1",
		Capabilities: wia.CapFeeder,
		FeederPages:  10,
	})
	sd := newTestSessionDriver(driver)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancel after the second page finishes; the loop must observe it before
	// starting a third transfer.
	sink := domain.ProgressFunc(func(p domain.ScanProgress) {
		if p.CurrentPage == 2 && p.Percent == 100 {
			cancel()
		}
	})

	settings := domain.DefaultScanSettings()
	settings.PaperSize = domain.PaperSizeCustom
	pages, err := sd.ScanMany(ctx, "dev-1", settings, sink)
	if err != nil {
		t.Fatalf("ScanMany() error = %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("captured %d pages after cancellation, want 2", len(pages))
	}
	for i, p := range pages {
		if p.PageNumber != i+1 {
			t.Errorf("page %d numbered %d, want %d", i, p.PageNumber, i+1)
		}
	}
}

func TestScanMany_TransferFailureKeepsNothingHalfway(t *testing.T) {
	driver := simdriver.New(simdriver.DeviceConfig{
		ID:           "dev-1",
		Capabilities: wia.CapFeeder,
		FeederPages:  3,
		TransferErr:  errors.New("lamp failure"),
	})
	sd := newTestSessionDriver(driver)

	settings := domain.DefaultScanSettings()
	settings.PaperSize = domain.PaperSizeCustom
	pages, err := sd.ScanMany(context.Background(), "dev-1", settings, nil)
	if err == nil {
		t.Fatal("expected transfer error")
	}
	if len(pages) != 0 {
		t.Fatalf("captured %d pages, want 0", len(pages))
	}
}

// recordingSession asserts which properties the driver writes during
// configuration.
type recordingSession struct {
	writes map[wia.PropertyID]wia.PropertyValue
}

func newRecordingSession() *recordingSession {
	return &recordingSession{writes: make(map[wia.PropertyID]wia.PropertyValue)}
}

func (r *recordingSession) ReadProperty(id wia.PropertyID) (wia.PropertyValue, bool) {
	if id == wia.PropHandlingStatus {
		return wia.Int32(0), true // feeder never ready
	}
	return wia.PropertyValue{}, false
}

func (r *recordingSession) ReadPropertyAttributes(id wia.PropertyID) (wia.PropertyAttributes, bool) {
	return wia.PropertyAttributes{}, false
}

func (r *recordingSession) WriteProperty(id wia.PropertyID, v wia.PropertyValue) error {
	r.writes[id] = v
	return nil
}

func (r *recordingSession) Transfer(ctx context.Context, format wia.Format) ([]byte, error) {
	return nil, wia.ErrNoMoreItems
}

func (r *recordingSession) Close() error { return nil }

type recordingDriver struct {
	session *recordingSession
}

func (d *recordingDriver) Name() string { return "recording" }

func (d *recordingDriver) Enumerate(ctx context.Context) ([]wia.DeviceInfo, error) {
	return []wia.DeviceInfo{{ID: "dev-1"}}, nil
}

func (d *recordingDriver) Connect(ctx context.Context, deviceID string) (wia.Session, error) {
	return d.session, nil
}

func TestConfigure_PropertyMapping(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*domain.ScanSettings)
		wantSet  map[wia.PropertyID]int32
		wantSkip []wia.PropertyID
	}{
		{
			name:   "geometry from paper size and dpi",
			mutate: func(s *domain.ScanSettings) { s.PaperSize = domain.PaperSizeLetter; s.Resolution = 200 },
			wantSet: map[wia.PropertyID]int32{
				wia.PropXRes:    200,
				wia.PropYRes:    200,
				wia.PropXPos:    0,
				wia.PropYPos:    0,
				wia.PropXExtent: 1700, // 8.5in x 200dpi
				wia.PropYExtent: 2200, // 11in x 200dpi
			},
		},
		{
			name:     "custom paper size skips geometry",
			mutate:   func(s *domain.ScanSettings) { s.PaperSize = domain.PaperSizeCustom },
			wantSkip: []wia.PropertyID{wia.PropXExtent, wia.PropYExtent, wia.PropXPos, wia.PropYPos},
		},
		{
			// Zero offsets mean unset, not "write zero".
			name:     "zero brightness and contrast skipped",
			mutate:   func(s *domain.ScanSettings) {},
			wantSkip: []wia.PropertyID{wia.PropBrightness, wia.PropContrast},
		},
		{
			name:   "non-zero brightness and contrast written",
			mutate: func(s *domain.ScanSettings) { s.Brightness = -25; s.Contrast = 40 },
			wantSet: map[wia.PropertyID]int32{
				wia.PropBrightness: -25,
				wia.PropContrast:   40,
			},
		},
		{
			name:   "black and white intent pair",
			mutate: func(s *domain.ScanSettings) { s.ColorMode = domain.ColorModeBlackAndWhite },
			wantSet: map[wia.PropertyID]int32{
				wia.PropCurIntent: wia.IntentText,
				wia.PropDataType:  wia.DataThreshold,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := newRecordingSession()
			sd := newTestSessionDriver(&recordingDriver{session: sess})

			settings := domain.DefaultScanSettings()
			tt.mutate(&settings)
			sd.configure(sess, settings)

			for id, want := range tt.wantSet {
				got, ok := sess.writes[id]
				if !ok {
					t.Errorf("property %d not written", uint32(id))
					continue
				}
				if got.Int != want {
					t.Errorf("property %d = %d, want %d", uint32(id), got.Int, want)
				}
			}
			for _, id := range tt.wantSkip {
				if _, ok := sess.writes[id]; ok {
					t.Errorf("property %d written, want skipped", uint32(id))
				}
			}
		})
	}
}

func TestSelectSource_RejectedWriteDoesNotFail(t *testing.T) {
	driver := simdriver.New(simdriver.DeviceConfig{
		ID:           "dev-1",
		Capabilities: wia.CapFlat,
		RejectWrites: true,
	})
	sd := newTestSessionDriver(driver)

	settings := domain.DefaultScanSettings()
	settings.Source = domain.SourceFlatbed
	settings.PaperSize = domain.PaperSizeCustom

	// Every property write is rejected; the scan must still complete with
	// whatever the device has configured.
	page, err := sd.ScanSingle(context.Background(), "dev-1", settings, nil)
	if err != nil {
		t.Fatalf("ScanSingle() error = %v", err)
	}
	if page.PageNumber != 1 {
		t.Errorf("PageNumber = %d, want 1", page.PageNumber)
	}
}
