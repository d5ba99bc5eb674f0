package scan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	_ "golang.org/x/image/bmp"

	"scan-station/internal/domain"
	"scan-station/internal/wia"
)

// feederAdvanceDelay is the fixed wait between feeder transfers, covering
// the paper advance latency of slow ADFs.
const feederAdvanceDelay = 500 * time.Millisecond

// SessionDriver executes scans against one device at a time. It owns no
// shared state between calls; each call opens and closes its own driver
// session.
type SessionDriver struct {
	driver wia.Driver
	logger domain.Logger

	// advanceDelay is overridable so tests do not sleep.
	advanceDelay time.Duration
}

// NewSessionDriver creates a scan session driver.
func NewSessionDriver(driver wia.Driver, logger domain.Logger) *SessionDriver {
	return &SessionDriver{
		driver:       driver,
		logger:       logger,
		advanceDelay: feederAdvanceDelay,
	}
}

// ResolveColorMode maps a color mode to the WIA (intent, data type) pair.
func ResolveColorMode(mode domain.ColorMode) (intent, dataType int32) {
	switch mode {
	case domain.ColorModeGrayscale:
		return wia.IntentGrayscale, wia.DataGrayscale
	case domain.ColorModeBlackAndWhite:
		return wia.IntentText, wia.DataThreshold
	default:
		return wia.IntentColor, wia.DataColor
	}
}

// ScanSingle performs exactly one transfer and returns one page numbered 1.
// The source from settings is used as-is.
func (s *SessionDriver) ScanSingle(ctx context.Context, deviceID string, settings domain.ScanSettings, sink domain.ProgressSink) (*domain.Page, error) {
	if sink == nil {
		sink = domain.NopProgress
	}
	sess, err := s.connect(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	total := 1
	sink.Report(domain.ScanProgress{CurrentPage: 1, TotalPages: &total, Percent: 0, Status: "preparing"})

	s.selectSource(sess, settings.Source, settings.Duplex)
	s.configure(sess, settings)

	sink.Report(domain.ScanProgress{CurrentPage: 1, TotalPages: &total, Percent: 50, Status: "scanning page 1"})

	data, err := sess.Transfer(ctx, wia.FormatBMP)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("transfer failed: %w", err)
	}

	page := s.buildPage(data, settings)
	page.PageNumber = 1

	sink.Report(domain.ScanProgress{CurrentPage: 1, TotalPages: &total, Percent: 100, Status: "page 1 scanned"})
	return page, nil
}

// ScanMany loops feeder transfers until the feeder reports empty or the
// context is cancelled, returning all captured pages numbered 1..N in
// capture order. The feeder page count is not known in advance, so every
// progress snapshot carries an unknown total. Cancellation is cooperative:
// it is observed once per iteration and returns the pages captured so far.
func (s *SessionDriver) ScanMany(ctx context.Context, deviceID string, settings domain.ScanSettings, sink domain.ProgressSink) ([]*domain.Page, error) {
	if sink == nil {
		sink = domain.NopProgress
	}
	sess, err := s.connect(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	// Multi-page capture only makes sense from a feeder.
	source := settings.Source
	if source == domain.SourceAuto || source == domain.SourceFlatbed {
		if settings.Duplex {
			source = domain.SourceDuplex
		} else {
			source = domain.SourceFeeder
		}
	}
	s.selectSource(sess, source, settings.Duplex)

	var pages []*domain.Page
	for {
		if ctx.Err() != nil {
			s.logger.Info("scan cancelled", "device", deviceID, "pages_captured", len(pages))
			return pages, nil
		}
		if status, ok := readUint32(sess, wia.PropHandlingStatus); ok && status&wia.StatusFeedReady == 0 {
			break
		}

		s.configure(sess, settings)
		n := len(pages) + 1
		sink.Report(domain.ScanProgress{CurrentPage: n, Percent: 0, Status: fmt.Sprintf("scanning page %d", n)})

		data, err := sess.Transfer(ctx, wia.FormatBMP)
		if err != nil {
			if errors.Is(err, wia.ErrNoMoreItems) {
				break
			}
			if ctx.Err() != nil {
				return pages, nil
			}
			// Abort the loop but keep what was captured.
			return pages, fmt.Errorf("transfer failed on page %d: %w", n, err)
		}

		page := s.buildPage(data, settings)
		page.PageNumber = n
		pages = append(pages, page)
		sink.Report(domain.ScanProgress{CurrentPage: n, Percent: 100, Status: fmt.Sprintf("page %d scanned", n)})

		if !s.waitAdvance(ctx) {
			return pages, nil
		}
	}
	return pages, nil
}

// connect resolves the device id against the live hardware state.
func (s *SessionDriver) connect(ctx context.Context, deviceID string) (wia.Session, error) {
	sess, err := s.driver.Connect(ctx, deviceID)
	if err != nil {
		switch {
		case errors.Is(err, wia.ErrUnknownDevice):
			return nil, fmt.Errorf("%w: %s", domain.ErrDeviceNotFound, deviceID)
		case errors.Is(err, wia.ErrUnavailable):
			return nil, fmt.Errorf("%w: %v", domain.ErrHardwareUnavailable, err)
		default:
			return nil, err
		}
	}
	return sess, nil
}

// selectSource writes the document-handling-select property. Some devices
// reject the write; the scan proceeds with whatever source the device has
// configured.
func (s *SessionDriver) selectSource(sess wia.Session, source domain.ScanSource, duplex bool) {
	var sel uint32
	switch source {
	case domain.SourceFlatbed:
		sel = wia.SelectFlatbed
	case domain.SourceFeeder:
		sel = wia.SelectFeeder
		if duplex {
			sel |= wia.SelectDuplex
		}
	case domain.SourceDuplex:
		sel = wia.SelectFeeder | wia.SelectDuplex
	case domain.SourceFeederFrontOnly:
		sel = wia.SelectFeeder | wia.SelectFrontOnly
	case domain.SourceFeederBackOnly:
		sel = wia.SelectFeeder | wia.SelectBackOnly
	case domain.SourceFilm:
		sel = wia.SelectFilm
	default:
		// Auto: leave the device's current selection alone.
		return
	}
	s.writeProp(sess, wia.PropHandlingSelect, wia.Int32(int32(sel)))
}

// configure applies scan settings to the device item. Every write is
// best-effort; the driver does not require the device to honor each
// property.
func (s *SessionDriver) configure(sess wia.Session, settings domain.ScanSettings) {
	dpi := int32(settings.Resolution)
	s.writeProp(sess, wia.PropXRes, wia.Int32(dpi))
	s.writeProp(sess, wia.PropYRes, wia.Int32(dpi))

	intent, dataType := ResolveColorMode(settings.ColorMode)
	s.writeProp(sess, wia.PropCurIntent, wia.Int32(intent))
	s.writeProp(sess, wia.PropDataType, wia.Int32(dataType))

	// Zero means unset; skip the write rather than forcing an explicit
	// zero offset.
	if settings.Brightness != 0 {
		s.writeProp(sess, wia.PropBrightness, wia.Int32(int32(settings.Brightness)))
	}
	if settings.Contrast != 0 {
		s.writeProp(sess, wia.PropContrast, wia.Int32(int32(settings.Contrast)))
	}

	if w, h, ok := settings.PaperSize.Dimensions(); ok {
		s.writeProp(sess, wia.PropXPos, wia.Int32(0))
		s.writeProp(sess, wia.PropYPos, wia.Int32(0))
		s.writeProp(sess, wia.PropXExtent, wia.Int32(int32(w*float64(settings.Resolution))))
		s.writeProp(sess, wia.PropYExtent, wia.Int32(int32(h*float64(settings.Resolution))))
	}
}

func (s *SessionDriver) writeProp(sess wia.Session, id wia.PropertyID, v wia.PropertyValue) {
	if err := sess.WriteProperty(id, v); err != nil {
		s.logger.Debug("property write rejected", "property", uint32(id), "reason", err)
	}
}

func (s *SessionDriver) buildPage(data []byte, settings domain.ScanSettings) *domain.Page {
	width, height := 0, 0
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		width, height = cfg.Width, cfg.Height
	} else {
		s.logger.Warn("could not decode transferred image header", "error", err)
	}
	return domain.NewPage(data, width, height, settings.Resolution)
}

// waitAdvance sleeps for the feeder advance latency. Returns false when the
// context was cancelled during the wait.
func (s *SessionDriver) waitAdvance(ctx context.Context) bool {
	if s.advanceDelay <= 0 {
		return true
	}
	t := time.NewTimer(s.advanceDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
