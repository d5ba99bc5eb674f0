// Package scan implements the capability prober and the scan session driver
// on top of the wia driver abstraction.
package scan

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"scan-station/internal/domain"
	"scan-station/internal/wia"
)

// candidateDPIs is the fixed ladder intersected with a driver-reported
// resolution range.
var candidateDPIs = []int{75, 100, 150, 200, 300, 600, 1200, 2400}

// fallbackDPIs is the resolution set assumed when probing fails entirely.
var fallbackDPIs = []int{75, 100, 150, 200, 300, 600}

const fallbackMaxDPI = 600

// Prober discovers devices and their capabilities. Every enumeration queries
// hardware state fresh; nothing is cached across calls.
type Prober struct {
	driver wia.Driver
	logger domain.Logger
}

// NewProber creates a capability prober.
func NewProber(driver wia.Driver, logger domain.Logger) *Prober {
	return &Prober{driver: driver, logger: logger}
}

// ListDevices enumerates connected scanners in hardware order. Per-device
// probing failures narrow that device to safe defaults and never abort the
// enumeration; only total driver-subsystem failure is an error.
func (p *Prober) ListDevices(ctx context.Context) ([]*domain.Device, error) {
	infos, err := p.driver.Enumerate(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrHardwareUnavailable, err)
	}

	// Devices are independent; probe them in parallel but keep enumeration
	// order.
	devices := make([]*domain.Device, len(infos))
	g, gctx := errgroup.WithContext(ctx)
	for i, info := range infos {
		i, info := i, info
		g.Go(func() error {
			devices[i] = p.probe(gctx, info)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return devices, nil
}

// GetDefaultDevice returns the first enumerated device, or nil when no
// scanner is connected.
func (p *Prober) GetDefaultDevice(ctx context.Context) (*domain.Device, error) {
	devices, err := p.ListDevices(ctx)
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, nil
	}
	return devices[0], nil
}

// probe builds a Device from the enumeration property bag plus a live
// connection. Any failure along the way degrades to the fallback defaults
// for this device only.
func (p *Prober) probe(ctx context.Context, info wia.DeviceInfo) *domain.Device {
	dev := &domain.Device{
		ID:               info.ID,
		Name:             info.Props.StringOr(wia.PropDeviceName, "Unknown Scanner"),
		Manufacturer:     info.Props.StringOr(wia.PropVendorDesc, "Unknown"),
		Class:            domain.DeviceClassFlatbed,
		SupportsColor:    true,
		MaxDPI:           fallbackMaxDPI,
		SupportedSources: []domain.ScanSource{domain.SourceFlatbed},
		SupportedDPIs:    append([]int(nil), fallbackDPIs...),
	}

	sess, err := p.driver.Connect(ctx, info.ID)
	if err != nil {
		p.logger.Debug("capability probe skipped, device not connectable", "device", info.ID, "reason", err)
		return dev
	}
	defer sess.Close()

	if caps, ok := readUint32(sess, wia.PropHandlingCapabilities); ok {
		p.applyCapabilities(dev, caps)
	}
	p.probeResolutions(sess, dev)
	p.probeColorSupport(sess, dev)
	return dev
}

// applyCapabilities decodes the document-handling capability mask into a
// device class and an ordered source set.
func (p *Prober) applyCapabilities(dev *domain.Device, caps uint32) {
	feeder := caps&wia.CapFeeder != 0
	flatbed := caps&wia.CapFlat != 0
	duplex := caps&wia.CapDuplex != 0
	film := caps&wia.CapFilm != 0

	dev.SupportsADF = feeder
	dev.SupportsDuplex = duplex

	switch {
	case feeder && flatbed:
		// Regardless of duplex.
		dev.Class = domain.DeviceClassMultifunction
	case feeder && duplex:
		dev.Class = domain.DeviceClassDuplexADF
	case feeder:
		dev.Class = domain.DeviceClassADF
	case flatbed:
		dev.Class = domain.DeviceClassFlatbed
	default:
		dev.Class = domain.DeviceClassUnknown
	}

	var sources []domain.ScanSource
	if flatbed {
		sources = append(sources, domain.SourceFlatbed)
	}
	if feeder && duplex {
		sources = append(sources,
			domain.SourceDuplex,
			domain.SourceFeeder,
			domain.SourceFeederFrontOnly,
			domain.SourceFeederBackOnly,
		)
	} else if feeder {
		sources = append(sources, domain.SourceFeeder)
	}
	if film {
		sources = append(sources, domain.SourceFilm)
	}
	if len(sources) == 0 {
		sources = []domain.ScanSource{domain.SourceFlatbed}
	}
	dev.SupportedSources = sources
}

// probeResolutions discovers the supported DPI set: a discrete list is used
// verbatim, a range is intersected with the candidate ladder, and with
// neither the current value stands alone with MaxDPI floored at 600.
func (p *Prober) probeResolutions(sess wia.Session, dev *domain.Device) {
	attrs, ok := sess.ReadPropertyAttributes(wia.PropXRes)
	if ok {
		switch attrs.Kind {
		case wia.AttrList:
			if len(attrs.List) > 0 {
				dpis := make([]int, 0, len(attrs.List))
				maxDPI := 0
				for _, v := range attrs.List {
					dpis = append(dpis, int(v))
					if int(v) > maxDPI {
						maxDPI = int(v)
					}
				}
				dev.SupportedDPIs = dpis
				dev.MaxDPI = maxDPI
				return
			}
		case wia.AttrRange:
			var dpis []int
			for _, c := range candidateDPIs {
				if c >= int(attrs.Min) && c <= int(attrs.Max) {
					dpis = append(dpis, c)
				}
			}
			if len(dpis) > 0 {
				dev.SupportedDPIs = dpis
				dev.MaxDPI = int(attrs.Max)
				return
			}
		}
	}

	if cur, ok := readUint32(sess, wia.PropXRes); ok && cur > 0 {
		dev.SupportedDPIs = []int{int(cur)}
		dev.MaxDPI = int(cur)
		if dev.MaxDPI < fallbackMaxDPI {
			dev.MaxDPI = fallbackMaxDPI
		}
	}
}

func (p *Prober) probeColorSupport(sess wia.Session, dev *domain.Device) {
	attrs, ok := sess.ReadPropertyAttributes(wia.PropDataType)
	if !ok || attrs.Kind != wia.AttrList {
		return
	}
	dev.SupportsColor = false
	for _, v := range attrs.List {
		if v == wia.DataColor {
			dev.SupportsColor = true
			return
		}
	}
}

func readUint32(sess wia.Session, id wia.PropertyID) (uint32, bool) {
	v, ok := sess.ReadProperty(id)
	if !ok || v.Kind != wia.ValueInt {
		return 0, false
	}
	return uint32(v.Int), true
}
