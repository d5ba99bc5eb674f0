// Package simdriver is an in-memory scanner driver. It backs the server in
// demo deployments (DRIVER=sim) and doubles as the hardware stand-in for
// scan-core tests: capability masks, resolution constraints, feeder depth
// and failure modes are all configurable per device.
package simdriver

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/bmp"

	"scan-station/internal/wia"
)

const (
	defaultDPI    = 300
	defaultWidth  = 64
	defaultHeight = 96
)

// DeviceConfig describes one simulated scanner.
type DeviceConfig struct {
	ID           string
	Name         string
	Manufacturer string

	// Capabilities is the document-handling capability mask (wia.Cap* bits).
	Capabilities uint32

	// SupportedDPIs reports a discrete resolution list. When nil and
	// DPIRange is set, a continuous range is reported instead. When both
	// are empty the driver reports no resolution constraint.
	SupportedDPIs []int32
	DPIRange      *wia.PropertyAttributes
	DefaultDPI    int32

	// FeederPages is how many sheets are loaded in the feeder.
	FeederPages int

	// Failure injection.
	FailConnect    bool
	FailProperties bool
	RejectWrites   bool
	TransferErr    error
}

// Driver is a simulated wia.Driver.
type Driver struct {
	mu          sync.Mutex
	devices     []*DeviceConfig
	watchers    []chan wia.ConnectEvent
	unavailable bool
}

// New creates a simulated driver with the given devices.
func New(devices ...DeviceConfig) *Driver {
	d := &Driver{}
	for i := range devices {
		cfg := devices[i]
		if cfg.DefaultDPI == 0 {
			cfg.DefaultDPI = defaultDPI
		}
		d.devices = append(d.devices, &cfg)
	}
	return d
}

// NewDefault creates a driver with one duplex-ADF multifunction scanner,
// the configuration used when the server runs without hardware.
func NewDefault() *Driver {
	return New(DeviceConfig{
		ID:            "sim-0001",
		Name:          "SimScan 9000",
		Manufacturer:  "ScanStation",
		Capabilities:  wia.CapFeeder | wia.CapFlat | wia.CapDuplex,
		SupportedDPIs: []int32{75, 100, 150, 200, 300, 600, 1200},
		FeederPages:   3,
	})
}

// SetUnavailable toggles total driver-subsystem failure.
func (d *Driver) SetUnavailable(v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.unavailable = v
}

func (d *Driver) Name() string { return "sim" }

// Enumerate lists the simulated devices.
func (d *Driver) Enumerate(ctx context.Context) ([]wia.DeviceInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.unavailable {
		return nil, wia.ErrUnavailable
	}
	infos := make([]wia.DeviceInfo, 0, len(d.devices))
	for _, dev := range d.devices {
		props := wia.PropertyBag{
			wia.PropDeviceID: wia.String(dev.ID),
		}
		if dev.Name != "" {
			props[wia.PropDeviceName] = wia.String(dev.Name)
		}
		if dev.Manufacturer != "" {
			props[wia.PropVendorDesc] = wia.String(dev.Manufacturer)
		}
		infos = append(infos, wia.DeviceInfo{ID: dev.ID, Props: props})
	}
	return infos, nil
}

// Connect opens a session against a simulated device.
func (d *Driver) Connect(ctx context.Context, deviceID string) (wia.Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.unavailable {
		return nil, wia.ErrUnavailable
	}
	for _, dev := range d.devices {
		if dev.ID == deviceID {
			if dev.FailConnect {
				return nil, fmt.Errorf("sim: device %s busy: %w", deviceID, wia.ErrUnavailable)
			}
			return newSession(dev), nil
		}
	}
	return nil, fmt.Errorf("sim: %w: %s", wia.ErrUnknownDevice, deviceID)
}

// AddDevice plugs in a device at runtime and notifies watchers.
func (d *Driver) AddDevice(cfg DeviceConfig) {
	d.mu.Lock()
	if cfg.DefaultDPI == 0 {
		cfg.DefaultDPI = defaultDPI
	}
	d.devices = append(d.devices, &cfg)
	watchers := append([]chan wia.ConnectEvent(nil), d.watchers...)
	d.mu.Unlock()
	for _, w := range watchers {
		select {
		case w <- wia.ConnectEvent{DeviceID: cfg.ID, Connected: true}:
		default:
		}
	}
}

// RemoveDevice unplugs a device and notifies watchers.
func (d *Driver) RemoveDevice(deviceID string) {
	d.mu.Lock()
	for i, dev := range d.devices {
		if dev.ID == deviceID {
			d.devices = append(d.devices[:i], d.devices[i+1:]...)
			break
		}
	}
	watchers := append([]chan wia.ConnectEvent(nil), d.watchers...)
	d.mu.Unlock()
	for _, w := range watchers {
		select {
		case w <- wia.ConnectEvent{DeviceID: deviceID, Connected: false}:
		default:
		}
	}
}

// Watch delivers connectivity-change events until ctx is done.
func (d *Driver) Watch(ctx context.Context) (<-chan wia.ConnectEvent, error) {
	ch := make(chan wia.ConnectEvent, 8)
	d.mu.Lock()
	d.watchers = append(d.watchers, ch)
	d.mu.Unlock()
	go func() {
		<-ctx.Done()
		d.mu.Lock()
		for i, w := range d.watchers {
			if w == ch {
				d.watchers = append(d.watchers[:i], d.watchers[i+1:]...)
				break
			}
		}
		d.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}

type session struct {
	mu        sync.Mutex
	dev       *DeviceConfig
	props     wia.PropertyBag
	remaining int
	closed    bool
	frames    int
}

func newSession(dev *DeviceConfig) *session {
	return &session{
		dev:       dev,
		remaining: dev.FeederPages,
		props: wia.PropertyBag{
			wia.PropXRes:           wia.Int32(dev.DefaultDPI),
			wia.PropYRes:           wia.Int32(dev.DefaultDPI),
			wia.PropHandlingSelect: wia.Int32(int32(wia.SelectFlatbed)),
			wia.PropDataType:       wia.Int32(wia.DataColor),
			wia.PropCurIntent:      wia.Int32(wia.IntentColor),
		},
	}
}

func (s *session) ReadProperty(id wia.PropertyID) (wia.PropertyValue, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dev.FailProperties {
		return wia.PropertyValue{}, false
	}
	switch id {
	case wia.PropHandlingCapabilities:
		return wia.Int32(int32(s.dev.Capabilities)), true
	case wia.PropHandlingStatus:
		var status uint32 = wia.StatusFlatReady
		if s.remaining > 0 {
			status |= wia.StatusFeedReady
		}
		return wia.Int32(int32(status)), true
	}
	v, ok := s.props[id]
	return v, ok
}

func (s *session) ReadPropertyAttributes(id wia.PropertyID) (wia.PropertyAttributes, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dev.FailProperties {
		return wia.PropertyAttributes{}, false
	}
	switch id {
	case wia.PropXRes, wia.PropYRes:
		if len(s.dev.SupportedDPIs) > 0 {
			return wia.PropertyAttributes{Kind: wia.AttrList, List: s.dev.SupportedDPIs}, true
		}
		if s.dev.DPIRange != nil {
			return *s.dev.DPIRange, true
		}
	case wia.PropDataType:
		return wia.PropertyAttributes{
			Kind: wia.AttrList,
			List: []int32{wia.DataThreshold, wia.DataGrayscale, wia.DataColor},
		}, true
	}
	return wia.PropertyAttributes{}, false
}

func (s *session) WriteProperty(id wia.PropertyID, v wia.PropertyValue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dev.RejectWrites {
		return fmt.Errorf("sim: property %d rejected", id)
	}
	s.props[id] = v
	return nil
}

func (s *session) Transfer(ctx context.Context, format wia.Format) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("sim: session closed")
	}
	if s.dev.TransferErr != nil {
		return nil, s.dev.TransferErr
	}
	if format != wia.FormatBMP {
		return nil, fmt.Errorf("sim: unsupported format %q", format)
	}
	if s.feederSelected() {
		if s.remaining == 0 {
			return nil, wia.ErrNoMoreItems
		}
		s.remaining--
	}
	s.frames++
	return s.renderFrame()
}

func (s *session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *session) feederSelected() bool {
	sel := uint32(s.props.IntOr(wia.PropHandlingSelect, int32(wia.SelectFlatbed)))
	return sel&(wia.SelectFeeder|wia.SelectDuplex) != 0
}

// renderFrame fabricates a BMP page: a gradient background with a stripe
// whose offset encodes the frame index, so tests can tell pages apart.
func (s *session) renderFrame() ([]byte, error) {
	w := int(s.props.IntOr(wia.PropXExtent, defaultWidth))
	h := int(s.props.IntOr(wia.PropYExtent, defaultHeight))
	if w <= 0 || w > 4096 {
		w = defaultWidth
	}
	if h <= 0 || h > 4096 {
		h = defaultHeight
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	stripe := (s.frames * 7) % h
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{R: uint8(255 * x / w), G: uint8(255 * y / h), B: 200, A: 255}
			if y == stripe {
				c = color.RGBA{A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("sim: encode frame: %w", err)
	}
	return buf.Bytes(), nil
}
