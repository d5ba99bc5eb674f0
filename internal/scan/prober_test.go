package scan

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"scan-station/internal/domain"
	"scan-station/internal/wia"
	"scan-station/internal/wia/simdriver"
)

type testLogger struct{}

func (testLogger) Info(msg string, fields ...interface{})             {}
func (testLogger) Error(msg string, err error, fields ...interface{}) {}
func (testLogger) Debug(msg string, fields ...interface{})            {}
func (testLogger) Warn(msg string, fields ...interface{})             {}

func TestListDevices_CapabilityDecoding(t *testing.T) {
	tests := []struct {
		name        string
		caps        uint32
		wantClass   domain.DeviceClass
		wantADF     bool
		wantDuplex  bool
		wantSources []domain.ScanSource
	}{
		{
			// Feeder bit alone yields an ADF with no duplex source.
			name:        "feeder only",
			caps:        wia.CapFeeder,
			wantClass:   domain.DeviceClassADF,
			wantADF:     true,
			wantDuplex:  false,
			wantSources: []domain.ScanSource{domain.SourceFeeder},
		},
		{
			name:       "feeder and duplex",
			caps:       wia.CapFeeder | wia.CapDuplex,
			wantClass:  domain.DeviceClassDuplexADF,
			wantADF:    true,
			wantDuplex: true,
			wantSources: []domain.ScanSource{
				domain.SourceDuplex,
				domain.SourceFeeder,
				domain.SourceFeederFrontOnly,
				domain.SourceFeederBackOnly,
			},
		},
		{
			// Feeder plus flatbed is multifunction regardless of duplex.
			name:       "feeder flatbed duplex",
			caps:       wia.CapFeeder | wia.CapFlat | wia.CapDuplex,
			wantClass:  domain.DeviceClassMultifunction,
			wantADF:    true,
			wantDuplex: true,
			wantSources: []domain.ScanSource{
				domain.SourceFlatbed,
				domain.SourceDuplex,
				domain.SourceFeeder,
				domain.SourceFeederFrontOnly,
				domain.SourceFeederBackOnly,
			},
		},
		{
			name:        "feeder and flatbed without duplex",
			caps:        wia.CapFeeder | wia.CapFlat,
			wantClass:   domain.DeviceClassMultifunction,
			wantADF:     true,
			wantDuplex:  false,
			wantSources: []domain.ScanSource{domain.SourceFlatbed, domain.SourceFeeder},
		},
		{
			name:        "flatbed only",
			caps:        wia.CapFlat,
			wantClass:   domain.DeviceClassFlatbed,
			wantSources: []domain.ScanSource{domain.SourceFlatbed},
		},
		{
			name:        "film adds a film source",
			caps:        wia.CapFlat | wia.CapFilm,
			wantClass:   domain.DeviceClassFlatbed,
			wantSources: []domain.ScanSource{domain.SourceFlatbed, domain.SourceFilm},
		},
		{
			// No bits at all still guarantees a flatbed source.
			name:        "empty mask",
			caps:        0,
			wantClass:   domain.DeviceClassUnknown,
			wantSources: []domain.ScanSource{domain.SourceFlatbed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			driver := simdriver.New(simdriver.DeviceConfig{
				ID:           "dev-1",
				Name:         "Test Scanner",
				Capabilities: tt.caps,
			})
			prober := NewProber(driver, testLogger{})

			devices, err := prober.ListDevices(context.Background())
			if err != nil {
				t.Fatalf("ListDevices() error = %v", err)
			}
			if len(devices) != 1 {
				t.Fatalf("expected 1 device, got %d", len(devices))
			}
			dev := devices[0]
			if dev.Class != tt.wantClass {
				t.Errorf("Class = %q, want %q", dev.Class, tt.wantClass)
			}
			if dev.SupportsADF != tt.wantADF {
				t.Errorf("SupportsADF = %v, want %v", dev.SupportsADF, tt.wantADF)
			}
			if dev.SupportsDuplex != tt.wantDuplex {
				t.Errorf("SupportsDuplex = %v, want %v", dev.SupportsDuplex, tt.wantDuplex)
			}
			if !reflect.DeepEqual(dev.SupportedSources, tt.wantSources) {
				t.Errorf("SupportedSources = %v, want %v", dev.SupportedSources, tt.wantSources)
			}
		})
	}
}

func TestListDevices_FallbackOnProbeFailure(t *testing.T) {
	tests := []struct {
		name string
		cfg  simdriver.DeviceConfig
	}{
		{
			name: "connection refused",
			cfg:  simdriver.DeviceConfig{ID: "dev-1", FailConnect: true},
		},
		{
			name: "all property reads absent",
			cfg:  simdriver.DeviceConfig{ID: "dev-1", FailProperties: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prober := NewProber(simdriver.New(tt.cfg), testLogger{})
			devices, err := prober.ListDevices(context.Background())
			if err != nil {
				t.Fatalf("ListDevices() error = %v", err)
			}
			if len(devices) != 1 {
				t.Fatalf("expected 1 device, got %d", len(devices))
			}
			dev := devices[0]
			if !reflect.DeepEqual(dev.SupportedSources, []domain.ScanSource{domain.SourceFlatbed}) {
				t.Errorf("SupportedSources = %v, want flatbed only", dev.SupportedSources)
			}
			if dev.MaxDPI != 600 {
				t.Errorf("MaxDPI = %d, want 600", dev.MaxDPI)
			}
			if !reflect.DeepEqual(dev.SupportedDPIs, []int{75, 100, 150, 200, 300, 600}) {
				t.Errorf("SupportedDPIs = %v, want fallback ladder", dev.SupportedDPIs)
			}
		})
	}
}

func TestListDevices_FallbackNames(t *testing.T) {
	prober := NewProber(simdriver.New(simdriver.DeviceConfig{ID: "dev-1"}), testLogger{})
	devices, err := prober.ListDevices(context.Background())
	if err != nil {
		t.Fatalf("ListDevices() error = %v", err)
	}
	if got := devices[0].Name; got != "Unknown Scanner" {
		t.Errorf("Name = %q, want %q", got, "Unknown Scanner")
	}
	if got := devices[0].Manufacturer; got != "Unknown" {
		t.Errorf("Manufacturer = %q, want %q", got, "Unknown")
	}
}

func TestListDevices_ResolutionDiscovery(t *testing.T) {
	tests := []struct {
		name     string
		cfg      simdriver.DeviceConfig
		wantDPIs []int
		wantMax  int
	}{
		{
			name: "discrete list used verbatim",
			cfg: simdriver.DeviceConfig{
				ID:            "dev-1",
				SupportedDPIs: []int32{100, 240, 480},
			},
			wantDPIs: []int{100, 240, 480},
			wantMax:  480,
		},
		{
			name: "range intersected with candidate ladder",
			cfg: simdriver.DeviceConfig{
				ID:       "dev-1",
				DPIRange: &wia.PropertyAttributes{Kind: wia.AttrRange, Min: 100, Max: 1200},
			},
			wantDPIs: []int{100, 150, 200, 300, 600, 1200},
			wantMax:  1200,
		},
		{
			// Neither list nor range: the current value stands alone with
			// MaxDPI floored at 600.
			name: "current value only",
			cfg: simdriver.DeviceConfig{
				ID:         "dev-1",
				DefaultDPI: 150,
			},
			wantDPIs: []int{150},
			wantMax:  600,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prober := NewProber(simdriver.New(tt.cfg), testLogger{})
			devices, err := prober.ListDevices(context.Background())
			if err != nil {
				t.Fatalf("ListDevices() error = %v", err)
			}
			dev := devices[0]
			if !reflect.DeepEqual(dev.SupportedDPIs, tt.wantDPIs) {
				t.Errorf("SupportedDPIs = %v, want %v", dev.SupportedDPIs, tt.wantDPIs)
			}
			if dev.MaxDPI != tt.wantMax {
				t.Errorf("MaxDPI = %d, want %d", dev.MaxDPI, tt.wantMax)
			}
		})
	}
}

func TestListDevices_HardwareUnavailable(t *testing.T) {
	driver := simdriver.New()
	driver.SetUnavailable(true)
	prober := NewProber(driver, testLogger{})

	_, err := prober.ListDevices(context.Background())
	if !errors.Is(err, domain.ErrHardwareUnavailable) {
		t.Fatalf("error = %v, want ErrHardwareUnavailable", err)
	}
}

func TestGetDefaultDevice(t *testing.T) {
	driver := simdriver.New(
		simdriver.DeviceConfig{ID: "dev-1", Name: "First"},
		simdriver.DeviceConfig{ID: "dev-2", Name: "Second"},
	)
	prober := NewProber(driver, testLogger{})

	dev, err := prober.GetDefaultDevice(context.Background())
	if err != nil {
		t.Fatalf("GetDefaultDevice() error = %v", err)
	}
	if dev == nil || dev.ID != "dev-1" {
		t.Fatalf("default device = %+v, want dev-1", dev)
	}

	empty := NewProber(simdriver.New(), testLogger{})
	dev, err = empty.GetDefaultDevice(context.Background())
	if err != nil {
		t.Fatalf("GetDefaultDevice() error = %v", err)
	}
	if dev != nil {
		t.Fatalf("expected nil device with no hardware, got %+v", dev)
	}
}
