package domain

// ScanSource identifies where the scanner pulls paper from.
type ScanSource string

const (
	SourceAuto            ScanSource = "auto"
	SourceFlatbed         ScanSource = "flatbed"
	SourceFeeder          ScanSource = "feeder"
	SourceDuplex          ScanSource = "duplex"
	SourceFilm            ScanSource = "film"
	SourceFeederFrontOnly ScanSource = "feeder_front_only"
	SourceFeederBackOnly  ScanSource = "feeder_back_only"
)

// DeviceClass categorizes a scanner by its paper handling hardware.
type DeviceClass string

const (
	DeviceClassFlatbed       DeviceClass = "flatbed"
	DeviceClassADF           DeviceClass = "adf"
	DeviceClassDuplexADF     DeviceClass = "duplex_adf"
	DeviceClassMultifunction DeviceClass = "multifunction"
	DeviceClassUnknown       DeviceClass = "unknown"
)

// Device describes a connected scanner and its probed capabilities.
// It is immutable once constructed and rebuilt fresh on every enumeration;
// nothing is cached across calls.
type Device struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Manufacturer string      `json:"manufacturer"`
	Class        DeviceClass `json:"class"`

	SupportsColor  bool `json:"supports_color"`
	SupportsADF    bool `json:"supports_adf"`
	SupportsDuplex bool `json:"supports_duplex"`

	MaxDPI int `json:"max_dpi"`

	// SupportedSources is never empty; the first entry is the default source.
	SupportedSources []ScanSource `json:"supported_sources"`
	SupportedDPIs    []int        `json:"supported_dpis"`
}

// DefaultSource returns the device's default paper source.
func (d *Device) DefaultSource() ScanSource {
	if len(d.SupportedSources) == 0 {
		return SourceFlatbed
	}
	return d.SupportedSources[0]
}

// SupportsSource reports whether the device advertises the given source.
func (d *Device) SupportsSource(src ScanSource) bool {
	for _, s := range d.SupportedSources {
		if s == src {
			return true
		}
	}
	return false
}
