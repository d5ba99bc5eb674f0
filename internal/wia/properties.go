package wia

// PropertyID identifies a device or item property. Values match the WIA
// property constants so driver implementations can pass them straight
// through.
type PropertyID uint32

// Root device properties.
const (
	PropDeviceID         PropertyID = 2 // WIA_DIP_DEV_ID
	PropVendorDesc       PropertyID = 3 // WIA_DIP_VEND_DESC
	PropDeviceDesc       PropertyID = 4 // WIA_DIP_DEV_DESC
	PropDeviceType       PropertyID = 5 // WIA_DIP_DEV_TYPE
	PropDeviceName       PropertyID = 7 // WIA_DIP_DEV_NAME
)

// Scanner device and item properties.
const (
	PropHandlingCapabilities PropertyID = 3086 // WIA_DPS_DOCUMENT_HANDLING_CAPABILITIES
	PropHandlingStatus       PropertyID = 3087 // WIA_DPS_DOCUMENT_HANDLING_STATUS
	PropHandlingSelect       PropertyID = 3088 // WIA_DPS_DOCUMENT_HANDLING_SELECT

	PropDataType   PropertyID = 4103 // WIA_IPA_DATATYPE
	PropCurIntent  PropertyID = 6146 // WIA_IPS_CUR_INTENT
	PropXRes       PropertyID = 6147 // WIA_IPS_XRES
	PropYRes       PropertyID = 6148 // WIA_IPS_YRES
	PropXPos       PropertyID = 6149 // WIA_IPS_XPOS
	PropYPos       PropertyID = 6150 // WIA_IPS_YPOS
	PropXExtent    PropertyID = 6151 // WIA_IPS_XEXTENT
	PropYExtent    PropertyID = 6152 // WIA_IPS_YEXTENT
	PropBrightness PropertyID = 6154 // WIA_IPS_BRIGHTNESS
	PropContrast   PropertyID = 6155 // WIA_IPS_CONTRAST
)

// Document handling capability bits. Independent bits; a device may set any
// combination.
const (
	CapFeeder uint32 = 1 << 0
	CapFlat   uint32 = 1 << 1
	CapDuplex uint32 = 1 << 2
	CapFilm   uint32 = 1 << 3
)

// Document handling status bits.
const (
	StatusFeedReady uint32 = 1 << 0
	StatusFlatReady uint32 = 1 << 1
)

// Document handling select values.
const (
	SelectFeeder    uint32 = 0x001
	SelectFlatbed   uint32 = 0x002
	SelectDuplex    uint32 = 0x004
	SelectFrontOnly uint32 = 0x020
	SelectBackOnly  uint32 = 0x040
	SelectFilm      uint32 = 0x080
)

// Intent values (WIA_INTENT_IMAGE_TYPE_*).
const (
	IntentColor     int32 = 1
	IntentGrayscale int32 = 2
	IntentText      int32 = 4
)

// Data type values (WIA_DATA_*).
const (
	DataThreshold int32 = 0 // black and white
	DataGrayscale int32 = 2
	DataColor     int32 = 3
)

// Format is the wire encoding requested from Transfer.
type Format string

const (
	// FormatBMP is the fixed lossless intermediate format used for all
	// captures.
	FormatBMP Format = "bmp"
)

// ValueKind discriminates PropertyValue payloads.
type ValueKind int

const (
	ValueInt ValueKind = iota
	ValueString
)

// PropertyValue is a typed property payload.
type PropertyValue struct {
	Kind ValueKind
	Int  int32
	Str  string
}

// Int32 wraps an integer property value.
func Int32(v int32) PropertyValue { return PropertyValue{Kind: ValueInt, Int: v} }

// String wraps a string property value.
func String(s string) PropertyValue { return PropertyValue{Kind: ValueString, Str: s} }

// AttrKind discriminates property attribute constraints.
type AttrKind int

const (
	// AttrNone means the driver reports no constraint for the property.
	AttrNone AttrKind = iota
	// AttrList means the property accepts a discrete set of values.
	AttrList
	// AttrRange means the property accepts any value in [Min, Max].
	AttrRange
)

// PropertyAttributes describes the valid values of a property.
type PropertyAttributes struct {
	Kind AttrKind
	List []int32
	Min  int32
	Max  int32
	Step int32
}
