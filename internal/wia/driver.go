// Package wia defines the typed abstraction over scanner driver stacks.
// Late-bound driver property bags are modelled as explicit property-id-to-
// value maps; an absent property is reported as (zero, false) rather than an
// error.
package wia

import (
	"context"
	"errors"
)

// Driver errors. Drivers must return these sentinels (possibly wrapped) so
// the scan core can classify failures.
var (
	// ErrUnavailable means the driver subsystem itself is absent or broken.
	ErrUnavailable = errors.New("wia: driver subsystem unavailable")

	// ErrUnknownDevice means the device id does not match any connected
	// device.
	ErrUnknownDevice = errors.New("wia: unknown device")

	// ErrNoMoreItems is the distinguished feeder-exhaustion signal raised by
	// Transfer. It is normal control flow, not a failure.
	ErrNoMoreItems = errors.New("wia: no more items")
)

// DeviceInfo is a device handle from enumeration: an opaque id plus the
// root-item property bag read without opening a live connection.
type DeviceInfo struct {
	ID    string
	Props PropertyBag
}

// ConnectEvent reports a device appearing or disappearing.
type ConnectEvent struct {
	DeviceID  string
	Connected bool
}

// Driver is the hardware driver abstraction. Enumerate must query hardware
// state fresh on every call.
type Driver interface {
	Name() string
	Enumerate(ctx context.Context) ([]DeviceInfo, error)
	Connect(ctx context.Context, deviceID string) (Session, error)
}

// Watcher is an optional driver capability delivering connectivity-change
// notifications. The channel is closed when ctx is done.
type Watcher interface {
	Watch(ctx context.Context) (<-chan ConnectEvent, error)
}

// Session is a live connection to one device. Sessions are not reentrant;
// one scan at a time per session.
type Session interface {
	// ReadProperty returns the current value of a property. ok is false when
	// the device does not expose the property.
	ReadProperty(id PropertyID) (PropertyValue, bool)

	// ReadPropertyAttributes returns the valid-value constraints of a
	// property (discrete list or min/max/step range), when the driver
	// reports any.
	ReadPropertyAttributes(id PropertyID) (PropertyAttributes, bool)

	// WriteProperty sets a property. Devices may reject any write; callers
	// treat failure as advisory and continue.
	WriteProperty(id PropertyID, v PropertyValue) error

	// Transfer requests one image in the given format and blocks until the
	// device delivers it. Returns ErrNoMoreItems at feeder exhaustion.
	Transfer(ctx context.Context, format Format) ([]byte, error)

	Close() error
}

// PropertyBag is an explicit property-id-to-value map.
type PropertyBag map[PropertyID]PropertyValue

// StringOr returns the string value of id, or def when absent or non-string.
func (b PropertyBag) StringOr(id PropertyID, def string) string {
	v, ok := b[id]
	if !ok || v.Kind != ValueString {
		return def
	}
	return v.Str
}

// IntOr returns the integer value of id, or def when absent or non-integer.
func (b PropertyBag) IntOr(id PropertyID, def int32) int32 {
	v, ok := b[id]
	if !ok || v.Kind != ValueInt {
		return def
	}
	return v.Int
}
