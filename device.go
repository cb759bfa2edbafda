package govee

import (
	"encoding/json"
	"fmt"
	"math"
	"sync"

	"github.com/towlerj/govee-api/colortemp"
)

// RGB is a colour value with 8-bit channels.
type RGB struct {
	R uint8
	G uint8
	B uint8
}

// Colour temperature bounds accepted by the vendor firmware.
const (
	minColorTemp = 2000
	maxColorTemp = 9000
)

// maxBrightnessRaw is the raw wire value for full brightness.
const maxBrightnessRaw = 255

// Metadata holds read-only device details reported by the device list
// endpoint. All fields are best-effort; absent values stay empty.
type Metadata struct {
	BLEName         string
	WiFiName        string
	Address         string
	HardwareVersion string
	SoftwareVersion string
}

// commandPublisher is the single publish capability a Device uses to emit
// commands. Only the owning Session implements it; devices never talk to
// the broker directly.
type commandPublisher interface {
	publishCommand(d *Device, cmd string, data map[string]any) error
}

// Device is a single registry entry: the cached state of one vendor device
// plus the command surface to control it.
//
// Every mutator is a request, not a memory write. The cached value changes
// only when a confirming state delta later arrives over the broker, so a
// successful SetPower call is typically followed (asynchronously) by an
// OnDeviceUpdate notification reflecting the new state.
//
// All methods are safe for concurrent use. The Session is the sole mutator
// of the cached state fields.
type Device struct {
	id    string
	topic string
	sku   string
	kind  Kind

	publisher commandPublisher

	mu         sync.RWMutex
	name       string
	connected  Tristate
	power      Tristate
	brightness *uint8 // raw wire value, nil until first status
	color      *RGB   // RGB kinds only, nil = unknown
	colorTemp  int    // kelvin, RGB kinds only, 0 = unknown
	meta       Metadata
}

// newDevice constructs a registry entry. Only the Session calls this.
func newDevice(pub commandPublisher, id, topic, sku string, kind Kind, name string, connected Tristate) *Device {
	return &Device{
		id:        id,
		topic:     topic,
		sku:       sku,
		kind:      kind,
		publisher: pub,
		name:      name,
		connected: connected,
	}
}

// ID returns the vendor-assigned stable device identifier.
func (d *Device) ID() string { return d.id }

// SKU returns the vendor stock-keeping-unit code of the device model.
func (d *Device) SKU() string { return d.sku }

// Kind returns the capability tag of the device.
func (d *Device) Kind() Kind { return d.kind }

// Name returns the display name. When the account has no name configured
// for the device, a placeholder combining SKU and identifier is returned.
func (d *Device) Name() string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.name == "" {
		return fmt.Sprintf("<no name> %s @ %s", d.sku, d.id)
	}
	return d.name
}

// setName updates the mutable display name in place.
func (d *Device) setName(name string) {
	d.mu.Lock()
	d.name = name
	d.mu.Unlock()
}

// setMetadata replaces the device metadata.
func (d *Device) setMetadata(meta Metadata) {
	d.mu.Lock()
	d.meta = meta
	d.mu.Unlock()
}

// Metadata returns the read-only device details from the last registry
// refresh.
func (d *Device) Metadata() Metadata {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.meta
}

// Connected reports whether the device is currently reachable by the cloud.
func (d *Device) Connected() Tristate {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// Power reports the cached power state.
func (d *Device) Power() Tristate {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.power
}

// Brightness returns the cached brightness as a fraction in [0.0, 1.0].
// known is false until the first status report arrives.
func (d *Device) Brightness() (fraction float64, known bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.brightness == nil {
		return 0, false
	}
	return float64(*d.brightness) / maxBrightnessRaw, true
}

// Color returns the cached colour. known is false for non-RGB kinds and
// whenever the last status report carried no colour.
func (d *Device) Color() (c RGB, known bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.color == nil {
		return RGB{}, false
	}
	return *d.color, true
}

// ColorTemperature returns the cached colour temperature in kelvin. known
// is false for non-RGB kinds and whenever the device last reported zero.
func (d *Device) ColorTemperature() (kelvin int, known bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.colorTemp == 0 {
		return 0, false
	}
	return d.colorTemp, true
}

// SetPower requests the device to turn on or off.
//
// When the requested state equals the cached state no command is emitted;
// the call is an idempotent no-op.
func (d *Device) SetPower(on bool) error {
	d.mu.RLock()
	current := d.power
	d.mu.RUnlock()

	if tristateOf(on) == current {
		return nil
	}

	return d.publisher.publishCommand(d, cmdTurn, map[string]any{"val": on})
}

// Toggle requests the opposite of the cached power state. An unknown power
// state is treated as off, so toggling a device that has never reported
// status turns it on.
func (d *Device) Toggle() error {
	on, _ := d.Power().Bool()
	return d.SetPower(!on)
}

// SetBrightness requests a brightness given as a fraction in [0.0, 1.0].
// Out-of-range fractions are clamped. Requesting the cached brightness is
// a no-op.
func (d *Device) SetBrightness(fraction float64) error {
	raw := brightnessToRaw(fraction)

	d.mu.RLock()
	current := d.brightness
	d.mu.RUnlock()

	if current != nil && *current == raw {
		return nil
	}

	return d.publisher.publishCommand(d, cmdBrightness, map[string]any{"val": raw})
}

// SetColor requests an RGB colour. Returns ErrUnsupported for kinds without
// a colour channel. Requesting the cached colour is a no-op.
func (d *Device) SetColor(c RGB) error {
	if !d.kind.SupportsColor() {
		return fmt.Errorf("%w: %s has no colour channel", ErrUnsupported, d.kind.FriendlyName())
	}

	d.mu.RLock()
	current := d.color
	d.mu.RUnlock()

	if current != nil && *current == c {
		return nil
	}

	return d.publisher.publishCommand(d, cmdColor, map[string]any{
		"red":   c.R,
		"green": c.G,
		"blue":  c.B,
	})
}

// SetColorTemperature requests a colour temperature in kelvin, clamped to
// the [2000, 9000] range the firmware accepts. Returns ErrUnsupported for
// kinds without a colour channel. Requesting the cached temperature is a
// no-op.
//
// The wire protocol has no standalone "set kelvin" primitive: the command
// carries both the equivalent RGB (derived via colortemp.ToRGB) and the
// kelvin label, matching observed vendor app behaviour.
func (d *Device) SetColorTemperature(kelvin int) error {
	if !d.kind.SupportsColor() {
		return fmt.Errorf("%w: %s has no colour channel", ErrUnsupported, d.kind.FriendlyName())
	}

	kelvin = clampColorTemp(kelvin)
	if kelvin <= 0 {
		return nil
	}

	d.mu.RLock()
	current := d.colorTemp
	d.mu.RUnlock()

	if kelvin == current {
		return nil
	}

	r, g, b := colortemp.ToRGB(kelvin)
	return d.publisher.publishCommand(d, cmdColorTem, map[string]any{
		"color": map[string]any{
			"red":   r,
			"green": g,
			"blue":  b,
		},
		"colorTemInKelvin": kelvin,
	})
}

// RequestStatus asks the device to report its current state.
//
// There is no documented "get status" command; an empty turn command makes
// the device publish a full state delta as a side effect, observed
// empirically against vendor firmware.
func (d *Device) RequestStatus() error {
	return d.publisher.publishCommand(d, cmdTurn, map[string]any{})
}

// brightnessToRaw converts a brightness fraction to the raw wire value.
// NaN maps to zero; it would otherwise slip past both range clamps and
// feed a platform-defined conversion.
func brightnessToRaw(fraction float64) uint8 {
	if math.IsNaN(fraction) {
		return 0
	}

	raw := math.Round(fraction * maxBrightnessRaw)
	if raw < 0 {
		return 0
	}
	if raw > maxBrightnessRaw {
		return maxBrightnessRaw
	}
	return uint8(raw)
}

// clampColorTemp bounds a kelvin value to the range the firmware accepts.
// Non-positive values are passed through so callers can treat them as
// unknown.
func clampColorTemp(kelvin int) int {
	if kelvin <= 0 {
		return 0
	}
	if kelvin < minColorTemp {
		return minColorTemp
	}
	if kelvin > maxColorTemp {
		return maxColorTemp
	}
	return kelvin
}

// Command names understood by the device firmware.
const (
	cmdTurn       = "turn"
	cmdBrightness = "brightness"
	cmdColor      = "color"
	cmdColorTem   = "colorTem"
)

// stateDelta is the sparse "state" object of an inbound broker message.
// Absent fields are nil so the decoder can distinguish "not reported" from
// zero values.
type stateDelta struct {
	Device     string          `json:"device"`
	SKU        string          `json:"sku"`
	Connected  json.RawMessage `json:"connected"`
	OnOff      *int            `json:"onOff"`
	Brightness *int            `json:"brightness"`
	Color      *stateColor     `json:"color"`
	ColorTemp  *int            `json:"colorTemInKelvin"`
}

// stateColor is the colour object inside a state delta.
type stateColor struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// validate checks the required top-level fields of a delta. A delta without
// a device identifier or without any connectivity key cannot be applied and
// fails the whole message.
func (st *stateDelta) validate() error {
	if st.Device == "" {
		return fmt.Errorf("%w: missing device identifier", ErrDecode)
	}
	if len(st.Connected) == 0 {
		return fmt.Errorf("%w: missing connected field", ErrDecode)
	}
	return nil
}

// applyState merges a decoded state delta into the cached device state.
//
// Fields absent from the delta keep their cached value, with one deliberate
// exception: colour and colour temperature on RGB kinds reset to unknown
// when their key is absent, because the firmware omits them whenever the
// device is not currently in that mode. A single malformed field never
// fails the update; it simply decodes to unknown.
func (d *Device) applyState(st *stateDelta) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.connected = decodeConnected(st.Connected)

	if st.OnOff != nil {
		d.power = tristateOf(*st.OnOff == 1)
	}

	if st.Brightness != nil {
		raw := clampRawByte(*st.Brightness)
		d.brightness = &raw
	}

	if !d.kind.SupportsColor() {
		return
	}

	if st.ColorTemp != nil && *st.ColorTemp != 0 {
		d.colorTemp = clampColorTemp(*st.ColorTemp)
	} else {
		d.colorTemp = 0
	}

	if st.Color != nil {
		d.color = &RGB{
			R: clampRawByte(st.Color.R),
			G: clampRawByte(st.Color.G),
			B: clampRawByte(st.Color.B),
		}
	} else {
		d.color = nil
	}
}

// decodeConnected interprets the connectivity field, which the firmware
// reports either as a JSON boolean or as the strings "true"/"false".
// Anything else decodes to unknown.
func decodeConnected(raw json.RawMessage) Tristate {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return tristateOf(b)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch s {
		case "true":
			return TristateTrue
		case "false":
			return TristateFalse
		}
	}

	return TristateUnknown
}

// clampRawByte bounds an integer wire value to [0, 255].
func clampRawByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > maxBrightnessRaw {
		return maxBrightnessRaw
	}
	return uint8(v)
}
