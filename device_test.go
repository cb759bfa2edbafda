package govee

import (
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"
)

// mockPublisher records published commands for assertions.
type mockPublisher struct {
	mu       sync.Mutex
	commands []publishedCommand
	err      error
}

type publishedCommand struct {
	device *Device
	cmd    string
	data   map[string]any
}

func (m *mockPublisher) publishCommand(d *Device, cmd string, data map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.commands = append(m.commands, publishedCommand{device: d, cmd: cmd, data: data})
	return nil
}

func (m *mockPublisher) last(t *testing.T) publishedCommand {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.commands) == 0 {
		t.Fatal("no command was published")
	}
	return m.commands[len(m.commands)-1]
}

func (m *mockPublisher) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.commands)
}

// testDevice builds a registry entry wired to a mock publisher.
func testDevice(kind Kind) (*Device, *mockPublisher) {
	pub := &mockPublisher{}
	d := newDevice(pub, "AA:BB:CC:DD:EE:FF:00:11", "GD/123abc", "H6159", kind, "Desk strip", TristateUnknown)
	return d, pub
}

// delta unmarshals a JSON state object for applyState tests.
func delta(t *testing.T, raw string) *stateDelta {
	t.Helper()

	var st stateDelta
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		t.Fatalf("unmarshalling delta: %v", err)
	}
	return &st
}

// ==== Identity and accessors ====

func TestDevice_NamePlaceholder(t *testing.T) {
	pub := &mockPublisher{}
	d := newDevice(pub, "id-1", "GD/topic", "H6159", KindLEDStrip, "", TristateUnknown)

	want := "<no name> H6159 @ id-1"
	if got := d.Name(); got != want {
		t.Errorf("Name() = %q, want %q", got, want)
	}

	d.setName("Kitchen strip")
	if got := d.Name(); got != "Kitchen strip" {
		t.Errorf("Name() = %q, want Kitchen strip", got)
	}
}

func TestDevice_InitialStateUnknown(t *testing.T) {
	d, _ := testDevice(KindLEDStrip)

	if d.Power() != TristateUnknown {
		t.Error("power should start unknown")
	}
	if _, known := d.Brightness(); known {
		t.Error("brightness should start unknown")
	}
	if _, known := d.Color(); known {
		t.Error("colour should start unknown")
	}
	if _, known := d.ColorTemperature(); known {
		t.Error("colour temperature should start unknown")
	}
}

// ==== Commands ====

func TestDevice_SetPower(t *testing.T) {
	d, pub := testDevice(KindLEDStrip)

	if err := d.SetPower(true); err != nil {
		t.Fatalf("SetPower() error = %v", err)
	}

	cmd := pub.last(t)
	if cmd.cmd != "turn" {
		t.Errorf("cmd = %q, want turn", cmd.cmd)
	}
	if cmd.data["val"] != true {
		t.Errorf("data[val] = %v, want true", cmd.data["val"])
	}
}

func TestDevice_SetPower_DeduplicatesKnownState(t *testing.T) {
	d, pub := testDevice(KindLEDStrip)
	d.applyState(delta(t, `{"device":"id","connected":true,"onOff":1}`))

	if err := d.SetPower(true); err != nil {
		t.Fatalf("SetPower() error = %v", err)
	}
	if pub.count() != 0 {
		t.Errorf("published %d commands, want 0 (state already on)", pub.count())
	}

	if err := d.SetPower(false); err != nil {
		t.Fatalf("SetPower() error = %v", err)
	}
	if pub.count() != 1 {
		t.Errorf("published %d commands, want 1", pub.count())
	}
}

func TestDevice_Toggle_UnknownTurnsOn(t *testing.T) {
	d, pub := testDevice(KindRGBBulb)

	if err := d.Toggle(); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}

	cmd := pub.last(t)
	if cmd.cmd != "turn" || cmd.data["val"] != true {
		t.Errorf("Toggle() on unknown state published %s %v, want turn on", cmd.cmd, cmd.data)
	}
}

func TestDevice_Toggle_InvertsKnownState(t *testing.T) {
	d, pub := testDevice(KindRGBBulb)
	d.applyState(delta(t, `{"device":"id","connected":true,"onOff":1}`))

	if err := d.Toggle(); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}

	if cmd := pub.last(t); cmd.data["val"] != false {
		t.Errorf("Toggle() from on published val=%v, want false", cmd.data["val"])
	}
}

func TestDevice_SetBrightness(t *testing.T) {
	tests := []struct {
		name     string
		fraction float64
		wantRaw  uint8
	}{
		{"full", 1.0, 255},
		{"half", 0.5, 128},
		{"off", 0.0, 0},
		{"clamped high", 1.5, 255},
		{"clamped low", -0.2, 0},
		{"not a number", math.NaN(), 0},
		{"positive infinity", math.Inf(1), 255},
		{"negative infinity", math.Inf(-1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, pub := testDevice(KindLEDStrip)

			if err := d.SetBrightness(tt.fraction); err != nil {
				t.Fatalf("SetBrightness(%v) error = %v", tt.fraction, err)
			}

			cmd := pub.last(t)
			if cmd.cmd != "brightness" {
				t.Errorf("cmd = %q, want brightness", cmd.cmd)
			}
			if got := cmd.data["val"]; got != tt.wantRaw {
				t.Errorf("data[val] = %v, want %d", got, tt.wantRaw)
			}
		})
	}
}

func TestDevice_SetBrightness_Deduplicates(t *testing.T) {
	d, pub := testDevice(KindLEDStrip)
	d.applyState(delta(t, `{"device":"id","connected":true,"brightness":128}`))

	if err := d.SetBrightness(0.5); err != nil {
		t.Fatalf("SetBrightness() error = %v", err)
	}
	if pub.count() != 0 {
		t.Errorf("published %d commands, want 0 (brightness already 128)", pub.count())
	}
}

func TestDevice_SetColor(t *testing.T) {
	d, pub := testDevice(KindRGBBulb)

	if err := d.SetColor(RGB{R: 255, G: 128, B: 0}); err != nil {
		t.Fatalf("SetColor() error = %v", err)
	}

	cmd := pub.last(t)
	if cmd.cmd != "color" {
		t.Errorf("cmd = %q, want color", cmd.cmd)
	}
	if cmd.data["red"] != uint8(255) || cmd.data["green"] != uint8(128) || cmd.data["blue"] != uint8(0) {
		t.Errorf("data = %v, want red=255 green=128 blue=0", cmd.data)
	}
}

func TestDevice_SetColor_WhiteBulbUnsupported(t *testing.T) {
	d, pub := testDevice(KindWhiteBulb)

	err := d.SetColor(RGB{R: 1, G: 2, B: 3})
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("SetColor() error = %v, want ErrUnsupported", err)
	}
	if pub.count() != 0 {
		t.Error("no command should be published for unsupported kinds")
	}
}

func TestDevice_SetColor_Deduplicates(t *testing.T) {
	d, pub := testDevice(KindLEDStrip)
	d.applyState(delta(t, `{"device":"id","connected":true,"color":{"r":10,"g":20,"b":30}}`))

	if err := d.SetColor(RGB{R: 10, G: 20, B: 30}); err != nil {
		t.Fatalf("SetColor() error = %v", err)
	}
	if pub.count() != 0 {
		t.Errorf("published %d commands, want 0 (colour unchanged)", pub.count())
	}
}

func TestDevice_SetColorTemperature(t *testing.T) {
	d, pub := testDevice(KindLEDStrip)

	if err := d.SetColorTemperature(4000); err != nil {
		t.Fatalf("SetColorTemperature() error = %v", err)
	}

	cmd := pub.last(t)
	if cmd.cmd != "colorTem" {
		t.Errorf("cmd = %q, want colorTem", cmd.cmd)
	}
	if cmd.data["colorTemInKelvin"] != 4000 {
		t.Errorf("data[colorTemInKelvin] = %v, want 4000", cmd.data["colorTemInKelvin"])
	}

	// The command carries the equivalent RGB alongside the kelvin label.
	color, ok := cmd.data["color"].(map[string]any)
	if !ok {
		t.Fatalf("data[color] = %T, want nested colour object", cmd.data["color"])
	}
	for _, channel := range []string{"red", "green", "blue"} {
		if _, ok := color[channel]; !ok {
			t.Errorf("colour object missing %s channel", channel)
		}
	}
}

func TestDevice_SetColorTemperature_Clamps(t *testing.T) {
	tests := []struct {
		name   string
		kelvin int
		want   int
	}{
		{"below firmware floor", 500, 2000},
		{"above firmware ceiling", 20000, 9000},
		{"in range", 6500, 6500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, pub := testDevice(KindRGBBulb)

			if err := d.SetColorTemperature(tt.kelvin); err != nil {
				t.Fatalf("SetColorTemperature(%d) error = %v", tt.kelvin, err)
			}
			if got := pub.last(t).data["colorTemInKelvin"]; got != tt.want {
				t.Errorf("colorTemInKelvin = %v, want %d", got, tt.want)
			}
		})
	}
}

func TestDevice_SetColorTemperature_WhiteBulbUnsupported(t *testing.T) {
	d, _ := testDevice(KindWhiteBulb)

	if err := d.SetColorTemperature(4000); !errors.Is(err, ErrUnsupported) {
		t.Errorf("SetColorTemperature() error = %v, want ErrUnsupported", err)
	}
}

func TestDevice_RequestStatus(t *testing.T) {
	d, pub := testDevice(KindLEDStrip)

	if err := d.RequestStatus(); err != nil {
		t.Fatalf("RequestStatus() error = %v", err)
	}

	cmd := pub.last(t)
	if cmd.cmd != "turn" {
		t.Errorf("cmd = %q, want turn", cmd.cmd)
	}
	if len(cmd.data) != 0 {
		t.Errorf("data = %v, want empty (status poll carries no value)", cmd.data)
	}
}

func TestDevice_PublishErrorPropagates(t *testing.T) {
	d, pub := testDevice(KindLEDStrip)
	pub.err = ErrClosed

	if err := d.SetPower(true); !errors.Is(err, ErrClosed) {
		t.Errorf("SetPower() error = %v, want ErrClosed", err)
	}
}

// ==== State decoding ====

func TestStateDelta_Validate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{
			name: "complete",
			raw:  `{"device":"id","connected":true}`,
		},
		{
			name:    "missing device identifier",
			raw:     `{"connected":true,"onOff":1}`,
			wantErr: true,
		},
		{
			name:    "missing connected",
			raw:     `{"device":"id","onOff":1}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := delta(t, tt.raw).validate()

			if tt.wantErr && !errors.Is(err, ErrDecode) {
				t.Errorf("validate() error = %v, want ErrDecode", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("validate() error = %v", err)
			}
		})
	}
}

func TestDevice_ApplyState_FullReport(t *testing.T) {
	d, _ := testDevice(KindLEDStrip)

	d.applyState(delta(t, `{
		"device": "id",
		"connected": true,
		"onOff": 1,
		"brightness": 64,
		"color": {"r": 255, "g": 0, "b": 128},
		"colorTemInKelvin": 0
	}`))

	if d.Connected() != TristateTrue {
		t.Error("connected should be true")
	}
	if d.Power() != TristateTrue {
		t.Error("power should be on")
	}

	fraction, known := d.Brightness()
	if !known {
		t.Fatal("brightness should be known")
	}
	if want := 64.0 / 255.0; fraction != want {
		t.Errorf("brightness = %v, want %v", fraction, want)
	}

	c, known := d.Color()
	if !known {
		t.Fatal("colour should be known")
	}
	if c != (RGB{R: 255, G: 0, B: 128}) {
		t.Errorf("colour = %+v", c)
	}

	// Zero kelvin means the device is in colour mode, not temperature mode.
	if _, known := d.ColorTemperature(); known {
		t.Error("zero colour temperature should decode to unknown")
	}
}

func TestDevice_ApplyState_ConnectedEncodings(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Tristate
	}{
		{"JSON true", `{"device":"id","connected":true}`, TristateTrue},
		{"JSON false", `{"device":"id","connected":false}`, TristateFalse},
		{"string true", `{"device":"id","connected":"true"}`, TristateTrue},
		{"string false", `{"device":"id","connected":"false"}`, TristateFalse},
		{"unrecognised string", `{"device":"id","connected":"maybe"}`, TristateUnknown},
		{"number", `{"device":"id","connected":1}`, TristateUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := testDevice(KindLEDStrip)
			d.applyState(delta(t, tt.raw))

			if got := d.Connected(); got != tt.want {
				t.Errorf("Connected() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDevice_ApplyState_AbsentFieldsKeepCache(t *testing.T) {
	d, _ := testDevice(KindLEDStrip)
	d.applyState(delta(t, `{"device":"id","connected":true,"onOff":1,"brightness":200}`))

	// A sparse delta without power or brightness keeps both cached.
	d.applyState(delta(t, `{"device":"id","connected":true}`))

	if d.Power() != TristateTrue {
		t.Error("power should survive a sparse delta")
	}
	if fraction, known := d.Brightness(); !known || fraction != 200.0/255.0 {
		t.Errorf("brightness = (%v, %v), want cached 200/255", fraction, known)
	}
}

func TestDevice_ApplyState_AbsentColorResets(t *testing.T) {
	d, _ := testDevice(KindRGBBulb)
	d.applyState(delta(t, `{"device":"id","connected":true,"color":{"r":1,"g":2,"b":3},"colorTemInKelvin":4000}`))

	if _, known := d.Color(); !known {
		t.Fatal("colour should be known after first report")
	}

	// Colour keys are omitted when the device leaves colour mode.
	d.applyState(delta(t, `{"device":"id","connected":true,"onOff":1}`))

	if _, known := d.Color(); known {
		t.Error("absent colour should reset to unknown")
	}
	if _, known := d.ColorTemperature(); known {
		t.Error("absent colour temperature should reset to unknown")
	}
}

func TestDevice_ApplyState_WhiteBulbIgnoresColor(t *testing.T) {
	d, _ := testDevice(KindWhiteBulb)
	d.applyState(delta(t, `{"device":"id","connected":true,"color":{"r":1,"g":2,"b":3},"colorTemInKelvin":4000}`))

	if _, known := d.Color(); known {
		t.Error("white bulbs never cache colour")
	}
	if _, known := d.ColorTemperature(); known {
		t.Error("white bulbs never cache colour temperature")
	}
}

func TestDevice_ApplyState_ClampsWireValues(t *testing.T) {
	d, _ := testDevice(KindLEDStrip)
	d.applyState(delta(t, `{"device":"id","connected":true,"brightness":9999,"color":{"r":-5,"g":300,"b":128},"colorTemInKelvin":100000}`))

	if fraction, _ := d.Brightness(); fraction != 1.0 {
		t.Errorf("brightness = %v, want clamped to 1.0", fraction)
	}

	c, _ := d.Color()
	if c != (RGB{R: 0, G: 255, B: 128}) {
		t.Errorf("colour = %+v, want clamped channels", c)
	}

	if kelvin, _ := d.ColorTemperature(); kelvin != maxColorTemp {
		t.Errorf("colour temperature = %d, want %d", kelvin, maxColorTemp)
	}
}

// ==== Brightness round trip ====

func TestBrightnessRoundTrip(t *testing.T) {
	// A cached brightness re-read as a fraction and requested again must
	// not drift: the raw value survives the round trip exactly.
	d, pub := testDevice(KindLEDStrip)
	d.applyState(delta(t, `{"device":"id","connected":true,"brightness":77}`))

	fraction, _ := d.Brightness()
	if err := d.SetBrightness(fraction); err != nil {
		t.Fatalf("SetBrightness() error = %v", err)
	}
	if pub.count() != 0 {
		t.Errorf("round-tripped brightness published %d commands, want 0", pub.count())
	}
}
