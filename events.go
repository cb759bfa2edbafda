package govee

// EventSink receives registry change notifications from a Session.
//
// Both callbacks are invoked synchronously on whichever goroutine detected
// the change: the caller's goroutine for a registry refresh, or the broker
// client's message goroutine for an inbound state delta. Implementations
// must not block for significant periods or they stall subsequent broker
// message processing.
//
// A Session has at most one active sink. The zero state (no sink) discards
// notifications.
type EventSink interface {
	// OnNewDevice is called once for every previously-unknown device
	// identifier discovered during a registry refresh.
	OnNewDevice(s *Session, d *Device)

	// OnDeviceUpdate is called after an inbound state delta has been
	// applied to a registry device.
	OnDeviceUpdate(s *Session, d *Device)
}

// EventFuncs adapts plain functions to the EventSink interface. Nil fields
// discard the corresponding notification.
type EventFuncs struct {
	NewDevice    func(s *Session, d *Device)
	DeviceUpdate func(s *Session, d *Device)
}

// OnNewDevice implements EventSink.
func (f EventFuncs) OnNewDevice(s *Session, d *Device) {
	if f.NewDevice != nil {
		f.NewDevice(s, d)
	}
}

// OnDeviceUpdate implements EventSink.
func (f EventFuncs) OnDeviceUpdate(s *Session, d *Device) {
	if f.DeviceUpdate != nil {
		f.DeviceUpdate(s, d)
	}
}

// Logger defines the logging interface used by the Session.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
