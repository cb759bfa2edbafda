// Package govee is a client for the Govee smart-lighting cloud platform.
//
// The platform exposes two surfaces: a REST API for authentication and
// account device listing, and a TLS MQTT broker for device state and
// control. This package wraps both behind a Session that owns the login
// lifecycle, a reconciling device registry, and per-device command
// encoding.
//
// # Architecture
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                            Session                               │
//	│                                                                  │
//	│  ┌──────────────┐   ┌───────────────────┐   ┌────────────────┐  │
//	│  │  restClient  │   │  device registry  │   │  broker link   │  │
//	│  │  (rest.go)   │──▶│   (session.go)    │◀──│  (session.go)  │  │
//	│  │              │   │                   │   │                │  │
//	│  │ • login      │   │ • merge refresh   │   │ • account topic│  │
//	│  │ • device list│   │ • id lookup       │   │ • device topics│  │
//	│  └──────────────┘   └───────────────────┘   └────────────────┘  │
//	│                              │                                   │
//	└──────────────────────────────│───────────────────────────────────┘
//	                               ▼
//	                     ┌──────────────────┐
//	                     │      Device      │
//	                     │   (device.go)    │
//	                     │ • cached state   │
//	                     │ • SetPower, ...  │
//	                     └──────────────────┘
//
// # Key Types
//
//   - Session: Owns credentials, the broker connection, and the registry
//   - Device: A lighting device with cached state and control operations
//   - Kind: Device family classification (white bulb, RGB bulb, LED strip)
//   - Config: Immutable connection settings; zero values use platform defaults
//   - EventSink: Receives new-device and device-update notifications
//   - CertificateProvider: Supplies broker TLS material (see certstore)
//
// # Usage
//
//	certs, err := certstore.NewDir("./certs")
//	if err != nil {
//	    return err
//	}
//
//	session, err := govee.New(govee.Config{
//	    Email:    "user@example.com",
//	    Password: "secret",
//	}, certs)
//	if err != nil {
//	    return err
//	}
//	defer session.Close()
//
//	if err := session.Login(ctx); err != nil {
//	    return err
//	}
//	if err := session.RefreshDeviceList(ctx); err != nil {
//	    return err
//	}
//
//	for _, d := range session.Devices() {
//	    if err := d.SetBrightness(0.5); err != nil {
//	        log.Warn("set brightness", "device", d.ID(), "error", err)
//	    }
//	}
//
// # Thread Safety
//
// Session and Device are safe for concurrent use. EventSink callbacks run
// outside internal locks, so sinks may call back into the Session.
package govee
