package govee

import "errors"

// Domain errors for the govee package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, govee.ErrLoginFailed) {
//	    // prompt for corrected credentials
//	}
var (
	// ErrLoginFailed is returned when the platform rejects a login exchange
	// with a non-success application status. The wrapped message carries the
	// status reported by the server.
	ErrLoginFailed = errors.New("govee: login failed")

	// ErrProtocol is returned when a REST response carries a non-success
	// application status or is missing a required field. Operations failing
	// with ErrProtocol are not retried automatically; the caller decides.
	ErrProtocol = errors.New("govee: unexpected API response")

	// ErrInvalidToken is returned when a login succeeded at the transport
	// level but the issued bearer token is unusable (too short, malformed,
	// or already expired).
	ErrInvalidToken = errors.New("govee: unusable login token")

	// ErrCertificate is returned when the certificate material referenced
	// by the login response is not available from the provider.
	ErrCertificate = errors.New("govee: certificate material unavailable")

	// ErrDecode is returned when an inbound broker message cannot be
	// decoded into a device state delta. The message is dropped; processing
	// of later messages continues.
	ErrDecode = errors.New("govee: undecodable state message")

	// ErrUnknownSKU is returned when a SKU does not map to a supported
	// device kind. The device is skipped; no registry entry is created.
	ErrUnknownSKU = errors.New("govee: unrecognised device SKU")

	// ErrUnsupported is returned when a command is issued to a device that
	// lacks the required capability, such as setting a colour on a
	// white-only bulb.
	ErrUnsupported = errors.New("govee: command not supported by device")

	// ErrClosed is returned when an operation is attempted on a closed
	// session.
	ErrClosed = errors.New("govee: session closed")
)
