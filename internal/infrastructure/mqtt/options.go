package mqtt

import (
	"crypto/tls"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// Connection constants.
const (
	// defaultConnectTimeout is the maximum time to wait for initial connection.
	defaultConnectTimeout = 10 * time.Second

	// defaultOperationTimeout is the maximum time to wait for publish or
	// subscribe acknowledgment.
	defaultOperationTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending operations on disconnect.
	defaultDisconnectQuiesce = 1000 // milliseconds

	// defaultKeepAlive is the keepalive interval for the connection.
	defaultKeepAlive = 60 * time.Second

	// maxQoS is the maximum QoS level supported.
	maxQoS = 2

	// tlsMinVersion is the minimum TLS version for broker connections.
	tlsMinVersion = tls.VersionTLS12
)

// Default reconnect backoff bounds, used when Options leaves them zero.
const (
	defaultInitialBackoff = 1 * time.Second
	defaultMaxBackoff     = 32 * time.Second
)

// Options configures a broker connection.
//
// The vendor's broker only accepts mutually authenticated TLS sessions, so
// TLS must carry the account's client certificate pair. The broker rejects
// duplicate client identifiers by disconnecting the older session.
type Options struct {
	Host     string
	Port     int
	ClientID string

	// TLS is the client certificate configuration for the connection.
	TLS *tls.Config

	// Reconnect backoff bounds. Zero values fall back to 1s/32s.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// buildClientOptions creates paho MQTT options from connection Options.
//
// This configures:
//   - Broker URL (always ssl://, the broker has no plaintext listener)
//   - Client ID for identification
//   - Client-certificate TLS
//   - Auto-reconnect with exponential backoff
//   - Clean session mode
func buildClientOptions(opts Options) *pahomqtt.ClientOptions {
	clientOpts := pahomqtt.NewClientOptions()

	// Broker URL
	brokerURL := fmt.Sprintf("ssl://%s:%d", opts.Host, opts.Port)
	clientOpts.AddBroker(brokerURL)

	// Client identification
	clientOpts.SetClientID(opts.ClientID)

	// Clean session - start fresh on connect (no persistent session on broker)
	clientOpts.SetCleanSession(true)

	// Auto-reconnect with exponential backoff
	initial := opts.InitialBackoff
	if initial <= 0 {
		initial = defaultInitialBackoff
	}
	maxBackoff := opts.MaxBackoff
	if maxBackoff <= 0 {
		maxBackoff = defaultMaxBackoff
	}
	clientOpts.SetAutoReconnect(true)
	clientOpts.SetConnectRetry(true)
	clientOpts.SetConnectRetryInterval(initial)
	clientOpts.SetMaxReconnectInterval(maxBackoff)

	// Connection timeout
	clientOpts.SetConnectTimeout(defaultConnectTimeout)

	// Keepalive - broker sends PINGs to detect dead connections
	clientOpts.SetKeepAlive(defaultKeepAlive)

	// Mutual TLS
	tlsCfg := opts.TLS
	if tlsCfg == nil {
		tlsCfg = &tls.Config{MinVersion: tlsMinVersion}
	}
	clientOpts.SetTLSConfig(tlsCfg)

	return clientOpts
}
