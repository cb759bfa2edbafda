package govee

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Platform defaults observed from the vendor's mobile app traffic. They are
// configuration, not constants baked into call sites: a Session gets exactly
// one immutable Config at creation and never consults process globals.
const (
	defaultAPIHost    = "app.govee.com"
	defaultAPIKey     = "m20xwttRNzBIKE8KP8wP5Mz7S61aSFa8x9cYOTU9"
	defaultAppVersion = "3.2.1"
	defaultClientType = "0"
	defaultUserAgent  = "okhttp/3.12.0"
	defaultCountry    = "US"
	defaultLocale     = "en"
	defaultTimezone   = "America/Los_Angeles"

	defaultBrokerHost = "aqm3wd1qlc3dy-ats.iot.us-east-1.amazonaws.com"
	defaultBrokerPort = 8883

	defaultHTTPTimeout = 30 * time.Second

	defaultBrokerInitialReconnectDelay = 1 * time.Second
	defaultBrokerMaxReconnectDelay     = 32 * time.Second
)

// clientIDLength is the exact length of the opaque client identifier the
// platform expects.
const clientIDLength = 32

// Config holds the credentials and platform endpoints for a Session.
//
// Only Email and Password are required. Every other field defaults to the
// production platform values when left zero. ClientID should be persisted
// by the caller and passed back on later runs; when absent or not exactly
// 32 characters a fresh identifier is generated.
type Config struct {
	// Account credentials.
	Email    string
	Password string

	// ClientID is a stable 32-character opaque identifier for this client
	// installation. Generated when empty; read it back via
	// Session.ClientID for persistence.
	ClientID string

	// REST endpoint settings.
	APIHost    string
	APIKey     string
	AppVersion string
	ClientType string
	UserAgent  string
	Country    string
	Locale     string
	Timezone   string

	// Message broker endpoint.
	BrokerHost string
	BrokerPort int

	// HTTPTimeout bounds each REST exchange.
	HTTPTimeout time.Duration

	// Broker reconnect backoff bounds.
	BrokerInitialReconnectDelay time.Duration
	BrokerMaxReconnectDelay     time.Duration
}

// NewClientID generates a fresh 32-character opaque client identifier.
func NewClientID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// withDefaults returns a copy of the config with zero fields replaced by
// platform defaults and the client identifier normalised.
func (c Config) withDefaults() Config {
	if len(c.ClientID) != clientIDLength {
		c.ClientID = NewClientID()
	}
	if c.APIHost == "" {
		c.APIHost = defaultAPIHost
	}
	if c.APIKey == "" {
		c.APIKey = defaultAPIKey
	}
	if c.AppVersion == "" {
		c.AppVersion = defaultAppVersion
	}
	if c.ClientType == "" {
		c.ClientType = defaultClientType
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.Country == "" {
		c.Country = defaultCountry
	}
	if c.Locale == "" {
		c.Locale = defaultLocale
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if c.BrokerHost == "" {
		c.BrokerHost = defaultBrokerHost
	}
	if c.BrokerPort == 0 {
		c.BrokerPort = defaultBrokerPort
	}
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = defaultHTTPTimeout
	}
	if c.BrokerInitialReconnectDelay == 0 {
		c.BrokerInitialReconnectDelay = defaultBrokerInitialReconnectDelay
	}
	if c.BrokerMaxReconnectDelay == 0 {
		c.BrokerMaxReconnectDelay = defaultBrokerMaxReconnectDelay
	}
	return c
}
