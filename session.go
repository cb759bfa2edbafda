package govee

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/towlerj/govee-api/internal/infrastructure/mqtt"
)

// CertificateProvider supplies the TLS client configuration for the broker
// connection. Implementations are keyed by the opaque certificate
// identifier issued during login; see the certstore package for a
// filesystem-backed implementation.
type CertificateProvider interface {
	TLSConfig(id string) (*tls.Config, error)
}

// brokerConn is the slice of broker capability the Session consumes. The
// production implementation wraps internal/infrastructure/mqtt; tests
// substitute a fake via the session's dial hook.
type brokerConn interface {
	Publish(topic string, payload []byte) error
	Subscribe(topic string, handler mqtt.MessageHandler) error
	Disconnect()
}

// brokerSettings carries everything a dialer needs to reach the broker.
type brokerSettings struct {
	Host           string
	Port           int
	ClientID       string
	TLS            *tls.Config
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// Logger receives connection lifecycle events and handler errors
	// surfaced inside the broker client, where the session cannot see them.
	Logger Logger
}

// brokerDialer establishes a broker connection.
type brokerDialer func(settings brokerSettings) (brokerConn, error)

// Session is the client: it owns the credentials, the login-token
// lifecycle, the device registry and the broker subscription.
//
// A Session moves between two states: unauthenticated (no valid token) and
// authenticated (valid token, account topic and live broker subscription,
// always established together). Login, registry refreshes and command
// publishes all pass through the login gate first, so an expired token is
// renewed transparently; the gate is idempotent when the session is already
// authenticated.
//
// All methods are safe for concurrent use. Registry and token state are
// serialised behind one mutex shared by caller-invoked operations and the
// broker message callback. Event sink notifications fire synchronously but
// outside that mutex, so a sink may call back into the Session.
type Session struct {
	cfg    Config
	rest   *restClient
	certs  CertificateProvider
	dial   brokerDialer
	now    func() time.Time
	logger Logger

	sinkMu sync.RWMutex
	sink   EventSink

	mu      sync.Mutex
	token   string
	topic   string
	certID  string
	devices map[string]*Device
	broker  brokerConn
	closed  bool
}

// New creates a Session for the given account. The certificate provider is
// consulted on every login for the key/certificate pair named by the
// platform; logins fail with ErrCertificate when the material is absent.
//
// The Session performs no network traffic until Login, RefreshDeviceList or
// a device command is invoked.
func New(cfg Config, certs CertificateProvider) (*Session, error) {
	if cfg.Email == "" || cfg.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrLoginFailed)
	}
	if certs == nil {
		return nil, fmt.Errorf("%w: no certificate provider", ErrCertificate)
	}

	cfg = cfg.withDefaults()
	now := time.Now

	return &Session{
		cfg:     cfg,
		rest:    newRESTClient(cfg, now),
		certs:   certs,
		dial:    dialBroker,
		now:     now,
		logger:  noopLogger{},
		devices: make(map[string]*Device),
	}, nil
}

// dialBroker is the production broker dialer. The session's logger is
// handed to the broker client so decode failures returned by the message
// handler and reconnect events, both invisible to the session itself, still
// reach the operator's log.
func dialBroker(settings brokerSettings) (brokerConn, error) {
	client, err := mqtt.Connect(mqtt.Options{
		Host:           settings.Host,
		Port:           settings.Port,
		ClientID:       settings.ClientID,
		TLS:            settings.TLS,
		InitialBackoff: settings.InitialBackoff,
		MaxBackoff:     settings.MaxBackoff,
	})
	if err != nil {
		return nil, err
	}

	if settings.Logger != nil {
		log := settings.Logger
		client.SetLogger(log)
		client.SetOnConnect(func() {
			log.Info("broker connection established")
		})
		client.SetOnDisconnect(func(err error) {
			log.Warn("broker connection lost", "error", err)
		})
	}

	return &brokerAdapter{client: client}, nil
}

// brokerAdapter narrows the infrastructure MQTT client to the brokerConn
// interface. State confirmation always arrives asynchronously over the
// account topic, so commands go out at QoS 0 like the vendor app's.
type brokerAdapter struct {
	client *mqtt.Client
}

func (a *brokerAdapter) Publish(topic string, payload []byte) error {
	return a.client.Publish(topic, payload, 0, false)
}

func (a *brokerAdapter) Subscribe(topic string, handler mqtt.MessageHandler) error {
	return a.client.Subscribe(topic, 0, handler)
}

func (a *brokerAdapter) Disconnect() {
	_ = a.client.Close()
}

// SetLogger sets the logger for the session. Set it before Login: the
// broker connection established there captures the logger for handler and
// reconnect diagnostics.
func (s *Session) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	s.logger = logger
}

// SetEventSink installs the registry change observer. At most one sink is
// active; passing nil discards notifications again.
func (s *Session) SetEventSink(sink EventSink) {
	s.sinkMu.Lock()
	s.sink = sink
	s.sinkMu.Unlock()
}

// ClientID returns the stable client identifier in use. Callers should
// persist it and pass it back via Config.ClientID on later runs.
func (s *Session) ClientID() string {
	return s.cfg.ClientID
}

// Login establishes an authenticated session: the REST login exchange, the
// broker connection with the issued certificate pair, and the account topic
// subscription. Calling Login on an already authenticated session is a
// no-op, so it is safe to call eagerly.
func (s *Session) Login(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureSessionLocked(ctx)
}

// ensureSessionLocked is the login gate. It re-establishes token, topic and
// broker subscription whenever any of them is missing or the token has
// expired. The token and topic are committed together and cleared together;
// a failure at any step leaves the session cleanly unauthenticated.
func (s *Session) ensureSessionLocked(ctx context.Context) error {
	if s.closed {
		return ErrClosed
	}
	if s.broker != nil && s.topic != "" && tokenValid(s.token, s.now()) {
		return nil
	}

	res, err := s.rest.login(ctx)
	if err != nil {
		return err
	}
	if res.Status != statusOK {
		return fmt.Errorf("%w: status %d (%s)", ErrLoginFailed, res.Status, res.Message)
	}
	if !tokenValid(res.Client.Token, s.now()) {
		return fmt.Errorf("%w: %q", ErrInvalidToken, res.Client.Token)
	}
	if res.Client.Topic == "" {
		return fmt.Errorf("%w: login response carries no account topic", ErrProtocol)
	}

	tlsCfg, err := s.certs.TLSConfig(res.Client.CertificateID)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrCertificate, res.Client.CertificateID, err)
	}

	// Best-effort teardown of any previous broker connection before the
	// new certificate pair takes over.
	if s.broker != nil {
		s.broker.Disconnect()
		s.broker = nil
	}
	s.token = ""
	s.topic = ""

	conn, err := s.dial(brokerSettings{
		Host:           s.cfg.BrokerHost,
		Port:           s.cfg.BrokerPort,
		ClientID:       s.cfg.ClientID,
		TLS:            tlsCfg,
		InitialBackoff: s.cfg.BrokerInitialReconnectDelay,
		MaxBackoff:     s.cfg.BrokerMaxReconnectDelay,
		Logger:         s.logger,
	})
	if err != nil {
		return fmt.Errorf("connecting to broker: %w", err)
	}

	if err := conn.Subscribe(res.Client.Topic, s.handleMessage); err != nil {
		conn.Disconnect()
		return fmt.Errorf("subscribing account topic: %w", err)
	}

	s.token = res.Client.Token
	s.topic = res.Client.Topic
	s.certID = res.Client.CertificateID
	s.broker = conn

	s.logger.Info("session established",
		"topic", s.topic,
		"certificate", s.certID,
	)
	return nil
}

// RefreshDeviceList reconciles the registry against the REST device list.
//
// Known identifiers have their display name updated in place; previously
// unseen identifiers are constructed via the SKU factory and announced
// through OnNewDevice. Registry entries are never removed: the platform
// does not report deletions, only re-syncs. After reconciliation every
// registry device receives a best-effort status poll over the broker so
// state catches up without waiting for organic updates.
func (s *Session) RefreshDeviceList(ctx context.Context) error {
	s.mu.Lock()
	if err := s.ensureSessionLocked(ctx); err != nil {
		s.mu.Unlock()
		return err
	}

	added, err := s.refreshLocked(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	all := make([]*Device, 0, len(s.devices))
	for _, d := range s.devices {
		all = append(all, d)
	}
	s.mu.Unlock()

	for _, d := range added {
		s.notifyNewDevice(d)
	}

	for _, d := range all {
		if pollErr := d.RequestStatus(); pollErr != nil {
			s.logger.Debug("status poll failed", "device", d.ID(), "error", pollErr)
		}
	}

	return nil
}

// refreshLocked fetches the device list and merges it into the registry.
// It returns the devices added so the caller can notify the sink after
// releasing the session mutex.
func (s *Session) refreshLocked(ctx context.Context) ([]*Device, error) {
	res, err := s.rest.deviceList(ctx, s.token)
	if err != nil {
		return nil, err
	}
	if res.Status != statusOK {
		return nil, fmt.Errorf("%w: device list status %d (%s)", ErrProtocol, res.Status, res.Message)
	}

	var added []*Device
	for _, entry := range res.Devices {
		if entry.Device == "" || entry.SKU == "" {
			s.logger.Debug("skipping device list entry without identifier or SKU")
			continue
		}

		var settings deviceSettings
		if err := json.Unmarshal([]byte(entry.DeviceExt.DeviceSettings), &settings); err != nil || settings.Topic == "" {
			s.logger.Debug("skipping device without publish topic",
				"device", entry.Device,
				"sku", entry.SKU,
			)
			continue
		}

		if existing, ok := s.devices[entry.Device]; ok {
			existing.setName(entry.DeviceName)
			existing.setMetadata(metadataFrom(entry, settings))
			continue
		}

		kind, err := KindForSKU(entry.SKU)
		if err != nil {
			s.logger.Debug("skipping device", "device", entry.Device, "error", err)
			continue
		}

		connected := TristateUnknown
		var last lastDeviceData
		if err := json.Unmarshal([]byte(entry.DeviceExt.LastDeviceData), &last); err == nil && last.Online != nil {
			connected = tristateOf(*last.Online)
		}

		d := newDevice(s, entry.Device, settings.Topic, entry.SKU, kind, entry.DeviceName, connected)
		d.setMetadata(metadataFrom(entry, settings))
		s.devices[entry.Device] = d
		added = append(added, d)
	}

	s.logger.Info("device registry refreshed",
		"devices", len(s.devices),
		"added", len(added),
	)
	return added, nil
}

// metadataFrom assembles device metadata from a list entry, preferring the
// nested settings document over the top-level fields.
func metadataFrom(entry deviceEntry, settings deviceSettings) Metadata {
	meta := Metadata{
		BLEName:         settings.BLEName,
		WiFiName:        settings.WiFiName,
		Address:         settings.Address,
		HardwareVersion: settings.VersionHard,
		SoftwareVersion: settings.VersionSoft,
	}
	if meta.HardwareVersion == "" {
		meta.HardwareVersion = entry.VersionHard
	}
	if meta.SoftwareVersion == "" {
		meta.SoftwareVersion = entry.VersionSoft
	}
	return meta
}

// Devices returns a snapshot of the registry. The slice is fresh; the
// Device pointers are the live registry entries, which are themselves safe
// for concurrent use.
func (s *Session) Devices() []*Device {
	s.mu.Lock()
	defer s.mu.Unlock()

	devices := make([]*Device, 0, len(s.devices))
	for _, d := range s.devices {
		devices = append(devices, d)
	}
	return devices
}

// Device looks up a registry entry by its vendor identifier.
func (s *Session) Device(id string) (*Device, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.devices[id]
	return d, ok
}

// Close tears down the broker connection and invalidates the session.
// Closing an unauthenticated session is a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.broker != nil {
		s.broker.Disconnect()
		s.broker = nil
	}
	s.token = ""
	s.topic = ""
	s.closed = true
}

// inboundMessage is the envelope of a broker message. The enclosing msg and
// proType fields exist on the wire but are unused at this layer.
type inboundMessage struct {
	State *stateDelta `json:"state"`
}

// handleMessage processes one inbound broker message.
//
// Decode failures drop the message and never terminate processing. A delta
// for an identifier missing from the registry triggers exactly one registry
// refresh as a recovery attempt; if the identifier is still unknown after
// that, the message is discarded.
func (s *Session) handleMessage(_ string, payload []byte) error {
	var msg inboundMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if msg.State == nil {
		return fmt.Errorf("%w: missing state object", ErrDecode)
	}
	if err := msg.State.validate(); err != nil {
		return err
	}

	var added []*Device

	s.mu.Lock()
	d, ok := s.devices[msg.State.Device]
	if !ok {
		// Unknown device: refresh the registry once before giving up. The
		// refresh re-enters the login gate like any other refresh.
		if err := s.ensureSessionLocked(context.Background()); err == nil {
			if refreshed, err := s.refreshLocked(context.Background()); err == nil {
				added = refreshed
			} else {
				s.logger.Warn("recovery refresh failed", "error", err)
			}
		}
		d, ok = s.devices[msg.State.Device]
	}
	s.mu.Unlock()

	for _, nd := range added {
		s.notifyNewDevice(nd)
	}

	if !ok {
		s.logger.Debug("dropping state for unknown device", "device", msg.State.Device)
		return nil
	}

	d.applyState(msg.State)
	s.notifyDeviceUpdate(d)
	return nil
}

// commandPayload is the outbound publish envelope.
type commandPayload struct {
	Msg commandMessage `json:"msg"`
}

type commandMessage struct {
	AccountTopic string         `json:"accountTopic"`
	Cmd          string         `json:"cmd"`
	CmdVersion   int            `json:"cmdVersion"`
	Data         map[string]any `json:"data"`
	Transaction  string         `json:"transaction"`
	Type         int            `json:"type"`
}

// publishCommand implements commandPublisher. It passes the login gate,
// wraps the command in the platform envelope and publishes it to the
// device's own topic. The publish itself happens outside the session mutex
// so outbound traffic never blocks inbound processing.
func (s *Session) publishCommand(d *Device, cmd string, data map[string]any) error {
	s.mu.Lock()
	if err := s.ensureSessionLocked(context.Background()); err != nil {
		s.mu.Unlock()
		return err
	}
	broker := s.broker
	payload := commandPayload{
		Msg: commandMessage{
			AccountTopic: s.topic,
			Cmd:          cmd,
			CmdVersion:   0,
			Data:         data,
			Transaction:  strconv.FormatInt(s.now().UnixMilli(), 10),
			Type:         1,
		},
	}
	s.mu.Unlock()

	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s command: %w", cmd, err)
	}

	return broker.Publish(d.topic, encoded)
}

// notifyNewDevice invokes the sink outside the session mutex.
func (s *Session) notifyNewDevice(d *Device) {
	s.sinkMu.RLock()
	sink := s.sink
	s.sinkMu.RUnlock()

	if sink != nil {
		sink.OnNewDevice(s, d)
	}
}

// notifyDeviceUpdate invokes the sink outside the session mutex.
func (s *Session) notifyDeviceUpdate(d *Device) {
	s.sinkMu.RLock()
	sink := s.sink
	s.sinkMu.RUnlock()

	if sink != nil {
		sink.OnDeviceUpdate(s, d)
	}
}
