// Package mqtt provides MQTT connectivity to the vendor's managed message
// broker.
//
// This package manages:
//   - Mutually authenticated TLS connections (account certificate pair)
//   - Message publishing to per-device command topics
//   - The per-account state topic subscription
//   - Automatic reconnection with exponential backoff
//
// # Architecture
//
// The platform exposes one inbound topic per account, delivered by the REST
// login exchange, and one outbound topic per device, delivered by the
// device list. All device state flows through the account topic; all
// commands flow through device topics. The broker is an AWS IoT endpoint
// which only admits clients presenting the certificate pair named in the
// login response.
//
//	Session ── publish ──▶ per-device topic ──▶ device
//	Session ◀─ subscribe ─ account topic ◀──── device state deltas
//
// # Usage
//
//	client, err := mqtt.Connect(mqtt.Options{
//	    Host:     "example-ats.iot.us-east-1.amazonaws.com",
//	    Port:     8883,
//	    ClientID: clientID,
//	    TLS:      tlsConfig,
//	})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(accountTopic, 0,
//	    func(topic string, payload []byte) error {
//	        return decodeStateDelta(payload)
//	    })
//
// # Delivery Characteristics
//
//   - Commands are published at QoS 0; the protocol is eventually
//     consistent and confirmation arrives as a state delta, so redelivery
//     buys nothing.
//   - Reconnect uses exponential backoff between the configured bounds;
//     the account topic subscription is restored automatically.
package mqtt
