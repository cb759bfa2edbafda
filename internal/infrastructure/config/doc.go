// Package config loads and validates the goveectl CLI configuration.
//
// Configuration comes from a YAML file with environment variable
// overrides, so credentials can stay out of version-controlled files:
//
//	account:
//	  email: user@example.com
//	  # password via GOVEE_ACCOUNT_PASSWORD
//	  client_id: ""          # persisted after first run
//	certificates:
//	  dir: ./certs
//	logging:
//	  level: info
//	  format: text
//
// The api and broker sections exist only to point the client at a
// different deployment (for testing against a mock platform); production
// endpoints are the library defaults and need no configuration.
//
// The library itself does not consume this package: a Session takes an
// explicit govee.Config value. This package maps the operator-facing file
// onto that value.
package config
