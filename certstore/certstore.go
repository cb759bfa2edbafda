// Package certstore loads the certificate material the broker connection
// must present.
//
// The platform names a key/certificate pair during login with an opaque
// certificate identifier (for example "testiot.cert"). The material itself
// is distributed out of band; this package treats a directory as the store,
// expecting for an identifier ID the files ID.pem (certificate) and ID.pkey
// (private key), plus the broker's root CA as AmazonRootCA1.pem.
package certstore

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Domain errors for the certstore package.
var (
	// ErrNotFound is returned when the certificate pair for an identifier
	// is absent from the store.
	ErrNotFound = errors.New("certstore: certificate not found")

	// ErrInvalid is returned when certificate material exists but cannot
	// be parsed.
	ErrInvalid = errors.New("certstore: invalid certificate material")
)

// File naming inside a store directory.
const (
	certExt    = ".pem"
	keyExt     = ".pkey"
	rootCAFile = "AmazonRootCA1.pem"
)

// Dir is a filesystem-backed certificate store.
type Dir struct {
	path string
}

// NewDir creates a store rooted at the given directory. The directory must
// exist; individual certificate pairs are only checked when requested.
func NewDir(path string) (*Dir, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalid, path)
	}

	return &Dir{path: path}, nil
}

// TLSConfig builds the TLS client configuration for the certificate pair
// named by id: the client certificate and key from the store plus the
// broker root CA pool.
//
// Returns ErrNotFound when either half of the pair or the root CA is
// missing, and ErrInvalid when material exists but does not parse.
func (d *Dir) TLSConfig(id string) (*tls.Config, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty certificate identifier", ErrNotFound)
	}

	certPath := filepath.Join(d.path, id+certExt)
	keyPath := filepath.Join(d.path, id+keyExt)

	for _, p := range []string{certPath, keyPath} {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
		}
	}

	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, id, err)
	}

	pool, err := d.rootCAs()
	if err != nil {
		return nil, err
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      pool,
		MinVersion:   tls.VersionTLS12,
	}, nil
}

// rootCAs loads the broker root CA pool from the store.
func (d *Dir) rootCAs() (*x509.CertPool, error) {
	path := filepath.Join(d.path, rootCAFile)

	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("%w: %s contains no usable certificates", ErrInvalid, path)
	}

	return pool, nil
}
