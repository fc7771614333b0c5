package config

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// TemporalTLS returns the TLS settings for the Temporal client, or nil for a
// plaintext connection. A CA without a client certificate yields server-only
// TLS, which is what a Temporal frontend behind a private CA needs.
func (c *Config) TemporalTLS() (*tls.Config, error) {
	if c.TemporalTLSCert == "" && c.TemporalTLSKey == "" && c.TemporalTLSCACert == "" {
		return nil, nil
	}

	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12,
		ServerName: c.TemporalTLSServerName,
	}

	if c.TemporalTLSCert != "" {
		cert, err := tls.LoadX509KeyPair(c.TemporalTLSCert, c.TemporalTLSKey)
		if err != nil {
			return nil, fmt.Errorf("load temporal client cert: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	if c.TemporalTLSCACert != "" {
		pool, err := loadCAPool(c.TemporalTLSCACert)
		if err != nil {
			return nil, fmt.Errorf("temporal CA: %w", err)
		}
		tlsConfig.RootCAs = pool
	}

	return tlsConfig, nil
}

func loadCAPool(path string) (*x509.CertPool, error) {
	caPEM, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPEM) {
		return nil, fmt.Errorf("no certificates in %s", path)
	}
	return pool, nil
}
