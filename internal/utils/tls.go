package utils

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// TLSFiles names PEM files used to connect to the queue broker.
type TLSFiles struct {
	CACert string
	Cert   string
	Key    string
}

// Config builds a client tls config, or nil if no files are set.
func (f *TLSFiles) Config() (*tls.Config, error) {
	if f == nil || (f.CACert == "" && f.Cert == "" && f.Key == "") {
		return nil, nil
	}

	cfg := &tls.Config{MinVersion: tls.VersionTLS12}

	if (f.Cert == "") != (f.Key == "") {
		return nil, fmt.Errorf("tls cert and key must be given together")
	}
	if f.Cert != "" {
		pair, err := tls.LoadX509KeyPair(f.Cert, f.Key)
		if err != nil {
			return nil, fmt.Errorf("loading tls key pair: %w", err)
		}
		cfg.Certificates = []tls.Certificate{pair}
	}

	if f.CACert != "" {
		pem, err := os.ReadFile(f.CACert)
		if err != nil {
			return nil, fmt.Errorf("reading ca cert: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", f.CACert)
		}
		cfg.RootCAs = pool
	}

	return cfg, nil
}
