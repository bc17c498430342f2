// Package transport establishes the TCP/TLS connection a session.Engine
// runs over, and supervises reconnection when that connection drops
// (spec.md §4.8). Grounded on the teacher's net.DialTimeout usage in its
// standalone FIX connection probes (fix/test_fix44_connection.go and
// siblings), generalized from one-shot diagnostic connects into a
// supervised, TLS-capable dial used by the long-running session engine.
package transport

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"os"
	"time"
)

const dialTimeout = 10 * time.Second

// Dial opens a TCP connection to host:port, upgrading to TLS when
// caCertPath is non-empty (spec.md §6.2's Config.TLSCACertPath: "presence
// implies TLS").
func Dial(ctx context.Context, host string, port uint16, caCertPath string) (net.Conn, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	dialer := &net.Dialer{Timeout: dialTimeout}

	if caCertPath == "" {
		return dialer.DialContext(ctx, "tcp", addr)
	}

	pool, err := loadCAPool(caCertPath)
	if err != nil {
		return nil, fmt.Errorf("transport: loading CA cert: %w", err)
	}
	tlsConfig := &tls.Config{RootCAs: pool, ServerName: host, MinVersion: tls.VersionTLS12}

	rawConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	tlsConn := tls.Client(rawConn, tlsConfig)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, fmt.Errorf("transport: TLS handshake: %w", err)
	}
	return tlsConn, nil
}

func loadCAPool(path string) (*x509.CertPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(data) {
		return nil, fmt.Errorf("transport: no valid certificates found in %s", path)
	}
	return pool, nil
}
