package pool

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/nullbyte-labs/httpcore/pkg/conn"
	"github.com/nullbyte-labs/httpcore/pkg/herrors"
)

var errNotNetConn = errors.New("underlying stream is not a net.Conn; cannot negotiate TLS")

// DefaultRawDialer returns a RawDialer backed by net.Dialer, grounded on
// the teacher's connectTCP (pkg/transport.Transport.connectTCP).
func DefaultRawDialer(timeout time.Duration) RawDialer {
	return func(ctx context.Context, host string, port uint16) (conn.Conn, error) {
		dialer := &net.Dialer{Timeout: timeout}
		addr := net.JoinHostPort(host, strconv.Itoa(int(port)))
		nc, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, herrors.ConnectionFailure(host, int(port), err)
		}
		if tcpConn, ok := nc.(*net.TCPConn); ok {
			_ = tcpConn.SetKeepAlive(true)
			_ = tcpConn.SetKeepAlivePeriod(30 * time.Second)
		}
		return conn.FromReadWriteCloser(nc, 0), nil
	}
}

// DefaultTLSDialer returns a TLSDialer that upgrades a raw Conn in place,
// grounded on the teacher's upgradeTLS (pkg/transport.Transport.upgradeTLS).
// base, if non-nil, is cloned for every handshake so callers can pin
// RootCAs/ClientCertificates/MinVersion once and reuse it.
func DefaultTLSDialer(base *tls.Config) TLSDialer {
	return func(ctx context.Context, raw conn.Conn, host string, port uint16) (conn.Conn, error) {
		var cfg *tls.Config
		if base != nil {
			cfg = base.Clone()
		} else {
			cfg = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		if cfg.ServerName == "" {
			cfg.ServerName = host
		}
		cfg.NextProtos = []string{"http/1.1"}

		rwc, ok := conn.Unwrap(raw)
		if !ok {
			return nil, herrors.InternalIO("tls_upgrade", errNotNetConn)
		}
		nc, ok := rwc.(net.Conn)
		if !ok {
			return nil, herrors.InternalIO("tls_upgrade", errNotNetConn)
		}

		tlsConn := tls.Client(nc, cfg)
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			tlsConn.Close()
			return nil, herrors.ConnectionFailure(host, int(port), err)
		}
		return conn.FromReadWriteCloser(tlsConn, 0), nil
	}
}
