package pool

import (
	"context"
	"fmt"
	"net"
	"strings"

	netproxy "golang.org/x/net/proxy"

	"github.com/nullbyte-labs/httpcore/pkg/conn"
	"github.com/nullbyte-labs/httpcore/pkg/herrors"
)

// ProxyKind selects the upstream proxy protocol.
type ProxyKind int

const (
	// ProxyHTTPConnect tunnels via an HTTP/1.1 CONNECT request, grounded
	// on the teacher's connectViaHTTPProxy.
	ProxyHTTPConnect ProxyKind = iota
	// ProxySOCKS5 dials via golang.org/x/net/proxy, grounded on the
	// teacher's connectViaSOCKS5Proxy.
	ProxySOCKS5
)

// ProxyDialer opens a connection to target through proxyHost:proxyPort.
type ProxyDialer func(ctx context.Context, proxyHost string, proxyPort uint16, targetHost string, targetPort uint16) (conn.Conn, error)

// HTTPConnectDialer tunnels through an HTTP/1.1 CONNECT proxy, grounded on
// the teacher's connectViaHTTPProxy (pkg/transport).
func HTTPConnectDialer(raw RawDialer) ProxyDialer {
	return func(ctx context.Context, proxyHost string, proxyPort uint16, targetHost string, targetPort uint16) (conn.Conn, error) {
		c, err := raw(ctx, proxyHost, proxyPort)
		if err != nil {
			return nil, err
		}

		target := fmt.Sprintf("%s:%d", targetHost, targetPort)
		req := fmt.Sprintf("CONNECT %s HTTP/1.1\r\nHost: %s\r\nConnection: keep-alive\r\n\r\n", target, target)
		if _, err := c.Write([]byte(req)); err != nil {
			c.Close()
			return nil, herrors.ProxyConnectException(proxyHost, int(proxyPort), 0)
		}

		buffered := conn.NewBuffered(c, 4096)
		line, err := buffered.ReadLine(4096)
		if err != nil {
			c.Close()
			return nil, herrors.ProxyConnectException(proxyHost, int(proxyPort), 0)
		}
		if !strings.Contains(string(line), " 200") {
			c.Close()
			return nil, herrors.ProxyConnectException(proxyHost, int(proxyPort), statusFromLine(line))
		}
		for {
			l, err := buffered.ReadLine(4096)
			if err != nil {
				c.Close()
				return nil, herrors.ProxyConnectException(proxyHost, int(proxyPort), 0)
			}
			if len(l) == 2 { // bare CRLF: end of CONNECT response headers
				break
			}
		}
		return c, nil
	}
}

func statusFromLine(line []byte) int {
	parts := strings.SplitN(string(line), " ", 3)
	if len(parts) < 2 {
		return 0
	}
	var code int
	fmt.Sscanf(parts[1], "%d", &code)
	return code
}

// SOCKS5Dialer tunnels through a SOCKS5 proxy using golang.org/x/net/proxy,
// grounded on the teacher's connectViaSOCKS5Proxy (pkg/transport).
func SOCKS5Dialer(username, password string) ProxyDialer {
	return func(ctx context.Context, proxyHost string, proxyPort uint16, targetHost string, targetPort uint16) (conn.Conn, error) {
		var auth *netproxy.Auth
		if username != "" {
			auth = &netproxy.Auth{User: username, Password: password}
		}
		proxyAddr := fmt.Sprintf("%s:%d", proxyHost, proxyPort)
		dialer, err := netproxy.SOCKS5("tcp", proxyAddr, auth, &net.Dialer{})
		if err != nil {
			return nil, herrors.ProxyConnectException(proxyHost, int(proxyPort), 0)
		}
		targetAddr := fmt.Sprintf("%s:%d", targetHost, targetPort)
		nc, err := dialer.Dial("tcp", targetAddr)
		if err != nil {
			return nil, herrors.ProxyConnectException(proxyHost, int(proxyPort), 0)
		}
		return conn.FromReadWriteCloser(nc, 0), nil
	}
}
