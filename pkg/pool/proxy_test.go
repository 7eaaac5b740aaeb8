package pool

import (
	"bytes"
	"context"
	"testing"

	"github.com/nullbyte-labs/httpcore/pkg/conn"
)

// scriptedConn replays a canned response byte-by-byte and records writes.
type scriptedConn struct {
	written bytes.Buffer
	resp    []byte
	pos     int
}

func (c *scriptedConn) Write(p []byte) (int, error) {
	c.written.Write(p)
	return len(p), nil
}

func (c *scriptedConn) Read() ([]byte, error) {
	if c.pos >= len(c.resp) {
		return nil, nil
	}
	// Return one byte at a time to exercise ReadLine's loop explicitly.
	b := c.resp[c.pos : c.pos+1]
	c.pos++
	return b, nil
}

func (c *scriptedConn) Close() error { return nil }

func rawDialerReturning(c conn.Conn) RawDialer {
	return func(ctx context.Context, host string, port uint16) (conn.Conn, error) {
		return c, nil
	}
}

func TestHTTPConnectDialerSuccess(t *testing.T) {
	sc := &scriptedConn{resp: []byte("HTTP/1.1 200 Connection Established\r\n\r\n")}
	dialer := HTTPConnectDialer(rawDialerReturning(sc))

	got, err := dialer(context.Background(), "proxy.local", 8080, "example.com", 443)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != sc {
		t.Fatal("expected the dialer to return the same underlying Conn")
	}
	if !bytes.Contains(sc.written.Bytes(), []byte("CONNECT example.com:443 HTTP/1.1\r\n")) {
		t.Fatalf("unexpected CONNECT request: %q", sc.written.String())
	}
}

func TestHTTPConnectDialerRejectsNon200(t *testing.T) {
	sc := &scriptedConn{resp: []byte("HTTP/1.1 407 Proxy Authentication Required\r\n\r\n")}
	dialer := HTTPConnectDialer(rawDialerReturning(sc))

	_, err := dialer(context.Background(), "proxy.local", 8080, "example.com", 443)
	if err == nil {
		t.Fatal("expected an error for a non-200 CONNECT response")
	}
}
