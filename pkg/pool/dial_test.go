package pool

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/nullbyte-labs/httpcore/pkg/herrors"
)

func TestDefaultRawDialerConnectsToListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("unexpected error starting listener: %v", err)
	}
	defer ln.Close()
	go func() {
		c, err := ln.Accept()
		if err == nil {
			c.Close()
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	dial := DefaultRawDialer(time.Second)

	c, err := dial(context.Background(), "127.0.0.1", uint16(addr.Port))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()
}

func TestDefaultRawDialerFailsOnClosedPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("unexpected error starting listener: %v", err)
	}
	addr := ln.Addr().(*net.TCPAddr)
	ln.Close() // nothing listens here anymore

	dial := DefaultRawDialer(time.Second)
	_, err = dial(context.Background(), "127.0.0.1", uint16(addr.Port))
	if herrors.Of(err) != herrors.KindConnectionFailure {
		t.Fatalf("expected KindConnectionFailure, got %v", err)
	}
}

func TestDefaultRawDialerRespectsContextCancellation(t *testing.T) {
	dial := DefaultRawDialer(time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	port, _ := strconv.Atoi("80")
	_, err := dial(ctx, "10.255.255.1", uint16(port))
	if err == nil {
		t.Fatal("expected an error when the context is already cancelled")
	}
}
