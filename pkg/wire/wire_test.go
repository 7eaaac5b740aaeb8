package wire

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nullbyte-labs/httpcore/pkg/request"
)

// recordingConn captures everything written to it; Read is unused by Encode.
type recordingConn struct {
	bytes.Buffer
}

func (c *recordingConn) Read() ([]byte, error) { return nil, nil }
func (c *recordingConn) Close() error          { return nil }

func TestEncodeGetRequestLineAndHost(t *testing.T) {
	req, err := request.ParseURL("http://example.com/search?q=go")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c := &recordingConn{}
	if err := Encode(c, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := c.String()
	if !strings.HasPrefix(out, "GET /search?q=go HTTP/1.1\r\n") {
		t.Fatalf("unexpected request line: %q", out)
	}
	if !strings.Contains(out, "Host: example.com\r\n") {
		t.Fatalf("missing Host header: %q", out)
	}
	if !strings.Contains(out, "Accept-Encoding: gzip\r\n") {
		t.Fatalf("missing default Accept-Encoding: %q", out)
	}
	if !strings.HasSuffix(out, "\r\n\r\n") {
		t.Fatalf("missing terminating blank line: %q", out)
	}
}

func TestEncodeOmitsContentLengthForBodylessGET(t *testing.T) {
	req, err := request.ParseURL("http://example.com/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c := &recordingConn{}
	if err := Encode(c, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(c.String(), "Content-Length") {
		t.Fatalf("GET with no body must not carry Content-Length: %q", c.String())
	}
}

func TestEncodeWritesContentLengthForKnownBody(t *testing.T) {
	req, err := request.ParseURL("http://example.com/submit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req.Method = "POST"
	req.Body = request.BytesBody([]byte("hello"))

	c := &recordingConn{}
	if err := Encode(c, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := c.String()
	if !strings.Contains(out, "Content-Length: 5\r\n") {
		t.Fatalf("missing Content-Length: %q", out)
	}
	if !strings.HasSuffix(out, "hello") {
		t.Fatalf("body not written: %q", out)
	}
}

func TestEncodeChunksUnknownLengthBody(t *testing.T) {
	req, err := request.ParseURL("http://example.com/upload")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req.Method = "POST"
	req.Body = request.ChunkedStreamBody(strings.NewReader("abc"))

	c := &recordingConn{}
	if err := Encode(c, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := c.String()
	if !strings.Contains(out, "Transfer-Encoding: chunked\r\n") {
		t.Fatalf("missing chunked framing header: %q", out)
	}
	if !strings.Contains(out, "3\r\nabc\r\n") {
		t.Fatalf("missing chunk body: %q", out)
	}
	if !strings.HasSuffix(out, "0\r\n\r\n") {
		t.Fatalf("missing terminating chunk: %q", out)
	}
}

func TestEncodeRespectsCallerHostHeader(t *testing.T) {
	req, err := request.ParseURL("http://example.com/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req.Header.Add("Host", "override.example")

	c := &recordingConn{}
	if err := Encode(c, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := c.String()
	if strings.Count(out, "Host:") != 1 {
		t.Fatalf("expected exactly one Host header, got: %q", out)
	}
	if !strings.Contains(out, "Host: override.example\r\n") {
		t.Fatalf("caller's Host header should win: %q", out)
	}
}

func TestEncodeSuppressesEmptyAcceptEncoding(t *testing.T) {
	req, err := request.ParseURL("http://example.com/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req.Header.Add("Accept-Encoding", "")

	c := &recordingConn{}
	if err := Encode(c, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(c.String(), "Accept-Encoding") {
		t.Fatalf("an explicit empty Accept-Encoding should suppress the header entirely: %q", c.String())
	}
}

func TestEncodeHeaderOrderMatchesCallerOrder(t *testing.T) {
	req, err := request.ParseURL("http://example.com/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req.Header.Add("X-First", "1")
	req.Header.Add("X-Second", "2")
	req.Header.Add("X-Third", "3")

	c := &recordingConn{}
	if err := Encode(c, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var gotOrder []string
	for _, line := range strings.Split(c.String(), "\r\n") {
		if strings.HasPrefix(line, "X-") {
			gotOrder = append(gotOrder, strings.SplitN(line, ":", 2)[0])
		}
	}
	wantOrder := []string{"X-First", "X-Second", "X-Third"}
	if diff := cmp.Diff(wantOrder, gotOrder); diff != "" {
		t.Fatalf("caller-added headers must be encoded in insertion order (-want +got):\n%s", diff)
	}
}

func TestEncodeUsesAbsoluteFormThroughPlainProxy(t *testing.T) {
	req, err := request.ParseURL("http://example.com/path")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	request.AddProxy("proxy.local", 8080, req)

	c := &recordingConn{}
	if err := Encode(c, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(c.String(), "GET http://example.com/path HTTP/1.1\r\n") {
		t.Fatalf("expected absolute-form request target via proxy: %q", c.String())
	}
}
