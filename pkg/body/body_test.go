package body

import (
	"bufio"
	"io"
	"strings"
	"testing"

	"github.com/nullbyte-labs/httpcore/pkg/request"
)

func TestSelectNoBodyForHeadAndNoContentStatuses(t *testing.T) {
	h := &request.Header{}
	if _, _, noBody := Select("HEAD", 200, h); !noBody {
		t.Fatal("HEAD responses must never carry a body")
	}
	if _, _, noBody := Select("GET", 204, h); !noBody {
		t.Fatal("204 responses must never carry a body")
	}
	if _, _, noBody := Select("GET", 304, h); !noBody {
		t.Fatal("304 responses must never carry a body")
	}
	if _, _, noBody := Select("GET", 101, h); !noBody {
		t.Fatal("1xx responses must never carry a body")
	}
}

func TestSelectPrefersChunkedOverContentLength(t *testing.T) {
	h := &request.Header{}
	h.Add("Transfer-Encoding", "chunked")
	h.Add("Content-Length", "100")

	framing, _, noBody := Select("GET", 200, h)
	if noBody {
		t.Fatal("200 with a body-bearing framing must not be noBody")
	}
	if framing != FramingChunked {
		t.Fatalf("chunked must take priority over Content-Length, got %v", framing)
	}
}

func TestSelectFallsBackToEOFFraming(t *testing.T) {
	h := &request.Header{}
	framing, _, noBody := Select("GET", 200, h)
	if noBody {
		t.Fatal("200 without any framing header still carries a body, framed by EOF")
	}
	if framing != FramingEOF {
		t.Fatalf("want FramingEOF, got %v", framing)
	}
}

func TestReaderContentLengthFraming(t *testing.T) {
	br := bufio.NewReader(strings.NewReader("hello world"))
	var marked bool
	tracker := trackerFunc(func() { marked = true })

	r := NewReader(FramingContentLength, br, 5, tracker, nil)
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("got %q", data)
	}
	if !marked {
		t.Fatal("a cleanly finished Content-Length body should mark the connection reusable")
	}
	if !r.Reusable() {
		t.Fatal("Reusable() should report true after a clean finish")
	}
}

func TestReaderContentLengthTooShortErrors(t *testing.T) {
	br := bufio.NewReader(strings.NewReader("hi"))
	r := NewReader(FramingContentLength, br, 10, NoopTracker, nil)

	_, err := io.ReadAll(r)
	if err == nil {
		t.Fatal("expected an error when the connection closes before Content-Length bytes arrive")
	}
}

func TestReaderEOFFramingNeverMarksReusable(t *testing.T) {
	br := bufio.NewReader(strings.NewReader("whatever remains"))
	var marked bool
	tracker := trackerFunc(func() { marked = true })

	r := NewReader(FramingEOF, br, 0, tracker, nil)
	if _, err := io.ReadAll(r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if marked {
		t.Fatal("EOF-delimited bodies must never be marked reusable")
	}
}

func TestReaderChunkedFraming(t *testing.T) {
	raw := "5\r\nhello\r\n6\r\n world\r\n0\r\n\r\n"
	br := bufio.NewReader(strings.NewReader(raw))
	var marked bool
	tracker := trackerFunc(func() { marked = true })

	r := NewReader(FramingChunked, br, 0, tracker, nil)
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "hello world" {
		t.Fatalf("got %q", data)
	}
	if !marked {
		t.Fatal("a cleanly finished chunked body should mark the connection reusable")
	}
}

func TestReaderChunkedFramingWithTrailers(t *testing.T) {
	raw := "3\r\nabc\r\n0\r\nX-Trailer: value\r\n\r\n"
	br := bufio.NewReader(strings.NewReader(raw))
	r := NewReader(FramingChunked, br, 0, NoopTracker, nil)

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "abc" {
		t.Fatalf("got %q", data)
	}
}

func TestReaderChunkedInvalidSizeErrors(t *testing.T) {
	br := bufio.NewReader(strings.NewReader("not-hex\r\nabc\r\n"))
	r := NewReader(FramingChunked, br, 0, NoopTracker, nil)

	if _, err := io.ReadAll(r); err == nil {
		t.Fatal("expected an error for a malformed chunk size")
	}
}

func TestReaderOnEOFFiresExactlyOnce(t *testing.T) {
	br := bufio.NewReader(strings.NewReader("ab"))
	count := 0
	r := NewReader(FramingContentLength, br, 2, NoopTracker, func() { count++ })

	io.ReadAll(r)
	io.ReadAll(r) // calling again after EOF must not refire onEOF
	if count != 1 {
		t.Fatalf("onEOF should fire exactly once, fired %d times", count)
	}
}

type trackerFunc func()

func (f trackerFunc) MarkReusable() { f() }
