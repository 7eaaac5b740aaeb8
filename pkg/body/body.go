// Package body implements response body framing: C6 of httpcore. Grounded
// on the teacher's readChunkedBody / readFixedBody / readUntilClose
// (pkg/client/client.go), generalized from "read into a buffer.Buffer"
// into a lazy, single-pass io.Reader the caller streams at its own pace,
// per spec.md §3's "Response.body: lazy, single-pass sequence of chunks".
package body

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/nullbyte-labs/httpcore/pkg/herrors"
	"github.com/nullbyte-labs/httpcore/pkg/request"
)

// Framing selects which of the three raw framings (§4.6) applies to a
// response, in priority order.
type Framing int

const (
	FramingChunked Framing = iota
	FramingContentLength
	FramingEOF
)

// Select determines the framing for a response given its status code,
// request method, and headers, per RFC 9110 §6.4.1 (no body for 1xx, 204,
// 304, or HEAD responses) and §4.6's priority order otherwise.
func Select(method string, statusCode int, h *request.Header) (framing Framing, contentLength int64, noBody bool) {
	if method == "HEAD" ||
		(statusCode >= 100 && statusCode < 200) ||
		statusCode == 204 || statusCode == 304 {
		return FramingEOF, 0, true
	}

	te := strings.ToLower(h.Get("Transfer-Encoding"))
	if strings.Contains(te, "chunked") {
		return FramingChunked, 0, false
	}

	if cl := h.Get("Content-Length"); cl != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(cl), 10, 64)
		if err != nil || n < 0 {
			return FramingContentLength, 0, false
		}
		return FramingContentLength, n, false
	}

	return FramingEOF, 0, false
}

// reusabilityTracker is satisfied by the pool handle the driver passes in
// so the body stream can mark a connection reusable exactly once, at EOF.
type reusabilityTracker interface {
	MarkReusable()
}

// noopTracker discards MarkReusable calls, for bodies read outside a
// pooled-connection context (e.g. tests).
type noopTracker struct{}

func (noopTracker) MarkReusable() {}

// NoopTracker is the shared no-op reusabilityTracker.
var NoopTracker reusabilityTracker = noopTracker{}

// Reader is the lazy, single-pass response body stream. When the body
// ends it marks the connection reusable (if the end was clean and the
// framing permits) and invokes the registered release callback, each at
// most once; every later Read returns io.EOF.
type Reader struct {
	framing  Framing
	br       *bufio.Reader
	remain   int64 // for FramingContentLength
	done     bool
	reusable bool
	tracker  reusabilityTracker
	onEOF    func()
}

// NewReader constructs the body reader for the selected framing. br is the
// connection's residual buffered reader (after headers); tracker receives
// MarkReusable() when the body completes cleanly under a framing that
// permits reuse; onEOF (optional) fires exactly once when the stream
// reaches its end, successfully or not.
func NewReader(framing Framing, br *bufio.Reader, contentLength int64, tracker reusabilityTracker, onEOF func()) *Reader {
	if tracker == nil {
		tracker = NoopTracker
	}
	return &Reader{framing: framing, br: br, remain: contentLength, tracker: tracker, onEOF: onEOF}
}

// Read returns the next chunk of body bytes, or io.EOF when the body is
// exhausted.
func (r *Reader) Read(p []byte) (int, error) {
	if r.done {
		return 0, io.EOF
	}

	switch r.framing {
	case FramingContentLength:
		return r.readContentLength(p)
	case FramingChunked:
		return r.readChunked(p)
	default:
		return r.readUntilEOF(p)
	}
}

func (r *Reader) readContentLength(p []byte) (int, error) {
	if r.remain <= 0 {
		return r.finish(true, nil)
	}
	if int64(len(p)) > r.remain {
		p = p[:r.remain]
	}
	n, err := r.br.Read(p)
	r.remain -= int64(n)
	if err != nil {
		if err == io.EOF {
			if r.remain > 0 {
				return n, r.finishErr(herrors.ResponseBodyTooShort(r.remain+int64(n), int64(n)))
			}
			return n, nil
		}
		return n, r.finishErr(herrors.InternalIO("read_body", err))
	}
	if r.remain == 0 {
		// Defer the EOF marker to the next call so this call returns the
		// final bytes with a nil error, matching io.Reader convention.
	}
	return n, nil
}

func (r *Reader) readUntilEOF(p []byte) (int, error) {
	n, err := r.br.Read(p)
	if err == io.EOF {
		return n, r.finish(false, nil)
	}
	if err != nil {
		return n, r.finishErr(herrors.InternalIO("read_body", err))
	}
	return n, nil
}

// readChunked reads at most the rest of the current chunk per call,
// tracking it in r.remain so callers can use arbitrarily small p.
func (r *Reader) readChunked(p []byte) (int, error) {
	if r.remain == 0 {
		size, err := r.nextChunkSize()
		if err != nil {
			return 0, r.finishErr(err)
		}
		if size == 0 {
			if err := r.consumeTrailers(); err != nil {
				return 0, r.finishErr(err)
			}
			return r.finish(true, nil)
		}
		r.remain = size
	}

	if int64(len(p)) > r.remain {
		p = p[:r.remain]
	}
	n, err := io.ReadFull(r.br, p)
	r.remain -= int64(n)
	if err != nil {
		return n, r.finishErr(herrors.InternalIO("read_chunk_body", err))
	}
	if r.remain == 0 {
		if _, err := readCRLF(r.br); err != nil {
			return n, r.finishErr(herrors.InternalIO("read_chunk_crlf", err))
		}
	}
	return n, nil
}

func (r *Reader) nextChunkSize() (int64, error) {
	line, err := r.br.ReadString('\n')
	if err != nil {
		return 0, herrors.InvalidChunkHeader(line)
	}
	line = strings.TrimRight(line, "\r\n")
	sizeStr := line
	if idx := strings.IndexByte(line, ';'); idx >= 0 {
		sizeStr = line[:idx]
	}
	size, err := strconv.ParseInt(strings.TrimSpace(sizeStr), 16, 64)
	if err != nil {
		return 0, herrors.InvalidChunkHeader(line)
	}
	return size, nil
}

func (r *Reader) consumeTrailers() error {
	for {
		line, err := r.br.ReadString('\n')
		if err != nil {
			return herrors.InternalIO("read_trailer", err)
		}
		if strings.TrimRight(line, "\r\n") == "" {
			return nil
		}
	}
}

func readCRLF(br *bufio.Reader) (int, error) {
	buf := make([]byte, 2)
	return io.ReadFull(br, buf)
}

// finish marks end-of-stream. When reusable is true, the tracked
// connection is offered back to the pool.
func (r *Reader) finish(reusable bool, err error) (int, error) {
	r.done = true
	r.reusable = reusable
	if reusable {
		r.tracker.MarkReusable()
	}
	if r.onEOF != nil {
		r.onEOF()
	}
	if err != nil {
		return 0, err
	}
	return 0, io.EOF
}

func (r *Reader) finishErr(err error) error {
	_, e := r.finish(false, err)
	return e
}

// Reusable reports whether the body completed under a framing+drain that
// permits connection reuse. Valid only after Read has returned io.EOF.
func (r *Reader) Reusable() bool { return r.done && r.reusable }

// Done reports whether the stream has reached its end (cleanly or not).
func (r *Reader) Done() bool { return r.done }

// Gunzip wraps r in a streaming gzip inflater. It fails
// herrors.InvalidCompression on malformed input without masking an
// underlying herrors.ResponseBodyTooShort from the wrapped reader.
func Gunzip(r io.Reader) (io.Reader, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		if e, ok := err.(*herrors.Error); ok {
			return nil, e
		}
		return nil, herrors.InvalidCompression(err)
	}
	return &gunzipReader{gz: gz, src: r}, nil
}

type gunzipReader struct {
	gz  *gzip.Reader
	src io.Reader
}

func (g *gunzipReader) Read(p []byte) (int, error) {
	n, err := g.gz.Read(p)
	if err != nil && err != io.EOF {
		if herrors.Of(err) == herrors.KindBodyTooShort {
			return n, err
		}
		return n, herrors.InvalidCompression(err)
	}
	return n, err
}
