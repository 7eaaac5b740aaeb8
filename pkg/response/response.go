// Package response implements the HTTP/1.1 status-line and header decoder:
// C5 of httpcore. Grounded directly on the teacher's
// pkg/client.(*Client).readResponse / parseStatusLine / readHeaders,
// generalized from Client methods into a standalone decoder that hands
// back the connection's residual buffer for body framing (C6).
package response

import (
	"strconv"
	"strings"

	"github.com/nullbyte-labs/httpcore/pkg/conn"
	"github.com/nullbyte-labs/httpcore/pkg/herrors"
	"github.com/nullbyte-labs/httpcore/pkg/request"
)

// StatusLine is the parsed first line of an HTTP/1.1 response.
type StatusLine struct {
	Version string // e.g. "HTTP/1.1"
	Code    int
	Reason  string
}

// Head is everything read before the body: status line and headers.
type Head struct {
	Status  StatusLine
	Headers request.Header
}

// DefaultMaxHeaderBytes caps the cumulative size of the header block,
// matching the teacher's maxHeaderBytes constant.
const DefaultMaxHeaderBytes = 64 * 1024

// DecodeHead reads the status line and header block off b, accepting
// obsolete line folding (RFC 7230 §3.2.4) by joining continuation lines
// onto the previous header's value.
func DecodeHead(b *conn.Buffered, maxHeaderBytes int) (*Head, error) {
	if maxHeaderBytes <= 0 {
		maxHeaderBytes = DefaultMaxHeaderBytes
	}

	// A connection that ends or fails before the first response byte is a
	// transport failure (retriable), not a truncated header block.
	if _, err := b.Reader().Peek(1); err != nil {
		return nil, herrors.InternalIO("read_status_line", err)
	}

	statusLineBytes, err := b.ReadLine(maxHeaderBytes)
	if err != nil {
		if herrors.Of(err) == herrors.KindInvalidHeaderLine {
			return nil, herrors.InvalidStatusLine(string(statusLineBytes))
		}
		return nil, err
	}

	status, err := parseStatusLine(trimCRLF(statusLineBytes))
	if err != nil {
		return nil, err
	}

	headers := request.Header{}
	total := 0
	var lastName string

	for {
		lineBytes, err := b.ReadLine(maxHeaderBytes)
		if err != nil {
			return nil, err
		}
		total += len(lineBytes)
		if total > maxHeaderBytes {
			return nil, herrors.OverlongHeaders()
		}

		line := trimCRLF(lineBytes)
		if len(line) == 0 {
			break
		}

		if line[0] == ' ' || line[0] == '\t' {
			if lastName == "" {
				continue
			}
			appendFolded(&headers, lastName, strings.TrimSpace(line))
			continue
		}

		idx := strings.IndexByte(line, ':')
		if idx < 0 {
			return nil, herrors.InvalidHeaderLine(line)
		}
		name := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		headers.Add(name, value)
		lastName = name
	}

	return &Head{Status: *status, Headers: headers}, nil
}

func appendFolded(h *request.Header, name, continuation string) {
	values := h.Values(name)
	if len(values) == 0 {
		h.Add(name, continuation)
		return
	}
	last := values[len(values)-1]
	h.Del(name)
	for _, v := range values[:len(values)-1] {
		h.Add(name, v)
	}
	h.Add(name, last+" "+continuation)
}

func trimCRLF(b []byte) string {
	s := string(b)
	return strings.TrimRight(s, "\r\n")
}

func parseStatusLine(line string) (*StatusLine, error) {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 {
		return nil, herrors.InvalidStatusLine(line)
	}
	code, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, herrors.InvalidStatusLine(line)
	}
	reason := ""
	if len(parts) == 3 {
		reason = parts[2]
	}
	return &StatusLine{Version: parts[0], Code: code, Reason: reason}, nil
}

// ReusableAfterHead reports whether the version (not HTTP/1.0) and the
// Connection header (no "close") permit reuse; the full reusability
// decision (§4.5) additionally requires a framed (not EOF-delimited) body
// and full drain — those are folded in once the body finishes (see
// pkg/body).
func ReusableAfterHead(h *Head) bool {
	if h.Status.Version == "HTTP/1.0" {
		return false
	}
	conn := strings.ToLower(h.Headers.Get("Connection"))
	return !strings.Contains(conn, "close")
}
