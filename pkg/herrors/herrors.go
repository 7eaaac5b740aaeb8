// Package herrors provides the structured error taxonomy for httpcore.
package herrors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// Kind categorizes a failure so callers can branch on it without string
// matching.
type Kind string

const (
	KindInvalidURL        Kind = "invalid_url"
	KindConnectionFailure Kind = "connection_failure"
	KindManagerClosed     Kind = "manager_closed"
	KindTooManyRetries    Kind = "too_many_retries"
	KindInvalidStatusLine Kind = "invalid_status_line"
	KindInvalidHeaderLine Kind = "invalid_header_line"
	KindOverlongHeaders   Kind = "overlong_headers"
	KindIncompleteHeaders Kind = "incomplete_headers"
	KindBodyTooShort      Kind = "response_body_too_short"
	KindInvalidChunk      Kind = "invalid_chunk_header"
	KindInvalidCompress   Kind = "invalid_compression"
	KindResponseTimeout   Kind = "response_timeout"
	KindStatusCode        Kind = "status_code_exception"
	KindTooManyRedirects  Kind = "too_many_redirects"
	KindProxyConnect      Kind = "proxy_connect_exception"
	KindInternalIO        Kind = "internal_io_exception"
)

// Error is the single structured error type raised anywhere in httpcore.
// It deliberately generalizes the same shape across every failure kind so
// callers can match on Kind rather than parsing messages.
type Error struct {
	Kind      Kind
	Op        string
	Message   string
	Cause     error
	URL       string
	Host      string
	Port      int
	Status    int
	Timestamp time.Time

	// Expected/Received are populated for KindBodyTooShort.
	Expected int64
	Received int64
}

func (e *Error) Error() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s]", e.Kind))
	if e.Op != "" {
		parts = append(parts, e.Op)
	}
	if e.Host != "" {
		if e.Port > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", e.Host, e.Port))
		} else {
			parts = append(parts, e.Host)
		}
	}
	if e.URL != "" {
		parts = append(parts, e.URL)
	}

	s := strings.Join(parts, " ")
	if e.Message != "" {
		s += ": " + e.Message
	}
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newErr(kind Kind, op, msg string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Message: msg, Cause: cause, Timestamp: time.Now()}
}

func InvalidURL(url, reason string) *Error {
	e := newErr(KindInvalidURL, "parse", reason, nil)
	e.URL = url
	return e
}

func ConnectionFailure(host string, port int, cause error) *Error {
	e := newErr(KindConnectionFailure, "dial", fmt.Sprintf("failed to connect to %s:%d", host, port), cause)
	e.Host, e.Port = host, port
	return e
}

func ManagerClosed() *Error {
	return newErr(KindManagerClosed, "acquire", "connection manager is closed", nil)
}

func TooManyRetries(op string) *Error {
	return newErr(KindTooManyRetries, op, "exceeded retry budget for stale connection", nil)
}

func InvalidStatusLine(line string) *Error {
	return newErr(KindInvalidStatusLine, "parse", "invalid status line: "+line, nil)
}

func InvalidHeaderLine(line string) *Error {
	return newErr(KindInvalidHeaderLine, "parse", "invalid header line: "+line, nil)
}

func OverlongHeaders() *Error {
	return newErr(KindOverlongHeaders, "parse", "cumulative header size exceeds configured cap", nil)
}

func IncompleteHeaders(cause error) *Error {
	return newErr(KindIncompleteHeaders, "parse", "connection closed before headers completed", cause)
}

func ResponseBodyTooShort(expected, received int64) *Error {
	e := newErr(KindBodyTooShort, "read", fmt.Sprintf("expected %d bytes, got %d", expected, received), nil)
	e.Expected, e.Received = expected, received
	return e
}

func InvalidChunkHeader(line string) *Error {
	return newErr(KindInvalidChunk, "parse", "invalid chunk header: "+line, nil)
}

func InvalidCompression(cause error) *Error {
	return newErr(KindInvalidCompress, "decode", "malformed compressed body", cause)
}

func ResponseTimeout(op string, budget time.Duration) *Error {
	return newErr(KindResponseTimeout, op, fmt.Sprintf("exceeded timeout budget of %v", budget), nil)
}

func StatusCodeException(status int, msg string) *Error {
	e := newErr(KindStatusCode, "check_status", msg, nil)
	e.Status = status
	return e
}

func TooManyRedirects(limit int) *Error {
	return newErr(KindTooManyRedirects, "redirect", fmt.Sprintf("exceeded redirect limit (%d)", limit), nil)
}

func ProxyConnectException(host string, port, status int) *Error {
	e := newErr(KindProxyConnect, "connect", "proxy CONNECT rejected", nil)
	e.Host, e.Port, e.Status = host, port, status
	return e
}

func InternalIO(op string, cause error) *Error {
	return newErr(KindInternalIO, op, "unclassified transport failure", cause)
}

// IsRetriable reports whether err is a transport failure (KindConnectionFailure
// or KindInternalIO), i.e. it is eligible for the driver's single
// stale-connection retry. It goes by Kind alone: a transport failure that
// happens after some response bytes were read is retriable too.
func IsRetriable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == KindConnectionFailure || e.Kind == KindInternalIO
	}
	return false
}

// IsTimeout reports whether err represents a deadline/timeout failure,
// from either this package or the standard net/context machinery.
func IsTimeout(err error) bool {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindResponseTimeout {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// Of returns the Kind of err, or "" if err is not a *Error.
func Of(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
