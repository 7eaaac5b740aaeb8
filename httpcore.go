// Package httpcore is a low-level HTTP/1.1 client engine: connection
// pooling, wire protocol, redirects, and a cookie jar, intended as the
// foundation for higher-level HTTP libraries rather than an ergonomic
// client in its own right. This file re-exports the programmatic surface
// described in SPEC_FULL.md §8 so callers need only import one package.
package httpcore

import (
	"context"

	"github.com/nullbyte-labs/httpcore/pkg/cookiejar"
	"github.com/nullbyte-labs/httpcore/pkg/engine"
	"github.com/nullbyte-labs/httpcore/pkg/herrors"
	"github.com/nullbyte-labs/httpcore/pkg/hlog"
	"github.com/nullbyte-labs/httpcore/pkg/pool"
	"github.com/nullbyte-labs/httpcore/pkg/request"
)

// Re-export the core types so callers work against one package.
type (
	Request     = request.Request
	Header      = request.Header
	Body        = request.Body
	ProxyTarget = request.ProxyTarget
	Timeout     = request.Timeout
	CheckStatus = request.CheckStatus

	Response = engine.Response
	Options  = engine.Options

	Manager         = pool.Manager
	ManagerSettings = pool.Settings

	CookieJar = cookiejar.Jar
	Cookie    = cookiejar.Cookie

	Logger = hlog.Logger

	Error     = herrors.Error
	ErrorKind = herrors.Kind
)

// Error kind constants, re-exported for callers that branch on failure
// category without importing pkg/herrors directly.
const (
	ErrInvalidURL        = herrors.KindInvalidURL
	ErrConnectionFailure = herrors.KindConnectionFailure
	ErrManagerClosed     = herrors.KindManagerClosed
	ErrTooManyRetries    = herrors.KindTooManyRetries
	ErrInvalidStatusLine = herrors.KindInvalidStatusLine
	ErrInvalidHeaderLine = herrors.KindInvalidHeaderLine
	ErrOverlongHeaders   = herrors.KindOverlongHeaders
	ErrIncompleteHeaders = herrors.KindIncompleteHeaders
	ErrBodyTooShort      = herrors.KindBodyTooShort
	ErrInvalidChunk      = herrors.KindInvalidChunk
	ErrInvalidCompress   = herrors.KindInvalidCompress
	ErrResponseTimeout   = herrors.KindResponseTimeout
	ErrStatusCode        = herrors.KindStatusCode
	ErrTooManyRedirects  = herrors.KindTooManyRedirects
	ErrProxyConnect      = herrors.KindProxyConnect
	ErrInternalIO        = herrors.KindInternalIO
)

// NewRequest returns a Request with spec-mandated defaults: GET /,
// redirect budget of 10, gzip decompression accepted for any content type.
func NewRequest() *Request { return request.New() }

// ParseURL percent-encodes disallowed characters, parses the result, and
// builds a default Request from it.
func ParseURL(s string) (*Request, error) { return request.ParseURL(s) }

// SetURI overwrites req's host/port/secure/path/query from an absolute
// http(s) URI.
func SetURI(req *Request, uri string) error { return request.SetURI(req, uri) }

// SetURIRelative resolves uri against req's current URI, then applies it
// with SetURI semantics.
func SetURIRelative(req *Request, uri string) error { return request.SetURIRelative(req, uri) }

// GetURI renders req's current state back into an absolute URI string.
func GetURI(req *Request) string { return request.GetURI(req) }

// ApplyBasicAuth prepends an Authorization: Basic header.
func ApplyBasicAuth(user, pass string, req *Request) *Request {
	return request.ApplyBasicAuth(user, pass, req)
}

// AddProxy routes req through the given proxy.
func AddProxy(host string, port uint16, req *Request) *Request {
	return request.AddProxy(host, port, req)
}

// URLEncodedBody sets req's body to a percent-encoded
// application/x-www-form-urlencoded payload and forces Method = POST.
func URLEncodedBody(pairs [][2]string, req *Request) *Request {
	return request.URLEncodedBody(pairs, req)
}

// BytesBody, BuilderBody, StreamBody, and ChunkedStreamBody construct the
// four RequestBody variants.
var (
	BytesBody         = request.BytesBody
	BuilderBody       = request.BuilderBody
	StreamBody        = request.StreamBody
	ChunkedStreamBody = request.ChunkedStreamBody
)

// NewManager constructs a connection Manager with the given settings,
// applying defaults to any zero-valued fields and starting its
// background idle-connection reaper.
func NewManager(settings ManagerSettings) *Manager { return pool.New(settings) }

// CloseManager closes m: subsequent Acquire calls fail with
// ErrManagerClosed.
func CloseManager(m *Manager) error { return m.Close() }

// NewCookieJar returns an empty CookieJar.
func NewCookieJar() *CookieJar { return cookiejar.New() }

// HTTPLBS drives req to completion through m and reads the entire
// response body before returning (in memory, spilling to a temp file past
// Options.MaxInMemoryBody).
func HTTPLBS(ctx context.Context, req *Request, m *Manager, opts Options) (*Response, error) {
	return engine.HTTPLBS(ctx, req, m, opts)
}

// WithResponse drives req to completion through m and hands the
// streaming Response to consumer, releasing its connection on exit.
func WithResponse(ctx context.Context, req *Request, m *Manager, opts Options, consumer func(*Response) error) error {
	return engine.WithResponse(ctx, req, m, opts, consumer)
}
