// Package request implements URL parsing and the request record: C3 of
// httpcore, grounded on the teacher's ParseProxyURL (percent/URL parsing
// idiom) and Options/convertProxyConfig (struct composition idiom).
package request

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nullbyte-labs/httpcore/pkg/cookiejar"
	"github.com/nullbyte-labs/httpcore/pkg/herrors"
)

// ConnectionWrapper is the get_connection_wrapper collaborator from
// DESIGN NOTES: a per-request decorator that threads a deadline through a
// blocking operation, returning the time remaining for the next one.
type ConnectionWrapper func(ctx context.Context, timeout time.Duration, timeoutErr error, thunk func(context.Context) (any, error)) (time.Duration, any, error)

// CheckStatus inspects a decoded response head and the jar in effect,
// returning an error (surfaced as herrors.StatusCodeException, typically)
// to abort the request.
type CheckStatus func(status int, headers *Header, jar *cookiejar.Jar) error

// ProxyTarget names an upstream proxy a request should be routed through.
type ProxyTarget struct {
	Host string
	Port uint16
}

// DestKey identifies the pool bucket a request resolves to: the tuple of
// (proxy or none, host, port, secure-or-not) from the GLOSSARY.
type DestKey struct {
	ProxyHost string
	ProxyPort uint16
	Host      string
	Port      uint16
	Secure    bool
}

// Request is the caller-facing model: spec.md §3's Request record.
type Request struct {
	Host        string
	Port        uint16
	Secure      bool
	Method      string
	Path        string
	QueryString string

	Header Header
	Body   Body

	Proxy       *ProxyTarget
	HostAddress string // pre-resolved, optional

	RawBody             bool
	DecompressPredicate func(contentType string) bool

	RedirectCount int
	CheckStatus   CheckStatus

	ResponseTimeout       Timeout
	CookieJar             *cookiejar.Jar
	GetConnectionWrapper  ConnectionWrapper
}

// New returns a Request with spec-mandated defaults: GET /, redirect
// budget of 10, gzip decompression accepted for any content type.
func New() *Request {
	return &Request{
		Method:              "GET",
		Path:                "/",
		RedirectCount:       10,
		ResponseTimeout:     TimeoutInherit(),
		DecompressPredicate: func(string) bool { return true },
	}
}

// DestKey computes this request's pool destination key.
func (r *Request) DestKey() DestKey {
	k := DestKey{Host: r.Host, Port: r.Port, Secure: r.Secure}
	if r.Proxy != nil {
		k.ProxyHost, k.ProxyPort = r.Proxy.Host, r.Proxy.Port
	}
	return k
}

// ParseURL percent-encodes disallowed characters, parses the result, and
// applies it to a fresh default Request via SetURI.
func ParseURL(s string) (*Request, error) {
	req := New()
	if err := SetURI(req, s); err != nil {
		return nil, err
	}
	return req, nil
}

// encodeDisallowed percent-encodes bytes url.Parse would otherwise choke
// on (bare spaces, etc.) without touching already-valid percent escapes or
// reserved/unreserved characters.
func encodeDisallowed(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ' ':
			b.WriteString("%20")
		case c < 0x21 || c > 0x7e:
			b.WriteString(url.QueryEscape(string([]byte{c})))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// SetURI requires an absolute URI with scheme http or https, no userinfo,
// an authority, and an implicit or valid u16 port. It overwrites Host,
// Port, Secure, Path (defaulting to "/"), and QueryString on req.
func SetURI(req *Request, raw string) error {
	encoded := encodeDisallowed(raw)
	u, err := url.Parse(encoded)
	if err != nil {
		return herrors.InvalidURL(raw, err.Error())
	}
	return applyURI(req, u, raw)
}

func applyURI(req *Request, u *url.URL, original string) error {
	if !u.IsAbs() {
		return herrors.InvalidURL(original, "missing scheme or host")
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return herrors.InvalidURL(original, "scheme must be http or https")
	}
	if u.User != nil {
		return herrors.InvalidURL(original, "userinfo not allowed; use ApplyBasicAuth")
	}
	if u.Host == "" {
		return herrors.InvalidURL(original, "missing authority")
	}

	host := u.Hostname()
	portStr := u.Port()
	var port uint16
	if portStr == "" {
		if scheme == "https" {
			port = 443
		} else {
			port = 80
		}
	} else {
		p, err := strconv.ParseUint(portStr, 10, 16)
		if err != nil {
			return herrors.InvalidURL(original, "invalid port: "+portStr)
		}
		port = uint16(p)
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}

	req.Host = host
	req.Port = port
	req.Secure = scheme == "https"
	req.Path = path
	req.QueryString = u.RawQuery
	return nil
}

// GetURI renders the request's current state back into an absolute URI
// string.
func GetURI(req *Request) string {
	scheme := "http"
	if req.Secure {
		scheme = "https"
	}
	var b strings.Builder
	b.WriteString(scheme)
	b.WriteString("://")
	b.WriteString(req.Host)
	defaultPort := req.Secure && req.Port == 443 || !req.Secure && req.Port == 80
	if !defaultPort && req.Port != 0 {
		b.WriteString(":")
		b.WriteString(strconv.Itoa(int(req.Port)))
	}
	b.WriteString(req.Path)
	if req.QueryString != "" {
		b.WriteString("?")
		b.WriteString(req.QueryString)
	}
	return b.String()
}

// SetURIRelative resolves uri against req's current URI, then applies it
// via SetURI semantics.
func SetURIRelative(req *Request, rel string) error {
	base, err := url.Parse(GetURI(req))
	if err != nil {
		return herrors.InvalidURL(rel, "invalid current URI: "+err.Error())
	}
	relURL, err := url.Parse(encodeDisallowed(rel))
	if err != nil {
		return herrors.InvalidURL(rel, err.Error())
	}
	resolved := base.ResolveReference(relURL)
	return applyURI(req, resolved, rel)
}
