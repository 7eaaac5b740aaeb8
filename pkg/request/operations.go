package request

import (
	"encoding/base64"
	"net/url"
	"strings"
)

// ApplyBasicAuth prepends an Authorization: Basic header. Documented
// behavior: calling this twice yields two Authorization headers — it does
// not de-duplicate, matching the teacher's append-only header style.
func ApplyBasicAuth(user, pass string, req *Request) *Request {
	token := base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))
	req.Header.entries = append([]headerEntry{{"Authorization", "Basic " + token}}, req.Header.entries...)
	return req
}

// AddProxy sets the proxy a request is routed through.
func AddProxy(host string, port uint16, req *Request) *Request {
	req.Proxy = &ProxyTarget{Host: host, Port: port}
	return req
}

// URLEncodedBody sets the body to the percent-encoded
// application/x-www-form-urlencoded payload, forces Method = POST, and
// replaces any existing Content-Type with exactly one
// application/x-www-form-urlencoded entry.
func URLEncodedBody(pairs [][2]string, req *Request) *Request {
	form := url.Values{}
	for _, kv := range pairs {
		form.Add(kv[0], kv[1])
	}
	encoded := form.Encode()

	req.Method = "POST"
	req.Header.Del("Content-Type")
	req.Header.Add("Content-Type", "application/x-www-form-urlencoded")
	req.Body = BytesBody([]byte(encoded))
	return req
}

// NeedsGunzip reports whether the response to req, with the given
// response headers, must be gzip-decompressed: RawBody is false,
// Content-Encoding: gzip is present, and DecompressPredicate(content-type)
// is true.
func NeedsGunzip(req *Request, responseHeaders *Header) bool {
	if req.RawBody {
		return false
	}
	enc := strings.ToLower(strings.TrimSpace(responseHeaders.Get("Content-Encoding")))
	if enc != "gzip" {
		return false
	}
	predicate := req.DecompressPredicate
	if predicate == nil {
		predicate = func(string) bool { return true }
	}
	contentType := responseHeaders.Get("Content-Type")
	return predicate(contentType)
}
