package cookiejar

import (
	"strconv"
	"strings"
	"time"
)

// ParseSetCookie parses a single Set-Cookie header value into a Cookie
// scoped to requestHost/requestPath, per RFC 6265 §5.2. Returns ok=false
// for a structurally empty header (no name=value pair).
func ParseSetCookie(header, requestHost, requestPath string) (Cookie, bool) {
	parts := strings.Split(header, ";")
	if len(parts) == 0 {
		return Cookie{}, false
	}

	nameValue := strings.TrimSpace(parts[0])
	eq := strings.IndexByte(nameValue, '=')
	if eq < 0 {
		return Cookie{}, false
	}
	name := strings.TrimSpace(nameValue[:eq])
	value := strings.TrimSpace(nameValue[eq+1:])
	if name == "" {
		return Cookie{}, false
	}

	c := Cookie{
		Name:     name,
		Value:    value,
		Domain:   strings.ToLower(requestHost),
		Path:     defaultPath(requestPath),
		HostOnly: true,
	}

	var maxAge *int64

	for _, attr := range parts[1:] {
		attr = strings.TrimSpace(attr)
		if attr == "" {
			continue
		}
		k, v, hasValue := splitAttr(attr)
		switch strings.ToLower(k) {
		case "domain":
			if v != "" {
				d := strings.ToLower(strings.TrimPrefix(v, "."))
				c.Domain = d
				c.HostOnly = false
			}
		case "path":
			if strings.HasPrefix(v, "/") {
				c.Path = v
			}
		case "expires":
			if t, err := time.Parse(time.RFC1123, v); err == nil {
				c.Expires = t
			} else if t, err := time.Parse("Mon, 02-Jan-2006 15:04:05 MST", v); err == nil {
				c.Expires = t
			}
		case "max-age":
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				maxAge = &n
			}
		case "secure":
			c.SecureOnly = true
		case "httponly":
			c.HTTPOnly = true
		default:
			_ = hasValue
		}
	}

	// Max-Age takes priority over Expires (RFC 6265 §5.3 step 3).
	if maxAge != nil {
		c.Persistent = true
		if *maxAge <= 0 {
			c.Expires = time.Unix(0, 0)
		} else {
			c.Expires = time.Now().Add(time.Duration(*maxAge) * time.Second)
		}
	} else if !c.Expires.IsZero() {
		c.Persistent = true
	}

	return c, true
}

func splitAttr(attr string) (key, value string, hasValue bool) {
	eq := strings.IndexByte(attr, '=')
	if eq < 0 {
		return attr, "", false
	}
	return strings.TrimSpace(attr[:eq]), strings.TrimSpace(attr[eq+1:]), true
}

func defaultPath(requestPath string) string {
	if requestPath == "" || requestPath[0] != '/' {
		return "/"
	}
	idx := strings.LastIndexByte(requestPath, '/')
	if idx <= 0 {
		return "/"
	}
	return requestPath[:idx]
}

// ApplySetCookieHeaders parses and stores every Set-Cookie header value in
// headers against the jar, rejecting any whose domain is a public suffix
// (handled inside SetCookie) and pruning ones that are already expired.
func (j *Jar) ApplySetCookieHeaders(values []string, requestHost, requestPath string, now time.Time) {
	for _, v := range values {
		c, ok := ParseSetCookie(v, requestHost, requestPath)
		if !ok {
			continue
		}
		j.SetCookie(c, now)
	}
}
