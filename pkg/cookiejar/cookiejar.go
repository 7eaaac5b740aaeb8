// Package cookiejar implements C7 of httpcore: RFC 6265 cookie storage,
// send-filtering, and redirect updates. Built the way the teacher guards
// shared mutable state (pkg/transport.hostPool: a mutex-protected map),
// using golang.org/x/net/publicsuffix for the public-suffix predicate the
// same way the standard library's net/http/cookiejar does.
package cookiejar

import (
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
)

// Cookie is a single stored cookie, per spec.md §3.
type Cookie struct {
	Name, Value string
	Domain      string
	Path        string
	Expires     time.Time // zero means session cookie
	Created     time.Time
	LastAccess  time.Time
	Persistent  bool
	HostOnly    bool
	SecureOnly  bool
	HTTPOnly    bool
}

type cookieKey struct {
	domain, path, name string
}

// Jar is a set of cookies, guarded by a mutex so it is safe to share
// between a caller and the engine's redirect loop — though the engine
// itself uses value-copy semantics (DESIGN NOTES) rather than relying on
// this lock for correctness across a redirect chain.
type Jar struct {
	mu      sync.Mutex
	cookies map[cookieKey]*Cookie
}

// New returns an empty Jar.
func New() *Jar {
	return &Jar{cookies: make(map[cookieKey]*Cookie)}
}

// Clone returns a deep copy, used by the engine to take a local snapshot
// before a redirect loop begins.
func (j *Jar) Clone() *Jar {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := New()
	for k, c := range j.cookies {
		cc := *c
		out.cookies[k] = &cc
	}
	return out
}

// isPublicSuffix reports whether domain is itself a public suffix (e.g.
// "co.uk"), in which case no cookie may be scoped to it as a domain
// cookie.
func isPublicSuffix(domain string) bool {
	suffix, icann := publicsuffix.PublicSuffix(strings.ToLower(domain))
	return icann && suffix == strings.ToLower(domain)
}

// SetCookie inserts or replaces a cookie, enforcing the no-two-cookies-
// share-(domain,path,name) invariant and rejecting domain cookies scoped
// to a public suffix. now is used for Created/LastAccess on insert, and to
// prune already-expired cookies.
func (j *Jar) SetCookie(c Cookie, now time.Time) {
	if !c.HostOnly && isPublicSuffix(c.Domain) {
		return
	}
	if !c.Expires.IsZero() && !c.Expires.After(now) {
		j.remove(c.Domain, c.Path, c.Name)
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	key := cookieKey{domain: strings.ToLower(c.Domain), path: c.Path, name: c.Name}
	existing, ok := j.cookies[key]
	if ok {
		c.Created = existing.Created
	} else {
		c.Created = now
	}
	c.LastAccess = now
	cc := c
	j.cookies[key] = &cc
}

func (j *Jar) remove(domain, path, name string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.cookies, cookieKey{domain: strings.ToLower(domain), path: path, name: name})
}

// CookiesFor returns the cookies that match host/path/secure at time now,
// sorted by path length descending then creation time ascending (§4.7),
// pruning expired cookies lazily as it goes and bumping LastAccess on
// every cookie it returns.
func (j *Jar) CookiesFor(host, path string, secure bool, now time.Time) []Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()

	var matches []*Cookie
	for key, c := range j.cookies {
		if !c.Expires.IsZero() && !c.Expires.After(now) {
			delete(j.cookies, key)
			continue
		}
		if !domainMatches(c, host) {
			continue
		}
		if !pathMatches(c.Path, path) {
			continue
		}
		if c.SecureOnly && !secure {
			continue
		}
		matches = append(matches, c)
	}

	sort.SliceStable(matches, func(i, k int) bool {
		if len(matches[i].Path) != len(matches[k].Path) {
			return len(matches[i].Path) > len(matches[k].Path)
		}
		return matches[i].Created.Before(matches[k].Created)
	})

	out := make([]Cookie, len(matches))
	for i, c := range matches {
		c.LastAccess = now
		out[i] = *c
	}
	return out
}

func domainMatches(c *Cookie, host string) bool {
	host = strings.ToLower(host)
	domain := strings.ToLower(c.Domain)
	if c.HostOnly {
		return host == domain
	}
	if host == domain {
		return true
	}
	return strings.HasSuffix(host, "."+domain)
}

func pathMatches(cookiePath, requestPath string) bool {
	if cookiePath == "" || cookiePath == "/" {
		return true
	}
	if requestPath == cookiePath {
		return true
	}
	if strings.HasPrefix(requestPath, cookiePath) {
		if strings.HasSuffix(cookiePath, "/") {
			return true
		}
		return len(requestPath) > len(cookiePath) && requestPath[len(cookiePath)] == '/'
	}
	return false
}

// HeaderValue merges CookiesFor's result into a single Cookie header
// value ("name=value; name2=value2").
func HeaderValue(cookies []Cookie) string {
	parts := make([]string, len(cookies))
	for i, c := range cookies {
		parts[i] = c.Name + "=" + c.Value
	}
	return strings.Join(parts, "; ")
}
