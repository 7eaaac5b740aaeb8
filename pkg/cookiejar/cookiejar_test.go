package cookiejar

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestSetCookieAndCookiesForRoundTrip(t *testing.T) {
	j := New()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	j.SetCookie(Cookie{Name: "session", Value: "abc", Domain: "example.com", Path: "/", HostOnly: true}, now)

	got := j.CookiesFor("example.com", "/", false, now)
	if len(got) != 1 || got[0].Value != "abc" {
		t.Fatalf("got %+v", got)
	}
}

func TestCookiesForRejectsDifferentHost(t *testing.T) {
	j := New()
	now := time.Now()
	j.SetCookie(Cookie{Name: "a", Value: "1", Domain: "example.com", Path: "/", HostOnly: true}, now)

	got := j.CookiesFor("other.com", "/", false, now)
	if len(got) != 0 {
		t.Fatalf("host-only cookie must not match a different host: %+v", got)
	}
}

func TestCookiesForDomainCookieMatchesSubdomain(t *testing.T) {
	j := New()
	now := time.Now()
	j.SetCookie(Cookie{Name: "a", Value: "1", Domain: "example.com", Path: "/", HostOnly: false}, now)

	got := j.CookiesFor("www.example.com", "/", false, now)
	if len(got) != 1 {
		t.Fatalf("domain cookie should match a subdomain, got %+v", got)
	}
}

func TestCookiesForRejectsSecureCookieOverPlainRequest(t *testing.T) {
	j := New()
	now := time.Now()
	j.SetCookie(Cookie{Name: "a", Value: "1", Domain: "example.com", Path: "/", HostOnly: true, SecureOnly: true}, now)

	if got := j.CookiesFor("example.com", "/", false, now); len(got) != 0 {
		t.Fatalf("secure-only cookie must not be sent over plain http: %+v", got)
	}
	if got := j.CookiesFor("example.com", "/", true, now); len(got) != 1 {
		t.Fatalf("secure-only cookie should be sent over https: %+v", got)
	}
}

func TestCookiesForPrunesExpired(t *testing.T) {
	j := New()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	j.SetCookie(Cookie{Name: "a", Value: "1", Domain: "example.com", Path: "/", HostOnly: true, Expires: now.Add(-time.Hour)}, now.Add(-2*time.Hour))

	if got := j.CookiesFor("example.com", "/", false, now); len(got) != 0 {
		t.Fatalf("expired cookie must be pruned, got %+v", got)
	}
}

func TestCookiesForOrdersByPathLengthThenCreation(t *testing.T) {
	j := New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	j.SetCookie(Cookie{Name: "short", Value: "1", Domain: "example.com", Path: "/", HostOnly: true}, base)
	j.SetCookie(Cookie{Name: "older-long", Value: "2", Domain: "example.com", Path: "/a/b", HostOnly: true}, base.Add(time.Second))
	j.SetCookie(Cookie{Name: "newer-long", Value: "3", Domain: "example.com", Path: "/a/b", HostOnly: true}, base.Add(2*time.Second))

	got := j.CookiesFor("example.com", "/a/b/c", false, base.Add(3*time.Second))
	if len(got) != 3 {
		t.Fatalf("expected all three cookies to match, got %+v", got)
	}

	wantNames := []string{"older-long", "newer-long", "short"}
	gotNames := []string{got[0].Name, got[1].Name, got[2].Name}
	if diff := cmp.Diff(wantNames, gotNames); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestSetCookieRejectsPublicSuffixDomainCookie(t *testing.T) {
	j := New()
	now := time.Now()
	j.SetCookie(Cookie{Name: "a", Value: "1", Domain: "co.uk", Path: "/", HostOnly: false}, now)

	if got := j.CookiesFor("example.co.uk", "/", false, now); len(got) != 0 {
		t.Fatalf("a domain cookie scoped to a public suffix must be rejected, got %+v", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	j := New()
	now := time.Now()
	j.SetCookie(Cookie{Name: "a", Value: "1", Domain: "example.com", Path: "/", HostOnly: true}, now)

	clone := j.Clone()
	clone.SetCookie(Cookie{Name: "b", Value: "2", Domain: "example.com", Path: "/", HostOnly: true}, now)

	if len(j.CookiesFor("example.com", "/", false, now)) != 1 {
		t.Fatal("mutating a clone must not affect the original jar")
	}
	if len(clone.CookiesFor("example.com", "/", false, now)) != 2 {
		t.Fatal("clone should have both the inherited and its own new cookie")
	}
}

func TestHeaderValueJoinsNameValuePairs(t *testing.T) {
	got := HeaderValue([]Cookie{{Name: "a", Value: "1"}, {Name: "b", Value: "2"}})
	if got != "a=1; b=2" {
		t.Fatalf("got %q", got)
	}
}
