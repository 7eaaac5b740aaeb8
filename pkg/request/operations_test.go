package request

import (
	"encoding/base64"
	"testing"
)

func TestApplyBasicAuthEncodesCredentials(t *testing.T) {
	req := New()
	ApplyBasicAuth("alice", "s3cret", req)

	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("alice:s3cret"))
	if got := req.Header.Get("Authorization"); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestApplyBasicAuthTwiceKeepsBoth(t *testing.T) {
	req := New()
	ApplyBasicAuth("alice", "one", req)
	ApplyBasicAuth("bob", "two", req)

	if len(req.Header.Values("Authorization")) != 2 {
		t.Fatalf("calling ApplyBasicAuth twice should add a second header, not replace: %v", req.Header.Values("Authorization"))
	}
}

func TestURLEncodedBodySetsMethodAndContentType(t *testing.T) {
	req := New()
	req.Method = "GET"
	URLEncodedBody([][2]string{{"a", "1"}, {"b", "2 3"}}, req)

	if req.Method != "POST" {
		t.Fatalf("want POST, got %s", req.Method)
	}
	if got := req.Header.Values("Content-Type"); len(got) != 1 || got[0] != "application/x-www-form-urlencoded" {
		t.Fatalf("unexpected Content-Type entries: %v", got)
	}
	if req.Body == nil {
		t.Fatal("expected a body to be set")
	}
}

func TestURLEncodedBodyReplacesExistingContentType(t *testing.T) {
	req := New()
	req.Header.Add("Content-Type", "text/plain")
	URLEncodedBody([][2]string{{"a", "1"}}, req)

	if got := req.Header.Values("Content-Type"); len(got) != 1 {
		t.Fatalf("want exactly one Content-Type header, got %v", got)
	}
}

func TestNeedsGunzipRequiresGzipEncoding(t *testing.T) {
	req := New()
	headers := NewHeader()
	headers.Add("Content-Encoding", "identity")

	if NeedsGunzip(req, headers) {
		t.Fatal("non-gzip Content-Encoding must not trigger decompression")
	}

	headers.Set("Content-Encoding", "gzip")
	if !NeedsGunzip(req, headers) {
		t.Fatal("gzip Content-Encoding should trigger decompression by default")
	}
}

func TestNeedsGunzipRespectsRawBody(t *testing.T) {
	req := New()
	req.RawBody = true
	headers := NewHeader()
	headers.Add("Content-Encoding", "gzip")

	if NeedsGunzip(req, headers) {
		t.Fatal("RawBody requests must never be auto-decompressed")
	}
}

func TestNeedsGunzipRespectsPredicate(t *testing.T) {
	req := New()
	req.DecompressPredicate = func(contentType string) bool { return contentType == "application/json" }
	headers := NewHeader()
	headers.Add("Content-Encoding", "gzip")
	headers.Add("Content-Type", "text/html")

	if NeedsGunzip(req, headers) {
		t.Fatal("predicate rejecting the content type should suppress decompression")
	}

	headers.Set("Content-Type", "application/json")
	if !NeedsGunzip(req, headers) {
		t.Fatal("predicate accepting the content type should allow decompression")
	}
}
