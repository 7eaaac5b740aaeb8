package body

import (
	"bytes"
	"compress/gzip"
	"io"
	"testing"
)

func TestGunzipInflatesValidStream(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	gw.Write([]byte("decompressed payload"))
	gw.Close()

	r, err := Gunzip(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "decompressed payload" {
		t.Fatalf("got %q", data)
	}
}

func TestGunzipRejectsMalformedStream(t *testing.T) {
	_, err := Gunzip(bytes.NewReader([]byte("not gzip data at all")))
	if err == nil {
		t.Fatal("expected an error for a non-gzip stream")
	}
}
