package buffer

import (
	"io"
	"os"
	"testing"
)

func TestBufferStaysInMemoryUnderLimit(t *testing.T) {
	b := New(1024)
	defer b.Close()

	if _, err := b.Write([]byte("small payload")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.IsSpilled() {
		t.Fatal("a write under the memory limit must not spill to disk")
	}
	if string(b.Bytes()) != "small payload" {
		t.Fatalf("got %q", b.Bytes())
	}
}

func TestBufferSpillsToDiskOverLimit(t *testing.T) {
	b := New(4)
	defer b.Close()

	if _, err := b.Write([]byte("this is longer than four bytes")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.IsSpilled() {
		t.Fatal("a write exceeding the memory limit should spill to disk")
	}
	if b.Bytes() != nil {
		t.Fatal("Bytes() should return nil once spilled to disk")
	}
	if _, err := os.Stat(b.Path()); err != nil {
		t.Fatalf("expected the spill file to exist: %v", err)
	}
}

func TestBufferReaderReturnsFullContentFromMemory(t *testing.T) {
	b := New(1024)
	defer b.Close()
	b.Write([]byte("hello"))

	rc, err := b.Reader()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("got %q", data)
	}
}

func TestBufferReaderReturnsFullContentAfterSpill(t *testing.T) {
	b := New(4)
	defer b.Close()
	b.Write([]byte("spilled payload"))

	rc, err := b.Reader()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "spilled payload" {
		t.Fatalf("got %q", data)
	}
}

func TestBufferCloseRemovesTempFileAndIsIdempotent(t *testing.T) {
	b := New(4)
	b.Write([]byte("spill me please"))
	path := b.Path()

	if err := b.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected the temp file to be removed, stat err: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close should be idempotent, got error: %v", err)
	}
}

func TestBufferWriteAfterCloseErrors(t *testing.T) {
	b := New(1024)
	b.Close()

	if _, err := b.Write([]byte("x")); err == nil {
		t.Fatal("writing to a closed buffer should error")
	}
}

func TestBufferSizeTracksTotalWritten(t *testing.T) {
	b := New(4)
	defer b.Close()
	b.Write([]byte("abc"))
	b.Write([]byte("defgh"))

	if b.Size() != 8 {
		t.Fatalf("want size 8, got %d", b.Size())
	}
}
