package blob

import (
	"errors"
	"io"
	"testing"
)

func TestStorePutGetDelete(t *testing.T) {
	s := NewStore()

	s.Put("a", []byte("hello"))
	got, err := s.Get("a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}

	s.Put("a", []byte("world"))
	got, _ = s.Get("a")
	if string(got) != "world" {
		t.Errorf("overwrite: got %q, want %q", got, "world")
	}

	s.Delete("a")
	if _, err := s.Get("a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("after delete: err = %v, want ErrNotFound", err)
	}

	// Idempotent delete.
	s.Delete("a")
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

func TestSinkAppends(t *testing.T) {
	s := NewStore()
	var w io.Writer = NewSink(s, "out")

	for _, chunk := range []string{"ab", "", "cd"} {
		n, err := w.Write([]byte(chunk))
		if err != nil {
			t.Fatalf("Write: %v", err)
		}
		if n != len(chunk) {
			t.Fatalf("Write returned %d, want %d", n, len(chunk))
		}
	}

	got, err := s.Get("out")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "abcd" {
		t.Errorf("got %q, want %q", got, "abcd")
	}
}

func TestSinkCreatesKeyUpFront(t *testing.T) {
	s := NewStore()
	NewSink(s, "empty")

	got, err := s.Get("empty")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d bytes, want 0", len(got))
	}
}
