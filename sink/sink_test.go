package sink

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPosixWriterAppends(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "eon.42")

	w := PosixWriter{}
	if err := w.Write(path, []byte("abc"), 0); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Write(path, []byte("def"), 0); err != nil {
		t.Fatalf("Write (append): %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "abcdef" {
		t.Fatalf("contents = %q, want %q", got, "abcdef")
	}
}

func TestExternalWriterNonZeroIsFatal(t *testing.T) {
	w := ExternalWriter{Fn: func(string, []byte, uint16) int { return 1 }}
	if err := w.Write("/x", nil, 0); err == nil {
		t.Fatal("expected error for non-zero foreign_write return")
	}
}

func TestSinkDeliverTraces(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	tracer := NewTracer(&buf)
	s := New(dir, PosixWriter{}, tracer)

	if err := s.Deliver("eon.42", []byte{0x42, 0x42}, 3, 5, 1); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	line := buf.String()
	if !strings.HasPrefix(line, "[RECV] ") {
		t.Fatalf("trace line missing [RECV] prefix: %q", line)
	}
	if !strings.Contains(line, "r1 << r5") {
		t.Fatalf("trace line missing direction markers: %q", line)
	}
	if !strings.Contains(line, "(e3)") {
		t.Fatalf("trace line missing epoch: %q", line)
	}

	got, err := os.ReadFile(s.Path("eon.42"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(got, []byte{0x42, 0x42}) {
		t.Fatalf("file contents = %x", got)
	}
}
