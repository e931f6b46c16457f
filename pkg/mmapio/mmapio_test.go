package mmapio

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenReadsMappedBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.bin")
	want := []byte("telemetry-query mmap fixture")
	if err := os.WriteFile(path, want, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if got := r.Bytes(); string(got) != string(want) {
		t.Fatalf("mapped bytes = %q, want %q", got, want)
	}
	if r.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", r.Len(), len(want))
	}
}
