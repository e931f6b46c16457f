// Package mmapio memory-maps files for the PCAP reader (pkg/format/pcap),
// so a capture file's bytes are paged in on demand instead of copied
// wholesale into the process. It wraps github.com/edsrzf/mmap-go, an
// indirect dependency of the example corpus's grafana-loki module,
// promoted here to a direct one since a packet-capture reader is
// exactly the kind of large, read-mostly file this library targets.
package mmapio

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

// Reader is a memory-mapped, read-only view of a file's contents.
type Reader struct {
	file *os.File
	data mmap.MMap
}

// Open memory-maps path for reading.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mmapio: open %s: %w", path, err)
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmapio: map %s: %w", path, err)
	}
	return &Reader{file: f, data: m}, nil
}

// Bytes returns the mapped file contents. The slice is valid until
// Close is called and must not be retained past it.
func (r *Reader) Bytes() []byte { return r.data }

// Len returns the length of the mapped file.
func (r *Reader) Len() int { return len(r.data) }

// Close unmaps the file and closes the underlying descriptor.
func (r *Reader) Close() error {
	unmapErr := r.data.Unmap()
	closeErr := r.file.Close()
	if unmapErr != nil {
		return fmt.Errorf("mmapio: unmap: %w", unmapErr)
	}
	if closeErr != nil {
		return fmt.Errorf("mmapio: close: %w", closeErr)
	}
	return nil
}
