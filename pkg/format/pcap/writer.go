package pcap

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/vastlabs/telemetry-query/pkg/event"
)

// Writer re-serializes "pcap::packet" events back into libpcap's
// classic file format (microsecond resolution, little-endian byte
// order via binary.LittleEndian, matching the common on-disk
// convention).
type Writer struct {
	w           io.Writer
	wroteHeader bool
}

// NewWriter wraps w; the global header is written lazily before the
// first packet so that Writer never emits a header-only empty file.
func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

// Write appends one event as a PCAP record. The event's second field
// (as produced by Reader.Read) is treated as the raw frame payload;
// an event missing that field is rejected.
func (wr *Writer) Write(e *event.Event) error {
	rec := e.Record()
	if len(rec) < 2 {
		return fmt.Errorf("pcap: event %q has no captured payload field", e.Name())
	}
	payload, ok := rec[1].StringValue()
	if !ok {
		return fmt.Errorf("pcap: event %q payload field is not a string", e.Name())
	}

	if !wr.wroteHeader {
		if err := wr.writeGlobalHeader(); err != nil {
			return err
		}
		wr.wroteHeader = true
	}

	ts := e.Timestamp()
	tv, _ := ts.TimestampValue()
	sec := tv.Unix()
	usec := tv.Nanosecond() / 1000

	var hdr [recordHeaderLen]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(sec))
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(usec))
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(len(payload)))
	binary.LittleEndian.PutUint32(hdr[12:16], uint32(len(payload)))

	if _, err := wr.w.Write(hdr[:]); err != nil {
		return fmt.Errorf("pcap: write record header: %w", err)
	}
	if _, err := io.WriteString(wr.w, payload); err != nil {
		return fmt.Errorf("pcap: write record payload: %w", err)
	}
	return nil
}

func (wr *Writer) writeGlobalHeader() error {
	var hdr [globalHeaderLen]byte
	binary.LittleEndian.PutUint32(hdr[0:4], magicMicros)
	binary.LittleEndian.PutUint16(hdr[4:6], 2) // version major
	binary.LittleEndian.PutUint16(hdr[6:8], 4) // version minor
	binary.LittleEndian.PutUint32(hdr[16:20], 65535)
	binary.LittleEndian.PutUint32(hdr[20:24], 1) // LINKTYPE_ETHERNET
	_, err := wr.w.Write(hdr[:])
	if err != nil {
		return fmt.Errorf("pcap: write global header: %w", err)
	}
	return nil
}
