// Package pcap implements the PCAP ingestor: an external collaborator
// that turns a packet-capture byte stream into the query core's
// event.Event values, with a configurable flow-cutoff byte count,
// maximum flow-table size, flow inactivity timeout, and eviction
// interval — none of which affects the core's semantics; the core
// only ever sees the events this package emits.
//
// The wire format is decoded by hand against the classic libpcap file
// format rather than through a packet-capture library, since the
// fields this package needs (global header byte order/resolution, a
// 16-byte record header, and enough of the Ethernet/IP/TCP-or-UDP
// headers to build a 4-tuple connection id) are a small, stable
// subset of the format.
package pcap

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/vastlabs/telemetry-query/pkg/event"
	"github.com/vastlabs/telemetry-query/pkg/mmapio"
	"github.com/vastlabs/telemetry-query/pkg/value"
)

const (
	magicMicros    = 0xa1b2c3d4
	magicMicrosSwp = 0xd4c3b2a1
	magicNanos     = 0xa1b23c4d
	magicNanosSwp  = 0x4d3cb2a1

	globalHeaderLen = 24
	recordHeaderLen = 16
)

// Config parameterizes the ingestor's flow-tracking behavior.
// Cutoff of -1 disables truncation.
type Config struct {
	Cutoff                int64
	MaxFlowTableSize      int
	FlowInactivityTimeout time.Duration
	FlowEvictionInterval  time.Duration
}

// DefaultConfig matches the "no cutoff, small flow table" reader in
// the ground-truth fixture (5-entry table, unlimited cutoff).
func DefaultConfig() Config {
	return Config{Cutoff: -1, MaxFlowTableSize: 5}
}

type flowKey [4]string // src addr, dst addr, src port/proto, dst port/proto

type flowState struct {
	lastSeen time.Time
	packets  int
}

// Reader ingests one event per packet record from a PCAP byte stream.
type Reader struct {
	cfg       Config
	r         io.Reader
	mm        *mmapio.Reader
	byteOrder binary.ByteOrder
	nanos     bool
	nextID    int64
	flows     map[flowKey]*flowState
	lastEvict time.Time
}

// NewReader parses the global header from r and returns a Reader
// ready to produce events via Read.
func NewReader(r io.Reader, cfg Config) (*Reader, error) {
	var hdr [globalHeaderLen]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("pcap: read global header: %w", err)
	}
	order, nanos, err := detectMagic(binary.BigEndian.Uint32(hdr[0:4]))
	if err != nil {
		order, nanos, err = detectMagic(binary.LittleEndian.Uint32(hdr[0:4]))
		if err != nil {
			return nil, err
		}
	}
	return &Reader{
		cfg:       cfg,
		r:         r,
		byteOrder: order,
		nanos:     nanos,
		flows:     make(map[flowKey]*flowState),
	}, nil
}

// Open memory-maps path and returns a Reader over its contents.
func Open(path string, cfg Config) (*Reader, error) {
	mm, err := mmapio.Open(path)
	if err != nil {
		return nil, err
	}
	reader, err := NewReader(&byteSliceReader{data: mm.Bytes()}, cfg)
	if err != nil {
		mm.Close()
		return nil, err
	}
	reader.mm = mm
	return reader, nil
}

// Close releases any memory mapping this Reader owns. It is a no-op
// for readers constructed with NewReader.
func (r *Reader) Close() error {
	if r.mm != nil {
		return r.mm.Close()
	}
	return nil
}

func detectMagic(magic uint32) (binary.ByteOrder, bool, error) {
	switch magic {
	case magicMicros:
		return binary.BigEndian, false, nil
	case magicMicrosSwp:
		return binary.LittleEndian, false, nil
	case magicNanos:
		return binary.BigEndian, true, nil
	case magicNanosSwp:
		return binary.LittleEndian, true, nil
	default:
		return nil, false, fmt.Errorf("pcap: unrecognized magic number 0x%x", magic)
	}
}

// Read decodes the next packet record into an event named
// "pcap::packet", or returns io.EOF once the stream is exhausted.
func (r *Reader) Read() (*event.Event, error) {
	var rh [recordHeaderLen]byte
	if _, err := io.ReadFull(r.r, rh[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, io.EOF
		}
		return nil, err
	}
	tsSec := r.byteOrder.Uint32(rh[0:4])
	tsFrac := r.byteOrder.Uint32(rh[4:8])
	capLen := r.byteOrder.Uint32(rh[8:12])

	payload := make([]byte, capLen)
	if _, err := io.ReadFull(r.r, payload); err != nil {
		return nil, fmt.Errorf("pcap: truncated packet record: %w", err)
	}

	ts := recordTimestamp(tsSec, tsFrac, r.nanos)
	conn := extractConnID(payload)
	r.trackFlow(conn, ts)

	if r.cfg.Cutoff >= 0 && int64(len(payload)) > r.cfg.Cutoff {
		payload = payload[:r.cfg.Cutoff]
	}

	fields := []value.Value{conn, value.NewString(string(payload))}
	id := r.nextID
	r.nextID++
	return event.New(id, ts, "pcap::packet", fields), nil
}

func recordTimestamp(sec, frac uint32, nanos bool) time.Time {
	if nanos {
		return time.Unix(int64(sec), int64(frac))
	}
	return time.Unix(int64(sec), int64(frac)*1000)
}

// trackFlow updates the flow table and evicts entries that have been
// inactive past FlowInactivityTimeout, checked no more often than
// FlowEvictionInterval, and enforces MaxFlowTableSize by dropping the
// least-recently-seen flow when the table is full.
func (r *Reader) trackFlow(conn value.Value, ts time.Time) {
	vec, ok := conn.VectorValue()
	if !ok || len(vec) != 4 {
		return
	}
	key := flowKey{flowKeyPart(vec[0]), flowKeyPart(vec[1]), flowKeyPart(vec[2]), flowKeyPart(vec[3])}

	if r.cfg.FlowEvictionInterval > 0 && ts.Sub(r.lastEvict) >= r.cfg.FlowEvictionInterval {
		r.evictInactive(ts)
		r.lastEvict = ts
	}

	if fs, exists := r.flows[key]; exists {
		fs.lastSeen = ts
		fs.packets++
		return
	}
	if r.cfg.MaxFlowTableSize > 0 && len(r.flows) >= r.cfg.MaxFlowTableSize {
		r.evictOldest()
	}
	r.flows[key] = &flowState{lastSeen: ts, packets: 1}
}

func (r *Reader) evictInactive(now time.Time) {
	if r.cfg.FlowInactivityTimeout <= 0 {
		return
	}
	for k, fs := range r.flows {
		if now.Sub(fs.lastSeen) > r.cfg.FlowInactivityTimeout {
			delete(r.flows, k)
		}
	}
}

func (r *Reader) evictOldest() {
	var oldestKey flowKey
	var oldestTime time.Time
	first := true
	for k, fs := range r.flows {
		if first || fs.lastSeen.Before(oldestTime) {
			oldestKey, oldestTime, first = k, fs.lastSeen, false
		}
	}
	if !first {
		delete(r.flows, oldestKey)
	}
}

// FlowCount reports the number of live entries in the flow table.
func (r *Reader) FlowCount() int { return len(r.flows) }

// flowKeyPart renders one connection-id field (an address or a port)
// to a string for use as a flow-table key component.
func flowKeyPart(v value.Value) string {
	if addr, ok := v.AddressValue(); ok {
		return addr.String()
	}
	if port, ok := v.PortValue(); ok {
		return port.String()
	}
	return ""
}

// extractConnID parses just enough of an Ethernet/IPv4-or-IPv6/TCP-or-UDP
// frame to build a 4-tuple connection identifier. A frame whose
// Ethernet or IP header it cannot parse yields a vector of four
// invalid values rather than an error; a frame whose transport layer
// is not TCP/UDP or is truncated keeps both addresses and leaves the
// two port slots invalid.
func extractConnID(frame []byte) value.Value {
	invalid := []value.Value{value.Invalid, value.Invalid, value.Invalid, value.Invalid}
	const ethHeaderLen = 14
	if len(frame) < ethHeaderLen {
		return value.NewVector(invalid)
	}
	etherType := binary.BigEndian.Uint16(frame[12:14])
	l3 := frame[ethHeaderLen:]

	var src, dst net.IP
	var proto byte
	var l4 []byte

	switch etherType {
	case 0x0800: // IPv4
		if len(l3) < 20 {
			return value.NewVector(invalid)
		}
		ihl := int(l3[0]&0x0f) * 4
		if ihl < 20 || len(l3) < ihl {
			return value.NewVector(invalid)
		}
		src = net.IP(l3[12:16])
		dst = net.IP(l3[16:20])
		proto = l3[9]
		l4 = l3[ihl:]
	case 0x86dd: // IPv6
		if len(l3) < 40 {
			return value.NewVector(invalid)
		}
		src = net.IP(l3[8:24])
		dst = net.IP(l3[24:40])
		proto = l3[6]
		l4 = l3[40:]
	default:
		return value.NewVector(invalid)
	}

	var srcPort, dstPort uint16
	var protoName string
	switch proto {
	case 6:
		protoName = "tcp"
	case 17:
		protoName = "udp"
	default:
		return value.NewVector([]value.Value{
			value.NewAddress(src), value.NewAddress(dst), value.Invalid, value.Invalid,
		})
	}
	if len(l4) < 4 {
		return value.NewVector([]value.Value{
			value.NewAddress(src), value.NewAddress(dst), value.Invalid, value.Invalid,
		})
	}
	srcPort = binary.BigEndian.Uint16(l4[0:2])
	dstPort = binary.BigEndian.Uint16(l4[2:4])

	return value.NewVector([]value.Value{
		value.NewAddress(src),
		value.NewAddress(dst),
		value.NewPort(value.Port{Number: srcPort, Proto: protoName}),
		value.NewPort(value.Port{Number: dstPort, Proto: protoName}),
	})
}

// byteSliceReader adapts a memory-mapped byte slice to io.Reader for
// the sequential record-at-a-time NewReader/Read protocol.
type byteSliceReader struct {
	data []byte
	pos  int
}

func (b *byteSliceReader) Read(p []byte) (int, error) {
	if b.pos >= len(b.data) {
		return 0, io.EOF
	}
	n := copy(p, b.data[b.pos:])
	b.pos += n
	return n, nil
}
