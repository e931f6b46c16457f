package value

import "fmt"

// Port is the transport-port domain value: a 16-bit number paired
// with a protocol label (e.g. "tcp", "udp", "icmp").
type Port struct {
	Number uint16
	Proto  string
}

func (p Port) String() string {
	if p.Proto == "" {
		return fmt.Sprintf("%d", p.Number)
	}
	return fmt.Sprintf("%d/%s", p.Number, p.Proto)
}
