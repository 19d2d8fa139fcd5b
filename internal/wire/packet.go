package wire

import (
	"encoding/binary"
	"fmt"
)

// Packet is one bounded unit of wire transfer: an ordered list of
// attributes, framed for transmission as [type byte][uint32 length][data]
// repeated, with no packet-level header beyond the attributes themselves —
// the transport (internal/transport) supplies the outer length prefix for
// the whole packet.
type Packet struct {
	attrs []Attr
}

// NewPacket returns an empty outgoing packet.
func NewPacket() *Packet { return &Packet{} }

// Append adds an attribute to the end of the packet's list.
func (p *Packet) Append(a Attr) { p.attrs = append(p.attrs, a) }

// Attrs returns the packet's attribute list in wire order. The returned
// slice must not be mutated by callers.
func (p *Packet) Attrs() []Attr { return p.attrs }

// Len reports the number of attributes in the packet.
func (p *Packet) Len() int { return len(p.attrs) }

// FirstOfKind returns the first attribute of the given type, used by the
// call orchestrator to detect the termination sentinel.
func (p *Packet) FirstOfKind(t AttrType) (Attr, bool) {
	for _, a := range p.attrs {
		if a.Type == t {
			return a, true
		}
	}
	return Attr{}, false
}

// Marshal serializes the packet's attribute list to its wire form.
func (p *Packet) Marshal() ([]byte, error) {
	var buf []byte
	for _, a := range p.attrs {
		if len(a.Data) > 0xFFFFFFFF {
			return nil, fmt.Errorf("wire: attribute too large to encode (%d bytes)", len(a.Data))
		}
		hdr := make([]byte, 5)
		hdr[0] = byte(a.Type)
		binary.BigEndian.PutUint32(hdr[1:], uint32(len(a.Data)))
		buf = append(buf, hdr...)
		buf = append(buf, a.Data...)
	}
	return buf, nil
}

// ParsePacket decodes an inbound packet's raw bytes into an ordered
// attribute list.
func ParsePacket(b []byte) (*Packet, error) {
	p := NewPacket()
	for len(b) > 0 {
		if len(b) < 5 {
			return nil, fmt.Errorf("wire: truncated attribute header (%d bytes left)", len(b))
		}
		t := AttrType(b[0])
		n := binary.BigEndian.Uint32(b[1:5])
		b = b[5:]
		if uint64(len(b)) < uint64(n) {
			return nil, fmt.Errorf("wire: truncated attribute payload: want %d bytes, have %d", n, len(b))
		}
		data := make([]byte, n)
		copy(data, b[:n])
		p.attrs = append(p.attrs, Attr{Type: t, Data: data})
		b = b[n:]
	}
	return p, nil
}
