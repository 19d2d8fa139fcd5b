// Package wire implements the byte-level attribute packet the spec treats
// as an external collaborator: integer widths, string/IP encodings, and the
// length-prefixed framing attributes travel in.
package wire

import (
	"encoding/binary"
	"fmt"
	"math"
	"net"
)

// AttrType is the wire-level type tag carried in front of every attribute's
// payload.
type AttrType uint8

const (
	Int32 AttrType = iota
	Int64
	Float64
	String
	IPAddr
	// Termination is the distinguished attribute (integer payload 4) that
	// marks end-of-stream for one direction of a call.
	Termination
)

func (t AttrType) String() string {
	switch t {
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float64:
		return "float64"
	case String:
		return "string"
	case IPAddr:
		return "ip"
	case Termination:
		return "termination"
	default:
		return "unknown"
	}
}

// terminationPayload is the fixed integer value the spec assigns to the
// termination attribute.
const terminationPayload = int32(4)

// Attr is one typed, length-prefixed element of a Packet's attribute list.
type Attr struct {
	Type AttrType
	Data []byte
}

func attrInt32(t AttrType, v int32) Attr {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(v))
	return Attr{Type: t, Data: b}
}

// NewInt32Attr builds a 32-bit signed integer attribute.
func NewInt32Attr(v int32) Attr { return attrInt32(Int32, v) }

// NewInt64Attr builds a 64-bit signed integer attribute.
func NewInt64Attr(v int64) Attr {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return Attr{Type: Int64, Data: b}
}

// NewFloat64Attr builds an IEEE-754 double attribute.
func NewFloat64Attr(v float64) Attr {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, math.Float64bits(v))
	return Attr{Type: Float64, Data: b}
}

// NewStringAttr builds a string attribute (raw bytes, no trailing NUL).
func NewStringAttr(v string) Attr {
	return Attr{Type: String, Data: []byte(v)}
}

// NewIPAttr builds an IPv4 attribute (exactly 4 bytes).
func NewIPAttr(v net.IP) Attr {
	v4 := v.To4()
	if v4 == nil {
		v4 = net.IPv4zero.To4()
	}
	data := make([]byte, 4)
	copy(data, v4)
	return Attr{Type: IPAddr, Data: data}
}

// NewTerminationAttr builds the end-of-stream sentinel attribute.
func NewTerminationAttr() Attr { return attrInt32(Termination, terminationPayload) }

// Int32 decodes a as a 32-bit signed integer; it errors if a isn't
// type-tagged Int32 or Termination (both carry a 4-byte big-endian int32).
func (a Attr) Int32() (int32, error) {
	if a.Type != Int32 && a.Type != Termination {
		return 0, fmt.Errorf("wire: attribute type %s is not int32", a.Type)
	}
	if len(a.Data) != 4 {
		return 0, fmt.Errorf("wire: int32 attribute has %d bytes, want 4", len(a.Data))
	}
	return int32(binary.BigEndian.Uint32(a.Data)), nil
}

// Int64 decodes a as a 64-bit signed integer.
func (a Attr) Int64() (int64, error) {
	if a.Type != Int64 {
		return 0, fmt.Errorf("wire: attribute type %s is not int64", a.Type)
	}
	if len(a.Data) != 8 {
		return 0, fmt.Errorf("wire: int64 attribute has %d bytes, want 8", len(a.Data))
	}
	return int64(binary.BigEndian.Uint64(a.Data)), nil
}

// Float64 decodes a as an IEEE-754 double.
func (a Attr) Float64() (float64, error) {
	if a.Type != Float64 {
		return 0, fmt.Errorf("wire: attribute type %s is not float64", a.Type)
	}
	if len(a.Data) != 8 {
		return 0, fmt.Errorf("wire: float64 attribute has %d bytes, want 8", len(a.Data))
	}
	return math.Float64frombits(binary.BigEndian.Uint64(a.Data)), nil
}

// String decodes a as a string.
func (a Attr) String() (string, error) {
	if a.Type != String {
		return "", fmt.Errorf("wire: attribute type %s is not string", a.Type)
	}
	return string(a.Data), nil
}

// IP decodes a as an IPv4 address.
func (a Attr) IP() (net.IP, error) {
	if a.Type != IPAddr {
		return nil, fmt.Errorf("wire: attribute type %s is not ip", a.Type)
	}
	if len(a.Data) != 4 {
		return nil, fmt.Errorf("wire: ip attribute has %d bytes, want 4", len(a.Data))
	}
	ip := make(net.IP, 4)
	copy(ip, a.Data)
	return ip, nil
}
