// Package paramhash implements the typed, list-indexed parameter/result
// container the request and response interpreters read and write. It plays
// the role the spec calls "hash": opaque to the interpreters beyond
// get/set by (name, index), a default-on-missing lookup, and debug
// enumeration.
package paramhash

import (
	"fmt"
	"io"
	"net"
	"sort"
)

// Type tags the scalar kind stored in a Value, matching the five leaf
// parameter types the wire protocol knows about.
type Type int

const (
	Int32 Type = iota
	Int64
	Float64
	String
	IP
)

func (t Type) String() string {
	switch t {
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float64:
		return "float64"
	case String:
		return "string"
	case IP:
		return "ip"
	default:
		return "unknown"
	}
}

// Value is one typed scalar stored at a (name, index) slot.
type Value struct {
	Type Type
	I32  int32
	I64  int64
	F64  float64
	Str  string
	IP   net.IP
}

func Int32Value(v int32) Value     { return Value{Type: Int32, I32: v} }
func Int64Value(v int64) Value     { return Value{Type: Int64, I64: v} }
func Float64Value(v float64) Value { return Value{Type: Float64, F64: v} }
func StringValue(v string) Value   { return Value{Type: String, Str: v} }
func IPValue(v net.IP) Value       { return Value{Type: IP, IP: v} }

// String renders v for logging / debug dumps.
func (v Value) String() string {
	switch v.Type {
	case Int32:
		return fmt.Sprintf("%d", v.I32)
	case Int64:
		return fmt.Sprintf("%d", v.I64)
	case Float64:
		return fmt.Sprintf("%g", v.F64)
	case String:
		return v.Str
	case IP:
		return v.IP.String()
	default:
		return "<invalid>"
	}
}

// Key addresses one slot: a parameter name plus a list index. A scalar
// (non-array) parameter always uses index 0.
type Key struct {
	Name  string
	Index int
}

// Hash is the key/index-addressed parameter container both interpreters
// read from and write to.
type Hash struct {
	data map[Key]Value
}

// New returns an empty Hash.
func New() *Hash {
	return &Hash{data: make(map[Key]Value)}
}

// Set stores v at (name, index), overwriting any prior value.
func (h *Hash) Set(name string, index int, v Value) {
	h.data[Key{Name: name, Index: index}] = v
}

// Get returns the value at (name, index), or ok=false if absent.
func (h *Hash) Get(name string, index int) (Value, bool) {
	v, ok := h.data[Key{Name: name, Index: index}]
	return v, ok
}

// GetOrDefault returns the value at (name, index), falling back to def if
// the slot is absent.
func (h *Hash) GetOrDefault(name string, index int, def Value) Value {
	if v, ok := h.Get(name, index); ok {
		return v
	}
	return def
}

// Delete removes the slot at (name, index), if present.
func (h *Hash) Delete(name string, index int) {
	delete(h.data, Key{Name: name, Index: index})
}

// Len reports the number of populated slots.
func (h *Hash) Len() int { return len(h.data) }

// Keys returns every populated key, sorted by (name, index) for
// deterministic enumeration and dumps.
func (h *Hash) Keys() []Key {
	out := make([]Key, 0, len(h.data))
	for k := range h.data {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Index < out[j].Index
	})
	return out
}

// Dump writes a human-readable listing of every slot to w, in the spirit
// of ourfa_hash_dump.
func (h *Hash) Dump(w io.Writer, header string) {
	if header != "" {
		fmt.Fprintln(w, header)
	}
	for _, k := range h.Keys() {
		v := h.data[k]
		fmt.Fprintf(w, "  %s[%d] = %s (%s)\n", k.Name, k.Index, v.String(), v.Type)
	}
}
