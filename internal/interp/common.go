// Package interp implements the request and response interpreters: the two
// tree-walkers that execute a function's "in" and "out" ASTs against a
// paramhash.Hash, turning one into an outgoing wire.Packet and the other
// from incoming wire.Packets into a result Hash.
package interp

import (
	"fmt"
	"net"
	"strconv"

	"github.com/netup/urfaclient/internal/ast"
	"github.com/netup/urfaclient/internal/paramhash"
	"github.com/netup/urfaclient/internal/wire"
)

// CallError is the structured abort raised by an ERROR node, carrying the
// code and comment the schema author supplied.
type CallError struct {
	Code    int
	Comment string
}

func (e *CallError) Error() string {
	if e.Comment != "" {
		return fmt.Sprintf("interp: function reported error %d: %s", e.Code, e.Comment)
	}
	return fmt.Sprintf("interp: function reported error %d", e.Code)
}

// exprInt evaluates a FOR's from/count or a leaf's array_index: an empty
// expression is 0 (the non-array case), a parseable literal is used
// directly, otherwise expr names a hash key (index 0) whose value is
// coerced to an integer.
func exprInt(h *paramhash.Hash, expr string) (int64, error) {
	if expr == "" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(expr, 10, 64); err == nil {
		return n, nil
	}
	v, ok := h.Get(expr, 0)
	if !ok {
		return 0, fmt.Errorf("interp: hash key %q referenced by an expression was not found", expr)
	}
	return valueAsInt64(v)
}

func valueAsInt64(v paramhash.Value) (int64, error) {
	switch v.Type {
	case paramhash.Int32:
		return int64(v.I32), nil
	case paramhash.Int64:
		return v.I64, nil
	case paramhash.Float64:
		return int64(v.F64), nil
	case paramhash.String:
		return strconv.ParseInt(v.Str, 10, 64)
	default:
		return 0, fmt.Errorf("interp: cannot coerce %s value to an integer", v.Type)
	}
}

func valueAsFloat64(v paramhash.Value) (float64, error) {
	switch v.Type {
	case paramhash.Int32:
		return float64(v.I32), nil
	case paramhash.Int64:
		return float64(v.I64), nil
	case paramhash.Float64:
		return v.F64, nil
	case paramhash.String:
		return strconv.ParseFloat(v.Str, 64)
	default:
		return 0, fmt.Errorf("interp: cannot coerce %s value to a double", v.Type)
	}
}

// evalIf compares the hash value at n.Variable against n.Value under EQ/NE,
// with textual coercion as the spec prescribes. A missing variable compares
// as the empty string.
func evalIf(n *ast.Node, h *paramhash.Hash) (bool, error) {
	lhs := ""
	if v, ok := h.Get(n.Variable, 0); ok {
		lhs = v.String()
	}
	equal := lhs == n.Value
	switch n.Condition {
	case ast.EQ:
		return equal, nil
	case ast.NE:
		return !equal, nil
	default:
		return false, fmt.Errorf("interp: if node has unrecognized condition %v", n.Condition)
	}
}

// execSet performs one SET node: either copy src[src_index] to dst[dst_index]
// or write the literal value to dst[dst_index]. A SET with only src (no dst)
// is a parseable but inert no-op.
func execSet(n *ast.Node, h *paramhash.Hash) error {
	var v paramhash.Value
	if n.Src != "" {
		idx, err := exprInt(h, n.SrcIndex)
		if err != nil {
			return err
		}
		got, ok := h.Get(n.Src, int(idx))
		if !ok {
			return fmt.Errorf("interp: set node's src %q[%d] not found", n.Src, idx)
		}
		v = got
	} else {
		v = paramhash.StringValue(n.Value)
	}
	if n.Dst == "" {
		return nil
	}
	idx, err := exprInt(h, n.DstIndex)
	if err != nil {
		return err
	}
	h.Set(n.Dst, int(idx), v)
	return nil
}

// buildNodeError materializes an ERROR node into a CallError, interpolating
// n.ErrVariable's hash value into the comment when present.
func buildNodeError(n *ast.Node, h *paramhash.Hash) *CallError {
	comment := n.Comment
	if n.ErrVariable != "" {
		if v, ok := h.Get(n.ErrVariable, 0); ok {
			if comment != "" {
				comment = fmt.Sprintf("%s (%s=%s)", comment, n.ErrVariable, v.String())
			} else {
				comment = fmt.Sprintf("%s=%s", n.ErrVariable, v.String())
			}
		}
	}
	return &CallError{Code: n.Code, Comment: comment}
}

// parseLiteral coerces a defval/literal string to kind's Go-typed Value, the
// way a leaf parameter's "default" attribute gets applied when its hash
// slot is absent.
func parseLiteral(kind ast.Kind, lit string) (paramhash.Value, error) {
	switch kind {
	case ast.Integer:
		n, err := strconv.ParseInt(lit, 10, 32)
		if err != nil {
			return paramhash.Value{}, fmt.Errorf("interp: invalid integer literal %q: %w", lit, err)
		}
		return paramhash.Int32Value(int32(n)), nil
	case ast.Long:
		n, err := strconv.ParseInt(lit, 10, 64)
		if err != nil {
			return paramhash.Value{}, fmt.Errorf("interp: invalid long literal %q: %w", lit, err)
		}
		return paramhash.Int64Value(n), nil
	case ast.Double:
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return paramhash.Value{}, fmt.Errorf("interp: invalid double literal %q: %w", lit, err)
		}
		return paramhash.Float64Value(f), nil
	case ast.String:
		return paramhash.StringValue(lit), nil
	case ast.IPAddress:
		ip := net.ParseIP(lit)
		if ip == nil {
			return paramhash.Value{}, fmt.Errorf("interp: invalid ip literal %q", lit)
		}
		return paramhash.IPValue(ip), nil
	default:
		return paramhash.Value{}, fmt.Errorf("interp: kind %v is not a leaf parameter type", kind)
	}
}

// toKindValue coerces an arbitrary stored Value to the Go type a leaf of
// kind expects, the way the C client trusts the hash to already hold the
// right type but a Go client should not.
func toKindValue(kind ast.Kind, v paramhash.Value) (paramhash.Value, error) {
	switch kind {
	case ast.Integer:
		n, err := valueAsInt64(v)
		if err != nil {
			return paramhash.Value{}, err
		}
		return paramhash.Int32Value(int32(n)), nil
	case ast.Long:
		n, err := valueAsInt64(v)
		if err != nil {
			return paramhash.Value{}, err
		}
		return paramhash.Int64Value(n), nil
	case ast.Double:
		f, err := valueAsFloat64(v)
		if err != nil {
			return paramhash.Value{}, err
		}
		return paramhash.Float64Value(f), nil
	case ast.String:
		return paramhash.StringValue(v.String()), nil
	case ast.IPAddress:
		if v.Type == paramhash.IP {
			return v, nil
		}
		ip := net.ParseIP(v.String())
		if ip == nil {
			return paramhash.Value{}, fmt.Errorf("interp: cannot coerce %q to an ip address", v.String())
		}
		return paramhash.IPValue(ip), nil
	default:
		return paramhash.Value{}, fmt.Errorf("interp: kind %v is not a leaf parameter type", kind)
	}
}

func valueToAttr(kind ast.Kind, v paramhash.Value) (wire.Attr, error) {
	tv, err := toKindValue(kind, v)
	if err != nil {
		return wire.Attr{}, err
	}
	switch tv.Type {
	case paramhash.Int32:
		return wire.NewInt32Attr(tv.I32), nil
	case paramhash.Int64:
		return wire.NewInt64Attr(tv.I64), nil
	case paramhash.Float64:
		return wire.NewFloat64Attr(tv.F64), nil
	case paramhash.String:
		return wire.NewStringAttr(tv.Str), nil
	case paramhash.IP:
		return wire.NewIPAttr(tv.IP), nil
	default:
		return wire.Attr{}, fmt.Errorf("interp: unsupported value type %v", tv.Type)
	}
}

func attrToValue(kind ast.Kind, a wire.Attr) (paramhash.Value, error) {
	switch kind {
	case ast.Integer:
		n, err := a.Int32()
		if err != nil {
			return paramhash.Value{}, err
		}
		return paramhash.Int32Value(n), nil
	case ast.Long:
		n, err := a.Int64()
		if err != nil {
			return paramhash.Value{}, err
		}
		return paramhash.Int64Value(n), nil
	case ast.Double:
		f, err := a.Float64()
		if err != nil {
			return paramhash.Value{}, err
		}
		return paramhash.Float64Value(f), nil
	case ast.String:
		s, err := a.String()
		if err != nil {
			return paramhash.Value{}, err
		}
		return paramhash.StringValue(s), nil
	case ast.IPAddress:
		ip, err := a.IP()
		if err != nil {
			return paramhash.Value{}, err
		}
		return paramhash.IPValue(ip), nil
	default:
		return paramhash.Value{}, fmt.Errorf("interp: unsupported leaf kind %v", kind)
	}
}
