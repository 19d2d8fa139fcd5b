package interp

import (
	"fmt"

	"github.com/netup/urfaclient/internal/ast"
	"github.com/netup/urfaclient/internal/paramhash"
	"github.com/netup/urfaclient/internal/wire"
)

// Status is the outcome of one Response.Feed call.
type Status int

const (
	// NeedMore means the walk consumed every attribute in the fed packet
	// and is suspended mid-tree, waiting for the next packet.
	NeedMore Status = iota
	// Done means the "out" tree has been fully walked; further Feed calls
	// are no-ops that return Done immediately.
	Done
	// Errored means the walk hit a type mismatch, an ERROR node, or some
	// other unrecoverable condition; the Response is now terminal.
	Errored
)

func (s Status) String() string {
	switch s {
	case NeedMore:
		return "NEED_MORE"
	case Done:
		return "DONE"
	case Errored:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

type frameKind int

const (
	scopeRoot frameKind = iota
	scopeIf
	scopeFor
)

// frame is one entry of the resumable walk's explicit stack, per spec §9's
// design note. A leaf suspension needs nothing beyond "cur": the top frame's
// cur already points at the exact node to resume at.
type frame struct {
	cur  ast.NodeID
	kind frameKind

	// scopeFor only.
	forNode     ast.NodeID
	loopIndex   int64
	loopCount   int64
	counterName string
	from        int64
}

// Response is a stateful, resumable walk of a function's "out" tree. Each
// inbound wire.Packet is fed in turn; the walk suspends at the first leaf
// parameter it cannot satisfy from the packet just fed and resumes exactly
// there on the next Feed call.
type Response struct {
	tree  *ast.Tree
	hash  *paramhash.Hash
	stack []frame

	attrs  []wire.Attr
	cursor int

	done bool
	err  error
}

// StartResponse looks up fn in schema and begins a Response walk over its
// "out" tree.
func StartResponse(schema *ast.Schema, fn string) (*Response, error) {
	f, ok := schema.Func(fn)
	if !ok {
		return nil, fmt.Errorf("interp: unknown function %q", fn)
	}
	return NewResponse(f.Out), nil
}

// NewResponse begins a Response walk over tree directly, for callers that
// already have the out-tree in hand.
func NewResponse(tree *ast.Tree) *Response {
	return &Response{
		tree: tree,
		hash: paramhash.New(),
		stack: []frame{
			{cur: tree.Node(tree.Root).Child, kind: scopeRoot},
		},
	}
}

// Feed supplies one more received packet to the walk. It is safe to call
// Feed again after a terminal result: after Done it is a no-op returning
// (Done, nil), and after Errored it returns (Errored, err) with the same
// error — this lets the caller always feed whatever it receives up to and
// including the packet carrying the TERMINATION attribute, matching the
// original client's receive loop rather than needing to special-case it.
func (r *Response) Feed(pkt *wire.Packet) (Status, error) {
	if r.err != nil {
		return Errored, r.err
	}
	if r.done {
		return Done, nil
	}

	r.attrs = pkt.Attrs()
	r.cursor = 0

	for {
		if len(r.stack) == 0 {
			r.done = true
			return Done, nil
		}
		top := &r.stack[len(r.stack)-1]

		if top.cur == ast.Nil {
			if top.kind == scopeFor {
				top.loopIndex++
				if top.loopIndex < top.loopCount {
					r.hash.Set(top.counterName, 0, paramhash.Int64Value(top.from+top.loopIndex))
					top.cur = r.tree.Node(top.forNode).Child
					continue
				}
			}
			r.stack = r.stack[:len(r.stack)-1]
			continue
		}

		id := top.cur
		n := r.tree.Node(id)

		switch {
		case n.Kind.IsLeafParameter():
			if r.cursor >= len(r.attrs) {
				return NeedMore, nil
			}
			a := r.attrs[r.cursor]
			r.cursor++
			val, err := attrToValue(n.Kind, a)
			if err != nil {
				r.err = fmt.Errorf("interp: parameter %q: %w", n.Name, err)
				return Errored, r.err
			}
			idx, err := exprInt(r.hash, n.ArrayIndex)
			if err != nil {
				r.err = fmt.Errorf("interp: parameter %q: %w", n.Name, err)
				return Errored, r.err
			}
			r.hash.Set(n.Name, int(idx), val)
			top.cur = n.Next

		case n.Kind == ast.If:
			top.cur = n.Next
			ok, err := evalIf(n, r.hash)
			if err != nil {
				r.err = err
				return Errored, err
			}
			if ok {
				r.stack = append(r.stack, frame{cur: n.Child, kind: scopeIf})
			}

		case n.Kind == ast.For:
			top.cur = n.Next
			from, err := exprInt(r.hash, n.From)
			if err != nil {
				r.err = fmt.Errorf("interp: for node %q: %w", n.Name, err)
				return Errored, r.err
			}
			count, err := exprInt(r.hash, n.Count)
			if err != nil {
				r.err = fmt.Errorf("interp: for node %q: %w", n.Name, err)
				return Errored, r.err
			}
			if count > 0 {
				r.hash.Set(n.Name, 0, paramhash.Int64Value(from))
				r.stack = append(r.stack, frame{
					cur:         n.Child,
					kind:        scopeFor,
					forNode:     id,
					loopIndex:   0,
					loopCount:   count,
					counterName: n.Name,
					from:        from,
				})
			}

		case n.Kind == ast.Set:
			if err := execSet(n, r.hash); err != nil {
				r.err = err
				return Errored, err
			}
			top.cur = n.Next

		case n.Kind == ast.Break:
			for {
				if len(r.stack) == 0 {
					r.err = fmt.Errorf("interp: BREAK with no enclosing FOR")
					return Errored, r.err
				}
				k := r.stack[len(r.stack)-1].kind
				r.stack = r.stack[:len(r.stack)-1]
				if k == scopeFor {
					break
				}
			}

		case n.Kind == ast.ErrorNode:
			r.err = buildNodeError(n, r.hash)
			return Errored, r.err

		default:
			r.err = fmt.Errorf("interp: unexpected node kind %v in response body", n.Kind)
			return Errored, r.err
		}
	}
}

// Incomplete reports whether the walk is still mid-tree (some leaf
// parameters were never satisfied). The call orchestrator treats this as a
// non-fatal condition worth a debug note, not an error: some functions'
// response bodies are genuinely optional past a certain point.
func (r *Response) Incomplete() bool {
	return r.err == nil && !r.done
}

// End returns the accumulated result hash. It fails only if the walk ended
// in Errored; an incomplete-but-not-errored walk still returns whatever was
// collected.
func (r *Response) End() (*paramhash.Hash, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.hash, nil
}
