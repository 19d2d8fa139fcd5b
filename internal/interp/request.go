package interp

import (
	"errors"
	"fmt"

	"github.com/netup/urfaclient/internal/ast"
	"github.com/netup/urfaclient/internal/paramhash"
	"github.com/netup/urfaclient/internal/wire"
)

// errBreak unwinds execRequest up to the nearest enclosing FOR loop. The
// loader rejects any BREAK without an enclosing FOR, so a live *ast.Tree
// should never let it escape execRequestFor; it surfaces to the caller only
// if that invariant is somehow violated.
var errBreak = errors.New("interp: break")

// Request walks tree (a function's "in" body) against in, appending one
// wire attribute per leaf parameter it visits and evaluating IF/FOR/SET/ERROR
// control nodes along the way. The caller is responsible for appending the
// trailing termination attribute once the request packet is otherwise
// complete.
func Request(tree *ast.Tree, in *paramhash.Hash) (*wire.Packet, error) {
	pkt := wire.NewPacket()
	if err := execRequest(tree, tree.Node(tree.Root).Child, in, pkt); err != nil {
		if err == errBreak {
			return nil, fmt.Errorf("interp: BREAK with no enclosing FOR")
		}
		return nil, err
	}
	return pkt, nil
}

func execRequest(tr *ast.Tree, start ast.NodeID, in *paramhash.Hash, pkt *wire.Packet) error {
	for id := start; id != ast.Nil; {
		n := tr.Node(id)
		switch {
		case n.Kind.IsLeafParameter():
			if err := emitRequestLeaf(n, in, pkt); err != nil {
				return err
			}
		case n.Kind == ast.If:
			ok, err := evalIf(n, in)
			if err != nil {
				return err
			}
			if ok {
				if err := execRequest(tr, n.Child, in, pkt); err != nil {
					return err
				}
			}
		case n.Kind == ast.For:
			if err := execRequestFor(tr, id, in, pkt); err != nil {
				return err
			}
		case n.Kind == ast.Set:
			if err := execSet(n, in); err != nil {
				return err
			}
		case n.Kind == ast.Break:
			return errBreak
		case n.Kind == ast.ErrorNode:
			return buildNodeError(n, in)
		default:
			return fmt.Errorf("interp: unexpected node kind %v in request body", n.Kind)
		}
		id = n.Next
	}
	return nil
}

// execRequestFor evaluates a FOR loop, iterating its body with the loop
// counter published into the hash at (name, 0) for the duration, restoring
// whatever was there (or removing the slot) once the loop exits.
func execRequestFor(tr *ast.Tree, id ast.NodeID, in *paramhash.Hash, pkt *wire.Packet) error {
	n := tr.Node(id)
	from, err := exprInt(in, n.From)
	if err != nil {
		return fmt.Errorf("interp: for node %q: %w", n.Name, err)
	}
	count, err := exprInt(in, n.Count)
	if err != nil {
		return fmt.Errorf("interp: for node %q: %w", n.Name, err)
	}

	prevVal, hadPrev := in.Get(n.Name, 0)
	defer func() {
		if hadPrev {
			in.Set(n.Name, 0, prevVal)
		} else {
			in.Delete(n.Name, 0)
		}
	}()

	body := n.Child
	for i := int64(0); i < count; i++ {
		in.Set(n.Name, 0, paramhash.Int64Value(from+i))
		err := execRequest(tr, body, in, pkt)
		if err == errBreak {
			break
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func emitRequestLeaf(n *ast.Node, in *paramhash.Hash, pkt *wire.Packet) error {
	idx, err := exprInt(in, n.ArrayIndex)
	if err != nil {
		return fmt.Errorf("interp: parameter %q: %w", n.Name, err)
	}

	v, ok := in.Get(n.Name, int(idx))
	if !ok {
		if n.DefVal == "" {
			return fmt.Errorf("interp: missing required parameter %q", n.Name)
		}
		v, err = parseLiteral(n.Kind, n.DefVal)
		if err != nil {
			return fmt.Errorf("interp: parameter %q: %w", n.Name, err)
		}
	}

	attr, err := valueToAttr(n.Kind, v)
	if err != nil {
		return fmt.Errorf("interp: parameter %q: %w", n.Name, err)
	}
	pkt.Append(attr)
	return nil
}
