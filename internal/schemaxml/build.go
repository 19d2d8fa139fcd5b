package schemaxml

import (
	"fmt"
	"strconv"

	"github.com/netup/urfaclient/internal/ast"
)

// buildFuncDef builds one side (in or out) of a function's body. A nil
// xmlRoot or one with no children yields an AST whose root has no children,
// matching the spec's "missing input/output is allowed" rule.
func buildFuncDef(xmlRoot *elem, funcName string) (*ast.Tree, error) {
	tr := ast.NewTree()
	if xmlRoot == nil || len(xmlRoot.Children) == 0 {
		return tr, nil
	}
	if err := processSiblings(tr, tr.Root, xmlRoot.Children, funcName); err != nil {
		return nil, err
	}
	return tr, nil
}

// processSiblings builds AST nodes for each element of elems, attaching them
// in order as children of parent. For FOR/IF elements with their own XML
// children it recurses to build the nested body. This is a recursive
// equivalent of the cursor/insertion-point walk in spec.md §4.2: each
// recursive call owns exactly one "insertion point" (parent) and appends
// nodes to it left to right, which produces the identical tree shape the
// iterative C algorithm builds.
func processSiblings(tr *ast.Tree, parent ast.NodeID, elems []*elem, funcName string) error {
	var prev ast.NodeID
	for _, e := range elems {
		id, err := buildNode(tr, parent, e, funcName)
		if err != nil {
			return err
		}
		n := tr.Node(id)
		n.Parent = parent
		if prev == ast.Nil {
			tr.Node(parent).Child = id
		} else {
			tr.Node(prev).Next = id
		}
		prev = id

		if (n.Kind == ast.For || n.Kind == ast.If) && len(e.Children) > 0 {
			if err := processSiblings(tr, id, e.Children, funcName); err != nil {
				return err
			}
		}
	}
	return nil
}

type attrSpec struct {
	name     string
	required bool
}

// getAttrs extracts each named attribute from e, erroring on the first
// missing required one. Missing optional attributes yield "".
func getAttrs(e *elem, specs []attrSpec) (map[string]string, error) {
	out := make(map[string]string, len(specs))
	for _, s := range specs {
		v, ok := e.attr(s.name)
		if !ok {
			if s.required {
				return nil, fmt.Errorf("no %q attribute on node %q", s.name, e.Name)
			}
			v = ""
		}
		out[s.name] = v
	}
	return out, nil
}

// buildNode allocates and fills in one node's own fields (not its links).
// The caller (processSiblings) attaches it into the tree and recurses into
// its body.
func buildNode(tr *ast.Tree, parent ast.NodeID, e *elem, funcName string) (ast.NodeID, error) {
	kind := ast.KindFromName(e.Name)

	switch kind {
	case ast.Integer, ast.String, ast.Long, ast.Double, ast.IPAddress:
		attrs, err := getAttrs(e, []attrSpec{
			{"name", true},
			{"array_index", false},
			{"default", false},
		})
		if err != nil {
			return ast.Nil, err
		}
		id := tr.New(kind)
		n := tr.Node(id)
		n.Name = attrs["name"]
		n.ArrayIndex = attrs["array_index"]
		n.DefVal = attrs["default"]
		return id, nil

	case ast.If:
		attrs, err := getAttrs(e, []attrSpec{
			{"variable", true},
			{"value", true},
			{"condition", true},
		})
		if err != nil {
			return ast.Nil, err
		}
		cond, ok := ast.ConditionFromName(attrs["condition"])
		if !ok {
			return ast.Nil, fmt.Errorf("wrong condition %q on 'if' node. Function: %q", attrs["condition"], funcName)
		}
		id := tr.New(kind)
		n := tr.Node(id)
		n.Variable = attrs["variable"]
		n.Value = attrs["value"]
		n.Condition = cond
		return id, nil

	case ast.Set:
		attrs, err := getAttrs(e, []attrSpec{
			{"src", false},
			{"src_index", false},
			{"dst", false},
			{"dst_index", false},
			{"value", false},
		})
		if err != nil {
			return ast.Nil, err
		}
		hasSrc := attrs["src"] != ""
		hasValue := attrs["value"] != ""
		hasDst := attrs["dst"] != ""
		if hasSrc && hasValue {
			return ast.Nil, fmt.Errorf(
				"both 'src' and 'value' properties exist in 'set' node (%s:%s). Function: %q",
				attrs["src"], attrs["value"], funcName)
		}
		if !hasSrc && !hasDst {
			return ast.Nil, fmt.Errorf(
				"no 'src' and no 'dst' property defined in 'set' node. Function: %q", funcName)
		}
		id := tr.New(kind)
		n := tr.Node(id)
		n.Src = attrs["src"]
		n.SrcIndex = attrs["src_index"]
		n.Dst = attrs["dst"]
		n.DstIndex = attrs["dst_index"]
		n.Value = attrs["value"]
		return id, nil

	case ast.For:
		attrs, err := getAttrs(e, []attrSpec{
			{"name", true},
			{"from", true},
			{"count", true},
		})
		if err != nil {
			return ast.Nil, err
		}
		rank := tr.ForRank(parent)
		id := tr.New(kind)
		n := tr.Node(id)
		n.Name = attrs["name"]
		n.From = attrs["from"]
		n.Count = attrs["count"]
		n.ArrayName = fmt.Sprintf("array-%d", rank)
		return id, nil

	case ast.Break:
		if !(tr.Node(parent).Kind == ast.For || tr.AncestorFor(parent)) {
			return ast.Nil, fmt.Errorf("BREAK without FOR. Function: %q", funcName)
		}
		return tr.New(kind), nil

	case ast.ErrorNode:
		attrs, err := getAttrs(e, []attrSpec{
			{"code", true},
			{"comment", false},
			{"variable", false},
		})
		if err != nil {
			return ast.Nil, err
		}
		code, err := strconv.ParseInt(attrs["code"], 10, 32)
		if err != nil {
			return ast.Nil, fmt.Errorf("wrong error code %q on node %q. Function: %q", attrs["code"], e.Name, funcName)
		}
		id := tr.New(kind)
		n := tr.Node(id)
		n.Code = int(code)
		n.Comment = attrs["comment"]
		n.ErrVariable = attrs["variable"]
		return id, nil

	default:
		return ast.Nil, fmt.Errorf("unknown node type %q. Function: %q", e.Name, funcName)
	}
}
