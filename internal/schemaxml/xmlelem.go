package schemaxml

import (
	"encoding/xml"
	"fmt"
	"io"
)

// elem is a generic, order-preserving XML element tree node. The loader
// walks api.xml into a tree of these before interpreting it into an
// ast.Tree — encoding/xml.Decoder's token stream gives positions and
// arbitrary nesting that xml.Unmarshal's static struct binding cannot, and
// the loader's recursive AST build (build.go) and its warnings need both.
type elem struct {
	Name     string
	Attrs    map[string]string
	Children []*elem
	Line     int64 // approximate: decoder's input offset at element start
}

func (e *elem) attr(name string) (string, bool) {
	v, ok := e.Attrs[name]
	return v, ok
}

// parseXMLTree decodes r into a single root elem, the way xmlDocGetRootElement
// + xmlNode traversal does in the C loader.
func parseXMLTree(r io.Reader) (*elem, error) {
	dec := xml.NewDecoder(r)
	var root *elem
	var stack []*elem

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("xml parse error at offset %d: %w", dec.InputOffset(), err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			ne := &elem{
				Name:  t.Name.Local,
				Attrs: make(map[string]string, len(t.Attr)),
				Line:  dec.InputOffset(),
			}
			for _, a := range t.Attr {
				ne.Attrs[a.Name.Local] = a.Value
			}
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				top.Children = append(top.Children, ne)
			} else if root == nil {
				root = ne
			}
			stack = append(stack, ne)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("xml parse error: unmatched closing tag %q", t.Name.Local)
			}
			stack = stack[:len(stack)-1]
		}
	}
	if root == nil {
		return nil, fmt.Errorf("xml document has no root element")
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("xml document has unclosed elements")
	}
	return root, nil
}
