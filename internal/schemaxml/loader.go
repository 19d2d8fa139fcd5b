// Package schemaxml parses an API XML document into an ast.Schema: one
// in-memory function table keyed by name, each function carrying the two
// ASTs (in, out) the request and response interpreters walk.
package schemaxml

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/netup/urfaclient/internal/ast"
	"github.com/netup/urfaclient/internal/urfaerr"
)

// ErrAlreadyLoaded is returned by Load when the target Schema already has a
// file loaded into it — the loader is append-only per schema object.
var ErrAlreadyLoaded = urfaerr.Otherf("xmlapi: schema already has a file loaded")

// LoadFile parses path into a freshly created Schema.
func LoadFile(path string, opts ...Option) (*ast.Schema, error) {
	s := ast.NewSchema()
	if err := Load(s, path, opts...); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadReader parses XML read from r into a freshly created Schema. name is
// used only for diagnostics and Schema.File bookkeeping.
func LoadReader(r io.Reader, name string, opts ...Option) (*ast.Schema, error) {
	s := ast.NewSchema()
	if err := loadInto(s, r, name, opts...); err != nil {
		return nil, err
	}
	return s, nil
}

// Load parses path into container. Fails with ErrAlreadyLoaded if container
// already has a file loaded.
func Load(container *ast.Schema, path string, opts ...Option) error {
	f, err := os.Open(path)
	if err != nil {
		return urfaerr.Wrap(err, "xmlapi: opening %q", path)
	}
	defer f.Close()
	return loadInto(container, f, path, opts...)
}

func loadInto(container *ast.Schema, r io.Reader, name string, opts ...Option) error {
	if container.Loaded() {
		return ErrAlreadyLoaded
	}
	o := buildOptions(opts)

	root, err := parseXMLTree(r)
	if err != nil {
		e := urfaerr.Wrap(err, "xmlapi: parsing %q", name)
		urfaerr.Report(o.errFunc, o.userCtx, urfaerr.Other, e.Error())
		return e
	}

	if err := loadDocument(container, root, o); err != nil {
		urfaerr.Report(o.errFunc, o.userCtx, urfaerr.Other, err.Error())
		return err
	}
	container.MarkLoaded(name)
	return nil
}

func loadDocument(container *ast.Schema, root *elem, o *options) error {
	if !strings.EqualFold(root.Name, "urfa") {
		return urfaerr.Otherf("xmlapi: document of the wrong type, root node != urfa (got %q)", root.Name)
	}

	for _, fe := range root.Children {
		if !strings.EqualFold(fe.Name, "function") {
			continue
		}
		loadFunction(container, fe, o)
	}
	return nil
}

// loadFunction processes one <function> element. Failures here are
// non-fatal to the overall load: the function is skipped and a warning is
// reported through o.errFunc.
func loadFunction(container *ast.Schema, fe *elem, o *options) {
	name, ok := fe.attr("name")
	if !ok || name == "" {
		o.warn("xmlapi: unnamed function at offset %d", fe.Line)
		return
	}

	idStr, ok := fe.attr("id")
	if !ok || idStr == "" {
		o.warn("xmlapi: id not defined for function %q", name)
		return
	}
	id64, err := strconv.ParseInt(idStr, 0, 32)
	if err != nil {
		o.warn("xmlapi: wrong id %q for function %q", idStr, name)
		return
	}

	var inElem, outElem *elem
	for _, n := range fe.Children {
		switch {
		case strings.EqualFold(n.Name, "input"):
			inElem = n
		case strings.EqualFold(n.Name, "output"):
			outElem = n
		default:
			o.warn("xmlapi: unknown node name %q for function %q", n.Name, name)
		}
	}

	inTree, err := buildFuncDef(inElem, name)
	if err != nil {
		o.warn("xmlapi: building input definition for function %q: %v", name, err)
		return
	}
	outTree, err := buildFuncDef(outElem, name)
	if err != nil {
		o.warn("xmlapi: building output definition for function %q: %v", name, err)
		return
	}

	container.Put(&ast.Function{
		Name: name,
		ID:   int32(id64),
		In:   inTree,
		Out:  outTree,
	})
}
