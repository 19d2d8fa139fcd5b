package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/netup/urfaclient/internal/ast"
	"github.com/netup/urfaclient/internal/schemaxml"
)

var dumpSchemaCmd = &cobra.Command{
	Use:   "dump-schema",
	Short: "Load one schema file (or every *.xml under a directory) and print its function table",
	Args:  cobra.NoArgs,
	RunE:  runDumpSchema,
}

func runDumpSchema(cmd *cobra.Command, args []string) error {
	paths, err := expandAPIXMLPath(flagAPIXMLFile)
	if err != nil {
		return err
	}

	schema := ast.NewSchema()
	for _, p := range paths {
		frag, err := schemaxml.LoadFile(p)
		if err != nil {
			return fmt.Errorf("loading %q: %w", p, err)
		}
		for _, name := range frag.Names() {
			fn, _ := frag.Func(name)
			schema.Put(fn)
		}
	}

	names := schema.Names()
	sort.Strings(names)
	for _, name := range names {
		fn, _ := schema.Func(name)
		fmt.Fprintf(os.Stdout, "%-32s id=%-6d in=%-3d out=%d\n",
			fn.Name, fn.ID, countLeaves(fn.In), countLeaves(fn.Out))
	}
	return nil
}

// expandAPIXMLPath returns path itself if it names a file, or every *.xml
// file beneath it (recursively) if it names a directory — the directory
// form exists only for dump-schema, which is free to merge several schema
// fragments that a single Client.LoadSchema call could never combine.
func expandAPIXMLPath(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	matches, err := doublestar.FilepathGlob(filepath.Join(path, "**", "*.xml"))
	if err != nil {
		return nil, fmt.Errorf("globbing %q: %w", path, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no *.xml files found under %q", path)
	}
	sort.Strings(matches)
	return matches, nil
}

// countLeaves counts a tree's leaf parameter nodes, recursively through
// IF/FOR bodies, to give dump-schema's table a rough shape of each
// function's arity without fully rendering the body.
func countLeaves(tr *ast.Tree) int {
	var walk func(id ast.NodeID) int
	walk = func(id ast.NodeID) int {
		n := 0
		for c := id; c != ast.Nil; c = tr.Node(c).Next {
			node := tr.Node(c)
			switch {
			case node.Kind.IsLeafParameter():
				n++
			case node.Kind == ast.If || node.Kind == ast.For:
				n += walk(node.Child)
			}
		}
		return n
	}
	return walk(tr.Node(tr.Root).Child)
}
