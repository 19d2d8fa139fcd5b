package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

var functionsCmd = &cobra.Command{
	Use:   "functions",
	Short: "Load the schema and list the available function names and ids",
	Args:  cobra.NoArgs,
	RunE:  runFunctions,
}

func runFunctions(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	if err := c.LoadSchema(); err != nil {
		return fmt.Errorf("loading schema: %w", err)
	}

	schema := c.Schema()
	names := schema.Names()
	sort.Strings(names)
	for _, name := range names {
		fn, _ := schema.Func(name)
		fmt.Fprintf(os.Stdout, "%-32s %d\n", fn.Name, fn.ID)
	}
	return nil
}
