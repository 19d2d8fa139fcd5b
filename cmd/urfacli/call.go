package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	urfa "github.com/netup/urfaclient"
	"github.com/netup/urfaclient/internal/paramhash"
)

var callParams []string

var callCmd = &cobra.Command{
	Use:   "call <function>",
	Short: "Call one RPC function and dump its result",
	Args:  cobra.ExactArgs(1),
	RunE:  runCall,
}

func init() {
	callCmd.Flags().StringArrayVarP(&callParams, "param", "p", nil, "name=value, repeatable; name[index]=value addresses an array slot")
}

func runCall(cmd *cobra.Command, args []string) error {
	in, err := parseParams(callParams)
	if err != nil {
		return err
	}

	c, err := newClient()
	if err != nil {
		return err
	}
	if err := c.LoadSchema(); err != nil {
		return fmt.Errorf("loading schema: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), flagTimeout+5*time.Second)
	defer cancel()
	if err := c.Connect(ctx); err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	defer c.Disconnect()

	out, err := c.Call(ctx, args[0], in)
	if err != nil {
		return fmt.Errorf("calling %q: %w", args[0], err)
	}
	out.Dump(os.Stdout, args[0]+":")
	return nil
}

func newClient() (*urfa.Client, error) {
	return urfa.New(
		urfa.WithLogin(flagLogin),
		urfa.WithPassword(flagPass),
		urfa.WithServerPort(flagServerPort),
		urfa.WithSSL(flagSSL),
		urfa.WithAPIXMLFile(flagAPIXMLFile),
		urfa.WithTimeout(flagTimeout),
	)
}

// parseParams turns "-p a=1 -p b[2]=foo" into a paramhash.Hash of string
// values; the interpreter coerces each leaf to its schema type on send.
func parseParams(raw []string) (*paramhash.Hash, error) {
	h := paramhash.New()
	for _, p := range raw {
		name, value, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("invalid -p %q, want name=value", p)
		}
		index := 0
		if open := strings.IndexByte(name, '['); open >= 0 && strings.HasSuffix(name, "]") {
			var n int
			if _, err := fmt.Sscanf(name[open:], "[%d]", &n); err != nil {
				return nil, fmt.Errorf("invalid array index in -p %q: %w", p, err)
			}
			index = n
			name = name[:open]
		}
		h.Set(name, index, paramhash.StringValue(value))
	}
	return h, nil
}
