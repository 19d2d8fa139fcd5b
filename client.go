package urfa

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"

	"github.com/netup/urfaclient/internal/ast"
	"github.com/netup/urfaclient/internal/interp"
	"github.com/netup/urfaclient/internal/paramhash"
	"github.com/netup/urfaclient/internal/schemaxml"
	"github.com/netup/urfaclient/internal/transport"
	"github.com/netup/urfaclient/internal/urfaerr"
	"github.com/netup/urfaclient/internal/wire"
)

// Client is one context owning at most one schema and one connection, per
// spec.md §5's ownership model. Every method takes the client's lock for
// its whole duration, so concurrent Calls run one after another, and a
// Configure/Connect/Disconnect issued while a Call is in progress waits
// until that Call returns.
type Client struct {
	mu      sync.Mutex
	cfg     Config
	schema  *ast.Schema
	conn    *transport.Conn
	lastErr string
	logger  *slog.Logger
}

// New builds a Client from DefaultConfig plus opts.
func New(opts ...Option) (*Client, error) {
	c := &Client{cfg: DefaultConfig(), logger: slog.Default()}
	if err := c.Configure(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// Configure applies opts to a candidate copy of the configuration,
// validates it, and only then commits — mirroring ourfa_set_conf's
// tmp-then-commit discipline. Rejected while connected.
func (c *Client) Configure(opts ...Option) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return c.fail(urfaerr.Otherf("urfa: cannot set configuration while connected, disconnect first"))
	}

	tmp := c.cfg
	for _, apply := range opts {
		apply(&tmp)
	}
	if !tmp.LoginType.IsValid() {
		return c.fail(urfaerr.Otherf("urfa: invalid login_type %v", tmp.LoginType))
	}
	if tmp.Logger != nil {
		c.logger = tmp.Logger
	}
	c.cfg = tmp
	return nil
}

// LoadSchema parses cfg.APIXMLFile into the client's schema. Schema load is
// one-shot: a second call fails with ErrAlreadyLoaded.
func (c *Client) LoadSchema() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.schema == nil {
		c.schema = ast.NewSchema()
	}
	var opts []schemaxml.Option
	if c.cfg.ErrorFunc != nil {
		opts = append(opts, schemaxml.WithErrorFunc(c.cfg.ErrorFunc))
	}
	if err := schemaxml.Load(c.schema, c.cfg.APIXMLFile, opts...); err != nil {
		return c.fail(err)
	}
	c.logger.Debug("schema loaded", "file", c.cfg.APIXMLFile, "functions", c.schema.Len())
	return nil
}

// Connect dials the configured server and runs the login handshake. Safe
// to call again once Disconnect has been called.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return nil
	}

	host, port, err := splitServerPort(c.cfg.ServerPort)
	if err != nil {
		return c.fail(urfaerr.Otherf("urfa: %v", err))
	}

	tcfg := transport.Config{
		Host:      host,
		Port:      port,
		Login:     c.cfg.Login,
		Pass:      c.cfg.Pass,
		LoginType: c.cfg.LoginType,
		SSL:       c.cfg.SSL,
		Timeout:   c.cfg.Timeout,
		DebugLog: func(format string, args ...any) {
			c.logger.Debug(fmt.Sprintf(format, args...))
		},
	}

	conn, err := transport.Dial(ctx, tcfg)
	if err != nil {
		return c.fail(urfaerr.Wrap(err, "urfa: connect"))
	}
	c.conn = conn
	c.logger.Debug("connected", "server_port", c.cfg.ServerPort, "ssl", c.cfg.SSL)
	return nil
}

// Disconnect closes the connection, if any. Call holds the client's lock
// for its whole duration, so a Disconnect issued while a Call is in flight
// on another goroutine waits for that Call to return and then closes; it
// does not interrupt the Call.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	if err != nil {
		return c.fail(err)
	}
	return nil
}

// LastError returns the most recently rendered failure message, mirroring
// the fixed err_msg buffer of the original client.
func (c *Client) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Schema returns the client's loaded schema, or nil if LoadSchema has not
// been called yet. Exposed for tooling (cmd/urfacli's dump-schema and
// functions subcommands) that needs to enumerate the function table
// directly rather than through Call.
func (c *Client) Schema() *ast.Schema {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.schema
}

// Call is the Call Orchestrator of spec.md §4.5: resolve name in the loaded
// schema, drive the Request Interpreter to build and send a request packet
// (when the function takes arguments), then drive the Response Interpreter
// over received packets until a TERMINATION attribute is observed.
func (c *Client) Call(ctx context.Context, name string, in *paramhash.Hash) (*paramhash.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.schema == nil || !c.schema.Loaded() {
		return nil, c.fail(urfaerr.Otherf("urfa: XML api not loaded"))
	}
	if c.conn == nil {
		return nil, c.fail(urfaerr.Otherf("urfa: not connected"))
	}
	fn, ok := c.schema.Func(name)
	if !ok {
		return nil, c.fail(urfaerr.Otherf("urfa: unknown function %q", name))
	}
	if in == nil {
		in = paramhash.New()
	}

	if err := c.conn.StartFuncCall(ctx, fn.ID); err != nil {
		return nil, c.fail(urfaerr.Otherf("urfa: calling %q: %v", name, err))
	}

	// A function with no input parameters has nothing to marshal: per
	// ourfa_call's pkt_in-stays-NULL path, skip building and sending a
	// request packet entirely, relying on start_func_call alone.
	if fn.In.HasBody() {
		pkt, err := interp.Request(fn.In, in)
		if err != nil {
			return nil, c.fail(urfaerr.Otherf("urfa: building request for %q: %v", name, err))
		}
		pkt.Append(wire.NewTerminationAttr())
		if err := c.conn.Send(ctx, pkt); err != nil {
			return nil, c.fail(urfaerr.Otherf("urfa: sending request for %q: %v", name, err))
		}
	}

	resp := interp.NewResponse(fn.Out)
	for {
		recvPkt, err := c.conn.Recv(ctx)
		if err != nil {
			return nil, c.fail(urfaerr.Otherf("urfa: receiving response for %q: %v", name, err))
		}
		_, hasTerm := recvPkt.FirstOfKind(wire.Termination)

		if _, err := resp.Feed(recvPkt); err != nil {
			if ce, ok := err.(*interp.CallError); ok {
				c.lastErr = ce.Error()
				return nil, ce
			}
			return nil, c.fail(urfaerr.Otherf("urfa: interpreting response for %q: %v", name, err))
		}
		if hasTerm {
			break
		}
	}

	if resp.Incomplete() {
		c.logger.Debug("response interpreter stopped mid-walk", "function", name)
	}
	result, err := resp.End()
	if err != nil {
		return nil, c.fail(err)
	}
	return result, nil
}

func (c *Client) fail(err error) error {
	c.lastErr = err.Error()
	return err
}

func splitServerPort(s string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return s, 11758, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port in server_port %q: %w", s, err)
	}
	return host, port, nil
}
