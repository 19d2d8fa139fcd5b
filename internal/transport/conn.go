package transport

import (
	"context"
	"crypto/tls"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/netup/urfaclient/internal/wire"
)

// callFrameMarker tags the fixed-size frame StartFuncCall writes ahead of a
// function call's packet stream, distinguishing it on the wire from the
// ordinary length-prefixed packet frames Send/Recv exchange.
const callFrameMarker = 0xF0

// Conn is one authenticated connection to a URFA server: a dialed
// net.Conn plus the length-prefixed packet framing and function-call
// envelope the protocol layers on top.
type Conn struct {
	cfg Config
	nc  net.Conn
}

// Dial opens a TCP (or, per cfg.SSL, TLS) connection to cfg.Host:cfg.Port
// and performs the login handshake. The returned Conn is ready for
// StartFuncCall/Send/Recv. Ctx and cfg.Timeout both bound the dial; the
// earlier deadline wins.
func Dial(ctx context.Context, cfg Config) (*Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	dialCtx, cancel := withTimeout(ctx, cfg.Timeout)
	defer cancel()

	dialer := &net.Dialer{}
	var nc net.Conn
	var err error
	if cfg.SSL {
		tlsDialer := &tls.Dialer{
			NetDialer: dialer,
			Config:    &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify},
		}
		nc, err = tlsDialer.DialContext(dialCtx, "tcp", addr)
	} else {
		nc, err = dialer.DialContext(dialCtx, "tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("transport: dialing %s: %w", addr, err)
	}

	c := newConn(nc, cfg)
	if err := c.login(ctx); err != nil {
		nc.Close()
		return nil, err
	}
	return c, nil
}

// newConn wraps an already-connected net.Conn without running the login
// handshake. Dial uses it to get the Conn it then runs login on;
// NewMockPair uses it for tests that drive the pair directly.
func newConn(nc net.Conn, cfg Config) *Conn {
	return &Conn{cfg: cfg, nc: nc}
}

// Close shuts down the underlying connection. Any call in flight aborts
// with a transport error, per spec.md's cancellation model.
func (c *Conn) Close() error { return c.nc.Close() }

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func (c *Conn) setDeadline(ctx context.Context) error {
	deadline := time.Now().Add(c.cfg.Timeout)
	if c.cfg.Timeout <= 0 {
		deadline = time.Time{}
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}
	return c.nc.SetDeadline(deadline)
}

// StartFuncCall announces the id of the function about to be called,
// framing it as spec.md's "sender issues start_func_call(id)" step.
func (c *Conn) StartFuncCall(ctx context.Context, id int32) error {
	if err := c.setDeadline(ctx); err != nil {
		return err
	}
	hdr := make([]byte, 5)
	hdr[0] = callFrameMarker
	binary.BigEndian.PutUint32(hdr[1:], uint32(id))
	if _, err := c.nc.Write(hdr); err != nil {
		return fmt.Errorf("transport: start_func_call(%d): %w", id, err)
	}
	c.cfg.debugf("-> start_func_call(%d)", id)
	return nil
}

// Send transmits one packet, length-prefixed, honoring ctx and cfg.Timeout.
func (c *Conn) Send(ctx context.Context, pkt *wire.Packet) error {
	if err := c.setDeadline(ctx); err != nil {
		return err
	}
	body, err := pkt.Marshal()
	if err != nil {
		return fmt.Errorf("transport: marshaling packet: %w", err)
	}
	hdr := make([]byte, 4)
	binary.BigEndian.PutUint32(hdr, uint32(len(body)))
	if _, err := c.nc.Write(hdr); err != nil {
		return fmt.Errorf("transport: writing packet header: %w", err)
	}
	if _, err := c.nc.Write(body); err != nil {
		return fmt.Errorf("transport: writing packet body: %w", err)
	}
	c.cfg.debugf("-> packet (%d attrs, %d bytes)", pkt.Len(), len(body))
	return nil
}

// Recv reads one length-prefixed packet, honoring ctx and cfg.Timeout.
func (c *Conn) Recv(ctx context.Context) (*wire.Packet, error) {
	if err := c.setDeadline(ctx); err != nil {
		return nil, err
	}
	hdr := make([]byte, 4)
	if _, err := io.ReadFull(c.nc, hdr); err != nil {
		return nil, fmt.Errorf("transport: reading packet header: %w", err)
	}
	n := binary.BigEndian.Uint32(hdr)
	body := make([]byte, n)
	if _, err := io.ReadFull(c.nc, body); err != nil {
		return nil, fmt.Errorf("transport: reading packet body: %w", err)
	}
	pkt, err := wire.ParsePacket(body)
	if err != nil {
		return nil, fmt.Errorf("transport: parsing packet: %w", err)
	}
	c.cfg.debugf("<- packet (%d attrs, %d bytes)", pkt.Len(), len(body))
	return pkt, nil
}
