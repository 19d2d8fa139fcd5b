package transport

import (
	"context"
	"fmt"

	"github.com/netup/urfaclient/internal/wire"
)

// loginFuncID is the reserved function id the login handshake is framed
// under. The schema loader accepts any signed 32-bit id, 0 included, so a
// schema function declared with id 0 shares this id on the wire.
const loginFuncID = int32(0)

// login performs the authentication handshake: a login/pass/login_type
// request framed exactly like a function call, followed by a single int32
// status attribute in the response (0 = accepted).
func (c *Conn) login(ctx context.Context) error {
	if !c.cfg.LoginType.IsValid() {
		return fmt.Errorf("transport: invalid login_type %d", c.cfg.LoginType)
	}

	if err := c.StartFuncCall(ctx, loginFuncID); err != nil {
		return err
	}

	pkt := wire.NewPacket()
	pkt.Append(wire.NewStringAttr(c.cfg.Login))
	pkt.Append(wire.NewStringAttr(c.cfg.Pass))
	pkt.Append(wire.NewInt32Attr(int32(c.cfg.LoginType)))
	pkt.Append(wire.NewTerminationAttr())
	if err := c.Send(ctx, pkt); err != nil {
		return fmt.Errorf("transport: sending login request: %w", err)
	}

	resp, err := c.Recv(ctx)
	if err != nil {
		return fmt.Errorf("transport: receiving login response: %w", err)
	}
	statusAttr, ok := resp.FirstOfKind(wire.Int32)
	if !ok {
		return fmt.Errorf("transport: login response carried no status attribute")
	}
	status, err := statusAttr.Int32()
	if err != nil {
		return fmt.Errorf("transport: decoding login status: %w", err)
	}
	if status != 0 {
		return fmt.Errorf("transport: login rejected (status %d)", status)
	}
	return nil
}
