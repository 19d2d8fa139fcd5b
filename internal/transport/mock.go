package transport

import "net"

// NewMockPair returns a Conn backed by one end of an in-process net.Pipe,
// plus the raw net.Conn for the other end so a test can script server-side
// behavior (respond to start_func_call frames, send canned packets) without
// a real socket. No login handshake runs; use it to exercise Send/Recv and
// the call orchestrator directly.
func NewMockPair(cfg Config) (client *Conn, serverRaw net.Conn) {
	c1, c2 := net.Pipe()
	return newConn(c1, cfg), c2
}
