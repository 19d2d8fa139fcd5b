// Package urfa is a client library for the URFA billing/subscriber
// RPC service: a binary, length-prefixed, attribute-tagged wire protocol
// over TCP/TLS, driven by an external XML schema describing each remote
// function's parameters. Load a schema, connect, and Call functions by
// name against a paramhash.Hash of arguments.
package urfa

import (
	"log/slog"
	"time"

	"github.com/netup/urfaclient/internal/schemaxml"
	"github.com/netup/urfaclient/internal/transport"
	"github.com/netup/urfaclient/internal/urfaerr"
)

// LoginType re-exports transport.LoginType so callers never need to import
// the internal package directly.
type LoginType = transport.LoginType

const (
	UserLogin   = transport.UserLogin
	SystemLogin = transport.SystemLogin
	CardLogin   = transport.CardLogin
)

// Config is the client's configuration table, matching spec.md §6 one for
// one. The zero value is not useful on its own; New always starts from
// DefaultConfig.
type Config struct {
	Login     string
	Pass      string
	LoginType LoginType

	// ServerPort is "host[:port]"; a missing port defaults to 11758.
	ServerPort string
	SSL        bool

	// APIXMLFile names either a single schema file or, via cmd/urfacli's
	// glob expansion, one of several fragments loaded in sequence.
	APIXMLFile string

	Timeout time.Duration

	// ErrorFunc, when set, is passed to the schema loader by LoadSchema and
	// receives every warning the loader emits, mirroring ourfa_xmlapi_set_err_f's (printf_err, ctx).
	ErrorFunc urfaerr.Func

	// Logger receives structured debug/info records for connect, schema
	// load, and call activity. A nil Logger is replaced by slog.Default().
	Logger *slog.Logger
}

// DefaultConfig mirrors the original client's compiled-in defaults.
func DefaultConfig() Config {
	return Config{
		Login:      "init",
		Pass:       "init",
		LoginType:  UserLogin,
		ServerPort: "localhost:11758",
		APIXMLFile: schemaxml.DefaultAPIXMLFile,
		Timeout:    5 * time.Second,
	}
}

// Option mutates a candidate Config; see Client.Configure for how
// candidates are validated before being committed.
type Option func(*Config)

func WithLogin(login string) Option     { return func(c *Config) { c.Login = login } }
func WithPassword(pass string) Option   { return func(c *Config) { c.Pass = pass } }
func WithLoginType(t LoginType) Option  { return func(c *Config) { c.LoginType = t } }
func WithServerPort(hostPort string) Option {
	return func(c *Config) { c.ServerPort = hostPort }
}
func WithSSL(enabled bool) Option          { return func(c *Config) { c.SSL = enabled } }
func WithAPIXMLFile(path string) Option    { return func(c *Config) { c.APIXMLFile = path } }
func WithTimeout(d time.Duration) Option   { return func(c *Config) { c.Timeout = d } }
func WithErrorFunc(f urfaerr.Func) Option  { return func(c *Config) { c.ErrorFunc = f } }
func WithLogger(l *slog.Logger) Option     { return func(c *Config) { c.Logger = l } }
