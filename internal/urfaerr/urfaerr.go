// Package urfaerr defines the error kinds and the *Error type the schema
// loader and the public client report failures with. The interp and
// transport packages return plain errors, which the client wraps into an
// *Error, except that Call returns an ERROR node's *interp.CallError as is.
package urfaerr

import "fmt"

// Kind classifies an Error the way the original C client distinguished
// allocation/OS failures from protocol and schema violations.
type Kind int

const (
	// Other covers schema violations, protocol violations, configuration
	// misuse, and interpreter failures — anything that isn't a resource
	// failure.
	Other Kind = iota
	// System covers allocation or OS-level failures.
	System
)

func (k Kind) String() string {
	switch k {
	case System:
		return "SYSTEM"
	case Other:
		return "OTHER"
	default:
		return "UNKNOWN"
	}
}

// Error is the structured error type the schema loader and the client return.
// It carries a Kind, a formatted message, and optionally wraps an
// underlying cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Otherf builds an OTHER error, mirroring printf_err(OURFA_ERROR_OTHER, ...)
// in the original client.
func Otherf(format string, args ...any) *Error {
	return &Error{Kind: Other, Msg: fmt.Sprintf(format, args...)}
}

// Systemf builds a SYSTEM error.
func Systemf(format string, args ...any) *Error {
	return &Error{Kind: System, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches an existing error as the cause of a new OTHER error.
func Wrap(err error, format string, args ...any) *Error {
	return &Error{Kind: Other, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Func is the optional diagnostic callback threaded through the loader and
// the client, mirroring ourfa_xmlapi_set_err_f's (printf_err, err_ctx) pair.
// The callback may override the Kind that gets returned to the caller.
type Func func(kind Kind, userCtx any, msg string) Kind

// Report invokes f if non-nil and returns the (possibly overridden) Kind.
// A nil f is a no-op that returns kind unchanged.
func Report(f Func, userCtx any, kind Kind, msg string) Kind {
	if f == nil {
		return kind
	}
	return f(kind, userCtx, msg)
}
