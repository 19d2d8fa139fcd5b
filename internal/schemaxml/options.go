package schemaxml

import "github.com/netup/urfaclient/internal/urfaerr"

// DefaultAPIXMLFile is the path the original client falls back to when no
// explicit api_xml_dir/api_xml_file configuration is supplied.
const DefaultAPIXMLFile = "/netup/utm5/xml/api.xml"

// options carries the loader's optional diagnostic sink, mirroring
// ourfa_xmlapi_set_err_f's (printf_err, err_ctx) pair.
type options struct {
	errFunc urfaerr.Func
	userCtx any
}

// Option configures a Load/LoadFile/LoadReader call.
type Option func(*options)

// WithErrorFunc installs a callback invoked for every non-fatal warning the
// loader emits (unnamed functions, unparseable ids, unknown child elements,
// per-function AST build failures) as well as for the XML parse error or
// wrong root element that aborts a load.
func WithErrorFunc(f urfaerr.Func) Option {
	return func(o *options) { o.errFunc = f }
}

// WithUserContext sets the opaque value passed through to the error
// callback unchanged.
func WithUserContext(ctx any) Option {
	return func(o *options) { o.userCtx = ctx }
}

func buildOptions(opts []Option) *options {
	o := &options{}
	for _, apply := range opts {
		apply(o)
	}
	return o
}

func (o *options) warn(format string, args ...any) {
	e := urfaerr.Otherf(format, args...)
	urfaerr.Report(o.errFunc, o.userCtx, urfaerr.Other, e.Error())
}
