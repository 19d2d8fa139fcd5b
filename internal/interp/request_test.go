package interp_test

import (
	"strings"
	"testing"

	"github.com/netup/urfaclient/internal/ast"
	"github.com/netup/urfaclient/internal/interp"
	"github.com/netup/urfaclient/internal/paramhash"
	"github.com/netup/urfaclient/internal/schemaxml"
)

func mustFunc(t *testing.T, xmlDoc, fn string) *ast.Function {
	t.Helper()
	s, err := schemaxml.LoadReader(strings.NewReader(xmlDoc), "test.xml")
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	f, ok := s.Func(fn)
	if !ok {
		t.Fatalf("function %q not found", fn)
	}
	return f
}

func TestRequestLeafFromHash(t *testing.T) {
	f := mustFunc(t, `<urfa><function name="setx" id="1">
		<input><integer name="x"/><string name="s"/></input>
	</function></urfa>`, "setx")

	in := paramhash.New()
	in.Set("x", 0, paramhash.Int32Value(42))
	in.Set("s", 0, paramhash.StringValue("hello"))

	pkt, err := interp.Request(f.In, in)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if pkt.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", pkt.Len())
	}
	v, err := pkt.Attrs()[0].Int32()
	if err != nil || v != 42 {
		t.Fatalf("attr 0 = %d,%v want 42,nil", v, err)
	}
	s, err := pkt.Attrs()[1].String()
	if err != nil || s != "hello" {
		t.Fatalf("attr 1 = %q,%v want hello,nil", s, err)
	}
}

func TestRequestMissingRequiredParameterErrors(t *testing.T) {
	f := mustFunc(t, `<urfa><function name="setx" id="1">
		<input><integer name="x"/></input>
	</function></urfa>`, "setx")

	_, err := interp.Request(f.In, paramhash.New())
	if err == nil {
		t.Fatalf("expected an error for missing required parameter")
	}
}

func TestRequestDefaultValueUsedWhenMissing(t *testing.T) {
	f := mustFunc(t, `<urfa><function name="setx" id="1">
		<input><integer name="x" default="9"/></input>
	</function></urfa>`, "setx")

	pkt, err := interp.Request(f.In, paramhash.New())
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	v, err := pkt.Attrs()[0].Int32()
	if err != nil || v != 9 {
		t.Fatalf("attr 0 = %d,%v want 9,nil", v, err)
	}
}

func TestRequestForLoopEmitsOneAttrPerIteration(t *testing.T) {
	f := mustFunc(t, `<urfa><function name="addmany" id="1">
		<input><for name="i" from="0" count="cnt"><integer name="v" array_index="i"/></for></input>
	</function></urfa>`, "addmany")

	in := paramhash.New()
	in.Set("cnt", 0, paramhash.Int32Value(3))
	in.Set("v", 0, paramhash.Int32Value(10))
	in.Set("v", 1, paramhash.Int32Value(20))
	in.Set("v", 2, paramhash.Int32Value(30))

	pkt, err := interp.Request(f.In, in)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if pkt.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", pkt.Len())
	}
	for i, want := range []int32{10, 20, 30} {
		v, err := pkt.Attrs()[i].Int32()
		if err != nil || v != want {
			t.Fatalf("attr %d = %d,%v want %d,nil", i, v, err, want)
		}
	}
}

func TestRequestForLoopRestoresCounterAfterExit(t *testing.T) {
	f := mustFunc(t, `<urfa><function name="f" id="1">
		<input><for name="i" from="0" count="2"><integer name="v" array_index="i"/></for></input>
	</function></urfa>`, "f")

	in := paramhash.New()
	in.Set("i", 0, paramhash.StringValue("sentinel"))
	in.Set("v", 0, paramhash.Int32Value(1))
	in.Set("v", 1, paramhash.Int32Value(2))

	if _, err := interp.Request(f.In, in); err != nil {
		t.Fatalf("Request: %v", err)
	}
	got, ok := in.Get("i", 0)
	if !ok || got.String() != "sentinel" {
		t.Fatalf("i[0] = %+v, want restored sentinel value", got)
	}
}

func TestRequestIfGatesChildren(t *testing.T) {
	f := mustFunc(t, `<urfa><function name="f" id="1">
		<input>
			<if variable="mode" value="full" condition="eq"><integer name="extra" default="1"/></if>
		</input>
	</function></urfa>`, "f")

	inFull := paramhash.New()
	inFull.Set("mode", 0, paramhash.StringValue("full"))
	pkt, err := interp.Request(f.In, inFull)
	if err != nil {
		t.Fatalf("Request (full): %v", err)
	}
	if pkt.Len() != 1 {
		t.Fatalf("full: Len() = %d, want 1", pkt.Len())
	}

	inOther := paramhash.New()
	inOther.Set("mode", 0, paramhash.StringValue("basic"))
	pkt, err = interp.Request(f.In, inOther)
	if err != nil {
		t.Fatalf("Request (basic): %v", err)
	}
	if pkt.Len() != 0 {
		t.Fatalf("basic: Len() = %d, want 0", pkt.Len())
	}
}

func TestRequestBreakStopsForEarly(t *testing.T) {
	f := mustFunc(t, `<urfa><function name="f" id="1">
		<input>
			<for name="i" from="0" count="5">
				<if variable="i" value="2" condition="eq"><break/></if>
				<integer name="v" array_index="i"/>
			</for>
		</input>
	</function></urfa>`, "f")

	in := paramhash.New()
	for i := 0; i < 5; i++ {
		in.Set("v", i, paramhash.Int32Value(int32(i)))
	}
	pkt, err := interp.Request(f.In, in)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if pkt.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (iterations 0 and 1 before break at i=2)", pkt.Len())
	}
}

func TestRequestErrorNodeAbortsWithCallError(t *testing.T) {
	f := mustFunc(t, `<urfa><function name="f" id="1">
		<input>
			<if variable="mode" value="bad" condition="eq"><error code="42" comment="bad mode"/></if>
		</input>
	</function></urfa>`, "f")

	in := paramhash.New()
	in.Set("mode", 0, paramhash.StringValue("bad"))
	_, err := interp.Request(f.In, in)
	if err == nil {
		t.Fatalf("expected an error")
	}
	ce, ok := err.(*interp.CallError)
	if !ok {
		t.Fatalf("err = %T, want *interp.CallError", err)
	}
	if ce.Code != 42 {
		t.Fatalf("Code = %d, want 42", ce.Code)
	}
}

func TestRequestSetCopiesValue(t *testing.T) {
	f := mustFunc(t, `<urfa><function name="f" id="1">
		<input>
			<set src="a" dst="b"/>
			<integer name="b"/>
		</input>
	</function></urfa>`, "f")

	in := paramhash.New()
	in.Set("a", 0, paramhash.Int32Value(77))
	pkt, err := interp.Request(f.In, in)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	v, err := pkt.Attrs()[0].Int32()
	if err != nil || v != 77 {
		t.Fatalf("attr 0 = %d,%v want 77,nil", v, err)
	}
}
