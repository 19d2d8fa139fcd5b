package schemaxml

import (
	"errors"
	"strings"
	"testing"

	"github.com/netup/urfaclient/internal/ast"
	"github.com/netup/urfaclient/internal/urfaerr"
)

func mustLoad(t *testing.T, xmlDoc string, opts ...Option) *ast.Schema {
	t.Helper()
	s, err := LoadReader(strings.NewReader(xmlDoc), "test.xml", opts...)
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	return s
}

func TestLoadEmptyFunction(t *testing.T) {
	s := mustLoad(t, `<urfa><function name="ping" id="1"/></urfa>`)
	f, ok := s.Func("ping")
	if !ok {
		t.Fatalf("function 'ping' not found")
	}
	if f.ID != 1 {
		t.Fatalf("id = %d, want 1", f.ID)
	}
	if f.In.HasBody() || f.Out.HasBody() {
		t.Fatalf("ping should have empty in/out bodies")
	}
}

func TestLoadInputLeafParameter(t *testing.T) {
	s := mustLoad(t, `<urfa><function name="setx" id="2">
		<input><integer name="x"/></input>
	</function></urfa>`)
	f, _ := s.Func("setx")
	if !f.In.HasBody() {
		t.Fatalf("setx.in should have a body")
	}
	child := f.In.Node(f.In.Node(f.In.Root).Child)
	if child.Kind != ast.Integer || child.Name != "x" {
		t.Fatalf("got %+v, want Integer name=x", child)
	}
}

func TestLoadDefaultValue(t *testing.T) {
	s := mustLoad(t, `<urfa><function name="setx" id="2">
		<input><integer name="x" default="7"/></input>
	</function></urfa>`)
	f, _ := s.Func("setx")
	child := f.In.Node(f.In.Node(f.In.Root).Child)
	if child.DefVal != "7" {
		t.Fatalf("DefVal = %q, want 7", child.DefVal)
	}
}

func TestLoadForOutputAndArrayName(t *testing.T) {
	s := mustLoad(t, `<urfa><function name="listx" id="3">
		<output><for name="i" from="0" count="cnt"><integer name="v" array_index="i"/></for></output>
	</function></urfa>`)
	f, _ := s.Func("listx")
	forID := f.Out.Node(f.Out.Root).Child
	forNode := f.Out.Node(forID)
	if forNode.Kind != ast.For || forNode.ArrayName != "array-1" {
		t.Fatalf("for node = %+v, want kind For array_name array-1", forNode)
	}
	child := f.Out.Node(forNode.Child)
	if child.Kind != ast.Integer || child.Name != "v" || child.ArrayIndex != "i" {
		t.Fatalf("for child = %+v", child)
	}
}

func TestForRankAcrossMultipleSiblingFors(t *testing.T) {
	s := mustLoad(t, `<urfa><function name="f" id="1">
		<input>
			<for name="i" from="0" count="2"><integer name="a"/></for>
			<for name="j" from="0" count="3"><integer name="b"/></for>
		</input>
	</function></urfa>`)
	f, _ := s.Func("f")
	first := f.In.Node(f.In.Node(f.In.Root).Child)
	second := f.In.Node(first.Next)
	if first.ArrayName != "array-1" {
		t.Fatalf("first.ArrayName = %q, want array-1", first.ArrayName)
	}
	if second.ArrayName != "array-2" {
		t.Fatalf("second.ArrayName = %q, want array-2", second.ArrayName)
	}
}

func TestSetWithSrcAndValueSkipsFunction(t *testing.T) {
	var warnings []string
	s := mustLoad(t, `<urfa><function name="bad" id="1">
		<input><set src="a" value="1"/></input>
	</function></urfa>`, WithErrorFunc(func(kind urfaerr.Kind, ctx any, msg string) urfaerr.Kind {
		warnings = append(warnings, msg)
		return kind
	}))
	if len(warnings) == 0 {
		t.Fatalf("expected a warning for the invalid SET node")
	}
	if _, ok := s.Func("bad"); ok {
		t.Fatalf("function with invalid SET node should have been skipped")
	}
}

func TestBreakWithoutForIsRejected(t *testing.T) {
	s := mustLoad(t, `<urfa><function name="bad" id="1">
		<input><break/></input>
	</function></urfa>`)
	if _, ok := s.Func("bad"); ok {
		t.Fatalf("function with orphan BREAK should have been skipped")
	}
}

func TestBreakInsideForIsAccepted(t *testing.T) {
	s := mustLoad(t, `<urfa><function name="good" id="1">
		<input><for name="i" from="0" count="5"><break/></for></input>
	</function></urfa>`)
	if _, ok := s.Func("good"); !ok {
		t.Fatalf("function with BREAK inside FOR should have loaded")
	}
}

func TestUnknownNodeKindRejected(t *testing.T) {
	for _, kind := range []string{"call", "parameter", "message", "shift", "remove", "bogus"} {
		s := mustLoad(t, `<urfa><function name="bad" id="1">
			<input><`+kind+`/></input>
		</function></urfa>`)
		if _, ok := s.Func("bad"); ok {
			t.Fatalf("function using reserved/unknown kind %q should have been skipped", kind)
		}
	}
}

func TestDuplicateFunctionNamesLatestWins(t *testing.T) {
	s := mustLoad(t, `<urfa>
		<function name="dup" id="1"/>
		<function name="dup" id="2"/>
	</urfa>`)
	f, _ := s.Func("dup")
	if f.ID != 2 {
		t.Fatalf("ID = %d, want 2 (latest definition wins)", f.ID)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
}

func TestMissingNameSkipsFunction(t *testing.T) {
	s := mustLoad(t, `<urfa><function id="1"/></urfa>`)
	if s.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", s.Len())
	}
}

func TestMissingIDSkipsFunction(t *testing.T) {
	s := mustLoad(t, `<urfa><function name="noid"/></urfa>`)
	if s.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", s.Len())
	}
}

func TestWrongRootElementIsFatal(t *testing.T) {
	_, err := LoadReader(strings.NewReader(`<notroot/>`), "test.xml")
	if err == nil {
		t.Fatalf("expected an error for wrong root element")
	}
}

func TestAppendOnlyLoad(t *testing.T) {
	s := ast.NewSchema()
	if err := loadInto(s, strings.NewReader(`<urfa><function name="a" id="1"/></urfa>`), "one.xml"); err != nil {
		t.Fatalf("first load: %v", err)
	}
	err := loadInto(s, strings.NewReader(`<urfa><function name="b" id="2"/></urfa>`), "two.xml")
	if !errors.Is(err, ErrAlreadyLoaded) {
		t.Fatalf("second load error = %v, want ErrAlreadyLoaded", err)
	}
}

func TestIDAcceptsHexAndDecimal(t *testing.T) {
	s := mustLoad(t, `<urfa>
		<function name="hexfn" id="0x10"/>
		<function name="decfn" id="16"/>
	</urfa>`)
	hf, _ := s.Func("hexfn")
	df, _ := s.Func("decfn")
	if hf.ID != 16 || df.ID != 16 {
		t.Fatalf("hex=%d dec=%d, want both 16", hf.ID, df.ID)
	}
}

func TestUnknownChildElementInFunctionIsWarningNotFatal(t *testing.T) {
	s := mustLoad(t, `<urfa><function name="f" id="1"><bogus/></function></urfa>`)
	if _, ok := s.Func("f"); !ok {
		t.Fatalf("unknown child element inside function should only warn, not skip the function")
	}
}
