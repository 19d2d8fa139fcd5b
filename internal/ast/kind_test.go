package ast

import "testing"

func TestKindFromNameRoundTrip(t *testing.T) {
	names := []string{
		"integer", "string", "long", "double", "ip_address",
		"if", "for", "set", "error", "ROOT", "break",
		"call", "parameter", "message", "shift", "remove",
	}
	for _, n := range names {
		k := KindFromName(n)
		if k == Unknown {
			t.Fatalf("KindFromName(%q) = Unknown, want a recognized kind", n)
		}
		if k.String() == "UNKNOWN" {
			t.Fatalf("kind for %q stringifies back to UNKNOWN", n)
		}
	}
}

func TestKindFromNameCaseInsensitive(t *testing.T) {
	for _, n := range []string{"INTEGER", "Integer", "iNTeger"} {
		if KindFromName(n) != Integer {
			t.Fatalf("KindFromName(%q) != Integer", n)
		}
	}
}

func TestKindFromNameUnknown(t *testing.T) {
	if k := KindFromName("bogus"); k != Unknown {
		t.Fatalf("KindFromName(bogus) = %v, want Unknown", k)
	}
	if got := Unknown.String(); got != "UNKNOWN" {
		t.Fatalf("Unknown.String() = %q, want UNKNOWN", got)
	}
}

func TestIsLeafParameter(t *testing.T) {
	for _, k := range []Kind{Integer, String, Long, Double, IPAddress} {
		if !k.IsLeafParameter() {
			t.Fatalf("%v.IsLeafParameter() = false, want true", k)
		}
	}
	for _, k := range []Kind{If, For, Set, ErrorNode, Root, Break, Unknown} {
		if k.IsLeafParameter() {
			t.Fatalf("%v.IsLeafParameter() = true, want false", k)
		}
	}
}

func TestConditionFromName(t *testing.T) {
	cases := []struct {
		in   string
		want Condition
		ok   bool
	}{
		{"eq", EQ, true},
		{"EQ", EQ, true},
		{"ne", NE, true},
		{"Ne", NE, true},
		{"neq", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := ConditionFromName(c.in)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("ConditionFromName(%q) = (%v, %v), want (%v, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}
