package ast

import "testing"

func TestSchemaPutIsCaseInsensitiveAndLatestWins(t *testing.T) {
	s := NewSchema()
	s.Put(&Function{Name: "GetUser", ID: 1, In: NewTree(), Out: NewTree()})
	s.Put(&Function{Name: "getuser", ID: 2, In: NewTree(), Out: NewTree()})

	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (duplicate names collapse)", s.Len())
	}
	f, ok := s.Func("GETUSER")
	if !ok {
		t.Fatalf("Func lookup failed")
	}
	if f.ID != 2 {
		t.Fatalf("f.ID = %d, want 2 (latest definition should win)", f.ID)
	}
}

func TestSchemaLoadedOnceFlag(t *testing.T) {
	s := NewSchema()
	if s.Loaded() {
		t.Fatalf("fresh schema reports Loaded() = true")
	}
	s.MarkLoaded("api.xml")
	if !s.Loaded() {
		t.Fatalf("MarkLoaded did not set Loaded()")
	}
	if s.File() != "api.xml" {
		t.Fatalf("File() = %q, want api.xml", s.File())
	}
}
