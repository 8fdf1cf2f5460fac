package runtime

import "testing"

func TestNewStringCarriesCountField(t *testing.T) {
	s := NewString("hello")
	if !s.HasStr || s.Str != "hello" {
		t.Fatalf("NewString did not set Str correctly: %+v", s)
	}
	count, err := s.Field("count")
	if err != nil {
		t.Fatalf("Field(count): %v", err)
	}
	if count.Num != 5 {
		t.Errorf("count = %v, want 5", count.Num)
	}
}

func TestFieldOnObjectWithNoVarsIsFatal(t *testing.T) {
	obj := &Object{Kind: KindVariable, Name: "Bare"}
	if _, err := obj.Field("missing"); err == nil {
		t.Fatal("Field on a var-less object should fail")
	}
}

func TestSetFieldCreatesThenUpdates(t *testing.T) {
	obj := &Object{Kind: KindVariable, Name: "C"}
	obj.SetField("x", NewNumber(1))
	obj.SetField("x", NewNumber(2))

	v, err := obj.Field("x")
	if err != nil {
		t.Fatalf("Field(x): %v", err)
	}
	if v.Num != 2 {
		t.Errorf("x = %v, want 2 (STORE_MEMBER must update in place)", v.Num)
	}
}
