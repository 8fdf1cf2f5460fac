package runtime

import (
	"fmt"

	"github.com/coldchip/eval/bytecode"
)

// Kind discriminates the three variants of the single runtime value
// type. Chip has no class hierarchy beyond this: dynamic dispatch is
// modeled as a tagged sum rather than an interface.
type Kind int

const (
	KindVariable Kind = iota
	KindFunction
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindVariable:
		return "Variable"
	case KindFunction:
		return "Function"
	case KindArray:
		return "Array"
	default:
		return "Unknown"
	}
}

// Object is Chip's single runtime value type. Every Object carries a
// non-null Name: the class tag for a Variable, the method name for a
// Function, or the element-class name for an Array.
//
// A Variable's fields are a small, insertion-ordered association
// list (Vars) rather than a map: the field count per object is
// typically in the tens, and the source's semantics (first-match
// lookup, in-place update, insertion-order iteration) are exactly
// what an assoc list gives for free.
type Object struct {
	Kind Kind
	Name string

	// Variable: numeric slot and optional string payload.
	Num    float64
	Str    string
	HasStr bool

	// Variable and Array: the instance field list / the "count"
	// pseudo-field, respectively.
	Vars *Scope

	// Function: receiver and method pointer. Bound is a non-owning
	// back-reference — it must never be treated as keeping its
	// receiver alive, since receiver and bound method form a cycle.
	Bound  *Object
	Method *bytecode.Method

	// Array: fixed-length vector of element references.
	Slots []*Object
}

// NewNumber builds a Variable-kind Object carrying a numeric slot.
// This is the Object form pushed by syscalls that are documented to
// return "Number".
func NewNumber(v float64) *Object {
	return &Object{Kind: KindVariable, Name: "Number", Num: v}
}

// NewString builds a Variable-kind Object carrying a string payload
// and a "count" field equal to its byte length. This is distinct from
// the character-Array produced by LOAD_CONST: syscalls 11/12 (strlen,
// char-at) go through Text, which reads Str here and decodes the
// Array's Slots there — the two representations are read through one
// method, not unified into one type.
func NewString(s string) *Object {
	obj := &Object{Kind: KindVariable, Name: "String", Str: s, HasStr: true}
	obj.Vars = NewScope()
	obj.Vars.Set("count", NewNumber(float64(len(s))))
	return obj
}

// NewEmptyReturn builds the empty-return singleton: a Number-tagged
// Object with value 0, used as the placeholder result of void-like
// operations (NEWARRAY slot init, syscalls 8 and 10).
func NewEmptyReturn() *Object {
	return NewNumber(0)
}

// Text returns this Object's contents as a Go string regardless of
// which of the two representations it carries: a String Object's Str
// field directly, or a LOAD_CONST character-Array's Slots decoded
// byte-by-byte. Syscalls that consume string arguments accept either
// representation through this method rather than assuming callers
// always hold a String.
func (o *Object) Text() string {
	if o.HasStr {
		return o.Str
	}
	if o.Kind == KindArray {
		b := make([]byte, len(o.Slots))
		for i, s := range o.Slots {
			if s != nil {
				b[i] = byte(int64(s.Num))
			}
		}
		return string(b)
	}
	return ""
}

// Field looks up an instance field on a Variable, fatal if absent
// (LOAD_MEMBER's contract).
func (o *Object) Field(name string) (*Object, error) {
	if o.Vars == nil {
		return nil, fmt.Errorf("object %q has no field %q", o.Name, name)
	}
	v, ok := o.Vars.Get(name)
	if !ok {
		return nil, fmt.Errorf("object %q has no field %q", o.Name, name)
	}
	return v, nil
}

// SetField mutates or creates an instance field (STORE_MEMBER's
// contract). Fields spring into existence on first write.
func (o *Object) SetField(name string, v *Object) {
	if o.Vars == nil {
		o.Vars = NewScope()
	}
	o.Vars.Set(name, v)
}
