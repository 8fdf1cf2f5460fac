package runtime

import "github.com/coldchip/eval/bytecode"

// Frame is a single method activation: its method pointer, operand
// stack, program counter, and variable scope. Positional arguments are
// pushed onto Stack in call order before execution begins; the callee
// consumes them with STORE_VAR.
type Frame struct {
	Method *bytecode.Method
	PC     int
	Stack  *Stack
	Vars   *Scope
}

// NewFrame allocates a frame for method, optionally binding this (the
// receiver) and pushing args onto the new operand stack in order,
// matching the call protocol the callee's STORE_VAR/LOAD_VAR sequence
// expects.
func NewFrame(method *bytecode.Method, this *Object, args []Value) *Frame {
	f := &Frame{
		Method: method,
		Stack:  NewStack(),
		Vars:   NewScope(),
	}
	if this != nil {
		f.Vars.Set("this", this)
	}
	for _, a := range args {
		_ = f.Stack.Push(a)
	}
	return f
}

// Fetch returns the instruction at PC and advances PC by one, the
// pre-increment the interpreter loop relies on for JMP/JMPIFT's
// target-minus-one convention.
func (f *Frame) Fetch() (bytecode.Instruction, bool) {
	if f.PC < 0 || f.PC >= len(f.Method.Code) {
		return bytecode.Instruction{}, false
	}
	ins := f.Method.Code[f.PC]
	f.PC++
	return ins, true
}
