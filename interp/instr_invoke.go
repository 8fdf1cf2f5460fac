package interp

import (
	"context"

	"github.com/coldchip/eval/bytecode"
	"github.com/coldchip/eval/internal/chiperr"
	"github.com/coldchip/eval/runtime"
)

// executeInvoke handles CALL and SYSCALL.
func (ip *Interp) executeInvoke(ctx context.Context, frame *runtime.Frame, ins bytecode.Instruction) error {
	switch ins.Op {
	case bytecode.CALL:
		return ip.executeCall(ctx, frame, ins)
	case bytecode.SYSCALL:
		return ip.executeSyscall(frame)
	default:
		return chiperr.New(chiperr.UnknownOpcode, "unknown invoke opcode %d", ins.Op)
	}
}

// executeCall implements the call protocol: pop the callee Function,
// pop n arguments in pop order (last pushed becomes index 0), recurse
// into the interpreter with the Function's bound receiver, and push
// the single result.
func (ip *Interp) executeCall(ctx context.Context, frame *runtime.Frame, ins bytecode.Instruction) error {
	fn, err := frame.Stack.PopObject()
	if err != nil {
		return err
	}
	if fn.Kind != runtime.KindFunction {
		return chiperr.New(chiperr.NotCallable, "call target %q is not a function", fn.Name)
	}

	n := ins.IntOperand()
	args := make([]runtime.Value, n)
	for i := 0; i < n; i++ {
		v, err := frame.Stack.Pop()
		if err != nil {
			return err
		}
		args[i] = v
	}

	result, err := ip.Call(ctx, fn.Method, fn.Bound, args)
	if err != nil {
		return err
	}
	return frame.Stack.Push(result)
}
