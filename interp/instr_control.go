package interp

import (
	"github.com/coldchip/eval/bytecode"
	"github.com/coldchip/eval/internal/chiperr"
	"github.com/coldchip/eval/runtime"
)

// executeControl handles JMP, JMPIFT, and RET. Jump targets are
// 1-based instruction numbers; PC is set to target-1 so the
// pre-increment in Frame.Fetch lands exactly on the target.
func (ip *Interp) executeControl(frame *runtime.Frame, ins bytecode.Instruction) (runtime.Value, bool, error) {
	switch ins.Op {
	case bytecode.JMP:
		frame.PC = ins.IntOperand() - 1
		return runtime.Value{}, false, nil

	case bytecode.JMPIFT:
		a, err := frame.Stack.PopNumber()
		if err != nil {
			return runtime.Value{}, false, err
		}
		b, err := frame.Stack.PopNumber()
		if err != nil {
			return runtime.Value{}, false, err
		}
		if a == b {
			frame.PC = ins.IntOperand() - 1
		}
		return runtime.Value{}, false, nil

	case bytecode.RET:
		v, err := frame.Stack.Pop()
		if err != nil {
			return runtime.Value{}, false, err
		}
		return v, true, nil

	default:
		return runtime.Value{}, false, chiperr.New(chiperr.UnknownOpcode, "unknown control opcode %d", ins.Op)
	}
}
