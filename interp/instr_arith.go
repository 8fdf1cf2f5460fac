package interp

import (
	"github.com/coldchip/eval/bytecode"
	"github.com/coldchip/eval/internal/chiperr"
	"github.com/coldchip/eval/runtime"
)

// executeArith handles CMPEQ, CMPGT, CMPLT, ADD, SUB, MUL, DIV, MOD,
// OR. All of these pop a then b and push the result of "b op a",
// operating on raw doubles without boxing.
func (ip *Interp) executeArith(frame *runtime.Frame, ins bytecode.Instruction) error {
	a, err := frame.Stack.PopNumber()
	if err != nil {
		return err
	}
	b, err := frame.Stack.PopNumber()
	if err != nil {
		return err
	}

	var result float64
	switch ins.Op {
	case bytecode.CMPEQ:
		result = boolToNum(b == a)
	case bytecode.CMPGT:
		result = boolToNum(int64(b) > int64(a))
	case bytecode.CMPLT:
		result = boolToNum(int64(b) < int64(a))
	case bytecode.ADD:
		result = b + a
	case bytecode.SUB:
		result = b - a
	case bytecode.MUL:
		result = b * a
	case bytecode.DIV:
		result = b / a
	case bytecode.MOD:
		result = float64(int64(b) % int64(a))
	case bytecode.OR:
		result = boolToNum(int64(b) != 0 || int64(a) != 0)
	default:
		return chiperr.New(chiperr.UnknownOpcode, "unknown arithmetic opcode %d", ins.Op)
	}
	return frame.Stack.PushNumber(result)
}

func boolToNum(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
