package interp

import (
	"github.com/coldchip/eval/bytecode"
	"github.com/coldchip/eval/internal/chiperr"
	"github.com/coldchip/eval/runtime"
)

func (ip *Interp) constName(ins bytecode.Instruction) (string, error) {
	name, err := ip.Machine.Program.Pool.Get(ins.IntOperand())
	if err != nil {
		return "", chiperr.New(chiperr.LoadError, "%v", err)
	}
	return name, nil
}

// executeStack handles LOAD_VAR, STORE_VAR, POP, LOAD_NUMBER, and
// LOAD_CONST.
func (ip *Interp) executeStack(frame *runtime.Frame, ins bytecode.Instruction) error {
	switch ins.Op {
	case bytecode.LOAD_VAR:
		name, err := ip.constName(ins)
		if err != nil {
			return err
		}
		v, ok := runtime.LoadVar(ip.Machine.Globals, frame.Vars, name)
		if !ok {
			return chiperr.New(chiperr.UnboundVariable, "unbound variable %q", name)
		}
		return frame.Stack.PushObject(v)

	case bytecode.STORE_VAR:
		name, err := ip.constName(ins)
		if err != nil {
			return err
		}
		v, err := frame.Stack.Pop()
		if err != nil {
			return err
		}
		runtime.StoreVar(ip.Machine.Globals, frame.Vars, name, v.AsObject())
		return nil

	case bytecode.POP:
		_, err := frame.Stack.Pop()
		return err

	case bytecode.LOAD_NUMBER:
		return frame.Stack.PushNumber(ins.Operand)

	case bytecode.LOAD_CONST:
		arr, err := ip.Machine.LoadConst(ins.IntOperand())
		if err != nil {
			return err
		}
		return frame.Stack.PushObject(arr)

	default:
		return chiperr.New(chiperr.UnknownOpcode, "unknown stack opcode %d", ins.Op)
	}
}
