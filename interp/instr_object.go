package interp

import (
	"github.com/coldchip/eval/bytecode"
	"github.com/coldchip/eval/internal/chiperr"
	"github.com/coldchip/eval/runtime"
)

// executeObject handles LOAD_MEMBER, STORE_MEMBER, and NEW.
func (ip *Interp) executeObject(frame *runtime.Frame, ins bytecode.Instruction) error {
	switch ins.Op {
	case bytecode.LOAD_MEMBER:
		name, err := ip.constName(ins)
		if err != nil {
			return err
		}
		obj, err := frame.Stack.PopObject()
		if err != nil {
			return err
		}
		v, err := obj.Field(name)
		if err != nil {
			return chiperr.New(chiperr.MissingMember, "%v", err)
		}
		return frame.Stack.Push(v.AsValue())

	case bytecode.STORE_MEMBER:
		name, err := ip.constName(ins)
		if err != nil {
			return err
		}
		// Pop order: obj on top, value below.
		obj, err := frame.Stack.PopObject()
		if err != nil {
			return err
		}
		v, err := frame.Stack.Pop()
		if err != nil {
			return err
		}
		obj.SetField(name, v.AsObject())
		return nil

	case bytecode.NEW:
		name, err := ip.constName(ins)
		if err != nil {
			return err
		}
		obj, err := ip.Machine.NewVariable(name)
		if err != nil {
			return err
		}
		return frame.Stack.PushObject(obj)

	default:
		return chiperr.New(chiperr.UnknownOpcode, "unknown object opcode %d", ins.Op)
	}
}
