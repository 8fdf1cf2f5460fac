package interp

import (
	"github.com/coldchip/eval/bytecode"
	"github.com/coldchip/eval/internal/chiperr"
	"github.com/coldchip/eval/runtime"
)

// executeArray handles NEWARRAY, LOAD_ARRAY, and STORE_ARRAY.
func (ip *Interp) executeArray(frame *runtime.Frame, ins bytecode.Instruction) error {
	switch ins.Op {
	case bytecode.NEWARRAY:
		elemClass, err := ip.constName(ins)
		if err != nil {
			return err
		}
		size, err := frame.Stack.PopNumber()
		if err != nil {
			return err
		}
		arr, err := ip.Machine.NewArray(elemClass, int(size))
		if err != nil {
			return err
		}
		return frame.Stack.PushObject(arr)

	case bytecode.LOAD_ARRAY:
		// Pop order: index, then array.
		index, err := frame.Stack.PopNumber()
		if err != nil {
			return err
		}
		arr, err := frame.Stack.PopObject()
		if err != nil {
			return err
		}
		i := int(index)
		if i < 0 || i >= len(arr.Slots) {
			return chiperr.New(chiperr.IndexOutOfRange, "array index %d out of range (length %d)", i, len(arr.Slots))
		}
		return frame.Stack.PushObject(arr.Slots[i])

	case bytecode.STORE_ARRAY:
		// Pop order: index, array, value.
		index, err := frame.Stack.PopNumber()
		if err != nil {
			return err
		}
		arr, err := frame.Stack.PopObject()
		if err != nil {
			return err
		}
		v, err := frame.Stack.Pop()
		if err != nil {
			return err
		}
		i := int(index)
		if i < 0 || i >= len(arr.Slots) {
			return chiperr.New(chiperr.IndexOutOfRange, "array index %d out of range (length %d)", i, len(arr.Slots))
		}
		arr.Slots[i] = v.AsObject()
		return nil

	default:
		return chiperr.New(chiperr.UnknownOpcode, "unknown array opcode %d", ins.Op)
	}
}
