package interp

import "github.com/coldchip/eval/bytecode"

// Category groups Chip's opcodes the way the instruction set is split
// across instr_*.go files, so dispatch reads as "fetch opcode, find
// its category, delegate."
type Category uint8

const (
	CategoryUnknown Category = iota
	CategoryStack            // LOAD_VAR, STORE_VAR, POP, LOAD_NUMBER, LOAD_CONST
	CategoryArith            // CMPEQ, CMPGT, CMPLT, ADD, SUB, MUL, DIV, MOD, OR
	CategoryControl          // JMP, JMPIFT, RET
	CategoryObject           // LOAD_MEMBER, STORE_MEMBER, NEW
	CategoryArray            // NEWARRAY, LOAD_ARRAY, STORE_ARRAY
	CategoryInvoke           // CALL, SYSCALL
)

var categories [256]Category

func init() {
	for _, op := range []bytecode.Opcode{
		bytecode.LOAD_VAR, bytecode.STORE_VAR, bytecode.POP,
		bytecode.LOAD_NUMBER, bytecode.LOAD_CONST,
	} {
		categories[op] = CategoryStack
	}
	for _, op := range []bytecode.Opcode{
		bytecode.CMPEQ, bytecode.CMPGT, bytecode.CMPLT,
		bytecode.ADD, bytecode.SUB, bytecode.MUL, bytecode.DIV, bytecode.MOD, bytecode.OR,
	} {
		categories[op] = CategoryArith
	}
	for _, op := range []bytecode.Opcode{bytecode.JMP, bytecode.JMPIFT, bytecode.RET} {
		categories[op] = CategoryControl
	}
	for _, op := range []bytecode.Opcode{bytecode.LOAD_MEMBER, bytecode.STORE_MEMBER, bytecode.NEW} {
		categories[op] = CategoryObject
	}
	for _, op := range []bytecode.Opcode{bytecode.NEWARRAY, bytecode.LOAD_ARRAY, bytecode.STORE_ARRAY} {
		categories[op] = CategoryArray
	}
	for _, op := range []bytecode.Opcode{bytecode.CALL, bytecode.SYSCALL} {
		categories[op] = CategoryInvoke
	}
}

func categoryOf(op bytecode.Opcode) Category {
	return categories[op]
}
