package interp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/coldchip/eval/bytecode"
	"github.com/coldchip/eval/runtime"
	"github.com/stretchr/testify/require"
)

// imageBuilder assembles a binary image by hand, the way runtime's
// buildOneConstantImage does, so these tests exercise the interpreter
// end to end through a real bytecode.Parse rather than hand-built
// Program structs.
type imageBuilder struct {
	constants []string
	classes   [][]methodSpec
	classIdx  []int // constant index of each class's name
}

type methodSpec struct {
	nameIdx int
	code    []bytecode.Instruction
}

func (b *imageBuilder) constant(s string) int {
	for i, c := range b.constants {
		if c == s {
			return i
		}
	}
	b.constants = append(b.constants, s)
	return len(b.constants) - 1
}

func (b *imageBuilder) class(name string, methods ...methodSpec) {
	b.classIdx = append(b.classIdx, b.constant(name))
	b.classes = append(b.classes, methods)
}

func (b *imageBuilder) method(name string, code ...bytecode.Instruction) methodSpec {
	return methodSpec{nameIdx: b.constant(name), code: code}
}

func (b *imageBuilder) build() []byte {
	var program bytes.Buffer
	binary.Write(&program, binary.LittleEndian, uint32(len(b.classes)))
	for ci, methods := range b.classes {
		binary.Write(&program, binary.LittleEndian, uint16(len(methods)))
		binary.Write(&program, binary.LittleEndian, uint16(b.classIdx[ci]))
		for _, m := range methods {
			binary.Write(&program, binary.LittleEndian, uint16(len(m.code)))
			binary.Write(&program, binary.LittleEndian, uint16(m.nameIdx))
			for _, ins := range m.code {
				program.WriteByte(byte(ins.Op))
				bits := make([]byte, 8)
				binary.LittleEndian.PutUint64(bits, math.Float64bits(ins.Operand))
				program.Write(bits)
			}
		}
	}

	var buf bytes.Buffer
	buf.Write(make([]byte, 8)) // magic
	binary.Write(&buf, binary.LittleEndian, uint32(program.Len()))
	buf.Write(program.Bytes())
	buf.Write(make([]byte, 4)) // pad
	binary.Write(&buf, binary.LittleEndian, uint32(len(b.constants)))
	for _, c := range b.constants {
		binary.Write(&buf, binary.LittleEndian, uint32(len(c)))
		buf.WriteString(c)
	}
	return buf.Bytes()
}

func newInterp(t *testing.T, img []byte) *Interp {
	t.Helper()
	prog, err := bytecode.Parse(img)
	require.NoError(t, err)
	m, err := runtime.NewMachine(prog)
	require.NoError(t, err)
	return New(m)
}

// captureStdout runs fn with os.Stdout redirected to a pipe and
// returns everything written to it.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	require.NoError(t, w.Close())
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

// TestArithmeticReturn is seed test 1: LOAD_NUMBER 2, LOAD_NUMBER 3,
// ADD, RET returns the raw double 5.0.
func TestArithmeticReturn(t *testing.T) {
	b := &imageBuilder{}
	b.class("Main", b.method("main",
		bytecode.Instruction{Op: bytecode.LOAD_NUMBER, Operand: 2},
		bytecode.Instruction{Op: bytecode.LOAD_NUMBER, Operand: 3},
		bytecode.Instruction{Op: bytecode.ADD},
		bytecode.Instruction{Op: bytecode.RET},
	))

	ip := newInterp(t, b.build())
	result, err := ip.Call(context.Background(), ip.Machine.Program.GetClass("Main").GetMethod("main"), nil, nil)
	require.NoError(t, err)
	require.False(t, result.IsObject())
	require.Equal(t, 5.0, result.Num)
}

// TestPrintCharWritesByteAndLeavesZero is seed test 2.
func TestPrintCharWritesByteAndLeavesZero(t *testing.T) {
	b := &imageBuilder{}
	b.class("Main", b.method("main",
		bytecode.Instruction{Op: bytecode.LOAD_NUMBER, Operand: 65},
		bytecode.Instruction{Op: bytecode.LOAD_NUMBER, Operand: 2},
		bytecode.Instruction{Op: bytecode.SYSCALL},
		bytecode.Instruction{Op: bytecode.RET},
	))

	ip := newInterp(t, b.build())
	var result runtime.Value
	out := captureStdout(t, func() {
		var err error
		result, err = ip.Call(context.Background(), ip.Machine.Program.GetClass("Main").GetMethod("main"), nil, nil)
		require.NoError(t, err)
	})
	require.Equal(t, "A", out)
	require.Equal(t, 0.0, result.Num)
}

// TestStringConstantLength is seed test 3.
func TestStringConstantLength(t *testing.T) {
	b := &imageBuilder{}
	constIdx := b.constant("hello")
	countIdx := b.constant("count")
	b.class("Main", b.method("main",
		bytecode.Instruction{Op: bytecode.LOAD_CONST, Operand: float64(constIdx)},
		bytecode.Instruction{Op: bytecode.LOAD_MEMBER, Operand: float64(countIdx)},
		bytecode.Instruction{Op: bytecode.RET},
	))

	ip := newInterp(t, b.build())
	result, err := ip.Call(context.Background(), ip.Machine.Program.GetClass("Main").GetMethod("main"), nil, nil)
	require.NoError(t, err)
	require.Equal(t, 5.0, result.AsObject().Num)
}

// TestMethodDispatch is seed test 4.
func TestMethodDispatch(t *testing.T) {
	b := &imageBuilder{}
	cIdx := b.constant("C")
	fIdx := b.constant("f")
	b.class("C", b.method("f", bytecode.Instruction{Op: bytecode.LOAD_NUMBER, Operand: 7}, bytecode.Instruction{Op: bytecode.RET}))
	b.class("Main", b.method("main",
		bytecode.Instruction{Op: bytecode.LOAD_VAR, Operand: float64(cIdx)},
		bytecode.Instruction{Op: bytecode.LOAD_MEMBER, Operand: float64(fIdx)},
		bytecode.Instruction{Op: bytecode.CALL, Operand: 0},
		bytecode.Instruction{Op: bytecode.RET},
	))

	ip := newInterp(t, b.build())
	result, err := ip.Call(context.Background(), ip.Machine.Program.GetClass("Main").GetMethod("main"), nil, nil)
	require.NoError(t, err)
	require.Equal(t, 7.0, result.Num)
}

// TestJumpTargetSemantics is seed test 5: 1-indexed jump targets land
// exactly on the instruction they name.
func TestJumpTargetSemantics(t *testing.T) {
	b := &imageBuilder{}
	b.class("Main", b.method("main",
		bytecode.Instruction{Op: bytecode.LOAD_NUMBER, Operand: 1},
		bytecode.Instruction{Op: bytecode.JMP, Operand: 4},
		bytecode.Instruction{Op: bytecode.LOAD_NUMBER, Operand: 999},
		bytecode.Instruction{Op: bytecode.RET},
	))

	ip := newInterp(t, b.build())
	result, err := ip.Call(context.Background(), ip.Machine.Program.GetClass("Main").GetMethod("main"), nil, nil)
	require.NoError(t, err)
	require.Equal(t, 1.0, result.Num)
}

// TestSyscallEcho is seed test 6.
func TestSyscallEcho(t *testing.T) {
	b := &imageBuilder{}
	promptIdx := b.constant("> ")
	countIdx := b.constant("count")
	b.class("Main", b.method("main",
		bytecode.Instruction{Op: bytecode.LOAD_CONST, Operand: float64(promptIdx)},
		bytecode.Instruction{Op: bytecode.LOAD_NUMBER, Operand: 0},
		bytecode.Instruction{Op: bytecode.SYSCALL},
		bytecode.Instruction{Op: bytecode.LOAD_MEMBER, Operand: float64(countIdx)},
		bytecode.Instruction{Op: bytecode.RET},
	))

	ip := newInterp(t, b.build())
	ip.Stdin = bufio.NewReader(strings.NewReader("world\n"))

	captureStdout(t, func() {
		result, err := ip.Call(context.Background(), ip.Machine.Program.GetClass("Main").GetMethod("main"), nil, nil)
		require.NoError(t, err)
		require.Equal(t, 5.0, result.AsObject().Num)
	})
}

// TestEmptyArgCallPopsOnlyCallee is the "empty-argument calls" boundary
// behavior: OP_CALL 0 pops only the callee.
func TestEmptyArgCallPopsOnlyCallee(t *testing.T) {
	b := &imageBuilder{}
	cIdx := b.constant("C")
	fIdx := b.constant("f")
	b.class("C", b.method("f", bytecode.Instruction{Op: bytecode.LOAD_NUMBER, Operand: 42}, bytecode.Instruction{Op: bytecode.RET}))
	b.class("Main", b.method("main",
		bytecode.Instruction{Op: bytecode.LOAD_NUMBER, Operand: 123}, // sentinel left under the callee
		bytecode.Instruction{Op: bytecode.LOAD_VAR, Operand: float64(cIdx)},
		bytecode.Instruction{Op: bytecode.LOAD_MEMBER, Operand: float64(fIdx)},
		bytecode.Instruction{Op: bytecode.CALL, Operand: 0},
		bytecode.Instruction{Op: bytecode.RET}, // returns the call's result, leaving the sentinel beneath
	))

	ip := newInterp(t, b.build())
	result, err := ip.Call(context.Background(), ip.Machine.Program.GetClass("Main").GetMethod("main"), nil, nil)
	require.NoError(t, err)
	require.Equal(t, 42.0, result.Num)
}

// TestNewArrayZeroHasNoAccessibleSlots covers the NEWARRAY 0 boundary
// behavior.
func TestNewArrayZeroHasNoAccessibleSlots(t *testing.T) {
	b := &imageBuilder{}
	elemIdx := b.constant("Number")
	b.class("Main", b.method("main",
		bytecode.Instruction{Op: bytecode.LOAD_NUMBER, Operand: 0},
		bytecode.Instruction{Op: bytecode.NEWARRAY, Operand: float64(elemIdx)},
		bytecode.Instruction{Op: bytecode.LOAD_NUMBER, Operand: 0},
		bytecode.Instruction{Op: bytecode.LOAD_ARRAY},
		bytecode.Instruction{Op: bytecode.RET},
	))

	ip := newInterp(t, b.build())
	_, err := ip.Call(context.Background(), ip.Machine.Program.GetClass("Main").GetMethod("main"), nil, nil)
	require.Error(t, err)
}

// TestModuloTruncatesTowardZero covers the "modulo truncates" boundary
// behavior.
func TestModuloTruncatesTowardZero(t *testing.T) {
	b := &imageBuilder{}
	b.class("Main", b.method("main",
		bytecode.Instruction{Op: bytecode.LOAD_NUMBER, Operand: 7.9},
		bytecode.Instruction{Op: bytecode.LOAD_NUMBER, Operand: 2.9},
		bytecode.Instruction{Op: bytecode.MOD},
		bytecode.Instruction{Op: bytecode.RET},
	))

	ip := newInterp(t, b.build())
	result, err := ip.Call(context.Background(), ip.Machine.Program.GetClass("Main").GetMethod("main"), nil, nil)
	require.NoError(t, err)
	require.Equal(t, 1.0, result.Num) // int(7) % int(2), not 7.9 mod 2.9
}

// TestSyscallWriteCharMasksToByte covers SYSCALL 2's "masked to 8
// bits" boundary behavior.
func TestSyscallWriteCharMasksToByte(t *testing.T) {
	b := &imageBuilder{}
	b.class("Main", b.method("main",
		bytecode.Instruction{Op: bytecode.LOAD_NUMBER, Operand: 321}, // 321 & 0xFF == 65 == 'A'
		bytecode.Instruction{Op: bytecode.LOAD_NUMBER, Operand: 2},
		bytecode.Instruction{Op: bytecode.SYSCALL},
		bytecode.Instruction{Op: bytecode.RET},
	))

	ip := newInterp(t, b.build())
	out := captureStdout(t, func() {
		_, err := ip.Call(context.Background(), ip.Machine.Program.GetClass("Main").GetMethod("main"), nil, nil)
		require.NoError(t, err)
	})
	require.Equal(t, "A", out)
}

// TestScopePrecedenceThroughInterpreter exercises the globals-first
// STORE_VAR rule end to end: assigning to a name that collides with a
// class's global singleton mutates the global rather than creating a
// frame-local.
func TestScopePrecedenceThroughInterpreter(t *testing.T) {
	b := &imageBuilder{}
	cIdx := b.constant("C")
	b.class("C")
	b.class("Main", b.method("main",
		bytecode.Instruction{Op: bytecode.LOAD_NUMBER, Operand: 99},
		bytecode.Instruction{Op: bytecode.STORE_VAR, Operand: float64(cIdx)},
		bytecode.Instruction{Op: bytecode.LOAD_VAR, Operand: float64(cIdx)},
		bytecode.Instruction{Op: bytecode.RET},
	))

	ip := newInterp(t, b.build())
	result, err := ip.Call(context.Background(), ip.Machine.Program.GetClass("Main").GetMethod("main"), nil, nil)
	require.NoError(t, err)
	require.Equal(t, 99.0, result.AsObject().Num)

	global, ok := ip.Machine.Globals.Get("C")
	require.True(t, ok)
	require.Equal(t, 99.0, global.Num, "STORE_VAR on a global-colliding name must mutate the global")
}
