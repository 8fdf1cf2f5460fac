// Package interp executes Chip bytecode: the operand-stack machine of
// ~25 opcodes, method frames, call/return, and the fixed syscall
// table. It is organized one file per opcode category:
//   - interp.go: core loop and public API
//   - category.go: opcode -> category table
//   - instr_stack.go: LOAD_VAR, STORE_VAR, POP, LOAD_NUMBER, LOAD_CONST
//   - instr_arith.go: comparisons and arithmetic
//   - instr_control.go: JMP, JMPIFT, RET
//   - instr_object.go: LOAD_MEMBER, STORE_MEMBER, NEW
//   - instr_array.go: NEWARRAY, LOAD_ARRAY, STORE_ARRAY
//   - instr_invoke.go: CALL
//   - syscall.go, syscall_net.go: the 13-entry syscall table
//   - debug.go: the --debug frame dump and the --debug-gated
//     disassembly listing (--verbose and --trace logging is in Call)
package interp

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/coldchip/eval/bytecode"
	"github.com/coldchip/eval/internal/chiperr"
	"github.com/coldchip/eval/runtime"
	"zombiezen.com/go/log"
)

// Interp executes bytecode against a single runtime.Machine. It holds
// no frame-stack of its own: CALL is a direct Go-level recursion into
// Call, with no tail-call optimization.
type Interp struct {
	Machine *runtime.Machine

	Verbose     bool
	Debug       bool
	TraceMethod string

	// Stdin backs syscall 0. Buffered and held on the Interp (rather
	// than a package-level var wrapping os.Stdin) so tests can swap in
	// a fixed script without touching the process's real stdin.
	Stdin *bufio.Reader
}

func New(m *runtime.Machine) *Interp {
	return &Interp{Machine: m, Stdin: bufio.NewReader(os.Stdin)}
}

// Run resolves Main.main and invokes it with no instance and no
// arguments.
func (ip *Interp) Run(ctx context.Context) error {
	class := ip.Machine.Program.GetClass("Main")
	if class == nil {
		return chiperr.New(chiperr.UnknownClass, "entry class Main not found")
	}
	method := class.GetMethod("main")
	if method == nil {
		return chiperr.New(chiperr.UnknownMethod, "entry method Main.main not found")
	}
	_, err := ip.Call(ctx, method, nil, nil)
	return err
}

// Call creates a frame for method, binds this and args per the call
// protocol, and runs the dispatch loop until RET. The result is a
// tagged Value rather than an Object, since RET may return either a
// raw double (e.g. straight off ADD) or an Object (e.g. straight off
// CALL or NEW).
func (ip *Interp) Call(ctx context.Context, method *bytecode.Method, this *runtime.Object, args []runtime.Value) (runtime.Value, error) {
	frame := runtime.NewFrame(method, this, args)
	trace := ip.TraceMethod != "" && ip.TraceMethod == method.Name
	if trace {
		log.Debugf(ctx, "interp: enter %s (args=%d)", method.Name, len(args))
	}

	for {
		ins, ok := frame.Fetch()
		if !ok {
			if trace {
				log.Debugf(ctx, "interp: return %s (fell through without RET)", method.Name)
			}
			return ip.Machine.EmptyReturn.AsValue(), nil
		}

		if ip.Debug {
			ip.printFrameDebug(ctx, frame, ins)
		} else if ip.Verbose {
			log.Debugf(ctx, "[%s] PC=%d op=%s operand=%v", method.Name, frame.PC-1, ins.Op, ins.Operand)
		}

		result, done, err := ip.step(ctx, frame, ins)
		if err != nil {
			return runtime.Value{}, fmt.Errorf("%s: %w", method.Name, err)
		}
		if done {
			if trace {
				log.Debugf(ctx, "interp: return %s", method.Name)
			}
			return result, nil
		}
	}
}

// step dispatches one instruction by category.
func (ip *Interp) step(ctx context.Context, frame *runtime.Frame, ins bytecode.Instruction) (result runtime.Value, done bool, err error) {
	switch categoryOf(ins.Op) {
	case CategoryStack:
		err = ip.executeStack(frame, ins)
	case CategoryArith:
		err = ip.executeArith(frame, ins)
	case CategoryControl:
		result, done, err = ip.executeControl(frame, ins)
	case CategoryObject:
		err = ip.executeObject(frame, ins)
	case CategoryArray:
		err = ip.executeArray(frame, ins)
	case CategoryInvoke:
		err = ip.executeInvoke(ctx, frame, ins)
	default:
		err = chiperr.New(chiperr.UnknownOpcode, "unknown opcode %d at PC=%d", ins.Op, frame.PC-1)
	}
	return result, done, err
}
