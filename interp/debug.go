package interp

import (
	"context"
	"fmt"
	"strings"

	"github.com/coldchip/eval/bytecode"
	"github.com/coldchip/eval/runtime"
	"zombiezen.com/go/log"
)

// printFrameDebug renders one boxed frame snapshot per instruction
// when --debug is set: method header, instruction line, locals and
// stack summaries.
func (ip *Interp) printFrameDebug(ctx context.Context, frame *runtime.Frame, ins bytecode.Instruction) {
	header := fmt.Sprintf("─ %s ", frame.Method.Name)
	fmt.Printf("┌%s%s\n", header, strings.Repeat("─", max(0, 60-len(header))))
	fmt.Printf("│ PC=%-3d  %-10s  operand=%v\n", frame.PC-1, ins.Op, ins.Operand)
	fmt.Printf("│ Vars:  %s\n", formatScope(frame.Vars))
	fmt.Printf("│ Stack: %s\n", formatStack(frame.Stack))
	fmt.Printf("└%s\n", strings.Repeat("─", 60))

	log.Debugf(ctx, "[%s] PC=%d op=%s operand=%v", frame.Method.Name, frame.PC-1, ins.Op, ins.Operand)
}

func formatScope(s *runtime.Scope) string {
	if s == nil {
		return "(none)"
	}
	names := s.Names()
	if len(names) == 0 {
		return "(none)"
	}
	parts := make([]string, 0, len(names))
	for _, name := range names {
		v, _ := s.Get(name)
		parts = append(parts, fmt.Sprintf("%s=%s", name, formatObjectShort(v)))
	}
	return strings.Join(parts, ", ")
}

func formatStack(s *runtime.Stack) string {
	if s.Len() == 0 {
		return "[]"
	}
	return fmt.Sprintf("(%d deep)", s.Len())
}

func formatObjectShort(o *runtime.Object) string {
	if o == nil {
		return "null"
	}
	switch o.Kind {
	case runtime.KindVariable:
		if o.HasStr {
			s := o.Str
			if len(s) > 12 {
				s = s[:12] + "..."
			}
			return fmt.Sprintf("%q", s)
		}
		return fmt.Sprintf("%s(%v)", o.Name, o.Num)
	case runtime.KindFunction:
		return fmt.Sprintf("<fn %s>", o.Name)
	case runtime.KindArray:
		return fmt.Sprintf("%s[%d]", o.Name, len(o.Slots))
	default:
		return "?"
	}
}

// PrintProgram renders a flat disassembly of every class and method
// in prog, used by the --debug CLI flag before execution begins.
func PrintProgram(prog *bytecode.Program) {
	for _, class := range prog.Classes {
		fmt.Printf("class %s {\n", class.Name)
		for _, method := range class.Methods {
			fmt.Printf("  method %s\n", method.Name)
			for pc, ins := range method.Code {
				fmt.Printf("    %-4d %-12s %v\n", pc, ins.Op, ins.Operand)
			}
		}
		fmt.Println("}")
	}
}
