package interp

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/coldchip/eval/internal/chiperr"
	"github.com/coldchip/eval/runtime"
)

// syscallFunc implements one entry of the fixed, integer-indexed
// syscall table. Each pops its own arguments off the frame's operand
// stack and pushes exactly one result.
type syscallFunc func(ip *Interp, frame *runtime.Frame) error

// syscalls is the closed dispatch table; index 13 and beyond (and any
// gap within it) are fatal, matching the source's "unknown syscall"
// exit.
var syscalls = [13]syscallFunc{
	0:  sysReadLine,
	1:  sysPrintNumber,
	2:  sysWriteChar,
	3:  sysSocketOpen,
	4:  sysSocketBind,
	5:  sysSocketAccept,
	6:  sysSocketRead,
	7:  sysSocketWrite,
	8:  sysSocketClose,
	9:  sysRand,
	10: sysSleep,
	11: sysStrlen,
	12: sysCharAt,
}

// executeSyscall dispatches on the top-of-stack integer, popped
// first.
func (ip *Interp) executeSyscall(frame *runtime.Frame) error {
	n, err := frame.Stack.PopNumber()
	if err != nil {
		return err
	}
	idx := int(n)
	if idx < 0 || idx >= len(syscalls) || syscalls[idx] == nil {
		return chiperr.New(chiperr.UnknownSyscall, "unknown syscall %d", idx)
	}
	return syscalls[idx](ip, frame)
}

// sysReadLine is syscall 0: print prompt, read one
// whitespace-delimited token from stdin, return a new String.
func sysReadLine(ip *Interp, frame *runtime.Frame) error {
	prompt, err := frame.Stack.PopObject()
	if err != nil {
		return err
	}
	fmt.Print(prompt.Text())

	token, err := readToken(ip.Stdin)
	if err != nil {
		return chiperr.New(chiperr.LoadError, "syscall 0: reading stdin: %v", err)
	}
	return frame.Stack.PushObject(runtime.NewString(token))
}

// readToken mirrors scanf("%s", buffer): skip leading whitespace,
// then read up to the next whitespace rune.
func readToken(r *bufio.Reader) (string, error) {
	var b []byte
	skipping := true
	for {
		c, err := r.ReadByte()
		if err != nil {
			if len(b) > 0 {
				return string(b), nil
			}
			return "", err
		}
		isSpace := c == ' ' || c == '\t' || c == '\n' || c == '\r'
		if skipping {
			if isSpace {
				continue
			}
			skipping = false
		}
		if isSpace {
			return string(b), nil
		}
		b = append(b, c)
	}
}

// sysPrintNumber is syscall 1: printf("%f\n", x).
func sysPrintNumber(ip *Interp, frame *runtime.Frame) error {
	x, err := frame.Stack.PopNumber()
	if err != nil {
		return err
	}
	fmt.Printf("%f\n", x)
	return frame.Stack.PushNumber(0)
}

// sysWriteChar is syscall 2: write one byte to stdout. Out-of-range
// values are masked to 8 bits.
func sysWriteChar(ip *Interp, frame *runtime.Frame) error {
	c, err := frame.Stack.PopNumber()
	if err != nil {
		return err
	}
	_, werr := os.Stdout.Write([]byte{byte(int64(c))})
	if werr != nil {
		return chiperr.New(chiperr.LoadError, "syscall 2: write: %v", werr)
	}
	return frame.Stack.PushNumber(0)
}

// sysRand is syscall 9.
func sysRand(ip *Interp, frame *runtime.Frame) error {
	return frame.Stack.PushObject(runtime.NewNumber(float64(rand.Int31())))
}

// sysSleep is syscall 10: sleep whole seconds.
func sysSleep(ip *Interp, frame *runtime.Frame) error {
	sec, err := frame.Stack.PopNumber()
	if err != nil {
		return err
	}
	time.Sleep(time.Duration(sec) * time.Second)
	return frame.Stack.PushObject(ip.Machine.EmptyReturn)
}

// sysStrlen is syscall 11. Works against either string representation
// via Text — a String Object's backing Go string, or a LOAD_CONST
// character-Array decoded byte-by-byte.
func sysStrlen(ip *Interp, frame *runtime.Frame) error {
	s, err := frame.Stack.PopObject()
	if err != nil {
		return err
	}
	return frame.Stack.PushObject(runtime.NewNumber(float64(len(s.Text()))))
}

// sysCharAt is syscall 12. Pop order is string, then index (original
// source's OP_SYSCALL case 12).
func sysCharAt(ip *Interp, frame *runtime.Frame) error {
	s, err := frame.Stack.PopObject()
	if err != nil {
		return err
	}
	index, err := frame.Stack.PopNumber()
	if err != nil {
		return err
	}
	text := s.Text()
	i := int(index)
	if i < 0 || i >= len(text) {
		return chiperr.New(chiperr.IndexOutOfRange, "syscall 12: index %d out of range (length %d)", i, len(text))
	}
	return frame.Stack.PushObject(runtime.NewNumber(float64(text[i])))
}
