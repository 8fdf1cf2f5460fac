package interp

import (
	"bytes"
	"net"

	"github.com/coldchip/eval/internal/chiperr"
	"github.com/coldchip/eval/runtime"
	"golang.org/x/sys/unix"
)

// The socket syscalls (3-8) are the one corner of the syscall table
// that needs real POSIX fd semantics rather than something expressible
// with Go's net package: Chip programs hold the raw file descriptor
// as a Number and pass it back into later syscalls by value, so the
// implementation has to hand out and consume actual fds rather than
// *net.Conn handles.

// sysSocketOpen is syscall 3.
func sysSocketOpen(ip *Interp, frame *runtime.Frame) error {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return chiperr.New(chiperr.LoadError, "syscall 3: socket: %v", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return chiperr.New(chiperr.LoadError, "syscall 3: setsockopt: %v", err)
	}
	return frame.Stack.PushObject(runtime.NewNumber(float64(fd)))
}

// sysSocketBind is syscall 4. Pop order is fd, ip, port (original
// source's OP_SYSCALL case 4); result is 1 on success, 0 on failure.
func sysSocketBind(ip *Interp, frame *runtime.Frame) error {
	fd, err := frame.Stack.PopNumber()
	if err != nil {
		return err
	}
	ipObj, err := frame.Stack.PopObject()
	if err != nil {
		return err
	}
	port, err := frame.Stack.PopNumber()
	if err != nil {
		return err
	}

	addr4 := net.ParseIP(ipObj.Text()).To4()
	var sa unix.SockaddrInet4
	sa.Port = int(port)
	if addr4 != nil {
		copy(sa.Addr[:], addr4)
	}

	ok := 0.0
	if bindErr := unix.Bind(int(fd), &sa); bindErr == nil {
		if listenErr := unix.Listen(int(fd), 5); listenErr == nil {
			ok = 1
		}
	}
	return frame.Stack.PushObject(runtime.NewNumber(ok))
}

// sysSocketAccept is syscall 5.
func sysSocketAccept(ip *Interp, frame *runtime.Frame) error {
	fd, err := frame.Stack.PopNumber()
	if err != nil {
		return err
	}
	newfd, _, acceptErr := unix.Accept(int(fd))
	if acceptErr != nil {
		newfd = -1
	}
	return frame.Stack.PushObject(runtime.NewNumber(float64(newfd)))
}

// socketReadBufSize mirrors the source's fixed "char data[8192]" read
// buffer.
const socketReadBufSize = 8192

// sysSocketRead is syscall 6. Reads at most socketReadBufSize bytes
// and truncates at the first NUL, matching strdup() on a C buffer
// that was only partially overwritten by read().
func sysSocketRead(ip *Interp, frame *runtime.Frame) error {
	fd, err := frame.Stack.PopNumber()
	if err != nil {
		return err
	}
	buf := make([]byte, socketReadBufSize)
	n, readErr := unix.Read(int(fd), buf)
	if readErr != nil || n < 0 {
		n = 0
	}
	data := buf[:n]
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	return frame.Stack.PushObject(runtime.NewString(string(data)))
}

// sysSocketWrite is syscall 7. Pop order is fd, data, length.
func sysSocketWrite(ip *Interp, frame *runtime.Frame) error {
	fd, err := frame.Stack.PopNumber()
	if err != nil {
		return err
	}
	dataObj, err := frame.Stack.PopObject()
	if err != nil {
		return err
	}
	length, err := frame.Stack.PopNumber()
	if err != nil {
		return err
	}

	text := dataObj.Text()
	l := int(length)
	if l < 0 {
		l = 0
	}
	if l > len(text) {
		l = len(text)
	}

	n, writeErr := unix.Write(int(fd), []byte(text[:l]))
	if writeErr != nil {
		n = -1
	}
	return frame.Stack.PushObject(runtime.NewNumber(float64(n)))
}

// sysSocketClose is syscall 8.
func sysSocketClose(ip *Interp, frame *runtime.Frame) error {
	fd, err := frame.Stack.PopNumber()
	if err != nil {
		return err
	}
	_ = unix.Close(int(fd))
	return frame.Stack.PushObject(ip.Machine.EmptyReturn)
}
