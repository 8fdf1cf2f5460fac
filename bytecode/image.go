package bytecode

import (
	"fmt"
	"os"
)

const (
	magicSize  = 8
	headerSize = magicSize + 4 // magic + program_length
)

// Load reads a Chip bytecode image from disk and returns its
// populated Program (constant pool plus class/method/instruction
// tables). File-open errors are returned to the caller, who is
// expected to report them as a fatal one-line diagnostic.
func Load(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open image %q: %w", path, err)
	}
	return Parse(data)
}

// Parse implements the two-pass image layout: magic, program length,
// then the program section is skipped once to reach the constants,
// and re-read from offset 12 once the pool is populated so
// class/method names resolve during decode.
func Parse(data []byte) (*Program, error) {
	r := NewReader(data)

	if err := r.Skip(magicSize); err != nil {
		return nil, fmt.Errorf("reading magic: %w", err)
	}

	programLength, err := r.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("reading program length: %w", err)
	}

	// Skip the program section plus the 4 trailing bytes before the
	// constant table begins (offset 8+4+program_length+4 in the image layout).
	if err := r.Skip(int(programLength) + 4); err != nil {
		return nil, fmt.Errorf("skipping program section: %w", err)
	}

	pool, err := readConstants(r)
	if err != nil {
		return nil, err
	}

	if err := r.SeekTo(headerSize); err != nil {
		return nil, fmt.Errorf("seeking back to program section: %w", err)
	}

	classes, err := readClasses(r, pool)
	if err != nil {
		return nil, err
	}

	return &Program{Pool: pool, Classes: classes}, nil
}

func readConstants(r *Reader) (*ConstantPool, error) {
	count, err := r.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("reading constant count: %w", err)
	}
	pool, err := newConstantPool(int(count))
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(count); i++ {
		length, err := r.ReadU32()
		if err != nil {
			return nil, fmt.Errorf("reading constant %d length: %w", i, err)
		}
		raw, err := r.ReadBytes(int(length))
		if err != nil {
			return nil, fmt.Errorf("reading constant %d body: %w", i, err)
		}
		pool.set(i, string(raw))
	}
	return pool, nil
}

func readClasses(r *Reader, pool *ConstantPool) ([]*Class, error) {
	classCount, err := r.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("reading class count: %w", err)
	}

	classes := make([]*Class, classCount)
	for ci := range classes {
		methodCount, err := r.ReadU16()
		if err != nil {
			return nil, fmt.Errorf("reading class %d method count: %w", ci, err)
		}
		nameIndex, err := r.ReadU16()
		if err != nil {
			return nil, fmt.Errorf("reading class %d name index: %w", ci, err)
		}
		name, err := pool.Get(int(nameIndex))
		if err != nil {
			return nil, fmt.Errorf("class %d name: %w", ci, err)
		}

		methods := make([]*Method, methodCount)
		for mi := range methods {
			method, err := readMethod(r, pool)
			if err != nil {
				return nil, fmt.Errorf("class %q method %d: %w", name, mi, err)
			}
			methods[mi] = method
		}
		classes[ci] = &Class{Name: name, Methods: methods}
	}
	return classes, nil
}

func readMethod(r *Reader, pool *ConstantPool) (*Method, error) {
	opCount, err := r.ReadU16()
	if err != nil {
		return nil, fmt.Errorf("reading op count: %w", err)
	}
	nameIndex, err := r.ReadU16()
	if err != nil {
		return nil, fmt.Errorf("reading method name index: %w", err)
	}
	name, err := pool.Get(int(nameIndex))
	if err != nil {
		return nil, fmt.Errorf("method name: %w", err)
	}

	code := make([]Instruction, opCount)
	for i := range code {
		op, err := r.ReadU8()
		if err != nil {
			return nil, fmt.Errorf("reading opcode %d: %w", i, err)
		}
		operand, err := r.ReadF64()
		if err != nil {
			return nil, fmt.Errorf("reading operand %d: %w", i, err)
		}
		code[i] = Instruction{Op: Opcode(op), Operand: operand}
	}
	return &Method{Name: name, Code: code}, nil
}
