package bytecode

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Reader wraps a byte slice for reading image data. Unlike the
// big-endian, tag-discriminated class file format, Chip's image is
// little-endian throughout and its instruction stream carries
// unaligned f64 operands.
type Reader struct {
	data []byte
	pos  int
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

func (r *Reader) need(n int) error {
	if r.pos+n > len(r.data) {
		return fmt.Errorf("unexpected end of image at offset %d (need %d more bytes)", r.pos, n)
	}
	return nil
}

func (r *Reader) ReadU8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

func (r *Reader) ReadU16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *Reader) ReadU32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *Reader) ReadF64() (float64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	bits := binary.LittleEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return math.Float64frombits(bits), nil
}

func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *Reader) Skip(n int) error {
	if err := r.need(n); err != nil {
		return err
	}
	r.pos += n
	return nil
}

// SeekTo repositions the reader at an absolute offset. The image
// format is read in two passes from the same buffer: constants after
// the program section, then the program section again from offset 12
// with the pool already populated.
func (r *Reader) SeekTo(offset int) error {
	if offset < 0 || offset > len(r.data) {
		return fmt.Errorf("seek offset %d out of range (image length %d)", offset, len(r.data))
	}
	r.pos = offset
	return nil
}

func (r *Reader) Position() int {
	return r.pos
}
