package serialize

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// maxString bounds the length prefix accepted by the decoder.
const maxString = 1 << 28

// encoder writes uvarints and length-prefixed strings.  The first write error
// is kept and every later write is skipped.
type encoder struct {
	w   *bufio.Writer
	buf [binary.MaxVarintLen64]byte
	err error
}

func newEncoder(w io.Writer) *encoder {
	return &encoder{w: bufio.NewWriter(w)}
}

func (e *encoder) writeByte(b byte) {
	if e.err == nil {
		e.err = e.w.WriteByte(b)
	}
}

func (e *encoder) writeUvarint(v uint64) {
	if e.err == nil {
		var n = binary.PutUvarint(e.buf[:], v)
		_, e.err = e.w.Write(e.buf[:n])
	}
}

func (e *encoder) writeString(s string) {
	e.writeUvarint(uint64(len(s)))
	if e.err == nil {
		_, e.err = e.w.WriteString(s)
	}
}

func (e *encoder) writeBool(b bool) {
	if b {
		e.writeByte(1)
	} else {
		e.writeByte(0)
	}
}

func (e *encoder) flush() error {
	if e.err != nil {
		return e.err
	}
	return e.w.Flush()
}

// decoder reads what encoder writes.  Errors are raised as panics and
// recovered by Decode.
type decoder struct {
	r       *bufio.Reader
	textLen int // length of the source text; node offsets may not exceed it
}

func (d *decoder) readByte() byte {
	var b, err = d.r.ReadByte()
	if err != nil {
		d.fail(err)
	}
	return b
}

func (d *decoder) readUvarint() uint64 {
	var v, err = binary.ReadUvarint(d.r)
	if err != nil {
		d.fail(err)
	}
	return v
}

func (d *decoder) readString() string {
	var n = d.readUvarint()
	if n > maxString {
		d.fail(fmt.Errorf("string of %d bytes is too long", n))
	}
	var buf = make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		d.fail(err)
	}
	return string(buf)
}

func (d *decoder) readBool() bool {
	switch b := d.readByte(); b {
	case 0:
		return false
	case 1:
		return true
	default:
		d.fail(fmt.Errorf("invalid boolean %d", b))
	}
	return false
}

func (d *decoder) fail(err error) {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	panic(decodeError{err})
}

// decodeError marks panics raised by the decoder.
type decodeError struct {
	err error
}
