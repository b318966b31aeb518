// Package binread is a bounds-checked cursor over a game image plus the
// string encodings used by the various game-image dialects.
package binread

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/tatianab/scottfree/internal/gameerr"
)

// Cursor reads forward through a byte buffer. Every read is bounds checked and
// fails with an error wrapping gameerr.ErrTextOutOfBounds or
// gameerr.ErrOffsetBeyondFile instead of reading past the buffer.
type Cursor struct {
	data []byte
	pos  int
}

// NewCursor returns a cursor positioned at the start of data.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Data returns the underlying buffer.
func (c *Cursor) Data() []byte {
	return c.data
}

// Len is the length of the underlying buffer.
func (c *Cursor) Len() int {
	return len(c.data)
}

// Pos is the current read position.
func (c *Cursor) Pos() int {
	return c.pos
}

// Remaining is the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.data) - c.pos
}

// Seek moves the cursor to an absolute position. Seeking to the very end of
// the buffer is allowed; any read from there fails.
func (c *Cursor) Seek(pos int) error {
	if pos < 0 || pos > len(c.data) {
		return errors.Wrapf(gameerr.ErrOffsetBeyondFile, "seek to %#x (file is %#x bytes)", pos, len(c.data))
	}
	c.pos = pos
	return nil
}

// Skip advances the cursor by n bytes.
func (c *Cursor) Skip(n int) error {
	return c.Seek(c.pos + n)
}

// ReadByte returns the next byte.
func (c *Cursor) ReadByte() (byte, error) {
	if c.pos >= len(c.data) {
		return 0, errors.Wrapf(gameerr.ErrTextOutOfBounds, "read at %#x", c.pos)
	}
	b := c.data[c.pos]
	c.pos++
	return b, nil
}

// PeekByte returns the byte at the cursor without advancing.
func (c *Cursor) PeekByte() (byte, error) {
	if c.pos >= len(c.data) {
		return 0, errors.Wrapf(gameerr.ErrTextOutOfBounds, "peek at %#x", c.pos)
	}
	return c.data[c.pos], nil
}

// ReadBytes returns the next n bytes. The returned slice aliases the buffer.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if n < 0 || c.pos+n > len(c.data) {
		return nil, errors.Wrapf(gameerr.ErrTextOutOfBounds, "read %d bytes at %#x", n, c.pos)
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// ReadUint16LE reads a little-endian 16 bit word.
func (c *Cursor) ReadUint16LE() (uint16, error) {
	b, err := c.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0]) | uint16(b[1])<<8, nil
}

// ReadUint16BE reads a big-endian 16 bit word. The TI-99/4A stores its
// pointers this way.
func (c *Cursor) ReadUint16BE() (uint16, error) {
	b, err := c.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

// Uint16BE reads a big-endian word at an absolute position without moving the
// cursor.
func (c *Cursor) Uint16BE(pos int) (uint16, error) {
	if pos < 0 || pos+2 > len(c.data) {
		return 0, errors.Wrapf(gameerr.ErrOffsetBeyondFile, "word at %#x", pos)
	}
	return uint16(c.data[pos])<<8 | uint16(c.data[pos+1]), nil
}

// ReadCString reads bytes up to and including the next zero byte and returns
// them without the terminator. With asciiOnly set any byte above 0x7f fails
// the read.
func (c *Cursor) ReadCString(asciiOnly bool) (string, error) {
	start := c.pos
	for {
		b, err := c.ReadByte()
		if err != nil {
			return "", errors.Wrapf(err, "unterminated string at %#x", start)
		}
		if b == 0 {
			return string(c.data[start : c.pos-1]), nil
		}
		if asciiOnly && b > 0x7f {
			return "", errors.Wrapf(gameerr.ErrNonASCII, "byte %#02x at %#x", b, c.pos-1)
		}
	}
}

// MinSignatureLength is the comparison width for signatures. Shorter ones are
// compared together with the zero padding that follows them.
const MinSignatureLength = 7

// FindSignature returns the first offset at or after from where sig occurs,
// or -1. Signatures shorter than MinSignatureLength are zero padded, and the
// match must finish strictly before the end of the buffer.
func FindSignature(data []byte, sig []byte, from int) int {
	if len(sig) < MinSignatureLength {
		padded := make([]byte, MinSignatureLength)
		copy(padded, sig)
		sig = padded
	}
	if from < 0 {
		from = 0
	}
	limit := len(data) - len(sig)
	for p := from; p < limit; p++ {
		if bytes.Equal(data[p:p+len(sig)], sig) {
			return p
		}
	}
	return -1
}
