package binread

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"

	"github.com/tatianab/scottfree/internal/gameerr"
)

// packedAlphabet maps the 5-bit codes of compressed text. 0x01 starts a new
// sentence, 0x00 ends the string.
const packedAlphabet = " abcdefghijklmnopqrstuvwxyz'\x01,.\x00"

// maxPackedLength bounds a single decompressed string.
const maxPackedLength = 255

// DecompressText decodes string number index from a table of 5-bit packed
// strings starting at start. Each record begins with a byte whose low seven
// bits give the record length (used to skip to the next record) and whose
// bit 6 is clear when the first letter is a capital.
func DecompressText(data []byte, start, index int) (string, error) {
	c := NewCursor(data)
	if err := c.Seek(start); err != nil {
		return "", err
	}
	for i := 0; i < index; i++ {
		b, err := c.PeekByte()
		if err != nil {
			return "", errors.Wrapf(err, "skipping to packed string %d", index)
		}
		if err := c.Skip(int(b & 0x7f)); err != nil {
			return "", errors.Wrapf(err, "skipping to packed string %d", index)
		}
	}

	lead, err := c.ReadByte()
	if err != nil {
		return "", err
	}
	uppercase := lead&0x40 == 0

	var out []byte
	for {
		group, err := c.ReadBytes(5)
		if err != nil {
			return "", errors.Wrapf(err, "packed string %d", index)
		}
		var value uint64
		for _, b := range group {
			value = value<<8 | uint64(b)
		}
		for shift := 35; shift >= 0; shift -= 5 {
			ch := packedAlphabet[(value>>uint(shift))&0x1f]
			if ch == 0x01 {
				uppercase = true
				ch = ' '
			}
			if ch >= 'a' && uppercase {
				ch -= 'a' - 'A'
				uppercase = false
			}
			if ch == 0 {
				return string(out), nil
			}
			out = append(out, ch)
			if len(out) > maxPackedLength {
				return "", errors.Wrapf(gameerr.ErrTextOutOfBounds, "packed string %d longer than %d", index, maxPackedLength)
			}
			if len(out) == maxPackedLength {
				return string(out), nil
			}
			if ch == '.' || ch == ',' {
				if ch == '.' {
					uppercase = true
				}
				out = append(out, ' ')
			}
		}
	}
}

// Maximum sizes for TI-99/4A token strings.
const (
	MaxTokenLength  = 100
	MaxStringLength = 1000
)

// TokenString assembles a TI-99/4A string from the length-prefixed tokens
// found between from and to. Tokens are joined with single spaces.
func TokenString(data []byte, from, to int) (string, error) {
	if from < 0 || to > len(data) || from > to {
		return "", errors.Wrapf(gameerr.ErrOffsetBeyondFile, "token string %#x..%#x", from, to)
	}
	c := NewCursor(data[:to])
	if err := c.Seek(from); err != nil {
		return "", err
	}
	s := strings.Builder{}
	for c.Remaining() > 0 {
		n, _ := c.ReadByte()
		if int(n) > MaxTokenLength {
			return "", errors.Wrapf(gameerr.ErrTextOutOfBounds, "token of %d bytes at %#x", n, c.Pos()-1)
		}
		tok, err := c.ReadBytes(int(n))
		if err != nil {
			return "", err
		}
		for _, b := range tok {
			if b < 0x20 || b > 0x7e {
				return "", errors.Wrapf(gameerr.ErrNonASCII, "byte %#02x in token at %#x", b, c.Pos()-int(n))
			}
		}
		s.Write(tok)
		if s.Len() > MaxStringLength {
			return "", errors.Wrapf(gameerr.ErrTextOutOfBounds, "token string at %#x exceeds %d bytes", from, MaxStringLength)
		}
		if c.Remaining() > 0 {
			s.WriteByte(' ')
		}
	}
	return s.String(), nil
}

// NextSegment returns the next non-empty run of bytes terminated by 0 or 0x0D,
// skipping empty runs. A 0x0D terminator is kept as a trailing newline. When
// stop reports true for a byte the segment read so far is returned together
// with an error wrapping gameerr.ErrNonASCII.
func (c *Cursor) NextSegment(stop func(b byte) bool) ([]byte, error) {
	var seg []byte
	for {
		b, err := c.ReadByte()
		if err != nil {
			return seg, err
		}
		switch {
		case b == 0 || b == 0x0d:
			if len(seg) == 0 {
				continue
			}
			if b == 0x0d {
				seg = append(seg, '\n')
			}
			return seg, nil
		case stop != nil && stop(b):
			return seg, errors.Wrapf(gameerr.ErrNonASCII, "byte %#02x at %#x", b, c.Pos()-1)
		}
		seg = append(seg, b)
	}
}

// Decode turns raw game text into a Go string. Plain ASCII is returned as is;
// bytes with the high bit set are read through cm when one is given and
// otherwise replaced by '?'.
func Decode(raw []byte, cm *charmap.Charmap) string {
	ascii := true
	for _, b := range raw {
		if b > 0x7f {
			ascii = false
			break
		}
	}
	if ascii {
		return string(raw)
	}
	if cm != nil {
		if s, err := cm.NewDecoder().Bytes(raw); err == nil {
			return string(s)
		}
	}
	out := make([]byte, len(raw))
	for i, b := range raw {
		if b > 0x7f {
			b = '?'
		}
		out[i] = b
	}
	return string(out)
}

// IsASCII reports whether b is a 7 bit byte.
func IsASCII(b byte) bool {
	return b <= 0x7f
}
