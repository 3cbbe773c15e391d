// Package cursor provides a bounds-checked little-endian reader over an
// in-memory byte buffer.
package cursor

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	stdmath "math"

	"github.com/Faultbox/midgard-rose/pkg/math"
)

// ErrOutOfBounds is returned when a read or seek would leave the buffer.
var ErrOutOfBounds = errors.New("out of bounds")

// Cursor reads typed values from an immutable byte buffer.
// A Cursor is not safe for concurrent use; each decode owns its own.
type Cursor struct {
	data []byte
	pos  int
}

// New returns a cursor positioned at the start of data.
func New(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Len returns the size of the underlying buffer.
func (c *Cursor) Len() int {
	return len(c.data)
}

// Tell returns the current read position.
func (c *Cursor) Tell() int {
	return c.pos
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.data) - c.pos
}

// Seek moves the read position to an absolute offset in [0, Len()].
func (c *Cursor) Seek(pos int) error {
	if pos < 0 || pos > len(c.data) {
		return fmt.Errorf("%w: seek to %d (size %d)", ErrOutOfBounds, pos, len(c.data))
	}
	c.pos = pos
	return nil
}

// Skip advances the read position by n bytes.
func (c *Cursor) Skip(n int) error {
	if _, err := c.take(n); err != nil {
		return err
	}
	return nil
}

// take returns the next n bytes without copying and advances past them.
// On failure the position is left unchanged.
func (c *Cursor) take(n int) ([]byte, error) {
	if n < 0 || n > len(c.data)-c.pos {
		return nil, fmt.Errorf("%w: reading %d bytes at offset %d (size %d)", ErrOutOfBounds, n, c.pos, len(c.data))
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// ReadBytes returns a copy of the next n bytes.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	b, err := c.take(n)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(b), nil
}

// ReadU8 reads an unsigned byte.
func (c *Cursor) ReadU8() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU16 reads a little-endian uint16.
func (c *Cursor) ReadU16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadU32 reads a little-endian uint32.
func (c *Cursor) ReadU32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadI32 reads a little-endian int32.
func (c *Cursor) ReadI32() (int32, error) {
	v, err := c.ReadU32()
	return int32(v), err
}

// ReadF32 reads a little-endian IEEE-754 float32.
func (c *Cursor) ReadF32() (float32, error) {
	v, err := c.ReadU32()
	if err != nil {
		return 0, err
	}
	return stdmath.Float32frombits(v), nil
}

// ReadF32s fills dst with consecutive float32 values.
func (c *Cursor) ReadF32s(dst []float32) error {
	b, err := c.take(4 * len(dst))
	if err != nil {
		return err
	}
	for i := range dst {
		dst[i] = stdmath.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return nil
}

// ReadVec2 reads two float32 values.
func (c *Cursor) ReadVec2() (math.Vec2, error) {
	var f [2]float32
	if err := c.ReadF32s(f[:]); err != nil {
		return math.Vec2{}, err
	}
	return math.Vec2{X: f[0], Y: f[1]}, nil
}

// ReadVec3 reads three float32 values.
func (c *Cursor) ReadVec3() (math.Vec3, error) {
	var f [3]float32
	if err := c.ReadF32s(f[:]); err != nil {
		return math.Vec3{}, err
	}
	return math.Vec3{X: f[0], Y: f[1], Z: f[2]}, nil
}

// ReadQuatWXYZ reads a quaternion stored as W, X, Y, Z.
func (c *Cursor) ReadQuatWXYZ() (math.Quat, error) {
	var f [4]float32
	if err := c.ReadF32s(f[:]); err != nil {
		return math.Quat{}, err
	}
	return math.QuatFromWXYZ(f[0], f[1], f[2], f[3]), nil
}

// ReadQuatXYZW reads a quaternion stored as X, Y, Z, W.
func (c *Cursor) ReadQuatXYZW() (math.Quat, error) {
	var f [4]float32
	if err := c.ReadF32s(f[:]); err != nil {
		return math.Quat{}, err
	}
	return math.Quat{X: f[0], Y: f[1], Z: f[2], W: f[3]}, nil
}

// ReadColor3 reads an RGB triple of float32 values as an opaque colour.
func (c *Cursor) ReadColor3() (math.Color, error) {
	var f [3]float32
	if err := c.ReadF32s(f[:]); err != nil {
		return math.Color{}, err
	}
	return math.Color{R: f[0], G: f[1], B: f[2], A: 1}, nil
}

// ReadCString reads bytes up to a null terminator and advances past it.
// A missing terminator is an ErrOutOfBounds.
func (c *Cursor) ReadCString() (string, error) {
	end := bytes.IndexByte(c.data[c.pos:], 0)
	if end < 0 {
		return "", fmt.Errorf("%w: unterminated string at offset %d", ErrOutOfBounds, c.pos)
	}
	s := string(c.data[c.pos : c.pos+end])
	c.pos += end + 1
	return s, nil
}

// ReadFixedString reads exactly n bytes and returns them up to the first null.
func (c *Cursor) ReadFixedString(n int) (string, error) {
	b, err := c.take(n)
	if err != nil {
		return "", err
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b), nil
}

// ReadLengthPrefixedString reads a 1-byte length followed by that many bytes.
func (c *Cursor) ReadLengthPrefixedString() (string, error) {
	start := c.pos
	n, err := c.ReadU8()
	if err != nil {
		return "", err
	}
	s, err := c.ReadFixedString(int(n))
	if err != nil {
		c.pos = start
		return "", err
	}
	return s, nil
}

// Bounded truncates s to at most max bytes.
func Bounded(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
