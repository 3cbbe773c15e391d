package formats

import (
	"fmt"

	"github.com/Faultbox/midgard-rose/pkg/coords"
	"github.com/Faultbox/midgard-rose/pkg/cursor"
	"github.com/Faultbox/midgard-rose/pkg/encoding"
	"github.com/Faultbox/midgard-rose/pkg/math"
)

// reader wraps a cursor with a sticky first error so decoders can read a
// run of fields and check once. After the first failure every read returns
// a zero value and leaves the position unchanged.
type reader struct {
	c      *cursor.Cursor
	format string
	err    error
}

func newReader(format string, data []byte) *reader {
	return &reader{c: cursor.New(data), format: format}
}

func (r *reader) ok() bool {
	return r.err == nil
}

func (r *reader) tell() int {
	return r.c.Tell()
}

// fail records err as the decode failure unless one is already recorded.
func (r *reader) fail(op string, err error) {
	if r.err != nil {
		return
	}
	r.err = &DecodeError{Format: r.format, Offset: r.c.Tell(), Op: op, Err: err}
}

// failf records a format violation of the given kind.
func (r *reader) failf(kind error, op string, format string, args ...any) {
	r.fail(op, fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...)))
}

func (r *reader) u8(op string) uint8 {
	if r.err != nil {
		return 0
	}
	v, err := r.c.ReadU8()
	if err != nil {
		r.fail(op, err)
	}
	return v
}

func (r *reader) u16(op string) uint16 {
	if r.err != nil {
		return 0
	}
	v, err := r.c.ReadU16()
	if err != nil {
		r.fail(op, err)
	}
	return v
}

func (r *reader) u32(op string) uint32 {
	if r.err != nil {
		return 0
	}
	v, err := r.c.ReadU32()
	if err != nil {
		r.fail(op, err)
	}
	return v
}

func (r *reader) f32(op string) float32 {
	if r.err != nil {
		return 0
	}
	v, err := r.c.ReadF32()
	if err != nil {
		r.fail(op, err)
	}
	return v
}

func (r *reader) vec2(op string) math.Vec2 {
	if r.err != nil {
		return math.Vec2{}
	}
	v, err := r.c.ReadVec2()
	if err != nil {
		r.fail(op, err)
	}
	return v
}

func (r *reader) vec3(op string) math.Vec3 {
	if r.err != nil {
		return math.Vec3{}
	}
	v, err := r.c.ReadVec3()
	if err != nil {
		r.fail(op, err)
	}
	return v
}

func (r *reader) color3(op string) math.Color {
	if r.err != nil {
		return math.Color{}
	}
	v, err := r.c.ReadColor3()
	if err != nil {
		r.fail(op, err)
	}
	return v
}

// position reads a vec3 and converts it to the target convention.
func (r *reader) position(op string) math.Vec3 {
	return coords.Position(r.vec3(op))
}

// scale reads a vec3 scale.
func (r *reader) scale(op string) math.Vec3 {
	return coords.Scale(r.vec3(op))
}

// rotation reads a W,X,Y,Z quaternion and converts it to the target convention.
func (r *reader) rotation(op string) math.Quat {
	if r.err != nil {
		return math.QuatIdentity()
	}
	q, err := r.c.ReadQuatWXYZ()
	if err != nil {
		r.fail(op, err)
		return math.QuatIdentity()
	}
	return coords.Rotation(q)
}

// rotationXYZW reads an X,Y,Z,W quaternion and converts it to the target convention.
func (r *reader) rotationXYZW(op string) math.Quat {
	if r.err != nil {
		return math.QuatIdentity()
	}
	q, err := r.c.ReadQuatXYZW()
	if err != nil {
		r.fail(op, err)
		return math.QuatIdentity()
	}
	return coords.Rotation(q)
}

// cstring reads a null-terminated EUC-KR string.
func (r *reader) cstring(op string) string {
	if r.err != nil {
		return ""
	}
	s, err := r.c.ReadCString()
	if err != nil {
		r.fail(op, err)
		return ""
	}
	return encoding.EUCKRStringToUTF8(s)
}

// name reads a null-terminated string bounded to MaxNameLength bytes.
func (r *reader) name(op string) string {
	if r.err != nil {
		return ""
	}
	s, err := r.c.ReadCString()
	if err != nil {
		r.fail(op, err)
		return ""
	}
	return encoding.EUCKRStringToUTF8(cursor.Bounded(s, MaxNameLength))
}

// fixedString reads exactly n bytes as a null-padded EUC-KR string.
func (r *reader) fixedString(n int, op string) string {
	if r.err != nil {
		return ""
	}
	s, err := r.c.ReadFixedString(n)
	if err != nil {
		r.fail(op, err)
		return ""
	}
	return encoding.EUCKRStringToUTF8(s)
}

// byteString reads a 1-byte length-prefixed EUC-KR string.
func (r *reader) byteString(op string) string {
	if r.err != nil {
		return ""
	}
	s, err := r.c.ReadLengthPrefixedString()
	if err != nil {
		r.fail(op, err)
		return ""
	}
	return encoding.EUCKRStringToUTF8(s)
}

func (r *reader) skip(n int, op string) {
	if r.err != nil {
		return
	}
	if err := r.c.Skip(n); err != nil {
		r.fail(op, err)
	}
}

func (r *reader) seek(pos int, op string) {
	if r.err != nil {
		return
	}
	if err := r.c.Seek(pos); err != nil {
		r.fail(op, err)
	}
}

// count checks that n records of at least minSize bytes each can still be
// read, so a corrupt count fails before anything is allocated for it.
// It returns 0 once the reader has failed.
func (r *reader) count(n uint32, minSize int, op string) int {
	if r.err != nil {
		return 0
	}
	if uint64(n)*uint64(minSize) > uint64(r.c.Remaining()) {
		r.fail(op, fmt.Errorf("%w: %d records of %d bytes with %d bytes left",
			ErrOutOfBounds, n, minSize, r.c.Remaining()))
		return 0
	}
	return int(n)
}

// stringTable reads a u16 count followed by that many null-terminated strings.
func (r *reader) stringTable(op string) []string {
	n := r.count(uint32(r.u16(op+" count")), 1, op)
	table := make([]string, 0, n)
	for i := 0; i < n && r.ok(); i++ {
		table = append(table, r.cstring(op))
	}
	return table
}
