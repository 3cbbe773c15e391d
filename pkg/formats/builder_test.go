package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

// builder assembles little-endian test fixtures.
type builder struct {
	bytes.Buffer
}

func (b *builder) u8(v uint8) *builder {
	b.WriteByte(v)
	return b
}

func (b *builder) u16(v uint16) *builder {
	binary.Write(&b.Buffer, binary.LittleEndian, v)
	return b
}

func (b *builder) u32(v uint32) *builder {
	binary.Write(&b.Buffer, binary.LittleEndian, v)
	return b
}

func (b *builder) f32(vs ...float32) *builder {
	for _, v := range vs {
		binary.Write(&b.Buffer, binary.LittleEndian, v)
	}
	return b
}

func (b *builder) cstr(s string) *builder {
	b.WriteString(s)
	b.WriteByte(0)
	return b
}

func (b *builder) raw(p []byte) *builder {
	b.Write(p)
	return b
}

func (b *builder) zeros(n int) *builder {
	b.Write(make([]byte, n))
	return b
}

// expectKind fails the test unless err wraps kind.
func expectKind(t *testing.T, err, kind error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v, got nil", kind)
	}
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DecodeError, got %T", err)
	}
}
