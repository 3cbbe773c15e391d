// Package formats provides decoders for ROSE Online client file formats.
//
// Every decoder is a pure function of an in-memory buffer: it performs no
// file-system access, holds no shared state, and may run concurrently with
// any other decode. Values read from disk are converted to the consumer's
// coordinate convention (see package coords) exactly once, as they are read.
package formats

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Faultbox/midgard-rose/pkg/cursor"
)

// Decode errors. Every decoder failure wraps exactly one of these.
var (
	ErrUnrecognizedMagic = errors.New("unrecognized magic")
	ErrOutOfBounds       = cursor.ErrOutOfBounds
	ErrUnknownTag        = errors.New("unknown tag")
	ErrInconsistentCount = errors.New("inconsistent count")
)

// MaxNameLength bounds names copied out of files that originally lived in
// fixed 256-byte buffers.
const MaxNameLength = 255

// DecodeError describes where and why a decode failed.
type DecodeError struct {
	Format string // "ZMD", "ZMS", ...
	Offset int    // Cursor position when the failure was detected
	Op     string // What was being read
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s at offset %d: %v", e.Format, e.Op, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Kind identifies one of the supported file formats.
type Kind int

// Supported file kinds.
const (
	KindUnknown Kind = iota
	KindZMD          // Skeleton
	KindZMS          // Mesh
	KindZMO          // Animation
	KindZSC          // Scene catalog
	KindCHR          // Character table
	KindHIM          // Heightmap
	KindIFO          // Map instance
	KindTIL          // Tile grid
)

var kindNames = [...]string{
	KindUnknown: "Unknown",
	KindZMD:     "ZMD",
	KindZMS:     "ZMS",
	KindZMO:     "ZMO",
	KindZSC:     "ZSC",
	KindCHR:     "CHR",
	KindHIM:     "HIM",
	KindIFO:     "IFO",
	KindTIL:     "TIL",
}

// String returns the upper-case extension of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Kinds lists every decodable kind.
func Kinds() []Kind {
	return []Kind{KindZMD, KindZMS, KindZMO, KindZSC, KindCHR, KindHIM, KindIFO, KindTIL}
}

// KindFromPath returns the kind implied by a file's extension.
func KindFromPath(path string) Kind {
	ext := strings.ToUpper(strings.TrimPrefix(filepath.Ext(path), "."))
	for _, k := range Kinds() {
		if k.String() == ext {
			return k
		}
	}
	return KindUnknown
}

// Decode dispatches data to the decoder for kind and returns the decoded
// model (*Skeleton, *Mesh, *AnimationClip, ...).
func Decode(kind Kind, data []byte) (any, error) {
	switch kind {
	case KindZMD:
		return decodeAs(ParseZMD, data)
	case KindZMS:
		return decodeAs(ParseZMS, data)
	case KindZMO:
		return decodeAs(ParseZMO, data)
	case KindZSC:
		return decodeAs(ParseZSC, data)
	case KindCHR:
		return decodeAs(ParseCHR, data)
	case KindHIM:
		return decodeAs(ParseHIM, data)
	case KindIFO:
		return decodeAs(ParseIFO, data)
	case KindTIL:
		return decodeAs(ParseTIL, data)
	default:
		return nil, fmt.Errorf("no decoder for kind %s", kind)
	}
}

func decodeAs[T any](parse func([]byte) (*T, error), data []byte) (any, error) {
	m, err := parse(data)
	if err != nil {
		return nil, err
	}
	return m, nil
}
