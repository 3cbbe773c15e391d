package formats

import (
	"fmt"

	"github.com/Faultbox/midgard-rose/pkg/math"
)

// ZMD magic strings.
const (
	zmdMagicV2 = "ZMD0002"
	zmdMagicV3 = "ZMD0003"
)

// SkeletonVersion identifies the ZMD header variant.
type SkeletonVersion int

// Supported ZMD versions. Only v3 stores rotations for dummy bones.
const (
	SkeletonV2 SkeletonVersion = 2
	SkeletonV3 SkeletonVersion = 3
)

// String returns the magic string of the version.
func (v SkeletonVersion) String() string {
	return fmt.Sprintf("ZMD%04d", int(v))
}

// Bone is a node in a skeleton hierarchy.
type Bone struct {
	Parent      uint32 // Index of the parent bone; ignored for the root
	Name        string
	Translation math.Vec3 // Relative to the parent
	Rotation    math.Quat // Relative to the parent
}

// Skeleton is a decoded ZMD file.
type Skeleton struct {
	Version SkeletonVersion
	Bones   []Bone
	// Dummies are attachment points. Their Parent indexes Bones.
	Dummies []Bone
}

// BoneByName returns the index of the first bone called name, or -1.
func (s *Skeleton) BoneByName(name string) int {
	for i := range s.Bones {
		if s.Bones[i].Name == name {
			return i
		}
	}
	return -1
}

// Children returns the indices of the bones whose parent is idx.
func (s *Skeleton) Children(idx int) []int {
	var out []int
	for i := 1; i < len(s.Bones); i++ {
		if int(s.Bones[i].Parent) == idx {
			out = append(out, i)
		}
	}
	return out
}

// ParseZMD decodes a skeleton.
//
// Bones are stored in construction order, so every bone after the first must
// reference an earlier one. A file that breaks this fails with
// ErrInconsistentCount.
func ParseZMD(data []byte) (*Skeleton, error) {
	r := newReader("ZMD", data)

	magic := r.fixedString(len(zmdMagicV2), "magic")
	if !r.ok() {
		return nil, r.err
	}

	skel := &Skeleton{}
	switch magic {
	case zmdMagicV2:
		skel.Version = SkeletonV2
	case zmdMagicV3:
		skel.Version = SkeletonV3
	default:
		r.failf(ErrUnrecognizedMagic, "magic", "%q", magic)
		return nil, r.err
	}

	// parent + empty name + translation, rotation optional
	const minBoneSize = 4 + 1 + 12

	boneCount := r.count(r.u32("bone count"), minBoneSize, "bone count")
	skel.Bones = make([]Bone, 0, boneCount)
	for i := 0; i < boneCount && r.ok(); i++ {
		b := readBone(r, true)
		if i > 0 && int(b.Parent) >= i {
			r.failf(ErrInconsistentCount, "bone parent", "bone %d has parent %d", i, b.Parent)
			break
		}
		skel.Bones = append(skel.Bones, b)
	}

	dummyCount := r.count(r.u32("dummy count"), minBoneSize, "dummy count")
	skel.Dummies = make([]Bone, 0, dummyCount)
	for i := 0; i < dummyCount && r.ok(); i++ {
		b := readBone(r, skel.Version == SkeletonV3)
		if int(b.Parent) >= len(skel.Bones) {
			r.failf(ErrInconsistentCount, "dummy parent", "dummy %d has parent %d of %d bones", i, b.Parent, len(skel.Bones))
			break
		}
		skel.Dummies = append(skel.Dummies, b)
	}

	if !r.ok() {
		return nil, r.err
	}
	return skel, nil
}

func readBone(r *reader, hasRotation bool) Bone {
	b := Bone{
		Parent:      r.u32("bone parent"),
		Name:        r.name("bone name"),
		Translation: r.position("bone translation"),
		Rotation:    math.QuatIdentity(),
	}
	if hasRotation {
		b.Rotation = r.rotation("bone rotation")
	}
	return b
}
