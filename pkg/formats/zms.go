package formats

import (
	"fmt"
	"strings"

	"github.com/Faultbox/midgard-rose/pkg/math"
)

// ZMS positions are stored in metres; consumers work in centimetres.
const zmsUnitScale = 100

// VertexFormat is the ZMS bitmask of vertex streams present in a mesh.
type VertexFormat uint32

// Vertex stream flags.
const (
	VertexPosition    VertexFormat = 1 << 1
	VertexNormal      VertexFormat = 1 << 2
	VertexColor       VertexFormat = 1 << 3
	VertexBlendWeight VertexFormat = 1 << 4
	VertexBlendIndex  VertexFormat = 1 << 5
	VertexTangent     VertexFormat = 1 << 6
	VertexUV1         VertexFormat = 1 << 7
	VertexUV2         VertexFormat = 1 << 8
	VertexUV3         VertexFormat = 1 << 9
	VertexUV4         VertexFormat = 1 << 10
)

// MaxUVChannels is the number of texture coordinate sets a mesh can carry.
const MaxUVChannels = 4

var vertexFormatNames = []struct {
	flag VertexFormat
	name string
}{
	{VertexPosition, "Position"},
	{VertexNormal, "Normal"},
	{VertexColor, "Color"},
	{VertexBlendWeight, "BlendWeight"},
	{VertexBlendIndex, "BlendIndex"},
	{VertexTangent, "Tangent"},
	{VertexUV1, "UV1"},
	{VertexUV2, "UV2"},
	{VertexUV3, "UV3"},
	{VertexUV4, "UV4"},
}

// Has reports whether every flag in f is set.
func (v VertexFormat) Has(f VertexFormat) bool {
	return v&f == f
}

// HasSkin reports whether the mesh carries bone weights.
func (v VertexFormat) HasSkin() bool {
	return v.Has(VertexBlendWeight | VertexBlendIndex)
}

// String returns the set flags joined with '|'.
func (v VertexFormat) String() string {
	var parts []string
	for _, f := range vertexFormatNames {
		if v&f.flag != 0 {
			parts = append(parts, f.name)
		}
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, "|")
}

// BoneWeight binds a vertex to a skeleton bone.
type BoneWeight struct {
	Bone   uint16 // Global skeleton bone index
	Weight float32
}

// Mesh is a decoded ZMS file. Every non-empty vertex stream has one entry
// per position.
type Mesh struct {
	Header      string
	Format      VertexFormat
	BoneLookup  []uint16 // Mesh-local bone slot -> skeleton bone index
	Positions   []math.Vec3
	Normals     []math.Vec3
	Colors      []math.Color
	Tangents    []math.Vec3
	UVs         [MaxUVChannels][]math.Vec2
	BoneWeights [][4]BoneWeight
	Indices     []uint16 // Three per triangle
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsSkinned reports whether the mesh has bone weights.
func (m *Mesh) IsSkinned() bool {
	return len(m.BoneWeights) > 0
}

// ValidateSkeleton checks that every bone weight references a bone of a
// skeleton with boneCount bones.
func (m *Mesh) ValidateSkeleton(boneCount int) error {
	for v, weights := range m.BoneWeights {
		for _, w := range weights {
			if int(w.Bone) >= boneCount {
				return fmt.Errorf("%w: vertex %d references bone %d of %d",
					ErrInconsistentCount, v, w.Bone, boneCount)
			}
		}
	}
	return nil
}

// ParseZMS decodes a mesh.
func ParseZMS(data []byte) (*Mesh, error) {
	r := newReader("ZMS", data)

	mesh := &Mesh{
		Header: r.fixedString(8, "header"),
		Format: VertexFormat(r.u32("format")),
	}
	if r.ok() && !strings.HasPrefix(mesh.Header, "ZMS") {
		r.failf(ErrUnrecognizedMagic, "header", "%q", mesh.Header)
	}

	// Bounding box min/max, recomputed by consumers
	r.skip(2*12, "bounding box")

	lookupCount := r.count(uint32(r.u16("bone lookup count")), 2, "bone lookup")
	mesh.BoneLookup = make([]uint16, lookupCount)
	for i := 0; i < lookupCount && r.ok(); i++ {
		mesh.BoneLookup[i] = r.u16("bone lookup")
	}

	vertexCount := r.count(uint32(r.u16("vertex count")), 12, "positions")
	mesh.Positions = make([]math.Vec3, vertexCount)
	for i := 0; i < vertexCount && r.ok(); i++ {
		mesh.Positions[i] = r.position("position").Scale(zmsUnitScale)
	}

	if mesh.Format.Has(VertexNormal) {
		n := r.count(uint32(vertexCount), 12, "normals")
		mesh.Normals = make([]math.Vec3, n)
		for i := 0; i < n && r.ok(); i++ {
			mesh.Normals[i] = r.vec3("normal")
		}
	}

	if mesh.Format.Has(VertexColor) {
		n := r.count(uint32(vertexCount), 16, "colors")
		mesh.Colors = make([]math.Color, n)
		for i := 0; i < n && r.ok(); i++ {
			a := r.f32("color alpha")
			mesh.Colors[i] = math.Color{R: r.f32("color r"), G: r.f32("color g"), B: r.f32("color b"), A: a}
		}
	}

	if mesh.Format.HasSkin() {
		n := r.count(uint32(vertexCount), 4*4+4*2, "bone weights")
		mesh.BoneWeights = make([][4]BoneWeight, n)
		for i := 0; i < n && r.ok(); i++ {
			mesh.BoneWeights[i] = readBoneWeights(r, mesh.BoneLookup)
		}
	}

	if mesh.Format.Has(VertexTangent) {
		n := r.count(uint32(vertexCount), 12, "tangents")
		mesh.Tangents = make([]math.Vec3, n)
		for i := 0; i < n && r.ok(); i++ {
			mesh.Tangents[i] = r.position("tangent")
		}
	}

	uvFlags := [MaxUVChannels]VertexFormat{VertexUV1, VertexUV2, VertexUV3, VertexUV4}
	for ch, flag := range uvFlags {
		if !mesh.Format.Has(flag) {
			continue
		}
		n := r.count(uint32(vertexCount), 8, "uvs")
		uvs := make([]math.Vec2, n)
		for i := 0; i < n && r.ok(); i++ {
			uvs[i] = r.vec2("uv")
		}
		mesh.UVs[ch] = uvs
	}

	faceCount := r.count(uint32(r.u16("face count")), 3*2, "indices")
	mesh.Indices = make([]uint16, faceCount*3)
	for i := range mesh.Indices {
		if !r.ok() {
			break
		}
		idx := r.u16("index")
		if r.ok() && int(idx) >= vertexCount {
			r.failf(ErrInconsistentCount, "index", "index %d references vertex %d of %d", i, idx, vertexCount)
		}
		mesh.Indices[i] = idx
	}

	if !r.ok() {
		return nil, r.err
	}
	return mesh, nil
}

// readBoneWeights reads four weights followed by four mesh-local bone slots
// and resolves the slots through lookup.
func readBoneWeights(r *reader, lookup []uint16) [4]BoneWeight {
	var out [4]BoneWeight
	for k := range out {
		out[k].Weight = r.f32("bone weight")
	}
	for k := range out {
		local := r.u16("bone index")
		if !r.ok() {
			break
		}
		if int(local) >= len(lookup) {
			r.failf(ErrInconsistentCount, "bone index", "bone slot %d outside lookup table of %d", local, len(lookup))
			break
		}
		out[k].Bone = lookup[local]
	}
	return out
}
