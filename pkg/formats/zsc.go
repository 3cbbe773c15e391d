package formats

import (
	"fmt"

	"github.com/Faultbox/midgard-rose/pkg/math"
)

// PropertyTag identifies an optional property in a ZSC part or effect.
// Tag 0 terminates a property stream.
type PropertyTag uint8

// Property tags.
const (
	PropEnd             PropertyTag = 0
	PropPosition        PropertyTag = 1
	PropRotation        PropertyTag = 2
	PropScale           PropertyTag = 3
	PropAxisRotation    PropertyTag = 4
	PropBoneIndex       PropertyTag = 5
	PropDummyIndex      PropertyTag = 6
	PropParent          PropertyTag = 7
	PropAnimation       PropertyTag = 8
	PropCollision       PropertyTag = 29
	PropAnimationPath   PropertyTag = 30
	PropVisibleRangeSet PropertyTag = 31
	PropUseLightmap     PropertyTag = 32
)

// String returns a human-readable tag name.
func (t PropertyTag) String() string {
	switch t {
	case PropEnd:
		return "End"
	case PropPosition:
		return "Position"
	case PropRotation:
		return "Rotation"
	case PropScale:
		return "Scale"
	case PropAxisRotation:
		return "AxisRotation"
	case PropBoneIndex:
		return "BoneIndex"
	case PropDummyIndex:
		return "DummyIndex"
	case PropParent:
		return "Parent"
	case PropAnimation:
		return "Animation"
	case PropCollision:
		return "Collision"
	case PropAnimationPath:
		return "AnimationPath"
	case PropVisibleRangeSet:
		return "VisibleRangeSet"
	case PropUseLightmap:
		return "UseLightmap"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(t))
	}
}

// NoIndex marks an absent parent, bone or dummy binding.
const NoIndex = -1

// Fixed-size regions of a model record that carry nothing we decode.
const (
	zscModelHeaderSize = 3 * 4  // Bounding cylinder
	zscModelFooterSize = 2 * 12 // Bounding box min/max
)

// TextureDescriptor is a material entry of a scene catalog.
type TextureDescriptor struct {
	Path           string
	UseSkinShader  bool
	AlphaEnabled   bool
	TwoSided       bool
	AlphaTest      bool
	AlphaReference uint16
	DepthTest      bool
	DepthWrite     bool
	BlendType      uint16
	Specular       bool
	Alpha          float32
	GlowType       uint16
	GlowColor      math.Color
}

// Transform is a decoded position, rotation and scale.
type Transform struct {
	Position math.Vec3
	Rotation math.Quat
	Scale    math.Vec3
}

func identityTransform() Transform {
	return Transform{Rotation: math.QuatIdentity(), Scale: math.Vec3One}
}

// ModelPart is one mesh of a scene model.
type ModelPart struct {
	Mesh    uint16 // Index into SceneCatalog.Meshes
	Texture uint16 // Index into SceneCatalog.Textures
	Transform
	AxisRotation    math.Quat
	Parent          int32 // 1-based part number as stored, NoIndex when absent
	Bone            int32 // Skeleton bone, NoIndex when absent
	Dummy           int32 // Skeleton dummy, NoIndex when absent
	Collision       uint16
	AnimationPath   string
	VisibleRangeSet uint16
	UseLightmap     bool
}

// HasParent reports whether the part is attached to another part.
func (p *ModelPart) HasParent() bool {
	return p.Parent != NoIndex
}

// IsBoneBound reports whether the part follows a skeleton bone or dummy.
func (p *ModelPart) IsBoneBound() bool {
	return p.Bone != NoIndex || p.Dummy != NoIndex
}

// ModelEffect is a particle effect attached to a scene model.
type ModelEffect struct {
	Type   uint16
	Effect uint16 // Index into SceneCatalog.Effects
	Transform
	Parent int32 // 1-based part number as stored, NoIndex when absent
}

// SceneModel is a composite model built from parts and effects.
type SceneModel struct {
	Parts   []ModelPart
	Effects []ModelEffect
}

// IsEmpty reports whether the model slot is unused.
func (m *SceneModel) IsEmpty() bool {
	return len(m.Parts) == 0
}

// SceneCatalog is a decoded ZSC file.
type SceneCatalog struct {
	Meshes   []string
	Textures []TextureDescriptor
	Effects  []string
	Models   []SceneModel
}

// Texture returns the texture descriptor at idx, or nil when out of range.
func (s *SceneCatalog) Texture(idx uint16) *TextureDescriptor {
	if int(idx) >= len(s.Textures) {
		return nil
	}
	return &s.Textures[idx]
}

// ParseZSC decodes a scene catalog.
func ParseZSC(data []byte) (*SceneCatalog, error) {
	r := newReader("ZSC", data)

	zsc := &SceneCatalog{
		Meshes: r.stringTable("mesh table"),
	}

	// path terminator + 9 u16 flags + alpha + glow type + glow colour
	const minTextureSize = 1 + 9*2 + 4 + 2 + 12
	textureCount := r.count(uint32(r.u16("texture count")), minTextureSize, "textures")
	zsc.Textures = make([]TextureDescriptor, 0, textureCount)
	for i := 0; i < textureCount && r.ok(); i++ {
		zsc.Textures = append(zsc.Textures, readTextureDescriptor(r))
	}

	zsc.Effects = r.stringTable("effect table")

	modelCount := r.count(uint32(r.u16("model count")), zscModelHeaderSize+2, "models")
	zsc.Models = make([]SceneModel, 0, modelCount)
	for i := 0; i < modelCount && r.ok(); i++ {
		zsc.Models = append(zsc.Models, readSceneModel(r))
	}

	if !r.ok() {
		return nil, r.err
	}
	return zsc, nil
}

func readTextureDescriptor(r *reader) TextureDescriptor {
	return TextureDescriptor{
		Path:           r.cstring("texture path"),
		UseSkinShader:  r.u16("skin shader") != 0,
		AlphaEnabled:   r.u16("alpha enabled") != 0,
		TwoSided:       r.u16("two sided") != 0,
		AlphaTest:      r.u16("alpha test") != 0,
		AlphaReference: r.u16("alpha reference"),
		DepthTest:      r.u16("depth test") != 0,
		DepthWrite:     r.u16("depth write") != 0,
		BlendType:      r.u16("blend type"),
		Specular:       r.u16("specular") != 0,
		Alpha:          r.f32("alpha"),
		GlowType:       r.u16("glow type"),
		GlowColor:      r.color3("glow color"),
	}
}

// readSceneModel reads one model record. A model with no parts stores
// neither an effect list nor the trailing bounding box.
func readSceneModel(r *reader) SceneModel {
	var m SceneModel

	r.skip(zscModelHeaderSize, "model header")

	// mesh + texture + end tag
	partCount := r.count(uint32(r.u16("part count")), 2+2+1, "parts")
	if partCount == 0 {
		return m
	}

	m.Parts = make([]ModelPart, 0, partCount)
	for i := 0; i < partCount && r.ok(); i++ {
		m.Parts = append(m.Parts, readModelPart(r))
	}

	effectCount := r.count(uint32(r.u16("effect count")), 2+2+1, "effects")
	m.Effects = make([]ModelEffect, 0, effectCount)
	for i := 0; i < effectCount && r.ok(); i++ {
		m.Effects = append(m.Effects, readModelEffect(r))
	}

	r.skip(zscModelFooterSize, "model footer")
	return m
}

func readModelPart(r *reader) ModelPart {
	p := ModelPart{
		Mesh:         r.u16("part mesh"),
		Texture:      r.u16("part texture"),
		Transform:    identityTransform(),
		AxisRotation: math.QuatIdentity(),
		Parent:       NoIndex,
		Bone:         NoIndex,
		Dummy:        NoIndex,
	}

	readProperties(r, func(tag PropertyTag, size int) bool {
		switch tag {
		case PropPosition:
			p.Position = r.position("part position")
		case PropRotation:
			p.Rotation = r.rotation("part rotation")
		case PropScale:
			p.Scale = r.scale("part scale")
		case PropAxisRotation:
			p.AxisRotation = r.rotation("part axis rotation")
		case PropParent:
			p.Parent = int32(r.u16("part parent"))
		case PropCollision:
			p.Collision = r.u16("part collision")
		case PropAnimationPath:
			p.AnimationPath = r.fixedString(size, "part animation path")
		case PropBoneIndex:
			p.Bone = int32(r.u16("part bone"))
		case PropDummyIndex:
			p.Dummy = int32(r.u16("part dummy"))
		case PropVisibleRangeSet:
			p.VisibleRangeSet = r.u16("part visible range set")
		case PropUseLightmap:
			p.UseLightmap = r.u16("part use lightmap") != 0
		default:
			return false
		}
		return true
	})
	return p
}

func readModelEffect(r *reader) ModelEffect {
	e := ModelEffect{
		Type:      r.u16("effect type"),
		Effect:    r.u16("effect index"),
		Transform: identityTransform(),
		Parent:    NoIndex,
	}

	readProperties(r, func(tag PropertyTag, size int) bool {
		switch tag {
		case PropPosition:
			e.Position = r.position("effect position")
		case PropRotation:
			e.Rotation = r.rotation("effect rotation")
		case PropScale:
			e.Scale = r.scale("effect scale")
		case PropParent:
			e.Parent = int32(r.u16("effect parent"))
		default:
			return false
		}
		return true
	})
	return e
}

// readProperties walks a (tag, size, payload) stream until the end tag.
// apply consumes the payload of a known tag and returns true; payloads of
// tags it does not know are skipped by their declared size. A stream that
// runs off the end of the buffer fails with ErrOutOfBounds.
func readProperties(r *reader, apply func(tag PropertyTag, size int) bool) {
	for r.ok() {
		tag := PropertyTag(r.u8("property tag"))
		if !r.ok() || tag == PropEnd {
			return
		}
		size := int(r.u8("property size"))
		if !apply(tag, size) {
			r.skip(size, "property "+tag.String())
		}
	}
}
