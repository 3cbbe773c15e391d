package main

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/midgard-rose/pkg/formats"
)

// summary is an ordered list of key/value lines describing a decoded file.
type summary struct {
	keys   []string
	values []string
}

func (s *summary) add(key string, format string, args ...any) {
	s.keys = append(s.keys, key)
	s.values = append(s.values, fmt.Sprintf(format, args...))
}

func (s *summary) prepend(key, value string) {
	s.keys = append([]string{key}, s.keys...)
	s.values = append([]string{value}, s.values...)
}

// get returns the value for key, or "" when absent.
func (s *summary) get(key string) string {
	for i, k := range s.keys {
		if k == key {
			return s.values[i]
		}
	}
	return ""
}

func (s *summary) writeText(w io.Writer) {
	width := 0
	for _, k := range s.keys {
		if len(k) > width {
			width = len(k)
		}
	}
	for i, k := range s.keys {
		fmt.Fprintf(w, "%-*s  %s\n", width+1, k+":", s.values[i])
	}
}

// MarshalYAML keeps the key order.
func (s *summary) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for i, k := range s.keys {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Value: s.values[i]},
		)
	}
	return node, nil
}

func summarize(model any) *summary {
	s := &summary{}
	switch m := model.(type) {
	case *formats.Skeleton:
		s.add("version", "%v", m.Version)
		s.add("bones", "%d", len(m.Bones))
		s.add("dummies", "%d", len(m.Dummies))
		if len(m.Bones) > 0 {
			s.add("root", "%s (%d children)", m.Bones[0].Name, len(m.Children(0)))
		}

	case *formats.Mesh:
		s.add("format", "%v", m.Format)
		s.add("vertices", "%d", m.VertexCount())
		s.add("triangles", "%d", m.TriangleCount())
		uv := 0
		for _, ch := range m.UVs {
			if len(ch) > 0 {
				uv++
			}
		}
		s.add("uv channels", "%d", uv)
		s.add("skinned", "%v", m.IsSkinned())
		if m.IsSkinned() {
			s.add("bone lookup", "%d", len(m.BoneLookup))
		}

	case *formats.AnimationClip:
		s.add("fps", "%d", m.FramesPerSecond)
		s.add("frames", "%d", m.FrameCount)
		s.add("duration", "%v", m.Duration())
		var pos, rot, scl int
		for _, ch := range m.Channels {
			switch ch.(type) {
			case *formats.PositionChannel:
				pos++
			case *formats.RotationChannel:
				rot++
			case *formats.ScaleChannel:
				scl++
			}
		}
		s.add("channels", "%d (position %d, rotation %d, scale %d)", len(m.Channels), pos, rot, scl)

	case *formats.SceneCatalog:
		s.add("meshes", "%d", len(m.Meshes))
		s.add("textures", "%d", len(m.Textures))
		s.add("effects", "%d", len(m.Effects))
		empty, parts := 0, 0
		for i := range m.Models {
			if m.Models[i].IsEmpty() {
				empty++
			}
			parts += len(m.Models[i].Parts)
		}
		s.add("models", "%d (%d empty)", len(m.Models), empty)
		s.add("parts", "%d", parts)

	case *formats.CharacterTable:
		s.add("skeletons", "%d", len(m.Skeletons))
		s.add("animations", "%d", len(m.Animations))
		s.add("effects", "%d", len(m.Effects))
		s.add("characters", "%d (%d enabled)", len(m.Characters), len(m.Enabled()))

	case *formats.Heightmap:
		lo, hi := m.HeightRange()
		s.add("size", "%dx%d", m.Width, m.Height)
		s.add("patch grid", "%d", m.PatchGridCount)
		s.add("patch size", "%g", m.PatchSize)
		s.add("height range", "%g .. %g", lo, hi)

	case *formats.MapInstance:
		s.add("blocks", "%d", len(m.BlockTable))
		s.add("buildings", "%d", len(m.Buildings))
		s.add("objects", "%d", len(m.Objects))
		s.add("collisions", "%d", len(m.Collisions))

	case *formats.TileGrid:
		sets := make(map[uint8]bool)
		for _, t := range m.Tiles {
			sets[t.TileSet] = true
		}
		s.add("size", "%dx%d", m.Width, m.Height)
		s.add("tiles", "%d", len(m.Tiles))
		s.add("tile sets", "%d", len(sets))

	default:
		s.add("type", "%T", model)
	}
	return s
}
