package formats

import "fmt"

// BlockType identifies a block of an IFO map instance file.
type BlockType uint32

// IFO block types.
const (
	BlockMapInformation  BlockType = 0
	BlockObject          BlockType = 1
	BlockNPC             BlockType = 2
	BlockBuilding        BlockType = 3
	BlockSound           BlockType = 4
	BlockEffect          BlockType = 5
	BlockAnimation       BlockType = 6
	BlockWaterPatch      BlockType = 7
	BlockMonsterSpawn    BlockType = 8
	BlockWaterPlane      BlockType = 9
	BlockWarpPoint       BlockType = 10
	BlockCollisionObject BlockType = 11
	BlockEventObject     BlockType = 12
)

var blockTypeNames = [...]string{
	"MapInformation", "Object", "NPC", "Building", "Sound", "Effect", "Animation",
	"WaterPatch", "MonsterSpawn", "WaterPlane", "WarpPoint", "CollisionObject", "EventObject",
}

// String returns a human-readable block type name.
func (t BlockType) String() string {
	if int(t) < len(blockTypeNames) {
		return blockTypeNames[t]
	}
	return fmt.Sprintf("Unknown(%d)", uint32(t))
}

// BlockEntry is one row of the IFO block table.
type BlockEntry struct {
	Type   BlockType
	Offset uint32 // Absolute offset from the start of the file
}

// ifoPlacementMinSize is the size of a placement record with an empty name.
const ifoPlacementMinSize = 1 + 2 + 2 + 4 + 4 + 8 + 16 + 12 + 12

// MapPlacement is the layout shared by every placed map object.
type MapPlacement struct {
	Name       string
	WarpID     uint16
	EventID    uint16
	ObjectType uint32
	ObjectID   uint32 // Model index in the zone's scene catalog
	Transform
}

// BuildingPlacement places a model of the zone's building catalog.
type BuildingPlacement struct{ MapPlacement }

// ObjectPlacement places a model of the zone's decoration catalog.
type ObjectPlacement struct{ MapPlacement }

// CollisionPlacement places an invisible collision object.
type CollisionPlacement struct{ MapPlacement }

// MapInstance is a decoded IFO file. Block types other than buildings,
// objects and collision objects are listed in BlockTable but not decoded.
type MapInstance struct {
	BlockTable []BlockEntry
	Buildings  []BuildingPlacement
	Objects    []ObjectPlacement
	Collisions []CollisionPlacement
}

// ParseIFO decodes a map instance file.
func ParseIFO(data []byte) (*MapInstance, error) {
	r := newReader("IFO", data)

	ifo := &MapInstance{}

	blockCount := r.count(r.u32("block count"), 8, "block table")
	ifo.BlockTable = make([]BlockEntry, 0, blockCount)
	for i := 0; i < blockCount && r.ok(); i++ {
		entry := BlockEntry{
			Type:   BlockType(r.u32("block type")),
			Offset: r.u32("block offset"),
		}
		if !r.ok() {
			break
		}
		ifo.BlockTable = append(ifo.BlockTable, entry)

		switch entry.Type {
		case BlockBuilding, BlockObject, BlockCollisionObject:
		default:
			continue
		}

		next := r.tell()
		r.seek(int(entry.Offset), "block offset")
		placements := readPlacementBlock(r)
		r.seek(next, "block table")

		for _, p := range placements {
			switch entry.Type {
			case BlockBuilding:
				ifo.Buildings = append(ifo.Buildings, BuildingPlacement{p})
			case BlockObject:
				ifo.Objects = append(ifo.Objects, ObjectPlacement{p})
			case BlockCollisionObject:
				ifo.Collisions = append(ifo.Collisions, CollisionPlacement{p})
			}
		}
	}

	if !r.ok() {
		return nil, r.err
	}
	return ifo, nil
}

func readPlacementBlock(r *reader) []MapPlacement {
	n := r.count(r.u32("placement count"), ifoPlacementMinSize, "placements")
	out := make([]MapPlacement, 0, n)
	for i := 0; i < n && r.ok(); i++ {
		out = append(out, readPlacement(r))
	}
	return out
}

// readPlacement reads one placement. Unlike the model formats, IFO stores
// rotations in X, Y, Z, W order.
func readPlacement(r *reader) MapPlacement {
	p := MapPlacement{
		Name:       r.byteString("name"),
		WarpID:     r.u16("warp id"),
		EventID:    r.u16("event id"),
		ObjectType: r.u32("object type"),
		ObjectID:   r.u32("object id"),
	}
	r.skip(2*4, "map position")
	p.Rotation = r.rotationXYZW("rotation")
	p.Position = r.position("position")
	p.Scale = r.scale("scale")
	return p
}
