package formats

// Tile is one cell of a TIL grid.
type Tile struct {
	Brush     uint8
	TileIndex uint8
	TileSet   uint8
	Tile      uint32 // Composite tile id
}

// tileRecordSize is the packed on-disk size of a Tile.
const tileRecordSize = 7

// TileGrid is a decoded TIL file.
type TileGrid struct {
	Width  uint32
	Height uint32
	Tiles  []Tile // Row-major
}

// At returns the tile at (x, y), or nil when out of range.
func (g *TileGrid) At(x, y int) *Tile {
	if x < 0 || y < 0 || x >= int(g.Width) || y >= int(g.Height) {
		return nil
	}
	return &g.Tiles[y*int(g.Width)+x]
}

// ParseTIL decodes a tile grid.
func ParseTIL(data []byte) (*TileGrid, error) {
	r := newReader("TIL", data)

	grid := &TileGrid{
		Width:  r.u32("width"),
		Height: r.u32("height"),
	}
	if !r.ok() {
		return nil, r.err
	}

	cells := uint64(grid.Width) * uint64(grid.Height)
	if cells > uint64(r.c.Remaining()) {
		r.failf(ErrOutOfBounds, "tiles", "%dx%d tiles with %d bytes left", grid.Width, grid.Height, r.c.Remaining())
		return nil, r.err
	}
	n := r.count(uint32(cells), tileRecordSize, "tiles")
	grid.Tiles = make([]Tile, n)
	for i := 0; i < n && r.ok(); i++ {
		grid.Tiles[i] = Tile{
			Brush:     r.u8("brush"),
			TileIndex: r.u8("tile index"),
			TileSet:   r.u8("tile set"),
			Tile:      r.u32("tile"),
		}
	}

	if !r.ok() {
		return nil, r.err
	}
	return grid, nil
}
