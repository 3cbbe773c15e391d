package formats

// HeightmapSize is the only supported HIM resolution along each axis.
const HeightmapSize = 65

// Heightmap is a decoded HIM file: a square grid of elevation samples.
type Heightmap struct {
	Width          uint32
	Height         uint32
	PatchGridCount uint32
	PatchSize      float32
	Heights        []float32 // Row-major, Width*Height samples
}

// At returns the sample at (x, y), or 0 when out of range.
func (h *Heightmap) At(x, y int) float32 {
	if x < 0 || y < 0 || x >= int(h.Width) || y >= int(h.Height) {
		return 0
	}
	return h.Heights[y*int(h.Width)+x]
}

// HeightRange returns the minimum and maximum elevation.
func (h *Heightmap) HeightRange() (min, max float32) {
	if len(h.Heights) == 0 {
		return 0, 0
	}
	min, max = h.Heights[0], h.Heights[0]
	for _, v := range h.Heights {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// ParseHIM decodes a heightmap. Dimensions other than 65x65 fail with
// ErrInconsistentCount before any sample is read.
func ParseHIM(data []byte) (*Heightmap, error) {
	r := newReader("HIM", data)

	him := &Heightmap{
		Width:          r.u32("width"),
		Height:         r.u32("height"),
		PatchGridCount: r.u32("patch grid count"),
		PatchSize:      r.f32("patch size"),
	}
	if !r.ok() {
		return nil, r.err
	}
	if him.Width != HeightmapSize || him.Height != HeightmapSize {
		r.failf(ErrInconsistentCount, "dimensions", "%dx%d, want %dx%d",
			him.Width, him.Height, HeightmapSize, HeightmapSize)
		return nil, r.err
	}

	n := r.count(him.Width*him.Height, 4, "heights")
	him.Heights = make([]float32, n)
	for i := 0; i < n && r.ok(); i++ {
		him.Heights[i] = r.f32("height")
	}

	if !r.ok() {
		return nil, r.err
	}
	return him, nil
}
