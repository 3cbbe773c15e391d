package math

// Color is a linear RGBA colour with float components.
type Color struct {
	R, G, B, A float32
}

// White is opaque white, the colour used when a mesh has no colour stream.
var White = Color{1, 1, 1, 1}
