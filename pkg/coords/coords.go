// Package coords converts positions, rotations and scales from the ROSE
// client's coordinate convention to the consumer's.
//
// Every decoder applies these exactly once, at the point a value is read.
package coords

import "github.com/Faultbox/midgard-rose/pkg/math"

// Position flips the Y axis.
func Position(v math.Vec3) math.Vec3 {
	return math.Vec3{X: v.X, Y: -v.Y, Z: v.Z}
}

// Rotation negates the X and Z components, keeping Y and W.
func Rotation(q math.Quat) math.Quat {
	return math.Quat{X: -q.X, Y: q.Y, Z: -q.Z, W: q.W}
}

// Scale is the identity; scales are axis magnitudes and carry no handedness.
func Scale(v math.Vec3) math.Vec3 {
	return v
}
