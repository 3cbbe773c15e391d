// Package pose evaluates animation clips on skeletons.
//
// Channel targets index the skeleton's bones followed by its dummies, so
// target len(Bones) is the first dummy.
package pose

import (
	"errors"
	"fmt"
	stdmath "math"
	"time"

	"github.com/Faultbox/midgard-rose/pkg/formats"
	"github.com/Faultbox/midgard-rose/pkg/math"
)

// ErrTargetOutOfRange is returned when a clip animates a bone the skeleton
// does not have.
var ErrTargetOutOfRange = errors.New("channel target out of range")

// Transform is a decomposed bone transform.
type Transform struct {
	Translation math.Vec3
	Rotation    math.Quat
	Scale       math.Vec3
}

// Apply transforms a point from the child space into the parent space.
func (t Transform) Apply(p math.Vec3) math.Vec3 {
	return t.Translation.Add(t.Rotation.Rotate(p.Mul(t.Scale)))
}

// Then composes child under t.
func (t Transform) Then(child Transform) Transform {
	return Transform{
		Translation: t.Apply(child.Translation),
		Rotation:    t.Rotation.Mul(child.Rotation).Normalize(),
		Scale:       t.Scale.Mul(child.Scale),
	}
}

// Pose holds local and world transforms for every bone and dummy.
type Pose struct {
	Frame float32
	Local []Transform // Bones then dummies
	World []Transform
}

// Bone returns the world transform of joint i. i must be below len(World);
// dummies follow the bones.
func (p *Pose) Bone(i int) Transform {
	return p.World[i]
}

// Validate checks that every channel of clip targets a joint of skel.
func Validate(skel *formats.Skeleton, clip *formats.AnimationClip) error {
	joints := len(skel.Bones) + len(skel.Dummies)
	for i, ch := range clip.Channels {
		if int(ch.TargetIndex()) >= joints {
			return fmt.Errorf("%w: channel %d targets %d of %d joints", ErrTargetOutOfRange, i, ch.TargetIndex(), joints)
		}
	}
	return nil
}

// Bind returns the rest pose of skel.
func Bind(skel *formats.Skeleton) *Pose {
	p := &Pose{
		Local: make([]Transform, len(skel.Bones)+len(skel.Dummies)),
	}
	for i, b := range skel.Bones {
		p.Local[i] = Transform{Translation: b.Translation, Rotation: b.Rotation, Scale: math.Vec3One}
	}
	for i, d := range skel.Dummies {
		p.Local[len(skel.Bones)+i] = Transform{Translation: d.Translation, Rotation: d.Rotation, Scale: math.Vec3One}
	}
	p.resolve(skel)
	return p
}

// SampleFrame evaluates clip at a fractional frame. Frames outside the clip
// are clamped. Channels without samples leave the bind pose untouched.
func SampleFrame(skel *formats.Skeleton, clip *formats.AnimationClip, frame float32) (*Pose, error) {
	if err := Validate(skel, clip); err != nil {
		return nil, err
	}

	p := Bind(skel)
	p.Frame = frame
	for _, ch := range clip.Channels {
		if ch.Len() == 0 {
			continue
		}
		local := &p.Local[ch.TargetIndex()]
		switch c := ch.(type) {
		case *formats.PositionChannel:
			local.Translation = c.At(frame)
		case *formats.RotationChannel:
			local.Rotation = c.At(frame)
		case *formats.ScaleChannel:
			local.Scale = c.At(frame)
		}
	}
	p.resolve(skel)
	return p, nil
}

// Sample evaluates clip at time t. With loop set, t wraps around the clip
// duration; otherwise it is clamped to the last frame.
func Sample(skel *formats.Skeleton, clip *formats.AnimationClip, t time.Duration, loop bool) (*Pose, error) {
	return SampleFrame(skel, clip, FrameAt(clip, t, loop))
}

// FrameAt converts a playback time to a fractional frame.
func FrameAt(clip *formats.AnimationClip, t time.Duration, loop bool) float32 {
	if clip.FrameCount == 0 || clip.FramesPerSecond == 0 {
		return 0
	}
	frame := t.Seconds() * float64(clip.FramesPerSecond)
	if loop {
		frame = stdmath.Mod(frame, float64(clip.FrameCount))
		if frame < 0 {
			frame += float64(clip.FrameCount)
		}
	}
	return float32(frame)
}

// resolve rebuilds World from Local. Bones reference earlier bones only, so
// one forward pass is enough; a bone that breaks this is treated as a root.
func (p *Pose) resolve(skel *formats.Skeleton) {
	p.World = make([]Transform, len(p.Local))
	for i, b := range skel.Bones {
		if i == 0 || int(b.Parent) >= i {
			p.World[i] = p.Local[i]
			continue
		}
		p.World[i] = p.World[b.Parent].Then(p.Local[i])
	}
	for i, d := range skel.Dummies {
		j := len(skel.Bones) + i
		if int(d.Parent) >= len(skel.Bones) {
			p.World[j] = p.Local[j]
			continue
		}
		p.World[j] = p.World[d.Parent].Then(p.Local[j])
	}
}

// IsAnimated reports whether any channel of clip changes over time.
// Clips whose channels hold a single repeated sample are static poses.
func IsAnimated(clip *formats.AnimationClip) bool {
	if clip.FrameCount <= 1 {
		return false
	}
	for _, ch := range clip.Channels {
		if ch.Len() < 2 {
			continue
		}
		switch c := ch.(type) {
		case *formats.PositionChannel:
			for _, s := range c.Samples[1:] {
				if s != c.Samples[0] {
					return true
				}
			}
		case *formats.RotationChannel:
			for _, s := range c.Samples[1:] {
				if s != c.Samples[0] {
					return true
				}
			}
		case *formats.ScaleChannel:
			for _, s := range c.Samples[1:] {
				if s != c.Samples[0] {
					return true
				}
			}
		}
	}
	return false
}
