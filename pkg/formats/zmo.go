package formats

import (
	"fmt"
	stdmath "math"
	"time"

	"github.com/Faultbox/midgard-rose/pkg/math"
)

// ChannelKind is the ZMO channel type tag. Tags are bit flags on disk but
// only one is ever set per channel.
type ChannelKind uint32

// Channel kinds. Only Position, Rotation and Scale channels are decodable.
const (
	ChannelPosition ChannelKind = 1 << 1
	ChannelRotation ChannelKind = 1 << 2
	ChannelNormal   ChannelKind = 1 << 3
	ChannelAlpha    ChannelKind = 1 << 4
	ChannelUV1      ChannelKind = 1 << 5
	ChannelUV2      ChannelKind = 1 << 6
	ChannelUV3      ChannelKind = 1 << 7
	ChannelUV4      ChannelKind = 1 << 8
	ChannelTexAnim  ChannelKind = 1 << 9
	ChannelScale    ChannelKind = 1 << 10
)

// String returns a human-readable channel kind name.
func (k ChannelKind) String() string {
	switch k {
	case ChannelPosition:
		return "Position"
	case ChannelRotation:
		return "Rotation"
	case ChannelNormal:
		return "Normal"
	case ChannelAlpha:
		return "Alpha"
	case ChannelUV1, ChannelUV2, ChannelUV3, ChannelUV4:
		return "UV"
	case ChannelTexAnim:
		return "TexAnim"
	case ChannelScale:
		return "Scale"
	default:
		return fmt.Sprintf("Unknown(%d)", uint32(k))
	}
}

// Channel is one animated property of one target (a bone for skeletal
// clips). It is implemented only by PositionChannel, RotationChannel and
// ScaleChannel; use a type switch to access samples.
type Channel interface {
	Kind() ChannelKind
	TargetIndex() uint32
	Len() int
	channel()
}

// PositionChannel animates a translation.
type PositionChannel struct {
	Target  uint32
	Samples []math.Vec3
}

// RotationChannel animates a rotation.
type RotationChannel struct {
	Target  uint32
	Samples []math.Quat
}

// ScaleChannel animates a scale.
type ScaleChannel struct {
	Target  uint32
	Samples []math.Vec3
}

func (*PositionChannel) Kind() ChannelKind { return ChannelPosition }
func (*RotationChannel) Kind() ChannelKind { return ChannelRotation }
func (*ScaleChannel) Kind() ChannelKind    { return ChannelScale }

func (c *PositionChannel) TargetIndex() uint32 { return c.Target }
func (c *RotationChannel) TargetIndex() uint32 { return c.Target }
func (c *ScaleChannel) TargetIndex() uint32    { return c.Target }

func (c *PositionChannel) Len() int { return len(c.Samples) }
func (c *RotationChannel) Len() int { return len(c.Samples) }
func (c *ScaleChannel) Len() int    { return len(c.Samples) }

func (*PositionChannel) channel() {}
func (*RotationChannel) channel() {}
func (*ScaleChannel) channel()    {}

// channelDoc is the serialized form of a channel, tagged with its kind.
type channelDoc[T any] struct {
	Kind    string `yaml:"kind"`
	Target  uint32 `yaml:"target"`
	Samples []T    `yaml:"samples"`
}

func (c *PositionChannel) MarshalYAML() (any, error) {
	return channelDoc[math.Vec3]{c.Kind().String(), c.Target, c.Samples}, nil
}

func (c *RotationChannel) MarshalYAML() (any, error) {
	return channelDoc[math.Quat]{c.Kind().String(), c.Target, c.Samples}, nil
}

func (c *ScaleChannel) MarshalYAML() (any, error) {
	return channelDoc[math.Vec3]{c.Kind().String(), c.Target, c.Samples}, nil
}

// At interpolates the translation at a fractional frame.
func (c *PositionChannel) At(frame float32) math.Vec3 {
	i, t, ok := frameSpan(len(c.Samples), frame)
	if !ok {
		return math.Vec3{}
	}
	return c.Samples[i].Lerp(c.Samples[min(i+1, len(c.Samples)-1)], t)
}

// At interpolates the rotation at a fractional frame.
func (c *RotationChannel) At(frame float32) math.Quat {
	i, t, ok := frameSpan(len(c.Samples), frame)
	if !ok {
		return math.QuatIdentity()
	}
	return c.Samples[i].Slerp(c.Samples[min(i+1, len(c.Samples)-1)], t)
}

// At interpolates the scale at a fractional frame.
func (c *ScaleChannel) At(frame float32) math.Vec3 {
	i, t, ok := frameSpan(len(c.Samples), frame)
	if !ok {
		return math.Vec3One
	}
	return c.Samples[i].Lerp(c.Samples[min(i+1, len(c.Samples)-1)], t)
}

// frameSpan clamps frame into [0, n-1] and splits it into a sample index
// and the blend factor towards the next sample.
func frameSpan(n int, frame float32) (int, float32, bool) {
	if n == 0 {
		return 0, 0, false
	}
	if frame <= 0 {
		return 0, 0, true
	}
	if frame >= float32(n-1) {
		return n - 1, 0, true
	}
	whole := float32(stdmath.Floor(float64(frame)))
	return int(whole), frame - whole, true
}

// AnimationClip is a decoded ZMO file. Every channel holds FrameCount samples.
type AnimationClip struct {
	Header          string
	FramesPerSecond uint32
	FrameCount      uint32
	Channels        []Channel
}

// Duration returns the playback length of the clip.
func (a *AnimationClip) Duration() time.Duration {
	if a.FramesPerSecond == 0 {
		return 0
	}
	return time.Duration(a.FrameCount) * time.Second / time.Duration(a.FramesPerSecond)
}

// ChannelsFor returns the channels animating target, in declaration order.
func (a *AnimationClip) ChannelsFor(target uint32) []Channel {
	var out []Channel
	for _, ch := range a.Channels {
		if ch.TargetIndex() == target {
			out = append(out, ch)
		}
	}
	return out
}

// sampleSize returns the on-disk size of one sample of a channel kind.
func sampleSize(k ChannelKind) int {
	if k == ChannelRotation {
		return 16
	}
	return 12
}

// ParseZMO decodes an animation clip.
//
// Samples are stored frame-major: for each frame, one sample per channel in
// declaration order. The decoded clip groups them per channel.
func ParseZMO(data []byte) (*AnimationClip, error) {
	r := newReader("ZMO", data)

	clip := &AnimationClip{
		Header:          r.cstring("header"),
		FramesPerSecond: r.u32("fps"),
		FrameCount:      r.u32("frame count"),
	}
	if r.ok() && clip.FramesPerSecond == 0 {
		r.failf(ErrInconsistentCount, "fps", "frames per second is zero")
	}

	channelCount := r.count(r.u32("channel count"), 8, "channels")
	clip.Channels = make([]Channel, 0, channelCount)
	frameSize := 0
	for i := 0; i < channelCount && r.ok(); i++ {
		kind := ChannelKind(r.u32("channel type"))
		target := r.u32("channel target")
		if !r.ok() {
			break
		}

		switch kind {
		case ChannelPosition:
			clip.Channels = append(clip.Channels, &PositionChannel{Target: target})
		case ChannelRotation:
			clip.Channels = append(clip.Channels, &RotationChannel{Target: target})
		case ChannelScale:
			clip.Channels = append(clip.Channels, &ScaleChannel{Target: target})
		default:
			r.failf(ErrUnknownTag, "channel type", "channel %d has type %s", i, kind)
			continue
		}
		frameSize += sampleSize(kind)
	}

	frames := 0
	if len(clip.Channels) > 0 {
		frames = r.count(clip.FrameCount, frameSize, "samples")
	}
	for _, ch := range clip.Channels {
		switch c := ch.(type) {
		case *PositionChannel:
			c.Samples = make([]math.Vec3, 0, frames)
		case *RotationChannel:
			c.Samples = make([]math.Quat, 0, frames)
		case *ScaleChannel:
			c.Samples = make([]math.Vec3, 0, frames)
		}
	}

	for f := 0; f < frames && r.ok(); f++ {
		for _, ch := range clip.Channels {
			switch c := ch.(type) {
			case *PositionChannel:
				c.Samples = append(c.Samples, r.position("position sample"))
			case *RotationChannel:
				c.Samples = append(c.Samples, r.rotation("rotation sample"))
			case *ScaleChannel:
				c.Samples = append(c.Samples, r.scale("scale sample"))
			}
		}
	}

	if !r.ok() {
		return nil, r.err
	}
	return clip, nil
}
