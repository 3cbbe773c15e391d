package formats

import (
	"testing"
	"time"

	"github.com/Faultbox/midgard-rose/pkg/math"
)

type testChannel struct {
	kind   ChannelKind
	target uint32
}

// createTestZMO writes frame-major samples. Sample values encode the frame
// number f so ordering can be checked: positions (f, f, f), rotations with
// W=1 and X=f, scales (f+1, f+1, f+1).
func createTestZMO(fps, frames uint32, channels []testChannel) []byte {
	b := new(builder)
	b.cstr("ZMO0002")
	b.u32(fps).u32(frames).u32(uint32(len(channels)))
	for _, ch := range channels {
		b.u32(uint32(ch.kind)).u32(ch.target)
	}
	for f := uint32(0); f < frames; f++ {
		v := float32(f)
		for _, ch := range channels {
			switch ch.kind {
			case ChannelPosition:
				b.f32(v, v, v)
			case ChannelRotation:
				b.f32(1, v, 0, 0)
			default:
				b.f32(v+1, v+1, v+1)
			}
		}
	}
	return b.Bytes()
}

func TestParseZMO_TwoChannelsThreeFrames(t *testing.T) {
	data := createTestZMO(30, 3, []testChannel{
		{ChannelPosition, 0},
		{ChannelRotation, 4},
	})

	clip, err := ParseZMO(data)
	if err != nil {
		t.Fatalf("ParseZMO failed: %v", err)
	}

	if clip.Header != "ZMO0002" {
		t.Errorf("header = %q", clip.Header)
	}
	if clip.FramesPerSecond != 30 || clip.FrameCount != 3 {
		t.Errorf("fps=%d frames=%d", clip.FramesPerSecond, clip.FrameCount)
	}
	if len(clip.Channels) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(clip.Channels))
	}

	pos, ok := clip.Channels[0].(*PositionChannel)
	if !ok {
		t.Fatalf("channel 0 is %T, want *PositionChannel", clip.Channels[0])
	}
	rot, ok := clip.Channels[1].(*RotationChannel)
	if !ok {
		t.Fatalf("channel 1 is %T, want *RotationChannel", clip.Channels[1])
	}
	if rot.Target != 4 || rot.TargetIndex() != 4 {
		t.Errorf("rotation target = %d, want 4", rot.Target)
	}

	if pos.Len() != 3 || rot.Len() != 3 {
		t.Fatalf("sample counts = %d, %d, want 3", pos.Len(), rot.Len())
	}
	for f := 0; f < 3; f++ {
		v := float32(f)
		if want := (math.Vec3{X: v, Y: -v, Z: v}); pos.Samples[f] != want {
			t.Errorf("frame %d position = %+v, want %+v", f, pos.Samples[f], want)
		}
		// Stored W=1, X=f -> X negated
		if want := (math.Quat{X: -v, W: 1}); rot.Samples[f] != want {
			t.Errorf("frame %d rotation = %+v, want %+v", f, rot.Samples[f], want)
		}
	}
}

func TestParseZMO_ScaleChannel(t *testing.T) {
	clip, err := ParseZMO(createTestZMO(10, 2, []testChannel{{ChannelScale, 1}}))
	if err != nil {
		t.Fatalf("ParseZMO failed: %v", err)
	}
	sc, ok := clip.Channels[0].(*ScaleChannel)
	if !ok {
		t.Fatalf("channel 0 is %T, want *ScaleChannel", clip.Channels[0])
	}
	if want := (math.Vec3{X: 2, Y: 2, Z: 2}); sc.Samples[1] != want {
		t.Errorf("scale = %+v, want %+v", sc.Samples[1], want)
	}
	if sc.Kind() != ChannelScale {
		t.Errorf("Kind() = %v", sc.Kind())
	}
}

func TestParseZMO_UnknownChannelType(t *testing.T) {
	for _, kind := range []ChannelKind{ChannelAlpha, ChannelUV1, ChannelKind(3), ChannelKind(0)} {
		_, err := ParseZMO(createTestZMO(30, 1, []testChannel{{kind, 0}}))
		expectKind(t, err, ErrUnknownTag)
	}
}

func TestParseZMO_ZeroFPS(t *testing.T) {
	_, err := ParseZMO(createTestZMO(0, 1, []testChannel{{ChannelPosition, 0}}))
	expectKind(t, err, ErrInconsistentCount)
}

func TestParseZMO_MissingSamples(t *testing.T) {
	data := createTestZMO(30, 3, []testChannel{{ChannelPosition, 0}})
	_, err := ParseZMO(data[:len(data)-1])
	expectKind(t, err, ErrOutOfBounds)
}

func TestParseZMO_NoChannels(t *testing.T) {
	clip, err := ParseZMO(createTestZMO(30, 0xFFFFFFF, nil))
	if err != nil {
		t.Fatalf("ParseZMO failed: %v", err)
	}
	if len(clip.Channels) != 0 {
		t.Errorf("expected no channels, got %d", len(clip.Channels))
	}
}

func TestAnimationClip_Helpers(t *testing.T) {
	clip, err := ParseZMO(createTestZMO(30, 60, []testChannel{
		{ChannelPosition, 2},
		{ChannelRotation, 2},
		{ChannelRotation, 3},
	}))
	if err != nil {
		t.Fatalf("ParseZMO failed: %v", err)
	}
	if clip.Duration() != 2*time.Second {
		t.Errorf("Duration() = %v, want 2s", clip.Duration())
	}
	if got := clip.ChannelsFor(2); len(got) != 2 {
		t.Errorf("ChannelsFor(2) returned %d channels, want 2", len(got))
	}
	if got := clip.ChannelsFor(9); len(got) != 0 {
		t.Errorf("ChannelsFor(9) returned %d channels, want 0", len(got))
	}
}

func TestChannel_At(t *testing.T) {
	pos := &PositionChannel{Samples: []math.Vec3{{X: 0}, {X: 10}, {X: 20}}}
	tests := []struct {
		frame float32
		want  float32
	}{
		{-1, 0},
		{0, 0},
		{0.5, 5},
		{1.25, 12.5},
		{2, 20},
		{7, 20},
	}
	for _, tc := range tests {
		if got := pos.At(tc.frame).X; got != tc.want {
			t.Errorf("At(%v).X = %v, want %v", tc.frame, got, tc.want)
		}
	}

	rot := &RotationChannel{Samples: []math.Quat{math.QuatIdentity(), math.QuatIdentity()}}
	if got := rot.At(0.5); !got.SameRotation(math.QuatIdentity(), 1e-5) {
		t.Errorf("rotation At(0.5) = %+v, want identity", got)
	}

	empty := &ScaleChannel{}
	if empty.At(1) != math.Vec3One {
		t.Error("empty scale channel should return unit scale")
	}
}

func TestChannelKind_String(t *testing.T) {
	if ChannelRotation.String() != "Rotation" {
		t.Errorf("ChannelRotation.String() = %q", ChannelRotation.String())
	}
	if ChannelKind(3).String() != "Unknown(3)" {
		t.Errorf("ChannelKind(3).String() = %q", ChannelKind(3).String())
	}
}
