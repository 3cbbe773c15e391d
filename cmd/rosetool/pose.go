package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/Faultbox/midgard-rose/internal/config"
	"github.com/Faultbox/midgard-rose/pkg/formats"
	"github.com/Faultbox/midgard-rose/pkg/pose"
)

// poseJoint is one line of pose output.
type poseJoint struct {
	Index    int        `yaml:"index"`
	Name     string     `yaml:"name"`
	Dummy    bool       `yaml:"dummy,omitempty"`
	Position [3]float32 `yaml:"position,flow"`
}

func (a *app) cmdPose(args []string) error {
	fs := flag.NewFlagSet("pose", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	at := fs.Duration("t", 0, "Playback time")
	loop := fs.Bool("loop", false, "Wrap the time around the clip duration")
	if err := fs.Parse(args); err != nil || fs.NArg() != 2 {
		return errUsage
	}

	_, m, err := a.decodeFile(fs.Arg(0))
	if err != nil {
		return err
	}
	skel, ok := m.(*formats.Skeleton)
	if !ok {
		return fmt.Errorf("%s is not a skeleton", fs.Arg(0))
	}

	_, m, err = a.decodeFile(fs.Arg(1))
	if err != nil {
		return err
	}
	clip, ok := m.(*formats.AnimationClip)
	if !ok {
		return fmt.Errorf("%s is not an animation", fs.Arg(1))
	}

	p, err := pose.Sample(skel, clip, *at, *loop)
	if err != nil {
		return err
	}

	joints := make([]poseJoint, len(p.World))
	for i, w := range p.World {
		j := poseJoint{Index: i, Position: [3]float32{w.Translation.X, w.Translation.Y, w.Translation.Z}}
		if i < len(skel.Bones) {
			j.Name = skel.Bones[i].Name
		} else {
			j.Name = skel.Dummies[i-len(skel.Bones)].Name
			j.Dummy = true
		}
		joints[i] = j
	}

	if a.cfg.Output.Format == config.FormatYAML {
		return a.write(joints)
	}
	fmt.Fprintf(a.stdout, "frame %.2f of %d (%v)\n", p.Frame, clip.FrameCount, *at)
	for _, j := range joints {
		kind := "bone"
		if j.Dummy {
			kind = "dummy"
		}
		fmt.Fprintf(a.stdout, "  %3d %-5s %-24s %10.2f %10.2f %10.2f\n",
			j.Index, kind, j.Name, j.Position[0], j.Position[1], j.Position[2])
	}
	return nil
}
