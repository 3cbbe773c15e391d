package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"
	"sort"
	"strings"

	"github.com/Faultbox/midgard-rose/internal/assets"
	"github.com/Faultbox/midgard-rose/internal/config"
	"github.com/Faultbox/midgard-rose/pkg/formats"
)

// zoneTile is what zone reports for one <x>_<y> tile of a map.
type zoneTile struct {
	Name       string   `yaml:"name"`
	HeightMin  float32  `yaml:"height_min"`
	HeightMax  float32  `yaml:"height_max"`
	Tiles      string   `yaml:"tiles,omitempty"`
	Buildings  int      `yaml:"buildings"`
	Objects    int      `yaml:"objects"`
	Collisions int      `yaml:"collisions"`
	Missing    []string `yaml:"missing,omitempty"`
	Errors     []string `yaml:"errors,omitempty"`

	has map[formats.Kind]bool
}

var zoneKinds = []formats.Kind{formats.KindHIM, formats.KindIFO, formats.KindTIL}

func isZoneKind(k formats.Kind) bool {
	for _, z := range zoneKinds {
		if k == z {
			return true
		}
	}
	return false
}

func (a *app) cmdZone(args []string) error {
	if len(args) != 1 {
		return errUsage
	}

	m, err := a.manager(args[0])
	if err != nil {
		return err
	}
	defer m.Close()

	var files []string
	for _, f := range m.List() {
		if isZoneKind(formats.KindFromPath(f)) {
			files = append(files, f)
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("%s: no HIM, IFO or TIL files", args[0])
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	batch := m.DecodeAll(ctx, files, assets.BatchOptions{
		Workers:  a.cfg.Decode.Workers,
		FailFast: a.cfg.Decode.FailFast,
	})
	tiles := collectZone(batch)

	if a.cfg.Output.Format == config.FormatYAML {
		if err := a.write(tiles); err != nil {
			return err
		}
	} else {
		writeZoneText(a, tiles)
	}

	if err := batch.Err; err != nil {
		return fmt.Errorf("%d zone files failed to decode", len(batch.Errors()))
	}
	return nil
}

// collectZone groups batch results by tile name.
func collectZone(batch *assets.BatchReport) []*zoneTile {
	byName := make(map[string]*zoneTile)
	for _, r := range batch.Results {
		if r.Skipped {
			continue
		}
		base := path.Base(r.Path)
		name := strings.TrimSuffix(base, path.Ext(base))
		t, ok := byName[name]
		if !ok {
			t = &zoneTile{Name: name, has: make(map[formats.Kind]bool)}
			byName[name] = t
		}
		t.has[r.Kind] = true

		if r.Err != nil {
			t.Errors = append(t.Errors, r.Err.Error())
			continue
		}
		switch model := r.Model.(type) {
		case *formats.Heightmap:
			t.HeightMin, t.HeightMax = model.HeightRange()
		case *formats.TileGrid:
			t.Tiles = fmt.Sprintf("%dx%d", model.Width, model.Height)
		case *formats.MapInstance:
			t.Buildings = len(model.Buildings)
			t.Objects = len(model.Objects)
			t.Collisions = len(model.Collisions)
		}
	}

	tiles := make([]*zoneTile, 0, len(byName))
	for _, t := range byName {
		for _, k := range zoneKinds {
			if !t.has[k] {
				t.Missing = append(t.Missing, k.String())
			}
		}
		tiles = append(tiles, t)
	}
	sort.Slice(tiles, func(i, j int) bool {
		return tiles[i].Name < tiles[j].Name
	})
	return tiles
}

func writeZoneText(a *app, tiles []*zoneTile) {
	fmt.Fprintf(a.stdout, "%-8s %10s %10s %6s %5s %5s %5s\n",
		"tile", "min", "max", "grid", "bld", "obj", "col")
	for _, t := range tiles {
		fmt.Fprintf(a.stdout, "%-8s %10.1f %10.1f %6s %5d %5d %5d\n",
			t.Name, t.HeightMin, t.HeightMax, t.Tiles, t.Buildings, t.Objects, t.Collisions)
		if len(t.Missing) > 0 {
			fmt.Fprintf(a.stdout, "         missing: %s\n", strings.Join(t.Missing, ", "))
		}
		for _, e := range t.Errors {
			fmt.Fprintf(a.stdout, "         error: %s\n", e)
		}
	}
}
