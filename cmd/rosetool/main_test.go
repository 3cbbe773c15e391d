package main

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/midgard-rose/internal/logger"
)

func le(vs ...any) []byte {
	var buf bytes.Buffer
	for _, v := range vs {
		binary.Write(&buf, binary.LittleEndian, v)
	}
	return buf.Bytes()
}

func createTestTIL(w, h uint32) []byte {
	data := le(w, h)
	for i := uint32(0); i < w*h; i++ {
		data = append(data, le(uint8(0), uint8(1), uint8(i%3), i)...)
	}
	return data
}

func createTestHIM(size uint32, base float32) []byte {
	data := le(size, size, uint32(4), float32(250))
	for i := uint32(0); i < size*size; i++ {
		data = append(data, le(base+float32(i%10))...)
	}
	return data
}

// createTestIFO holds a single object block with one placement.
func createTestIFO() []byte {
	data := le(uint32(1), uint32(1), uint32(12))
	data = append(data, le(uint32(1))...)
	data = append(data, 3, 'o', 'b', 'j')
	data = append(data, le(uint16(0), uint16(0), uint32(1), uint32(5), uint32(0), uint32(0))...)
	data = append(data, le(float32(0), float32(0), float32(0), float32(1))...)
	data = append(data, le(float32(1), float32(2), float32(3))...)
	data = append(data, le(float32(1), float32(1), float32(1))...)
	return data
}

func writeFiles(t *testing.T, files map[string][]byte) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, content, 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

// runTool runs rosetool with an empty config file so the user's own
// configuration never leaks into tests.
func runTool(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfg, nil, 0644); err != nil {
		t.Fatal(err)
	}
	defer logger.Nop()

	var out, errOut bytes.Buffer
	code = run(append([]string{"-config", cfg}, args...), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_Usage(t *testing.T) {
	code, _, stderr := runTool(t)
	if code != exitUsage {
		t.Errorf("expected exit %d, got %d", exitUsage, code)
	}
	if !strings.Contains(stderr, "Commands:") {
		t.Errorf("usage not printed: %s", stderr)
	}

	code, _, stderr = runTool(t, "frobnicate")
	if code != exitUsage || !strings.Contains(stderr, "Unknown command") {
		t.Errorf("unknown command: exit %d, stderr %q", code, stderr)
	}

	code, _, stderr = runTool(t, "info")
	if code != exitUsage || !strings.Contains(stderr, "rosetool info <file>") {
		t.Errorf("info without args: exit %d, stderr %q", code, stderr)
	}
}

func TestRun_Info(t *testing.T) {
	root := writeFiles(t, map[string][]byte{"31_30.HIM": createTestHIM(65, 10)})

	code, stdout, stderr := runTool(t, "info", filepath.Join(root, "31_30.HIM"))
	if code != exitOK {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	for _, want := range []string{"kind:", "HIM", "65x65", "10 .. 19"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
}

func TestRun_InfoVirtualPath(t *testing.T) {
	root := writeFiles(t, map[string][]byte{"MAPS/JDT01/31_30.TIL": createTestTIL(2, 3)})

	code, stdout, stderr := runTool(t, "-data", root, "-format", "yaml", "info", `maps\jdt01\31_30.til`)
	if code != exitOK {
		t.Fatalf("exit %d: %s", code, stderr)
	}

	var got map[string]string
	if err := yaml.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, stdout)
	}
	if got["kind"] != "TIL" || got["size"] != "2x3" || got["tile sets"] != "3" {
		t.Errorf("unexpected summary: %v", got)
	}
}

func TestRun_InfoDecodeError(t *testing.T) {
	root := writeFiles(t, map[string][]byte{"bad.him": createTestHIM(64, 0)})

	code, _, stderr := runTool(t, "info", filepath.Join(root, "bad.him"))
	if code != exitError {
		t.Errorf("expected exit %d, got %d", exitError, code)
	}
	if !strings.Contains(stderr, "inconsistent count") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestRun_Dump(t *testing.T) {
	root := writeFiles(t, map[string][]byte{"31_30.ifo": createTestIFO()})

	code, stdout, stderr := runTool(t, "dump", filepath.Join(root, "31_30.ifo"))
	if code != exitOK {
		t.Fatalf("exit %d: %s", code, stderr)
	}

	var got struct {
		Objects []struct {
			MapPlacement struct {
				Name     string `yaml:"name"`
				ObjectID uint32 `yaml:"objectid"`
			} `yaml:"mapplacement"`
		} `yaml:"objects"`
	}
	if err := yaml.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("dump is not YAML: %v\n%s", err, stdout)
	}
	if len(got.Objects) != 1 || got.Objects[0].MapPlacement.Name != "obj" || got.Objects[0].MapPlacement.ObjectID != 5 {
		t.Errorf("unexpected dump:\n%s", stdout)
	}
}

func TestRun_DumpChannelKinds(t *testing.T) {
	clip := []byte("ZMO0002\x00")
	clip = append(clip, le(uint32(30), uint32(1), uint32(2))...)
	clip = append(clip, le(uint32(2), uint32(0))...)    // position
	clip = append(clip, le(uint32(1024), uint32(0))...) // scale
	clip = append(clip, le(float32(1), float32(2), float32(3))...)
	clip = append(clip, le(float32(1), float32(2), float32(3))...)
	root := writeFiles(t, map[string][]byte{"idle.zmo": clip})

	code, stdout, stderr := runTool(t, "dump", filepath.Join(root, "idle.zmo"))
	if code != exitOK {
		t.Fatalf("exit %d: %s", code, stderr)
	}

	var got struct {
		Channels []struct {
			Kind   string `yaml:"kind"`
			Target uint32 `yaml:"target"`
		} `yaml:"channels"`
	}
	if err := yaml.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("dump is not YAML: %v\n%s", err, stdout)
	}
	if len(got.Channels) != 2 || got.Channels[0].Kind != "Position" || got.Channels[1].Kind != "Scale" {
		t.Errorf("unexpected dump:\n%s", stdout)
	}
}

func TestRun_List(t *testing.T) {
	root := writeFiles(t, map[string][]byte{
		"3DDATA/NPC/LIST_NPC.CHR": {0},
		"3DDATA/NPC/PART_NPC.ZSC": {0},
		"readme.txt":              {0},
	})

	code, stdout, _ := runTool(t, "list", root, `3DDATA\NPC\*`)
	if code != exitOK {
		t.Fatalf("exit %d", code)
	}
	want := "3ddata/npc/list_npc.chr\n3ddata/npc/part_npc.zsc\n"
	if stdout != want {
		t.Errorf("list output = %q, want %q", stdout, want)
	}

	code, _, stderr := runTool(t, "list")
	if code != exitError || !strings.Contains(stderr, "no data directory") {
		t.Errorf("list without roots: exit %d, stderr %q", code, stderr)
	}
}

func TestRun_Scan(t *testing.T) {
	root := writeFiles(t, map[string][]byte{
		"a.til":      createTestTIL(1, 1),
		"b.him":      createTestHIM(65, 0),
		"broken.him": createTestHIM(65, 0)[:100],
		"notes.txt":  []byte("x"),
	})

	code, stdout, stderr := runTool(t, "-workers", "2", "-format", "yaml", "scan", root)
	if code != exitError {
		t.Errorf("expected exit %d with a broken file, got %d (%s)", exitError, code, stderr)
	}

	var report scanReport
	if err := yaml.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("report is not YAML: %v\n%s", err, stdout)
	}
	if report.Files != 4 || report.Decoded["HIM"] != 1 || report.Decoded["TIL"] != 1 || report.Failed["HIM"] != 1 {
		t.Errorf("unexpected report: %+v", report)
	}
	if len(report.Failures) != 1 || report.Failures[0].Path != "broken.him" {
		t.Errorf("failures = %+v", report.Failures)
	}
}

func TestRun_ScanText(t *testing.T) {
	root := writeFiles(t, map[string][]byte{"a.til": createTestTIL(1, 1)})

	code, stdout, stderr := runTool(t, "scan", root)
	if code != exitOK {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, "1 decoded, 0 failed, 0 skipped") {
		t.Errorf("scan output:\n%s", stdout)
	}
}

func TestRun_Zone(t *testing.T) {
	root := writeFiles(t, map[string][]byte{
		"31_30.HIM": createTestHIM(65, 5),
		"31_30.IFO": createTestIFO(),
		"31_30.TIL": createTestTIL(16, 16),
		"32_30.HIM": createTestHIM(65, 100),
		"list.zsc":  {0},
	})

	code, stdout, stderr := runTool(t, "-format", "yaml", "zone", root)
	if code != exitOK {
		t.Fatalf("exit %d: %s", code, stderr)
	}

	var tiles []zoneTile
	if err := yaml.Unmarshal([]byte(stdout), &tiles); err != nil {
		t.Fatalf("zone output is not YAML: %v\n%s", err, stdout)
	}
	if len(tiles) != 2 {
		t.Fatalf("expected 2 tiles, got %+v", tiles)
	}

	first := tiles[0]
	if first.Name != "31_30" || first.HeightMin != 5 || first.HeightMax != 14 {
		t.Errorf("tile 31_30 = %+v", first)
	}
	if first.Tiles != "16x16" || first.Objects != 1 || len(first.Missing) != 0 {
		t.Errorf("tile 31_30 = %+v", first)
	}
	if tiles[1].Name != "32_30" || len(tiles[1].Missing) != 2 {
		t.Errorf("tile 32_30 should miss IFO and TIL: %+v", tiles[1])
	}
}

func TestSummary_Text(t *testing.T) {
	s := &summary{}
	s.add("meshes", "%d", 3)
	s.add("uv channels", "%d", 1)
	s.prepend("kind", "ZSC")

	var buf bytes.Buffer
	s.writeText(&buf)
	want := "kind:         ZSC\nmeshes:       3\nuv channels:  1\n"
	if buf.String() != want {
		t.Errorf("writeText = %q, want %q", buf.String(), want)
	}
	if s.get("meshes") != "3" || s.get("missing") != "" {
		t.Error("get returned wrong values")
	}
}

func createTestZMD() []byte {
	data := []byte("ZMD0003")
	data = append(data, le(uint32(2))...)
	data = append(data, le(uint32(0))...)
	data = append(data, "root\x00"...)
	data = append(data, le(float32(0), float32(0), float32(0), float32(1), float32(0), float32(0), float32(0))...)
	data = append(data, le(uint32(0))...)
	data = append(data, "arm\x00"...)
	data = append(data, le(float32(10), float32(0), float32(0), float32(1), float32(0), float32(0), float32(0))...)
	data = append(data, le(uint32(0))...) // no dummies
	return data
}

// createTestZMO moves bone 1 from x=0 to x=4 over two frames at 1 fps.
func createTestZMO() []byte {
	data := []byte("ZMO0002\x00")
	data = append(data, le(uint32(1), uint32(2), uint32(1))...)
	data = append(data, le(uint32(2), uint32(1))...) // position channel on bone 1
	data = append(data, le(float32(0), float32(0), float32(0))...)
	data = append(data, le(float32(4), float32(0), float32(0))...)
	return data
}

func TestRun_Pose(t *testing.T) {
	root := writeFiles(t, map[string][]byte{
		"skel.zmd": createTestZMD(),
		"walk.zmo": createTestZMO(),
	})

	code, stdout, stderr := runTool(t, "-format", "yaml", "pose", "-t", "500ms",
		filepath.Join(root, "skel.zmd"), filepath.Join(root, "walk.zmo"))
	if code != exitOK {
		t.Fatalf("exit %d: %s", code, stderr)
	}

	var joints []poseJoint
	if err := yaml.Unmarshal([]byte(stdout), &joints); err != nil {
		t.Fatalf("pose output is not YAML: %v\n%s", err, stdout)
	}
	if len(joints) != 2 || joints[1].Name != "arm" {
		t.Fatalf("unexpected joints: %+v", joints)
	}
	if joints[1].Position != [3]float32{2, 0, 0} {
		t.Errorf("arm position = %v, want [2 0 0]", joints[1].Position)
	}

	code, _, _ = runTool(t, "pose", filepath.Join(root, "walk.zmo"), filepath.Join(root, "skel.zmd"))
	if code != exitError {
		t.Errorf("swapped arguments: expected exit %d, got %d", exitError, code)
	}
}
