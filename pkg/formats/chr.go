package formats

import "fmt"

// AnimationType names the role of a character animation.
type AnimationType uint16

// Character animation roles.
const (
	AnimStop         AnimationType = 0
	AnimMove         AnimationType = 1
	AnimAttack       AnimationType = 2
	AnimHit          AnimationType = 3
	AnimDie          AnimationType = 4
	AnimRun          AnimationType = 5
	AnimCasting1     AnimationType = 6
	AnimSkillAction1 AnimationType = 7
	AnimCasting2     AnimationType = 8
	AnimSkillAction2 AnimationType = 9
	AnimEtc          AnimationType = 10
)

var animationTypeNames = [...]string{
	"Stop", "Move", "Attack", "Hit", "Die", "Run",
	"Casting1", "SkillAction1", "Casting2", "SkillAction2", "Etc",
}

// String returns a human-readable animation role.
func (t AnimationType) String() string {
	if int(t) < len(animationTypeNames) {
		return animationTypeNames[t]
	}
	return fmt.Sprintf("Unknown(%d)", uint16(t))
}

// CharacterAnimation binds an animation role to an entry of the table's
// animation list.
type CharacterAnimation struct {
	Type      AnimationType
	Animation uint16
}

// CharacterEffect attaches an effect of the table's effect list to a bone.
type CharacterEffect struct {
	Bone   uint16
	Effect uint16
}

// CharacterDefinition is one entry of a character table. Disabled entries
// carry no other data.
type CharacterDefinition struct {
	Enabled    bool
	Skeleton   uint16
	Name       string
	Models     []uint16 // Indices into the companion scene catalog
	Animations []CharacterAnimation
	Effects    []CharacterEffect
}

// Animation returns the animation index bound to t.
func (c *CharacterDefinition) Animation(t AnimationType) (uint16, bool) {
	for _, a := range c.Animations {
		if a.Type == t {
			return a.Animation, true
		}
	}
	return 0, false
}

// CharacterTable is a decoded CHR file.
type CharacterTable struct {
	Skeletons  []string
	Animations []string
	Effects    []string
	Characters []CharacterDefinition
}

// Enabled returns the indices of enabled characters.
func (t *CharacterTable) Enabled() []int {
	var out []int
	for i := range t.Characters {
		if t.Characters[i].Enabled {
			out = append(out, i)
		}
	}
	return out
}

// ParseCHR decodes a character table.
func ParseCHR(data []byte) (*CharacterTable, error) {
	r := newReader("CHR", data)

	table := &CharacterTable{
		Skeletons:  r.stringTable("skeleton table"),
		Animations: r.stringTable("animation table"),
		Effects:    r.stringTable("effect table"),
	}

	count := r.count(uint32(r.u16("character count")), 1, "characters")
	table.Characters = make([]CharacterDefinition, 0, count)
	for i := 0; i < count && r.ok(); i++ {
		table.Characters = append(table.Characters, readCharacter(r))
	}

	if !r.ok() {
		return nil, r.err
	}
	return table, nil
}

func readCharacter(r *reader) CharacterDefinition {
	c := CharacterDefinition{Enabled: r.u8("enabled") != 0}
	if !c.Enabled || !r.ok() {
		return c
	}

	c.Skeleton = r.u16("skeleton")
	c.Name = r.name("name")

	n := r.count(uint32(r.u16("model count")), 2, "models")
	c.Models = make([]uint16, n)
	for i := 0; i < n && r.ok(); i++ {
		c.Models[i] = r.u16("model")
	}

	n = r.count(uint32(r.u16("animation count")), 4, "animations")
	c.Animations = make([]CharacterAnimation, n)
	for i := 0; i < n && r.ok(); i++ {
		c.Animations[i] = CharacterAnimation{
			Type:      AnimationType(r.u16("animation type")),
			Animation: r.u16("animation"),
		}
	}

	n = r.count(uint32(r.u16("effect count")), 4, "effects")
	c.Effects = make([]CharacterEffect, n)
	for i := 0; i < n && r.ok(); i++ {
		c.Effects[i] = CharacterEffect{
			Bone:   r.u16("effect bone"),
			Effect: r.u16("effect"),
		}
	}
	return c
}
