package gen

import (
	"github.com/brickingsoft/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

func TestParseManifest_YAML(t *testing.T) {
	src := `
contracts:
  - name: Animal
    defaults: animalDefaults
    no_dispatch: [Kingdom]
enums:
  - name: Pet
    contracts: [Animal]
    variants: [Dog, {name: Parrot, type: Bird}]
    derive: {no_ord: true}
  - name: HTTPPet
    contracts: [Animal]
    variants: [Dog]
    arena: true
    clone: never
`
	m, err := ParseManifest([]byte(src), "tagdispatch.yaml")
	require.NoError(t, err)
	require.Len(t, m.Enums, 2)

	pet := m.Enums[0]
	assert.Equal(t, []Variant{{Name: "Dog", Type: "Dog"}, {Name: "Parrot", Type: "Bird"}}, pet.Variants)
	assert.Equal(t, CloneAuto, pet.Clone)
	assert.Equal(t, "pet_tagdispatch.go", pet.Output)
	assert.True(t, pet.Derive.Equal())
	assert.False(t, pet.Derive.Ord())
	assert.True(t, pet.Derive.Debug())

	other := m.Enums[1]
	assert.True(t, other.Arena)
	assert.Equal(t, CloneNever, other.Clone)
	assert.Equal(t, "http_pet_tagdispatch.go", other.Output)

	c, ok := m.Contract("Animal")
	require.True(t, ok)
	assert.Equal(t, "animalDefaults", c.Defaults)
	assert.Equal(t, []string{"Kingdom"}, c.NoDispatch)
}

func TestParseManifest_TOML(t *testing.T) {
	src := `
[[contracts]]
name = "Animal"

[[enums]]
name = "Herd"
contracts = ["Animal"]
variants = ["Dog", { name = "Parrot", type = "Bird" }]
arena = true
output = "herd_gen.go"

[enums.derive]
no_traits = true
`
	m, err := ParseManifest([]byte(src), "tagdispatch.toml")
	require.NoError(t, err)
	require.Len(t, m.Enums, 1)
	herd := m.Enums[0]
	assert.Equal(t, []Variant{{Name: "Dog", Type: "Dog"}, {Name: "Parrot", Type: "Bird"}}, herd.Variants)
	assert.Equal(t, "herd_gen.go", herd.Output)
	assert.True(t, herd.Arena)
	assert.False(t, herd.Derive.Debug())
	assert.False(t, herd.Derive.Equal())
	assert.False(t, herd.Derive.Ord())
}

func TestParseManifest_Invalid(t *testing.T) {
	cases := []struct {
		name   string
		src    string
		target error
	}{
		{"no enums", "contracts: []\n", ErrManifest},
		{"unknown field", "enums:\n  - name: A\n    variant: [B]\n", ErrManifest},
		{"bad clone", "enums:\n  - name: A\n    variants: [B]\n    clone: sometimes\n", ErrManifest},
		{"unexported enum", "enums:\n  - name: a\n    variants: [B]\n", ErrManifest},
		{"bad output", "enums:\n  - name: A\n    variants: [B]\n    output: a_test.go\n", ErrManifest},
		{"duplicate enum", "enums:\n  - name: A\n    variants: [B]\n  - name: A\n    variants: [B]\n", ErrManifest},
		{"unknown contract", "enums:\n  - name: A\n    contracts: [Missing]\n    variants: [B]\n", ErrUnknownContract},
		{"duplicate output", "enums:\n  - name: A\n    variants: [B]\n    output: x.go\n  - name: C\n    variants: [B]\n    output: x.go\n", ErrDuplicateOutput},
		{"syntax", "enums: [\n", ErrManifest},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m, err := ParseManifest([]byte(c.src), "tagdispatch.yaml")
			require.Error(t, err)
			assert.Nil(t, m)
			assert.True(t, errors.Is(err, c.target), err.Error())
		})
	}
}

func TestFindManifest(t *testing.T) {
	dir := t.TempDir()
	_, err := FindManifest(dir)
	assert.True(t, errors.Is(err, ErrNoManifest))

	path := filepath.Join(dir, "tagdispatch.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[enums]]\nname = \"A\"\nvariants = [\"B\"]\n"), 0o644))
	found, err := FindManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, path, found)

	m, err := LoadManifest(found)
	require.NoError(t, err)
	assert.Equal(t, "a_tagdispatch.go", m.Enums[0].Output)
}

func TestSnake(t *testing.T) {
	cases := map[string]string{
		"Shape":      "shape",
		"ArenaShape": "arena_shape",
		"HTTPServer": "http_server",
		"BareShape":  "bare_shape",
		"IO":         "io",
		"Stage2":     "stage2",
	}
	for in, want := range cases {
		assert.Equal(t, want, snake(in), in)
	}
}
