package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPersonaMissingFileUsesDefault(t *testing.T) {
	p, err := LoadPersona(filepath.Join(t.TempDir(), "persona.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultPersona, p)
}

func TestLoadPersonaPartialFileFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persona.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tone":"stern"}`), 0644))

	p, err := LoadPersona(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultPersona.Name, p.Name)
	assert.Equal(t, DefaultPersona.Role, p.Role)
	assert.Equal(t, "stern", p.Tone)
}

func TestLoadPersonaMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persona.json")
	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0644))

	_, err := LoadPersona(path)
	assert.Error(t, err)
}

func TestLoadProfileMissingFile(t *testing.T) {
	m, err := LoadProfile(filepath.Join(t.TempDir(), "structured.json"))
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestLoadProfileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "structured.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"Bruce","city":"Gotham"}`), 0644))

	m, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"name": "Bruce", "city": "Gotham"}, m)
}
