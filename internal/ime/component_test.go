package ime

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hangulkey/internal/config"
)

func TestComponentXML(t *testing.T) {
	cfg := config.DefaultConfig().IBus

	data, err := ComponentXML(cfg, "/usr/local/bin/hangulkey-ibus")
	require.NoError(t, err)

	var c ibusComponent
	require.NoError(t, xml.Unmarshal(data, &c))
	assert.Equal(t, cfg.BusName, c.Name)
	assert.Equal(t, "/usr/local/bin/hangulkey-ibus -ibus", c.Exec)
	require.Len(t, c.Engines, 1)
	assert.Equal(t, cfg.EngineName, c.Engines[0].Name)
	assert.Equal(t, "ko", c.Engines[0].Language)
}

func TestInstallComponent(t *testing.T) {
	dataHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)
	cfg := config.DefaultConfig().IBus

	path, err := InstallComponent(cfg, "/opt/hangulkey-ibus")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataHome, "ibus", "component", cfg.EngineName+".xml"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "/opt/hangulkey-ibus -ibus")

	require.NoError(t, UninstallComponent(cfg))
	assert.NoFileExists(t, path)
	require.NoError(t, UninstallComponent(cfg), "uninstall twice")
}
