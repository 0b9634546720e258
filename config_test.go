package fbxview

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
[converter]
command = "dump --json {input}"
dir = "/tmp"
in_process = false

[reader]
pairing = "id"
color = "r"

[render]
width = 320
background = "#102030"

[log]
level = "debug"
`

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fbxview.toml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "dump --json {input}", cfg.Convert.Command)
	assert.False(t, cfg.Convert.InProcess)
	assert.Equal(t, 320, cfg.Render.Width)
	assert.Equal(t, 600, cfg.Render.Height, "unset keys keep their defaults")

	conv, ok := cfg.Converter().(*ExecConverter)
	require.True(t, ok)
	assert.Equal(t, "/tmp", conv.Dir)

	tr, err := cfg.TreeReader()
	require.NoError(t, err)
	assert.IsType(t, IDPairing{}, tr.Pairing)
	assert.Len(t, tr.Options, 1)

	cv, err := cfg.Canvas()
	require.NoError(t, err)
	r, g, b, _ := cv.Background.RGBA()
	assert.Equal(t, []uint32{0x10, 0x20, 0x30}, []uint32{r >> 8, g >> 8, b >> 8})

	assert.True(t, cfg.Logger().Enabled(context.Background(), slog.LevelDebug))
}

func TestConfigDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.IsType(t, &FbxConverter{}, cfg.Converter())

	cfg.Convert.InProcess = false
	assert.IsType(t, &ExecConverter{}, cfg.Converter())

	cfg.Reader.Pairing = "closest"
	_, err := cfg.TreeReader()
	assert.True(t, errors.Is(err, ErrValue))

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestConfigSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.toml")
	cfg := DefaultConfig()
	cfg.Reader.Pairing = "id"
	cfg.Render.Margin = 5
	require.NoError(t, cfg.Save(path))

	back, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestConfigBadToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[render\nwidth = "), 0644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, parseLevel("loud"))
}
