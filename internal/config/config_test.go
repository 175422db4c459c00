package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadEmptyPath(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("min_zoom: [not a number"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadPartialFileNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("zoom_step: 2\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2.0, cfg.ZoomStep)
	// Everything else falls back to defaults.
	assert.Equal(t, Default().MinZoom, cfg.MinZoom)
	assert.Equal(t, Default().Palette, cfg.Palette)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	want := Default()
	want.MaxZoom = 20
	want.LabelColWidth = 24
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestNormalizeRejectsInvertedZoomBounds(t *testing.T) {
	cfg := &Config{MinZoom: 5, MaxZoom: 2}
	cfg.Normalize()
	assert.Greater(t, cfg.MaxZoom, cfg.MinZoom)
}

func TestColorFor(t *testing.T) {
	cfg := Default()
	ordered := []string{"alice", "bob", "carol"}

	assert.Equal(t, cfg.Palette[0], cfg.ColorFor("alice", ordered))
	assert.Equal(t, cfg.Palette[1], cfg.ColorFor("bob", ordered))
	// Unknown keys get a stable fallback rather than an error.
	assert.Equal(t, cfg.Palette[0], cfg.ColorFor("dave", ordered))
}

func TestColorForWrapsPalette(t *testing.T) {
	cfg := Default()
	var ordered []string
	for i := 0; i < len(cfg.Palette)+1; i++ {
		ordered = append(ordered, string(rune('a'+i)))
	}
	last := ordered[len(ordered)-1]
	assert.Equal(t, cfg.Palette[0], cfg.ColorFor(last, ordered))
}
