package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, []float64{137.0, 38.2}, cfg.Projection.Center)
	assert.InDelta(t, 1000, cfg.Projection.Scale, 0)
	assert.InDelta(t, 400, cfg.Canvas.Width, 0)
	assert.InDelta(t, 400, cfg.Canvas.Height, 0)
	assert.InDelta(t, -15, cfg.Canvas.OffsetY, 0)
	assert.Equal(t, "map-container", cfg.Canvas.MountID)
	assert.Equal(t, "heart.png", cfg.Marker.Icon)
	assert.InDelta(t, 100000, cfg.Marker.SizeDivisor, 0)
	assert.InDelta(t, 5, cfg.Marker.DefaultOffset, 0)
	assert.Equal(t, []MarkerOffset{{Name: "北海道", Offset: 25}}, cfg.Marker.Offsets)
	assert.Equal(t, map[string]float64{"北海道": 25}, cfg.Marker.OffsetTable())
	assert.InDelta(t, 16, cfg.Label.FontSize, 0)
	assert.InDelta(t, 5, cfg.Label.Padding, 0)
	assert.Equal(t, "japan.geo.json", cfg.Data.Boundaries)
	assert.Equal(t, "todouhuken.json", cfg.Data.Attributes)
	assert.Equal(t, "name_ja", cfg.Data.NameProperty)
	assert.Equal(t, "shift_jis", cfg.Data.Charset)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.InDelta(t, 20, cfg.Server.RateLimit, 0)
	assert.Equal(t, 64, cfg.Server.CacheEntries)
	assert.Equal(t, 5*time.Minute, cfg.Server.CacheTTL())
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
log:
  level: debug
  format: console
canvas:
  mount_id: root
marker:
  icon: dot.svg
data:
  boundaries: prefectures.shp
  charset: utf-8
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "root", cfg.Canvas.MountID)
	assert.Equal(t, "dot.svg", cfg.Marker.Icon)
	assert.Equal(t, "prefectures.shp", cfg.Data.Boundaries)
	assert.Equal(t, "utf-8", cfg.Data.Charset)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.InDelta(t, 1000, cfg.Projection.Scale, 0)
	assert.Equal(t, "todouhuken.json", cfg.Data.Attributes)
}

func TestLoadMarkerOffsetsReplaceDefaults(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
marker:
  offsets:
    - name: Kyoto
      offset: 12
    - name: 沖縄県
      offset: 8
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	table := cfg.Marker.OffsetTable()
	assert.Equal(t, map[string]float64{"Kyoto": 12, "沖縄県": 8}, table)
	_, hasHokkaido := table["北海道"]
	assert.False(t, hasHokkaido)
	// Default offset is untouched.
	assert.InDelta(t, 5, cfg.Marker.DefaultOffset, 0)
}

func TestMarkerConfig_OffsetTableLaterEntryWins(t *testing.T) {
	m := MarkerConfig{Offsets: []MarkerOffset{
		{Name: "北海道", Offset: 25},
		{Name: "北海道", Offset: 30},
	}}
	assert.Equal(t, map[string]float64{"北海道": 30}, m.OffsetTable())
	assert.Empty(t, MarkerConfig{}.OffsetTable())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
data:
  attributes: file.json
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("CHOROPLETH_DATA_ATTRIBUTES", "env.csv")
	t.Setenv("CHOROPLETH_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "env.csv", cfg.Data.Attributes)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("CHOROPLETH_SERVER_PORT", "3000")
	t.Setenv("CHOROPLETH_MARKER_SIZE_DIVISOR", "50000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.InDelta(t, 50000, cfg.Marker.SizeDivisor, 0)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log: [unclosed"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Projection.Center = []float64{137.0, 38.2}
	cfg.Projection.Scale = 1000
	cfg.Canvas.Width = 400
	cfg.Canvas.Height = 400
	cfg.Canvas.MountID = "map-container"
	cfg.Marker.SizeDivisor = 100000
	cfg.Label.Padding = 5
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateRender(t *testing.T) {
	assert.NoError(t, validDefaults().Validate("render"))
	assert.NoError(t, validDefaults().Validate("hover"))
}

func TestValidateRender_InvalidFields(t *testing.T) {
	cfg := validDefaults()
	cfg.Projection.Center = []float64{137}
	cfg.Canvas.MountID = ""
	cfg.Marker.SizeDivisor = 0
	cfg.Marker.Offsets = []MarkerOffset{{Offset: 3}}

	err := cfg.Validate("render")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "projection.center must have 2 values")
	assert.Contains(t, err.Error(), "canvas.mount_id is required")
	assert.Contains(t, err.Error(), "marker.size_divisor must be positive")
	assert.Contains(t, err.Error(), "marker.offsets[0].name is required")
}

func TestValidateServe_ValidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 9090

	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")

	// Render does not care about the port.
	assert.NoError(t, cfg.Validate("render"))
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
