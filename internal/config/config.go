package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is the top-level configuration.
type Config struct {
	Projection ProjectionConfig `yaml:"projection" mapstructure:"projection"`
	Canvas     CanvasConfig     `yaml:"canvas" mapstructure:"canvas"`
	Marker     MarkerConfig     `yaml:"marker" mapstructure:"marker"`
	Label      LabelConfig      `yaml:"label" mapstructure:"label"`
	Data       DataConfig       `yaml:"data" mapstructure:"data"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// ProjectionConfig configures the Mercator projection. Translate defaults to
// the canvas center.
type ProjectionConfig struct {
	Center []float64 `yaml:"center" mapstructure:"center"`
	Scale  float64   `yaml:"scale" mapstructure:"scale"`
}

// CanvasConfig configures the SVG frame and its mount point.
type CanvasConfig struct {
	Width   float64 `yaml:"width" mapstructure:"width"`
	Height  float64 `yaml:"height" mapstructure:"height"`
	OffsetY float64 `yaml:"offset_y" mapstructure:"offset_y"`
	MountID string  `yaml:"mount_id" mapstructure:"mount_id"`
}

// MarkerConfig configures the population markers. Offsets is a list rather
// than a map: viper lowercases map keys and merges maps with their defaults,
// while a list from a config file replaces the default list whole.
type MarkerConfig struct {
	Icon          string         `yaml:"icon" mapstructure:"icon"`
	SizeDivisor   float64        `yaml:"size_divisor" mapstructure:"size_divisor"`
	DefaultOffset float64        `yaml:"default_offset" mapstructure:"default_offset"`
	Offsets       []MarkerOffset `yaml:"offsets" mapstructure:"offsets"`
}

// MarkerOffset overrides the marker offset of one region.
type MarkerOffset struct {
	Name   string  `yaml:"name" mapstructure:"name"`
	Offset float64 `yaml:"offset" mapstructure:"offset"`
}

// OffsetTable returns the offsets as a name-keyed table. A later entry for
// the same name wins.
func (m MarkerConfig) OffsetTable() map[string]float64 {
	out := make(map[string]float64, len(m.Offsets))
	for _, o := range m.Offsets {
		out[o.Name] = o.Offset
	}
	return out
}

// LabelConfig configures the hover label.
type LabelConfig struct {
	FontSize float64 `yaml:"font_size" mapstructure:"font_size"`
	Padding  float64 `yaml:"padding" mapstructure:"padding"`
}

// DataConfig names the input datasets.
type DataConfig struct {
	Boundaries   string `yaml:"boundaries" mapstructure:"boundaries"`
	Attributes   string `yaml:"attributes" mapstructure:"attributes"`
	NameProperty string `yaml:"name_property" mapstructure:"name_property"`
	Charset      string `yaml:"charset" mapstructure:"charset"`
}

// ServerConfig configures the preview server.
type ServerConfig struct {
	Port         int      `yaml:"port" mapstructure:"port"`
	RateLimit    float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	CacheEntries int      `yaml:"cache_entries" mapstructure:"cache_entries"`
	CacheTTLSecs int      `yaml:"cache_ttl_secs" mapstructure:"cache_ttl_secs"`
	CORSOrigins  []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// CacheTTL returns the render cache TTL.
func (s ServerConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSecs) * time.Second
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CHOROPLETH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("projection.center", []float64{137.0, 38.2})
	v.SetDefault("projection.scale", 1000)
	v.SetDefault("canvas.width", 400)
	v.SetDefault("canvas.height", 400)
	v.SetDefault("canvas.offset_y", -15)
	v.SetDefault("canvas.mount_id", "map-container")
	v.SetDefault("marker.icon", "heart.png")
	v.SetDefault("marker.size_divisor", 100000)
	v.SetDefault("marker.default_offset", 5)
	v.SetDefault("marker.offsets", []map[string]any{{"name": "北海道", "offset": 25}})
	v.SetDefault("label.font_size", 16)
	v.SetDefault("label.padding", 5)
	v.SetDefault("data.boundaries", "japan.geo.json")
	v.SetDefault("data.attributes", "todouhuken.json")
	v.SetDefault("data.name_property", "name_ja")
	v.SetDefault("data.charset", "shift_jis")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 20)
	v.SetDefault("server.cache_entries", 64)
	v.SetDefault("server.cache_ttl_secs", 300)
	v.SetDefault("server.cors_origins", []string{"*"})

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields a command depends on. Mode is one of "render",
// "hover", or "serve".
func (c *Config) Validate(mode string) error {
	var missing []string

	if len(c.Projection.Center) != 2 {
		missing = append(missing, "projection.center must have 2 values")
	}
	if c.Projection.Scale <= 0 {
		missing = append(missing, "projection.scale must be positive")
	}
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		missing = append(missing, "canvas.width and canvas.height must be positive")
	}
	if c.Canvas.MountID == "" {
		missing = append(missing, "canvas.mount_id is required")
	}
	if c.Marker.SizeDivisor <= 0 {
		missing = append(missing, "marker.size_divisor must be positive")
	}
	for i, o := range c.Marker.Offsets {
		if o.Name == "" {
			missing = append(missing, fmt.Sprintf("marker.offsets[%d].name is required", i))
		}
	}
	if c.Label.Padding < 0 {
		missing = append(missing, "label.padding must not be negative")
	}

	switch mode {
	case "render", "hover":
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			missing = append(missing, "server.port must be between 1 and 65535")
		}
		if c.Server.CacheEntries < 0 {
			missing = append(missing, "server.cache_entries must not be negative")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(missing) > 0 {
		return eris.Errorf("config: %s", strings.Join(missing, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
