package cli

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stemma/pkg/cache"
	"github.com/matzehuels/stemma/pkg/chart/layout"
	"github.com/matzehuels/stemma/pkg/errors"
	"github.com/matzehuels/stemma/pkg/render"
)

// DefaultAddr is the default bind address for stemma serve.
const DefaultAddr = "localhost:7466"

// Config is the on-disk CLI configuration, read from
// ~/.config/stemma/config.toml. Zero values mean "use the default", so
// a partial file only overrides what it names. Flags beat config.
type Config struct {
	Layout   LayoutConfig   `toml:"layout"`
	Autosave AutosaveConfig `toml:"autosave"`
	Cache    CacheConfig    `toml:"cache"`
	Export   ExportConfig   `toml:"export"`
	Server   ServerConfig   `toml:"server"`
}

// LayoutConfig overrides the automatic layout geometry.
type LayoutConfig struct {
	RankSep     float64 `toml:"rank_sep"`
	NodeSep     float64 `toml:"node_sep"`
	MarginX     float64 `toml:"margin_x"`
	MarginY     float64 `toml:"margin_y"`
	SideOffsetX float64 `toml:"side_offset_x"`
	SideGapY    float64 `toml:"side_gap_y"`
}

// AutosaveConfig tunes the save debounce.
type AutosaveConfig struct {
	DelayMS int `toml:"delay_ms"`
}

// CacheConfig selects the avatar cache backend.
type CacheConfig struct {
	Backend   string `toml:"backend"` // file, redis, or none
	Dir       string `toml:"dir"`
	RedisAddr string `toml:"redis_addr"`
}

// ExportConfig sets export defaults.
type ExportConfig struct {
	Format string `toml:"format"` // dot, svg, png, or pdf
}

// ServerConfig sets serve defaults.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig reads the TOML config at path. An empty path falls back to
// the default location, where a missing file is fine; an explicit path
// must exist. Unknown keys are rejected so typos cannot silently
// misconfigure.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return DefaultConfig(), nil
		}
		path = filepath.Join(dir, "config.toml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, err, "read config %s", path)
	}

	cfg := DefaultConfig()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeConfigInvalid,
			"unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate(path string) error {
	switch c.Cache.Backend {
	case "", cache.BackendFile, cache.BackendRedis, cache.BackendNone:
	default:
		return errors.New(errors.ErrCodeConfigInvalid,
			"invalid cache backend %q in %s (must be file, redis, or none)", c.Cache.Backend, path)
	}
	if c.Export.Format != "" {
		if err := validateFormat(c.Export.Format); err != nil {
			return errors.Wrap(errors.ErrCodeConfigInvalid, err, "export format in %s", path)
		}
	}
	if c.Autosave.DelayMS < 0 {
		return errors.New(errors.ErrCodeConfigInvalid,
			"autosave delay_ms must not be negative in %s", path)
	}
	return nil
}

// layoutOptions maps the config onto layout options; unset fields stay
// zero and pick up the package defaults.
func (c *Config) layoutOptions() layout.Options {
	return layout.Options{
		RankSep:     c.Layout.RankSep,
		NodeSep:     c.Layout.NodeSep,
		MarginX:     c.Layout.MarginX,
		MarginY:     c.Layout.MarginY,
		SideOffsetX: c.Layout.SideOffsetX,
		SideGapY:    c.Layout.SideGapY,
	}
}

// autosaveDelay converts the configured debounce to a duration; zero
// keeps the document default.
func (c *Config) autosaveDelay() time.Duration {
	if c.Autosave.DelayMS <= 0 {
		return 0
	}
	return time.Duration(c.Autosave.DelayMS) * time.Millisecond
}

// exportFormat returns the default export format, preferring the flag
// value when set.
func (c *Config) exportFormat(flag string) string {
	if flag != "" {
		return flag
	}
	if c.Export.Format != "" {
		return c.Export.Format
	}
	return render.FormatSVG
}

// serverAddr returns the bind address, preferring the flag value.
func (c *Config) serverAddr(flag string) string {
	if flag != "" {
		return flag
	}
	if c.Server.Addr != "" {
		return c.Server.Addr
	}
	return DefaultAddr
}
