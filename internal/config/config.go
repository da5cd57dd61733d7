package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/lazypower/recognition/internal/graph"
	"github.com/lazypower/recognition/internal/interaction"
	"github.com/lazypower/recognition/internal/layout"
	"github.com/lazypower/recognition/internal/logging"
)

// Config holds all recognition configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
	Layout   LayoutConfig   `toml:"layout"`
	View     ViewConfig     `toml:"view"`
}

type ServerConfig struct {
	Bind             string   `toml:"bind"`
	Port             int      `toml:"port"`
	CORSOrigins      []string `toml:"cors_origins"`
	InteractionRPS   float64  `toml:"interaction_rps"`
	InteractionBurst int      `toml:"interaction_burst"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

type LinkStrengthConfig struct {
	Resonance float64 `toml:"resonance"`
	Tension   float64 `toml:"tension"`
	Evolution float64 `toml:"evolution"`
}

type LayoutConfig struct {
	Charge          float64            `toml:"charge"`
	CenterStrength  float64            `toml:"center_strength"`
	LinkDistance    float64            `toml:"link_distance"`
	LinkStrength    LinkStrengthConfig `toml:"link_strength"`
	CollideRadius   float64            `toml:"collide_radius"`
	CollideStrength float64            `toml:"collide_strength"`
	OrbitStrength   float64            `toml:"orbit_strength"`
	OrbitSpeed      float64            `toml:"orbit_speed"`
	OrbitMin        float64            `toml:"orbit_min"`
	OrbitMax        float64            `toml:"orbit_max"`
	OrbitSeedMin    float64            `toml:"orbit_seed_min"`
	SpiralFactor    float64            `toml:"spiral_factor"`
	AlphaInitial    float64            `toml:"alpha_initial"`
	AlphaDecay      float64            `toml:"alpha_decay"`
	AlphaMin        float64            `toml:"alpha_min"`
	VelocityDecay   float64            `toml:"velocity_decay"`
	ReheatAlpha     float64            `toml:"reheat_alpha"`
	FPS             int                `toml:"fps"`
	Seed            int64              `toml:"seed"`
}

type ViewConfig struct {
	HoverLink  float64 `toml:"hover_link"`
	HoverLabel float64 `toml:"hover_label"`
	DimLink    float64 `toml:"dim_link"`
	DimLabel   float64 `toml:"dim_label"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	lc := layout.DefaultConfig()
	vc := interaction.DefaultViewConfig()
	return Config{
		Server: ServerConfig{
			Bind:             "127.0.0.1",
			Port:             37778,
			InteractionRPS:   120,
			InteractionBurst: 240,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		Log: LogConfig{
			Level: "info",
		},
		Layout: LayoutConfig{
			Charge:         lc.Charge,
			CenterStrength: lc.CenterStrength,
			LinkDistance:   lc.LinkDistance,
			LinkStrength: LinkStrengthConfig{
				Resonance: lc.LinkStrength[graph.Resonance],
				Tension:   lc.LinkStrength[graph.Tension],
				Evolution: lc.LinkStrength[graph.Evolution],
			},
			CollideRadius:   lc.CollideRadius,
			CollideStrength: lc.CollideStrength,
			OrbitStrength:   lc.OrbitStrength,
			OrbitSpeed:      lc.OrbitSpeed,
			OrbitMin:        lc.OrbitMin,
			OrbitMax:        lc.OrbitMax,
			OrbitSeedMin:    lc.OrbitSeedMin,
			SpiralFactor:    lc.SpiralFactor,
			AlphaInitial:    lc.AlphaInitial,
			AlphaDecay:      lc.AlphaDecay,
			AlphaMin:        lc.AlphaMin,
			VelocityDecay:   lc.VelocityDecay,
			ReheatAlpha:     lc.ReheatAlpha,
			FPS:             60,
			Seed:            lc.Seed,
		},
		View: ViewConfig{
			HoverLink:  vc.HoverLink,
			HoverLabel: vc.HoverLabel,
			DimLink:    vc.DimLink,
			DimLabel:   vc.DimLabel,
		},
	}
}

// Load returns defaults overlaid with the TOML file at path and then with
// RECOGNITION_* environment variables. A missing file is not an error; an
// empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("RECOGNITION_BIND"); v != "" {
		c.Server.Bind = v
	}
	if v := os.Getenv("RECOGNITION_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RECOGNITION_PORT %q: %w", v, err)
		}
		c.Server.Port = p
	}
	if v := os.Getenv("RECOGNITION_DB"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("RECOGNITION_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate rejects settings the layout or server cannot run with.
func (c *Config) Validate() error {
	var problems []string
	l := c.Layout
	if l.OrbitMin < 0 {
		problems = append(problems, fmt.Sprintf("layout.orbit_min must not be negative, got %g", l.OrbitMin))
	}
	if l.OrbitMin > l.OrbitMax {
		problems = append(problems, fmt.Sprintf("layout.orbit_min (%g) exceeds layout.orbit_max (%g)", l.OrbitMin, l.OrbitMax))
	}
	if l.FPS <= 0 {
		problems = append(problems, fmt.Sprintf("layout.fps must be positive, got %d", l.FPS))
	}
	if l.AlphaDecay <= 0 || l.AlphaDecay >= 1 {
		problems = append(problems, fmt.Sprintf("layout.alpha_decay must be in (0, 1), got %g", l.AlphaDecay))
	}
	if l.VelocityDecay < 0 || l.VelocityDecay > 1 {
		problems = append(problems, fmt.Sprintf("layout.velocity_decay must be in [0, 1], got %g", l.VelocityDecay))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port out of range: %d", c.Server.Port))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// LayoutParams converts the [layout] section for the simulation.
func (c *Config) LayoutParams() layout.Config {
	l := c.Layout
	return layout.Config{
		Charge:         l.Charge,
		CenterStrength: l.CenterStrength,
		LinkDistance:   l.LinkDistance,
		LinkStrength: map[graph.Kind]float64{
			graph.Resonance: l.LinkStrength.Resonance,
			graph.Tension:   l.LinkStrength.Tension,
			graph.Evolution: l.LinkStrength.Evolution,
		},
		CollideRadius:   l.CollideRadius,
		CollideStrength: l.CollideStrength,
		OrbitStrength:   l.OrbitStrength,
		OrbitSpeed:      l.OrbitSpeed,
		OrbitMin:        l.OrbitMin,
		OrbitMax:        l.OrbitMax,
		OrbitSeedMin:    l.OrbitSeedMin,
		SpiralFactor:    l.SpiralFactor,
		AlphaInitial:    l.AlphaInitial,
		AlphaDecay:      l.AlphaDecay,
		AlphaMin:        l.AlphaMin,
		VelocityDecay:   l.VelocityDecay,
		ReheatAlpha:     l.ReheatAlpha,
		Seed:            l.Seed,
	}
}

// ViewParams converts the [view] section for the interaction controller.
func (c *Config) ViewParams() interaction.ViewConfig {
	vc := interaction.DefaultViewConfig()
	vc.HoverLink = c.View.HoverLink
	vc.HoverLabel = c.View.HoverLabel
	vc.DimLink = c.View.DimLink
	vc.DimLabel = c.View.DimLabel
	vc.ReheatAlpha = c.Layout.ReheatAlpha
	return vc
}

// LogParams converts the [log] section for the logger.
func (c *Config) LogParams() logging.Config {
	return logging.Config{Level: c.Log.Level, Development: c.Log.Development}
}
