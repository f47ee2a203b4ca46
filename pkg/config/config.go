// Package config loads patchview settings from TOML.
//
// [Default] returns a complete configuration. [Load] decodes a file over the
// defaults, so a file only needs the keys it changes:
//
//	[layout]
//	columns = "always"
//	prune = true
//
//	[source]
//	kind = "remote"
//	url = "http://localhost:7070"
//
// Unknown keys are rejected so typos do not silently fall back to defaults.
package config

import (
	"io"
	"math/rand/v2"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/patchview/pkg/camera"
	"github.com/matzehuels/patchview/pkg/errors"
	"github.com/matzehuels/patchview/pkg/layout"
	"github.com/matzehuels/patchview/pkg/poll"
	"github.com/matzehuels/patchview/pkg/scene"
	"github.com/matzehuels/patchview/pkg/visualiser"
)

// Source kinds.
const (
	SourceDemo   = "demo"
	SourceFile   = "file"
	SourceRemote = "remote"
)

// Duration is a time.Duration written as a string such as "250ms".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the complete set of settings.
type Config struct {
	Window WindowConfig `toml:"window"`
	Layout LayoutConfig `toml:"layout"`
	Force  ForceConfig  `toml:"force"`
	Camera CameraConfig `toml:"camera"`
	Poll   PollConfig   `toml:"poll"`
	Source SourceConfig `toml:"source"`
	Serve  ServeConfig  `toml:"serve"`
}

type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

type LayoutConfig struct {
	// Columns is "always", "on-change" or "off".
	Columns string `toml:"columns"`
	Prune   bool   `toml:"prune"`
	Forces  bool   `toml:"forces"`

	NodeWidth     float64 `toml:"node_width"`
	RowHeight     float64 `toml:"row_height"`
	SpawnExtent   float64 `toml:"spawn_extent"`
	OutputAnchorX float64 `toml:"output_anchor_x"`
	OutputAnchorY float64 `toml:"output_anchor_y"`
	ColumnWidth   float64 `toml:"column_width"`
	RowGap        float64 `toml:"row_gap"`
	Seed          uint64  `toml:"seed"`
}

type ForceConfig struct {
	Decay          float64 `toml:"decay"`
	SpringFraction float64 `toml:"spring_fraction"`
	SettleFraction float64 `toml:"settle_fraction"`
	CatchBand      float64 `toml:"catch_band"`
	MaxForce       float64 `toml:"max_force"`
	TargetGap      float64 `toml:"target_gap"`
	AccelDecay     float64 `toml:"accel_decay"`
	AccelFloor     float64 `toml:"accel_floor"`
	RepulseDistSq  float64 `toml:"repulse_dist_sq"`
	RepulseStep    float64 `toml:"repulse_step"`
	SplitPull      bool    `toml:"split_pull"`
	SettleToward   bool    `toml:"settle_toward"`
}

type CameraConfig struct {
	Margin float64 `toml:"margin"`
	Speed  float64 `toml:"speed"`
}

type PollConfig struct {
	MinInterval Duration `toml:"min_interval"`
}

type SourceConfig struct {
	// Kind is "demo", "file" or "remote".
	Kind    string   `toml:"kind"`
	Path    string   `toml:"path"`
	URL     string   `toml:"url"`
	Timeout Duration `toml:"timeout"`
	// Latency delays answers from the demo engine.
	Latency Duration `toml:"latency"`
}

type ServeConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the default configuration.
func Default() Config {
	f := layout.DefaultForceConfig()
	return Config{
		Window: WindowConfig{Title: "patchview", Width: 1280, Height: 800},
		Layout: LayoutConfig{
			Columns:       visualiser.ColumnsOnChange.String(),
			Forces:        true,
			NodeWidth:     scene.DefaultNodeWidth,
			RowHeight:     scene.DefaultRowHeight,
			SpawnExtent:   scene.DefaultSpawnExtent,
			OutputAnchorX: scene.DefaultOutputAnchorX,
			ColumnWidth:   layout.DefaultColumnWidth,
			RowGap:        layout.DefaultRowGap,
			Seed:          42,
		},
		Force: ForceConfig{
			Decay:          f.Decay,
			SpringFraction: f.SpringFraction,
			SettleFraction: f.SettleFraction,
			CatchBand:      f.CatchBand,
			MaxForce:       f.MaxForce,
			TargetGap:      f.TargetGap,
			AccelDecay:     f.AccelDecay,
			AccelFloor:     f.AccelFloor,
			RepulseDistSq:  f.RepulseDistSq,
			RepulseStep:    f.RepulseStep,
			SplitPull:      f.SplitPull,
			SettleToward:   f.SettleToward,
		},
		Camera: CameraConfig{Margin: camera.DefaultMargin, Speed: camera.DefaultSpeed},
		Poll:   PollConfig{MinInterval: Duration{poll.DefaultMinInterval}},
		Source: SourceConfig{Kind: SourceDemo, Timeout: Duration{5 * time.Second}},
		Serve:  ServeConfig{Addr: ":7070"},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "open config %s", path)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads TOML from r over the defaults and validates the result.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Encode writes cfg as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.New(errors.ErrCodeInvalidConfig, format, args...)
	}

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return invalid("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if _, err := visualiser.ParseColumnMode(c.Layout.Columns); err != nil {
		return err
	}
	for name, v := range map[string]float64{
		"layout.node_width":     c.Layout.NodeWidth,
		"layout.row_height":     c.Layout.RowHeight,
		"layout.spawn_extent":   c.Layout.SpawnExtent,
		"layout.column_width":   c.Layout.ColumnWidth,
		"force.max_force":       c.Force.MaxForce,
		"force.repulse_dist_sq": c.Force.RepulseDistSq,
	} {
		if v <= 0 {
			return invalid("%s must be positive, got %v", name, v)
		}
	}
	if c.Layout.RowGap < 0 {
		return invalid("layout.row_gap must not be negative, got %v", c.Layout.RowGap)
	}
	for name, v := range map[string]float64{
		"force.decay":       c.Force.Decay,
		"force.accel_decay": c.Force.AccelDecay,
	} {
		if v < 0 || v > 1 {
			return invalid("%s must be within [0, 1], got %v", name, v)
		}
	}
	if c.Camera.Margin < 0 || c.Camera.Speed < 0 {
		return invalid("camera margin and speed must not be negative")
	}
	if c.Poll.MinInterval.Duration < 0 {
		return invalid("poll.min_interval must not be negative")
	}

	switch c.Source.Kind {
	case SourceDemo:
	case SourceFile:
		if c.Source.Path == "" {
			return invalid("source.path is required for a file source")
		}
	case SourceRemote:
		if err := errors.ValidateURL(c.Source.URL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "source.url")
		}
	default:
		return invalid("unknown source kind %q (want demo, file or remote)", c.Source.Kind)
	}

	if err := errors.ValidateListenAddr(c.Serve.Addr); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "serve.addr")
	}
	return nil
}

// SceneOptions returns the scene settings.
func (c Config) SceneOptions(logger *log.Logger) scene.Options {
	return scene.Options{
		Geometry:     scene.Geometry{NodeWidth: c.Layout.NodeWidth, RowHeight: c.Layout.RowHeight},
		SpawnExtent:  c.Layout.SpawnExtent,
		OutputAnchor: scene.Vec2{X: c.Layout.OutputAnchorX, Y: c.Layout.OutputAnchorY},
		Rand:         rand.New(rand.NewPCG(c.Layout.Seed, c.Layout.Seed^0x9e3779b97f4a7c15)),
		Logger:       logger,
	}
}

// ForceConfig returns the simulator parameters.
func (c Config) ForceConfig() layout.ForceConfig {
	f := c.Force
	return layout.ForceConfig{
		Decay:          f.Decay,
		SpringFraction: f.SpringFraction,
		SettleFraction: f.SettleFraction,
		CatchBand:      f.CatchBand,
		MaxForce:       f.MaxForce,
		TargetGap:      f.TargetGap,
		AccelDecay:     f.AccelDecay,
		AccelFloor:     f.AccelFloor,
		RepulseDistSq:  f.RepulseDistSq,
		RepulseStep:    f.RepulseStep,
		SplitPull:      f.SplitPull,
		SettleToward:   f.SettleToward,
	}
}

// ColumnConfig returns the column pass geometry.
func (c Config) ColumnConfig() layout.ColumnConfig {
	return layout.ColumnConfig{
		AnchorX:     c.Layout.OutputAnchorX,
		AnchorY:     c.Layout.OutputAnchorY,
		ColumnWidth: c.Layout.ColumnWidth,
		RowGap:      c.Layout.RowGap,
	}
}

// VisualiserOptions returns the frame pipeline settings. The column mode
// must already have passed Validate.
func (c Config) VisualiserOptions(logger *log.Logger) visualiser.Options {
	mode, _ := visualiser.ParseColumnMode(c.Layout.Columns)
	columns := c.ColumnConfig()
	cam := camera.New(logger)
	cam.Margin = c.Camera.Margin
	cam.Speed = c.Camera.Speed
	return visualiser.Options{
		Columns:       mode,
		ColumnConfig:  &columns,
		Force:         c.ForceConfig(),
		DisableForces: !c.Layout.Forces,
		Prune:         c.Layout.Prune,
		Camera:        cam,
		Logger:        logger,
	}
}

// PollOptions returns the poller settings.
func (c Config) PollOptions(logger *log.Logger) poll.Options {
	return poll.Options{MinInterval: c.Poll.MinInterval.Duration, Logger: logger}
}
