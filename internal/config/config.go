package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Window   WindowConfig   `toml:"window"`
	Render   RenderConfig   `toml:"render"`
	Camera   CameraConfig   `toml:"camera"`
	Pool     PoolConfig     `toml:"pool"`
	Scene    SceneConfig    `toml:"scene"`
	Physics  PhysicsConfig  `toml:"physics"`
	Editor   EditorConfig   `toml:"editor"`
	Loop     LoopConfig     `toml:"loop"`
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
}

// WindowConfig names the window. Its size always comes from the terminal.
type WindowConfig struct {
	Title string `toml:"title"`
}

type RenderConfig struct {
	ClearColor [4]float32 `toml:"clear_color"`
	Shading    string     `toml:"shading"` // "halfblock" or "ascii"
	Skybox     bool       `toml:"skybox"`
}

type CameraConfig struct {
	FovDegrees float32    `toml:"fov_degrees"`
	Near       float32    `toml:"near"`
	Far        float32    `toml:"far"`
	MoveSpeed  float32    `toml:"move_speed"`
	LookSpeed  float32    `toml:"look_speed"`
	Position   [3]float32 `toml:"position"`
}

type PoolConfig struct {
	InitialCapacity int `toml:"initial_capacity"`
	Growth          int `toml:"growth"`
	MaxCapacity     int `toml:"max_capacity"` // 0 = unbounded
}

type SceneConfig struct {
	File       string `toml:"file"`
	AssetRoot  string `toml:"asset_root"`
	ScriptRoot string `toml:"script_root"`
}

type PhysicsConfig struct {
	Seed        uint64  `toml:"seed"` // 0 = time based
	MinTurnMs   float32 `toml:"min_turn_ms"`
	MaxTurnMs   float32 `toml:"max_turn_ms"`
	MaxOffAngle float32 `toml:"max_off_angle"`
	BoxTest     bool    `toml:"box_test"` // confirm sphere hits with the oriented box test
}

type EditorConfig struct {
	Enabled   bool `toml:"enabled"`
	StartOpen bool `toml:"start_open"`
	// SavePath receives the scene as YAML when no database is configured.
	SavePath string `toml:"save_path"`
}

type LoopConfig struct {
	FrameRate time.Duration `toml:"frame_rate"`
	MaxDelta  time.Duration `toml:"max_delta"`
}

type DatabaseConfig struct {
	DSN             string        `toml:"dsn"` // empty disables snapshots
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
	File   string `toml:"file"`   // the terminal is busy rendering, so logs go here
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Pool.Growth <= 0 {
		return fmt.Errorf("pool.growth must be positive, got %d", c.Pool.Growth)
	}
	if c.Pool.MaxCapacity > 0 && c.Pool.InitialCapacity > c.Pool.MaxCapacity {
		return fmt.Errorf("pool.initial_capacity %d exceeds pool.max_capacity %d",
			c.Pool.InitialCapacity, c.Pool.MaxCapacity)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("camera clip planes near=%g far=%g", c.Camera.Near, c.Camera.Far)
	}
	if c.Loop.FrameRate <= 0 {
		return fmt.Errorf("loop.frame_rate must be positive")
	}
	if c.Physics.MaxTurnMs < c.Physics.MinTurnMs {
		return fmt.Errorf("physics.max_turn_ms below min_turn_ms")
	}
	return nil
}

// Default returns the configuration used when no file overrides a value.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title: "ember",
		},
		Render: RenderConfig{
			ClearColor: [4]float32{0.05, 0.05, 0.1, 1},
			Shading:    "halfblock",
			Skybox:     true,
		},
		Camera: CameraConfig{
			FovDegrees: 45,
			Near:       0.1,
			Far:        100,
			MoveSpeed:  4,
			LookSpeed:  1,
			Position:   [3]float32{0, 1, -6},
		},
		Pool: PoolConfig{
			InitialCapacity: 64,
			Growth:          64,
		},
		Scene: SceneConfig{
			File:       "assets/scenes/demo.yaml",
			AssetRoot:  "assets",
			ScriptRoot: "assets/scripts",
		},
		Physics: PhysicsConfig{
			MinTurnMs:   400,
			MaxTurnMs:   1200,
			MaxOffAngle: 25,
			BoxTest:     true,
		},
		Editor: EditorConfig{
			Enabled:   true,
			StartOpen: false,
			SavePath:  "ember-scene.yaml",
		},
		Loop: LoopConfig{
			FrameRate: 33 * time.Millisecond,
			MaxDelta:  100 * time.Millisecond,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    4,
			MaxIdleConns:    1,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			File:   "ember.log",
		},
	}
}
