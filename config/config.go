package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"webpong/pong"
)

// Mode 帧驱动模式
type Mode string

const (
	// ModeSteppable 支持开始/暂停/继续/重置
	ModeSteppable Mode = "steppable"
	// ModeContinuous 启动即运行，不接受生命周期命令
	ModeContinuous Mode = "continuous"
)

type Config struct {
	Server  ServerConfig  `toml:"server" yaml:"server"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
	Network NetworkConfig `toml:"network" yaml:"network"`
	Game    GameConfig    `toml:"game" yaml:"game"`
}

type ServerConfig struct {
	Addr      string `toml:"addr" yaml:"addr"`
	StaticDir string `toml:"static_dir" yaml:"static_dir"`
}

type LoggingConfig struct {
	Level      string `toml:"level" yaml:"level"`
	Format     string `toml:"format" yaml:"format"` // "json" or "console"
	File       string `toml:"file" yaml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `toml:"compress" yaml:"compress"`
	Stderr     bool   `toml:"stderr" yaml:"stderr"` // also mirror to stderr
}

type NetworkConfig struct {
	InQueueSize  int           `toml:"in_queue_size" yaml:"in_queue_size"`
	OutQueueSize int           `toml:"out_queue_size" yaml:"out_queue_size"`
	WriteTimeout time.Duration `toml:"write_timeout" yaml:"write_timeout"`
	ReadTimeout  time.Duration `toml:"read_timeout" yaml:"read_timeout"`
	ReadLimit    int64         `toml:"read_limit" yaml:"read_limit"`
}

// GameConfig 球场与规则；Restitution/SpinFactor 为空时取变体默认值
type GameConfig struct {
	Mode         Mode     `toml:"mode" yaml:"mode"`
	Variant      string   `toml:"variant" yaml:"variant"`
	TickRate     int      `toml:"tick_rate" yaml:"tick_rate"`
	Seed         int64    `toml:"seed" yaml:"seed"`
	Width        float64  `toml:"width" yaml:"width"`
	Height       float64  `toml:"height" yaml:"height"`
	PaddleWidth  float64  `toml:"paddle_width" yaml:"paddle_width"`
	PaddleHeight float64  `toml:"paddle_height" yaml:"paddle_height"`
	PaddleMargin float64  `toml:"paddle_margin" yaml:"paddle_margin"`
	BallRadius   float64  `toml:"ball_radius" yaml:"ball_radius"`
	BaseSpeedX   float64  `toml:"base_speed_x" yaml:"base_speed_x"`
	BaseSpeedY   float64  `toml:"base_speed_y" yaml:"base_speed_y"`
	AISpeed      float64  `toml:"ai_speed" yaml:"ai_speed"`
	AIDeadZone   float64  `toml:"ai_dead_zone" yaml:"ai_dead_zone"`
	Restitution  *float64 `toml:"restitution" yaml:"restitution"`
	SpinFactor   *float64 `toml:"spin_factor" yaml:"spin_factor"`
}

// Load reads defaults, overlays the file at path (TOML, or YAML by
// extension), applies PONG_* environment overrides and validates.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := decode(path, data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		_, err := toml.Decode(string(data), cfg)
		return err
	}
}

func Default() *Config {
	r := pong.DefaultRules()
	return &Config{
		Server: ServerConfig{
			Addr:      ":8080",
			StaticDir: "web",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			File:       "app.log",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
		Network: NetworkConfig{
			InQueueSize:  256,
			OutQueueSize: 64,
			WriteTimeout: 5 * time.Second,
			ReadTimeout:  60 * time.Second,
			ReadLimit:    1 << 20,
		},
		Game: GameConfig{
			Mode:         ModeSteppable,
			Variant:      string(pong.VariantClassic),
			TickRate:     60,
			Width:        800,
			Height:       400,
			PaddleWidth:  r.PaddleWidth,
			PaddleHeight: r.PaddleHeight,
			PaddleMargin: r.PaddleMargin,
			BallRadius:   r.BallRadius,
			BaseSpeedX:   r.BaseSpeedX,
			BaseSpeedY:   r.BaseSpeedY,
			AISpeed:      r.AISpeed,
			AIDeadZone:   r.AIDeadZone,
		},
	}
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PONG_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("PONG_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("PONG_MODE"); v != "" {
		c.Game.Mode = Mode(v)
	}
	if v := os.Getenv("PONG_VARIANT"); v != "" {
		c.Game.Variant = v
	}
	if v := os.Getenv("PONG_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("PONG_SEED: %w", err)
		}
		c.Game.Seed = seed
	}
	return nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var err error
	g := c.Game
	switch g.Mode {
	case ModeSteppable, ModeContinuous:
	default:
		err = multierr.Append(err, fmt.Errorf("game.mode %q: want steppable or continuous", g.Mode))
	}
	if _, verr := pong.RulesFor(pong.Variant(g.Variant)); verr != nil {
		err = multierr.Append(err, fmt.Errorf("game.variant: %w", verr))
	}
	if g.TickRate <= 0 {
		err = multierr.Append(err, errors.New("game.tick_rate must be positive"))
	}
	if g.Width <= 0 || g.Height <= 0 {
		err = multierr.Append(err, errors.New("game.width and game.height must be positive"))
	}
	if g.PaddleHeight <= 0 || g.PaddleHeight > g.Height {
		err = multierr.Append(err, fmt.Errorf("game.paddle_height %.1f must be in (0, height]", g.PaddleHeight))
	}
	if g.PaddleWidth <= 0 || g.BallRadius <= 0 {
		err = multierr.Append(err, errors.New("game.paddle_width and game.ball_radius must be positive"))
	}
	if 2*(g.PaddleMargin+g.PaddleWidth) >= g.Width {
		err = multierr.Append(err, errors.New("paddles do not fit inside game.width"))
	}
	if g.BaseSpeedX == 0 {
		err = multierr.Append(err, errors.New("game.base_speed_x must be non-zero"))
	}
	if g.Restitution != nil && *g.Restitution <= 0 {
		err = multierr.Append(err, errors.New("game.restitution must be positive"))
	}
	if c.Network.InQueueSize <= 0 || c.Network.OutQueueSize <= 0 {
		err = multierr.Append(err, errors.New("network queue sizes must be positive"))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		err = multierr.Append(err, fmt.Errorf("logging.format %q: want console or json", c.Logging.Format))
	}
	return err
}

// Arena 球场尺寸
func (g GameConfig) Arena() pong.Arena {
	return pong.Arena{Width: g.Width, Height: g.Height}
}

// Rules 变体默认值 + 显式覆盖
func (g GameConfig) Rules() pong.Rules {
	r, err := pong.RulesFor(pong.Variant(g.Variant))
	if err != nil {
		r = pong.DefaultRules()
	}
	r.PaddleWidth = g.PaddleWidth
	r.PaddleHeight = g.PaddleHeight
	r.PaddleMargin = g.PaddleMargin
	r.BallRadius = g.BallRadius
	r.BaseSpeedX = g.BaseSpeedX
	r.BaseSpeedY = g.BaseSpeedY
	r.AISpeed = g.AISpeed
	r.AIDeadZone = g.AIDeadZone
	if g.Restitution != nil {
		r.Restitution = *g.Restitution
	}
	if g.SpinFactor != nil {
		r.SpinFactor = *g.SpinFactor
	}
	return r
}

// TickInterval 每 Tick 间隔（60 TPS 约 16.7ms）
func (g GameConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(g.TickRate)
}
