// Package config provides configuration loading and access for the brain.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/strategybrain/formation"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds every tunable constant the brain reads, combining the
// router/dispatcher knobs from spec section 6 with the combat matrix that,
// in the original game, lived on the live server's configuration record.
type Config struct {
	World    World    `yaml:"world"`
	Router   Router   `yaml:"router"`
	Dispatch Dispatch `yaml:"dispatch"`
	Enemy    Enemy    `yaml:"enemy"`
	Combat   Combat   `yaml:"combat"`
}

// World holds the map dimensions and the replay random seed.
type World struct {
	Width        float64 `yaml:"width"`
	Height       float64 `yaml:"height"`
	RandomSeedHi uint32  `yaml:"random_seed_hi"`
	RandomSeedLo uint32  `yaml:"random_seed_lo"`
}

// Router holds the k-d tree cut granularity and search bounds (spec.md
// ROUTER_* constants).
type Router struct {
	XMinDiff    float64 `yaml:"x_min_diff"`
	YMinDiff    float64 `yaml:"y_min_diff"`
	TimeMinDiff float64 `yaml:"time_min_diff"`
	BypassPad   float64 `yaml:"bypass_pad"`
	PopsLimit   int     `yaml:"pops_limit"`
}

// Dispatch holds the command dispatcher's route lifetime knob
// (ROUTE_RESET_TICKS).
type Dispatch struct {
	RouteResetTicks int `yaml:"route_reset_ticks"`
}

// Enemy holds the enemy-prediction scouting heuristics
// (ENEMY_SPLIT_DENSITY, ENEMY_PREDICT_ROUTE_LEN).
type Enemy struct {
	SplitDensity    float64 `yaml:"split_density"`
	PredictRouteLen int     `yaml:"predict_route_len"`
}

// CombatInfo is one attacker-kind × defender-kind lookup entry.
type CombatInfo struct {
	AttackRange float64 `yaml:"attack_range"`
	Damage      float64 `yaml:"damage"`
	Defence     float64 `yaml:"defence"`
}

// Combat holds the full 5x5 combat matrix, per-kind max speed, and the
// aerial/ground domain each kind belongs to (for the collision matrix:
// same-domain formations collide, cross-domain ones don't). Indices follow
// formation.Kind's order: Arrv, Fighter, Helicopter, Ifv, Tank.
type Combat struct {
	MaxSpeed [5]float64       `yaml:"max_speed"`
	Domain   [5]string        `yaml:"domain"`
	Matrix   [5][5]CombatInfo `yaml:"matrix"`
}

// Info returns the combat lookup for attacker striking defender.
func (c *Combat) Info(attacker, defender formation.Kind) CombatInfo {
	return c.Matrix[attacker][defender]
}

// MaxSpeedOf returns a kind's configured maximum speed.
func (c *Combat) MaxSpeedOf(kind formation.Kind) float64 {
	return c.MaxSpeed[kind]
}

// Collides reports whether formations of the two kinds occupy the same
// movement domain (aerial vs ground) and therefore must avoid each other.
func (c *Combat) Collides(a, b formation.Kind) bool {
	return c.Domain[a] == c.Domain[b]
}

// global holds the loaded configuration for package-level access via Cfg.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults
// if path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// WriteYAML saves the effective configuration to path, so a telemetry
// output directory carries the exact knobs a recorded match ran with.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Load loads configuration from a YAML file, merging with embedded
// defaults. If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	return cfg, nil
}
