// Package config provides configuration loading and access for the
// simulation: embedded YAML defaults, optional file overrides, and
// conversion into the engine's runtime Params.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/pthm-cable/lbmsim/engine"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Grid      GridConfig      `yaml:"grid"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Boundary  BoundaryConfig  `yaml:"boundary"`
	Thermal   ThermalConfig   `yaml:"thermal"`
	Closure   ClosureConfig   `yaml:"closure"`
	Drag      DragConfig      `yaml:"drag"`
	Sponge    SpongeConfig    `yaml:"sponge"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds the viewer window's display settings.
type ScreenConfig struct {
	WindowWidth  int `yaml:"window_width"`
	WindowHeight int `yaml:"window_height"`
	TargetFPS    int `yaml:"target_fps"`
	StepsPerFrame int `yaml:"steps_per_frame"`
}

// GridConfig holds the lattice dimensions and execution resources.
type GridConfig struct {
	Width   int   `yaml:"width"`
	Height  int   `yaml:"height"`
	Threads int   `yaml:"threads"`
	Seed    int64 `yaml:"seed"`
}

// PhysicsConfig holds the core BGK/advection parameters.
type PhysicsConfig struct {
	Viscosity            float64 `yaml:"viscosity"` // kinematic viscosity nu; converted to Omega
	Dt                   float64 `yaml:"dt"`
	GravityX             float64 `yaml:"gravity_x"`
	GravityY             float64 `yaml:"gravity_y"`
	MaxVelocity           float64 `yaml:"max_velocity"`
	VorticityConfinement float64 `yaml:"vorticity_confinement"`
	DyeDecay              float64 `yaml:"dye_decay"`
	BFECC                 bool    `yaml:"bfecc"`
}

// EdgeConfig is the per-edge boundary policy plus the parameters that only
// some kinds (moving wall, equilibrium inflow) actually use.
type EdgeConfig struct {
	Kind      string  `yaml:"kind"` // periodic, no_slip, free_slip, moving_wall, equil_inflow, neumann_outflow
	WallU     float64 `yaml:"wall_u"`
	WallV     float64 `yaml:"wall_v"`
	InflowRho float64 `yaml:"inflow_rho"`
	InflowU   float64 `yaml:"inflow_u"`
	InflowV   float64 `yaml:"inflow_v"`
}

// BoundaryConfig holds the four independent edge policies. Preset, when
// non-empty, is expanded first via presetEdgeKinds (the same table as
// engine.ApplyLegacyPreset) and then
// overridden edge-by-edge by any Left/Right/Top/Bottom entry that sets a
// non-empty Kind — letting a config start from a named preset and tweak
// one edge.
type BoundaryConfig struct {
	Preset string     `yaml:"preset"`
	Left   EdgeConfig `yaml:"left"`
	Right  EdgeConfig `yaml:"right"`
	Top    EdgeConfig `yaml:"top"`
	Bottom EdgeConfig `yaml:"bottom"`
}

// ThermalConfig holds Boussinesq buoyancy and diffusivity parameters.
type ThermalConfig struct {
	Expansion   float64 `yaml:"expansion"`
	Reference   float64 `yaml:"reference"`
	Diffusivity float64 `yaml:"diffusivity"`
}

// ClosureConfig holds the non-Newtonian and LES closure coefficients.
type ClosureConfig struct {
	SmagorinskyC float64 `yaml:"smagorinsky_c"`
	TempViscK    float64 `yaml:"temp_visc_k"`
	PowerLawN    float64 `yaml:"power_law_n"`
	PowerLawK    float64 `yaml:"power_law_k"`
}

// DragConfig holds the global and porosity-coupled drag coefficients.
type DragConfig struct {
	Global   float64 `yaml:"global"`
	Porosity float64 `yaml:"porosity"`
}

// SpongeConfig holds the absorbing-frame damping settings.
type SpongeConfig struct {
	Strength float64 `yaml:"strength"`
	Width    float64 `yaml:"width"`
	Left     bool    `yaml:"left"`
	Right    bool    `yaml:"right"`
	Top      bool    `yaml:"top"`
	Bottom   bool    `yaml:"bottom"`
}

// TelemetryConfig holds diagnostics collection parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
	CSVExportPath       string  `yaml:"csv_export_path"`
}

// DerivedConfig holds values computed from the loaded config, including
// the ready-to-use engine.Params.
type DerivedConfig struct {
	EngineParams engine.Params
}

var edgeKinds = map[string]engine.BoundaryKind{
	"periodic":        engine.Periodic,
	"no_slip":         engine.NoSlip,
	"free_slip":       engine.FreeSlip,
	"moving_wall":     engine.MovingWall,
	"equil_inflow":    engine.EquilInflow,
	"neumann_outflow": engine.NeumannOutflow,
}

var legacyPresets = map[string]engine.LegacyPreset{
	"periodic":      engine.PresetPeriodic,
	"no_slip_box":   engine.PresetNoSlipBox,
	"channels":      engine.PresetChannels,
	"slip_box":      engine.PresetSlipBox,
	"slip_channel":  engine.PresetSlipChannel,
}

// global holds the loaded configuration.
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

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived builds the engine.Params the config describes.
func (c *Config) computeDerived() error {
	p := engine.DefaultParams()

	p.Omega = engine.ViscosityToOmega(float32(c.Physics.Viscosity))
	p.Dt = float32(c.Physics.Dt)
	p.GravityX = float32(c.Physics.GravityX)
	p.GravityY = float32(c.Physics.GravityY)
	p.MaxVelocity = float32(c.Physics.MaxVelocity)
	p.VorticityConfinement = float32(c.Physics.VorticityConfinement)
	p.Decay = float32(c.Physics.DyeDecay)
	p.BFECC = c.Physics.BFECC

	p.ThermalExpansion = float32(c.Thermal.Expansion)
	p.ThermalRef = float32(c.Thermal.Reference)
	p.ThermalDiffusivity = float32(c.Thermal.Diffusivity)

	p.SmagorinskyC = float32(c.Closure.SmagorinskyC)
	p.TempViscK = float32(c.Closure.TempViscK)
	p.PowerLawN = float32(c.Closure.PowerLawN)
	p.PowerLawK = float32(c.Closure.PowerLawK)

	p.GlobalDrag = float32(c.Drag.Global)
	p.PorosityDrag = float32(c.Drag.Porosity)

	p.Sponge.Strength = float32(c.Sponge.Strength)
	p.Sponge.Width = float32(c.Sponge.Width)
	p.Sponge.Enabled[engine.Left] = c.Sponge.Left
	p.Sponge.Enabled[engine.Right] = c.Sponge.Right
	p.Sponge.Enabled[engine.Top] = c.Sponge.Top
	p.Sponge.Enabled[engine.Bottom] = c.Sponge.Bottom

	p.Threads = c.Grid.Threads
	if p.Threads < 1 {
		p.Threads = 1
	}
	p.Seed = c.Grid.Seed

	if c.Boundary.Preset != "" {
		preset, ok := legacyPresets[c.Boundary.Preset]
		if !ok {
			return fmt.Errorf("config: unknown boundary preset %q", c.Boundary.Preset)
		}
		kind := presetEdgeKinds(preset)
		p.Edges = kind
	}

	edges := map[engine.Edge]EdgeConfig{
		engine.Left:   c.Boundary.Left,
		engine.Right:  c.Boundary.Right,
		engine.Top:    c.Boundary.Top,
		engine.Bottom: c.Boundary.Bottom,
	}
	for edge, ec := range edges {
		if ec.Kind == "" {
			continue
		}
		kind, ok := edgeKinds[ec.Kind]
		if !ok {
			return fmt.Errorf("config: unknown boundary kind %q", ec.Kind)
		}
		p.Edges[edge] = kind
		p.WallVel[edge] = engine.WallVelocity{U: float32(ec.WallU), V: float32(ec.WallV)}
		p.Inflow[edge] = engine.InflowState{Rho: float32(ec.InflowRho), U: float32(ec.InflowU), V: float32(ec.InflowV)}
	}

	c.Derived.EngineParams = p
	return nil
}

// presetEdgeKinds mirrors engine.ApplyLegacyPreset's table, used here to
// populate Params.Edges before an Engine exists to call the method on.
func presetEdgeKinds(preset engine.LegacyPreset) [4]engine.BoundaryKind {
	switch preset {
	case engine.PresetNoSlipBox:
		return [4]engine.BoundaryKind{engine.NoSlip, engine.NoSlip, engine.NoSlip, engine.NoSlip}
	case engine.PresetChannels:
		return [4]engine.BoundaryKind{engine.Periodic, engine.Periodic, engine.NoSlip, engine.NoSlip}
	case engine.PresetSlipBox:
		return [4]engine.BoundaryKind{engine.FreeSlip, engine.FreeSlip, engine.FreeSlip, engine.FreeSlip}
	case engine.PresetSlipChannel:
		return [4]engine.BoundaryKind{engine.Periodic, engine.Periodic, engine.FreeSlip, engine.FreeSlip}
	default:
		return [4]engine.BoundaryKind{engine.Periodic, engine.Periodic, engine.Periodic, engine.Periodic}
	}
}

// NewEngine constructs an Engine sized by Grid.Width/Height using the
// derived engine.Params.
func (c *Config) NewEngine() *engine.Engine {
	return engine.New(c.Grid.Width, c.Grid.Height, c.Derived.EngineParams)
}

// WriteYAML writes the configuration to a YAML file.
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
