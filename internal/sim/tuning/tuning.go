// Package tuning loads the server-side defaults: drop TTL and the stock
// run config handed to clients that start without overrides.
package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"triocell/internal/sim/engine"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	DropTTLSeconds int `yaml:"drop_ttl_seconds"`

	Defaults RunDefaults `yaml:"defaults"`
}

type RunDefaults struct {
	Width          int     `yaml:"width"`
	Height         int     `yaml:"height"`
	WrapWorld      bool    `yaml:"wrap_world"`
	TickRateUI     int     `yaml:"tick_rate_ui"`
	ChunkTicks     int     `yaml:"chunk_ticks"`
	Seed           int64   `yaml:"seed"`
	InitMode       string  `yaml:"init_mode"`
	AliveRatio     float64 `yaml:"alive_ratio"`
	ReproThreshold int     `yaml:"repro_threshold"`

	Constants RunConstants `yaml:"constants"`
}

type RunConstants struct {
	MaxEnergy10     int32 `yaml:"max_energy10"`
	StartEnergy10   int32 `yaml:"start_energy10"`
	SpawnEnergy10   int32 `yaml:"spawn_energy10"`
	ThreatPenalty10 int32 `yaml:"threat_penalty10"`
	AllyBonus10     int32 `yaml:"ally_bonus10"`
	PreyBonus10     int32 `yaml:"prey_bonus10"`
	AgingDrain10    int32 `yaml:"aging_drain10"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func Defaults() Tuning {
	def := engine.DefaultConfig()
	return Tuning{
		ProtocolVersion: "1.0",
		DropTTLSeconds:  30,
		Defaults: RunDefaults{
			Width:          def.Width,
			Height:         def.Height,
			WrapWorld:      def.WrapWorld,
			TickRateUI:     def.TickRateUI,
			ChunkTicks:     def.ChunkTicks,
			Seed:           def.Seed,
			InitMode:       string(def.InitMode),
			AliveRatio:     def.AliveRatio,
			ReproThreshold: def.ReproThreshold,
			Constants: RunConstants{
				MaxEnergy10:     def.Consts.MaxEnergy10,
				StartEnergy10:   def.Consts.StartEnergy10,
				SpawnEnergy10:   def.Consts.SpawnEnergy10,
				ThreatPenalty10: def.Consts.ThreatPenalty10,
				AllyBonus10:     def.Consts.AllyBonus10,
				PreyBonus10:     def.Consts.PreyBonus10,
				AgingDrain10:    def.Consts.AgingDrain10,
			},
		},
	}
}

// EngineConfig maps the tuned defaults onto a normalized run config.
func (t Tuning) EngineConfig() engine.Config {
	d := t.Defaults
	return engine.Normalize(engine.Config{
		Width:          d.Width,
		Height:         d.Height,
		WrapWorld:      d.WrapWorld,
		TickRateUI:     d.TickRateUI,
		ChunkTicks:     d.ChunkTicks,
		Seed:           d.Seed,
		InitMode:       engine.InitMode(d.InitMode),
		AliveRatio:     d.AliveRatio,
		ReproThreshold: d.ReproThreshold,
		Consts: engine.Constants{
			MaxEnergy10:     d.Constants.MaxEnergy10,
			StartEnergy10:   d.Constants.StartEnergy10,
			SpawnEnergy10:   d.Constants.SpawnEnergy10,
			ThreatPenalty10: d.Constants.ThreatPenalty10,
			AllyBonus10:     d.Constants.AllyBonus10,
			PreyBonus10:     d.Constants.PreyBonus10,
			AgingDrain10:    d.Constants.AgingDrain10,
		},
	})
}
