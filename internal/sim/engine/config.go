package engine

// InitMode selects the procedural layout strategy for a fresh run.
type InitMode string

const (
	InitRandom      InitMode = "random"
	InitClustered   InitMode = "clustered"
	InitTriad       InitMode = "triad"
	InitSingleBlock InitMode = "single-block"
)

// Constants bundles the integer "tenths" magnitudes of the transition
// function. 10 units = 1.0 human-readable energy.
type Constants struct {
	MaxEnergy10     int32 `json:"max_energy10"`
	StartEnergy10   int32 `json:"start_energy10"`
	SpawnEnergy10   int32 `json:"spawn_energy10"`
	ThreatPenalty10 int32 `json:"threat_penalty10"`
	AllyBonus10     int32 `json:"ally_bonus10"`
	PreyBonus10     int32 `json:"prey_bonus10"`

	// AgingDrain10 is carried for wire compatibility only. The transition
	// always drains exactly 1 per tick; Normalize forces this field to 1 and
	// nothing in the tick path reads it.
	AgingDrain10 int32 `json:"aging_drain10"`
}

// Config holds the immutable per-run parameters. Produce it once through
// Normalize; downstream code never re-validates.
type Config struct {
	Width          int      `json:"width"`
	Height         int      `json:"height"`
	WrapWorld      bool     `json:"wrap_world"`
	TickRateUI     int      `json:"tick_rate_ui"`
	ChunkTicks     int      `json:"chunk_ticks"`
	Seed           int64    `json:"seed"`
	InitMode       InitMode `json:"init_mode"`
	AliveRatio     float64  `json:"alive_ratio"`
	ReproThreshold int      `json:"repro_threshold"`

	Consts Constants `json:"constants"`
}

// DefaultConfig returns the stock run parameters used when a client starts a
// run without overrides.
func DefaultConfig() Config {
	return Config{
		Width:          64,
		Height:         64,
		WrapWorld:      true,
		TickRateUI:     3,
		ChunkTicks:     4,
		Seed:           1,
		InitMode:       InitRandom,
		AliveRatio:     0.22,
		ReproThreshold: 3,
		Consts: Constants{
			MaxEnergy10:     100,
			StartEnergy10:   50,
			SpawnEnergy10:   30,
			ThreatPenalty10: 6,
			AllyBonus10:     2,
			PreyBonus10:     4,
			AgingDrain10:    1,
		},
	}
}

// Normalize clamps every field into its valid range, filling structural
// zero values with defaults. The result is the one authoritative config for
// a run.
func Normalize(c Config) Config {
	def := DefaultConfig()

	if c.Width <= 0 {
		c.Width = def.Width
	}
	if c.Height <= 0 {
		c.Height = def.Height
	}
	c.TickRateUI = clampInt(c.TickRateUI, 1, 5)
	c.ChunkTicks = clampInt(c.ChunkTicks, 1, 16)
	if c.Seed < 1 {
		c.Seed = def.Seed
	}
	switch c.InitMode {
	case InitRandom, InitClustered, InitTriad, InitSingleBlock:
	default:
		c.InitMode = def.InitMode
	}
	if c.AliveRatio < 0 {
		c.AliveRatio = 0
	}
	if c.AliveRatio > 1 {
		c.AliveRatio = 1
	}
	c.ReproThreshold = clampInt(c.ReproThreshold, 1, 8)

	if c.Consts.MaxEnergy10 <= 0 {
		c.Consts.MaxEnergy10 = def.Consts.MaxEnergy10
	}
	if c.Consts.ThreatPenalty10 < 0 {
		c.Consts.ThreatPenalty10 = 0
	}
	if c.Consts.AllyBonus10 < 0 {
		c.Consts.AllyBonus10 = 0
	}
	if c.Consts.PreyBonus10 < 0 {
		c.Consts.PreyBonus10 = 0
	}
	c.Consts.StartEnergy10 = clampI32(c.Consts.StartEnergy10, 0, c.Consts.MaxEnergy10)
	c.Consts.SpawnEnergy10 = clampI32(c.Consts.SpawnEnergy10, 0, c.Consts.MaxEnergy10)

	// The real drain lives in the tick function.
	c.Consts.AgingDrain10 = 1

	return c
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampI32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
